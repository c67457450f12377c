// Package jsonx extrae JSON de texto semi-estructurado devuelto por modelos.
// Los modelos suelen envolver el objeto en fences ```json o agregar prosa
// alrededor; acá limpiamos eso con un fallback suave (objeto vacío).
package jsonx

import (
	"regexp"
	"strings"
)

var (
	fenceOpenRe  = regexp.MustCompile("(?i)```json\\s*")
	fenceCloseRe = regexp.MustCompile("(?m)```\\s*$")
)

// ExtractObject devuelve el span del objeto JSON más externo dentro de text.
// Dos fases: (1) strip de fences, (2) slice entre la primera "{" y la última "}".
// Si no hay objeto reconocible devuelve "{}" — el caller decide qué significa
// un objeto vacío (acá: sujeto no detectado).
func ExtractObject(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return "{}"
	}

	text = fenceOpenRe.ReplaceAllString(text, "")
	text = fenceCloseRe.ReplaceAllString(text, "")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return "{}"
	}
	return text[start : end+1]
}
