// Package observer implementa la primera etapa del pipeline: el análisis
// visual del video de cabina. El modelo devuelve JSON estructurado y acá se
// normaliza a una Observation; las respuestas rotas degradan a "no detectado"
// en vez de abortar la corrida.
package observer

import (
	"encoding/json"
	"strings"

	"paw-guardian/internal/platform/jsonx"
)

// Level es el nivel de ansiedad reportado por la etapa de observación.
type Level string

const (
	LevelNone  Level = "None"
	LevelRelax Level = "Relax"
	LevelLow   Level = "Low"
	LevelHigh  Level = "High"
)

// ParseLevel normaliza la etiqueta que devuelve el modelo. Acepta variantes
// de mayúsculas y los alias "low anxiety"/"high anxiety"; cualquier otra
// cosa cae a None.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "relax", "relaxed":
		return LevelRelax
	case "low", "low anxiety":
		return LevelLow
	case "high", "high anxiety":
		return LevelHigh
	default:
		return LevelNone
	}
}

// Observation es el resultado normalizado de la etapa de observación.
// Los tags JSON reproducen la forma que el prompt le pide al modelo, así la
// observación viaja igual en el transcript y en el prompt de decisión.
type Observation struct {
	SubjectDetected bool     `json:"subject_detected"`
	AnxietyLevel    Level    `json:"anxiety_level"`
	Observations    string   `json:"observations"`
	StressSigns     []string `json:"stress_signs,omitempty"`
}

// observationWire es la forma JSON que el prompt le pide al modelo.
type observationWire struct {
	SubjectDetected bool     `json:"subject_detected"`
	AnxietyLevel    string   `json:"anxiety_level"`
	Observations    string   `json:"observations"`
	StressSigns     []string `json:"stress_signs"`
}

// parseObservation convierte el texto crudo del modelo en una Observation.
// Nunca falla: texto sin JSON válido equivale a objeto vacío, que a su vez
// equivale a "no hay perro en el auto". Además fuerza la regla crítica:
// sin sujeto detectado el nivel es siempre None, diga lo que diga el modelo.
func parseObservation(text string) Observation {
	var w observationWire
	if err := json.Unmarshal([]byte(jsonx.ExtractObject(text)), &w); err != nil {
		return Observation{AnxietyLevel: LevelNone}
	}

	obs := Observation{
		SubjectDetected: w.SubjectDetected,
		AnxietyLevel:    ParseLevel(w.AnxietyLevel),
		Observations:    strings.TrimSpace(w.Observations),
		StressSigns:     w.StressSigns,
	}
	if !obs.SubjectDetected {
		obs.AnxietyLevel = LevelNone
	}
	return obs
}
