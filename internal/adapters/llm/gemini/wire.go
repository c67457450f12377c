package gemini

import (
	"encoding/json"
	"strings"

	"paw-guardian/internal/ports/llm"
)

const (
	roleUser  = "user"
	roleModel = "model"
)

// Tipos del wire REST de generateContent. Los nombres van en camelCase
// (el endpoint acepta ambos estilos, pero la documentación usa camelCase).
type generateRequest struct {
	SystemInstruction *content         `json:"systemInstruction,omitempty"`
	Contents          []content        `json:"contents"`
	Tools             []toolsWire      `json:"tools,omitempty"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

// part es una unión: exactamente uno de los campos viene seteado.
type part struct {
	Text             string            `json:"text,omitempty"`
	FileData         *fileData         `json:"fileData,omitempty"`
	FunctionCall     *functionCall     `json:"functionCall,omitempty"`
	FunctionResponse *functionResponse `json:"functionResponse,omitempty"`
}

type fileData struct {
	FileURI  string `json:"fileUri"`
	MIMEType string `json:"mimeType"`
}

type functionCall struct {
	Name string          `json:"name"`
	Args json.RawMessage `json:"args,omitempty"`
}

type functionResponse struct {
	Name     string         `json:"name"`
	Response map[string]any `json:"response"`
}

type toolsWire struct {
	FunctionDeclarations []functionDeclaration `json:"functionDeclarations"`
}

type functionDeclaration struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// Temperature viaja siempre (cero incluido): las dos etapas del pipeline
// piden salida determinista.
type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	ResponseMIMEType string  `json:"responseMimeType,omitempty"`
}

type generateResponse struct {
	Candidates []candidate `json:"candidates"`
}

type candidate struct {
	Content content `json:"content"`
}

// turnOf aplana el content del modelo al Turn del port: concatena las
// partes de texto y recolecta los function calls en orden.
func turnOf(c content) llm.Turn {
	var turn llm.Turn
	var texts []string
	for _, p := range c.Parts {
		if p.Text != "" {
			texts = append(texts, p.Text)
		}
		if p.FunctionCall != nil {
			args := p.FunctionCall.Args
			if len(args) == 0 {
				args = json.RawMessage(`{}`)
			}
			turn.ToolCalls = append(turn.ToolCalls, llm.ToolCall{
				Name: p.FunctionCall.Name,
				Args: args,
			})
		}
	}
	turn.Text = strings.Join(texts, "\n")
	return turn
}
