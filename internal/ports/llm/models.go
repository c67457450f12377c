package llm

import "encoding/json"

// VideoRef referencia un video alojado (p.ej. gs://bucket/objeto).
type VideoRef struct {
	URI      string
	MIMEType string
}

// ToolDefinition declara una operación invocable por el modelo.
// Parameters es el JSON Schema crudo de los argumentos.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  json.RawMessage
}

// ToolCall es una invocación solicitada por el modelo.
type ToolCall struct {
	Name string
	Args json.RawMessage
}

// ToolResult es el resultado de ejecutar una ToolCall.
// Result viaja de vuelta al modelo como {"result": "..."}.
type ToolResult struct {
	Name   string
	Result string
}

// Turn es una respuesta del modelo: texto libre, tool calls, o ambos.
type Turn struct {
	Text      string
	ToolCalls []ToolCall
}
