package llm

import (
	"context"
	"errors"
)

// ErrTransport marca fallas de red/modelo. Quien orquesta la corrida
// debe abortar al verla: no hay retry (errors.Is(err, ErrTransport)).
var ErrTransport = errors.New("model transport error")

// Classifier es la llamada de clasificación: video + prompt => texto crudo
// (idealmente JSON, pero el parseo tolerante es problema del caller).
type Classifier interface {
	ClassifyVideo(ctx context.Context, video VideoRef, prompt string) (string, error)
}

// ChatSession es una conversación multi-turno con tools declaradas.
// Send manda texto del usuario; SendToolResults devuelve al modelo los
// resultados de las tools que pidió en el turno anterior.
type ChatSession interface {
	Send(ctx context.Context, text string) (Turn, error)
	SendToolResults(ctx context.Context, results []ToolResult) (Turn, error)
}

// ToolChat abre sesiones de chat con system instruction + tools.
type ToolChat interface {
	StartChat(system string, tools []ToolDefinition) ChatSession
}
