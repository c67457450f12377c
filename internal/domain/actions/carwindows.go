package actions

import (
	"context"
	"encoding/json"
	"fmt"

	"paw-guardian/internal/ports/llm"
)

// CarWindows abre las ventanillas del auto. Hoy es una simulación: no hay
// hardware conectado, el outcome describe lo que el vehículo haría.
type CarWindows struct{}

func NewCarWindows() *CarWindows { return &CarWindows{} }

func (a *CarWindows) Name() string { return NameOpenCarWindows }

func (a *CarWindows) Definition() llm.ToolDefinition {
	return llm.ToolDefinition{
		Name:        NameOpenCarWindows,
		Description: "Open the car windows. Level: 0-100 (0 = closed, 100 = fully open).",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"level": {"type": "integer", "description": "Opening level, 0-100."}
			},
			"required": ["level"]
		}`),
	}
}

func (a *CarWindows) Execute(ctx context.Context, args json.RawMessage) string {
	// El modelo a veces manda el nivel como número con decimales; se acepta
	// y se trunca a entero antes de validar rango.
	var in struct {
		Level *float64 `json:"level"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return fmt.Sprintf("Error: invalid arguments for %s - %v", NameOpenCarWindows, err)
	}
	if in.Level == nil {
		return "Error: level is required."
	}

	level := int(*in.Level)
	if level < 0 || level > 100 {
		return fmt.Sprintf("Error: level must be between 0 and 100, got %d.", level)
	}

	return fmt.Sprintf("Opening car windows to %d%%.", level)
}
