package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"paw-guardian/internal/ports/llm"
)

// Tipos de pista soportados por el sistema de audio de la cabina.
const (
	TrackRelax      = "relax"
	TrackWhiteNoise = "white_noise"
)

// PlayMusic reproduce audio calmante en la cabina. Igual que las ventanillas,
// es simulación: el outcome describe la reproducción.
type PlayMusic struct{}

func NewPlayMusic() *PlayMusic { return &PlayMusic{} }

func (a *PlayMusic) Name() string { return NamePlayMusic }

func (a *PlayMusic) Definition() llm.ToolDefinition {
	return llm.ToolDefinition{
		Name:        NamePlayMusic,
		Description: "Play soothing music. track_type: 'relax' or 'white_noise'.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"track_type": {"type": "string", "description": "Either 'relax' or 'white_noise'."}
			},
			"required": ["track_type"]
		}`),
	}
}

func (a *PlayMusic) Execute(ctx context.Context, args json.RawMessage) string {
	var in struct {
		TrackType string `json:"track_type"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return fmt.Sprintf("Error: invalid arguments for %s - %v", NamePlayMusic, err)
	}

	track := strings.ToLower(strings.TrimSpace(in.TrackType))
	switch track {
	case TrackRelax, TrackWhiteNoise:
		return fmt.Sprintf("Playing %s music in the cabin.", track)
	default:
		return fmt.Sprintf("Error: track_type must be %q or %q, got %q.", TrackRelax, TrackWhiteNoise, in.TrackType)
	}
}
