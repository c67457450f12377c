package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"paw-guardian/internal/ports/llm"
	"paw-guardian/internal/ports/messaging"
)

// EmergencyCall llama por voz al dueño y le lee el mensaje.
type EmergencyCall struct {
	messenger messaging.Messenger
}

func NewEmergencyCall(m messaging.Messenger) *EmergencyCall {
	return &EmergencyCall{messenger: m}
}

func (a *EmergencyCall) Name() string { return NameEmergencyCall }

func (a *EmergencyCall) Definition() llm.ToolDefinition {
	return llm.ToolDefinition{
		Name:        NameEmergencyCall,
		Description: "Make an emergency phone call to the owner.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"message": {"type": "string", "description": "Message read out loud during the call."}
			},
			"required": ["message"]
		}`),
	}
}

func (a *EmergencyCall) Execute(ctx context.Context, args json.RawMessage) string {
	var in struct {
		Message string `json:"message"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return fmt.Sprintf("Error: invalid arguments for %s - %v", NameEmergencyCall, err)
	}

	msg := strings.TrimSpace(in.Message)
	if msg == "" {
		return "Error: message is required."
	}

	if !a.messenger.IsConfigured() {
		return "Call not placed: messaging is not configured."
	}

	if _, err := a.messenger.PlaceCall(ctx, msg); err != nil {
		return fmt.Sprintf("Error: call failed - %v", err)
	}
	return "Emergency call placed to the owner."
}
