package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"paw-guardian/internal/ports/llm"
	"paw-guardian/internal/ports/messaging"
)

// SMSAlert manda un SMS de alerta al dueño vía el messenger configurado.
type SMSAlert struct {
	messenger messaging.Messenger
}

func NewSMSAlert(m messaging.Messenger) *SMSAlert {
	return &SMSAlert{messenger: m}
}

func (a *SMSAlert) Name() string { return NameSendSMSAlert }

func (a *SMSAlert) Definition() llm.ToolDefinition {
	return llm.ToolDefinition{
		Name:        NameSendSMSAlert,
		Description: "Send an SMS alert to the owner.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"message": {"type": "string", "description": "Alert text for the owner."}
			},
			"required": ["message"]
		}`),
	}
}

func (a *SMSAlert) Execute(ctx context.Context, args json.RawMessage) string {
	var in struct {
		Message string `json:"message"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return fmt.Sprintf("Error: invalid arguments for %s - %v", NameSendSMSAlert, err)
	}

	msg := strings.TrimSpace(in.Message)
	if msg == "" {
		return "Error: message is required."
	}

	if !a.messenger.IsConfigured() {
		return "SMS not sent: messaging is not configured."
	}

	if _, err := a.messenger.SendSMS(ctx, msg); err != nil {
		return fmt.Sprintf("Error: SMS delivery failed - %v", err)
	}
	return "SMS alert sent to the owner."
}
