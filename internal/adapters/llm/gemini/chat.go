package gemini

import (
	"context"
	"strings"

	"paw-guardian/internal/ports/llm"
)

// StartChat abre una sesión multi-turno con system instruction y tools
// declaradas. La sesión NO es segura para uso concurrente: una corrida
// la consume de punta a punta desde una sola goroutine.
func (c *Client) StartChat(system string, tools []llm.ToolDefinition) llm.ChatSession {
	s := &chatSession{client: c}

	if strings.TrimSpace(system) != "" {
		s.system = &content{Parts: []part{{Text: system}}}
	}
	if len(tools) > 0 {
		decls := make([]functionDeclaration, 0, len(tools))
		for _, t := range tools {
			decls = append(decls, functionDeclaration{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			})
		}
		s.tools = []toolsWire{{FunctionDeclarations: decls}}
	}
	return s
}

// chatSession acumula el historial completo: generateContent es stateless,
// así que cada turno re-manda la conversación entera.
type chatSession struct {
	client  *Client
	system  *content
	tools   []toolsWire
	history []content
}

func (s *chatSession) Send(ctx context.Context, text string) (llm.Turn, error) {
	return s.advance(ctx, content{
		Role:  roleUser,
		Parts: []part{{Text: text}},
	})
}

// SendToolResults devuelve los resultados como functionResponse parts.
// Van con rol user: el wire no tiene un rol "tool", el resultado de una
// función cuenta como turno del usuario.
func (s *chatSession) SendToolResults(ctx context.Context, results []llm.ToolResult) (llm.Turn, error) {
	parts := make([]part, 0, len(results))
	for _, r := range results {
		parts = append(parts, part{FunctionResponse: &functionResponse{
			Name:     r.Name,
			Response: map[string]any{"result": r.Result},
		}})
	}
	return s.advance(ctx, content{Role: roleUser, Parts: parts})
}

func (s *chatSession) advance(ctx context.Context, msg content) (llm.Turn, error) {
	s.history = append(s.history, msg)

	reply, err := s.client.generate(ctx, generateRequest{
		SystemInstruction: s.system,
		Contents:          s.history,
		Tools:             s.tools,
		GenerationConfig:  generationConfig{Temperature: 0},
	})
	if err != nil {
		return llm.Turn{}, err
	}

	reply.Role = roleModel
	s.history = append(s.history, reply)
	return turnOf(reply), nil
}
