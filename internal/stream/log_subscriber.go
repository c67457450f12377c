package stream

import (
	"context"

	"paw-guardian/internal/platform/logger"
)

// LogSubscriber vuelca cada entrada del transcript al log estructurado.
// Es el rastro de auditoría mínimo cuando nadie mira el websocket.
type LogSubscriber struct {
	log logger.Logger
}

func NewLogSubscriber(log logger.Logger) *LogSubscriber {
	return &LogSubscriber{log: log}
}

func (s *LogSubscriber) Name() string { return "transcript-log" }

func (s *LogSubscriber) Handle(_ context.Context, ev Event) error {
	s.log.Info("transcript", map[string]any{
		"run_id":  ev.RunID,
		"seq":     ev.Entry.Seq,
		"kind":    ev.Entry.Kind,
		"message": ev.Entry.Message,
	})
	return nil
}
