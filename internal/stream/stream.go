// Package stream reparte las entradas del transcript de una corrida a
// subscribers: el log estructurado y el hub de websockets. La entrega es
// sincrónica y en orden; los subscribers no deben bloquear (el hub descarta
// clientes lentos en vez de esperar).
package stream

import (
	"context"

	"paw-guardian/internal/domain/runs"
	"paw-guardian/internal/platform/logger"
)

// Event es una entrada de transcript con la corrida a la que pertenece.
type Event struct {
	RunID string
	Entry runs.Entry
}

// Subscriber recibe cada evento publicado. Un error no corta la entrega al
// resto de los subscribers; sólo se loguea.
type Subscriber interface {
	Name() string
	Handle(ctx context.Context, ev Event) error
}

// Dispatcher reparte eventos a sus subscribers en orden de registro.
// Implementa runs.Publisher.
type Dispatcher struct {
	log  logger.Logger
	subs []Subscriber
}

func NewDispatcher(log logger.Logger, subs ...Subscriber) *Dispatcher {
	if log == nil {
		log = logger.Nop()
	}
	return &Dispatcher{log: log, subs: subs}
}

// Publish entrega la entrada a todos los subscribers, secuencialmente y en
// el orden en que se registraron. El orden de seq por corrida se preserva
// porque el pipeline publica desde un solo goroutine.
func (d *Dispatcher) Publish(ctx context.Context, runID string, e runs.Entry) {
	ev := Event{RunID: runID, Entry: e}
	for _, sub := range d.subs {
		if err := sub.Handle(ctx, ev); err != nil {
			d.log.Warn("transcript subscriber failed", map[string]any{
				"subscriber": sub.Name(),
				"run_id":     runID,
				"seq":        e.Seq,
				"error":      err.Error(),
			})
		}
	}
}
