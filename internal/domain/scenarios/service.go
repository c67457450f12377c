package scenarios

import (
	"context"
	"errors"

	"paw-guardian/internal/platform/logger"
	"paw-guardian/internal/ports/media"
)

var ErrNotFound = errors.New("scenario not found")

type Service struct {
	catalog  []Scenario
	resolver media.Resolver
	log      logger.Logger
}

func NewService(bucket string, resolver media.Resolver, log logger.Logger) *Service {
	return &Service{
		catalog:  Catalog(bucket),
		resolver: resolver,
		log:      log,
	}
}

// Item es un escenario con su URL de reproducción ya resuelta.
// PlaybackURL puede venir vacía si la firma falló (la página igual carga).
type Item struct {
	Scenario
	PlaybackURL string
}

func (s *Service) List(ctx context.Context) []Item {
	out := make([]Item, 0, len(s.catalog))
	for _, sc := range s.catalog {
		item := Item{Scenario: sc}

		url, err := s.resolver.PlaybackURL(ctx, sc.VideoURI)
		if err != nil {
			// Degrada: el selector de escenarios sigue funcionando sin preview.
			s.log.Warn("playback url resolution failed", map[string]any{
				"scenario": sc.ID,
				"error":    err.Error(),
			})
		} else {
			item.PlaybackURL = url
		}

		out = append(out, item)
	}
	return out
}

func (s *Service) Get(ctx context.Context, id string) (Scenario, error) {
	for _, sc := range s.catalog {
		if sc.ID == id {
			return sc, nil
		}
	}
	return Scenario{}, ErrNotFound
}
