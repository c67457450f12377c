package media

import "context"

// Resolver convierte una referencia de storage (gs://bucket/objeto) en una
// URL reproducible por tiempo limitado. No hay más contrato de filesystem/red.
type Resolver interface {
	PlaybackURL(ctx context.Context, storageURI string) (string, error)
}
