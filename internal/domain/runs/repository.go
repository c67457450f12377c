package runs

import "context"

type Repository interface {
	Create(ctx context.Context, r Run) error
	// Update reemplaza la corrida completa; se llama en cada entrada del
	// transcript para que las lecturas concurrentes vean el progreso.
	Update(ctx context.Context, r Run) error
	GetByID(ctx context.Context, id string) (Run, error)
	List(ctx context.Context) ([]Run, error)
}
