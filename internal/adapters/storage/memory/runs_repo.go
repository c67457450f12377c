package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"paw-guardian/internal/domain/actions"
	"paw-guardian/internal/domain/runs"
)

type runRepo struct {
	mu   sync.RWMutex
	byID map[string]runs.Run
}

func NewRunRepo() runs.Repository {
	return &runRepo{
		byID: make(map[string]runs.Run),
	}
}

func (r *runRepo) Create(ctx context.Context, run runs.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(run.ID) == "" {
		return errors.New("run id required")
	}
	if _, exists := r.byID[run.ID]; exists {
		return errors.New("run already exists")
	}
	r.byID[run.ID] = cloneRun(run)
	return nil
}

func (r *runRepo) Update(ctx context.Context, run runs.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[run.ID]; !exists {
		return runs.ErrNotFound
	}
	r.byID[run.ID] = cloneRun(run)
	return nil
}

func (r *runRepo) GetByID(ctx context.Context, id string) (runs.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, ok := r.byID[id]
	if !ok {
		return runs.Run{}, runs.ErrNotFound
	}
	return cloneRun(run), nil
}

func (r *runRepo) List(ctx context.Context) ([]runs.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]runs.Run, 0, len(r.byID))
	for _, run := range r.byID {
		out = append(out, cloneRun(run))
	}

	// La más reciente primero: es lo que muestra el panel de corridas.
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out, nil
}

// cloneRun copia los slices internos. El pipeline sigue appendeando sobre su
// propia copia mientras otros goroutines leen la guardada; sin esto
// compartirían backing arrays.
func cloneRun(run runs.Run) runs.Run {
	out := run
	if run.Transcript != nil {
		out.Transcript = make([]runs.Entry, len(run.Transcript))
		copy(out.Transcript, run.Transcript)
	}
	if run.Actions != nil {
		out.Actions = make([]actions.Result, len(run.Actions))
		copy(out.Actions, run.Actions)
	}
	if run.Observation != nil {
		obs := *run.Observation
		out.Observation = &obs
	}
	return out
}
