package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "paw-guardian/docs" // registro del spec swagger generado

	"paw-guardian/internal/domain/profiles"
	"paw-guardian/internal/domain/runs"
	"paw-guardian/internal/domain/scenarios"
	"paw-guardian/internal/middleware"
	"paw-guardian/internal/platform/logger"
	"paw-guardian/internal/stream"
)

// Options agrupa lo que el router necesita ya construido. El wiring de
// adapters y services vive en main; acá solo se montan rutas.
type Options struct {
	Log logger.Logger

	// Clave del operador; vacía = modo dev abierto.
	OperatorKey string

	Profiles  *profiles.Service
	Scenarios *scenarios.Service
	Runs      *runs.Service
	Hub       *stream.Hub
}

func New(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLog(opts.Log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// Todo lo demás exige la operator key (si está configurada).
	r.Group(func(api chi.Router) {
		api.Use(middleware.OperatorGate(opts.OperatorKey))

		profiles.RegisterRoutes(api, opts.Profiles)
		scenarios.RegisterRoutes(api, opts.Scenarios)
		runs.RegisterRoutes(api, opts.Runs)

		api.Get("/ws/runs", opts.Hub.ServeHTTP)
	})

	return r
}
