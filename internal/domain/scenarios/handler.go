package scenarios

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/scenarios", func(sr chi.Router) {
		sr.Get("/", listScenariosHandler(svc))
		sr.Get("/{scenarioID}", getScenarioHandler(svc))
	})
}

type scenarioResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Summary     string `json:"summary"`
	VideoURI    string `json:"video_uri"`
	PlaybackURL string `json:"playback_url,omitempty"`
}

func listScenariosHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items := svc.List(r.Context())

		out := make([]scenarioResponse, 0, len(items))
		for _, it := range items {
			out = append(out, scenarioResponse{
				ID:          it.ID,
				Title:       it.Title,
				Summary:     it.Summary,
				VideoURI:    it.VideoURI,
				PlaybackURL: it.PlaybackURL,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getScenarioHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc, err := svc.Get(r.Context(), chi.URLParam(r, "scenarioID"))
		if err != nil {
			http.Error(w, "scenario not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, scenarioResponse{
			ID:       sc.ID,
			Title:    sc.Title,
			Summary:  sc.Summary,
			VideoURI: sc.VideoURI,
		})
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// (profiles/scenarios/runs) para evitar crear helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
