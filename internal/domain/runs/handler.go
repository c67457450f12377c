package runs

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"paw-guardian/internal/domain/actions"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/runs", func(rr chi.Router) {
		rr.Post("/", startRunHandler(svc))
		rr.Get("/", listRunsHandler(svc))
		rr.Get("/{runID}", getRunHandler(svc))
		rr.Get("/{runID}/transcript", getTranscriptHandler(svc))
	})
}

type startRunRequest struct {
	ProfileID    string   `json:"profile_id"`
	ScenarioID   string   `json:"scenario_id,omitempty"`
	VideoURI     string   `json:"video_uri,omitempty"`
	TemperatureC *float64 `json:"temperature_c,omitempty"`
}

type runProfileResponse struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Breed          string  `json:"breed"`
	AgeYears       float64 `json:"age_years"`
	Brachycephalic bool    `json:"brachycephalic"`
	Sensitivity    int     `json:"sensitivity"`
}

type actionResponse struct {
	Name       string `json:"name"`
	Outcome    string `json:"outcome"`
	Dispatched bool   `json:"dispatched"`
}

type runResponse struct {
	ID           string             `json:"id"`
	Profile      runProfileResponse `json:"profile"`
	ScenarioID   string             `json:"scenario_id,omitempty"`
	VideoURI     string             `json:"video_uri"`
	TemperatureC float64            `json:"temperature_c"`
	State        string             `json:"state"`
	Outcome      string             `json:"outcome"`
	Observation  *observationWire   `json:"observation,omitempty"`
	Actions      []actionResponse   `json:"actions"`
	Report       string             `json:"report,omitempty"`
	Error        string             `json:"error,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// observationWire reexpone la observación con la misma forma JSON que usa el
// resto del sistema.
type observationWire struct {
	SubjectDetected bool     `json:"subject_detected"`
	AnxietyLevel    string   `json:"anxiety_level"`
	Observations    string   `json:"observations"`
	StressSigns     []string `json:"stress_signs,omitempty"`
}

type runErrorResponse struct {
	Error string `json:"error"`
	RunID string `json:"run_id,omitempty"`
}

// startRunHandler godoc
// @Summary Ejecutar una corrida de monitoreo
// @Description Corre el pipeline completo de forma sincrónica: análisis visual del video, veredicto de la política de seguridad, despacho de acciones y reporte final. Exactamente uno de `scenario_id` y `video_uri` tiene que venir en el payload. La temperatura es opcional (default 26°C, rango 15-45).
// @Tags runs
// @Accept json
// @Produce json
// @Param X-Operator-Key header string false "Requerida sólo si el server arrancó con OPERATOR_KEY"
// @Param payload body startRunRequest true "Perfil, fuente de video y temperatura de cabina"
// @Success 201 {object} runResponse
// @Failure 400 {object} runErrorResponse "invalid json / reglas de entrada"
// @Failure 404 {object} runErrorResponse "perfil o escenario inexistente"
// @Failure 502 {object} runErrorResponse "falla de transporte con el modelo; la corrida queda registrada con outcome aborted"
// @Router /runs [post]
func startRunHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req startRunRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, runErrorResponse{Error: "invalid json"})
			return
		}

		run, err := svc.Start(r.Context(), StartInput{
			ProfileID:    req.ProfileID,
			ScenarioID:   req.ScenarioID,
			VideoURI:     req.VideoURI,
			TemperatureC: req.TemperatureC,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				writeJSON(w, http.StatusBadRequest, runErrorResponse{Error: err.Error()})
			case errors.Is(err, ErrNotFound):
				writeJSON(w, http.StatusNotFound, runErrorResponse{Error: err.Error()})
			case errors.Is(err, ErrAborted):
				// La corrida abortada queda registrada; se devuelve el id
				// para poder inspeccionar el transcript.
				writeJSON(w, http.StatusBadGateway, runErrorResponse{Error: err.Error(), RunID: run.ID})
			default:
				writeJSON(w, http.StatusInternalServerError, runErrorResponse{Error: "internal error"})
			}
			return
		}

		writeJSON(w, http.StatusCreated, toRunResponse(run))
	}
}

// listRunsHandler godoc
// @Summary Listar corridas
// @Description Lista todas las corridas de la sesión, la más reciente primero. El transcript no viene incluido; se pide por corrida.
// @Tags runs
// @Produce json
// @Param X-Operator-Key header string false "Requerida sólo si el server arrancó con OPERATOR_KEY"
// @Success 200 {array} runResponse
// @Router /runs [get]
func listRunsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, runErrorResponse{Error: "internal error"})
			return
		}

		out := make([]runResponse, 0, len(items))
		for _, run := range items {
			out = append(out, toRunResponse(run))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getRunHandler godoc
// @Summary Consultar una corrida
// @Description Devuelve una corrida con su observación, acciones despachadas y reporte final.
// @Tags runs
// @Produce json
// @Param X-Operator-Key header string false "Requerida sólo si el server arrancó con OPERATOR_KEY"
// @Param runID path string true "ID de la corrida"
// @Success 200 {object} runResponse
// @Failure 404 {object} runErrorResponse "run not found"
// @Router /runs/{runID} [get]
func getRunHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, err := svc.GetByID(r.Context(), chi.URLParam(r, "runID"))
		if err != nil {
			writeJSON(w, http.StatusNotFound, runErrorResponse{Error: "run not found"})
			return
		}
		writeJSON(w, http.StatusOK, toRunResponse(run))
	}
}

// getTranscriptHandler godoc
// @Summary Transcript de una corrida
// @Description Devuelve el transcript completo de la corrida en orden de secuencia: transiciones de estado, observación, acciones y reporte. Es el mismo flujo de entradas que emite el websocket en vivo.
// @Tags runs
// @Produce json
// @Param X-Operator-Key header string false "Requerida sólo si el server arrancó con OPERATOR_KEY"
// @Param runID path string true "ID de la corrida"
// @Success 200 {array} Entry
// @Failure 404 {object} runErrorResponse "run not found"
// @Router /runs/{runID}/transcript [get]
func getTranscriptHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := svc.Transcript(r.Context(), chi.URLParam(r, "runID"))
		if err != nil {
			writeJSON(w, http.StatusNotFound, runErrorResponse{Error: "run not found"})
			return
		}
		if entries == nil {
			entries = []Entry{}
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

func toRunResponse(r Run) runResponse {
	out := runResponse{
		ID: r.ID,
		Profile: runProfileResponse{
			ID:             r.Profile.ID,
			Name:           r.Profile.Name,
			Breed:          r.Profile.Breed,
			AgeYears:       r.Profile.AgeYears,
			Brachycephalic: r.Profile.Brachycephalic,
			Sensitivity:    r.Profile.Sensitivity,
		},
		ScenarioID:   r.ScenarioID,
		VideoURI:     r.VideoURI,
		TemperatureC: r.TemperatureC,
		State:        string(r.State),
		Outcome:      string(r.Outcome),
		Actions:      toActionResponses(r.Actions),
		Report:       r.Report,
		Error:        r.Error,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if r.Observation != nil {
		out.Observation = &observationWire{
			SubjectDetected: r.Observation.SubjectDetected,
			AnxietyLevel:    string(r.Observation.AnxietyLevel),
			Observations:    r.Observation.Observations,
			StressSigns:     r.Observation.StressSigns,
		}
	}
	return out
}

func toActionResponses(results []actions.Result) []actionResponse {
	out := make([]actionResponse, 0, len(results))
	for _, res := range results {
		out = append(out, actionResponse{
			Name:       res.Name,
			Outcome:    res.Outcome,
			Dispatched: res.Dispatched,
		})
	}
	return out
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// (profiles/scenarios/runs) para evitar crear helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
