package runs

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"paw-guardian/internal/domain/actions"
	"paw-guardian/internal/domain/decision"
	"paw-guardian/internal/domain/observer"
	"paw-guardian/internal/domain/profiles"
	"paw-guardian/internal/domain/scenarios"
	"paw-guardian/internal/platform/logger"
	"paw-guardian/internal/ports/llm"
)

// Límites de la temperatura de cabina reportable (°C) y default cuando el
// request no la trae.
const (
	defaultTemperatureC = 26.0
	minTemperatureC     = 15.0
	maxTemperatureC     = 45.0
)

const videoMIMEType = "video/mp4"

// Reporte fijo cuando la cabina está vacía: no hay nada que decidir.
const reportNoSubject = "Vehicle is empty and safe. No intervention needed."

// Publisher recibe cada entrada del transcript apenas se appendea, para
// feeds en vivo. Las implementaciones no deben bloquear al pipeline.
type Publisher interface {
	Publish(ctx context.Context, runID string, e Entry)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, Entry) {}

// Options agrupa las dependencias del servicio de corridas.
type Options struct {
	Repo      Repository
	Profiles  *profiles.Service
	Scenarios *scenarios.Service
	Observer  *observer.Service
	Engine    *decision.Engine
	Publisher Publisher
	Log       logger.Logger
}

// Service corre el pipeline de monitoreo de punta a punta.
type Service struct {
	repo      Repository
	profiles  *profiles.Service
	scenarios *scenarios.Service
	observer  *observer.Service
	engine    *decision.Engine
	publisher Publisher
	log       logger.Logger
	now       func() time.Time
}

func NewService(opts Options) *Service {
	if opts.Publisher == nil {
		opts.Publisher = nopPublisher{}
	}
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	return &Service{
		repo:      opts.Repo,
		profiles:  opts.Profiles,
		scenarios: opts.Scenarios,
		observer:  opts.Observer,
		engine:    opts.Engine,
		publisher: opts.Publisher,
		log:       opts.Log,
		now:       time.Now,
	}
}

// StartInput es el pedido de una corrida. Exactamente uno de ScenarioID y
// VideoURI tiene que venir seteado.
type StartInput struct {
	ProfileID    string
	ScenarioID   string
	VideoURI     string
	TemperatureC *float64
}

// Start corre el pipeline completo de forma sincrónica y devuelve la corrida
// terminada. Las corridas abortadas por transporte devuelven ErrAborted,
// pero quedan registradas igual (outcome aborted) y se pueden consultar.
func (s *Service) Start(ctx context.Context, in StartInput) (Run, error) {
	profile, videoURI, scenarioID, temp, err := s.resolveInput(ctx, in)
	if err != nil {
		return Run{}, err
	}

	now := s.now()
	r := Run{
		ID:           uuid.NewString(),
		ProfileID:    profile.ID,
		Profile:      profile,
		ScenarioID:   scenarioID,
		VideoURI:     videoURI,
		TemperatureC: temp,
		State:        StateIdle,
		Outcome:      OutcomePending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return Run{}, err
	}

	s.log.Info("run: started", map[string]any{
		"run_id":     r.ID,
		"profile_id": r.ProfileID,
		"scenario":   r.ScenarioID,
		"temp_c":     r.TemperatureC,
	})

	// ---- Etapa 1: observación ----
	if err := s.transition(ctx, &r, StateObserving, fmt.Sprintf("analyzing cabin feed at %s°C", formatTemp(r.TemperatureC))); err != nil {
		return r, err
	}

	obs, err := s.observer.Observe(ctx, llm.VideoRef{URI: r.VideoURI, MIMEType: videoMIMEType}, profile.Context())
	if err != nil {
		return s.abort(ctx, &r, "observer stage failed", err)
	}
	r.Observation = &obs
	s.append(ctx, &r, KindObservation, observationMessage(obs), mustJSON(obs))

	// Cabina vacía: no hay nada que decidir ni permiso para actuar.
	if !obs.SubjectDetected {
		r.Report = reportNoSubject
		r.Outcome = OutcomeNoSubject
		s.append(ctx, &r, KindReport, r.Report, nil)
		if err := s.transition(ctx, &r, StateDone, "monitoring complete: cabin is empty"); err != nil {
			return r, err
		}
		return r, nil
	}

	// ---- Etapa 2: decisión ----
	verdict := decision.Evaluate(obs, r.TemperatureC, profile)
	if err := s.transition(ctx, &r, StateDeciding, decidingMessage(verdict)); err != nil {
		return r, err
	}

	// Con acciones obligatorias la ejecución es un hecho: o las pide el
	// modelo o las despacha el host.
	if len(verdict.Required) > 0 {
		if err := s.transition(ctx, &r, StateExecuting, fmt.Sprintf("executing %d required action(s)", len(verdict.Required))); err != nil {
			return r, err
		}
	}

	out, err := s.engine.Decide(ctx, decision.Input{
		Observation:  obs,
		TemperatureC: r.TemperatureC,
		PetContext:   profile.Context(),
		Verdict:      verdict,
		Notify: func(res actions.Result) {
			s.append(ctx, &r, KindAction, res.Outcome, mustJSON(map[string]any{
				"name":       res.Name,
				"dispatched": res.Dispatched,
			}))
		},
	})
	if err != nil {
		return s.abort(ctx, &r, "decision stage failed", err)
	}
	r.Actions = out.Results

	// ---- Etapa 3: reporte ----
	if err := s.transition(ctx, &r, StateReporting, "drafting final report"); err != nil {
		return r, err
	}
	r.Report = out.Report
	if len(verdict.Required) > 0 {
		r.Outcome = OutcomeIntervened
	} else {
		r.Outcome = OutcomeSafe
	}
	s.append(ctx, &r, KindReport, r.Report, nil)

	if err := s.transition(ctx, &r, StateDone, "monitoring complete"); err != nil {
		return r, err
	}

	s.log.Info("run: finished", map[string]any{
		"run_id":  r.ID,
		"outcome": string(r.Outcome),
		"actions": len(r.Actions),
	})
	return r, nil
}

// GetByID devuelve una corrida por id.
func (s *Service) GetByID(ctx context.Context, id string) (Run, error) {
	return s.repo.GetByID(ctx, id)
}

// List devuelve todas las corridas, la más nueva primero.
func (s *Service) List(ctx context.Context) ([]Run, error) {
	return s.repo.List(ctx)
}

// Transcript devuelve sólo el transcript de la corrida.
func (s *Service) Transcript(ctx context.Context, id string) ([]Entry, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.Transcript, nil
}

// resolveInput valida el pedido y resuelve perfil, video y temperatura.
func (s *Service) resolveInput(ctx context.Context, in StartInput) (profiles.Profile, string, string, float64, error) {
	if strings.TrimSpace(in.ProfileID) == "" {
		return profiles.Profile{}, "", "", 0, fmt.Errorf("%w: profile_id is required", ErrInvalidInput)
	}

	profile, err := s.profiles.GetByID(ctx, in.ProfileID)
	if err != nil {
		return profiles.Profile{}, "", "", 0, fmt.Errorf("%w: profile %s", ErrNotFound, in.ProfileID)
	}

	hasScenario := strings.TrimSpace(in.ScenarioID) != ""
	hasVideo := strings.TrimSpace(in.VideoURI) != ""
	if hasScenario == hasVideo {
		return profiles.Profile{}, "", "", 0, fmt.Errorf("%w: exactly one of scenario_id and video_uri is required", ErrInvalidInput)
	}

	videoURI := strings.TrimSpace(in.VideoURI)
	scenarioID := ""
	if hasScenario {
		sc, err := s.scenarios.Get(ctx, strings.TrimSpace(in.ScenarioID))
		if err != nil {
			return profiles.Profile{}, "", "", 0, fmt.Errorf("%w: scenario %s", ErrNotFound, in.ScenarioID)
		}
		videoURI = sc.VideoURI
		scenarioID = sc.ID
	}

	temp := defaultTemperatureC
	if in.TemperatureC != nil {
		temp = *in.TemperatureC
	}
	if temp < minTemperatureC || temp > maxTemperatureC {
		return profiles.Profile{}, "", "", 0, fmt.Errorf("%w: temperature_c must be between %.0f and %.0f", ErrInvalidInput, minTemperatureC, maxTemperatureC)
	}

	return profile, videoURI, scenarioID, temp, nil
}

// transition mueve la corrida de estado y registra la entrada en el
// transcript. Una transición inválida es un bug del pipeline.
func (s *Service) transition(ctx context.Context, r *Run, to State, msg string) error {
	if !r.State.CanTransition(to) {
		return fmt.Errorf("%w: %s -> %s", ErrBadState, r.State, to)
	}
	r.State = to
	s.append(ctx, r, KindState, msg, nil)
	return nil
}

// abort cierra la corrida por falla de transporte: registra el error, marca
// outcome aborted y pasa a done. La corrida queda consultable.
func (s *Service) abort(ctx context.Context, r *Run, stage string, cause error) (Run, error) {
	r.Error = cause.Error()
	r.Outcome = OutcomeAborted
	s.append(ctx, r, KindError, fmt.Sprintf("%s: %v", stage, cause), nil)

	if err := s.transition(ctx, r, StateDone, "run aborted"); err != nil {
		s.log.Error("run: abort transition failed", map[string]any{"run_id": r.ID, "error": err.Error()})
	}

	s.log.Error("run: aborted", map[string]any{"run_id": r.ID, "stage": stage, "error": cause.Error()})
	return *r, fmt.Errorf("%w: %s: %v", ErrAborted, stage, cause)
}

// append agrega una entrada al transcript, persiste el avance y la publica.
func (s *Service) append(ctx context.Context, r *Run, kind, msg string, data json.RawMessage) {
	e := Entry{
		Seq:     len(r.Transcript) + 1,
		At:      s.now(),
		Kind:    kind,
		Message: msg,
		Data:    data,
	}
	r.Transcript = append(r.Transcript, e)
	r.UpdatedAt = e.At

	if err := s.repo.Update(ctx, *r); err != nil {
		s.log.Error("run: persist transcript entry", map[string]any{"run_id": r.ID, "error": err.Error()})
	}
	s.publisher.Publish(ctx, r.ID, e)
}

func observationMessage(obs observer.Observation) string {
	if !obs.SubjectDetected {
		return "no pet detected in the cabin"
	}
	return fmt.Sprintf("pet detected, anxiety level %s", obs.AnxietyLevel)
}

func decidingMessage(v decision.Verdict) string {
	if v.Safe {
		return "decision stage: no intervention permitted (" + strings.Join(v.Reasons, "; ") + ")"
	}
	return "decision stage: required actions " + strings.Join(v.RequiredNames(), ", ")
}

func formatTemp(c float64) string {
	return strconv.FormatFloat(c, 'f', -1, 64)
}

func mustJSON(v any) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return raw
}
