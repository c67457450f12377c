// Package runs orquesta el pipeline completo de monitoreo: observación del
// video, veredicto de la política, decisión con tool-calling y reporte
// final. Cada corrida es sincrónica y queda registrada con su transcript
// completo para auditoría y para el feed en vivo.
package runs

import (
	"encoding/json"
	"errors"
	"time"

	"paw-guardian/internal/domain/actions"
	"paw-guardian/internal/domain/observer"
	"paw-guardian/internal/domain/profiles"
)

var (
	// ErrInvalidInput marca violaciones de las reglas de entrada de Start.
	ErrInvalidInput = errors.New("invalid run input")

	// ErrNotFound marca perfil, escenario o corrida inexistente.
	ErrNotFound = errors.New("run not found")

	// ErrAborted marca una corrida abortada por falla de transporte con el
	// modelo. La corrida queda registrada igual, con outcome aborted.
	ErrAborted = errors.New("run aborted")

	// ErrBadState marca una transición de estado inválida. Si aparece es un
	// bug: la caminata del pipeline es fija.
	ErrBadState = errors.New("invalid state transition")
)

// State es el estado de una corrida dentro del pipeline.
type State string

const (
	StateIdle      State = "idle"
	StateObserving State = "observing"
	StateDeciding  State = "deciding"
	StateExecuting State = "executing"
	StateReporting State = "reporting"
	StateDone      State = "done"
)

// transitions define la máquina de estados de la corrida. Desde cualquier
// estado intermedio se puede saltar a done (cierre anticipado o aborto).
var transitions = map[State][]State{
	StateIdle:      {StateObserving},
	StateObserving: {StateDeciding, StateDone},
	StateDeciding:  {StateExecuting, StateReporting, StateDone},
	StateExecuting: {StateReporting, StateDone},
	StateReporting: {StateDone},
	StateDone:      {},
}

// CanTransition reporta si el pasaje s -> to es válido.
func (s State) CanTransition(to State) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reporta si el estado es final.
func (s State) Terminal() bool {
	return s == StateDone
}

// Outcome resume cómo terminó la corrida.
type Outcome string

const (
	OutcomePending    Outcome = "pending"
	OutcomeNoSubject  Outcome = "no_subject"
	OutcomeSafe       Outcome = "safe"
	OutcomeIntervened Outcome = "intervened"
	OutcomeAborted    Outcome = "aborted"
)

// Tipos de entrada del transcript.
const (
	KindState       = "state"
	KindObservation = "observation"
	KindAction      = "action"
	KindReport      = "report"
	KindError       = "error"
)

// Entry es una entrada del transcript de la corrida. Seq arranca en 1 y es
// estrictamente creciente dentro de la corrida; los subscribers del feed en
// vivo reciben exactamente estas entradas, en este orden.
type Entry struct {
	Seq     int             `json:"seq"`
	At      time.Time       `json:"at"`
	Kind    string          `json:"kind"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Run es una corrida de monitoreo. Guarda un snapshot del perfil al momento
// de arrancar: ediciones posteriores del perfil no afectan corridas pasadas.
type Run struct {
	ID string

	ProfileID string
	Profile   profiles.Profile

	// ScenarioID queda vacío cuando la corrida vino con video directo.
	ScenarioID   string
	VideoURI     string
	TemperatureC float64

	State   State
	Outcome Outcome

	Observation *observer.Observation
	Actions     []actions.Result
	Report      string

	// Error queda seteado sólo en corridas abortadas.
	Error string

	Transcript []Entry

	CreatedAt time.Time
	UpdatedAt time.Time
}
