// Package actions implementa las cuatro operaciones que la etapa de decisión
// puede despachar. Cada acción es un handler con nombre, declaración de tool
// (JSON Schema) y ejecución que SIEMPRE devuelve un outcome string: los
// errores de argumentos y de configuración se degradan a texto, nunca
// abortan la corrida.
package actions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"paw-guardian/internal/ports/llm"
)

// Nombres de las cuatro acciones declaradas. El dispatcher jamás deja pasar
// un nombre fuera de este set.
const (
	NameSendSMSAlert   = "send_sms_alert"
	NameEmergencyCall  = "make_emergency_call"
	NameOpenCarWindows = "open_car_windows"
	NamePlayMusic      = "play_music"
)

// Request es una invocación de acción: nombre + argumentos crudos.
type Request struct {
	Name string
	Args json.RawMessage
}

// Result es el resultado de despachar una Request.
// Dispatched=false significa que el guard la rechazó (nombre desconocido o
// bloqueada por política) y el handler nunca corrió.
type Result struct {
	Name       string
	Outcome    string
	Dispatched bool
}

// Handler es una acción invocable por el modelo.
type Handler interface {
	Name() string
	Definition() llm.ToolDefinition
	Execute(ctx context.Context, args json.RawMessage) string
}

// Registry conoce las acciones declaradas y despacha requests contra ellas.
type Registry struct {
	order  []string
	byName map[string]Handler
}

func NewRegistry(handlers ...Handler) *Registry {
	r := &Registry{byName: make(map[string]Handler, len(handlers))}
	for _, h := range handlers {
		r.order = append(r.order, h.Name())
		r.byName[h.Name()] = h
	}
	return r
}

// Definitions devuelve las declaraciones de tools en orden estable,
// listas para mandarse al modelo.
func (r *Registry) Definitions() []llm.ToolDefinition {
	out := make([]llm.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name].Definition())
	}
	return out
}

// Knows reporta si name es una acción declarada en el registry.
func (r *Registry) Knows(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// Dispatch ejecuta una request. Guard duro: nombres fuera de las cuatro
// acciones declaradas se rechazan sin ejecutar nada.
func (r *Registry) Dispatch(ctx context.Context, req Request) Result {
	h, ok := r.byName[req.Name]
	if !ok {
		return Result{
			Name:       req.Name,
			Outcome:    fmt.Sprintf("Rejected: unknown action %q.", req.Name),
			Dispatched: false,
		}
	}

	return Result{
		Name:       req.Name,
		Outcome:    h.Execute(ctx, req.Args),
		Dispatched: true,
	}
}

// decodeArgs decodifica argumentos con DisallowUnknownFields.
// Args vacíos cuentan como objeto vacío (algunos modelos omiten el bundle).
func decodeArgs(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
