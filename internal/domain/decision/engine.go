package decision

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"paw-guardian/internal/domain/actions"
	"paw-guardian/internal/domain/observer"
	"paw-guardian/internal/platform/logger"
	"paw-guardian/internal/ports/llm"
)

// Máximo de rondas de tool-calling por corrida. Con cuatro acciones posibles
// y ejecución única por acción, un modelo sano nunca necesita más de dos.
const maxToolRounds = 4

// Reportes de respaldo cuando el modelo devuelve texto vacío.
const (
	fallbackSafeReport       = "Pet is safe. No action needed."
	fallbackIntervenedReport = "Safety intervention completed. The owner has been notified."
)

// Engine conduce la conversación de decisión con el modelo: manda el estado
// de la cabina, despacha las tool calls que la política permite y recoge el
// reporte final. Toda ejecución pasa por el registry; el veredicto actúa de
// whitelist.
type Engine struct {
	chat     llm.ToolChat
	registry *actions.Registry
	language string
	log      logger.Logger
}

// NewEngine arma el motor. language es el idioma del reporte final
// (ej. "Japanese").
func NewEngine(chat llm.ToolChat, registry *actions.Registry, language string, log logger.Logger) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{chat: chat, registry: registry, language: language, log: log}
}

// Input es todo lo que la etapa de decisión necesita de la corrida.
type Input struct {
	Observation  observer.Observation
	TemperatureC float64
	PetContext   string
	Verdict      Verdict

	// Notify recibe cada resultado (ejecutado o rechazado) apenas se
	// resuelve, para transcripts en vivo. Puede ser nil.
	Notify func(actions.Result)
}

// Outcome es el resultado de la etapa de decisión.
type Outcome struct {
	// Report es el texto final del modelo (o el fallback si vino vacío).
	Report string

	// Results son las acciones efectivamente ejecutadas, en orden. Incluye
	// las degradadas ("not configured"); nunca incluye rechazos.
	Results []actions.Result

	// Rejected son las tool calls que el guard bloqueó sin ejecutar.
	Rejected []actions.Result
}

// Decide corre la conversación completa de decisión.
//
// Flujo: se abre un chat con las cuatro tools declaradas, se manda el estado
// con el veredicto de la política, y se atienden las tool calls en rondas
// acotadas. Cada call se valida contra el veredicto: las que no son
// obligatorias se rechazan con un outcome textual que vuelve al modelo como
// resultado. Al agotarse las rondas, las acciones obligatorias que el modelo
// no pidió se ejecutan del lado del host y se le informan para que el
// reporte final las refleje.
//
// Cualquier error de transporte aborta la corrida entera; los errores de
// argumentos y de configuración ya vienen degradados a texto por el registry.
func (e *Engine) Decide(ctx context.Context, in Input) (Outcome, error) {
	sess := e.chat.StartChat(e.systemPrompt(), e.registry.Definitions())

	turn, err := sess.Send(ctx, e.statusMessage(in))
	if err != nil {
		return Outcome{}, fmt.Errorf("decision turn: %w", err)
	}

	var out Outcome
	executed := make(map[string]actions.Result)

	for round := 0; len(turn.ToolCalls) > 0 && round < maxToolRounds; round++ {
		results := make([]llm.ToolResult, 0, len(turn.ToolCalls))
		for _, call := range turn.ToolCalls {
			res, repeat := e.resolveCall(ctx, call, in.Verdict, executed)
			if !repeat {
				out.record(res, in.Notify)
			}
			results = append(results, llm.ToolResult{Name: call.Name, Result: res.Outcome})
		}

		turn, err = sess.SendToolResults(ctx, results)
		if err != nil {
			return Outcome{}, fmt.Errorf("tool results turn: %w", err)
		}
	}

	// Las obligatorias que el modelo no pidió se ejecutan igual: la política
	// manda. Se le cuentan al modelo para que el reporte las incluya.
	pending := e.executePending(ctx, in, executed, &out)
	if len(pending) > 0 {
		turn, err = sess.Send(ctx, mandatoryMessage(pending, e.language))
		if err != nil {
			return Outcome{}, fmt.Errorf("mandatory actions turn: %w", err)
		}
	}

	out.Report = strings.TrimSpace(turn.Text)
	if out.Report == "" {
		if in.Verdict.Safe {
			out.Report = fallbackSafeReport
		} else {
			out.Report = fallbackIntervenedReport
		}
	}

	e.log.Info("decision: stage complete", map[string]any{
		"executed": len(out.Results),
		"rejected": len(out.Rejected),
	})
	return out, nil
}

// resolveCall aplica el guard a una tool call. repeat=true significa que la
// acción ya se había ejecutado y sólo se devuelve el outcome registrado.
func (e *Engine) resolveCall(ctx context.Context, call llm.ToolCall, verdict Verdict, executed map[string]actions.Result) (actions.Result, bool) {
	if prev, ok := executed[call.Name]; ok {
		return prev, true
	}

	if !e.registry.Knows(call.Name) {
		res := actions.Result{
			Name:    call.Name,
			Outcome: fmt.Sprintf("Rejected: unknown action %q.", call.Name),
		}
		e.log.Warn("decision: unknown action requested", map[string]any{"action": call.Name})
		return res, false
	}

	if !verdict.Requires(call.Name) {
		res := actions.Result{
			Name:    call.Name,
			Outcome: fmt.Sprintf("Rejected by safety policy: %s is not part of the required intervention.", call.Name),
		}
		e.log.Warn("decision: action blocked by policy", map[string]any{"action": call.Name})
		return res, false
	}

	res := e.registry.Dispatch(ctx, actions.Request{Name: call.Name, Args: call.Args})
	executed[call.Name] = res
	return res, false
}

// executePending despacha del lado del host las obligatorias que el modelo
// nunca pidió, con los argumentos por defecto del veredicto.
func (e *Engine) executePending(ctx context.Context, in Input, executed map[string]actions.Result, out *Outcome) []actions.Result {
	var pending []actions.Result
	for _, req := range in.Verdict.Required {
		if _, ok := executed[req.Name]; ok {
			continue
		}
		e.log.Warn("decision: executing mandatory action host-side", map[string]any{"action": req.Name})
		res := e.registry.Dispatch(ctx, req)
		executed[req.Name] = res
		out.record(res, in.Notify)
		pending = append(pending, res)
	}
	return pending
}

func (o *Outcome) record(res actions.Result, notify func(actions.Result)) {
	if res.Dispatched {
		o.Results = append(o.Results, res)
	} else {
		o.Rejected = append(o.Rejected, res)
	}
	if notify != nil {
		notify(res)
	}
}

func (e *Engine) systemPrompt() string {
	return fmt.Sprintf(`You are 'PawGuardian' Autonomous AI. Your goal is safety intervention.

[CORE OPERATING PRINCIPLE]
- Safety interventions (Calling, SMS, Windows, Music) are ONLY permitted when a dog is detected inside the car ("subject_detected": true).
- The safety host evaluates the protocols below and lists the required actions in each status update. Request EXACTLY those actions with appropriate arguments; anything else will be rejected.

[Safety Protocols]
1. IF temperature > 35: CALL the owner AND OPEN the windows.
2. IF the breed is brachycephalic AND temperature > 30: CALL the owner.
3. IF anxiety is 'High': CALL the owner.
4. IF anxiety is 'Low': PLAY relaxing music AND send an SMS to the owner.
5. IF anxiety is 'Relax' AND temperature is safe: do NOT call any tools. Just report that the pet is safe.

[Constraint]
- Do NOT perform any actions if the status is 'Relax' and the temperature is within normal range.
- Be concise. Only act when necessary.

[Language Rule]
- ALL your responses (Thought and Final Report) MUST be in %[1]s.
- Even if the tool execution results are in English, summarize them in %[1]s.`, e.language)
}

func (e *Engine) statusMessage(in Input) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Current status for evaluation:\n")
	fmt.Fprintf(&b, "- Visual Data: %s\n", observationJSON(in.Observation))
	fmt.Fprintf(&b, "- Car Temp: %s°C\n", formatTemp(in.TemperatureC))
	fmt.Fprintf(&b, "- Pet Context: %s\n\n", in.PetContext)

	fmt.Fprintf(&b, "Safety evaluation (host-enforced):\n")
	if in.Verdict.Safe {
		fmt.Fprintf(&b, "- Required actions: none. No intervention is permitted.\n")
	} else {
		fmt.Fprintf(&b, "- Required actions: %s\n", strings.Join(in.Verdict.RequiredNames(), ", "))
	}
	for _, reason := range in.Verdict.Reasons {
		fmt.Fprintf(&b, "- Reason: %s\n", reason)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Task: Determine if any intervention is required.\n\n")
	if in.Verdict.Safe {
		fmt.Fprintf(&b, "Instruction:\n1. Do not use any tools.\n2. Report that the pet is safe, in %s.\n", e.language)
	} else {
		fmt.Fprintf(&b, "Instruction:\n1. Request each required action exactly once, with arguments appropriate to the situation.\n2. After all tool results arrive, summarize the outcome in %s.\n", e.language)
	}
	return b.String()
}

// mandatoryMessage informa al modelo las acciones que ejecutó el host por su
// cuenta, para que el reporte final las refleje.
func mandatoryMessage(results []actions.Result, language string) string {
	var b strings.Builder
	b.WriteString("The safety host executed the remaining mandatory actions:\n")
	for _, res := range results {
		fmt.Fprintf(&b, "- %s: %s\n", res.Name, res.Outcome)
	}
	fmt.Fprintf(&b, "\nWrite the final report in %s reflecting these outcomes.", language)
	return b.String()
}

func observationJSON(obs observer.Observation) string {
	raw, err := json.Marshal(obs)
	if err != nil {
		return "{}"
	}
	return string(raw)
}
