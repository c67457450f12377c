package decision

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"paw-guardian/internal/domain/actions"
	"paw-guardian/internal/domain/observer"
	"paw-guardian/internal/platform/logger"
	"paw-guardian/internal/ports/llm"
)

// scriptedSession devuelve turnos pregrabados en orden y registra todo lo
// que el motor le manda, para inspeccionarlo después.
type scriptedSession struct {
	turns []llm.Turn
	i     int

	sendErr    error
	resultsErr error

	system  string
	tools   []llm.ToolDefinition
	sends   []string
	results [][]llm.ToolResult
}

func (s *scriptedSession) next() llm.Turn {
	if s.i < len(s.turns) {
		t := s.turns[s.i]
		s.i++
		return t
	}
	return llm.Turn{Text: "done"}
}

func (s *scriptedSession) Send(ctx context.Context, text string) (llm.Turn, error) {
	if s.sendErr != nil {
		return llm.Turn{}, s.sendErr
	}
	s.sends = append(s.sends, text)
	return s.next(), nil
}

func (s *scriptedSession) SendToolResults(ctx context.Context, results []llm.ToolResult) (llm.Turn, error) {
	if s.resultsErr != nil {
		return llm.Turn{}, s.resultsErr
	}
	s.results = append(s.results, results)
	return s.next(), nil
}

type scriptedChat struct {
	sess *scriptedSession
}

func (c *scriptedChat) StartChat(system string, tools []llm.ToolDefinition) llm.ChatSession {
	c.sess.system = system
	c.sess.tools = tools
	return c.sess
}

// stubMessenger simula el canal de mensajería (mismo rol que en los tests
// del paquete actions, redefinido acá porque no se exportan helpers de test).
type stubMessenger struct {
	configured bool
	sms        []string
	calls      []string
}

func (m *stubMessenger) IsConfigured() bool { return m.configured }

func (m *stubMessenger) SendSMS(ctx context.Context, body string) (string, error) {
	m.sms = append(m.sms, body)
	return "SM-test-1", nil
}

func (m *stubMessenger) PlaceCall(ctx context.Context, message string) (string, error) {
	m.calls = append(m.calls, message)
	return "CA-test-1", nil
}

func newTestEngine(sess *scriptedSession, m *stubMessenger) *Engine {
	reg := actions.NewRegistry(
		actions.NewSMSAlert(m),
		actions.NewEmergencyCall(m),
		actions.NewCarWindows(),
		actions.NewPlayMusic(),
	)
	return NewEngine(&scriptedChat{sess: sess}, reg, "Japanese", logger.Nop())
}

func toolCall(name, args string) llm.ToolCall {
	return llm.ToolCall{Name: name, Args: json.RawMessage(args)}
}

func decideInput(level observer.Level, temp float64, v Verdict) Input {
	return Input{
		Observation:  detected(level),
		TemperatureC: temp,
		PetContext:   corgi().Context(),
		Verdict:      v,
	}
}

func TestDecide_ExecutesRequestedRequiredAction(t *testing.T) {
	sess := &scriptedSession{turns: []llm.Turn{
		{ToolCalls: []llm.ToolCall{toolCall(actions.NameEmergencyCall, `{"message": "ラッキーが強い不安を示しています"}`)}},
		{Text: "緊急連絡を実施しました。"},
	}}
	m := &stubMessenger{configured: true}
	e := newTestEngine(sess, m)

	v := Evaluate(detected(observer.LevelHigh), 26, corgi())
	out, err := e.Decide(context.Background(), decideInput(observer.LevelHigh, 26, v))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(out.Results) != 1 || out.Results[0].Name != actions.NameEmergencyCall {
		t.Fatalf("expected a single emergency call, got %+v", out.Results)
	}
	if len(out.Rejected) != 0 {
		t.Errorf("expected no rejections, got %+v", out.Rejected)
	}
	if len(m.calls) != 1 {
		t.Fatalf("expected 1 call placed, got %d", len(m.calls))
	}
	if m.calls[0] != "ラッキーが強い不安を示しています" {
		t.Errorf("call message lost in transit: %q", m.calls[0])
	}
	if out.Report != "緊急連絡を実施しました。" {
		t.Errorf("unexpected report: %q", out.Report)
	}

	// El outcome textual vuelve al modelo tal cual lo produjo el handler.
	if len(sess.results) != 1 || len(sess.results[0]) != 1 {
		t.Fatalf("expected one tool result round, got %+v", sess.results)
	}
	if sess.results[0][0].Result != "Emergency call placed to the owner." {
		t.Errorf("tool result altered: %q", sess.results[0][0].Result)
	}
}

func TestDecide_DeclaresAllToolsAndLanguage(t *testing.T) {
	sess := &scriptedSession{turns: []llm.Turn{{Text: "安全です。"}}}
	e := newTestEngine(sess, &stubMessenger{configured: true})

	v := Evaluate(detected(observer.LevelRelax), 24, corgi())
	if _, err := e.Decide(context.Background(), decideInput(observer.LevelRelax, 24, v)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sess.tools) != 4 {
		t.Errorf("expected 4 declared tools, got %d", len(sess.tools))
	}
	if !strings.Contains(sess.system, "Japanese") {
		t.Error("system prompt should carry the report language")
	}
	if len(sess.sends) != 1 {
		t.Fatalf("expected a single user turn, got %d", len(sess.sends))
	}
	if !strings.Contains(sess.sends[0], "No intervention is permitted") {
		t.Errorf("safe verdict not reflected in status message:\n%s", sess.sends[0])
	}
	if !strings.Contains(sess.sends[0], `"anxiety_level":"Relax"`) {
		t.Errorf("observation JSON missing from status message:\n%s", sess.sends[0])
	}
}

func TestDecide_RejectsActionsOutsideTheVerdict(t *testing.T) {
	sess := &scriptedSession{turns: []llm.Turn{
		{ToolCalls: []llm.ToolCall{toolCall(actions.NameOpenCarWindows, `{"level": 100}`)}},
		{Text: "了解しました。"},
	}}
	m := &stubMessenger{configured: true}
	e := newTestEngine(sess, m)

	v := Evaluate(detected(observer.LevelRelax), 24, corgi())
	out, err := e.Decide(context.Background(), decideInput(observer.LevelRelax, 24, v))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(out.Results) != 0 {
		t.Fatalf("nothing should execute on a safe verdict, got %+v", out.Results)
	}
	if len(out.Rejected) != 1 {
		t.Fatalf("expected 1 rejection, got %+v", out.Rejected)
	}
	want := "Rejected by safety policy: open_car_windows is not part of the required intervention."
	if out.Rejected[0].Outcome != want {
		t.Errorf("rejection outcome = %q, expected %q", out.Rejected[0].Outcome, want)
	}
	if sess.results[0][0].Result != want {
		t.Errorf("rejection not fed back verbatim: %q", sess.results[0][0].Result)
	}
	if len(m.sms) != 0 || len(m.calls) != 0 {
		t.Error("messenger should never be touched on a rejection")
	}
}

func TestDecide_RejectsUnknownActions(t *testing.T) {
	sess := &scriptedSession{turns: []llm.Turn{
		{ToolCalls: []llm.ToolCall{toolCall("self_destruct", `{}`)}},
		{Text: "承知しました。"},
	}}
	e := newTestEngine(sess, &stubMessenger{configured: true})

	v := Evaluate(detected(observer.LevelRelax), 24, corgi())
	out, err := e.Decide(context.Background(), decideInput(observer.LevelRelax, 24, v))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Rejected) != 1 || !strings.Contains(out.Rejected[0].Outcome, "unknown action") {
		t.Fatalf("expected unknown-action rejection, got %+v", out.Rejected)
	}
}

func TestDecide_ExecutesMandatoryActionsHostSide(t *testing.T) {
	// El modelo ignora la lista obligatoria y responde texto sin tools.
	// El host ejecuta igual y le pide un reporte corregido.
	sess := &scriptedSession{turns: []llm.Turn{
		{Text: "様子を見ます。"},
		{Text: "緊急通話と換気を実施しました。"},
	}}
	m := &stubMessenger{configured: true}
	e := newTestEngine(sess, m)

	var seen []string
	v := Evaluate(detected(observer.LevelRelax), 40, corgi())
	in := decideInput(observer.LevelRelax, 40, v)
	in.Notify = func(res actions.Result) { seen = append(seen, res.Name) }

	out, err := e.Decide(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(out.Results) != 2 {
		t.Fatalf("expected call + windows, got %+v", out.Results)
	}
	if out.Results[0].Name != actions.NameEmergencyCall || out.Results[1].Name != actions.NameOpenCarWindows {
		t.Errorf("mandatory actions out of order: %+v", out.Results)
	}
	if len(m.calls) != 1 {
		t.Errorf("expected the default call to go out, got %d", len(m.calls))
	}
	if len(seen) != 2 {
		t.Errorf("notify should fire per result, got %v", seen)
	}

	// Segundo Send: el resumen de lo que ejecutó el host.
	if len(sess.sends) != 2 {
		t.Fatalf("expected status + mandatory summary, got %d sends", len(sess.sends))
	}
	if !strings.Contains(sess.sends[1], "Opening car windows to 100%.") {
		t.Errorf("mandatory summary missing outcomes:\n%s", sess.sends[1])
	}
	if out.Report != "緊急通話と換気を実施しました。" {
		t.Errorf("report should come from the corrected turn, got %q", out.Report)
	}
}

func TestDecide_RepeatedCallIsNotReExecuted(t *testing.T) {
	sess := &scriptedSession{turns: []llm.Turn{
		{ToolCalls: []llm.ToolCall{
			toolCall(actions.NamePlayMusic, `{"track_type": "relax"}`),
			toolCall(actions.NamePlayMusic, `{"track_type": "relax"}`),
			toolCall(actions.NameSendSMSAlert, `{"message": "寄り道せず戻ってください"}`),
		}},
		{Text: "音楽を再生し、SMSを送信しました。"},
	}}
	m := &stubMessenger{configured: true}
	e := newTestEngine(sess, m)

	v := Evaluate(detected(observer.LevelLow), 24, corgi())
	out, err := e.Decide(context.Background(), decideInput(observer.LevelLow, 24, v))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(out.Results) != 2 {
		t.Fatalf("repeat should not duplicate results: %+v", out.Results)
	}
	if len(sess.results[0]) != 3 {
		t.Fatalf("every call still gets a tool result, got %d", len(sess.results[0]))
	}
	if sess.results[0][0].Result != sess.results[0][1].Result {
		t.Error("repeated call should see the recorded outcome")
	}
	if len(m.sms) != 1 {
		t.Errorf("expected exactly 1 SMS, got %d", len(m.sms))
	}
}

func TestDecide_DegradedMessengerStillCompletes(t *testing.T) {
	sess := &scriptedSession{turns: []llm.Turn{
		{ToolCalls: []llm.ToolCall{toolCall(actions.NameEmergencyCall, `{"message": "戻ってください"}`)}},
		{Text: "通知は設定されていませんでした。"},
	}}
	m := &stubMessenger{configured: false}
	e := newTestEngine(sess, m)

	v := Evaluate(detected(observer.LevelHigh), 26, corgi())
	out, err := e.Decide(context.Background(), decideInput(observer.LevelHigh, 26, v))
	if err != nil {
		t.Fatalf("a degraded messenger must not abort the run: %v", err)
	}

	if len(out.Results) != 1 {
		t.Fatalf("expected the attempt to be recorded, got %+v", out.Results)
	}
	if out.Results[0].Outcome != "Call not placed: messaging is not configured." {
		t.Errorf("unexpected outcome: %q", out.Results[0].Outcome)
	}
	if len(m.calls) != 0 {
		t.Error("no call should reach the provider")
	}
}

func TestDecide_TransportErrorAborts(t *testing.T) {
	sess := &scriptedSession{
		sendErr: fmt.Errorf("%w: connection refused", llm.ErrTransport),
	}
	e := newTestEngine(sess, &stubMessenger{configured: true})

	v := Evaluate(detected(observer.LevelHigh), 26, corgi())
	_, err := e.Decide(context.Background(), decideInput(observer.LevelHigh, 26, v))
	if err == nil {
		t.Fatal("expected an error")
	}
	if !errors.Is(err, llm.ErrTransport) {
		t.Errorf("transport sentinel lost: %v", err)
	}
}

func TestDecide_ToolResultTransportErrorAborts(t *testing.T) {
	sess := &scriptedSession{
		turns: []llm.Turn{
			{ToolCalls: []llm.ToolCall{toolCall(actions.NameEmergencyCall, `{"message": "緊急"}`)}},
		},
		resultsErr: fmt.Errorf("%w: 503", llm.ErrTransport),
	}
	e := newTestEngine(sess, &stubMessenger{configured: true})

	v := Evaluate(detected(observer.LevelHigh), 26, corgi())
	_, err := e.Decide(context.Background(), decideInput(observer.LevelHigh, 26, v))
	if !errors.Is(err, llm.ErrTransport) {
		t.Errorf("expected transport error, got %v", err)
	}
}

func TestDecide_EmptyReportFallsBack(t *testing.T) {
	t.Run("safe", func(t *testing.T) {
		sess := &scriptedSession{turns: []llm.Turn{{Text: "   "}}}
		e := newTestEngine(sess, &stubMessenger{configured: true})

		v := Evaluate(detected(observer.LevelRelax), 24, corgi())
		out, err := e.Decide(context.Background(), decideInput(observer.LevelRelax, 24, v))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Report != fallbackSafeReport {
			t.Errorf("expected safe fallback, got %q", out.Report)
		}
	})

	t.Run("intervened", func(t *testing.T) {
		sess := &scriptedSession{turns: []llm.Turn{{Text: ""}, {Text: ""}}}
		m := &stubMessenger{configured: true}
		e := newTestEngine(sess, m)

		v := Evaluate(detected(observer.LevelHigh), 26, corgi())
		out, err := e.Decide(context.Background(), decideInput(observer.LevelHigh, 26, v))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Report != fallbackIntervenedReport {
			t.Errorf("expected intervened fallback, got %q", out.Report)
		}
		if len(m.calls) != 1 {
			t.Error("mandatory call should still have gone out")
		}
	})
}
