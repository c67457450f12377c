package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"paw-guardian/internal/adapters/llm/gemini"
	"paw-guardian/internal/adapters/media/signer"
	"paw-guardian/internal/adapters/messaging/twilio"
	"paw-guardian/internal/adapters/storage/memory"
	"paw-guardian/internal/domain/actions"
	"paw-guardian/internal/domain/decision"
	"paw-guardian/internal/domain/observer"
	"paw-guardian/internal/domain/profiles"
	"paw-guardian/internal/domain/runs"
	"paw-guardian/internal/domain/scenarios"
	"paw-guardian/internal/platform/logger"
	"paw-guardian/internal/router"
	"paw-guardian/internal/stream"
)

// --- stub del backend de Gemini ---

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text     string `json:"text,omitempty"`
	FileData *struct {
		FileURI string `json:"fileUri"`
	} `json:"fileData,omitempty"`
	FunctionResponse *struct {
		Name     string         `json:"name"`
		Response map[string]any `json:"response"`
	} `json:"functionResponse,omitempty"`
}

func geminiTextReply(text string) string {
	b, _ := json.Marshal(map[string]any{
		"candidates": []any{map[string]any{
			"content": map[string]any{
				"role":  "model",
				"parts": []any{map[string]any{"text": text}},
			},
		}},
	})
	return string(b)
}

func geminiCallReply(name string, args map[string]any) string {
	b, _ := json.Marshal(map[string]any{
		"candidates": []any{map[string]any{
			"content": map[string]any{
				"role": "model",
				"parts": []any{map[string]any{
					"functionCall": map[string]any{"name": name, "args": args},
				}},
			},
		}},
	})
	return string(b)
}

// stubGemini simula la conversación completa de una corrida High Anxiety:
// clasificación del video, un function call de llamada de emergencia y el
// reporte final tras el function response.
func stubGemini(t *testing.T, observationJSON string) (*httptest.Server, *[]string) {
	t.Helper()
	videoURIs := &[]string{}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Contents []geminiContent `json:"contents"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("gemini stub: decode request: %v", err)
		}
		if len(req.Contents) == 0 {
			t.Error("gemini stub: request without contents")
		}

		w.Header().Set("Content-Type", "application/json")

		last := req.Contents[len(req.Contents)-1]
		switch {
		case len(req.Contents) == 1 && last.Parts[0].FileData != nil:
			*videoURIs = append(*videoURIs, last.Parts[0].FileData.FileURI)
			io.WriteString(w, geminiTextReply(observationJSON))
		case last.Parts[0].FunctionResponse != nil:
			io.WriteString(w, geminiTextReply("飼い主に緊急連絡を行いました。ペットの様子を確認してください。"))
		default:
			io.WriteString(w, geminiCallReply("make_emergency_call",
				map[string]any{"message": "Lucky is showing high anxiety"}))
		}
	})), videoURIs
}

// --- stub del backend de Twilio ---

type twilioCall struct {
	path string
	form map[string]string
}

func stubTwilio(t *testing.T) (*httptest.Server, *[]twilioCall) {
	t.Helper()
	calls := &[]twilioCall{}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, pass, ok := r.BasicAuth(); !ok || user != "AC123" || pass != "tok" {
			t.Errorf("twilio stub: bad basic auth %s/%s", user, pass)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("twilio stub: parse form: %v", err)
		}
		form := map[string]string{}
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}
		*calls = append(*calls, twilioCall{path: r.URL.Path, form: form})

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"sid":"CA123"}`)
	})), calls
}

// newServer arma el stack completo contra los backends stub, igual que main
// pero con repos y logger de test.
func newServer(t *testing.T, geminiURL, twilioURL, operatorKey string) *httptest.Server {
	t.Helper()

	messenger := twilio.NewMessenger(twilio.Config{
		AccountSID: "AC123",
		AuthToken:  "tok",
		VoiceFrom:  "+15550001111",
		SMSFrom:    "+15550002222",
		To:         "+819012345678",
		BaseURL:    twilioURL,
	})
	model := gemini.NewClient(gemini.Config{
		APIKey:  "test-key",
		Model:   "gemini-2.5-flash",
		BaseURL: geminiURL,
	})
	media := signer.New(signer.Config{BaseURL: "https://cdn.example.com"})

	log := logger.Nop()
	hub := stream.NewHub(log)
	dispatcher := stream.NewDispatcher(log, hub)

	profilesSvc := profiles.NewService(memory.NewProfileRepo())
	scenariosSvc := scenarios.NewService("paw-guardian-tokyo", media, log)
	observerSvc := observer.NewService(model, "Japanese", log)

	registry := actions.NewRegistry(
		actions.NewSMSAlert(messenger),
		actions.NewEmergencyCall(messenger),
		actions.NewCarWindows(),
		actions.NewPlayMusic(),
	)
	engine := decision.NewEngine(model, registry, "Japanese", log)

	runsSvc := runs.NewService(runs.Options{
		Repo:      memory.NewRunRepo(),
		Profiles:  profilesSvc,
		Scenarios: scenariosSvc,
		Observer:  observerSvc,
		Engine:    engine,
		Publisher: dispatcher,
		Log:       log,
	})

	return httptest.NewServer(router.New(router.Options{
		Log:         log,
		OperatorKey: operatorKey,
		Profiles:    profilesSvc,
		Scenarios:   scenariosSvc,
		Runs:        runsSvc,
		Hub:         hub,
	}))
}

func TestHTTP_EndToEnd_HighAnxietyRun(t *testing.T) {
	observation := `{"subject_detected": true, "anxiety_level": "High", ` +
		`"observations": "panting and pacing nonstop", "stress_signs": ["panting", "pacing"]}`
	geminiSrv, videoURIs := stubGemini(t, observation)
	defer geminiSrv.Close()
	twilioSrv, twilioCalls := stubTwilio(t)
	defer twilioSrv.Close()

	ts := newServer(t, geminiSrv.URL, twilioSrv.URL, "")
	defer ts.Close()

	// 1) Crear el perfil de la mascota
	profileID := createProfile(t, ts.URL, map[string]any{
		"name":      "Lucky",
		"breed":     "Corgi",
		"age_years": 3,
		"weight_kg": 11.5,
	})

	// 2) El catálogo de escenarios viene con playback URL resuelta
	{
		st, body := doReq(t, ts.URL, "GET", "/scenarios", "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list scenarios, got %d body=%s", st, body)
		}
		var list []struct {
			ID          string `json:"id"`
			PlaybackURL string `json:"playback_url"`
		}
		mustUnmarshal(t, body, &list)
		if len(list) != 4 {
			t.Fatalf("expected 4 scenarios, got %d", len(list))
		}
		found := false
		for _, sc := range list {
			if sc.ID == "high_anxiety" {
				found = true
				if sc.PlaybackURL != "https://cdn.example.com/paw-guardian-tokyo/High%20Anxiety.mp4" {
					t.Errorf("playback url = %q", sc.PlaybackURL)
				}
			}
		}
		if !found {
			t.Fatal("high_anxiety scenario missing from catalog")
		}
	}

	// 3) Ejecutar la corrida contra el escenario de ansiedad alta
	var run struct {
		ID      string `json:"id"`
		State   string `json:"state"`
		Outcome string `json:"outcome"`
		Actions []struct {
			Name       string `json:"name"`
			Outcome    string `json:"outcome"`
			Dispatched bool   `json:"dispatched"`
		} `json:"actions"`
		Observation *struct {
			AnxietyLevel string `json:"anxiety_level"`
		} `json:"observation"`
		Report string `json:"report"`
	}
	{
		st, body := doReq(t, ts.URL, "POST", "/runs", "", map[string]any{
			"profile_id":  profileID,
			"scenario_id": "high_anxiety",
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 run, got %d body=%s", st, body)
		}
		mustUnmarshal(t, body, &run)

		if run.State != "done" || run.Outcome != "intervened" {
			t.Fatalf("run finished as %s/%s", run.State, run.Outcome)
		}
		if run.Observation == nil || run.Observation.AnxietyLevel != "High" {
			t.Errorf("observation = %+v", run.Observation)
		}
		if len(run.Actions) != 1 || run.Actions[0].Name != "make_emergency_call" {
			t.Fatalf("actions = %+v", run.Actions)
		}
		if !run.Actions[0].Dispatched || run.Actions[0].Outcome != "Emergency call placed to the owner." {
			t.Errorf("call action = %+v", run.Actions[0])
		}
		if !strings.Contains(run.Report, "飼い主") {
			t.Errorf("report = %q", run.Report)
		}
	}

	// 4) El observer miró el video del escenario (la URI gs:// va directo
	// al modelo; la URL firmada es solo para el preview del operador)
	if len(*videoURIs) != 1 || (*videoURIs)[0] != "gs://paw-guardian-tokyo/High Anxiety.mp4" {
		t.Errorf("classified video uris = %v", *videoURIs)
	}

	// 5) Twilio recibió exactamente una llamada con TwiML en japonés
	if len(*twilioCalls) != 1 {
		t.Fatalf("twilio calls = %d, want 1", len(*twilioCalls))
	}
	call := (*twilioCalls)[0]
	if call.path != "/2010-04-01/Accounts/AC123/Calls.json" {
		t.Errorf("twilio path = %q", call.path)
	}
	if !strings.Contains(call.form["Twiml"], `<Say language="ja-JP"`) {
		t.Errorf("twiml = %q", call.form["Twiml"])
	}

	// 6) La corrida queda consultable con su transcript ordenado
	{
		st, body := doReq(t, ts.URL, "GET", "/runs/"+run.ID, "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 get run, got %d body=%s", st, body)
		}

		st, body = doReq(t, ts.URL, "GET", "/runs/"+run.ID+"/transcript", "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 transcript, got %d body=%s", st, body)
		}
		var entries []struct {
			Seq  int    `json:"seq"`
			Kind string `json:"kind"`
		}
		mustUnmarshal(t, body, &entries)
		if len(entries) == 0 {
			t.Fatal("empty transcript")
		}
		kinds := map[string]bool{}
		for i, e := range entries {
			if e.Seq != i+1 {
				t.Errorf("entry %d has seq %d", i, e.Seq)
			}
			kinds[e.Kind] = true
		}
		for _, want := range []string{"state", "observation", "action", "report"} {
			if !kinds[want] {
				t.Errorf("transcript missing %s entry", want)
			}
		}
	}

	// 7) Listado de corridas y health
	{
		st, body := doReq(t, ts.URL, "GET", "/runs", "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list runs, got %d", st)
		}
		var list []json.RawMessage
		mustUnmarshal(t, body, &list)
		if len(list) != 1 {
			t.Errorf("runs listed = %d", len(list))
		}

		st, _ = doReq(t, ts.URL, "GET", "/health", "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 health, got %d", st)
		}
	}
}

func TestHTTP_OperatorKeyGatesTheAPI(t *testing.T) {
	geminiSrv, _ := stubGemini(t, `{"subject_detected": false}`)
	defer geminiSrv.Close()
	twilioSrv, _ := stubTwilio(t)
	defer twilioSrv.Close()

	ts := newServer(t, geminiSrv.URL, twilioSrv.URL, "s3cret")
	defer ts.Close()

	// Sin key: 401 en la API, health sigue abierto.
	if st, _ := doReq(t, ts.URL, "GET", "/runs", "", nil); st != http.StatusUnauthorized {
		t.Fatalf("expected 401 without operator key, got %d", st)
	}
	if st, _ := doReq(t, ts.URL, "GET", "/health", "", nil); st != http.StatusOK {
		t.Fatalf("health must stay open, got %d", st)
	}

	// Con key: pasa.
	if st, body := doReq(t, ts.URL, "GET", "/runs", "s3cret", nil); st != http.StatusOK {
		t.Fatalf("expected 200 with operator key, got %d body=%s", st, body)
	}
}

func TestHTTP_SwaggerSpecIsServed(t *testing.T) {
	geminiSrv, _ := stubGemini(t, `{"subject_detected": false}`)
	defer geminiSrv.Close()
	twilioSrv, _ := stubTwilio(t)
	defer twilioSrv.Close()

	ts := newServer(t, geminiSrv.URL, twilioSrv.URL, "")
	defer ts.Close()

	st, body := doReq(t, ts.URL, "GET", "/swagger/doc.json", "", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 swagger spec, got %d", st)
	}
	if !strings.Contains(string(body), "PawGuardian API") {
		t.Errorf("swagger spec missing title, body=%s", truncate(body, 200))
	}
}

func createProfile(t *testing.T, baseURL string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/profiles", "", payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create profile, got %d body=%s", st, body)
	}

	var resp struct {
		ID string `json:"id"`
	}
	mustUnmarshal(t, body, &resp)
	if resp.ID == "" {
		t.Fatalf("create profile: missing id body=%s", body)
	}
	return resp.ID
}

func doReq(t *testing.T, baseURL, method, path, operatorKey string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if operatorKey != "" {
		req.Header.Set("X-Operator-Key", operatorKey)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}

func mustUnmarshal(t *testing.T, body []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("unmarshal %s: %v", truncate(body, 200), err)
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
