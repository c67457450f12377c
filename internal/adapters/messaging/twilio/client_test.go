package twilio

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"paw-guardian/internal/ports/messaging"
)

type capturedPost struct {
	path string
	user string
	pass string
	form url.Values
}

func captureServer(t *testing.T, status int, reply string) (*httptest.Server, *[]capturedPost) {
	t.Helper()
	posts := &[]capturedPost{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		user, pass, _ := r.BasicAuth()
		*posts = append(*posts, capturedPost{path: r.URL.Path, user: user, pass: pass, form: r.PostForm})

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(reply))
	}))
	return srv, posts
}

func newTestMessenger(baseURL string) *Messenger {
	return NewMessenger(Config{
		AccountSID: "AC123",
		AuthToken:  "secret",
		VoiceFrom:  "+15550001111",
		SMSFrom:    "+15550002222",
		To:         "+819012345678",
		BaseURL:    baseURL,
	})
}

func TestSendSMS_PostsFormWithBasicAuth(t *testing.T) {
	srv, posts := captureServer(t, http.StatusCreated, `{"sid":"SM123"}`)
	defer srv.Close()

	sid, err := newTestMessenger(srv.URL).SendSMS(context.Background(), "Lucky is anxious.")
	if err != nil {
		t.Fatalf("SendSMS: %v", err)
	}
	if sid != "SM123" {
		t.Errorf("sid = %q", sid)
	}

	if len(*posts) != 1 {
		t.Fatalf("expected 1 post, got %d", len(*posts))
	}
	post := (*posts)[0]
	if post.path != "/2010-04-01/Accounts/AC123/Messages.json" {
		t.Errorf("path = %q", post.path)
	}
	if post.user != "AC123" || post.pass != "secret" {
		t.Errorf("basic auth = %s/%s", post.user, post.pass)
	}
	if post.form.Get("To") != "+819012345678" {
		t.Errorf("To = %q", post.form.Get("To"))
	}
	if post.form.Get("From") != "+15550002222" {
		t.Errorf("From = %q", post.form.Get("From"))
	}
	if post.form.Get("Body") != "Lucky is anxious." {
		t.Errorf("Body = %q", post.form.Get("Body"))
	}
}

func TestPlaceCall_BuildsEscapedTwiML(t *testing.T) {
	srv, posts := captureServer(t, http.StatusCreated, `{"sid":"CA123"}`)
	defer srv.Close()

	sid, err := newTestMessenger(srv.URL).PlaceCall(context.Background(), "Lucky <High> & restless")
	if err != nil {
		t.Fatalf("PlaceCall: %v", err)
	}
	if sid != "CA123" {
		t.Errorf("sid = %q", sid)
	}

	post := (*posts)[0]
	if post.path != "/2010-04-01/Accounts/AC123/Calls.json" {
		t.Errorf("path = %q", post.path)
	}
	if post.form.Get("From") != "+15550001111" {
		t.Errorf("From = %q", post.form.Get("From"))
	}

	twiml := post.form.Get("Twiml")
	want := `<Response><Say language="ja-JP" voice="alice">Lucky &lt;High&gt; &amp; restless</Say></Response>`
	if twiml != want {
		t.Errorf("twiml = %q, want %q", twiml, want)
	}
}

func TestPost_SurfacesProviderErrorMessage(t *testing.T) {
	srv, _ := captureServer(t, http.StatusBadRequest,
		`{"code":21211,"message":"The 'To' number is not a valid phone number."}`)
	defer srv.Close()

	_, err := newTestMessenger(srv.URL).SendSMS(context.Background(), "hi")
	if err == nil {
		t.Fatal("expected provider error")
	}
	if !strings.Contains(err.Error(), "not a valid phone number") {
		t.Errorf("error should carry the provider message, got %v", err)
	}
}

func TestMessenger_NotConfigured(t *testing.T) {
	m := NewMessenger(Config{})

	if m.IsConfigured() {
		t.Error("empty config must not report configured")
	}
	if _, err := m.SendSMS(context.Background(), "hi"); !errors.Is(err, messaging.ErrNotConfigured) {
		t.Errorf("SendSMS err = %v", err)
	}
	if _, err := m.PlaceCall(context.Background(), "hi"); !errors.Is(err, messaging.ErrNotConfigured) {
		t.Errorf("PlaceCall err = %v", err)
	}
}

func TestMessenger_PartialConfigDegradesPerChannel(t *testing.T) {
	srv, _ := captureServer(t, http.StatusCreated, `{"sid":"SM9"}`)
	defer srv.Close()

	// Sin número de voz: el SMS sale, la llamada degrada.
	m := NewMessenger(Config{
		AccountSID: "AC123",
		AuthToken:  "secret",
		SMSFrom:    "+15550002222",
		To:         "+819012345678",
		BaseURL:    srv.URL,
	})

	if m.IsConfigured() {
		t.Error("partial config must not report fully configured")
	}
	if _, err := m.SendSMS(context.Background(), "hi"); err != nil {
		t.Errorf("SendSMS should work with sms config, got %v", err)
	}
	if _, err := m.PlaceCall(context.Background(), "hi"); !errors.Is(err, messaging.ErrNotConfigured) {
		t.Errorf("PlaceCall err = %v", err)
	}
}
