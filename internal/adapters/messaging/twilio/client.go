// Package twilio implementa el port de mensajería (SMS + llamada de voz
// con TTS) contra la API REST 2010-04-01 de Twilio.
package twilio

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"paw-guardian/internal/platform/httpclient"
	"paw-guardian/internal/ports/messaging"
)

const defaultTimeout = 15 * time.Second

// Config del cliente. Las credenciales y los números llegan desde el
// secrets source en main; acá solo se normalizan.
type Config struct {
	AccountSID string
	AuthToken  string
	VoiceFrom  string // número saliente de llamadas
	SMSFrom    string // número saliente de SMS
	To         string // teléfono del dueño

	BaseURL string // opcional; default https://api.twilio.com
	Timeout time.Duration

	// Voz TTS de la llamada de emergencia. Defaults ja-JP/alice.
	VoiceLanguage string
	VoiceName     string
}

type Messenger struct {
	accountSID string
	authToken  string
	voiceFrom  string
	smsFrom    string
	to         string

	voiceLanguage string
	voiceName     string

	baseURL string
	http    *httpclient.Client
}

func NewMessenger(cfg Config) *Messenger {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = "https://api.twilio.com"
	}
	lang := strings.TrimSpace(cfg.VoiceLanguage)
	if lang == "" {
		lang = "ja-JP"
	}
	voice := strings.TrimSpace(cfg.VoiceName)
	if voice == "" {
		voice = "alice"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Messenger{
		accountSID:    strings.TrimSpace(cfg.AccountSID),
		authToken:     strings.TrimSpace(cfg.AuthToken),
		voiceFrom:     strings.TrimSpace(cfg.VoiceFrom),
		smsFrom:       strings.TrimSpace(cfg.SMSFrom),
		to:            strings.TrimSpace(cfg.To),
		voiceLanguage: lang,
		voiceName:     voice,
		baseURL:       strings.TrimRight(baseURL, "/"),
		http:          httpclient.New(timeout),
	}
}

// IsConfigured es true solo con el set completo: credenciales, ambos
// números salientes y el teléfono del dueño.
func (m *Messenger) IsConfigured() bool {
	return m != nil &&
		m.accountSID != "" && m.authToken != "" &&
		m.voiceFrom != "" && m.smsFrom != "" && m.to != ""
}

// SendSMS manda el cuerpo al dueño y devuelve el SID del mensaje.
func (m *Messenger) SendSMS(ctx context.Context, body string) (string, error) {
	if m == nil || m.accountSID == "" || m.authToken == "" || m.smsFrom == "" || m.to == "" {
		return "", messaging.ErrNotConfigured
	}

	form := url.Values{}
	form.Set("To", m.to)
	form.Set("From", m.smsFrom)
	form.Set("Body", body)

	return m.post(ctx, "Messages", form)
}

// PlaceCall inicia una llamada que lee el mensaje por TTS y devuelve el
// SID de la llamada.
func (m *Messenger) PlaceCall(ctx context.Context, message string) (string, error) {
	if m == nil || m.accountSID == "" || m.authToken == "" || m.voiceFrom == "" || m.to == "" {
		return "", messaging.ErrNotConfigured
	}

	form := url.Values{}
	form.Set("To", m.to)
	form.Set("From", m.voiceFrom)
	form.Set("Twiml", m.sayTwiML(message))

	return m.post(ctx, "Calls", form)
}

// post hace el POST form-encoded al recurso (Messages/Calls) y extrae el
// SID de la respuesta. Los errores de la API se devuelven con el mensaje
// del proveedor para que el outcome de la acción sea legible.
func (m *Messenger) post(ctx context.Context, resource string, form url.Values) (string, error) {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/%s.json", m.baseURL, m.accountSID, resource)

	var out struct {
		SID string `json:"sid"`
	}
	err := m.http.DoForm(ctx, endpoint, m.accountSID, m.authToken, form, &out)
	if err != nil {
		var httpErr *httpclient.HTTPError
		if errors.As(err, &httpErr) {
			return "", fmt.Errorf("twilio: %s", apiErrorMessage(httpErr))
		}
		return "", fmt.Errorf("twilio: %w", err)
	}
	return out.SID, nil
}

// sayTwiML arma el documento TwiML de la llamada. El mensaje se escapa
// como texto XML; viene de un modelo y puede traer cualquier cosa.
func (m *Messenger) sayTwiML(message string) string {
	var escaped bytes.Buffer
	_ = xml.EscapeText(&escaped, []byte(message))
	return fmt.Sprintf(`<Response><Say language=%q voice=%q>%s</Say></Response>`,
		m.voiceLanguage, m.voiceName, escaped.String())
}

// apiErrorMessage saca el message del body de error de Twilio
// ({"code":...,"message":...}); si no parsea, devuelve el error crudo.
func apiErrorMessage(httpErr *httpclient.HTTPError) string {
	var apiErr struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if json.Unmarshal([]byte(httpErr.Body), &apiErr) == nil && apiErr.Message != "" {
		return apiErr.Message
	}
	return httpErr.Error()
}
