package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultGeminiModel   = "gemini-2.5-flash"
	DefaultTwilioBaseURL = "https://api.twilio.com"
	DefaultMediaBaseURL  = "https://storage.googleapis.com"
	DefaultMediaBucket   = "paw-guardian-tokyo"
	DefaultMediaURLTTL   = time.Hour
)

// Config es la configuración completa del proceso. Se construye UNA vez en
// main y se inyecta; nadie vuelve a leer env después (config estática por
// vida del proceso).
type Config struct {
	Addr    string
	AppName string

	// Identidad cloud (proyecto + service account con la que se firman URLs).
	Project        string
	ServiceAccount string

	Gemini GeminiConfig
	Twilio TwilioConfig
	Media  MediaConfig

	// Idioma del reporte final y de la voz TTS de la llamada de emergencia.
	ReportLanguage string
	VoiceLanguage  string
	VoiceName      string

	// Si está seteada, los endpoints de la API exigen X-Operator-Key.
	OperatorKey string
}

type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Las credenciales de Twilio (SID, token, números) NO viven acá: se
// resuelven vía ports/secrets para poder cambiar de backend de secretos
// sin tocar la configuración estática.
type TwilioConfig struct {
	BaseURL string
}

type MediaConfig struct {
	Bucket     string
	BaseURL    string
	SigningKey string
	URLTTL     time.Duration
}

// FromEnv carga .env si existe y después lee las variables de entorno.
// Las variables ya seteadas en el proceso ganan sobre el archivo.
func FromEnv() Config {
	path := getenv("DOTENV_PATH", ".env")
	if _, err := os.Stat(path); err == nil {
		// Ignoramos el error de parseo: un .env roto no debe tumbar el boot,
		// las variables reales de entorno siguen mandando.
		_ = godotenv.Load(path)
	}

	return Config{
		Addr:    ":" + getenv("PORT", "8080"),
		AppName: getenv("APP_NAME", "paw-guardian"),

		Project:        os.Getenv("GOOGLE_CLOUD_PROJECT"),
		ServiceAccount: os.Getenv("SERVICE_ACCOUNT_EMAIL"),

		Gemini: GeminiConfig{
			APIKey:  os.Getenv("GEMINI_API_KEY"),
			Model:   getenv("GEMINI_MODEL", DefaultGeminiModel),
			BaseURL: getenv("GEMINI_BASE_URL", DefaultGeminiBaseURL),
		},
		Twilio: TwilioConfig{
			BaseURL: getenv("TWILIO_BASE_URL", DefaultTwilioBaseURL),
		},
		Media: MediaConfig{
			Bucket:     getenv("MEDIA_BUCKET", DefaultMediaBucket),
			BaseURL:    getenv("MEDIA_BASE_URL", DefaultMediaBaseURL),
			SigningKey: os.Getenv("MEDIA_SIGNING_KEY"),
			URLTTL:     getenvDuration("MEDIA_URL_TTL", DefaultMediaURLTTL),
		},

		ReportLanguage: getenv("REPORT_LANGUAGE", "Japanese"),
		VoiceLanguage:  getenv("VOICE_LANGUAGE", "ja-JP"),
		VoiceName:      getenv("VOICE_NAME", "alice"),

		OperatorKey: os.Getenv("OPERATOR_KEY"),
	}
}

// Validate chequea lo mínimo para arrancar. Twilio NO es requerido: su
// ausencia degrada las acciones de mensajería a "not configured".
func (c Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Gemini.APIKey) == "" {
		problems = append(problems, "GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(c.Gemini.Model) == "" {
		problems = append(problems, "GEMINI_MODEL must not be empty")
	}
	if c.Media.URLTTL <= 0 {
		problems = append(problems, "MEDIA_URL_TTL must be positive")
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: invalid %s=%q, using %s\n", key, v, fallback)
		return fallback
	}
	return d
}
