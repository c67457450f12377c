package config

import (
	"strings"
	"testing"
	"time"
)

func TestFromEnv_Defaults(t *testing.T) {
	// t.Setenv limpia al terminar; DOTENV_PATH apunta a un archivo inexistente
	// para que un .env del workspace no contamine el test.
	t.Setenv("DOTENV_PATH", "testdata/none.env")
	t.Setenv("GEMINI_API_KEY", "k")

	cfg := FromEnv()

	if cfg.Addr != ":8080" {
		t.Fatalf("expected default addr :8080, got %s", cfg.Addr)
	}
	if cfg.Gemini.Model != DefaultGeminiModel {
		t.Fatalf("expected default model, got %s", cfg.Gemini.Model)
	}
	if cfg.Media.Bucket != DefaultMediaBucket {
		t.Fatalf("expected default bucket, got %s", cfg.Media.Bucket)
	}
	if cfg.Media.URLTTL != time.Hour {
		t.Fatalf("expected 1h TTL, got %s", cfg.Media.URLTTL)
	}
	if cfg.VoiceLanguage != "ja-JP" || cfg.VoiceName != "alice" {
		t.Fatalf("expected default voice ja-JP/alice, got %s/%s", cfg.VoiceLanguage, cfg.VoiceName)
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("DOTENV_PATH", "testdata/none.env")
	t.Setenv("PORT", "9999")
	t.Setenv("GEMINI_API_KEY", "k")
	t.Setenv("GEMINI_MODEL", "gemini-x")
	t.Setenv("MEDIA_URL_TTL", "30m")
	t.Setenv("TWILIO_BASE_URL", "http://localhost:4010")

	cfg := FromEnv()

	if cfg.Addr != ":9999" {
		t.Fatalf("expected :9999, got %s", cfg.Addr)
	}
	if cfg.Gemini.Model != "gemini-x" {
		t.Fatalf("expected override model, got %s", cfg.Gemini.Model)
	}
	if cfg.Media.URLTTL != 30*time.Minute {
		t.Fatalf("expected 30m TTL, got %s", cfg.Media.URLTTL)
	}
	if cfg.Twilio.BaseURL != "http://localhost:4010" {
		t.Fatalf("expected twilio base url override, got %s", cfg.Twilio.BaseURL)
	}
}

func TestValidate_MissingGeminiKey(t *testing.T) {
	t.Setenv("DOTENV_PATH", "testdata/none.env")
	t.Setenv("GEMINI_API_KEY", "")

	cfg := FromEnv()
	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected validation error without GEMINI_API_KEY")
	}
	if !strings.Contains(err.Error(), "GEMINI_API_KEY") {
		t.Fatalf("expected message naming GEMINI_API_KEY, got %v", err)
	}
}

func TestValidate_MessagingIsOptional(t *testing.T) {
	t.Setenv("DOTENV_PATH", "testdata/none.env")
	t.Setenv("GEMINI_API_KEY", "k")

	// Sin credenciales de Twilio el boot sigue: las acciones de mensajería
	// degradan a "not configured" en runtime.
	if err := FromEnv().Validate(); err != nil {
		t.Fatalf("missing messaging credentials must not fail validation, got %v", err)
	}
}
