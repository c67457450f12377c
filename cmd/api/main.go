package main

import (
	"log"
	"net/http"
	"time"

	"paw-guardian/internal/adapters/llm/gemini"
	"paw-guardian/internal/adapters/media/signer"
	"paw-guardian/internal/adapters/messaging/twilio"
	"paw-guardian/internal/adapters/secrets/env"
	"paw-guardian/internal/adapters/storage/memory"
	"paw-guardian/internal/config"
	"paw-guardian/internal/domain/actions"
	"paw-guardian/internal/domain/decision"
	"paw-guardian/internal/domain/observer"
	"paw-guardian/internal/domain/profiles"
	"paw-guardian/internal/domain/runs"
	"paw-guardian/internal/domain/scenarios"
	"paw-guardian/internal/platform/logger"
	"paw-guardian/internal/ports/secrets"
	"paw-guardian/internal/router"
	"paw-guardian/internal/stream"
)

// @title PawGuardian API
// @version 1.0
// @description Demo de monitoreo de mascotas en vehículos: pipeline observar-decidir con acciones de seguridad guardadas.
// @BasePath /
func main() {
	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logg := logger.NewFromEnv()

	// Adapters externos. Twilio se construye siempre: sin credenciales
	// degrada cada acción a "not configured" en vez de impedir el boot.
	sec := env.New()
	messenger := twilio.NewMessenger(twilio.Config{
		AccountSID:    sec.Get(secrets.TwilioAccountSID),
		AuthToken:     sec.Get(secrets.TwilioAuthToken),
		VoiceFrom:     sec.Get(secrets.TwilioPhone),
		SMSFrom:       sec.Get(secrets.TwilioSMSNumber),
		To:            sec.Get(secrets.OwnerPhone),
		BaseURL:       cfg.Twilio.BaseURL,
		VoiceLanguage: cfg.VoiceLanguage,
		VoiceName:     cfg.VoiceName,
	})
	if !messenger.IsConfigured() {
		logg.Warn("twilio secrets incomplete; sms and call actions will degrade", nil)
	}

	model := gemini.NewClient(gemini.Config{
		APIKey:  cfg.Gemini.APIKey,
		Model:   cfg.Gemini.Model,
		BaseURL: cfg.Gemini.BaseURL,
	})

	media := signer.NewCache(signer.New(signer.Config{
		BaseURL: cfg.Media.BaseURL,
		KeyID:   cfg.ServiceAccount,
		Key:     []byte(cfg.Media.SigningKey),
		TTL:     cfg.Media.URLTTL,
	}), cfg.Media.URLTTL)

	// Repos in-memory: el estado vive lo que vive el proceso.
	profileRepo := memory.NewProfileRepo()
	runRepo := memory.NewRunRepo()

	// Feed en vivo del transcript: logging + websocket.
	hub := stream.NewHub(logg)
	dispatcher := stream.NewDispatcher(logg, stream.NewLogSubscriber(logg), hub)

	// Services por módulo.
	profilesSvc := profiles.NewService(profileRepo)
	scenariosSvc := scenarios.NewService(cfg.Media.Bucket, media, logg)
	observerSvc := observer.NewService(model, cfg.ReportLanguage, logg)

	registry := actions.NewRegistry(
		actions.NewSMSAlert(messenger),
		actions.NewEmergencyCall(messenger),
		actions.NewCarWindows(),
		actions.NewPlayMusic(),
	)
	engine := decision.NewEngine(model, registry, cfg.ReportLanguage, logg)

	runsSvc := runs.NewService(runs.Options{
		Repo:      runRepo,
		Profiles:  profilesSvc,
		Scenarios: scenariosSvc,
		Observer:  observerSvc,
		Engine:    engine,
		Publisher: dispatcher,
		Log:       logg,
	})

	r := router.New(router.Options{
		Log:         logg,
		OperatorKey: cfg.OperatorKey,
		Profiles:    profilesSvc,
		Scenarios:   scenariosSvc,
		Runs:        runsSvc,
		Hub:         hub,
	})

	srv := &http.Server{
		Addr:        cfg.Addr,
		Handler:     r,
		ReadTimeout: 5 * time.Second,
		// POST /runs es sincrónico y encadena varias llamadas al modelo
		// (clasificación de video + turnos de chat); el write timeout
		// tiene que cubrir la corrida completa.
		WriteTimeout: 3 * time.Minute,
	}

	log.Printf("starting server on %s", cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
