package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/prasanna1256/HiringScout-An-AI-Hiring-Assistant/internal/account"
	"github.com/prasanna1256/HiringScout-An-AI-Hiring-Assistant/internal/auth"
	"github.com/prasanna1256/HiringScout-An-AI-Hiring-Assistant/internal/config"
	"github.com/prasanna1256/HiringScout-An-AI-Hiring-Assistant/internal/genai"
	"github.com/prasanna1256/HiringScout-An-AI-Hiring-Assistant/internal/httpapi"
	"github.com/prasanna1256/HiringScout-An-AI-Hiring-Assistant/internal/interview"
	"github.com/prasanna1256/HiringScout-An-AI-Hiring-Assistant/internal/logging"
	"github.com/prasanna1256/HiringScout-An-AI-Hiring-Assistant/internal/observability"
	"github.com/prasanna1256/HiringScout-An-AI-Hiring-Assistant/internal/session"
)

func main() {
	// Local development reads secrets from a .env file; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := logging.Default()
	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	ctx := context.Background()
	store, err := account.NewStore(ctx, cfg.DatabaseURL, cfg.AccountsFile, auth.Hash, cfg.HistoryLimit, logger)
	if err != nil {
		log.Fatalf("account store init failed: %v", err)
	}
	defer store.Close()
	if err := store.Initialize(ctx); err != nil {
		log.Fatalf("account store init failed: %v", err)
	}

	client, err := genai.NewClient(genai.Config{
		Mode:    cfg.AdapterMode,
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		BaseURL: cfg.GeminiHTTPURL,
	})
	if err != nil {
		log.Fatalf("completion client init failed: %v", err)
	}

	secret := cfg.JWTSecret
	if secret == "" {
		secret = "hiringscout-dev-secret"
		log.Printf("APP_JWT_SECRET is not set; using an insecure development secret")
	}
	tokens, err := auth.NewTokenIssuer(secret, cfg.TokenTTL)
	if err != nil {
		log.Fatalf("token issuer init failed: %v", err)
	}

	sessions := session.NewManager(cfg.SessionInactivityTimeout)
	sessions.SetEndHook(func(s *session.Session) {
		metrics.SessionEvents.WithLabelValues("ended").Inc()
		metrics.ActiveSessions.Set(float64(sessions.ActiveCount()))

		saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := store.SaveChatHistory(saveCtx, s.Email(), s.Transcript); err != nil {
			metrics.HistorySaves.WithLabelValues("error").Inc()
			log.Printf("chat history save failed for %s: %v", s.Email(), err)
			return
		}
		metrics.HistorySaves.WithLabelValues("ok").Inc()
	})

	authn := auth.NewAuthenticator(store, logger)
	orchestrator := interview.NewOrchestrator(sessions, client, metrics, logger, cfg.StreamDelay)

	api := httpapi.New(cfg, store, authn, tokens, sessions, orchestrator, metrics, logger)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()
	sessions.StartJanitor(runCtx, 5*time.Second)

	go func() {
		log.Printf("server listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	runCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	log.Printf("shutdown complete")
}
