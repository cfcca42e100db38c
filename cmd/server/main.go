// Command server runs the marginalia notes API.
//
// Usage:
//
//	server                 # real OIDC verification and OpenAI assist
//	server --no-oidc       # accept static test tokens
//	server --no-ai         # deterministic mock assist provider
//	server --test          # both mocks, for local development
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/marginalia-app/marginalia/internal/api"
	"github.com/marginalia-app/marginalia/internal/assist"
	"github.com/marginalia-app/marginalia/internal/auth"
	"github.com/marginalia-app/marginalia/internal/config"
	"github.com/marginalia-app/marginalia/internal/notes"
	"github.com/marginalia-app/marginalia/internal/obs"
	"github.com/marginalia-app/marginalia/internal/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	obs.Init()
	logger := obs.Pkg("main")

	noOIDC, noAI, addr := config.ParseFlags()
	cfg := config.MustLoadConfig(noOIDC, noAI, addr)
	cfg.PrintStartupSummary()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := store.Open(cfg.DatabasePath, cfg.DatabaseKey)
	if err != nil {
		logger.Error("store_open_failed", "path", cfg.DatabasePath, "error", err.Error())
		os.Exit(1)
	}
	defer db.Close()

	var verifier auth.Verifier
	if cfg.NoOIDC {
		verifier = auth.NewStaticVerifier()
	} else {
		verifier, err = auth.NewOIDCVerifier(ctx, cfg.OIDCIssuer, cfg.OIDCClientID)
		if err != nil {
			logger.Error("oidc_discovery_failed", "issuer", cfg.OIDCIssuer, "error", err.Error())
			os.Exit(1)
		}
	}

	var provider assist.Provider
	if cfg.AIProvider == config.AIProviderMock {
		provider = assist.NewMockProvider()
	} else {
		provider = assist.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.AIModel)
	}

	handler := api.NewHandler(notes.NewService(db), assist.NewService(provider), db)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, auth.NewMiddleware(verifier), cfg.AIRequireAuth)

	chain := obs.RequestContextMiddleware(
		obs.AccessLogMiddleware("api",
			api.CORSMiddleware(cfg.AllowedOrigins, mux),
		),
	)

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           chain,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server_listening", "addr", cfg.ListenAddr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown_signal_received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server_failed", "error", err.Error())
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown_incomplete", "error", err.Error())
	}
	logger.Info("server_stopped")
}
