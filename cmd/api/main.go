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

	"github.com/mockmate/webapp/internal/authclient"
	"github.com/mockmate/webapp/internal/backend"
	"github.com/mockmate/webapp/internal/config"
	"github.com/mockmate/webapp/internal/handler"
	authHandler "github.com/mockmate/webapp/internal/handler/auth"
	dashboardHandler "github.com/mockmate/webapp/internal/handler/dashboard"
	interviewHandler "github.com/mockmate/webapp/internal/handler/interview"
	pagesHandler "github.com/mockmate/webapp/internal/handler/pages"
	"github.com/mockmate/webapp/internal/narrator"
	authService "github.com/mockmate/webapp/internal/service/auth"
	dashboardService "github.com/mockmate/webapp/internal/service/dashboard"
	interviewService "github.com/mockmate/webapp/internal/service/interview"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	provider := authclient.New(cfg.Auth.URL, cfg.Auth.AnonKey)
	sessions := authService.NewStore(provider)

	backendClient := backend.New(cfg.Backend.BaseURL, cfg.Backend.Timeout)

	hub := narrator.NewHub()
	registry := interviewService.NewRegistry(backendClient, hub.For, interviewService.Options{
		TurnBudget:   cfg.Interview.TurnBudget,
		TickInterval: cfg.Interview.TickInterval,
	})

	pages, err := pagesHandler.New()
	if err != nil {
		log.Fatalf("failed to parse page templates: %v", err)
	}

	handlers := handler.Handlers{
		Auth: authHandler.New(provider, sessions, cfg.Auth.JWTSecret, func(userID string) {
			registry.Drop(userID)
			hub.CloseUser(userID)
		}),
		Dashboard: dashboardHandler.New(dashboardService.New(backendClient)),
		Interview: interviewHandler.New(registry, hub, sessions),
		Pages:     pages,
	}

	router := handler.NewRouter(sessions, handlers, cfg.Server.AllowedOrigins)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("MockMate web app listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
