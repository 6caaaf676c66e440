package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	app "github.com/rajnish-49/collab-whiteboard/internal/app"
	httpx "github.com/rajnish-49/collab-whiteboard/internal/http"
	store "github.com/rajnish-49/collab-whiteboard/internal/store"
	ws "github.com/rajnish-49/collab-whiteboard/internal/ws"
	"github.com/rajnish-49/collab-whiteboard/pkg/auth"
)

func main() {
	// Load local .env (dev only)
	_ = godotenv.Load()

	cfg := app.LoadConfig()
	logger := app.NewLogger(cfg.Env)

	// Cancel on SIGINT/SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Postgres connection + migrations
	pg, err := store.NewPostgres(ctx, cfg, logger)
	if err != nil {
		logger.Error("postgres connect", "err", err)
		log.Fatal(err)
	}
	defer pg.Close()
	if err := store.RunMigrations(ctx, pg, logger); err != nil {
		logger.Error("migrations", "err", err)
		log.Fatal(err)
	}

	// WebSocket hub; connections authenticate with the same secret the
	// login endpoints sign with
	hub := ws.NewHub(logger, auth.New(cfg.JWTSecret), cfg.WSSendBuffer)

	// HTTP + WS router
	router := httpx.NewRouter(cfg, logger, hub, pg)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server
	go func() {
		logger.Info("server.listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server.crash", "err", err)
			cancel()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	logger.Info("server.shutdown.start")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	_ = srv.Shutdown(shutdownCtx)

	logger.Info("server.shutdown.complete")
	_ = os.Stdout.Sync()
}
