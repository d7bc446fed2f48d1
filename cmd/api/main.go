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

	"parttimepal-backend/internal/bootstrap"
	"parttimepal-backend/internal/shared/config"
	"parttimepal-backend/internal/shared/server"
	"parttimepal-backend/internal/shared/telemetry"
)

const (
	sweepInterval   = time.Minute
	limiterIdle     = 10 * time.Minute
	shutdownTimeout = 15 * time.Second
)

func main() {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              server.Addr(cfg.Port),
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go sweep(ctx, app)

	go func() {
		log.Printf("Starting API server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	app.Assistant.Wait()
}

func sweep(ctx context.Context, app *bootstrap.App) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sessions := app.Assistant.SweepSessions()
			buckets := app.RateLimiter.Sweep(limiterIdle)
			if sessions > 0 || buckets > 0 {
				telemetry.Info("sweep", map[string]any{"sessions": sessions, "rate_buckets": buckets})
			}
		}
	}
}
