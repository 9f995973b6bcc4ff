package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"examreg/internal/platform/config"
	"examreg/internal/platform/httpserver"
	"examreg/internal/platform/logger"
)

// main wires dependencies, serves the router and relays the audit outbox
// until SIGINT or SIGTERM. Business logic lives in the internal services.
func main() {
	log := logger.New()
	if err := run(log); err != nil {
		log.Error("examreg stopped", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := build(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.Close()

	srv := httpserver.New(cfg.Server.Addr, app.router)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting examreg", "addr", cfg.Server.Addr, "postgres", cfg.Database.URL != "", "kafka", len(cfg.Kafka.Brokers) > 0)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if app.relay != nil {
		g.Go(func() error {
			return app.relay.Run(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("examreg shut down")
	return nil
}
