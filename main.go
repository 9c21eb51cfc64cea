package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "config.yml", "path to the YAML config file")
	tui := flag.Bool("tui", false, "run the terminal client instead of the HTTP server")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := configureLogging(cfg.Log); err != nil {
		log.Fatalf("Invalid log config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *tui); err != nil {
		stop()
		log.Fatal(err)
	}
}

func run(ctx context.Context, cfg *Config, tui bool) error {
	store, err := newBoardStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	log.WithField("driver", cfg.Storage.Driver).Info("Storage ready")
	defer func() {
		if cerr := closeStore(store); cerr != nil {
			log.WithError(cerr).Warn("Error closing storage")
		}
	}()

	if tui {
		return runTUI(ctx, store)
	}

	srv, err := NewServer(ctx, store)
	if err != nil {
		return fmt.Errorf("load boards: %w", err)
	}
	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Router(cfg.Server.StaticDir),
		ReadHeaderTimeout: 5 * time.Second,
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("Shutdown")
		}
	}()

	log.Infof("Kanban server starting on %s", cfg.Server.Addr)
	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: %w", err)
	}
	<-shutdownDone
	return nil
}
