package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/hearinglist/internal/api"
	"github.com/dgallion1/hearinglist/internal/clean"
	"github.com/dgallion1/hearinglist/internal/config"
	"github.com/dgallion1/hearinglist/internal/extract"
	"github.com/dgallion1/hearinglist/internal/pipeline"
	"github.com/dgallion1/hearinglist/internal/store"
)

func main() {
	cfg, err := config.Load(config.NewFlagSet("hearinglist-server"), os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	level, _ := config.ParseLevel(cfg.LogLevel)
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	if err := cfg.ValidateServer(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg.Store.Path, log)
	if err != nil {
		log.Error("failed to open store", "path", cfg.Store.Path, "error", err)
		os.Exit(1)
	}

	vocab := clean.DefaultVocabulary()
	if cfg.Clean.Vocabulary != "" {
		vocab, err = clean.LoadVocabulary(cfg.Clean.Vocabulary)
		if err != nil {
			log.Error("failed to load vocabulary", "error", err)
			os.Exit(1)
		}
	}
	cleaner := clean.New(clean.Options{Vocabulary: vocab})

	stats := extract.NewStats(time.Hour)
	extractor := extract.New(log, extract.Options{
		RetryDelay:        cfg.Extract.RetryDelay,
		MinFirstPageChars: cfg.Extract.MinFirstPageChars,
		MarginTolerance:   cfg.Extract.MarginTolerance,
	}, stats)

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, extractor, cleaner, st, log)
	// Workers run on their own context so Stop can drain the queue after
	// the signal.
	orch.Start(context.Background())

	// Initialize HTTP server.
	srv := api.NewServer(orch, cleaner, st, stats, log, cfg)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("starting hearinglist", "port", cfg.Server.Port, "workers", cfg.Server.Workers)
	err = serve(ctx, httpServer, log,
		func() error { orch.Stop(); return nil },
		st.Close,
	)
	if err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
