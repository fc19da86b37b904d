// Periodic batch job: fetch the Quiver WallStreetBets dataset and merge it
// into the per-ticker history and per-date universe CSVs.
//
// Usage:
//
//	go run cmd/wsb-data/main.go
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quiverwsb/internal/config"
	"quiverwsb/internal/gather/wsb"
	"quiverwsb/internal/quiver"
	"quiverwsb/internal/resolve"
	"quiverwsb/internal/store"
	"quiverwsb/internal/util"
)

func main() {
	cfgPath := "config/quiverwsb.yaml"
	if p := os.Getenv("QUIVERWSB_CONFIG"); p != "" {
		cfgPath = p
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Dual logger: stdout + /tmp log file.
	logFileName := fmt.Sprintf("/tmp/wsb-data-%s.log", time.Now().Format("2006-01-02"))
	logFile, err := os.Create(logFileName)
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()

	w := io.MultiWriter(os.Stdout, logFile)
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	gate := util.NewRateGate(cfg.Gather.WSB.RateLimit, time.Duration(cfg.Gather.WSB.RateWindowMS)*time.Millisecond)
	client := quiver.NewClient(
		cfg.Quiver.BaseURL,
		cfg.Quiver.APIKey,
		gate,
		cfg.Gather.WSB.MaxAttempts,
		time.Duration(cfg.Gather.WSB.RetryDelayMS)*time.Millisecond,
	)

	// Universe output is all-or-nothing per run: it needs local reference
	// data for identifier resolution, checked once here.
	var master *resolve.SecurityMaster
	if resolve.Available(cfg.Storage.ReferenceDir) {
		master, err = resolve.Load(cfg.Storage.ReferenceDir)
		if err != nil {
			log.Fatalf("failed to load security master: %v", err)
		}
	} else {
		slog.Warn("no local reference data, universe files disabled", "dir", cfg.Storage.ReferenceDir)
	}

	archive := store.NewParquetStore(cfg.Storage.DataDir)

	var runs store.RunStore
	if cfg.Storage.SQLitePath != "" {
		s, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
		if err != nil {
			log.Fatalf("failed to open run log: %v", err)
		}
		defer s.Close()
		runs = s
	}

	gatherer := wsb.NewMentionGatherer(client, master, cfg.Storage.DataDir, archive, runs)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	slog.Info("starting wsb-data", "logFile", logFileName, "universe", master != nil)
	if err := gatherer.Run(ctx); err != nil {
		log.Fatalf("run error: %v", err)
	}
}
