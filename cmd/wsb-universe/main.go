// One-shot tool: rebuild per-date universe CSVs from the on-disk per-ticker
// history and the local security master.
//
// Usage:
//
//	go run cmd/wsb-universe/main.go
package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"quiverwsb/internal/config"
	"quiverwsb/internal/gather/wsb"
	"quiverwsb/internal/resolve"
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

	logger := util.NewLogger(cfg.Logging.Level)
	util.SetDefault(logger)

	if !resolve.Available(cfg.Storage.ReferenceDir) {
		log.Fatalf("no local reference data in %s; run wsb-refdata first", cfg.Storage.ReferenceDir)
	}
	master, err := resolve.Load(cfg.Storage.ReferenceDir)
	if err != nil {
		log.Fatalf("failed to load security master: %v", err)
	}

	wrote, err := wsb.RebuildUniverses(context.Background(), cfg.Storage.DataDir, master, logger)
	if err != nil {
		log.Fatalf("error: %v", err)
	}

	if wrote == 0 {
		slog.Info("no universe CSVs to rebuild (no history on disk)")
	} else {
		slog.Info("universe CSVs rebuilt", "files", wrote)
	}
}
