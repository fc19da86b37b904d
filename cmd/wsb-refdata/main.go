// One-shot tool: download the active US equity asset list from the Alpaca
// trading API and write a date-stamped security master CSV into the
// reference directory. The resolver picks up the latest stamped file.
//
// Usage:
//
//	go run cmd/wsb-refdata/main.go
package main

import (
	"bufio"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"

	"quiverwsb/internal/config"
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

	client := alpaca.NewClient(alpaca.ClientOpts{
		APIKey:    cfg.Alpaca.APIKey,
		APISecret: cfg.Alpaca.APISecret,
		BaseURL:   cfg.Alpaca.BaseURL,
	})

	assets, err := client.GetAssets(alpaca.GetAssetsRequest{
		Status:     "active",
		AssetClass: "us_equity",
	})
	if err != nil {
		log.Fatalf("GetAssets: %v", err)
	}
	if len(assets) == 0 {
		log.Fatal("no assets returned from Alpaca")
	}

	sort.Slice(assets, func(i, j int) bool { return assets[i].Symbol < assets[j].Symbol })

	path := filepath.Join(cfg.Storage.ReferenceDir,
		fmt.Sprintf("security_master_%s.csv", time.Now().UTC().Format("2006-01-02")))
	if err := writeSecurityMaster(path, assets); err != nil {
		log.Fatalf("writing security master: %v", err)
	}

	slog.Info("security master written", "path", path, "symbols", len(assets))
}

// writeSecurityMaster writes the asset list as a security master CSV. Listing
// windows are left open: the Alpaca asset list only covers currently active
// symbols.
func writeSecurityMaster(path string, assets []alpaca.Asset) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating reference dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating CSV %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	w.WriteString("symbol,security_id,listed,delisted\n")
	for _, a := range assets {
		if a.Symbol == "" || a.ID == "" {
			continue
		}
		fmt.Fprintf(w, "%s,%s,,\n", a.Symbol, a.ID)
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing CSV: %w", err)
	}
	return nil
}
