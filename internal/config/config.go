package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the quiverwsb pipeline.
type Config struct {
	Storage Storage      `yaml:"storage"`
	Quiver  Quiver       `yaml:"quiver"`
	Alpaca  Alpaca       `yaml:"alpaca"`
	Logging Logging      `yaml:"logging"`
	Gather  GatherConfig `yaml:"gather"`
}

// Storage holds paths for data persistence.
type Storage struct {
	DataDir      string `yaml:"data_dir"`
	SQLitePath   string `yaml:"sqlite_path"`
	ReferenceDir string `yaml:"reference_dir"`
}

// Quiver holds credentials and the endpoint for the Quiver Quantitative API.
type Quiver struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// Alpaca holds credentials for the Alpaca trading API, used by the
// reference-data builder to download the US equity asset list.
type Alpaca struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	BaseURL   string `yaml:"base_url"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// GatherConfig controls data gathering behaviour per job.
type GatherConfig struct {
	WSB WSBJobConfig `yaml:"wsb"`
}

// WSBJobConfig holds fetch parameters for the WallStreetBets mention job.
// The rate limit is expressed as requests per rolling window, matching the
// upstream API's published quota.
type WSBJobConfig struct {
	RateLimit    int `yaml:"rate_limit"`     // requests per window
	RateWindowMS int `yaml:"rate_window_ms"` // rolling window length
	MaxAttempts  int `yaml:"max_attempts"`   // fetch attempts before giving up
	RetryDelayMS int `yaml:"retry_delay_ms"` // fixed delay between attempts
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path, parses it into a
// Config struct, applies environment variable overrides, and fills in
// defaults for unset fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("REFERENCE_DIR"); v != "" {
		cfg.Storage.ReferenceDir = v
	}

	if v := os.Getenv("QUIVER_API_KEY"); v != "" {
		cfg.Quiver.APIKey = v
	}
	if v := os.Getenv("QUIVER_BASE_URL"); v != "" {
		cfg.Quiver.BaseURL = v
	}

	if v := os.Getenv("ALPACA_API_KEY"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("ALPACA_API_SECRET"); v != "" {
		cfg.Alpaca.APISecret = v
	}
	if v := os.Getenv("ALPACA_BASE_URL"); v != "" {
		cfg.Alpaca.BaseURL = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// Canonical Alpaca SDK env vars take priority over everything else.
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.Alpaca.APISecret = v
	}
}

// applyDefaults fills in defaults for fields not set by file or environment.
// The rate defaults track the Quiver API quota of 10 requests per 1.1s.
func applyDefaults(cfg *Config) {
	if cfg.Quiver.BaseURL == "" {
		cfg.Quiver.BaseURL = "https://api.quiverquant.com/beta"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Gather.WSB.RateLimit == 0 {
		cfg.Gather.WSB.RateLimit = 10
	}
	if cfg.Gather.WSB.RateWindowMS == 0 {
		cfg.Gather.WSB.RateWindowMS = 1100
	}
	if cfg.Gather.WSB.MaxAttempts == 0 {
		cfg.Gather.WSB.MaxAttempts = 5
	}
	if cfg.Gather.WSB.RetryDelayMS == 0 {
		cfg.Gather.WSB.RetryDelayMS = 1000
	}
}
