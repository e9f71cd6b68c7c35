package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	applog "apiadventures/internal/log"
	"apiadventures/internal/validate"
)

const (
	CachePolicyMerge   = "merge"
	CachePolicyReplace = "replace"
)

type Config struct {
	Port     string `envconfig:"PORT" default:"8080"`
	DBDSN    string `envconfig:"DB_DSN" default:"apiadventures.db"`
	LogFile  string `envconfig:"LOG_FILE"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	APIBaseURL       string        `envconfig:"API_BASE_URL" default:"https://kgtttq6tg9.execute-api.us-east-2.amazonaws.com/"`
	APIEndpoint      string        `envconfig:"API_ENDPOINT" default:"prod/random/"`
	APITimeout       time.Duration `envconfig:"API_TIMEOUT" default:"30s"`
	APIRatePerSecond float64       `envconfig:"API_RATE_PER_SECOND" default:"0"` // 0 disables limiting
	APIRateBurst     int           `envconfig:"API_RATE_BURST" default:"1"`

	CachePolicy         string        `envconfig:"CACHE_POLICY" default:"merge"`
	RefreshSchedule     string        `envconfig:"REFRESH_SCHEDULE" default:"@every 1h"`
	ConnectivityTimeout time.Duration `envconfig:"CONNECTIVITY_TIMEOUT" default:"5s"`
}

// Load reads an optional .env file, then APIADV_* environment variables.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		applog.Warn(nil, "config.dotenv.fail", err, nil)
	}

	var cfg Config
	if err := envconfig.Process("APIADV", &cfg); err != nil {
		return Config{}, fmt.Errorf("process env: %w", err)
	}
	policy, ok := validate.CachePolicy(cfg.CachePolicy)
	if !ok {
		return Config{}, fmt.Errorf("invalid cache policy %q (want %s or %s)", cfg.CachePolicy, CachePolicyMerge, CachePolicyReplace)
	}
	cfg.CachePolicy = policy

	applog.Info(nil, "config.loaded", map[string]any{
		"port":         cfg.Port,
		"db_dsn":       cfg.DBDSN,
		"log_file":     cfg.LogFile,
		"api_url":      cfg.APIBaseURL + cfg.APIEndpoint,
		"cache_policy": cfg.CachePolicy,
		"schedule":     cfg.RefreshSchedule,
	})
	return cfg, nil
}
