package e2e

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_BASE_URL targets a running server; empty starts one in-process
	BaseURL string `envconfig:"E2E_BASE_URL"`
	// E2E_DEBUG_JSON dumps every response body
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
	// Must match the server settings when E2E_BASE_URL is set
	ReaperInterval time.Duration `envconfig:"E2E_REAPER_INTERVAL" default:"100ms"`
	StaleThreshold time.Duration `envconfig:"E2E_STALE_THRESHOLD" default:"1s"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
