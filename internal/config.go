package internal

import (
	"fmt"
	"strings"
	"time"
)

type Config struct {
	Host            string        `env:"HOST,default=localhost"`
	Port            int           `env:"PORT,default=5000"`
	BadgerFilepath  string        `env:"BADGER_FILEPATH,required=true"`
	LogLevel        string        `env:"LOG_LEVEL,default=INFO"`
	ReaperInterval  time.Duration `env:"REAPER_INTERVAL,default=15s"`
	StaleThreshold  time.Duration `env:"STALE_THRESHOLD,default=10s"`
	MetricInterval  time.Duration `env:"METRIC_INTERVAL,default=0s"`
	RestartInterval time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=5s"`
	CensoredWords   string        `env:"CENSORED_WORDS"`
	CharReplacement string        `env:"CHARACTER_REPLACEMENT,default=*"`
	DebugPort       int           `env:"DEBUG_PORT,default=0"`
}

func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c Config) CharacterRune() (rune, error) {
	r := []rune(c.CharReplacement)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			c.CharReplacement,
		)
	}
	return r[0], nil
}

// Words splits CENSORED_WORDS on commas, dropping blanks.
func (c Config) Words() []string {
	var words []string
	for _, w := range strings.Split(c.CensoredWords, ",") {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}
	return words
}

func (c Config) Validate() error {
	if c.ReaperInterval <= 0 {
		return fmt.Errorf("REAPER_INTERVAL must be positive, got %s", c.ReaperInterval)
	}
	if c.StaleThreshold <= 0 {
		return fmt.Errorf("STALE_THRESHOLD must be positive, got %s", c.StaleThreshold)
	}
	if c.MetricInterval < 0 {
		return fmt.Errorf("METRIC_INTERVAL must not be negative, got %s", c.MetricInterval)
	}
	_, err := c.CharacterRune()
	return err
}
