package internal

import (
	"testing"
	"time"

	"github.com/Netflix/go-env"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	req := require.New(t)
	t.Setenv("BADGER_FILEPATH", "/tmp/chat-room")

	var config Config
	_, err := env.UnmarshalFromEnviron(&config)
	req.NoError(err)

	req.Equal("localhost:5000", config.Address())
	req.Equal(15*time.Second, config.ReaperInterval)
	req.Equal(10*time.Second, config.StaleThreshold)
	req.Equal(time.Duration(0), config.MetricInterval)
	req.Empty(config.Words())
	req.NoError(config.Validate())
}

func TestConfig_Overrides(t *testing.T) {
	req := require.New(t)
	t.Setenv("BADGER_FILEPATH", "/tmp/chat-room")
	t.Setenv("PORT", "8080")
	t.Setenv("STALE_THRESHOLD", "1m")
	t.Setenv("CENSORED_WORDS", " badger, ,snake ")
	t.Setenv("CHARACTER_REPLACEMENT", "#")

	var config Config
	_, err := env.UnmarshalFromEnviron(&config)
	req.NoError(err)

	req.Equal(8080, config.Port)
	req.Equal(time.Minute, config.StaleThreshold)
	req.Equal([]string{"badger", "snake"}, config.Words())
	r, err := config.CharacterRune()
	req.NoError(err)
	req.Equal('#', r)
}

func TestConfig_Validate(t *testing.T) {
	req := require.New(t)
	valid := Config{ReaperInterval: time.Second, StaleThreshold: time.Second, CharReplacement: "*"}
	req.NoError(valid.Validate())

	invalid := valid
	invalid.ReaperInterval = 0
	req.Error(invalid.Validate())

	invalid = valid
	invalid.CharReplacement = "**"
	req.Error(invalid.Validate())

	invalid = valid
	invalid.MetricInterval = -time.Second
	req.Error(invalid.Validate())
}
