package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Level(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, New("debug", false).GetLevel())
	assert.Equal(t, zerolog.InfoLevel, New("", false).GetLevel())
	assert.Equal(t, zerolog.InfoLevel, New("loud", false).GetLevel())
}

func TestNew_WritesStructuredJSON(t *testing.T) {
	var buf bytes.Buffer
	log := newWithWriter(&buf, "info", false)

	log.Debug().Msg("hidden")
	log.Info().Str("registration_id", "r-1").Msg("registration created")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "registration created", line["message"])
	assert.Equal(t, "r-1", line["registration_id"])
	assert.Equal(t, "registration-engine", line["service"])
	assert.Contains(t, line, "time")
}
