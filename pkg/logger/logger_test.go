package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, WarnLevel, ParseLevel(" warn "))
	assert.Equal(t, InfoLevel, ParseLevel("nonsense"))
	assert.Equal(t, InfoLevel, ParseLevel(""))
}

func TestJSONLoggerWithComponent(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&Config{Level: "debug", Format: "json", Output: &buf})

	cl := Component(l, "backend")
	cl.Info().Str("endpoint", "pessoa.list").Msg("request done")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "backend", entry["component"])
	assert.Equal(t, "vacina-dashboard", entry["service"])
	assert.Equal(t, "pessoa.list", entry["endpoint"])
	assert.Equal(t, "info", entry["level"])
}

func TestLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&Config{Level: "error", Format: "json", Output: &buf})

	l.Debug().Msg("hidden")
	l.Info().Msg("hidden too")
	assert.Zero(t, buf.Len())
}
