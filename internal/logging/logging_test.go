package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Writer: &buf})

	log.Info().Msg("hidden")
	log.Warn().Str("k", "v").Msg("shown")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "v", entry["k"])
	assert.Contains(t, entry, "time")
}

func TestNewUnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "loud", Writer: &buf})

	log.Debug().Msg("hidden")
	log.Info().Msg("shown")
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}

func TestNewConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Format: "console", Writer: &buf})

	log.Info().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}
