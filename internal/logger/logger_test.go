package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, "info", FormatJSON)
	require.NoError(t, err)

	log.Debug().Msg("hidden")
	log.Info().Int("id", 3).Msg("task added")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "task added", line["message"])
	assert.InDelta(t, 3, line["id"], 0)
	assert.Contains(t, line, "time")
}

func TestConsoleLogger(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, "debug", FormatConsole)
	require.NoError(t, err)

	log.Debug().Str("path", "/tasks").Msg("request")
	assert.Contains(t, buf.String(), "request")
	assert.Contains(t, buf.String(), "path=/tasks")
}

func TestDisabled(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, "disabled", FormatJSON)
	require.NoError(t, err)

	log.Error().Msg("nothing")
	assert.Empty(t, buf.String())
}

func TestInvalidLevel(t *testing.T) {
	_, err := New(&bytes.Buffer{}, "loud", FormatJSON)
	assert.Error(t, err)
}
