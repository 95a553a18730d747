package app

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewLoggerJSONInProduction(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&Config{AppEnv: "production", LogFormat: "json"}, &buf)
	logger.Debug("hidden")
	logger.Info("party tb built", "rows", 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	require.Equal(t, "party tb built", entry["msg"])
	require.EqualValues(t, 3, entry["rows"])
}

func TestNewLoggerPrettyDebugOutsideProduction(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&Config{AppEnv: "development", LogFormat: "pretty"}, &buf)
	logger.Debug("visible")
	require.Contains(t, buf.String(), "level=DEBUG")
	require.Contains(t, buf.String(), "msg=visible")
}
