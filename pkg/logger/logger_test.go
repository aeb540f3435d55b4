package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildJSONByDefault(t *testing.T) {
	var buf bytes.Buffer
	build(&buf, "", "").Info("hello", "component", "test")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	require.Equal(t, "orchard-advisor", rec["service"])
	require.Equal(t, "test", rec["component"])
}

func TestBuildTextAndLevel(t *testing.T) {
	var buf bytes.Buffer
	l := build(&buf, "warn", "text")
	l.Info("dropped")
	l.Warn("kept")
	require.False(t, strings.Contains(buf.String(), "dropped"))
	require.Contains(t, buf.String(), "msg=kept")
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	require.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}
