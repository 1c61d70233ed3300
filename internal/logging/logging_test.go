package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "warn", "json")
	require.NoError(t, err)
	logger.Info().Msg("hidden")
	require.Equal(t, 0, buf.Len())
	logger.Warn().Str("entity", "meal").Msg("visible")
	require.Contains(t, buf.String(), `"entity":"meal"`)
	require.Contains(t, buf.String(), `"time"`)
}

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "", "console")
	require.NoError(t, err)
	logger.Info().Msg("hello")
	require.Contains(t, buf.String(), "hello")
	require.NotContains(t, buf.String(), "{")
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(nil, "chatty", "json")
	require.Error(t, err)
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mealtrack.log")
	w, f, err := OpenFile(path)
	require.NoError(t, err)
	logger, err := New(w, "debug", "json")
	require.NoError(t, err)
	logger.Debug().Msg("to file")
	require.NoError(t, f.Close())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "to file")
}
