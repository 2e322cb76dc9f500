package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewWithLevelRejectsUnknownLevel(t *testing.T) {
	_, err := NewWithLevel("raceserver", "loud")
	require.Error(t, err)
}

func TestNewWithLevelWritesTaggedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "race.log")
	log, err := NewWithLevel("thumbrace", "warn", path)
	require.NoError(t, err)

	log.Infow("dropped below level")
	log.Warnw("lane stalled", "lane", "a")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var line map[string]any
	require.NoError(t, json.Unmarshal(data, &line))
	require.Equal(t, "thumbrace", line["service"])
	require.Equal(t, "lane stalled", line["msg"])
	require.Equal(t, "a", line["lane"])
}
