package market

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSessions(t *testing.T) {
	cfg := DefaultSessions()

	rth, ok := cfg.SessionWindow("AAPL", "RTH")
	require.True(t, ok)
	assert.Equal(t, "09:30:00", rth.Start)
	assert.Equal(t, "16:00:00", rth.End)
	assert.False(t, rth.Complement)
	assert.False(t, rth.CrossesMidnight())

	eth, ok := cfg.SessionWindow("AAPL", "eth")
	require.True(t, ok)
	assert.True(t, eth.Complement)

	_, ok = cfg.SessionWindow("AAPL", "globex")
	assert.False(t, ok)

	assert.Equal(t, []string{"eth", "rth"}, cfg.ListSessions("AAPL"))
}

func TestLoadSessions_MergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sessions.yaml")
	data := `
defaults:
  globex:
    start: "18:00"
    end: "17:00"
symbols:
  ES:
    rth:
      start: "08:30"
      end: "15:00"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadSessions(path)
	require.NoError(t, err)

	// Built-in default still present.
	_, ok := cfg.SessionWindow("AAPL", "rth")
	assert.True(t, ok)

	// New default session, overnight.
	globex, ok := cfg.SessionWindow("AAPL", "GLOBEX")
	require.True(t, ok)
	assert.True(t, globex.CrossesMidnight())

	// Symbol override shadows the default.
	rth, ok := cfg.SessionWindow("ES", "rth")
	require.True(t, ok)
	assert.Equal(t, "08:30", rth.Start)

	assert.Equal(t, []string{"eth", "globex", "rth"}, cfg.ListSessions("ES"))
}

func TestLoadSessions_RejectsBadTimes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sessions.yaml")
	require.NoError(t, os.WriteFile(path, []byte("defaults:\n  rth:\n    start: noon\n    end: \"16:00\"\n"), 0o644))

	_, err := LoadSessions(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad start time")
}
