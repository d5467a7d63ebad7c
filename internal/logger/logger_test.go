package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRotator_KeepsBackupsOnRotate(t *testing.T) {
	dir := t.TempDir()
	r := NewRotator(Options{File: filepath.Join(dir, "dashboard.log"), MaxSizeMB: 1, MaxBackups: 2})
	defer r.Close()

	_, err := r.Write([]byte("first\n"))
	require.NoError(t, err)
	require.NoError(t, r.Rotate())
	_, err = r.Write([]byte("second\n"))
	require.NoError(t, err)

	current, err := os.ReadFile(filepath.Join(dir, "dashboard.log"))
	require.NoError(t, err)
	assert.Equal(t, "second\n", string(current))

	backups, err := filepath.Glob(filepath.Join(dir, "dashboard-*.log"))
	require.NoError(t, err)
	require.Len(t, backups, 1)

	old, err := os.ReadFile(backups[0])
	require.NoError(t, err)
	assert.Equal(t, "first\n", string(old))
}

func TestRotator_AppendsToExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashboard.log")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o644))

	r := NewRotator(Options{File: path, MaxSizeMB: 1})
	_, err := r.Write([]byte("new\n"))
	require.NoError(t, err)
	require.NoError(t, r.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old\nnew\n", string(data))
}

func TestSetup_WritesJSONToFile(t *testing.T) {
	prev := log.Logger
	prevLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(prevLevel)
	})

	path := filepath.Join(t.TempDir(), "dashboard.log")
	closer, err := Setup(Options{Level: "warn", File: path, MaxSizeMB: 1, MaxBackups: 1})
	require.NoError(t, err)

	log.Info().Msg("hidden")
	log.Warn().Str("document", "standings.json").Msg("document unavailable")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"document":"standings.json"`)
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestSetup_UnknownLevelDefaultsToInfo(t *testing.T) {
	prevLevel := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prevLevel) })

	_, err := Setup(Options{Level: "chatty"})
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
