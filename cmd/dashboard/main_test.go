package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OrrSegevPersonal/OrrSegevPersonal.github.io/internal/config"
	"github.com/OrrSegevPersonal/OrrSegevPersonal.github.io/internal/loader"
	"github.com/OrrSegevPersonal/OrrSegevPersonal.github.io/internal/store"
	"github.com/OrrSegevPersonal/OrrSegevPersonal.github.io/pkg/models"
)

func TestBuildSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, models.DocStandings), []byte(`{"current_standing":{"position":2}}`), 0o644))

	t.Run("memory cache wraps the file source", func(t *testing.T) {
		src, closer, err := buildSource(context.Background(), config.DataConfig{Source: "file", Dir: dir, Cache: "memory"})
		require.NoError(t, err)
		defer closer.Close()

		_, ok := src.(*loader.CachingSource)
		assert.True(t, ok)

		doc, err := src.Fetch(context.Background(), models.DocStandings)
		require.NoError(t, err)
		assert.NotNil(t, doc["current_standing"])
	})

	t.Run("no cache", func(t *testing.T) {
		src, closer, err := buildSource(context.Background(), config.DataConfig{Source: "file", Dir: dir, Cache: "none"})
		require.NoError(t, err)
		defer closer.Close()

		_, ok := src.(*loader.FileSource)
		assert.True(t, ok)
	})
}

func TestOpenLedger(t *testing.T) {
	cfg := config.Default()
	cfg.Store = store.Config{Driver: store.DriverFile, Dir: t.TempDir()}

	ledger, closer, err := openLedger(context.Background(), cfg)
	require.NoError(t, err)

	require.NoError(t, ledger.SetGoal(context.Background(), 3000))
	_, err = ledger.Add(context.Background(), 250)
	require.NoError(t, err)
	require.NoError(t, closer.Close())

	// A second open reads the persisted goal and entries back
	reopened, closer, err := openLedger(context.Background(), cfg)
	require.NoError(t, err)
	defer closer.Close()

	assert.Equal(t, 3000, reopened.Goal())
	snap, err := reopened.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 250, snap.TotalMl)
}

func TestWriteJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), models.DocProbabilities)

	require.NoError(t, writeJSONFile(path, map[string]float64{"playoff": 72.4}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got map[string]float64
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, 72.4, got["playoff"])

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}
