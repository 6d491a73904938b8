package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir is a stand-in for testing.T.Chdir, which requires Go 1.24.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "portfolio.xlsx", cfg.Portfolio.Path)
	assert.Equal(t, "text-embedding-3-small", cfg.Embedding.Model)
	assert.Equal(t, 1536, cfg.Embedding.Dimensions)
	assert.Equal(t, 20, cfg.Embedding.BatchSize)
	assert.Equal(t, 10, cfg.Search.MaxQueries)
	assert.InDelta(t, 0.7, cfg.Search.StopFraction, 0.001)
	assert.InDelta(t, 0.5, cfg.Search.QualityThreshold, 0.001)
	assert.Equal(t, 8, cfg.Intel.MaxLeadership)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PRESALES_SEARCH_MAX_QUERIES", "4")
	t.Setenv("PRESALES_PORTFOLIO_PATH", "/data/engagements.xlsx")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Search.MaxQueries)
	assert.Equal(t, "/data/engagements.xlsx", cfg.Portfolio.Path)
}
