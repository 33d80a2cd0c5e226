package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := LoadConfig("")
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("overlay", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "w.yaml")
		require.NoError(t, os.WriteFile(path, []byte("container: ring\nstrategy: hybrid\ninline: 16\nops: 500\n"), 0o600))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "ring", cfg.Container)
		assert.Equal(t, "hybrid", cfg.Strategy)
		assert.Equal(t, 16, cfg.Inline)
		assert.Equal(t, 500, cfg.Ops)
		assert.Equal(t, DefaultConfig().MaxLen, cfg.MaxLen)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("bad yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "w.yaml")
		require.NoError(t, os.WriteFile(path, []byte("ops: [1"), 0o600))
		_, err := LoadConfig(path)
		assert.Error(t, err)
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"container", func(c *Config) { c.Container = "list" }, `unknown container "list"`},
		{"strategy", func(c *Config) { c.Strategy = "pool" }, `unknown strategy "pool"`},
		{"fixed too small", func(c *Config) { c.Strategy, c.Inline = "fixed", 8 }, "fixed strategy needs inline >= max_len"},
		{"push ratio", func(c *Config) { c.PushRatio = 1 }, "push_ratio"},
		{"verify", func(c *Config) { c.VerifyEvery = 0 }, "verify_every"},
		{"log level", func(c *Config) { c.LogLevel = "loud" }, "invalid log_level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadConfig_Testdata(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("testdata", "ring-mmap.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "mmap", cfg.Strategy)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, 0.6, cfg.PushRatio)
	assert.True(t, cfg.Metrics)
}
