package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ROLESYNC_CONFIG_PATH", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 4, cfg.SyncConcurrency)
	assert.Equal(t, 365, cfg.ReminderAfterDays)
	assert.Equal(t, 395, cfg.ExpireAfterDays)
	assert.Equal(t, "default", cfg.Source("port"))
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ROLESYNC_CONFIG_PATH", dir)

	content := []byte("platform_url: https://platform.example.com/api\nport: 9090\nsync_concurrency: 8\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), content, 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://platform.example.com/api", cfg.PlatformURL)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 8, cfg.SyncConcurrency)
	assert.Equal(t, "file", cfg.Source("port"))
	assert.Equal(t, "default", cfg.Source("join_delay_seconds"))
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ROLESYNC_CONFIG_PATH", dir)
	t.Setenv("PORT", "7000")

	content := []byte("port: 9090\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), content, 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, "environment", cfg.Source("port"))
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "bad platform url",
			mutate:  func(c *Config) { c.PlatformURL = "not a url" },
			wantErr: "invalid platform_url",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Port = 0 },
			wantErr: "invalid port",
		},
		{
			name:    "expiry before reminder",
			mutate:  func(c *Config) { c.ExpireAfterDays = 100 },
			wantErr: "must exceed reminder_after_days",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := newDefault()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
			}
		})
	}
}

func TestAttributesRedactSecrets(t *testing.T) {
	cfg := newDefault()
	cfg.PlatformToken = "super-secret"

	for _, attr := range cfg.Attributes() {
		assert.NotContains(t, attr.Value, "super-secret")
	}
}
