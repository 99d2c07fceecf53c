package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrramp/arecheoedu/internal/config"
)

func newFakeConfig() config.Config {
	return config.Config{
		Server: config.Server{
			Host:         "127.0.0.1",
			Port:         8080,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			MaxBodyBytes: 2048,
		},
		TLS: config.TLS{
			MinVersion: "1.3",
		},
		Storage: config.Storage{
			Backend:      "sqlite",
			Dir:          "/var/lib/relics",
			SeedDir:      "/etc/relics/seed",
			AtomicWrites: false,
			SQLitePath:   "/var/lib/relics/relics.db",
		},
		Redis: config.Redis{
			Addr:      "redis:6379",
			Password:  "secret",
			DB:        2,
			KeyPrefix: "test:",
		},
		Auth: config.Auth{
			AdminToken: "let-me-in",
		},
		Import: config.Import{
			MaxUploadBytes: 1048576,
		},
		CORS: config.CORS{
			AllowedOrigins: []string{"http://localhost:5173"},
		},
		LogLevel:  "debug",
		LogFormat: "console",
	}
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name      string
		config    config.Config
		expectErr bool
	}{
		{
			name:   "Valid config",
			config: newFakeConfig(),
		},
		{
			name: "Port out of range",
			config: func() config.Config {
				cfg := newFakeConfig()
				cfg.Server.Port = 70000
				return cfg
			}(),
			expectErr: true,
		},
		{
			name: "Unknown backend",
			config: func() config.Config {
				cfg := newFakeConfig()
				cfg.Storage.Backend = "s3"
				return cfg
			}(),
			expectErr: true,
		},
		{
			name: "TLS without certificate",
			config: func() config.Config {
				cfg := newFakeConfig()
				cfg.TLS.Enabled = true
				return cfg
			}(),
			expectErr: true,
		},
		{
			name: "Redis backend without address",
			config: func() config.Config {
				cfg := newFakeConfig()
				cfg.Storage.Backend = "redis"
				cfg.Redis.Addr = ""
				return cfg
			}(),
			expectErr: true,
		},
		{
			name: "Redis address not needed for sqlite",
			config: func() config.Config {
				cfg := newFakeConfig()
				cfg.Redis.Addr = ""
				return cfg
			}(),
		},
		{
			name: "Bad log level",
			config: func() config.Config {
				cfg := newFakeConfig()
				cfg.LogLevel = "verbose"
				return cfg
			}(),
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.config.Validate()
			if err != nil && !tc.expectErr {
				t.Errorf("unexpected error: %v", err)
			}

			if err == nil && tc.expectErr {
				t.Errorf("expected error, got none")
			}
		})
	}
}

func TestLoad(t *testing.T) {
	testCases := []struct {
		name      string
		config    string
		path      string
		envPrefix string
		binder    config.Binder
		envs      map[string]string
		expect    config.Config
	}{
		{
			name:   "Standard config",
			config: "config",
			path:   "testdata",
			expect: newFakeConfig(),
		},
		{
			name:      "Standard config with env prefix overrides",
			config:    "config",
			path:      "testdata",
			envPrefix: "relics",
			expect: func() config.Config {
				cfg := newFakeConfig()
				cfg.Server.Port = 9090
				cfg.Storage.Backend = "file"
				return cfg
			}(),
			envs: map[string]string{
				"RELICS_SERVER_PORT":     "9090",
				"RELICS_STORAGE_BACKEND": "file",
			},
		},
		{
			name:      "Standard config with default binder",
			config:    "config",
			path:      "testdata",
			envPrefix: "relics",
			binder:    config.NewDefaultEnvBinder(),
			expect: func() config.Config {
				cfg := newFakeConfig()
				cfg.Server.Port = 4000
				cfg.Storage.Dir = "/srv/content"
				return cfg
			}(),
			envs: map[string]string{
				"PORT":        "4000",
				"STORAGE_DIR": "/srv/content",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.envs {
				t.Setenv(k, v)
			}

			got, err := config.NewFileSystemLoader().Load(tc.config, tc.path, tc.envPrefix, tc.binder)
			require.NoError(t, err)

			if diff := cmp.Diff(tc.expect, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	got, err := config.NewFileSystemLoader().Load("config", t.TempDir(), config.DefaultEnvPrefix, nil)
	require.NoError(t, err)

	assert.Equal(t, 3001, got.Server.Port)
	assert.Equal(t, int64(100*1024), got.Server.MaxBodyBytes)
	assert.Equal(t, "file", got.Storage.Backend)
	assert.Equal(t, filepath.Join("server", "database"), got.Storage.Dir)
	assert.Equal(t, filepath.Join("server", "database"), got.Storage.SeedDirectory())
	assert.True(t, got.Storage.AtomicWrites)
	assert.Equal(t, []string{"*"}, got.CORS.AllowedOrigins)
	assert.Equal(t, ":3001", got.Server.Address())
	assert.NoError(t, got.Validate())
}

func TestProcessConfigPath(t *testing.T) {
	parts, err := config.ProcessConfigPath("testdata/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "config", parts.FileName)
	assert.True(t, filepath.IsAbs(parts.Path))

	_, err = config.ProcessConfigPath("config.json")
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("RELICS_TEST_DOTENV=loaded\n"), 0o600))

	t.Setenv("RELICS_TEST_DOTENV", "")
	require.NoError(t, os.Unsetenv("RELICS_TEST_DOTENV"))

	require.NoError(t, config.LoadDotEnv(filepath.Join(dir, "missing.env"), envFile))
	assert.Equal(t, "loaded", os.Getenv("RELICS_TEST_DOTENV"))
}
