package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[server]
host = "127.0.0.1"
port = 9000
log_level = "debug"

[database]
path = "/var/lib/strmarr/strmarr.db"

[library]
root = "/media/strm"

[search]
max_parallel = 4
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "/var/lib/strmarr/strmarr.db", cfg.Database.Path)
	assert.Equal(t, "/media/strm", cfg.Library.Root)
	assert.Equal(t, 4, cfg.Search.MaxParallel)
}

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, "./data/strmarr.db", cfg.Database.Path)
	assert.Equal(t, "./strm_library", cfg.Library.Root)
	assert.Equal(t, 8, cfg.Search.MaxParallel)
}

func TestLoad_EnvSubstitution(t *testing.T) {
	t.Setenv("STRMARR_TEST_ROOT", "/srv/media")
	cfg, err := Load(writeConfig(t, `
[library]
root = "${STRMARR_TEST_ROOT}/strm"
`))
	require.NoError(t, err)
	assert.Equal(t, "/srv/media/strm", cfg.Library.Root)
}

func TestLoad_MissingEnvVarLeftUntouched(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
[library]
root = "${STRMARR_NO_SUCH_VAR}/strm"
`))
	require.NoError(t, err)
	assert.Equal(t, "${STRMARR_NO_SUCH_VAR}/strm", cfg.Library.Root)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(c *Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"bad log level", func(c *Config) { c.Server.LogLevel = "verbose" }, "server.log_level"},
		{"missing root", func(c *Config) { c.Library.Root = "" }, "library.root"},
		{"negative parallel", func(c *Config) { c.Search.MaxParallel = -1 }, "search.max_parallel"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			errs := cfg.Validate()
			if tt.wantErr == "" {
				assert.Empty(t, errs)
				return
			}
			require.NotEmpty(t, errs)
			assert.Contains(t, errs[0], tt.wantErr)
		})
	}
}

func TestWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")

	cfg := Default()
	cfg.Server.Port = 9090
	require.NoError(t, cfg.Write(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestDiscover_EnvOverride(t *testing.T) {
	path := writeConfig(t, "")
	t.Setenv("STRMARR_CONFIG", path)

	got, err := Discover()
	require.NoError(t, err)
	assert.Equal(t, path, got)
}

func TestDiscover_EnvPointsNowhere(t *testing.T) {
	t.Setenv("STRMARR_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))
	_, err := Discover()
	assert.Error(t, err)
}
