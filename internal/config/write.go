package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Write serializes the config to TOML at the specified path, creating
// parent directories if needed.
func (c *Config) Write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	return toml.NewEncoder(f).Encode(c)
}
