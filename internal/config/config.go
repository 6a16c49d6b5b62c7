// Package config loads and saves the repository configuration stored in .caf/config.toml.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/KostasZigo/gocaf/internal/constants"
	"github.com/google/renameio"
)

// Config mirrors config.toml.
type Config struct {
	Core Core `toml:"core"`
	User User `toml:"user"`
}

type Core struct {
	DefaultBranch string `toml:"default_branch"`
	Storage       string `toml:"storage"`
	FormatVersion int    `toml:"format_version"`
}

// User is the default commit and tag identity.
type User struct {
	Name  string `toml:"name,omitempty"`
	Email string `toml:"email,omitempty"`
}

// Default returns the configuration written by a plain init.
func Default() Config {
	return Config{
		Core: Core{
			DefaultBranch: constants.DefaultBranch,
			Storage:       constants.StorageLoose,
			FormatVersion: constants.ObjectFormatVersion,
		},
	}
}

// Validate checks the values a repository cannot operate without.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Core.DefaultBranch) == "" {
		return errors.New("core.default_branch must not be empty")
	}
	switch c.Core.Storage {
	case constants.StorageLoose, constants.StorageBolt:
	default:
		return fmt.Errorf("core.storage must be %q or %q, got %q",
			constants.StorageLoose, constants.StorageBolt, c.Core.Storage)
	}
	if c.Core.FormatVersion != constants.ObjectFormatVersion {
		return fmt.Errorf("unsupported core.format_version %d (supported: %d)",
			c.Core.FormatVersion, constants.ObjectFormatVersion)
	}
	return nil
}

// Load reads path, fills unset keys with defaults and applies environment overrides.
// A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if err == nil {
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return Config{}, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg atomically to path.
func Save(path string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := renameio.WriteFile(path, buf.Bytes(), constants.FilePerms); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if name, ok := os.LookupEnv(constants.EnvAuthorName); ok && name != "" {
		cfg.User.Name = name
	}
	if email, ok := os.LookupEnv(constants.EnvAuthorEmail); ok && email != "" {
		cfg.User.Email = email
	}
}
