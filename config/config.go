package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config holds the CLI's persisted defaults. Image self-description means
// there is no entry-point or register-count setting to carry here — those
// come from the image itself and from the fixed opcode table.
type Config struct {
	Execution struct {
		ThreadHint int  `toml:"thread_hint"`
		Debug      bool `toml:"debug"`
	} `toml:"execution"`

	REPL struct {
		HistorySize int  `toml:"history_size"`
		HexMode     bool `toml:"hex_mode"`
	} `toml:"repl"`

	SSH struct {
		Port    int    `toml:"port"`
		KeyFile string `toml:"key_file"`
	} `toml:"ssh"`
}

// Default returns the configuration the CLI flags themselves default to.
func Default() *Config {
	cfg := &Config{}

	cfg.Execution.ThreadHint = 1
	cfg.Execution.Debug = false

	cfg.REPL.HistorySize = 1000
	cfg.REPL.HexMode = false

	cfg.SSH.Port = 2222
	cfg.SSH.KeyFile = "ssh_keys.toml"

	return cfg
}

// Path returns the platform-specific config file location.
func Path() string {
	var dir string

	switch runtime.GOOS {
	case "windows":
		dir = os.Getenv("APPDATA")
		if dir == "" {
			dir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		dir = filepath.Join(dir, "rocky")

	case "darwin", "linux":
		home, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		dir = filepath.Join(home, ".config", "rocky")

	default:
		return "config.toml"
	}

	if err := os.MkdirAll(dir, 0750); err != nil {
		return "config.toml"
	}
	return filepath.Join(dir, "config.toml")
}

// Load reads the config file at the default location, merging it over
// Default. A missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads the config file at path, merging it over Default.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to the default location.
func (c *Config) Save() error {
	return c.SaveTo(Path())
}

// SaveTo writes the config to path as TOML.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("config: creating %s: %w", dir, err)
	}

	f, err := os.Create(path) // #nosec G304 -- user-specified config path
	if err != nil {
		return fmt.Errorf("config: creating %s: %w", path, err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("config: encoding %s: %w", path, err)
	}
	return nil
}
