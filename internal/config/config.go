package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const (
	defaultDataPath   = "data/database.json"
	defaultDateLayout = "2006-01-02"
	defaultLogLevel   = "warn"
)

type Config struct {
	DataPath   string `toml:"data_path"`
	DateLayout string `toml:"date_layout"`
	LogLevel   string `toml:"log_level"`
}

func Default() Config {
	return Config{
		DataPath:   defaultDataPath,
		DateLayout: defaultDateLayout,
		LogLevel:   defaultLogLevel,
	}
}

func DefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "tasktracker", "config.toml"), nil
}

func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}

// Load reads path over the defaults. A missing file yields the defaults;
// keys left out of the file keep their default values.
func Load(path string) (Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return Config{}, err
	}

	meta, err := toml.Decode(string(data), &config)
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("parse config: unknown key %q", undecoded[0].String())
	}
	config.fillDefaults()
	return config, nil
}

func Save(path string, cfg Config) error {
	if err := EnsureDir(path); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return err
	}

	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func (c *Config) fillDefaults() {
	defaults := Default()
	if c.DataPath == "" {
		c.DataPath = defaults.DataPath
	}
	if c.DateLayout == "" {
		c.DateLayout = defaults.DateLayout
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
}
