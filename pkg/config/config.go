// Package config loads, saves and mutates the mcpress configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/mcpress/mcpress/pkg/dotdir"
)

const configFileName = "config.toml"

// ErrUnknownKey is returned when a get or set names a key that does not exist.
var ErrUnknownKey = errors.New("unknown config key")

// Configer reads and writes config.toml inside the .mcpress directory.
type Configer struct {
	dotdir *dotdir.Manager

	// OverrideDir, when set, bypasses the usual directory resolution.
	OverrideDir string
}

// NewConfiger returns a Configer using the default directory resolution.
func NewConfiger() *Configer {
	return &Configer{dotdir: dotdir.NewManager()}
}

// Path returns the absolute path of the config file, creating the .mcpress
// directory if needed.
func (c *Configer) Path() (string, error) {
	dir, err := c.dotdir.Target(c.OverrideDir)
	if err != nil {
		return "", fmt.Errorf("resolving config dir: %w", err)
	}
	return filepath.Join(dir, configFileName), nil
}

// Load reads the config file, filling any unset fields with defaults. A
// missing file is not an error: defaults are returned.
func (c *Configer) Load() (*Config, error) {
	path, err := c.Path()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return NewDefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	return ParseConfigTOML(data)
}

// Save writes the config file atomically via a temp file rename.
func (c *Configer) Save(cfg *Config) error {
	path, err := c.Path()
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), configFileName+".*")
	if err != nil {
		return fmt.Errorf("creating temp config: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := toml.NewEncoder(tmp).Encode(cfg); err != nil {
		tmp.Close()
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return os.Rename(tmp.Name(), path)
}

// ParseConfigTOML decodes raw TOML and applies defaults for unset fields.
func ParseConfigTOML(data []byte) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Version > currentConfigVersion {
		return nil, fmt.Errorf("config version %d is newer than supported version %d", cfg.Version, currentConfigVersion)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// applyDefaults fills zero-valued fields from NewDefaultConfig.
func applyDefaults(cfg *Config) {
	def := NewDefaultConfig()

	if cfg.Version == 0 {
		cfg.Version = def.Version
	}
	if cfg.API.Listen == "" {
		cfg.API.Listen = def.API.Listen
	}
	if cfg.Client.APITarget == "" {
		cfg.Client.APITarget = def.Client.APITarget
	}
	if cfg.Reader.Provider == "" {
		cfg.Reader.Provider = def.Reader.Provider
	}
	if cfg.Reader.Target == "" {
		cfg.Reader.Target = def.Reader.Target
	}
	if cfg.LLM.Target == "" {
		cfg.LLM.Target = def.LLM.Target
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = def.LLM.Model
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = def.Embedding.Provider
	}
	if cfg.Embedding.Target == "" {
		cfg.Embedding.Target = def.Embedding.Target
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = def.Embedding.Model
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = def.Embedding.Dimensions
	}
	if cfg.VectorStore.Provider == "" {
		cfg.VectorStore.Provider = def.VectorStore.Provider
	}
	if cfg.VectorStore.Target == "" {
		cfg.VectorStore.Target = def.VectorStore.Target
	}
	if len(cfg.Articles.Categories) == 0 {
		cfg.Articles.Categories = def.Articles.Categories
	}
	if cfg.Events.Provider == "" {
		cfg.Events.Provider = def.Events.Provider
	}
	if cfg.Events.Topic == "" {
		cfg.Events.Topic = def.Events.Topic
	}
}

// GetConfigValue returns the string form of the named key.
func GetConfigValue(cfg *Config, key string) (string, error) {
	info, ok := configKeys[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return info.get(cfg), nil
}

// SetConfigValue parses value and assigns it to the named key.
func SetConfigValue(cfg *Config, key, value string) error {
	info, ok := configKeys[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return info.set(cfg, value)
}

// IsValidConfigKey reports whether key names a supported config key.
func IsValidConfigKey(key string) bool {
	_, ok := configKeys[key]
	return ok
}

// ConfigKeys returns all supported key names, sorted.
func ConfigKeys() []string {
	keys := make([]string, 0, len(configKeys))
	for k := range configKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
