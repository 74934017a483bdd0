package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// InitViper wires a viper instance to the mcpress config file and the
// MCPRESS_* environment variables. Environment variables use underscores
// where keys use dots, e.g. MCPRESS_API_LISTEN overrides api.listen.
func (c *Configer) InitViper(v *viper.Viper) error {
	dir, err := c.dotdir.Target(c.OverrideDir)
	if err != nil {
		return fmt.Errorf("resolving config dir: %w", err)
	}

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(dir)

	v.SetEnvPrefix("MCPRESS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setViperDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	return nil
}

// LoadWithEnv loads the effective config: defaults, overlaid with the config
// file, overlaid with MCPRESS_* environment variables.
func (c *Configer) LoadWithEnv() (*Config, error) {
	v := viper.New()
	if err := c.InitViper(v); err != nil {
		return nil, err
	}

	cfg := NewDefaultConfig()
	for _, key := range ConfigKeys() {
		val := v.GetString(key)
		if val == "" {
			// list-valued keys come back from the file as TOML arrays
			if list := v.GetStringSlice(key); len(list) > 0 {
				val = strings.Join(list, ",")
			}
		}
		if val == "" {
			continue
		}
		if err := SetConfigValue(cfg, key, val); err != nil {
			return nil, fmt.Errorf("config key %s: %w", key, err)
		}
	}

	return cfg, nil
}

// setViperDefaults mirrors NewDefaultConfig into viper so unset keys still
// resolve.
func setViperDefaults(v *viper.Viper) {
	def := NewDefaultConfig()
	for key := range configKeys {
		val, err := GetConfigValue(def, key)
		if err != nil || val == "" {
			continue
		}
		v.SetDefault(key, val)
	}
}
