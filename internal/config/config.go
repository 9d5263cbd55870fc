package config

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"paperdesk/internal/scheduler"
)

// Load reads a YAML config file, applies defaults and validates the result.
// A missing file is not an error: the defaults describe a runnable engine.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file failed (%s): %w", path, err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "toml"
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, fmt.Errorf("parsing config failed: %w", err)
	}
	cfg.applyDefaults()
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration without touching the filesystem.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func validate(cfg *Config) error {
	if _, ok := scheduler.ParseTickInterval(cfg.Engine.TickInterval); !ok {
		return fmt.Errorf("engine.tick_interval invalid: %q", cfg.Engine.TickInterval)
	}
	if cfg.Strategy.EMAFast >= cfg.Strategy.EMASlow {
		return fmt.Errorf("strategy.ema_fast (%d) must be smaller than ema_slow (%d)",
			cfg.Strategy.EMAFast, cfg.Strategy.EMASlow)
	}
	if cfg.Journal.Enabled && cfg.Journal.Path == "" {
		return fmt.Errorf("journal.path required when journal.enabled")
	}
	return nil
}
