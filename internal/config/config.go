// Package config loads the ambient defaults for the imagefusion CLI: logging
// behavior and per-fusor option defaults, read from a YAML file with environment
// variable overrides and defaults filled in for anything unset.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the top-level ambient configuration for the imagefusion CLI.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	STARFM  STARFMDefaults `yaml:"starfm"`
	FitFC   FitFCDefaults  `yaml:"fitfc"`
	IO      IOConfig       `yaml:"io"`
}

// LoggingConfig controls the slog handler built by internal/logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// STARFMDefaults holds STARFM option defaults read from the config file. The CLI
// subcommands take their option values from their own flags and do not read these.
type STARFMDefaults struct {
	WinSize         int     `yaml:"win_size"`
	NumberClasses   int     `yaml:"number_classes"`
	SpectralUncert  float64 `yaml:"spectral_uncertainty"`
	TemporalUncert  float64 `yaml:"temporal_uncertainty"`
}

// FitFCDefaults holds FitFC option defaults read from the config file. The CLI
// subcommands take their option values from their own flags and do not read these.
type FitFCDefaults struct {
	WinSize           int `yaml:"win_size"`
	NumberNeighbors   int `yaml:"number_neighbors"`
	ResolutionFactor  int `yaml:"resolution_factor"`
}

// IOConfig holds raster I/O driver defaults read from the config file. Neither the
// CLI nor rasterio reads it; rasterio.Write resolves its driver and options itself.
type IOConfig struct {
	DefaultDriver string            `yaml:"default_driver"`
	DriverOptions map[string]string `yaml:"driver_options"`
}

// Load reads config from a YAML file and applies environment variable overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyEnvOverrides(cfg)
	setDefaults(cfg)
	return cfg, nil
}

// Default returns the built-in defaults with no file and no environment applied.
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

func setDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.STARFM.WinSize == 0 {
		cfg.STARFM.WinSize = 5
	}
	if cfg.STARFM.NumberClasses == 0 {
		cfg.STARFM.NumberClasses = 4
	}
	if cfg.STARFM.SpectralUncert == 0 {
		cfg.STARFM.SpectralUncert = 0.002
	}
	if cfg.STARFM.TemporalUncert == 0 {
		cfg.STARFM.TemporalUncert = 0.002
	}
	if cfg.FitFC.WinSize == 0 {
		cfg.FitFC.WinSize = 31
	}
	if cfg.FitFC.NumberNeighbors == 0 {
		cfg.FitFC.NumberNeighbors = 10
	}
	if cfg.FitFC.ResolutionFactor == 0 {
		cfg.FitFC.ResolutionFactor = 1
	}
	if cfg.IO.DefaultDriver == "" {
		cfg.IO.DefaultDriver = "GTiff"
	}
	if cfg.IO.DriverOptions == nil {
		cfg.IO.DriverOptions = map[string]string{"COMPRESS": "LZW"}
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("IMAGEFUSION_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("IMAGEFUSION_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("IMAGEFUSION_STARFM_WIN_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.STARFM.WinSize = n
		}
	}
	if v := os.Getenv("IMAGEFUSION_FITFC_WIN_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.FitFC.WinSize = n
		}
	}
	if v := os.Getenv("IMAGEFUSION_IO_DRIVER"); v != "" {
		cfg.IO.DefaultDriver = v
	}
}
