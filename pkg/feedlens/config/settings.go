package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/feedlens/pkg/feedlens/internalerr"
)

const (
	dbPathEnv    = "FEEDLENS_DB"
	logLevelEnv  = "FEEDLENS_LOG_LEVEL"
	gistMaxEnv   = "FEEDLENS_GIST_MAX"
	thresholdEnv = "FEEDLENS_THRESHOLD"
)

// Settings holds application-level knobs shared by the command line tools.
type Settings struct {
	DBPath       string   `yaml:"db"`
	TaxonomyPath string   `yaml:"taxonomy"`
	StoplistPath string   `yaml:"stoplist"`
	LogLevel     string   `yaml:"log_level"`
	LogFormat    string   `yaml:"log_format"`
	GistMax      int      `yaml:"gist_max"`
	Threshold    *float64 `yaml:"threshold"`
	Metric       string   `yaml:"metric"`
	Workers      int      `yaml:"workers"`
	MetricsAddr  string   `yaml:"metrics_addr"`
}

// DefaultSettings returns the settings used when nothing else is configured.
func DefaultSettings() Settings {
	return Settings{
		DBPath:    "feedlens.db",
		LogLevel:  "info",
		LogFormat: "console",
		GistMax:   150,
		Metric:    "sequence",
		Workers:   4,
	}
}

// LoadSettings reads YAML settings (if path is non-empty) on top of the
// defaults and then applies environment overrides.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return s, fmt.Errorf("read settings: %w", err)
		}
		var file Settings
		if err := yaml.Unmarshal(raw, &file); err != nil {
			return s, fmt.Errorf("%w: %s: %v", internalerr.ErrInvalidConfig, path, err)
		}
		s = mergeSettings(s, file)
	}

	if err := s.applyEnvOverrides(); err != nil {
		return s, err
	}
	return s, nil
}

func (s *Settings) applyEnvOverrides() error {
	if v := os.Getenv(dbPathEnv); v != "" {
		s.DBPath = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		s.LogLevel = v
	}
	if v := os.Getenv(gistMaxEnv); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", internalerr.ErrInvalidConfig, gistMaxEnv, v)
		}
		s.GistMax = n
	}
	if v := os.Getenv(thresholdEnv); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", internalerr.ErrInvalidConfig, thresholdEnv, v)
		}
		s.Threshold = &f
	}
	return nil
}

func mergeSettings(base, override Settings) Settings {
	if override.DBPath != "" {
		base.DBPath = override.DBPath
	}
	if override.TaxonomyPath != "" {
		base.TaxonomyPath = override.TaxonomyPath
	}
	if override.StoplistPath != "" {
		base.StoplistPath = override.StoplistPath
	}
	if override.LogLevel != "" {
		base.LogLevel = override.LogLevel
	}
	if override.LogFormat != "" {
		base.LogFormat = override.LogFormat
	}
	if override.GistMax > 0 {
		base.GistMax = override.GistMax
	}
	if override.Threshold != nil {
		base.Threshold = override.Threshold
	}
	if override.Metric != "" {
		base.Metric = override.Metric
	}
	if override.Workers > 0 {
		base.Workers = override.Workers
	}
	if override.MetricsAddr != "" {
		base.MetricsAddr = override.MetricsAddr
	}
	return base
}
