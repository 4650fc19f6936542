package hconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/hephbuild/rwsched/internal/hlocks"
)

type YAMLConfig struct {
	Driver         *string          `yaml:"driver"`
	DefaultTimeout *string          `yaml:"defaultTimeout"`
	Options        map[string]any   `yaml:"options,omitempty"`
	Stress         YAMLConfigStress `yaml:"stress"`
}

type YAMLConfigStress struct {
	Workers    *int     `yaml:"workers"`
	Keys       *int     `yaml:"keys"`
	Iterations *int     `yaml:"iterations"`
	ReadRatio  *float64 `yaml:"readRatio"`
	Hold       *string  `yaml:"hold"`
}

func ParseYAMLConfig(filepath string) (YAMLConfig, error) {
	b, err := os.ReadFile(filepath)
	if err != nil {
		return YAMLConfig{}, err
	}

	var cfg YAMLConfig
	err = yaml.UnmarshalWithOptions(b, &cfg, yaml.Strict())
	if err != nil {
		return YAMLConfig{}, fmt.Errorf("%v: %w", filepath, err)
	}

	return cfg, nil
}

func parseDuration(field, s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%v: %w", field, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%v: must not be negative, got %v", field, s)
	}

	return d, nil
}

func ApplyYAMLConfig(cfg Config, inc YAMLConfig) (Config, error) {
	if inc.Driver != nil {
		switch *inc.Driver {
		case hlocks.DriverQueue, hlocks.DriverCAS:
			cfg.Driver = *inc.Driver
		default:
			return Config{}, fmt.Errorf("unknown lock driver: %s", *inc.Driver)
		}
	}

	if inc.DefaultTimeout != nil {
		d, err := parseDuration("defaultTimeout", *inc.DefaultTimeout)
		if err != nil {
			return Config{}, err
		}
		cfg.DefaultTimeout = d
	}

	if inc.Options != nil {
		opts := make(map[string]any, len(cfg.Options)+len(inc.Options))
		maps.Copy(opts, cfg.Options)
		maps.Copy(opts, inc.Options)
		cfg.Options = opts
	}

	s := inc.Stress
	if s.Workers != nil {
		if *s.Workers <= 0 {
			return Config{}, fmt.Errorf("stress.workers: must be positive, got %v", *s.Workers)
		}
		cfg.Stress.Workers = *s.Workers
	}
	if s.Keys != nil {
		if *s.Keys <= 0 {
			return Config{}, fmt.Errorf("stress.keys: must be positive, got %v", *s.Keys)
		}
		cfg.Stress.Keys = *s.Keys
	}
	if s.Iterations != nil {
		if *s.Iterations < 0 {
			return Config{}, fmt.Errorf("stress.iterations: must not be negative, got %v", *s.Iterations)
		}
		cfg.Stress.Iterations = *s.Iterations
	}
	if s.ReadRatio != nil {
		if *s.ReadRatio < 0 || *s.ReadRatio > 1 {
			return Config{}, fmt.Errorf("stress.readRatio: must be within [0, 1], got %v", *s.ReadRatio)
		}
		cfg.Stress.ReadRatio = *s.ReadRatio
	}
	if s.Hold != nil {
		d, err := parseDuration("stress.hold", *s.Hold)
		if err != nil {
			return Config{}, err
		}
		cfg.Stress.Hold = d
	}

	return cfg, nil
}

// Load applies path, then path.local, onto the defaults. Missing files are
// skipped.
func Load(path string) (Config, error) {
	cfg := Default()

	for _, p := range []string{path, path + ".local"} {
		inc, err := ParseYAMLConfig(p)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}

			return Config{}, err
		}

		cfg, err = ApplyYAMLConfig(cfg, inc)
		if err != nil {
			return Config{}, fmt.Errorf("%v: %w", p, err)
		}
	}

	return cfg, nil
}
