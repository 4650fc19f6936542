// Package hsim replays scenarios of lock requests against a registry and
// records what happened to each of them.
package hsim

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/hephbuild/rwsched/internal/hconfig"
	"github.com/hephbuild/rwsched/lib/rwlock"
)

type Scenario struct {
	Name string `yaml:"name"`
	// Timeout applies to actors that do not set their own. "0s" is a timeout
	// that expires on the next loop turn, an empty string means none.
	Timeout string  `yaml:"timeout,omitempty"`
	Actors  []Actor `yaml:"actors"`
}

type Actor struct {
	Name    string         `yaml:"name"`
	Kind    string         `yaml:"kind"`
	Key     string         `yaml:"key,omitempty"`
	Default bool           `yaml:"default,omitempty"`
	At      string         `yaml:"at,omitempty"`
	Hold    string         `yaml:"hold,omitempty"`
	Options map[string]any `yaml:"options,omitempty"`
}

type ActorOptions struct {
	// Timeout is nil when unset, 0 expires on the next loop turn.
	Timeout *time.Duration `mapstructure:"timeout"`
}

type plan struct {
	actor   Actor
	kind    rwlock.Kind
	at      time.Duration
	hold    time.Duration
	timeout time.Duration

	hasTimeout bool
}

func ParseFile(path string) (Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, err
	}

	return Parse(b)
}

func Parse(b []byte) (Scenario, error) {
	var sc Scenario
	err := yaml.UnmarshalWithOptions(b, &sc, yaml.Strict())
	if err != nil {
		return Scenario{}, err
	}

	return sc, nil
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %v", s)
	}

	return d, nil
}

func parseKind(s string) (rwlock.Kind, error) {
	switch s {
	case "read":
		return rwlock.KindRead, nil
	case "write":
		return rwlock.KindWrite, nil
	default:
		return 0, fmt.Errorf("unknown kind %q, expected read or write", s)
	}
}

func (sc Scenario) compile() ([]plan, error) {
	if len(sc.Actors) == 0 {
		return nil, errors.New("scenario has no actors")
	}

	defaultTimeout, err := parseDuration(sc.Timeout)
	if err != nil {
		return nil, fmt.Errorf("timeout: %w", err)
	}
	hasDefaultTimeout := sc.Timeout != ""

	seen := map[string]struct{}{}
	plans := make([]plan, 0, len(sc.Actors))
	for i, a := range sc.Actors {
		if a.Name == "" {
			a.Name = fmt.Sprintf("actor%v", i)
		}
		if _, ok := seen[a.Name]; ok {
			return nil, fmt.Errorf("duplicate actor %v", a.Name)
		}
		seen[a.Name] = struct{}{}

		p := plan{actor: a, timeout: defaultTimeout, hasTimeout: hasDefaultTimeout}

		p.kind, err = parseKind(a.Kind)
		if err != nil {
			return nil, fmt.Errorf("%v: %w", a.Name, err)
		}
		p.at, err = parseDuration(a.At)
		if err != nil {
			return nil, fmt.Errorf("%v: at: %w", a.Name, err)
		}
		p.hold, err = parseDuration(a.Hold)
		if err != nil {
			return nil, fmt.Errorf("%v: hold: %w", a.Name, err)
		}

		opts, err := hconfig.DecodeOptions[ActorOptions](a.Options)
		if err != nil {
			return nil, fmt.Errorf("%v: options: %w", a.Name, err)
		}
		if opts.Timeout != nil {
			if *opts.Timeout < 0 {
				return nil, fmt.Errorf("%v: options: negative timeout %v", a.Name, *opts.Timeout)
			}
			p.timeout = *opts.Timeout
			p.hasTimeout = true
		}

		plans = append(plans, p)
	}

	return plans, nil
}
