// Package hconfig loads rwsched.yaml.
package hconfig

import (
	"time"

	"github.com/hephbuild/rwsched/internal/hlocks"
)

const FileName = "rwsched.yaml"

type Config struct {
	Driver         string
	DefaultTimeout time.Duration
	Options        map[string]any
	Stress         Stress
}

type Stress struct {
	Workers    int
	Keys       int
	Iterations int
	ReadRatio  float64
	Hold       time.Duration
}

func Default() Config {
	return Config{
		Driver: hlocks.DriverQueue,
		Stress: Stress{
			Workers:    16,
			Keys:       4,
			Iterations: 1000,
			ReadRatio:  0.8,
		},
	}
}
