// Package stage provides utilities for detecting and working with deployment environments.
// It determines the current running stage (local, test, dev, staging, prod) based on
// the RUNNING_ENV environment variable and test flag detection.
package stage

import (
	"errors"
	"flag"
	"fmt"
	"strings"
	"sync"

	"github.com/amp-labs/mealy/config"
	"github.com/amp-labs/mealy/logger"
)

// Stage represents a deployment environment.
type Stage string

// ErrUnrecognizedStage is returned when the RUNNING_ENV contains an invalid stage value.
var ErrUnrecognizedStage = errors.New("unrecognized stage")

const (
	// Unknown indicates the stage could not be determined.
	Unknown Stage = "unknown"
	// Local indicates the code is running on a developer's local machine.
	Local Stage = "local"
	// Test indicates the code is running in unit tests.
	Test Stage = "test"
	// Dev indicates the code is running in the development environment.
	Dev Stage = "dev"
	// Staging indicates the code is running in the staging environment.
	Staging Stage = "staging"
	// Prod indicates the code is running in the production environment.
	Prod Stage = "prod"
)

// Parse converts a RUNNING_ENV value to a Stage, ignoring case.
func Parse(value string) (Stage, error) {
	switch s := Stage(strings.ToLower(strings.TrimSpace(value))); s {
	case Local, Test, Dev, Staging, Prod:
		return s, nil
	default:
		return Unknown, fmt.Errorf("%w: %q", ErrUnrecognizedStage, value)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Stage) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}

	*s = parsed

	return nil
}

func (s Stage) String() string {
	return string(s)
}

// Current returns the current running environment.
// The stage is determined once on first call and cached.
func Current() Stage {
	return runningStage()
}

// IsLocal returns true if the current stage is Local.
func IsLocal() bool {
	return Current() == Local
}

// IsProd returns true if the current stage is Prod.
func IsProd() bool {
	return Current() == Prod
}

// IsTest returns true if the current stage is Test.
func IsTest() bool {
	return Current() == Test
}

// runningStage lazily determines and caches the current stage.
var runningStage = sync.OnceValue(func() Stage { //nolint:gochecknoglobals
	value := Detect()

	if value != Unknown {
		logger.Get().Info("Configured stage", "stage", value)
	}

	return value
})

type stageEnv struct {
	RunningEnv string `env:"RUNNING_ENV"`
}

// Detect determines the stage by reading the RUNNING_ENV environment variable
// without caching. If the variable is unset or invalid, it falls back to Test
// (when in tests) or Local.
func Detect() Stage {
	fallback := Local

	// When running unit tests, the environment variable is usually not set.
	// Detect if we're in a test environment by checking if test.v flag exists.
	if flag.Lookup("test.v") != nil {
		fallback = Test
	}

	env, err := config.Load[stageEnv]()
	if err != nil || env.RunningEnv == "" {
		return fallback
	}

	stage, err := Parse(env.RunningEnv)
	if err != nil {
		logger.Get().Warn("Unknown stage, using "+fallback.String(), "error", err)

		return fallback
	}

	return stage
}
