// Package config loads process configuration from environment variables into
// tagged structs. A .env file in the working directory is applied once,
// before the first load, when present.
package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	// ErrParsingConfig is returned when environment variables cannot be parsed into the config struct.
	ErrParsingConfig = errors.New("failed to parse environment variables into config")

	// ErrLoadingEnvFile is returned when an explicitly requested env file cannot be loaded.
	ErrLoadingEnvFile = errors.New("failed to load env file")
)

var defaultEnvLoaded sync.Once

// Load parses environment variables into a new T based on its `env` and
// `envDefault` struct tags.
//
// Example:
//
//	type LogConfig struct {
//		JSON  bool   `env:"LOG_JSON"  envDefault:"false"`
//		Level string `env:"LOG_LEVEL" envDefault:"info"`
//	}
//
//	cfg, err := config.Load[LogConfig]()
func Load[T any]() (T, error) {
	defaultEnvLoaded.Do(func() {
		// The default .env file is optional.
		_ = godotenv.Load()
	})

	cfg, err := env.ParseAs[T]()
	if err != nil {
		return cfg, errors.Join(ErrParsingConfig, err)
	}

	return cfg, nil
}

// MustLoad works like Load but panics if configuration loading fails.
func MustLoad[T any]() T {
	cfg, err := Load[T]()
	if err != nil {
		panic(fmt.Sprintf("Failed to load required configuration: %v", err))
	}

	return cfg
}

// LoadEnv applies the given env files to the process environment. Variables
// already set are not overridden, and earlier files win over later ones.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		return nil
	}

	if err := godotenv.Load(paths...); err != nil {
		return fmt.Errorf("%w: %w", ErrLoadingEnvFile, err)
	}

	return nil
}
