package cli

import (
	"context"
	"io"
	"os"

	"github.com/spokenlab/tgsplit/internal/config"
	"github.com/spokenlab/tgsplit/internal/pipeline"
)

// Env holds injectable dependencies for CLI commands.
// This is the central injection point for testing CLI commands in isolation.
//
// All fields have sensible defaults via DefaultEnv(). Tests can override
// specific fields using the With* options or by creating a custom Env.
type Env struct {
	// I/O and environment
	Stdin  io.Reader
	Stderr io.Writer
	Getenv func(string) string

	// Factories for domain objects
	ConfigLoader        ConfigLoader
	OrchestratorFactory OrchestratorFactory
}

// ConfigLoader loads and provides access to persistent configuration.
type ConfigLoader interface {
	Load() (config.Config, error)
}

// Runner executes one segmentation run.
type Runner interface {
	Run(ctx context.Context) (pipeline.Summary, error)
}

// OrchestratorFactory creates pipeline runners.
type OrchestratorFactory interface {
	New(cfg pipeline.Config, stderr io.Writer) (Runner, error)
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithStdin sets the stdin reader used by the confirmation prompt.
func WithStdin(r io.Reader) EnvOption {
	return func(e *Env) {
		e.Stdin = r
	}
}

// WithStderr sets the stderr writer.
func WithStderr(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stderr = w
	}
}

// WithGetenv sets the environment variable getter.
func WithGetenv(fn func(string) string) EnvOption {
	return func(e *Env) {
		e.Getenv = fn
	}
}

// WithConfigLoader sets the config loader.
func WithConfigLoader(l ConfigLoader) EnvOption {
	return func(e *Env) {
		e.ConfigLoader = l
	}
}

// WithOrchestratorFactory sets the pipeline factory.
func WithOrchestratorFactory(f OrchestratorFactory) EnvOption {
	return func(e *Env) {
		e.OrchestratorFactory = f
	}
}

// DefaultEnv returns an Env with production defaults.
func DefaultEnv() *Env {
	return &Env{
		Stdin:               os.Stdin,
		Stderr:              os.Stderr,
		Getenv:              os.Getenv,
		ConfigLoader:        &defaultConfigLoader{},
		OrchestratorFactory: &defaultOrchestratorFactory{},
	}
}

// NewEnv creates an Env with the given options applied to defaults.
func NewEnv(opts ...EnvOption) *Env {
	env := DefaultEnv()
	for _, opt := range opts {
		opt(env)
	}
	return env
}

// ---------------------------------------------------------------------------
// Default implementations - delegate to real packages
// ---------------------------------------------------------------------------

// defaultConfigLoader implements ConfigLoader using the config package.
type defaultConfigLoader struct{}

func (defaultConfigLoader) Load() (config.Config, error) {
	return config.Load()
}

// defaultOrchestratorFactory implements OrchestratorFactory using the
// pipeline package.
type defaultOrchestratorFactory struct{}

func (defaultOrchestratorFactory) New(cfg pipeline.Config, stderr io.Writer) (Runner, error) {
	return pipeline.New(cfg, stderr)
}

// Compile-time interface verification.
var (
	_ ConfigLoader        = (*defaultConfigLoader)(nil)
	_ OrchestratorFactory = (*defaultOrchestratorFactory)(nil)
)
