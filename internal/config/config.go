// Package config loads and validates decicalc configuration files.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/zephyrtronium/decicalc"
	"github.com/zephyrtronium/decicalc/internal/logging"
)

// Config is the complete configuration of the decicalc server and commands.
type Config struct {
	Engine Engine `yaml:"engine"`
	Server Server `yaml:"server"`
	Store  Store  `yaml:"store"`
	Log    Log    `yaml:"log"`
}

// Engine configures evaluation contexts.
type Engine struct {
	// Prec is the number of significant digits of arithmetic.
	Prec uint32 `yaml:"prec" validate:"min=1,max=10000"`
	// FuncPrec is the number of significant digits of log, log10, exp, and
	// fractional powers.
	FuncPrec uint32 `yaml:"func_prec" validate:"min=1,max=10000"`
	// MaxDepth is the deepest nesting of parentheses, calls, and negations.
	MaxDepth int `yaml:"max_depth" validate:"min=1,max=100000"`
}

// Server configures the HTTP API.
type Server struct {
	Addr string `yaml:"addr" validate:"required,hostname_port"`
	// EvalTimeout bounds each evaluation request.
	EvalTimeout time.Duration `yaml:"eval_timeout" validate:"gt=0"`
	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gte=0"`
	// RateLimit is the sustained API requests per second. Zero is unlimited.
	RateLimit float64 `yaml:"rate_limit" validate:"gte=0"`
	RateBurst int     `yaml:"rate_burst" validate:"gte=0"`
}

// Store configures the document store.
type Store struct {
	Path     string `yaml:"path" validate:"required_unless=InMemory true"`
	InMemory bool   `yaml:"in_memory"`
}

// Log configures logging.
type Log struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	JSON  bool   `yaml:"json"`
	File  string `yaml:"file"`
}

// Default returns the configuration used for any field a file leaves unset.
func Default() Config {
	return Config{
		Engine: Engine{
			Prec:     decicalc.DefaultPrec,
			FuncPrec: decicalc.DefaultFuncPrec,
			MaxDepth: decicalc.DefaultMaxDepth,
		},
		Server: Server{
			Addr:            "localhost:8080",
			EvalTimeout:     10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Store: Store{
			InMemory: true,
		},
		Log: Log{
			Level: "info",
		},
	}
}

var validate = validator.New()

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads a configuration file. An empty path gives the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Validate checks every field of the configuration.
func (cfg *Config) Validate() error {
	err := validate.Struct(cfg)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		f := verrs[0]
		return fmt.Errorf("invalid config: %s fails %s %s", f.Namespace(), f.Tag(), f.Param())
	}
	return err
}

// ContextOptions gives the evaluation context options for the engine
// settings.
func (e Engine) ContextOptions() []decicalc.ContextOption {
	return []decicalc.ContextOption{
		decicalc.Prec(e.Prec),
		decicalc.FuncPrec(e.FuncPrec),
		decicalc.MaxDepth(e.MaxDepth),
	}
}

// Logging gives the logger configuration for the log settings.
func (l Log) Logging(service string) logging.Config {
	return logging.Config{
		Level:   l.Level,
		JSON:    l.JSON,
		File:    l.File,
		Service: service,
	}
}
