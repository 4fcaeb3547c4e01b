// Package driver runs pass pipelines over batches of methods. Methods
// are isolated units: they execute in parallel and a failing method
// never aborts its siblings.
package driver

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"ignis/internal/ir"
	"ignis/internal/transform"
)

// Config is the pipeline configuration, usually decoded from an
// ignis.toml file.
type Config struct {
	// Passes lists pass names in execution order.
	Passes []string `toml:"passes"`

	// Jobs bounds parallel method compilation; 0 means GOMAXPROCS.
	Jobs int `toml:"jobs"`

	IfConversion IfConversionConfig `toml:"if_conversion"`
}

// IfConversionConfig carries the if-conversion knobs.
type IfConversionConfig struct {
	MaxBlockSize      int `toml:"max_block_size"`
	MaxSizeDifference int `toml:"max_size_difference"`
}

// DefaultConfig returns the stock pipeline.
func DefaultConfig() Config {
	return Config{
		Passes: []string{"simplify-branches", "if-conversion"},
		IfConversion: IfConversionConfig{
			MaxBlockSize:      transform.DefaultMaxBlockSize,
			MaxSizeDifference: transform.DefaultMaxSizeDifference,
		},
	}
}

// LoadConfig reads a TOML pipeline configuration, filling unset knobs
// with defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.IfConversion.MaxBlockSize == 0 {
		cfg.IfConversion.MaxBlockSize = transform.DefaultMaxBlockSize
	}
	if cfg.IfConversion.MaxSizeDifference == 0 {
		cfg.IfConversion.MaxSizeDifference = transform.DefaultMaxSizeDifference
	}
	return cfg, nil
}

// BuildPipeline instantiates the configured passes in order.
func BuildPipeline(cfg Config) ([]transform.Pass, error) {
	passes := make([]transform.Pass, 0, len(cfg.Passes))
	for _, name := range cfg.Passes {
		switch name {
		case "simplify-branches":
			passes = append(passes, transform.SimplifyBranches{})
		case "if-conversion":
			p, err := transform.NewIfConversion(cfg.IfConversion.MaxBlockSize, cfg.IfConversion.MaxSizeDifference)
			if err != nil {
				return nil, err
			}
			passes = append(passes, p)
		default:
			return nil, fmt.Errorf("%w: unknown pass %q", ir.ErrInvalidArgument, name)
		}
	}
	return passes, nil
}
