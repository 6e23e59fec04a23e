package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if PORTFOLIO_CONFIG is set
//  3. env (prefix PORTFOLIO_)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv("PORTFOLIO_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: PORTFOLIO_ADDR, PORTFOLIO_QUEUE_SIZE, ...
	// Map env keys like PORTFOLIO_QUEUE_SIZE -> queue_size (flat keys).
	// Underscores are preserved to match the koanf tags on the struct.
	envProvider := env.Provider("PORTFOLIO_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "portfolio_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate enforces the cross-field constraints a bad override could break.
func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.AutoCreateScore < 0 || c.AutoCreateScore > 100:
		return fmt.Errorf("%w: auto_create_score outside [0,100]", ErrInvalidConfig)
	case c.AutoApproveScore < 0 || c.AutoApproveScore > 100:
		return fmt.Errorf("%w: auto_approve_score outside [0,100]", ErrInvalidConfig)
	case c.AutoApproveScore < c.AutoCreateScore:
		return fmt.Errorf("%w: auto_approve_score below auto_create_score", ErrInvalidConfig)
	case c.PublishScore < 0 || c.PublishScore > 10:
		return fmt.Errorf("%w: publish_score outside [0,10]", ErrInvalidConfig)
	case c.MarketplaceHealthMin < 0 || c.MarketplaceHealthMin > 10:
		return fmt.Errorf("%w: marketplace_health_min outside [0,10]", ErrInvalidConfig)
	}
	return nil
}
