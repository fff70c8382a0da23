package config

import (
	"context"
	"errors"
	"os"
	"strconv"

	"github.com/vidai-app/vidai-golang/internal/store"
)

// Provider resolves runtime configuration with a fixed precedence:
// admin-set values from the api_configs table win over process
// environment defaults. Lookups hit the store on every call so an
// admin update takes effect immediately, without a restart.
type Provider struct {
	Configs store.ConfigStore
}

func NewProvider(configs store.ConfigStore) *Provider {
	return &Provider{Configs: configs}
}

// Value returns the plain string value for name, or the environment
// variable of the same name when no admin value is set.
func (p *Provider) Value(ctx context.Context, name string) string {
	if p.Configs != nil {
		cfg, err := p.Configs.GetConfig(ctx, name)
		if err == nil && cfg.Value != "" {
			return cfg.Value
		}
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			// A broken config store should not take the whole
			// pipeline down; fall through to the environment.
			return os.Getenv(name)
		}
	}
	return os.Getenv(name)
}

// Secret returns a credential value. Identical resolution to Value;
// the separate accessor keeps call sites honest about what they are
// reading so masking rules stay applied at the admin API layer.
func (p *Provider) Secret(ctx context.Context, name string) string {
	return p.Value(ctx, name)
}

// Flag returns a boolean toggle. Unset or unparsable values are
// false.
func (p *Provider) Flag(ctx context.Context, name string) bool {
	raw := p.Value(ctx, name)
	if raw == "" {
		return false
	}
	enabled, err := strconv.ParseBool(raw)
	if err != nil {
		return false
	}
	return enabled
}
