package models

import (
	"strings"
	"time"
)

// APIConfig defines the model for the 'api_configs' table: a flat
// name -> value store for external backend credentials and runtime
// feature toggles. Admin-set values take precedence over process
// environment defaults.
type APIConfig struct {
	Name        string    `json:"name" db:"name"`
	Value       string    `json:"value" db:"value"`
	Description string    `json:"description,omitempty" db:"description"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// Secret reports whether this config entry holds a credential that
// must never be returned in full by the admin API.
func (c *APIConfig) Secret() bool {
	return strings.Contains(c.Name, "API_KEY") || strings.Contains(c.Name, "ACCESS_KEY")
}

// MaskedValue returns the value safe for display: the first 4
// characters followed by asterisks. Non-secret values pass through.
func (c *APIConfig) MaskedValue() string {
	if !c.Secret() {
		return c.Value
	}
	if c.Value == "" {
		return ""
	}
	prefix := c.Value
	if len(prefix) > 4 {
		prefix = prefix[:4]
	}
	return prefix + "********************"
}
