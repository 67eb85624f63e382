package types

import "time"

// ProviderConfig represents configuration for a specific provider instance.
// Not every field is meaningful for every provider type; unknown fields are
// carried in Extra for provider-specific use.
type ProviderConfig struct {
	Type        ProviderType `yaml:"type" json:"type"`
	ID          string       `yaml:"id" json:"id"`
	Name        string       `yaml:"name,omitempty" json:"name,omitempty"`
	LongName    string       `yaml:"long_name,omitempty" json:"long_name,omitempty"`
	Description string       `yaml:"description,omitempty" json:"description,omitempty"`

	// ScriptDir is the directory scanned for algorithm descriptors
	// (script providers).
	ScriptDir string `yaml:"script_dir,omitempty" json:"script_dir,omitempty"`

	// Remote catalog settings (remote providers).
	BaseURL         string   `yaml:"base_url,omitempty" json:"base_url,omitempty"`
	ClientID        string   `yaml:"client_id,omitempty" json:"client_id,omitempty"`
	ClientSecret    string   `yaml:"client_secret,omitempty" json:"client_secret,omitempty"`
	ClientSecretEnv string   `yaml:"client_secret_env,omitempty" json:"client_secret_env,omitempty"`
	TokenURL        string   `yaml:"token_url,omitempty" json:"token_url,omitempty"`
	Scopes          []string `yaml:"scopes,omitempty" json:"scopes,omitempty"`

	// Request throttling for providers that talk to external services.
	RequestsPerSecond float64 `yaml:"requests_per_second,omitempty" json:"requests_per_second,omitempty"`
	Burst             int     `yaml:"burst,omitempty" json:"burst,omitempty"`

	// Timeout bounds individual external requests made by the provider.
	Timeout time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`

	// Extra holds provider-specific settings that have no dedicated field.
	Extra map[string]any `yaml:"extra,omitempty" json:"extra,omitempty"`
}
