// Package settings loads the kit's YAML configuration: user output format
// preferences, logging verbosity and per-provider configuration.
package settings

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cecil-the-coder/geoprocessing-kit/pkg/types"
)

// Settings is the top-level configuration structure.
type Settings struct {
	Outputs   types.OutputPreferences `yaml:"outputs"`
	Logging   LoggingSettings         `yaml:"logging"`
	Providers ProvidersSettings       `yaml:"providers"`
}

// LoggingSettings controls log output.
type LoggingSettings struct {
	Verbosity int `yaml:"verbosity"`
}

// ProvidersSettings lists which providers are enabled and how each is
// configured.
type ProvidersSettings struct {
	// Enabled lists the provider ids to register, in registration order.
	Enabled []string `yaml:"enabled"`

	// Entries maps provider id to its configuration.
	Entries map[string]ProviderEntry `yaml:"entries"`
}

// Duration wraps time.Duration with YAML string support ("45s", "2m").
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// ProviderEntry is the YAML form of a single provider's configuration.
type ProviderEntry struct {
	Type              string   `yaml:"type"`
	Name              string   `yaml:"name"`
	LongName          string   `yaml:"long_name"`
	Description       string   `yaml:"description"`
	ScriptDir         string   `yaml:"script_dir"`
	BaseURL           string   `yaml:"base_url"`
	ClientID          string   `yaml:"client_id"`
	ClientSecret      string   `yaml:"client_secret"`
	ClientSecretEnv   string   `yaml:"client_secret_env"`
	TokenURL          string   `yaml:"token_url"`
	Scopes            []string `yaml:"scopes"`
	RequestsPerSecond float64  `yaml:"requests_per_second"`
	Burst             int      `yaml:"burst"`
	Timeout           Duration `yaml:"timeout"`
}

// Load reads and parses a settings file.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}
	return Parse(data)
}

// Parse parses settings from raw YAML. Decoding is strict: unknown fields
// are rejected rather than silently dropped.
func Parse(data []byte) (*Settings, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Settings
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing settings: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Settings) validate() error {
	for _, id := range s.Providers.Enabled {
		if _, ok := s.Providers.Entries[id]; !ok {
			return fmt.Errorf("enabled provider %q has no configuration entry", id)
		}
	}
	return nil
}

// ProviderConfigs returns the configurations of the enabled providers, in
// the order they are enabled. Client secrets referenced through
// client_secret_env are resolved from the environment.
func (s *Settings) ProviderConfigs() []types.ProviderConfig {
	configs := make([]types.ProviderConfig, 0, len(s.Providers.Enabled))
	for _, id := range s.Providers.Enabled {
		entry := s.Providers.Entries[id]

		secret := entry.ClientSecret
		if secret == "" && entry.ClientSecretEnv != "" {
			secret = os.Getenv(entry.ClientSecretEnv)
		}

		configs = append(configs, types.ProviderConfig{
			Type:              types.ProviderType(entry.Type),
			ID:                id,
			Name:              entry.Name,
			LongName:          entry.LongName,
			Description:       entry.Description,
			ScriptDir:         entry.ScriptDir,
			BaseURL:           entry.BaseURL,
			ClientID:          entry.ClientID,
			ClientSecret:      secret,
			ClientSecretEnv:   entry.ClientSecretEnv,
			TokenURL:          entry.TokenURL,
			Scopes:            entry.Scopes,
			RequestsPerSecond: entry.RequestsPerSecond,
			Burst:             entry.Burst,
			Timeout:           time.Duration(entry.Timeout),
		})
	}
	return configs
}
