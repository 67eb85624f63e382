// Package script implements a provider that discovers algorithms from YAML
// descriptor files in a directory. Each *.yaml or *.yml file describes one
// algorithm; the directory is re-scanned on every refresh, so newly dropped
// descriptors appear after RefreshAlgorithms.
package script

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/cecil-the-coder/geoprocessing-kit/pkg/logging"
	"github.com/cecil-the-coder/geoprocessing-kit/pkg/provider"
	"github.com/cecil-the-coder/geoprocessing-kit/pkg/types"
)

// Descriptor is the on-disk YAML format for a scripted algorithm.
type Descriptor struct {
	Name        string         `yaml:"name"`
	DisplayName string         `yaml:"display_name"`
	Group       string         `yaml:"group"`
	Params      map[string]any `yaml:"params"`
	Outputs     map[string]any `yaml:"outputs"`
}

// Provider discovers scripted algorithms from a directory.
type Provider struct {
	*provider.Base
	dir string
	log zerolog.Logger
}

// New creates a script provider rooted at config.ScriptDir.
func New(config types.ProviderConfig) (*Provider, error) {
	if config.ScriptDir == "" {
		return nil, types.NewProviderError(idOrDefault(config.ID), types.ErrCodeInvalidConfig,
			"script provider requires script_dir")
	}

	p := &Provider{
		dir: config.ScriptDir,
		log: logging.GetLogger("provider.script"),
	}
	p.Base = provider.NewBase(provider.Config{
		ID:               idOrDefault(config.ID),
		Name:             nameOrDefault(config.Name),
		LongName:         config.LongName,
		Description:      "Algorithms described by YAML files in " + config.ScriptDir,
		VectorExtensions: []string{"gpkg", "shp", "csv"},
	})
	p.Base.SetLoader(p)
	return p, nil
}

func idOrDefault(id string) string {
	if id != "" {
		return id
	}
	return "script"
}

func nameOrDefault(name string) string {
	if name != "" {
		return name
	}
	return "Script tools"
}

// CanBeActivated reports whether the script directory exists.
func (p *Provider) CanBeActivated() bool {
	info, err := os.Stat(p.dir)
	return err == nil && info.IsDir()
}

// LoadAlgorithms scans the script directory for descriptor files. Files that
// fail to parse are skipped with a warning; a missing directory yields an
// empty algorithm set rather than an error, matching CanBeActivated.
func (p *Provider) LoadAlgorithms(add provider.AddAlgorithmFunc) error {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading script directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		path := filepath.Join(p.dir, entry.Name())
		desc, err := readDescriptor(path)
		if err != nil {
			p.log.Warn().Str("path", path).Err(err).Msg("skipping invalid descriptor")
			continue
		}
		add(&scriptAlgorithm{desc: desc, path: path})
	}
	return nil
}

func readDescriptor(path string) (Descriptor, error) {
	var desc Descriptor
	data, err := os.ReadFile(path)
	if err != nil {
		return desc, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&desc); err != nil {
		return desc, fmt.Errorf("parsing descriptor: %w", err)
	}
	return desc, nil
}

// scriptAlgorithm is an algorithm backed by a YAML descriptor.
type scriptAlgorithm struct {
	desc Descriptor
	path string
}

func (a *scriptAlgorithm) Name() string { return a.desc.Name }

func (a *scriptAlgorithm) DisplayName() string {
	if a.desc.DisplayName != "" {
		return a.desc.DisplayName
	}
	return a.desc.Name
}

func (a *scriptAlgorithm) Group() string { return a.desc.Group }

func (a *scriptAlgorithm) Validate() error {
	if a.desc.Name == "" {
		return fmt.Errorf("descriptor %s has no name", a.path)
	}
	return nil
}

// Run resolves the descriptor's declared outputs against the supplied
// parameters. Unknown parameters are rejected; missing ones fall back to the
// descriptor defaults.
func (a *scriptAlgorithm) Run(ctx context.Context, params map[string]any) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resolved := make(map[string]any, len(a.desc.Params))
	for k, def := range a.desc.Params {
		resolved[k] = def
	}
	for k, v := range params {
		if _, known := a.desc.Params[k]; !known {
			return nil, fmt.Errorf("unknown parameter %q", k)
		}
		resolved[k] = v
	}

	out := map[string]any{"params": resolved, "script": a.path}
	for k, v := range a.desc.Outputs {
		out[k] = v
	}
	return out, nil
}

var _ types.Algorithm = (*scriptAlgorithm)(nil)
