package script

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cecil-the-coder/geoprocessing-kit/pkg/types"
)

func writeDescriptor(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func newTestProvider(t *testing.T, dir string) *Provider {
	t.Helper()
	p, err := New(types.ProviderConfig{Type: types.ProviderTypeScript, ScriptDir: dir})
	require.NoError(t, err)
	return p
}

func TestNew_RequiresScriptDir(t *testing.T) {
	_, err := New(types.ProviderConfig{Type: types.ProviderTypeScript})
	require.Error(t, err)

	var perr *types.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, types.ErrCodeInvalidConfig, perr.Code)
}

func TestProvider_DiscoverDescriptors(t *testing.T) {
	dir := t.TempDir()
	writeDescriptor(t, dir, "reproject.yaml", `
name: reproject
display_name: Reproject layer
group: Vector general
params:
  target_crs: "EPSG:4326"
outputs:
  result: reprojected
`)
	writeDescriptor(t, dir, "simplify.yml", `
name: simplify
group: Vector geometry
params:
  tolerance: 1.0
`)
	writeDescriptor(t, dir, "notes.txt", "not a descriptor")

	p := newTestProvider(t, dir)
	require.NoError(t, p.Load())

	algs := p.Algorithms()
	require.Len(t, algs, 2)
	assert.Equal(t, "reproject", algs[0].Name())
	assert.Equal(t, "simplify", algs[1].Name())

	reproject, ok := p.Algorithm("reproject")
	require.True(t, ok)
	assert.Equal(t, "Reproject layer", reproject.DisplayName())
	assert.Equal(t, "Vector general", reproject.Group())

	simplify, ok := p.Algorithm("simplify")
	require.True(t, ok)
	assert.Equal(t, "simplify", simplify.DisplayName(), "display name falls back to name")
}

func TestProvider_SkipsInvalidDescriptors(t *testing.T) {
	dir := t.TempDir()
	writeDescriptor(t, dir, "broken.yaml", "{{{")
	writeDescriptor(t, dir, "unnamed.yaml", "group: Orphans")
	writeDescriptor(t, dir, "typo.yaml", "name: typo\ndisplay_nam: Typo")
	writeDescriptor(t, dir, "good.yaml", "name: good")

	p := newTestProvider(t, dir)
	require.NoError(t, p.Load())

	algs := p.Algorithms()
	require.Len(t, algs, 1)
	assert.Equal(t, "good", algs[0].Name())
}

func TestProvider_RefreshPicksUpNewDescriptors(t *testing.T) {
	dir := t.TempDir()
	writeDescriptor(t, dir, "first.yaml", "name: first")

	p := newTestProvider(t, dir)
	require.NoError(t, p.Load())
	require.Len(t, p.Algorithms(), 1)

	writeDescriptor(t, dir, "second.yaml", "name: second")
	require.NoError(t, p.RefreshAlgorithms())

	assert.Len(t, p.Algorithms(), 2)
}

func TestProvider_MissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "does-not-exist")

	p := newTestProvider(t, dir)
	assert.False(t, p.CanBeActivated())

	require.NoError(t, p.Load(), "a missing directory is not a load error")
	assert.Empty(t, p.Algorithms())
}

func TestScriptAlgorithm_Run(t *testing.T) {
	dir := t.TempDir()
	writeDescriptor(t, dir, "reproject.yaml", `
name: reproject
params:
  target_crs: "EPSG:4326"
  tolerance: 0.5
outputs:
  result: reprojected
`)

	p := newTestProvider(t, dir)
	require.NoError(t, p.Load())
	alg, ok := p.Algorithm("reproject")
	require.True(t, ok)

	out, err := alg.Run(context.Background(), map[string]any{"target_crs": "EPSG:3857"})
	require.NoError(t, err)

	params, ok := out["params"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "EPSG:3857", params["target_crs"], "supplied parameters win")
	assert.Equal(t, 0.5, params["tolerance"], "missing parameters fall back to defaults")
	assert.Equal(t, "reprojected", out["result"])

	_, err = alg.Run(context.Background(), map[string]any{"bogus": true})
	assert.Error(t, err, "unknown parameters are rejected")
}
