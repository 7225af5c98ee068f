package models

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog("")
	assert.Equal(t, []string{"compact2x", "compact4x", "span2x", "esrgan4x", "swinir2x", "dat2x"}, c.Aliases())

	all, err := c.Resolve("all")
	require.NoError(t, err)
	assert.Len(t, all, 6)

	swinir, err := c.Resolve("SwinIR2x")
	require.NoError(t, err)
	assert.Equal(t, 256, swinir[0].FixedSize)
	assert.True(t, swinir[0].HasFixedSize())
}

func TestDefaultCatalogDir(t *testing.T) {
	c := DefaultCatalog("/opt/models")
	d, err := c.Resolve("compact2x")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/opt/models", "2x_compact.onnx"), d[0].Path)
	assert.Equal(t, filepath.Join("/opt/models", "2x_compact"), d[0].BaseName())
	assert.Equal(t, ".onnx", d[0].Ext())
}

func TestResolveUnknown(t *testing.T) {
	_, err := DefaultCatalog("").Resolve("foo")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownModel))
	for _, alias := range []string{"compact2x", "dat2x", "all"} {
		assert.Contains(t, err.Error(), alias)
	}
}

func TestNewCatalogRejects(t *testing.T) {
	tests := []struct {
		name        string
		descriptors []Descriptor
	}{
		{"empty alias", []Descriptor{{Path: "a.onnx"}}},
		{"reserved alias", []Descriptor{{Alias: "ALL", Path: "a.onnx"}}},
		{"duplicate alias", []Descriptor{{Alias: "a", Path: "a.onnx"}, {Alias: "A", Path: "b.onnx"}}},
		{"negative size", []Descriptor{{Alias: "a", Path: "a.onnx", FixedSize: -1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.descriptors)
			assert.Error(t, err)
		})
	}
}

func TestLoadCatalogFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "models.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
models:
  - alias: tiny
    path: ./tiny.onnx
  - alias: fixed
    path: /abs/fixed.onnx
    fixedSize: 512
`), 0o644))

	c, err := LoadCatalogFile(path)
	require.NoError(t, err)

	all, err := c.Resolve(AliasAll)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, filepath.Join(dir, "tiny.onnx"), all[0].Path)
	assert.Equal(t, "/abs/fixed.onnx", all[1].Path)
	assert.Equal(t, 512, all[1].FixedSize)
}

func TestLoadCatalogFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadCatalogFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("models: []\n"), 0o644))
	_, err = LoadCatalogFile(empty)
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("models: {alias"), 0o644))
	_, err = LoadCatalogFile(bad)
	assert.Error(t, err)
}

func TestCheckArtifacts(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "present.onnx")
	require.NoError(t, os.WriteFile(present, []byte("onnx"), 0o644))

	assert.NoError(t, CheckArtifacts([]Descriptor{{Alias: "p", Path: present}}))

	err := CheckArtifacts([]Descriptor{{Alias: "p", Path: present}, {Alias: "m", Path: filepath.Join(dir, "missing.onnx")}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingArtifact))
	assert.Contains(t, err.Error(), "missing.onnx")
}
