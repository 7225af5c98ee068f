// Package models - registry for models.
package models

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/nvr-ai/inferbench/util"
)

var (
	// ErrUnknownModel is returned when an alias is not registered.
	ErrUnknownModel = errors.New("unknown model")
	// ErrMissingArtifact is returned when a registered model has no file on disk.
	ErrMissingArtifact = errors.New("model artifact not found")
)

// defaultModels is the built-in table. Order is the sweep order for "all".
var defaultModels = []Descriptor{
	{Alias: "compact2x", Path: "models/2x_compact.onnx"},
	{Alias: "compact4x", Path: "models/4x_compact.onnx"},
	{Alias: "span2x", Path: "models/2x_span.onnx"},
	{Alias: "esrgan4x", Path: "models/4x_realesrgan.onnx"},
	{Alias: "swinir2x", Path: "models/2x_swinir_256.onnx", FixedSize: 256},
	{Alias: "dat2x", Path: "models/2x_dat_512.onnx", FixedSize: 512},
}

// Catalog is an immutable alias -> descriptor table.
type Catalog struct {
	order []string
	index map[string]Descriptor
}

// NewCatalog builds a catalog from descriptors. Later duplicates of an alias
// are rejected.
//
// Arguments:
//   - descriptors: The models to register, in sweep order.
//
// Returns:
//   - *Catalog: The catalog.
//   - error: An error if an alias is empty or duplicated.
func NewCatalog(descriptors []Descriptor) (*Catalog, error) {
	c := &Catalog{
		order: make([]string, 0, len(descriptors)),
		index: make(map[string]Descriptor, len(descriptors)),
	}
	for _, d := range descriptors {
		alias := strings.ToLower(strings.TrimSpace(d.Alias))
		if alias == "" {
			return nil, errors.Errorf("model with path %q has no alias", d.Path)
		}
		if alias == AliasAll {
			return nil, errors.Errorf("model alias %q is reserved", AliasAll)
		}
		if _, ok := c.index[alias]; ok {
			return nil, errors.Errorf("duplicate model alias %q", alias)
		}
		if d.FixedSize < 0 {
			return nil, errors.Errorf("model %q has negative fixed size %d", alias, d.FixedSize)
		}
		d.Alias = alias
		c.order = append(c.order, alias)
		c.index[alias] = d
	}
	return c, nil
}

// DefaultCatalog returns the built-in model table, with relative artifact
// paths resolved against dir when dir is not empty.
func DefaultCatalog(dir string) *Catalog {
	descriptors := make([]Descriptor, len(defaultModels))
	copy(descriptors, defaultModels)
	if dir != "" {
		for i := range descriptors {
			descriptors[i].Path = filepath.Join(dir, filepath.Base(descriptors[i].Path))
		}
	}
	c, err := NewCatalog(descriptors)
	if err != nil {
		panic(err)
	}
	return c
}

type catalogFile struct {
	Models []Descriptor `yaml:"models"`
}

// LoadCatalogFile reads a YAML catalog of the form:
//
//	models:
//	  - alias: compact2x
//	    path: ./2x_compact.onnx
//	  - alias: swinir2x
//	    path: ./2x_swinir.onnx
//	    fixedSize: 256
//
// Relative paths are resolved against the directory holding the file.
func LoadCatalogFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read model catalog")
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrapf(err, "failed to parse model catalog %s", path)
	}
	if len(file.Models) == 0 {
		return nil, errors.Errorf("model catalog %s declares no models", path)
	}

	base := filepath.Dir(path)
	for i := range file.Models {
		if !filepath.IsAbs(file.Models[i].Path) {
			file.Models[i].Path = filepath.Join(base, file.Models[i].Path)
		}
	}
	return NewCatalog(file.Models)
}

// Resolve expands an alias into descriptors. "all" yields every model in
// registration order.
//
// Arguments:
//   - alias: A registered alias or "all".
//
// Returns:
//   - []Descriptor: The matching models.
//   - error: ErrUnknownModel (with the valid aliases) if alias is not registered.
func (c *Catalog) Resolve(alias string) ([]Descriptor, error) {
	alias = strings.ToLower(strings.TrimSpace(alias))
	if alias == AliasAll {
		out := make([]Descriptor, 0, len(c.order))
		for _, a := range c.order {
			out = append(out, c.index[a])
		}
		return out, nil
	}
	d, ok := c.index[alias]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownModel, "model %q is not registered (valid: %s)", alias, strings.Join(c.ValidAliases(), ", "))
	}
	return []Descriptor{d}, nil
}

// Aliases returns the registered aliases in registration order.
func (c *Catalog) Aliases() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// ValidAliases returns every alias accepted by Resolve, sorted, plus "all".
func (c *Catalog) ValidAliases() []string {
	out := c.Aliases()
	sort.Strings(out)
	return append(out, AliasAll)
}

// CheckArtifacts verifies that every descriptor points at an existing file.
func CheckArtifacts(descriptors []Descriptor) error {
	for _, d := range descriptors {
		if !util.FileExists(d.Path) {
			return errors.Wrapf(ErrMissingArtifact, "model %q expects %s", d.Alias, d.Path)
		}
	}
	return nil
}
