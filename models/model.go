// Package models - Catalog of the upscaling models that can be benchmarked.
package models

import (
	"path/filepath"
	"strings"
)

// AliasAll expands to every registered model.
const AliasAll = "all"

// Descriptor describes one benchmarkable model artifact.
type Descriptor struct {
	// Alias is the short name used on the command line (e.g. "compact2x").
	Alias string `json:"alias" yaml:"alias"`
	// Path is the location of the ONNX artifact.
	Path string `json:"path" yaml:"path"`
	// FixedSize pins the spatial input size for architectures that only accept
	// one resolution. Zero means any requested size is valid.
	FixedSize int `json:"fixedSize,omitempty" yaml:"fixedSize,omitempty"`
}

// HasFixedSize reports whether the model only accepts one input resolution.
func (d Descriptor) HasFixedSize() bool {
	return d.FixedSize > 0
}

// BaseName returns the artifact path without its extension.
//
// Returns:
//   - string: e.g. "models/compact2x" for "models/compact2x.onnx".
func (d Descriptor) BaseName() string {
	return strings.TrimSuffix(d.Path, filepath.Ext(d.Path))
}

// Ext returns the artifact extension including the leading dot.
func (d Descriptor) Ext() string {
	return filepath.Ext(d.Path)
}
