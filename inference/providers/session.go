// Package providers - Session factory.
package providers

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/nvr-ai/inferbench/models"
	"github.com/nvr-ai/inferbench/util"
)

// ErrMissingOptimizedArtifact is returned when a pre-optimized artifact was
// requested but is not on disk.
var ErrMissingOptimizedArtifact = errors.New("optimized artifact not found")

// MissingArtifactError names the artifact that was expected and the command
// that would produce it.
type MissingArtifactError struct {
	Path string
	Hint string
}

func (e *MissingArtifactError) Error() string {
	return fmt.Sprintf("%s: %s (create it with: %s)", ErrMissingOptimizedArtifact, e.Path, e.Hint)
}

// Unwrap allows errors.Is(err, ErrMissingOptimizedArtifact).
func (e *MissingArtifactError) Unwrap() error {
	return ErrMissingOptimizedArtifact
}

// FactoryOptions are the request-wide switches that shape every session.
type FactoryOptions struct {
	DeviceID      int
	Verbose       bool
	Profile       bool
	SaveOptimized bool
	LoadOptimized bool
}

// Target is the part of a cell the factory needs.
type Target struct {
	Model    models.Descriptor
	Provider Name
	Level    OptimizationLevel
}

// Factory derives a fresh SessionConfig for each cell.
type Factory struct {
	opts FactoryOptions
}

// NewFactory creates a session factory.
func NewFactory(opts FactoryOptions) *Factory {
	return &Factory{opts: opts}
}

// OptimizedArtifactPath is where the optimized graph for a model, provider and
// level is stored: next to the source model as
// {base}_optimized_{provider}_{level}{ext}.
func OptimizedArtifactPath(model models.Descriptor, provider Name, level OptimizationLevel) string {
	return fmt.Sprintf("%s_optimized_%s_%s%s", model.BaseName(), provider, level, model.Ext())
}

// Configure builds the session configuration and picks the artifact to load.
//
// Arguments:
//   - target: The model, provider and level of the cell.
//
// Returns:
//   - SessionConfig: The configuration for this cell only.
//   - string: The artifact path the session must load.
//   - error: ErrUnknownProvider or a *MissingArtifactError; both are cell failures.
func (f *Factory) Configure(target Target) (SessionConfig, string, error) {
	if _, ok := Lookup(target.Provider); !ok {
		return SessionConfig{}, "", errors.Wrapf(ErrUnknownProvider, "%q", target.Provider)
	}
	if _, err := ParseOptimizationLevel(string(target.Level)); err != nil {
		return SessionConfig{}, "", err
	}

	cfg := SessionConfig{
		Provider:   target.Provider,
		Level:      target.Level,
		GraphLevel: target.Level,
		DeviceID:   f.opts.DeviceID,
		Verbose:    f.opts.Verbose,
		Profile:    f.opts.Profile,
	}
	if cfg.Profile {
		cfg.ProfilePrefix = fmt.Sprintf("profile_%s_%s_%s", target.Model.Alias, target.Provider, target.Level)
	}

	artifact := target.Model.Path

	if f.opts.LoadOptimized {
		path := OptimizedArtifactPath(target.Model, target.Provider, target.Level)
		if !util.FileExists(path) {
			return SessionConfig{}, "", &MissingArtifactError{
				Path: path,
				Hint: fmt.Sprintf("inferbench run --save-optimized --model %s --provider %s --optimization %s",
					target.Model.Alias, target.Provider, target.Level),
			}
		}
		cfg.ImportPath = path
		cfg.GraphLevel = OptimizationNone
		artifact = path
	}

	if f.opts.SaveOptimized && f.canExport(cfg) {
		cfg.ExportPath = OptimizedArtifactPath(target.Model, target.Provider, target.Level)
	}

	return cfg, artifact, nil
}

// canExport is false for unoptimized graphs, slow-compiling providers and
// sessions that already load a precompiled artifact.
func (f *Factory) canExport(cfg SessionConfig) bool {
	return cfg.Level != OptimizationNone && !IsSlowCompile(cfg.Provider) && !cfg.Precompiled()
}
