package providers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/inferbench/models"
)

func testModel(t *testing.T) models.Descriptor {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "2x_compact.onnx")
	require.NoError(t, os.WriteFile(path, []byte("onnx"), 0o644))
	return models.Descriptor{Alias: "compact2x", Path: path}
}

func TestOptimizedArtifactPath(t *testing.T) {
	m := models.Descriptor{Alias: "compact2x", Path: filepath.Join("models", "2x_compact.onnx")}
	assert.Equal(t, filepath.Join("models", "2x_compact_optimized_cuda_full.onnx"),
		OptimizedArtifactPath(m, CUDA, OptimizationFull))
}

func TestConfigureLiveOptimization(t *testing.T) {
	m := testModel(t)
	f := NewFactory(FactoryOptions{DeviceID: 1, Verbose: true, Profile: true})

	cfg, artifact, err := f.Configure(Target{Model: m, Provider: CUDA, Level: OptimizationExtended})
	require.NoError(t, err)

	assert.Equal(t, m.Path, artifact)
	assert.Equal(t, OptimizationExtended, cfg.GraphLevel)
	assert.Equal(t, 1, cfg.DeviceID)
	assert.True(t, cfg.Verbose)
	assert.True(t, cfg.Profile)
	assert.Equal(t, "profile_compact2x_cuda_extended", cfg.ProfilePrefix)
	assert.Empty(t, cfg.ExportPath)
	assert.False(t, cfg.Precompiled())
	assert.Equal(t, "extended", cfg.LevelLabel())
}

func TestConfigureExport(t *testing.T) {
	m := testModel(t)
	f := NewFactory(FactoryOptions{SaveOptimized: true})

	cfg, _, err := f.Configure(Target{Model: m, Provider: CUDA, Level: OptimizationFull})
	require.NoError(t, err)
	assert.Equal(t, OptimizedArtifactPath(m, CUDA, OptimizationFull), cfg.ExportPath)

	cfg, _, err = f.Configure(Target{Model: m, Provider: CUDA, Level: OptimizationNone})
	require.NoError(t, err)
	assert.Empty(t, cfg.ExportPath, "unoptimized graphs are not exported")

	cfg, _, err = f.Configure(Target{Model: m, Provider: TensorRT, Level: OptimizationFull})
	require.NoError(t, err)
	assert.Empty(t, cfg.ExportPath, "slow-compiling providers are not exported")
}

func TestConfigureLoadMissingArtifact(t *testing.T) {
	m := testModel(t)
	f := NewFactory(FactoryOptions{LoadOptimized: true})

	_, _, err := f.Configure(Target{Model: m, Provider: CPU, Level: OptimizationBasic})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingOptimizedArtifact))

	var missing *MissingArtifactError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, OptimizedArtifactPath(m, CPU, OptimizationBasic), missing.Path)
	assert.Contains(t, missing.Hint, "--save-optimized")
	assert.Contains(t, missing.Hint, "--optimization basic")
	assert.Contains(t, err.Error(), missing.Path)
}

func TestConfigureLoadPrecompiled(t *testing.T) {
	m := testModel(t)
	optimized := OptimizedArtifactPath(m, CPU, OptimizationFull)
	require.NoError(t, os.WriteFile(optimized, []byte("optimized"), 0o644))

	f := NewFactory(FactoryOptions{LoadOptimized: true, SaveOptimized: true})
	cfg, artifact, err := f.Configure(Target{Model: m, Provider: CPU, Level: OptimizationFull})
	require.NoError(t, err)

	assert.Equal(t, optimized, artifact)
	assert.Equal(t, optimized, cfg.ImportPath)
	assert.Equal(t, OptimizationNone, cfg.GraphLevel)
	assert.Equal(t, OptimizationFull, cfg.Level)
	assert.Empty(t, cfg.ExportPath, "load mode never exports")
	assert.Equal(t, "full"+PrecompiledMarker, cfg.LevelLabel())
}

func TestConfigureUnknownProvider(t *testing.T) {
	f := NewFactory(FactoryOptions{})
	_, _, err := f.Configure(Target{Model: testModel(t), Provider: "vulkan", Level: OptimizationFull})
	assert.True(t, errors.Is(err, ErrUnknownProvider))
}
