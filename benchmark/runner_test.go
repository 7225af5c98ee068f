package benchmark

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/inferbench/inference"
	"github.com/nvr-ai/inferbench/inference/providers"
	"github.com/nvr-ai/inferbench/models"
)

func testModel(t *testing.T, alias string, fixed int) models.Descriptor {
	t.Helper()
	path := filepath.Join(t.TempDir(), alias+".onnx")
	require.NoError(t, os.WriteFile(path, []byte("onnx"), 0o644))
	return models.Descriptor{Alias: alias, Path: path, FixedSize: fixed}
}

func newTestRunner(b *fakeBackend, opts providers.FactoryOptions, warmup, runs int) *Runner {
	return NewRunner(RunnerOptions{
		Backend: b,
		Factory: providers.NewFactory(opts),
		Warmup:  warmup,
		Runs:    runs,
		Seed:    inference.DefaultSeed,
	})
}

func TestRunCellSuccess(t *testing.T) {
	b := newFakeBackend(providers.CPU)
	r := newTestRunner(b, providers.FactoryOptions{}, 2, 3)

	res := r.RunCell(Cell{Model: testModel(t, "compact2x", 0), Size: 32, Provider: providers.CPU, Level: providers.OptimizationFull})

	require.True(t, res.Success, res.Error)
	assert.Empty(t, res.Error)
	assert.Len(t, res.Timings, 3)
	assert.Equal(t, "full", res.Level)
	assert.Equal(t, "32x32", res.SizeString())
	assert.Equal(t, []int64{1, 3, 64, 64}, res.OutputShape)
	assert.GreaterOrEqual(t, res.LoadTime, 0.0)
	assert.GreaterOrEqual(t, res.FirstRunTime, 0.0)

	assert.Equal(t, 5, b.runs, "warmup and timed iterations share the bound buffers")
	assert.Equal(t, 1, b.opened)
	assert.Equal(t, 1, b.closed)
	assert.Equal(t, providers.OptimizationFull, b.configs[0].GraphLevel)
}

func TestRunCellHalfPrecision(t *testing.T) {
	b := newFakeBackend(providers.CUDA)
	b.precision = inference.PrecisionFP16
	r := newTestRunner(b, providers.FactoryOptions{}, 0, 1)

	res := r.RunCell(Cell{Model: testModel(t, "span2x", 0), Size: 16, Provider: providers.CUDA, Level: providers.OptimizationBasic})
	require.True(t, res.Success, res.Error)
	assert.Len(t, res.Timings, 1)
}

func TestRunCellFailures(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(b *fakeBackend)
		stage  Stage
		opened int
	}{
		{
			name:   "load",
			setup:  func(b *fakeBackend) { b.failLoad = map[providers.Name]error{providers.CPU: errors.New("corrupt model")} },
			stage:  StageLoad,
			opened: 0,
		},
		{
			name:   "discovery",
			setup:  func(b *fakeBackend) { b.failDiscover = errors.New("invalid input") },
			stage:  StageDiscovery,
			opened: 1,
		},
		{
			name:   "warmup",
			setup:  func(b *fakeBackend) { b.failRunAt = 0 },
			stage:  StageWarmup,
			opened: 1,
		},
		{
			name:   "timed",
			setup:  func(b *fakeBackend) { b.failRunAt = 3 },
			stage:  StageTimed,
			opened: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newFakeBackend(providers.CPU)
			tt.setup(b)
			r := newTestRunner(b, providers.FactoryOptions{}, 2, 5)

			res := r.RunCell(Cell{Model: testModel(t, "compact2x", 0), Size: 8, Provider: providers.CPU, Level: providers.OptimizationNone})

			assert.False(t, res.Success)
			assert.Empty(t, res.Timings)
			assert.Contains(t, res.Error, string(tt.stage)+":")
			assert.Equal(t, tt.opened, b.opened)
			assert.Equal(t, 0, b.open, "session must be released")
		})
	}
}

func TestRunCellRecoversPanic(t *testing.T) {
	b := newFakeBackend(providers.CPU)
	b.panicOnRun = true
	r := newTestRunner(b, providers.FactoryOptions{}, 1, 1)

	res := r.RunCell(Cell{Model: testModel(t, "compact2x", 0), Size: 8, Provider: providers.CPU, Level: providers.OptimizationNone})

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "warmup: panic: device lost")
	assert.Empty(t, res.Timings)
	assert.Equal(t, 1, b.closed)
}

func TestRunCellMissingOptimizedArtifact(t *testing.T) {
	b := newFakeBackend(providers.CUDA)
	r := newTestRunner(b, providers.FactoryOptions{LoadOptimized: true}, 1, 1)
	model := testModel(t, "compact2x", 0)

	res := r.RunCell(Cell{Model: model, Size: 8, Provider: providers.CUDA, Level: providers.OptimizationBasic})

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "configure:")
	assert.Contains(t, res.Error, providers.OptimizedArtifactPath(model, providers.CUDA, providers.OptimizationBasic))
	assert.Contains(t, res.Error, "--save-optimized")
	assert.Empty(t, b.artifacts, "no session is attempted")
}

func TestRunCellUnknownProvider(t *testing.T) {
	b := newFakeBackend(providers.CPU)
	r := newTestRunner(b, providers.FactoryOptions{}, 1, 1)

	res := r.RunCell(Cell{Model: testModel(t, "compact2x", 0), Size: 8, Provider: "openvino", Level: providers.OptimizationNone})

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "unknown provider")
	assert.Zero(t, b.opened)
}

func TestRunCellDeterministicInput(t *testing.T) {
	b := newFakeBackend(providers.CPU, providers.CUDA)
	r := newTestRunner(b, providers.FactoryOptions{}, 0, 1)
	model := testModel(t, "compact2x", 0)

	for _, p := range []providers.Name{providers.CPU, providers.CUDA, providers.CPU} {
		res := r.RunCell(Cell{Model: model, Size: 16, Provider: p, Level: providers.OptimizationNone})
		require.True(t, res.Success, res.Error)
	}

	prints := b.inputs[16]
	require.Len(t, prints, 3)
	assert.Equal(t, prints[0], prints[1])
	assert.Equal(t, prints[0], prints[2])
}
