package providers

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticProber struct {
	capabilities []string
	err          error
	calls        int
}

func (p *staticProber) AvailableProviders() ([]string, error) {
	p.calls++
	return p.capabilities, p.err
}

func everything() *staticProber {
	return &staticProber{capabilities: []string{
		"CPUExecutionProvider", "DmlExecutionProvider", "CUDAExecutionProvider", "TensorrtExecutionProvider",
	}}
}

func TestNewCatalogQueriesOnce(t *testing.T) {
	prober := everything()
	catalog, err := NewCatalog(prober)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := catalog.Intersect("all", true)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, prober.calls)
	assert.Equal(t, []Name{CPU, DirectML, CUDA, TensorRT}, catalog.Available())
}

func TestNewCatalogProbeError(t *testing.T) {
	_, err := NewCatalog(&staticProber{err: errors.New("library missing")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "library missing")
}

func TestIntersectGroups(t *testing.T) {
	catalog, err := NewCatalog(everything())
	require.NoError(t, err)

	tests := []struct {
		name        string
		request     string
		includeSlow bool
		want        []Name
		excluded    []Name
	}{
		{name: "all", request: "all", want: []Name{CPU, DirectML, CUDA}, excluded: []Name{TensorRT}},
		{name: "all with tensorrt", request: "all", includeSlow: true, want: []Name{CPU, DirectML, CUDA, TensorRT}},
		{name: "gpu", request: "gpu", want: []Name{DirectML, CUDA}, excluded: []Name{TensorRT}},
		{name: "gpu with tensorrt", request: "GPU", includeSlow: true, want: []Name{DirectML, CUDA, TensorRT}},
		{name: "explicit tensorrt", request: "tensorrt", want: []Name{TensorRT}},
		{name: "group plus explicit", request: "gpu,tensorrt", want: []Name{DirectML, CUDA, TensorRT}},
		{name: "list keeps order", request: "cuda, cpu, cuda", want: []Name{CUDA, CPU}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sel, err := catalog.Intersect(tc.request, tc.includeSlow)
			require.NoError(t, err)
			assert.Equal(t, tc.want, sel.Providers)
			assert.Equal(t, tc.excluded, sel.Excluded)
		})
	}
}

func TestIntersectDropsUnavailable(t *testing.T) {
	catalog, err := NewCatalog(&staticProber{capabilities: []string{"CPUExecutionProvider", "CUDAExecutionProvider"}})
	require.NoError(t, err)

	sel, err := catalog.Intersect("all", true)
	require.NoError(t, err)
	assert.Equal(t, []Name{CPU, CUDA}, sel.Providers)
	assert.Equal(t, []Name{DirectML, TensorRT}, sel.Unavailable)
}

func TestIntersectErrors(t *testing.T) {
	catalog, err := NewCatalog(&staticProber{capabilities: []string{"CPUExecutionProvider"}})
	require.NoError(t, err)

	_, err = catalog.Intersect("vulkan", false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownProvider))
	assert.Contains(t, err.Error(), "cpu, directml, cuda, tensorrt, gpu, all")

	_, err = catalog.Intersect("gpu", false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoProviders))
	assert.Contains(t, err.Error(), "cpu")

	_, err = catalog.Intersect(" , ", false)
	assert.True(t, errors.Is(err, ErrUnknownProvider))
}

func TestParseOptimizationLevel(t *testing.T) {
	for _, level := range AllOptimizationLevels() {
		got, err := ParseOptimizationLevel(string(level))
		require.NoError(t, err)
		assert.Equal(t, level, got)
	}

	got, err := ParseOptimizationLevel(" FULL ")
	require.NoError(t, err)
	assert.Equal(t, OptimizationFull, got)

	_, err = ParseOptimizationLevel("max")
	assert.Error(t, err)
}

func TestGraphOptimizationLevelMapping(t *testing.T) {
	assert.Equal(t, []OptimizationLevel{OptimizationNone, OptimizationBasic, OptimizationExtended, OptimizationFull},
		AllOptimizationLevels())
	assert.NotEqual(t, OptimizationNone.GraphOptimizationLevel(), OptimizationFull.GraphOptimizationLevel())
	assert.NotEqual(t, OptimizationBasic.GraphOptimizationLevel(), OptimizationExtended.GraphOptimizationLevel())
}

func TestProviderOptionMaps(t *testing.T) {
	cuda := DefaultCUDAOptions(1).ToMap()
	assert.Equal(t, "1", cuda["device_id"])
	assert.Equal(t, "1", cuda["do_copy_in_default_stream"])

	trt := DefaultTensorRTOptions(2).ToMap()
	assert.Equal(t, "2", trt["device_id"])
	assert.Equal(t, "1", trt["trt_fp16_enable"])
	assert.NotContains(t, trt, "trt_engine_cache_enable")

	cached := TensorRTOptions{EngineCachePath: "/tmp/trt"}.ToMap()
	assert.Equal(t, "1", cached["trt_engine_cache_enable"])
	assert.Equal(t, "/tmp/trt", cached["trt_engine_cache_path"])
}
