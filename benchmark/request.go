// Package benchmark - Sweep controller and timed-run engine.
package benchmark

import (
	"fmt"

	"github.com/nvr-ai/inferbench/inference"
	"github.com/nvr-ai/inferbench/inference/providers"
)

// SmallestSize is the only size the cpu provider runs at during a size sweep.
const SmallestSize = 256

// CanonicalSizes are the spatial sizes of an automatic size sweep.
func CanonicalSizes() []int {
	return []int{256, 512, 1024}
}

// Request holds the user supplied sweep axes and switches.
type Request struct {
	// Model is a catalog alias or "all".
	Model string `json:"model" yaml:"model"`
	// Size is the square input size. Zero sweeps CanonicalSizes.
	Size int `json:"size" yaml:"size"`
	// Provider is a provider name, a comma separated list, "gpu" or "all".
	Provider string `json:"provider" yaml:"provider"`
	// Optimization is the level used unless CompareOptimizations is set.
	Optimization providers.OptimizationLevel `json:"optimization" yaml:"optimization"`
	// CompareOptimizations runs every level for each cell.
	CompareOptimizations bool `json:"compareOptimizations" yaml:"compareOptimizations"`
	Warmup               int  `json:"warmup" yaml:"warmup"`
	Runs                 int  `json:"runs" yaml:"runs"`
	// GPU is the device index for GPU providers.
	GPU             int    `json:"gpu" yaml:"gpu"`
	Verbose         bool   `json:"verbose" yaml:"verbose"`
	Profile         bool   `json:"profile" yaml:"profile"`
	SaveOptimized   bool   `json:"saveOptimized" yaml:"saveOptimized"`
	LoadOptimized   bool   `json:"loadOptimized" yaml:"loadOptimized"`
	IncludeTensorRT bool   `json:"includeTensorRT" yaml:"includeTensorRT"`
	Seed            uint64 `json:"seed" yaml:"seed"`
}

// DefaultRequest returns the request used when no flag is given.
func DefaultRequest() Request {
	return Request{
		Model:        "compact2x",
		Size:         512,
		Provider:     providers.GroupAll,
		Optimization: providers.OptimizationFull,
		Warmup:       5,
		Runs:         20,
		Seed:         inference.DefaultSeed,
	}
}

// SweepSizes reports whether the size axis is the automatic size sweep.
func (r Request) SweepSizes() bool {
	return r.Size == 0
}

// Levels returns the optimization axis.
func (r Request) Levels() []providers.OptimizationLevel {
	if r.CompareOptimizations {
		return providers.AllOptimizationLevels()
	}
	return []providers.OptimizationLevel{r.Optimization}
}

// FactoryOptions returns the session factory switches of the request.
func (r Request) FactoryOptions() providers.FactoryOptions {
	return providers.FactoryOptions{
		DeviceID:      r.GPU,
		Verbose:       r.Verbose,
		Profile:       r.Profile,
		SaveOptimized: r.SaveOptimized,
		LoadOptimized: r.LoadOptimized,
	}
}

// String summarizes the request for the result log header.
func (r Request) String() string {
	size := "sweep"
	if !r.SweepSizes() {
		size = fmt.Sprintf("%d", r.Size)
	}
	level := string(r.Optimization)
	if r.CompareOptimizations {
		level = "compare"
	}
	s := fmt.Sprintf("model=%s size=%s provider=%s optimization=%s warmup=%d runs=%d gpu=%d seed=%d",
		r.Model, size, r.Provider, level, r.Warmup, r.Runs, r.GPU, r.Seed)
	for _, f := range []struct {
		on   bool
		name string
	}{
		{r.Verbose, "verbose"},
		{r.Profile, "profile"},
		{r.SaveOptimized, "save-optimized"},
		{r.LoadOptimized, "load-optimized"},
		{r.IncludeTensorRT, "include-tensorrt"},
	} {
		if f.on {
			s += " " + f.name
		}
	}
	return s
}
