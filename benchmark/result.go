package benchmark

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// RunResult is the outcome of one cell. Timings holds exactly Runs entries when
// Success is true and is empty otherwise.
type RunResult struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	// Level is the optimization level label, suffixed with
	// providers.PrecompiledMarker when a pre-optimized artifact was loaded.
	Level   string `json:"level"`
	Size    int    `json:"size"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	// LoadTime is the session construction time in seconds.
	LoadTime float64 `json:"load_time"`
	// FirstRunTime is the shape discovery inference in seconds.
	FirstRunTime float64 `json:"first_run_time"`
	// Timings are the timed iterations in seconds, in execution order.
	Timings     []float64 `json:"timings,omitempty"`
	OutputShape []int64   `json:"output_shape,omitempty"`
}

// Average is the mean timed iteration in seconds.
func (r RunResult) Average() float64 {
	if len(r.Timings) == 0 {
		return 0
	}
	return stat.Mean(r.Timings, nil)
}

// Min is the fastest timed iteration in seconds.
func (r RunResult) Min() float64 {
	if len(r.Timings) == 0 {
		return 0
	}
	return floats.Min(r.Timings)
}

// Max is the slowest timed iteration in seconds.
func (r RunResult) Max() float64 {
	if len(r.Timings) == 0 {
		return 0
	}
	return floats.Max(r.Timings)
}

// FPS is the steady state throughput, zero when nothing was timed.
func (r RunResult) FPS() float64 {
	if avg := r.Average(); avg > 0 {
		return 1 / avg
	}
	return 0
}

// SizeString renders the input size as "512x512".
func (r RunResult) SizeString() string {
	return fmt.Sprintf("%dx%d", r.Size, r.Size)
}

// fail marks the result failed and drops partial timings.
func (r RunResult) fail(err error) RunResult {
	r.Success = false
	r.Error = err.Error()
	r.Timings = nil
	return r
}
