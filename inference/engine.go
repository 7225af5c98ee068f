// Package inference - Runtime contract used by the benchmark engine.
package inference

import (
	"github.com/nvr-ai/inferbench/inference/providers"
)

// Backend is an inference runtime that can report its providers and open
// sessions. Implementations must be safe to reuse for many sequential sessions.
type Backend interface {
	providers.Prober

	// NewSession loads the artifact with the given configuration. The returned
	// session owns every native resource it allocates.
	NewSession(artifactPath string, cfg providers.SessionConfig) (Session, error)
}

// Session is one loaded model bound to one provider.
type Session interface {
	// InputPrecision is the element type the model declares for its input.
	InputPrecision() Precision
	// OutputPrecision is the element type the model declares for its output.
	OutputPrecision() Precision
	// Discover runs a single inference with a runtime allocated output and
	// returns the output shape.
	Discover(input *Tensor) ([]int64, error)
	// Run executes one inference writing into a caller allocated output.
	// Repeated calls with the same tensors reuse their native bindings.
	Run(input, output *Tensor) error
	// Close releases the session and every tensor binding. Close is idempotent.
	Close() error
}
