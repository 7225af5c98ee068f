// Package providers - Per-cell session configuration.
package providers

// SessionConfig is the configuration of exactly one inference session. A new
// value is built for every cell and never shared.
type SessionConfig struct {
	// Provider is the execution provider the session binds to.
	Provider Name `json:"provider" yaml:"provider"`
	// Level is the requested optimization level for the cell.
	Level OptimizationLevel `json:"level" yaml:"level"`
	// GraphLevel is the level handed to the runtime. It is OptimizationNone
	// when ImportPath is set because the artifact is already optimized.
	GraphLevel OptimizationLevel `json:"graphLevel" yaml:"graphLevel"`
	// DeviceID selects the GPU for device bound providers.
	DeviceID int `json:"deviceID" yaml:"deviceID"`
	// ExportPath, when set, makes the runtime persist the optimized graph
	// while the session is constructed.
	ExportPath string `json:"exportPath,omitempty" yaml:"exportPath,omitempty"`
	// ImportPath is the pre-optimized artifact loaded instead of the source model.
	ImportPath string `json:"importPath,omitempty" yaml:"importPath,omitempty"`
	// Verbose enables verbose runtime logging.
	Verbose bool `json:"verbose" yaml:"verbose"`
	// Profile enables runtime profiling with ProfilePrefix as file prefix.
	Profile       bool   `json:"profile" yaml:"profile"`
	ProfilePrefix string `json:"profilePrefix,omitempty" yaml:"profilePrefix,omitempty"`
}

// Precompiled reports whether the session loads an ahead-of-time optimized artifact.
func (c SessionConfig) Precompiled() bool {
	return c.ImportPath != ""
}

// LevelLabel is the optimization level as reported in results.
func (c SessionConfig) LevelLabel() string {
	if c.Precompiled() {
		return string(c.Level) + PrecompiledMarker
	}
	return string(c.Level)
}
