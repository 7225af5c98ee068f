// Package providers - Graph optimization levels.
package providers

import (
	"strings"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
)

// OptimizationLevel is the graph rewriting tier applied at session construction.
type OptimizationLevel string

const (
	// OptimizationNone disables every graph rewrite.
	OptimizationNone OptimizationLevel = "none"
	// OptimizationBasic applies semantics preserving rewrites such as constant folding.
	OptimizationBasic OptimizationLevel = "basic"
	// OptimizationExtended adds complex node fusions.
	OptimizationExtended OptimizationLevel = "extended"
	// OptimizationFull enables every optimization including layout rewrites.
	OptimizationFull OptimizationLevel = "full"
)

// PrecompiledMarker is appended to a level label when the session loaded an
// artifact that was optimized ahead of time rather than optimized live.
const PrecompiledMarker = "*"

// AllOptimizationLevels is the comparison order.
func AllOptimizationLevels() []OptimizationLevel {
	return []OptimizationLevel{OptimizationNone, OptimizationBasic, OptimizationExtended, OptimizationFull}
}

// ParseOptimizationLevel validates a level name.
func ParseOptimizationLevel(s string) (OptimizationLevel, error) {
	level := OptimizationLevel(strings.ToLower(strings.TrimSpace(s)))
	switch level {
	case OptimizationNone, OptimizationBasic, OptimizationExtended, OptimizationFull:
		return level, nil
	default:
		return "", errors.Errorf("unknown optimization level %q (valid: none, basic, extended, full)", s)
	}
}

// GraphOptimizationLevel maps the level onto the ONNX Runtime setting.
//
// Returns:
//   - ort.GraphOptimizationLevel: The native setting, DisableAll for unknown levels.
func (l OptimizationLevel) GraphOptimizationLevel() ort.GraphOptimizationLevel {
	switch l {
	case OptimizationBasic:
		return ort.GraphOptimizationLevelEnableBasic
	case OptimizationExtended:
		return ort.GraphOptimizationLevelEnableExtended
	case OptimizationFull:
		return ort.GraphOptimizationLevelEnableAll
	default:
		return ort.GraphOptimizationLevelDisableAll
	}
}
