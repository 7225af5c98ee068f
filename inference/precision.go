// Package inference - Tensor element precision.
package inference

import (
	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
)

// Precision is the floating point width of tensor elements.
type Precision string

// Precision constants are the element types the benchmark can feed a model.
const (
	PrecisionFP16 Precision = "FP16"
	PrecisionFP32 Precision = "FP32"
)

// ElementSize is the byte width of one element.
func (p Precision) ElementSize() int {
	if p == PrecisionFP16 {
		return 2
	}
	return 4
}

// PrecisionOf maps a native element type to a Precision.
func PrecisionOf(t ort.TensorElementDataType) (Precision, error) {
	switch t {
	case ort.TensorElementDataTypeFloat:
		return PrecisionFP32, nil
	case ort.TensorElementDataTypeFloat16:
		return PrecisionFP16, nil
	default:
		return "", errors.Errorf("unsupported tensor element type %v", t)
	}
}
