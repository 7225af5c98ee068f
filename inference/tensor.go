// Package inference - Host tensors shared with the runtime.
package inference

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// Tensor is a dense host buffer. Exactly one of Float32 or Half backs it,
// depending on Precision. Half holds little-endian IEEE 754 binary16 values.
//
// The runtime binds directly to the backing slice, so a Tensor must not be
// reshaped or reallocated once it has been passed to a Session.
type Tensor struct {
	Shape     []int64
	Precision Precision
	Float32   []float32
	Half      []byte
}

// NewTensor allocates a zeroed tensor.
//
// Arguments:
//   - shape: The dimensions, all positive.
//   - precision: The element width.
//
// Returns:
//   - *Tensor: The tensor.
//   - error: An error if the shape has a non-positive dimension.
func NewTensor(shape []int64, precision Precision) (*Tensor, error) {
	dims := make(tensor.Shape, len(shape))
	for i, d := range shape {
		if d <= 0 {
			return nil, errors.Errorf("invalid tensor shape %v: dimension %d is %d", shape, i, d)
		}
		dims[i] = int(d)
	}
	if len(dims) == 0 {
		return nil, errors.New("tensor shape is empty")
	}

	t := &Tensor{
		Shape:     append([]int64(nil), shape...),
		Precision: precision,
	}
	n := dims.TotalSize()
	switch precision {
	case PrecisionFP32:
		t.Float32 = make([]float32, n)
	case PrecisionFP16:
		t.Half = make([]byte, n*PrecisionFP16.ElementSize())
	default:
		return nil, errors.Errorf("unsupported precision %q", precision)
	}
	return t, nil
}

// Len is the number of elements.
func (t *Tensor) Len() int {
	if t.Precision == PrecisionFP16 {
		return len(t.Half) / PrecisionFP16.ElementSize()
	}
	return len(t.Float32)
}

// Bytes is the size of the backing buffer.
func (t *Tensor) Bytes() int {
	return t.Len() * t.Precision.ElementSize()
}

// Fingerprint hashes the element bits. Equal fingerprints mean bit identical
// contents for the same shape and precision.
func (t *Tensor) Fingerprint() uint64 {
	d := xxhash.New()
	if t.Precision == PrecisionFP16 {
		_, _ = d.Write(t.Half)
		return d.Sum64()
	}

	var buf [4]byte
	for _, v := range t.Float32 {
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
		_, _ = d.Write(buf[:])
	}
	return d.Sum64()
}
