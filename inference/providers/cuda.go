// Package providers - CUDA execution provider options.
package providers

import (
	"fmt"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
)

// CUDAOptions contains arguments for the CUDA provider.
// See:
// https://onnxruntime.ai/docs/execution-providers/CUDA-ExecutionProvider.html#configuration-options
type CUDAOptions struct {
	// The device ID.
	DeviceID int `json:"deviceID"              yaml:"deviceID"`
	// Whether to do copies in the default stream or use separate streams. The recommended setting is
	// true. If false, there are race conditions and possibly better performance.
	DoCopyInDefaultStream bool `json:"doCopyInDefaultStream" yaml:"doCopyInDefaultStream"`
	// The strategy for extending the device memory arena.
	// kNextPowerOfTwo - subsequent extensions extend by larger amounts (multiplied by powers of two)
	// kSameAsRequested - extend by the requested amount
	ArenaExtendStrategy string `json:"arenaExtendStrategy"   yaml:"arenaExtendStrategy"`
	// The type of search done for cuDNN convolution algorithms.
	// EXHAUSTIVE - expensive exhaustive benchmarking using cudnnFindConvolutionForwardAlgorithmEx
	// HEURISTIC - lightweight heuristic based search using cudnnGetConvolutionForwardAlgorithm_v7
	// DEFAULT - default algorithm using CUDNN_CONVOLUTION_FWD_ALGO_IMPLICIT_PRECOMP_GEMM
	CudnnConvAlgoSearch string `json:"cudnnConvAlgoSearch"   yaml:"cudnnConvAlgoSearch"`
}

// DefaultCUDAOptions returns the options used for benchmark sessions.
func DefaultCUDAOptions(deviceID int) CUDAOptions {
	return CUDAOptions{
		DeviceID:              deviceID,
		DoCopyInDefaultStream: true,
		ArenaExtendStrategy:   "kSameAsRequested",
		CudnnConvAlgoSearch:   "EXHAUSTIVE",
	}
}

// ToMap renders the options with the key names ONNX Runtime expects.
func (o CUDAOptions) ToMap() map[string]string {
	copyInDefault := "0"
	if o.DoCopyInDefaultStream {
		copyInDefault = "1"
	}
	return map[string]string{
		"device_id":                 fmt.Sprintf("%d", o.DeviceID),
		"do_copy_in_default_stream": copyInDefault,
		"arena_extend_strategy":     o.ArenaExtendStrategy,
		"cudnn_conv_algo_search":    o.CudnnConvAlgoSearch,
	}
}

// ToNativeProviderOptions converts the CUDA options to native provider options.
// The caller owns the returned value and must Destroy it.
func (o CUDAOptions) ToNativeProviderOptions() (*ort.CUDAProviderOptions, error) {
	opts, err := ort.NewCUDAProviderOptions()
	if err != nil {
		return nil, errors.Wrap(err, "error creating CUDA provider options")
	}
	if err := opts.Update(o.ToMap()); err != nil {
		opts.Destroy()
		return nil, errors.Wrap(err, "error updating CUDA provider options")
	}
	return opts, nil
}
