// Package providers - TensorRT execution provider options.
package providers

import (
	"fmt"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
)

// TensorRTOptions contains arguments for the TensorRT provider.
// See: https://onnxruntime.ai/docs/execution-providers/TensorRT-ExecutionProvider.html
type TensorRTOptions struct {
	DeviceID int `json:"deviceID" yaml:"deviceID"`
	// Workspace byte limit for engine building.
	MaxWorkspaceSize int64 `json:"maxWorkspaceSize" yaml:"maxWorkspaceSize"`
	// Build FP16 engines when the hardware supports it.
	FP16Enable bool `json:"fp16Enable" yaml:"fp16Enable"`
	// Persist built engines so reruns skip compilation. Empty disables the cache.
	EngineCachePath string `json:"engineCachePath" yaml:"engineCachePath"`
}

// DefaultTensorRTOptions returns the options used for benchmark sessions.
func DefaultTensorRTOptions(deviceID int) TensorRTOptions {
	return TensorRTOptions{
		DeviceID:         deviceID,
		MaxWorkspaceSize: 1 << 30,
		FP16Enable:       true,
	}
}

// ToMap renders the options with the key names ONNX Runtime expects.
func (o TensorRTOptions) ToMap() map[string]string {
	m := map[string]string{
		"device_id":              fmt.Sprintf("%d", o.DeviceID),
		"trt_max_workspace_size": fmt.Sprintf("%d", o.MaxWorkspaceSize),
		"trt_fp16_enable":        boolFlag(o.FP16Enable),
	}
	if o.EngineCachePath != "" {
		m["trt_engine_cache_enable"] = "1"
		m["trt_engine_cache_path"] = o.EngineCachePath
	}
	return m
}

// ToNativeProviderOptions converts the options to native provider options.
// The caller owns the returned value and must Destroy it.
func (o TensorRTOptions) ToNativeProviderOptions() (*ort.TensorRTProviderOptions, error) {
	opts, err := ort.NewTensorRTProviderOptions()
	if err != nil {
		return nil, errors.Wrap(err, "error creating TensorRT provider options")
	}
	if err := opts.Update(o.ToMap()); err != nil {
		opts.Destroy()
		return nil, errors.Wrap(err, "error updating TensorRT provider options")
	}
	return opts, nil
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
