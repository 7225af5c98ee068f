// Package providers - Native session options.
package providers

import (
	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
)

// optimizedModelWriter is implemented by runtime builds that can serialize the
// optimized graph during session construction.
type optimizedModelWriter interface {
	SetOptimizedModelFilePath(path string) error
}

// profiler is implemented by runtime builds that expose session profiling.
type profiler interface {
	EnableProfiling(filePrefix string) error
}

// NewSessionOptions builds native options for one session.
//
// The caller owns the returned options and must Destroy them once the session
// has been created.
//
// Arguments:
//   - cfg: The session configuration.
//
// Returns:
//   - *ort.SessionOptions: Configured options.
//   - error: An error if the provider could not be enabled.
func NewSessionOptions(cfg SessionConfig) (*ort.SessionOptions, error) {
	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, errors.Wrap(err, "error creating ORT session options")
	}

	if err := configure(options, cfg); err != nil {
		options.Destroy()
		return nil, err
	}
	return options, nil
}

func configure(options *ort.SessionOptions, cfg SessionConfig) error {
	if err := options.SetGraphOptimizationLevel(cfg.GraphLevel.GraphOptimizationLevel()); err != nil {
		return errors.Wrap(err, "error setting graph optimization level")
	}

	if cfg.ExportPath != "" {
		w, ok := interface{}(options).(optimizedModelWriter)
		if !ok {
			return errors.New("this onnxruntime build cannot export optimized models")
		}
		if err := w.SetOptimizedModelFilePath(cfg.ExportPath); err != nil {
			return errors.Wrapf(err, "error setting optimized model path %s", cfg.ExportPath)
		}
	}

	if cfg.Profile {
		p, ok := interface{}(options).(profiler)
		if !ok {
			return errors.New("this onnxruntime build does not support profiling")
		}
		if err := p.EnableProfiling(cfg.ProfilePrefix); err != nil {
			return errors.Wrap(err, "error enabling profiling")
		}
	}

	return appendProvider(options, cfg.Provider, cfg.DeviceID)
}

// appendProvider enables the execution provider on the options. CPU needs no
// registration.
func appendProvider(options *ort.SessionOptions, name Name, deviceID int) error {
	switch name {
	case CPU:
		return nil
	case CUDA:
		return appendCUDA(options, deviceID)
	case TensorRT:
		trt, err := DefaultTensorRTOptions(deviceID).ToNativeProviderOptions()
		if err != nil {
			return err
		}
		defer trt.Destroy()
		if err := options.AppendExecutionProviderTensorRT(trt); err != nil {
			return errors.Wrap(err, "error enabling TensorRT")
		}
		// Nodes TensorRT cannot take fall back to CUDA rather than CPU.
		return appendCUDA(options, deviceID)
	case DirectML:
		// DirectML does not support parallel execution.
		if err := options.SetExecutionMode(ort.ExecutionModeSequential); err != nil {
			return errors.Wrap(err, "error setting sequential execution for DirectML")
		}
		if err := options.AppendExecutionProviderDirectML(deviceID); err != nil {
			return errors.Wrap(err, "error enabling DirectML")
		}
		return nil
	default:
		return errors.Wrapf(ErrUnknownProvider, "%q", name)
	}
}

func appendCUDA(options *ort.SessionOptions, deviceID int) error {
	cuda, err := DefaultCUDAOptions(deviceID).ToNativeProviderOptions()
	if err != nil {
		return err
	}
	defer cuda.Destroy()
	if err := options.AppendExecutionProviderCUDA(cuda); err != nil {
		return errors.Wrap(err, "error enabling CUDA")
	}
	return nil
}

// Probe reports whether the runtime can enable the provider by registering it
// on throwaway options.
func Probe(name Name) error {
	options, err := ort.NewSessionOptions()
	if err != nil {
		return errors.Wrap(err, "error creating ORT session options")
	}
	defer options.Destroy()
	return appendProvider(options, name, 0)
}
