// Package inference - ONNX Runtime backend.
package inference

import (
	"log/slog"
	"os"
	"sync"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/nvr-ai/inferbench/inference/providers"
)

// ORTOptions configures the process wide runtime environment.
type ORTOptions struct {
	// LibraryPath is the onnxruntime shared library. Empty uses DefaultLibraryPath.
	LibraryPath string
	// Verbose raises the runtime log level.
	Verbose bool
	Logger  *slog.Logger
}

// ORTBackend runs sessions on ONNX Runtime. Only one backend may be open per
// process because the runtime environment is global.
type ORTBackend struct {
	logger *slog.Logger
	once   sync.Once
}

// NewORTBackend loads the shared library and initializes the environment.
//
// Arguments:
//   - opts: The runtime options.
//
// Returns:
//   - *ORTBackend: The backend. Close it to tear down the environment.
//   - error: An error if the library is missing or fails to initialize.
func NewORTBackend(opts ORTOptions) (*ORTBackend, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	path := opts.LibraryPath
	if path == "" {
		path = DefaultLibraryPath()
	}
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(err, "onnxruntime library not found at %s", path)
	}

	ort.SetSharedLibraryPath(path)
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, errors.Wrap(err, "error initializing ORT environment")
	}
	if opts.Verbose {
		ort.SetEnvironmentLogLevel(ort.LoggingLevelVerbose)
	}

	logger.Debug("onnxruntime initialized", "library", path)
	return &ORTBackend{logger: logger}, nil
}

// AvailableProviders probes each known provider against the runtime.
func (b *ORTBackend) AvailableProviders() ([]string, error) {
	var out []string
	for _, d := range providers.Known() {
		if err := providers.Probe(d.Name); err != nil {
			b.logger.Debug("provider unavailable", "provider", d.Name, "error", err)
			continue
		}
		out = append(out, d.Capability)
	}
	return out, nil
}

// NewSession opens a dynamic session on the first input and output of the
// model.
func (b *ORTBackend) NewSession(artifactPath string, cfg providers.SessionConfig) (Session, error) {
	inputs, outputs, err := ort.GetInputOutputInfo(artifactPath)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading model metadata from %s", artifactPath)
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return nil, errors.Errorf("model %s has %d inputs and %d outputs", artifactPath, len(inputs), len(outputs))
	}

	inPrecision, err := PrecisionOf(inputs[0].DataType)
	if err != nil {
		return nil, errors.Wrapf(err, "input %q", inputs[0].Name)
	}
	outPrecision, err := PrecisionOf(outputs[0].DataType)
	if err != nil {
		return nil, errors.Wrapf(err, "output %q", outputs[0].Name)
	}

	options, err := providers.NewSessionOptions(cfg)
	if err != nil {
		return nil, err
	}
	defer options.Destroy()

	session, err := ort.NewDynamicAdvancedSession(
		artifactPath,
		[]string{inputs[0].Name},
		[]string{outputs[0].Name},
		options,
	)
	if err != nil {
		return nil, errors.Wrapf(err, "error creating session for %s", artifactPath)
	}

	b.logger.Debug("session created",
		"artifact", artifactPath,
		"provider", cfg.Provider,
		"level", cfg.LevelLabel(),
		"input", inputs[0].String(),
		"output", outputs[0].String(),
	)

	return &ortSession{
		session:      session,
		inPrecision:  inPrecision,
		outPrecision: outPrecision,
		bound:        make(map[*Tensor]ort.Value),
	}, nil
}

// Close destroys the runtime environment.
func (b *ORTBackend) Close() error {
	var err error
	b.once.Do(func() {
		err = ort.DestroyEnvironment()
	})
	return err
}

type ortSession struct {
	session      *ort.DynamicAdvancedSession
	inPrecision  Precision
	outPrecision Precision
	bound        map[*Tensor]ort.Value
}

func (s *ortSession) InputPrecision() Precision  { return s.inPrecision }
func (s *ortSession) OutputPrecision() Precision { return s.outPrecision }

func (s *ortSession) Discover(input *Tensor) ([]int64, error) {
	in, err := s.bind(input)
	if err != nil {
		return nil, err
	}

	outputs := []ort.Value{nil}
	if err := s.session.Run([]ort.Value{in}, outputs); err != nil {
		return nil, errors.Wrap(err, "shape discovery run failed")
	}
	if outputs[0] == nil {
		return nil, errors.New("runtime returned no output")
	}
	defer outputs[0].Destroy()

	shape := outputs[0].GetShape()
	return append([]int64(nil), shape...), nil
}

func (s *ortSession) Run(input, output *Tensor) error {
	in, err := s.bind(input)
	if err != nil {
		return err
	}
	out, err := s.bind(output)
	if err != nil {
		return err
	}
	if err := s.session.Run([]ort.Value{in}, []ort.Value{out}); err != nil {
		return errors.Wrap(err, "inference failed")
	}
	return nil
}

// bind wraps the host buffer in a native tensor once per Tensor.
func (s *ortSession) bind(t *Tensor) (ort.Value, error) {
	if v, ok := s.bound[t]; ok {
		return v, nil
	}

	shape := ort.NewShape(t.Shape...)
	var (
		v   ort.Value
		err error
	)
	switch t.Precision {
	case PrecisionFP32:
		v, err = ort.NewTensor(shape, t.Float32)
	case PrecisionFP16:
		v, err = ort.NewCustomDataTensor(shape, t.Half, ort.TensorElementDataTypeFloat16)
	default:
		err = errors.Errorf("unsupported precision %q", t.Precision)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "error binding %s tensor %v", t.Precision, t.Shape)
	}

	s.bound[t] = v
	return v, nil
}

func (s *ortSession) Close() error {
	for t, v := range s.bound {
		if err := v.Destroy(); err != nil {
			return errors.Wrap(err, "error destroying tensor")
		}
		delete(s.bound, t)
	}
	if s.session != nil {
		err := s.session.Destroy()
		s.session = nil
		if err != nil {
			return errors.Wrap(err, "error destroying session")
		}
	}
	return nil
}
