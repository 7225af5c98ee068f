package benchmark

import (
	"os"
	"sync"

	"github.com/pkg/errors"

	"github.com/nvr-ai/inferbench/inference"
	"github.com/nvr-ai/inferbench/inference/providers"
)

// fakeBackend records session lifecycles and injects failures per stage.
type fakeBackend struct {
	mu        sync.Mutex
	available []string
	precision inference.Precision

	open    int
	maxOpen int
	opened  int
	closed  int

	artifacts []string
	configs   []providers.SessionConfig
	inputs    map[int][]uint64
	runs      int

	failLoad     map[providers.Name]error
	failDiscover error
	failRunAt    int
	panicOnRun   bool
	// exportWrites simulates the runtime persisting the optimized graph.
	exportWrites bool
}

func newFakeBackend(available ...providers.Name) *fakeBackend {
	b := &fakeBackend{precision: inference.PrecisionFP32, inputs: make(map[int][]uint64), failRunAt: -1}
	for _, n := range available {
		d, _ := providers.Lookup(n)
		b.available = append(b.available, d.Capability)
	}
	return b
}

func (b *fakeBackend) AvailableProviders() ([]string, error) {
	return b.available, nil
}

func (b *fakeBackend) NewSession(artifactPath string, cfg providers.SessionConfig) (inference.Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.artifacts = append(b.artifacts, artifactPath)
	b.configs = append(b.configs, cfg)
	if err := b.failLoad[cfg.Provider]; err != nil {
		return nil, err
	}
	if b.exportWrites && cfg.ExportPath != "" {
		if err := os.WriteFile(cfg.ExportPath, []byte("optimized"), 0o644); err != nil {
			return nil, err
		}
	}

	b.opened++
	b.open++
	if b.open > b.maxOpen {
		b.maxOpen = b.open
	}
	return &fakeSession{backend: b}, nil
}

type fakeSession struct {
	backend *fakeBackend
	shape   []int64
	calls   int
	closed  bool
}

func (s *fakeSession) InputPrecision() inference.Precision  { return s.backend.precision }
func (s *fakeSession) OutputPrecision() inference.Precision { return s.backend.precision }

func (s *fakeSession) Discover(input *inference.Tensor) ([]int64, error) {
	b := s.backend
	if b.failDiscover != nil {
		return nil, b.failDiscover
	}
	size := int(input.Shape[3])
	b.mu.Lock()
	b.inputs[size] = append(b.inputs[size], input.Fingerprint())
	b.mu.Unlock()

	s.shape = []int64{1, 3, input.Shape[2] * 2, input.Shape[3] * 2}
	return s.shape, nil
}

func (s *fakeSession) Run(input, output *inference.Tensor) error {
	b := s.backend
	if s.closed {
		return errors.New("session closed")
	}
	if len(output.Shape) != len(s.shape) || output.Shape[2] != s.shape[2] {
		return errors.Errorf("output shape %v does not match %v", output.Shape, s.shape)
	}
	if b.panicOnRun {
		panic("device lost")
	}
	call := s.calls
	s.calls++
	b.mu.Lock()
	b.runs++
	b.mu.Unlock()
	if b.failRunAt >= 0 && call == b.failRunAt {
		return errors.New("CUDA error: out of memory")
	}
	return nil
}

func (s *fakeSession) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	b := s.backend
	b.mu.Lock()
	b.open--
	b.closed++
	b.mu.Unlock()
	return nil
}

type fakeProbe struct{}

func (fakeProbe) CPUDescriptor() string          { return "Test CPU" }
func (fakeProbe) GPUDescriptor(index int) string { return "Test GPU" }
