// Package hardware - Host identity for result lines.
package hardware

import (
	"sync"

	"github.com/nvr-ai/inferbench/inference/providers"
)

// Probe reports human readable descriptors of the host's compute devices.
type Probe interface {
	CPUDescriptor() string
	GPUDescriptor(deviceIndex int) string
}

// Info memoizes the answers of a Probe. Each descriptor is queried at most once
// per Info value, on first use.
type Info struct {
	probe Probe

	cpuOnce sync.Once
	cpu     string

	platformOnce sync.Once
	platform     string

	mu  sync.Mutex
	gpu map[int]string
}

// NewInfo wraps a probe. A nil probe uses NewDefaultProbe.
func NewInfo(probe Probe) *Info {
	if probe == nil {
		probe = NewDefaultProbe()
	}
	return &Info{probe: probe, gpu: make(map[int]string)}
}

// CPU returns the CPU descriptor.
func (i *Info) CPU() string {
	i.cpuOnce.Do(func() {
		i.cpu = i.probe.CPUDescriptor()
	})
	return i.cpu
}

// GPU returns the descriptor of the GPU at deviceIndex.
func (i *Info) GPU(deviceIndex int) string {
	i.mu.Lock()
	defer i.mu.Unlock()
	if d, ok := i.gpu[deviceIndex]; ok {
		return d
	}
	d := i.probe.GPUDescriptor(deviceIndex)
	i.gpu[deviceIndex] = d
	return d
}

// Platform returns the operating system tag.
func (i *Info) Platform() string {
	i.platformOnce.Do(func() {
		i.platform = PlatformTag()
	})
	return i.platform
}

// Descriptor picks the device a cell ran on: the CPU for the cpu provider and
// the selected GPU for every other provider.
//
// Arguments:
//   - provider: The cell's provider.
//   - deviceIndex: The GPU index of the request.
//
// Returns:
//   - string: The descriptor.
func (i *Info) Descriptor(provider providers.Name, deviceIndex int) string {
	if provider == providers.CPU {
		return i.CPU()
	}
	return i.GPU(deviceIndex)
}
