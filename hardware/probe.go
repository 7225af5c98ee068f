package hardware

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/cpuid/v2"
)

// CommandRunner executes a command and returns its standard output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// DefaultProbe reads the CPU brand from CPUID and GPU names from nvidia-smi.
type DefaultProbe struct {
	Run     CommandRunner
	Timeout time.Duration
}

// NewDefaultProbe creates a probe running real commands.
func NewDefaultProbe() *DefaultProbe {
	return &DefaultProbe{
		Run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, name, args...).Output()
		},
		Timeout: 5 * time.Second,
	}
}

// CPUDescriptor returns the CPU brand string and logical core count.
func (p *DefaultProbe) CPUDescriptor() string {
	brand := strings.TrimSpace(cpuid.CPU.BrandName)
	if brand == "" {
		brand = "Unknown CPU"
	}
	if cpuid.CPU.LogicalCores > 0 {
		return fmt.Sprintf("%s (%d threads)", brand, cpuid.CPU.LogicalCores)
	}
	return brand
}

// GPUDescriptor returns the name of the GPU at deviceIndex, or a generic label
// when nvidia-smi is unavailable.
func (p *DefaultProbe) GPUDescriptor(deviceIndex int) string {
	fallback := fmt.Sprintf("GPU %d", deviceIndex)
	if p.Run == nil {
		return fallback
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.Timeout)
	defer cancel()

	out, err := p.Run(ctx, "nvidia-smi",
		"--query-gpu=name,memory.total",
		"--format=csv,noheader,nounits",
		"-i", strconv.Itoa(deviceIndex),
	)
	if err != nil {
		return fallback
	}
	if d := parseGPUQuery(string(out)); d != "" {
		return d
	}
	return fallback
}

// parseGPUQuery turns "NVIDIA GeForce RTX 4090, 24564" into
// "NVIDIA GeForce RTX 4090 (24564 MiB)".
func parseGPUQuery(out string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(out), "\n")
	fields := strings.Split(line, ",")
	name := strings.TrimSpace(fields[0])
	if name == "" {
		return ""
	}
	if len(fields) > 1 {
		if mem := strings.TrimSpace(fields[1]); mem != "" {
			if _, err := strconv.Atoi(mem); err == nil {
				return fmt.Sprintf("%s (%s MiB)", name, mem)
			}
		}
	}
	return name
}
