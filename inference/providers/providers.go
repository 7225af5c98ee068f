package providers

// Name is the logical name of an execution provider.
type Name string

const (
	// CPU runs inference on the default CPU execution provider.
	CPU Name = "cpu"
	// DirectML uses DirectX 12 capable GPUs on Windows.
	DirectML Name = "directml"
	// CUDA uses NVIDIA CUDA for GPU acceleration.
	CUDA Name = "cuda"
	// TensorRT uses NVIDIA TensorRT. Engines are compiled ahead of the first
	// inference, which can take minutes.
	TensorRT Name = "tensorrt"
)

const (
	// GroupAll expands to every known provider.
	GroupAll = "all"
	// GroupGPU expands to every known provider except CPU.
	GroupGPU = "gpu"
)

// Descriptor pairs a logical provider name with the identifier the runtime
// reports when the provider is compiled in.
type Descriptor struct {
	Name Name `json:"name" yaml:"name"`
	// Capability is the ONNX Runtime execution provider identifier.
	Capability string `json:"capability" yaml:"capability"`
	// SlowCompile marks providers whose first inference includes an ahead of
	// time engine build.
	SlowCompile bool `json:"slowCompile" yaml:"slowCompile"`
}

// known is the canonical provider order used for group expansion.
var known = []Descriptor{
	{Name: CPU, Capability: "CPUExecutionProvider"},
	{Name: DirectML, Capability: "DmlExecutionProvider"},
	{Name: CUDA, Capability: "CUDAExecutionProvider"},
	{Name: TensorRT, Capability: "TensorrtExecutionProvider", SlowCompile: true},
}

// Known returns the registered provider descriptors in canonical order.
func Known() []Descriptor {
	out := make([]Descriptor, len(known))
	copy(out, known)
	return out
}

// Lookup returns the descriptor for a logical name.
func Lookup(name Name) (Descriptor, bool) {
	for _, d := range known {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}

// IsSlowCompile reports whether the provider compiles engines before its first run.
func IsSlowCompile(name Name) bool {
	d, ok := Lookup(name)
	return ok && d.SlowCompile
}
