package inference

import (
	"path/filepath"
	"runtime"
)

// DefaultLibraryPath is the bundled onnxruntime shared library for the host
// platform.
//
// Returns:
//   - string: The path relative to the working directory.
func DefaultLibraryPath() string {
	dir := filepath.Join("third_party", "onnxruntime")
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(dir, "onnxruntime.dll")
	case "darwin":
		return filepath.Join(dir, "libonnxruntime.dylib")
	default:
		return filepath.Join(dir, "libonnxruntime.so")
	}
}
