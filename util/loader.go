package util

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// optimizedInfix separates a model's base name from the provider and level of
// an optimized artifact: {base}_optimized_{provider}_{level}{ext}.
const optimizedInfix = "_optimized_"

// ArtifactFile is an optimized model artifact found on disk.
type ArtifactFile struct {
	// Path is the path to the artifact.
	Path string
	// Model is the base name of the source model.
	Model string
	// Provider is the provider the graph was optimized for.
	Provider string
	// Level is the optimization level baked into the graph.
	Level string
	// Size is the file size in bytes.
	Size int64
}

// FileExists reports whether path names a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// BaseName strips the directory and extension from a path.
func BaseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// LoadDirectoryArtifacts lists the optimized artifacts in a directory.
//
// Arguments:
// - dir: Directory path containing model files.
//
// Returns:
// - []ArtifactFile: The artifacts sorted by model, provider and level.
// - error: Error if the directory cannot be read.
func LoadDirectoryArtifacts(dir string) ([]ArtifactFile, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var artifacts []ArtifactFile
	for _, file := range files {
		if file.IsDir() || filepath.Ext(file.Name()) != ".onnx" {
			continue
		}

		model, provider, level, ok := ParseArtifactName(file.Name())
		if !ok {
			continue
		}
		info, err := file.Info()
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, ArtifactFile{
			Path:     filepath.Join(dir, file.Name()),
			Model:    model,
			Provider: provider,
			Level:    level,
			Size:     info.Size(),
		})
	}

	sort.Slice(artifacts, func(i, j int) bool {
		a, b := artifacts[i], artifacts[j]
		if a.Model != b.Model {
			return a.Model < b.Model
		}
		if a.Provider != b.Provider {
			return a.Provider < b.Provider
		}
		return a.Level < b.Level
	})

	return artifacts, nil
}

// ParseArtifactName splits an optimized artifact file name into its parts.
// Provider and level names never contain underscores, so the last infix wins.
func ParseArtifactName(name string) (model, provider, level string, ok bool) {
	base := BaseName(name)
	i := strings.LastIndex(base, optimizedInfix)
	if i <= 0 {
		return "", "", "", false
	}
	provider, level, found := strings.Cut(base[i+len(optimizedInfix):], "_")
	if !found || provider == "" || level == "" || strings.Contains(level, "_") {
		return "", "", "", false
	}
	return base[:i], provider, level, true
}
