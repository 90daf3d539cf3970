package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SourceExt marks files that hold assembly source rather than a raw image.
const SourceExt = ".asm"

func GetPathInfo(relPath string) (fullPath string, parentDir string, err error) {
	// Convert to absolute path (resolves ../../ and cleans the path)
	fullPath, err = filepath.Abs(relPath)
	if err != nil {
		return "", "", err
	}

	parentDir = filepath.Dir(fullPath)

	return fullPath, parentDir, nil
}

// IsSource reports whether path names an assembly source file.
func IsSource(path string) bool {
	return strings.EqualFold(filepath.Ext(path), SourceExt)
}

// ReplaceExt swaps the extension of path for ext, appending it when path
// has none.
func ReplaceExt(path, ext string) string {
	old := filepath.Ext(path)
	if old == "" {
		return path + ext
	}
	return strings.TrimSuffix(path, old) + ext
}

// ReadFile reads path after resolving it to an absolute location so error
// messages name the file that was actually opened.
func ReadFile(path string) ([]byte, error) {
	fullPath, _, err := GetPathInfo(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", path, err)
	}
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("reading file %q: %w", fullPath, err)
	}
	return data, nil
}

// WriteFile writes data to path, creating the parent directory if needed.
func WriteFile(path string, data []byte) error {
	fullPath, parentDir, err := GetPathInfo(path)
	if err != nil {
		return fmt.Errorf("resolving path %q: %w", path, err)
	}
	if err := os.MkdirAll(parentDir, 0o755); err != nil {
		return fmt.Errorf("creating directory %q: %w", parentDir, err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return fmt.Errorf("writing file %q: %w", fullPath, err)
	}
	return nil
}
