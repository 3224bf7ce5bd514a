package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileExists reports whether path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// FileNonEmpty reports whether path exists and has a non-zero size.
func FileNonEmpty(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}

// GenerateFileHash builds the inventory identity for a source file from its
// base name, size, and mtime. Cheap and stable across restarts without
// reading file contents.
func GenerateFileHash(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return fmt.Sprintf("%s-%d-%d", name, info.Size(), info.ModTime().UnixMilli()), nil
}

// EnsureDir creates dir (and parents) if missing.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}
