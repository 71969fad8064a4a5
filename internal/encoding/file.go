package encoding

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// PathKind classifies what, if anything, occupies a path.
type PathKind int

const (
	PathMissing PathKind = iota
	PathDir
	PathOther
)

// StatPath reports what occupies path. Errors other than "does not exist"
// are returned unchanged.
func StatPath(path string) (PathKind, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return PathMissing, nil
		}

		return PathOther, err
	}

	if info.IsDir() {
		return PathDir, nil
	}

	return PathOther, nil
}

// DirExists checks if a directory exists at the given path.
func DirExists(path string) bool {
	kind, err := StatPath(path)
	return err == nil && kind == PathDir
}

// EnsureDir creates a directory and all parent directories if they don't exist.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}

	return nil
}

// EnsureParentDir ensures the parent directory of a file path exists.
func EnsureParentDir(filePath string) error {
	return EnsureDir(filepath.Dir(filePath))
}

// WriteText replaces the file at path with text followed by a single
// newline. The file is closed on every path and a failing Close is
// reported like a failing Write.
func WriteText(path, text string, perm os.FileMode) (err error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}

	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if _, err = f.WriteString(text + "\n"); err != nil {
		return err
	}

	return nil
}
