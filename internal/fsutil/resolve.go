// Package fsutil provides file system utility functions.
package fsutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ResolveModelPath turns a user-supplied path into the path of a single
// model file. A file path is returned as-is; a directory is searched
// recursively for .hcl files and must contain exactly one.
func ResolveModelPath(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return path, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".hcl") {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	switch len(files) {
	case 0:
		return "", fmt.Errorf("no .hcl model file found under %q", path)
	case 1:
		return files[0], nil
	}
	return "", fmt.Errorf("expected one .hcl model file under %q, found %d", path, len(files))
}
