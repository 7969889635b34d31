// Package file provides small filesystem helpers shared by the JSON and HCL
// loaders for walking reference-policy directories.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ListRecursive walks dir recursively and returns every regular file whose
// name ends with one of the given suffixes, skipping temporary/editor swap
// files. Suffix matching is case-insensitive so ".HCL"/".JSON" are also
// picked up.
func ListRecursive(dir string, suffixes ...string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dir)
	}

	var files []string
	err = filepath.Walk(dir, func(path string, fi os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if fi.IsDir() {
			return nil
		}

		name := fi.Name()
		if IsTemporaryFile(name) {
			return nil
		}
		if !hasSuffixFold(name, suffixes) {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

// IsTemporaryFile reports whether name looks like an editor swap file or a
// dotfile rather than a real policy document.
func IsTemporaryFile(name string) bool {
	return strings.HasPrefix(name, ".") ||
		strings.HasSuffix(name, "~") ||
		(strings.HasPrefix(name, "#") && strings.HasSuffix(name, "#"))
}

func hasSuffixFold(name string, suffixes []string) bool {
	if len(suffixes) == 0 {
		return true
	}
	lower := strings.ToLower(name)
	for _, suffix := range suffixes {
		if strings.HasSuffix(lower, strings.ToLower(suffix)) {
			return true
		}
	}
	return false
}
