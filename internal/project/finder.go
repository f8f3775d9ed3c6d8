package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FindRoot searches startDir and its parents for fileName and returns the
// first directory that contains it.
func FindRoot(startDir, fileName string) (string, error) {
	if fileName == "" {
		fileName = DefaultConfigFile
	}

	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", startDir, err)
	}

	for {
		if fileExists(filepath.Join(dir, fileName)) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return "", fmt.Errorf("%w: %s not found above %s", ErrRootNotFound, fileName, startDir)
		}
		dir = parent
	}
}

// Validate checks that projectRoot exists and holds fileName.
func Validate(projectRoot, fileName string) error {
	if fileName == "" {
		fileName = DefaultConfigFile
	}

	info, err := os.Stat(projectRoot)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %q", ErrInvalidRoot, projectRoot)
	}

	configPath := filepath.Join(projectRoot, fileName)
	if !fileExists(configPath) {
		return fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
	}
	return nil
}

// ReadName returns the name field of the project's package.json, or an
// empty string when there is none.
func ReadName(projectRoot string) string {
	data, err := os.ReadFile(filepath.Join(projectRoot, "package.json")) //nolint:gosec // G304: fixed file name under the project root
	if err != nil {
		return ""
	}

	var pkg struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return ""
	}
	return pkg.Name
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
