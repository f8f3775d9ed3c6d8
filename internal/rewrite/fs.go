package rewrite

import (
	"io/fs"
	"os"

	"github.com/tspath/tspath/internal/scanner"
)

// FS is the filesystem capability used by the engine.
type FS interface {
	scanner.FS
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte) error
}

// OSFS reads and writes the local filesystem.
type OSFS struct {
	scanner.OSFS
}

// ReadFile implements FS.
func (OSFS) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name) //nolint:gosec // G304: name comes from scanning the output tree
}

// WriteFile overwrites name in place, keeping its permission bits.
func (OSFS) WriteFile(name string, data []byte) error {
	perm := fs.FileMode(0o644)
	if info, err := os.Stat(name); err == nil {
		perm = info.Mode().Perm()
	}
	return os.WriteFile(name, data, perm)
}
