// Package scanner enumerates the compiled files of an output tree.
package scanner

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// DefaultFilter is the extension filter used when none is configured.
const DefaultFilter = "js"

// ErrEmptyFilter is returned when an extension filter has no usable entries.
var ErrEmptyFilter = errors.New("file filter missing")

// FS is the directory listing capability the scanner needs.
type FS interface {
	ReadDir(name string) ([]fs.DirEntry, error)
}

// OSFS lists directories of the local filesystem.
type OSFS struct{}

// ReadDir implements FS.
func (OSFS) ReadDir(name string) ([]fs.DirEntry, error) {
	return os.ReadDir(name)
}

// NormalizeFilter turns a comma separated extension list such as
// "ts, tsx" into [".ts", ".tsx"]. Whitespace is removed from every token
// and empty tokens are dropped.
func NormalizeFilter(raw string) ([]string, error) {
	var filter []string
	for _, tok := range strings.Split(raw, ",") {
		tok = strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return -1
			}
			return r
		}, tok)
		if tok == "" {
			continue
		}
		filter = append(filter, NormalizeExtension(tok))
	}

	if len(filter) == 0 {
		return nil, ErrEmptyFilter
	}
	return filter, nil
}

// NormalizeExtension ensures ext carries a leading dot. The match-all
// tokens "*" and "*.*" are returned unchanged.
func NormalizeExtension(ext string) string {
	if isMatchAll(ext) || strings.HasPrefix(ext, ".") {
		return ext
	}
	return "." + ext
}

func isMatchAll(ext string) bool {
	return ext == "*" || ext == "*.*"
}

// Scan walks root depth first and returns every file whose extension is in
// filter. An empty filter matches every file. The order follows the
// directory listing of fsys; callers may rely on completeness only.
func Scan(fsys FS, root string, filter []string) ([]string, error) {
	if fsys == nil {
		fsys = OSFS{}
	}

	m := newMatcher(filter)
	var files []string
	if err := walk(fsys, root, m, &files); err != nil {
		return nil, err
	}
	return files, nil
}

func walk(fsys FS, dir string, m matcher, files *[]string) error {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", dir, err)
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			if err := walk(fsys, path, m, files); err != nil {
				return err
			}
			continue
		}
		if m.match(filepath.Ext(entry.Name())) {
			*files = append(*files, path)
		}
	}
	return nil
}

type matcher struct {
	all  bool
	exts map[string]bool
}

func newMatcher(filter []string) matcher {
	m := matcher{all: len(filter) == 0, exts: make(map[string]bool, len(filter))}
	for _, ext := range filter {
		if isMatchAll(ext) {
			m.all = true
			continue
		}
		m.exts[NormalizeExtension(ext)] = true
	}
	return m
}

func (m matcher) match(ext string) bool {
	if m.all {
		return true
	}
	return ext != "" && m.exts[ext]
}

// Match reports whether the file at path passes filter, using the same
// rules as Scan.
func Match(filter []string, path string) bool {
	return newMatcher(filter).match(filepath.Ext(path))
}
