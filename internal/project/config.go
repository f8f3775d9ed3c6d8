// Package project loads the TypeScript compiler configuration of a project
// and exposes the parts needed to rewrite compiled module references.
package project

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tspath/tspath/internal/jsonc"
)

// DefaultConfigFile is the compiler configuration file name searched for.
const DefaultConfigFile = "tsconfig.json"

// Errors returned while locating or reading a project.
var (
	ErrInvalidRoot     = errors.New("project path is invalid")
	ErrConfigNotFound  = errors.New("compiler configuration file is missing")
	ErrRootNotFound    = errors.New("no project root found")
	ErrInvalidMappings = errors.New("compilerOptions.paths must map aliases to arrays of strings")
)

// MissingFieldError reports a required compilerOptions field that is absent
// or empty.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field: %q", e.Field)
}

// Mapping is one alias entry of compilerOptions.paths with its first target.
type Mapping struct {
	Alias  string
	Target string
}

// Config is the validated project configuration. It is built once per run
// and not modified afterwards.
type Config struct {
	// Root is the absolute project directory.
	Root string
	// BaseURL is the absolute source base directory (compilerOptions.baseUrl).
	BaseURL string
	// OutDir is the absolute compiled output root (compilerOptions.outDir).
	OutDir string
	// RootDir is the absolute source root mirrored into OutDir
	// (compilerOptions.rootDir, defaults to BaseURL).
	RootDir string
	// Paths holds the alias mappings in declaration order. Only the first
	// declaration of a repeated alias is kept.
	Paths []Mapping
}

// compilerOptions mirrors the fields read from tsconfig.json. Paths is
// decoded separately because key order matters.
type compilerOptions struct {
	BaseURL string          `json:"baseUrl"`
	OutDir  string          `json:"outDir"`
	RootDir string          `json:"rootDir"`
	Paths   json.RawMessage `json:"paths"`
}

type tsconfig struct {
	CompilerOptions *compilerOptions `json:"compilerOptions"`
}

// Load reads fileName from projectRoot and parses it.
func Load(projectRoot, fileName string) (*Config, error) {
	if fileName == "" {
		fileName = DefaultConfigFile
	}
	path := filepath.Join(projectRoot, fileName)

	data, err := os.ReadFile(path) //nolint:gosec // G304: path is the project's own config file
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return Parse(data, projectRoot)
}

// Parse decodes a comment-annotated tsconfig document. Relative paths are
// resolved against projectRoot.
func Parse(data []byte, projectRoot string) (*Config, error) {
	stripped := jsonc.Strip(string(data))

	var doc tsconfig
	if err := json.Unmarshal([]byte(stripped), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse compiler configuration: %w", err)
	}

	opts := doc.CompilerOptions
	if opts == nil {
		opts = &compilerOptions{}
	}

	// baseUrl is checked before outDir.
	if opts.BaseURL == "" {
		return nil, &MissingFieldError{Field: "baseUrl"}
	}
	if opts.OutDir == "" {
		return nil, &MissingFieldError{Field: "outDir"}
	}

	paths, err := decodePaths(opts.Paths)
	if err != nil {
		return nil, err
	}

	root, err := filepath.Abs(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project root: %w", err)
	}

	cfg := &Config{
		Root:    root,
		BaseURL: resolve(root, opts.BaseURL),
		OutDir:  resolve(root, opts.OutDir),
		Paths:   paths,
	}
	cfg.RootDir = cfg.BaseURL
	if opts.RootDir != "" {
		cfg.RootDir = resolve(root, opts.RootDir)
	}

	return cfg, nil
}

func resolve(root, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(root, p)
}

// decodePaths walks the paths object token by token to keep declaration
// order. Extra targets and repeated keys are dropped.
func decodePaths(raw json.RawMessage) ([]Mapping, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to parse paths: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, ErrInvalidMappings
	}

	var mappings []Mapping
	seen := make(map[string]bool)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to parse paths: %w", err)
		}
		alias, ok := keyTok.(string)
		if !ok {
			return nil, ErrInvalidMappings
		}

		var targets []string
		if err := dec.Decode(&targets); err != nil {
			return nil, fmt.Errorf("%w: alias %q: %w", ErrInvalidMappings, alias, err)
		}

		if seen[alias] {
			continue
		}
		seen[alias] = true
		if len(targets) == 0 {
			continue
		}
		mappings = append(mappings, Mapping{Alias: alias, Target: targets[0]})
	}

	if _, err := dec.Token(); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse paths: %w", err)
	}

	return mappings, nil
}
