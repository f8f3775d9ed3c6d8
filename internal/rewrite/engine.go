// Package rewrite rewrites aliased require() references in a compiled
// output tree.
//
// Files are processed strictly one after another: each is read, parsed,
// rewritten and written back before the next is opened. A parse or write
// failure stops the run; files already written stay written.
package rewrite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tspath/tspath/internal/alias"
	"github.com/tspath/tspath/internal/jsast"
	"github.com/tspath/tspath/internal/project"
	"github.com/tspath/tspath/internal/scanner"
)

// LoadFunction is the callee name of module-load calls.
const LoadFunction = "require"

// ParseError is returned when a file cannot be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unable to parse file %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// WriteError is returned when a rewritten file cannot be saved.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("unable to write file %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Config holds engine configuration.
type Config struct {
	// Project is the validated project configuration (required).
	Project *project.Config
	// Filter is the normalized extension filter; empty matches every file.
	Filter []string
	// Compact selects whitespace-minified output instead of keeping the
	// original layout.
	Compact bool
	// SkipUnchanged leaves files alone when rewriting would not change them.
	SkipUnchanged bool
	// FS is the filesystem (optional, uses the local filesystem if nil).
	FS FS
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
	// OnFile is called after every processed file (optional).
	OnFile func(FileResult)
}

// Rewrite is one replaced module reference.
type Rewrite struct {
	From string
	To   string
}

// FileResult describes the outcome for a single file.
type FileResult struct {
	Path     string
	Rewrites []Rewrite
	// Written is false when SkipUnchanged left the file untouched.
	Written bool
}

// Stats accumulates over every file processed by one Engine.
type Stats struct {
	// RunID identifies the engine in logs and summaries.
	RunID          string
	FilesProcessed int
	// PathsProcessed counts rewritten references. Pathlike references that
	// match no alias are not counted.
	PathsProcessed int
	Files          []FileResult
	Elapsed        time.Duration
}

// Engine rewrites the files of one project. Counters belong to the engine,
// so separate engines never share state.
type Engine struct {
	cfg      Config
	fs       FS
	logger   *slog.Logger
	resolver *alias.Resolver
	parser   *jsast.Parser
	stats    Stats
}

// New creates an engine for cfg.
func New(cfg Config) (*Engine, error) {
	if cfg.Project == nil {
		return nil, errors.New("rewrite: project configuration is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	fsys := cfg.FS
	if fsys == nil {
		fsys = OSFS{}
	}

	id := uuid.NewString()
	return &Engine{
		cfg:      cfg,
		fs:       fsys,
		logger:   logger.With("run_id", id),
		resolver: alias.New(cfg.Project),
		parser:   jsast.NewParser(),
		stats:    Stats{RunID: id},
	}, nil
}

// Close releases the parser.
func (e *Engine) Close() {
	e.parser.Close()
}

// Stats returns the counters accumulated so far.
func (e *Engine) Stats() Stats {
	return e.stats
}

// Scan lists the files under the output root that match the filter.
func (e *Engine) Scan() ([]string, error) {
	files, err := scanner.Scan(e.fs, e.cfg.Project.OutDir, e.cfg.Filter)
	if err != nil {
		return nil, fmt.Errorf("failed to scan output directory: %w", err)
	}
	return files, nil
}

// Run scans the output root and processes every matching file.
func (e *Engine) Run(ctx context.Context) (Stats, error) {
	start := time.Now()

	files, err := e.Scan()
	if err != nil {
		return e.stats, err
	}
	e.logger.Debug("scanned output directory", "out_dir", e.cfg.Project.OutDir, "files", len(files))

	if err := e.ProcessFiles(ctx, files); err != nil {
		return e.stats, err
	}

	e.stats.Elapsed = time.Since(start)
	e.logger.Debug("rewrite finished",
		"files", e.stats.FilesProcessed, "paths", e.stats.PathsProcessed, "elapsed", e.stats.Elapsed)
	return e.stats, nil
}

// ResetFiles clears the per-file results kept in Stats. Counters are kept.
func (e *Engine) ResetFiles() {
	e.stats.Files = nil
}

// ProcessFiles processes files in order and stops at the first error.
func (e *Engine) ProcessFiles(ctx context.Context, files []string) error {
	for _, path := range files {
		if _, err := e.ProcessFile(ctx, path); err != nil {
			return err
		}
	}
	return nil
}

// ProcessFile rewrites a single file in place.
func (e *Engine) ProcessFile(ctx context.Context, path string) (FileResult, error) {
	result := FileResult{Path: path}
	e.stats.FilesProcessed++

	src, err := e.fs.ReadFile(path)
	if err != nil {
		return result, fmt.Errorf("failed to read %s: %w", path, err)
	}

	prog, err := e.parser.Parse(ctx, src)
	if err != nil {
		e.logger.Debug("parse failed", "path", path, "error", err.Error())
		return result, &ParseError{Path: path, Err: err}
	}

	v := &requireVisitor{resolver: e.resolver, file: path}
	jsast.Walk(v, prog)
	result.Rewrites = v.rewrites
	e.stats.PathsProcessed += len(v.rewrites)

	out, err := jsast.Generate(prog, jsast.GenerateOptions{Compact: e.cfg.Compact})
	if err != nil {
		return result, fmt.Errorf("failed to generate %s: %w", path, err)
	}

	if e.cfg.SkipUnchanged && out == string(src) {
		e.logger.Debug("file unchanged", "path", path)
	} else {
		if err := e.fs.WriteFile(path, []byte(out)); err != nil {
			return result, &WriteError{Path: path, Err: err}
		}
		result.Written = true
	}

	for _, rw := range result.Rewrites {
		e.logger.Debug("rewrote reference", "path", path, "from", rw.From, "to", rw.To)
	}

	e.stats.Files = append(e.stats.Files, result)
	if e.cfg.OnFile != nil {
		e.cfg.OnFile(result)
	}
	return result, nil
}

// requireVisitor replaces the first argument of require("...") calls
// whose reference starts with a configured alias.
type requireVisitor struct {
	resolver *alias.Resolver
	file     string
	rewrites []Rewrite
}

func (v *requireVisitor) Visit(n jsast.Node) jsast.Visitor {
	call, ok := jsast.IsCallTo(n, LoadFunction)
	if !ok || len(call.Arguments) == 0 {
		return v
	}

	lit, ok := jsast.IsString(call.Arguments[0])
	if !ok || !alias.IsPathlike(lit.Value) {
		return v
	}

	resolved, matched := v.resolver.Resolve(lit.Value, v.file)
	if !matched {
		return v
	}

	call.Arguments[0] = jsast.NewString(resolved, lit.Span)
	v.rewrites = append(v.rewrites, Rewrite{From: lit.Value, To: resolved})
	return v
}
