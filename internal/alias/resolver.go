// Package alias maps module references that start with a configured path
// alias to relative paths inside the compiled output tree.
//
// Matching compares the leading segment of a reference, up to its first
// "/", with each alias in declaration order and stops at the first hit.
// Aliases that are textual prefixes of one another (@db and @dbCore) only
// match whole leading segments, so "@dbCore/x" never hits "@db"; an alias
// that itself contains a "/" can therefore never match.
package alias

import (
	"path/filepath"
	"strings"

	"github.com/tspath/tspath/internal/project"
)

// Separator is the path separator used in module references.
const Separator = "/"

// Resolver rewrites aliased module references. The zero value resolves
// nothing.
type Resolver struct {
	// OutDir is the absolute compiled output root.
	OutDir string
	// RootDir is the absolute source root mirrored into OutDir. Targets
	// that resolve inside it are re-rooted onto OutDir; others are joined
	// onto OutDir as written. Empty means targets are always joined as
	// written.
	RootDir string
	// BaseURL is the absolute directory targets are relative to.
	BaseURL string
	// Mappings in declaration order.
	Mappings []project.Mapping
}

// New builds a resolver from a project configuration.
func New(cfg *project.Config) *Resolver {
	return &Resolver{
		OutDir:   cfg.OutDir,
		RootDir:  cfg.RootDir,
		BaseURL:  cfg.BaseURL,
		Mappings: cfg.Paths,
	}
}

// IsPathlike reports whether ref contains a path separator. References
// without one are package names and are never rewritten.
func IsPathlike(ref string) bool {
	return strings.Contains(ref, Separator)
}

// StripWildcard removes a trailing wildcard marker ("/*" or "*").
func StripWildcard(pattern string) string {
	if strings.HasSuffix(pattern, "/*") {
		return strings.TrimSuffix(pattern, "/*")
	}
	return strings.TrimSuffix(pattern, "*")
}

// Resolve returns the replacement for ref as seen from requiringFile, and
// whether an alias matched. Unmatched references are returned unchanged.
func (r *Resolver) Resolve(ref, requiringFile string) (string, bool) {
	idx := strings.Index(ref, Separator)
	if idx < 0 {
		return ref, false
	}
	prefix := ref[:idx]

	for _, m := range r.Mappings {
		a := StripWildcard(m.Alias)
		target := StripWildcard(m.Target)

		if prefix != a {
			continue
		}

		mapped := strings.Replace(ref, a, target, 1)
		mapped = collapseSeparators(mapped)
		mapped = ensureTrailingSeparator(mapped)

		abs := r.locate(mapped)
		rel, err := filepath.Rel(filepath.Dir(requiringFile), abs)
		if err != nil {
			return ref, false
		}
		return markRelative(filepath.ToSlash(rel)), true
	}

	return ref, false
}

// locate returns the absolute output location of a mapped reference.
func (r *Resolver) locate(mapped string) string {
	local := filepath.FromSlash(mapped)
	if r.RootDir != "" && r.BaseURL != "" && !filepath.IsAbs(local) {
		src := filepath.Join(r.BaseURL, local)
		if inRoot, err := filepath.Rel(r.RootDir, src); err == nil && !escapes(inRoot) {
			return filepath.Join(r.OutDir, inRoot)
		}
	}
	return filepath.Join(r.OutDir, local)
}

func escapes(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func collapseSeparators(p string) string {
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	return p
}

func ensureTrailingSeparator(p string) string {
	if strings.HasSuffix(p, Separator) {
		return p
	}
	return p + Separator
}

// markRelative prefixes "./" unless rel already starts with a self or
// parent marker.
func markRelative(rel string) string {
	switch {
	case rel == ".":
		return "./"
	case rel == "..", strings.HasPrefix(rel, "./"), strings.HasPrefix(rel, "../"):
		return rel
	default:
		return "./" + rel
	}
}
