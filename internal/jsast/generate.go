package jsast

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
)

// GenerateOptions controls source generation.
type GenerateOptions struct {
	// Compact removes insignificant whitespace. Comments are kept in both
	// modes; without Compact the original layout is kept too.
	Compact bool
}

type edit struct {
	span Span
	text string
}

// Generate renders p back to JavaScript. Literals whose Raw differs from
// the source text at their span are written in place of the original
// text; everything else is copied from Program.Source.
func Generate(p *Program, opts GenerateOptions) (string, error) {
	out := splice(p)
	if !opts.Compact {
		return out, nil
	}
	return compact(out)
}

func splice(p *Program) string {
	src := p.Source
	var edits []edit

	Inspect(p, func(n Node) bool {
		lit, ok := n.(*Literal)
		if !ok {
			return true
		}
		s := lit.Span
		if s.End > uint32(len(src)) || s.Start > s.End {
			return true
		}
		if string(src[s.Start:s.End]) != lit.Raw {
			edits = append(edits, edit{span: s, text: lit.Raw})
		}
		return true
	})

	if len(edits) == 0 {
		return string(src)
	}

	sort.SliceStable(edits, func(i, j int) bool {
		return edits[i].span.Start < edits[j].span.Start
	})

	var b strings.Builder
	b.Grow(len(src))
	var last uint32
	for _, e := range edits {
		if e.span.Start < last {
			// overlapping edit; the outer one already covered it
			continue
		}
		b.Write(src[last:e.span.Start])
		b.WriteString(e.text)
		last = e.span.End
	}
	b.Write(src[last:])
	return b.String()
}

// compact drops the whitespace between the tokens of src. Comments are
// tokens too and are written as they are. A line break is kept where
// dropping it could change how semicolons are inserted.
func compact(src string) (string, error) {
	root, err := sitter.ParseCtx(context.Background(), []byte(src), javascript.GetLanguage())
	if err != nil {
		return "", fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	if root.HasError() {
		return "", firstError(root, []byte(src))
	}

	c := compactor{src: src}
	c.Grow(len(src))
	c.walk(root)
	if c.Len() > 0 && !strings.HasSuffix(c.String(), "\n") {
		c.WriteByte('\n')
	}

	out := c.String()
	if err := check(out); err != nil {
		return "", err
	}
	return out, nil
}

// Nodes written as one token.
var atomic = map[string]bool{
	tsString:                   true,
	"template_string":          true,
	"regex":                    true,
	"jsx_element":              true,
	"jsx_self_closing_element": true,
}

type compactor struct {
	strings.Builder
	src string

	started   bool
	prevEnd   uint32
	prevLast  byte
	afterLine bool   // previous token was a line comment
	lastCode  string // previous token that is not a comment
	broken    bool   // a line break was written since lastCode
}

func (c *compactor) walk(n *sitter.Node) {
	count := int(n.ChildCount())
	if count == 0 || atomic[n.Type()] {
		c.token(n)
		return
	}
	for i := 0; i < count; i++ {
		if child := n.Child(i); child != nil {
			c.walk(child)
		}
	}
}

func (c *compactor) token(n *sitter.Node) {
	start, end := n.StartByte(), n.EndByte()
	if start >= end {
		return
	}
	text := c.src[start:end]
	comment := false
	switch n.Type() {
	case tsComment, "html_comment", "hash_bang_line":
		comment = true
	}

	if c.started {
		gap := c.src[c.prevEnd:start]
		switch {
		case c.afterLine:
			c.WriteByte('\n')
			c.broken = true
		case hasLineBreak(gap) && !c.broken && !safeBreak(c.lastCode, text, comment):
			c.WriteByte('\n')
			c.broken = true
		case needsSpace(c.prevLast, text[0]):
			c.WriteByte(' ')
		}
	}

	c.WriteString(text)
	c.started = true
	c.prevEnd = end
	c.prevLast = text[len(text)-1]
	c.afterLine = comment && !strings.HasPrefix(text, "/*")
	if comment {
		if hasLineBreak(text) {
			c.broken = true
		}
		return
	}
	c.lastCode = text
	c.broken = false
}

// safeBreak reports whether the line break between prev and next can be
// dropped without a semicolon being inserted or lost.
func safeBreak(prev, next string, comment bool) bool {
	switch prev {
	case "", ";", "{", "(", "[", ",":
		return true
	}
	if comment {
		return false
	}
	switch next {
	case ";", "}", ")", "]", ",":
		return true
	}
	return false
}

func hasLineBreak(s string) bool {
	return strings.ContainsAny(s, "\n\r\u2028\u2029")
}

// needsSpace reports whether two adjacent tokens would fuse into one.
func needsSpace(last, first byte) bool {
	switch {
	case isWord(last) && isWord(first):
		return true
	case last >= '0' && last <= '9' && first == '.':
		return true
	case last == '+' && first == '+', last == '-' && first == '-':
		return true
	case last == '/' && (first == '/' || first == '*'):
		return true
	case last == '<' && first == '!':
		return true
	}
	return false
}

func isWord(b byte) bool {
	return b == '_' || b == '$' || b == '\\' || b >= 0x80 ||
		b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

// check runs the compacted source through esbuild's parser so a bad token
// join is reported instead of written.
func check(src string) error {
	result := api.Transform(src, api.TransformOptions{
		Loader:   api.LoaderJS,
		Charset:  api.CharsetUTF8,
		LogLevel: api.LogLevelSilent,
	})

	if len(result.Errors) > 0 {
		var errMsg string
		for _, err := range result.Errors {
			if err.Location != nil {
				errMsg += fmt.Sprintf("%d:%d: %s\n", err.Location.Line, err.Location.Column, err.Text)
			} else {
				errMsg += err.Text + "\n"
			}
		}
		return fmt.Errorf("compact output does not parse:\n%s", errMsg)
	}
	return nil
}
