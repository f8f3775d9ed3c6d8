package jsast

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
)

// tree-sitter JavaScript node types
const (
	tsProgram        = "program"
	tsCallExpression = "call_expression"
	tsArguments      = "arguments"
	tsIdentifier     = "identifier"
	tsString         = "string"
	tsNumber         = "number"
	tsTrue           = "true"
	tsFalse          = "false"
	tsNull           = "null"
	tsComment        = "comment"
)

// SyntaxError describes the first syntax error found in a source file.
type SyntaxError struct {
	Line   int
	Column int
	Near   string
}

func (e *SyntaxError) Error() string {
	if e.Near == "" {
		return fmt.Sprintf("syntax error at %d:%d", e.Line, e.Column)
	}
	return fmt.Sprintf("syntax error at %d:%d near %q", e.Line, e.Column, e.Near)
}

// Parser parses JavaScript source into a Program. A Parser is not safe for
// concurrent use.
type Parser struct {
	ts *sitter.Parser
}

// NewParser returns a parser for the JavaScript grammar.
func NewParser() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(javascript.GetLanguage())
	return &Parser{ts: p}
}

// Close releases the underlying tree-sitter parser.
func (p *Parser) Close() {
	p.ts.Close()
}

// Parse builds the syntax tree of src. Source that does not parse cleanly
// is rejected with a *SyntaxError.
func (p *Parser) Parse(ctx context.Context, src []byte) (*Program, error) {
	tree, err := p.ts.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("parse returned nil root node")
	}
	if root.HasError() {
		return nil, firstError(root, src)
	}

	b := builder{src: src}
	return &Program{
		Span:   spanOf(root),
		Source: src,
		Body:   b.children(root),
	}, nil
}

// Parse is a convenience wrapper that parses src with a fresh Parser.
func Parse(ctx context.Context, src []byte) (*Program, error) {
	p := NewParser()
	defer p.Close()
	return p.Parse(ctx, src)
}

func spanOf(n *sitter.Node) Span {
	return Span{Start: n.StartByte(), End: n.EndByte()}
}

type builder struct {
	src []byte
}

func (b builder) text(n *sitter.Node) string {
	return string(b.src[n.StartByte():n.EndByte()])
}

// children builds the named children of n, keeping comments.
func (b builder) children(n *sitter.Node) []Node {
	count := int(n.NamedChildCount())
	if count == 0 {
		return nil
	}
	out := make([]Node, 0, count)
	for i := 0; i < count; i++ {
		if child := n.NamedChild(i); child != nil {
			out = append(out, b.build(child))
		}
	}
	return out
}

func (b builder) build(n *sitter.Node) Node {
	switch n.Type() {
	case tsCallExpression:
		return b.call(n)
	case tsIdentifier:
		return &Identifier{Span: spanOf(n), Name: b.text(n)}
	case tsString:
		raw := b.text(n)
		value, err := Unquote(raw)
		if err != nil {
			// Keep the node walkable; it just never matches as a string.
			return &Container{Span: spanOf(n), Kind: tsString}
		}
		return &Literal{Span: spanOf(n), Kind: StringLiteral, Value: value, Raw: raw}
	case tsNumber:
		return b.literal(n, NumberLiteral)
	case tsTrue, tsFalse:
		return b.literal(n, BooleanLiteral)
	case tsNull:
		return b.literal(n, NullLiteral)
	default:
		return &Container{Span: spanOf(n), Kind: n.Type(), Children: b.children(n)}
	}
}

func (b builder) literal(n *sitter.Node, kind LiteralKind) *Literal {
	raw := b.text(n)
	return &Literal{Span: spanOf(n), Kind: kind, Value: raw, Raw: raw}
}

func (b builder) call(n *sitter.Node) Node {
	call := &CallExpression{Span: spanOf(n)}

	if fn := n.ChildByFieldName("function"); fn != nil {
		call.Callee = b.build(fn)
	}

	args := n.ChildByFieldName("arguments")
	switch {
	case args == nil:
	case args.Type() == tsArguments:
		for i := 0; i < int(args.NamedChildCount()); i++ {
			arg := args.NamedChild(i)
			if arg == nil || arg.Type() == tsComment {
				continue
			}
			call.Arguments = append(call.Arguments, b.build(arg))
		}
	default:
		// Tagged template: the template is the only argument.
		call.Arguments = []Node{b.build(args)}
	}

	return call
}

// firstError locates the first ERROR or MISSING node in pre-order.
func firstError(root *sitter.Node, src []byte) error {
	var found *sitter.Node
	var find func(n *sitter.Node)
	find = func(n *sitter.Node) {
		if found != nil || n == nil || !n.HasError() && !n.IsMissing() {
			return
		}
		if n.IsError() || n.IsMissing() {
			found = n
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			find(n.Child(i))
		}
	}
	find(root)

	if found == nil {
		found = root
	}

	pt := found.StartPoint()
	near := string(src[found.StartByte():found.EndByte()])
	if len(near) > 40 {
		near = near[:40]
	}
	return &SyntaxError{Line: int(pt.Row) + 1, Column: int(pt.Column) + 1, Near: near}
}
