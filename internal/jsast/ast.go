// Package jsast is a minimal JavaScript syntax tree built on tree-sitter.
//
// Only the node shapes needed to find module-load calls are modelled:
// call expressions, identifiers and literals. Every other syntax kind is
// kept as a generic Container so that a walk still reaches every node.
package jsast

// Span is a half-open byte range into the parsed source.
type Span struct {
	Start uint32
	End   uint32
}

// Node is implemented by the closed set of node types in this package.
type Node interface {
	Pos() Span
	node()
}

// Program is the root of a parsed file.
type Program struct {
	Span
	// Source is the text the tree was parsed from.
	Source []byte
	Body   []Node
}

// CallExpression is callee(arguments...).
type CallExpression struct {
	Span
	Callee    Node
	Arguments []Node
}

// Identifier is a plain name reference.
type Identifier struct {
	Span
	Name string
}

// LiteralKind distinguishes literal value types.
type LiteralKind int

// Literal kinds.
const (
	StringLiteral LiteralKind = iota
	NumberLiteral
	BooleanLiteral
	NullLiteral
)

// Literal is a primitive literal. For strings Value is the decoded text and
// Raw the source form including quotes; for other kinds both hold the
// source text.
type Literal struct {
	Span
	Kind  LiteralKind
	Value string
	Raw   string
}

// Container is any syntax node without a dedicated type. Kind is the
// tree-sitter node type, Children its named children in source order.
type Container struct {
	Span
	Kind     string
	Children []Node
}

// Pos returns the node's source range.
func (s Span) Pos() Span { return s }

func (*Program) node()        {}
func (*CallExpression) node() {}
func (*Identifier) node()     {}
func (*Literal) node()        {}
func (*Container) node()      {}

// NewString returns a string literal for value that replaces whatever was
// at span. Raw is derived from value so the two always agree.
func NewString(value string, span Span) *Literal {
	return &Literal{
		Span:  span,
		Kind:  StringLiteral,
		Value: value,
		Raw:   Quote(value),
	}
}

// IsString reports whether n is a string literal.
func IsString(n Node) (*Literal, bool) {
	lit, ok := n.(*Literal)
	if !ok || lit.Kind != StringLiteral {
		return nil, false
	}
	return lit, true
}

// IsCallTo reports whether n is a call whose callee is the identifier name.
func IsCallTo(n Node, name string) (*CallExpression, bool) {
	call, ok := n.(*CallExpression)
	if !ok {
		return nil, false
	}
	id, ok := call.Callee.(*Identifier)
	if !ok || id.Name != name {
		return nil, false
	}
	return call, true
}
