package jsast

// A Visitor's Visit method is invoked for each node encountered by Walk.
// If the result visitor w is not nil, Walk visits each of the children of
// node with w.
type Visitor interface {
	Visit(node Node) (w Visitor)
}

// Walk traverses the tree rooted at node in pre-order. A visitor may
// replace entries of a node's child lists from Visit; Walk descends into
// the replacements.
func Walk(v Visitor, node Node) {
	if node == nil {
		return
	}
	if v = v.Visit(node); v == nil {
		return
	}

	switch n := node.(type) {
	case *Program:
		walkList(v, n.Body)
	case *CallExpression:
		Walk(v, n.Callee)
		walkList(v, n.Arguments)
	case *Container:
		walkList(v, n.Children)
	case *Identifier, *Literal:
		// leaves
	}
}

func walkList(v Visitor, list []Node) {
	for i := range list {
		Walk(v, list[i])
	}
}

type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

// Inspect traverses the tree in pre-order calling f for every node. If f
// returns false the children of that node are skipped.
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(f), node)
}
