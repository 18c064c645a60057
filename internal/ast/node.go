package ast

// Node is the minimal surface the generic walker needs from a parsed AST
// node. Production code adapts *tree_sitter.Node to this interface
// (languages.go); tests build fake trees directly against it, so the
// walker's extraction and receiver-inference logic can be exercised without
// a cgo tree-sitter parse.
type Node interface {
	Kind() string
	ChildCount() int
	Child(i int) Node
	ChildByFieldName(name string) Node // nil when absent
	StartByte() int
	EndByte() int
	StartLine() int // 1-based
	EndLine() int   // 1-based
}

// text returns the source slice a node spans.
func text(n Node, src []byte) string {
	if n == nil {
		return ""
	}
	s, e := n.StartByte(), n.EndByte()
	if s < 0 || e > len(src) || s > e {
		return ""
	}
	return string(src[s:e])
}

// children returns every direct child of n.
func children(n Node) []Node {
	cc := n.ChildCount()
	out := make([]Node, 0, cc)
	for i := 0; i < cc; i++ {
		if c := n.Child(i); c != nil {
			out = append(out, c)
		}
	}
	return out
}
