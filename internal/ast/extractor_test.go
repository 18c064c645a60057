package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeNode is a hand-built tree implementing Node, used so the walker and
// receiver-inference logic can be exercised without a real tree-sitter
// parse (spec'd behavior only, no cgo dependency in tests).
type fakeNode struct {
	kind     string
	start    int
	end      int
	line     int
	endLine  int
	fields   map[string]*fakeNode
	kids     []*fakeNode
}

func (f *fakeNode) Kind() string    { return f.kind }
func (f *fakeNode) ChildCount() int { return len(f.kids) }
func (f *fakeNode) StartByte() int  { return f.start }
func (f *fakeNode) EndByte() int    { return f.end }
func (f *fakeNode) StartLine() int  { return f.line }
func (f *fakeNode) EndLine() int {
	if f.endLine != 0 {
		return f.endLine
	}
	return f.line
}

func (f *fakeNode) Child(i int) Node {
	if i < 0 || i >= len(f.kids) {
		return nil
	}
	return f.kids[i]
}

func (f *fakeNode) ChildByFieldName(name string) Node {
	n, ok := f.fields[name]
	if !ok {
		return nil
	}
	return n
}

// leaf builds a node whose span is the given text's byte range within src,
// with no children or fields.
func leaf(src []byte, kind, tok string, at int, line int) *fakeNode {
	start := at
	end := at + len(tok)
	return &fakeNode{kind: kind, start: start, end: end, line: line}
}

func TestExtract_ClassWithMethodAndFieldCall(t *testing.T) {
	// Source text is only used for byte-range slicing by text(); the tree
	// shape below does not need to be a faithful tokenization of it, only
	// consistent in offsets with what each node claims to span.
	src := []byte(`class Widget extends Base {
  field logger: Logger;
  method run(): void {
    this.logger.Info();
  }
}`)

	g := &Grammar{
		Name:          "fake",
		Containers:    map[string]Kind{"class_decl": KindClass},
		Members:       map[string]Kind{"method_decl": KindMethod, "field_decl": KindField},
		NameField:     "name",
		BodyField:     "body",
		BaseListField: "heritage",
		CallKinds:     map[string]bool{"call": true},
		MemberKinds:   map[string]bool{"member": true},
		FunctionField: "function",
		ObjectField:   "object",
		PropertyField: "property",
		ThisIdentifiers: map[string]bool{"this": true},
	}

	className := leaf(src, "identifier", "Widget", 6, 1)
	baseName := leaf(src, "identifier", "Base", 21, 1)
	heritage := &fakeNode{kind: "heritage_clause", start: 13, end: 25, line: 1, kids: []*fakeNode{baseName}}

	fieldName := leaf(src, "identifier", "logger", 36, 2)
	fieldType := leaf(src, "identifier", "Logger", 44, 2)
	fieldDecl := &fakeNode{
		kind: "field_decl", start: 30, end: 51, line: 2,
		fields: map[string]*fakeNode{"name": fieldName, "type": fieldType},
	}

	methodName := leaf(src, "identifier", "run", 61, 3)

	thisID := leaf(src, "identifier", "this", 79, 4)
	loggerProp := leaf(src, "identifier", "logger", 84, 4)
	thisLogger := &fakeNode{
		kind: "member", start: 79, end: 90, line: 4,
		fields: map[string]*fakeNode{"object": thisID, "property": loggerProp},
	}
	infoProp := leaf(src, "identifier", "Info", 91, 4)
	callFn := &fakeNode{
		kind: "member", start: 79, end: 95, line: 4,
		fields: map[string]*fakeNode{"object": thisLogger, "property": infoProp},
	}
	callExpr := &fakeNode{
		kind: "call", start: 79, end: 97, line: 4,
		fields: map[string]*fakeNode{"function": callFn},
	}
	methodBody := &fakeNode{
		kind: "block", start: 73, end: 102, line: 3, endLine: 5,
		kids: []*fakeNode{callExpr},
	}
	methodDecl := &fakeNode{
		kind: "method_decl", start: 54, end: 102, line: 3, endLine: 5,
		fields: map[string]*fakeNode{"name": methodName, "body": methodBody},
		kids:   []*fakeNode{methodBody},
	}

	classBody := &fakeNode{
		kind: "block", start: 26, end: 104, line: 1, endLine: 6,
		kids: []*fakeNode{fieldDecl, methodDecl},
	}
	classDecl := &fakeNode{
		kind: "class_decl", start: 0, end: 104, line: 1, endLine: 6,
		fields: map[string]*fakeNode{"name": className, "heritage": heritage, "body": classBody},
		kids:   []*fakeNode{classBody},
	}

	result := Extract(classDecl, src, g)
	require.Nil(t, result.ParseError)
	require.Len(t, result.Definitions, 3)

	assert.Equal(t, "Widget", result.Definitions[0].Name)
	assert.Equal(t, KindClass, result.Definitions[0].Kind)
	assert.Equal(t, []string{"Base"}, result.Definitions[0].BaseTypes)

	assert.Equal(t, "logger", result.Definitions[1].Name)
	assert.Equal(t, KindField, result.Definitions[1].Kind)
	assert.Equal(t, "Widget", result.Definitions[1].Parent)

	methodIdx := 2
	assert.Equal(t, "run", result.Definitions[methodIdx].Name)
	assert.Equal(t, "Widget", result.Definitions[methodIdx].Parent)

	sites := result.MethodCalls[methodIdx]
	require.Len(t, sites, 1)
	assert.Equal(t, "Info", sites[0].MethodName)
	assert.Equal(t, "Logger", sites[0].ReceiverType)
}

func TestExtract_NilRootReturnsParseError(t *testing.T) {
	result := Extract(nil, nil, &Grammar{})
	require.Error(t, result.ParseError)
}

func TestIsMethodLike(t *testing.T) {
	assert.True(t, isMethodLike(KindMethod))
	assert.True(t, isMethodLike(KindConstructor))
	assert.True(t, isMethodLike(KindProperty))
	assert.False(t, isMethodLike(KindField))
	assert.False(t, isMethodLike(KindClass))
}

func TestStripGenericAndPointer(t *testing.T) {
	assert.Equal(t, "List", stripGeneric("List<int>"))
	assert.Equal(t, "Plain", stripGeneric("Plain"))
	assert.Equal(t, "Server", stripPointer("*Server"))
	assert.Equal(t, "Server", stripPointer("Server"))
}

func TestSortCallSitesDedupes(t *testing.T) {
	in := []CallSite{
		{MethodName: "B", Line: 2},
		{MethodName: "A", Line: 1},
		{MethodName: "A", Line: 1},
	}
	out := sortCallSites(in)
	require.Len(t, out, 2)
	assert.Equal(t, "A", out[0].MethodName)
	assert.Equal(t, "B", out[1].MethodName)
}
