package ast

import (
	"sync"
	"unsafe"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_csharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// tsNode adapts *tree_sitter.Node to the ast.Node interface the generic
// walker operates on.
type tsNode struct{ n *tree_sitter.Node }

func (w tsNode) Kind() string      { return w.n.Kind() }
func (w tsNode) ChildCount() int   { return int(w.n.ChildCount()) }
func (w tsNode) StartByte() int    { return int(w.n.StartByte()) }
func (w tsNode) EndByte() int      { return int(w.n.EndByte()) }
func (w tsNode) StartLine() int    { return int(w.n.StartPosition().Row) + 1 }
func (w tsNode) EndLine() int      { return int(w.n.EndPosition().Row) + 1 }

func (w tsNode) Child(i int) Node {
	c := w.n.Child(uint(i))
	if c == nil {
		return nil
	}
	return tsNode{c}
}

func (w tsNode) ChildByFieldName(name string) Node {
	c := w.n.ChildByFieldName(name)
	if c == nil {
		return nil
	}
	return tsNode{c}
}

// registeredLanguage pairs a Grammar with its parser; the parser is guarded
// by a mutex since a tree_sitter.Parser is not safe for concurrent Parse
// calls (same caveat the teacher documents).
type registeredLanguage struct {
	grammar *Grammar
	mu      sync.Mutex
	parser  *tree_sitter.Parser
}

var registry = buildRegistry()

func buildRegistry() map[string]*registeredLanguage {
	langs := []struct {
		ptr     func() unsafe.Pointer
		grammar *Grammar
	}{
		{tree_sitter_go.Language, goGrammar()},
		{tree_sitter_javascript.Language, javascriptGrammar()},
		{tree_sitter_typescript.LanguageTypescript, typescriptGrammar()},
		{tree_sitter_python.Language, pythonGrammar()},
		{tree_sitter_java.Language, javaGrammar()},
		{tree_sitter_csharp.Language, csharpGrammar()},
		{tree_sitter_cpp.Language, cppGrammar()},
		{tree_sitter_php.LanguagePHP, phpGrammar()},
		{tree_sitter_rust.Language, rustGrammar()},
	}

	reg := make(map[string]*registeredLanguage)
	for _, l := range langs {
		parser := tree_sitter.NewParser()
		language := tree_sitter.NewLanguage(l.ptr())
		if err := parser.SetLanguage(language); err != nil {
			continue
		}
		rl := &registeredLanguage{grammar: l.grammar, parser: parser}
		for _, ext := range l.grammar.Extensions {
			reg[ext] = rl
		}
	}
	return reg
}

// ForExtension returns the registered language for a file extension
// (".go", ".ts", ...), if any.
func ForExtension(ext string) (*Grammar, bool) {
	rl, ok := registry[ext]
	if !ok {
		return nil, false
	}
	return rl.grammar, true
}

// ExtractFile parses content with the language registered for ext and runs
// the two-pass extractor over the result. Returns a FileResult with
// ParseError set (not a Go error) when the language is unregistered or the
// parser produced no tree, per spec §4.6's failure policy: a parse failure
// is recorded, not fatal.
func ExtractFile(ext string, content []byte) FileResult {
	rl, ok := registry[ext]
	if !ok {
		return FileResult{ParseError: parseError("no parser registered for " + ext)}
	}
	rl.mu.Lock()
	tree := rl.parser.Parse(content, nil)
	rl.mu.Unlock()
	if tree == nil || tree.RootNode() == nil {
		return FileResult{ParseError: errParseFailed}
	}
	root := tsNode{tree.RootNode()}
	return Extract(root, content, rl.grammar)
}
