// Package ast implements the per-language AST extractors (spec §C7/§4.6):
// one depth-first walk per file producing DefinitionEntry and CallSite
// records, plus receiver-type inference for call sites.
package ast

import "github.com/pustynsky/search-index-sub001/internal/ixtypes"

// Kind names a declared symbol's shape. SQL-side and other exotic kinds are
// kept as opaque strings per spec §3, so Kind is a plain string rather than
// a closed enum.
type Kind string

const (
	KindClass       Kind = "class"
	KindInterface   Kind = "interface"
	KindMethod      Kind = "method"
	KindProperty    Kind = "property"
	KindField       Kind = "field"
	KindEnum        Kind = "enum"
	KindStruct      Kind = "struct"
	KindRecord      Kind = "record"
	KindConstructor Kind = "constructor"
	KindDelegate    Kind = "delegate"
	KindEvent       Kind = "event"
	KindEnumMember  Kind = "enumMember"
	KindTypeAlias   Kind = "typeAlias"
	KindVariable    Kind = "variable"
)

// DefinitionEntry is one declared symbol (spec §3).
type DefinitionEntry struct {
	FileID     ixtypes.FileID
	Name       string
	Kind       Kind
	LineStart  int // 1-based, inclusive
	LineEnd    int // 1-based, inclusive
	Parent     string // containing class/interface name, optional
	Signature  string // optional, normalized whitespace
	Modifiers  []string
	Attributes []string
	BaseTypes  []string
}

// CallSite is one invocation or construction reference observed inside a
// method body (spec §3).
type CallSite struct {
	MethodName        string
	ReceiverType       string // optional; "" means none
	Line               uint32
	ReceiverIsGeneric bool
}

// ExtensionMethod records a static-class extension method so the callee
// resolver can map `x.Ext()` back to its containing class (spec §4.6).
type ExtensionMethod struct {
	MethodName      string
	ContainingClass string
}

// FileResult is everything one extractor run over a single file produces.
type FileResult struct {
	Definitions       []DefinitionEntry
	MethodCalls       map[int][]CallSite // index into Definitions -> its call sites
	ExtensionMethods  []ExtensionMethod
	ParseError        error
}
