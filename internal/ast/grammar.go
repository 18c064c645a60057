package ast

// Grammar is the per-language node-kind vocabulary the generic walker
// (extractor.go) is parameterized over. Spec §9 deliberately names AST
// shapes abstractly ("a member access with receiver this", "an
// object-creation expression with a type child") precisely so one walker
// can serve every tree-sitter grammar in the pack by swapping this table,
// the same way the teacher keeps one query string per language rather than
// one bespoke walker per language.
type Grammar struct {
	Name       string
	Extensions []string

	// Container node kinds (class-like) -> Kind.
	Containers map[string]Kind
	// Member node kinds (method/function/field/etc, found inside a
	// container or at top level) -> Kind.
	Members map[string]Kind

	// NameField is the field name holding a declaration's identifier.
	// Defaults to "name" when empty.
	NameField string
	// BodyField is the field name holding a method/function's body block,
	// used as the root for call-site scanning.
	BodyField string
	// BaseListField, if non-empty, names the field holding an extends/
	// implements clause whose identifier children become BaseTypes.
	BaseListField string
	// ReceiverField, for method-like nodes that carry an explicit receiver
	// parameter (Go methods); used to recover the receiver type name so the
	// method can be attributed to Parent even though Go has no enclosing
	// class node.
	ReceiverField string

	// Call-expression kinds, e.g. {"call_expression": true}.
	CallKinds map[string]bool
	// Object-creation kinds, e.g. {"object_creation_expression": true, "new_expression": true}.
	NewKinds map[string]bool
	// Member-access kinds, e.g. {"member_expression": true, "member_access_expression": true, "selector_expression": true}.
	MemberKinds map[string]bool
	// FunctionField names the callee sub-node of a call node.
	FunctionField string
	// ObjectField/PropertyField name the receiver and member of a
	// member-access node.
	ObjectField   string
	PropertyField string
	// TypeField names the type sub-node of a new/object-creation node.
	TypeField string
	// ArgumentsField names the call's argument list. No grammar in this
	// package sets it, and the walker does not read it.
	ArgumentsField string

	// ThisIdentifiers are the literal spellings of "this"/"self" receivers
	// that resolve to the enclosing class.
	ThisIdentifiers map[string]bool
	// BaseIdentifiers are the literal spellings of "base"/"super" receivers
	// that resolve to the first base type.
	BaseIdentifiers map[string]bool

	// VariableDeclKinds are local-variable declaration node kinds, used to
	// build the local-type map for receiver inference.
	VariableDeclKinds map[string]bool
	// ExtensionParamMarker, if non-empty, is a modifier/keyword that marks a
	// parameter as an extension-method receiver (C#'s `this` parameter
	// modifier). Empty means the language has no extension-method idiom.
	ExtensionParamMarker string
}

func (g *Grammar) nameField() string {
	if g.NameField != "" {
		return g.NameField
	}
	return "name"
}
