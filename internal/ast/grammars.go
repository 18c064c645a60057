package ast

// goGrammar maps Go's tree-sitter grammar onto the generic walker. Go has no
// class node; type_declaration stands in as the only Container (recorded as
// KindStruct, interfaces included), and method_declaration's "receiver"
// field recovers Parent (see
// extractor.go's ReceiverField handling).
func goGrammar() *Grammar {
	return &Grammar{
		Name:       "go",
		Extensions: []string{".go"},
		Containers: map[string]Kind{
			"type_declaration": KindStruct, // refined to interface below via type_spec inspection is out of scope; struct/interface both common enough to default to struct
		},
		Members: map[string]Kind{
			"method_declaration":   KindMethod,
			"function_declaration": KindMethod,
			"field_declaration":    KindField,
		},
		NameField:     "name",
		BodyField:     "body",
		ReceiverField: "receiver",
		CallKinds:     map[string]bool{"call_expression": true},
		NewKinds:      map[string]bool{"composite_literal": true},
		MemberKinds:   map[string]bool{"selector_expression": true},
		FunctionField: "function",
		ObjectField:   "operand",
		PropertyField: "field",
		TypeField:     "type",
		ThisIdentifiers: map[string]bool{},
		BaseIdentifiers: map[string]bool{},
		VariableDeclKinds: map[string]bool{
			"short_var_declaration": true,
			"var_spec":              true,
		},
	}
}

// javascriptGrammar covers plain JS and, via tolerant field names, JSX.
func javascriptGrammar() *Grammar {
	return &Grammar{
		Name:       "javascript",
		Extensions: []string{".js", ".jsx", ".mjs", ".cjs"},
		Containers: map[string]Kind{
			"class_declaration": KindClass,
		},
		Members: map[string]Kind{
			"method_definition":   KindMethod,
			"function_declaration": KindMethod,
			"field_definition":    KindField,
		},
		NameField:     "name",
		BodyField:     "body",
		BaseListField: "superclass",
		CallKinds:     map[string]bool{"call_expression": true, "new_expression": true},
		NewKinds:      map[string]bool{"new_expression": true},
		MemberKinds:   map[string]bool{"member_expression": true},
		FunctionField: "function",
		ObjectField:   "object",
		PropertyField: "property",
		TypeField:     "constructor",
		ThisIdentifiers: map[string]bool{"this": true},
		BaseIdentifiers: map[string]bool{"super": true},
		VariableDeclKinds: map[string]bool{
			"variable_declarator": true,
		},
	}
}

// typescriptGrammar layers class/interface/enum containers, TS member kinds
// (public fields, property and method signatures), and extension-free
// semantics onto the JS grammar shape.
func typescriptGrammar() *Grammar {
	g := javascriptGrammar()
	g.Name = "typescript"
	g.Extensions = []string{".ts", ".tsx"}
	g.Containers = map[string]Kind{
		"class_declaration":     KindClass,
		"interface_declaration": KindInterface,
		"enum_declaration":      KindEnum,
	}
	g.Members = map[string]Kind{
		"method_definition":    KindMethod,
		"function_declaration": KindMethod,
		"public_field_definition": KindField,
		"property_signature":   KindProperty,
	}
	g.Members["method_signature"] = KindMethod
	return g
}

// pythonGrammar covers Python's class_definition/function_definition shape;
// Python has no receiver keyword to infer, so "self"/"cls" are the this
// identifiers and the first base in a class's base clause resolves "super".
func pythonGrammar() *Grammar {
	return &Grammar{
		Name:       "python",
		Extensions: []string{".py", ".pyi"},
		Containers: map[string]Kind{
			"class_definition": KindClass,
		},
		Members: map[string]Kind{
			"function_definition": KindMethod,
		},
		NameField:     "name",
		BodyField:     "body",
		BaseListField: "superclasses",
		CallKinds:     map[string]bool{"call": true},
		NewKinds:      map[string]bool{},
		MemberKinds:   map[string]bool{"attribute": true},
		FunctionField: "function",
		ObjectField:   "object",
		PropertyField: "attribute",
		TypeField:     "function",
		ThisIdentifiers: map[string]bool{"self": true, "cls": true},
		BaseIdentifiers: map[string]bool{"super": true},
		VariableDeclKinds: map[string]bool{
			"assignment": true,
		},
	}
}

// javaGrammar covers Java's class/interface/enum containers and method
// declarations; "this"/"super" are keyword node kinds in this grammar as
// well as identifier spellings, so both are listed.
func javaGrammar() *Grammar {
	return &Grammar{
		Name:       "java",
		Extensions: []string{".java"},
		Containers: map[string]Kind{
			"class_declaration":     KindClass,
			"interface_declaration": KindInterface,
			"enum_declaration":      KindEnum,
			"record_declaration":    KindRecord,
		},
		Members: map[string]Kind{
			"method_declaration":      KindMethod,
			"constructor_declaration": KindConstructor,
			"field_declaration":       KindField,
		},
		NameField:     "name",
		BodyField:     "body",
		BaseListField: "interfaces",
		CallKinds:     map[string]bool{"method_invocation": true},
		NewKinds:      map[string]bool{"object_creation_expression": true},
		MemberKinds:   map[string]bool{"field_access": true},
		FunctionField: "name",
		ObjectField:   "object",
		PropertyField: "field",
		TypeField:     "type",
		ThisIdentifiers: map[string]bool{"this": true},
		BaseIdentifiers: map[string]bool{"super": true},
		VariableDeclKinds: map[string]bool{
			"local_variable_declaration": true,
			"variable_declarator":        true,
		},
	}
}

// csharpGrammar additionally wires ExtensionParamMarker for the `this`
// parameter-modifier extension-method idiom spec §4.6 calls out by name.
func csharpGrammar() *Grammar {
	return &Grammar{
		Name:       "c_sharp",
		Extensions: []string{".cs"},
		Containers: map[string]Kind{
			"class_declaration":     KindClass,
			"interface_declaration": KindInterface,
			"struct_declaration":    KindStruct,
			"enum_declaration":      KindEnum,
			"record_declaration":    KindRecord,
		},
		Members: map[string]Kind{
			"method_declaration":      KindMethod,
			"constructor_declaration": KindConstructor,
			"property_declaration":    KindProperty,
			"field_declaration":       KindField,
			"event_declaration":       KindEvent,
			"delegate_declaration":    KindDelegate,
			"enum_member_declaration": KindEnumMember,
		},
		NameField:     "name",
		BodyField:     "body",
		BaseListField: "bases",
		CallKinds:     map[string]bool{"invocation_expression": true},
		NewKinds:      map[string]bool{"object_creation_expression": true},
		MemberKinds:   map[string]bool{"member_access_expression": true},
		FunctionField: "function",
		ObjectField:   "expression",
		PropertyField: "name",
		TypeField:     "type",
		ThisIdentifiers: map[string]bool{"this": true},
		BaseIdentifiers: map[string]bool{"base": true},
		VariableDeclKinds: map[string]bool{
			"variable_declarator": true,
		},
		ExtensionParamMarker: "this",
	}
}

// cppGrammar covers class_specifier/struct_specifier containers and
// field_declaration-based methods; C++ has no single call-expression kind
// separate from function_declarator, so call_expression covers both plain
// and member calls via the field_expression MemberKind.
func cppGrammar() *Grammar {
	return &Grammar{
		Name:       "cpp",
		Extensions: []string{".cpp", ".cc", ".cxx", ".hpp", ".hh", ".h"},
		Containers: map[string]Kind{
			"class_specifier":  KindClass,
			"struct_specifier": KindStruct,
		},
		Members: map[string]Kind{
			"function_definition": KindMethod,
			"field_declaration":   KindField,
		},
		NameField:     "name",
		BodyField:     "body",
		BaseListField: "base_class_clause",
		CallKinds:     map[string]bool{"call_expression": true},
		NewKinds:      map[string]bool{"new_expression": true},
		MemberKinds:   map[string]bool{"field_expression": true},
		FunctionField: "function",
		ObjectField:   "argument",
		PropertyField: "field",
		TypeField:     "type",
		ThisIdentifiers: map[string]bool{"this": true},
		BaseIdentifiers: map[string]bool{},
		VariableDeclKinds: map[string]bool{
			"declaration": true,
		},
	}
}

// phpGrammar covers PHP's class/interface/enum declarations.
func phpGrammar() *Grammar {
	return &Grammar{
		Name:       "php",
		Extensions: []string{".php"},
		Containers: map[string]Kind{
			"class_declaration":     KindClass,
			"interface_declaration": KindInterface,
			"enum_declaration":      KindEnum,
		},
		Members: map[string]Kind{
			"method_declaration":  KindMethod,
			"property_declaration": KindField,
		},
		NameField:     "name",
		BodyField:     "body",
		BaseListField: "interfaces",
		CallKinds:     map[string]bool{"member_call_expression": true, "function_call_expression": true},
		NewKinds:      map[string]bool{"object_creation_expression": true},
		MemberKinds:   map[string]bool{"member_call_expression": true, "member_access_expression": true},
		FunctionField: "name",
		ObjectField:   "object",
		PropertyField: "name",
		TypeField:     "class",
		ThisIdentifiers: map[string]bool{"$this": true},
		BaseIdentifiers: map[string]bool{"parent": true},
		VariableDeclKinds: map[string]bool{
			"assignment_expression": true,
		},
	}
}

// rustGrammar maps struct_item/enum_item/trait_item and function_item; Rust has
// no inheritance so BaseListField is left empty (trait bounds are not base
// types in the OO sense spec's base-resolution step targets).
func rustGrammar() *Grammar {
	return &Grammar{
		Name:       "rust",
		Extensions: []string{".rs"},
		Containers: map[string]Kind{
			"struct_item": KindStruct,
			"enum_item":   KindEnum,
			"trait_item":  KindInterface,
		},
		Members: map[string]Kind{
			"function_item": KindMethod,
			"field_declaration": KindField,
		},
		NameField:     "name",
		BodyField:     "body",
		CallKinds:     map[string]bool{"call_expression": true},
		NewKinds:      map[string]bool{},
		MemberKinds:   map[string]bool{"field_expression": true},
		FunctionField: "function",
		ObjectField:   "value",
		PropertyField: "field",
		TypeField:     "type",
		ThisIdentifiers: map[string]bool{"self": true},
		BaseIdentifiers: map[string]bool{},
		VariableDeclKinds: map[string]bool{
			"let_declaration": true,
		},
	}
}
