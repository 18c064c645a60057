package ast

import "sort"

// walkState threads the enclosing container name through the DFS (spec
// §4.6/§9: "an explicit parent-name threaded through; free to recurse or
// use an explicit stack"). This implementation recurses.
type walkState struct {
	grammar *Grammar
	src     []byte
	defs    []DefinitionEntry
	// methodBodies maps an index into defs to the body node captured for a
	// second-pass call-site walk.
	methodBodies map[int]Node
	extMethods   []ExtensionMethod
	// fieldTypes maps class name -> member/parameter name -> declared type,
	// accumulated during the first pass and by constructor DI-initializer
	// scanning before the second pass runs.
	fieldTypes map[string]map[string]string
	// baseTypesByClass mirrors each container's BaseTypes for step-3 lookup
	// from a method defined on that class.
	baseTypesByClass map[string][]string
}

// Extract runs the full two-pass extraction described in spec §4.6 over a
// parsed root node for one file.
func Extract(root Node, src []byte, g *Grammar) FileResult {
	if root == nil {
		return FileResult{ParseError: errParseFailed}
	}
	st := &walkState{
		grammar:          g,
		src:              src,
		methodBodies:     make(map[int]Node),
		fieldTypes:       make(map[string]map[string]string),
		baseTypesByClass: make(map[string][]string),
	}
	st.walk(root, "")

	// Run DI-initializer scanning over every constructor body first so the
	// resulting field types are visible to every method's second pass,
	// regardless of declaration order.
	for defIdx, body := range st.methodBodies {
		def := st.defs[defIdx]
		if def.Kind == KindConstructor {
			st.scanDIInitializers(body, def.Parent)
		}
	}

	calls := make(map[int][]CallSite, len(st.methodBodies))
	for defIdx, body := range st.methodBodies {
		def := st.defs[defIdx]
		fieldTypes := st.buildFieldTypeMap(def.Parent)
		localTypes := st.buildLocalTypeMap(body, def.Parent, fieldTypes)
		sites := st.collectCallSites(body, def.Parent, fieldTypes, localTypes, st.baseTypesByClass[def.Parent])
		if len(sites) > 0 {
			calls[defIdx] = sites
		}
	}

	return FileResult{
		Definitions:      st.defs,
		MethodCalls:      calls,
		ExtensionMethods: st.extMethods,
	}
}

var errParseFailed = parseError("parser returned no tree")

type parseError string

func (e parseError) Error() string { return string(e) }

// walk performs the first DFS pass: emit DefinitionEntry for every
// container/member node (parents before children), capture method-like
// bodies for the second pass, and detect extension methods.
func (st *walkState) walk(n Node, parent string) {
	kind := n.Kind()
	currentParent := parent

	if k, ok := st.grammar.Containers[kind]; ok {
		name := text(n.ChildByFieldName(st.grammar.nameField()), st.src)
		if name != "" {
			bases := st.baseTypes(n)
			entry := DefinitionEntry{
				Name:      name,
				Kind:      k,
				LineStart: n.StartLine(),
				LineEnd:   n.EndLine(),
				Parent:    parent,
				BaseTypes: bases,
			}
			st.defs = append(st.defs, entry)
			st.baseTypesByClass[name] = bases
			currentParent = name
		}
	} else if k, ok := st.grammar.Members[kind]; ok {
		name := st.memberName(n, k)
		if name != "" {
			entry := DefinitionEntry{
				Name:      name,
				Kind:      k,
				LineStart: n.StartLine(),
				LineEnd:   n.EndLine(),
				Parent:    parent,
			}
			if k == KindMethod && st.grammar.ReceiverField != "" {
				if recv := n.ChildByFieldName(st.grammar.ReceiverField); recv != nil {
					if rt := st.receiverParamType(recv); rt != "" {
						entry.Parent = rt
						currentParent = rt
					}
				}
			}
			if k == KindField || k == KindProperty {
				if t := n.ChildByFieldName("type"); t != nil {
					st.recordFieldType(entry.Parent, name, stripGeneric(stripPointer(text(t, st.src))))
				}
			}
			if k == KindConstructor {
				st.scanConstructorParams(n, entry.Parent)
			}
			idx := len(st.defs)
			st.defs = append(st.defs, entry)
			if isMethodLike(k) {
				if body := n.ChildByFieldName(st.grammar.bodyField()); body != nil {
					st.methodBodies[idx] = body
				}
			}
			st.detectExtensionMethod(n, name, parent)
		}
	}

	for _, c := range children(n) {
		st.walk(c, currentParent)
	}
}

func isMethodLike(k Kind) bool {
	return k == KindMethod || k == KindConstructor || k == KindProperty
}

func (g *Grammar) bodyField() string {
	if g.BodyField != "" {
		return g.BodyField
	}
	return "body"
}

func (st *walkState) memberName(n Node, k Kind) string {
	nameNode := n.ChildByFieldName(st.grammar.nameField())
	if nameNode == nil && k == KindConstructor {
		// Some grammars name the constructor node without a name field;
		// callers are expected to set Containers/Members kinds precisely
		// enough that this is rare. Fall back to empty (skipped).
		return ""
	}
	return text(nameNode, st.src)
}

func (st *walkState) baseTypes(n Node) []string {
	if st.grammar.BaseListField == "" {
		return nil
	}
	list := n.ChildByFieldName(st.grammar.BaseListField)
	if list == nil {
		return nil
	}
	var out []string
	for _, c := range children(list) {
		switch c.Kind() {
		case "identifier", "type_identifier", "generic_type", "generic_name", "qualified_name", "scoped_type_identifier":
			out = append(out, stripGeneric(text(c, st.src)))
		}
	}
	return out
}

// receiverParamType extracts the declared type name of a Go-style receiver
// parameter list, e.g. "(s *Server)" -> "Server".
func (st *walkState) receiverParamType(recv Node) string {
	for _, c := range children(recv) {
		if c.Kind() == "parameter_declaration" {
			if t := c.ChildByFieldName("type"); t != nil {
				return stripGeneric(stripPointer(text(t, st.src)))
			}
		}
	}
	return ""
}

func stripPointer(s string) string {
	for len(s) > 0 && s[0] == '*' {
		s = s[1:]
	}
	return s
}

// stripGeneric strips a generic type to its base name, per spec's "match
// the reference's strip-to-base behavior" on the Dictionary<K,V> question.
func stripGeneric(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '<' {
			return s[:i]
		}
	}
	return s
}

func (st *walkState) detectExtensionMethod(methodNode Node, methodName, containingClass string) {
	marker := st.grammar.ExtensionParamMarker
	if marker == "" || containingClass == "" {
		return
	}
	params := methodNode.ChildByFieldName("parameters")
	if params == nil {
		return
	}
	kids := children(params)
	if len(kids) == 0 {
		return
	}
	if text(kids[0], st.src) == "" {
		return
	}
	for _, c := range children(kids[0]) {
		if text(c, st.src) == marker {
			st.extMethods = append(st.extMethods, ExtensionMethod{MethodName: methodName, ContainingClass: containingClass})
			return
		}
	}
}

// sortCallSites sorts by (line, method_name, receiver_type) and dedupes, per
// spec §4.6 step 4.
func sortCallSites(sites []CallSite) []CallSite {
	sort.Slice(sites, func(i, j int) bool {
		if sites[i].Line != sites[j].Line {
			return sites[i].Line < sites[j].Line
		}
		if sites[i].MethodName != sites[j].MethodName {
			return sites[i].MethodName < sites[j].MethodName
		}
		return sites[i].ReceiverType < sites[j].ReceiverType
	})
	out := sites[:0]
	var prev *CallSite
	for i := range sites {
		s := sites[i]
		if prev != nil && *prev == s {
			continue
		}
		out = append(out, s)
		c := s
		prev = &c
	}
	return out
}
