package ast

import "unicode"

// buildFieldTypeMap merges declared fields/properties, constructor
// parameters (mapping both name and _name to the parameter type, the DI
// idiom), and constructor-body DI-token initializers of the form
// `name = inject(TypeExpr)` for the named class (spec §4.6 step 1).
func (st *walkState) buildFieldTypeMap(class string) map[string]string {
	out := make(map[string]string)
	for k, v := range st.fieldTypes[class] {
		out[k] = v
	}
	return out
}

// recordFieldType is called from walk() while visiting a Field/Property
// member, and from the constructor-parameter scan below.
func (st *walkState) recordFieldType(class, name, typ string) {
	if class == "" || name == "" || typ == "" {
		return
	}
	if st.fieldTypes == nil {
		st.fieldTypes = make(map[string]map[string]string)
	}
	if st.fieldTypes[class] == nil {
		st.fieldTypes[class] = make(map[string]string)
	}
	st.fieldTypes[class][name] = typ
}

// scanConstructorParams records every constructor parameter's declared
// type under both its own name and an underscore-prefixed alias, the
// dependency-injection idiom spec §4.6 names explicitly.
func (st *walkState) scanConstructorParams(methodNode Node, class string) {
	params := methodNode.ChildByFieldName("parameters")
	if params == nil {
		return
	}
	for _, p := range children(params) {
		nameNode := p.ChildByFieldName("name")
		typeNode := p.ChildByFieldName("type")
		name := text(nameNode, st.src)
		typ := stripGeneric(stripPointer(text(typeNode, st.src)))
		if name == "" || typ == "" {
			continue
		}
		st.recordFieldType(class, name, typ)
		st.recordFieldType(class, "_"+name, typ)
	}
}

// scanDIInitializers walks a constructor body for `name = inject(Type)`
// style assignments and records them as field types too.
func (st *walkState) scanDIInitializers(body Node, class string) {
	if body == nil {
		return
	}
	var walk func(n Node)
	walk = func(n Node) {
		if n.Kind() == "assignment_expression" || n.Kind() == "variable_declarator" {
			left := n.ChildByFieldName("left")
			if left == nil {
				left = n.ChildByFieldName("name")
			}
			right := n.ChildByFieldName("right")
			if right == nil {
				right = n.ChildByFieldName("value")
			}
			if left != nil && right != nil && right.Kind() == "call_expression" {
				if fn := right.ChildByFieldName("function"); fn != nil && text(fn, st.src) == "inject" {
					if args := right.ChildByFieldName("arguments"); args != nil {
						kids := children(args)
						if len(kids) > 0 {
							st.recordFieldType(class, lastSegment(text(left, st.src)), stripGeneric(text(kids[0], st.src)))
						}
					}
				}
			}
		}
		for _, c := range children(n) {
			walk(c)
		}
	}
	walk(body)
}

func lastSegment(s string) string {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return s[i+1:]
		}
	}
	return s
}

// buildLocalTypeMap builds local variable types from a method body:
// explicit declarations, new T(...) inferences, and cast expressions, for
// the node kinds listed in the grammar's VariableDeclKinds. The result holds
// locals only; the field-type map stays separate and receiver resolution
// consults both.
func (st *walkState) buildLocalTypeMap(body Node, class string, fieldTypes map[string]string) map[string]string {
	out := make(map[string]string)
	if body == nil {
		return out
	}
	var walk func(n Node)
	walk = func(n Node) {
		switch {
		case st.grammar.VariableDeclKinds[n.Kind()]:
			nameNode := n.ChildByFieldName("name")
			if nameNode == nil {
				nameNode = n.ChildByFieldName("left")
			}
			name := text(nameNode, st.src)
			if name == "" {
				break
			}
			if typeNode := n.ChildByFieldName("type"); typeNode != nil {
				out[name] = stripGeneric(stripPointer(text(typeNode, st.src)))
				break
			}
			if valueNode := n.ChildByFieldName("value"); valueNode != nil {
				if t := st.inferExprType(valueNode); t != "" {
					out[name] = t
				}
			}
		}
		for _, c := range children(n) {
			walk(c)
		}
	}
	walk(body)
	return out
}

// inferExprType recovers a type from a new-expression or a cast/"as"
// expression initializer.
func (st *walkState) inferExprType(n Node) string {
	g := st.grammar
	if g.NewKinds[n.Kind()] {
		if t := n.ChildByFieldName(g.TypeField); t != nil {
			return stripGeneric(text(t, st.src))
		}
	}
	switch n.Kind() {
	case "cast_expression":
		if t := n.ChildByFieldName("type"); t != nil {
			return stripGeneric(stripPointer(text(t, st.src)))
		}
	case "as_expression":
		// `expr as T`: T is typically the right-hand/last child.
		kids := children(n)
		if len(kids) > 0 {
			return stripGeneric(text(kids[len(kids)-1], st.src))
		}
	}
	return ""
}

func isPascalCase(s string) bool {
	if s == "" {
		return false
	}
	r := []rune(s)[0]
	return unicode.IsUpper(r)
}

// resolveReceiverExpr implements spec §4.6 step 3's dispatch on the
// receiver expression of a member access or bare call.
func (st *walkState) resolveReceiverExpr(n Node, parentClass string, baseTypes []string, fieldTypes, localTypes map[string]string) (receiver string, isGeneric bool) {
	g := st.grammar
	raw := text(n, st.src)
	isGeneric = containsRune(raw, '<')

	if g.MemberKinds[n.Kind()] {
		objNode := n.ChildByFieldName(g.ObjectField)
		propNode := n.ChildByFieldName(g.PropertyField)
		propName := text(propNode, st.src)
		if objNode != nil && g.MemberKinds[objNode.Kind()] {
			// Chained a.b.c.f(): resolve the immediate object's own
			// property (c) first; else fall through to the field/local
			// lookup and PascalCase check below.
			inner, _ := st.resolveReceiverExpr(objNode, parentClass, baseTypes, fieldTypes, localTypes)
			if inner != "" {
				return stripGeneric(resolvePropType(propName, fieldTypes, localTypes)), isGeneric
			}
		}
		return resolvePropType(propName, fieldTypes, localTypes), isGeneric
	}

	name := stripGeneric(raw)
	if g.ThisIdentifiers[name] {
		return parentClass, isGeneric
	}
	if g.BaseIdentifiers[name] {
		if len(baseTypes) > 0 {
			return baseTypes[0], isGeneric
		}
		return "", isGeneric
	}
	if t, ok := localTypes[name]; ok {
		return t, isGeneric
	}
	if t, ok := fieldTypes[name]; ok {
		return t, isGeneric
	}
	if isPascalCase(name) {
		return name, isGeneric
	}
	return name, isGeneric
}

// resolvePropType resolves a member-access property name to its declared
// field type, else its local type, matching the original's
// resolve_receiver_type field_types lookup for "member_access_expression".
// A name found in neither map is returned unchanged.
func resolvePropType(propName string, fieldTypes, localTypes map[string]string) string {
	if t, ok := fieldTypes[propName]; ok {
		return t
	}
	if t, ok := localTypes[propName]; ok {
		return t
	}
	return propName
}

func containsRune(s string, r byte) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == r {
			return true
		}
	}
	return false
}

// collectCallSites walks a method body for invocation and object-creation
// nodes, producing one CallSite per spec §4.6 step 3, sorted and deduped
// per step 4.
func (st *walkState) collectCallSites(body Node, parentClass string, fieldTypes, localTypes map[string]string, baseTypes []string) []CallSite {
	g := st.grammar
	var sites []CallSite
	var walk func(n Node)
	walk = func(n Node) {
		switch {
		case g.NewKinds[n.Kind()]:
			if t := n.ChildByFieldName(g.TypeField); t != nil {
				raw := text(t, st.src)
				sites = append(sites, CallSite{
					MethodName:        stripGeneric(raw),
					ReceiverType:      stripGeneric(raw),
					Line:              uint32(n.StartLine()),
					ReceiverIsGeneric: containsRune(raw, '<'),
				})
			}
		case g.CallKinds[n.Kind()]:
			fn := n.ChildByFieldName(g.FunctionField)
			if fn != nil {
				if g.MemberKinds[fn.Kind()] {
					propNode := fn.ChildByFieldName(g.PropertyField)
					objNode := fn.ChildByFieldName(g.ObjectField)
					methodName := text(propNode, st.src)
					if methodName != "" && objNode != nil {
						recv, generic := st.resolveReceiverExpr(objNode, parentClass, baseTypes, fieldTypes, localTypes)
						sites = append(sites, CallSite{
							MethodName:        methodName,
							ReceiverType:      recv,
							Line:              uint32(n.StartLine()),
							ReceiverIsGeneric: generic,
						})
					}
				} else {
					methodName := text(fn, st.src)
					if methodName != "" {
						sites = append(sites, CallSite{
							MethodName: methodName,
							Line:       uint32(n.StartLine()),
						})
					}
				}
			}
		}
		for _, c := range children(n) {
			walk(c)
		}
	}
	walk(body)
	return sortCallSites(sites)
}
