package csharp

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/csfacts/internal/semantic"
)

// local finds the declaration of a local variable or parameter named name
// visible from at and returns its type. A declaration whose type cannot be
// bound reports a nil type with ok set, so it still shadows members.
func (b *binder) local(at *sitter.Node, name string) (*semantic.Type, bool) {
	prev := at
	for p := at.Parent(); p != nil; prev, p = p, p.Parent() {
		switch {
		case hasKind(p, "block", "switch_section", "compilation_unit"):
			for _, s := range namedChildren(p) {
				if s.StartByte() >= prev.StartByte() && !sameNode(s, prev) {
					break
				}
				stmt := s
				if s.Kind() == "global_statement" {
					stmt = firstNamed(s)
				}
				if hasKind(stmt, "local_declaration_statement", "using_statement") {
					if t, ok := b.declared(childOfKind(stmt, "variable_declaration"), name); ok {
						return t, true
					}
				}
			}
		case hasKind(p, "for_statement", "using_statement", "fixed_statement"):
			decl := field(p, "initializer")
			if decl == nil || decl.Kind() != "variable_declaration" {
				decl = childOfKind(p, "variable_declaration")
			}
			if t, ok := b.declared(decl, name); ok {
				return t, true
			}
		case p.Kind() == "foreach_statement":
			if left := field(p, "left"); left != nil && left.Kind() == "identifier" && text(left, b.src) == name {
				if t := b.resolveTypeNode(field(p, "type")); t != nil {
					return t, true
				}
				return b.elementType(b.typeOf(field(p, "right"))), true
			}
		case p.Kind() == "catch_clause":
			if decl := childOfKind(p, "catch_declaration"); decl != nil && nameOf(decl, b.src) == name && field(decl, "name") != nil {
				return b.resolveTypeNode(field(decl, "type")), true
			}
		case hasKind(p, functionKinds...):
			if t, ok := b.parameter(p, name); ok {
				return t, true
			}
		case hasKind(p, classKinds...):
			for _, param := range parameterNodes(childOfKind(p, "parameter_list")) {
				if parameterName(param, b.src) == name {
					return b.resolveTypeNode(parameterType(param)), true
				}
			}
			return b.patternVariable(at, name)
		case hasKind(p, typeDeclKinds...):
			return b.patternVariable(at, name)
		}
	}
	return b.patternVariable(at, name)
}

// declared looks name up among the declarators of a variable_declaration.
func (b *binder) declared(decl *sitter.Node, name string) (*semantic.Type, bool) {
	for _, v := range childrenOfKind(decl, "variable_declarator") {
		if tp := childOfKind(v, "tuple_pattern"); tp != nil {
			for _, id := range designators(tp, b.src) {
				if text(id, b.src) == name {
					return b.deconstructedType(id), true
				}
			}
			continue
		}
		if nameOf(v, b.src) == name {
			return b.declaratorType(decl, v), true
		}
	}
	return nil, false
}

// designators returns the identifiers a deconstruction introduces, in
// source order. Discards are skipped.
func designators(n *sitter.Node, src []byte) []*sitter.Node {
	var out []*sitter.Node
	for _, c := range namedChildren(n) {
		switch c.Kind() {
		case "identifier":
			if text(c, src) != "_" {
				out = append(out, c)
			}
		case "tuple_pattern", "parenthesized_variable_designation":
			out = append(out, designators(c, src)...)
		}
	}
	return out
}

// deconstructedType binds a variable introduced by a deconstruction to the
// tuple element at its position. It is nil when the deconstructed value is
// not a tuple of matching shape.
func (b *binder) deconstructedType(id *sitter.Node) *semantic.Type {
	var path []int
	n, p := id, id.Parent()
	for p != nil && hasKind(p, "tuple_pattern", "parenthesized_variable_designation") {
		path = append([]int{elementIndex(p, n)}, path...)
		n, p = p, p.Parent()
	}

	var t *semantic.Type
	switch {
	case p == nil:
		return nil
	case p.Kind() == "variable_declarator":
		t = b.declaratorType(p.Parent(), p)
	case p.Kind() == "declaration_pattern":
		t = b.resolveTypeNode(field(p, "type"))
	}
	for _, i := range path {
		if t == nil || i < 0 || i >= len(t.Tuple) {
			return nil
		}
		t = t.Tuple[i]
	}
	return t
}

// elementIndex returns the position of child among the elements of a
// deconstruction, discards included.
func elementIndex(list, child *sitter.Node) int {
	i := 0
	for _, c := range namedChildren(list) {
		if sameNode(c, child) {
			return i
		}
		if hasKind(c, "identifier", "discard", "tuple_pattern", "parenthesized_variable_designation") {
			i++
		}
	}
	return -1
}

// declaratorType is the written type of a declaration, or the type of the
// initializer for var.
func (b *binder) declaratorType(decl, v *sitter.Node) *semantic.Type {
	if t := b.resolveTypeNode(field(decl, "type")); t != nil {
		return t
	}
	return b.typeOf(initializer(v))
}

func (b *binder) parameter(fn *sitter.Node, name string) (*semantic.Type, bool) {
	if fn.Kind() == "accessor_declaration" && name == "value" {
		if prop := ancestor(fn, []string{"property_declaration", "indexer_declaration", "event_declaration"}); prop != nil {
			return b.resolveTypeNode(field(prop, "type")), true
		}
	}
	if fn.Kind() == "lambda_expression" {
		if p := field(fn, "parameters"); p != nil && p.Kind() == "identifier" {
			if text(p, b.src) == name {
				return nil, true
			}
			return nil, false
		}
	}
	params := parameterList(fn)
	if fn.Kind() == "accessor_declaration" {
		params = parameterList(ancestor(fn, []string{"indexer_declaration"}))
	}
	for _, p := range parameterNodes(params) {
		if parameterName(p, b.src) == name {
			return b.resolveTypeNode(parameterType(p)), true
		}
	}
	for _, id := range childrenOfKind(fn, "implicit_parameter") {
		if text(id, b.src) == name {
			return nil, true
		}
	}
	return nil, false
}

// patternVariable searches the enclosing member for an out variable or a
// pattern designation named name.
func (b *binder) patternVariable(at *sitter.Node, name string) (*semantic.Type, bool) {
	scope := ancestor(at, memberKinds)
	if scope == nil {
		scope = ancestor(at, []string{"global_statement"})
	}
	var found *sitter.Node
	walk(scope, func(n *sitter.Node) bool {
		if found != nil {
			return false
		}
		if hasKind(n, "declaration_expression", "declaration_pattern") && designatedName(n, b.src) == name {
			found = n
			return false
		}
		return true
	})
	if found == nil {
		return nil, false
	}
	return b.designatedType(found), true
}

// designatedName returns the variable introduced by a declaration
// expression or pattern.
func designatedName(n *sitter.Node, src []byte) string {
	d := field(n, "name")
	if d == nil {
		d = childOfKind(n, "single_variable_designation", "identifier")
	}
	if d != nil && d.Kind() == "single_variable_designation" {
		d = childOfKind(d, "identifier")
	}
	return text(d, src)
}

// designatedType binds the type of an out variable or pattern variable. An
// out var takes the type of the parameter it is passed to.
func (b *binder) designatedType(n *sitter.Node) *semantic.Type {
	if t := b.resolveTypeNode(field(n, "type")); t != nil {
		return t
	}
	arg := n.Parent()
	if arg == nil || arg.Kind() != "argument" {
		return nil
	}
	list := arg.Parent()
	inv := list.Parent()
	if inv == nil || inv.Kind() != "invocation_expression" {
		return nil
	}
	index := 0
	for _, a := range childrenOfKind(list, "argument") {
		if sameNode(a, arg) {
			break
		}
		index++
	}
	c, ok := b.bindCall(inv)
	if !ok || c.Ref == nil {
		return nil
	}
	params := b.m.ParameterTypes(c.Ref)
	if index < len(params) {
		return params[index]
	}
	return nil
}

// createdType falls back to the first object created by an initializer.
func (b *binder) createdType(init *sitter.Node) *semantic.Type {
	var t *semantic.Type
	walk(init, func(n *sitter.Node) bool {
		if t != nil || hasKind(n, "lambda_expression", "anonymous_method_expression") {
			return false
		}
		if n.Kind() == "object_creation_expression" {
			t = b.resolveTypeNode(field(n, "type"))
			return false
		}
		return true
	})
	return t
}
