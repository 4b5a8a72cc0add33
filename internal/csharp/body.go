package csharp

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/csfacts/internal/model"
	"github.com/standardbeagle/csfacts/internal/semantic"
)

// bodyOf returns the executable part of a function-like declaration: its
// block or its expression body.
func bodyOf(n *sitter.Node) *sitter.Node {
	if n == nil || n.Kind() == "arrow_expression_clause" {
		return n
	}
	if body := field(n, "body"); body != nil {
		return body
	}
	return childOfKind(n, "block", "arrow_expression_clause")
}

// walkScope walks the descendants of root that belong to its own body.
// Local functions are separate scopes and are not entered.
func walkScope(root *sitter.Node, visit func(*sitter.Node)) {
	if root == nil {
		return
	}
	for i := uint(0); i < root.ChildCount(); i++ {
		walk(root.Child(i), func(n *sitter.Node) bool {
			if hasKind(n, "local_function_statement") || hasKind(n, typeDeclKinds...) {
				return false
			}
			visit(n)
			return true
		})
	}
}

// cyclomatic returns 1 plus one per decision point in the body of fn.
func cyclomatic(fn *sitter.Node, src []byte) int {
	cc := 1
	walkScope(bodyOf(fn), func(n *sitter.Node) {
		cc += decisions(n, src)
	})
	return cc
}

// decisions counts the branches n itself introduces.
func decisions(n *sitter.Node, src []byte) int {
	switch n.Kind() {
	case "if_statement", "while_statement", "do_statement", "for_statement",
		"foreach_statement", "for_each_statement", "catch_clause", "conditional_expression":
		return 1
	case "case_switch_label", "case_pattern_switch_label":
		return 1
	case "switch_section":
		count := 0
		for i := uint(0); i < n.ChildCount(); i++ {
			if c := n.Child(i); c != nil && !c.IsNamed() && c.Kind() == "case" {
				count++
			}
		}
		return count
	case "switch_expression_arm":
		if pat := firstNamed(n); pat != nil && (pat.Kind() == "discard" || text(pat, src) == "_") {
			return 0
		}
		return 1
	case "binary_expression":
		switch operatorText(n, src) {
		case "&&", "||", "??":
			return 1
		}
	case "assignment_expression":
		if operatorText(n, src) == "??=" {
			return 1
		}
	case "and_pattern", "or_pattern":
		return 1
	case "binary_pattern":
		switch operatorText(n, src) {
		case "and", "or":
			return 1
		}
	}
	return 0
}

// calls binds the invocations in the body of fn. A constructor initializer
// counts as a call of the invoked constructor. unresolved names the calls
// that could not be bound.
func (b *binder) calls(fn *sitter.Node) (calls []model.MethodCall, unresolved []string) {
	if fn.Kind() == "constructor_declaration" {
		if mc, ok := b.constructorCall(fn); ok {
			calls = append(calls, mc)
			if mc.IsExtern {
				unresolved = append(unresolved, mc.Name)
			}
		}
	}
	walkScope(bodyOf(fn), func(n *sitter.Node) {
		if n.Kind() != "invocation_expression" {
			return
		}
		c, ok := b.bindCall(n)
		if c.Name == "nameof" && !ok {
			return
		}
		calls = append(calls, b.methodCall(c))
		if !ok {
			unresolved = append(unresolved, c.Name)
		}
	})
	return calls, unresolved
}

// accessedFields lists the fields, properties and events used in the body
// of fn, in source order.
func (b *binder) accessedFields(fn *sitter.Node) []model.AccessedField {
	var out []model.AccessedField
	walkScope(bodyOf(fn), func(n *sitter.Node) {
		var af model.AccessedField
		ok := false
		switch n.Kind() {
		case "member_access_expression", "member_binding_expression":
			af, ok = b.accessedMember(n)
		case "identifier":
			af, ok = b.accessedName(n)
		}
		if ok {
			out = append(out, af)
		}
	})
	return out
}

// localDeclarations returns the nodes declaring locals in the body of fn:
// variable declarators, foreach statements, out variables and pattern
// designations.
func localDeclarations(fn *sitter.Node, src []byte) []*sitter.Node {
	var out []*sitter.Node
	walkScope(bodyOf(fn), func(n *sitter.Node) {
		switch n.Kind() {
		case "local_declaration_statement", "using_statement", "for_statement", "fixed_statement":
			for _, v := range childrenOfKind(localDeclaration(n), "variable_declarator") {
				if tp := childOfKind(v, "tuple_pattern"); tp != nil {
					out = append(out, designators(tp, src)...)
					continue
				}
				out = append(out, v)
			}
		case "foreach_statement", "for_each_statement":
			if left := field(n, "left"); left != nil && left.Kind() == "identifier" {
				out = append(out, n)
			}
		case "declaration_expression", "declaration_pattern":
			if d := childOfKind(n, "parenthesized_variable_designation"); d != nil {
				out = append(out, designators(d, src)...)
			} else if name := designatedName(n, src); name != "" && name != "_" {
				out = append(out, n)
			}
		}
	})
	return out
}

func localDeclaration(stmt *sitter.Node) *sitter.Node {
	if decl := childOfKind(stmt, "variable_declaration"); decl != nil {
		return decl
	}
	if init := field(stmt, "initializer"); init != nil && init.Kind() == "variable_declaration" {
		return init
	}
	return nil
}

// localVariable binds one node returned by localDeclarations. The type is
// nil when it cannot be bound.
func (b *binder) localVariable(n *sitter.Node) (name string, t *semantic.Type, modifier string) {
	switch n.Kind() {
	case "variable_declarator":
		decl := n.Parent()
		stmt := decl.Parent()
		switch {
		case hasToken(stmt, "const") || hasModifier(stmt, b.src, "const"):
			modifier = "const"
		case stmt.Kind() == "local_declaration_statement" && hasToken(stmt, "using"):
			modifier = "using"
		case hasKind(field(decl, "type"), "ref_type"):
			modifier = "ref"
		}
		t = b.declaratorType(decl, n)
		if t == nil {
			t = b.createdType(initializer(n))
		}
		return nameOf(n, b.src), t, modifier
	case "foreach_statement", "for_each_statement":
		t = b.resolveTypeNode(field(n, "type"))
		if t == nil {
			t = b.elementType(b.typeOf(field(n, "right")))
		}
		return text(field(n, "left"), b.src), t, ""
	case "identifier":
		return text(n, b.src), b.deconstructedType(n), ""
	}
	return designatedName(n, b.src), b.designatedType(n), ""
}

// accessedMember records a field, property or event read or written through
// a member access.
func (b *binder) accessedMember(n *sitter.Node) (model.AccessedField, bool) {
	if isCallTarget(n) {
		return model.AccessedField{}, false
	}
	var recv operand
	if n.Kind() == "member_access_expression" {
		recvNode := field(n, "expression")
		if hasKind(recvNode, "base_expression", "base") {
			recv = operand{Type: b.baseOf(n)}
		} else {
			recv = b.bind(recvNode)
		}
	} else {
		recv = b.bind(conditionalReceiver(n))
	}
	if recv.Type == nil {
		return model.AccessedField{}, false
	}
	name := simpleName(field(n, "name"), b.src)
	ref, ok := b.m.FindMember(recv.Type, name, semantic.MemberField, semantic.MemberProperty, semantic.MemberEvent)
	if !ok {
		return model.AccessedField{}, false
	}
	return model.AccessedField{
		Name:                ref.Member.Name,
		DefinitionClassName: ref.Owner.String(),
		LocationClassName:   recv.Type.String(),
		Kind:                accessKind(n),
	}, true
}

// accessedName records a field, property or event used by its simple name.
func (b *binder) accessedName(id *sitter.Node) (model.AccessedField, bool) {
	if !isValueName(id) {
		return model.AccessedField{}, false
	}
	name := text(id, b.src)
	if _, ok := b.local(id, name); ok {
		return model.AccessedField{}, false
	}
	ref, location := b.unqualifiedMember(id, name)
	if ref == nil {
		return model.AccessedField{}, false
	}
	return model.AccessedField{
		Name:                ref.Member.Name,
		DefinitionClassName: ref.Owner.String(),
		LocationClassName:   location.String(),
		Kind:                accessKind(id),
	}, true
}

// nonValueParents hold identifiers that name declarations, types or labels.
var nonValueParents = map[string]bool{
	"qualified_name": true, "alias_qualified_name": true, "generic_name": true,
	"type_argument_list": true, "using_directive": true, "name_colon": true,
	"name_equals": true, "labeled_statement": true, "goto_statement": true,
	"attribute": true, "type_parameter": true, "type_parameter_constraints_clause": true,
	"nullable_type": true, "array_type": true, "pointer_type": true, "ref_type": true,
	"tuple_element": true, "tuple_pattern": true, "explicit_interface_specifier": true, "typeof_expression": true,
	"catch_declaration": true, "declaration_pattern": true, "declaration_expression": true,
	"base_list": true, "single_variable_designation": true, "parenthesized_variable_designation": true,
	"implicit_parameter": true, "parameter": true, "parameter_list": true, "type_pattern": true,
}

// isValueName reports whether id is used as a value rather than declaring
// something or naming a type.
func isValueName(id *sitter.Node) bool {
	p := id.Parent()
	if p == nil || nonValueParents[p.Kind()] || hasKind(p, typeDeclKinds...) || hasKind(p, namespaceKinds...) {
		return false
	}
	if p.Kind() == "assignment_expression" {
		return true
	}
	for _, f := range []string{"name", "type", "function", "parameters"} {
		if sameNode(field(p, f), id) {
			return false
		}
	}
	switch p.Kind() {
	case "foreach_statement", "for_each_statement":
		return !sameNode(field(p, "left"), id)
	case "as_expression", "is_expression":
		return !sameNode(field(p, "right"), id)
	}
	return true
}

// isCallTarget reports whether n is the method name of an invocation.
func isCallTarget(n *sitter.Node) bool {
	p := n.Parent()
	return p != nil && p.Kind() == "invocation_expression" && sameNode(field(p, "function"), n)
}

// accessKind is Setter for assignment targets, increments and out or ref
// arguments.
func accessKind(n *sitter.Node) model.AccessKind {
	p := n.Parent()
	for p != nil && p.Kind() == "parenthesized_expression" {
		n, p = p, p.Parent()
	}
	if p == nil {
		return model.AccessGetter
	}
	switch p.Kind() {
	case "assignment_expression":
		if sameNode(field(p, "left"), n) {
			return model.AccessSetter
		}
	case "prefix_unary_expression", "postfix_unary_expression":
		if hasToken(p, "++") || hasToken(p, "--") {
			return model.AccessSetter
		}
	case "argument":
		if hasToken(p, "out") || hasToken(p, "ref") {
			return model.AccessSetter
		}
	}
	return model.AccessGetter
}
