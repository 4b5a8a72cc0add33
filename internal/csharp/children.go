package csharp

import (
	"github.com/standardbeagle/csfacts/internal/model"
	"github.com/standardbeagle/csfacts/internal/visitor"
)

// Children functions locate the syntax each setter builds models from.

// memberChildren returns the members of a class body with one of kinds.
func memberChildren(kinds ...string) func(*visitor.Context, Node) []Node {
	return func(_ *visitor.Context, n Node) []Node {
		return childrenOfKind(classBody(n), kinds...)
	}
}

// typeDeclarationChildren returns every type declared in the file, nested
// ones directly after their container.
func typeDeclarationChildren(_ *visitor.Context, root Node) []Node {
	var out []Node
	walk(root, func(n Node) bool {
		if hasKind(n, typeDeclKinds...) {
			out = append(out, n)
			return true
		}
		return !hasKind(n, memberKinds...)
	})
	return out
}

// importChildren returns the using directives of the file in source order,
// namespace-level ones included.
func importChildren(_ *visitor.Context, root Node) []Node {
	var out []Node
	walk(root, func(n Node) bool {
		if n.Kind() == "using_directive" {
			out = append(out, n)
			return false
		}
		return n.Kind() == "compilation_unit" || hasKind(n, namespaceKinds...) || n.Kind() == "declaration_list"
	})
	return out
}

// fieldChildren returns one declarator per declared field or field-like
// event.
func fieldChildren(_ *visitor.Context, n Node) []Node {
	var out []Node
	for _, decl := range childrenOfKind(classBody(n), "field_declaration", "event_field_declaration") {
		out = append(out, childrenOfKind(localDeclaration(decl), "variable_declarator")...)
	}
	return out
}

// accessorChildren returns the accessors of a property, indexer or event.
// An expression-bodied property has its arrow clause as its only getter.
func accessorChildren(_ *visitor.Context, n Node) []Node {
	return accessorNodes(n)
}

func accessorNodes(n Node) []Node {
	list := field(n, "accessors")
	if list == nil {
		list = childOfKind(n, "accessor_list")
	}
	if list != nil {
		return childrenOfKind(list, "accessor_declaration")
	}
	if arrow := childOfKind(n, "arrow_expression_clause"); arrow != nil {
		return []Node{arrow}
	}
	return nil
}

func enumLabelChildren(_ *visitor.Context, n Node) []Node {
	return enumMembers(n)
}

// attributeChildren returns the attributes applied to the declaration
// itself. Sections targeting the return value are left out.
func attributeChildren(ctx *visitor.Context, n Node) []Node {
	return attributeNodes(n, ctx.Source, func(target string) bool { return target != model.TargetReturn })
}

// returnAttributeChildren returns the attributes of return-targeted
// sections.
func returnAttributeChildren(ctx *visitor.Context, n Node) []Node {
	return attributeNodes(n, ctx.Source, func(target string) bool { return target == model.TargetReturn })
}

func attributeNodes(n Node, src []byte, keep func(target string) bool) []Node {
	host := n
	if n.Kind() == "variable_declarator" {
		host = n.Parent().Parent()
	}
	var out []Node
	for _, list := range attributeLists(host) {
		if keep(listTarget(list, src)) {
			out = append(out, childrenOfKind(list, "attribute")...)
		}
	}
	return out
}

func parameterChildren(_ *visitor.Context, n Node) []Node {
	return parameterNodes(parameterList(n))
}

// parameterAttributeChildren leaves out sections a record parameter passes
// on to its generated property or backing field.
func parameterAttributeChildren(ctx *visitor.Context, n Node) []Node {
	return attributeNodes(n, ctx.Source, func(target string) bool {
		return target != model.TargetReturn && target != model.TargetProperty && target != model.TargetField
	})
}

// primaryConstructorChildren yields the parameter list written after a
// type's name, which declares a constructor.
func primaryConstructorChildren(_ *visitor.Context, n Node) []Node {
	if list := childOfKind(n, "parameter_list"); list != nil {
		return []Node{list}
	}
	return nil
}

// positionalPropertyChildren returns the primary constructor parameters of a
// record that become properties. A property or field declared with the same
// name takes the parameter's place.
func positionalPropertyChildren(ctx *visitor.Context, n Node) []Node {
	if !hasKind(n, "record_declaration", "record_struct_declaration") {
		return nil
	}
	declared := make(map[string]bool)
	for _, m := range childrenOfKind(classBody(n), "property_declaration") {
		declared[nameOf(m, ctx.Source)] = true
	}
	for _, vd := range fieldChildren(ctx, n) {
		declared[nameOf(vd, ctx.Source)] = true
	}
	var out []Node
	for _, p := range parameterNodes(childOfKind(n, "parameter_list")) {
		if !declared[parameterName(p, ctx.Source)] {
			out = append(out, p)
		}
	}
	return out
}

// propertyAttributeChildren returns the property-targeted sections of a
// record parameter.
func propertyAttributeChildren(ctx *visitor.Context, n Node) []Node {
	return attributeNodes(n, ctx.Source, func(target string) bool { return target == model.TargetProperty })
}

func typeParameterChildren(_ *visitor.Context, n Node) []Node {
	list := field(n, "type_parameters")
	if list == nil {
		list = childOfKind(n, "type_parameter_list")
	}
	return childrenOfKind(list, "type_parameter")
}

// returnChildren yields the declaration itself when it has a return type.
func returnChildren(_ *visitor.Context, n Node) []Node {
	if returnTypeNode(n) == nil {
		return nil
	}
	return []Node{n}
}

// localFunctionChildren returns the local functions declared directly in
// the body of n. Nested ones belong to their enclosing local function.
func localFunctionChildren(_ *visitor.Context, n Node) []Node {
	body := bodyOf(n)
	if body == nil {
		return nil
	}
	var out []Node
	for i := uint(0); i < body.ChildCount(); i++ {
		walk(body.Child(i), func(c Node) bool {
			if c.Kind() == "local_function_statement" {
				out = append(out, c)
				return false
			}
			return !hasKind(c, typeDeclKinds...)
		})
	}
	return out
}

func localChildren(ctx *visitor.Context, n Node) []Node {
	return localDeclarations(n, ctx.Source)
}
