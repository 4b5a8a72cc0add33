package visualbasic

import (
	"strings"

	"github.com/standardbeagle/csfacts/internal/visitor"
)

// Children functions locate the syntax each setter builds models from.

// typeDeclarationChildren returns every type declared in the file, nested
// ones directly after their container.
func typeDeclarationChildren(_ *visitor.Context, root *Node) []*Node {
	var out []*Node
	walk(root, func(n *Node) bool {
		if hasKind(n, typeDeclKinds...) {
			out = append(out, n)
			return true
		}
		return !hasKind(n, memberKinds...) && !hasKind(n, KindImports, KindOption)
	})
	return out
}

// importChildren returns the clauses of every Imports statement in source
// order.
func importChildren(_ *visitor.Context, root *Node) []*Node {
	var out []*Node
	for _, c := range root.Children {
		if c.Kind == KindImports {
			out = append(out, c.Children...)
		}
	}
	return out
}

// membersOf returns the direct children of a type that match.
func membersOf(n *Node, match func(*Node) bool) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if match(c) {
			out = append(out, c)
		}
	}
	return out
}

func methodChildren(_ *visitor.Context, n *Node) []*Node {
	return membersOf(n, func(c *Node) bool {
		return hasKind(c, KindSub, KindFunction, KindOperator) && !isConstructor(c) && !isFinalizer(c)
	})
}

func constructorChildren(_ *visitor.Context, n *Node) []*Node {
	return membersOf(n, isConstructor)
}

func finalizerChildren(_ *visitor.Context, n *Node) []*Node {
	return membersOf(n, isFinalizer)
}

// isFinalizer reports whether m overrides Object.Finalize.
func isFinalizer(m *Node) bool {
	return m.Kind == KindSub && strings.EqualFold(m.Name, "Finalize") && len(m.params) == 0 && m.hasModifier("Overrides")
}

// propertyChildren returns the properties and the events declared with
// accessors.
func propertyChildren(_ *visitor.Context, n *Node) []*Node {
	return membersOf(n, func(c *Node) bool { return hasKind(c, KindProperty, KindEvent) })
}

// fieldChildren returns one declarator per declared field or event
// declared without accessors.
func fieldChildren(_ *visitor.Context, n *Node) []*Node {
	var out []*Node
	for _, decl := range membersOf(n, func(c *Node) bool { return c.Kind == KindField }) {
		for _, d := range decl.Children {
			if d.Kind == KindDeclarator {
				out = append(out, d)
			}
		}
	}
	return out
}

func accessorChildren(_ *visitor.Context, n *Node) []*Node {
	return accessorNodes(n)
}

func accessorNodes(n *Node) []*Node {
	return membersOf(n, func(c *Node) bool { return c.Kind == KindAccessor })
}

func enumLabelChildren(_ *visitor.Context, n *Node) []*Node {
	return membersOf(n, func(c *Node) bool { return c.Kind == KindEnumMember })
}

// attributeChildren returns the attributes applied to the declaration
// itself. A declarator reports those of its field.
func attributeChildren(_ *visitor.Context, n *Node) []*Node {
	if n.Kind == KindDeclarator && n.Parent != nil && n.Parent.Kind == KindField {
		return n.Parent.attributes
	}
	return n.attributes
}

// returnAttributeChildren returns the attributes written after As.
func returnAttributeChildren(_ *visitor.Context, n *Node) []*Node {
	return n.returnAttrs
}

func parameterChildren(_ *visitor.Context, n *Node) []*Node {
	return n.params
}

func typeParameterChildren(_ *visitor.Context, n *Node) []*Node {
	return n.typeParams
}

// returnChildren yields the declaration itself when it returns a value or
// is a Sub.
func returnChildren(_ *visitor.Context, n *Node) []*Node {
	if hasKind(n, KindSub, KindFunction, KindOperator, KindDelegate) && !isConstructor(n) {
		return []*Node{n}
	}
	return nil
}

func localChildren(ctx *visitor.Context, n *Node) []*Node {
	return binderFor(ctx).localDeclarations(n)
}
