package csharp

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/csfacts/internal/model"
	"github.com/standardbeagle/csfacts/internal/semantic"
)

// walkClass walks the declarations of a class without entering nested
// types, which report their own relations.
func walkClass(class *sitter.Node, visit func(*sitter.Node)) {
	for i := uint(0); i < class.ChildCount(); i++ {
		walk(class.Child(i), func(n *sitter.Node) bool {
			if hasKind(n, typeDeclKinds...) {
				return false
			}
			visit(n)
			return true
		})
	}
}

// thrownTypes tallies the types thrown anywhere in class.
func (b *binder) thrownTypes(class *sitter.Node) map[string]int {
	counts := make(map[string]int)
	walkClass(class, func(n *sitter.Node) {
		if !hasKind(n, "throw_statement", "throw_expression") {
			return
		}
		if t := b.thrown(n); t != nil {
			counts[t.String()]++
		}
	})
	return counts
}

// thrown binds the type of one throw. A rethrow takes the type caught by
// the enclosing catch clause.
func (b *binder) thrown(n *sitter.Node) *semantic.Type {
	if e := firstNamed(n); e != nil && e.Kind() != "comment" {
		if t := b.typeOf(e); t != nil {
			return t
		}
		if e.Kind() == "object_creation_expression" {
			return &semantic.Type{Unresolved: typeText(field(e, "type"), b.src)}
		}
		return nil
	}
	if catch := ancestor(n, []string{"catch_clause"}, memberKinds...); catch != nil {
		if decl := childOfKind(catch, "catch_declaration"); decl != nil {
			if t := b.resolveTypeNode(field(decl, "type")); t != nil {
				return t
			}
		}
	}
	return b.m.Named("System.Exception")
}

// createdTypes tallies the objects and arrays created anywhere in class.
func (b *binder) createdTypes(class *sitter.Node) map[string]int {
	counts := make(map[string]int)
	walkClass(class, func(n *sitter.Node) {
		var t *semantic.Type
		switch n.Kind() {
		case "object_creation_expression", "array_creation_expression":
			t = b.resolveTypeNode(field(n, "type"))
		case "implicit_object_creation_expression", "implicit_array_creation_expression":
			t = b.typeOf(n)
		default:
			return
		}
		if t != nil {
			counts[t.String()]++
		}
	})
	return counts
}

func relationMetric(name string, counts map[string]int) model.Metric {
	return model.Metric{Name: name, ValueType: model.RelationValueType, Value: counts}
}
