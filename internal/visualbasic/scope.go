package visualbasic

import (
	"strings"

	"github.com/standardbeagle/csfacts/internal/semantic"
)

var (
	classKinds    = []string{KindClass, KindModule, KindStructure, KindInterface}
	typeDeclKinds = []string{KindClass, KindModule, KindStructure, KindInterface, KindEnum, KindDelegate}

	// memberKinds declare members of a class-like type.
	memberKinds = []string{KindField, KindProperty, KindEvent, KindSub, KindFunction, KindOperator}

	// functionKinds own parameters and an executable body.
	functionKinds = []string{KindSub, KindFunction, KindOperator, KindAccessor, KindLambda}
)

func isFunctionKind(kind string) bool {
	for _, k := range functionKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// typeDecl is the position of a type declaration in its file.
type typeDecl struct {
	node       *Node
	Namespace  string
	Containing *typeDecl
	Name       string
	TypeParams []string
}

func describeType(n *Node) *typeDecl {
	td := &typeDecl{
		node:       n,
		Namespace:  namespaceOf(n),
		Name:       n.Name,
		TypeParams: typeParameterNames(n),
	}
	if outer := ancestor(n, typeDeclKinds...); outer != nil {
		td.Containing = describeType(outer)
	}
	return td
}

// FullName is the qualified name without type arguments, as the semantic
// model keys it.
func (td *typeDecl) FullName() string {
	if td.Containing != nil {
		return td.Containing.FullName() + "." + td.Name
	}
	return join(td.Namespace, td.Name)
}

// Display is the qualified name with type parameters on every segment.
func (td *typeDecl) Display() string {
	name := td.Name
	if len(td.TypeParams) > 0 {
		name += "<" + strings.Join(td.TypeParams, ", ") + ">"
	}
	if td.Containing != nil {
		return td.Containing.Display() + "." + name
	}
	return join(td.Namespace, name)
}

// AllTypeParams lists the type parameters visible inside the declaration,
// innermost first.
func (td *typeDecl) AllTypeParams() []string {
	var out []string
	for t := td; t != nil; t = t.Containing {
		out = append(out, t.TypeParams...)
	}
	return out
}

func join(ns, name string) string {
	if ns == "" {
		return name
	}
	return ns + "." + name
}

// namespaceOf joins the enclosing Namespace blocks of n.
func namespaceOf(n *Node) string {
	var parts []string
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Kind == KindNamespace {
			parts = append([]string{p.Name}, parts...)
		}
	}
	return strings.Join(parts, ".")
}

// importsOf returns the Imports statements of the file holding n. VB only
// allows them at file level.
func importsOf(n *Node) []semantic.Import {
	root := n
	for root.Parent != nil {
		root = root.Parent
	}
	var out []semantic.Import
	for _, c := range root.Children {
		if c.Kind != KindImports {
			continue
		}
		for _, clause := range c.Children {
			out = append(out, semantic.Import{Name: clause.Name, Alias: clause.alias})
		}
	}
	return out
}

func typeParameterNames(n *Node) []string {
	var out []string
	for _, tp := range n.typeParams {
		out = append(out, tp.Name)
	}
	return out
}

// enclosingType returns the declaration of the type containing n.
func enclosingType(n *Node) *typeDecl {
	if t := ancestor(n, typeDeclKinds...); t != nil {
		return describeType(t)
	}
	return nil
}

// scopeAt builds the binding scope for names written at n.
func scopeAt(m *semantic.Model, n *Node) *semantic.Scope {
	s := &semantic.Scope{Namespace: namespaceOf(n), Imports: importsOf(n)}
	var params []string
	for p := n; p != nil; p = p.Parent {
		if hasKind(p, KindSub, KindFunction, KindDelegate) {
			params = append(params, typeParameterNames(p)...)
		}
	}
	if td := enclosingType(n); td != nil {
		if sym, ok := m.LookupType(td.FullName(), len(td.TypeParams)); ok {
			s = s.WithType(sym)
		}
		params = append(params, td.AllTypeParams()...)
	}
	s.TypeParameters = params
	return s
}

// declaringFunction returns the member whose body holds n: the nearest
// Sub, Function, Operator, accessor or auto-property.
func declaringFunction(n *Node) *Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if hasKind(p, KindSub, KindFunction, KindOperator, KindAccessor) {
			return p
		}
		if hasKind(p, typeDeclKinds...) {
			return nil
		}
	}
	return nil
}
