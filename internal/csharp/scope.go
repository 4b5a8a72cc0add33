package csharp

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/csfacts/internal/semantic"
)

var (
	classKinds = []string{
		"class_declaration",
		"interface_declaration",
		"struct_declaration",
		"record_declaration",
		"record_struct_declaration",
	}
	typeDeclKinds  = append(append([]string{}, classKinds...), "enum_declaration", "delegate_declaration")
	namespaceKinds = []string{"namespace_declaration", "file_scoped_namespace_declaration"}

	// memberKinds declare members of a class-like type.
	memberKinds = []string{
		"field_declaration",
		"event_field_declaration",
		"property_declaration",
		"event_declaration",
		"indexer_declaration",
		"method_declaration",
		"constructor_declaration",
		"destructor_declaration",
		"operator_declaration",
		"conversion_operator_declaration",
	}

	// functionKinds own parameters and an executable body.
	functionKinds = []string{
		"method_declaration",
		"constructor_declaration",
		"destructor_declaration",
		"operator_declaration",
		"conversion_operator_declaration",
		"local_function_statement",
		"accessor_declaration",
		"lambda_expression",
		"anonymous_method_expression",
	}
)

// typeDecl is the position of a type declaration in its file.
type typeDecl struct {
	node       *sitter.Node
	Namespace  string
	Containing *typeDecl
	Name       string
	TypeParams []string
}

// describeType names the type declared by n.
func describeType(n *sitter.Node, src []byte) *typeDecl {
	td := &typeDecl{
		node:       n,
		Namespace:  namespaceOf(n, src),
		Name:       nameOf(n, src),
		TypeParams: typeParameterNames(n, src),
	}
	if outer := ancestor(n, typeDeclKinds); outer != nil {
		td.Containing = describeType(outer, src)
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

// namespaceOf returns the namespace that encloses n.
func namespaceOf(n *sitter.Node, src []byte) string {
	var parts []string
	var root *sitter.Node
	for p := n.Parent(); p != nil; p = p.Parent() {
		if hasKind(p, namespaceKinds...) {
			parts = append([]string{namespaceName(p, src)}, parts...)
		}
		root = p
	}
	if root != nil {
		if fs := childOfKind(root, "file_scoped_namespace_declaration"); fs != nil && fs.StartByte() <= n.StartByte() && !contains(fs, n) {
			parts = append([]string{namespaceName(fs, src)}, parts...)
		}
	}
	return strings.Join(parts, ".")
}

func namespaceName(n *sitter.Node, src []byte) string {
	name := field(n, "name")
	if name == nil {
		name = childOfKind(n, "qualified_name", "identifier")
	}
	return typeText(name, src)
}

func contains(outer, inner *sitter.Node) bool {
	return outer.StartByte() <= inner.StartByte() && inner.EndByte() <= outer.EndByte()
}

// importsOf returns the using directives in effect at n: those of the
// compilation unit, then those of each enclosing namespace from the outside
// in.
func importsOf(n *sitter.Node, src []byte) []semantic.Import {
	var scopes []*sitter.Node
	for p := n.Parent(); p != nil; p = p.Parent() {
		if hasKind(p, namespaceKinds...) || p.Kind() == "compilation_unit" {
			scopes = append([]*sitter.Node{p}, scopes...)
		}
	}
	var out []semantic.Import
	for _, s := range scopes {
		for _, u := range usingDirectives(s) {
			out = append(out, parseUsing(u, src).semantic())
		}
	}
	return out
}

// usingDirectives lists the using directives declared directly in a
// compilation unit or namespace.
func usingDirectives(n *sitter.Node) []*sitter.Node {
	out := childrenOfKind(n, "using_directive")
	if body := field(n, "body"); body != nil {
		out = append(out, childrenOfKind(body, "using_directive")...)
	} else if body := childOfKind(n, "declaration_list"); body != nil {
		out = append(out, childrenOfKind(body, "using_directive")...)
	}
	if n.Kind() == "compilation_unit" {
		if fs := childOfKind(n, "file_scoped_namespace_declaration"); fs != nil {
			out = append(out, childrenOfKind(fs, "using_directive")...)
		}
	}
	return out
}

// using is one parsed using directive.
type using struct {
	Name   string
	Alias  string
	Static bool
	Global bool
}

func (u using) semantic() semantic.Import {
	return semantic.Import{Name: u.Name, Alias: u.Alias, Static: u.Static}
}

func parseUsing(n *sitter.Node, src []byte) using {
	u := using{Static: hasToken(n, "static"), Global: hasToken(n, "global")}
	var target *sitter.Node
	for _, c := range namedChildren(n) {
		switch c.Kind() {
		case "name_equals":
			if id := childOfKind(c, "identifier"); id != nil {
				u.Alias = text(id, src)
			}
		case "comment":
		default:
			target = c
		}
	}
	if u.Alias == "" && hasToken(n, "=") {
		if name := field(n, "name"); name != nil && !sameNode(name, target) {
			u.Alias = text(name, src)
		}
	}
	u.Name = strings.TrimPrefix(typeText(target, src), "global::")
	return u
}

// typeParameterNames returns the declared type parameters of a type,
// method, delegate or local function.
func typeParameterNames(n *sitter.Node, src []byte) []string {
	list := field(n, "type_parameters")
	if list == nil {
		list = childOfKind(n, "type_parameter_list")
	}
	var out []string
	for _, tp := range childrenOfKind(list, "type_parameter") {
		out = append(out, nameOf(tp, src))
	}
	return out
}

// enclosingType returns the declaration of the type containing n.
func enclosingType(n *sitter.Node, src []byte) *typeDecl {
	if t := ancestor(n, typeDeclKinds); t != nil {
		return describeType(t, src)
	}
	return nil
}

// scopeAt builds the binding scope for names written at n.
func scopeAt(m *semantic.Model, n *sitter.Node, src []byte) *semantic.Scope {
	s := &semantic.Scope{Namespace: namespaceOf(n, src), Imports: importsOf(n, src)}
	var params []string
	for p := n.Parent(); p != nil; p = p.Parent() {
		if hasKind(p, "method_declaration", "local_function_statement", "delegate_declaration") {
			params = append(params, typeParameterNames(p, src)...)
		}
	}
	if td := enclosingType(n, src); td != nil {
		if sym, ok := m.LookupType(td.FullName(), len(td.TypeParams)); ok {
			s = s.WithType(sym)
		}
		params = append(params, td.AllTypeParams()...)
	}
	s.TypeParameters = params
	return s
}
