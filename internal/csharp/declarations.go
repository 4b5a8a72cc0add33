package csharp

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/csfacts/internal/model"
	"github.com/standardbeagle/csfacts/internal/semantic"
)

// CollectDeclarations gathers the namespaces, types and member signatures
// declared in t. Adding the result of every file of a project to one
// semantic.Compilation gives cross-file resolution.
func CollectDeclarations(t *Tree) *semantic.Declarations {
	c := &collector{
		src:     t.Source,
		decls:   &semantic.Declarations{Path: t.Path},
		symbols: make(map[uintptr]*semantic.TypeSymbol),
	}
	walk(t.Root(), c.visit)
	return c.decls
}

type collector struct {
	src     []byte
	decls   *semantic.Declarations
	symbols map[uintptr]*semantic.TypeSymbol
}

func (c *collector) visit(n *sitter.Node) bool {
	switch {
	case hasKind(n, namespaceKinds...):
		c.decls.Namespaces = append(c.decls.Namespaces, join(namespaceOf(n, c.src), namespaceName(n, c.src)))
	case hasKind(n, typeDeclKinds...):
		c.declareType(n)
	case hasKind(n, memberKinds...), hasKind(n, "global_statement", "using_directive"):
		return false
	}
	return true
}

func (c *collector) declareType(n *sitter.Node) {
	td := describeType(n, c.src)
	sym := &semantic.TypeSymbol{
		FullName:       td.FullName(),
		Name:           td.Name,
		Namespace:      td.Namespace,
		Kind:           semanticKind(n),
		TypeParameters: td.TypeParams,
		Bases:          declaredBaseTexts(n, c.src),
		Static:         hasModifier(n, c.src, "static"),
		FromSource:     true,
		Path:           c.decls.Path,
		Scope:          &semantic.Scope{Namespace: td.Namespace, Imports: importsOf(n, c.src)},
	}
	if td.Containing != nil {
		sym.Containing = c.symbols[td.Containing.node.Id()]
	}
	c.symbols[n.Id()] = sym

	switch n.Kind() {
	case "enum_declaration":
		for _, label := range enumMembers(n) {
			sym.AddMember(&semantic.MemberSymbol{Name: nameOf(label, c.src), Kind: semantic.MemberField, Type: sym.FullName, Static: true})
		}
	case "delegate_declaration":
		sym.AddMember(&semantic.MemberSymbol{
			Name:       "Invoke",
			Kind:       semantic.MemberMethod,
			Type:       typeText(returnTypeNode(n), c.src),
			Parameters: c.parameters(parameterList(n)),
		})
	default:
		c.declareMembers(n, sym)
	}
	c.decls.Types = append(c.decls.Types, sym)
}

func (c *collector) declareMembers(n *sitter.Node, sym *semantic.TypeSymbol) {
	hasConstructor := false
	if primary := childOfKind(n, "parameter_list"); primary != nil {
		params := c.parameters(primary)
		sym.AddMember(&semantic.MemberSymbol{Name: sym.Name, Kind: semantic.MemberConstructor, Type: sym.FullName, Parameters: params})
		hasConstructor = true
		if n.Kind() == "record_declaration" || n.Kind() == "record_struct_declaration" {
			for _, p := range params {
				sym.AddMember(&semantic.MemberSymbol{Name: p.Name, Kind: semantic.MemberProperty, Type: p.Type})
			}
		}
	}

	for _, m := range classMembers(n) {
		static := hasModifier(m, c.src, "static") || hasModifier(m, c.src, "const")
		switch m.Kind() {
		case "field_declaration", "event_field_declaration":
			kind := semantic.MemberField
			if m.Kind() == "event_field_declaration" {
				kind = semantic.MemberEvent
			}
			vd := childOfKind(m, "variable_declaration")
			written := typeText(field(vd, "type"), c.src)
			for _, v := range childrenOfKind(vd, "variable_declarator") {
				sym.AddMember(&semantic.MemberSymbol{Name: nameOf(v, c.src), Kind: kind, Type: written, Static: static})
			}
		case "property_declaration", "event_declaration":
			kind := semantic.MemberProperty
			if m.Kind() == "event_declaration" {
				kind = semantic.MemberEvent
			}
			sym.AddMember(&semantic.MemberSymbol{Name: nameOf(m, c.src), Kind: kind, Type: typeText(field(m, "type"), c.src), Static: static})
		case "indexer_declaration":
			sym.AddMember(&semantic.MemberSymbol{
				Name:       "this",
				Kind:       semantic.MemberProperty,
				Type:       typeText(field(m, "type"), c.src),
				Parameters: c.parameters(parameterList(m)),
			})
		case "method_declaration":
			params := c.parameters(parameterList(m))
			sym.AddMember(&semantic.MemberSymbol{
				Name:           nameOf(m, c.src),
				Kind:           semantic.MemberMethod,
				Type:           typeText(returnTypeNode(m), c.src),
				Parameters:     params,
				TypeParameters: typeParameterNames(m, c.src),
				Static:         static,
				Extension:      static && len(params) > 0 && params[0].Modifier == "this",
			})
		case "constructor_declaration":
			if static {
				continue
			}
			hasConstructor = true
			sym.AddMember(&semantic.MemberSymbol{
				Name:       sym.Name,
				Kind:       semantic.MemberConstructor,
				Type:       sym.FullName,
				Parameters: c.parameters(parameterList(m)),
			})
		}
	}

	if sym.Kind != model.KindInterface && (!hasConstructor || sym.Kind == model.KindStruct) && !sym.Static {
		sym.AddMember(&semantic.MemberSymbol{Name: sym.Name, Kind: semantic.MemberConstructor, Type: sym.FullName})
	}
}

func (c *collector) parameters(list *sitter.Node) []semantic.Parameter {
	var out []semantic.Parameter
	for _, p := range parameterNodes(list) {
		mods := parameterModifiers(p, c.src)
		sp := semantic.Parameter{
			Name:     parameterName(p, c.src),
			Type:     typeText(parameterType(p), c.src),
			Optional: parameterDefault(p, c.src) != "",
		}
		for _, mod := range mods {
			switch mod {
			case "params":
				sp.Params = true
			case "ref", "out", "in", "this":
				sp.Modifier = mod
			}
		}
		out = append(out, sp)
	}
	return out
}

// semanticKind is the type kind the semantic model binds with. Record
// structs are value types.
func semanticKind(n *sitter.Node) string {
	switch n.Kind() {
	case "interface_declaration":
		return model.KindInterface
	case "struct_declaration", "record_struct_declaration":
		return model.KindStruct
	case "record_declaration":
		if hasToken(n, "struct") {
			return model.KindStruct
		}
		return model.KindRecord
	case "enum_declaration":
		return model.KindEnum
	case "delegate_declaration":
		return model.KindDelegate
	}
	return model.KindClass
}

// classType is the kind recorded on the fact model.
func classType(n *sitter.Node) string {
	switch n.Kind() {
	case "record_declaration", "record_struct_declaration":
		return model.KindRecord
	}
	return semanticKind(n)
}

// classBody returns the declaration_list of a class-like declaration.
func classBody(n *sitter.Node) *sitter.Node {
	if body := field(n, "body"); body != nil && body.Kind() == "declaration_list" {
		return body
	}
	return childOfKind(n, "declaration_list")
}

func classMembers(n *sitter.Node) []*sitter.Node {
	return childrenOfKind(classBody(n), memberKinds...)
}

func enumMembers(n *sitter.Node) []*sitter.Node {
	body := field(n, "body")
	if body == nil {
		body = childOfKind(n, "enum_member_declaration_list")
	}
	return childrenOfKind(body, "enum_member_declaration")
}

// declaredBaseTexts returns the written base types of a declaration. The
// base list of an enum names its underlying type instead.
func declaredBaseTexts(n *sitter.Node, src []byte) []string {
	if n.Kind() == "enum_declaration" {
		return nil
	}
	return baseTypeTexts(n, src)
}

// baseTypeTexts returns the written entries of a base list.
func baseTypeTexts(n *sitter.Node, src []byte) []string {
	var out []string
	for _, b := range baseTypeNodes(n) {
		out = append(out, typeText(b, src))
	}
	return out
}

func baseTypeNodes(n *sitter.Node) []*sitter.Node {
	list := field(n, "bases")
	if list == nil {
		list = childOfKind(n, "base_list")
	}
	var out []*sitter.Node
	for _, b := range namedChildren(list) {
		switch b.Kind() {
		case "comment", "argument_list":
		case "primary_constructor_base_type":
			if t := field(b, "type"); t != nil {
				out = append(out, t)
			} else if nc := namedChildren(b); len(nc) > 0 {
				out = append(out, nc[0])
			}
		default:
			out = append(out, b)
		}
	}
	return out
}

func parameterList(n *sitter.Node) *sitter.Node {
	if hasKind(n, "parameter_list", "bracketed_parameter_list") {
		return n
	}
	if p := field(n, "parameters"); p != nil {
		return p
	}
	return childOfKind(n, "parameter_list", "bracketed_parameter_list")
}

// parameterNodes returns the parameters of list in source order. A params
// array has no node of its own: its "params" token stands for it, followed
// by the type and name siblings.
func parameterNodes(list *sitter.Node) []*sitter.Node {
	if list == nil {
		return nil
	}
	var out []*sitter.Node
	for i := uint(0); i < list.ChildCount(); i++ {
		c := list.Child(i)
		if c == nil {
			continue
		}
		if hasKind(c, "parameter", "parameter_array") || isParamsToken(c) {
			out = append(out, c)
		}
	}
	return out
}

func isParamsToken(n *sitter.Node) bool {
	return n != nil && !n.IsNamed() && n.Kind() == "params"
}

// parameterType returns the written type of a parameter.
func parameterType(p *sitter.Node) *sitter.Node {
	if isParamsToken(p) {
		return p.NextNamedSibling()
	}
	return field(p, "type")
}

// parameterName returns the name of a parameter.
func parameterName(p *sitter.Node, src []byte) string {
	if isParamsToken(p) {
		if t := p.NextNamedSibling(); t != nil {
			if id := t.NextNamedSibling(); id != nil && id.Kind() == "identifier" {
				return text(id, src)
			}
		}
		return ""
	}
	return nameOf(p, src)
}

// parameterModifiers returns ref, out, in, this, params and scoped in
// source order.
func parameterModifiers(p *sitter.Node, src []byte) []string {
	if isParamsToken(p) {
		return []string{"params"}
	}
	var out []string
	for i := uint(0); i < p.ChildCount(); i++ {
		c := p.Child(i)
		if c == nil {
			continue
		}
		switch c.Kind() {
		case "ref", "out", "in", "this", "params", "scoped", "readonly":
			if !c.IsNamed() {
				out = append(out, c.Kind())
			}
		case "parameter_modifier", "modifier":
			out = append(out, compact(text(c, src)))
		}
	}
	if p.Kind() == "parameter_array" && !containsString(out, "params") {
		out = append([]string{"params"}, out...)
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// parameterDefault returns the written default value of a parameter.
func parameterDefault(p *sitter.Node, src []byte) string {
	return compact(text(initializer(p), src))
}

// returnTypeNode returns the written return type of a method, delegate or
// local function.
func returnTypeNode(n *sitter.Node) *sitter.Node {
	if t := field(n, "returns"); t != nil {
		return t
	}
	return field(n, "type")
}
