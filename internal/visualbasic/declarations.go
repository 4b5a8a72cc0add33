package visualbasic

import (
	"strings"

	"github.com/standardbeagle/csfacts/internal/model"
	"github.com/standardbeagle/csfacts/internal/semantic"
)

// voidType is the return type recorded for Subs.
const voidType = "System.Void"

// CollectDeclarations gathers the namespaces, types and member signatures
// declared in t. Adding the result of every file of a project to one
// semantic.Compilation gives cross-file resolution.
func CollectDeclarations(t *Tree) *semantic.Declarations {
	c := &collector{
		decls:   &semantic.Declarations{Path: t.Path},
		symbols: make(map[*Node]*semantic.TypeSymbol),
	}
	walk(t.Root(), c.visit)
	return c.decls
}

type collector struct {
	decls   *semantic.Declarations
	symbols map[*Node]*semantic.TypeSymbol
}

func (c *collector) visit(n *Node) bool {
	switch {
	case n.Kind == KindNamespace:
		c.decls.Namespaces = append(c.decls.Namespaces, join(namespaceOf(n), n.Name))
	case hasKind(n, typeDeclKinds...):
		c.declareType(n)
	case hasKind(n, memberKinds...), hasKind(n, KindImports, KindOption):
		return false
	}
	return true
}

func (c *collector) declareType(n *Node) {
	td := describeType(n)
	sym := &semantic.TypeSymbol{
		FullName:       td.FullName(),
		Name:           td.Name,
		Namespace:      td.Namespace,
		Kind:           semanticKind(n),
		TypeParameters: td.TypeParams,
		Bases:          declaredBaseTexts(n),
		Static:         n.Kind == KindModule,
		FromSource:     true,
		Path:           c.decls.Path,
		Scope:          &semantic.Scope{Namespace: td.Namespace, Imports: importsOf(n)},
	}
	if td.Containing != nil {
		sym.Containing = c.symbols[td.Containing.node]
	}
	c.symbols[n] = sym

	switch n.Kind {
	case KindEnum:
		for _, label := range n.Children {
			if label.Kind == KindEnumMember {
				sym.AddMember(&semantic.MemberSymbol{Name: label.Name, Kind: semantic.MemberField, Type: sym.FullName, Static: true})
			}
		}
	case KindDelegate:
		sym.AddMember(&semantic.MemberSymbol{
			Name:       "Invoke",
			Kind:       semantic.MemberMethod,
			Type:       returnTypeText(n),
			Parameters: parameters(n.params),
		})
	default:
		c.declareMembers(n, sym)
	}
	c.decls.Types = append(c.decls.Types, sym)
}

func (c *collector) declareMembers(n *Node, sym *semantic.TypeSymbol) {
	module := n.Kind == KindModule
	hasConstructor := false
	for _, m := range n.Children {
		static := module || m.hasModifier("Shared") || m.hasModifier("Const")
		switch m.Kind {
		case KindField:
			kind := semantic.MemberField
			if m.event {
				kind = semantic.MemberEvent
			}
			for _, d := range m.Children {
				written := declaratorTypeText(d)
				if m.event {
					written = c.eventType(m, sym)
				}
				sym.AddMember(&semantic.MemberSymbol{Name: d.Name, Kind: kind, Type: written, Static: static})
			}
		case KindProperty:
			params := parameters(m.params)
			sym.AddMember(&semantic.MemberSymbol{Name: m.Name, Kind: semantic.MemberProperty, Type: valueTypeText(m), Parameters: params, Static: static})
			if m.hasModifier("Default") {
				sym.AddMember(&semantic.MemberSymbol{Name: "this", Kind: semantic.MemberProperty, Type: valueTypeText(m), Parameters: params})
			}
		case KindEvent:
			sym.AddMember(&semantic.MemberSymbol{Name: m.Name, Kind: semantic.MemberEvent, Type: c.eventType(m, sym), Static: static})
		case KindSub, KindFunction:
			if isConstructor(m) {
				if m.hasModifier("Shared") || module {
					continue
				}
				hasConstructor = true
				sym.AddMember(&semantic.MemberSymbol{
					Name:       sym.Name,
					Kind:       semantic.MemberConstructor,
					Type:       sym.FullName,
					Parameters: parameters(m.params),
				})
				continue
			}
			params := parameters(m.params)
			sym.AddMember(&semantic.MemberSymbol{
				Name:           m.Name,
				Kind:           semantic.MemberMethod,
				Type:           returnTypeText(m),
				Parameters:     params,
				TypeParameters: typeParameterNames(m),
				Static:         static,
				Extension:      module && len(params) > 0 && isExtension(m),
			})
		}
	}

	if sym.Kind != model.KindInterface && (!hasConstructor || sym.Kind == model.KindStruct) && !sym.Static {
		sym.AddMember(&semantic.MemberSymbol{Name: sym.Name, Kind: semantic.MemberConstructor, Type: sym.FullName})
	}
}

// eventType is the delegate type of an event. An event declared with a
// parameter list gets an implicit nested delegate named NameEventHandler.
func (c *collector) eventType(m *Node, owner *semantic.TypeSymbol) string {
	if m.typ != "" {
		return m.typ
	}
	name := m.Name + "EventHandler"
	handler := &semantic.TypeSymbol{
		FullName:   owner.FullName + "." + name,
		Name:       name,
		Namespace:  owner.Namespace,
		Kind:       model.KindDelegate,
		Containing: owner,
		FromSource: true,
		Path:       c.decls.Path,
		Scope:      owner.Scope,
	}
	handler.AddMember(&semantic.MemberSymbol{Name: "Invoke", Kind: semantic.MemberMethod, Type: voidType, Parameters: parameters(m.params)})
	c.decls.Types = append(c.decls.Types, handler)
	return name
}

func parameters(params []*Node) []semantic.Parameter {
	var out []semantic.Parameter
	for _, p := range params {
		sp := semantic.Parameter{Name: p.Name, Type: p.typ, Optional: p.hasModifier("Optional")}
		if sp.Type == "" {
			sp.Type = "Object"
		}
		if p.hasModifier("ParamArray") {
			sp.Params = true
		}
		if p.hasModifier("ByRef") {
			sp.Modifier = "ref"
		}
		out = append(out, sp)
	}
	return out
}

// isConstructor reports whether m is a Sub New.
func isConstructor(m *Node) bool {
	return m.Kind == KindSub && strings.EqualFold(m.Name, "New")
}

// isExtension reports whether m carries the Extension attribute.
func isExtension(m *Node) bool {
	for _, a := range m.attributes {
		name := a.Name
		if i := strings.LastIndexByte(name, '.'); i >= 0 {
			name = name[i+1:]
		}
		if strings.EqualFold(name, "Extension") || strings.EqualFold(name, "ExtensionAttribute") {
			return true
		}
	}
	return false
}

// returnTypeText is the written return type of a Function, Operator or
// delegate. Subs return System.Void; a Function without As returns Object.
func returnTypeText(n *Node) string {
	if isSub(n) {
		return voidType
	}
	if n.typ == "" {
		return "Object"
	}
	return n.typ
}

// isSub reports whether n is a Sub or a Sub delegate.
func isSub(n *Node) bool {
	switch n.Kind {
	case KindSub:
		return true
	case KindDelegate:
		return len(n.Tokens) > 1 && n.Tokens[1].is("Sub")
	case KindLambda:
		return strings.EqualFold(n.Name, "Sub")
	}
	return false
}

// valueTypeText is the written type of a property; Object when omitted.
func valueTypeText(n *Node) string {
	if n.typ == "" {
		return "Object"
	}
	return n.typ
}

// declaratorTypeText is the written type of a field declarator. A
// declarator without As takes the type of a literal initializer, or Object.
func declaratorTypeText(d *Node) string {
	if d.typ != "" {
		return d.typ
	}
	if e := parseExpr(d.value); e != nil && e.Kind == exprLiteral && e.Op != "Nothing" {
		return e.Op + d.rank
	}
	return "Object" + d.rank
}

// semanticKind is the type kind the semantic model binds with.
func semanticKind(n *Node) string {
	switch n.Kind {
	case KindInterface:
		return model.KindInterface
	case KindStructure:
		return model.KindStruct
	case KindEnum:
		return model.KindEnum
	case KindDelegate:
		return model.KindDelegate
	case KindModule:
		return model.KindModule
	}
	return model.KindClass
}

// declaredBaseTexts returns the types named by the Inherits and then the
// Implements statements of a type.
func declaredBaseTexts(n *Node) []string {
	var out []string
	for _, kind := range []string{KindInherits, KindImplements} {
		for _, c := range n.Children {
			if c.Kind == kind {
				out = append(out, c.bases...)
			}
		}
	}
	return out
}
