package csharp

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/csfacts/internal/model"
	"github.com/standardbeagle/csfacts/internal/semantic"
)

// call is a bound invocation.
type call struct {
	Name string
	Ref  *semantic.MemberRef
	// Location is the type the method was looked up on.
	Location     *semantic.Type
	LocationName string
	TypeArgs     []*semantic.Type
	// Local is the declaration of a called local function.
	Local  *sitter.Node
	Args   []*semantic.Type
	Return *semantic.Type
}

// bindCall binds an invocation_expression. The second result is false
// when the target method could not be found; the call still carries the
// name and the argument types.
func (b *binder) bindCall(inv *sitter.Node) (*call, bool) {
	fn := field(inv, "function")
	if fn == nil {
		fn = firstNamed(inv)
	}
	c := &call{}
	for _, arg := range argumentExprs(field(inv, "arguments")) {
		c.Args = append(c.Args, b.typeOf(arg))
	}
	argc := len(c.Args)

	switch fn.Kind() {
	case "identifier", "generic_name":
		c.Name = simpleName(fn, b.src)
		c.TypeArgs = b.typeArguments(fn)
		if c.Name == "nameof" && fn.Kind() == "identifier" {
			if _, ok := b.local(inv, "nameof"); !ok {
				return c, false
			}
		}
		return c, b.bindUnqualified(inv, c, argc)
	case "member_access_expression", "member_binding_expression":
		name := field(fn, "name")
		c.Name = simpleName(name, b.src)
		c.TypeArgs = b.typeArguments(name)
		var recvNode *sitter.Node
		if fn.Kind() == "member_access_expression" {
			recvNode = field(fn, "expression")
		} else {
			recvNode = conditionalReceiver(fn)
		}
		return c, b.bindQualified(inv, c, recvNode, argc)
	}

	// Invocation of a delegate-valued expression.
	c.Name = "Invoke"
	t := b.typeOf(fn)
	if t == nil {
		c.LocationName = typeText(fn, b.src)
		return c, false
	}
	c.Location = t
	if ref, ok := b.m.FindMethod(t, "Invoke", argc); ok {
		c.Ref = ref
		c.Return = b.m.MemberType(ref)
		return c, true
	}
	return c, false
}

func (b *binder) bindUnqualified(inv *sitter.Node, c *call, argc int) bool {
	if fn := b.localFunction(inv, c.Name); fn != nil {
		c.Local = fn
		c.Location = b.self(inv)
		c.Return = b.resolveTypeNode(returnTypeNode(fn))
		return true
	}
	if t, ok := b.local(inv, c.Name); ok {
		return b.bindInvoke(c, t, argc)
	}

	self := b.self(inv)
	c.Location = self
	for td := enclosingType(inv, b.src); td != nil; td = td.Containing {
		if ref, ok := b.m.FindMethod(b.declType(td), c.Name, argc); ok {
			return b.finish(c, ref)
		}
	}
	for _, t := range b.staticImports(inv) {
		if ref, ok := b.m.FindMethod(t, c.Name, argc); ok {
			c.Location = t
			return b.finish(c, ref)
		}
	}
	if ref, _ := b.unqualifiedMember(inv, c.Name); ref != nil {
		return b.bindInvoke(c, b.m.MemberType(ref), argc)
	}
	if self != nil {
		c.LocationName = self.String()
	}
	return false
}

func (b *binder) bindQualified(inv *sitter.Node, c *call, recvNode *sitter.Node, argc int) bool {
	var recv operand
	if hasKind(recvNode, "base_expression", "base") {
		recv = operand{Type: b.baseOf(inv)}
	} else {
		recv = b.bind(recvNode)
	}
	if recv.Type == nil {
		c.LocationName = typeText(recvNode, b.src)
		return false
	}
	c.Location = recv.Type
	if ref, ok := b.m.FindMethod(recv.Type, c.Name, argc); ok {
		return b.finish(c, ref)
	}
	if !recv.Static {
		if ref, ok := b.m.FindExtension(recv.Type, c.Name, argc, b.scope(inv)); ok {
			return b.finish(c, ref)
		}
		if ref, ok := b.m.FindMember(recv.Type, c.Name, semantic.MemberField, semantic.MemberProperty, semantic.MemberEvent); ok {
			return b.bindInvoke(c, b.m.MemberType(ref), argc)
		}
	}
	return false
}

// bindInvoke binds a call of a delegate-typed value.
func (b *binder) bindInvoke(c *call, t *semantic.Type, argc int) bool {
	if t == nil {
		return false
	}
	ref, ok := b.m.FindMethod(t, "Invoke", argc)
	if !ok {
		return false
	}
	c.Location = t
	c.Name = "Invoke"
	return b.finish(c, ref)
}

func (b *binder) finish(c *call, ref *semantic.MemberRef) bool {
	if len(ref.Member.TypeParameters) > 0 {
		b.m.Infer(ref, c.TypeArgs, c.Args)
	}
	c.Ref = ref
	c.Return = b.m.MemberType(ref)
	return true
}

func (b *binder) typeArguments(n *sitter.Node) []*semantic.Type {
	if n == nil || n.Kind() != "generic_name" {
		return nil
	}
	list := field(n, "type_arguments")
	if list == nil {
		list = childOfKind(n, "type_argument_list")
	}
	var out []*semantic.Type
	for _, t := range namedChildren(list) {
		if t.Kind() == "comment" {
			continue
		}
		out = append(out, b.resolveTypeNode(t))
	}
	return out
}

// localFunction finds a local function named name visible from at.
func (b *binder) localFunction(at *sitter.Node, name string) *sitter.Node {
	for p := at.Parent(); p != nil; p = p.Parent() {
		if hasKind(p, memberKinds...) || hasKind(p, typeDeclKinds...) {
			return nil
		}
		if !hasKind(p, "block", "switch_section") {
			continue
		}
		for _, s := range childrenOfKind(p, "local_function_statement") {
			if nameOf(s, b.src) == name {
				return s
			}
		}
	}
	return nil
}

// argumentExprs returns the value expressions of an argument list.
func argumentExprs(list *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for _, arg := range childrenOfKind(list, "argument") {
		if e := argumentExpression(arg); e != nil {
			out = append(out, e)
		}
	}
	return out
}

func argumentExpression(arg *sitter.Node) *sitter.Node {
	if e := field(arg, "expression"); e != nil {
		return e
	}
	nc := namedChildren(arg)
	for i := len(nc) - 1; i >= 0; i-- {
		if !hasKind(nc[i], "name_colon", "comment") {
			return nc[i]
		}
	}
	return nil
}

// methodCall renders a bound call on the fact model.
func (b *binder) methodCall(c *call) model.MethodCall {
	mc := model.MethodCall{Name: c.Name}
	for _, t := range c.TypeArgs {
		mc.GenericParameters = append(mc.GenericParameters, entity(t, ""))
	}
	switch {
	case c.Local != nil:
		mc.DefinitionClassName = c.Location.String()
		mc.LocationClassName = mc.DefinitionClassName
		for _, p := range parameterNodes(parameterList(c.Local)) {
			typeNode := parameterType(p)
			mc.ParameterTypes = append(mc.ParameterTypes, entity(b.resolveTypeNode(typeNode), typeText(typeNode, b.src)))
		}
	case c.Ref != nil:
		mc.DefinitionClassName = c.Ref.Owner.String()
		mc.LocationClassName = c.Location.String()
		for _, t := range b.m.ParameterTypes(c.Ref) {
			mc.ParameterTypes = append(mc.ParameterTypes, entity(t, ""))
		}
		if len(mc.GenericParameters) == 0 {
			for _, tp := range c.Ref.Member.TypeParameters {
				if t, ok := c.Ref.Inferred[tp]; ok {
					mc.GenericParameters = append(mc.GenericParameters, entity(t, ""))
				}
			}
		}
	default:
		mc.IsExtern = true
		mc.LocationClassName = c.LocationName
		if c.Location != nil {
			mc.LocationClassName = c.Location.String()
		}
		mc.DefinitionClassName = mc.LocationClassName
		for _, t := range c.Args {
			mc.ParameterTypes = append(mc.ParameterTypes, entity(t, "?"))
		}
	}
	return mc
}

// constructorCall binds a ": base(...)" or ": this(...)" initializer of ctor.
func (b *binder) constructorCall(ctor *sitter.Node) (model.MethodCall, bool) {
	init := childOfKind(ctor, "constructor_initializer")
	if init == nil {
		return model.MethodCall{}, false
	}
	var target *semantic.Type
	if hasToken(init, "base") || childOfKind(init, "base_expression", "base") != nil {
		target = b.baseOf(ctor)
	} else {
		target = b.self(ctor)
	}
	c := &call{Name: nameOf(enclosingType(ctor, b.src).node, b.src), Location: b.self(ctor)}
	for _, arg := range argumentExprs(childOfKind(init, "argument_list")) {
		c.Args = append(c.Args, b.typeOf(arg))
	}
	if target != nil && target.Symbol != nil {
		c.Name = target.Symbol.Name
		if ref, ok := b.m.FindConstructor(target, len(c.Args)); ok {
			c.Ref = ref
		}
	}
	if c.Ref == nil {
		c.LocationName = target.String()
	}
	return b.methodCall(c), true
}

// entity converts a bound type to the fact model. A nil type renders as
// the written fallback, marked extern.
func entity(t *semantic.Type, fallback string) model.EntityType {
	if t == nil {
		return model.NewEntityType(fallback, true)
	}
	return t.Entity()
}
