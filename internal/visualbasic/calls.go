package visualbasic

import (
	"strings"

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
	Args         []*semantic.Type
	Return       *semantic.Type
	// Index is set when the parentheses index an array or a property
	// instead of calling a method.
	Index bool
}

// bindCall binds an Invoke expression written at n. The second result is
// false when the target could not be found; the call still carries the
// name and the argument types.
func (b *binder) bindCall(inv *Expr, at *Node) (*call, bool) {
	c := &call{}
	for _, arg := range inv.Args {
		c.Args = append(c.Args, b.typeOf(arg, at))
	}
	argc := len(c.Args)
	fn := inv.Left
	if fn == nil {
		return c, false
	}
	for _, ta := range fn.TypeArgs {
		c.TypeArgs = append(c.TypeArgs, b.resolve(ta, at))
	}

	switch fn.Kind {
	case exprName:
		c.Name = fn.Name
		return c, b.bindUnqualified(at, c, argc)
	case exprMember:
		c.Name = fn.Name
		return c, b.bindQualified(at, c, fn, argc)
	}

	// Invocation or indexing of any other expression.
	c.Name = "Invoke"
	t := b.typeOf(fn, at)
	if t == nil {
		c.LocationName = "?"
		return c, false
	}
	return c, b.bindValue(c, t, argc)
}

func (b *binder) bindUnqualified(at *Node, c *call, argc int) bool {
	if t, ok := b.local(at, c.Name); ok {
		if t == nil {
			c.Index = true
			return false
		}
		return b.bindValue(c, t, argc)
	}

	c.Location = b.self(at)
	for _, t := range b.lookupTypes(at) {
		if ref, ok := b.m.FindMethod(t, c.Name, argc); ok {
			c.Location = t
			return b.finish(c, ref)
		}
	}
	if ref, _ := b.unqualifiedMember(at, c.Name); ref != nil {
		return b.bindMemberValue(c, ref, argc)
	}
	if c.Location != nil {
		c.LocationName = c.Location.String()
	}
	return false
}

func (b *binder) bindQualified(at *Node, c *call, fn *Expr, argc int) bool {
	recv := b.receiver(fn, at)
	if recv.Type == nil {
		c.LocationName = dotted(fn.Left)
		if c.LocationName == "" {
			c.LocationName = "?"
		}
		return false
	}
	c.Location = recv.Type
	if strings.EqualFold(c.Name, "New") && fn.Left != nil && hasExprKind(fn.Left, exprMyBase, exprMe, exprMyClass) {
		c.Location = b.self(at)
		return b.constructorCall(c, recv.Type, argc)
	}
	if ref, ok := b.m.FindMethod(recv.Type, c.Name, argc); ok {
		return b.finish(c, ref)
	}
	if !recv.Static {
		if ref, ok := b.m.FindExtension(recv.Type, c.Name, argc, b.scope(at)); ok {
			return b.finish(c, ref)
		}
	}
	if ref, ok := b.m.FindMember(recv.Type, c.Name, semantic.MemberField, semantic.MemberProperty, semantic.MemberEvent); ok {
		return b.bindMemberValue(c, ref, argc)
	}
	return false
}

// bindMemberValue binds parentheses after a field, property or event. A
// property with parameters is indexed; anything else is invoked or
// indexed through its value.
func (b *binder) bindMemberValue(c *call, ref *semantic.MemberRef, argc int) bool {
	t := b.m.MemberType(ref)
	if ref.Member.Kind == semantic.MemberProperty && len(ref.Member.Parameters) > 0 {
		c.Index = true
		c.Return = t
		return false
	}
	if t == nil {
		c.Index = true
		return false
	}
	return b.bindValue(c, t, argc)
}

// bindValue binds parentheses after a value of type t: an array element, a
// default property, or a delegate invocation.
func (b *binder) bindValue(c *call, t *semantic.Type, argc int) bool {
	switch {
	case t.Elem != nil:
		c.Index = true
		c.Return = t.Elem
		return false
	case argc == 1 && t.Symbol != nil && t.Symbol.FullName == "System.String":
		c.Index = true
		c.Return = b.keyword("Char")
		return false
	}
	if ref, ok := b.m.FindMember(t, "this", semantic.MemberProperty); ok {
		c.Index = true
		c.Return = b.m.MemberType(ref)
		return false
	}
	ref, ok := b.m.FindMethod(t, "Invoke", argc)
	if !ok {
		c.Index = true
		return false
	}
	c.Location = t
	c.Name = "Invoke"
	return b.finish(c, ref)
}

// constructorCall binds MyBase.New(...) and Me.New(...) in a constructor.
func (b *binder) constructorCall(c *call, target *semantic.Type, argc int) bool {
	if target.Symbol != nil {
		c.Name = target.Symbol.Name
	}
	ref, ok := b.m.FindConstructor(target, argc)
	if !ok {
		c.LocationName = target.String()
		return false
	}
	c.Ref = ref
	return true
}

func (b *binder) finish(c *call, ref *semantic.MemberRef) bool {
	if len(ref.Member.TypeParameters) > 0 {
		b.m.Infer(ref, c.TypeArgs, c.Args)
	}
	c.Ref = ref
	c.Return = b.m.MemberType(ref)
	return true
}

// bareCall binds a name or member access that calls a method without
// parentheses, e.g. "x = list.Count" where Count is a method.
func (b *binder) bareCall(e *Expr, at *Node) (*call, bool) {
	c := &call{Name: e.Name}
	for _, ta := range e.TypeArgs {
		c.TypeArgs = append(c.TypeArgs, b.resolve(ta, at))
	}
	switch e.Kind {
	case exprName:
		if _, ok := b.local(at, e.Name); ok {
			return nil, false
		}
		if ref, _ := b.unqualifiedMember(at, e.Name); ref != nil {
			return nil, false
		}
		ref, t := b.unqualifiedMethod(at, e.Name, 0)
		if ref == nil {
			return nil, false
		}
		c.Location = t
		return c, b.finish(c, ref)
	case exprMember:
		recv := b.receiver(e, at)
		if recv.Type == nil {
			return nil, false
		}
		if _, ok := b.m.FindMember(recv.Type, e.Name, semantic.MemberField, semantic.MemberProperty, semantic.MemberEvent); ok {
			return nil, false
		}
		c.Location = recv.Type
		if ref, ok := b.m.FindMethod(recv.Type, e.Name, 0); ok {
			return c, b.finish(c, ref)
		}
		if !recv.Static {
			if ref, ok := b.m.FindExtension(recv.Type, e.Name, 0, b.scope(at)); ok {
				return c, b.finish(c, ref)
			}
		}
	}
	return nil, false
}

func hasExprKind(e *Expr, kinds ...string) bool {
	for _, k := range kinds {
		if e.Kind == k {
			return true
		}
	}
	return false
}

// methodCall renders a bound call on the fact model.
func (b *binder) methodCall(c *call) model.MethodCall {
	mc := model.MethodCall{Name: c.Name}
	for _, t := range c.TypeArgs {
		mc.GenericParameters = append(mc.GenericParameters, entity(t, ""))
	}
	switch {
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

// entity converts a bound type to the fact model. A nil type renders as
// the written fallback, marked extern.
func entity(t *semantic.Type, fallback string) model.EntityType {
	if t == nil {
		return model.NewEntityType(fallback, true)
	}
	return t.Entity()
}
