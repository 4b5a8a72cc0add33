package visualbasic

import (
	"strings"

	"github.com/standardbeagle/csfacts/internal/semantic"
)

const maxBindDepth = 48

// operand is a bound expression. Static is set when the expression names a
// type rather than a value.
type operand struct {
	Type   *semantic.Type
	Static bool
}

// binder types expressions and binds member references of one file.
// Expressions are bound at the statement or header node holding them.
type binder struct {
	m     *semantic.Model
	depth int
}

func newBinder(m *semantic.Model) *binder {
	return &binder{m: m}
}

func (b *binder) scope(n *Node) *semantic.Scope {
	return scopeAt(b.m, n)
}

// resolve binds a written type at n. It returns nil for an empty type.
func (b *binder) resolve(written string, n *Node) *semantic.Type {
	if written == "" {
		return nil
	}
	return b.m.ResolveType(written, b.scope(n))
}

// declType returns the open type declared by td.
func (b *binder) declType(td *typeDecl) *semantic.Type {
	if td == nil {
		return nil
	}
	if sym, ok := b.m.LookupType(td.FullName(), len(td.TypeParams)); ok {
		return b.m.Open(sym)
	}
	return &semantic.Type{Unresolved: td.Display()}
}

// self returns the type whose member contains n.
func (b *binder) self(n *Node) *semantic.Type {
	return b.declType(enclosingType(n))
}

func (b *binder) baseOf(n *Node) *semantic.Type {
	self := b.self(n)
	if self == nil || self.Symbol == nil {
		return nil
	}
	base, _ := b.m.BaseTypes(self.Symbol)
	return base
}

func (b *binder) keyword(kw string) *semantic.Type {
	return b.m.Keyword(kw)
}

// typeOf returns the type of e written at n, or nil when it cannot be
// bound.
func (b *binder) typeOf(e *Expr, at *Node) *semantic.Type {
	return b.bind(e, at).Type
}

func (b *binder) bind(e *Expr, at *Node) operand {
	if e == nil || b.depth > maxBindDepth {
		return operand{}
	}
	b.depth++
	defer func() { b.depth-- }()

	switch e.Kind {
	case exprLiteral:
		if e.Op == "Nothing" {
			return operand{}
		}
		return operand{Type: b.keyword(e.Op)}
	case exprParen:
		return operand{Type: b.typeOf(e.Left, at)}
	case exprMe, exprMyClass:
		return operand{Type: b.self(at)}
	case exprMyBase:
		return operand{Type: b.baseOf(at)}
	case exprName:
		if len(e.TypeArgs) > 0 {
			if t := b.resolve(dotted(e), at); t != nil && !t.IsExtern() {
				return operand{Type: t, Static: true}
			}
			return operand{}
		}
		return b.bindName(e.Name, at)
	case exprMember:
		return b.bindMember(e, at)
	case exprInvoke:
		if c, ok := b.bindCall(e, at); ok || c.Index {
			return operand{Type: c.Return}
		}
	case exprNew, exprNewArray:
		if e.Type == "" {
			return operand{}
		}
		return operand{Type: b.resolve(e.Type, at)}
	case exprCast:
		return operand{Type: b.resolve(e.Type, at)}
	case exprTypeOf:
		return operand{Type: b.keyword("Boolean")}
	case exprGetType:
		return operand{Type: b.m.Named("System.Type")}
	case exprNameOf:
		return operand{Type: b.keyword("String")}
	case exprIf:
		switch len(e.Args) {
		case 3:
			if t := b.typeOf(e.Args[1], at); t != nil {
				return operand{Type: t}
			}
			return operand{Type: b.typeOf(e.Args[2], at)}
		case 2:
			if t := b.typeOf(e.Args[0], at); t != nil {
				return operand{Type: t.WithNullable(false)}
			}
			return operand{Type: b.typeOf(e.Args[1], at)}
		}
	case exprCollection:
		for _, el := range e.Args {
			if t := b.typeOf(el, at); t != nil {
				return operand{Type: &semantic.Type{Elem: t, Rank: "[]"}}
			}
		}
	case exprBinary:
		return operand{Type: b.binaryType(e, at)}
	case exprUnary:
		switch e.Op {
		case "AddressOf":
			return operand{}
		case "Await":
			return operand{Type: b.awaitedType(b.typeOf(e.Left, at))}
		}
		return operand{Type: b.typeOf(e.Left, at)}
	case exprAssign:
		return operand{Type: b.typeOf(e.Left, at)}
	}
	return operand{}
}

// bindName binds a simple name used as an expression: a local, a member of
// an enclosing type, a module or imported type, a method called without
// parentheses, or a type.
func (b *binder) bindName(name string, at *Node) operand {
	if t, ok := b.local(at, name); ok {
		return operand{Type: t}
	}
	if ref, _ := b.unqualifiedMember(at, name); ref != nil {
		return operand{Type: b.m.MemberType(ref)}
	}
	if ref, _ := b.unqualifiedMethod(at, name, 0); ref != nil {
		return operand{Type: b.m.MemberType(ref)}
	}
	if t := b.m.ResolveType(name, b.scope(at)); t != nil && !t.IsExtern() {
		return operand{Type: t, Static: true}
	}
	return operand{}
}

// lookupTypes lists the types whose members can be named without
// qualification at n: the enclosing types from the inside out, then the
// modules and the types named by Imports.
func (b *binder) lookupTypes(n *Node) []*semantic.Type {
	var out []*semantic.Type
	for td := enclosingType(n); td != nil; td = td.Containing {
		out = append(out, b.declType(td))
	}
	scope := b.scope(n)
	out = append(out, b.m.Modules(scope)...)
	for _, imp := range scope.Imports {
		if imp.Alias != "" {
			continue
		}
		if t := b.m.ResolveType(imp.Name, &semantic.Scope{}); t != nil && !t.IsExtern() {
			out = append(out, t)
		}
	}
	return out
}

// unqualifiedMember finds a field, property or event named name without
// qualification. The second result is the type it was found on.
func (b *binder) unqualifiedMember(n *Node, name string) (*semantic.MemberRef, *semantic.Type) {
	for _, t := range b.lookupTypes(n) {
		if ref, ok := b.m.FindMember(t, name, semantic.MemberField, semantic.MemberProperty, semantic.MemberEvent); ok {
			return ref, t
		}
	}
	return nil, nil
}

// unqualifiedMethod finds a method named name callable without
// qualification with argc arguments.
func (b *binder) unqualifiedMethod(n *Node, name string, argc int) (*semantic.MemberRef, *semantic.Type) {
	for _, t := range b.lookupTypes(n) {
		if ref, ok := b.m.FindMethod(t, name, argc); ok {
			return ref, t
		}
	}
	return nil, nil
}

// receiver binds the left side of a member access. A leading dot refers to
// the object of the enclosing With block.
func (b *binder) receiver(e *Expr, at *Node) operand {
	switch {
	case e.Left == nil:
		return operand{Type: b.withTarget(at)}
	case e.Left.Kind == exprMyBase:
		return operand{Type: b.baseOf(at)}
	}
	return b.bind(e.Left, at)
}

// withTarget is the type of the object of the With block enclosing n.
func (b *binder) withTarget(n *Node) *semantic.Type {
	with := ancestor(n, KindWith)
	if with == nil {
		return nil
	}
	exprs := with.expressions()
	if len(exprs) == 0 {
		return nil
	}
	return b.typeOf(exprs[0], with)
}

func (b *binder) bindMember(e *Expr, at *Node) operand {
	recv := b.receiver(e, at)
	if recv.Type == nil {
		if name := dotted(e); name != "" {
			if t := b.resolve(name, at); t != nil && !t.IsExtern() {
				return operand{Type: t, Static: true}
			}
		}
		return operand{}
	}
	return b.memberOf(recv, e.Name, at)
}

// memberOf binds name as a member of recv used as a value: a field,
// property or event, a method called without arguments, or a nested type
// when recv names a type.
func (b *binder) memberOf(recv operand, name string, at *Node) operand {
	if recv.Type == nil {
		return operand{}
	}
	if ref, ok := b.m.FindMember(recv.Type, name, semantic.MemberField, semantic.MemberProperty, semantic.MemberEvent); ok {
		return operand{Type: b.m.MemberType(ref)}
	}
	if ref, ok := b.m.FindMethod(recv.Type, name, 0); ok {
		return operand{Type: b.m.MemberType(ref)}
	}
	if recv.Static {
		if t := b.m.ResolveType(recv.Type.String()+"."+name, b.scope(at)); t != nil && !t.IsExtern() {
			return operand{Type: t, Static: true}
		}
		return operand{}
	}
	if ref, ok := b.m.FindExtension(recv.Type, name, 0, b.scope(at)); ok {
		return operand{Type: b.m.MemberType(ref)}
	}
	return operand{}
}

func (b *binder) awaitedType(t *semantic.Type) *semantic.Type {
	if t == nil || t.Symbol == nil {
		return nil
	}
	switch t.Symbol.FullName {
	case "System.Threading.Tasks.Task", "System.Threading.Tasks.ValueTask":
		if len(t.Args) == 1 {
			return t.Args[0]
		}
		return b.m.Named(voidType)
	}
	return nil
}

// elementType is the iteration type of a For Each over t.
func (b *binder) elementType(t *semantic.Type) *semantic.Type {
	if t == nil {
		return nil
	}
	if t.Elem != nil {
		return t.Elem
	}
	if t.Symbol != nil && t.Symbol.FullName == "System.String" {
		return b.keyword("Char")
	}
	if sym, ok := b.m.LookupType("System.Collections.Generic.IEnumerable", 1); ok {
		if inst := b.m.AsInstanceOf(t, sym); inst != nil && len(inst.Args) == 1 {
			return inst.Args[0]
		}
	}
	if t.IsExtern() {
		return nil
	}
	return b.keyword("Object")
}

var numericRank = map[string]int{
	"sbyte": 1, "byte": 1, "short": 1, "ushort": 1, "integer": 1,
	"uinteger": 2, "long": 3, "ulong": 4, "decimal": 5, "single": 6, "double": 7,
}

var rankKeyword = []string{"", "Integer", "UInteger", "Long", "ULong", "Decimal", "Single", "Double"}

func (b *binder) binaryType(e *Expr, at *Node) *semantic.Type {
	switch e.Op {
	case "=", "<>", "<", ">", "<=", ">=", "Is", "IsNot", "Like", "AndAlso", "OrElse":
		return b.keyword("Boolean")
	case "&":
		return b.keyword("String")
	case "^":
		return b.keyword("Double")
	}
	left, right := b.typeOf(e.Left, at), b.typeOf(e.Right, at)
	lk, rk := keywordOf(left), keywordOf(right)
	switch e.Op {
	case "+":
		if lk == "string" || rk == "string" {
			return b.keyword("String")
		}
	case "And", "Or", "Xor":
		if lk == "boolean" && rk == "boolean" {
			return b.keyword("Boolean")
		}
	case "/":
		if lk == "decimal" || lk == "single" {
			if rk == lk || numericRank[rk] > 0 && numericRank[rk] < numericRank[lk] {
				return left
			}
		}
		return b.keyword("Double")
	}
	if lk != "" && lk == rk {
		return left
	}
	lr, rr := numericRank[lk], numericRank[rk]
	if lr > 0 && rr > 0 {
		if e.Op == "<<" || e.Op == ">>" {
			return left
		}
		return b.keyword(rankKeyword[max(lr, rr)])
	}
	if left != nil {
		return left
	}
	return right
}

// keywordOf returns the lower-cased keyword of a built-in type.
func keywordOf(t *semantic.Type) string {
	if t == nil || t.Nullable {
		return ""
	}
	return strings.ToLower(t.Keyword)
}
