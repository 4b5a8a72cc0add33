package visualbasic

import (
	"strings"

	"github.com/standardbeagle/csfacts/internal/semantic"
)

// clauseKinds continue the block of their parent statement.
var clauseKinds = []string{KindElseIf, KindElse, KindCase, KindCatch, KindFinally}

// local finds the declaration of a local variable or parameter named name
// visible from at and returns its type. A declaration whose type cannot be
// bound reports a nil type with ok set, so it still shadows members.
func (b *binder) local(at *Node, name string) (*semantic.Type, bool) {
	prev := at
	for p := at.Parent; p != nil; prev, p = p, p.Parent {
		if !hasKind(prev, clauseKinds...) {
			for _, s := range p.Children {
				if s == prev {
					break
				}
				if s.Kind != KindLocal {
					continue
				}
				if d := declarator(s, name); d != nil {
					return b.declaratorType(d), true
				}
			}
		}
		switch p.Kind {
		case KindUsing:
			if d := declarator(p, name); d != nil {
				return b.declaratorType(d), true
			}
		case KindFor, KindForEach:
			if strings.EqualFold(p.Name, name) {
				return b.loopVariable(p)
			}
		case KindCatch:
			if strings.EqualFold(p.Name, name) {
				return b.caught(p), true
			}
		case KindLambda:
			if t, ok := b.parameter(p, name); ok {
				return t, true
			}
		case KindSub, KindFunction, KindOperator, KindAccessor:
			return b.parameter(p, name)
		case KindProperty:
			return b.parameter(p, name)
		}
		if hasKind(p, typeDeclKinds...) {
			return nil, false
		}
	}
	return nil, false
}

// declarator returns the declarator of s named name.
func declarator(s *Node, name string) *Node {
	for _, d := range s.Children {
		if d.Kind == KindDeclarator && strings.EqualFold(d.Name, name) {
			return d
		}
	}
	return nil
}

// declaratorType is the declared type of a local, or the type of its
// initializer when it has no As clause. A local with neither is Object.
func (b *binder) declaratorType(d *Node) *semantic.Type {
	if d.typ != "" {
		return b.resolve(d.typ, d)
	}
	if len(d.value) > 0 {
		t := b.typeOf(parseExpr(d.value), d.Parent)
		if t != nil && d.rank != "" {
			return &semantic.Type{Elem: t, Rank: d.rank}
		}
		return t
	}
	return b.resolve("Object"+d.rank, d)
}

// loopVariable binds the control variable of a For or For Each. Without an
// As clause the variable is an existing one when one is in scope, and is
// otherwise inferred from the loop bounds or the collection.
func (b *binder) loopVariable(loop *Node) (*semantic.Type, bool) {
	if loop.typ != "" {
		return b.resolve(loop.typ, loop), true
	}
	if t, ok := b.local(loop, loop.Name); ok {
		return t, true
	}
	exprs := loop.expressions()
	if len(exprs) == 0 {
		return nil, true
	}
	if loop.Kind == KindForEach {
		return b.elementType(b.typeOf(exprs[0], loop)), true
	}
	return b.typeOf(exprs[0], loop), true
}

// declaresLoopVariable reports whether a For or For Each introduces its
// control variable rather than reusing one.
func (b *binder) declaresLoopVariable(loop *Node) bool {
	if loop.Name == "" {
		return false
	}
	if loop.typ != "" {
		return true
	}
	if _, ok := b.local(loop, loop.Name); ok {
		return false
	}
	ref, _ := b.unqualifiedMember(loop, loop.Name)
	return ref == nil
}

// caught is the exception type of a Catch clause.
func (b *binder) caught(catch *Node) *semantic.Type {
	if catch.typ != "" {
		return b.resolve(catch.typ, catch)
	}
	return b.m.Named("System.Exception")
}

// parameter binds name among the parameters of fn. Inside a Function or a
// property Get the name of the member is its implicit return variable.
func (b *binder) parameter(fn *Node, name string) (*semantic.Type, bool) {
	for _, p := range fn.params {
		if strings.EqualFold(p.Name, name) {
			return b.parameterType(p), true
		}
	}
	switch fn.Kind {
	case KindFunction:
		if strings.EqualFold(fn.Name, name) {
			return b.resolve(returnTypeText(fn), fn), true
		}
	case KindAccessor:
		prop := fn.Parent
		if prop == nil {
			return nil, false
		}
		if t, ok := b.parameter(prop, name); ok {
			return t, true
		}
		switch {
		case prop.Kind == KindProperty && fn.Name != "" && strings.EqualFold(fn.Name, "Set") && strings.EqualFold(name, "value") && len(fn.params) == 0:
			return b.resolve(valueTypeText(prop), prop), true
		case prop.Kind == KindProperty && strings.EqualFold(fn.Name, "Get") && strings.EqualFold(prop.Name, name):
			return b.resolve(valueTypeText(prop), prop), true
		}
	}
	return nil, false
}

// parameterType binds the written type of a parameter. A lambda parameter
// without As has no type.
func (b *binder) parameterType(p *Node) *semantic.Type {
	if p.typ == "" {
		if p.Parent != nil && p.Parent.Kind == KindLambda {
			return nil
		}
		return b.keyword("Object")
	}
	return b.resolve(p.typ, p)
}

// localDeclarations returns the nodes declaring locals in the body of fn:
// declarators of Dim, Const, Static and Using statements, and For or For
// Each statements that introduce their control variable.
func (b *binder) localDeclarations(fn *Node) []*Node {
	var out []*Node
	walkBody(fn, func(n *Node) {
		switch n.Kind {
		case KindLocal, KindUsing:
			for _, d := range n.Children {
				if d.Kind == KindDeclarator {
					out = append(out, d)
				}
			}
		case KindFor, KindForEach:
			if b.declaresLoopVariable(n) {
				out = append(out, n)
			}
		}
	})
	return out
}

// localVariable binds one node returned by localDeclarations. The type is
// nil when it cannot be bound.
func (b *binder) localVariable(n *Node) (name string, t *semantic.Type, modifier string) {
	if n.Kind != KindDeclarator {
		t, _ = b.loopVariable(n)
		return n.Name, t, ""
	}
	stmt := n.Parent
	switch {
	case stmt.Kind == KindUsing:
		modifier = "Using"
	case stmt.hasModifier("Const"):
		modifier = "Const"
	case stmt.hasModifier("Static"):
		modifier = "Static"
	}
	return n.Name, b.declaratorType(n), modifier
}
