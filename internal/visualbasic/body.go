package visualbasic

import (
	"github.com/standardbeagle/csfacts/internal/model"
	"github.com/standardbeagle/csfacts/internal/semantic"
)

// walkBody visits the statements in the body of fn, multi-line lambdas
// included. Nested types are not entered.
func walkBody(fn *Node, visit func(*Node)) {
	if fn == nil {
		return
	}
	for _, c := range fn.Children {
		walk(c, func(n *Node) bool {
			if hasKind(n, typeDeclKinds...) || hasKind(n, KindAttribute, KindParameter, KindTypeParameter) {
				return false
			}
			visit(n)
			return true
		})
	}
}

// walkExprs visits every expression of the statements in the body of fn
// with the statement it belongs to.
func walkExprs(fn *Node, visit func(e, parent *Expr, at *Node)) {
	walkBody(fn, func(n *Node) {
		for _, root := range n.expressions() {
			walkExpr(root, nil, func(e, parent *Expr) { visit(e, parent, n) })
		}
	})
}

// cyclomatic returns 1 plus one per decision point in the body of fn.
func cyclomatic(fn *Node) int {
	cc := 1
	walkBody(fn, func(n *Node) {
		cc += decisions(n)
		for _, root := range n.expressions() {
			walkExpr(root, nil, func(e, _ *Expr) {
				switch {
				case e.Kind == exprIf:
					cc++
				case e.Kind == exprBinary && (e.Op == "AndAlso" || e.Op == "OrElse"):
					cc++
				}
			})
		}
	})
	return cc
}

// decisions counts the branches statement n itself introduces. A Case
// clause counts each value it tests; Case Else counts nothing.
func decisions(n *Node) int {
	switch n.Kind {
	case KindIf, KindElseIf, KindSingleLineIf, KindWhile, KindDo, KindFor, KindForEach, KindCatch:
		return 1
	case KindCase:
		return caseCount(n)
	}
	return 0
}

// calls binds the invocations in the body of fn, including methods called
// without parentheses. unresolved names the calls that could not be bound.
func (b *binder) calls(fn *Node) (calls []model.MethodCall, unresolved []string) {
	walkExprs(fn, func(e, parent *Expr, at *Node) {
		switch e.Kind {
		case exprInvoke:
			c, ok := b.bindCall(e, at)
			if c.Index || e.Left == nil {
				return
			}
			calls = append(calls, b.methodCall(c))
			if !ok {
				unresolved = append(unresolved, c.Name)
			}
		case exprName, exprMember:
			if !isValueUse(e, parent) {
				return
			}
			if c, ok := b.bareCall(e, at); ok {
				calls = append(calls, b.methodCall(c))
			}
		}
	})
	return calls, unresolved
}

// isValueUse reports whether a name or member access stands for its value
// rather than being called, qualified or passed to AddressOf or NameOf.
func isValueUse(e, parent *Expr) bool {
	if parent == nil {
		return true
	}
	switch parent.Kind {
	case exprInvoke:
		return parent.Left != e
	case exprMember:
		return parent.Left != e
	case exprUnary:
		return parent.Op != "AddressOf"
	case exprNameOf:
		return false
	}
	return true
}

// accessedFields lists the fields, properties and events used in the body
// of fn, in source order.
func (b *binder) accessedFields(fn *Node) []model.AccessedField {
	var out []model.AccessedField
	walkExprs(fn, func(e, parent *Expr, at *Node) {
		var af model.AccessedField
		ok := false
		switch e.Kind {
		case exprMember:
			af, ok = b.accessedMember(e, at)
		case exprName:
			af, ok = b.accessedName(e, at)
		}
		if ok {
			af.Kind = accessKind(e, parent)
			out = append(out, af)
		}
	})
	return out
}

func (b *binder) accessedMember(e *Expr, at *Node) (model.AccessedField, bool) {
	recv := b.receiver(e, at)
	if recv.Type == nil {
		return model.AccessedField{}, false
	}
	ref, ok := b.m.FindMember(recv.Type, e.Name, semantic.MemberField, semantic.MemberProperty, semantic.MemberEvent)
	if !ok {
		return model.AccessedField{}, false
	}
	return model.AccessedField{
		Name:                ref.Member.Name,
		DefinitionClassName: ref.Owner.String(),
		LocationClassName:   recv.Type.String(),
	}, true
}

func (b *binder) accessedName(e *Expr, at *Node) (model.AccessedField, bool) {
	if _, ok := b.local(at, e.Name); ok {
		return model.AccessedField{}, false
	}
	ref, location := b.unqualifiedMember(at, e.Name)
	if ref == nil {
		return model.AccessedField{}, false
	}
	return model.AccessedField{
		Name:                ref.Member.Name,
		DefinitionClassName: ref.Owner.String(),
		LocationClassName:   location.String(),
	}, true
}

// accessKind is Setter for assignment targets.
func accessKind(e, parent *Expr) model.AccessKind {
	if parent != nil && parent.Kind == exprAssign && parent.Left == e {
		return model.AccessSetter
	}
	return model.AccessGetter
}
