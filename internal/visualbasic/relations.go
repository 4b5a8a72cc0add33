package visualbasic

import (
	"github.com/standardbeagle/csfacts/internal/model"
	"github.com/standardbeagle/csfacts/internal/semantic"
)

// walkClass walks the members of a class without entering nested types,
// which report their own relations.
func walkClass(class *Node, visit func(*Node)) {
	for _, c := range class.Children {
		walk(c, func(n *Node) bool {
			if hasKind(n, typeDeclKinds...) {
				return false
			}
			visit(n)
			return true
		})
	}
}

// thrownTypes tallies the types thrown anywhere in class.
func (b *binder) thrownTypes(class *Node) map[string]int {
	counts := make(map[string]int)
	walkClass(class, func(n *Node) {
		for _, operand := range throwOperands(n) {
			if t := b.thrown(n, operand); t != nil {
				counts[t.String()]++
			}
		}
	})
	return counts
}

// throwOperands returns the operands of the Throw statements written on
// n, including both branches of a single-line If. A rethrow has an empty
// operand.
func throwOperands(n *Node) [][]token {
	var segments [][]token
	switch n.Kind {
	case KindStatement:
		segments = append(segments, n.Tokens)
	case KindSingleLineIf:
		then := indexWord(n.Tokens, "Then")
		if then < 0 {
			return nil
		}
		body := n.Tokens[then+1:]
		if els := indexWord(body, "Else"); els >= 0 {
			segments = append(segments, body[:els], body[els+1:])
		} else {
			segments = append(segments, body)
		}
	}
	var out [][]token
	for _, s := range segments {
		if len(s) > 0 && s[0].is("Throw") {
			out = append(out, s[1:])
		}
	}
	return out
}

// thrown binds the type of one throw. A rethrow takes the type caught by
// the enclosing Catch clause.
func (b *binder) thrown(at *Node, operand []token) *semantic.Type {
	if len(operand) > 0 {
		e := parseExpr(operand)
		if t := b.typeOf(e, at); t != nil {
			return t
		}
		if e != nil && e.Kind == exprNew && e.Type != "" {
			return &semantic.Type{Unresolved: e.Type}
		}
		return nil
	}
	if catch := ancestor(at, KindCatch); catch != nil && declaringFunction(catch) == declaringFunction(at) {
		return b.caught(catch)
	}
	return b.m.Named("System.Exception")
}

// createdTypes tallies the objects and arrays created anywhere in class,
// "As New" declarations included.
func (b *binder) createdTypes(class *Node) map[string]int {
	counts := make(map[string]int)
	walkClass(class, func(n *Node) {
		for _, root := range n.expressions() {
			walkExpr(root, nil, func(e, _ *Expr) {
				if e.Kind != exprNew && e.Kind != exprNewArray || e.Type == "" {
					return
				}
				if t := b.resolve(e.Type, n); t != nil {
					counts[t.String()]++
				}
			})
		}
	})
	return counts
}

func relationMetric(name string, counts map[string]int) model.Metric {
	return model.Metric{Name: name, ValueType: model.RelationValueType, Value: counts}
}
