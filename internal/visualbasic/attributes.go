package visualbasic

import (
	"strings"

	"github.com/standardbeagle/csfacts/internal/model"
)

// attributeTarget is the target of attribute a. Attributes written after
// As belong to the return value.
func attributeTarget(a *Node) string {
	host := a.Parent
	if host == nil {
		return model.TargetType
	}
	for _, r := range host.returnAttrs {
		if r == a {
			return model.TargetReturn
		}
	}
	return defaultTarget(host)
}

// defaultTarget is the target of an attribute written on n.
func defaultTarget(n *Node) string {
	switch {
	case hasKind(n, typeDeclKinds...), n.Kind == KindTypeParameter:
		return model.TargetType
	case hasKind(n, KindField, KindEnumMember):
		return model.TargetField
	case hasKind(n, KindProperty, KindEvent):
		return model.TargetProperty
	case n.Kind == KindParameter:
		return model.TargetParam
	}
	return model.TargetMethod
}

// attribute binds one attribute application. Named arguments are not
// recorded.
func (b *binder) attribute(a *Node, target string) *model.Attribute {
	out := &model.Attribute{Target: target, Type: b.attributeType(a, a.Name)}
	for _, arg := range a.args {
		if len(arg) > 1 && arg[0].Kind == tokIdent && arg[1].op(":=") {
			continue
		}
		out.Parameters = append(out.Parameters, &model.Parameter{Type: entity(b.typeOf(parseExpr(arg), a.Parent), "?")})
	}
	return out
}

// attributeType binds the written attribute name, trying the Attribute
// suffix first. An unbound name is kept as written and marked extern.
func (b *binder) attributeType(a *Node, written string) model.EntityType {
	at := a.Parent
	if at == nil {
		at = a
	}
	scope := b.scope(at)
	if !strings.HasSuffix(strings.ToLower(written), "attribute") {
		if t := b.m.ResolveType(written+"Attribute", scope); t != nil && !t.IsExtern() {
			return t.Entity()
		}
	}
	if t := b.m.ResolveType(written, scope); t != nil && !t.IsExtern() {
		return t.Entity()
	}
	return model.NewEntityType(written, true)
}
