package csharp

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/csfacts/internal/model"
)

// attributeLists returns the attribute sections written on declaration n
// in source order.
func attributeLists(n *sitter.Node) []*sitter.Node {
	if isParamsToken(n) {
		// The sections of a params array precede its token in the list.
		var out []*sitter.Node
		for s := n.PrevSibling(); s != nil && s.Kind() == "attribute_list"; s = s.PrevSibling() {
			out = append([]*sitter.Node{s}, out...)
		}
		return out
	}
	return childrenOfKind(n, "attribute_list")
}

// listTarget returns the explicit target of a section, e.g. "return".
func listTarget(list *sitter.Node, src []byte) string {
	spec := childOfKind(list, "attribute_target_specifier")
	if spec == nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimSuffix(compact(text(spec, src)), ":"))
}

// defaultTarget is the target of an attribute written without one.
func defaultTarget(n *sitter.Node) string {
	switch {
	case hasKind(n, typeDeclKinds...), n.Kind() == "type_parameter":
		return model.TargetType
	case hasKind(n, "field_declaration", "event_field_declaration", "enum_member_declaration"):
		return model.TargetField
	case hasKind(n, "property_declaration", "indexer_declaration", "event_declaration"):
		return model.TargetProperty
	case hasKind(n, "parameter", "parameter_array", "parameter_list"), isParamsToken(n):
		return model.TargetParam
	}
	return model.TargetMethod
}

// attributes binds the attributes on n. With only set, sections whose
// explicit target differs are skipped; otherwise return-targeted sections
// are skipped, as they belong to the return value.
func (b *binder) attributes(n *sitter.Node, only string) []*model.Attribute {
	var out []*model.Attribute
	for _, list := range attributeLists(n) {
		target := listTarget(list, b.src)
		switch {
		case only != "" && target != only:
			continue
		case only == "" && target == model.TargetReturn:
			continue
		}
		if target == "" {
			target = defaultTarget(n)
		}
		for _, attr := range childrenOfKind(list, "attribute") {
			out = append(out, b.attribute(attr, target))
		}
	}
	return out
}

func (b *binder) attribute(attr *sitter.Node, target string) *model.Attribute {
	nameNode := field(attr, "name")
	if nameNode == nil {
		nameNode = firstNamed(attr)
	}
	written := typeText(nameNode, b.src)
	a := &model.Attribute{Target: target, Type: b.attributeType(attr, written)}

	args := field(attr, "arguments")
	if args == nil {
		args = childOfKind(attr, "attribute_argument_list")
	}
	for _, arg := range childrenOfKind(args, "attribute_argument") {
		e := lastNamed(arg)
		if hasKind(e, "name_equals", "name_colon") {
			continue
		}
		a.Parameters = append(a.Parameters, &model.Parameter{Type: entity(b.typeOf(e), "?")})
	}
	return a
}

// attributeType binds the written attribute name, trying the Attribute
// suffix first. An unbound name is kept as written and marked extern.
func (b *binder) attributeType(at *sitter.Node, written string) model.EntityType {
	scope := b.scope(at)
	if !strings.HasSuffix(written, "Attribute") {
		if t := b.m.ResolveType(written+"Attribute", scope); t != nil && !t.IsExtern() {
			return t.Entity()
		}
	}
	if t := b.m.ResolveType(written, scope); t != nil && !t.IsExtern() {
		return t.Entity()
	}
	return model.NewEntityType(written, true)
}
