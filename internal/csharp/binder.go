package csharp

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

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
type binder struct {
	m     *semantic.Model
	src   []byte
	depth int
}

func newBinder(m *semantic.Model, src []byte) *binder {
	return &binder{m: m, src: src}
}

func (b *binder) scope(n *sitter.Node) *semantic.Scope {
	return scopeAt(b.m, n, b.src)
}

// resolveTypeNode binds a written type. It returns nil for var and for a
// missing node.
func (b *binder) resolveTypeNode(t *sitter.Node) *semantic.Type {
	if t == nil || t.Kind() == "implicit_type" {
		return nil
	}
	written := typeText(t, b.src)
	if written == "" || written == "var" {
		return nil
	}
	return b.m.ResolveType(written, b.scope(t))
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
func (b *binder) self(n *sitter.Node) *semantic.Type {
	return b.declType(enclosingType(n, b.src))
}

func (b *binder) baseOf(n *sitter.Node) *semantic.Type {
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

// typeOf returns the type of expression e, or nil when it cannot be bound.
func (b *binder) typeOf(e *sitter.Node) *semantic.Type {
	return b.bind(e).Type
}

func (b *binder) bind(e *sitter.Node) operand {
	if e == nil || b.depth > maxBindDepth {
		return operand{}
	}
	b.depth++
	defer func() { b.depth-- }()

	switch e.Kind() {
	case "parenthesized_expression", "checked_expression":
		if nc := namedChildren(e); len(nc) > 0 {
			return operand{Type: b.typeOf(nc[len(nc)-1])}
		}
	case "integer_literal":
		return operand{Type: b.keyword(integerKeyword(text(e, b.src)))}
	case "real_literal":
		return operand{Type: b.keyword(realKeyword(text(e, b.src)))}
	case "string_literal", "verbatim_string_literal", "raw_string_literal", "interpolated_string_expression":
		return operand{Type: b.keyword("string")}
	case "character_literal":
		return operand{Type: b.keyword("char")}
	case "boolean_literal", "is_expression", "is_pattern_expression":
		return operand{Type: b.keyword("bool")}
	case "this_expression", "this":
		return operand{Type: b.self(e)}
	case "base_expression", "base":
		return operand{Type: b.baseOf(e)}
	case "predefined_type":
		return operand{Type: b.keyword(text(e, b.src)), Static: true}
	case "identifier":
		return b.bindName(e, text(e, b.src))
	case "generic_name":
		if t := b.resolveTypeNode(e); t != nil && !t.IsExtern() {
			return operand{Type: t, Static: true}
		}
	case "qualified_name", "alias_qualified_name":
		if t := b.resolveTypeNode(e); t != nil && !t.IsExtern() {
			return operand{Type: t, Static: true}
		}
	case "member_access_expression":
		return b.bindMemberAccess(e)
	case "member_binding_expression":
		recv := b.bind(conditionalReceiver(e))
		return b.memberOf(recv, simpleName(field(e, "name"), b.src), e)
	case "conditional_access_expression":
		inner := lastNamed(e)
		t := b.typeOf(inner)
		if t != nil && t.IsValueType() {
			t = t.WithNullable(true)
		}
		return operand{Type: t}
	case "invocation_expression":
		if c, ok := b.bindCall(e); ok {
			return operand{Type: c.Return}
		} else if c != nil && c.Name == "nameof" {
			return operand{Type: b.keyword("string")}
		}
	case "object_creation_expression":
		return operand{Type: b.resolveTypeNode(field(e, "type"))}
	case "implicit_object_creation_expression":
		return operand{Type: b.targetType(e)}
	case "array_creation_expression", "stackalloc_array_creation_expression":
		return operand{Type: b.resolveTypeNode(field(e, "type"))}
	case "implicit_array_creation_expression", "implicit_stackalloc_expression":
		for _, el := range namedChildren(childOfKind(e, "initializer_expression")) {
			if t := b.typeOf(el); t != nil {
				return operand{Type: &semantic.Type{Elem: t, Rank: "[]"}}
			}
		}
	case "cast_expression":
		return operand{Type: b.resolveTypeNode(field(e, "type"))}
	case "as_expression":
		t := field(e, "right")
		if t == nil {
			t = field(e, "type")
		}
		return operand{Type: b.resolveTypeNode(t)}
	case "binary_expression":
		return operand{Type: b.binaryType(e)}
	case "prefix_unary_expression":
		if strings.HasPrefix(text(e, b.src), "!") {
			return operand{Type: b.keyword("bool")}
		}
		return operand{Type: b.typeOf(lastNamed(e))}
	case "postfix_unary_expression":
		t := b.typeOf(firstNamed(e))
		if strings.HasSuffix(text(e, b.src), "!") {
			t = t.WithNullable(false)
		}
		return operand{Type: t}
	case "conditional_expression":
		if t := b.typeOf(field(e, "consequence")); t != nil {
			return operand{Type: t}
		}
		return operand{Type: b.typeOf(field(e, "alternative"))}
	case "element_access_expression":
		return operand{Type: b.elementAccessType(e)}
	case "await_expression":
		return operand{Type: b.awaitedType(b.typeOf(lastNamed(e)))}
	case "typeof_expression":
		return operand{Type: b.m.Named("System.Type")}
	case "sizeof_expression":
		return operand{Type: b.keyword("int")}
	case "default_expression":
		if t := field(e, "type"); t != nil {
			return operand{Type: b.resolveTypeNode(t)}
		}
		if t := childOfKind(e, "predefined_type", "identifier", "generic_name", "qualified_name", "nullable_type", "array_type"); t != nil {
			return operand{Type: b.resolveTypeNode(t)}
		}
		return operand{Type: b.targetType(e)}
	case "assignment_expression":
		return operand{Type: b.typeOf(field(e, "left"))}
	case "tuple_expression":
		var elems []*semantic.Type
		for _, arg := range childrenOfKind(e, "argument") {
			t := b.typeOf(argumentExpression(arg))
			if t == nil {
				return operand{}
			}
			elems = append(elems, t)
		}
		if len(elems) > 1 {
			return operand{Type: &semantic.Type{Tuple: elems}}
		}
	case "switch_expression":
		for _, arm := range childrenOfKind(e, "switch_expression_arm") {
			if t := b.typeOf(lastNamed(arm)); t != nil {
				return operand{Type: t}
			}
		}
	case "ref_expression", "makeref_expression":
		return operand{Type: b.typeOf(lastNamed(e))}
	}
	return operand{}
}

// bindName binds a simple name used as an expression: a local, a member of
// an enclosing type, a member brought in by a static import, or a type.
func (b *binder) bindName(id *sitter.Node, name string) operand {
	if t, ok := b.local(id, name); ok {
		return operand{Type: t}
	}
	if ref, _ := b.unqualifiedMember(id, name); ref != nil {
		return operand{Type: b.m.MemberType(ref)}
	}
	scope := b.scope(id)
	if t := b.m.ResolveType(name, scope); t != nil && !t.IsExtern() {
		return operand{Type: t, Static: true}
	}
	return operand{}
}

// unqualifiedMember finds a field, property or event named name on the
// enclosing types or the static imports in effect at n. The second result
// is the type the member was found on.
func (b *binder) unqualifiedMember(n *sitter.Node, name string) (*semantic.MemberRef, *semantic.Type) {
	kinds := []semantic.MemberKind{semantic.MemberField, semantic.MemberProperty, semantic.MemberEvent}
	for td := enclosingType(n, b.src); td != nil; td = td.Containing {
		t := b.declType(td)
		if ref, ok := b.m.FindMember(t, name, kinds...); ok {
			return ref, t
		}
	}
	for _, t := range b.staticImports(n) {
		if ref, ok := b.m.FindMember(t, name, kinds...); ok {
			return ref, t
		}
	}
	return nil, nil
}

func (b *binder) staticImports(n *sitter.Node) []*semantic.Type {
	var out []*semantic.Type
	for _, imp := range importsOf(n, b.src) {
		if imp.Static {
			if t := b.m.ResolveType(imp.Name, &semantic.Scope{}); t != nil && !t.IsExtern() {
				out = append(out, t)
			}
		}
	}
	return out
}

func (b *binder) bindMemberAccess(e *sitter.Node) operand {
	recv := b.bind(field(e, "expression"))
	if recv.Type == nil {
		if t := b.m.ResolveType(typeText(e, b.src), b.scope(e)); t != nil && !t.IsExtern() {
			return operand{Type: t, Static: true}
		}
		return operand{}
	}
	return b.memberOf(recv, simpleName(field(e, "name"), b.src), e)
}

// memberOf binds name as a non-method member of recv, or as a nested type
// when recv names a type.
func (b *binder) memberOf(recv operand, name string, at *sitter.Node) operand {
	if recv.Type == nil {
		return operand{}
	}
	if ref, ok := b.m.FindMember(recv.Type, name, semantic.MemberField, semantic.MemberProperty, semantic.MemberEvent); ok {
		return operand{Type: b.m.MemberType(ref)}
	}
	if recv.Static {
		if t := b.m.ResolveType(recv.Type.String()+"."+name, b.scope(at)); t != nil && !t.IsExtern() {
			return operand{Type: t, Static: true}
		}
	}
	return operand{}
}

func (b *binder) elementAccessType(e *sitter.Node) *semantic.Type {
	recv := b.typeOf(field(e, "expression"))
	if recv == nil {
		return nil
	}
	if recv.Elem != nil {
		return recv.Elem
	}
	if ref, ok := b.m.FindMember(recv, "this", semantic.MemberProperty); ok {
		return b.m.MemberType(ref)
	}
	return nil
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
		return b.keyword("void")
	}
	return nil
}

// elementType is the iteration type of a foreach over t.
func (b *binder) elementType(t *semantic.Type) *semantic.Type {
	if t == nil {
		return nil
	}
	if t.Elem != nil && t.Rank != "*" {
		return t.Elem
	}
	if t.Symbol != nil && t.Symbol.FullName == "System.String" {
		return b.keyword("char")
	}
	if sym, ok := b.m.LookupType("System.Collections.Generic.IEnumerable", 1); ok {
		if inst := b.m.AsInstanceOf(t, sym); inst != nil && len(inst.Args) == 1 {
			return inst.Args[0]
		}
	}
	if t.IsExtern() {
		return nil
	}
	return b.keyword("object")
}

// targetType is the type an expression converts to from its context, for
// target-typed new and default.
func (b *binder) targetType(e *sitter.Node) *semantic.Type {
	p := e.Parent()
	if p != nil && p.Kind() == "equals_value_clause" {
		p = p.Parent()
	}
	if p == nil {
		return nil
	}
	switch p.Kind() {
	case "variable_declarator":
		return b.resolveTypeNode(field(p.Parent(), "type"))
	case "assignment_expression":
		return b.typeOf(field(p, "left"))
	case "property_declaration", "parameter":
		return b.resolveTypeNode(field(p, "type"))
	case "return_statement", "arrow_expression_clause":
		if fn := ancestor(e, functionKinds); fn != nil {
			return b.resolveTypeNode(returnTypeNode(fn))
		}
		if prop := ancestor(e, []string{"property_declaration", "indexer_declaration"}); prop != nil {
			return b.resolveTypeNode(field(prop, "type"))
		}
	}
	return nil
}

var numericRank = map[string]int{
	"sbyte": 1, "byte": 1, "short": 1, "ushort": 1, "char": 1, "int": 1,
	"uint": 2, "long": 3, "ulong": 4, "float": 5, "double": 6, "decimal": 7,
}

var rankKeyword = []string{"", "int", "uint", "long", "ulong", "float", "double", "decimal"}

func (b *binder) binaryType(e *sitter.Node) *semantic.Type {
	op := operatorText(e, b.src)
	switch op {
	case "==", "!=", "<", ">", "<=", ">=", "&&", "||", "is":
		return b.keyword("bool")
	case "as":
		return b.resolveTypeNode(field(e, "right"))
	}
	left, right := b.typeOf(field(e, "left")), b.typeOf(field(e, "right"))
	if op == "??" {
		if left != nil {
			return left.WithNullable(false)
		}
		return right
	}
	if op == "+" && (isKeyword(left, "string") || isKeyword(right, "string")) {
		return b.keyword("string")
	}
	lr, rr := numericRank[keywordOf(left)], numericRank[keywordOf(right)]
	if lr > 0 && rr > 0 {
		if op == "<<" || op == ">>" || op == ">>>" {
			return b.keyword(rankKeyword[lr])
		}
		return b.keyword(rankKeyword[max(lr, rr)])
	}
	if left != nil {
		return left
	}
	return right
}

func keywordOf(t *semantic.Type) string {
	if t == nil || t.Nullable {
		return ""
	}
	return t.Keyword
}

func isKeyword(t *semantic.Type, kw string) bool {
	return t != nil && t.Keyword == kw
}

func operatorText(e *sitter.Node, src []byte) string {
	if op := field(e, "operator"); op != nil {
		return text(op, src)
	}
	for i := uint(0); i < e.ChildCount(); i++ {
		if c := e.Child(i); c != nil && !c.IsNamed() {
			return c.Kind()
		}
	}
	return ""
}

func integerKeyword(lit string) string {
	lit = strings.ToLower(strings.ReplaceAll(lit, "_", ""))
	switch {
	case strings.HasSuffix(lit, "ul"), strings.HasSuffix(lit, "lu"):
		return "ulong"
	case strings.HasSuffix(lit, "l"):
		return "long"
	case strings.HasSuffix(lit, "u") && !strings.HasPrefix(lit, "0x"):
		return "uint"
	}
	return "int"
}

func realKeyword(lit string) string {
	switch strings.ToLower(lit[len(lit)-1:]) {
	case "f":
		return "float"
	case "m":
		return "decimal"
	}
	return "double"
}

// simpleName returns the identifier of an identifier or generic_name node.
func simpleName(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	if n.Kind() == "generic_name" {
		if id := childOfKind(n, "identifier"); id != nil {
			return text(id, src)
		}
	}
	return text(n, src)
}

// conditionalReceiver returns the expression before ?. for a member or
// element binding inside a conditional access.
func conditionalReceiver(n *sitter.Node) *sitter.Node {
	ca := ancestor(n, []string{"conditional_access_expression"})
	if ca == nil {
		return nil
	}
	if c := field(ca, "condition"); c != nil {
		return c
	}
	return firstNamed(ca)
}

func firstNamed(n *sitter.Node) *sitter.Node {
	if n == nil || n.NamedChildCount() == 0 {
		return nil
	}
	return n.NamedChild(0)
}

func lastNamed(n *sitter.Node) *sitter.Node {
	if n == nil || n.NamedChildCount() == 0 {
		return nil
	}
	return n.NamedChild(n.NamedChildCount() - 1)
}
