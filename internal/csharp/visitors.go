package csharp

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	csferrors "github.com/standardbeagle/csfacts/internal/errors"
	"github.com/standardbeagle/csfacts/internal/loc"
	"github.com/standardbeagle/csfacts/internal/model"
	"github.com/standardbeagle/csfacts/internal/visitor"
)

// Model capabilities the leaf visitors are written against.
type (
	declared   interface{ Decl() *model.Declaration }
	attributed interface{ Attrs() *model.AttributeSet }
	signed     interface{ Sig() *model.Signature }
	bodied     interface{ MethodBody() *model.Body }
	counted    interface{ Lines() *model.LinesOfCode }
	headed     interface{ Head() *model.TypeHeader }
)

// Node is the syntax handed to every C# visitor.
type Node = *sitter.Node

var lineCounter = loc.NewCounter(loc.CSharp)

func binderFor(ctx *visitor.Context) *binder {
	return newBinder(ctx.Model, ctx.Source)
}

// BaseInfo sets the name, access modifier and other modifiers.
func BaseInfo[M declared]() visitor.Visitor[Node, M] {
	return visitor.NewFunc("BaseInfo", func(ctx *visitor.Context, n Node, m M) error {
		d := m.Decl()
		d.Name = declName(n, ctx.Source)
		d.AccessModifier, d.Modifier = declAccess(n, ctx.Source)
		return nil
	})
}

// TypeInfo sets the qualified name, kind and containers of a type.
func TypeInfo[M headed]() visitor.Visitor[Node, M] {
	return visitor.NewFunc("TypeInfo", func(ctx *visitor.Context, n Node, m M) error {
		td := describeType(n, ctx.Source)
		h := m.Head()
		h.Name = td.Display()
		h.ClassType = classType(n)
		h.FilePath = ctx.Path
		h.ContainingNamespaceName = td.Namespace
		if td.Containing != nil {
			h.ContainingClassName = td.Containing.Display()
		}
		return nil
	})
}

// LinesOfCode counts the lines of the node's own span.
func LinesOfCode[M counted]() visitor.Visitor[Node, M] {
	return visitor.NewFunc("LinesOfCode", func(ctx *visitor.Context, n Node, m M) error {
		*m.Lines() = lineCounter.CountSpan(ctx.Source, int(n.StartByte()), int(n.EndByte()))
		return nil
	})
}

// CyclomaticComplexity counts the decision points of a body.
func CyclomaticComplexity[M bodied]() visitor.Visitor[Node, M] {
	return visitor.NewFunc("CyclomaticComplexity", func(ctx *visitor.Context, n Node, m M) error {
		m.MethodBody().CyclomaticComplexity = cyclomatic(n, ctx.Source)
		return nil
	})
}

// ContainingType records the type whose member holds the body.
func ContainingType[M bodied]() visitor.Visitor[Node, M] {
	return visitor.NewFunc("ContainingType", func(ctx *visitor.Context, n Node, m M) error {
		if td := enclosingType(n, ctx.Source); td != nil {
			m.MethodBody().ContainingTypeName = td.Display()
		}
		return nil
	})
}

// MethodCallInfo records the calls made by a body. Calls that cannot be
// bound are kept as extern and reported.
func MethodCallInfo[M bodied]() visitor.Visitor[Node, M] {
	return visitor.NewFunc("MethodCallInfo", func(ctx *visitor.Context, n Node, m M) error {
		calls, unresolved := binderFor(ctx).calls(n)
		m.MethodBody().CalledMethods = calls
		for _, name := range unresolved {
			ctx.Warn("%v", csferrors.NewResolutionError("method call", name).WithScope(scopeName(n, ctx.Source)))
		}
		return nil
	})
}

// AccessedFields records the fields and properties a body reads or writes.
func AccessedFields[M bodied]() visitor.Visitor[Node, M] {
	return visitor.NewFunc("AccessedFields", func(ctx *visitor.Context, n Node, m M) error {
		m.MethodBody().AccessedFields = binderFor(ctx).accessedFields(n)
		return nil
	})
}

// LocalVariableInfo binds one local declaration. The type stays empty when
// it cannot be bound.
var LocalVariableInfo = visitor.NewFunc("LocalVariableInfo", func(ctx *visitor.Context, n Node, lv *model.LocalVariable) error {
	name, t, modifier := binderFor(ctx).localVariable(n)
	lv.Name = name
	lv.Modifier = modifier
	if t != nil {
		lv.Type = t.Entity()
		lv.IsNullable = t.Nullable
	}
	return nil
})

// UnresolvedLocals reports, once per body, the locals that were dropped
// because their type could not be bound.
func UnresolvedLocals[M bodied]() visitor.Visitor[Node, M] {
	return visitor.NewFunc("UnresolvedLocals", func(ctx *visitor.Context, n Node, m M) error {
		dropped := len(localDeclarations(n, ctx.Source)) - len(m.MethodBody().LocalVariableTypes)
		if dropped > 0 {
			ctx.Warn("%v", csferrors.NewResolutionError("local variable", "").WithScope(scopeName(n, ctx.Source)).WithCount(dropped))
		}
		return nil
	})
}

// AttributeInfo binds one attribute application.
var AttributeInfo = visitor.NewFunc("AttributeInfo", func(ctx *visitor.Context, n Node, a *model.Attribute) error {
	host := n.Parent().Parent()
	target := listTarget(n.Parent(), ctx.Source)
	if target == "" {
		target = defaultTarget(host)
	}
	*a = *binderFor(ctx).attribute(n, target)
	return nil
})

// ParameterInfo sets the type, modifiers and default value of a parameter.
var ParameterInfo = visitor.NewFunc("ParameterInfo", func(ctx *visitor.Context, n Node, p *model.Parameter) error {
	b := binderFor(ctx)
	typeNode := parameterType(n)
	t := b.resolveTypeNode(typeNode)
	p.Type = entity(t, typeText(typeNode, ctx.Source))
	p.IsNullable = t != nil && t.Nullable
	p.Modifier = strings.Join(parameterModifiers(n, ctx.Source), " ")
	p.DefaultValue = parameterDefault(n, ctx.Source)
	return nil
})

// ReturnValueInfo sets the return type of a method, local function or
// delegate.
var ReturnValueInfo = visitor.NewFunc("ReturnValueInfo", func(ctx *visitor.Context, n Node, r *model.ReturnValue) error {
	typeNode := returnTypeNode(n)
	if n.Kind() == "conversion_operator_declaration" {
		typeNode = field(n, "type")
	}
	if typeNode != nil && typeNode.Kind() == "ref_type" {
		r.Modifier = "ref"
		if hasToken(typeNode, "readonly") {
			r.Modifier = "ref readonly"
		}
		if inner := field(typeNode, "type"); inner != nil {
			typeNode = inner
		} else {
			typeNode = lastNamed(typeNode)
		}
	}
	t := binderFor(ctx).resolveTypeNode(typeNode)
	r.Type = entity(t, typeText(typeNode, ctx.Source))
	r.IsNullable = t != nil && t.Nullable
	return nil
})

// GenericParameterInfo sets the name, variance and constraints of a type
// parameter.
var GenericParameterInfo = visitor.NewFunc("GenericParameterInfo", func(ctx *visitor.Context, n Node, g *model.GenericParameter) error {
	g.Name = nameOf(n, ctx.Source)
	switch {
	case hasToken(n, "in"):
		g.Modifier = "in"
	case hasToken(n, "out"):
		g.Modifier = "out"
	default:
		if v := childOfKind(n, "variance_annotation"); v != nil {
			g.Modifier = text(v, ctx.Source)
		}
	}
	b := binderFor(ctx)
	for _, c := range constraintsOf(n, ctx.Source) {
		t := field(c, "type")
		if f := firstNamed(c); t == nil && f != nil && !hasKind(f, "constructor_constraint") {
			t = f
		}
		if t == nil && !hasKind(c, "type_parameter_constraint", "constructor_constraint") {
			t = c
		}
		if t != nil {
			g.Constraints = append(g.Constraints, entity(b.resolveTypeNode(t), typeText(t, ctx.Source)))
			continue
		}
		g.Constraints = append(g.Constraints, model.NewEntityType(compact(text(c, ctx.Source)), false))
	}
	return nil
})

// constraintsOf returns the constraint nodes written for type parameter tp.
func constraintsOf(tp Node, src []byte) []Node {
	decl := tp.Parent()
	if decl != nil && decl.Kind() == "type_parameter_list" {
		decl = decl.Parent()
	}
	name := nameOf(tp, src)
	var out []Node
	for _, clause := range childrenOfKind(decl, "type_parameter_constraints_clause") {
		target := field(clause, "target")
		if target == nil {
			target = childOfKind(clause, "identifier")
		}
		if text(target, src) != name {
			continue
		}
		for _, c := range namedChildren(clause) {
			if !sameNode(c, target) && c.Kind() != "comment" {
				out = append(out, c)
			}
		}
	}
	return out
}

// EnumLabelInfo sets the name of an enum member.
var EnumLabelInfo = visitor.NewFunc("EnumLabelInfo", func(ctx *visitor.Context, n Node, l *model.EnumLabel) error {
	l.Name = nameOf(n, ctx.Source)
	return nil
})

// EnumInfo sets the underlying type of an enum.
var EnumInfo = visitor.NewFunc("EnumInfo", func(ctx *visitor.Context, n Node, e *model.Enum) error {
	b := binderFor(ctx)
	e.Type = b.keyword("int").Entity()
	if bases := baseTypeNodes(n); len(bases) > 0 {
		e.Type = entity(b.resolveTypeNode(bases[0]), typeText(bases[0], ctx.Source))
	}
	return nil
})

// BaseTypes records the base class, explicit or implied, and the
// interfaces of a type.
func BaseTypes[M headed]() visitor.Visitor[Node, M] {
	return visitor.NewFunc("BaseTypes", func(ctx *visitor.Context, n Node, m M) error {
		td := describeType(n, ctx.Source)
		h := m.Head()
		sym, ok := ctx.Model.LookupType(td.FullName(), len(td.TypeParams))
		if !ok {
			for _, t := range declaredBaseTexts(n, ctx.Source) {
				h.BaseTypes = append(h.BaseTypes, model.BaseType{Type: model.NewEntityType(t, true), Kind: model.KindClass})
			}
			return nil
		}
		base, interfaces := ctx.Model.BaseTypes(sym)
		if base != nil {
			h.BaseTypes = append(h.BaseTypes, model.BaseType{Type: base.Entity(), Kind: model.KindClass})
		}
		for _, i := range interfaces {
			h.BaseTypes = append(h.BaseTypes, model.BaseType{Type: i.Entity(), Kind: model.KindInterface})
		}
		return nil
	})
}

// FieldInfo sets the type of one declarator of a field or field-like event.
var FieldInfo = visitor.NewFunc("FieldInfo", func(ctx *visitor.Context, n Node, f *model.Field) error {
	decl := n.Parent()
	typeNode := field(decl, "type")
	t := binderFor(ctx).resolveTypeNode(typeNode)
	f.Type = entity(t, typeText(typeNode, ctx.Source))
	f.IsNullable = t != nil && t.Nullable
	f.IsEvent = hasKind(decl.Parent(), "event_field_declaration")
	if td := enclosingType(n, ctx.Source); td != nil {
		f.ContainingTypeName = td.Display()
	}
	return nil
})

// PropertyInfo sets the type of a property, indexer or event.
var PropertyInfo = visitor.NewFunc("PropertyInfo", func(ctx *visitor.Context, n Node, p *model.Property) error {
	typeNode := field(n, "type")
	t := binderFor(ctx).resolveTypeNode(typeNode)
	p.Type = entity(t, typeText(typeNode, ctx.Source))
	p.IsNullable = t != nil && t.Nullable
	p.IsEvent = n.Kind() == "event_declaration"
	if td := enclosingType(n, ctx.Source); td != nil {
		p.ContainingTypeName = td.Display()
	}
	return nil
})

// PositionalPropertyInfo describes the property a record generates for a
// primary constructor parameter. Record structs not marked readonly get a
// setter, other records an init accessor.
var PositionalPropertyInfo = visitor.NewFunc("PositionalPropertyInfo", func(ctx *visitor.Context, n Node, p *model.Property) error {
	typeNode := parameterType(n)
	t := binderFor(ctx).resolveTypeNode(typeNode)
	p.Name = parameterName(n, ctx.Source)
	p.AccessModifier = "public"
	p.Type = entity(t, typeText(typeNode, ctx.Source))
	p.IsNullable = t != nil && t.Nullable
	p.CyclomaticComplexity = 1
	if td := enclosingType(n, ctx.Source); td != nil {
		p.ContainingTypeName = td.Display()
	}

	record := ancestor(n, []string{"record_declaration", "record_struct_declaration"})
	mutator := "init"
	if semanticKind(record) == model.KindStruct && !hasModifier(record, ctx.Source, "readonly") {
		mutator = "set"
	}
	for _, name := range []string{"get", mutator} {
		acc := &model.Method{Declaration: model.Declaration{Name: name, AccessModifier: "public"}}
		acc.ContainingTypeName = p.ContainingTypeName
		acc.CyclomaticComplexity = 1
		p.Accessors = append(p.Accessors, acc)
	}
	return nil
})

// PrimaryConstructorInfo names the constructor declared by the parameter
// list after a type's name.
var PrimaryConstructorInfo = visitor.NewFunc("PrimaryConstructorInfo", func(ctx *visitor.Context, n Node, c *model.Constructor) error {
	c.Name = nameOf(n.Parent(), ctx.Source)
	c.AccessModifier = "public"
	c.CyclomaticComplexity = 1
	return nil
})

// PropertyComplexity sums the complexity of the accessors. A property
// whose accessors have no bodies counts 1.
var PropertyComplexity = visitor.NewFunc("PropertyComplexity", func(ctx *visitor.Context, n Node, p *model.Property) error {
	sum := 0
	for _, acc := range accessorNodes(n) {
		if bodyOf(acc) == nil {
			continue
		}
		sum += cyclomatic(acc, ctx.Source)
	}
	if sum == 0 {
		sum = 1
	}
	p.CyclomaticComplexity = sum
	return nil
})

// ExceptionsThrown attaches the class-level tally of thrown exception types.
var ExceptionsThrown = visitor.NewFunc("ExceptionsThrownRelation", func(ctx *visitor.Context, n Node, c *model.Class) error {
	c.AddMetric(relationMetric(model.MetricExceptionsThrown, binderFor(ctx).thrownTypes(n)))
	return nil
})

// ObjectCreation attaches the class-level tally of created object types.
var ObjectCreation = visitor.NewFunc("ObjectCreationRelation", func(ctx *visitor.Context, n Node, c *model.Class) error {
	c.AddMetric(relationMetric(model.MetricObjectCreation, binderFor(ctx).createdTypes(n)))
	return nil
})

// ImportInfo reads one using directive.
var ImportInfo = visitor.NewFunc("ImportInfo", func(ctx *visitor.Context, n Node, imp *model.Import) error {
	u := parseUsing(n, ctx.Source)
	imp.Name = u.Name
	imp.IsStatic = u.Static
	imp.Alias = u.Alias
	imp.AliasType = model.AliasNone
	if u.Alias != "" {
		scope := scopeAt(ctx.Model, n, ctx.Source)
		imp.AliasType = ctx.Model.ClassifyAlias(u.Name, scope)
	}
	return nil
})

// declName is the name recorded for a declaration node.
func declName(n Node, src []byte) string {
	switch n.Kind() {
	case "destructor_declaration":
		return "~" + nameOf(n, src)
	case "indexer_declaration":
		return "this"
	case "operator_declaration":
		return "operator " + operatorToken(n, src)
	case "conversion_operator_declaration":
		kind := "implicit"
		if hasToken(n, "explicit") {
			kind = "explicit"
		}
		return kind + " operator " + typeText(field(n, "type"), src)
	case "accessor_declaration":
		return accessorKeyword(n, src)
	case "arrow_expression_clause":
		return "get"
	}
	return nameOf(n, src)
}

// operatorToken returns the overloaded operator of an operator declaration.
func operatorToken(n Node, src []byte) string {
	if op := field(n, "operator"); op != nil {
		return text(op, src)
	}
	seen := false
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c == nil {
			continue
		}
		if seen {
			return text(c, src)
		}
		seen = !c.IsNamed() && c.Kind() == "operator"
	}
	return ""
}

var accessorKeywords = []string{"get", "set", "init", "add", "remove"}

func accessorKeyword(n Node, src []byte) string {
	if name := field(n, "name"); name != nil {
		return text(name, src)
	}
	for _, kw := range accessorKeywords {
		if hasToken(n, kw) {
			return kw
		}
	}
	return ""
}

// declAccess returns the access modifier and the other modifiers of n.
// Accessors without their own access take the property's, and local
// functions have none.
func declAccess(n Node, src []byte) (string, string) {
	switch n.Kind() {
	case "variable_declarator":
		return accessAndModifier(n.Parent().Parent(), src)
	case "local_function_statement":
		_, rest := visitor.SplitModifiers(modifiers(n, src), accessPhrases, func(a, b string) bool { return a == b })
		return "", rest
	case "accessor_declaration", "arrow_expression_clause":
		prop := ancestor(n, []string{"property_declaration", "indexer_declaration", "event_declaration"})
		propAccess, _ := accessAndModifier(prop, src)
		if n.Kind() == "arrow_expression_clause" {
			return propAccess, ""
		}
		access, rest := visitor.SplitModifiers(modifiers(n, src), accessPhrases, func(a, b string) bool { return a == b })
		if access == "" {
			access = propAccess
		}
		return access, rest
	}
	return accessAndModifier(n, src)
}

// scopeName names a body in log messages, e.g. "N.C.Run".
func scopeName(n Node, src []byte) string {
	name := declName(n, src)
	if td := enclosingType(n, src); td != nil {
		return td.Display() + "." + name
	}
	return name
}
