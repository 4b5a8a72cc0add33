package visualbasic

import (
	"strings"

	csferrors "github.com/standardbeagle/csfacts/internal/errors"
	"github.com/standardbeagle/csfacts/internal/loc"
	"github.com/standardbeagle/csfacts/internal/model"
	"github.com/standardbeagle/csfacts/internal/visitor"
)

type (
	declared   interface{ Decl() *model.Declaration }
	attributed interface{ Attrs() *model.AttributeSet }
	signed     interface{ Sig() *model.Signature }
	bodied     interface{ MethodBody() *model.Body }
	counted    interface{ Lines() *model.LinesOfCode }
	headed     interface{ Head() *model.TypeHeader }
)

var lineCounter = loc.NewCounter(loc.VisualBasic)

func binderFor(ctx *visitor.Context) *binder {
	return newBinder(ctx.Model)
}

// BaseInfo sets the name, access modifier and other modifiers.
func BaseInfo[M declared]() visitor.Visitor[*Node, M] {
	return visitor.NewFunc("BaseInfo", func(ctx *visitor.Context, n *Node, m M) error {
		d := m.Decl()
		d.Name = declName(n)
		d.AccessModifier, d.Modifier = declAccess(n)
		return nil
	})
}

// TypeInfo sets the qualified name, kind and containers of a type.
func TypeInfo[M headed]() visitor.Visitor[*Node, M] {
	return visitor.NewFunc("TypeInfo", func(ctx *visitor.Context, n *Node, m M) error {
		td := describeType(n)
		h := m.Head()
		h.Name = td.Display()
		h.ClassType = semanticKind(n)
		h.FilePath = ctx.Path
		h.ContainingNamespaceName = td.Namespace
		if td.Containing != nil {
			h.ContainingClassName = td.Containing.Display()
		}
		return nil
	})
}

// LinesOfCode counts the lines of the node's own span.
func LinesOfCode[M counted]() visitor.Visitor[*Node, M] {
	return visitor.NewFunc("LinesOfCode", func(ctx *visitor.Context, n *Node, m M) error {
		*m.Lines() = lineCounter.CountSpan(ctx.Source, n.Start, n.End)
		return nil
	})
}

func CyclomaticComplexity[M bodied]() visitor.Visitor[*Node, M] {
	return visitor.NewFunc("CyclomaticComplexity", func(_ *visitor.Context, n *Node, m M) error {
		m.MethodBody().CyclomaticComplexity = cyclomatic(n)
		return nil
	})
}

func ContainingType[M bodied]() visitor.Visitor[*Node, M] {
	return visitor.NewFunc("ContainingType", func(_ *visitor.Context, n *Node, m M) error {
		if td := enclosingType(n); td != nil {
			m.MethodBody().ContainingTypeName = td.Display()
		}
		return nil
	})
}

// MethodCallInfo records the calls made by a body. Calls that cannot be
// bound are kept as extern and reported.
func MethodCallInfo[M bodied]() visitor.Visitor[*Node, M] {
	return visitor.NewFunc("MethodCallInfo", func(ctx *visitor.Context, n *Node, m M) error {
		calls, unresolved := binderFor(ctx).calls(n)
		m.MethodBody().CalledMethods = calls
		for _, name := range unresolved {
			ctx.Warn("%v", csferrors.NewResolutionError("method call", name).WithScope(scopeName(n)))
		}
		return nil
	})
}

func AccessedFields[M bodied]() visitor.Visitor[*Node, M] {
	return visitor.NewFunc("AccessedFields", func(ctx *visitor.Context, n *Node, m M) error {
		m.MethodBody().AccessedFields = binderFor(ctx).accessedFields(n)
		return nil
	})
}

// LocalVariableInfo binds one local declaration. The type stays empty when
// it cannot be bound.
var LocalVariableInfo = visitor.NewFunc("LocalVariableInfo", func(ctx *visitor.Context, n *Node, lv *model.LocalVariable) error {
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
func UnresolvedLocals[M bodied]() visitor.Visitor[*Node, M] {
	return visitor.NewFunc("UnresolvedLocals", func(ctx *visitor.Context, n *Node, m M) error {
		dropped := len(binderFor(ctx).localDeclarations(n)) - len(m.MethodBody().LocalVariableTypes)
		if dropped > 0 {
			ctx.Warn("%v", csferrors.NewResolutionError("local variable", "").WithScope(scopeName(n)).WithCount(dropped))
		}
		return nil
	})
}

var AttributeInfo = visitor.NewFunc("AttributeInfo", func(ctx *visitor.Context, n *Node, a *model.Attribute) error {
	*a = *binderFor(ctx).attribute(n, attributeTarget(n))
	return nil
})

// ParameterInfo sets the type, modifiers and default value of a parameter.
// ByVal is the default passing mode and is not recorded.
var ParameterInfo = visitor.NewFunc("ParameterInfo", func(ctx *visitor.Context, n *Node, p *model.Parameter) error {
	t := binderFor(ctx).parameterType(n)
	p.Type = entity(t, n.typ)
	p.IsNullable = t != nil && t.Nullable
	p.Modifier = strings.Join(n.modifiers, " ")
	p.DefaultValue = tokenText(n.value)
	return nil
})

// ReturnValueInfo sets the return type of a Function, Operator or delegate.
// Subs return System.Void.
var ReturnValueInfo = visitor.NewFunc("ReturnValueInfo", func(ctx *visitor.Context, n *Node, r *model.ReturnValue) error {
	written := returnTypeText(n)
	t := binderFor(ctx).resolve(written, n)
	r.Type = entity(t, written)
	r.IsNullable = t != nil && t.Nullable
	return nil
})

// GenericParameterInfo sets the name, variance and constraints of a type
// parameter. Class, Structure and New constraints are kept as written.
var GenericParameterInfo = visitor.NewFunc("GenericParameterInfo", func(ctx *visitor.Context, n *Node, g *model.GenericParameter) error {
	g.Name = n.Name
	g.Modifier = n.variance
	b := binderFor(ctx)
	for _, c := range n.constraints {
		if strings.EqualFold(c, "Class") || strings.EqualFold(c, "Structure") || strings.EqualFold(c, "New") {
			g.Constraints = append(g.Constraints, model.NewEntityType(c, false))
			continue
		}
		g.Constraints = append(g.Constraints, entity(b.resolve(c, n.Parent), c))
	}
	return nil
})

var EnumLabelInfo = visitor.NewFunc("EnumLabelInfo", func(_ *visitor.Context, n *Node, l *model.EnumLabel) error {
	l.Name = n.Name
	return nil
})

// EnumInfo sets the underlying type of an enum, Integer when not written.
var EnumInfo = visitor.NewFunc("EnumInfo", func(ctx *visitor.Context, n *Node, e *model.Enum) error {
	b := binderFor(ctx)
	e.Type = b.keyword("Integer").Entity()
	if n.typ != "" {
		e.Type = entity(b.resolve(n.typ, n), n.typ)
	}
	return nil
})

// BaseTypes records the base class, explicit or implied, and the
// interfaces of a type.
func BaseTypes[M headed]() visitor.Visitor[*Node, M] {
	return visitor.NewFunc("BaseTypes", func(ctx *visitor.Context, n *Node, m M) error {
		td := describeType(n)
		h := m.Head()
		sym, ok := ctx.Model.LookupType(td.FullName(), len(td.TypeParams))
		if !ok {
			for _, t := range declaredBaseTexts(n) {
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

// FieldInfo sets the type of one declarator of a field or an event
// declared without accessors.
var FieldInfo = visitor.NewFunc("FieldInfo", func(ctx *visitor.Context, n *Node, f *model.Field) error {
	decl := n.Parent
	written := declaratorTypeText(n)
	if decl.event {
		written = eventTypeText(decl)
	}
	t := binderFor(ctx).resolve(written, n)
	f.Type = entity(t, written)
	f.IsNullable = t != nil && t.Nullable
	f.IsEvent = decl.event
	if td := enclosingType(n); td != nil {
		f.ContainingTypeName = td.Display()
	}
	return nil
})

// PropertyInfo sets the type of a property or custom event.
var PropertyInfo = visitor.NewFunc("PropertyInfo", func(ctx *visitor.Context, n *Node, p *model.Property) error {
	written := valueTypeText(n)
	if n.Kind == KindEvent {
		written = eventTypeText(n)
	}
	t := binderFor(ctx).resolve(written, n)
	p.Type = entity(t, written)
	p.IsNullable = t != nil && t.Nullable
	p.IsEvent = n.Kind == KindEvent
	if td := enclosingType(n); td != nil {
		p.ContainingTypeName = td.Display()
	}
	return nil
})

// PropertyComplexity sums the complexity of the accessors. A property
// without accessor blocks counts 1.
var PropertyComplexity = visitor.NewFunc("PropertyComplexity", func(_ *visitor.Context, n *Node, p *model.Property) error {
	sum := 0
	for _, acc := range accessorNodes(n) {
		sum += cyclomatic(acc)
	}
	if sum == 0 {
		sum = 1
	}
	p.CyclomaticComplexity = sum
	return nil
})

// ExceptionsThrown attaches the class-level tally of thrown exception types.
var ExceptionsThrown = visitor.NewFunc("ExceptionsThrownRelation", func(ctx *visitor.Context, n *Node, c *model.Class) error {
	c.AddMetric(relationMetric(model.MetricExceptionsThrown, binderFor(ctx).thrownTypes(n)))
	return nil
})

// ObjectCreation attaches the class-level tally of created object types.
var ObjectCreation = visitor.NewFunc("ObjectCreationRelation", func(ctx *visitor.Context, n *Node, c *model.Class) error {
	c.AddMetric(relationMetric(model.MetricObjectCreation, binderFor(ctx).createdTypes(n)))
	return nil
})

// ImportInfo reads one clause of an Imports statement. Importing a type
// brings its shared members into scope and is recorded as static.
var ImportInfo = visitor.NewFunc("ImportInfo", func(ctx *visitor.Context, n *Node, imp *model.Import) error {
	imp.Name = n.Name
	imp.Alias = n.alias
	imp.AliasType = model.AliasNone
	scope := scopeAt(ctx.Model, n)
	if n.alias != "" {
		imp.AliasType = ctx.Model.ClassifyAlias(n.Name, scope)
		return nil
	}
	if t := ctx.Model.ResolveType(n.Name, scope); t != nil && !t.IsExtern() && !ctx.Model.IsNamespace(n.Name) {
		imp.IsStatic = true
	}
	return nil
})

// eventTypeText is the written delegate type of an event; events declared
// with a parameter list use their implicit NameEventHandler delegate.
func eventTypeText(n *Node) string {
	if n.typ != "" {
		return n.typ
	}
	return n.Name + "EventHandler"
}

// declName is the name recorded for a declaration node. Constructors take
// the name of their type.
func declName(n *Node) string {
	switch {
	case n.Kind == KindOperator:
		return "Operator " + n.Name
	case isConstructor(n):
		if td := enclosingType(n); td != nil {
			return td.Name
		}
	}
	return n.Name
}

// scopeName names a body in log messages, e.g. "N.C.Run".
func scopeName(n *Node) string {
	name := declName(n)
	if td := enclosingType(n); td != nil {
		return td.Display() + "." + name
	}
	return name
}
