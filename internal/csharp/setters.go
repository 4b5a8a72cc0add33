package csharp

import (
	"github.com/standardbeagle/csfacts/internal/model"
	"github.com/standardbeagle/csfacts/internal/visitor"
)

// function is implemented by methods, constructors, destructors, accessors
// and local functions.
type function interface {
	declared
	attributed
	signed
	bodied
	counted
}

// NewCompilationUnitVisitors builds the full C# extraction pipeline rooted
// at the compilation unit.
func NewCompilationUnitVisitors() []visitor.Visitor[Node, *model.CompilationUnit] {
	locals := NewLocalFunctionSetter()

	methods := visitor.NewSetter("Method", memberChildren("method_declaration", "operator_declaration", "conversion_operator_declaration"),
		newMethod,
		func(c *model.Class, m *model.Method) { c.Methods = append(c.Methods, m) },
	)
	methods.Add(functionVisitors[*model.Method](locals)...)
	methods.Add(returnValueSetter(setMethodReturn))

	constructors := visitor.NewSetter("Constructor", memberChildren("constructor_declaration"),
		func() *model.Constructor { return &model.Constructor{} },
		func(c *model.Class, m *model.Constructor) { c.Constructors = append(c.Constructors, m) },
	)
	constructors.Add(functionVisitors[*model.Constructor](localFunctionsOf[*model.Constructor](locals))...)

	primary := visitor.NewSetter("PrimaryConstructor", primaryConstructorChildren,
		func() *model.Constructor { return &model.Constructor{} },
		func(c *model.Class, m *model.Constructor) { c.Constructors = append(c.Constructors, m) },
	).Add(
		PrimaryConstructorInfo,
		ContainingType[*model.Constructor](),
		LinesOfCode[*model.Constructor](),
		parameterSetter[*model.Constructor](),
	)

	destructor := visitor.NewSetter("Destructor", memberChildren("destructor_declaration"),
		func() *model.Destructor { return &model.Destructor{} },
		func(c *model.Class, d *model.Destructor) { c.Destructor = d },
	)
	destructor.Add(functionVisitors[*model.Destructor](localFunctionsOf[*model.Destructor](locals))...)

	accessors := visitor.NewSetter("Accessor", accessorChildren,
		newMethod,
		func(p *model.Property, m *model.Method) { p.Accessors = append(p.Accessors, m) },
	)
	accessors.Add(functionVisitors[*model.Method](locals)...)

	properties := visitor.NewSetter("Property", memberChildren("property_declaration", "indexer_declaration", "event_declaration"),
		func() *model.Property { return &model.Property{} },
		func(c *model.Class, p *model.Property) { c.Properties = append(c.Properties, p) },
	).Add(
		BaseInfo[*model.Property](),
		PropertyInfo,
		LinesOfCode[*model.Property](),
		attributeSetter[*model.Property](attributeChildren),
		accessors,
		PropertyComplexity,
	)

	positional := visitor.NewSetter("PositionalProperty", positionalPropertyChildren,
		func() *model.Property { return &model.Property{} },
		func(c *model.Class, p *model.Property) { c.Properties = append(c.Properties, p) },
	).Add(
		PositionalPropertyInfo,
		LinesOfCode[*model.Property](),
		attributeSetter[*model.Property](propertyAttributeChildren),
	)

	fields := visitor.NewSetter("Field", fieldChildren,
		func() *model.Field { return &model.Field{} },
		func(c *model.Class, f *model.Field) { c.Fields = append(c.Fields, f) },
	).Add(
		BaseInfo[*model.Field](),
		FieldInfo,
		attributeSetter[*model.Field](attributeChildren),
	)

	classes := visitor.NewSetter[Node, *model.CompilationUnit, Node, *model.Class]("Class", typeDeclarationChildren,
		func() *model.Class { return &model.Class{} },
		func(cu *model.CompilationUnit, c *model.Class) { cu.ClassTypes = append(cu.ClassTypes, c) },
	).Add(
		BaseInfo[*model.Class](),
		TypeInfo[*model.Class](),
		LinesOfCode[*model.Class](),
		attributeSetter[*model.Class](attributeChildren),
		genericParameterSetter(headGenerics[*model.Class]),
		BaseTypes[*model.Class](),
		fields,
		positional,
		properties,
		primary,
		constructors,
		methods,
		destructor,
		ExceptionsThrown,
		ObjectCreation,
	)

	labels := visitor.NewSetter("EnumLabel", enumLabelChildren,
		func() *model.EnumLabel { return &model.EnumLabel{} },
		func(e *model.Enum, l *model.EnumLabel) { e.Labels = append(e.Labels, l) },
	).Add(
		EnumLabelInfo,
		attributeSetter[*model.EnumLabel](attributeChildren),
	)

	enums := visitor.NewSetter[Node, *model.CompilationUnit, Node, *model.Enum]("Enum", typeDeclarationChildren,
		func() *model.Enum { return &model.Enum{} },
		func(cu *model.CompilationUnit, e *model.Enum) { cu.ClassTypes = append(cu.ClassTypes, e) },
	).Add(
		BaseInfo[*model.Enum](),
		TypeInfo[*model.Enum](),
		LinesOfCode[*model.Enum](),
		attributeSetter[*model.Enum](attributeChildren),
		BaseTypes[*model.Enum](),
		EnumInfo,
		labels,
	)

	delegates := visitor.NewSetter[Node, *model.CompilationUnit, Node, *model.Delegate]("Delegate", typeDeclarationChildren,
		func() *model.Delegate { return &model.Delegate{} },
		func(cu *model.CompilationUnit, d *model.Delegate) { cu.ClassTypes = append(cu.ClassTypes, d) },
	).Add(
		BaseInfo[*model.Delegate](),
		TypeInfo[*model.Delegate](),
		LinesOfCode[*model.Delegate](),
		attributeSetter[*model.Delegate](attributeChildren),
		genericParameterSetter(headGenerics[*model.Delegate]),
		BaseTypes[*model.Delegate](),
		parameterSetter[*model.Delegate](),
		returnValueSetter(func(d *model.Delegate, r *model.ReturnValue) { d.ReturnValue = r }),
	)

	classTypes := visitor.NewDispatch("ClassType", typeDeclarationChildren,
		enums.Route(func(n Node) bool { return n.Kind() == "enum_declaration" }),
		delegates.Route(func(n Node) bool { return n.Kind() == "delegate_declaration" }),
		classes.Route(func(n Node) bool { return hasKind(n, classKinds...) }),
	)

	imports := visitor.NewSetter("Import", importChildren,
		func() *model.Import { return &model.Import{} },
		func(cu *model.CompilationUnit, imp *model.Import) { cu.Imports = append(cu.Imports, imp) },
	).Add(ImportInfo)

	return []visitor.Visitor[Node, *model.CompilationUnit]{
		FileLinesOfCode,
		imports,
		classTypes,
	}
}

// NewLocalFunctionSetter builds the setter for local functions, which
// contains itself for nested local functions.
func NewLocalFunctionSetter() *visitor.Setter[Node, *model.Method, Node, *model.Method] {
	locals := visitor.NewSetter("LocalFunction", localFunctionChildren,
		newMethod,
		func(parent *model.Method, m *model.Method) { parent.LocalFunctions = append(parent.LocalFunctions, m) },
	)
	locals.Add(functionVisitors[*model.Method](locals)...)
	locals.Add(returnValueSetter(setMethodReturn))
	return locals
}

// localFunctionsOf reuses the local function pipeline under another parent.
func localFunctionsOf[M bodied](locals *visitor.Setter[Node, *model.Method, Node, *model.Method]) visitor.Visitor[Node, M] {
	s := visitor.NewSetter("LocalFunction", localFunctionChildren,
		newMethod,
		func(parent M, m *model.Method) {
			b := parent.MethodBody()
			b.LocalFunctions = append(b.LocalFunctions, m)
		},
	)
	s.Visitors = locals.Visitors
	return s
}

func functionVisitors[M function](locals visitor.Visitor[Node, M]) []visitor.Visitor[Node, M] {
	return []visitor.Visitor[Node, M]{
		BaseInfo[M](),
		ContainingType[M](),
		LinesOfCode[M](),
		CyclomaticComplexity[M](),
		attributeSetter[M](attributeChildren),
		parameterSetter[M](),
		genericParameterSetter(sigGenerics[M]),
		MethodCallInfo[M](),
		AccessedFields[M](),
		localVariableSetter[M](),
		UnresolvedLocals[M](),
		locals,
	}
}

func attributeSetter[M attributed](children func(*visitor.Context, Node) []Node) visitor.Visitor[Node, M] {
	return visitor.NewSetter("Attribute", children,
		func() *model.Attribute { return &model.Attribute{} },
		func(m M, a *model.Attribute) {
			s := m.Attrs()
			s.Attributes = append(s.Attributes, a)
		},
	).Add(AttributeInfo)
}

func parameterSetter[M signed]() visitor.Visitor[Node, M] {
	return visitor.NewSetter("Parameter", parameterChildren,
		func() *model.Parameter { return &model.Parameter{} },
		func(m M, p *model.Parameter) {
			s := m.Sig()
			s.Parameters = append(s.Parameters, p)
		},
	).Add(
		ParameterInfo,
		attributeSetter[*model.Parameter](parameterAttributeChildren),
	)
}

func genericParameterSetter[M any](attach func(M, *model.GenericParameter)) visitor.Visitor[Node, M] {
	return visitor.NewSetter("GenericParameter", typeParameterChildren,
		func() *model.GenericParameter { return &model.GenericParameter{} },
		attach,
	).Add(
		GenericParameterInfo,
		attributeSetter[*model.GenericParameter](attributeChildren),
	)
}

func sigGenerics[M signed](m M, g *model.GenericParameter) {
	s := m.Sig()
	s.GenericParameters = append(s.GenericParameters, g)
}

func headGenerics[M headed](m M, g *model.GenericParameter) {
	h := m.Head()
	h.GenericParameters = append(h.GenericParameters, g)
}

func returnValueSetter[M any](attach func(M, *model.ReturnValue)) visitor.Visitor[Node, M] {
	return visitor.NewSetter("ReturnValue", returnChildren,
		func() *model.ReturnValue { return &model.ReturnValue{} },
		attach,
	).Add(
		ReturnValueInfo,
		attributeSetter[*model.ReturnValue](returnAttributeChildren),
	)
}

func localVariableSetter[M bodied]() visitor.Visitor[Node, M] {
	return visitor.NewSetter("LocalVariable", localChildren,
		func() *model.LocalVariable { return &model.LocalVariable{} },
		func(m M, lv *model.LocalVariable) {
			if lv.Type.IsZero() {
				return
			}
			b := m.MethodBody()
			b.LocalVariableTypes = append(b.LocalVariableTypes, lv)
		},
	).Add(LocalVariableInfo)
}

func newMethod() *model.Method { return &model.Method{} }

func setMethodReturn(m *model.Method, r *model.ReturnValue) { m.ReturnValue = r }

// FileLinesOfCode counts every line of the file.
var FileLinesOfCode = visitor.NewFunc("LinesOfCode", func(ctx *visitor.Context, _ Node, cu *model.CompilationUnit) error {
	cu.LinesOfCode = lineCounter.Count(string(ctx.Source))
	return nil
})
