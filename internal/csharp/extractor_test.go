package csharp

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	csferrors "github.com/standardbeagle/csfacts/internal/errors"
	"github.com/standardbeagle/csfacts/internal/logging"
	"github.com/standardbeagle/csfacts/internal/model"
)

func extract(t *testing.T, src string) (*model.CompilationUnit, *logging.Recorder) {
	t.Helper()
	rec := &logging.Recorder{}
	cu, err := NewFactExtractor(rec).ExtractSource("test.cs", src)
	require.NoError(t, err)
	return cu, rec
}

func extractFile(t *testing.T, name string) (*model.CompilationUnit, *logging.Recorder) {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return extract(t, string(data))
}

func class(t *testing.T, cu *model.CompilationUnit, name string) *model.Class {
	t.Helper()
	ct := cu.Class(name)
	require.NotNil(t, ct, "class %s", name)
	c, ok := ct.(*model.Class)
	require.True(t, ok, "%s is %T", name, ct)
	return c
}

func method(t *testing.T, c *model.Class, name string) *model.Method {
	t.Helper()
	for _, m := range c.Methods {
		if m.Name == name {
			return m
		}
	}
	require.Failf(t, "method not found", "%s.%s", c.Name, name)
	return nil
}

func TestExtractEmptySourceFails(t *testing.T) {
	_, err := NewFactExtractor(nil).ExtractSource("empty.cs", "  \n\t")
	require.Error(t, err)
	assert.True(t, csferrors.IsParseError(err))
}

func TestComplexityWithoutBranches(t *testing.T) {
	cu, _ := extractFile(t, "Complexity.cs")
	c := class(t, cu, "Shapes.Counter")
	require.Len(t, c.Constructors, 1)
	assert.Equal(t, 1, c.Constructors[0].CyclomaticComplexity)
	assert.Equal(t, 1, method(t, c, "Next").CyclomaticComplexity)
}

func TestComplexityWithLoop(t *testing.T) {
	cu, _ := extractFile(t, "ComplexityLoop.cs")
	c := class(t, cu, "Shapes.Counter")
	assert.Equal(t, 1, c.Constructors[0].CyclomaticComplexity)
	assert.Equal(t, 2, method(t, c, "Next").CyclomaticComplexity)
}

func TestComplexityDecisionPoints(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"if else if", "if (a) { } else if (b) { } else { }", 3},
		{"short circuit", "var x = a && b || c;", 3},
		{"conditional", "var x = a ? 1 : 2;", 2},
		{"coalesce", "string s = null; var y = s ?? \"\";", 2},
		{"for and foreach", "for (int i = 0; i < 3; i++) { } foreach (var ch in \"ab\") { }", 3},
		{"do while", "do { } while (a);", 2},
		{"switch labels", "switch (n) { case 1: break; case 2: case 3: break; default: break; }", 4},
		{"catch clauses", "try { } catch (System.ArgumentException) { } catch { }", 3},
		{"switch expression", "var s = n switch { 1 => \"a\", 2 => \"b\", _ => \"c\" };", 3},
		{"nested depth is irrelevant", "if (a) { if (b) { while (c) { } } }", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "class C { void M(bool a, bool b, bool c, int n) { " + tt.body + " } }"
			cu, _ := extract(t, src)
			assert.Equal(t, tt.want, method(t, class(t, cu, "C"), "M").CyclomaticComplexity)
		})
	}
}

func TestLocalFunctionsHaveTheirOwnComplexity(t *testing.T) {
	src := `class C
{
    void M(bool a)
    {
        if (a) { }
        int Twice(int x)
        {
            if (x > 0) { return x * 2; }
            return 0;
        }
    }
}`
	cu, _ := extract(t, src)
	m := method(t, class(t, cu, "C"), "M")
	assert.Equal(t, 2, m.CyclomaticComplexity)
	require.Len(t, m.LocalFunctions, 1)
	local := m.LocalFunctions[0]
	assert.Equal(t, "Twice", local.Name)
	assert.Equal(t, 2, local.CyclomaticComplexity)
	require.NotNil(t, local.ReturnValue)
	assert.Equal(t, "int", local.ReturnValue.Type.Name)
	require.Len(t, local.Parameters, 1)
	assert.Equal(t, "int", local.Parameters[0].Type.Name)
}

func TestImports(t *testing.T) {
	cu, _ := extractFile(t, "Imports.cs")
	require.Len(t, cu.Imports, 6)

	want := []struct {
		name      string
		alias     string
		aliasType model.AliasType
	}{
		{"System", "", model.AliasNone},
		{"System.Collections.Generic", "", model.AliasNone},
		{"System.Linq", "", model.AliasNone},
		{"System.Text", "", model.AliasNone},
		{"System.IO", "IO", model.AliasNamespace},
		{"System.Text.StringBuilder", "Builder", model.AliasClass},
	}
	for i, w := range want {
		imp := cu.Imports[i]
		assert.Equal(t, w.name, imp.Name, "import %d", i)
		assert.Equal(t, w.alias, imp.Alias, "import %d", i)
		assert.Equal(t, w.aliasType, imp.AliasType, "import %d", i)
	}
}

func TestStaticImport(t *testing.T) {
	cu, _ := extract(t, "using static System.Math;\nclass C { double M() => Max(1.0, 2.0); }")
	require.Len(t, cu.Imports, 1)
	assert.True(t, cu.Imports[0].IsStatic)
	assert.Equal(t, "System.Math", cu.Imports[0].Name)
}

func TestExceptionsThrownRelation(t *testing.T) {
	cu, _ := extractFile(t, "Exceptions.cs")
	c := class(t, cu, "Validation.Guard")

	metric, ok := c.Metric(model.MetricExceptionsThrown)
	require.True(t, ok)
	counts, ok := metric.RelationValue()
	require.True(t, ok)
	assert.Equal(t, map[string]int{
		"System.ArgumentNullException":    1,
		"System.ArgumentException":        1,
		"System.IndexOutOfRangeException": 1,
	}, counts)
}

func TestRethrowTakesCaughtType(t *testing.T) {
	src := `using System;
class C
{
    void M()
    {
        try { }
        catch (InvalidOperationException)
        {
            throw;
        }
    }

    void N()
    {
        try { }
        catch
        {
            throw;
        }
    }
}`
	cu, _ := extract(t, src)
	metric, ok := class(t, cu, "C").Metric(model.MetricExceptionsThrown)
	require.True(t, ok)
	counts, _ := metric.RelationValue()
	assert.Equal(t, map[string]int{
		"System.InvalidOperationException": 1,
		"System.Exception":                 1,
	}, counts)
}

func TestObjectCreationRelation(t *testing.T) {
	src := `using System.Collections.Generic;
using System.Text;
class C
{
    private List<int> _items = new List<int>();

    void M()
    {
        var sb = new StringBuilder();
        var other = new StringBuilder();
        var numbers = new int[3];
    }
}`
	cu, _ := extract(t, src)
	metric, ok := class(t, cu, "C").Metric(model.MetricObjectCreation)
	require.True(t, ok)
	counts, _ := metric.RelationValue()
	assert.Equal(t, 1, counts["System.Collections.Generic.List<int>"])
	assert.Equal(t, 2, counts["System.Text.StringBuilder"])
	assert.Equal(t, 1, counts["int[]"])
}

func TestRelationsStayWithTheirClass(t *testing.T) {
	src := `using System;
class Outer
{
    void M() { throw new InvalidOperationException(); }

    class Inner
    {
        void N() { throw new ArgumentException(); }
    }
}`
	cu, _ := extract(t, src)
	require.Len(t, cu.ClassTypes, 2)
	assert.Equal(t, "Outer", cu.ClassTypes[0].Head().Name)
	assert.Equal(t, "Outer.Inner", cu.ClassTypes[1].Head().Name)
	assert.Equal(t, "Outer", cu.ClassTypes[1].Head().ContainingClassName)

	outer, _ := class(t, cu, "Outer").Metric(model.MetricExceptionsThrown)
	counts, _ := outer.RelationValue()
	assert.Equal(t, map[string]int{"System.InvalidOperationException": 1}, counts)

	inner, _ := class(t, cu, "Outer.Inner").Metric(model.MetricExceptionsThrown)
	counts, _ = inner.RelationValue()
	assert.Equal(t, map[string]int{"System.ArgumentException": 1}, counts)
}

func TestAttributeOrder(t *testing.T) {
	sources := []string{
		"using System;\n[Serializable][Obsolete(\"old\")]\nclass C { }",
		"using System;\n[Serializable]\n[Obsolete(\"old\")]\nclass C { }",
		"using System;\n[Serializable, Obsolete(\"old\")]\nclass C { }",
	}
	for _, src := range sources {
		cu, _ := extract(t, src)
		attrs := class(t, cu, "C").Attributes
		require.Len(t, attrs, 2, src)
		assert.Equal(t, "System.SerializableAttribute", attrs[0].Type.Name)
		assert.Equal(t, "System.ObsoleteAttribute", attrs[1].Type.Name)
		assert.Equal(t, model.TargetType, attrs[0].Target)
		require.Len(t, attrs[1].Parameters, 1)
		assert.Equal(t, "string", attrs[1].Parameters[0].Type.Name)
	}
}

func TestAttributeTargets(t *testing.T) {
	src := `using System;
class C
{
    [NonSerialized] private int _a;

    [Obsolete]
    [return: NotMapped]
    public int M([Custom] int x) => x;

    [Obsolete] public int P { get; set; }
}`
	cu, _ := extract(t, src)
	c := class(t, cu, "C")

	require.Len(t, c.Fields, 1)
	require.Len(t, c.Fields[0].Attributes, 1)
	assert.Equal(t, model.TargetField, c.Fields[0].Attributes[0].Target)
	assert.Equal(t, "System.NonSerializedAttribute", c.Fields[0].Attributes[0].Type.Name)

	m := method(t, c, "M")
	require.Len(t, m.Attributes, 1)
	assert.Equal(t, model.TargetMethod, m.Attributes[0].Target)
	require.NotNil(t, m.ReturnValue)
	require.Len(t, m.ReturnValue.Attributes, 1)
	ret := m.ReturnValue.Attributes[0]
	assert.Equal(t, model.TargetReturn, ret.Target)
	assert.Equal(t, "NotMapped", ret.Type.Name)
	assert.True(t, ret.Type.IsExtern)

	require.Len(t, m.Parameters, 1)
	require.Len(t, m.Parameters[0].Attributes, 1)
	assert.Equal(t, model.TargetParam, m.Parameters[0].Attributes[0].Target)

	require.Len(t, c.Properties, 1)
	require.Len(t, c.Properties[0].Attributes, 1)
	assert.Equal(t, model.TargetProperty, c.Properties[0].Attributes[0].Target)
}

func TestLinesOfCodeNest(t *testing.T) {
	src := `// header
namespace N
{
    /* block
       comment */
    public class C
    {

        public void M()
        {
            int x = 1; // trailing
        }
    }
}
`
	cu, _ := extract(t, src)
	lines := strings.Count(src, "\n")
	assert.Equal(t, lines, cu.LinesOfCode.Total())

	c := class(t, cu, "N.C")
	m := method(t, c, "M")
	assert.Equal(t, 4, m.LinesOfCode.Total())
	assert.Equal(t, 4, m.LinesOfCode.SourceLines)
	assert.Equal(t, 8, c.LinesOfCode.Total())
	assert.Equal(t, 1, c.LinesOfCode.EmptyLines)
	assert.LessOrEqual(t, m.LinesOfCode.Total(), c.LinesOfCode.Total())
	assert.LessOrEqual(t, c.LinesOfCode.Total(), cu.LinesOfCode.Total())
	assert.Equal(t, 3, cu.LinesOfCode.CommentedLines)
}

func TestMethodCalls(t *testing.T) {
	src := `using System;
namespace N
{
    class A
    {
        protected void Log(string message) { }
    }

    class B : A
    {
        void Run()
        {
            Log("a");
            base.Log("b");
            Console.ReadLine();
            Missing.Call(1);
        }
    }
}`
	cu, rec := extract(t, src)
	calls := method(t, class(t, cu, "N.B"), "Run").CalledMethods
	require.Len(t, calls, 4)

	assert.Equal(t, "Log", calls[0].Name)
	assert.Equal(t, "N.A", calls[0].DefinitionClassName)
	assert.Equal(t, "N.B", calls[0].LocationClassName)
	require.Len(t, calls[0].ParameterTypes, 1)
	assert.Equal(t, "string", calls[0].ParameterTypes[0].Name)

	assert.Equal(t, "N.A", calls[1].DefinitionClassName)
	assert.Equal(t, "N.A", calls[1].LocationClassName)

	assert.Equal(t, "ReadLine", calls[2].Name)
	assert.Equal(t, "System.Console", calls[2].DefinitionClassName)
	assert.False(t, calls[2].IsExtern)

	assert.Equal(t, "Call", calls[3].Name)
	assert.True(t, calls[3].IsExtern)
	assert.Equal(t, "Missing", calls[3].LocationClassName)
	assert.Equal(t, 1, rec.Count(logging.LevelWarn, "method call Call"))
}

func TestConstructorInitializerIsACall(t *testing.T) {
	src := `class A { public A(int x) { } }
class B : A { public B() : base(1) { } }`
	cu, _ := extract(t, src)
	b := class(t, cu, "B")
	require.Len(t, b.Constructors, 1)
	calls := b.Constructors[0].CalledMethods
	require.Len(t, calls, 1)
	assert.Equal(t, "A", calls[0].DefinitionClassName)
	assert.False(t, calls[0].IsExtern)
}

func TestAccessedFields(t *testing.T) {
	src := `class C
{
    private int _count;
    public int Total { get; set; }

    void M(C other)
    {
        _count++;
        var x = _count;
        this.Total = x;
        other.Total = 1;
    }
}`
	cu, _ := extract(t, src)
	fields := method(t, class(t, cu, "C"), "M").AccessedFields
	require.Len(t, fields, 4)

	assert.Equal(t, model.AccessedField{Name: "_count", DefinitionClassName: "C", LocationClassName: "C", Kind: model.AccessSetter}, fields[0])
	assert.Equal(t, model.AccessGetter, fields[1].Kind)
	assert.Equal(t, "Total", fields[2].Name)
	assert.Equal(t, model.AccessSetter, fields[2].Kind)
	assert.Equal(t, model.AccessSetter, fields[3].Kind)
}

func TestLocalVariables(t *testing.T) {
	src := `using System.Collections.Generic;
class C
{
    void M(IEnumerable<string> names)
    {
        var items = new List<int>();
        const int limit = 3;
        int? maybe = null;
        foreach (var name in names) { }
        var unknown = Missing.Build();
    }
}`
	cu, rec := extract(t, src)
	locals := method(t, class(t, cu, "C"), "M").LocalVariableTypes
	require.Len(t, locals, 4)

	assert.Equal(t, "items", locals[0].Name)
	assert.Equal(t, "System.Collections.Generic.List<int>", locals[0].Type.Name)
	assert.Equal(t, "limit", locals[1].Name)
	assert.Equal(t, "const", locals[1].Modifier)
	assert.Equal(t, "maybe", locals[2].Name)
	assert.True(t, locals[2].IsNullable)
	assert.Equal(t, "name", locals[3].Name)
	assert.Equal(t, "string", locals[3].Type.Name)

	assert.Equal(t, 1, rec.Count(logging.LevelWarn, "local variable"))
}

func TestOutVariableTakesParameterType(t *testing.T) {
	src := `class C
{
    void M()
    {
        int.TryParse("1", out var n);
        Parse(out var s);
    }

    void Parse(out string value) { value = ""; }
}`
	cu, _ := extract(t, src)
	locals := method(t, class(t, cu, "C"), "M").LocalVariableTypes
	require.Len(t, locals, 2)
	assert.Equal(t, "n", locals[0].Name)
	assert.Equal(t, "s", locals[1].Name)
	assert.Equal(t, "string", locals[1].Type.Name)
}

func TestProperties(t *testing.T) {
	src := `class C
{
    private int _v;
    public int Auto { get; set; }
    public int Arrow => _v * 2;
    public int Checked
    {
        get { return _v; }
        set { if (value > 0) { _v = value; } }
    }
}`
	cu, _ := extract(t, src)
	props := class(t, cu, "C").Properties
	require.Len(t, props, 3)

	assert.Equal(t, 1, props[0].CyclomaticComplexity)
	require.Len(t, props[0].Accessors, 2)
	assert.Equal(t, "get", props[0].Accessors[0].Name)
	assert.Equal(t, "set", props[0].Accessors[1].Name)
	assert.Equal(t, "public", props[0].Accessors[0].AccessModifier)

	require.Len(t, props[1].Accessors, 1)
	assert.Equal(t, "get", props[1].Accessors[0].Name)
	assert.Equal(t, 1, props[1].CyclomaticComplexity)

	assert.Equal(t, 3, props[2].CyclomaticComplexity)
	set := props[2].Accessors[1]
	assert.Equal(t, 2, set.CyclomaticComplexity)
	require.NotEmpty(t, set.AccessedFields)
	assert.Equal(t, "_v", set.AccessedFields[len(set.AccessedFields)-1].Name)
}

func TestTypeKindsKeepSourceOrder(t *testing.T) {
	src := `namespace N
{
    public enum Color : byte { Red, Green }
    public delegate T Factory<T>(string name) where T : class;
    public interface IShape { double Area(); }
    public struct Point { public int X; }
    public record Person(string Name);
}`
	cu, _ := extract(t, src)
	require.Len(t, cu.ClassTypes, 5)

	e, ok := cu.ClassTypes[0].(*model.Enum)
	require.True(t, ok)
	assert.Equal(t, "N.Color", e.Name)
	assert.Equal(t, "byte", e.Type.Name)
	require.Len(t, e.Labels, 2)
	assert.Equal(t, "Green", e.Labels[1].Name)

	d, ok := cu.ClassTypes[1].(*model.Delegate)
	require.True(t, ok)
	assert.Equal(t, "N.Factory<T>", d.Name)
	require.Len(t, d.Head().GenericParameters, 1)
	assert.Equal(t, "class", d.Head().GenericParameters[0].Constraints[0].Name)
	require.Len(t, d.Sig().Parameters, 1)
	require.NotNil(t, d.ReturnValue)
	assert.Equal(t, "T", d.ReturnValue.Type.Name)

	i := cu.ClassTypes[2].(*model.Class)
	assert.Equal(t, model.KindInterface, i.ClassType)
	assert.Equal(t, "public", method(t, i, "Area").AccessModifier)

	s := cu.ClassTypes[3].(*model.Class)
	assert.Equal(t, model.KindStruct, s.ClassType)
	require.NotEmpty(t, s.BaseTypes)
	assert.Equal(t, "System.ValueType", s.BaseTypes[0].Type.Name)

	r := cu.ClassTypes[4].(*model.Class)
	assert.Equal(t, model.KindRecord, r.ClassType)
}

func TestBaseTypes(t *testing.T) {
	src := `using System;
class Base { }
class Derived : Base, IDisposable, IUnknown { public void Dispose() { } }`
	cu, _ := extract(t, src)
	bases := class(t, cu, "Derived").BaseTypes
	require.Len(t, bases, 3)
	assert.Equal(t, model.BaseType{Type: model.NewEntityType("Base", false), Kind: model.KindClass}, bases[0])
	assert.Equal(t, "System.IDisposable", bases[1].Type.Name)
	assert.Equal(t, model.KindInterface, bases[1].Kind)
	assert.True(t, bases[2].Type.IsExtern)
	assert.Equal(t, model.KindInterface, bases[2].Kind)
}

func TestModifiers(t *testing.T) {
	src := `class C
{
    protected internal static void A() { }
    private protected virtual void B() { }
    void D() { }
    ~C() { }
}`
	cu, _ := extract(t, src)
	c := class(t, cu, "C")
	assert.Equal(t, "internal", c.AccessModifier)

	a := method(t, c, "A")
	assert.Equal(t, "protected internal", a.AccessModifier)
	assert.Equal(t, "static", a.Modifier)
	b := method(t, c, "B")
	assert.Equal(t, "private protected", b.AccessModifier)
	assert.Equal(t, "virtual", b.Modifier)
	assert.Equal(t, "private", method(t, c, "D").AccessModifier)

	require.NotNil(t, c.Destructor)
	assert.Equal(t, "~C", c.Destructor.Name)
}

func TestGenericMethodCallInfersArguments(t *testing.T) {
	src := `using System.Collections.Generic;
class C
{
    T First<T>(List<T> items) => items[0];

    void M()
    {
        var list = new List<string>();
        var s = First(list);
    }
}`
	cu, _ := extract(t, src)
	m := method(t, class(t, cu, "C"), "M")
	require.Len(t, m.CalledMethods, 1)
	call := m.CalledMethods[0]
	assert.Equal(t, "First", call.Name)
	require.Len(t, call.GenericParameters, 1)
	assert.Equal(t, "string", call.GenericParameters[0].Name)

	require.Len(t, m.LocalVariableTypes, 2)
	assert.Equal(t, "string", m.LocalVariableTypes[1].Type.Name)
}

func TestParamsArrayParameter(t *testing.T) {
	src := `using System;
class C
{
    void S(string s, [Obsolete] params int[] rest) { var n = rest.Length; }

    void M()
    {
        S("a", 1, 2);
        S("b");
    }
}`
	cu, _ := extract(t, src)
	c := class(t, cu, "C")

	s := method(t, c, "S")
	require.Len(t, s.Parameters, 2)
	assert.Equal(t, "string", s.Parameters[0].Type.Name)
	assert.Equal(t, "int[]", s.Parameters[1].Type.Name)
	assert.Equal(t, "params", s.Parameters[1].Modifier)
	require.Len(t, s.Parameters[1].Attributes, 1)
	assert.Equal(t, "System.ObsoleteAttribute", s.Parameters[1].Attributes[0].Type.Name)
	assert.Equal(t, model.TargetParam, s.Parameters[1].Attributes[0].Target)
	assert.Empty(t, s.Attributes)

	calls := method(t, c, "M").CalledMethods
	require.Len(t, calls, 2)
	for _, call := range calls {
		assert.Equal(t, "S", call.Name)
		assert.Equal(t, "C", call.DefinitionClassName)
		assert.False(t, call.IsExtern)
		require.Len(t, call.ParameterTypes, 2)
		assert.Equal(t, "string", call.ParameterTypes[0].Name)
		assert.Equal(t, "int[]", call.ParameterTypes[1].Name)
	}
}

func TestDeconstructionDeclaresOneLocalPerName(t *testing.T) {
	src := `class C
{
    void M()
    {
        var (d, e) = (1, "s");
        var (x, _) = (2, 3.0);
        var (p, q) = Missing.Get();
        var len = e.Length;
    }
}`
	cu, rec := extract(t, src)
	locals := method(t, class(t, cu, "C"), "M").LocalVariableTypes
	require.Len(t, locals, 4)

	assert.Equal(t, "d", locals[0].Name)
	assert.Equal(t, "int", locals[0].Type.Name)
	assert.Equal(t, "e", locals[1].Name)
	assert.Equal(t, "string", locals[1].Type.Name)
	assert.Equal(t, "x", locals[2].Name)
	assert.Equal(t, "int", locals[2].Type.Name)
	assert.Equal(t, "len", locals[3].Name)
	assert.Equal(t, "int", locals[3].Type.Name)
	for _, lv := range locals {
		assert.NotEmpty(t, lv.Name)
	}

	assert.Equal(t, 1, rec.Count(logging.LevelWarn, "local variable"))
}

func TestFrameworkCallPicksOverloadByArgumentCount(t *testing.T) {
	src := `using System;
using System.Collections.Generic;
using System.Linq;
class C
{
    void M()
    {
        var head = "abc".Substring(1);
        var mid = "abc".Substring(1, 1);
        var list = new List<int>();
        var n = list.Count();
        Console.WriteLine("x");
    }
}`
	cu, _ := extract(t, src)
	calls := method(t, class(t, cu, "C"), "M").CalledMethods
	require.Len(t, calls, 4)

	assert.Equal(t, "Substring", calls[0].Name)
	assert.Equal(t, "string", calls[0].DefinitionClassName)
	require.Len(t, calls[0].ParameterTypes, 1)
	assert.Equal(t, "int", calls[0].ParameterTypes[0].Name)
	require.Len(t, calls[1].ParameterTypes, 2)

	assert.Equal(t, "Count", calls[2].Name)
	assert.Equal(t, "System.Linq.Enumerable", calls[2].DefinitionClassName)
	assert.False(t, calls[2].IsExtern)
	assert.Empty(t, calls[2].ParameterTypes)

	assert.Equal(t, "WriteLine", calls[3].Name)
	require.Len(t, calls[3].ParameterTypes, 1)
	assert.Equal(t, "string", calls[3].ParameterTypes[0].Name)
}

func TestPositionalRecordMembers(t *testing.T) {
	src := `using System;
namespace N
{
    public record R(int A, [property: Obsolete] string B);
    public readonly record struct P(double X);
    public record struct M(double X);
    public record S(int Id, string Name)
    {
        public string Name { get; } = Name.Trim();
    }
}`
	cu, _ := extract(t, src)

	r := class(t, cu, "N.R")
	require.Len(t, r.Constructors, 1)
	ctor := r.Constructors[0]
	assert.Equal(t, "R", ctor.Name)
	assert.Equal(t, "public", ctor.AccessModifier)
	assert.Equal(t, "N.R", ctor.ContainingTypeName)
	require.Len(t, ctor.Parameters, 2)
	assert.Equal(t, "int", ctor.Parameters[0].Type.Name)
	assert.Equal(t, "string", ctor.Parameters[1].Type.Name)
	assert.Empty(t, ctor.Parameters[1].Attributes)

	require.Len(t, r.Properties, 2)
	a, b := r.Properties[0], r.Properties[1]
	assert.Equal(t, "A", a.Name)
	assert.Equal(t, "public", a.AccessModifier)
	assert.Equal(t, "int", a.Type.Name)
	assert.Equal(t, "N.R", a.ContainingTypeName)
	require.Len(t, a.Accessors, 2)
	assert.Equal(t, "get", a.Accessors[0].Name)
	assert.Equal(t, "init", a.Accessors[1].Name)
	assert.Equal(t, "B", b.Name)
	require.Len(t, b.Attributes, 1)
	assert.Equal(t, "System.ObsoleteAttribute", b.Attributes[0].Type.Name)
	assert.Equal(t, model.TargetProperty, b.Attributes[0].Target)

	p := class(t, cu, "N.P")
	require.Len(t, p.Properties, 1)
	assert.Equal(t, "init", p.Properties[0].Accessors[1].Name)
	m := class(t, cu, "N.M")
	require.Len(t, m.Properties, 1)
	assert.Equal(t, "set", m.Properties[0].Accessors[1].Name)

	s := class(t, cu, "N.S")
	require.Len(t, s.Constructors, 1)
	require.Len(t, s.Constructors[0].Parameters, 2)
	require.Len(t, s.Properties, 2)
	assert.Equal(t, "Id", s.Properties[0].Name)
	assert.Equal(t, "Name", s.Properties[1].Name)
	require.Len(t, s.Properties[1].Accessors, 1)
}
