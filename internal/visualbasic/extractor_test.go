package visualbasic

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
	cu, err := NewFactExtractor(rec).ExtractSource("test.vb", src)
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
	_, err := NewFactExtractor(nil).ExtractSource("empty.vb", " \r\n\t")
	require.Error(t, err)
	assert.True(t, csferrors.IsParseError(err))
}

func TestExtractNilTreeFails(t *testing.T) {
	_, err := NewFactExtractor(nil).Extract(nil, nil)
	require.Error(t, err)
	assert.True(t, csferrors.IsParseError(err))
}

func TestLanguageIsRecorded(t *testing.T) {
	cu, _ := extract(t, "Class C\nEnd Class\n")
	assert.Equal(t, model.LanguageVisualBasic, cu.Language)
	assert.Equal(t, "test.vb", cu.FilePath)
}

func TestComplexityWithoutBranches(t *testing.T) {
	cu, _ := extractFile(t, "Complexity.vb")
	c := class(t, cu, "Shapes.Counter")
	require.Len(t, c.Constructors, 1)
	assert.Equal(t, "Counter", c.Constructors[0].Name)
	assert.Equal(t, 1, c.Constructors[0].CyclomaticComplexity)
	assert.Equal(t, 1, method(t, c, "Increment").CyclomaticComplexity)
}

func TestComplexityWithLoop(t *testing.T) {
	cu, _ := extractFile(t, "ComplexityLoop.vb")
	c := class(t, cu, "Shapes.Counter")
	assert.Equal(t, 1, c.Constructors[0].CyclomaticComplexity)
	assert.Equal(t, 2, method(t, c, "Increment").CyclomaticComplexity)
}

func TestComplexityDecisionPoints(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"if elseif", "If a Then\nElseIf b Then\nElse\nEnd If", 3},
		{"single line if", "If a Then Return", 2},
		{"short circuit", "Dim x = a AndAlso b OrElse c", 3},
		{"bitwise and is not a branch", "Dim x = a And b", 1},
		{"if operator", "Dim x = If(a, 1, 2)", 2},
		{"for and for each", "For i As Integer = 0 To 3\nNext\nFor Each ch In \"ab\"\nNext", 3},
		{"do loop", "Do\nLoop While a", 2},
		{"select case values", "Select Case n\nCase 1\nCase 2, 3\nCase Else\nEnd Select", 4},
		{"catch clauses", "Try\nCatch ex As System.ArgumentException\nCatch\nEnd Try", 3},
		{"nested depth is irrelevant", "If a Then\nIf b Then\nWhile c\nEnd While\nEnd If\nEnd If", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "Class C\nSub M(a As Boolean, b As Boolean, c As Boolean, n As Integer)\n" + tt.body + "\nEnd Sub\nEnd Class\n"
			cu, _ := extract(t, src)
			assert.Equal(t, tt.want, method(t, class(t, cu, "C"), "M").CyclomaticComplexity)
		})
	}
}

func TestImports(t *testing.T) {
	cu, _ := extractFile(t, "Imports.vb")
	require.Len(t, cu.Imports, 7)

	want := []struct {
		name      string
		alias     string
		aliasType model.AliasType
		static    bool
	}{
		{"System", "", model.AliasNone, false},
		{"System.Collections.Generic", "", model.AliasNone, false},
		{"System.Text", "", model.AliasNone, false},
		{"System.Linq", "", model.AliasNone, false},
		{"System.IO", "IO", model.AliasNamespace, false},
		{"System.Text.StringBuilder", "Builder", model.AliasClass, false},
		{"System.Math", "", model.AliasNone, true},
	}
	for i, w := range want {
		imp := cu.Imports[i]
		assert.Equal(t, w.name, imp.Name, "import %d", i)
		assert.Equal(t, w.alias, imp.Alias, "import %d", i)
		assert.Equal(t, w.aliasType, imp.AliasType, "import %d", i)
		assert.Equal(t, w.static, imp.IsStatic, "import %d", i)
	}
}

func TestExceptionsThrownRelation(t *testing.T) {
	cu, _ := extractFile(t, "Exceptions.vb")
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

func TestRethrowWithoutCatchTypeIsException(t *testing.T) {
	src := `Class C
    Sub M()
        Try
        Catch
            Throw
        End Try
    End Sub
End Class
`
	cu, _ := extract(t, src)
	metric, ok := class(t, cu, "C").Metric(model.MetricExceptionsThrown)
	require.True(t, ok)
	counts, _ := metric.RelationValue()
	assert.Equal(t, map[string]int{"System.Exception": 1}, counts)
}

func TestObjectCreationRelation(t *testing.T) {
	src := `Imports System.Collections.Generic
Imports System.Text

Class C
    Private _items As New List(Of Integer)()

    Sub M()
        Dim sb = New StringBuilder()
        Dim other As New StringBuilder()
        Dim numbers = New Integer() {1, 2}
    End Sub
End Class
`
	cu, _ := extract(t, src)
	metric, ok := class(t, cu, "C").Metric(model.MetricObjectCreation)
	require.True(t, ok)
	counts, _ := metric.RelationValue()
	assert.Equal(t, 1, counts["System.Collections.Generic.List<Integer>"])
	assert.Equal(t, 2, counts["System.Text.StringBuilder"])
	assert.Equal(t, 1, counts["Integer[]"])
}

func TestRelationsStayWithTheirClass(t *testing.T) {
	src := `Imports System

Class Outer
    Sub M()
        Throw New InvalidOperationException()
    End Sub

    Class Inner
        Sub N()
            Throw New ArgumentException()
        End Sub
    End Class
End Class
`
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
		"Imports System\n<Serializable><Obsolete(\"old\")>\nClass C\nEnd Class\n",
		"Imports System\n<Serializable>\n<Obsolete(\"old\")>\nClass C\nEnd Class\n",
		"Imports System\n<Serializable, Obsolete(\"old\")>\nClass C\nEnd Class\n",
		"Imports System\n<Serializable, Obsolete(\"old\")> Class C\nEnd Class\n",
	}
	for _, src := range sources {
		cu, _ := extract(t, src)
		attrs := class(t, cu, "C").Attributes
		require.Len(t, attrs, 2, src)
		assert.Equal(t, "System.SerializableAttribute", attrs[0].Type.Name)
		assert.Equal(t, "System.ObsoleteAttribute", attrs[1].Type.Name)
		assert.Equal(t, model.TargetType, attrs[0].Target)
		require.Len(t, attrs[1].Parameters, 1)
		assert.Equal(t, "String", attrs[1].Parameters[0].Type.Name)
	}
}

func TestAssemblyAttributesBelongToNoDeclaration(t *testing.T) {
	src := "Imports System\n<Assembly: CLSCompliant(True)>\nClass C\nEnd Class\n"
	cu, _ := extract(t, src)
	assert.Empty(t, class(t, cu, "C").Attributes)
}

func TestAttributeTargets(t *testing.T) {
	src := `Imports System

Class C
    <NonSerialized> Private _a As Integer

    <Obsolete>
    Public Function M(<Custom> x As Integer) As <NotMapped> Integer
        Return x
    End Function

    <Obsolete> Public Property P As Integer
End Class
`
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
	src := `' header
Namespace N
    REM remark
    Public Class C

        Public Sub M()
            Dim x As Integer = 1 ' trailing
        End Sub
    End Class
End Namespace
`
	cu, _ := extract(t, src)
	assert.Equal(t, strings.Count(src, "\n"), cu.LinesOfCode.Total())
	assert.Equal(t, 2, cu.LinesOfCode.CommentedLines)

	c := class(t, cu, "N.C")
	m := method(t, c, "M")
	assert.Equal(t, 3, m.LinesOfCode.Total())
	assert.Equal(t, 3, m.LinesOfCode.SourceLines)
	assert.Equal(t, 6, c.LinesOfCode.Total())
	assert.Equal(t, 1, c.LinesOfCode.EmptyLines)
	assert.LessOrEqual(t, c.LinesOfCode.Total(), cu.LinesOfCode.Total())
}

func TestMethodCalls(t *testing.T) {
	src := `Imports System

Namespace N
    Class A
        Protected Sub Log(message As String)
        End Sub
    End Class

    Class B
        Inherits A

        Sub Run()
            Log("a")
            MyBase.Log("b")
            Console.ReadLine()
            Missing.Send(1)
        End Sub
    End Class
End Namespace
`
	cu, rec := extract(t, src)
	calls := method(t, class(t, cu, "N.B"), "Run").CalledMethods
	require.Len(t, calls, 4)

	assert.Equal(t, "Log", calls[0].Name)
	assert.Equal(t, "N.A", calls[0].DefinitionClassName)
	assert.Equal(t, "N.B", calls[0].LocationClassName)
	require.Len(t, calls[0].ParameterTypes, 1)
	assert.Equal(t, "String", calls[0].ParameterTypes[0].Name)

	assert.Equal(t, "N.A", calls[1].DefinitionClassName)
	assert.Equal(t, "N.A", calls[1].LocationClassName)

	assert.Equal(t, "ReadLine", calls[2].Name)
	assert.Equal(t, "System.Console", calls[2].DefinitionClassName)
	assert.False(t, calls[2].IsExtern)

	assert.Equal(t, "Send", calls[3].Name)
	assert.True(t, calls[3].IsExtern)
	assert.Equal(t, "Missing", calls[3].LocationClassName)
	assert.Equal(t, 1, rec.Count(logging.LevelWarn, "method call Send"))
}

func TestCallsMatchNamesIgnoringCase(t *testing.T) {
	src := `Class C
    Sub Helper()
    End Sub

    Sub M()
        HELPER()
        helper
    End Sub
End Class
`
	cu, _ := extract(t, src)
	calls := method(t, class(t, cu, "C"), "M").CalledMethods
	require.Len(t, calls, 2)
	for _, call := range calls {
		assert.Equal(t, "C", call.DefinitionClassName)
		assert.False(t, call.IsExtern)
	}
}

func TestConstructorChainingIsACall(t *testing.T) {
	src := `Class A
    Public Sub New(x As Integer)
    End Sub
End Class

Class B
    Inherits A

    Public Sub New()
        MyBase.New(1)
    End Sub
End Class
`
	cu, _ := extract(t, src)
	b := class(t, cu, "B")
	require.Len(t, b.Constructors, 1)
	assert.Equal(t, "B", b.Constructors[0].Name)
	calls := b.Constructors[0].CalledMethods
	require.Len(t, calls, 1)
	assert.Equal(t, "A", calls[0].Name)
	assert.Equal(t, "A", calls[0].DefinitionClassName)
	assert.False(t, calls[0].IsExtern)
}

func TestModuleMembersAndExtensions(t *testing.T) {
	src := `Imports System.Runtime.CompilerServices

Module TextHelpers
    <Extension>
    Public Function Shout(s As String) As String
        Return s & "!"
    End Function

    Public Function Twice(n As Integer) As Integer
        Return n * 2
    End Function
End Module

Class C
    Sub M()
        Dim x = Twice(2)
        Dim y = "a".Shout()
    End Sub
End Class
`
	cu, _ := extract(t, src)
	module := class(t, cu, "TextHelpers")
	assert.Equal(t, model.KindModule, module.ClassType)

	m := method(t, class(t, cu, "C"), "M")
	require.Len(t, m.CalledMethods, 2)
	assert.Equal(t, "Twice", m.CalledMethods[0].Name)
	assert.Equal(t, "TextHelpers", m.CalledMethods[0].DefinitionClassName)
	assert.Equal(t, "Shout", m.CalledMethods[1].Name)
	assert.Equal(t, "TextHelpers", m.CalledMethods[1].DefinitionClassName)
	assert.Empty(t, m.CalledMethods[1].ParameterTypes)

	require.Len(t, m.LocalVariableTypes, 2)
	assert.Equal(t, "Integer", m.LocalVariableTypes[0].Type.Name)
	assert.Equal(t, "String", m.LocalVariableTypes[1].Type.Name)
}

func TestAccessedFields(t *testing.T) {
	src := `Class C
    Private _count As Integer
    Public Property Total As Integer

    Sub M(other As C)
        _count += 1
        Dim x = _count
        Me.Total = x
        other.Total = 1
    End Sub
End Class
`
	cu, _ := extract(t, src)
	fields := method(t, class(t, cu, "C"), "M").AccessedFields
	require.Len(t, fields, 4)

	assert.Equal(t, model.AccessedField{Name: "_count", DefinitionClassName: "C", LocationClassName: "C", Kind: model.AccessSetter}, fields[0])
	assert.Equal(t, model.AccessGetter, fields[1].Kind)
	assert.Equal(t, "Total", fields[2].Name)
	assert.Equal(t, model.AccessSetter, fields[2].Kind)
	assert.Equal(t, model.AccessSetter, fields[3].Kind)
}

func TestWithBlockMembers(t *testing.T) {
	src := `Class C
    Public Total As Integer

    Sub M(other As C)
        With other
            .Total = 2
        End With
    End Sub
End Class
`
	cu, _ := extract(t, src)
	fields := method(t, class(t, cu, "C"), "M").AccessedFields
	require.Len(t, fields, 1)
	assert.Equal(t, "Total", fields[0].Name)
	assert.Equal(t, model.AccessSetter, fields[0].Kind)
}

func TestLocalVariables(t *testing.T) {
	src := `Imports System.Collections.Generic

Class C
    Sub M(names As IEnumerable(Of String))
        Dim items As New List(Of Integer)()
        Const limit As Integer = 3
        Dim maybe As Integer? = Nothing
        For Each name In names
        Next
        Dim unknown = Missing.Build()
    End Sub
End Class
`
	cu, rec := extract(t, src)
	locals := method(t, class(t, cu, "C"), "M").LocalVariableTypes
	require.Len(t, locals, 4)

	assert.Equal(t, "items", locals[0].Name)
	assert.Equal(t, "System.Collections.Generic.List<Integer>", locals[0].Type.Name)
	assert.Equal(t, "limit", locals[1].Name)
	assert.Equal(t, "Const", locals[1].Modifier)
	assert.Equal(t, "maybe", locals[2].Name)
	assert.True(t, locals[2].IsNullable)
	assert.Equal(t, "name", locals[3].Name)
	assert.Equal(t, "String", locals[3].Type.Name)

	assert.Equal(t, 1, rec.Count(logging.LevelWarn, "local variable"))
}

func TestProperties(t *testing.T) {
	src := `Class C
    Private _v As Integer
    Public Property Auto As Integer
    Public ReadOnly Property Doubled As Integer
        Get
            Return _v * 2
        End Get
    End Property
    Public Property Checked As Integer
        Get
            Return _v
        End Get
        Set(value As Integer)
            If value > 0 Then
                _v = value
            End If
        End Set
    End Property
End Class
`
	cu, _ := extract(t, src)
	props := class(t, cu, "C").Properties
	require.Len(t, props, 3)

	assert.Equal(t, 1, props[0].CyclomaticComplexity)
	assert.Empty(t, props[0].Accessors)
	assert.Equal(t, "Integer", props[0].Type.Name)

	require.Len(t, props[1].Accessors, 1)
	assert.Equal(t, "Get", props[1].Accessors[0].Name)
	assert.Equal(t, "Public", props[1].Accessors[0].AccessModifier)
	assert.Equal(t, "ReadOnly", props[1].Modifier)
	assert.Equal(t, 1, props[1].CyclomaticComplexity)

	assert.Equal(t, 3, props[2].CyclomaticComplexity)
	set := props[2].Accessors[1]
	assert.Equal(t, "Set", set.Name)
	assert.Equal(t, 2, set.CyclomaticComplexity)
	require.Len(t, set.AccessedFields, 1)
	assert.Equal(t, "_v", set.AccessedFields[0].Name)
	assert.Equal(t, model.AccessSetter, set.AccessedFields[0].Kind)
}

func TestEvents(t *testing.T) {
	src := `Imports System

Class C
    Public Event Changed As EventHandler
    Public Event Moved(x As Integer)
End Class
`
	cu, _ := extract(t, src)
	fields := class(t, cu, "C").Fields
	require.Len(t, fields, 2)
	assert.True(t, fields[0].IsEvent)
	assert.Equal(t, "System.EventHandler", fields[0].Type.Name)
	assert.True(t, fields[1].IsEvent)
	assert.Equal(t, "C.MovedEventHandler", fields[1].Type.Name)
	assert.False(t, fields[1].Type.IsExtern)
}

func TestTypeKindsKeepSourceOrder(t *testing.T) {
	src := `Namespace N
    Public Enum Color As Byte
        Red
        Green
    End Enum
    Public Delegate Function Factory(Of T As Class)(name As String) As T
    Public Interface IShape
        Function Area() As Double
    End Interface
    Public Structure Point
        Public X As Integer
    End Structure
    Public Module Helpers
        Public Sub Run()
        End Sub
    End Module
End Namespace
`
	cu, _ := extract(t, src)
	require.Len(t, cu.ClassTypes, 5)

	e, ok := cu.ClassTypes[0].(*model.Enum)
	require.True(t, ok)
	assert.Equal(t, "N.Color", e.Name)
	assert.Equal(t, "Byte", e.Type.Name)
	require.Len(t, e.Labels, 2)
	assert.Equal(t, "Green", e.Labels[1].Name)

	d, ok := cu.ClassTypes[1].(*model.Delegate)
	require.True(t, ok)
	assert.Equal(t, "N.Factory<T>", d.Name)
	require.Len(t, d.Head().GenericParameters, 1)
	assert.Equal(t, "Class", d.Head().GenericParameters[0].Constraints[0].Name)
	require.Len(t, d.Sig().Parameters, 1)
	assert.Equal(t, "String", d.Sig().Parameters[0].Type.Name)
	require.NotNil(t, d.ReturnValue)
	assert.Equal(t, "T", d.ReturnValue.Type.Name)

	i := cu.ClassTypes[2].(*model.Class)
	assert.Equal(t, model.KindInterface, i.ClassType)
	assert.Equal(t, "Public", method(t, i, "Area").AccessModifier)

	s := cu.ClassTypes[3].(*model.Class)
	assert.Equal(t, model.KindStruct, s.ClassType)
	require.NotEmpty(t, s.BaseTypes)
	assert.Equal(t, "System.ValueType", s.BaseTypes[0].Type.Name)
	require.Len(t, s.Fields, 1)
	assert.Equal(t, "Public", s.Fields[0].AccessModifier)

	mod := cu.ClassTypes[4].(*model.Class)
	assert.Equal(t, model.KindModule, mod.ClassType)
	assert.Equal(t, "System.Void", method(t, mod, "Run").ReturnValue.Type.Name)
}

func TestEnumDefaultsToInteger(t *testing.T) {
	cu, _ := extract(t, "Enum Level\n    Low\n    High = 5\nEnd Enum\n")
	e, ok := cu.Class("Level").(*model.Enum)
	require.True(t, ok)
	assert.Equal(t, "Integer", e.Type.Name)
	require.Len(t, e.Labels, 2)
}

func TestBaseTypes(t *testing.T) {
	src := `Imports System

Class Base
End Class

Class Derived
    Inherits Base
    Implements IDisposable, IUnknown

    Public Sub Dispose() Implements IDisposable.Dispose
    End Sub
End Class
`
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
	src := `Class C
    Protected Friend Shared Sub A()
    End Sub
    Private Protected Overridable Sub B()
    End Sub
    Sub D()
    End Sub
    Dim _f As Integer
    Protected Overrides Sub Finalize()
    End Sub
End Class
`
	cu, _ := extract(t, src)
	c := class(t, cu, "C")
	assert.Equal(t, "Friend", c.AccessModifier)

	a := method(t, c, "A")
	assert.Equal(t, "Protected Friend", a.AccessModifier)
	assert.Equal(t, "Shared", a.Modifier)
	b := method(t, c, "B")
	assert.Equal(t, "Private Protected", b.AccessModifier)
	assert.Equal(t, "Overridable", b.Modifier)
	assert.Equal(t, "Public", method(t, c, "D").AccessModifier)

	require.Len(t, c.Fields, 1)
	assert.Equal(t, "Private", c.Fields[0].AccessModifier)

	require.NotNil(t, c.Destructor)
	assert.Equal(t, "Finalize", c.Destructor.Name)
	assert.Equal(t, "Protected", c.Destructor.AccessModifier)
	require.Len(t, c.Methods, 3)
}

func TestParameters(t *testing.T) {
	src := `Class C
    Sub M(ByVal a As Integer, ByRef b As String, Optional c As Integer = 3, ParamArray rest() As Object)
    End Sub
End Class
`
	cu, _ := extract(t, src)
	params := method(t, class(t, cu, "C"), "M").Parameters
	require.Len(t, params, 4)
	assert.Equal(t, "Integer", params[0].Type.Name)
	assert.Empty(t, params[0].Modifier)
	assert.Equal(t, "ByRef", params[1].Modifier)
	assert.Equal(t, "Optional", params[2].Modifier)
	assert.Equal(t, "3", params[2].DefaultValue)
	assert.Equal(t, "ParamArray", params[3].Modifier)
	assert.Equal(t, "Object[]", params[3].Type.Name)
}

func TestGenericMethodCallInfersArguments(t *testing.T) {
	src := `Imports System.Collections.Generic

Class C
    Function First(Of T)(items As List(Of T)) As T
        Return items(0)
    End Function

    Sub M()
        Dim list As New List(Of String)()
        Dim s = First(list)
    End Sub
End Class
`
	cu, _ := extract(t, src)
	m := method(t, class(t, cu, "C"), "M")
	require.Len(t, m.CalledMethods, 1)
	call := m.CalledMethods[0]
	assert.Equal(t, "First", call.Name)
	require.Len(t, call.GenericParameters, 1)
	assert.Equal(t, "String", call.GenericParameters[0].Name)

	require.Len(t, m.LocalVariableTypes, 2)
	assert.Equal(t, "String", m.LocalVariableTypes[1].Type.Name)

	first := method(t, class(t, cu, "C"), "First")
	assert.Empty(t, first.CalledMethods)
}
