package visitor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/csfacts/internal/logging"
	"github.com/standardbeagle/csfacts/internal/model"
)

// node is a tiny syntax tree for exercising setters.
type node struct {
	kind     string
	name     string
	children []*node
}

func childrenOfKind(kind string) func(*Context, *node) []*node {
	return func(_ *Context, parent *node) []*node {
		var out []*node
		for _, c := range parent.children {
			if c.kind == kind {
				out = append(out, c)
			}
		}
		return out
	}
}

func newContext() (*Context, *logging.Recorder) {
	rec := &logging.Recorder{}
	return &Context{Logger: rec}, rec
}

var setName = NewFunc("Name", func(_ *Context, n *node, m *model.Method) error {
	m.Name = n.name
	return nil
})

var setAccess = NewFunc("Access", func(_ *Context, _ *node, m *model.Method) error {
	m.AccessModifier = "public"
	return nil
})

var alwaysPanics = NewFunc("Exploding", func(_ *Context, _ *node, _ *model.Method) error {
	var missing *model.Method
	missing.Name = "unreachable"
	return nil
})

var alwaysErrors = NewFunc("Failing", func(_ *Context, _ *node, _ *model.Method) error {
	return errors.New("cannot read modifiers")
})

func TestRunIsolatesFailingVisitors(t *testing.T) {
	ctx, rec := newContext()
	m := &model.Method{}

	failed := Run(ctx, []Visitor[*node, *model.Method]{setName, alwaysPanics, alwaysErrors, setAccess}, &node{name: "Compute"}, m)

	assert.Equal(t, 2, failed)
	assert.Equal(t, "Compute", m.Name)
	assert.Equal(t, "public", m.AccessModifier)
	assert.Equal(t, 1, rec.Count(logging.LevelWarn, "visitor Exploding failed for Compute"))
	assert.Equal(t, 1, rec.Count(logging.LevelWarn, "visitor Failing failed for Compute: cannot read modifiers"))
	assert.Len(t, rec.Entries(), 2)
}

func TestSetterBuildsOneModelPerChildInOrder(t *testing.T) {
	ctx, rec := newContext()
	class := &node{kind: "class", children: []*node{
		{kind: "method", name: "A"},
		{kind: "field", name: "skip"},
		{kind: "method", name: "B"},
		{kind: "method", name: "C"},
	}}

	methods := NewSetter(
		"Method",
		childrenOfKind("method"),
		func() *model.Method { return &model.Method{} },
		func(c *model.Class, m *model.Method) { c.Methods = append(c.Methods, m) },
	).Add(setName, alwaysPanics)

	c := &model.Class{}
	require.NoError(t, methods.Visit(ctx, class, c))

	require.Len(t, c.Methods, 3)
	assert.Equal(t, []string{"A", "B", "C"}, []string{c.Methods[0].Name, c.Methods[1].Name, c.Methods[2].Name})
	assert.Equal(t, 3, rec.Count(logging.LevelWarn, "visitor Exploding failed"))
	assert.Equal(t, "MethodSetter", methods.Name())
}

func TestSetterLeavesCollectionUnchangedWithoutChildren(t *testing.T) {
	ctx, _ := newContext()
	methods := NewSetter(
		"Method",
		childrenOfKind("method"),
		func() *model.Method { return &model.Method{} },
		func(c *model.Class, m *model.Method) { c.Methods = append(c.Methods, m) },
	)

	c := &model.Class{}
	require.NoError(t, methods.Visit(ctx, &node{kind: "class"}, c))
	assert.Nil(t, c.Methods)
}

func TestRecursiveSetter(t *testing.T) {
	ctx, _ := newContext()
	tree := &node{kind: "method", children: []*node{
		{kind: "local", name: "outer", children: []*node{
			{kind: "local", name: "inner"},
		}},
	}}

	locals := NewSetter(
		"LocalFunction",
		childrenOfKind("local"),
		func() *model.Method { return &model.Method{} },
		func(p *model.Method, c *model.Method) { p.LocalFunctions = append(p.LocalFunctions, c) },
	)
	locals.Add(setName, locals)

	m := &model.Method{}
	require.NoError(t, locals.Visit(ctx, tree, m))
	require.Len(t, m.LocalFunctions, 1)
	assert.Equal(t, "outer", m.LocalFunctions[0].Name)
	require.Len(t, m.LocalFunctions[0].LocalFunctions, 1)
	assert.Equal(t, "inner", m.LocalFunctions[0].LocalFunctions[0].Name)
}

func TestSetterDiscoveryPanicIsContainedByParent(t *testing.T) {
	ctx, rec := newContext()
	broken := NewSetter(
		"Field",
		func(*Context, *node) []*node { panic("bad tree") },
		func() *model.Field { return &model.Field{} },
		func(*model.Class, *model.Field) {},
	)
	setClassName := NewFunc("ClassName", func(_ *Context, n *node, c *model.Class) error {
		c.Name = n.name
		return nil
	})

	c := &model.Class{}
	Run(ctx, []Visitor[*node, *model.Class]{broken, setClassName}, &node{name: "N.C"}, c)

	assert.Equal(t, "N.C", c.Name)
	assert.Equal(t, 1, rec.Count(logging.LevelWarn, "visitor FieldSetter failed"))
}

func TestAdapt(t *testing.T) {
	ctx, _ := newContext()
	wrapped := Adapt[string, *node, *model.Method](setName, func(s string) *node { return &node{name: s} })

	m := &model.Method{}
	require.NoError(t, wrapped.Visit(ctx, "Adapted", m))
	assert.Equal(t, "Adapted", m.Name)
	assert.Equal(t, "Name", wrapped.Name())
}

func TestWarnWithoutLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		(&Context{}).Warn("x %d", 1)
		var nilCtx *Context
		nilCtx.Warn("y")
	})
}

func TestDispatchKeepsSourceOrderAcrossKinds(t *testing.T) {
	ctx, _ := newContext()
	unit := &node{kind: "unit", children: []*node{
		{kind: "class", name: "A"},
		{kind: "enum", name: "E"},
		{kind: "class", name: "B"},
		{kind: "namespace", name: "skipped"},
	}}

	classes := NewSetter(
		"Class",
		childrenOfKind("class"),
		func() *model.Class { return &model.Class{} },
		func(cu *model.CompilationUnit, c *model.Class) { cu.ClassTypes = append(cu.ClassTypes, c) },
	).Add(NewFunc("ClassName", func(_ *Context, n *node, c *model.Class) error {
		c.Name = n.name
		return nil
	}))
	enums := NewSetter(
		"Enum",
		childrenOfKind("enum"),
		func() *model.Enum { return &model.Enum{} },
		func(cu *model.CompilationUnit, e *model.Enum) { cu.ClassTypes = append(cu.ClassTypes, e) },
	).Add(NewFunc("EnumName", func(_ *Context, n *node, e *model.Enum) error {
		e.Name = n.name
		return nil
	}))

	types := NewDispatch(
		"ClassType",
		func(_ *Context, parent *node) []*node { return parent.children },
		classes.Route(func(n *node) bool { return n.kind == "class" }),
		enums.Route(func(n *node) bool { return n.kind == "enum" }),
	)

	cu := &model.CompilationUnit{}
	require.NoError(t, types.Visit(ctx, unit, cu))
	require.Len(t, cu.ClassTypes, 3)
	var names []string
	for _, ct := range cu.ClassTypes {
		names = append(names, ct.Head().Name)
	}
	assert.Equal(t, []string{"A", "E", "B"}, names)
	assert.IsType(t, &model.Enum{}, cu.ClassTypes[1])
	assert.Equal(t, "ClassTypeSetter", types.Name())
}

func TestSplitModifiers(t *testing.T) {
	phrases := []string{"protected internal", "private protected", "public", "protected", "internal", "private"}
	same := func(a, b string) bool { return a == b }

	tests := []struct {
		words  []string
		access string
		rest   string
	}{
		{[]string{"public", "static"}, "public", "static"},
		{[]string{"internal", "protected", "override"}, "protected internal", "override"},
		{[]string{"static", "readonly"}, "", "static readonly"},
		{[]string{"private", "protected"}, "private protected", ""},
		{nil, "", ""},
	}
	for _, tt := range tests {
		access, rest := SplitModifiers(tt.words, phrases, same)
		assert.Equal(t, tt.access, access, "%v", tt.words)
		assert.Equal(t, tt.rest, rest, "%v", tt.words)
	}
}
