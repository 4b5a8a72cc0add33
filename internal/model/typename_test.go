package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGenericType(t *testing.T) {
	t.Run("simple name", func(t *testing.T) {
		g := ParseGenericType("System.String")
		assert.Equal(t, "System.String", g.Name)
		assert.False(t, g.IsNullable)
		assert.Empty(t, g.ContainedTypes)
	})

	t.Run("nullable value type", func(t *testing.T) {
		g := ParseGenericType("int?")
		assert.Equal(t, "int", g.Name)
		assert.True(t, g.IsNullable)
	})

	t.Run("nested generics", func(t *testing.T) {
		g := ParseGenericType("Namespace.Outer<Inner1, Inner2<int, string>>")
		assert.Equal(t, "Namespace.Outer", g.Name)
		require.Len(t, g.ContainedTypes, 2)
		assert.Equal(t, "Inner1", g.ContainedTypes[0].Name)
		assert.Equal(t, "Inner2", g.ContainedTypes[1].Name)
		require.Len(t, g.ContainedTypes[1].ContainedTypes, 2)
		assert.Equal(t, "int", g.ContainedTypes[1].ContainedTypes[0].Name)
		assert.Equal(t, "string", g.ContainedTypes[1].ContainedTypes[1].Name)
	})

	t.Run("nullable applies to its own segment only", func(t *testing.T) {
		g := ParseGenericType("System.Collections.Generic.Dictionary<string?, List<int?>>?")
		assert.True(t, g.IsNullable)
		require.Len(t, g.ContainedTypes, 2)
		assert.True(t, g.ContainedTypes[0].IsNullable)
		assert.False(t, g.ContainedTypes[1].IsNullable)
		require.Len(t, g.ContainedTypes[1].ContainedTypes, 1)
		assert.True(t, g.ContainedTypes[1].ContainedTypes[0].IsNullable)
	})

	t.Run("arrays contain their element type", func(t *testing.T) {
		g := ParseGenericType("int[]")
		assert.Equal(t, "int[]", g.Name)
		require.Len(t, g.ContainedTypes, 1)
		assert.Equal(t, "int", g.ContainedTypes[0].Name)

		g = ParseGenericType("System.Collections.Generic.List<int?>[,]?")
		assert.Equal(t, "System.Collections.Generic.List<int?>[,]", g.Name)
		assert.True(t, g.IsNullable)
		require.Len(t, g.ContainedTypes, 1)
		elem := g.ContainedTypes[0]
		assert.Equal(t, "System.Collections.Generic.List", elem.Name)
		assert.False(t, elem.IsNullable)
		require.Len(t, elem.ContainedTypes, 1)
		assert.Equal(t, "int", elem.ContainedTypes[0].Name)
		assert.True(t, elem.ContainedTypes[0].IsNullable)
	})

	t.Run("jagged arrays nest", func(t *testing.T) {
		g := ParseGenericType("string[][]")
		require.Len(t, g.ContainedTypes, 1)
		assert.Equal(t, "string[]", g.ContainedTypes[0].Name)
		require.Len(t, g.ContainedTypes[0].ContainedTypes, 1)
		assert.Equal(t, "string", g.ContainedTypes[0].ContainedTypes[0].Name)
	})

	t.Run("nested generic splits its last segment", func(t *testing.T) {
		g := ParseGenericType("N.Outer<T>.Inner<U, List<int>>")
		assert.Equal(t, "N.Outer<T>.Inner", g.Name)
		require.Len(t, g.ContainedTypes, 2)
		assert.Equal(t, "U", g.ContainedTypes[0].Name)
		assert.Equal(t, "List", g.ContainedTypes[1].Name)
		require.Len(t, g.ContainedTypes[1].ContainedTypes, 1)

		g = ParseGenericType("N.Outer<T>.Inner")
		assert.Equal(t, "N.Outer<T>.Inner", g.Name)
		assert.Empty(t, g.ContainedTypes)
	})

	t.Run("tuples list element types", func(t *testing.T) {
		g := ParseGenericType("(int count, string name)")
		require.Len(t, g.ContainedTypes, 2)
		assert.Equal(t, "int", g.ContainedTypes[0].Name)
		assert.Equal(t, "string", g.ContainedTypes[1].Name)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Equal(t, GenericType{}, ParseGenericType("  "))
	})
}

func TestGenericTypeString(t *testing.T) {
	for _, s := range []string{
		"int",
		"int?",
		"System.Collections.Generic.List<int>",
		"System.Collections.Generic.Dictionary<string, System.Collections.Generic.List<int?>>?",
		"(int, string)",
		"string[]",
		"System.Collections.Generic.List<int>[]",
		"int?[][,]",
		"(int, string)[]",
		"N.Outer<T>.Inner<U>?",
	} {
		assert.Equal(t, s, ParseGenericType(s).String(), s)
	}
}

func TestContainedTypeCountMatchesBracketGroups(t *testing.T) {
	g := ParseGenericType("A<B<C<D>>>")
	depth := 0
	for len(g.ContainedTypes) == 1 {
		g = g.ContainedTypes[0]
		depth++
	}
	assert.Equal(t, 3, depth)
	assert.Equal(t, "D", g.Name)
}

func TestTypeNameHelpers(t *testing.T) {
	assert.Equal(t, "N.List", StripTypeArguments("N.List<int>?"))
	assert.Equal(t, "List", ShortName("System.Collections.Generic.List<int>"))
	assert.Equal(t, []string{"int", "Dictionary<string, int>"}, SplitTypeArguments("int, Dictionary<string, int>"))
}

func TestNewEntityType(t *testing.T) {
	e := NewEntityType("List<int>?", true)
	assert.Equal(t, "List<int>?", e.Name)
	assert.True(t, e.IsExtern)
	assert.True(t, e.Nullable())
	assert.False(t, e.IsZero())
	assert.True(t, EntityType{}.IsZero())
}
