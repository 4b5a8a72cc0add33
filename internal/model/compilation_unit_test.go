package model

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func classNamed(name string) *Class {
	c := &Class{}
	c.Name = name
	c.ClassType = KindClass
	return c
}

func TestRepositoryAddReportsDuplicates(t *testing.T) {
	repo := NewRepository()

	first := &CompilationUnit{FilePath: "a.cs", ClassTypes: []ClassType{classNamed("N.A")}}
	second := &CompilationUnit{FilePath: "b.cs", ClassTypes: []ClassType{classNamed("N.A"), classNamed("N.B")}}

	assert.Empty(t, repo.Add(first))
	assert.Equal(t, []string{"N.A"}, repo.Add(second))
	assert.Equal(t, 2, repo.Len())
}

func TestRepositoryIgnoresPartialClasses(t *testing.T) {
	repo := NewRepository()
	p1 := classNamed("N.P")
	p1.Modifier = "partial"
	p2 := classNamed("N.P")
	p2.Modifier = "static partial"

	repo.Add(&CompilationUnit{FilePath: "a.cs", ClassTypes: []ClassType{p1}})
	assert.Empty(t, repo.Add(&CompilationUnit{FilePath: "b.cs", ClassTypes: []ClassType{p2}}))
}

func TestRepositoryConcurrentAdd(t *testing.T) {
	repo := NewRepository()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			repo.Add(&CompilationUnit{
				FilePath:   fmt.Sprintf("f%d.cs", i),
				ClassTypes: []ClassType{classNamed(fmt.Sprintf("N.C%d", i))},
			})
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, repo.Len())
}

func TestRepositoryReplace(t *testing.T) {
	repo := NewRepository()
	repo.Add(&CompilationUnit{FilePath: "a.cs"})
	repo.Replace(&CompilationUnit{FilePath: "a.cs", Language: LanguageCSharp})
	require.Equal(t, 1, repo.Len())
	assert.Equal(t, LanguageCSharp, repo.CompilationUnits[0].Language)
}

func TestTypeHeaderMetrics(t *testing.T) {
	c := classNamed("N.A")
	c.AddMetric(Metric{Name: MetricExceptionsThrown, ValueType: RelationValueType, Value: map[string]int{"X": 1}})
	c.AddMetric(Metric{Name: MetricExceptionsThrown, ValueType: RelationValueType, Value: map[string]int{"Y": 2}})
	require.Len(t, c.Metrics, 1)

	m, ok := c.Metric(MetricExceptionsThrown)
	require.True(t, ok)
	v, ok := m.RelationValue()
	require.True(t, ok)
	assert.Equal(t, map[string]int{"Y": 2}, v)
}

func TestClassNamespace(t *testing.T) {
	c := classNamed("Outer.Inner.C<T>")
	assert.Equal(t, "Outer.Inner", c.Namespace())
	c.ContainingNamespaceName = "X"
	assert.Equal(t, "X", c.Namespace())
}

func TestLinesOfCodeTotals(t *testing.T) {
	l := LinesOfCode{SourceLines: 3, EmptyLines: 1, CommentedLines: 2}
	l.Add(LinesOfCode{SourceLines: 1})
	assert.Equal(t, 7, l.Total())
	assert.Same(t, &l, l.Lines())
}
