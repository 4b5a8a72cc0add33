// Package metrics aggregates extracted facts into codebase-wide statistics.
package metrics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/standardbeagle/csfacts/internal/model"
)

// CodebaseStats summarizes a repository of compilation units.
type CodebaseStats struct {
	// File-level metrics
	TotalFiles           int                          `json:"total_files"`
	LanguageDistribution map[string]FileLanguageStats `json:"languages"`

	// Type-level metrics
	TotalClasses     int            `json:"total_classes"`
	KindDistribution map[string]int `json:"kinds"`
	TotalMethods     int            `json:"total_methods"`

	// Lines of code over all files
	Lines model.LinesOfCode `json:"lines"`

	// Complexity metrics over methods, constructors, destructors and accessors
	AverageComplexity   float64 `json:"average_complexity"`
	MaxComplexity       int     `json:"max_complexity"`
	MaxComplexityMethod string  `json:"max_complexity_method,omitempty"`
	AverageMethodLength float64 `json:"average_method_length"`

	// Call graph statistics
	TotalCallEdges  int     `json:"total_call_edges"`
	ExternCallEdges int     `json:"extern_call_edges"`
	AverageFanOut   float64 `json:"average_fan_out"`
	AverageFanIn    float64 `json:"average_fan_in"`

	// Exceptions thrown anywhere, by type
	ExceptionsThrown map[string]int `json:"exceptions_thrown,omitempty"`
}

// FileLanguageStats holds the metrics of one language.
type FileLanguageStats struct {
	FileCount   int `json:"files"`
	ClassCount  int `json:"classes"`
	SourceLines int `json:"source_lines"`
}

type member struct {
	name string
	body *model.Body
}

// Calculate computes the statistics of repo.
func Calculate(repo *model.Repository) *CodebaseStats {
	cs := &CodebaseStats{
		LanguageDistribution: make(map[string]FileLanguageStats),
		KindDistribution:     make(map[string]int),
		ExceptionsThrown:     make(map[string]int),
	}

	var bodies []member
	for _, cu := range repo.CompilationUnits {
		cs.TotalFiles++
		cs.Lines.Add(cu.LinesOfCode)

		lang := cs.LanguageDistribution[cu.Language]
		lang.FileCount++
		lang.ClassCount += len(cu.ClassTypes)
		lang.SourceLines += cu.SourceLines
		cs.LanguageDistribution[cu.Language] = lang

		for _, ct := range cu.ClassTypes {
			h := ct.Head()
			cs.TotalClasses++
			cs.KindDistribution[h.ClassType]++
			if m, ok := h.Metric(model.MetricExceptionsThrown); ok {
				if counts, ok := m.RelationValue(); ok {
					for name, n := range counts {
						cs.ExceptionsThrown[name] += n
					}
				}
			}
			if c, ok := ct.(*model.Class); ok {
				bodies = append(bodies, classBodies(c)...)
			}
		}
	}

	cs.computeBodyMetrics(bodies)
	return cs
}

func classBodies(c *model.Class) []member {
	var out []member
	for _, m := range c.Methods {
		out = append(out, member{c.Name + "." + m.Name, &m.Body})
	}
	for _, m := range c.Constructors {
		out = append(out, member{c.Name + "." + m.Name, &m.Body})
	}
	if c.Destructor != nil {
		out = append(out, member{c.Name + "." + c.Destructor.Name, &c.Destructor.Body})
	}
	for _, p := range c.Properties {
		for _, a := range p.Accessors {
			out = append(out, member{c.Name + "." + p.Name + "." + a.Name, &a.Body})
		}
	}
	return out
}

func (cs *CodebaseStats) computeBodyMetrics(bodies []member) {
	cs.TotalMethods = len(bodies)
	if len(bodies) == 0 {
		return
	}

	totalComplexity, totalLines := 0, 0
	targets := make(map[string]bool)
	for _, b := range bodies {
		totalComplexity += b.body.CyclomaticComplexity
		totalLines += b.body.SourceLines
		if b.body.CyclomaticComplexity > cs.MaxComplexity {
			cs.MaxComplexity = b.body.CyclomaticComplexity
			cs.MaxComplexityMethod = b.name
		}
		for _, call := range b.body.CalledMethods {
			cs.TotalCallEdges++
			if call.IsExtern {
				cs.ExternCallEdges++
				continue
			}
			targets[call.DefinitionClassName+"."+call.Name] = true
		}
	}

	cs.AverageComplexity = float64(totalComplexity) / float64(len(bodies))
	cs.AverageMethodLength = float64(totalLines) / float64(len(bodies))
	cs.AverageFanOut = float64(cs.TotalCallEdges) / float64(len(bodies))
	if len(targets) > 0 {
		cs.AverageFanIn = float64(cs.TotalCallEdges-cs.ExternCallEdges) / float64(len(targets))
	}
}

// TopExceptions returns up to n thrown exception types, most thrown first.
func (cs *CodebaseStats) TopExceptions(n int) []string {
	names := make([]string, 0, len(cs.ExceptionsThrown))
	for name := range cs.ExceptionsThrown {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ci, cj := cs.ExceptionsThrown[names[i]], cs.ExceptionsThrown[names[j]]
		if ci != cj {
			return ci > cj
		}
		return names[i] < names[j]
	})
	if len(names) > n {
		names = names[:n]
	}
	return names
}

// FormatAsText returns stats formatted as human-readable text.
func (cs *CodebaseStats) FormatAsText() string {
	var sb strings.Builder

	sb.WriteString("CODEBASE REPORT\n")
	sb.WriteString("===============\n\n")

	sb.WriteString("SUMMARY\n")
	sb.WriteString(fmt.Sprintf("  Total Files:        %d\n", cs.TotalFiles))
	sb.WriteString(fmt.Sprintf("  Total Classes:      %d\n", cs.TotalClasses))
	sb.WriteString(fmt.Sprintf("  Total Methods:      %d\n", cs.TotalMethods))
	sb.WriteString(fmt.Sprintf("  Source Lines:       %d\n", cs.Lines.SourceLines))
	sb.WriteString(fmt.Sprintf("  Comment Lines:      %d\n", cs.Lines.CommentedLines))
	sb.WriteString(fmt.Sprintf("  Empty Lines:        %d\n", cs.Lines.EmptyLines))

	sb.WriteString("\nLANGUAGE DISTRIBUTION\n")
	langs := make([]string, 0, len(cs.LanguageDistribution))
	for name := range cs.LanguageDistribution {
		langs = append(langs, name)
	}
	sort.Slice(langs, func(i, j int) bool {
		return cs.LanguageDistribution[langs[i]].FileCount > cs.LanguageDistribution[langs[j]].FileCount
	})
	for _, name := range langs {
		l := cs.LanguageDistribution[name]
		sb.WriteString(fmt.Sprintf("  %-14s %5d files  %6d classes  %8d lines\n", name+":", l.FileCount, l.ClassCount, l.SourceLines))
	}

	sb.WriteString("\nKINDS\n")
	kinds := make([]string, 0, len(cs.KindDistribution))
	for kind := range cs.KindDistribution {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		sb.WriteString(fmt.Sprintf("  %-14s %5d\n", kind+":", cs.KindDistribution[kind]))
	}

	sb.WriteString("\nCOMPLEXITY\n")
	sb.WriteString(fmt.Sprintf("  Avg Complexity:     %.2f\n", cs.AverageComplexity))
	sb.WriteString(fmt.Sprintf("  Max Complexity:     %d", cs.MaxComplexity))
	if cs.MaxComplexityMethod != "" {
		sb.WriteString(" (" + cs.MaxComplexityMethod + ")")
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  Avg Method Length:  %.1f lines\n", cs.AverageMethodLength))

	sb.WriteString("\nCALL GRAPH\n")
	sb.WriteString(fmt.Sprintf("  Total Edges:        %d\n", cs.TotalCallEdges))
	sb.WriteString(fmt.Sprintf("  Extern Edges:       %d\n", cs.ExternCallEdges))
	sb.WriteString(fmt.Sprintf("  Avg Fan-Out:        %.2f\n", cs.AverageFanOut))
	sb.WriteString(fmt.Sprintf("  Avg Fan-In:         %.2f\n", cs.AverageFanIn))

	if top := cs.TopExceptions(5); len(top) > 0 {
		sb.WriteString("\nEXCEPTIONS THROWN\n")
		for _, name := range top {
			sb.WriteString(fmt.Sprintf("  %-40s %5d\n", name, cs.ExceptionsThrown[name]))
		}
	}

	return sb.String()
}
