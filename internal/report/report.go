// Package report renders an extracted repository as the JSON document
// written by the extract command and returned by the MCP tools.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/standardbeagle/csfacts/internal/extraction"
	"github.com/standardbeagle/csfacts/internal/model"
	"github.com/standardbeagle/csfacts/internal/version"
)

// Document is the top-level output of one extraction run.
type Document struct {
	Tool             string                   `json:"tool"`
	Version          string                   `json:"version"`
	BuildID          string                   `json:"build_id"`
	Root             string                   `json:"root"`
	Summary          Summary                  `json:"summary"`
	Errors           []string                 `json:"errors,omitempty"`
	CompilationUnits []*model.CompilationUnit `json:"compilation_units"`
}

// Summary mirrors extraction.Stats with a JSON friendly duration.
type Summary struct {
	Files      int   `json:"files"`
	Extracted  int   `json:"extracted"`
	Duplicates int   `json:"duplicates"`
	TooLarge   int   `json:"too_large"`
	Failed     int   `json:"failed"`
	Classes    int   `json:"classes"`
	DurationMs int64 `json:"duration_ms"`
}

// New builds the document for repo. err is the error returned by the run;
// each file failure it carries becomes one entry of Errors.
func New(root string, repo *model.Repository, stats extraction.Stats, err error) *Document {
	doc := &Document{
		Tool:    "csfacts",
		Version: version.Version,
		BuildID: version.BuildID(),
		Root:    root,
		Summary: Summary{
			Files:      stats.Files,
			Extracted:  stats.Extracted,
			Duplicates: stats.Duplicates,
			TooLarge:   stats.TooLarge,
			Failed:     stats.Failed,
			DurationMs: stats.Duration.Milliseconds(),
		},
		Errors:           errorList(err),
		CompilationUnits: []*model.CompilationUnit{},
	}
	if repo != nil {
		doc.CompilationUnits = append(doc.CompilationUnits, repo.CompilationUnits...)
		sort.SliceStable(doc.CompilationUnits, func(i, j int) bool {
			return doc.CompilationUnits[i].FilePath < doc.CompilationUnits[j].FilePath
		})
	}
	for _, cu := range doc.CompilationUnits {
		doc.Summary.Classes += len(cu.ClassTypes)
	}
	return doc
}

func errorList(err error) []string {
	if err == nil {
		return nil
	}
	if multi, ok := err.(interface{ Unwrap() []error }); ok {
		var out []string
		for _, e := range multi.Unwrap() {
			out = append(out, e.Error())
		}
		return out
	}
	return []string{err.Error()}
}

// Write encodes doc to w.
func Write(w io.Writer, doc any, indent bool) error {
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}

// FindClass returns the class-like entity with the qualified name, matched
// case-insensitively when no exact match exists, and the unit declaring it.
func FindClass(repo *model.Repository, name string) (model.ClassType, *model.CompilationUnit) {
	var fold model.ClassType
	var foldUnit *model.CompilationUnit
	for _, cu := range repo.CompilationUnits {
		for _, ct := range cu.ClassTypes {
			switch n := ct.Head().Name; {
			case n == name:
				return ct, cu
			case fold == nil && strings.EqualFold(n, name):
				fold, foldUnit = ct, cu
			}
		}
	}
	return fold, foldUnit
}

// ClassEntry is one line of a class listing.
type ClassEntry struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Namespace string `json:"namespace,omitempty"`
	File      string `json:"file"`
	Lines     int    `json:"lines"`
}

// ListClasses lists every class-like entity whose qualified name starts
// with prefix, sorted by name.
func ListClasses(repo *model.Repository, prefix string) []ClassEntry {
	var out []ClassEntry
	for _, cu := range repo.CompilationUnits {
		for _, ct := range cu.ClassTypes {
			h := ct.Head()
			if !strings.HasPrefix(h.Name, prefix) {
				continue
			}
			out = append(out, ClassEntry{
				Name:      h.Name,
				Kind:      h.ClassType,
				Namespace: h.ContainingNamespaceName,
				File:      cu.FilePath,
				Lines:     h.LinesOfCode.SourceLines,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Schema describes the top level of Document. Compilation units are
// described by their required keys only.
func Schema() *jsonschema.Schema {
	integer := func(desc string) *jsonschema.Schema {
		return &jsonschema.Schema{Type: "integer", Description: desc}
	}
	return &jsonschema.Schema{
		Type:        "object",
		Title:       "csfacts extraction output",
		Description: "Structural facts extracted from C# and Visual Basic source files.",
		Required:    []string{"tool", "version", "build_id", "root", "summary", "compilation_units"},
		Properties: map[string]*jsonschema.Schema{
			"tool":     {Type: "string", Enum: []any{"csfacts"}},
			"version":  {Type: "string"},
			"build_id": {Type: "string", Description: "Fingerprint of the binary that produced the output"},
			"root":     {Type: "string", Description: "Project root the files were discovered under"},
			"summary": {
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"files":       integer("Files handed to the extractor"),
					"extracted":   integer("Files extracted into compilation units"),
					"duplicates":  integer("Files skipped because their content was already extracted"),
					"too_large":   integer("Files skipped for exceeding max_file_size"),
					"failed":      integer("Files that could not be parsed or extracted"),
					"classes":     integer("Class-like entities across all units"),
					"duration_ms": integer("Wall time of the run"),
				},
			},
			"errors": {
				Type:  "array",
				Items: &jsonschema.Schema{Type: "string"},
			},
			"compilation_units": {
				Type: "array",
				Items: &jsonschema.Schema{
					Type:     "object",
					Required: []string{"FilePath", "Language", "ClassTypes", "Imports", "LinesOfCode"},
					Properties: map[string]*jsonschema.Schema{
						"FilePath":    {Type: "string"},
						"Language":    {Type: "string", Enum: []any{model.LanguageCSharp, model.LanguageVisualBasic}},
						"Hash":        {Type: "integer", Description: "xxhash64 of the file content"},
						"ClassTypes":  {Type: "array", Items: &jsonschema.Schema{Type: "object"}},
						"Imports":     {Type: "array", Items: &jsonschema.Schema{Type: "object"}},
						"LinesOfCode": {Type: "object"},
						"Metrics":     {Type: "array", Items: &jsonschema.Schema{Type: "object"}},
					},
				},
			},
		},
	}
}
