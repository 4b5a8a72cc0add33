// Package extraction runs the C# and Visual Basic fact extractors over a
// project: it finds source files, parses them in parallel, binds every file
// against one compilation per language so names resolve across files, and
// collects the compilation units into a repository.
package extraction

import (
	"path/filepath"
	"strings"

	"github.com/standardbeagle/csfacts/internal/config"
	"github.com/standardbeagle/csfacts/internal/csharp"
	"github.com/standardbeagle/csfacts/internal/logging"
	"github.com/standardbeagle/csfacts/internal/model"
	"github.com/standardbeagle/csfacts/internal/semantic"
	"github.com/standardbeagle/csfacts/internal/visualbasic"
)

// FactExtractor extracts one source file in isolation. Both front ends
// implement it.
type FactExtractor interface {
	ExtractSource(path, content string) (*model.CompilationUnit, error)
}

var (
	_ FactExtractor = (*csharp.FactExtractor)(nil)
	_ FactExtractor = (*visualbasic.FactExtractor)(nil)
)

// ParsedFile is a syntax tree waiting for its semantic model.
type ParsedFile interface {
	Path() string
	Declarations() *semantic.Declarations
	Extract(l logging.Logger, m *semantic.Model) (*model.CompilationUnit, error)
	Close()
}

// Language describes one front end.
type Language struct {
	// Name is the configuration name, e.g. "csharp".
	Name       string
	Extensions []string
	Binding    *semantic.Language
	Parse      func(path, content string) (ParsedFile, error)
	// New returns a single-file extractor.
	New func(l logging.Logger) FactExtractor
}

var languages = []*Language{
	{
		Name:       config.LanguageCSharp,
		Extensions: []string{".cs"},
		Binding:    semantic.CSharp,
		Parse: func(path, content string) (ParsedFile, error) {
			t, err := csharp.SyntaxCreator{}.CreateFile(path, content)
			if err != nil {
				return nil, err
			}
			return csharpFile{t}, nil
		},
		New: func(l logging.Logger) FactExtractor { return csharp.NewFactExtractor(l) },
	},
	{
		Name:       config.LanguageVisualBasic,
		Extensions: []string{".vb"},
		Binding:    semantic.VisualBasic,
		Parse: func(path, content string) (ParsedFile, error) {
			t, err := visualbasic.SyntaxCreator{}.CreateFile(path, content)
			if err != nil {
				return nil, err
			}
			return vbFile{t}, nil
		},
		New: func(l logging.Logger) FactExtractor { return visualbasic.NewFactExtractor(l) },
	},
}

// Languages returns the registered front ends.
func Languages() []*Language {
	return append([]*Language(nil), languages...)
}

// LanguageFor returns the front end handling path by its extension, or nil.
func LanguageFor(path string) *Language {
	ext := strings.ToLower(filepath.Ext(path))
	for _, l := range languages {
		for _, e := range l.Extensions {
			if e == ext {
				return l
			}
		}
	}
	return nil
}

type csharpFile struct{ tree *csharp.Tree }

func (f csharpFile) Path() string { return f.tree.Path }

func (f csharpFile) Declarations() *semantic.Declarations {
	return csharp.CollectDeclarations(f.tree)
}

func (f csharpFile) Extract(l logging.Logger, m *semantic.Model) (*model.CompilationUnit, error) {
	return csharp.NewFactExtractor(l).Extract(f.tree, m)
}

func (f csharpFile) Close() { f.tree.Close() }

type vbFile struct{ tree *visualbasic.Tree }

func (f vbFile) Path() string { return f.tree.Path }

func (f vbFile) Declarations() *semantic.Declarations {
	return visualbasic.CollectDeclarations(f.tree)
}

func (f vbFile) Extract(l logging.Logger, m *semantic.Model) (*model.CompilationUnit, error) {
	return visualbasic.NewFactExtractor(l).Extract(f.tree, m)
}

func (f vbFile) Close() {}
