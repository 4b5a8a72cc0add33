package csharp

import (
	csferrors "github.com/standardbeagle/csfacts/internal/errors"
	"github.com/standardbeagle/csfacts/internal/logging"
	"github.com/standardbeagle/csfacts/internal/model"
	"github.com/standardbeagle/csfacts/internal/semantic"
	"github.com/standardbeagle/csfacts/internal/visitor"
)

// SemanticCreator builds the semantic model of a single tree on top of the
// framework catalog.
type SemanticCreator struct{}

// Create returns a model binding names declared in t and the framework.
func (SemanticCreator) Create(t *Tree) (*semantic.Model, error) {
	return semantic.NewModel(semantic.CSharp, CollectDeclarations(t))
}

// FactExtractor turns a C# tree and its semantic model into a compilation
// unit. Visitor failures are logged through Logger and never abort the
// extraction.
type FactExtractor struct {
	Logger logging.Logger
}

// NewFactExtractor returns an extractor logging to l. A nil l discards.
func NewFactExtractor(l logging.Logger) *FactExtractor {
	if l == nil {
		l = logging.Nop()
	}
	return &FactExtractor{Logger: l}
}

// Extract runs the full visitor pipeline over tree. A nil m gets a
// single-file model.
func (e *FactExtractor) Extract(tree *Tree, m *semantic.Model) (*model.CompilationUnit, error) {
	root := tree.Root()
	if root == nil {
		path := ""
		if tree != nil {
			path = tree.Path
		}
		return nil, csferrors.NewParseError(model.LanguageCSharp, csferrors.ErrUnusableTree).WithFile(path)
	}
	if m == nil {
		var err error
		if m, err = (SemanticCreator{}).Create(tree); err != nil {
			return nil, csferrors.NewExtractionError("semantic model", tree.Path, err)
		}
	}

	logger := e.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	ctx := &visitor.Context{Logger: logger, Model: m, Source: tree.Source, Path: tree.Path}
	cu := &model.CompilationUnit{FilePath: tree.Path, Language: model.LanguageCSharp}
	visitor.Run(ctx, NewCompilationUnitVisitors(), root, cu)
	return cu, nil
}

// ExtractSource parses content and extracts it against a single-file model.
func (e *FactExtractor) ExtractSource(path, content string) (*model.CompilationUnit, error) {
	tree, err := SyntaxCreator{}.CreateFile(path, content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()
	return e.Extract(tree, nil)
}
