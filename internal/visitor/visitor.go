// Package visitor is the extraction protocol shared by the language
// front-ends. A leaf visitor sets one fact on a model; a Setter discovers
// child syntax nodes, builds one model per child, runs its own visitors on
// it and attaches it to the parent model. Setters are visitors themselves,
// so pipelines nest to any depth.
package visitor

import (
	"fmt"

	"github.com/standardbeagle/csfacts/internal/errors"
	"github.com/standardbeagle/csfacts/internal/logging"
	"github.com/standardbeagle/csfacts/internal/model"
	"github.com/standardbeagle/csfacts/internal/semantic"
)

// Context is shared by every visitor of one extraction pass.
type Context struct {
	Logger logging.Logger
	Model  *semantic.Model
	Source []byte
	Path   string
}

// Warn logs a non-fatal problem.
func (c *Context) Warn(format string, args ...any) {
	if c == nil || c.Logger == nil {
		return
	}
	c.Logger.Log(fmt.Sprintf(format, args...), logging.LevelWarn)
}

// Visitor populates model m from node.
type Visitor[N, M any] interface {
	Name() string
	Visit(ctx *Context, node N, m M) error
}

// Func adapts a function to Visitor.
type Func[N, M any] struct {
	Label string
	Fn    func(ctx *Context, node N, m M) error
}

// NewFunc returns a named function visitor.
func NewFunc[N, M any](name string, fn func(ctx *Context, node N, m M) error) Func[N, M] {
	return Func[N, M]{Label: name, Fn: fn}
}

func (f Func[N, M]) Name() string { return f.Label }

func (f Func[N, M]) Visit(ctx *Context, node N, m M) error { return f.Fn(ctx, node, m) }

// Run applies every visitor to m in order. A visitor that returns an error
// or panics is logged once and skipped; the others still run. Run returns
// the number of visitors that failed.
func Run[N, M any](ctx *Context, visitors []Visitor[N, M], node N, m M) int {
	failed := 0
	for _, v := range visitors {
		if err := safeVisit(ctx, v, node, m); err != nil {
			failed++
			ctx.Warn("%v", err.WithEntity(entityName(m)))
		}
	}
	return failed
}

func safeVisit[N, M any](ctx *Context, v Visitor[N, M], node N, m M) (verr *errors.VisitorError) {
	defer func() {
		if r := recover(); r != nil {
			verr = errors.NewVisitorPanic(v.Name(), r)
		}
	}()
	if err := v.Visit(ctx, node, m); err != nil {
		return errors.NewVisitorError(v.Name(), err)
	}
	return nil
}

func entityName(m any) string {
	switch e := m.(type) {
	case interface{ Decl() *model.Declaration }:
		return e.Decl().Name
	case interface{ Head() *model.TypeHeader }:
		return e.Head().Name
	case *model.CompilationUnit:
		return e.FilePath
	}
	return ""
}
