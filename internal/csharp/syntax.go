// Package csharp extracts facts from C# source. Syntax trees come from
// tree-sitter; names are bound through a semantic.Model built from the
// declarations of the analyzed files.
package csharp

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_csharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"

	csferrors "github.com/standardbeagle/csfacts/internal/errors"
	"github.com/standardbeagle/csfacts/internal/model"
)

// Tree is a parsed C# file. Close releases the native tree.
type Tree struct {
	Path   string
	Source []byte
	tree   *sitter.Tree
}

// Root returns the compilation_unit node.
func (t *Tree) Root() *sitter.Node {
	if t == nil || t.tree == nil {
		return nil
	}
	return t.tree.RootNode()
}

// Close releases the tree.
func (t *Tree) Close() {
	if t != nil && t.tree != nil {
		t.tree.Close()
		t.tree = nil
	}
}

// SyntaxCreator parses C# source text.
type SyntaxCreator struct{}

// Create parses content that has no file path.
func (s SyntaxCreator) Create(content string) (*Tree, error) {
	return s.CreateFile("", content)
}

// CreateFile parses content read from path. Empty input and input that
// yields no usable declarations fail with a *errors.ParseError; a tree with
// local syntax errors is accepted.
func (SyntaxCreator) CreateFile(path, content string) (*Tree, error) {
	if strings.TrimSpace(content) == "" {
		return nil, csferrors.NewParseError(model.LanguageCSharp, csferrors.ErrEmptySource).WithFile(path)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(sitter.NewLanguage(tree_sitter_csharp.Language())); err != nil {
		return nil, csferrors.NewParseError(model.LanguageCSharp, err).WithFile(path)
	}

	src := []byte(content)
	tree := parser.Parse(src, nil)
	if tree == nil {
		return nil, csferrors.NewParseError(model.LanguageCSharp, csferrors.ErrUnusableTree).WithFile(path)
	}
	root := tree.RootNode()
	if !usable(root) {
		perr := csferrors.NewParseError(model.LanguageCSharp, csferrors.ErrUnusableTree).WithFile(path)
		if bad := firstError(root); bad != nil {
			pos := bad.StartPosition()
			perr = perr.WithPosition(int(pos.Row)+1, int(pos.Column)+1)
		}
		tree.Close()
		return nil, perr
	}
	return &Tree{Path: path, Source: src, tree: tree}, nil
}

// usable reports whether root has at least one named child that is not an
// error node.
func usable(root *sitter.Node) bool {
	if root == nil || root.IsError() {
		return false
	}
	if !root.HasError() {
		return true
	}
	for i := uint(0); i < root.NamedChildCount(); i++ {
		c := root.NamedChild(i)
		if c != nil && !c.IsError() && c.Kind() != "comment" {
			return true
		}
	}
	return false
}

func firstError(n *sitter.Node) *sitter.Node {
	var found *sitter.Node
	walk(n, func(c *sitter.Node) bool {
		if found != nil {
			return false
		}
		if c.IsError() || c.IsMissing() {
			found = c
			return false
		}
		return c.HasError()
	})
	return found
}

// walk visits n and its descendants depth first in source order. Children
// of a node are skipped when visit returns false.
func walk(n *sitter.Node, visit func(*sitter.Node) bool) {
	if n == nil || !visit(n) {
		return
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		walk(n.Child(i), visit)
	}
}

func text(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	return n.Utf8Text(src)
}

// compact collapses runs of whitespace so written types and names can be
// compared textually.
func compact(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// typeText renders a type node without whitespace variations.
func typeText(n *sitter.Node, src []byte) string {
	s := compact(text(n, src))
	s = strings.ReplaceAll(s, " <", "<")
	s = strings.ReplaceAll(s, "< ", "<")
	s = strings.ReplaceAll(s, " >", ">")
	s = strings.ReplaceAll(s, " ,", ",")
	s = strings.ReplaceAll(s, " ?", "?")
	s = strings.ReplaceAll(s, " [", "[")
	s = strings.ReplaceAll(s, " .", ".")
	s = strings.ReplaceAll(s, ". ", ".")
	return s
}

func field(n *sitter.Node, name string) *sitter.Node {
	if n == nil {
		return nil
	}
	return n.ChildByFieldName(name)
}

// namedChildren returns the named children of n.
func namedChildren(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	out := make([]*sitter.Node, 0, n.NamedChildCount())
	for i := uint(0); i < n.NamedChildCount(); i++ {
		if c := n.NamedChild(i); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// childrenOfKind returns the direct children of n with one of kinds.
func childrenOfKind(n *sitter.Node, kinds ...string) []*sitter.Node {
	var out []*sitter.Node
	for _, c := range namedChildren(n) {
		if hasKind(c, kinds...) {
			out = append(out, c)
		}
	}
	return out
}

func childOfKind(n *sitter.Node, kinds ...string) *sitter.Node {
	for _, c := range namedChildren(n) {
		if hasKind(c, kinds...) {
			return c
		}
	}
	return nil
}

// hasToken reports whether n has an anonymous child token tok.
func hasToken(n *sitter.Node, tok string) bool {
	if n == nil {
		return false
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c != nil && !c.IsNamed() && c.Kind() == tok {
			return true
		}
	}
	return false
}

func hasKind(n *sitter.Node, kinds ...string) bool {
	if n == nil {
		return false
	}
	k := n.Kind()
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}

// ancestor returns the closest proper ancestor of n with one of kinds,
// stopping at nodes with a kind in stop.
func ancestor(n *sitter.Node, kinds []string, stop ...string) *sitter.Node {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if hasKind(p, kinds...) {
			return p
		}
		if hasKind(p, stop...) {
			return nil
		}
	}
	return nil
}

func sameNode(a, b *sitter.Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Id() == b.Id()
}

// nameOf returns the declared identifier of a declaration node.
func nameOf(n *sitter.Node, src []byte) string {
	if name := field(n, "name"); name != nil {
		return text(name, src)
	}
	if id := childOfKind(n, "identifier"); id != nil {
		return text(id, src)
	}
	return ""
}

// initializer returns the expression after "=" in a declarator, parameter
// or property declaration.
func initializer(n *sitter.Node) *sitter.Node {
	if n == nil {
		return nil
	}
	if eq := childOfKind(n, "equals_value_clause"); eq != nil {
		if nc := namedChildren(eq); len(nc) > 0 {
			return nc[len(nc)-1]
		}
	}
	seen := false
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c == nil {
			continue
		}
		if !c.IsNamed() && c.Kind() == "=" {
			seen = true
			continue
		}
		if seen && c.IsNamed() && c.Kind() != "comment" {
			return c
		}
	}
	return nil
}
