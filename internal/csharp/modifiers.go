package csharp

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/csfacts/internal/visitor"
)

// accessPhrases are matched longest first.
var accessPhrases = []string{
	"protected internal",
	"private protected",
	"public",
	"protected",
	"internal",
	"private",
	"file",
}

var modifierKeywords = map[string]bool{
	"public": true, "private": true, "protected": true, "internal": true, "file": true,
	"static": true, "abstract": true, "virtual": true, "override": true, "sealed": true,
	"partial": true, "async": true, "readonly": true, "const": true, "extern": true,
	"new": true, "unsafe": true, "volatile": true, "required": true, "fixed": true,
}

// modifiers returns the modifier keywords written on a declaration in
// source order.
func modifiers(n *sitter.Node, src []byte) []string {
	if n == nil {
		return nil
	}
	var out []string
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c == nil {
			continue
		}
		switch {
		case c.Kind() == "modifier":
			out = append(out, compact(text(c, src)))
		case !c.IsNamed() && modifierKeywords[c.Kind()]:
			out = append(out, c.Kind())
		}
	}
	return out
}

func hasModifier(n *sitter.Node, src []byte, mod string) bool {
	for _, m := range modifiers(n, src) {
		if m == mod {
			return true
		}
	}
	return false
}

// accessAndModifier splits the modifiers of n, applying the default access
// of its declaration context when none is written.
func accessAndModifier(n *sitter.Node, src []byte) (string, string) {
	access, rest := visitor.SplitModifiers(modifiers(n, src), accessPhrases, func(a, b string) bool { return a == b })
	if access == "" {
		access = defaultAccess(n)
	}
	return access, rest
}

func defaultAccess(n *sitter.Node) string {
	if field(n, "explicit_interface_specifier") != nil || childOfKind(n, "explicit_interface_specifier") != nil {
		return "private"
	}
	switch n.Kind() {
	case "enum_member_declaration":
		return "public"
	case "destructor_declaration":
		return "protected"
	}
	container := ancestor(n, typeDeclKinds)
	if container == nil {
		if hasKind(n, typeDeclKinds...) {
			return "internal"
		}
		return "private"
	}
	if container.Kind() == "interface_declaration" {
		return "public"
	}
	return "private"
}
