package visualbasic

import (
	"strings"

	"github.com/standardbeagle/csfacts/internal/visitor"
)

// accessPhrases are matched longest first.
var accessPhrases = []string{
	"Protected Friend",
	"Private Protected",
	"Public",
	"Protected",
	"Friend",
	"Private",
}

// accessAndModifier splits the modifiers of n, applying the default access
// of its declaration context when none is written.
func accessAndModifier(n *Node) (string, string) {
	access, rest := visitor.SplitModifiers(n.modifiers, accessPhrases, strings.EqualFold)
	if access == "" {
		access = defaultAccess(n)
	}
	return access, rest
}

// defaultAccess is the access of a declaration written without one. Types
// outside a type are Friend and fields of classes and modules are Private;
// everything else is Public.
func defaultAccess(n *Node) string {
	container := ancestor(n, typeDeclKinds...)
	switch {
	case container == nil:
		return "Friend"
	case n.Kind == KindField && hasKind(container, KindClass, KindModule):
		return "Private"
	}
	return "Public"
}

// declAccess returns the access modifier and the other modifiers of n.
// Declarators take those of their field, and accessors without their own
// access take the property's.
func declAccess(n *Node) (string, string) {
	switch n.Kind {
	case KindDeclarator:
		return accessAndModifier(n.Parent)
	case KindAccessor:
		propAccess, _ := accessAndModifier(n.Parent)
		access, rest := visitor.SplitModifiers(n.modifiers, accessPhrases, strings.EqualFold)
		if access == "" {
			access = propAccess
		}
		return access, rest
	case KindEnumMember:
		return "Public", ""
	}
	return accessAndModifier(n)
}
