package model

import "strings"

// ParseGenericType parses a compiler-rendered type string such as
// "Namespace.Outer<Inner1, Inner2<int?>>?" into a tree. A trailing '?' marks
// only the segment it follows as nullable.
//
// Arrays and tuples keep their full rendering as the name and list their
// element types as contained nodes. For a nested generic such as
// "Outer<T>.Inner<U>" only the last segment's arguments are split out; the
// name keeps "Outer<T>.Inner".
func ParseGenericType(s string) GenericType {
	s = strings.TrimSpace(s)
	if s == "" {
		return GenericType{}
	}

	var t GenericType
	if strings.HasSuffix(s, "?") {
		t.IsNullable = true
		s = strings.TrimSpace(s[:len(s)-1])
	}

	switch {
	case strings.HasSuffix(s, "]") && matchingOpen(s, len(s)-1, '[', ']') > 0:
		t.Name = s
		t.ContainedTypes = []GenericType{ParseGenericType(s[:matchingOpen(s, len(s)-1, '[', ']')])}
	case strings.HasPrefix(s, "(") && matchingClose(s, 0, '(', ')') == len(s)-1:
		t.Name = s
		for _, part := range splitTopLevel(s[1 : len(s)-1]) {
			t.ContainedTypes = append(t.ContainedTypes, ParseGenericType(stripTupleElementName(part)))
		}
	case strings.HasSuffix(s, ">") && matchingOpen(s, len(s)-1, '<', '>') > 0:
		open := matchingOpen(s, len(s)-1, '<', '>')
		t.Name = strings.TrimSpace(s[:open])
		for _, part := range splitTopLevel(s[open+1 : len(s)-1]) {
			t.ContainedTypes = append(t.ContainedTypes, ParseGenericType(part))
		}
	default:
		t.Name = s
	}
	return t
}

// String renders the tree back into the display form.
func (g GenericType) String() string {
	var b strings.Builder
	b.WriteString(g.Name)
	if len(g.ContainedTypes) > 0 && !g.composite() {
		b.WriteByte('<')
		for i, c := range g.ContainedTypes {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(c.String())
		}
		b.WriteByte('>')
	}
	if g.IsNullable {
		b.WriteByte('?')
	}
	return b.String()
}

// composite reports whether the name already renders the contained types,
// as for arrays and tuples.
func (g GenericType) composite() bool {
	return strings.HasPrefix(g.Name, "(") || strings.HasSuffix(g.Name, "]")
}

// Arity returns the number of contained type nodes at this level.
func (g GenericType) Arity() int { return len(g.ContainedTypes) }

// SplitTypeArguments splits a comma-separated list at bracket depth zero.
func SplitTypeArguments(s string) []string { return splitTopLevel(s) }

// StripTypeArguments removes the generic argument list of the outermost
// segment: "N.List<int>" becomes "N.List".
func StripTypeArguments(name string) string {
	name = strings.TrimSuffix(strings.TrimSpace(name), "?")
	if i := strings.IndexByte(name, '<'); i >= 0 {
		return name[:i]
	}
	return name
}

// ShortName returns the last dotted segment of a type name without type
// arguments.
func ShortName(name string) string {
	name = StripTypeArguments(name)
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}

// TupleElementType drops the element name of a tuple element: "int count"
// becomes "int".
func TupleElementType(part string) string { return stripTupleElementName(part) }

func splitTopLevel(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '(', '[':
			depth++
		case '>', ')', ']':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if rest := strings.TrimSpace(s[start:]); rest != "" || len(parts) > 0 {
		parts = append(parts, rest)
	}
	return parts
}

func matchingClose(s string, open int, o, c byte) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case o:
			depth++
		case c:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func matchingOpen(s string, close int, o, c byte) int {
	depth := 0
	for i := close; i >= 0; i-- {
		switch s[i] {
		case c:
			depth++
		case o:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// stripTupleElementName turns "int count" into "int".
func stripTupleElementName(part string) string {
	depth := 0
	for i := len(part) - 1; i >= 0; i-- {
		switch part[i] {
		case '>', ')', ']':
			depth++
		case '<', '(', '[':
			depth--
		case ' ':
			if depth == 0 {
				return strings.TrimSpace(part[:i])
			}
		}
	}
	return part
}
