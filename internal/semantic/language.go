package semantic

import (
	"strings"

	"github.com/standardbeagle/csfacts/internal/model"
)

// Language holds the name-binding conventions of a front-end.
type Language struct {
	Name       string
	IgnoreCase bool
	// Keywords maps built-in type keywords to the framework type they alias.
	Keywords map[string]string
	display  map[string]string
}

// Display returns the keyword a framework type is rendered as, if any.
func (l *Language) Display(fullName string) (string, bool) {
	kw, ok := l.display[l.fold(fullName)]
	return kw, ok
}

// Keyword returns the framework type behind a built-in keyword.
func (l *Language) Keyword(name string) (string, bool) {
	if l.IgnoreCase {
		for kw, full := range l.Keywords {
			if strings.EqualFold(kw, name) {
				return full, true
			}
		}
		return "", false
	}
	full, ok := l.Keywords[name]
	return full, ok
}

// Equal compares identifiers with the language's case rules.
func (l *Language) Equal(a, b string) bool {
	if l.IgnoreCase {
		return strings.EqualFold(a, b)
	}
	return a == b
}

func (l *Language) fold(s string) string {
	if l.IgnoreCase {
		return strings.ToLower(s)
	}
	return s
}

func newLanguage(name string, ignoreCase bool, keywords map[string]string, renderAs []string) *Language {
	l := &Language{Name: name, IgnoreCase: ignoreCase, Keywords: keywords, display: make(map[string]string)}
	for _, kw := range renderAs {
		l.display[l.fold(keywords[kw])] = kw
	}
	return l
}

var (
	// CSharp binds case-sensitively and renders framework types as keywords.
	CSharp = newLanguage(model.LanguageCSharp, false, map[string]string{
		"object":  "System.Object",
		"dynamic": "System.Object",
		"string":  "System.String",
		"bool":    "System.Boolean",
		"byte":    "System.Byte",
		"sbyte":   "System.SByte",
		"char":    "System.Char",
		"short":   "System.Int16",
		"ushort":  "System.UInt16",
		"int":     "System.Int32",
		"uint":    "System.UInt32",
		"long":    "System.Int64",
		"ulong":   "System.UInt64",
		"float":   "System.Single",
		"double":  "System.Double",
		"decimal": "System.Decimal",
		"void":    "System.Void",
		"nint":    "System.IntPtr",
		"nuint":   "System.UIntPtr",
	}, []string{
		"object", "string", "bool", "byte", "sbyte", "char", "short", "ushort",
		"int", "uint", "long", "ulong", "float", "double", "decimal", "void",
	})

	// VisualBasic binds case-insensitively.
	VisualBasic = newLanguage(model.LanguageVisualBasic, true, map[string]string{
		"Object":   "System.Object",
		"String":   "System.String",
		"Boolean":  "System.Boolean",
		"Byte":     "System.Byte",
		"SByte":    "System.SByte",
		"Char":     "System.Char",
		"Short":    "System.Int16",
		"UShort":   "System.UInt16",
		"Integer":  "System.Int32",
		"UInteger": "System.UInt32",
		"Long":     "System.Int64",
		"ULong":    "System.UInt64",
		"Single":   "System.Single",
		"Double":   "System.Double",
		"Decimal":  "System.Decimal",
		"Date":     "System.DateTime",
	}, []string{
		"Object", "String", "Boolean", "Byte", "SByte", "Char", "Short", "UShort",
		"Integer", "UInteger", "Long", "ULong", "Single", "Double", "Decimal", "Date",
	})
)
