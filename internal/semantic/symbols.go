package semantic

import (
	"strconv"
	"strings"
)

// MemberKind classifies a declared member.
type MemberKind string

const (
	MemberField       MemberKind = "field"
	MemberProperty    MemberKind = "property"
	MemberEvent       MemberKind = "event"
	MemberMethod      MemberKind = "method"
	MemberConstructor MemberKind = "constructor"
)

// Parameter is a declared parameter with its written type.
type Parameter struct {
	Name     string
	Type     string
	Modifier string
	Optional bool
	Params   bool
}

// MemberSymbol is a declared member. Types are written text, resolved
// against the owner's scope on demand.
type MemberSymbol struct {
	Name           string
	Kind           MemberKind
	Type           string
	Parameters     []Parameter
	TypeParameters []string
	Static         bool
	// Extension marks a static method callable on its first parameter.
	Extension bool
	Owner     *TypeSymbol
}

// Accepts reports whether a call with argc arguments can bind to m.
func (m *MemberSymbol) Accepts(argc int) bool {
	required, total := 0, len(m.Parameters)
	for _, p := range m.Parameters {
		if p.Params {
			return argc >= required
		}
		if !p.Optional {
			required++
		}
	}
	return argc >= required && argc <= total
}

// TypeSymbol is a named type from source or from the framework catalog.
type TypeSymbol struct {
	FullName       string
	Name           string
	Namespace      string
	Kind           string
	TypeParameters []string
	Bases          []string
	Members        []*MemberSymbol
	Containing     *TypeSymbol
	Static         bool
	FromSource     bool
	Path           string
	// Scope is where Bases and member types were written.
	Scope *Scope
}

// Arity is the number of type parameters.
func (t *TypeSymbol) Arity() int { return len(t.TypeParameters) }

// AddMember appends m and sets its owner.
func (t *TypeSymbol) AddMember(m *MemberSymbol) *MemberSymbol {
	m.Owner = t
	t.Members = append(t.Members, m)
	return m
}

// MemberScope is the scope member signatures of t are written in.
func (t *TypeSymbol) MemberScope(typeParameters ...string) *Scope {
	s := t.Scope
	if s == nil {
		s = &Scope{Namespace: t.Namespace}
	}
	return s.WithType(t).WithTypeParameters(typeParameters...)
}

// Import is one using/Imports directive visible in a scope.
type Import struct {
	Name   string
	Alias  string
	Static bool
}

// Scope describes the binding context of a name.
type Scope struct {
	Namespace      string
	Type           *TypeSymbol
	TypeParameters []string
	Imports        []Import
	// framework scopes write built-in types as C# keywords whatever the
	// compilation language.
	framework bool
}

// WithType returns a copy of s whose innermost enclosing type is t. The
// type parameters of t become visible.
func (s *Scope) WithType(t *TypeSymbol) *Scope {
	c := s.clone()
	c.Type = t
	if t != nil {
		c.TypeParameters = append(append([]string{}, t.TypeParameters...), c.TypeParameters...)
	}
	return c
}

// WithTypeParameters returns a copy of s with extra type parameters in
// front, e.g. those of a generic method.
func (s *Scope) WithTypeParameters(names ...string) *Scope {
	if len(names) == 0 {
		return s
	}
	c := s.clone()
	c.TypeParameters = append(append([]string{}, names...), c.TypeParameters...)
	return c
}

// WithImports returns a copy of s with imports appended.
func (s *Scope) WithImports(imports ...Import) *Scope {
	c := s.clone()
	c.Imports = append(append([]Import{}, s.Imports...), imports...)
	return c
}

func (s *Scope) clone() *Scope {
	if s == nil {
		return &Scope{}
	}
	c := *s
	return &c
}

func (s *Scope) hasTypeParameter(name string, l *Language) bool {
	if s == nil {
		return false
	}
	for _, p := range s.TypeParameters {
		if l.Equal(p, name) {
			return true
		}
	}
	return false
}

// key identifies s for caching resolutions.
func (s *Scope) key() string {
	if s == nil {
		return ""
	}
	var b strings.Builder
	if s.framework {
		b.WriteString("fw:")
	}
	b.WriteString(s.Namespace)
	b.WriteByte('|')
	if s.Type != nil {
		b.WriteString(s.Type.FullName)
		b.WriteByte('`')
		b.WriteString(strconv.Itoa(s.Type.Arity()))
	}
	b.WriteByte('|')
	b.WriteString(strings.Join(s.TypeParameters, ","))
	for _, imp := range s.Imports {
		b.WriteByte('|')
		if imp.Static {
			b.WriteString("static ")
		}
		if imp.Alias != "" {
			b.WriteString(imp.Alias)
			b.WriteByte('=')
		}
		b.WriteString(imp.Name)
	}
	return b.String()
}

// Declarations is what a front-end collects from one syntax tree.
type Declarations struct {
	Path       string
	Namespaces []string
	Types      []*TypeSymbol
}
