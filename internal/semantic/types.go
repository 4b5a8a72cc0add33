package semantic

import (
	"strings"

	"github.com/standardbeagle/csfacts/internal/model"
)

// Type is a bound type reference. Values are shared between callers and
// must not be modified; use the With* helpers.
type Type struct {
	Symbol *TypeSymbol
	Args   []*Type
	// Keyword is the display form of a built-in type.
	Keyword string
	Elem    *Type
	// Rank is the array or pointer suffix applied to Elem.
	Rank     string
	Tuple    []*Type
	Nullable bool
	// Param names a type parameter.
	Param string
	// Unresolved keeps the written name of a type that could not be bound.
	Unresolved string
}

// String renders t the way a compiler displays it.
func (t *Type) String() string {
	if t == nil {
		return ""
	}
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t *Type) write(b *strings.Builder) {
	switch {
	case t.Elem != nil:
		t.Elem.write(b)
		b.WriteString(t.Rank)
	case len(t.Tuple) > 0:
		b.WriteByte('(')
		for i, e := range t.Tuple {
			if i > 0 {
				b.WriteString(", ")
			}
			e.write(b)
		}
		b.WriteByte(')')
	case t.Param != "":
		b.WriteString(t.Param)
	case t.Keyword != "":
		b.WriteString(t.Keyword)
	case t.Symbol != nil:
		b.WriteString(t.Symbol.FullName)
	default:
		b.WriteString(t.Unresolved)
	}
	if t.Keyword == "" && len(t.Args) > 0 {
		b.WriteByte('<')
		for i, a := range t.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			a.write(b)
		}
		b.WriteByte('>')
	}
	if t.Nullable {
		b.WriteByte('?')
	}
}

// IsExtern reports whether the outermost named type could not be bound.
func (t *Type) IsExtern() bool {
	if t == nil {
		return true
	}
	if t.Elem != nil {
		return t.Elem.IsExtern()
	}
	return t.Unresolved != ""
}

// Entity converts t to the fact model representation.
func (t *Type) Entity() model.EntityType {
	return model.NewEntityType(t.String(), t.IsExtern())
}

// WithNullable returns a copy of t marked nullable.
func (t *Type) WithNullable(nullable bool) *Type {
	if t == nil || t.Nullable == nullable {
		return t
	}
	c := *t
	c.Nullable = nullable
	return &c
}

// IsValueType reports whether t is a struct, enum or numeric keyword type.
func (t *Type) IsValueType() bool {
	if t == nil {
		return false
	}
	if len(t.Tuple) > 0 {
		return true
	}
	if t.Symbol == nil || t.Elem != nil {
		return false
	}
	switch t.Symbol.Kind {
	case model.KindStruct, model.KindEnum:
		return true
	}
	return false
}

// Bindings maps the type parameters of t's symbol to its arguments.
func (t *Type) Bindings() map[string]*Type {
	if t == nil || t.Symbol == nil || len(t.Args) != len(t.Symbol.TypeParameters) || len(t.Args) == 0 {
		return nil
	}
	m := make(map[string]*Type, len(t.Args))
	for i, p := range t.Symbol.TypeParameters {
		m[p] = t.Args[i]
	}
	return m
}

// Substitute replaces type parameters bound in b.
func (t *Type) Substitute(b map[string]*Type) *Type {
	if t == nil || len(b) == 0 {
		return t
	}
	if t.Param != "" {
		if r, ok := b[t.Param]; ok {
			return r.WithNullable(r.Nullable || t.Nullable)
		}
		return t
	}
	c := *t
	changed := false
	if t.Elem != nil {
		c.Elem = t.Elem.Substitute(b)
		changed = c.Elem != t.Elem
	}
	if len(t.Args) > 0 {
		c.Args = make([]*Type, len(t.Args))
		for i, a := range t.Args {
			c.Args[i] = a.Substitute(b)
			changed = changed || c.Args[i] != a
		}
	}
	if len(t.Tuple) > 0 {
		c.Tuple = make([]*Type, len(t.Tuple))
		for i, e := range t.Tuple {
			c.Tuple[i] = e.Substitute(b)
			changed = changed || c.Tuple[i] != e
		}
	}
	if !changed {
		return t
	}
	return &c
}

// Same reports whether a and b render identically.
func Same(a, b *Type) bool {
	return a.String() == b.String()
}
