package semantic

import "github.com/standardbeagle/csfacts/internal/model"

// Model answers binding questions for one syntax tree.
type Model struct {
	comp *Compilation
	Path string
}

// NewModel creates a single-tree model over the framework catalog and decls.
func NewModel(lang *Language, decls *Declarations) (*Model, error) {
	c, err := NewCompilation(lang)
	if err != nil {
		return nil, err
	}
	c.Add(decls)
	path := ""
	if decls != nil {
		path = decls.Path
	}
	return c.Model(path), nil
}

// Compilation returns the compilation the model belongs to.
func (m *Model) Compilation() *Compilation { return m.comp }

// Language returns the binding conventions of the model.
func (m *Model) Language() *Language { return m.comp.lang }

// ResolveType binds written type text in scope. Unbindable names come back
// as unresolved types rather than errors.
func (m *Model) ResolveType(written string, scope *Scope) *Type {
	return m.comp.resolve(written, scope)
}

// ResolveTypeName binds a type name with the given generic arity.
func (m *Model) ResolveTypeName(name string, arity int, scope *Scope) (*TypeSymbol, bool) {
	s, _ := m.comp.resolveName(stripSegmentArguments(name), arity, scope)
	return s, s != nil
}

// LookupType finds a type by full name and arity.
func (m *Model) LookupType(fullName string, arity int) (*TypeSymbol, bool) {
	s := m.comp.lookupType(fullName, arity)
	return s, s != nil
}

// Named returns the type fullName with no type arguments, or an unresolved
// type when the compilation does not know it.
func (m *Model) Named(fullName string) *Type {
	if s := m.comp.lookupType(fullName, 0); s != nil {
		return m.comp.named(s, nil)
	}
	return &Type{Unresolved: fullName}
}

// Keyword returns the built-in type written as kw in the model's language.
func (m *Model) Keyword(kw string) *Type {
	if full, ok := m.comp.lang.Keyword(kw); ok {
		return m.comp.keywordType(kw, full)
	}
	return &Type{Unresolved: kw}
}

// Open returns sym applied to its own type parameters.
func (m *Model) Open(sym *TypeSymbol) *Type { return m.comp.open(sym) }

// Construct returns sym applied to args.
func (m *Model) Construct(sym *TypeSymbol, args []*Type) *Type { return m.comp.named(sym, args) }

// IsNamespace reports whether name is a known namespace.
func (m *Model) IsNamespace(name string) bool { return m.comp.isNamespace(name) }

// ResolveNamespace binds a namespace name written in scope.
func (m *Model) ResolveNamespace(name string, scope *Scope) (string, bool) {
	return m.comp.resolveNamespace(name, scope)
}

// ClassifyAlias tells whether an alias directive names a namespace or a type.
func (m *Model) ClassifyAlias(target string, scope *Scope) model.AliasType {
	if _, ok := m.comp.resolveNamespace(target, scope); ok {
		return model.AliasNamespace
	}
	t := m.comp.resolveWritten(target, &Scope{Namespace: namespaceOf(scope)})
	if t != nil && !t.IsExtern() {
		return model.AliasClass
	}
	return model.AliasNotDetermined
}

// BaseTypes returns the base class of sym, explicit or implied, and the
// interfaces it declares, in declaration order. Interfaces have no base
// class. An unresolved base is treated as an interface when its name looks
// like one.
func (m *Model) BaseTypes(sym *TypeSymbol) (*Type, []*Type) {
	declared := m.comp.declaredBases(sym)
	var base *Type
	var interfaces []*Type
	for i, b := range declared {
		if b == nil {
			continue
		}
		if i == 0 && sym.Kind != model.KindInterface && !isInterface(b) {
			base = b
			continue
		}
		interfaces = append(interfaces, b)
	}
	if base == nil {
		base = m.defaultBase(sym)
	}
	return base, interfaces
}

func (m *Model) defaultBase(sym *TypeSymbol) *Type {
	var full string
	switch sym.Kind {
	case model.KindClass, model.KindRecord, model.KindModule:
		full = "System.Object"
	case model.KindStruct:
		full = "System.ValueType"
	case model.KindEnum:
		full = "System.Enum"
	case model.KindDelegate:
		full = "System.MulticastDelegate"
	default:
		return nil
	}
	if sym.FullName == full {
		return nil
	}
	return m.Named(full)
}

func isInterface(t *Type) bool {
	if t.Symbol != nil {
		return t.Symbol.Kind == model.KindInterface
	}
	if t.Unresolved != "" {
		return looksLikeInterface(t.Unresolved)
	}
	return false
}

func namespaceOf(scope *Scope) string {
	if scope == nil {
		return ""
	}
	return scope.Namespace
}
