package semantic

import (
	"sort"
	"strings"

	"github.com/standardbeagle/csfacts/internal/model"
)

// MemberRef is a member found on a type. Owner is the declaring type with
// the receiver's type arguments applied.
type MemberRef struct {
	Member *MemberSymbol
	Owner  *Type
	// Inferred binds the member's own type parameters.
	Inferred map[string]*Type
	// Reduced is set for extension methods called on a receiver; the first
	// parameter is then implicit.
	Reduced bool
}

// OwnerName is the full name of the declaring type without arguments.
func (r *MemberRef) OwnerName() string {
	if r == nil || r.Owner == nil {
		return ""
	}
	if r.Owner.Symbol != nil {
		return r.Owner.Symbol.FullName
	}
	return r.Owner.String()
}

// FindMember looks name up on t and then on its bases. With kinds given
// only those member kinds match.
func (m *Model) FindMember(t *Type, name string, kinds ...MemberKind) (*MemberRef, bool) {
	var found *MemberRef
	m.walk(t, func(owner *Type, mem *MemberSymbol) bool {
		if mem.Kind == MemberConstructor || !m.comp.lang.Equal(mem.Name, name) || !kindIn(mem.Kind, kinds) {
			return false
		}
		found = &MemberRef{Member: mem, Owner: owner}
		return true
	})
	return found, found != nil
}

// FindMethod picks the first overload of name accepting argc arguments. When
// none accepts that count the first method with the name is returned.
func (m *Model) FindMethod(t *Type, name string, argc int) (*MemberRef, bool) {
	var exact, first *MemberRef
	m.walk(t, func(owner *Type, mem *MemberSymbol) bool {
		if mem.Kind != MemberMethod || !m.comp.lang.Equal(mem.Name, name) {
			return false
		}
		ref := &MemberRef{Member: mem, Owner: owner}
		if first == nil {
			first = ref
		}
		if mem.Accepts(argc) {
			exact = ref
			return true
		}
		return false
	})
	if exact != nil {
		return exact, true
	}
	return first, first != nil
}

// FindConstructor picks the constructor of t accepting argc arguments.
// Constructors are not inherited.
func (m *Model) FindConstructor(t *Type, argc int) (*MemberRef, bool) {
	if t == nil || t.Symbol == nil {
		return nil, false
	}
	var first *MemberRef
	for _, mem := range t.Symbol.Members {
		if mem.Kind != MemberConstructor {
			continue
		}
		ref := &MemberRef{Member: mem, Owner: t}
		if mem.Accepts(argc) {
			return ref, true
		}
		if first == nil {
			first = ref
		}
	}
	return first, first != nil
}

// MemberType returns the declared type of a field, property or event, or the
// return type of a method, with the owner's type arguments applied.
func (m *Model) MemberType(ref *MemberRef) *Type {
	if ref == nil || ref.Member == nil {
		return nil
	}
	if ref.Member.Kind == MemberConstructor {
		return ref.Owner
	}
	t := m.comp.resolve(ref.Member.Type, ref.Member.Owner.MemberScope(ref.Member.TypeParameters...))
	return t.Substitute(ref.Owner.Bindings()).Substitute(ref.Inferred)
}

// ParameterTypes returns the declared parameter types of a method or
// constructor with the owner's type arguments applied.
func (m *Model) ParameterTypes(ref *MemberRef) []*Type {
	if ref == nil || ref.Member == nil {
		return nil
	}
	params := ref.Member.Parameters
	if ref.Reduced && len(params) > 0 {
		params = params[1:]
	}
	return m.parameterTypes(ref, params)
}

func (m *Model) parameterTypes(ref *MemberRef, params []Parameter) []*Type {
	scope := ref.Member.Owner.MemberScope(ref.Member.TypeParameters...)
	bindings := ref.Owner.Bindings()
	out := make([]*Type, 0, len(params))
	for _, p := range params {
		out = append(out, m.comp.resolve(p.Type, scope).Substitute(bindings).Substitute(ref.Inferred))
	}
	return out
}

// Infer binds the type parameters of a generic method from explicit type
// arguments or, failing that, from the types of the arguments passed.
// Arguments of unknown type may be nil.
func (m *Model) Infer(ref *MemberRef, explicit []*Type, args []*Type) {
	tps := ref.Member.TypeParameters
	if len(tps) == 0 {
		return
	}
	inferred := make(map[string]*Type, len(tps))
	for k, v := range ref.Inferred {
		inferred[k] = v
	}
	ref.Inferred = inferred
	if len(explicit) == len(tps) {
		for i, p := range tps {
			ref.Inferred[p] = explicit[i]
		}
		return
	}
	declared := m.parameterTypes(&MemberRef{Member: ref.Member, Owner: ref.Owner}, ref.Member.Parameters)
	if ref.Reduced && len(declared) > 0 {
		declared = declared[1:]
	}
	for i, d := range declared {
		if i >= len(args) {
			break
		}
		m.unify(d, args[i], ref.Inferred, 0)
	}
	if len(ref.Inferred) == 0 {
		ref.Inferred = nil
	}
}

// unify records bindings for the type parameters in formal that make it
// match actual.
func (m *Model) unify(formal, actual *Type, out map[string]*Type, depth int) {
	if formal == nil || actual == nil || depth > 8 {
		return
	}
	switch {
	case formal.Param != "":
		if _, ok := out[formal.Param]; !ok {
			out[formal.Param] = actual.WithNullable(actual.Nullable && !formal.Nullable)
		}
	case formal.Elem != nil:
		if actual.Elem != nil {
			m.unify(formal.Elem, actual.Elem, out, depth+1)
		}
	case formal.Symbol != nil && len(formal.Args) > 0:
		if match := m.AsInstanceOf(actual, formal.Symbol); match != nil {
			for i := range formal.Args {
				if i < len(match.Args) {
					m.unify(formal.Args[i], match.Args[i], out, depth+1)
				}
			}
		}
	}
}

// AsInstanceOf finds sym among t and its bases, with t's arguments applied.
// Arrays count as IEnumerable<T> of their element.
func (m *Model) AsInstanceOf(t *Type, sym *TypeSymbol) *Type {
	if t == nil || sym == nil {
		return nil
	}
	if t.Elem != nil && t.Rank != "*" && sym.Arity() == 1 {
		return &Type{Symbol: sym, Args: []*Type{t.Elem}}
	}
	queue := []*Type{t}
	seen := make(map[*TypeSymbol]bool)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == nil || cur.Symbol == nil || seen[cur.Symbol] {
			continue
		}
		if cur.Symbol == sym {
			return cur
		}
		seen[cur.Symbol] = true
		bindings := cur.Bindings()
		base, interfaces := m.BaseTypes(cur.Symbol)
		if base != nil {
			queue = append(queue, base.Substitute(bindings))
		}
		for _, i := range interfaces {
			queue = append(queue, i.Substitute(bindings))
		}
	}
	return nil
}

// FindExtension looks for an extension method callable as receiver.name
// with argc explicit arguments. Only static classes whose namespace is
// visible from scope are searched.
func (m *Model) FindExtension(receiver *Type, name string, argc int, scope *Scope) (*MemberRef, bool) {
	if receiver == nil {
		return nil, false
	}
	var hosts []*TypeSymbol
	m.comp.mu.RLock()
	for _, t := range m.comp.types {
		if t.Static && extensionVisible(t, scope, m.comp.lang) {
			hosts = append(hosts, t)
		}
	}
	m.comp.mu.RUnlock()
	sort.Slice(hosts, func(i, j int) bool { return hosts[i].FullName < hosts[j].FullName })

	for _, host := range hosts {
		for _, mem := range host.Members {
			if !mem.Extension || mem.Kind != MemberMethod || !m.comp.lang.Equal(mem.Name, name) || !mem.Accepts(argc+1) {
				continue
			}
			ref := &MemberRef{Member: mem, Owner: m.comp.named(host, nil), Reduced: true}
			first := m.parameterTypes(ref, mem.Parameters[:1])[0]
			bindings := make(map[string]*Type)
			m.unify(first, receiver, bindings, 0)
			if len(bindings) > 0 {
				ref.Inferred = bindings
			}
			return ref, true
		}
	}
	return nil, false
}

func extensionVisible(t *TypeSymbol, scope *Scope, l *Language) bool {
	if scope == nil {
		return t.Namespace == ""
	}
	ns := scope.Namespace
	for {
		if l.Equal(ns, t.Namespace) {
			return true
		}
		if ns == "" {
			break
		}
		ns, _ = splitQualified(ns)
	}
	for _, imp := range scope.Imports {
		if imp.Alias != "" {
			continue
		}
		if l.Equal(imp.Name, t.Namespace) || imp.Static && l.Equal(strings.TrimPrefix(imp.Name, "global::"), t.FullName) {
			return true
		}
	}
	return false
}

// Members returns the members of sym named name, in declaration order.
func (m *Model) Members(sym *TypeSymbol, name string) []*MemberSymbol {
	if sym == nil {
		return nil
	}
	var out []*MemberSymbol
	for _, mem := range sym.Members {
		if m.comp.lang.Equal(mem.Name, name) {
			out = append(out, mem)
		}
	}
	return out
}

// walk visits the members of t, then of its base class chain and declared
// interfaces, until visit returns true.
func (m *Model) walk(t *Type, visit func(owner *Type, mem *MemberSymbol) bool) {
	if t == nil {
		return
	}
	queue := m.lookupTypes(t)
	seen := make(map[*TypeSymbol]bool)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == nil || cur.Symbol == nil || seen[cur.Symbol] {
			continue
		}
		seen[cur.Symbol] = true
		for _, mem := range cur.Symbol.Members {
			if visit(cur, mem) {
				return
			}
		}

		bindings := cur.Bindings()
		base, interfaces := m.BaseTypes(cur.Symbol)
		if base != nil {
			queue = append(queue, base.Substitute(bindings))
		}
		for _, i := range interfaces {
			queue = append(queue, i.Substitute(bindings))
		}
		if cur.Symbol.Kind == model.KindInterface && len(queue) == 0 {
			queue = append(queue, m.Named("System.Object"))
		}
	}
}

// lookupTypes maps a receiver to the types whose members it exposes.
func (m *Model) lookupTypes(t *Type) []*Type {
	switch {
	case t.Elem != nil && t.Rank != "*":
		return []*Type{m.Named("System.Array")}
	case t.Param != "":
		return []*Type{m.Named("System.Object")}
	case t.Nullable && t.IsValueType():
		if n := m.comp.lookupType("System.Nullable", 1); n != nil {
			return []*Type{{Symbol: n, Args: []*Type{t.WithNullable(false)}}, t.WithNullable(false)}
		}
	}
	return []*Type{t}
}

func kindIn(k MemberKind, kinds []MemberKind) bool {
	if len(kinds) == 0 {
		return true
	}
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}

// Modules returns the VB modules whose members can be named without
// qualification from scope, ordered by name.
func (m *Model) Modules(scope *Scope) []*Type {
	var syms []*TypeSymbol
	m.comp.mu.RLock()
	for _, t := range m.comp.types {
		if t.Kind == model.KindModule && extensionVisible(t, scope, m.comp.lang) {
			syms = append(syms, t)
		}
	}
	m.comp.mu.RUnlock()
	sort.Slice(syms, func(i, j int) bool { return syms[i].FullName < syms[j].FullName })
	out := make([]*Type, 0, len(syms))
	for _, s := range syms {
		out = append(out, m.comp.named(s, nil))
	}
	return out
}
