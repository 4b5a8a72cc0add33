// Package semantic binds names written in source to declared types and
// members. It stands in for a compiler front-end: declarations collected from
// every syntax tree of a project, plus an embedded catalog of framework
// types, are merged into a Compilation that answers resolution queries.
// Lookups never fail hard; names that cannot be bound come back unresolved
// and are reported as extern.
package semantic

import (
	"strconv"
	"strings"
	"sync"
)

// Compilation aggregates the declarations of many syntax trees. Add all
// declarations first; resolution methods are then safe for concurrent use.
type Compilation struct {
	lang *Language

	mu         sync.RWMutex
	types      map[string]*TypeSymbol
	namespaces map[string]struct{}

	baseMu    sync.Mutex
	bases     map[*TypeSymbol][]*Type
	resolving map[*TypeSymbol]bool

	cache *typeCache
}

// NewCompilation creates a compilation referencing the framework catalog.
func NewCompilation(lang *Language) (*Compilation, error) {
	framework, err := frameworkTypes()
	if err != nil {
		return nil, err
	}
	c := &Compilation{
		lang:       lang,
		types:      make(map[string]*TypeSymbol, len(framework)),
		namespaces: make(map[string]struct{}),
		bases:      make(map[*TypeSymbol][]*Type),
		resolving:  make(map[*TypeSymbol]bool),
		cache:      newTypeCache(0),
	}
	for _, t := range framework {
		c.register(t)
	}
	return c, nil
}

// Language returns the binding conventions of the compilation.
func (c *Compilation) Language() *Language { return c.lang }

// Add merges the declarations of one syntax tree. Partial declarations of
// the same type are merged into the first one seen.
func (c *Compilation) Add(decls *Declarations) {
	if decls == nil {
		return
	}
	c.mu.Lock()
	for _, ns := range decls.Namespaces {
		c.addNamespace(ns)
	}
	for _, t := range decls.Types {
		c.register(t)
	}
	c.mu.Unlock()

	c.baseMu.Lock()
	c.bases = make(map[*TypeSymbol][]*Type)
	c.baseMu.Unlock()
	c.cache.clear()
}

// Model returns the semantic model for the tree at path.
func (c *Compilation) Model(path string) *Model {
	return &Model{comp: c, Path: path}
}

func (c *Compilation) register(t *TypeSymbol) {
	key := c.typeKey(t.FullName, t.Arity())
	if prev, ok := c.types[key]; ok && prev.FromSource && t.FromSource && prev != t {
		prev.Members = append(prev.Members, t.Members...)
		prev.Bases = append(prev.Bases, t.Bases...)
		return
	}
	c.types[key] = t
	c.addNamespace(t.Namespace)
}

func (c *Compilation) addNamespace(ns string) {
	for ns != "" {
		c.namespaces[c.lang.fold(ns)] = struct{}{}
		ns, _ = splitQualified(ns)
	}
}

func (c *Compilation) typeKey(fullName string, arity int) string {
	key := c.lang.fold(fullName)
	if arity > 0 {
		key += "`" + strconv.Itoa(arity)
	}
	return key
}

func (c *Compilation) lookupType(fullName string, arity int) *TypeSymbol {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.types[c.typeKey(fullName, arity)]
}

func (c *Compilation) isNamespace(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.namespaces[c.lang.fold(name)]
	return ok
}

// sourceTypes returns every type declared in source.
func (c *Compilation) sourceTypes() []*TypeSymbol {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []*TypeSymbol
	for _, t := range c.types {
		if t.FromSource {
			out = append(out, t)
		}
	}
	return out
}

// declaredBases resolves the written base list of t in its declaring scope.
func (c *Compilation) declaredBases(t *TypeSymbol) []*Type {
	if len(t.Bases) == 0 {
		return nil
	}
	c.baseMu.Lock()
	if b, ok := c.bases[t]; ok {
		c.baseMu.Unlock()
		return b
	}
	if c.resolving[t] {
		c.baseMu.Unlock()
		return nil
	}
	c.resolving[t] = true
	c.baseMu.Unlock()

	scope := t.Scope
	if scope == nil {
		scope = &Scope{Namespace: t.Namespace}
	}
	scope = scope.WithType(t.Containing).WithTypeParameters(t.TypeParameters...)
	out := make([]*Type, 0, len(t.Bases))
	for _, b := range t.Bases {
		out = append(out, c.resolve(b, scope))
	}

	c.baseMu.Lock()
	delete(c.resolving, t)
	c.bases[t] = out
	c.baseMu.Unlock()
	return out
}

func joinName(ns, name string) string {
	if ns == "" {
		return name
	}
	return ns + "." + name
}

func looksLikeInterface(name string) bool {
	short := name
	if i := strings.LastIndexByte(short, '.'); i >= 0 {
		short = short[i+1:]
	}
	return len(short) > 1 && short[0] == 'I' && short[1] >= 'A' && short[1] <= 'Z'
}
