package semantic

import (
	"strings"

	"github.com/standardbeagle/csfacts/internal/model"
)

// resolve binds written type text in scope. Results are cached per scope.
func (c *Compilation) resolve(written string, scope *Scope) *Type {
	written = strings.TrimSpace(written)
	if written == "" {
		return nil
	}
	key := scope.key() + "\x00" + written
	if t, ok := c.cache.get(key); ok {
		return t
	}
	t := c.resolveWritten(written, scope)
	c.cache.set(key, t)
	return t
}

func (c *Compilation) resolveWritten(text string, scope *Scope) *Type {
	text = strings.TrimPrefix(strings.TrimSpace(text), "global::")
	if text == "" {
		return &Type{Unresolved: "?"}
	}

	if strings.HasSuffix(text, "?") {
		return c.resolveWritten(text[:len(text)-1], scope).WithNullable(true)
	}
	if strings.HasSuffix(text, "*") {
		return &Type{Elem: c.resolveWritten(text[:len(text)-1], scope), Rank: "*"}
	}
	if strings.HasSuffix(text, "]") {
		if open := lastTopLevel(text, '['); open > 0 {
			return &Type{Elem: c.resolveWritten(text[:open], scope), Rank: arrayRank(text[open:])}
		}
	}
	if strings.HasPrefix(text, "(") && strings.HasSuffix(text, ")") {
		var elems []*Type
		for _, part := range model.SplitTypeArguments(text[1 : len(text)-1]) {
			elems = append(elems, c.resolveWritten(model.TupleElementType(part), scope))
		}
		if len(elems) == 1 {
			return elems[0]
		}
		return &Type{Tuple: elems}
	}

	name, argText := splitGeneric(text)
	var args []*Type
	for _, a := range argText {
		args = append(args, c.resolveWritten(a, scope))
	}

	if len(args) == 0 {
		kwLang := c.lang
		if scope != nil && scope.framework {
			kwLang = CSharp
		}
		if full, ok := kwLang.Keyword(name); ok {
			return c.keywordType(name, full)
		}
		if alias, ok := findAlias(scope, name, c.lang); ok {
			return c.resolveAlias(alias, scope)
		}
	}

	sym, isParam := c.resolveName(name, len(args), scope)
	if isParam {
		return &Type{Param: name}
	}
	if sym == nil {
		return &Type{Unresolved: name, Args: args}
	}
	return c.named(sym, args)
}

func (c *Compilation) keywordType(written, full string) *Type {
	display := written
	if written != "dynamic" {
		if d, ok := c.lang.Display(full); ok {
			display = d
		}
	}
	return &Type{Symbol: c.lookupType(full, 0), Keyword: display}
}

func (c *Compilation) named(sym *TypeSymbol, args []*Type) *Type {
	if sym.FullName == "System.Nullable" && len(args) == 1 {
		return args[0].WithNullable(true)
	}
	if len(args) == 0 && sym.Arity() == 0 {
		if d, ok := c.lang.Display(sym.FullName); ok {
			return &Type{Symbol: sym, Keyword: d}
		}
	}
	return &Type{Symbol: sym, Args: args}
}

// open returns sym with its own type parameters as arguments.
func (c *Compilation) open(sym *TypeSymbol) *Type {
	args := make([]*Type, 0, sym.Arity())
	for _, p := range sym.TypeParameters {
		args = append(args, &Type{Param: p})
	}
	return c.named(sym, args)
}

func (c *Compilation) resolveAlias(alias Import, scope *Scope) *Type {
	target := &Scope{}
	if scope != nil {
		target.Namespace = scope.Namespace
		target.framework = scope.framework
	}
	return c.resolveWritten(alias.Name, target)
}

// resolveName binds a dotted or simple name with the given generic arity.
// The second result is true when name is an in-scope type parameter.
func (c *Compilation) resolveName(name string, arity int, scope *Scope) (*TypeSymbol, bool) {
	if arity == 0 && scope.hasTypeParameter(name, c.lang) {
		return nil, true
	}
	if strings.Contains(name, ".") {
		return c.resolveQualified(name, arity, scope), false
	}
	if scope == nil {
		return c.lookupType(name, arity), false
	}

	for t := scope.Type; t != nil; t = t.Containing {
		if s := c.nestedType(t, name, arity, 0); s != nil {
			return s, false
		}
	}

	ns := scope.Namespace
	for {
		if s := c.lookupType(joinName(ns, name), arity); s != nil {
			return s, false
		}
		if ns == "" {
			break
		}
		ns, _ = splitQualified(ns)
	}

	for _, imp := range scope.Imports {
		if imp.Alias != "" && c.lang.Equal(imp.Alias, name) {
			target := model.StripTypeArguments(imp.Name)
			if s := c.lookupType(target, len(model.SplitTypeArguments(genericArgs(imp.Name)))); s != nil {
				return s, false
			}
		}
	}

	var found *TypeSymbol
	for _, imp := range scope.Imports {
		if imp.Alias != "" {
			continue
		}
		if imp.Static {
			if owner := c.resolveQualified(imp.Name, 0, &Scope{}); owner != nil {
				if s := c.lookupType(joinName(owner.FullName, name), arity); s != nil {
					return s, false
				}
			}
			continue
		}
		if s := c.lookupType(joinName(imp.Name, name), arity); s != nil && found == nil {
			found = s
		}
	}
	return found, false
}

// resolveQualified binds "A.B.C" as a full name, relative to the enclosing
// namespaces, through an alias, or as nested types of a resolvable prefix.
func (c *Compilation) resolveQualified(name string, arity int, scope *Scope) *TypeSymbol {
	name = stripSegmentArguments(name)
	if s := c.lookupType(name, arity); s != nil {
		return s
	}
	if scope == nil {
		return nil
	}

	ns := scope.Namespace
	for ns != "" {
		if s := c.lookupType(joinName(ns, name), arity); s != nil {
			return s
		}
		ns, _ = splitQualified(ns)
	}

	head, rest, _ := strings.Cut(name, ".")
	if alias, ok := findAlias(scope, head, c.lang); ok {
		target := model.StripTypeArguments(alias.Name)
		if s := c.lookupType(target+"."+rest, arity); s != nil {
			return s
		}
		if s := c.resolveQualified(target+"."+rest, arity, &Scope{}); s != nil {
			return s
		}
	}

	for _, imp := range scope.Imports {
		if imp.Alias == "" && !imp.Static {
			if s := c.lookupType(joinName(imp.Name, name), arity); s != nil {
				return s
			}
		}
	}

	// Outer.Inner where Outer binds as a type.
	segments := strings.Split(name, ".")
	for i := len(segments) - 1; i > 0; i-- {
		prefix := strings.Join(segments[:i], ".")
		var outer *TypeSymbol
		if i == 1 {
			outer, _ = c.resolveName(prefix, 0, scope)
		} else {
			outer = c.resolveQualified(prefix, 0, scope)
		}
		if outer != nil {
			return c.lookupType(outer.FullName+"."+strings.Join(segments[i:], "."), arity)
		}
	}
	return nil
}

// nestedType finds name declared inside t or inherited from its bases.
func (c *Compilation) nestedType(t *TypeSymbol, name string, arity, depth int) *TypeSymbol {
	if depth > 16 {
		return nil
	}
	if s := c.lookupType(t.FullName+"."+name, arity); s != nil {
		return s
	}
	for _, b := range c.declaredBases(t) {
		if b != nil && b.Symbol != nil {
			if s := c.nestedType(b.Symbol, name, arity, depth+1); s != nil {
				return s
			}
		}
	}
	return nil
}

// resolveNamespace returns the full namespace name written as name in scope.
func (c *Compilation) resolveNamespace(name string, scope *Scope) (string, bool) {
	name = strings.TrimPrefix(strings.TrimSpace(name), "global::")
	if scope != nil {
		if alias, ok := findAlias(scope, name, c.lang); ok && c.isNamespace(alias.Name) {
			return alias.Name, true
		}
		ns := scope.Namespace
		for ns != "" {
			if full := joinName(ns, name); c.isNamespace(full) {
				return full, true
			}
			ns, _ = splitQualified(ns)
		}
	}
	if c.isNamespace(name) {
		return name, true
	}
	return "", false
}

func findAlias(scope *Scope, name string, l *Language) (Import, bool) {
	if scope == nil {
		return Import{}, false
	}
	for _, imp := range scope.Imports {
		if imp.Alias != "" && l.Equal(imp.Alias, name) {
			return imp, true
		}
	}
	return Import{}, false
}

// splitGeneric splits "N.Dict<K, V>" into "N.Dict" and ["K", "V"]. Type
// arguments of inner segments ("Outer<T>.Inner") are dropped.
func splitGeneric(text string) (string, []string) {
	if !strings.HasSuffix(text, ">") {
		return stripSegmentArguments(text), nil
	}
	open := lastTopLevel(text, '<')
	if open <= 0 {
		return text, nil
	}
	return stripSegmentArguments(text[:open]), model.SplitTypeArguments(text[open+1 : len(text)-1])
}

func genericArgs(text string) string {
	if !strings.HasSuffix(text, ">") {
		return ""
	}
	open := lastTopLevel(text, '<')
	if open <= 0 {
		return ""
	}
	return text[open+1 : len(text)-1]
}

// stripSegmentArguments removes every <...> group from a dotted name.
func stripSegmentArguments(name string) string {
	if !strings.Contains(name, "<") {
		return strings.TrimSpace(name)
	}
	var b strings.Builder
	depth := 0
	for i := 0; i < len(name); i++ {
		switch name[i] {
		case '<':
			depth++
		case '>':
			depth--
		default:
			if depth == 0 {
				b.WriteByte(name[i])
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// lastTopLevel returns the index of the bracket opening the group that ends
// text, or -1.
func lastTopLevel(text string, open byte) int {
	var closeCh byte
	switch open {
	case '<':
		closeCh = '>'
	case '[':
		closeCh = ']'
	case '(':
		closeCh = ')'
	}
	depth := 0
	for i := len(text) - 1; i >= 0; i-- {
		switch text[i] {
		case closeCh:
			depth++
		case open:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// arrayRank drops the sizes of an array creation, so "[3, n]" reads "[,]".
func arrayRank(rank string) string {
	return "[" + strings.Repeat(",", strings.Count(rank, ",")) + "]"
}
