package visualbasic

import "strings"

// Declaration headers are parsed when the block tree is built. Written
// types are kept in the bracketed form the semantic model reads, so
// List(Of Integer) becomes List<Integer> and Integer() becomes Integer[].

// splitAttributes removes the attribute blocks at the start of ts.
func splitAttributes(ts []token) ([]*Node, []token) {
	var attrs []*Node
	for len(ts) > 0 && ts[0].op("<") {
		closeAt := attributeClose(ts)
		if closeAt < 0 {
			break
		}
		attrs = append(attrs, parseAttributeBlock(ts[1:closeAt])...)
		ts = ts[closeAt+1:]
	}
	return attrs, ts
}

func attributeClose(ts []token) int {
	depth := 0
	for i := 1; i < len(ts); i++ {
		switch {
		case ts[i].op("("), ts[i].op("{"):
			depth++
		case ts[i].op(")"), ts[i].op("}"):
			depth--
		case depth == 0 && ts[i].op(">"):
			return i
		}
	}
	return -1
}

func parseAttributeBlock(ts []token) []*Node {
	var out []*Node
	for _, item := range splitTopLevel(ts) {
		if len(item) == 0 {
			continue
		}
		a := &Node{Kind: KindAttribute, Tokens: item, Start: item[0].Pos, End: item[len(item)-1].End}
		i := 0
		if len(item) > 2 && item[1].op(":") {
			a.target = item[0].Text
			i = 2
		}
		a.Name, i = scanTypeName(item, i)
		if i < len(item) && item[i].op("(") {
			if closeAt := matchParen(item, i); closeAt > 0 {
				a.args = splitTopLevel(item[i+1 : closeAt])
			}
		}
		out = append(out, a)
	}
	return out
}

// scanType reads the type written at ts[i] and returns it with the index
// after it.
func scanType(ts []token, i int) (string, int) {
	name, i := scanTypeName(ts, i)
	if name == "" {
		return "", i
	}
	if i < len(ts) && ts[i].op("?") {
		name += "?"
		i++
	}
	for i < len(ts) && ts[i].op("(") {
		rank, next, ok := arraySuffix(ts, i)
		if !ok {
			break
		}
		name += rank
		i = next
	}
	return name, i
}

// scanTypeName reads a possibly qualified and generic type name, or a
// tuple type, without nullable or array suffixes.
func scanTypeName(ts []token, i int) (string, int) {
	if i < len(ts) && ts[i].op("(") {
		closeAt := matchParen(ts, i)
		if closeAt < 0 {
			return "", i
		}
		var elems []string
		for _, item := range splitTopLevel(ts[i+1 : closeAt]) {
			from := 0
			if len(item) > 2 && item[1].is("As") {
				from = 2
			}
			t, _ := scanType(item, from)
			elems = append(elems, t)
		}
		return "(" + strings.Join(elems, ", ") + ")", closeAt + 1
	}

	var b strings.Builder
	for i < len(ts) && ts[i].Kind == tokIdent {
		if ts[i].is("Global") && i+1 < len(ts) && ts[i+1].op(".") {
			i += 2
			continue
		}
		b.WriteString(ts[i].Text)
		i++
		if i+1 < len(ts) && ts[i].op("(") && ts[i+1].is("Of") {
			closeAt := matchParen(ts, i)
			if closeAt < 0 {
				break
			}
			var args []string
			for _, a := range splitTopLevel(ts[i+2 : closeAt]) {
				t, _ := scanType(a, 0)
				args = append(args, t)
			}
			b.WriteString("<" + strings.Join(args, ", ") + ">")
			i = closeAt + 1
		}
		if i+1 < len(ts) && ts[i].op(".") && ts[i+1].Kind == tokIdent {
			b.WriteByte('.')
			i++
			continue
		}
		break
	}
	return b.String(), i
}

// arraySuffix reads an empty rank specifier such as "()" or "(,)".
func arraySuffix(ts []token, i int) (string, int, bool) {
	closeAt := matchParen(ts, i)
	if closeAt < 0 {
		return "", i, false
	}
	for _, t := range ts[i+1 : closeAt] {
		if !t.op(",") {
			return "", i, false
		}
	}
	return "[" + strings.Repeat(",", closeAt-i-1) + "]", closeAt + 1, true
}

// boundsRank reads array bounds such as "(10)" or "(2, n)" as a rank.
func boundsRank(ts []token, i int) (string, int, bool) {
	closeAt := matchParen(ts, i)
	if closeAt < 0 {
		return "", i, false
	}
	commas := len(splitTopLevel(ts[i+1:closeAt])) - 1
	if commas < 0 {
		commas = 0
	}
	return "[" + strings.Repeat(",", commas) + "]", closeAt + 1, true
}

// typeHeader reads "Class Name(Of T)" or "Enum Name As Byte".
func typeHeader(n *Node, ts []token) {
	if len(ts) < 2 {
		return
	}
	n.Name = ts[1].Text
	i := 2
	if i+1 < len(ts) && ts[i].op("(") && ts[i+1].is("Of") {
		if closeAt := matchParen(ts, i); closeAt > 0 {
			n.typeParams = parseTypeParameters(ts[i+2:closeAt], n)
			i = closeAt + 1
		}
	}
	if i < len(ts) && ts[i].is("As") {
		n.typ, _ = scanType(ts, i+1)
	}
}

// memberHeader reads the name, type parameters, parameters and As clause
// of a method, property, event or delegate starting at ts[i].
func memberHeader(n *Node, ts []token, i int) {
	if i >= len(ts) {
		return
	}
	n.Name = ts[i].Text
	i++
	if i+1 < len(ts) && ts[i].op("(") && ts[i+1].is("Of") {
		if closeAt := matchParen(ts, i); closeAt > 0 {
			n.typeParams = parseTypeParameters(ts[i+2:closeAt], n)
			i = closeAt + 1
		}
	}
	for i+1 < len(ts) && ts[i].isAny("Lib", "Alias") {
		i += 2
	}
	if i < len(ts) && ts[i].op("(") {
		if closeAt := matchParen(ts, i); closeAt > 0 {
			n.params = parseParameters(ts[i+1:closeAt], n)
			i = closeAt + 1
		}
	}
	if i < len(ts) && ts[i].is("As") {
		attrs, rest := splitAttributes(ts[i+1:])
		for _, a := range attrs {
			a.Parent = n
		}
		n.returnAttrs = attrs
		i = len(ts) - len(rest)
		if i < len(ts) && ts[i].is("New") {
			n.asNew = true
			n.value = ts[i:]
			n.typ, i = scanTypeName(ts, i+1)
		} else {
			n.typ, i = scanType(ts, i)
		}
	}
	if i < len(ts) && ts[i].op("=") {
		n.value = ts[i+1:]
	}
}

func parseTypeParameters(ts []token, owner *Node) []*Node {
	var out []*Node
	for _, item := range splitTopLevel(ts) {
		if len(item) == 0 {
			continue
		}
		tp := &Node{Kind: KindTypeParameter, Tokens: item, Parent: owner, Start: item[0].Pos, End: item[len(item)-1].End}
		i := 0
		if item[0].isAny("In", "Out") && len(item) > 1 && item[1].Kind == tokIdent && !item[1].is("As") {
			tp.variance = item[0].Text
			i = 1
		}
		tp.Name = item[i].Text
		i++
		if i < len(item) && item[i].is("As") {
			cons := item[i+1:]
			if len(cons) > 1 && cons[0].op("{") {
				if closeAt := matchParen(cons, 0); closeAt > 0 {
					cons = cons[1:closeAt]
				}
			}
			for _, c := range splitTopLevel(cons) {
				if len(c) == 1 && c[0].isAny("Class", "Structure", "New") {
					tp.constraints = append(tp.constraints, c[0].Text)
					continue
				}
				if t, _ := scanType(c, 0); t != "" {
					tp.constraints = append(tp.constraints, t)
				}
			}
		}
		out = append(out, tp)
	}
	return out
}

var parameterModifiers = []string{"ByVal", "ByRef", "Optional", "ParamArray"}

func parseParameters(ts []token, owner *Node) []*Node {
	var out []*Node
	for _, item := range splitTopLevel(ts) {
		if len(item) == 0 {
			continue
		}
		attrs, rest := splitAttributes(item)
		p := &Node{Kind: KindParameter, Tokens: rest, Parent: owner, Start: item[0].Pos, End: item[len(item)-1].End}
		p.setAttributes(attrs)
		i := 0
		for i < len(rest)-1 && rest[i].isAny(parameterModifiers...) {
			if !rest[i].is("ByVal") {
				p.modifiers = append(p.modifiers, rest[i].Text)
			}
			i++
		}
		if i >= len(rest) {
			continue
		}
		p.Name = rest[i].Text
		i++
		suffix := ""
		if i < len(rest) && rest[i].op("?") {
			suffix = "?"
			i++
		}
		for i < len(rest) && rest[i].op("(") {
			rank, next, ok := arraySuffix(rest, i)
			if !ok {
				break
			}
			suffix += rank
			i = next
		}
		if i < len(rest) && rest[i].is("As") {
			p.typ, i = scanType(rest, i+1)
			if p.typ != "" {
				p.typ += suffix
			}
		}
		if i < len(rest) && rest[i].op("=") {
			p.value = rest[i+1:]
		}
		out = append(out, p)
	}
	return out
}

// parseDeclarators reads "a As Integer = 1, b As New T(), c(3) As String".
// Names written without a type or initializer take the type of the next
// declarator, as in "Dim a, b As Integer".
func parseDeclarators(ts []token) []*Node {
	var out []*Node
	for _, item := range splitTopLevel(ts) {
		if len(item) == 0 || item[0].Kind != tokIdent {
			continue
		}
		d := &Node{Kind: KindDeclarator, Name: item[0].Text, Tokens: item, Start: item[0].Pos, End: item[len(item)-1].End}
		i := 1
		nullable := false
		if i < len(item) && item[i].op("?") {
			nullable = true
			i++
		}
		for i < len(item) && item[i].op("(") {
			rank, next, ok := boundsRank(item, i)
			if !ok {
				break
			}
			d.rank += rank
			i = next
		}
		if i < len(item) && item[i].is("As") {
			i++
			if i < len(item) && item[i].is("New") {
				d.asNew = true
				d.value = item[i:]
				d.typ, i = scanTypeName(item, i+1)
			} else {
				d.typ, i = scanType(item, i)
			}
		}
		if i < len(item) && item[i].op("=") {
			d.value = item[i+1:]
		}
		if d.typ != "" {
			if nullable {
				d.typ += "?"
			}
			d.typ += d.rank
		}
		out = append(out, d)
	}
	for i := len(out) - 2; i >= 0; i-- {
		cur, next := out[i], out[i+1]
		if cur.typ == "" && len(cur.value) == 0 && cur.rank == "" && next.typ != "" && !next.asNew {
			cur.typ = next.typ
		}
	}
	return out
}

// importClause reads "System.IO" or "IO = System.IO". XML namespace
// imports are skipped.
func importClause(item []token) *Node {
	if len(item) == 0 || item[0].op("<") {
		return nil
	}
	c := &Node{Kind: KindImportClause, Tokens: item, Start: item[0].Pos, End: item[len(item)-1].End}
	i := 0
	if len(item) > 2 && item[1].op("=") {
		c.alias = item[0].Text
		i = 2
	}
	c.Name, _ = scanTypeName(item, i)
	return c
}
