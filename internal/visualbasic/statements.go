package visualbasic

// expressions returns the top-level expressions of a statement or block
// header. Results are parsed once per node.
func (n *Node) expressions() []*Expr {
	if !n.bound {
		n.bound = true
		for _, e := range statementExprs(n) {
			if e != nil {
				n.exprs = append(n.exprs, e)
			}
		}
	}
	return n.exprs
}

func statementExprs(n *Node) []*Expr {
	ts := n.Tokens
	switch n.Kind {
	case KindStatement:
		return simpleStatement(ts)
	case KindLocal, KindField:
		var out []*Expr
		for _, d := range n.Children {
			if d.Kind == KindDeclarator && len(d.value) > 0 {
				out = append(out, parseExpr(d.value))
			}
		}
		return out
	case KindProperty:
		if len(n.value) > 0 {
			return []*Expr{parseExpr(n.value)}
		}
	case KindEnumMember:
		return []*Expr{parseExpr(n.value)}
	case KindUsing:
		var out []*Expr
		declared := false
		for _, d := range n.Children {
			if d.Kind == KindDeclarator {
				declared = true
				out = append(out, parseExpr(d.value))
			}
		}
		if !declared && len(ts) > 1 {
			out = append(out, parseExpr(ts[1:]))
		}
		return out
	case KindIf, KindElseIf:
		from := 1
		if len(ts) > 1 && ts[0].is("Else") {
			from = 2
		}
		return []*Expr{parseExpr(untilWord(ts[min(from, len(ts)):], "Then"))}
	case KindSingleLineIf:
		return singleLineIf(ts)
	case KindSelect:
		if len(ts) > 2 && ts[1].is("Case") {
			return []*Expr{parseExpr(ts[2:])}
		}
		return []*Expr{parseExpr(ts[1:])}
	case KindCase:
		return caseValues(ts)
	case KindWhile, KindWith, KindSyncLock:
		return []*Expr{parseExpr(ts[1:])}
	case KindDo:
		var out []*Expr
		if len(ts) > 2 && ts[1].isAny("While", "Until") {
			out = append(out, parseExpr(ts[2:]))
		}
		if len(n.Tail) > 2 && n.Tail[1].isAny("While", "Until") {
			out = append(out, parseExpr(n.Tail[2:]))
		}
		return out
	case KindFor:
		return forBounds(ts)
	case KindForEach:
		if in := indexWord(ts, "In"); in > 0 {
			return []*Expr{parseExpr(ts[in+1:])}
		}
	case KindCatch:
		if when := indexWord(ts, "When"); when > 0 {
			return []*Expr{parseExpr(ts[when+1:])}
		}
	}
	return nil
}

var assignmentOps = []string{"=", "+=", "-=", "*=", "/=", "\\=", "^=", "&=", "<<=", ">>="}

// simpleStatement parses a statement that opens no block. An expression
// statement naming a method without parentheses is a call.
func simpleStatement(ts []token) []*Expr {
	if len(ts) == 0 {
		return nil
	}
	first := ts[0]
	switch {
	case first.isAny("Return", "Throw", "Yield", "Erase"):
		if len(ts) > 1 {
			return []*Expr{parseExpr(ts[1:])}
		}
		return nil
	case first.is("Call"):
		return []*Expr{asCall(parseExpr(ts[1:]))}
	case first.is("RaiseEvent"):
		if e := parseExpr(ts[1:]); e != nil && e.Kind == exprInvoke {
			return e.Args
		}
		return nil
	case first.isAny("AddHandler", "RemoveHandler"):
		var out []*Expr
		for _, item := range splitTopLevel(ts[1:]) {
			out = append(out, parseExpr(item))
		}
		return out
	case first.is("ReDim"):
		rest := ts[1:]
		if len(rest) > 0 && rest[0].is("Preserve") {
			rest = rest[1:]
		}
		var out []*Expr
		for _, item := range splitTopLevel(rest) {
			out = append(out, parseExpr(item))
		}
		return out
	case first.isAny("Exit", "Continue", "GoTo", "Stop", "End", "Resume", "On", "Error"):
		return nil
	}

	for i, t := range ts {
		if i == 0 || t.Kind != tokOp {
			continue
		}
		if indexOp(ts[:i+1], t.Text) != i {
			continue
		}
		for _, op := range assignmentOps {
			if t.Text == op {
				return []*Expr{{Kind: exprAssign, Op: op, Left: parseExpr(ts[:i]), Right: parseExpr(ts[i+1:]), Pos: t.Pos}}
			}
		}
	}
	return []*Expr{asCall(parseExpr(ts))}
}

// asCall turns a bare name or member access used as a statement into a
// call without arguments.
func asCall(e *Expr) *Expr {
	if e != nil && (e.Kind == exprName || e.Kind == exprMember) {
		return &Expr{Kind: exprInvoke, Left: e, Pos: e.Pos}
	}
	return e
}

func untilWord(ts []token, word string) []token {
	if i := indexWord(ts, word); i >= 0 {
		return ts[:i]
	}
	return ts
}

// singleLineIf splits "If c Then a Else b" into the condition and the
// statements of both branches.
func singleLineIf(ts []token) []*Expr {
	then := indexWord(ts, "Then")
	if then < 0 {
		return []*Expr{parseExpr(ts[1:])}
	}
	out := []*Expr{parseExpr(ts[1:then])}
	body := ts[then+1:]
	if els := indexWord(body, "Else"); els >= 0 {
		out = append(out, simpleStatement(body[:els])...)
		return append(out, simpleStatement(body[els+1:])...)
	}
	return append(out, simpleStatement(body)...)
}

// caseValues reads "Case 1, 2", "Case Is > 3" and "Case 1 To 5".
func caseValues(ts []token) []*Expr {
	if len(ts) < 2 || ts[1].is("Else") {
		return nil
	}
	var out []*Expr
	for _, item := range splitTopLevel(ts[1:]) {
		switch {
		case len(item) > 2 && item[0].is("Is"):
			out = append(out, parseExpr(item[2:]))
		case indexWord(item, "To") > 0:
			to := indexWord(item, "To")
			out = append(out, parseExpr(item[:to]), parseExpr(item[to+1:]))
		default:
			out = append(out, parseExpr(item))
		}
	}
	return out
}

// caseCount is the number of values a Case clause tests.
func caseCount(n *Node) int {
	if len(n.Tokens) < 2 || n.Tokens[1].is("Else") {
		return 0
	}
	return len(splitTopLevel(n.Tokens[1:]))
}

// forBounds reads the start, end and step of "For i = a To b Step c".
func forBounds(ts []token) []*Expr {
	eq := indexOp(ts, "=")
	to := indexWord(ts, "To")
	if eq < 0 || to < eq {
		return nil
	}
	out := []*Expr{parseExpr(ts[eq+1 : to])}
	rest := ts[to+1:]
	if step := indexWord(rest, "Step"); step >= 0 {
		return append(out, parseExpr(rest[:step]), parseExpr(rest[step+1:]))
	}
	return append(out, parseExpr(rest))
}
