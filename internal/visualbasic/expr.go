package visualbasic

import "strings"

// Expression kinds.
const (
	exprLiteral    = "Literal"
	exprName       = "Name"
	exprMe         = "Me"
	exprMyBase     = "MyBase"
	exprMyClass    = "MyClass"
	exprMember     = "Member"
	exprInvoke     = "Invoke"
	exprNew        = "New"
	exprNewArray   = "NewArray"
	exprBinary     = "Binary"
	exprUnary      = "Unary"
	exprCast       = "Cast"
	exprTypeOf     = "TypeOf"
	exprGetType    = "GetType"
	exprNameOf     = "NameOf"
	exprIf         = "If"
	exprLambda     = "Lambda"
	exprParen      = "Paren"
	exprCollection = "Collection"
	exprQuery      = "Query"
	exprAssign     = "Assign"
)

// Expr is a parsed expression.
type Expr struct {
	Kind string
	// Op is the operator, the literal keyword or the conversion keyword.
	Op   string
	Name string
	// Type is the written type of New, NewArray, Cast, TypeOf and GetType.
	Type string
	// Left is the receiver of Member, the callee of Invoke and the operand
	// of unary expressions. Right is the second operand or a lambda body.
	Left, Right *Expr
	// Args are call arguments; omitted arguments are nil.
	Args     []*Expr
	TypeArgs []string
	Init     *Expr
	// Conditional marks ?. and ?( accesses.
	Conditional bool
	Pos         int
}

// parseExpr parses ts as one expression. Unparsable input yields nil.
func parseExpr(ts []token) *Expr {
	if len(ts) == 0 {
		return nil
	}
	p := &exprParser{ts: ts}
	return p.expr(0)
}

type exprParser struct {
	ts []token
	i  int
}

func (p *exprParser) peek() token {
	if p.i < len(p.ts) {
		return p.ts[p.i]
	}
	return token{Kind: tokEOL}
}

func (p *exprParser) peekAt(off int) token {
	if p.i+off < len(p.ts) {
		return p.ts[p.i+off]
	}
	return token{Kind: tokEOL}
}

func (p *exprParser) next() token {
	t := p.peek()
	if p.i < len(p.ts) {
		p.i++
	}
	return t
}

// binaryOps lists binary operators by precedence, lowest first.
var binaryOps = []struct {
	prec  int
	ops   []string
	words []string
}{
	{1, nil, []string{"Xor"}},
	{2, nil, []string{"Or", "OrElse"}},
	{3, nil, []string{"And", "AndAlso"}},
	{5, []string{"=", "<>", "<", ">", "<=", ">="}, []string{"Is", "IsNot", "Like"}},
	{6, []string{"<<", ">>"}, nil},
	{7, []string{"&"}, nil},
	{8, []string{"+", "-"}, nil},
	{9, nil, []string{"Mod"}},
	{10, []string{"\\"}, nil},
	{11, []string{"*", "/"}, nil},
	{13, []string{"^"}, nil},
}

const (
	precNot   = 4
	precUnary = 12
)

func binaryOp(t token) (int, string) {
	for _, level := range binaryOps {
		if t.Kind == tokOp {
			for _, op := range level.ops {
				if t.Text == op {
					return level.prec, op
				}
			}
			continue
		}
		for _, w := range level.words {
			if t.is(w) {
				return level.prec, w
			}
		}
	}
	return 0, ""
}

func (p *exprParser) expr(minPrec int) *Expr {
	left := p.unary()
	for left != nil {
		t := p.peek()
		prec, op := binaryOp(t)
		if prec == 0 || prec <= minPrec {
			break
		}
		p.i++
		left = &Expr{Kind: exprBinary, Op: op, Left: left, Right: p.expr(prec), Pos: t.Pos}
	}
	return left
}

func (p *exprParser) unary() *Expr {
	t := p.peek()
	switch {
	case t.is("Not"):
		p.i++
		return &Expr{Kind: exprUnary, Op: "Not", Left: p.expr(precNot), Pos: t.Pos}
	case t.op("-"), t.op("+"):
		p.i++
		return &Expr{Kind: exprUnary, Op: t.Text, Left: p.expr(precUnary - 1), Pos: t.Pos}
	case t.isAny("AddressOf", "Await"):
		p.i++
		return &Expr{Kind: exprUnary, Op: t.Text, Left: p.postfix(p.primary()), Pos: t.Pos}
	}
	return p.postfix(p.primary())
}

// conversions maps the conversion functions to the type they produce.
var conversions = map[string]string{
	"cint": "Integer", "clng": "Long", "cstr": "String", "cbool": "Boolean",
	"cdbl": "Double", "cdec": "Decimal", "csng": "Single", "cshort": "Short",
	"cbyte": "Byte", "cchar": "Char", "cdate": "Date", "cobj": "Object",
	"cuint": "UInteger", "culng": "ULong", "cushort": "UShort", "csbyte": "SByte",
}

func (p *exprParser) primary() *Expr {
	t := p.next()
	switch t.Kind {
	case tokNumber:
		return &Expr{Kind: exprLiteral, Op: numberKeyword(t.Text), Pos: t.Pos}
	case tokString:
		return &Expr{Kind: exprLiteral, Op: "String", Pos: t.Pos}
	case tokChar:
		return &Expr{Kind: exprLiteral, Op: "Char", Pos: t.Pos}
	case tokDate:
		return &Expr{Kind: exprLiteral, Op: "Date", Pos: t.Pos}
	case tokOp:
		switch t.Text {
		case "(":
			p.i--
			closeAt := matchParen(p.ts, p.i)
			if closeAt < 0 {
				p.i = len(p.ts)
				return nil
			}
			inner := parseExpr(p.ts[p.i+1 : closeAt])
			p.i = closeAt + 1
			return &Expr{Kind: exprParen, Left: inner, Pos: t.Pos}
		case "{":
			p.i--
			return p.collection()
		case ".", "!":
			name := p.next()
			return &Expr{Kind: exprMember, Name: name.Text, Pos: t.Pos}
		}
		return nil
	case tokIdent:
	default:
		return nil
	}

	if t.Escaped {
		return &Expr{Kind: exprName, Name: t.Text, Pos: t.Pos}
	}
	word := strings.ToLower(t.Text)
	switch word {
	case "true", "false":
		return &Expr{Kind: exprLiteral, Op: "Boolean", Pos: t.Pos}
	case "nothing":
		return &Expr{Kind: exprLiteral, Op: "Nothing", Pos: t.Pos}
	case "me":
		return &Expr{Kind: exprMe, Pos: t.Pos}
	case "mybase":
		return &Expr{Kind: exprMyBase, Pos: t.Pos}
	case "myclass":
		return &Expr{Kind: exprMyClass, Pos: t.Pos}
	case "new":
		return p.newExpr(t)
	case "ctype", "directcast", "trycast":
		return p.cast(t)
	case "typeof":
		operand := p.expr(5)
		if p.peek().isAny("Is", "IsNot") {
			p.i++
		}
		typ, next := scanType(p.ts, p.i)
		p.i = next
		return &Expr{Kind: exprTypeOf, Left: operand, Type: typ, Pos: t.Pos}
	case "gettype":
		if p.peek().op("(") {
			closeAt := matchParen(p.ts, p.i)
			typ, _ := scanType(p.ts[:max(closeAt, p.i)], p.i+1)
			p.skipTo(closeAt)
			return &Expr{Kind: exprGetType, Type: typ, Pos: t.Pos}
		}
	case "nameof":
		if p.peek().op("(") {
			return &Expr{Kind: exprNameOf, Args: p.arguments(), Pos: t.Pos}
		}
	case "if":
		if p.peek().op("(") {
			return &Expr{Kind: exprIf, Args: p.arguments(), Pos: t.Pos}
		}
	case "async", "iterator":
		if p.peek().isAny("Function", "Sub") {
			return p.primary()
		}
	case "function", "sub":
		return p.lambda(t)
	case "from", "aggregate":
		if p.peek().Kind == tokIdent && indexWord(p.ts[p.i:], "In") > 0 {
			in := p.i + indexWord(p.ts[p.i:], "In")
			source := parseExpr(queryClause(p.ts[in+1:]))
			p.i = len(p.ts)
			return &Expr{Kind: exprQuery, Left: source, Pos: t.Pos}
		}
	case "global":
		if p.peek().op(".") {
			p.i++
			return p.primary()
		}
	}
	if typ, ok := conversions[word]; ok && p.peek().op("(") {
		args := p.arguments()
		e := &Expr{Kind: exprCast, Op: t.Text, Type: typ, Pos: t.Pos}
		if len(args) > 0 {
			e.Left = args[0]
		}
		return e
	}
	return &Expr{Kind: exprName, Name: t.Text, Pos: t.Pos}
}

// queryKeywords end the source of a From clause.
var queryKeywords = []string{"Where", "Select", "Order", "Group", "Join", "Let", "Distinct", "Skip", "Take", "Into", "Aggregate", "From"}

func queryClause(ts []token) []token {
	for i, t := range ts {
		if t.isAny(queryKeywords...) {
			return ts[:i]
		}
	}
	return ts
}

func (p *exprParser) skipTo(closeAt int) {
	if closeAt < 0 {
		p.i = len(p.ts)
		return
	}
	p.i = closeAt + 1
}

// cast reads CType(x, T), DirectCast(x, T) or TryCast(x, T).
func (p *exprParser) cast(kw token) *Expr {
	e := &Expr{Kind: exprCast, Op: kw.Text, Pos: kw.Pos}
	if !p.peek().op("(") {
		return e
	}
	closeAt := matchParen(p.ts, p.i)
	if closeAt < 0 {
		p.i = len(p.ts)
		return e
	}
	parts := splitTopLevel(p.ts[p.i+1 : closeAt])
	if len(parts) > 0 {
		e.Left = parseExpr(parts[0])
	}
	if len(parts) > 1 {
		e.Type, _ = scanType(parts[1], 0)
	}
	p.i = closeAt + 1
	return e
}

// newExpr reads object creation, array creation and anonymous objects.
func (p *exprParser) newExpr(kw token) *Expr {
	if p.peek().is("With") {
		p.i++
		return &Expr{Kind: exprNew, Init: p.collection(), Pos: kw.Pos}
	}
	name, next := scanTypeName(p.ts, p.i)
	p.i = next
	e := &Expr{Kind: exprNew, Type: name, Pos: kw.Pos}
	if p.peek().op("(") {
		closeAt := matchParen(p.ts, p.i)
		rank := "[" + strings.Repeat(",", topLevelCommas(p.ts, p.i, closeAt)) + "]"
		e.Args = p.arguments()
		for p.peek().op("(") {
			more, after, ok := arraySuffix(p.ts, p.i)
			if !ok {
				break
			}
			rank += more
			p.i = after
		}
		if p.peek().op("{") {
			e.Kind = exprNewArray
			e.Type = name + rank
			e.Init = p.collection()
			return e
		}
	}
	switch {
	case p.peek().is("With"):
		p.i++
		e.Init = p.collection()
	case p.peek().is("From"):
		p.i++
		e.Init = p.collection()
	}
	return e
}

func topLevelCommas(ts []token, open, closeAt int) int {
	if closeAt < 0 {
		return 0
	}
	n := 0
	depth := 0
	for _, t := range ts[open+1 : closeAt] {
		switch {
		case t.op("("), t.op("{"):
			depth++
		case t.op(")"), t.op("}"):
			depth--
		case depth == 0 && t.op(","):
			n++
		}
	}
	return n
}

// lambda reads a single-line lambda; a multi-line one has no body here.
func (p *exprParser) lambda(kw token) *Expr {
	e := &Expr{Kind: exprLambda, Op: kw.Text, Pos: kw.Pos}
	if p.peek().op("(") {
		p.skipTo(matchParen(p.ts, p.i))
	}
	if p.peek().is("As") {
		_, next := scanType(p.ts, p.i+1)
		p.i = next
	}
	if p.i < len(p.ts) {
		body := p.ts[p.i:]
		p.i = len(p.ts)
		if strings.EqualFold(kw.Text, "Sub") {
			if stmts := simpleStatement(body); len(stmts) > 0 {
				e.Right = stmts[0]
			}
		} else {
			e.Right = parseExpr(body)
		}
	}
	return e
}

func (p *exprParser) collection() *Expr {
	e := &Expr{Kind: exprCollection, Pos: p.peek().Pos}
	if !p.peek().op("{") {
		return e
	}
	closeAt := matchParen(p.ts, p.i)
	if closeAt < 0 {
		p.i = len(p.ts)
		return e
	}
	for _, item := range splitTopLevel(p.ts[p.i+1 : closeAt]) {
		if v := parseExpr(item); v != nil {
			e.Args = append(e.Args, v)
		}
	}
	p.i = closeAt + 1
	return e
}

// arguments reads a parenthesized argument list. Named arguments keep only
// their value.
func (p *exprParser) arguments() []*Expr {
	closeAt := matchParen(p.ts, p.i)
	if closeAt < 0 {
		p.i = len(p.ts)
		return nil
	}
	var args []*Expr
	for _, item := range splitTopLevel(p.ts[p.i+1 : closeAt]) {
		if len(item) > 2 && item[0].Kind == tokIdent && item[1].op(":=") {
			item = item[2:]
		}
		args = append(args, parseExpr(item))
	}
	p.i = closeAt + 1
	return args
}

func (p *exprParser) postfix(e *Expr) *Expr {
	for e != nil {
		t := p.peek()
		switch {
		case t.op("."), t.op("?."):
			p.i++
			name := p.next()
			if name.Kind != tokIdent {
				return e
			}
			e = &Expr{Kind: exprMember, Left: e, Name: name.Text, Conditional: t.op("?."), Pos: name.Pos}
		case t.op("!"):
			p.i++
			key := p.next()
			e = &Expr{Kind: exprInvoke, Left: e, Args: []*Expr{{Kind: exprLiteral, Op: "String", Pos: key.Pos}}, Pos: t.Pos}
		case t.op("(") && p.peekAt(1).is("Of"):
			closeAt := matchParen(p.ts, p.i)
			if closeAt < 0 {
				p.i = len(p.ts)
				return e
			}
			for _, a := range splitTopLevel(p.ts[p.i+2 : closeAt]) {
				typ, _ := scanType(a, 0)
				e.TypeArgs = append(e.TypeArgs, typ)
			}
			p.i = closeAt + 1
		case t.op("("):
			e = &Expr{Kind: exprInvoke, Left: e, Pos: t.Pos, Args: p.arguments()}
		case t.op("?") && p.peekAt(1).op("("):
			p.i++
			e = &Expr{Kind: exprInvoke, Left: e, Pos: t.Pos, Args: p.arguments(), Conditional: true}
		default:
			return e
		}
	}
	return e
}

// numberKeyword returns the type keyword of a numeric literal.
func numberKeyword(lit string) string {
	l := strings.ToLower(strings.ReplaceAll(lit, "_", ""))
	if strings.HasPrefix(l, "&") {
		switch {
		case strings.HasSuffix(l, "ul"):
			return "ULong"
		case strings.HasSuffix(l, "l"), strings.HasSuffix(l, "&"):
			return "Long"
		}
		return "Integer"
	}
	for _, s := range []struct{ suffix, kw string }{
		{"ul", "ULong"}, {"us", "UShort"}, {"ui", "UInteger"},
		{"s", "Short"}, {"i", "Integer"}, {"%", "Integer"}, {"l", "Long"}, {"&", "Long"},
		{"d", "Decimal"}, {"@", "Decimal"}, {"f", "Single"}, {"!", "Single"}, {"r", "Double"}, {"#", "Double"},
	} {
		if strings.HasSuffix(l, s.suffix) {
			return s.kw
		}
	}
	if strings.ContainsAny(l, ".e") {
		return "Double"
	}
	return "Integer"
}

// walkExpr visits e and its subexpressions in source order.
func walkExpr(e, parent *Expr, visit func(e, parent *Expr)) {
	if e == nil {
		return
	}
	visit(e, parent)
	walkExpr(e.Left, e, visit)
	for _, a := range e.Args {
		walkExpr(a, e, visit)
	}
	walkExpr(e.Right, e, visit)
	walkExpr(e.Init, e, visit)
}

// dotted renders a chain of names and member accesses, e.g. "System.IO".
// It returns "" for any other expression.
func dotted(e *Expr) string {
	switch {
	case e == nil:
		return ""
	case e.Kind == exprName:
		return e.Name + typeArgs(e)
	case e.Kind == exprMember && e.Left != nil:
		if left := dotted(e.Left); left != "" {
			return left + "." + e.Name + typeArgs(e)
		}
	}
	return ""
}

func typeArgs(e *Expr) string {
	if len(e.TypeArgs) == 0 {
		return ""
	}
	return "<" + strings.Join(e.TypeArgs, ", ") + ">"
}
