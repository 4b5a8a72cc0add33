// Package visualbasic extracts facts from Visual Basic source. A
// line-oriented parser builds a block tree of declarations and statements;
// names are bound through a semantic.Model built from the declarations of
// the analyzed files.
package visualbasic

import (
	"strings"

	csferrors "github.com/standardbeagle/csfacts/internal/errors"
	"github.com/standardbeagle/csfacts/internal/model"
)

// Node kinds of the block tree.
const (
	KindCompilationUnit = "CompilationUnit"
	KindOption          = "Option"
	KindImports         = "Imports"
	KindImportClause    = "ImportClause"
	KindNamespace       = "Namespace"
	KindClass           = "Class"
	KindModule          = "Module"
	KindStructure       = "Structure"
	KindInterface       = "Interface"
	KindEnum            = "Enum"
	KindEnumMember      = "EnumMember"
	KindDelegate        = "Delegate"
	KindInherits        = "Inherits"
	KindImplements      = "Implements"
	KindSub             = "Sub"
	KindFunction        = "Function"
	KindOperator        = "Operator"
	KindProperty        = "Property"
	KindEvent           = "Event"
	KindAccessor        = "Accessor"
	KindField           = "Field"
	KindDeclarator      = "Declarator"
	KindAttribute       = "Attribute"
	KindParameter       = "Parameter"
	KindTypeParameter   = "TypeParameter"

	KindStatement    = "Statement"
	KindLocal        = "Local"
	KindIf           = "If"
	KindSingleLineIf = "SingleLineIf"
	KindElseIf       = "ElseIf"
	KindElse         = "Else"
	KindSelect       = "Select"
	KindCase         = "Case"
	KindWhile        = "While"
	KindDo           = "Do"
	KindFor          = "For"
	KindForEach      = "ForEach"
	KindTry          = "Try"
	KindCatch        = "Catch"
	KindFinally      = "Finally"
	KindUsing        = "Using"
	KindWith         = "With"
	KindSyncLock     = "SyncLock"
	KindLambda       = "Lambda"
)

// Node is one element of the block tree: a declaration, a statement, or a
// part of a declaration header such as a parameter or an attribute.
type Node struct {
	Kind     string
	Name     string
	Parent   *Node
	Children []*Node
	// Start and End are the byte span, attributes and closing line
	// included.
	Start, End int
	// Tokens is the statement that opens the node, attributes and
	// modifiers removed.
	Tokens []token
	// Tail is the statement that closes a block, e.g. "Loop While x".
	Tail []token

	modifiers   []string
	attributes  []*Node
	typeParams  []*Node
	params      []*Node
	typ         string
	returnAttrs []*Node
	value       []token
	args        [][]token
	target      string
	alias       string
	variance    string
	constraints []string
	bases       []string
	asNew       bool
	event       bool
	rank        string

	exprs []*Expr
	bound bool
}

// Tree is a parsed Visual Basic file.
type Tree struct {
	Path   string
	Source []byte
	root   *Node
}

// Root returns the compilation unit node.
func (t *Tree) Root() *Node {
	if t == nil {
		return nil
	}
	return t.root
}

// Close is a no-op kept for symmetry with the C# tree.
func (t *Tree) Close() {}

// SyntaxCreator parses Visual Basic source text.
type SyntaxCreator struct{}

// Create parses content that has no file path.
func (s SyntaxCreator) Create(content string) (*Tree, error) {
	return s.CreateFile("", content)
}

// CreateFile parses content read from path. Empty input fails with a
// *errors.ParseError, as does input in which no line could be placed in
// the tree. Lines the parser does not understand are otherwise skipped.
func (SyntaxCreator) CreateFile(path, content string) (*Tree, error) {
	if strings.TrimSpace(content) == "" {
		return nil, csferrors.NewParseError(model.LanguageVisualBasic, csferrors.ErrEmptySource).WithFile(path)
	}
	src := []byte(content)
	p := parse(src)
	if len(p.root.Children) == 0 && len(p.problems) > 0 {
		bad := p.problems[0]
		return nil, csferrors.NewParseError(model.LanguageVisualBasic, csferrors.ErrUnusableTree).
			WithFile(path).
			WithPosition(bad.Line, column(src, bad.Pos))
	}
	return &Tree{Path: path, Source: src, root: p.root}, nil
}

func column(src []byte, pos int) int {
	start := pos
	for start > 0 && src[start-1] != '\n' {
		start--
	}
	return pos - start + 1
}

// parser assembles logical lines into the block tree.
type parser struct {
	src      []byte
	lines    [][]token
	i        int
	root     *Node
	stack    []*Node
	pending  []*Node
	pendPos  int
	lastEnd  int
	problems []token
}

func parse(src []byte) *parser {
	p := &parser{src: src, lines: splitLines(lex(src)), pendPos: -1}
	p.root = &Node{Kind: KindCompilationUnit, Start: 0, End: len(src)}
	p.stack = []*Node{p.root}
	for p.i = 0; p.i < len(p.lines); p.i++ {
		ts := p.lines[p.i]
		p.line(ts)
		p.lastEnd = ts[len(ts)-1].End
	}
	for len(p.stack) > 1 {
		p.pop(p.lastEnd)
	}
	return p
}

func (p *parser) top() *Node { return p.stack[len(p.stack)-1] }

func (p *parser) add(n *Node) {
	parent := p.top()
	n.Parent = parent
	parent.Children = append(parent.Children, n)
}

func (p *parser) push(n *Node) {
	p.add(n)
	p.stack = append(p.stack, n)
}

func (p *parser) pop(end int) {
	n := p.top()
	n.End = end
	p.stack = p.stack[:len(p.stack)-1]
}

type context int

const (
	ctxFile context = iota
	ctxType
	ctxInterface
	ctxEnum
	ctxProperty
	ctxEvent
	ctxBody
)

func (p *parser) context() context {
	switch p.top().Kind {
	case KindCompilationUnit, KindNamespace:
		return ctxFile
	case KindClass, KindModule, KindStructure:
		return ctxType
	case KindInterface:
		return ctxInterface
	case KindEnum:
		return ctxEnum
	case KindProperty:
		return ctxProperty
	case KindEvent:
		return ctxEvent
	}
	return ctxBody
}

func (p *parser) line(ts []token) {
	attrs, rest := splitAttributes(ts)
	if len(rest) == 0 {
		if p.pendPos < 0 {
			p.pendPos = ts[0].Pos
		}
		p.pending = append(p.pending, attrs...)
		return
	}
	start := ts[0].Pos
	if p.pendPos >= 0 {
		start = p.pendPos
		attrs = append(p.pending, attrs...)
	}
	p.pending, p.pendPos = nil, -1

	if p.closes(rest) {
		return
	}
	if p.context() == ctxBody {
		p.statement(rest, start)
		return
	}
	p.declaration(rest, fileLevel(attrs, p.context()), start)
}

// fileLevel drops assembly and module attributes, which describe no
// declaration.
func fileLevel(attrs []*Node, ctx context) []*Node {
	var out []*Node
	for _, a := range attrs {
		if strings.EqualFold(a.target, "Assembly") || strings.EqualFold(a.target, "Module") {
			continue
		}
		out = append(out, a)
	}
	return out
}

// endKinds maps the word after End to the blocks it closes.
var endKinds = map[string][]string{
	"class": {KindClass}, "module": {KindModule}, "structure": {KindStructure}, "interface": {KindInterface},
	"enum": {KindEnum}, "namespace": {KindNamespace}, "sub": {KindLambda, KindSub}, "function": {KindLambda, KindFunction},
	"operator": {KindOperator}, "property": {KindProperty}, "get": {KindAccessor}, "set": {KindAccessor},
	"event": {KindEvent}, "addhandler": {KindAccessor}, "removehandler": {KindAccessor}, "raiseevent": {KindAccessor},
	"if": {KindIf}, "select": {KindSelect}, "while": {KindWhile}, "try": {KindTry}, "using": {KindUsing},
	"with": {KindWith}, "synclock": {KindSyncLock},
}

// closes handles the lines that end a block. It reports whether ts was
// one.
func (p *parser) closes(ts []token) bool {
	first := ts[0]
	end := ts[len(ts)-1].End
	switch {
	case first.is("End") && len(ts) > 1 && ts[1].Kind == tokIdent:
		kinds, ok := endKinds[strings.ToLower(ts[1].Text)]
		if !ok {
			return false
		}
		if !p.closeTo(kinds, end, nil) {
			p.problems = append(p.problems, first)
		}
		return true
	case first.is("Loop"):
		if !p.closeTo([]string{KindDo}, end, ts) {
			p.problems = append(p.problems, first)
		}
		return true
	case first.is("Wend"):
		p.closeTo([]string{KindWhile}, end, nil)
		return true
	case first.is("Next"):
		loops := 1 + strings.Count(tokenText(ts), ",")
		for i := 0; i < loops; i++ {
			if !p.closeTo([]string{KindFor, KindForEach}, end, nil) {
				p.problems = append(p.problems, first)
				break
			}
		}
		return true
	}
	return false
}

// closeTo pops blocks until one of kinds is closed. Nothing is popped
// when no open block has one of kinds.
func (p *parser) closeTo(kinds []string, end int, tail []token) bool {
	for i := len(p.stack) - 1; i > 0; i-- {
		if !hasKind(p.stack[i], kinds...) {
			continue
		}
		for len(p.stack) > i+1 {
			p.pop(p.lastEnd)
		}
		p.top().Tail = tail
		p.pop(end)
		return true
	}
	return false
}

// clause starts ElseIf, Else, Case, Catch or Finally in the nearest open
// owner block.
func (p *parser) clause(owner string, n *Node) {
	for i := len(p.stack) - 1; i > 0; i-- {
		if p.stack[i].Kind != owner {
			if isFunctionKind(p.stack[i].Kind) {
				break
			}
			continue
		}
		for len(p.stack) > i+1 {
			p.pop(p.lastEnd)
		}
		p.push(n)
		return
	}
	p.problems = append(p.problems, n.Tokens[0])
}

// statement places one executable statement.
func (p *parser) statement(ts []token, start int) {
	n := &Node{Kind: KindStatement, Tokens: ts, Start: start, End: ts[len(ts)-1].End}
	first := ts[0]
	switch {
	case first.is("If"):
		then := indexWord(ts, "Then")
		if then >= 0 && then < len(ts)-1 {
			n.Kind = KindSingleLineIf
			p.add(n)
			return
		}
		n.Kind = KindIf
		p.push(n)
		return
	case first.is("ElseIf"), first.is("Else") && len(ts) > 1 && ts[1].is("If"):
		n.Kind = KindElseIf
		p.clause(KindIf, n)
		return
	case first.is("Else"):
		n.Kind = KindElse
		p.clause(KindIf, n)
		if len(ts) > 1 {
			p.statement(ts[1:], ts[1].Pos)
		}
		return
	case first.is("Select"):
		n.Kind = KindSelect
	case first.is("Case"):
		n.Kind = KindCase
		p.clause(KindSelect, n)
		return
	case first.is("Catch"):
		n.Kind = KindCatch
		p.catchHeader(n)
		p.clause(KindTry, n)
		return
	case first.is("Finally"):
		n.Kind = KindFinally
		p.clause(KindTry, n)
		return
	case first.is("While"):
		n.Kind = KindWhile
	case first.is("Do"):
		n.Kind = KindDo
	case first.is("For") && len(ts) > 1 && ts[1].is("Each"):
		n.Kind = KindForEach
		p.loopVariable(n, ts[2:])
	case first.is("For"):
		n.Kind = KindFor
		p.loopVariable(n, ts[1:])
	case first.is("Try"):
		n.Kind = KindTry
	case first.is("Using"):
		n.Kind = KindUsing
		n.Children = nil
		for _, d := range parseDeclarators(ts[1:]) {
			if d.Name != "" && (d.typ != "" || len(d.value) > 0) && hasAssignment(ts[1:]) {
				d.Parent = n
				n.Children = append(n.Children, d)
			}
		}
	case first.is("With"):
		n.Kind = KindWith
	case first.is("SyncLock"):
		n.Kind = KindSyncLock
	case first.isAny("Dim", "Const", "Static"):
		n.Kind = KindLocal
		n.modifiers = []string{first.Text}
		from := 1
		if len(ts) > 1 && ts[1].is("Dim") {
			from = 2
		}
		for _, d := range parseDeclarators(ts[from:]) {
			d.Parent = n
			n.Children = append(n.Children, d)
		}
		p.add(n)
		p.lambda(n)
		return
	default:
		p.add(n)
		p.lambda(n)
		return
	}
	p.push(n)
}

// hasAssignment reports whether a Using statement declares its resources
// rather than naming existing ones.
func hasAssignment(ts []token) bool {
	for _, t := range ts {
		if t.op("=") || t.is("As") {
			return true
		}
	}
	return false
}

// catchHeader reads "Catch ex As T When cond".
func (p *parser) catchHeader(n *Node) {
	ts := n.Tokens
	if len(ts) > 1 && ts[1].Kind == tokIdent && !ts[1].is("When") {
		n.Name = ts[1].Text
		if len(ts) > 3 && ts[2].is("As") {
			n.typ, _ = scanType(ts, 3)
		}
	}
}

// loopVariable reads the control variable of For and For Each.
func (p *parser) loopVariable(n *Node, ts []token) {
	if len(ts) == 0 || ts[0].Kind != tokIdent {
		return
	}
	n.Name = ts[0].Text
	if len(ts) > 2 && ts[1].is("As") {
		n.typ, _ = scanType(ts, 2)
	}
}

// lambda opens a multi-line lambda started on the statement n.
func (p *parser) lambda(n *Node) {
	ts := n.Tokens
	for i, t := range ts {
		if !t.isAny("Sub", "Function") || i+1 >= len(ts) || !ts[i+1].op("(") || i > 0 && ts[i-1].op(".") {
			continue
		}
		closeAt := matchParen(ts, i+1)
		if closeAt < 0 {
			return
		}
		next := closeAt + 1
		if next < len(ts) && ts[next].is("As") {
			_, next = scanType(ts, next+1)
		}
		if next != len(ts) {
			continue
		}
		lam := &Node{Kind: KindLambda, Name: t.Text, Tokens: ts[i:], Start: t.Pos, Parent: n}
		lam.params = parseParameters(ts[i+2:closeAt], lam)
		n.Children = append(n.Children, lam)
		p.stack = append(p.stack, lam)
		return
	}
}

// modifierWords may precede a declaration keyword.
var modifierWords = []string{
	"Public", "Private", "Protected", "Friend", "Shared", "Shadows", "Overridable",
	"NotOverridable", "MustOverride", "Overrides", "Overloads", "MustInherit",
	"NotInheritable", "Partial", "ReadOnly", "WriteOnly", "WithEvents", "Default",
	"Async", "Iterator", "Narrowing", "Widening", "Custom",
}

func splitModifierTokens(ts []token) ([]string, []token) {
	var mods []string
	i := 0
	for i < len(ts)-1 && ts[i].isAny(modifierWords...) {
		mods = append(mods, ts[i].Text)
		i++
	}
	return mods, ts[i:]
}

// declaration places one line outside executable code.
func (p *parser) declaration(ts []token, attrs []*Node, start int) {
	ctx := p.context()
	mods, rest := splitModifierTokens(ts)
	kw := rest[0]
	n := &Node{Tokens: rest, Start: start, End: ts[len(ts)-1].End, modifiers: mods}
	n.setAttributes(attrs)

	switch {
	case ctx == ctxEnum:
		n.Kind = KindEnumMember
		n.Name = kw.Text
		if eq := indexOp(rest, "="); eq > 0 {
			n.value = rest[eq+1:]
		}
		p.add(n)
	case ctx == ctxProperty && kw.isAny("Get", "Set"),
		ctx == ctxEvent && kw.isAny("AddHandler", "RemoveHandler", "RaiseEvent"):
		n.Kind = KindAccessor
		n.Name = kw.Text
		if len(rest) > 1 && rest[1].op("(") {
			if closeAt := matchParen(rest, 1); closeAt > 0 {
				n.params = parseParameters(rest[2:closeAt], n)
			}
		}
		p.push(n)
	case kw.is("Imports") && ctx == ctxFile:
		n.Kind = KindImports
		for _, item := range splitTopLevel(rest[1:]) {
			if c := importClause(item); c != nil {
				c.Parent = n
				n.Children = append(n.Children, c)
			}
		}
		p.add(n)
	case kw.is("Option"):
		n.Kind = KindOption
		p.add(n)
	case kw.is("Namespace"):
		n.Kind = KindNamespace
		n.Name, _ = scanType(rest, 1)
		n.Name = strings.TrimPrefix(n.Name, "Global.")
		p.push(n)
	case kw.isAny("Class", "Structure", "Interface", "Module", "Enum"):
		n.Kind = typeKinds[strings.ToLower(kw.Text)]
		typeHeader(n, rest)
		p.push(n)
	case kw.is("Delegate"):
		n.Kind = KindDelegate
		if len(rest) > 1 {
			memberHeader(n, rest, 2)
		}
		p.add(n)
	case kw.isAny("Sub", "Function"):
		n.Kind = KindSub
		if kw.is("Function") {
			n.Kind = KindFunction
		}
		memberHeader(n, rest, 1)
		if ctx == ctxInterface || n.hasModifier("MustOverride") {
			p.add(n)
			return
		}
		p.push(n)
	case kw.is("Declare"):
		i := 1
		for i < len(rest) && rest[i].isAny("Ansi", "Unicode", "Auto") {
			i++
		}
		if i >= len(rest) {
			p.problems = append(p.problems, kw)
			return
		}
		n.Kind = KindSub
		if rest[i].is("Function") {
			n.Kind = KindFunction
		}
		n.modifiers = append(n.modifiers, "Declare")
		memberHeader(n, rest, i+1)
		p.add(n)
	case kw.is("Operator"):
		n.Kind = KindOperator
		memberHeader(n, rest, 1)
		p.push(n)
	case kw.is("Property"):
		n.Kind = KindProperty
		memberHeader(n, rest, 1)
		if ctx != ctxInterface && !n.hasModifier("MustOverride") && p.accessorFollows() {
			p.push(n)
			return
		}
		p.add(n)
	case kw.is("Event"):
		n.Kind = KindEvent
		memberHeader(n, rest, 1)
		if n.hasModifier("Custom") {
			p.push(n)
			return
		}
		n.Kind = KindField
		n.event = true
		d := &Node{Kind: KindDeclarator, Name: n.Name, typ: n.typ, Parent: n, Start: n.Start, End: n.End}
		n.Children = []*Node{d}
		p.add(n)
	case kw.isAny("Inherits", "Implements") && (ctx == ctxType || ctx == ctxInterface):
		n.Kind = KindInherits
		if kw.is("Implements") {
			n.Kind = KindImplements
		}
		for _, item := range splitTopLevel(rest[1:]) {
			if t, _ := scanType(item, 0); t != "" {
				n.bases = append(n.bases, t)
			}
		}
		p.add(n)
	case kw.isAny("Dim", "Const") && ctx != ctxFile,
		len(mods) > 0 && kw.Kind == tokIdent && ctx != ctxFile:
		n.Kind = KindField
		from := 0
		if kw.is("Dim") {
			from = 1
		} else if kw.is("Const") {
			n.modifiers = append(n.modifiers, kw.Text)
			from = 1
		}
		for _, d := range parseDeclarators(rest[from:]) {
			d.Parent = n
			n.Children = append(n.Children, d)
		}
		p.add(n)
	default:
		p.problems = append(p.problems, kw)
	}
}

var typeKinds = map[string]string{
	"class": KindClass, "structure": KindStructure, "interface": KindInterface, "module": KindModule, "enum": KindEnum,
}

// accessorFollows reports whether the next line opens a Get or Set block.
func (p *parser) accessorFollows() bool {
	if p.i+1 >= len(p.lines) {
		return false
	}
	_, rest := splitAttributes(p.lines[p.i+1])
	_, rest = splitModifierTokens(rest)
	return len(rest) > 0 && rest[0].isAny("Get", "Set")
}

func (n *Node) setAttributes(attrs []*Node) {
	n.attributes = attrs
	for _, a := range attrs {
		a.Parent = n
	}
}

func (n *Node) hasModifier(word string) bool {
	for _, m := range n.modifiers {
		if strings.EqualFold(m, word) {
			return true
		}
	}
	return false
}

func hasKind(n *Node, kinds ...string) bool {
	if n == nil {
		return false
	}
	for _, k := range kinds {
		if n.Kind == k {
			return true
		}
	}
	return false
}

// ancestor returns the nearest proper ancestor of n with one of kinds.
func ancestor(n *Node, kinds ...string) *Node {
	if n == nil {
		return nil
	}
	for p := n.Parent; p != nil; p = p.Parent {
		if hasKind(p, kinds...) {
			return p
		}
	}
	return nil
}

// walk visits n and its descendants depth first in source order. Children
// of a node are skipped when visit returns false.
func walk(n *Node, visit func(*Node) bool) {
	if n == nil || !visit(n) {
		return
	}
	for _, c := range n.Children {
		walk(c, visit)
	}
}

func indexWord(ts []token, word string) int {
	depth := 0
	for i, t := range ts {
		switch {
		case t.op("("), t.op("{"):
			depth++
		case t.op(")"), t.op("}"):
			depth--
		case depth == 0 && t.is(word):
			return i
		}
	}
	return -1
}

func indexOp(ts []token, op string) int {
	depth := 0
	for i, t := range ts {
		switch {
		case t.op("("), t.op("{"):
			depth++
		case t.op(")"), t.op("}"):
			depth--
		case depth == 0 && t.op(op):
			return i
		}
	}
	return -1
}

// matchParen returns the index of the bracket closing the one at open, or
// -1.
func matchParen(ts []token, open int) int {
	depth := 0
	for i := open; i < len(ts); i++ {
		switch {
		case ts[i].op("("), ts[i].op("{"):
			depth++
		case ts[i].op(")"), ts[i].op("}"):
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitTopLevel splits ts at commas outside brackets.
func splitTopLevel(ts []token) [][]token {
	var out [][]token
	depth, from := 0, 0
	for i, t := range ts {
		switch {
		case t.op("("), t.op("{"):
			depth++
		case t.op(")"), t.op("}"):
			depth--
		case depth == 0 && t.op(","):
			out = append(out, ts[from:i])
			from = i + 1
		}
	}
	if from < len(ts) {
		out = append(out, ts[from:])
	}
	return out
}
