package visualbasic

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokNumber
	tokString
	tokChar
	tokDate
	tokOp
	tokEOL
)

// token is one lexical element. Pos and End are byte offsets into the
// source; Line is 1-based.
type token struct {
	Kind    tokenKind
	Text    string
	Pos     int
	End     int
	Line    int
	Escaped bool
}

// is reports whether t is the keyword or identifier word, ignoring case.
// Bracketed identifiers never match keywords.
func (t token) is(word string) bool {
	return t.Kind == tokIdent && !t.Escaped && strings.EqualFold(t.Text, word)
}

func (t token) isAny(words ...string) bool {
	for _, w := range words {
		if t.is(w) {
			return true
		}
	}
	return false
}

func (t token) op(s string) bool { return t.Kind == tokOp && t.Text == s }

// operators are matched longest first.
var operators = []string{
	"<<=", ">>=",
	"<>", "<=", ">=", ":=", "&=", "+=", "-=", "*=", "/=", "\\=", "^=", "<<", ">>", "?.",
	"<", ">", "=", "+", "-", "*", "/", "\\", "^", "&", "(", ")", "{", "}", ",", ".", "!", "?", ":", "#", "@", ";",
}

type lexer struct {
	src       []byte
	pos       int
	line      int
	lineStart bool
	toks      []token
}

// lex splits src into tokens. Comments, preprocessor lines and explicit
// line continuations are dropped; statement ends become tokEOL, and a colon
// separating statements does too.
func lex(src []byte) []token {
	l := &lexer{src: src, line: 1, lineStart: true}
	for l.pos < len(src) {
		l.next()
	}
	l.emit(tokEOL, "", l.pos, l.pos)
	return joinContinuations(l.toks)
}

func (l *lexer) emit(kind tokenKind, text string, start, end int) {
	l.toks = append(l.toks, token{Kind: kind, Text: text, Pos: start, End: end, Line: l.line})
	l.lineStart = false
}

func (l *lexer) newline() {
	l.emit(tokEOL, "", l.pos, l.pos+1)
	l.pos++
	l.line++
	l.lineStart = true
}

func (l *lexer) skipLine() {
	for l.pos < len(l.src) && l.src[l.pos] != '\n' {
		l.pos++
	}
}

func (l *lexer) peek(off int) byte {
	if l.pos+off < len(l.src) {
		return l.src[l.pos+off]
	}
	return 0
}

func (l *lexer) next() {
	c := l.src[l.pos]
	switch {
	case c == '\n':
		l.newline()
	case c == '\r':
		if l.peek(1) == '\n' {
			l.pos++
			return
		}
		l.newline()
	case c == ' ' || c == '\t' || c == '\f' || c == '\v':
		l.pos++
	case c == '#' && l.lineStart:
		l.skipLine()
	case c == '\'':
		l.skipLine()
	case c == '"', c == '$' && l.peek(1) == '"':
		l.str()
	case c == '#':
		l.date()
	case isDigit(c), c == '.' && isDigit(l.peek(1)):
		l.number(l.pos)
	case c == '&' && strings.IndexByte("HhOoBb", l.peek(1)) >= 0 && isHexDigit(l.peek(2)):
		l.number(l.pos)
	case c == '[':
		l.escaped()
	case c == '_' || c >= utf8.RuneSelf || unicode.IsLetter(rune(c)):
		l.ident()
	default:
		l.operator()
	}
}

func (l *lexer) str() {
	start := l.pos
	if l.src[l.pos] == '$' {
		l.pos++
	}
	l.pos++
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == '\n' {
			break
		}
		l.pos++
		if c == '"' {
			if l.peek(0) == '"' {
				l.pos++
				continue
			}
			break
		}
	}
	kind := tokString
	if c := l.peek(0); (c == 'c' || c == 'C') && !isIdentByte(l.peek(1)) {
		l.pos++
		kind = tokChar
	}
	l.emit(kind, string(l.src[start:l.pos]), start, l.pos)
}

func (l *lexer) date() {
	start := l.pos
	end := start + 1
	for end < len(l.src) && l.src[end] != '#' && l.src[end] != '\n' {
		end++
	}
	if end < len(l.src) && l.src[end] == '#' {
		l.pos = end + 1
		l.emit(tokDate, string(l.src[start:l.pos]), start, l.pos)
		return
	}
	l.operator()
}

func (l *lexer) number(start int) {
	if l.src[l.pos] == '&' {
		l.pos += 2
	}
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case isIdentByte(c), c == '.' && isDigit(l.peek(1)):
			l.pos++
		case (c == '+' || c == '-') && (l.src[l.pos-1] == 'E' || l.src[l.pos-1] == 'e') && isDigit(l.peek(1)):
			l.pos++
		case c == '%' || c == '@' || c == '!' || c == '#' && !isDigit(l.peek(1)):
			l.pos++
			l.emit(tokNumber, string(l.src[start:l.pos]), start, l.pos)
			return
		default:
			l.emit(tokNumber, string(l.src[start:l.pos]), start, l.pos)
			return
		}
	}
	l.emit(tokNumber, string(l.src[start:l.pos]), start, l.pos)
}

func (l *lexer) escaped() {
	start := l.pos
	end := start + 1
	for end < len(l.src) && l.src[end] != ']' && l.src[end] != '\n' {
		end++
	}
	if end >= len(l.src) || l.src[end] != ']' {
		l.operator()
		return
	}
	l.pos = end + 1
	l.emit(tokIdent, string(l.src[start+1:end]), start, l.pos)
	l.toks[len(l.toks)-1].Escaped = true
}

func (l *lexer) ident() {
	start := l.pos
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRune(l.src[l.pos:])
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		l.pos += size
	}
	text := string(l.src[start:l.pos])

	if text == "_" && l.restIsBlank() {
		// Explicit line continuation.
		l.skipLine()
		if l.pos < len(l.src) {
			l.pos++
			l.line++
		}
		return
	}
	if strings.EqualFold(text, "REM") && (l.pos >= len(l.src) || l.src[l.pos] == ' ' || l.src[l.pos] == '\t' || l.src[l.pos] == '\n' || l.src[l.pos] == '\r') {
		l.skipLine()
		return
	}
	// Type characters: Name$, Count%.
	if l.pos < len(l.src) && strings.IndexByte("%&@!#$", l.src[l.pos]) >= 0 && !isIdentByte(l.peek(1)) && l.peek(1) != '"' {
		l.pos++
	}
	l.emit(tokIdent, text, start, l.pos)
}

// restIsBlank reports whether only blanks or a comment follow on the line.
func (l *lexer) restIsBlank() bool {
	for i := l.pos; i < len(l.src); i++ {
		switch l.src[i] {
		case ' ', '\t', '\r':
		case '\n', '\'':
			return true
		default:
			return false
		}
	}
	return true
}

func (l *lexer) operator() {
	for _, op := range operators {
		if strings.HasPrefix(string(l.src[l.pos:min(l.pos+len(op), len(l.src))]), op) {
			start := l.pos
			l.pos += len(op)
			if op == ":" && !l.attributeTarget() {
				l.emit(tokEOL, "", start, l.pos)
				return
			}
			l.emit(tokOp, op, start, l.pos)
			return
		}
	}
	// Unknown character; skip it.
	_, size := utf8.DecodeRune(l.src[l.pos:])
	l.pos += size
}

// attributeTarget reports whether a colon ends the target of an attribute
// block, as in <Assembly: X>.
func (l *lexer) attributeTarget() bool {
	n := len(l.toks)
	return n >= 2 && l.toks[n-2].op("<") && l.toks[n-1].isAny("Assembly", "Module")
}

// continueAfter are tokens after which a line break does not end the
// statement.
var continueAfter = map[string]bool{
	",": true, "(": true, "{": true, "&": true, "+": true, "-": true, "*": true, "/": true, "\\": true,
	"^": true, "=": true, ":=": true, "<>": true, "<=": true, ">=": true, "+=": true, "-=": true,
	"&=": true, "*=": true, "/=": true, "\\=": true, "^=": true, ".": true, "?.": true, "<<": true, ">>": true,
}

var continueAfterWords = []string{"And", "AndAlso", "Or", "OrElse", "Xor", "Is", "IsNot", "Like", "Mod", "Not"}

// joinContinuations removes line breaks that VB treats as implicit
// continuations: after a comma, an open bracket or a binary operator, and
// before a closing bracket.
func joinContinuations(toks []token) []token {
	out := toks[:0]
	for i, t := range toks {
		if t.Kind == tokEOL && t.Text == "" && len(out) > 0 && i+1 < len(toks) {
			prev := out[len(out)-1]
			next := toks[i+1]
			if prev.Kind == tokOp && continueAfter[prev.Text] ||
				prev.isAny(continueAfterWords...) ||
				next.op(")") || next.op("}") {
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

// splitLines groups tokens into logical lines.
func splitLines(toks []token) [][]token {
	var lines [][]token
	var cur []token
	for _, t := range toks {
		if t.Kind == tokEOL {
			if len(cur) > 0 {
				lines = append(lines, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, t)
	}
	if len(cur) > 0 {
		lines = append(lines, cur)
	}
	return lines
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHexDigit(c byte) bool {
	return isDigit(c) || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

func isIdentByte(c byte) bool {
	return c == '_' || isDigit(c) || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// tokenText joins tokens the way they were written, with single spaces
// where the source had whitespace.
func tokenText(ts []token) string {
	var b strings.Builder
	for i, t := range ts {
		if i > 0 && ts[i-1].End < t.Pos {
			b.WriteByte(' ')
		}
		b.WriteString(t.Text)
	}
	return b.String()
}
