// Package loc classifies the physical lines of a source span as source,
// empty or commented.
package loc

import (
	"strings"

	"github.com/standardbeagle/csfacts/internal/model"
)

// Syntax describes the comment and string conventions of a language.
type Syntax struct {
	LineComments []string // prefixes that comment out the rest of the line
	BlockOpen    string   // empty when the language has no block comments
	BlockClose   string
	// CaseInsensitiveComments matches LineComments ignoring case (VB REM).
	CaseInsensitiveComments bool
	// DoubledQuoteEscape means "" inside a string is an escaped quote.
	DoubledQuoteEscape bool
	// VerbatimStrings enables @"..." literals, which may span lines and
	// escape a quote by doubling it.
	VerbatimStrings bool
	// RawStrings enables literals opened by three or more quotes and closed
	// by the same number.
	RawStrings bool
}

var (
	// CSharp covers //, /* */ comments, backslash-escaped, verbatim and
	// raw strings.
	CSharp = Syntax{
		LineComments:    []string{"//"},
		BlockOpen:       "/*",
		BlockClose:      "*/",
		VerbatimStrings: true,
		RawStrings:      true,
	}

	// VisualBasic covers ' and REM comments and doubled-quote strings.
	VisualBasic = Syntax{
		LineComments:            []string{"'", "REM ", "REM\t"},
		CaseInsensitiveComments: true,
		DoubledQuoteEscape:      true,
	}
)

// Counter applies a Syntax to text spans.
type Counter struct {
	syntax Syntax
}

// NewCounter returns a counter for the given syntax.
func NewCounter(syntax Syntax) *Counter {
	return &Counter{syntax: syntax}
}

// Count classifies every physical line of text. A line that holds code and
// a comment counts as source.
func (c *Counter) Count(text string) model.LinesOfCode {
	var result model.LinesOfCode
	if text == "" {
		return result
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSuffix(text, "\n")

	var st state
	for _, line := range strings.Split(text, "\n") {
		var hasCode, hasComment bool
		hasCode, hasComment, st = c.scanLine(line, st)
		switch {
		case hasCode:
			result.SourceLines++
		case hasComment:
			result.CommentedLines++
		default:
			result.EmptyLines++
		}
	}
	return result
}

// state is what a line leaves open for the next one.
type state struct {
	block bool
	// verbatim is an open @"..." literal.
	verbatim bool
	// rawQuotes is the quote count closing an open raw literal, 0 if none.
	rawQuotes int
}

// CountSpan counts the lines of source[start:end].
func (c *Counter) CountSpan(source []byte, start, end int) model.LinesOfCode {
	if start < 0 {
		start = 0
	}
	if end > len(source) {
		end = len(source)
	}
	if start >= end {
		return model.LinesOfCode{}
	}
	return c.Count(string(source[start:end]))
}

// scanLine walks one line and reports whether it holds code, whether it holds
// comment text, and what stays open at its end. Lines inside a multi-line
// string literal are code.
func (c *Counter) scanLine(line string, st state) (hasCode, hasComment bool, next state) {
	s := c.syntax
	hasCode = st.verbatim || st.rawQuotes > 0
	i := 0
	for i < len(line) {
		switch {
		case st.block:
			hasComment = true
			idx := strings.Index(line[i:], s.BlockClose)
			if idx < 0 {
				return hasCode, hasComment, st
			}
			i += idx + len(s.BlockClose)
			st.block = false
			continue
		case st.verbatim:
			hasCode = true
			var closed bool
			i, closed = skipVerbatim(line, i)
			st.verbatim = !closed
			continue
		case st.rawQuotes > 0:
			hasCode = true
			var closed bool
			i, closed = skipRaw(line, i, st.rawQuotes)
			if closed {
				st.rawQuotes = 0
			}
			continue
		}

		ch := line[i]
		if ch == ' ' || ch == '\t' || ch == '\f' || ch == '\v' {
			i++
			continue
		}
		if c.startsLineComment(line[i:], hasCode) {
			return hasCode, true, st
		}
		if s.BlockOpen != "" && strings.HasPrefix(line[i:], s.BlockOpen) {
			st.block = true
			hasComment = true
			i += len(s.BlockOpen)
			continue
		}

		hasCode = true
		if ch == '"' {
			if s.VerbatimStrings && verbatimPrefix(line, i) {
				var closed bool
				i, closed = skipVerbatim(line, i+1)
				st.verbatim = !closed
				continue
			}
			if n := quoteRun(line, i); s.RawStrings && n >= 3 {
				st.rawQuotes = n
				i += n
				continue
			}
		}
		if ch == '"' || (ch == '\'' && !s.DoubledQuoteEscape) {
			i = c.skipLiteral(line, i, ch)
			continue
		}
		i++
	}
	return hasCode, hasComment, st
}

// quoteRun returns the number of consecutive quotes starting at line[i].
func quoteRun(line string, i int) int {
	n := 0
	for i+n < len(line) && line[i+n] == '"' {
		n++
	}
	return n
}

// verbatimPrefix reports whether the quote at line[i] follows an @, alone
// or combined with $ as in $@"..." and @$"...".
func verbatimPrefix(line string, i int) bool {
	for j := i - 1; j >= 0 && (line[j] == '@' || line[j] == '$'); j-- {
		if line[j] == '@' {
			return true
		}
	}
	return false
}

// skipVerbatim scans the body of a verbatim literal from line[i] and returns
// the index past its closing quote, or len(line) when it stays open.
func skipVerbatim(line string, i int) (int, bool) {
	for i < len(line) {
		if line[i] == '"' {
			if i+1 < len(line) && line[i+1] == '"' {
				i += 2
				continue
			}
			return i + 1, true
		}
		i++
	}
	return i, false
}

// skipRaw scans the body of a raw literal closed by quotes quotes.
func skipRaw(line string, i, quotes int) (int, bool) {
	for i < len(line) {
		if line[i] == '"' {
			n := quoteRun(line, i)
			if n >= quotes {
				return i + n, true
			}
			i += n
			continue
		}
		i++
	}
	return i, false
}

func (c *Counter) startsLineComment(rest string, afterCode bool) bool {
	for _, prefix := range c.syntax.LineComments {
		if len(rest) < len(prefix) {
			// "REM" alone on a line is still a comment.
			if c.syntax.CaseInsensitiveComments && strings.EqualFold(strings.TrimSpace(rest), strings.TrimSpace(prefix)) && !afterCode {
				return true
			}
			continue
		}
		head := rest[:len(prefix)]
		if c.syntax.CaseInsensitiveComments {
			if strings.EqualFold(head, prefix) {
				// REM only opens a comment at statement start.
				if prefix != "'" && afterCode {
					continue
				}
				return true
			}
		} else if head == prefix {
			return true
		}
	}
	return false
}

// skipLiteral returns the index just past the literal opened at line[start].
func (c *Counter) skipLiteral(line string, start int, quote byte) int {
	i := start + 1
	for i < len(line) {
		ch := line[i]
		switch {
		case ch == '\\' && !c.syntax.DoubledQuoteEscape:
			i += 2
			continue
		case ch == quote:
			if c.syntax.DoubledQuoteEscape && i+1 < len(line) && line[i+1] == quote {
				i += 2
				continue
			}
			return i + 1
		}
		i++
	}
	return i
}
