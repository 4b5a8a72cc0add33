package loc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/standardbeagle/csfacts/internal/model"
)

func TestCSharpCounter(t *testing.T) {
	tests := []struct {
		name string
		text string
		want model.LinesOfCode
	}{
		{
			name: "empty text",
			text: "",
			want: model.LinesOfCode{},
		},
		{
			name: "code with trailing comment is source",
			text: "int x = 1; // one\n// only comment\n\n",
			want: model.LinesOfCode{SourceLines: 1, CommentedLines: 1, EmptyLines: 1},
		},
		{
			name: "block comment spanning lines",
			text: "/*\n * doc\n */\nclass A {}\n",
			want: model.LinesOfCode{SourceLines: 1, CommentedLines: 3},
		},
		{
			name: "code after block close is source",
			text: "/* a\n b */ int y;\n",
			want: model.LinesOfCode{SourceLines: 1, CommentedLines: 1},
		},
		{
			name: "comment markers inside strings",
			text: "var s = \"// not a comment\";\nvar t = \"/* nor this\";\nint z;\n",
			want: model.LinesOfCode{SourceLines: 3},
		},
		{
			name: "raw string spanning lines",
			text: "var r = \"\"\"\n/* not a comment\n\"\"\";\nint x;\n",
			want: model.LinesOfCode{SourceLines: 4},
		},
		{
			name: "raw string with embedded quotes",
			text: "var r = \"\"\"\"\n\"\"\" // text\n\"\"\"\";\n// real\n",
			want: model.LinesOfCode{SourceLines: 3, CommentedLines: 1},
		},
		{
			name: "verbatim string spanning lines",
			text: "var v = @\"first\n// inside string\n\n\";\n",
			want: model.LinesOfCode{SourceLines: 4},
		},
		{
			name: "verbatim string with doubled quotes",
			text: "var v = $@\"say \"\"hi\"\"\n/* still text\"; int y;\n// comment\n",
			want: model.LinesOfCode{SourceLines: 2, CommentedLines: 1},
		},
		{
			name: "backslash ends a verbatim string",
			text: "var p = @\"C:\\\"; /* start\ncomment line\n*/\n",
			want: model.LinesOfCode{SourceLines: 1, CommentedLines: 2},
		},
		{
			name: "whitespace only lines are empty",
			text: "  \t\n{\n}\n",
			want: model.LinesOfCode{SourceLines: 2, EmptyLines: 1},
		},
		{
			name: "windows line endings",
			text: "a();\r\n// c\r\n\r\n",
			want: model.LinesOfCode{SourceLines: 1, CommentedLines: 1, EmptyLines: 1},
		},
	}

	counter := NewCounter(CSharp)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, counter.Count(tt.text))
		})
	}
}

func TestVisualBasicCounter(t *testing.T) {
	text := strings.Join([]string{
		"' comment",
		"REM another comment",
		"Dim s = \"it's ' quoted\"",
		"",
		"x = 1 ' trailing",
		"Dim remaining = 2",
	}, "\n")

	got := NewCounter(VisualBasic).Count(text)
	assert.Equal(t, model.LinesOfCode{SourceLines: 3, CommentedLines: 2, EmptyLines: 1}, got)
}

func TestCountAccountsForEveryLine(t *testing.T) {
	text := "namespace N\n{\n    // c\n\n    /* b\n    */ class A { }\n}\n"
	got := NewCounter(CSharp).Count(text)
	assert.Equal(t, strings.Count(text, "\n"), got.Total())
}

func TestCountSpan(t *testing.T) {
	src := []byte("a();\n// b\nc();\n")
	counter := NewCounter(CSharp)

	assert.Equal(t, model.LinesOfCode{CommentedLines: 1}, counter.CountSpan(src, 5, 9))
	assert.Equal(t, model.LinesOfCode{}, counter.CountSpan(src, 10, 2))
	assert.Equal(t, 3, counter.CountSpan(src, -5, 1000).Total())
}
