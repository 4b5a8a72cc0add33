package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/csfacts/internal/config"
	"github.com/standardbeagle/csfacts/internal/logging"
	"github.com/standardbeagle/csfacts/internal/model"
)

func TestLanguageFor(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"a/B.cs", config.LanguageCSharp},
		{"a/B.CS", config.LanguageCSharp},
		{"Module1.vb", config.LanguageVisualBasic},
		{"Module1.Vb", config.LanguageVisualBasic},
		{"script.csx", ""},
		{"Makefile", ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			l := LanguageFor(tt.path)
			if tt.want == "" {
				assert.Nil(t, l)
				return
			}
			require.NotNil(t, l)
			assert.Equal(t, tt.want, l.Name)
		})
	}
}

func TestLanguagesReturnsCopy(t *testing.T) {
	ls := Languages()
	require.Len(t, ls, 2)
	ls[0] = nil
	assert.NotNil(t, Languages()[0])
}

func TestSingleFileExtractors(t *testing.T) {
	cu, err := LanguageFor("A.cs").New(logging.Nop()).ExtractSource("A.cs", "class A { void M() { } }")
	require.NoError(t, err)
	assert.Equal(t, model.LanguageCSharp, cu.Language)
	require.Len(t, cu.ClassTypes, 1)

	cu, err = LanguageFor("A.vb").New(logging.Nop()).ExtractSource("A.vb", "Class A\n  Sub M()\n  End Sub\nEnd Class\n")
	require.NoError(t, err)
	assert.Equal(t, model.LanguageVisualBasic, cu.Language)
	require.Len(t, cu.ClassTypes, 1)
}

func TestParsedFileDeclarations(t *testing.T) {
	f, err := LanguageFor("A.cs").Parse("A.cs", "namespace N { class A { } }")
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, "A.cs", f.Path())
	decls := f.Declarations()
	require.NotNil(t, decls)
	assert.Equal(t, "A.cs", decls.Path)
	assert.NotEmpty(t, decls.Types)
}
