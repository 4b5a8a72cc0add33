package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGitignoreParser_ShouldIgnore(t *testing.T) {
	gp := NewGitignoreParser()
	require.NoError(t, gp.Read(strings.NewReader(`
# build output
bin/
/Generated
*.g.cs
docs/*.md
!Keep.g.cs
`)))

	tests := []struct {
		path string
		want bool
	}{
		{"bin/App.dll", true},
		{"src/App/bin/Debug/App.cs", true},
		{"Generated/Model.cs", true},
		{"src/Generated/Model.cs", false},
		{"src/Form1.g.cs", true},
		{"src/Keep.g.cs", false},
		{"docs/readme.md", true},
		{"src/docs/readme.md", false},
		{"src/Program.cs", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, gp.ShouldIgnore(tt.path), tt.path)
	}
}

func TestGitignoreParser_MissingFile(t *testing.T) {
	gp := NewGitignoreParser()
	require.NoError(t, gp.LoadGitignore(t.TempDir()))
	assert.False(t, gp.ShouldIgnore("anything.cs"))
	assert.Empty(t, gp.GetExclusionPatterns())
}

func TestGitignoreParser_LoadAndExclusions(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("obj/\n!obj/keep\n"), 0o644))

	gp := NewGitignoreParser()
	require.NoError(t, gp.LoadGitignore(dir))
	assert.Equal(t, []string{"**/obj/**"}, gp.GetExclusionPatterns())
}
