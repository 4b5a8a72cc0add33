package pathutil

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToRelative(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("paths below are POSIX")
	}
	tests := []struct {
		name     string
		absPath  string
		rootDir  string
		expected string
	}{
		{"simple relative path", "/src/shop/Billing/Invoice.cs", "/src/shop", "Billing/Invoice.cs"},
		{"root level file", "/src/shop/Program.cs", "/src/shop/", "Program.cs"},
		{"same directory", "/src/shop", "/src/shop", "."},
		{"already relative path", "Billing/Invoice.cs", "/src/shop", "Billing/Invoice.cs"},
		{"outside root", "/elsewhere/A.cs", "/src/shop", "/elsewhere/A.cs"},
		{"sibling with common prefix", "/src/shopping/A.cs", "/src/shop", "/src/shopping/A.cs"},
		{"dot dot prefixed name stays inside", "/src/shop/..hidden/A.cs", "/src/shop", "..hidden/A.cs"},
		{"empty root directory", "/src/shop/A.cs", "", "/src/shop/A.cs"},
		{"empty path", "", "/src/shop", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ToRelative(tt.absPath, tt.rootDir))
		})
	}
}

func TestToAbsolute(t *testing.T) {
	root := t.TempDir()
	assert.Equal(t, filepath.Join(root, "Billing", "Invoice.cs"), ToAbsolute("Billing/Invoice.cs", root))
	abs := filepath.Join(root, "A.cs")
	assert.Equal(t, abs, ToAbsolute(abs, "/elsewhere"))
}
