// Package pathutil converts between the absolute paths files are read from
// and the paths recorded in extracted facts.
package pathutil

import (
	"path/filepath"
	"strings"
)

// ToRelative converts an absolute path to one relative to rootDir, with
// forward slashes. Paths that are already relative, lie outside rootDir or
// cannot be made relative are returned unchanged.
//
// Examples:
//   - ToRelative("/src/shop/Billing/Invoice.cs", "/src/shop") → "Billing/Invoice.cs"
//   - ToRelative("/elsewhere/A.cs", "/src/shop") → "/elsewhere/A.cs"
func ToRelative(absPath, rootDir string) string {
	if absPath == "" || rootDir == "" || !filepath.IsAbs(absPath) {
		return absPath
	}

	absPath = filepath.Clean(absPath)
	relPath, err := filepath.Rel(filepath.Clean(rootDir), absPath)
	if err != nil || relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return absPath
	}
	return filepath.ToSlash(relPath)
}

// ToAbsolute resolves a recorded path against rootDir. Absolute paths are
// only cleaned.
func ToAbsolute(path, rootDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(rootDir, filepath.FromSlash(path))
}
