package config

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// GitignoreParser matches paths against the patterns of a root .gitignore.
// Patterns are translated to doublestar globs; the last matching pattern
// decides, so negations re-include paths.
type GitignoreParser struct {
	patterns []GitignorePattern
}

type GitignorePattern struct {
	Pattern   string
	Negate    bool
	Directory bool
	Absolute  bool
	globs     []string
}

// NewGitignoreParser creates an empty parser
func NewGitignoreParser() *GitignoreParser {
	return &GitignoreParser{}
}

// LoadGitignore loads rootPath/.gitignore. A missing file is not an error.
func (gp *GitignoreParser) LoadGitignore(rootPath string) error {
	file, err := os.Open(filepath.Join(rootPath, ".gitignore"))
	if err != nil {
		return nil
	}
	defer file.Close()
	return gp.Read(file)
}

// Read adds one pattern per non-blank, non-comment line of r.
func (gp *GitignoreParser) Read(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		gp.AddPattern(line)
	}
	return scanner.Err()
}

// AddPattern adds a single gitignore line.
func (gp *GitignoreParser) AddPattern(line string) {
	p := GitignorePattern{}
	if strings.HasPrefix(line, "!") {
		p.Negate = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.Directory = true
		line = strings.TrimSuffix(line, "/")
	}
	if strings.HasPrefix(line, "/") {
		p.Absolute = true
		line = line[1:]
	}
	p.Pattern = line
	p.globs = p.toGlobs()
	gp.patterns = append(gp.patterns, p)
}

// toGlobs converts the pattern to doublestar globs matching the ignored
// path and everything below it. Directory patterns only match below. A
// pattern containing a slash is anchored at the root, as git does.
func (p GitignorePattern) toGlobs() []string {
	g := p.Pattern
	if !p.Absolute && !strings.Contains(g, "/") {
		g = "**/" + g
	}
	if p.Directory {
		return []string{g + "/**"}
	}
	return []string{g, g + "/**"}
}

// ShouldIgnore reports whether the slash-separated path, relative to the
// root, is ignored.
func (gp *GitignoreParser) ShouldIgnore(path string) bool {
	ignored := false
	for _, p := range gp.patterns {
		for _, g := range p.globs {
			if matched, err := doublestar.Match(g, path); err == nil && matched {
				ignored = !p.Negate
				break
			}
		}
	}
	return ignored
}

// GetExclusionPatterns returns the non-negated patterns as exclusion globs.
func (gp *GitignoreParser) GetExclusionPatterns() []string {
	var out []string
	for _, p := range gp.patterns {
		if !p.Negate {
			out = append(out, p.globs...)
		}
	}
	return out
}
