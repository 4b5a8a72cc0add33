package extraction

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/standardbeagle/csfacts/internal/config"
)

// Discoverer finds the source files of a project. Paths are matched against
// the include and exclude globs relative to the project root, with forward
// slashes.
type Discoverer struct {
	cfg       *config.Config
	root      string
	gitignore *config.GitignoreParser
}

// NewDiscoverer creates a discoverer for cfg.Project.Root and loads the
// root .gitignore when configured to.
func NewDiscoverer(cfg *config.Config) *Discoverer {
	d := &Discoverer{cfg: cfg, root: cfg.Project.Root}
	if cfg.Extraction.RespectGitignore {
		gp := config.NewGitignoreParser()
		if err := gp.LoadGitignore(d.root); err == nil {
			d.gitignore = gp
		}
	}
	return d
}

// Root returns the directory files are discovered under.
func (d *Discoverer) Root() string { return d.root }

// Discover walks the project root and returns the accepted files, sorted.
func (d *Discoverer) Discover(ctx context.Context) ([]string, error) {
	var files []string
	visited := make(map[string]bool)
	err := d.walk(ctx, d.root, visited, &files)
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func (d *Discoverer) walk(ctx context.Context, dir string, visited map[string]bool, files *[]string) error {
	if real, err := filepath.EvalSymlinks(dir); err == nil {
		if visited[real] {
			return nil
		}
		visited[real] = true
	}

	return filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are skipped.
			if entry != nil && entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if entry.IsDir() {
			if path != dir && d.excludedDir(path) {
				return filepath.SkipDir
			}
			return nil
		}

		if entry.Type()&fs.ModeSymlink != 0 {
			if !d.cfg.Extraction.FollowSymlinks {
				return nil
			}
			info, err := os.Stat(path)
			if err != nil {
				return nil
			}
			if info.IsDir() {
				if d.excludedDir(path) {
					return nil
				}
				return d.walk(ctx, path, visited, files)
			}
		}

		if d.Accept(path) {
			*files = append(*files, path)
		}
		return nil
	})
}

// Accept reports whether the file at path should be extracted: a
// registered and enabled language, not excluded, and included.
func (d *Discoverer) Accept(path string) bool {
	lang := LanguageFor(path)
	if lang == nil || !d.cfg.Extraction.Enabled(lang.Name) {
		return false
	}
	rel := d.rel(path)
	if d.gitignore != nil && d.gitignore.ShouldIgnore(rel) {
		return false
	}
	if matchAny(d.cfg.Exclude, rel) {
		return false
	}
	return len(d.cfg.Include) == 0 || matchAny(d.cfg.Include, rel)
}

// excludedDir reports whether everything below dir is excluded, so the walk
// can skip it.
func (d *Discoverer) excludedDir(dir string) bool {
	// A file directly inside dir stands for its whole content.
	probe := d.rel(dir) + "/_"
	if d.gitignore != nil && d.gitignore.ShouldIgnore(probe) {
		return true
	}
	return matchAny(d.cfg.Exclude, probe)
}

func (d *Discoverer) rel(path string) string {
	rel, err := filepath.Rel(d.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func matchAny(patterns []string, path string) bool {
	for _, pattern := range patterns {
		matched, err := doublestar.Match(pattern, path)
		if err != nil {
			// A bad pattern does not stop discovery.
			continue
		}
		if matched {
			return true
		}
	}
	return false
}
