package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// LoadKDL loads dir/.csfacts.kdl. It returns nil, nil when the file does not
// exist.
func LoadKDL(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	cfg, err := parseKDL(string(content))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	// A relative root is relative to the directory holding the file.
	switch {
	case cfg.Project.Root == "":
		cfg.Project.Root = absRoot(dir)
	case !filepath.IsAbs(cfg.Project.Root):
		cfg.Project.Root = filepath.Clean(filepath.Join(absRoot(dir), cfg.Project.Root))
	}
	cfg.EnrichExclusionsWithBuildArtifacts()
	return cfg, nil
}

// parseKDL reads a configuration document on top of the defaults. An
// exclude node replaces the default exclusions; include nodes replace the
// default inclusions.
func parseKDL(content string) (*Config, error) {
	cfg := Default("")

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse KDL config: %w", err)
	}

	includeSeen := false
	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "version":
			if v, ok := firstIntArg(n); ok {
				cfg.Version = v
			}
		case "project":
			for _, cn := range n.Children {
				assignSimpleString(cn, "root", func(v string) { cfg.Project.Root = v })
				assignSimpleString(cn, "name", func(v string) { cfg.Project.Name = v })
			}
		case "extraction":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "languages":
					cfg.Extraction.Languages = collectStringArgs(cn)
				case "max_file_size":
					if v, ok := firstIntArg(cn); ok {
						cfg.Extraction.MaxFileSize = int64(v)
					}
					if s, ok := firstStringArg(cn); ok {
						if sz, err := parseSize(s); err == nil {
							cfg.Extraction.MaxFileSize = sz
						}
					}
				case "dedupe":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Extraction.Dedupe = b
					}
				case "respect_gitignore":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Extraction.RespectGitignore = b
					}
				case "follow_symlinks":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Extraction.FollowSymlinks = b
					}
				}
			}
		case "performance":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "workers":
					if v, ok := firstIntArg(cn); ok {
						cfg.Performance.Workers = v
					}
				case "timeout_sec":
					if v, ok := firstIntArg(cn); ok {
						cfg.Performance.TimeoutSec = v
					}
				}
			}
		case "output":
			for _, cn := range n.Children {
				assignSimpleString(cn, "path", func(v string) { cfg.Output.Path = v })
				switch nodeName(cn) {
				case "indent":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Output.Indent = b
					}
				case "relative_paths":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Output.RelativePaths = b
					}
				}
			}
		case "logging":
			for _, cn := range n.Children {
				assignSimpleString(cn, "level", func(v string) { cfg.Logging.Level = v })
				assignSimpleString(cn, "format", func(v string) { cfg.Logging.Format = v })
			}
		case "watch":
			for _, cn := range n.Children {
				if nodeName(cn) == "debounce_ms" {
					if v, ok := firstIntArg(cn); ok {
						cfg.Watch.DebounceMs = v
					}
				}
			}
		case "include":
			if !includeSeen {
				cfg.Include = nil
				includeSeen = true
			}
			cfg.Include = append(cfg.Include, collectStringArgs(n)...)
		case "exclude":
			cfg.Exclude = collectStringArgs(n)
		}
	}

	return cfg, nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

// collectStringArgs reads the inline form `exclude "a" "b"` or the block
// form `exclude { "a"; "b" }`.
func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}

	if len(out) == 0 && len(n.Children) > 0 {
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}

	return out
}

func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}

// parseSize handles size strings like "10MB", "500KB", "1GB".
func parseSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))

	var multiplier int64 = 1
	numStr := s

	switch {
	case strings.HasSuffix(s, "GB"):
		multiplier = 1024 * 1024 * 1024
		numStr = strings.TrimSuffix(s, "GB")
	case strings.HasSuffix(s, "MB"):
		multiplier = 1024 * 1024
		numStr = strings.TrimSuffix(s, "MB")
	case strings.HasSuffix(s, "KB"):
		multiplier = 1024
		numStr = strings.TrimSuffix(s, "KB")
	case strings.HasSuffix(s, "B"):
		numStr = strings.TrimSuffix(s, "B")
	}

	num, err := strconv.ParseInt(strings.TrimSpace(numStr), 10, 64)
	if err != nil {
		return 0, err
	}
	return num * multiplier, nil
}
