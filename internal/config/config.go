package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// FileName is the configuration file looked up in the home and project
// directories.
const FileName = ".csfacts.kdl"

// Language names accepted in the extraction section.
const (
	LanguageCSharp      = "csharp"
	LanguageVisualBasic = "visualbasic"
)

const (
	DefaultMaxFileSize = 4 * 1024 * 1024
	DefaultDebounceMs  = 300
	DefaultTimeoutSec  = 300
)

type Config struct {
	Version     int
	Project     Project
	Extraction  Extraction
	Performance Performance
	Output      Output
	Logging     Logging
	Watch       Watch
	Include     []string
	Exclude     []string
}

type Project struct {
	Root string
	Name string
}

type Extraction struct {
	Languages        []string // csharp, visualbasic
	MaxFileSize      int64
	Dedupe           bool // skip files whose content was already extracted
	RespectGitignore bool
	FollowSymlinks   bool
}

type Performance struct {
	Workers    int // 0 = auto-detect (NumCPU-1)
	TimeoutSec int
}

type Output struct {
	Path          string // empty writes to stdout
	Indent        bool
	RelativePaths bool // record file paths relative to the project root
}

type Logging struct {
	Level  string
	Format string // text or json
}

type Watch struct {
	DebounceMs int
}

// Enabled reports whether lang is one of the configured languages.
func (e Extraction) Enabled(lang string) bool {
	if len(e.Languages) == 0 {
		return true
	}
	for _, l := range e.Languages {
		if l == lang {
			return true
		}
	}
	return false
}

func Load(path string) (*Config, error) {
	return LoadWithRoot(path, "")
}

// LoadWithRoot reads ~/.csfacts.kdl and the project file under rootDir and
// merges them. The project file wins; exclusions from both are kept.
func LoadWithRoot(path string, rootDir string) (*Config, error) {
	searchDir := "."
	if rootDir != "" {
		searchDir = rootDir
	} else if path != "" {
		searchDir = path
	}

	homeDir, err := os.UserHomeDir()
	var baseConfig *Config
	if err == nil && homeDir != searchDir {
		if globalCfg, err := LoadKDL(homeDir); err == nil && globalCfg != nil {
			baseConfig = globalCfg
		}
	}

	projectConfig, err := LoadKDL(searchDir)
	if err != nil {
		return nil, err
	}

	switch {
	case baseConfig != nil && projectConfig != nil:
		return mergeConfigs(baseConfig, projectConfig), nil
	case projectConfig != nil:
		return projectConfig, nil
	case baseConfig != nil:
		baseConfig.Project.Root = absRoot(searchDir)
		baseConfig.EnrichExclusionsWithBuildArtifacts()
		return baseConfig, nil
	}

	cfg := Default(absRoot(searchDir))
	cfg.EnrichExclusionsWithBuildArtifacts()
	return cfg, nil
}

// Default returns the configuration used when no file is present.
func Default(root string) *Config {
	return &Config{
		Version: 1,
		Project: Project{Root: root},
		Extraction: Extraction{
			Languages:        []string{LanguageCSharp, LanguageVisualBasic},
			MaxFileSize:      DefaultMaxFileSize,
			Dedupe:           true,
			RespectGitignore: true,
		},
		Performance: Performance{
			Workers:    runtime.NumCPU(),
			TimeoutSec: DefaultTimeoutSec,
		},
		Output:  Output{Indent: true, RelativePaths: true},
		Logging: Logging{Level: "warn", Format: "text"},
		Watch:   Watch{DebounceMs: DefaultDebounceMs},
		Include: []string{"**/*.cs", "**/*.vb"},
		Exclude: []string{
			"**/.git/**",
			"**/.*/**",
			"**/bin/**",
			"**/obj/**",
			"**/packages/**",
			"**/node_modules/**",
			"**/*.g.cs",
			"**/*.g.vb",
			"**/*.Designer.cs",
			"**/*.Designer.vb",
			"**/AssemblyInfo.cs",
			"**/AssemblyInfo.vb",
		},
	}
}

func absRoot(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}

// mergeConfigs merges a base config with a project config.
// Project config takes precedence, but base exclusions are preserved.
func mergeConfigs(base, project *Config) *Config {
	merged := *project

	if len(base.Exclude) > 0 {
		merged.Exclude = DeduplicatePatterns(append(append([]string{}, base.Exclude...), project.Exclude...))
	}

	if len(project.Include) == 0 && len(base.Include) > 0 {
		merged.Include = base.Include
	}
	if len(project.Extraction.Languages) == 0 {
		merged.Extraction.Languages = base.Extraction.Languages
	}

	return &merged
}

// DeduplicatePatterns removes duplicate patterns, keeping first occurrences.
func DeduplicatePatterns(patterns []string) []string {
	seen := make(map[string]bool, len(patterns))
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if !seen[pattern] {
			seen[pattern] = true
			result = append(result, pattern)
		}
	}
	return result
}
