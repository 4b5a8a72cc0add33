// Build artifact detection from MSBuild project files. Custom output and
// intermediate directories declared in .csproj, .vbproj and
// Directory.Build.props are excluded in addition to bin/ and obj/.
package config

import (
	"encoding/xml"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// projectFilePatterns are searched relative to the project root. Solutions
// rarely nest projects deeper than two directories.
var projectFilePatterns = []string{
	"Directory.Build.props",
	"*.{csproj,vbproj}",
	"*/*.{csproj,vbproj}",
	"*/*/*.{csproj,vbproj}",
}

// BuildArtifactDetector finds MSBuild output directories
type BuildArtifactDetector struct {
	projectRoot string
}

// NewBuildArtifactDetector creates a new build artifact detector
func NewBuildArtifactDetector(projectRoot string) *BuildArtifactDetector {
	return &BuildArtifactDetector{projectRoot: projectRoot}
}

type msbuildProject struct {
	PropertyGroups []struct {
		OutputPath                 string `xml:"OutputPath"`
		BaseOutputPath             string `xml:"BaseOutputPath"`
		IntermediateOutputPath     string `xml:"IntermediateOutputPath"`
		BaseIntermediateOutputPath string `xml:"BaseIntermediateOutputPath"`
	} `xml:"PropertyGroup"`
}

// DetectOutputDirectories returns exclusion globs such as "**/artifacts/**"
// for the output directories declared by project files under the root.
func (bad *BuildArtifactDetector) DetectOutputDirectories() []string {
	fsys := os.DirFS(bad.projectRoot)
	var patterns []string
	for _, pattern := range projectFilePatterns {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			continue
		}
		for _, m := range matches {
			patterns = append(patterns, bad.projectOutputs(m)...)
		}
	}
	return DeduplicatePatterns(patterns)
}

func (bad *BuildArtifactDetector) projectOutputs(rel string) []string {
	data, err := os.ReadFile(filepath.Join(bad.projectRoot, filepath.FromSlash(rel)))
	if err != nil {
		return nil
	}
	var proj msbuildProject
	if xml.Unmarshal(data, &proj) != nil {
		return nil
	}
	dir := path.Dir(rel)
	var out []string
	for _, pg := range proj.PropertyGroups {
		for _, p := range []string{pg.OutputPath, pg.BaseOutputPath, pg.IntermediateOutputPath, pg.BaseIntermediateOutputPath} {
			if pattern, ok := outputPattern(dir, p); ok {
				out = append(out, pattern)
			}
		}
	}
	return out
}

// outputPattern turns a declared output path into an exclusion glob. Paths
// using MSBuild properties or leaving the project root are ignored.
func outputPattern(projectDir, declared string) (string, bool) {
	p := strings.TrimSpace(strings.ReplaceAll(declared, `\`, "/"))
	if p == "" || strings.Contains(p, "$(") || path.IsAbs(p) {
		return "", false
	}
	p = path.Clean(path.Join(projectDir, p))
	if p == "." || strings.HasPrefix(p, "../") || p == ".." {
		return "", false
	}
	return "**/" + p + "/**", true
}

// EnrichExclusionsWithBuildArtifacts adds the output directories declared
// by project files to the exclusion list.
func (c *Config) EnrichExclusionsWithBuildArtifacts() {
	if c.Project.Root == "" {
		return
	}
	detected := NewBuildArtifactDetector(c.Project.Root).DetectOutputDirectories()
	if len(detected) > 0 {
		c.Exclude = DeduplicatePatterns(append(c.Exclude, detected...))
	}
}
