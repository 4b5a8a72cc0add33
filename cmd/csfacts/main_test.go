package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/csfacts/internal/config"
	"github.com/standardbeagle/csfacts/internal/report"
)

func setupTestProject(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	root := t.TempDir()
	files := map[string]string{
		"src/Shapes.cs": `using System;
namespace Geometry
{
    public interface IShape { double Area(); }

    public class Circle : IShape
    {
        private readonly double radius;
        public Circle(double radius) { this.radius = radius; }
        public double Area() => Math.PI * radius * radius;
    }
}`,
		"src/Helpers.vb": `Imports System.Text

Public Module Helpers
    Public Function Join(parts() As String) As String
        Dim sb As New StringBuilder()
        For Each p In parts
            sb.Append(p)
        Next
        Return sb.ToString()
    End Function
End Module
`,
		"obj/Generated.cs": "class Generated { }",
	}
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := newApp()
	app.Writer = &stdout
	app.ErrWriter = &stderr
	err := app.RunContext(context.Background(), append([]string{"csfacts"}, args...))
	return stdout.String(), stderr.String(), err
}

// documentHead decodes the parts of the output that do not hold entities.
type documentHead struct {
	Root    string         `json:"root"`
	Summary report.Summary `json:"summary"`
	Errors  []string       `json:"errors"`
}

func decodeDocument(t *testing.T, data []byte) documentHead {
	t.Helper()
	var doc documentHead
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func TestExtractProject(t *testing.T) {
	root := setupTestProject(t)

	stdout, _, err := runCLI(t, "--root", root, "extract")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
	assert.Equal(t, "csfacts", doc["tool"])
	assert.Equal(t, root, doc["root"])

	units := doc["compilation_units"].([]any)
	require.Len(t, units, 2)
	assert.Equal(t, "Visual Basic", units[0].(map[string]any)["Language"])
	assert.Equal(t, "C#", units[1].(map[string]any)["Language"])

	summary := decodeDocument(t, []byte(stdout)).Summary
	assert.Equal(t, 2, summary.Extracted)
	assert.Equal(t, 3, summary.Classes)
}

func TestExtractIsTheDefaultCommand(t *testing.T) {
	root := setupTestProject(t)
	stdout, _, err := runCLI(t, "--root", root, "--language", "visualbasic")
	require.NoError(t, err)
	assert.Equal(t, 1, decodeDocument(t, []byte(stdout)).Summary.Extracted)
}

func TestExtractExplicitFilesToOutput(t *testing.T) {
	root := setupTestProject(t)
	out := filepath.Join(t.TempDir(), "facts.json")

	stdout, _, err := runCLI(t, "--root", root, "extract", "--compact", "-o", out,
		filepath.Join(root, "src", "Shapes.cs"))
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, 1, bytes.Count(data, []byte("\n")))
	doc := decodeDocument(t, data)
	assert.Equal(t, 1, doc.Summary.Files)
	assert.Equal(t, 2, doc.Summary.Classes)
}

func TestExtractReportsFailedFiles(t *testing.T) {
	root := setupTestProject(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "Blank.cs"), []byte("\n\n"), 0o644))

	stdout, _, err := runCLI(t, "--root", root, "extract")
	require.NoError(t, err)
	doc := decodeDocument(t, []byte(stdout))
	assert.Equal(t, 1, doc.Summary.Failed)
	require.Len(t, doc.Errors, 1)
	assert.Contains(t, doc.Errors[0], "Blank.cs")
}

func TestExtractFailsWhenNothingExtracts(t *testing.T) {
	root := t.TempDir()
	t.Setenv("HOME", t.TempDir())
	require.NoError(t, os.WriteFile(filepath.Join(root, "Blank.cs"), []byte(" "), 0o644))

	_, _, err := runCLI(t, "--root", root, "extract")
	assert.Error(t, err)
}

func TestInvalidLogLevel(t *testing.T) {
	root := setupTestProject(t)
	_, _, err := runCLI(t, "--root", root, "--log-level", "loud", "extract")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging")
}

func TestDebugLogsGoToErrWriter(t *testing.T) {
	root := setupTestProject(t)
	stdout, stderr, err := runCLI(t, "--root", root, "--log-level", "debug", "--log-format", "json", "extract")
	require.NoError(t, err)
	assert.Contains(t, stderr, `"msg":"extraction finished"`)
	assert.NotContains(t, stdout, "extraction finished")
}

func TestStatsCommand(t *testing.T) {
	root := setupTestProject(t)

	stdout, _, err := runCLI(t, "--root", root, "stats")
	require.NoError(t, err)
	assert.Contains(t, stdout, "CODEBASE REPORT")
	assert.Contains(t, stdout, "Total Files:        2")
	assert.Contains(t, stdout, "Total Classes:      3")

	stdout, _, err = runCLI(t, "--root", root, "stats", "--json")
	require.NoError(t, err)
	var stats struct {
		TotalFiles int            `json:"total_files"`
		Kinds      map[string]int `json:"kinds"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &stats))
	assert.Equal(t, 2, stats.TotalFiles)
	assert.Equal(t, 1, stats.Kinds["module"])
	assert.Equal(t, 1, stats.Kinds["interface"])
}

func TestSchemaCommand(t *testing.T) {
	stdout, _, err := runCLI(t, "schema")
	require.NoError(t, err)
	var schema map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &schema))
	assert.Equal(t, "object", schema["type"])
	assert.Contains(t, schema["properties"], "compilation_units")
}

func TestConfigInitShowValidate(t *testing.T) {
	root := setupTestProject(t)

	stdout, _, err := runCLI(t, "--root", root, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, stdout, config.FileName)

	_, _, err = runCLI(t, "--root", root, "config", "init")
	assert.Error(t, err)
	_, _, err = runCLI(t, "--root", root, "config", "init", "--force")
	require.NoError(t, err)

	cfg, err := config.LoadKDL(root)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, root, cfg.Project.Root)
	assert.Equal(t, config.Default("").Include, cfg.Include)
	assert.True(t, cfg.Extraction.Dedupe)

	stdout, _, err = runCLI(t, "--root", root, "config", "show", "--format", "kdl")
	require.NoError(t, err)
	assert.Contains(t, stdout, "debounce_ms 300")

	stdout, _, err = runCLI(t, "--root", root, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Languages:          csharp, visualbasic")

	stdout, _, err = runCLI(t, "--root", root, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Configuration is valid")
}

func TestConfigToKDLRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default(dir)
	cfg.Extraction.Languages = []string{config.LanguageCSharp}
	cfg.Output.Path = "facts.json"
	cfg.Watch.DebounceMs = 750
	cfg.Exclude = []string{"**/Migrations/**"}
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte(configToKDL(cfg)), 0o644))

	loaded, err := config.LoadKDL(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{config.LanguageCSharp}, loaded.Extraction.Languages)
	assert.Equal(t, "facts.json", loaded.Output.Path)
	assert.Equal(t, 750, loaded.Watch.DebounceMs)
	assert.Contains(t, loaded.Exclude, "**/Migrations/**")
}

func TestWatchWritesOutputUntilCancelled(t *testing.T) {
	root := setupTestProject(t)
	out := filepath.Join(t.TempDir(), "facts.json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		app := newApp()
		app.Writer = &bytes.Buffer{}
		app.ErrWriter = &bytes.Buffer{}
		done <- app.RunContext(ctx, []string{"csfacts", "--root", root, "watch", "-o", out})
	}()

	require.Eventually(t, func() bool {
		_, err := os.Stat(out)
		return err == nil
	}, 10*time.Second, 20*time.Millisecond)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, 2, decodeDocument(t, data).Summary.Extracted)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}
