package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/csfacts/internal/config"
	"github.com/standardbeagle/csfacts/internal/extraction"
	"github.com/standardbeagle/csfacts/internal/mcp"
	"github.com/standardbeagle/csfacts/internal/metrics"
	"github.com/standardbeagle/csfacts/internal/report"
)

func extractCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	logger := newLogger(c, cfg)

	ctx := c.Context
	if cfg.Performance.TimeoutSec > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.Performance.TimeoutSec)*time.Second)
		defer cancel()
	}

	var files []string
	if c.Args().Present() {
		for _, arg := range c.Args().Slice() {
			abs, err := filepath.Abs(arg)
			if err != nil {
				return fmt.Errorf("failed to resolve %q: %w", arg, err)
			}
			files = append(files, abs)
		}
	} else {
		files, err = extraction.NewDiscoverer(cfg).Discover(ctx)
		if err != nil {
			return fmt.Errorf("failed to discover source files: %w", err)
		}
	}

	repo, stats, runErr := extraction.NewRunner(cfg, logger).Run(ctx, files)
	if repo == nil {
		return runErr
	}
	doc := report.New(cfg.Project.Root, repo, stats, runErr)
	if err := writeDocument(c, cfg, doc); err != nil {
		return err
	}
	if stats.Extracted == 0 && stats.Failed > 0 {
		return fmt.Errorf("no file could be extracted: %w", runErr)
	}
	return nil
}

// writeDocument writes doc to --output, the configured output path or the
// app writer, in that order.
func writeDocument(c *cli.Context, cfg *config.Config, doc *report.Document) error {
	indent := cfg.Output.Indent && !c.Bool("compact")
	path := c.String("output")
	if path == "" {
		path = cfg.Output.Path
	}
	if path == "" {
		return report.Write(c.App.Writer, doc, indent)
	}

	// Write to a temp file and rename so watchers never see a partial file.
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".csfacts-*.json")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := report.Write(tmp, doc, indent); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

func watchCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	logger := newLogger(c, cfg)
	disc := extraction.NewDiscoverer(cfg)
	runner := extraction.NewRunner(cfg, logger)

	extractAll := func(ctx context.Context) {
		files, err := disc.Discover(ctx)
		if err != nil {
			logger.Error("failed to discover source files", "error", err)
			return
		}
		repo, stats, runErr := runner.Run(ctx, files)
		if repo == nil {
			if !errors.Is(runErr, context.Canceled) {
				logger.Error("extraction failed", "error", runErr)
			}
			return
		}
		if err := writeDocument(c, cfg, report.New(cfg.Project.Root, repo, stats, runErr)); err != nil {
			logger.Error("failed to write output", "error", err)
		}
	}

	extractAll(c.Context)
	w, err := extraction.NewWatcher(disc, time.Duration(cfg.Watch.DebounceMs)*time.Millisecond, logger)
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	return w.Run(c.Context, func(ctx context.Context, b extraction.Batch) {
		logger.Info("source files changed", "files", strings.Join(b.Paths(), ", "))
		extractAll(ctx)
	})
}

func statsCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	logger := newLogger(c, cfg)

	files, err := extraction.NewDiscoverer(cfg).Discover(c.Context)
	if err != nil {
		return fmt.Errorf("failed to discover source files: %w", err)
	}
	repo, _, runErr := extraction.NewRunner(cfg, logger).Run(c.Context, files)
	if repo == nil {
		return runErr
	}

	stats := metrics.Calculate(repo)
	if c.Bool("json") {
		return report.Write(c.App.Writer, stats, cfg.Output.Indent)
	}
	_, err = io.WriteString(c.App.Writer, stats.FormatAsText())
	return err
}

func mcpCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	server := mcp.NewServer(cfg, newLogger(c, cfg))
	if err := server.Run(c.Context, c.Bool("watch")); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}

func schemaCommand(c *cli.Context) error {
	return report.Write(c.App.Writer, report.Schema(), true)
}

func configInitCommand(c *cli.Context) error {
	dir := c.String("config")
	if dir == "" {
		dir = c.String("root")
	}
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, config.FileName)

	if !c.Bool("force") {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("configuration file %s already exists (use --force to overwrite)", path)
		}
	}

	cfg := config.Default("")
	cfg.Performance.Workers = 0
	if err := os.WriteFile(path, []byte(configToKDL(cfg)), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Configuration file created: %s\n", path)
	return nil
}

func configShowCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	switch c.String("format") {
	case "kdl":
		_, err = io.WriteString(c.App.Writer, configToKDL(cfg))
		return err
	case "table":
		return displayConfigTable(c.App.Writer, cfg)
	default:
		return fmt.Errorf("unsupported format: %s", c.String("format"))
	}
}

func configValidateCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		fmt.Fprintf(c.App.Writer, "Configuration is invalid: %v\n", err)
		return err
	}

	var warnings []string
	if len(cfg.Include) == 0 {
		warnings = append(warnings, "no include patterns: every .cs and .vb file is extracted")
	}
	if cfg.Performance.TimeoutSec == 0 {
		warnings = append(warnings, "timeout_sec is 0: extraction runs are never cancelled")
	}

	fmt.Fprintf(c.App.Writer, "Configuration is valid\n")
	fmt.Fprintf(c.App.Writer, "Root: %s\n", cfg.Project.Root)
	for _, w := range warnings {
		fmt.Fprintf(c.App.Writer, "  warning: %s\n", w)
	}
	return nil
}

func configToKDL(cfg *config.Config) string {
	var b strings.Builder
	b.WriteString("// csfacts configuration\n\n")
	b.WriteString("version 1\n\n")
	fmt.Fprintf(&b, "project {\n    name %q\n", cfg.Project.Name)
	if cfg.Project.Root != "" {
		fmt.Fprintf(&b, "    root %q\n", cfg.Project.Root)
	}
	b.WriteString("}\n\n")

	b.WriteString("extraction {\n")
	fmt.Fprintf(&b, "    languages %s\n", quoteAll(cfg.Extraction.Languages))
	fmt.Fprintf(&b, "    max_file_size %d\n", cfg.Extraction.MaxFileSize)
	fmt.Fprintf(&b, "    dedupe %t\n", cfg.Extraction.Dedupe)
	fmt.Fprintf(&b, "    respect_gitignore %t\n", cfg.Extraction.RespectGitignore)
	fmt.Fprintf(&b, "    follow_symlinks %t\n", cfg.Extraction.FollowSymlinks)
	b.WriteString("}\n\n")

	fmt.Fprintf(&b, "performance {\n    workers %d\n    timeout_sec %d\n}\n\n", cfg.Performance.Workers, cfg.Performance.TimeoutSec)
	fmt.Fprintf(&b, "output {\n    path %q\n    indent %t\n    relative_paths %t\n}\n\n", cfg.Output.Path, cfg.Output.Indent, cfg.Output.RelativePaths)
	fmt.Fprintf(&b, "logging {\n    level %q\n    format %q\n}\n\n", cfg.Logging.Level, cfg.Logging.Format)
	fmt.Fprintf(&b, "watch {\n    debounce_ms %d\n}\n\n", cfg.Watch.DebounceMs)

	b.WriteString(formatKDLStringArray("include", cfg.Include))
	b.WriteString("\n\n")
	b.WriteString(formatKDLStringArray("exclude", cfg.Exclude))
	b.WriteString("\n")
	return b.String()
}

func quoteAll(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = fmt.Sprintf("%q", item)
	}
	return strings.Join(quoted, " ")
}

func formatKDLStringArray(section string, items []string) string {
	if len(items) == 0 {
		return section + " {\n    // No items\n}"
	}
	var b strings.Builder
	b.WriteString(section + " {\n")
	for _, item := range items {
		fmt.Fprintf(&b, "    %q\n", item)
	}
	b.WriteString("}")
	return b.String()
}

func displayConfigTable(w io.Writer, cfg *config.Config) error {
	fmt.Fprintf(w, "csfacts configuration\n")
	fmt.Fprintf(w, "=====================\n\n")

	fmt.Fprintf(w, "Project:\n")
	fmt.Fprintf(w, "  Name:               %s\n", cfg.Project.Name)
	fmt.Fprintf(w, "  Root:               %s\n\n", cfg.Project.Root)

	fmt.Fprintf(w, "Extraction:\n")
	fmt.Fprintf(w, "  Languages:          %s\n", strings.Join(cfg.Extraction.Languages, ", "))
	fmt.Fprintf(w, "  Max file size:      %.1f MB\n", float64(cfg.Extraction.MaxFileSize)/(1024*1024))
	fmt.Fprintf(w, "  Dedupe:             %t\n", cfg.Extraction.Dedupe)
	fmt.Fprintf(w, "  Respect .gitignore: %t\n", cfg.Extraction.RespectGitignore)
	fmt.Fprintf(w, "  Follow symlinks:    %t\n\n", cfg.Extraction.FollowSymlinks)

	fmt.Fprintf(w, "Performance:\n")
	fmt.Fprintf(w, "  Workers:            %d\n", cfg.Performance.Workers)
	fmt.Fprintf(w, "  Timeout:            %d s\n\n", cfg.Performance.TimeoutSec)

	fmt.Fprintf(w, "Output:\n")
	fmt.Fprintf(w, "  Path:               %s\n", cfg.Output.Path)
	fmt.Fprintf(w, "  Indent:             %t\n", cfg.Output.Indent)
	fmt.Fprintf(w, "  Relative paths:     %t\n\n", cfg.Output.RelativePaths)

	fmt.Fprintf(w, "Logging:              %s (%s)\n", cfg.Logging.Level, cfg.Logging.Format)
	fmt.Fprintf(w, "Watch debounce:       %d ms\n\n", cfg.Watch.DebounceMs)

	fmt.Fprintf(w, "Include Patterns (%d):\n", len(cfg.Include))
	for _, pattern := range cfg.Include {
		fmt.Fprintf(w, "  %s\n", pattern)
	}
	fmt.Fprintf(w, "\nExclude Patterns (%d):\n", len(cfg.Exclude))
	for _, pattern := range cfg.Exclude {
		fmt.Fprintf(w, "  %s\n", pattern)
	}
	return nil
}
