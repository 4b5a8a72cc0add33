package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/csfacts/internal/config"
	"github.com/standardbeagle/csfacts/internal/logging"
	"github.com/standardbeagle/csfacts/internal/version"
)

// loadConfigWithOverrides loads the configuration and applies global flag
// overrides, then validates the result.
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	root := c.String("root")
	if root != "" {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve root path %q: %w", root, err)
		}
		root = abs
	}

	configDir := c.String("config")
	if configDir == "" {
		configDir = root
	}
	cfg, err := config.LoadWithRoot("", configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if root != "" {
		cfg.Project.Root = root
	}
	if include := c.StringSlice("include"); len(include) > 0 {
		cfg.Include = include
	}
	if exclude := c.StringSlice("exclude"); len(exclude) > 0 {
		cfg.Exclude = config.DeduplicatePatterns(append(cfg.Exclude, exclude...))
	}
	if langs := c.StringSlice("language"); len(langs) > 0 {
		cfg.Extraction.Languages = langs
	}
	if c.IsSet("workers") {
		cfg.Performance.Workers = c.Int("workers")
	}
	if c.IsSet("log-level") {
		cfg.Logging.Level = c.String("log-level")
	}
	if c.IsSet("log-format") {
		cfg.Logging.Format = c.String("log-format")
	}

	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newApp() *cli.App {
	return &cli.App{
		Name:                   "csfacts",
		Usage:                  "Extract structural facts from C# and Visual Basic sources",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Project root directory (overrides config)",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Directory holding " + config.FileName + " (default: project root)",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "Include files matching glob patterns (e.g., --include 'src/**/*.cs')",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Exclude files matching glob patterns (e.g., --exclude '**/Migrations/**')",
			},
			&cli.StringSliceFlag{
				Name:  "language",
				Usage: "Languages to extract: csharp, visualbasic",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"j"},
				Usage:   "Parallel workers (0 = CPU count - 1)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "text or json",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "extract",
				Aliases:   []string{"x"},
				Usage:     "Extract facts from the project, or only from the given files",
				ArgsUsage: "[file...]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write JSON to this file instead of stdout",
					},
					&cli.BoolFlag{
						Name:  "compact",
						Usage: "Do not indent the JSON output",
					},
				},
				Action: extractCommand,
			},
			{
				Name:  "watch",
				Usage: "Extract the project and re-extract whenever a source file changes",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write JSON to this file instead of stdout",
					},
					&cli.BoolFlag{
						Name:  "compact",
						Usage: "Do not indent the JSON output",
					},
				},
				Action: watchCommand,
			},
			{
				Name:  "mcp",
				Usage: "Serve extracted facts over MCP on stdio",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "watch",
						Usage: "Re-extract when source files change",
					},
				},
				Action: mcpCommand,
			},
			{
				Name:  "stats",
				Usage: "Extract the project and print codebase statistics",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the statistics as JSON",
					},
				},
				Action: statsCommand,
			},
			{
				Name:   "schema",
				Usage:  "Print the JSON schema of the extraction output",
				Action: schemaCommand,
			},
			{
				Name:  "config",
				Usage: "Configuration management",
				Subcommands: []*cli.Command{
					{
						Name:  "init",
						Usage: "Write a " + config.FileName + " with the default settings",
						Flags: []cli.Flag{
							&cli.BoolFlag{
								Name:  "force",
								Usage: "Overwrite an existing configuration file",
							},
						},
						Action: configInitCommand,
					},
					{
						Name:  "show",
						Usage: "Show the effective configuration",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:    "format",
								Aliases: []string{"f"},
								Usage:   "Output format: kdl, table",
								Value:   "table",
							},
						},
						Action: configShowCommand,
					},
					{
						Name:   "validate",
						Usage:  "Validate the configuration",
						Action: configValidateCommand,
					},
				},
			},
		},
		Action: extractCommand,
	}
}

// newLogger writes to the app's error writer so stdout stays JSON only.
func newLogger(c *cli.Context, cfg *config.Config) *slog.Logger {
	return logging.New(c.App.ErrWriter, logging.Format(cfg.Logging.Format), logging.LevelFromString(cfg.Logging.Level))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := newApp()
	app.ErrWriter = os.Stderr
	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
