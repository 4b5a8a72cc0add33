package extraction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/csfacts/internal/config"
	csferrors "github.com/standardbeagle/csfacts/internal/errors"
	"github.com/standardbeagle/csfacts/internal/logging"
	"github.com/standardbeagle/csfacts/internal/model"
	"github.com/standardbeagle/csfacts/internal/security"
	"github.com/standardbeagle/csfacts/internal/semantic"
	"github.com/standardbeagle/csfacts/pkg/pathutil"
)

// Runner extracts many files in parallel into one repository.
type Runner struct {
	cfg    *config.Config
	logger *slog.Logger
}

// Stats summarizes one run.
type Stats struct {
	Files      int
	Extracted  int
	Duplicates int // identical content already extracted under another path
	TooLarge   int
	Failed     int
	Duration   time.Duration
}

// NewRunner creates a runner. A nil logger discards.
func NewRunner(cfg *config.Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Runner{cfg: cfg, logger: logger}
}

type sourceFile struct {
	path   string
	hash   uint64
	lang   *Language
	parsed ParsedFile
	cu     *model.CompilationUnit
}

// Run extracts files and returns the repository of the files that could be
// extracted. Files that fail are reported in a *errors.MultiError alongside
// the partial repository; the error is nil when every file succeeded. A
// cancelled context stops scheduling new files and returns ctx.Err().
func (r *Runner) Run(ctx context.Context, files []string) (*model.Repository, Stats, error) {
	start := time.Now()
	stats := Stats{Files: len(files)}
	workers := r.cfg.Performance.Workers
	if workers <= 0 {
		workers = 1
	}

	sources := make([]*sourceFile, len(files))
	errs := make([]error, len(files))

	// Read and parse.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sources[i], errs[i] = r.load(path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		closeAll(sources)
		return nil, stats, err
	}

	// Files are deduplicated in input order so the first path wins.
	seen := make(map[uint64]string)
	for i, src := range sources {
		if src == nil {
			if errors.Is(errs[i], errTooLarge) {
				stats.TooLarge++
				errs[i] = nil
			}
			continue
		}
		if r.cfg.Extraction.Dedupe {
			if first, ok := seen[src.hash]; ok {
				r.logger.Info("skipping duplicate file", "file", src.path, "same_as", first)
				stats.Duplicates++
				src.parsed.Close()
				sources[i] = nil
				continue
			}
			seen[src.hash] = src.path
		}
	}

	comps, err := r.compilations(sources)
	if err != nil {
		closeAll(sources)
		return nil, stats, err
	}

	// Extract.
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, src := range sources {
		if src == nil {
			continue
		}
		g.Go(func() error {
			defer src.parsed.Close()
			if err := gctx.Err(); err != nil {
				return err
			}
			m := comps[src.lang].Model(src.path)
			cu, err := src.parsed.Extract(logging.FromSlog(r.logger, "file", src.path), m)
			if err != nil {
				errs[i] = err
				return nil
			}
			cu.Hash = src.hash
			src.cu = cu
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, stats, err
	}

	repo := model.NewRepository()
	for _, src := range sources {
		if src == nil || src.cu == nil {
			continue
		}
		for _, name := range repo.Add(src.cu) {
			r.logger.Warn("class declared in more than one file", "class", name, "file", src.path)
		}
		stats.Extracted++
	}

	for _, err := range errs {
		if err != nil {
			stats.Failed++
			r.logger.Warn("file not extracted", "error", err)
		}
	}
	stats.Duration = time.Since(start)
	r.logger.Info("extraction finished",
		"files", stats.Files, "extracted", stats.Extracted, "failed", stats.Failed,
		"duplicates", stats.Duplicates, "duration", stats.Duration)

	if merr := csferrors.NewMultiError(errs); merr != nil {
		return repo, stats, merr
	}
	return repo, stats, nil
}

var errTooLarge = errors.New("file exceeds the configured size limit")

// load reads and parses one file. The path recorded in the facts is made
// relative to the project root when configured. Parse failures are
// returned as *errors.ParseError; read failures as *errors.FileError.
func (r *Runner) load(path string) (*sourceFile, error) {
	lang := LanguageFor(path)
	if lang == nil {
		return nil, csferrors.NewFileError("extract", path, fmt.Errorf("no front end for %s", path))
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, csferrors.NewFileError("stat", path, err)
	}
	if limit := r.cfg.Extraction.MaxFileSize; limit > 0 && info.Size() > limit {
		r.logger.Info("skipping oversized file", "file", path, "size", info.Size(), "limit", limit)
		return nil, errTooLarge
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, csferrors.NewFileError("read", path, err)
	}
	recorded := path
	if r.cfg.Output.RelativePaths {
		recorded = pathutil.ToRelative(path, r.cfg.Project.Root)
	}
	content, err := security.DecodeSource(data)
	if err != nil {
		return nil, csferrors.NewFileError("decode", path, err)
	}
	parsed, err := lang.Parse(recorded, content)
	if err != nil {
		return nil, err
	}
	return &sourceFile{
		path:   recorded,
		hash:   xxhash.Sum64(data),
		lang:   lang,
		parsed: parsed,
	}, nil
}

// compilations builds one compilation per language holding the
// declarations of every file of that language, added in input order.
func (r *Runner) compilations(sources []*sourceFile) (map[*Language]*semantic.Compilation, error) {
	comps := make(map[*Language]*semantic.Compilation)
	for _, src := range sources {
		if src == nil {
			continue
		}
		comp, ok := comps[src.lang]
		if !ok {
			var err error
			if comp, err = semantic.NewCompilation(src.lang.Binding); err != nil {
				return nil, csferrors.NewExtractionError("compilation", src.path, err)
			}
			comps[src.lang] = comp
		}
		comp.Add(src.parsed.Declarations())
	}
	return comps, nil
}

func closeAll(sources []*sourceFile) {
	for _, src := range sources {
		if src != nil && src.parsed != nil {
			src.parsed.Close()
		}
	}
}
