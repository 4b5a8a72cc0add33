// Package mcp serves extracted facts to MCP clients. The server extracts
// the project once at startup and re-extracts on demand or, when watching,
// after every debounced batch of source changes.
package mcp

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/csfacts/internal/config"
	"github.com/standardbeagle/csfacts/internal/extraction"
	"github.com/standardbeagle/csfacts/internal/logging"
	"github.com/standardbeagle/csfacts/internal/model"
	"github.com/standardbeagle/csfacts/internal/version"
)

// Server exposes the facts of one project as MCP tools.
type Server struct {
	cfg    *config.Config
	logger *slog.Logger
	disc   *extraction.Discoverer
	runner *extraction.Runner
	server *mcp.Server

	// refreshMu serializes extraction runs.
	refreshMu sync.Mutex

	mu        sync.RWMutex
	repo      *model.Repository
	stats     extraction.Stats
	lastErr   error
	refreshed time.Time
}

// NewServer creates a server for cfg.Project.Root. No extraction happens
// until Refresh or Run is called.
func NewServer(cfg *config.Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	s := &Server{
		cfg:    cfg,
		logger: logger,
		disc:   extraction.NewDiscoverer(cfg),
		runner: extraction.NewRunner(cfg, logger),
		repo:   model.NewRepository(),
	}
	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    "csfacts",
		Version: version.Version,
	}, nil)
	s.registerTools()
	return s
}

// Refresh re-extracts the whole project and swaps in the new repository.
// File failures do not prevent the swap; they are kept for the info tool.
func (s *Server) Refresh(ctx context.Context) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	if s.cfg.Performance.TimeoutSec > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(s.cfg.Performance.TimeoutSec)*time.Second)
		defer cancel()
	}

	files, err := s.disc.Discover(ctx)
	if err != nil {
		return err
	}
	repo, stats, err := s.runner.Run(ctx, files)
	if repo == nil {
		return err
	}

	s.mu.Lock()
	s.repo, s.stats, s.lastErr, s.refreshed = repo, stats, err, time.Now()
	s.mu.Unlock()
	return nil
}

func (s *Server) snapshot() (*model.Repository, extraction.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.repo, s.stats, s.lastErr
}

// Run extracts the project and serves over stdio until ctx is done or the
// client disconnects. With watch set, changes re-extract the project.
func (s *Server) Run(ctx context.Context, watch bool) error {
	return s.Serve(ctx, &mcp.StdioTransport{}, watch)
}

// Serve is Run over an arbitrary transport.
func (s *Server) Serve(ctx context.Context, transport mcp.Transport, watch bool) error {
	if err := s.Refresh(ctx); err != nil {
		return err
	}
	if !watch {
		return s.server.Run(ctx, transport)
	}

	w, err := extraction.NewWatcher(s.disc, time.Duration(s.cfg.Watch.DebounceMs)*time.Millisecond, s.logger)
	if err != nil {
		return err
	}
	g, gctx := errgroup.WithContext(ctx)
	watchCtx, stopWatch := context.WithCancel(gctx)
	g.Go(func() error {
		return w.Run(watchCtx, func(ctx context.Context, b extraction.Batch) {
			if err := s.Refresh(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.logger.Warn("re-extraction failed", "error", err, "changed", len(b))
			}
		})
	})
	g.Go(func() error {
		defer stopWatch()
		return s.server.Run(gctx, transport)
	})
	return g.Wait()
}
