package mcp

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/csfacts/internal/metrics"
	"github.com/standardbeagle/csfacts/internal/model"
	"github.com/standardbeagle/csfacts/internal/report"
	"github.com/standardbeagle/csfacts/internal/version"
	"github.com/standardbeagle/csfacts/pkg/pathutil"
)

const listDefaultMax = 200

const suggestionMax = 5

type ListClassesParams struct {
	Prefix string `json:"prefix"`
	Query  string `json:"query"`
	Max    int    `json:"max"`
}

type GetClassParams struct {
	Name string `json:"name"`
}

type GetFileParams struct {
	Path string `json:"path"`
}

func (s *Server) registerTools() {
	s.server.AddTool(&mcp.Tool{
		Name:        "info",
		Description: "Server version and the state of the last extraction run.",
		InputSchema: &jsonschema.Schema{Type: "object"},
	}, s.handleInfo)

	s.server.AddTool(&mcp.Tool{
		Name:        "extract",
		Description: "Re-extract every C# and Visual Basic file of the project and report the run summary.",
		InputSchema: &jsonschema.Schema{Type: "object"},
	}, s.handleExtract)

	s.server.AddTool(&mcp.Tool{
		Name:        "list_classes",
		Description: "List extracted classes, interfaces, structs, enums, delegates and modules.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"prefix": {
					Type:        "string",
					Description: "Only names starting with this prefix, e.g. 'MyApp.Billing.'",
				},
				"query": {
					Type:        "string",
					Description: "Words the class name must contain, matched by stem, e.g. 'invoice services'",
				},
				"max": {
					Type:        "integer",
					Description: "Maximum entries (default 200)",
				},
			},
		},
	}, s.handleListClasses)

	s.server.AddTool(&mcp.Tool{
		Name:        "get_class",
		Description: "Full facts of one class-like entity: members, calls, accessed fields, attributes and metrics.",
		InputSchema: &jsonschema.Schema{
			Type:     "object",
			Required: []string{"name"},
			Properties: map[string]*jsonschema.Schema{
				"name": {
					Type:        "string",
					Description: "Qualified name, e.g. 'MyApp.Billing.Invoice'",
				},
			},
		},
	}, s.handleGetClass)

	s.server.AddTool(&mcp.Tool{
		Name:        "get_file",
		Description: "The compilation unit extracted from one source file.",
		InputSchema: &jsonschema.Schema{
			Type:     "object",
			Required: []string{"path"},
			Properties: map[string]*jsonschema.Schema{
				"path": {
					Type:        "string",
					Description: "File path, absolute or relative to the project root",
				},
			},
		},
	}, s.handleGetFile)

	s.server.AddTool(&mcp.Tool{
		Name:        "stats",
		Description: "Codebase statistics: language and kind distribution, lines of code, complexity, call graph and thrown exceptions.",
		InputSchema: &jsonschema.Schema{Type: "object"},
	}, s.handleStats)
}

func (s *Server) handleInfo(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	repo, stats, lastErr := s.snapshot()
	s.mu.RLock()
	refreshed := s.refreshed
	s.mu.RUnlock()

	doc := report.New(s.disc.Root(), nil, stats, lastErr)
	info := map[string]any{
		"server_version":    version.FullInfo(),
		"build_id":          version.BuildID(),
		"go_version":        runtime.Version(),
		"root":              doc.Root,
		"compilation_units": repo.Len(),
		"summary":           doc.Summary,
	}
	if !refreshed.IsZero() {
		info["extracted_at"] = refreshed.Format(time.RFC3339)
	}
	if len(doc.Errors) > 0 {
		info["errors"] = doc.Errors
	}
	return createJSONResponse(info)
}

func (s *Server) handleExtract(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.Refresh(ctx); err != nil {
		return createErrorResponse("extract", err, "")
	}
	repo, stats, lastErr := s.snapshot()
	doc := report.New(s.disc.Root(), repo, stats, lastErr)
	return createJSONResponse(map[string]any{
		"success": true,
		"summary": doc.Summary,
		"errors":  doc.Errors,
	})
}

func (s *Server) handleListClasses(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params ListClassesParams
	if err := decodeParams(req.Params.Arguments, &params); err != nil {
		return createErrorResponse("list_classes", fmt.Errorf("invalid parameters: %w", err), `Use: {"prefix": "MyApp."}`)
	}
	if params.Max <= 0 {
		params.Max = listDefaultMax
	}

	repo, _, _ := s.snapshot()
	var entries []report.ClassEntry
	if params.Query != "" {
		for _, e := range report.SearchClasses(repo, params.Query) {
			if strings.HasPrefix(e.Name, params.Prefix) {
				entries = append(entries, e)
			}
		}
	} else {
		entries = report.ListClasses(repo, params.Prefix)
	}
	total := len(entries)
	if total > params.Max {
		entries = entries[:params.Max]
	}
	return createJSONResponse(map[string]any{
		"total":     total,
		"truncated": total > len(entries),
		"classes":   entries,
	})
}

func (s *Server) handleGetClass(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params GetClassParams
	if err := decodeParams(req.Params.Arguments, &params); err != nil {
		return createErrorResponse("get_class", fmt.Errorf("invalid parameters: %w", err), "")
	}
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return createErrorResponse("get_class", errors.New("name is required"), `Use: {"name": "MyApp.Billing.Invoice"}`)
	}

	repo, _, _ := s.snapshot()
	ct, cu := report.FindClass(repo, name)
	if ct == nil {
		help := "Use list_classes to browse extracted names"
		if similar := report.SuggestClasses(repo, name, suggestionMax); len(similar) > 0 {
			help = "Did you mean: " + strings.Join(similar, ", ")
		}
		return createErrorResponse("get_class", fmt.Errorf("no class named %s", name), help)
	}
	return createJSONResponse(map[string]any{
		"file":     cu.FilePath,
		"language": cu.Language,
		"class":    ct,
	})
}

func (s *Server) handleStats(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	repo, _, _ := s.snapshot()
	return createJSONResponse(metrics.Calculate(repo))
}

func (s *Server) handleGetFile(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params GetFileParams
	if err := decodeParams(req.Params.Arguments, &params); err != nil {
		return createErrorResponse("get_file", fmt.Errorf("invalid parameters: %w", err), "")
	}
	if params.Path == "" {
		return createErrorResponse("get_file", errors.New("path is required"), `Use: {"path": "src/Billing/Invoice.cs"}`)
	}
	root := s.disc.Root()
	path := pathutil.ToAbsolute(params.Path, root)

	repo, _, _ := s.snapshot()
	if cu := findUnit(repo, path, root); cu != nil {
		return createJSONResponse(cu)
	}
	return createErrorResponse("get_file", fmt.Errorf("file %s was not extracted", params.Path), "")
}

func findUnit(repo *model.Repository, path, root string) *model.CompilationUnit {
	for _, cu := range repo.CompilationUnits {
		if pathutil.ToAbsolute(cu.FilePath, root) == path {
			return cu
		}
	}
	return nil
}
