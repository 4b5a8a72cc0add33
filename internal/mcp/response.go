package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// createJSONResponse wraps data as a single JSON text content.
func createJSONResponse(data any) (*mcp.CallToolResult, error) {
	content, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response data: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(content)},
		},
	}, nil
}

// createErrorResponse reports a tool failure inside the result so the
// client sees it, with IsError set.
func createErrorResponse(operation string, err error, help string) (*mcp.CallToolResult, error) {
	data := map[string]any{
		"success":   false,
		"error":     err.Error(),
		"operation": operation,
	}
	if help != "" {
		data["help"] = help
	}
	response, marshalErr := createJSONResponse(data)
	if marshalErr != nil {
		return nil, marshalErr
	}
	response.IsError = true
	return response, nil
}

// decodeParams unmarshals tool arguments. Missing arguments leave v
// untouched.
func decodeParams(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, v)
}
