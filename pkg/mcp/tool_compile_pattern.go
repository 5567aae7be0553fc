package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/macropower/patsub/pkg/rule"
)

// CompilePatternParams defines parameters for the compile_pattern tool.
type CompilePatternParams struct {
	Pattern string `json:"pattern"`
}

// CompilePatternResult contains a compiled pattern.
type CompilePatternResult struct {
	Error  string   `json:"error,omitempty"`
	Regex  string   `json:"regex,omitempty"`
	Groups []string `json:"groups"`
	Valid  bool     `json:"valid"`
}

// handleCompilePattern handles the compile_pattern tool call. Invalid
// patterns are reported in the result rather than as a tool error.
func (s *Server) handleCompilePattern(
	_ context.Context,
	_ *mcp.ServerSession,
	params *mcp.CallToolParamsFor[CompilePatternParams],
) (*mcp.CallToolResultFor[CompilePatternResult], error) {
	result := CompilePatternResult{Groups: []string{}}

	r, err := rule.New(rule.Spec{Pattern: params.Arguments.Pattern}, s.opts...)
	if err != nil {
		result.Error = err.Error()

		return &mcp.CallToolResultFor[CompilePatternResult]{
			Content: []mcp.Content{
				&mcp.TextContent{
					Text: fmt.Sprintf("INVALID PATTERN: %v", err),
				},
			},
			StructuredContent: result,
		}, nil
	}

	result.Valid = true
	result.Regex = r.Regex()
	result.Groups = append(result.Groups, r.Groups()...)

	return &mcp.CallToolResultFor[CompilePatternResult]{
		Content: []mcp.Content{
			&mcp.TextContent{
				Text: result.Regex,
			},
		},
		StructuredContent: result,
	}, nil
}
