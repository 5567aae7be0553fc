package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ListRulesParams defines parameters for the list_rules tool.
type ListRulesParams struct{}

// RuleInfo describes an active rule.
type RuleInfo struct {
	Pattern  string `json:"pattern"`
	Template string `json:"template"`
	When     string `json:"when,omitempty"`
	Regex    string `json:"regex"`
}

// ListRulesResult contains the active rules.
type ListRulesResult struct {
	Message string     `json:"message"`
	Rules   []RuleInfo `json:"rules"`
}

// handleListRules handles the list_rules tool call.
func (s *Server) handleListRules(
	_ context.Context,
	_ *mcp.ServerSession,
	_ *mcp.CallToolParamsFor[ListRulesParams],
) (*mcp.CallToolResultFor[ListRulesResult], error) {
	set, err := s.activeSet()
	if err != nil {
		return nil, err
	}

	result := ListRulesResult{Rules: []RuleInfo{}}
	for _, r := range set.Rules() {
		spec := r.Spec()
		result.Rules = append(result.Rules, RuleInfo{
			Pattern:  spec.Pattern,
			Template: spec.TemplateOrDefault(),
			When:     spec.When,
			Regex:    r.Regex(),
		})
	}

	result.Message = fmt.Sprintf("Found %d active rules.", len(result.Rules))

	return &mcp.CallToolResultFor[ListRulesResult]{
		Content: []mcp.Content{
			&mcp.TextContent{
				Text: result.Message,
			},
		},
		StructuredContent: result,
	}, nil
}
