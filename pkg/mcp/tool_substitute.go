package mcp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/macropower/patsub/pkg/rule"
)

// SubstituteParams defines parameters for the substitute tool.
type SubstituteParams struct {
	Lines []string    `json:"lines"`
	Rules []rule.Spec `json:"rules,omitempty"`
}

// LineResult is the result for one input line.
type LineResult struct {
	Output  string `json:"output,omitempty"`
	Line    int    `json:"line"`
	Matched bool   `json:"matched"`
}

// SubstituteResult contains the result of running rules over lines.
type SubstituteResult struct {
	Message string       `json:"message"`
	Outputs []string     `json:"outputs"`
	Lines   []LineResult `json:"lines"`
	Matched int          `json:"matched"`
	Skipped int          `json:"skipped"`
}

// handleSubstitute handles the substitute tool call.
func (s *Server) handleSubstitute(
	ctx context.Context,
	_ *mcp.ServerSession,
	params *mcp.CallToolParamsFor[SubstituteParams],
) (*mcp.CallToolResultFor[SubstituteResult], error) {
	var (
		set *rule.Set
		err error
	)

	if len(params.Arguments.Rules) > 0 {
		set, err = rule.Compile(ctx, params.Arguments.Rules, s.opts...)
	} else {
		set, err = s.activeSet()
	}
	if err != nil {
		return nil, fmt.Errorf("compile rules: %w", err)
	}

	result := SubstituteResult{
		Outputs: []string{},
		Lines:   make([]LineResult, 0, len(params.Arguments.Lines)),
	}

	for i, line := range params.Arguments.Lines {
		out, ok := set.Evaluate(ctx, line)

		lr := LineResult{Line: i + 1, Matched: ok}
		if ok {
			lr.Output = out
			result.Outputs = append(result.Outputs, out)
			result.Matched++
		} else {
			result.Skipped++
		}

		result.Lines = append(result.Lines, lr)
	}

	slog.DebugContext(ctx, "substitute completed",
		slog.Int("rules", set.Len()),
		slog.Int("matched", result.Matched),
		slog.Int("skipped", result.Skipped),
	)

	return createSubstituteResult(result), nil
}

func createSubstituteResult(result SubstituteResult) *mcp.CallToolResultFor[SubstituteResult] {
	msg := fmt.Sprintf("%d lines matched, %d skipped.", result.Matched, result.Skipped)
	result.Message = msg

	text := msg
	for _, out := range result.Outputs {
		text += "\n" + out
	}

	return &mcp.CallToolResultFor[SubstituteResult]{
		Content: []mcp.Content{
			&mcp.TextContent{
				Text: text,
			},
		},
		StructuredContent: result,
	}
}
