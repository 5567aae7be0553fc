package mcp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/macropower/patsub/pkg/mcp"
	"github.com/macropower/patsub/pkg/rule"
)

func connect(t *testing.T, rules mcp.RuleSource) *sdk.ClientSession {
	t.Helper()

	ctx := t.Context()

	clientTransport, serverTransport := sdk.NewInMemoryTransports()

	testServer := mcp.NewServer("", rules)

	serverSession, err := testServer.Server().Connect(ctx, serverTransport)
	require.NoError(t, err)

	client := sdk.NewClient(&sdk.Implementation{Name: "client"}, nil)
	clientSession, err := client.Connect(ctx, clientTransport)
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, clientSession.Close())
		assert.NoError(t, serverSession.Wait())
	})

	return clientSession
}

func newHolder(t *testing.T, specs ...rule.Spec) *rule.Holder {
	t.Helper()

	set, err := rule.Compile(t.Context(), specs)
	require.NoError(t, err)

	return rule.NewHolder(set)
}

func TestServer_ListTools(t *testing.T) {
	t.Parallel()

	session := connect(t, newHolder(t))

	res, err := session.ListTools(t.Context(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}

	assert.ElementsMatch(t, []string{"substitute", "compile_pattern", "list_rules"}, names)
}

func TestServer_Tools(t *testing.T) {
	t.Parallel()

	session := connect(t, newHolder(t,
		rule.NewSpec("{y:[0-9]{4}}-{m:[0-9]{2}}-{d:[0-9]{2}} {lvl:[A-Z]+}", "{d}/{m}/{y}: {lvl}"),
		rule.Spec{Pattern: "keep"},
	))

	tcs := map[string]struct {
		params *sdk.CallToolParams
		want   map[string]any
	}{
		"substitute with active rules": {
			params: &sdk.CallToolParams{
				Name: "substitute",
				Arguments: map[string]any{
					"lines": []any{"2024-01-15 ERROR boom", "noise", "keep me"},
				},
			},
			want: map[string]any{
				"message": "2 lines matched, 1 skipped.",
				"outputs": []any{"15/01/2024: ERROR", "keep me"},
				"lines": []any{
					map[string]any{"line": float64(1), "matched": true, "output": "15/01/2024: ERROR"},
					map[string]any{"line": float64(2), "matched": false},
					map[string]any{"line": float64(3), "matched": true, "output": "keep me"},
				},
				"matched": float64(2),
				"skipped": float64(1),
			},
		},
		"substitute with ad-hoc rules": {
			params: &sdk.CallToolParams{
				Name: "substitute",
				Arguments: map[string]any{
					"lines": []any{"pre ERROR post"},
					"rules": []any{
						map[string]any{"pattern": "ERROR", "template": "[{^}|{%}|{$}]"},
					},
				},
			},
			want: map[string]any{
				"message": "1 lines matched, 0 skipped.",
				"outputs": []any{"[pre |ERROR| post]"},
				"lines": []any{
					map[string]any{"line": float64(1), "matched": true, "output": "[pre |ERROR| post]"},
				},
				"matched": float64(1),
				"skipped": float64(0),
			},
		},
		"compile valid pattern": {
			params: &sdk.CallToolParams{
				Name:      "compile_pattern",
				Arguments: map[string]any{"pattern": "{a}/{1}"},
			},
			want: map[string]any{
				"regex":  "(?P<Pa>[^/]+)/(?P<P1>[0-9]+)",
				"groups": []any{"a", "1"},
				"valid":  true,
			},
		},
		"compile invalid pattern": {
			params: &sdk.CallToolParams{
				Name:      "compile_pattern",
				Arguments: map[string]any{"pattern": "a}b"},
			},
			want: map[string]any{
				"error":  `parse error: closing brace with no matching open at offset 1 in "a}b"`,
				"groups": []any{},
				"valid":  false,
			},
		},
		"list rules": {
			params: &sdk.CallToolParams{
				Name:      "list_rules",
				Arguments: map[string]any{},
			},
			want: map[string]any{
				"message": "Found 2 active rules.",
				"rules": []any{
					map[string]any{
						"pattern":  "{y:[0-9]{4}}-{m:[0-9]{2}}-{d:[0-9]{2}} {lvl:[A-Z]+}",
						"template": "{d}/{m}/{y}: {lvl}",
						"regex":    "(?P<Py>[0-9]{4})-(?P<Pm>[0-9]{2})-(?P<Pd>[0-9]{2}) (?P<Plvl>[A-Z]+)",
					},
					map[string]any{
						"pattern":  "keep",
						"template": "{@}",
						"regex":    "keep",
					},
				},
			},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			r, err := session.CallTool(t.Context(), tc.params)
			require.NoError(t, err)

			require.NotNil(t, r)
			assert.False(t, r.IsError)
			assert.Equal(t, tc.want, r.StructuredContent)
		})
	}
}

func TestServer_SubstituteInvalidRules(t *testing.T) {
	t.Parallel()

	session := connect(t, newHolder(t, rule.Spec{Pattern: "x"}))

	r, err := session.CallTool(t.Context(), &sdk.CallToolParams{
		Name: "substitute",
		Arguments: map[string]any{
			"lines": []any{"x"},
			"rules": []any{map[string]any{"pattern": "{a}{a}"}},
		},
	})
	if err == nil {
		require.NotNil(t, r)
		assert.True(t, r.IsError)
	}
}

func TestServer_SeesReloadedRules(t *testing.T) {
	t.Parallel()

	holder := newHolder(t, rule.NewSpec("x", "old"))
	session := connect(t, holder)

	call := func() any {
		r, err := session.CallTool(t.Context(), &sdk.CallToolParams{
			Name:      "substitute",
			Arguments: map[string]any{"lines": []any{"x"}},
		})
		require.NoError(t, err)

		sc, ok := r.StructuredContent.(map[string]any)
		require.True(t, ok)

		return sc["outputs"]
	}

	assert.Equal(t, []any{"old"}, call())

	holder.Store(rule.NewSet(rule.MustNew(rule.NewSpec("x", "new"))))
	assert.Equal(t, []any{"new"}, call())
}
