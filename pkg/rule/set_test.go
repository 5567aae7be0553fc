package rule_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/patsub/pkg/pattern"
	"github.com/macropower/patsub/pkg/rule"
)

func TestSet_Evaluate(t *testing.T) {
	t.Parallel()

	set, err := rule.Compile(t.Context(), []rule.Spec{
		rule.NewSpec("ERROR", "first: {@}"),
		rule.NewSpec("ERR", "second: {@}"),
		{Pattern: "{n:[0-9]+}", When: "vars.missing == \"x\""},
		rule.NewSpec("{n:[0-9]+}", "number {n}"),
	})
	require.NoError(t, err)
	require.Equal(t, 4, set.Len())

	tests := []struct {
		line   string
		want   string
		wantOK bool
	}{
		{line: "an ERROR occurred", want: "first: an ERROR occurred", wantOK: true},
		{line: "an ERR occurred", want: "second: an ERR occurred", wantOK: true},
		{line: "nothing to see"},
		{line: "count 42", want: "number 42", wantOK: true},
		{line: ""},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			t.Parallel()

			got, ok := set.Evaluate(t.Context(), tt.line)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSet_EvaluateSkipsUnmatchedLines(t *testing.T) {
	t.Parallel()

	set, err := rule.Compile(t.Context(), []rule.Spec{{Pattern: "keep"}})
	require.NoError(t, err)

	var out []string
	for _, line := range []string{"keep 1", "drop", "keep 2", "", "keep 3"} {
		if got, ok := set.Evaluate(t.Context(), line); ok {
			out = append(out, got)
		}
	}

	assert.Equal(t, []string{"keep 1", "keep 2", "keep 3"}, out)
}

func TestCompile_Errors(t *testing.T) {
	t.Parallel()

	_, err := rule.Compile(t.Context(), []rule.Spec{
		{Pattern: "ok"},
		{Pattern: "{a}{a}"},
	})
	require.ErrorIs(t, err, pattern.ErrConfig)

	var specErr *rule.SpecError
	require.ErrorAs(t, err, &specErr)
	assert.Equal(t, 1, specErr.Index)
	assert.Contains(t, err.Error(), "rule 1")
}

func TestSet_Regexes(t *testing.T) {
	t.Parallel()

	set, err := rule.Compile(t.Context(), []rule.Spec{
		{Pattern: "{1}"},
		{Pattern: "{}x"},
		{Pattern: "{a:b}"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"(?P<P1>[0-9]+)",
		"(?P<PEEE>[a-zA-Z0-9]+)x",
		"(?P<Pa>b)",
	}, set.Regexes())
	assert.Len(t, set.Rules(), 3)
}

func TestHolder(t *testing.T) {
	t.Parallel()

	first := rule.NewSet(rule.MustNew(rule.NewSpec("x", "first")))
	second := rule.NewSet(rule.MustNew(rule.NewSpec("x", "second")))

	h := rule.NewHolder(first)

	got, ok := h.Evaluate(t.Context(), "x")
	require.True(t, ok)
	assert.Equal(t, "first", got)

	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			for range 100 {
				out, ok := h.Evaluate(t.Context(), "x")
				assert.True(t, ok)
				assert.Contains(t, []string{"first", "second"}, out)
			}
		})
	}

	h.Store(second)
	wg.Wait()

	got, ok = h.Evaluate(t.Context(), "x")
	require.True(t, ok)
	assert.Equal(t, "second", got)

	var empty rule.Holder
	_, ok = empty.Evaluate(t.Context(), "x")
	assert.False(t, ok)
}
