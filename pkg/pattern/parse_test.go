package pattern_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/patsub/pkg/pattern"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		pattern string
		want    []pattern.Node
	}{
		"empty": {
			pattern: "",
			want:    nil,
		},
		"literal only": {
			pattern: "ERROR",
			want:    []pattern.Node{pattern.Literal{Text: "ERROR"}},
		},
		"named group": {
			pattern: "/tmp/{file}",
			want: []pattern.Node{
				pattern.Literal{Text: "/tmp/"},
				pattern.Group{Name: "file"},
			},
		},
		"explicit regex": {
			pattern: "{n:[a-z]+}!",
			want: []pattern.Node{
				pattern.Group{Name: "n", Regex: "[a-z]+", Explicit: true},
				pattern.Literal{Text: "!"},
			},
		},
		"split on first colon only": {
			pattern: "{t:a:b}",
			want: []pattern.Node{
				pattern.Group{Name: "t", Regex: "a:b", Explicit: true},
			},
		},
		"nested groups": {
			pattern: "pre{a{b}c}post",
			want: []pattern.Node{
				pattern.Literal{Text: "pre"},
				pattern.Group{
					Name: "a",
					Children: []pattern.Node{
						pattern.Group{Name: "b"},
						pattern.Literal{Text: "c"},
					},
				},
				pattern.Literal{Text: "post"},
			},
		},
		"anonymous group": {
			pattern: "{}",
			want:    []pattern.Node{pattern.Group{}},
		},
		"escaped braces": {
			pattern: `\{x\}`,
			want:    []pattern.Node{pattern.Literal{Text: `\{x\}`}},
		},
		"escaped backslash": {
			pattern: `a\\b`,
			want:    []pattern.Node{pattern.Literal{Text: `a\\b`}},
		},
		"other escapes pass through": {
			pattern: `\d+\.`,
			want:    []pattern.Node{pattern.Literal{Text: `\d+\.`}},
		},
		"trailing backslash": {
			pattern: `a\`,
			want:    []pattern.Node{pattern.Literal{Text: `a\\`}},
		},
		"escaped brace inside group regex": {
			pattern: `{b:\{[a-z]+\}}`,
			want: []pattern.Node{
				pattern.Group{Name: "b", Regex: `\{[a-z]+\}`, Explicit: true},
			},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := pattern.Parse(tc.pattern)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		pattern    string
		wantErr    error
		wantOffset int
	}{
		"unclosed opening brace": {
			pattern:    "a{b",
			wantErr:    pattern.ErrParse,
			wantOffset: 1,
		},
		"unclosed nested brace": {
			pattern:    "{a{b}",
			wantErr:    pattern.ErrParse,
			wantOffset: 0,
		},
		"closing brace with no open": {
			pattern:    "a}b",
			wantErr:    pattern.ErrParse,
			wantOffset: 1,
		},
		"closing brace at end": {
			pattern:    "{a}}",
			wantErr:    pattern.ErrParse,
			wantOffset: 3,
		},
		"escaped opening brace leaves closing brace unmatched": {
			pattern:    `\{a}`,
			wantErr:    pattern.ErrParse,
			wantOffset: 3,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			nodes, err := pattern.Parse(tc.pattern)
			require.ErrorIs(t, err, tc.wantErr)
			assert.Nil(t, nodes)

			var parseErr *pattern.ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, tc.wantOffset, parseErr.Offset)
			assert.Equal(t, tc.pattern, parseErr.Pattern)
			assert.NotErrorIs(t, err, pattern.ErrConfig)
		})
	}
}

func TestParse_InvalidGroupName(t *testing.T) {
	t.Parallel()

	for _, p := range []string{"{-x}", "{.a:b}", "{ x}", "ok{a{_b}}"} {
		t.Run(p, func(t *testing.T) {
			t.Parallel()

			_, err := pattern.Parse(p)
			require.ErrorIs(t, err, pattern.ErrConfig)

			var configErr *pattern.ConfigError
			require.ErrorAs(t, err, &configErr)
			assert.Equal(t, p, configErr.Pattern)
			assert.Contains(t, err.Error(), "alphanumeric")
		})
	}
}
