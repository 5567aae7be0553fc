// Package mcp serves patsub over the Model Context Protocol.
//
// The server exposes tools to run the active rules over lines of text, to
// inspect the active rules, and to compile patterns into regular expressions.
package mcp

import "github.com/modelcontextprotocol/go-sdk/jsonschema"

const (
	name         = "patsub"
	instructions = `MCP Server 'patsub' rewrites lines of text with ordered pattern/template rules.

Patterns use a brace grammar: '{name}' captures a run of non-slash characters, '{1}' captures digits, '{}' captures alphanumerics (as 'EEE'), and '{name:regex}' captures 'regex'. Templates reference groups as '{name}', plus '{^}' (text before the match), '{%}' (the match), '{$}' (text after the match) and '{@}' (the whole line).

When to use these tools:
- 'list_rules' shows the active rules and their compiled regular expressions
- 'substitute' runs rules over lines; the first matching rule renders each output line, and lines matching no rule are skipped
- 'compile_pattern' shows the regular expression and groups a pattern compiles to

To try new rules without changing the active ones, pass 'rules' to 'substitute'.
`
)

func newRuleSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "object",
		Description: "A pattern/template rule.",
		Properties: map[string]*jsonschema.Schema{
			"pattern": {
				Type:        "string",
				Description: "Brace-grammar pattern, e.g. '{y:[0-9]{4}}-{m:[0-9]{2}}'.",
			},
			"template": {
				Type:        "string",
				Description: "Output template, e.g. '{m}/{y}'. Defaults to '{@}'.",
			},
			"when": {
				Type:        "string",
				Description: "Optional CEL guard, e.g. 'vars.lvl == \"ERROR\"'.",
			},
		},
		Required: []string{"pattern"},
	}
}
