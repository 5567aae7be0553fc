// Package pattern implements the brace grammar used to describe what a line
// must contain, and compiles it to a regular expression with named capture
// groups.
//
// A pattern is literal text with optional groups:
//
//	{name:regex}   capture group "name" matching regex
//	{name}         alphabetic name, matches a run of non-slash characters
//	{1}            numeric name, matches digits
//	{}             anonymous group, matches [a-zA-Z0-9]+ and is named EEE
//	{a{b}c}        groups nest; the outer group contains the inner one
//
// A backslash escapes braces (\{ and \}) and itself (\\). Any other escape is
// passed through to the regular expression untouched.
//
// Every group is emitted with the [GroupPrefix] in front of its name, so
// user group names never collide with the pseudo-variables used by templates.
package pattern
