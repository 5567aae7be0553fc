// Package expr provides CEL (Common Expression Language) guards for rules.
//
// A guard is evaluated after a rule's pattern matched a line. The rule only
// applies when the guard returns true.
//
// CEL expressions have access to variables:
//   - `vars` (map<string, string>): Named groups that participated in the match
//   - `line` (string): The whole input line
//   - `match` (string): The matched text
//   - `before` (string): Text before the match
//   - `after` (string): Text after the match
//
// In addition to the CEL standard library and the strings, math and lists
// extensions, these functions are available:
//   - pathBase(string): Returns the last element of a path
//   - pathDir(string): Returns all but the last element of a path
//   - pathExt(string): Returns the extension of a path, including the dot
package expr
