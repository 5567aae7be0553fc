// Package rule holds the ordered pattern/template rules and evaluates them
// against input lines.
//
// A [Set] is evaluated rule by rule. The first rule whose pattern matches a
// line (and whose optional CEL guard returns true) renders its template, and
// no further rules are tried for that line. A line that matches no rule
// produces no output.
package rule
