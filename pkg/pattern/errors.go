package pattern

import (
	"errors"
	"fmt"
)

var (
	// ErrParse is returned for unbalanced braces.
	ErrParse = errors.New("parse error")
	// ErrConfig is returned for invalid or duplicate group names.
	ErrConfig = errors.New("configuration error")
)

// ParseError reports a brace that has no partner.
type ParseError struct {
	Pattern string
	Reason  string
	// Offset is the rune offset of the offending brace.
	Offset int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s at offset %d in %q", ErrParse, e.Reason, e.Offset, e.Pattern)
}

func (e *ParseError) Unwrap() error {
	return ErrParse
}

// ConfigError reports a group that cannot be turned into a capture group.
type ConfigError struct {
	Err     error
	Pattern string
	Group   string
	Reason  string
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("%s: group %q in %q: %s", ErrConfig, e.Group, e.Pattern, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *ConfigError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrConfig}
	}

	return []error{ErrConfig, e.Err}
}
