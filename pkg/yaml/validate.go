package yaml

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/goccy/go-yaml"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ErrSchema is wrapped by errors returned from [Validator.Validate].
var ErrSchema = errors.New("schema validation failed")

// Validator checks decoded YAML documents against a JSON schema, using
// [github.com/santhosh-tekuri/jsonschema/v6].
type Validator struct {
	schema  *jsonschema.Schema
	printer *message.Printer
}

// NewValidator compiles schemaData, registered under url.
func NewValidator(url string, schemaData []byte) (*Validator, error) {
	var schema any

	err := json.Unmarshal(schemaData, &schema)
	if err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()

	err = compiler.AddResource(url, schema)
	if err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}

	jss, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	return &Validator{
		schema:  jss,
		printer: message.NewPrinter(language.English),
	}, nil
}

// MustNewValidator is like [NewValidator], but panics on error.
func MustNewValidator(url string, schemaData []byte) *Validator {
	v, err := NewValidator(url, schemaData)
	if err != nil {
		panic(err)
	}

	return v
}

// Validate checks data, which must be made of JSON-compatible values such as
// the result of decoding YAML into an any.
//
// Only the most specific failure is reported. The returned [*Error] carries
// its [yaml.Path], so it can be annotated against the document source.
func (s *Validator) Validate(data any) error {
	err := s.schema.Validate(data)
	if err == nil {
		return nil
	}

	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) {
		return fmt.Errorf("%w: %w", ErrSchema, err)
	}

	leaf := mostSpecificCause(validationErr)

	return &Error{
		Err:  fmt.Errorf("%w: %s", ErrSchema, leaf.ErrorKind.LocalizedString(s.printer)),
		Path: pathFromLocation(leaf.InstanceLocation),
	}
}

// mostSpecificCause returns the leaf cause with the longest instance
// location. Ties keep the first cause found.
func mostSpecificCause(err *jsonschema.ValidationError) *jsonschema.ValidationError {
	var best *jsonschema.ValidationError

	for _, cause := range err.Causes {
		candidate := mostSpecificCause(cause)
		if best == nil || len(candidate.InstanceLocation) > len(best.InstanceLocation) {
			best = candidate
		}
	}

	if best == nil {
		return err
	}

	return best
}

// pathFromLocation converts a JSON pointer split into tokens to a
// [yaml.Path]. Numeric tokens become sequence indexes.
func pathFromLocation(location []string) *yaml.Path {
	current := NewPathBuilder().Root()

	for _, part := range location {
		index, err := strconv.ParseUint(part, 10, 0)
		if err == nil {
			current = current.Index(uint(index))
		} else {
			current = current.Child(part)
		}
	}

	return current.Build()
}
