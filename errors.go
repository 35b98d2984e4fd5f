package dbtype

import (
	"errors"
	"fmt"
)

// ErrUnknownType occurs when a converter type name is not registered.
var ErrUnknownType = errors.New("unknown type")

// ErrLocaleUnsupported occurs when locale-aware parsing is enabled on a converter whose
// time factory cannot parse locale formatted strings.
var ErrLocaleUnsupported = errors.New("locale parsing not supported")

// ErrInvalidInput occurs when a value has a Go type that a converter cannot accept.
var ErrInvalidInput = errors.New("invalid input")

// ConversionError is returned when a value cannot be converted. Type is the name of the
// converter and Value the input that failed.
type ConversionError struct {
	Type  string
	Value any
	Err   error
}

func (e *ConversionError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("%s: %v", e.typeName(), e.Err)
	}
	return fmt.Sprintf("%s: cannot convert %v (%T): %v", e.typeName(), e.Value, e.Value, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

func (e *ConversionError) typeName() string {
	if e.Type == "" {
		return "dbtype"
	}
	return e.Type
}

func conversionError(typeName string, value any, err error) error {
	return &ConversionError{Type: typeName, Value: value, Err: err}
}
