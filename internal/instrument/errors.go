package instrument

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownValue      = errors.New("unknown value")
	ErrMissingValue      = errors.New("missing value")
	ErrUnknownInstrument = errors.New("unknown instrument")
)

// ValidationError reports a value outside an instrument's allowed set.
// Its message is matched on by callers and must stay stable.
type ValidationError struct {
	Instrument string
	Field      Field
	Value      string
	Kind       error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if errors.Is(e.Kind, ErrMissingValue) {
		return fmt.Sprintf("Instrument %s requires %s %s.", e.Instrument, article(string(e.Field)), e.Field)
	}
	return fmt.Sprintf("Instrument %s doesn't have %s %s called '%s'.",
		e.Instrument, article(string(e.Field)), e.Field, e.Value)
}

func (e *ValidationError) Unwrap() error {
	if e == nil || e.Kind == nil {
		return ErrUnknownValue
	}
	return e.Kind
}

func article(noun string) string {
	if noun != "" && strings.ContainsRune("aeiouAEIOU", rune(noun[0])) {
		return "an"
	}
	return "a"
}
