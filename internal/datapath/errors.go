package datapath

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPath = errors.New("invalid reference data path")
	ErrEnvNotSet   = errors.New("WEBBPSF_PATH not set")
	ErrBootstrap   = errors.New("reference data bootstrap failed")
)

// ResolutionError is returned by Resolve. For ErrInvalidPath the message
// is a fixed format callers match on.
type ResolutionError struct {
	Path string
	Kind error
	Err  error
}

func (e *ResolutionError) Error() string {
	if e == nil {
		return ""
	}
	switch e.Kind {
	case ErrInvalidPath:
		return fmt.Sprintf("WEBBPSF_PATH (%s) is not a valid directory path!", e.Path)
	case ErrEnvNotSet:
		return "Environment variable $WEBBPSF_PATH is not set!"
	}
	msg := "reference data resolution failed"
	if e.Kind != nil {
		msg = e.Kind.Error()
	}
	if e.Path != "" {
		msg += fmt.Sprintf(" (path=%s)", e.Path)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ResolutionError) Unwrap() []error {
	if e == nil {
		return nil
	}
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}
