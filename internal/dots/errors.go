package dots

import (
	"errors"
	"fmt"
)

// Parameter error kinds. Use errors.Is against these.
var (
	ErrInvalidDimension = errors.New("invalid dimension")
	ErrInvalidDistance  = errors.New("invalid distance")
	ErrInvalidRadius    = errors.New("invalid radius")
	ErrInvalidPattern   = errors.New("invalid pattern")
	ErrInvalidAttempts  = errors.New("invalid attempt count")
)

// ParamError reports a rejected parameter together with its value.
type ParamError struct {
	Kind   error
	Field  string
	Value  any
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%v: %s=%v %s", e.Kind, e.Field, e.Value, e.Reason)
}

func (e *ParamError) Unwrap() error {
	return e.Kind
}
