// SPDX-License-Identifier: MIT

package field

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/magfield/broadcast"
	"github.com/katalvlaran/magfield/source"
)

var (
	// ErrConfiguration is broadcast.ErrConfiguration: unalignable paths and
	// observers, mixed observer forms or an unknown shape name.
	ErrConfiguration = broadcast.ErrConfiguration

	// ErrIndex indicates a tensor index outside the tensor shape.
	ErrIndex = errors.New("field: tensor index out of range")
)

const (
	opCompute = "Compute"
	opDirect  = "Direct"
	opTensor  = "Tensor"
	opObs     = "Observers"
)

func fieldErrorf(tag string, err error) error {
	return fmt.Errorf("field.%s: %w", tag, err)
}

func configErrorf(tag, format string, args ...any) error {
	return fieldErrorf(tag, fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrConfiguration))
}

// EvalError reports the source whose evaluation failed. It unwraps to the
// underlying sentinel (kernel.ErrDomainSingularity, ErrConfiguration, ...).
type EvalError struct {
	Source int
	Name   string
	Shape  source.Shape
	Err    error
}

func (e *EvalError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("field: source %d (%s %q): %v", e.Source, e.Shape, e.Name, e.Err)
	}

	return fmt.Sprintf("field: source %d (%s): %v", e.Source, e.Shape, e.Err)
}

func (e *EvalError) Unwrap() error { return e.Err }

func evalErrorf(i int, s source.Source, err error) error {
	shape := source.Shape(-1)
	if s.Geometry != nil {
		shape = s.Shape()
	}

	return &EvalError{Source: i, Name: s.Name, Shape: shape, Err: err}
}
