// SPDX-License-Identifier: MIT

package source

import (
	"errors"
	"fmt"
)

// Sentinel errors for source construction and validation.
var (
	// ErrInvalidParams indicates geometry parameters outside their shape-specific range.
	ErrInvalidParams = errors.New("source: invalid geometry parameters")

	// ErrInvalidPath indicates an empty path, mismatched position/orientation
	// lengths or an out-of-range start index.
	ErrInvalidPath = errors.New("source: invalid path")

	// ErrUnknownShape indicates a shape name outside the fixed shape set.
	ErrUnknownShape = errors.New("source: unknown shape")

	// ErrNilGeometry indicates a Source without geometry.
	ErrNilGeometry = errors.New("source: nil geometry")
)

const (
	opNewPath   = "NewPath"
	opMove      = "Move"
	opRotate    = "Rotate"
	opPad       = "Pad"
	opValidate  = "Validate"
	opParse     = "ParseShape"
	opNewSource = "New"
)

func sourceErrorf(tag string, err error) error {
	return fmt.Errorf("source.%s: %w", tag, err)
}

// paramErrorf reports a violated geometry invariant for shape s.
func paramErrorf(s Shape, format string, args ...any) error {
	return sourceErrorf(opValidate, fmt.Errorf("%s: %s: %w", s, fmt.Sprintf(format, args...), ErrInvalidParams))
}
