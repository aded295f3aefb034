// SPDX-License-Identifier: MIT

package source

import (
	"fmt"

	"github.com/katalvlaran/magfield/frame"
	"github.com/katalvlaran/magfield/matrix"
)

// Source is one field source: a geometry moving along a path. A Source is
// a value; Move and Rotate return modified copies.
type Source struct {
	Name     string
	Geometry Geometry
	Path     Path
}

// New returns a validated Source.
func New(name string, g Geometry, p Path) (Source, error) {
	s := Source{Name: name, Geometry: g, Path: p}
	if err := s.Validate(); err != nil {
		return Source{}, err
	}

	return s, nil
}

// Validate checks the geometry. The path is valid by construction.
func (s Source) Validate() error {
	if s.Geometry == nil {
		return sourceErrorf(opNewSource, ErrNilGeometry)
	}
	if err := s.Geometry.Validate(); err != nil {
		if s.Name != "" {
			return fmt.Errorf("%s: %w", s.Name, err)
		}

		return err
	}

	return nil
}

// Shape returns the geometry tag.
func (s Source) Shape() Shape { return s.Geometry.Shape() }

// Move returns s with its path moved (see Path.Move).
func (s Source) Move(displacements []matrix.Vec3, start int) (Source, error) {
	p, err := s.Path.Move(displacements, start)
	if err != nil {
		return Source{}, err
	}
	s.Path = p

	return s, nil
}

// Rotate returns s with its path rotated (see Path.Rotate).
func (s Source) Rotate(rotations []frame.Rotation, anchor *matrix.Vec3, start int) (Source, error) {
	p, err := s.Path.Rotate(rotations, anchor, start)
	if err != nil {
		return Source{}, err
	}
	s.Path = p

	return s, nil
}
