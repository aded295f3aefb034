// SPDX-License-Identifier: MIT

package scene

import (
	"errors"
	"fmt"
)

// ErrInvalidScene indicates a scene document that parses as YAML but does
// not describe a valid set of sources and observers.
var ErrInvalidScene = errors.New("scene: invalid scene")

const (
	opLoad     = "Load"
	opParse    = "Parse"
	opBuild    = "Build"
	opEvaluate = "Evaluate"
)

func sceneErrorf(tag string, err error) error {
	return fmt.Errorf("scene.%s: %w", tag, err)
}

// invalidf reports a structural problem at the document location at.
func invalidf(at, format string, args ...any) error {
	return sceneErrorf(opBuild, fmt.Errorf("%s: %s: %w", at, fmt.Sprintf(format, args...), ErrInvalidScene))
}
