// SPDX-License-Identifier: MIT

package scene

import (
	"fmt"
	"os"

	"github.com/katalvlaran/magfield/frame"
	"github.com/katalvlaran/magfield/matrix"
	"gopkg.in/yaml.v3"
)

// Scene is a YAML scene document: sources, observers and evaluation
// settings. Angles are in degrees, lengths in mm, magnetization in mT.
type Scene struct {
	Name       string       `yaml:"name"`
	Quantity   string       `yaml:"quantity"`    // B or H
	Squeeze    bool         `yaml:"squeeze"`     // drop size-1 axes
	Workers    int          `yaml:"workers"`     // concurrent sources
	Mode       string       `yaml:"mode"`        // "", outer, coindexed
	PathPolicy string       `yaml:"path_policy"` // pad, strict
	Sources    []SourceSpec `yaml:"sources"`
	Observers  ObserverSpec `yaml:"observers"`
}

// SourceSpec describes one source, or a group when Shape is "group".
type SourceSpec struct {
	Name          string        `yaml:"name"`
	Shape         string        `yaml:"shape"`
	Magnetization Vector        `yaml:"magnetization"`
	Dimension     []float64     `yaml:"dimension"`
	Diameter      float64       `yaml:"diameter"`
	Moment        Vector        `yaml:"moment"`
	Current       float64       `yaml:"current"`
	Vertices      []Vector      `yaml:"vertices"`
	Faces         [][3]int      `yaml:"faces"`
	Position      Vector        `yaml:"position"`
	Orientation   *RotationSpec `yaml:"orientation"`
	Motions       []Motion      `yaml:"motions"`
	Children      []SourceSpec  `yaml:"children"`
}

// RotationSpec is one of a quaternion (x, y, z, w), a rotation vector in
// degrees, or an Euler sequence with angles.
type RotationSpec struct {
	Quat   []float64 `yaml:"quat"`
	RotVec *Vector   `yaml:"rotvec"`
	Euler  string    `yaml:"euler"`
	Angles []float64 `yaml:"angles"`
}

// Motion is one path operation: Move (a displacement sequence), Sweep (a
// linear displacement sequence) or Rotate (an angle sweep about an axis).
// A nil Start selects source.Auto.
type Motion struct {
	Move   []Vector   `yaml:"move"`
	Rotate *AngleAxis `yaml:"rotate"`
	Start  *int       `yaml:"start"`
	Sweep  *SweepSpec `yaml:"sweep"`
}

// AngleAxis is a rotation sweep; a nil Anchor rotates in place.
type AngleAxis struct {
	Angles []float64 `yaml:"angles"`
	Axis   Vector    `yaml:"axis"`
	Anchor *Vector   `yaml:"anchor"`
}

// SweepSpec is a linear displacement sweep from From to To in N steps.
type SweepSpec struct {
	From Vector `yaml:"from"`
	To   Vector `yaml:"to"`
	N    int    `yaml:"n"`
}

// ObserverSpec selects exactly one observer form.
type ObserverSpec struct {
	Points []Vector    `yaml:"points"`
	Line   *SweepSpec  `yaml:"line"`
	Path   [][]Vector  `yaml:"path"`
	Ragged [][]Vector  `yaml:"ragged"`
	Sensor *SensorSpec `yaml:"sensor"`
}

// SensorSpec is an oriented pixel array posed and moved like a source.
// Results are reported in the sensor frame.
type SensorSpec struct {
	Pixels      []Vector      `yaml:"pixels"`
	Position    Vector        `yaml:"position"`
	Orientation *RotationSpec `yaml:"orientation"`
	Motions     []Motion      `yaml:"motions"`
}

// Vector is a 3-vector written as a sequence [x, y, z] or, for axes, as
// one of the names x, y, z.
type Vector matrix.Vec3

// UnmarshalYAML accepts a 3-element sequence or an axis name.
func (v *Vector) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		axis, ok := frame.AxisVector(node.Value)
		if !ok {
			return fmt.Errorf("line %d: %q is not an axis name: %w", node.Line, node.Value, ErrInvalidScene)
		}
		*v = Vector(axis)

		return nil
	}
	var xs []float64
	if err := node.Decode(&xs); err != nil {
		return err
	}
	if len(xs) != 3 {
		return fmt.Errorf("line %d: vector needs 3 components, got %d: %w", node.Line, len(xs), ErrInvalidScene)
	}
	*v = Vector{xs[0], xs[1], xs[2]}

	return nil
}

// Vec returns v as a matrix.Vec3.
func (v Vector) Vec() matrix.Vec3 { return matrix.Vec3(v) }

// Default returns the default scene settings with no sources.
func Default() *Scene {
	return &Scene{
		Name:       "magfield",
		Quantity:   "B",
		Squeeze:    true,
		Workers:    1,
		PathPolicy: "pad",
	}
}

// Parse decodes a scene document over the defaults.
func Parse(data []byte) (*Scene, error) {
	s := Default()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, sceneErrorf(opParse, fmt.Errorf("failed to parse scene: %w", err))
	}

	return s, nil
}

// Load reads and parses the scene file at path.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, sceneErrorf(opLoad, fmt.Errorf("failed to read scene: %w", err))
	}

	return Parse(data)
}
