// SPDX-License-Identifier: MIT

package scene

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/katalvlaran/magfield/broadcast"
	"github.com/katalvlaran/magfield/field"
	"github.com/katalvlaran/magfield/frame"
	"github.com/katalvlaran/magfield/kernel"
	"github.com/katalvlaran/magfield/matrix"
	"github.com/katalvlaran/magfield/source"
)

const groupShape = "group"

// Compiled is a scene resolved into engine inputs.
type Compiled struct {
	Quantity  kernel.Quantity
	Sources   []source.Source
	Observers field.Observers
	Options   []field.Option
}

// Build resolves the scene into sources, observers and evaluation options.
// Unnamed sources and groups receive a "<shape>-<id>" name.
func (s *Scene) Build() (*Compiled, error) {
	q, err := kernel.ParseQuantity(s.Quantity)
	if err != nil {
		return nil, invalidf("quantity", "%v", err)
	}
	if len(s.Sources) == 0 {
		return nil, invalidf("sources", "no sources")
	}
	root := source.NewGroup(s.Name)
	for i, sp := range s.Sources {
		m, err := sp.member(fmt.Sprintf("sources[%d]", i))
		if err != nil {
			return nil, err
		}
		root.Members = append(root.Members, m)
	}
	obs, err := s.Observers.build()
	if err != nil {
		return nil, err
	}
	opts, err := s.options()
	if err != nil {
		return nil, err
	}

	return &Compiled{Quantity: q, Sources: root.Flatten(), Observers: obs, Options: opts}, nil
}

func (s *Scene) options() ([]field.Option, error) {
	if s.Workers < 1 {
		return nil, invalidf("workers", "must be >= 1, got %d", s.Workers)
	}
	opts := []field.Option{field.WithSqueeze(s.Squeeze), field.WithWorkers(s.Workers)}
	switch strings.ToLower(s.Mode) {
	case "":
	case "outer":
		opts = append(opts, field.WithMode(broadcast.Outer))
	case "coindexed":
		opts = append(opts, field.WithMode(broadcast.CoIndexed))
	default:
		return nil, invalidf("mode", "unknown mode %q", s.Mode)
	}
	switch strings.ToLower(s.PathPolicy) {
	case "", "pad":
		opts = append(opts, field.WithPathPolicy(field.PadPaths))
	case "strict":
		opts = append(opts, field.WithPathPolicy(field.StrictPaths))
	default:
		return nil, invalidf("path_policy", "unknown policy %q", s.PathPolicy)
	}

	return opts, nil
}

func autoName(kind string) string {
	return strings.ToLower(kind) + "-" + uuid.NewString()[:8]
}

// member builds a source or, for shape "group", a group of its children.
func (sp SourceSpec) member(at string) (source.Member, error) {
	if strings.EqualFold(strings.TrimSpace(sp.Shape), groupShape) {
		return sp.group(at)
	}
	if len(sp.Children) > 0 {
		return nil, invalidf(at, "only groups have children")
	}
	g, err := sp.geometry(at)
	if err != nil {
		return nil, err
	}
	rot := frame.Identity()
	if sp.Orientation != nil {
		if rot, err = sp.Orientation.build(at + ".orientation"); err != nil {
			return nil, err
		}
	}
	name := sp.Name
	if name == "" {
		name = autoName(g.Shape().String())
	}
	src, err := source.New(name, g, source.Static(sp.Position.Vec(), rot))
	if err != nil {
		return nil, sceneErrorf(opBuild, fmt.Errorf("%s: %w", at, err))
	}
	for i, m := range sp.Motions {
		if src, err = applyMotion(m, src, fmt.Sprintf("%s.motions[%d]", at, i)); err != nil {
			return nil, err
		}
	}

	return src, nil
}

func (sp SourceSpec) group(at string) (source.Member, error) {
	name := sp.Name
	if name == "" {
		name = autoName(groupShape)
	}
	g := source.NewGroup(name)
	for i, c := range sp.Children {
		m, err := c.member(fmt.Sprintf("%s.children[%d]", at, i))
		if err != nil {
			return nil, err
		}
		g.Members = append(g.Members, m)
	}
	for i, m := range sp.Motions {
		var err error
		if g, err = applyMotion(m, g, fmt.Sprintf("%s.motions[%d]", at, i)); err != nil {
			return nil, err
		}
	}

	return g, nil
}

// arity returns the dimension length of magnet shapes.
func arity(s source.Shape) int {
	switch s {
	case source.ShapeCuboid:
		return 3
	case source.ShapeCylinder:
		return 2
	case source.ShapeCylinderSegment:
		return 5
	}

	return 0
}

func (sp SourceSpec) geometry(at string) (source.Geometry, error) {
	shape, err := source.ParseShape(sp.Shape)
	if err != nil {
		return nil, invalidf(at, "%v", err)
	}
	if n := arity(shape); n > 0 && len(sp.Dimension) != n {
		return nil, invalidf(at, "%s dimension needs %d values, got %d", shape, n, len(sp.Dimension))
	}
	d := sp.Dimension
	mag := sp.Magnetization.Vec()
	switch shape {
	case source.ShapeCuboid:
		return source.Cuboid{Magnetization: mag, Dimension: matrix.Vec3{d[0], d[1], d[2]}}, nil
	case source.ShapeCylinder:
		return source.Cylinder{Magnetization: mag, Diameter: d[0], Height: d[1]}, nil
	case source.ShapeCylinderSegment:
		return source.CylinderSegment{Magnetization: mag, InnerRadius: d[0], OuterRadius: d[1], Height: d[2], Phi1: d[3], Phi2: d[4]}, nil
	case source.ShapeSphere:
		return source.Sphere{Magnetization: mag, Diameter: sp.Diameter}, nil
	case source.ShapeDipole:
		return source.Dipole{Moment: sp.Moment.Vec()}, nil
	case source.ShapeLoop:
		return source.Loop{Current: sp.Current, Diameter: sp.Diameter}, nil
	case source.ShapeLine:
		return source.Line{Current: sp.Current, Vertices: vecs(sp.Vertices)}, nil
	case source.ShapeTriangle:
		if len(sp.Vertices) != 3 {
			return nil, invalidf(at, "triangle needs 3 vertices, got %d", len(sp.Vertices))
		}
		v := vecs(sp.Vertices)
		return source.Triangle{Magnetization: mag, Vertices: [3]matrix.Vec3{v[0], v[1], v[2]}}, nil
	case source.ShapeTriangularMesh:
		return source.TriangularMesh{Magnetization: mag, Vertices: vecs(sp.Vertices), Faces: sp.Faces}, nil
	}

	return nil, invalidf(at, "unsupported shape %s", shape)
}

func (r RotationSpec) build(at string) (frame.Rotation, error) {
	set := 0
	for _, b := range []bool{len(r.Quat) > 0, r.RotVec != nil, r.Euler != ""} {
		if b {
			set++
		}
	}
	if set != 1 {
		return frame.Rotation{}, invalidf(at, "give exactly one of quat, rotvec, euler")
	}
	switch {
	case len(r.Quat) > 0:
		if len(r.Quat) != 4 {
			return frame.Rotation{}, invalidf(at, "quat needs 4 values (x, y, z, w), got %d", len(r.Quat))
		}
		rot, err := frame.FromQuat(r.Quat[0], r.Quat[1], r.Quat[2], r.Quat[3])
		if err != nil {
			return frame.Rotation{}, sceneErrorf(opBuild, fmt.Errorf("%s: %w", at, err))
		}
		return rot, nil
	case r.RotVec != nil:
		return frame.FromRotVec(r.RotVec.Vec().Scale(math.Pi / 180)), nil
	}
	rot, err := frame.FromEuler(r.Euler, r.Angles, true)
	if err != nil {
		return frame.Rotation{}, sceneErrorf(opBuild, fmt.Errorf("%s: %w", at, err))
	}

	return rot, nil
}

// mover is the path API shared by sources and groups.
type mover[T any] interface {
	Move(displacements []matrix.Vec3, start int) (T, error)
	Rotate(rotations []frame.Rotation, anchor *matrix.Vec3, start int) (T, error)
}

// applyMotion runs one motion on a source or a group.
func applyMotion[T mover[T]](m Motion, t T, at string) (T, error) {
	start := source.Auto
	if m.Start != nil {
		start = *m.Start
	}
	set := 0
	for _, b := range []bool{len(m.Move) > 0, m.Sweep != nil, m.Rotate != nil} {
		if b {
			set++
		}
	}
	if set != 1 {
		return t, invalidf(at, "give exactly one of move, sweep, rotate")
	}

	var (
		out T
		err error
	)
	switch {
	case len(m.Move) > 0:
		out, err = t.Move(vecs(m.Move), start)
	case m.Sweep != nil:
		if m.Sweep.N < 1 {
			return t, invalidf(at, "sweep needs n >= 1")
		}
		out, err = t.Move(matrix.Linspace(m.Sweep.From.Vec(), m.Sweep.To.Vec(), m.Sweep.N), start)
	default:
		rots := make([]frame.Rotation, len(m.Rotate.Angles))
		for i, a := range m.Rotate.Angles {
			if rots[i], err = frame.FromAngleAxis(a, m.Rotate.Axis.Vec(), true); err != nil {
				return t, sceneErrorf(opBuild, fmt.Errorf("%s: %w", at, err))
			}
		}
		var anchor *matrix.Vec3
		if m.Rotate.Anchor != nil {
			v := m.Rotate.Anchor.Vec()
			anchor = &v
		}
		out, err = t.Rotate(rots, anchor, start)
	}
	if err != nil {
		return t, sceneErrorf(opBuild, fmt.Errorf("%s: %w", at, err))
	}

	return out, nil
}

func vecs(vs []Vector) []matrix.Vec3 {
	out := make([]matrix.Vec3, len(vs))
	for i, v := range vs {
		out[i] = v.Vec()
	}

	return out
}

func (o ObserverSpec) build() (field.Observers, error) {
	set := 0
	for _, b := range []bool{len(o.Points) > 0, o.Line != nil, len(o.Path) > 0, len(o.Ragged) > 0, o.Sensor != nil} {
		if b {
			set++
		}
	}
	if set != 1 {
		return field.Observers{}, invalidf("observers", "give exactly one of points, line, path, ragged, sensor")
	}
	switch {
	case len(o.Points) > 0:
		return field.Points(vecs(o.Points)...), nil
	case o.Line != nil:
		if o.Line.N < 1 {
			return field.Observers{}, invalidf("observers.line", "n must be >= 1")
		}
		return field.Points(matrix.Linspace(o.Line.From.Vec(), o.Line.To.Vec(), o.Line.N)...), nil
	case len(o.Path) > 0:
		steps := make([][]matrix.Vec3, len(o.Path))
		for i, row := range o.Path {
			steps[i] = vecs(row)
		}
		obs, err := field.PathPoints(steps)
		if err != nil {
			return field.Observers{}, sceneErrorf(opBuild, fmt.Errorf("observers.path: %w", err))
		}
		return obs, nil
	case o.Sensor != nil:
		return o.Sensor.build("observers.sensor")
	}
	lists := make([][]matrix.Vec3, len(o.Ragged))
	for i, l := range o.Ragged {
		lists[i] = vecs(l)
	}

	return field.Ragged(lists...), nil
}

func (sp SensorSpec) build(at string) (field.Observers, error) {
	rot := frame.Identity()
	if sp.Orientation != nil {
		var err error
		if rot, err = sp.Orientation.build(at + ".orientation"); err != nil {
			return field.Observers{}, err
		}
	}
	path := source.Static(sp.Position.Vec(), rot)
	for i, m := range sp.Motions {
		var err error
		if path, err = applyMotion(m, path, fmt.Sprintf("%s.motions[%d]", at, i)); err != nil {
			return field.Observers{}, err
		}
	}
	obs, err := field.SensorPoints(field.Sensor{Pixels: vecs(sp.Pixels), Path: path})
	if err != nil {
		return field.Observers{}, sceneErrorf(opBuild, fmt.Errorf("%s: %w", at, err))
	}

	return obs, nil
}
