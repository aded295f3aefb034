// SPDX-License-Identifier: MIT

package source

import (
	"github.com/katalvlaran/magfield/frame"
	"github.com/katalvlaran/magfield/matrix"
)

// Member is an element of a Group: a Source or a nested Group.
type Member interface {
	flatten(dst []Source) []Source
	transform(f func(Source) (Source, error)) (Member, error)
}

// Group is an ordered tree of sources. Evaluation never sees a Group; it is
// flattened once into a source list.
type Group struct {
	Name    string
	Members []Member
}

// NewGroup returns a group holding members in order.
func NewGroup(name string, members ...Member) Group {
	return Group{Name: name, Members: append([]Member(nil), members...)}
}

func (s Source) flatten(dst []Source) []Source { return append(dst, s) }

func (s Source) transform(f func(Source) (Source, error)) (Member, error) { return f(s) }

func (g Group) flatten(dst []Source) []Source {
	for _, m := range g.Members {
		dst = m.flatten(dst)
	}

	return dst
}

func (g Group) transform(f func(Source) (Source, error)) (Member, error) {
	out := Group{Name: g.Name, Members: make([]Member, len(g.Members))}
	for i, m := range g.Members {
		t, err := m.transform(f)
		if err != nil {
			return nil, err
		}
		out.Members[i] = t
	}

	return out, nil
}

// Flatten returns every source of the tree in depth-first member order.
func (g Group) Flatten() []Source {
	return g.flatten(nil)
}

// Len returns the number of sources in the tree.
func (g Group) Len() int { return len(g.Flatten()) }

func (g Group) each(f func(Source) (Source, error)) (Group, error) {
	m, err := g.transform(f)
	if err != nil {
		return Group{}, err
	}

	return m.(Group), nil
}

// Move moves every source of the tree (see Path.Move).
func (g Group) Move(displacements []matrix.Vec3, start int) (Group, error) {
	return g.each(func(s Source) (Source, error) { return s.Move(displacements, start) })
}

// Rotate rotates every source of the tree (see Path.Rotate). With a nil
// anchor each source turns in place.
func (g Group) Rotate(rotations []frame.Rotation, anchor *matrix.Vec3, start int) (Group, error) {
	return g.each(func(s Source) (Source, error) { return s.Rotate(rotations, anchor, start) })
}
