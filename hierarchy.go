/*
Copyright © 2018 the FillSpill authors.
This file is part of FillSpill.

FillSpill is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

FillSpill is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with FillSpill.  If not, see <http://www.gnu.org/licenses/>.
*/

package fillspill

import (
	"bufio"
	"fmt"
	"io"
	"math"
)

const (
	// Ocean is the id of the ocean sink, which has unbounded capacity.
	Ocean = 0

	// NoValue marks an absent link between depressions or cells.
	NoValue = -1

	// FPError is the tolerance for floating point comparisons of volumes.
	FPError = 1e-4
)

// Depression is a node in the depression hierarchy. Leaves are
// individual pits; internal nodes are meta-depressions formed when two
// depressions fill to their common outlet and merge.
type Depression struct {
	Label int // id of this depression; equal to its index in the hierarchy

	Parent         int // Ocean for top-level depressions
	LChild, RChild int // NoValue for leaves

	// Geolink is the leaf depression on the far side of this
	// depression's outlet, which receives its overflow.
	Geolink int

	// ODep is the depression this one overflows into, at the level of
	// the merge.
	ODep int

	// OceanLinked lists depressions whose overflow reaches the ocean,
	// or this depression, without merging with it.
	OceanLinked []int

	PitCell int     // lowest cell
	OutCell int     // outlet cell
	OutElev float64 // outlet elevation [m]

	// OceanParent is true when this depression's parent is an
	// ocean-link parent rather than a merge parent.
	OceanParent bool

	DepVol float64 // above-ground volume below the outlet [m³]

	// Per-cycle state.
	WtdVol   float64 `toml:"-"` // DepVol plus unfilled below-ground storage [m³]
	WaterVol float64 `toml:"-"` // water held by this depression and its descendants [m³]
	WtdOnly  float64 `toml:"-"` // below-ground part of WtdVol [m³]
}

// Hierarchy holds a depression hierarchy. The topology is fixed;
// only the per-cycle volumes change.
type Hierarchy struct {
	deps []Depression

	// merged records whether a node's children's water has been
	// credited to it in the current cycle.
	merged []bool

	post []int
	subs map[int]map[int]struct{}
}

// NewHierarchy creates a hierarchy from deps, where deps[i].Label == i
// and deps[0] is the ocean.
func NewHierarchy(deps []Depression) (*Hierarchy, error) {
	h := &Hierarchy{
		deps:   make([]Depression, len(deps)),
		merged: make([]bool, len(deps)),
		subs:   make(map[int]map[int]struct{}),
	}
	copy(h.deps, deps)
	for i := range h.deps {
		h.deps[i].OceanLinked = append([]int(nil), deps[i].OceanLinked...)
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}
	h.Reset()
	return h, nil
}

// At returns depression id.
func (h *Hierarchy) At(id int) *Depression { return &h.deps[id] }

// Len returns the number of depressions, including the ocean.
func (h *Hierarchy) Len() int { return len(h.deps) }

// IsLeaf returns whether depression id has no children.
func (h *Hierarchy) IsLeaf(id int) bool { return h.deps[id].LChild == NoValue }

// Saturated returns whether depression id holds as much water as it can
// store. The ocean is never saturated.
func (h *Hierarchy) Saturated(id int) bool {
	if id == Ocean {
		return false
	}
	d := &h.deps[id]
	return d.WaterVol >= d.WtdVol
}

// childrenSaturated returns true for leaves and for nodes whose
// children are both saturated.
func (h *Hierarchy) childrenSaturated(id int) bool {
	d := &h.deps[id]
	if d.LChild == NoValue {
		return true
	}
	return h.Saturated(d.LChild) && h.Saturated(d.RChild)
}

// isChildOf returns whether c is a merge child of p.
func (h *Hierarchy) isChildOf(c, p int) bool {
	if p == NoValue {
		return false
	}
	return h.deps[p].LChild == c || h.deps[p].RChild == c
}

// Reset clears the per-cycle state.
func (h *Hierarchy) Reset() {
	for i := range h.deps {
		d := &h.deps[i]
		h.merged[i] = false
		d.WaterVol = 0
		d.WtdOnly = 0
		if i == Ocean {
			d.DepVol = math.Inf(1)
			d.WtdVol = math.Inf(1)
			continue
		}
		d.WtdVol = d.DepVol
	}
}

// Validate checks that the topology is consistent.
func (h *Hierarchy) Validate() error {
	n := len(h.deps)
	if n == 0 {
		return fmt.Errorf("fillspill: hierarchy is empty")
	}
	ref := func(id, v int, field string) error {
		if v != NoValue && (v < 0 || v >= n) {
			return fmt.Errorf("fillspill: depression %d: %s %d is out of range", id, field, v)
		}
		return nil
	}
	for i := range h.deps {
		d := &h.deps[i]
		if d.Label != i {
			return fmt.Errorf("fillspill: depression at index %d has label %d", i, d.Label)
		}
		for _, r := range []struct {
			v    int
			name string
		}{{d.Parent, "parent"}, {d.LChild, "left child"}, {d.RChild, "right child"},
			{d.Geolink, "geolink"}, {d.ODep, "odep"}} {
			if err := ref(i, r.v, r.name); err != nil {
				return err
			}
		}
		for _, o := range d.OceanLinked {
			if err := ref(i, o, "ocean-linked depression"); err != nil {
				return err
			}
		}
		if i == Ocean {
			continue
		}
		if d.Parent == NoValue {
			return fmt.Errorf("fillspill: depression %d has no parent", i)
		}
		if (d.LChild == NoValue) != (d.RChild == NoValue) {
			return fmt.Errorf("fillspill: depression %d has exactly one child", i)
		}
		for _, c := range []int{d.LChild, d.RChild} {
			if c != NoValue && h.deps[c].Parent != i {
				return fmt.Errorf("fillspill: child %d of depression %d has parent %d",
					c, i, h.deps[c].Parent)
			}
		}
		if d.DepVol < 0 {
			return fmt.Errorf("fillspill: depression %d has negative volume", i)
		}
	}
	if h.deps[Ocean].LChild != NoValue {
		return fmt.Errorf("fillspill: the ocean cannot have children")
	}
	post, err := h.postOrder()
	if err != nil {
		return err
	}
	if len(post) != n {
		return fmt.Errorf("fillspill: %d of %d depressions are not reachable from the ocean",
			n-len(post), n)
	}
	return nil
}

// postOrder returns the depression ids ordered so that children and
// ocean-linked depressions come before the depression they belong to.
// The ocean is last.
func (h *Hierarchy) postOrder() ([]int, error) {
	if h.post != nil {
		return h.post, nil
	}
	type frame struct{ id, next int }
	seen := make([]bool, len(h.deps))
	seen[Ocean] = true
	var order []int
	stack := []frame{{id: Ocean}}
	for len(stack) > 0 {
		f := &stack[len(stack)-1]
		d := &h.deps[f.id]
		// Links are visited left child, right child, then the
		// ocean-linked depressions.
		if f.next == 2+len(d.OceanLinked) {
			order = append(order, f.id)
			stack = stack[:len(stack)-1]
			continue
		}
		var c int
		switch f.next {
		case 0:
			c = d.LChild
		case 1:
			c = d.RChild
		default:
			c = d.OceanLinked[f.next-2]
		}
		f.next++
		if c == NoValue {
			continue
		}
		if seen[c] {
			return nil, fmt.Errorf("fillspill: depression %d is reached twice from the ocean", c)
		}
		seen[c] = true
		stack = append(stack, frame{id: c})
	}
	h.post = order
	return order, nil
}

// Subdepressions returns the set containing id and all of its merge
// descendants.
func (h *Hierarchy) Subdepressions(id int) map[int]struct{} {
	if s, ok := h.subs[id]; ok {
		return s
	}
	s := make(map[int]struct{})
	stack := []int{id}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == NoValue {
			continue
		}
		s[n] = struct{}{}
		stack = append(stack, h.deps[n].LChild, h.deps[n].RChild)
	}
	h.subs[id] = s
	return s
}

// ancestors calls f for id and each of its merge ancestors, stopping
// at the top-level depression.
func (h *Hierarchy) ancestors(id int, f func(*Depression)) {
	for id != NoValue && id != Ocean {
		f(&h.deps[id])
		p := h.deps[id].Parent
		if !h.isChildOf(id, p) {
			return
		}
		id = p
	}
}

// merge credits the capacity of p's children to p the first time both
// are saturated. It returns whether a merge happened.
func (h *Hierarchy) merge(p int) bool {
	if p == Ocean || h.merged[p] || h.IsLeaf(p) || !h.childrenSaturated(p) {
		return false
	}
	h.merged[p] = true
	d := &h.deps[p]
	d.WaterVol += h.deps[d.LChild].WtdVol + h.deps[d.RChild].WtdVol
	return true
}

// mergeUp propagates the saturation of id to its ancestors.
func (h *Hierarchy) mergeUp(id int) {
	for h.Saturated(id) {
		p := h.deps[id].Parent
		if !h.isChildOf(id, p) || !h.merge(p) {
			return
		}
		id = p
	}
}

// CheckInvariants returns an *InvariantError if the volumes in the
// hierarchy are inconsistent by more than FPError.
func (h *Hierarchy) CheckInvariants() error {
	const op = "CheckInvariants"
	for i := range h.deps {
		if i == Ocean {
			continue
		}
		d := &h.deps[i]
		if d.WaterVol < -FPError {
			return invariantErr(op, i, NoValue, "negative water volume %g", d.WaterVol)
		}
		if d.WaterVol > d.WtdVol+FPError {
			return invariantErr(op, i, NoValue, "water volume %g exceeds capacity %g",
				d.WaterVol, d.WtdVol)
		}
		if d.WtdVol < d.DepVol-FPError {
			return invariantErr(op, i, NoValue, "capacity %g is less than depression volume %g",
				d.WtdVol, d.DepVol)
		}
		if d.LChild == NoValue {
			continue
		}
		for _, c := range []int{d.LChild, d.RChild} {
			cd := &h.deps[c]
			if cd.WtdVol > d.WtdVol+FPError {
				return invariantErr(op, i, NoValue, "child %d capacity %g exceeds parent capacity %g",
					c, cd.WtdVol, d.WtdVol)
			}
			if d.WaterVol > FPError && cd.WaterVol < cd.WtdVol-FPError {
				return invariantErr(op, i, NoValue, "holds water while child %d is not full", c)
			}
		}
	}
	return nil
}

// WriteDot writes the hierarchy in GraphViz format. Merge links are
// black and ocean links are blue.
func (h *Hierarchy) WriteDot(w io.Writer) error {
	b := bufio.NewWriter(w)
	fmt.Fprintln(b, "digraph {")
	for i := range h.deps {
		d := &h.deps[i]
		if i == Ocean {
			fmt.Fprintf(b, "\t%d [label=\"ocean\" shape=box];\n", i)
		} else {
			fmt.Fprintf(b, "\t%d [label=\"%d\\nvol=%.3g\\nwater=%.3g\"];\n",
				i, i, d.DepVol, d.WaterVol)
		}
		for _, c := range []int{d.LChild, d.RChild} {
			if c != NoValue {
				fmt.Fprintf(b, "\t%d -> %d;\n", i, c)
			}
		}
		for _, o := range d.OceanLinked {
			fmt.Fprintf(b, "\t%d -> %d [color=blue];\n", i, o)
		}
	}
	fmt.Fprintln(b, "}")
	return b.Flush()
}
