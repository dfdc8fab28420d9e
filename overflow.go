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

// jumpEntry records where overflow passing through a saturated
// depression last came to rest, and which depression handed it over.
type jumpEntry struct {
	to, from int
}

// overflowInto adds extra [m³] of water arriving from depression prev
// to depression root. Water that root cannot hold moves on to the
// depression root overflows into, or to root's parent, until it is
// absorbed, reaches the ocean, or reaches stop, which keeps whatever
// arrives. It returns the depression where the water came to rest.
func (d *Domain) overflowInto(root, prev, stop int, extra float64, depth int) (jumpEntry, error) {
	const op = "overflowInto"
	h := d.Deps
	d.Stats.OverflowSteps++
	if depth > 4*h.Len()+8 {
		return jumpEntry{}, invariantErr(op, root, NoValue, "overflow from %d did not come to rest", prev)
	}
	if root == NoValue {
		return jumpEntry{}, invariantErr(op, prev, NoValue, "overflow has no destination")
	}
	if root == Ocean {
		d.Budget.ToOcean += extra
		return jumpEntry{Ocean, prev}, nil
	}
	dep := h.At(root)

	// Water can only be held at this level once the children are full.
	if !h.childrenSaturated(root) {
		return d.overflowInto(h.descend(root), prev, stop, extra, depth+1)
	}

	if root == stop {
		h.merge(root)
		room := dep.WtdVol - dep.WaterVol
		dep.WaterVol += extra
		if h.IsLeaf(root) && room > 0 && dep.WtdVol > dep.DepVol {
			if extra < room {
				room = extra
			}
			d.moveWaterInOverflow(prev, root, room)
		}
		return jumpEntry{root, prev}, nil
	}

	if e, ok := d.jump[root]; ok && e.to != root && h.Saturated(root) {
		d.Stats.Jumps++
		t, err := d.overflowInto(e.to, e.from, stop, extra, depth+1)
		if err != nil {
			return t, err
		}
		d.jump[root] = t
		return t, nil
	}

	h.merge(root)
	if !h.Saturated(root) {
		room := dep.WtdVol - dep.WaterVol
		if extra < room {
			dep.WaterVol += extra
			if h.IsLeaf(root) && dep.WtdVol > dep.DepVol {
				d.moveWaterInOverflow(prev, root, extra)
			}
			return jumpEntry{root, prev}, nil
		}
		dep.WaterVol = dep.WtdVol
		extra -= room
		h.mergeUp(root)
	}
	if extra <= 0 {
		return jumpEntry{root, prev}, nil
	}

	next := dep.Parent
	switch {
	case dep.ODep == Ocean:
		next = Ocean
	case dep.ODep != NoValue && !h.Saturated(dep.ODep):
		next = dep.Geolink
		if next == NoValue {
			next = dep.ODep
		}
	}
	t, err := d.overflowInto(next, root, stop, extra, depth+1)
	if err != nil {
		return t, err
	}
	d.jump[root] = t
	return t, nil
}

// descend returns the first depression at or below id that can hold
// water at its own level: a leaf, or a depression whose children are
// both full.
func (h *Hierarchy) descend(id int) int {
	for !h.childrenSaturated(id) {
		dep := h.At(id)
		if !h.Saturated(dep.LChild) {
			id = dep.LChild
		} else {
			id = dep.RChild
		}
	}
	return id
}
