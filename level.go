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

import "math"

// Subtree summarizes a full depression whose water will be spread by
// one of its ancestors.
type Subtree struct {
	Leaf   int   // leaf depression whose pit starts the flood
	Top    int   // highest depression in the summary
	Labels []int // depressions whose cells may be flooded
}

// FindDepressionsToFill finds the highest depressions that are not
// spilling into a parent that holds water, and spreads their water
// over their cells as a flat water surface.
func FindDepressionsToFill() DomainManipulator {
	return func(d *Domain) error {
		h := d.Deps
		post, err := h.postOrder()
		if err != nil {
			return err
		}
		pending := make([]*Subtree, h.Len())
		for _, id := range post {
			if id == Ocean {
				continue
			}
			dep := h.At(id)
			s := &Subtree{Leaf: NoValue, Top: id, Labels: []int{id}}
			if !h.IsLeaf(id) {
				for _, c := range []int{dep.LChild, dep.RChild} {
					cs := pending[c]
					if cs == nil {
						continue
					}
					s.Labels = append(s.Labels, cs.Labels...)
					if s.Leaf == NoValue {
						s.Leaf = cs.Leaf
					}
					pending[c] = nil
				}
			}
			if s.Leaf == NoValue {
				s.Leaf = id
			}
			var parentWater float64
			if dep.Parent != NoValue && dep.Parent != Ocean {
				parentWater = h.At(dep.Parent).WaterVol
			}
			if dep.WaterVol < dep.WtdVol || dep.OceanParent || parentWater <= 0 {
				if err := d.FillDepressions(s, dep.WaterVol); err != nil {
					return err
				}
				continue
			}
			pending[id] = s
		}
		return nil
	}
}

// FillDepressions spreads water [m³] over the cells of the depressions
// in s, starting from the pit of s.Leaf. Below-ground storage of each
// flooded cell is filled first; the remainder forms a flat surface at
// the level L where L·A − S equals the remaining water, with A the
// flooded area and S the sum of area times elevation.
func (d *Domain) FillDepressions(s *Subtree, water float64) error {
	const op = "FillDepressions"
	if water <= 0 {
		return nil
	}
	g, h := d.Grid, d.Deps
	members := make(map[int]struct{}, len(s.Labels))
	for _, l := range s.Labels {
		members[l] = struct{}{}
	}

	var flood, hold floodQueue
	seq := 0
	pit := h.At(s.Leaf).PitCell
	visited := map[int]struct{}{pit: {}}
	flood.push(floodCell{cell: pit, elev: g.Topo[pit], seq: seq})

	var area, areaElev float64
	maxElev := math.Inf(-1)
	var affected []int
	for flood.Len() > 0 {
		c := flood.pop()
		i := c.cell
		_, member := members[g.Label[i]]
		if member && g.WTD[i] > 0 {
			return invariantErr(op, s.Top, i, "cell of an unfilled depression holds %g m of standing water", g.WTD[i])
		}

		level := math.Max(c.elev, maxElev)
		vol := level*area - areaElev
		var room float64
		if member {
			room = -g.WTD[i] * g.Area(i)
		}
		// Water within FPError of the volume to this level is noise
		// from summing capacities in a different order.
		if water <= vol+room+FPError {
			var L float64
			switch {
			case vol < water && member:
				g.WTD[i] += (water - vol) / g.Area(i)
				L = level
			case vol == water:
				L = level
			default:
				L = (water + areaElev) / area
			}
			for _, a := range affected {
				if w := L - g.Topo[a]; w > g.WTD[a] {
					g.WTD[a] = w
				}
			}
			return nil
		}

		if member {
			affected = append(affected, i)
			water += g.WTD[i] * g.Area(i)
			g.WTD[i] = 0
			area += g.Area(i)
			areaElev += g.Area(i) * c.elev
			if c.elev > maxElev {
				maxElev = c.elev
			}
			for dir := FlowDir(1); dir <= 8; dir++ {
				nb, ok := g.Neighbor(i, dir)
				if !ok {
					continue
				}
				if _, ok := visited[nb]; ok {
					continue
				}
				visited[nb] = struct{}{}
				seq++
				fc := floodCell{cell: nb, elev: g.Topo[nb], seq: seq}
				if _, ok := members[g.Label[nb]]; ok {
					flood.push(fc)
				} else {
					hold.push(fc)
				}
			}
		}
		if flood.Len() == 0 && hold.Len() > 0 {
			flood.push(hold.pop())
		}
	}
	return invariantErr(op, s.Top, NoValue, "ran out of cells with %g m³ of water left", water)
}
