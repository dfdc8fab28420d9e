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

// moveWaterInOverflow walks vol [m³] of water, which has already been
// credited to depression to, from the outlet of depression from down
// the flow path into to. Water infiltrating along the way fills the
// water table of the cells it crosses, which reduces the storage
// capacity of to and of its ancestors by the same amount. Evaporated
// water leaves the system.
func (d *Domain) moveWaterInOverflow(from, to int, vol float64) {
	g, h := d.Grid, d.Deps
	start := h.At(from).OutCell
	if from == Ocean || start < 0 || start >= g.Len() || vol <= 0 {
		return
	}
	members := h.Subdepressions(to)
	inTo := func(c int) bool {
		_, ok := members[g.Label[c]]
		return ok
	}

	// Enter through the lowest neighbor of the outlet that belongs to
	// the receiving depression.
	cur := NoValue
	for dir := FlowDir(1); dir <= 8; dir++ {
		nb, ok := g.Neighbor(start, dir)
		if !ok || !inTo(nb) {
			continue
		}
		if cur == NoValue || g.Topo[nb] < g.Topo[cur] {
			cur = nb
		}
	}
	if cur == NoValue {
		return
	}

	dep := h.At(to)
	prev := start
	for steps := 0; vol > 0 && steps < g.Len(); steps++ {
		if !inTo(cur) {
			return
		}
		next, ok := g.Downslope(cur)
		distance := g.Distance(prev, cur)
		if ok {
			distance += g.Distance(cur, next)
		}
		area := g.Area(cur)
		rest, inf, evap := d.applyLoss(cur, distance, vol/area)
		infVol := inf * area
		vol = rest * area
		dep.WaterVol -= infVol + evap*area
		if dep.WaterVol < 0 {
			dep.WaterVol = 0
		}
		if infVol > 0 {
			h.ancestors(g.Label[cur], func(a *Depression) {
				a.WtdVol -= infVol
				a.WtdOnly -= infVol
				if a.WtdVol < a.DepVol {
					a.WtdVol = a.DepVol
				}
				if a.WtdOnly < 0 {
					a.WtdOnly = 0
				}
			})
		}
		d.Stats.RoutedCells++
		if !ok || g.Topo[next] > g.Topo[cur] {
			return
		}
		prev, cur = cur, next
	}
}
