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
	"gonum.org/v1/gonum/floats"
)

// MoveWaterIntoPits moves standing water and surface water downslope
// along the flow directions until it reaches a pit, where it is added
// to the pit's depression, or an ocean cell, where it is discarded.
// Water loses some of its volume to infiltration and evaporation as it
// travels.
func MoveWaterIntoPits() DomainManipulator {
	return func(d *Domain) error {
		g, h := d.Grid, d.Deps
		n := g.Len()

		// Convert standing water into surface water and count how
		// many neighbors drain into each cell.
		injected := make([]float64, d.workers())
		deps := make([]int32, n)
		d.Calculations(func(pp, ii int) {
			if g.WTD[ii] > 0 {
				g.SurfaceWater[ii] += g.WTD[ii]
				g.WTD[ii] = 0
			}
			injected[pp] += g.SurfaceWater[ii] * g.Area(ii)
			for dir := FlowDir(1); dir <= 8; dir++ {
				nb, ok := g.Neighbor(ii, dir)
				if ok && g.FlowDirs[nb] == d8inverse[dir] {
					deps[ii]++
				}
			}
		})
		d.Budget.Injected += floats.Sum(injected)

		// Visit the cells so that every cell is processed after all of
		// the cells that drain into it.
		q := make([]int, 0, n)
		for i, c := range deps {
			if c == 0 {
				q = append(q, i)
			}
		}
		for head := 0; head < len(q); head++ {
			c := q[head]
			area := g.Area(c)
			if g.Label[c] == Ocean {
				d.Budget.ToOcean += g.SurfaceWater[c] * area
				g.SurfaceWater[c] = 0
			}
			nb, ok := g.Downslope(c)
			if !ok {
				if g.Label[c] != Ocean && g.SurfaceWater[c] > 0 {
					h.At(g.Label[c]).WaterVol += g.SurfaceWater[c] * area
				}
				g.SurfaceWater[c] = 0
				continue
			}
			if sw := g.SurfaceWater[c]; sw > 0 {
				distance := g.Distance(c, nb)
				sw, _, _ = d.applyLoss(c, distance, sw)
				g.SurfaceWater[c] = 0
				if sw > 0 {
					sw = sw * area / g.Area(nb)
					if g.Label[nb] != Ocean {
						sw, _, _ = d.applyLoss(nb, distance, sw)
					}
					g.SurfaceWater[nb] += sw
				}
			}
			deps[nb]--
			if deps[nb] == 0 {
				q = append(q, nb)
			}
		}
		if len(q) != n {
			return invariantErr("MoveWaterIntoPits", NoValue, NoValue,
				"%d cells are part of a flow direction cycle", n-len(q))
		}
		return nil
	}
}
