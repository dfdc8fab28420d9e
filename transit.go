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

// TransitLoss calculates how much of a sheet of water of depth h0 [m]
// infiltrates into and evaporates from cell while travelling distance
// [m] across it. Both returned values are depths [m].
type TransitLoss interface {
	Loss(g *Grid, cell int, distance, h0 float64) (infiltration, evaporation float64)
}

// NoLoss is a TransitLoss where water moves without losses.
type NoLoss struct{}

// Loss implements TransitLoss.
func (NoLoss) Loss(*Grid, int, float64, float64) (float64, float64) { return 0, 0 }

// clampLoss limits the losses so that infiltration does not exceed
// the cell's remaining below-ground capacity and the losses together do
// not exceed the available water.
func clampLoss(inf, evap, h0, wtd float64) (float64, float64) {
	if math.IsNaN(inf) || inf < 0 {
		inf = 0
	}
	if math.IsNaN(evap) || evap < 0 {
		evap = 0
	}
	inf = math.Min(inf, math.Max(-wtd, 0))
	inf = math.Min(inf, h0)
	evap = math.Min(evap, h0-inf)
	return inf, evap
}

// applyLoss removes the transit losses for water of depth h crossing
// distance of cell c. Infiltration is added to the cell's water table.
// It returns the remaining depth and the losses.
func (d *Domain) applyLoss(c int, distance, h float64) (rest, inf, evap float64) {
	if h <= 0 || d.Transit == nil {
		return h, 0, 0
	}
	g := d.Grid
	inf, evap = d.Transit.Loss(g, c, distance, h)
	inf, evap = clampLoss(inf, evap, h, g.WTD[c])
	g.WTD[c] += inf
	if g.WTD[c] > 0 {
		g.WTD[c] = 0
	}
	area := g.Area(c)
	d.Budget.Infiltrated += inf * area
	d.Budget.Evaporated += evap * area
	return h - inf - evap, inf, evap
}
