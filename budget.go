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

import "gonum.org/v1/gonum/floats"

// Budget is the water mass balance of a single cycle. All values are
// volumes [m³].
type Budget struct {
	Initial float64 // water content of the grid before the cycle
	Final   float64 // water content of the grid after the cycle

	Injected    float64 // surface water and standing water routed this cycle
	Infiltrated float64 // water that infiltrated while in transit
	Evaporated  float64 // water that evaporated while in transit
	ToOcean     float64 // water discarded into the ocean
}

// Residual returns the amount of water created (> 0) or destroyed
// (< 0) during the cycle. It is zero up to floating point error.
func (b Budget) Residual() float64 {
	return b.Final + b.Evaporated + b.ToOcean - b.Initial
}

// WaterContent returns the volume of water held by the grid, counting
// surface water, standing water and the (negative) unfilled storage
// of land cells. Ocean cells only count surface and standing water,
// because whatever reaches them is discarded.
func WaterContent(g *Grid) float64 {
	depth := make([]float64, g.Len())
	area := make([]float64, g.Len())
	for i := range depth {
		w := g.WTD[i]
		if g.Label[i] == Ocean && w < 0 {
			w = 0
		}
		depth[i] = w + g.SurfaceWater[i]
		area[i] = g.Area(i)
	}
	return floats.Dot(depth, area)
}
