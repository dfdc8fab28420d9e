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

// Package manning provides a transit loss model for sheet flow, where
// the travel time across a cell follows Manning's equation and the
// water depth shrinks at a constant rate by infiltration and
// evaporation while it travels.
package manning

import (
	"math"

	"github.com/spatialmodel/fillspill"
)

// Manning calculates transit losses for overland sheet flow.
type Manning struct {
	N        float64 // Manning's roughness coefficient [s/m^(1/3)]
	MinSlope float64 // slope used for flatter cells [fraction]
}

// Default returns the parameters used for natural land surfaces.
func Default() Manning {
	return Manning{N: 0.05, MinSlope: 1e-6}
}

// Loss implements fillspill.TransitLoss.
//
// With velocity v = h^(2/3)·√s/n and depth decreasing at rate k+e, a
// sheet of initial depth h0 has depth h after travelling x where
// h^(5/3) = h0^(5/3) − (k+e)·x·(n/√s)·(5/3).
func (m Manning) Loss(g *fillspill.Grid, c int, distance, h0 float64) (infiltration, evaporation float64) {
	k, e := g.Ksat[c], g.SurfaceEvap[c]
	rate := k + e
	if h0 <= 0 || distance <= 0 || rate <= 0 {
		return 0, 0
	}
	n := m.N
	if n <= 0 {
		n = Default().N
	}
	slope := math.Max(g.Slope[c], m.MinSlope)
	if slope <= 0 {
		slope = Default().MinSlope
	}
	resistance := n / math.Sqrt(slope) * 5. / 3.

	bracket := math.Pow(h0, 5./3.) - rate*distance*resistance
	if bracket <= 0 {
		// All of the water is lost before it crosses the cell.
		infiltration = h0 / rate * k
		evaporation = h0 / rate * e
	} else {
		dt := (h0 - math.Pow(bracket, 3./5.)) / rate
		infiltration = k * dt
		evaporation = e * dt
	}

	capacity := math.Max(-g.WTD[c], 0)
	if infiltration <= capacity {
		return infiltration, evaporation
	}

	// The water table reaches the surface before the water leaves the
	// cell. Only evaporation continues over the rest of the distance.
	infiltration = capacity
	ts := capacity / k
	h1 := h0 - rate*ts
	evaporation = e * ts
	if e <= 0 || h1 <= 0 {
		return infiltration, evaporation
	}
	remaining := distance - (math.Pow(h0, 5./3.)-math.Pow(h1, 5./3.))/(rate*resistance)
	if remaining <= 0 {
		return infiltration, evaporation
	}
	bracket = math.Pow(h1, 5./3.) - e*remaining*resistance
	if bracket > 0 && !math.IsInf(bracket, 0) {
		evaporation += h1 - math.Pow(bracket, 3./5.)
	} else {
		evaporation += h1
	}
	return infiltration, evaporation
}
