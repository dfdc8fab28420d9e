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

package manning

import (
	"math"
	"testing"

	"github.com/spatialmodel/fillspill"
)

func oneCell(ksat, evap, slope, wtd float64) *fillspill.Grid {
	g := fillspill.NewGrid(1, 1)
	g.Ksat[0] = ksat
	g.SurfaceEvap[0] = evap
	g.Slope[0] = slope
	g.WTD[0] = wtd
	return g
}

func absDifferent(a, b, tolerance float64) bool {
	return math.Abs(a-b) > tolerance
}

func TestLoss(t *testing.T) {
	m := Default()
	tests := []struct {
		name                   string
		ksat, evap, slope, wtd float64
		distance, h0           float64
		wantInf, wantEvap      float64
		checkWant              bool
	}{
		{name: "no losses", ksat: 0, evap: 0, slope: 0.01, wtd: -1, distance: 100, h0: 0.1,
			checkWant: true},
		{name: "no water", ksat: 1e-5, evap: 1e-7, slope: 0.01, wtd: -1, distance: 100, h0: 0,
			checkWant: true},
		{name: "exhausted", ksat: 1, evap: 1, slope: 1e-9, wtd: -10, distance: 1e6, h0: 0.01,
			wantInf: 0.005, wantEvap: 0.005, checkWant: true},
		{name: "partial", ksat: 1e-6, evap: 1e-8, slope: 0.01, wtd: -1, distance: 50, h0: 0.05},
		{name: "saturated", ksat: 1, evap: 1e-3, slope: 1e-9, wtd: -0.001, distance: 1e6, h0: 0.01},
		{name: "standing water", ksat: 1, evap: 0, slope: 0.1, wtd: 0, distance: 1e6, h0: 0.01,
			checkWant: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			g := oneCell(test.ksat, test.evap, test.slope, test.wtd)
			inf, evap := m.Loss(g, 0, test.distance, test.h0)
			if inf < 0 || evap < 0 {
				t.Errorf("negative loss: infiltration %g, evaporation %g", inf, evap)
			}
			if inf+evap > test.h0+1e-12 {
				t.Errorf("losses %g exceed depth %g", inf+evap, test.h0)
			}
			if inf > math.Max(-test.wtd, 0)+1e-12 {
				t.Errorf("infiltration %g exceeds storage %g", inf, -test.wtd)
			}
			if test.checkWant {
				if absDifferent(inf, test.wantInf, 1e-12) {
					t.Errorf("infiltration: have %g, want %g", inf, test.wantInf)
				}
				if absDifferent(evap, test.wantEvap, 1e-12) {
					t.Errorf("evaporation: have %g, want %g", evap, test.wantEvap)
				}
			}
		})
	}
}

func TestLossIncreasesWithDistance(t *testing.T) {
	m := Default()
	g := oneCell(1e-6, 1e-8, 0.001, -1)
	var last float64
	for _, distance := range []float64{1, 10, 100, 1000, 10000} {
		inf, evap := m.Loss(g, 0, distance, 0.02)
		if inf+evap < last {
			t.Errorf("distance %g: loss %g is less than loss %g at a shorter distance",
				distance, inf+evap, last)
		}
		last = inf + evap
	}
	if last <= 0 {
		t.Error("expected some loss")
	}
}

func TestSaturationLimitsInfiltration(t *testing.T) {
	m := Default()
	g := oneCell(1, 1e-3, 1e-9, -0.001)
	inf, evap := m.Loss(g, 0, 1e6, 0.01)
	if absDifferent(inf, 0.001, 1e-12) {
		t.Errorf("infiltration: have %g, want 0.001", inf)
	}
	if evap <= 0 {
		t.Errorf("evaporation should continue after the water table fills, have %g", evap)
	}
}
