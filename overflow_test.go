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
	"testing"
)

// caterpillar returns a hierarchy where leaves 1 through k merge one
// at a time: depression k+1 merges leaves 1 and 2, depression k+2
// merges k+1 and leaf 3, and so on up to the top, 2k-1. Every
// depression is full except the top, which has room for 1 m³.
func caterpillar(t *testing.T, k int) *Hierarchy {
	n := 2 * k
	deps := make([]Depression, n)
	for i := range deps {
		deps[i] = newDep(i)
	}
	top := n - 1
	deps[Ocean].OceanLinked = []int{top}
	for i := 1; i <= k; i++ {
		deps[i].DepVol = 1
	}
	link := func(p, l, r int) {
		deps[p].LChild, deps[p].RChild = l, r
		deps[l].Parent, deps[r].Parent = p, p
		deps[l].ODep, deps[l].Geolink = r, r
		deps[r].ODep, deps[r].Geolink = l, l
		deps[p].DepVol = 10 * float64(p)
	}
	link(k+1, 1, 2)
	for j := 2; j < k; j++ {
		link(k+j, k+j-1, j+1)
	}
	deps[top].Parent = Ocean
	deps[top].ODep = Ocean
	deps[top].Geolink = Ocean

	h, err := NewHierarchy(deps)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < n; i++ {
		d := h.At(i)
		d.WaterVol = d.WtdVol
		h.merged[i] = true
	}
	h.At(top).WaterVol = h.At(top).WtdVol - 1
	return h
}

func TestOverflowJumpTable(t *testing.T) {
	for _, k := range []int{2, 5, 50} {
		h := caterpillar(t, k)
		if err := h.CheckInvariants(); err != nil {
			t.Fatal(err)
		}
		d := NewDomain(NewGrid(1, 1), h, Params{Log: quietLogger()})
		top := h.Len() - 1

		end, err := d.overflowInto(1, 2, NoValue, 0.5, 0)
		if err != nil {
			t.Fatal(err)
		}
		if end.to != top {
			t.Errorf("k=%d: water came to rest in %d; want %d", k, end.to, top)
		}
		if d.Stats.OverflowSteps != k {
			t.Errorf("k=%d: first overflow took %d steps; want %d", k, d.Stats.OverflowSteps, k)
		}
		if d.Stats.Jumps != 0 {
			t.Errorf("k=%d: first overflow jumped %d times", k, d.Stats.Jumps)
		}

		d.Stats = Stats{}
		end, err = d.overflowInto(1, 2, NoValue, 0.25, 0)
		if err != nil {
			t.Fatal(err)
		}
		if end.to != top {
			t.Errorf("k=%d: water came to rest in %d; want %d", k, end.to, top)
		}
		if d.Stats.OverflowSteps != 2 || d.Stats.Jumps != 1 {
			t.Errorf("k=%d: second overflow took %d steps and %d jumps; want 2 and 1",
				k, d.Stats.OverflowSteps, d.Stats.Jumps)
		}
		top_ := h.At(top)
		if absDifferent(top_.WtdVol-top_.WaterVol, 0.25, 1e-12) {
			t.Errorf("k=%d: top has room %g; want 0.25", k, top_.WtdVol-top_.WaterVol)
		}
		if err := h.CheckInvariants(); err != nil {
			t.Error(err)
		}
	}
}

func TestOverflowToOcean(t *testing.T) {
	h := caterpillar(t, 3)
	d := NewDomain(NewGrid(1, 1), h, Params{Log: quietLogger()})
	end, err := d.overflowInto(1, 2, NoValue, 3, 0)
	if err != nil {
		t.Fatal(err)
	}
	if end.to != Ocean {
		t.Errorf("water came to rest in %d; want the ocean", end.to)
	}
	if absDifferent(d.Budget.ToOcean, 2, 1e-12) {
		t.Errorf("ocean: have %g, want 2", d.Budget.ToOcean)
	}
	if !h.Saturated(h.Len() - 1) {
		t.Error("top depression should be full")
	}
}

func TestOverflowDescends(t *testing.T) {
	g, deps := twoSiblings()
	h, err := NewHierarchy(deps)
	if err != nil {
		t.Fatal(err)
	}
	d := NewDomain(g, h, Params{Log: quietLogger()})
	end, err := d.overflowInto(3, 2, 3, 0.5, 0)
	if err != nil {
		t.Fatal(err)
	}
	if end.to != 1 {
		t.Errorf("water came to rest in %d; want 1", end.to)
	}
	if w := h.At(1).WaterVol; absDifferent(w, 0.5, 1e-12) {
		t.Errorf("water in 1: have %g, want 0.5", w)
	}
	if w := h.At(3).WaterVol; w != 0 {
		t.Errorf("water in 3: have %g, want 0", w)
	}
}

func TestOverflowNoDestination(t *testing.T) {
	g, deps := twoSiblings()
	h, err := NewHierarchy(deps)
	if err != nil {
		t.Fatal(err)
	}
	d := NewDomain(g, h, Params{Log: quietLogger()})
	if _, err := d.overflowInto(NoValue, 1, 3, 1, 0); !IsInvariantError(err) {
		t.Errorf("expected an invariant error, have %v", err)
	}
}

// fixedLoss infiltrates a fixed depth in every cell.
type fixedLoss float64

func (f fixedLoss) Loss(*Grid, int, float64, float64) (float64, float64) {
	return float64(f), 0
}

func TestMoveWaterInOverflow(t *testing.T) {
	const tolerance = 1e-12
	g, deps := twoSiblings()
	g.WTD[3], g.WTD[4] = -0.5, -0.5
	h, err := NewHierarchy(deps)
	if err != nil {
		t.Fatal(err)
	}
	d := NewDomain(g, h, Params{Log: quietLogger(), Transit: fixedLoss(0.1)})
	if err := CalculateWtdVol()(d); err != nil {
		t.Fatal(err)
	}
	if v := h.At(1).WtdVol; absDifferent(v, 2, tolerance) {
		t.Fatalf("capacity of 1: have %g, want 2", v)
	}

	// Overflow from B enters A at cell 3 and runs down to the pit at
	// cell 4, infiltrating 0.1 m in each.
	if _, err := d.overflowInto(1, 2, 3, 1, 0); err != nil {
		t.Fatal(err)
	}
	a, m := h.At(1), h.At(3)
	for _, c := range []struct {
		name       string
		have, want float64
	}{
		{"WTD[3]", g.WTD[3], -0.4},
		{"WTD[4]", g.WTD[4], -0.4},
		{"A water", a.WaterVol, 0.8},
		{"A capacity", a.WtdVol, 1.8},
		{"A below ground", a.WtdOnly, 0.8},
		{"merged capacity", m.WtdVol, 9.8},
		{"infiltrated", d.Budget.Infiltrated, 0.2},
	} {
		if absDifferent(c.have, c.want, tolerance) {
			t.Errorf("%s: have %g, want %g", c.name, c.have, c.want)
		}
	}
	if d.Stats.RoutedCells != 2 {
		t.Errorf("routed through %d cells; want 2", d.Stats.RoutedCells)
	}
}

func TestConservationWithLosses(t *testing.T) {
	for _, loss := range []float64{0.01, 0.1, 0.3, 2} {
		g, deps := twoSiblings()
		copy(g.WTD, []float64{0, -0.2, -1, -0.5, -0.5, -2})
		g.SurfaceWater[5] = 4
		g.SurfaceWater[1] = 1
		d := runCycle(t, g, deps, Params{Transit: fixedLoss(loss)})
		checkConservation(t, d)
		checkBounds(t, d)
		if loss > 0 && d.Budget.Infiltrated <= 0 {
			t.Errorf("loss %g: expected some infiltration", loss)
		}
	}
}
