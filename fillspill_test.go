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
	"io/ioutil"
	"math"
	"testing"

	"github.com/sirupsen/logrus"
)

// different returns true if the relative difference between a and b
// is greater than tolerance.
func different(a, b, tolerance float64) bool {
	if a == b {
		return false
	}
	return 2*math.Abs(a-b)/math.Abs(a+b) > tolerance
}

func absDifferent(a, b, tolerance float64) bool {
	return math.Abs(a-b) > tolerance
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.Out = ioutil.Discard
	return l
}

func newDep(id int) Depression {
	return Depression{
		Label:   id,
		Parent:  NoValue,
		LChild:  NoValue,
		RChild:  NoValue,
		Geolink: NoValue,
		ODep:    NoValue,
		PitCell: NoValue,
		OutCell: NoValue,
	}
}

// singleBasin returns a 5×1 grid with an ocean cell on the west edge
// and one depression (1) whose outlet at cell 1 is 4 m high:
//
//	cell:   0  1  2  3  4
//	topo:   0  4  1  2  6
//	label:  0  1  1  1  1
//
// The depression holds 5 m³ below its outlet.
func singleBasin() (*Grid, []Depression) {
	g := NewGrid(5, 1)
	copy(g.Topo, []float64{0, 4, 1, 2, 6})
	copy(g.Label, []int{0, 1, 1, 1, 1})
	copy(g.FinalLabel, []int{0, 1, 1, 1, 1})
	copy(g.FlowDirs, []FlowDir{NoFlow, 5, NoFlow, 1, 1})

	deps := []Depression{newDep(0), newDep(1)}
	deps[0].OceanLinked = []int{1}
	deps[1].Parent = Ocean
	deps[1].Geolink = Ocean
	deps[1].ODep = Ocean
	deps[1].PitCell = 2
	deps[1].OutCell = 1
	deps[1].OutElev = 4
	deps[1].DepVol = 5
	return g, deps
}

// twoSiblings returns a 6×1 grid with two leaf depressions, A (1) and
// B (2), separated by a 3 m saddle, which merge into depression 3 that
// spills into the ocean over a 5 m rim:
//
//	cell:   0  1  2  3  4  5
//	topo:   0  5  1  3  2  9
//	label:  0  2  2  1  1  1
//
// A holds 1 m³, B holds 2 m³ and the merged depression holds 9 m³.
func twoSiblings() (*Grid, []Depression) {
	g := NewGrid(6, 1)
	copy(g.Topo, []float64{0, 5, 1, 3, 2, 9})
	copy(g.Label, []int{0, 2, 2, 1, 1, 1})
	copy(g.FinalLabel, []int{0, 3, 3, 3, 3, 3})
	copy(g.FlowDirs, []FlowDir{NoFlow, 5, NoFlow, 5, NoFlow, 1})

	deps := []Depression{newDep(0), newDep(1), newDep(2), newDep(3)}
	deps[0].OceanLinked = []int{3}

	a := &deps[1]
	a.Parent, a.Geolink, a.ODep = 3, 2, 2
	a.PitCell, a.OutCell, a.OutElev, a.DepVol = 4, 3, 3, 1

	b := &deps[2]
	b.Parent, b.Geolink, b.ODep = 3, 1, 1
	b.PitCell, b.OutCell, b.OutElev, b.DepVol = 2, 2, 3, 2

	m := &deps[3]
	m.Parent, m.LChild, m.RChild, m.Geolink, m.ODep = Ocean, 1, 2, Ocean, Ocean
	m.PitCell, m.OutCell, m.OutElev, m.DepVol = 2, 1, 5, 9
	return g, deps
}

// oceanLinked returns a 10×1 grid where leaves A (1) and B (2) merge
// into M (4), which merges with leaf C (3) into T (6). T spills into
// the ocean over a 6 m rim. O (5) is a basin perched above T that
// spills over a 7 m rim into C without merging with it:
//
//	cell:   0  1  2  3  4  5  6  7  8  9
//	topo:   0  6  1  3  2  4  2  7  3  7
//	label:  0  2  2  1  1  3  3  5  5  5
//
// A holds 1 m³, B 2 m³, C 2 m³, M 6 m³, T 18 m³ and O 4 m³.
func oceanLinked() (*Grid, []Depression) {
	g := NewGrid(10, 1)
	copy(g.Topo, []float64{0, 6, 1, 3, 2, 4, 2, 7, 3, 7})
	copy(g.Label, []int{0, 2, 2, 1, 1, 3, 3, 5, 5, 5})
	copy(g.FinalLabel, []int{0, 6, 6, 6, 6, 6, 6, 5, 5, 5})
	copy(g.FlowDirs, []FlowDir{NoFlow, 5, NoFlow, 5, NoFlow, 5, NoFlow, 5, NoFlow, 1})

	deps := make([]Depression, 7)
	for i := range deps {
		deps[i] = newDep(i)
	}
	deps[Ocean].OceanLinked = []int{6}

	a := &deps[1]
	a.Parent, a.Geolink, a.ODep = 4, 2, 2
	a.PitCell, a.OutCell, a.OutElev, a.DepVol = 4, 3, 3, 1

	b := &deps[2]
	b.Parent, b.Geolink, b.ODep = 4, 1, 1
	b.PitCell, b.OutCell, b.OutElev, b.DepVol = 2, 2, 3, 2

	c := &deps[3]
	c.Parent, c.Geolink, c.ODep = 6, 1, 4
	c.PitCell, c.OutCell, c.OutElev, c.DepVol = 6, 5, 4, 2

	m := &deps[4]
	m.Parent, m.LChild, m.RChild, m.Geolink, m.ODep = 6, 1, 2, 3, 3
	m.PitCell, m.OutCell, m.OutElev, m.DepVol = 2, 4, 4, 6

	o := &deps[5]
	o.Parent, o.OceanParent, o.Geolink, o.ODep = 6, true, 3, 3
	o.PitCell, o.OutCell, o.OutElev, o.DepVol = 8, 7, 7, 4

	top := &deps[6]
	top.Parent, top.LChild, top.RChild, top.Geolink, top.ODep = Ocean, 4, 3, Ocean, Ocean
	top.OceanLinked = []int{5}
	top.PitCell, top.OutCell, top.OutElev, top.DepVol = 2, 1, 6, 18
	return g, deps
}

func runCycle(t *testing.T, g *Grid, deps []Depression, p Params) *Domain {
	h, err := NewHierarchy(deps)
	if err != nil {
		t.Fatal(err)
	}
	if p.Log == nil {
		p.Log = quietLogger()
	}
	d, err := FillSpillMerge(g, h, p, 1)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func checkConservation(t *testing.T, d *Domain) {
	if r := d.Budget.Residual(); absDifferent(r, 0, 1e-9) {
		t.Errorf("water is not conserved: residual %g, budget %+v", r, d.Budget)
	}
}

// checkBounds checks that no cell holds standing water above the outlet
// of its top-level depression.
func checkBounds(t *testing.T, d *Domain) {
	g := d.Grid
	for i := 0; i < g.Len(); i++ {
		if g.Label[i] == Ocean || g.WTD[i] <= 0 {
			continue
		}
		out := d.Deps.At(g.FinalLabel[i]).OutElev
		if surface := g.Topo[i] + g.WTD[i]; surface > out+FPError {
			t.Errorf("cell %d: water surface %g is above outlet %g", i, surface, out)
		}
	}
}
