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
	"fmt"
	"runtime"

	"github.com/sirupsen/logrus"
)

// Params holds the read-only settings of a simulation.
type Params struct {
	// Transit calculates losses while water moves across cells.
	// If nil, water moves without losses.
	Transit TransitLoss

	// Log receives progress information. If nil, the standard
	// logrus logger is used.
	Log logrus.FieldLogger

	// Workers is the number of goroutines used for per-cell work.
	// If < 1, runtime.GOMAXPROCS(0) is used.
	Workers int
}

func (p Params) workers() int {
	if p.Workers < 1 {
		return runtime.GOMAXPROCS(0)
	}
	return p.Workers
}

// Domain holds the current state of the model.
type Domain struct {
	Grid *Grid
	Deps *Hierarchy

	Params

	// Budget is the mass balance of the most recent cycle.
	Budget Budget

	// Stats holds traversal counts for the most recent cycle.
	Stats Stats

	// jump memoizes where overflow passing through a saturated
	// depression ends up.
	jump map[int]jumpEntry

	// cycle is the number of completed cycles.
	cycle int

	// InitFuncs are run once when the domain is initialized.
	InitFuncs []DomainManipulator

	// RunFuncs are run repeatedly, once per cycle, until Done is true.
	RunFuncs []DomainManipulator

	// CleanupFuncs are run after the last cycle.
	CleanupFuncs []DomainManipulator

	// Done specifies whether the simulation is finished.
	Done bool
}

// Stats holds counts of the work done while redistributing overflow.
type Stats struct {
	OverflowSteps int // depressions visited by the redistribution engine
	Jumps         int // visits that followed the jump table
	RoutedCells   int // cells crossed by the physical overflow router
}

// DomainManipulator is a class of functions that operate on the entire model domain.
type DomainManipulator func(d *Domain) error

// NewDomain returns a domain for grid g and hierarchy h.
func NewDomain(g *Grid, h *Hierarchy, p Params) *Domain {
	if p.Log == nil {
		p.Log = logrus.StandardLogger()
	}
	return &Domain{
		Grid:   g,
		Deps:   h,
		Params: p,
		jump:   make(map[int]jumpEntry),
	}
}

// Init initializes the simulation by running d.InitFuncs.
func (d *Domain) Init() error {
	if d.Log == nil {
		d.Log = logrus.StandardLogger()
	}
	if d.jump == nil {
		d.jump = make(map[int]jumpEntry)
	}
	for _, f := range d.InitFuncs {
		if err := f(d); err != nil {
			return err
		}
	}
	return nil
}

// Run carries out the simulation by running d.RunFuncs until d.Done is
// true, and then runs d.CleanupFuncs.
func (d *Domain) Run() error {
	for !d.Done {
		for _, f := range d.RunFuncs {
			if err := f(d); err != nil {
				return err
			}
		}
		d.cycle++
	}
	for _, f := range d.CleanupFuncs {
		if err := f(d); err != nil {
			return err
		}
	}
	return nil
}

// Cycles returns the number of completed cycles.
func (d *Domain) Cycles() int { return d.cycle }

// DefaultRunFuncs returns the stages of one fill-spill-merge cycle in
// the order they must run.
func DefaultRunFuncs() []DomainManipulator {
	return []DomainManipulator{
		StartBudget(),
		Log("reset depressions", ResetDepressions()),
		Log("moved water into pits", MoveWaterIntoPits()),
		Log("calculated storage capacity", CalculateWtdVol()),
		Log("moved water through the hierarchy", MoveWaterInDepHier()),
		ClampChildren(),
		CheckInvariants(),
		Log("filled depressions", FindDepressionsToFill()),
		FinishBudget(),
	}
}

// FillSpillMerge runs numCycles fill-spill-merge cycles on g and h. Water
// to be distributed is supplied as g.SurfaceWater or as positive g.WTD.
func FillSpillMerge(g *Grid, h *Hierarchy, p Params, numCycles int) (*Domain, error) {
	if numCycles < 1 {
		numCycles = 1
	}
	d := NewDomain(g, h, p)
	d.InitFuncs = []DomainManipulator{ValidateInputs()}
	d.RunFuncs = append(DefaultRunFuncs(), CycleLimit(numCycles))
	if err := d.Init(); err != nil {
		return nil, err
	}
	if err := d.Run(); err != nil {
		return d, err
	}
	return d, nil
}

// ValidateInputs checks that the grid and hierarchy are consistent with
// each other.
func ValidateInputs() DomainManipulator {
	return func(d *Domain) error {
		if d.Grid == nil || d.Deps == nil {
			return fmt.Errorf("fillspill: grid and hierarchy must both be set")
		}
		g, h := d.Grid, d.Deps
		if err := g.Validate(); err != nil {
			return err
		}
		n := h.Len()
		for i := 0; i < g.Len(); i++ {
			if g.Label[i] >= n || g.FinalLabel[i] >= n {
				return fmt.Errorf("fillspill: cell %d has label %d outside of the hierarchy",
					i, g.Label[i])
			}
		}
		for id := 1; id < n; id++ {
			dep := h.At(id)
			if dep.PitCell < 0 || dep.PitCell >= g.Len() {
				return fmt.Errorf("fillspill: depression %d has pit cell %d outside of the grid",
					id, dep.PitCell)
			}
			if dep.OutCell != NoValue && (dep.OutCell < 0 || dep.OutCell >= g.Len()) {
				return fmt.Errorf("fillspill: depression %d has outlet cell %d outside of the grid",
					id, dep.OutCell)
			}
		}
		return nil
	}
}
