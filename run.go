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
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Calculations concurrently runs f on every cell of the grid. The cells
// are striped across d.Workers goroutines and f receives the worker
// number along with the cell index, so that workers can accumulate
// results without locking.
func (d *Domain) Calculations(f func(worker, cell int)) {
	nprocs := d.workers()
	n := d.Grid.Len()
	var wg sync.WaitGroup
	wg.Add(nprocs)
	for pp := 0; pp < nprocs; pp++ {
		go func(pp int) {
			for ii := pp; ii < n; ii += nprocs {
				f(pp, ii)
			}
			wg.Done()
		}(pp)
	}
	wg.Wait()
}

// Log wraps f so that its wall time is logged at the Info level.
func Log(msg string, f DomainManipulator) DomainManipulator {
	return func(d *Domain) error {
		start := time.Now()
		err := f(d)
		d.Log.WithFields(logrus.Fields{
			"cycle":    d.cycle,
			"duration": time.Since(start),
			"cells":    d.Grid.Len(),
		}).Info("fillspill: " + msg)
		return err
	}
}

// CycleLimit sets d.Done after numCycles cycles have completed.
func CycleLimit(numCycles int) DomainManipulator {
	return func(d *Domain) error {
		if d.cycle+1 >= numCycles {
			d.Done = true
		}
		return nil
	}
}

// StartBudget records the water content of the grid and clears the
// per-cycle accounting.
func StartBudget() DomainManipulator {
	return func(d *Domain) error {
		d.Budget = Budget{Initial: WaterContent(d.Grid)}
		d.Stats = Stats{}
		d.jump = make(map[int]jumpEntry)
		return nil
	}
}

// FinishBudget records the final water content of the grid and logs
// the mass balance.
func FinishBudget() DomainManipulator {
	return func(d *Domain) error {
		d.Budget.Final = WaterContent(d.Grid)
		d.Log.WithFields(logrus.Fields{
			"cycle":       d.cycle,
			"injected":    d.Budget.Injected,
			"infiltrated": d.Budget.Infiltrated,
			"evaporated":  d.Budget.Evaporated,
			"ocean":       d.Budget.ToOcean,
			"residual":    d.Budget.Residual(),
			"steps":       d.Stats.OverflowSteps,
			"jumps":       d.Stats.Jumps,
		}).Info("fillspill: water budget")
		return nil
	}
}

// ResetDepressions clears the water and storage volumes of all
// depressions.
func ResetDepressions() DomainManipulator {
	return func(d *Domain) error {
		d.Deps.Reset()
		return nil
	}
}

// CheckInvariants returns an error if the depression volumes are
// inconsistent.
func CheckInvariants() DomainManipulator {
	return func(d *Domain) error {
		return d.Deps.CheckInvariants()
	}
}

// ClampChildren makes sure that no child depression reports more water
// than its parent once the parent holds water. Differences beyond
// FPError are an error.
func ClampChildren() DomainManipulator {
	return func(d *Domain) error {
		h := d.Deps
		for id := 1; id < h.Len(); id++ {
			dep := h.At(id)
			if h.IsLeaf(id) || dep.WaterVol <= 0 {
				continue
			}
			for _, c := range []int{dep.LChild, dep.RChild} {
				cd := h.At(c)
				excess := cd.WaterVol - dep.WaterVol
				if excess <= 0 {
					continue
				}
				if excess > FPError {
					return invariantErr("ClampChildren", c, NoValue,
						"holds %g m³ more water than its parent %d", excess, id)
				}
				d.Log.WithFields(logrus.Fields{"depression": c, "excess": excess}).
					Debug("fillspill: clamped child water volume")
				cd.WaterVol = dep.WaterVol
			}
		}
		return nil
	}
}
