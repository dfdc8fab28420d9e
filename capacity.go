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

import "github.com/sirupsen/logrus"

// CalculateWtdVol calculates how much water each depression can hold:
// its above-ground volume plus the unfilled below-ground storage of its
// cells and of all of its descendants. It must run after
// MoveWaterIntoPits, which changes the water table.
func CalculateWtdVol() DomainManipulator {
	return func(d *Domain) error {
		g, h := d.Grid, d.Deps
		own := make([]float64, h.Len())
		for i := 0; i < g.Len(); i++ {
			l := g.Label[i]
			if l == Ocean {
				continue
			}
			if g.WTD[i] > 0 {
				d.Log.WithFields(logrus.Fields{"cell": i, "wtd": g.WTD[i]}).
					Debug("fillspill: clamped standing water before capacity calculation")
				g.WTD[i] = 0
			}
			own[l] -= g.WTD[i] * g.Area(i)
		}
		post, err := h.postOrder()
		if err != nil {
			return err
		}
		for _, id := range post {
			if id == Ocean {
				continue
			}
			dep := h.At(id)
			dep.WtdOnly = own[id]
			if !h.IsLeaf(id) {
				dep.WtdOnly += h.At(dep.LChild).WtdOnly + h.At(dep.RChild).WtdOnly
			}
			dep.WtdVol = dep.DepVol + dep.WtdOnly
			if dep.WtdVol < dep.DepVol {
				dep.WtdVol = dep.DepVol
			}
			if !h.IsLeaf(id) {
				for _, c := range []int{dep.LChild, dep.RChild} {
					if cv := h.At(c).WtdVol; dep.WtdVol < cv {
						dep.WtdVol = cv
					}
				}
			}
		}
		return nil
	}
}
