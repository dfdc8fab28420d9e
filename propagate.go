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

// MoveWaterInDepHier visits the hierarchy bottom-up and moves water
// that exceeds a depression's capacity into the depressions it
// overflows into, or into the ocean.
func MoveWaterInDepHier() DomainManipulator {
	return func(d *Domain) error {
		post, err := d.Deps.postOrder()
		if err != nil {
			return err
		}
		for _, id := range post {
			if err := d.settle(id); err != nil {
				return err
			}
		}
		return nil
	}
}

// settle resolves the overflow of depression id, whose descendants
// have already been settled.
func (d *Domain) settle(id int) error {
	if id == Ocean {
		return nil
	}
	h := d.Deps
	dep := h.At(id)
	h.merge(id)
	if dep.WaterVol < 0 {
		d.Log.WithFields(logrus.Fields{"depression": id, "water": dep.WaterVol}).
			Debug("fillspill: clamped negative water volume")
		dep.WaterVol = 0
	}
	if dep.WaterVol > dep.WtdVol {
		extra := dep.WaterVol - dep.WtdVol
		dep.WaterVol = dep.WtdVol
		if dep.ODep == Ocean {
			d.Budget.ToOcean += extra
		} else {
			target := dep.Geolink
			if target == NoValue {
				target = dep.ODep
			}
			if target == NoValue {
				target = dep.Parent
			}
			if _, err := d.overflowInto(target, id, dep.Parent, extra, 0); err != nil {
				return err
			}
		}
	}
	h.mergeUp(id)
	if dep.WaterVol > dep.WtdVol+FPError {
		return invariantErr("MoveWaterInDepHier", id, NoValue,
			"water volume %g exceeds capacity %g after overflow", dep.WaterVol, dep.WtdVol)
	}
	return nil
}
