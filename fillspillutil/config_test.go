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

package fillspillutil

import (
	"testing"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/fillspill"
	"github.com/spatialmodel/fillspill/science/transit/manning"
)

func TestGeometryConfig(t *testing.T) {
	t.Run("projected", func(t *testing.T) {
		cfg := viper.New()
		cfg.Set("Geometry.CellsPerDegree", 0.0)
		cfg.Set("Geometry.Dx", "10") // as set from an environment variable
		cfg.Set("Geometry.Dy", 20.0)
		geometry, err := GeometryConfig(cfg)
		if err != nil {
			t.Fatal(err)
		}
		g := geometry(3)
		if g.CellArea[2] != 200 || g.CellsizeNS != 20 || g.CellsizeEW[0] != 10 {
			t.Errorf("wrong geometry: %+v", g)
		}
	})
	t.Run("geographic", func(t *testing.T) {
		cfg := viper.New()
		cfg.Set("Geometry.CellsPerDegree", 120.0)
		cfg.Set("Geometry.SouthernEdge", 45.0)
		geometry, err := GeometryConfig(cfg)
		if err != nil {
			t.Fatal(err)
		}
		want := fillspill.NewLatLonGeometry(4, 120, 45)
		g := geometry(4)
		for j := range want.CellArea {
			if g.CellArea[j] != want.CellArea[j] {
				t.Errorf("row %d: area %g; want %g", j, g.CellArea[j], want.CellArea[j])
			}
		}
	})
	t.Run("invalid", func(t *testing.T) {
		for _, set := range []map[string]interface{}{
			{"Geometry.Dx": 0.0, "Geometry.Dy": 1.0},
			{"Geometry.Dx": "wide", "Geometry.Dy": 1.0},
			{"Geometry.CellsPerDegree": 1.0, "Geometry.SouthernEdge": 100.0},
		} {
			cfg := viper.New()
			for k, v := range set {
				cfg.Set(k, v)
			}
			if _, err := GeometryConfig(cfg); err == nil {
				t.Errorf("%v: expected an error", set)
			}
		}
	})
}

func TestTransitConfig(t *testing.T) {
	cfg := viper.New()
	cfg.Set("Transit.Model", "Manning")
	cfg.Set("Transit.ManningsN", 0.1)
	cfg.Set("Transit.MinSlope", 0.0)
	tl, err := TransitConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	m, ok := tl.(manning.Manning)
	if !ok {
		t.Fatalf("have %T; want manning.Manning", tl)
	}
	if m.N != 0.1 || m.MinSlope != manning.Default().MinSlope {
		t.Errorf("wrong parameters: %+v", m)
	}

	cfg.Set("Transit.Model", "none")
	if tl, err = TransitConfig(cfg); err != nil {
		t.Fatal(err)
	}
	if _, ok := tl.(fillspill.NoLoss); !ok {
		t.Errorf("have %T; want fillspill.NoLoss", tl)
	}

	cfg.Set("Transit.Model", "darcy")
	if _, err = TransitConfig(cfg); err == nil {
		t.Error("expected an error for an unknown model")
	}
}

func TestCheckLogFile(t *testing.T) {
	if have, want := checkLogFile("", "dir/out.nc"), "dir/out.log"; have != want {
		t.Errorf("have %s, want %s", have, want)
	}
	if have, want := checkLogFile("run.log", "dir/out.nc"), "run.log"; have != want {
		t.Errorf("have %s, want %s", have, want)
	}
}
