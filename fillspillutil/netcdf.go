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
	"fmt"
	"math"
	"os"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
	"github.com/spatialmodel/fillspill"
)

// GridFiles holds the locations of the NetCDF files with the gridded
// inputs. Each file must contain a two-dimensional variable, ordered
// [y, x] with the southernmost row first, named VarName. Topography,
// Labels, FinalLabels and FlowDirs are required; the other files are
// optional and default to zero.
type GridFiles struct {
	Topography   string
	WaterTable   string
	SurfaceWater string
	Ksat         string
	SurfaceEvap  string
	Slope        string
	Labels       string
	FinalLabels  string
	FlowDirs     string

	VarName string
}

// ReadGridVar reads the two-dimensional variable name from a NetCDF file.
func ReadGridVar(f cdf.ReaderWriterAt, name string) (*sparse.DenseArray, error) {
	cf, err := cdf.Open(f)
	if err != nil {
		return nil, fmt.Errorf("fillspill: opening NetCDF file: %v", err)
	}
	var found bool
	for _, v := range cf.Header.Variables() {
		if v == name {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("fillspill: NetCDF file does not contain variable %s", name)
	}
	dims := cf.Header.Lengths(name)
	if len(dims) != 2 {
		return nil, fmt.Errorf("fillspill: variable %s has %d dimensions; want 2", name, len(dims))
	}
	data := sparse.ZerosDense(dims...)
	r := cf.Reader(name, nil, nil)
	buf := r.Zero(len(data.Elements))
	if _, err = r.Read(buf); err != nil {
		return nil, fmt.Errorf("fillspill: reading variable %s: %v", name, err)
	}
	switch b := buf.(type) {
	case []float64:
		copy(data.Elements, b)
	case []float32:
		for i, v := range b {
			data.Elements[i] = float64(v)
		}
	case []int32:
		for i, v := range b {
			data.Elements[i] = float64(v)
		}
	case []int16:
		for i, v := range b {
			data.Elements[i] = float64(v)
		}
	case []uint8:
		for i, v := range b {
			data.Elements[i] = float64(v)
		}
	default:
		return nil, fmt.Errorf("fillspill: variable %s has unsupported type %T", name, buf)
	}
	return data, nil
}

// readGridFile reads variable name from the NetCDF file at path.
func readGridFile(path, name string) (*sparse.DenseArray, error) {
	f, err := os.Open(os.ExpandEnv(path))
	if err != nil {
		return nil, fmt.Errorf("fillspill: opening grid file: %v", err)
	}
	defer f.Close()
	data, err := ReadGridVar(f, name)
	if err != nil {
		return nil, fmt.Errorf("%v (file %s)", err, path)
	}
	return data, nil
}

// LoadGrid reads the grid inputs from files. geometry creates the
// cell geometry once the number of rows is known.
func LoadGrid(files GridFiles, geometry func(height int) *fillspill.Geometry) (*fillspill.Grid, error) {
	varName := files.VarName
	if varName == "" {
		varName = "value"
	}
	if files.Topography == "" {
		return nil, fmt.Errorf("fillspill: the Topography file must be specified")
	}
	topo, err := readGridFile(files.Topography, varName)
	if err != nil {
		return nil, err
	}
	g := fillspill.NewGrid(topo.Shape[1], topo.Shape[0])
	copy(g.Topo, topo.Elements)
	if geometry != nil {
		g.Geometry = geometry(g.Height)
	}

	read := func(name, path string, required bool, set func(i int, v float64)) error {
		if path == "" {
			if required {
				return fmt.Errorf("fillspill: the %s file must be specified", name)
			}
			return nil
		}
		data, err := readGridFile(path, varName)
		if err != nil {
			return err
		}
		if data.Shape[0] != g.Height || data.Shape[1] != g.Width {
			return fmt.Errorf("fillspill: grid file %s has shape %v; want [%d %d]",
				path, data.Shape, g.Height, g.Width)
		}
		for i, v := range data.Elements {
			set(i, v)
		}
		return nil
	}
	// Flow directions must be whole D8 codes.
	var dirErr error
	flowDir := func(i int, v float64) {
		if v < float64(fillspill.NoFlow) || v > 8 || v != math.Trunc(v) {
			if dirErr == nil {
				dirErr = fmt.Errorf("fillspill: cell %d has invalid flow direction %g", i, v)
			}
			return
		}
		g.FlowDirs[i] = fillspill.FlowDir(v)
	}
	for _, in := range []struct {
		name, path string
		required   bool
		set        func(i int, v float64)
	}{
		{"WaterTable", files.WaterTable, false, func(i int, v float64) { g.WTD[i] = v }},
		{"SurfaceWater", files.SurfaceWater, false, func(i int, v float64) { g.SurfaceWater[i] = v }},
		{"Ksat", files.Ksat, false, func(i int, v float64) { g.Ksat[i] = v }},
		{"SurfaceEvap", files.SurfaceEvap, false, func(i int, v float64) { g.SurfaceEvap[i] = v }},
		{"Slope", files.Slope, false, func(i int, v float64) { g.Slope[i] = v }},
		{"Labels", files.Labels, true, func(i int, v float64) { g.Label[i] = int(v) }},
		{"FinalLabels", files.FinalLabels, true, func(i int, v float64) { g.FinalLabel[i] = int(v) }},
		{"FlowDirs", files.FlowDirs, true, flowDir},
	} {
		if err := read(in.name, in.path, in.required, in.set); err != nil {
			return nil, err
		}
	}
	if dirErr != nil {
		return nil, dirErr
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// WriteNetCDF writes the water table depth (wtd) and the water surface
// elevation (flooded, wtd+topo where wtd > 0, topo elsewhere) of g to f.
func WriteNetCDF(f *os.File, g *fillspill.Grid) error {
	h := cdf.NewHeader([]string{"y", "x"}, []int{g.Height, g.Width})
	h.AddAttribute("", "comment", "FillSpill v"+fillspill.Version+" output")
	h.AddVariable("wtd", []string{"y", "x"}, []float64{0})
	h.AddAttribute("wtd", "description", "Water table depth; positive values are standing water")
	h.AddAttribute("wtd", "units", "m")
	h.AddVariable("flooded", []string{"y", "x"}, []float64{0})
	h.AddAttribute("flooded", "description", "Elevation of the land or water surface")
	h.AddAttribute("flooded", "units", "m")
	h.Define()

	cf, err := cdf.Create(f, h)
	if err != nil {
		return fmt.Errorf("fillspill: creating output file: %v", err)
	}
	flooded := make([]float64, g.Len())
	for i, w := range g.WTD {
		flooded[i] = g.Topo[i]
		if w > 0 {
			flooded[i] += w
		}
	}
	for _, v := range []struct {
		name string
		data []float64
	}{{"wtd", g.WTD}, {"flooded", flooded}} {
		end := cf.Header.Lengths(v.name)
		start := make([]int, len(end))
		w := cf.Writer(v.name, start, end)
		if _, err := w.Write(v.data); err != nil {
			return fmt.Errorf("fillspill: writing variable %s: %v", v.name, err)
		}
	}
	return cdf.UpdateNumRecs(f)
}
