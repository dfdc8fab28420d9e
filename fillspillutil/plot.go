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

	"github.com/spatialmodel/fillspill"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// waterDepth presents the standing water of a grid as a plotter.GridXYZ.
type waterDepth struct{ g *fillspill.Grid }

func (w waterDepth) Dims() (c, r int) { return w.g.Width, w.g.Height }
func (w waterDepth) X(c int) float64  { return float64(c) }
func (w waterDepth) Y(r int) float64  { return float64(r) }
func (w waterDepth) Z(c, r int) float64 {
	if d := w.g.WTD[w.g.Index(c, r)]; d > 0 {
		return d
	}
	return 0
}

// PlotWaterDepth saves a heat map of the standing water depth of g to
// file. The image format is chosen from the file extension.
func PlotWaterDepth(g *fillspill.Grid, file string) error {
	p, err := plot.New()
	if err != nil {
		return fmt.Errorf("fillspill: creating plot: %v", err)
	}
	p.Title.Text = "Standing water depth (m)"
	p.X.Label.Text = "column"
	p.Y.Label.Text = "row"

	data := waterDepth{g: g}
	max := 0.
	for i := 0; i < g.Len(); i++ {
		x, y := g.XY(i)
		if z := data.Z(x, y); z > max {
			max = z
		}
	}
	if max == 0 {
		max = 1
	}
	cm := moreland.ExtendedBlackBody()
	cm.SetMin(0)
	cm.SetMax(max)
	hm := plotter.NewHeatMap(data, cm.Palette(255))
	hm.Min, hm.Max = 0, max
	p.Add(hm)

	width := 6 * vg.Inch
	height := width * vg.Length(g.Height) / vg.Length(g.Width)
	if height < 2*vg.Inch {
		height = 2 * vg.Inch
	}
	if err := p.Save(width, height, file); err != nil {
		return fmt.Errorf("fillspill: saving plot: %v", err)
	}
	return nil
}
