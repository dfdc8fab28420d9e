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
	"math"
)

// FlowDir is a D8 flow direction. Values 1 through 8 index the
// neighbor offsets below, starting to the west and turning clockwise.
type FlowDir uint8

// NoFlow marks a cell that does not drain anywhere: a pit or an ocean cell.
const NoFlow FlowDir = 0

// D8 neighbor offsets, indexed by FlowDir.
var (
	d8x       = [9]int{0, -1, -1, 0, 1, 1, 1, 0, -1}
	d8y       = [9]int{0, 0, -1, -1, -1, 0, 1, 1, 1}
	d8inverse = [9]FlowDir{0, 5, 6, 7, 8, 1, 2, 3, 4}
)

// Grid holds the raster state that the fill-spill-merge cycle reads and
// modifies. All per-cell slices are row-major with index y*Width + x.
type Grid struct {
	Width, Height int

	Topo         []float64 // elevation [m]
	WTD          []float64 // water table depth [m]; > 0 is standing water
	SurfaceWater []float64 // transient surface water depth [m]
	Ksat         []float64 // hydraulic conductivity used for transit infiltration [m/s]
	SurfaceEvap  []float64 // surface evaporation rate [m/s]
	Slope        []float64 // local slope [fraction]

	Label      []int     // leaf depression of each cell; Ocean for ocean cells
	FinalLabel []int     // top-level depression of each cell
	FlowDirs   []FlowDir // D8 steepest descent direction

	Geometry *Geometry
}

// NewGrid allocates a grid with the given dimensions and a uniform
// 1 m × 1 m geometry.
func NewGrid(width, height int) *Grid {
	n := width * height
	return &Grid{
		Width:        width,
		Height:       height,
		Topo:         make([]float64, n),
		WTD:          make([]float64, n),
		SurfaceWater: make([]float64, n),
		Ksat:         make([]float64, n),
		SurfaceEvap:  make([]float64, n),
		Slope:        make([]float64, n),
		Label:        make([]int, n),
		FinalLabel:   make([]int, n),
		FlowDirs:     make([]FlowDir, n),
		Geometry:     NewUniformGeometry(height, 1, 1),
	}
}

// Len returns the number of cells in the grid.
func (g *Grid) Len() int { return g.Width * g.Height }

// Index returns the flat index of cell (x, y).
func (g *Grid) Index(x, y int) int { return y*g.Width + x }

// XY returns the column and row of flat index i.
func (g *Grid) XY(i int) (x, y int) { return i % g.Width, i / g.Width }

// InGrid returns whether (x, y) is inside the grid.
func (g *Grid) InGrid(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.Width && y < g.Height
}

// Neighbor returns the cell in direction dir from cell i, and whether
// that cell is inside the grid.
func (g *Grid) Neighbor(i int, dir FlowDir) (int, bool) {
	if dir == NoFlow || dir > 8 {
		return 0, false
	}
	x, y := g.XY(i)
	nx, ny := x+d8x[dir], y+d8y[dir]
	if !g.InGrid(nx, ny) {
		return 0, false
	}
	return g.Index(nx, ny), true
}

// Downslope returns the cell that cell i drains into. ok is false
// for pits, ocean cells and cells that point out of the grid.
func (g *Grid) Downslope(i int) (n int, ok bool) {
	return g.Neighbor(i, g.FlowDirs[i])
}

// Area returns the area of cell i [m²].
func (g *Grid) Area(i int) float64 {
	return g.Geometry.CellArea[i/g.Width]
}

// Distance returns half of the distance between the centers of
// neighboring cells from and to, which is the length of the path
// water travels inside one of the two cells [m].
// Cell widths are taken from the row of to.
func (g *Grid) Distance(from, to int) float64 {
	x, y := g.XY(from)
	nx, ny := g.XY(to)
	ew := g.Geometry.CellsizeEW[ny]
	ns := g.Geometry.CellsizeNS
	switch {
	case y == ny:
		return ew / 2
	case x == nx:
		return ns / 2
	default:
		return math.Hypot(ew, ns) / 2
	}
}

// Validate checks that the grid is internally consistent.
func (g *Grid) Validate() error {
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("fillspill: invalid grid dimensions %d×%d", g.Width, g.Height)
	}
	n := g.Len()
	for name, l := range map[string]int{
		"Topo":         len(g.Topo),
		"WTD":          len(g.WTD),
		"SurfaceWater": len(g.SurfaceWater),
		"Ksat":         len(g.Ksat),
		"SurfaceEvap":  len(g.SurfaceEvap),
		"Slope":        len(g.Slope),
		"Label":        len(g.Label),
		"FinalLabel":   len(g.FinalLabel),
		"FlowDirs":     len(g.FlowDirs),
	} {
		if l != n {
			return fmt.Errorf("fillspill: grid field %s has length %d; want %d", name, l, n)
		}
	}
	if g.Geometry == nil {
		return fmt.Errorf("fillspill: grid geometry is not set")
	}
	if err := g.Geometry.validate(g.Height); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if g.FlowDirs[i] > 8 {
			return fmt.Errorf("fillspill: cell %d has invalid flow direction %d", i, g.FlowDirs[i])
		}
		if g.FlowDirs[i] != NoFlow {
			if _, ok := g.Downslope(i); !ok {
				return fmt.Errorf("fillspill: cell %d drains out of the grid", i)
			}
		}
		if g.Label[i] < 0 || g.FinalLabel[i] < 0 {
			return fmt.Errorf("fillspill: cell %d has a negative label", i)
		}
	}
	return nil
}
