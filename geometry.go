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

const earthRadius = 6371000. // meters

// Geometry holds cell sizes, which vary by row on a latitude-longitude grid.
type Geometry struct {
	CellsizeNS float64   // north-south cell size [m]
	CellsizeEW []float64 // east-west cell size at the center of each row [m]
	CellArea   []float64 // area of a cell in each row [m²]
}

// NewUniformGeometry returns the geometry of a projected grid with
// constant cell sizes dx (east-west) and dy (north-south).
func NewUniformGeometry(height int, dx, dy float64) *Geometry {
	g := &Geometry{
		CellsizeNS: dy,
		CellsizeEW: make([]float64, height),
		CellArea:   make([]float64, height),
	}
	for j := 0; j < height; j++ {
		g.CellsizeEW[j] = dx
		g.CellArea[j] = dx * dy
	}
	return g
}

// NewLatLonGeometry returns the geometry of a geographic grid with
// cellsPerDegree cells per degree, whose first row is centered at
// latitude southernEdge [degrees]. Cell areas are trapezoids bounded by
// the east-west widths at the northern and southern edges of each row.
func NewLatLonGeometry(height int, cellsPerDegree, southernEdge float64) *Geometry {
	const deg2rad = math.Pi / 180.
	g := &Geometry{
		CellsizeNS: earthRadius * deg2rad / cellsPerDegree,
		CellsizeEW: make([]float64, height),
		CellArea:   make([]float64, height),
	}
	width := func(latDeg float64) float64 {
		return earthRadius * math.Cos(latDeg*deg2rad) * deg2rad / cellsPerDegree
	}
	for j := 0; j < height; j++ {
		lat := float64(j)/cellsPerDegree + southernEdge
		g.CellsizeEW[j] = width(lat)
		n := width(lat + 0.5/cellsPerDegree)
		s := width(lat - 0.5/cellsPerDegree)
		g.CellArea[j] = g.CellsizeNS * (n + s) / 2
	}
	return g
}

func (g *Geometry) validate(height int) error {
	if len(g.CellsizeEW) != height || len(g.CellArea) != height {
		return fmt.Errorf("fillspill: geometry has %d rows; want %d", len(g.CellArea), height)
	}
	if g.CellsizeNS <= 0 {
		return fmt.Errorf("fillspill: north-south cell size must be positive")
	}
	for j, a := range g.CellArea {
		if a <= 0 || g.CellsizeEW[j] <= 0 {
			return fmt.Errorf("fillspill: row %d has non-positive cell size", j)
		}
	}
	return nil
}
