/*
Copyright © 2024 the ecosim authors.
This file is part of ecosim.

ecosim is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

ecosim is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with ecosim.  If not, see <http://www.gnu.org/licenses/>.
*/

package grid

import (
	"math"
	"sort"
	"sync"

	"github.com/ctessum/geom"
)

// A Generator creates the cell ids and polygons of one lattice type.
// The ids must run from 0 to cellNX*cellNY-1 in row-major order, with x
// increasing fastest and rows ordered from the top of the grid (largest y)
// to the bottom. polygons[i] is the anti-clockwise closed ring for ids[i].
type Generator func(cellArea float64, cellNX, cellNY int, xoff, yoff float64) (ids []int, polygons []geom.Polygon)

var (
	generatorsMu sync.RWMutex
	generators   = map[string]Generator{
		"square":  SquareGrid,
		"hexagon": HexGrid,
	}
)

// RegisterGenerator makes a lattice type available to New under the given
// name. Registering an existing name replaces its generator.
func RegisterGenerator(gridType string, g Generator) {
	generatorsMu.Lock()
	defer generatorsMu.Unlock()
	generators[gridType] = g
}

// GeneratorNames returns the names of the registered lattice types.
func GeneratorNames() []string {
	generatorsMu.RLock()
	defer generatorsMu.RUnlock()
	names := make([]string, 0, len(generators))
	for n := range generators {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func generator(gridType string) (Generator, bool) {
	generatorsMu.RLock()
	defer generatorsMu.RUnlock()
	g, ok := generators[gridType]
	return g, ok
}

// translate returns a copy of the single-ring polygon p shifted by dx, dy.
func translate(p geom.Path, dx, dy float64) geom.Polygon {
	o := make(geom.Path, len(p))
	for i, pt := range p {
		o[i] = geom.Point{X: pt.X + dx, Y: pt.Y + dy}
	}
	return geom.Polygon{o}
}

// SquareGrid creates a lattice of square cells with area cellArea. The
// lower-left corner of the bottom-left cell is at (xoff, yoff).
func SquareGrid(cellArea float64, cellNX, cellNY int, xoff, yoff float64) ([]int, []geom.Polygon) {
	side := math.Sqrt(cellArea)

	// anti-clockwise from the origin
	prototype := geom.Path{
		{X: 0, Y: 0},
		{X: side, Y: 0},
		{X: side, Y: side},
		{X: 0, Y: side},
		{X: 0, Y: 0},
	}

	ids := make([]int, 0, cellNX*cellNY)
	polygons := make([]geom.Polygon, 0, cellNX*cellNY)
	for row := 0; row < cellNY; row++ {
		y := yoff + float64(cellNY-1-row)*side
		for col := 0; col < cellNX; col++ {
			x := xoff + float64(col)*side
			ids = append(ids, len(ids))
			polygons = append(polygons, translate(prototype, x, y))
		}
	}
	return ids, polygons
}

// HexGrid creates a lattice of pointy-top regular hexagons with area
// cellArea. Rows are spaced 1.5 side lengths apart and odd rows (counted
// from the top) are shifted right by one apothem, so that the cells tile
// edge to edge. The bounding box of the bottom-left cell has its lower-left
// corner at (xoff, yoff).
func HexGrid(cellArea float64, cellNX, cellNY int, xoff, yoff float64) ([]int, []geom.Polygon) {
	side := math.Pow(3, 0.25) * math.Sqrt(2*cellArea/9)
	apothem := math.Sqrt(3) * side / 2

	// anti-clockwise from the top vertex, centred on the origin
	prototype := geom.Path{
		{X: 0, Y: side},
		{X: -apothem, Y: side / 2},
		{X: -apothem, Y: -side / 2},
		{X: 0, Y: -side},
		{X: apothem, Y: -side / 2},
		{X: apothem, Y: side / 2},
		{X: 0, Y: side},
	}

	ids := make([]int, 0, cellNX*cellNY)
	polygons := make([]geom.Polygon, 0, cellNX*cellNY)
	for row := 0; row < cellNY; row++ {
		cy := yoff + side + float64(cellNY-1-row)*1.5*side
		stagger := 0.
		if row%2 == 1 {
			stagger = apothem
		}
		for col := 0; col < cellNX; col++ {
			cx := xoff + apothem + float64(col)*2*apothem + stagger
			ids = append(ids, len(ids))
			polygons = append(polygons, translate(prototype, cx, cy))
		}
	}
	return ids, polygons
}
