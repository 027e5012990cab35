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
	"errors"
	"sort"

	"github.com/ctessum/geom"
)

// Errors returned when points cannot be mapped one-to-one onto grid cells.
var (
	ErrCoordLength     = errors.New("The x and y coordinates are of unequal length.")
	ErrOneIndex        = errors.New("Only one of x/y indices provided.")
	ErrIndexLength     = errors.New("Dimensions of x/y indices do not match coordinates")
	ErrOutsideGrid     = errors.New("Mapped points fall outside grid.")
	ErrOnBoundary      = errors.New("Mapped points fall on cell boundaries.")
	ErrIncompleteCover = errors.New("Mapped points do not cover all cells.")
	ErrMultiplePerCell = errors.New("Some cells contain more than one point.")
)

// MapXYToCellID returns, for each (x, y) point, the ids of the cells that
// intersect it. Points on a shared edge or vertex map to every cell that
// touches them and points outside the grid map to no cells.
func (g *Grid) MapXYToCellID(xCoords, yCoords []float64) ([][]int, error) {
	if len(xCoords) != len(yCoords) {
		g.Log.Error(ErrCoordLength)
		return nil, ErrCoordLength
	}

	// A small search box so that the index returns cells that only touch
	// the point.
	pad := 1e-9 * (g.bounds.Max.X - g.bounds.Min.X + g.bounds.Max.Y - g.bounds.Min.Y)

	o := make([][]int, len(xCoords))
	for i, x := range xCoords {
		pt := geom.Point{X: x, Y: yCoords[i]}
		box := &geom.Bounds{
			Min: geom.Point{X: pt.X - pad, Y: pt.Y - pad},
			Max: geom.Point{X: pt.X + pad, Y: pt.Y + pad},
		}
		ids := []int{}
		for _, item := range g.index.SearchIntersect(box) {
			c := item.(*cell)
			if pt.Within(c.Polygon) != geom.Outside {
				ids = append(ids, c.id)
			}
		}
		sort.Ints(ids)
		o[i] = ids
	}
	return o, nil
}

// MapXYToCellIndexing finds the ordering of a set of points that places
// them in canonical cell id order. Each point must fall inside exactly one
// cell and every cell must receive exactly one point.
//
// xIdx and yIdx record the original position of each point along separate
// x and y axes, for example the column and row of a flattened raster. If
// both are nil, each point's position in the input is used for both. The
// returned indices are xIdx and yIdx reordered so that the i-th entries
// locate the point that falls in cell i.
func (g *Grid) MapXYToCellIndexing(xCoords, yCoords []float64, xIdx, yIdx []int) ([]int, []int, error) {
	fail := func(err error) ([]int, []int, error) {
		g.Log.Error(err)
		return nil, nil, err
	}

	if len(xCoords) != len(yCoords) {
		return fail(ErrCoordLength)
	}
	switch {
	case xIdx == nil && yIdx == nil:
		xIdx = make([]int, len(xCoords))
		for i := range xIdx {
			xIdx[i] = i
		}
		yIdx = append([]int{}, xIdx...)
	case xIdx == nil || yIdx == nil:
		return fail(ErrOneIndex)
	}
	if len(xIdx) != len(xCoords) || len(yIdx) != len(yCoords) {
		return fail(ErrIndexLength)
	}

	mapped, err := g.MapXYToCellID(xCoords, yCoords)
	if err != nil {
		return nil, nil, err
	}

	cellIDs := make([]int, len(mapped))
	for _, ids := range mapped {
		if len(ids) == 0 {
			return fail(ErrOutsideGrid)
		}
	}
	for i, ids := range mapped {
		if len(ids) > 1 {
			return fail(ErrOnBoundary)
		}
		cellIDs[i] = ids[0]
	}

	covered := make(map[int]bool, len(cellIDs))
	for _, id := range cellIDs {
		covered[id] = true
	}
	if len(covered) != len(g.cellID) {
		return fail(ErrIncompleteCover)
	}
	for _, id := range g.cellID {
		if !covered[id] {
			return fail(ErrIncompleteCover)
		}
	}
	if len(cellIDs) != len(g.cellID) {
		return fail(ErrMultiplePerCell)
	}

	order := make([]int, len(cellIDs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return cellIDs[order[a]] < cellIDs[order[b]] })

	xOut := make([]int, len(order))
	yOut := make([]int, len(order))
	for i, o := range order {
		xOut[i] = xIdx[o]
		yOut[i] = yIdx[o]
	}
	return xOut, yOut, nil
}
