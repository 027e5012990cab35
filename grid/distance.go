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
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// resolveIDs returns ids, or all cell ids in ascending order if ids is nil.
func (g *Grid) resolveIDs(ids []int) ([]int, error) {
	if ids == nil {
		return g.CellIDs(), nil
	}
	for _, id := range ids {
		if id < 0 || id >= len(g.cellID) {
			return nil, fmt.Errorf("The cell id %d is not in the grid.", id)
		}
	}
	return ids, nil
}

func (g *Grid) centroidDistance(i, j int) float64 {
	a, b := g.centroids[i], g.centroids[j]
	return floats.Distance([]float64{a.X, a.Y}, []float64{b.X, b.Y}, 2)
}

// GetDistances returns the Euclidean distances between the centroids of the
// cells in cellFrom (rows) and cellTo (columns). A nil argument means all
// cells. If PopulateDistances has been called the values are taken from the
// stored matrix, otherwise they are calculated on every call and not kept.
func (g *Grid) GetDistances(cellFrom, cellTo []int) (*mat.Dense, error) {
	from, err := g.resolveIDs(cellFrom)
	if err != nil {
		g.Log.Error(err)
		return nil, err
	}
	to, err := g.resolveIDs(cellTo)
	if err != nil {
		g.Log.Error(err)
		return nil, err
	}
	if len(from) == 0 || len(to) == 0 {
		return &mat.Dense{}, nil
	}

	g.mu.RLock()
	cached := g.distances
	g.mu.RUnlock()

	o := mat.NewDense(len(from), len(to), nil)
	for i, f := range from {
		for j, t := range to {
			if cached != nil {
				o.Set(i, j, cached.At(f, t))
			} else {
				o.Set(i, j, g.centroidDistance(f, t))
			}
		}
	}
	return o, nil
}

// PopulateDistances calculates and stores the full NCells×NCells matrix of
// centroid distances. This needs O(n²) memory; it is never done implicitly.
func (g *Grid) PopulateDistances() {
	n := len(g.cellID)
	d := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			v := g.centroidDistance(i, j)
			d.Set(i, j, v)
			d.Set(j, i, v)
		}
	}
	g.mu.Lock()
	g.distances = d
	g.mu.Unlock()
	g.Log.WithField("n_cells", n).Info("grid distances populated")
}

// HasDistances reports whether PopulateDistances has been called.
func (g *Grid) HasDistances() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.distances != nil
}

// SetNeighbours finds, for every cell, the other cells whose centroids are
// no further than distance away. Calling it again replaces the stored
// neighbours.
func (g *Grid) SetNeighbours(distance float64) error {
	d, err := g.GetDistances(nil, nil)
	if err != nil {
		return err
	}
	n := len(g.cellID)
	neighbours := make([][]int, n)
	for i := 0; i < n; i++ {
		neighbours[i] = []int{}
		for j := 0; j < n; j++ {
			if i != j && d.At(i, j) <= distance {
				neighbours[i] = append(neighbours[i], g.cellID[j])
			}
		}
	}
	g.mu.Lock()
	g.neighbours = neighbours
	g.mu.Unlock()
	g.Log.WithField("distance", distance).Info("grid neighbours set")
	return nil
}

// Neighbours returns the neighbour ids of every cell, in cell id order.
// It returns ErrNeighboursNotSet if SetNeighbours has not been called.
func (g *Grid) Neighbours() ([][]int, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.neighbours == nil {
		g.Log.Error(ErrNeighboursNotSet)
		return nil, ErrNeighboursNotSet
	}
	o := make([][]int, len(g.neighbours))
	for i, n := range g.neighbours {
		o[i] = append([]int{}, n...)
	}
	return o, nil
}
