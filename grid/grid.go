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

// Package grid defines the spatial domain of a simulation: a fixed lattice
// of cells identified by contiguous integer ids, together with the
// geometric services (distances, neighbours, point lookup and coordinate
// reconciliation) that the rest of the model indexes into.
package grid

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
	"github.com/ctessum/unit"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
)

// Config holds the parameters needed to construct a Grid.
type Config struct {
	GridType string  `toml:"grid_type"` // registered lattice type, e.g. "square" or "hexagon"
	CellArea float64 `toml:"cell_area"` // m²
	CellNX   int     `toml:"cell_nx"`
	CellNY   int     `toml:"cell_ny"`
	XOff     float64 `toml:"xoff"`
	YOff     float64 `toml:"yoff"`
}

// DefaultConfig returns the grid used when no configuration is given:
// a 10×10 square grid of 1 ha cells at the origin.
func DefaultConfig() Config {
	return Config{
		GridType: "square",
		CellArea: 10000,
		CellNX:   10,
		CellNY:   10,
	}
}

// ErrNeighboursNotSet is returned when neighbours are requested before
// SetNeighbours has been called.
var ErrNeighboursNotSet = errors.New("Neighbours have not yet been set. Use SetNeighbours.")

// Grid is the spatial lattice of a simulation. The lattice geometry is fixed
// at construction; only the distance and neighbour caches change afterwards.
type Grid struct {
	// Log receives messages about grid construction and failures.
	Log logrus.FieldLogger

	config    Config
	cellID    []int
	polygons  []geom.Polygon
	centroids []geom.Point
	bounds    *geom.Bounds
	index     *rtree.Rtree

	mu         sync.RWMutex
	distances  *mat.Dense
	neighbours [][]int
}

// cell is the item stored in the spatial index.
type cell struct {
	geom.Polygon
	id int
}

// New creates a grid from c. If log is nil, the standard logrus logger is
// used.
func New(c Config, log logrus.FieldLogger) (*Grid, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	g := &Grid{Log: log, config: c}

	create, ok := generator(c.GridType)
	if !ok {
		err := fmt.Errorf("The grid_type %s is not defined.", c.GridType)
		log.Error(err)
		return nil, err
	}
	if err := c.check(); err != nil {
		log.Error(err)
		return nil, err
	}

	ids, polygons := create(c.CellArea, c.CellNX, c.CellNY, c.XOff, c.YOff)
	if len(ids) != len(polygons) {
		err := fmt.Errorf("The %s creator function generated ids and polygons of unequal length.", c.GridType)
		log.Error(err)
		return nil, err
	}
	g.cellID = ids
	g.polygons = polygons

	g.centroids = make([]geom.Point, len(polygons))
	g.bounds = geom.NewBounds()
	g.index = rtree.NewTree(25, 50)
	for i, p := range polygons {
		g.centroids[i] = p.Centroid()
		g.bounds.Extend(p.Bounds())
		g.index.Insert(&cell{Polygon: p, id: ids[i]})
	}

	log.WithFields(logrus.Fields{
		"grid_type": c.GridType,
		"n_cells":   len(ids),
	}).Info("grid created")
	return g, nil
}

func (c Config) check() error {
	if !(c.CellArea > 0) {
		return fmt.Errorf("The cell_area must be positive, not %g.", c.CellArea)
	}
	if c.CellNX <= 0 || c.CellNY <= 0 {
		return fmt.Errorf("The cell_nx and cell_ny must be positive, not %d and %d.", c.CellNX, c.CellNY)
	}
	return nil
}

// GridType returns the lattice type of g.
func (g *Grid) GridType() string { return g.config.GridType }

// CellArea returns the area of each cell in m².
func (g *Grid) CellArea() float64 { return g.config.CellArea }

// CellNX returns the number of cells along the x axis.
func (g *Grid) CellNX() int { return g.config.CellNX }

// CellNY returns the number of cells along the y axis.
func (g *Grid) CellNY() int { return g.config.CellNY }

// Offset returns the x and y offsets of the grid origin.
func (g *Grid) Offset() (xoff, yoff float64) { return g.config.XOff, g.config.YOff }

// Config returns the parameters g was created from.
func (g *Grid) Config() Config { return g.config }

// NCells returns the number of cells in the grid.
func (g *Grid) NCells() int { return len(g.cellID) }

// CellIDs returns a copy of the cell ids in canonical order.
func (g *Grid) CellIDs() []int {
	o := make([]int, len(g.cellID))
	copy(o, g.cellID)
	return o
}

// Polygon returns the geometry of the cell at position i.
func (g *Grid) Polygon(i int) geom.Polygon { return g.polygons[i] }

// Centroid returns the centroid of the cell at position i.
func (g *Grid) Centroid(i int) geom.Point { return g.centroids[i] }

// Centroids returns an NCells×2 matrix of cell centroid (x, y) coordinates.
func (g *Grid) Centroids() *mat.Dense {
	o := mat.NewDense(len(g.centroids), 2, nil)
	for i, c := range g.centroids {
		o.Set(i, 0, c.X)
		o.Set(i, 1, c.Y)
	}
	return o
}

// Bounds returns the extent of all cells in g.
func (g *Grid) Bounds() *geom.Bounds { return g.bounds.Copy() }

// CellAreaUnit returns the area of each cell.
func (g *Grid) CellAreaUnit() *unit.Unit { return unit.New(g.config.CellArea, unit.Meter2) }

// TotalArea returns the summed area of all cells.
func (g *Grid) TotalArea() *unit.Unit {
	return unit.New(g.config.CellArea*float64(len(g.cellID)), unit.Meter2)
}

func (g *Grid) String() string {
	return fmt.Sprintf("CoreGrid(%s, A=%g, nx=%d, ny=%d, n=%d, bounds=(%g, %g, %g, %g))",
		g.config.GridType, g.config.CellArea, g.config.CellNX, g.config.CellNY, len(g.cellID),
		g.bounds.Min.X, g.bounds.Min.Y, g.bounds.Max.X, g.bounds.Max.Y)
}
