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

package axes

import (
	"errors"

	"github.com/spatialmodel/ecosim/darray"
	"github.com/spatialmodel/ecosim/grid"
)

// Names of the spatial axis and of the dimensions it recognises.
const (
	Spatial = "spatial"

	CellIDDimName = "cell_id"
	XDimName      = "x"
	YDimName      = "y"
)

// Errors returned by the spatial validators.
var (
	ErrCellIDNotUnique = errors.New("The cell_ids in the data are not unique")
	ErrCellIDMismatch  = errors.New("The data cell ids do not provide a one-to-one map onto grid cell ids.")
	ErrCellIDDimSize   = errors.New("The data cell_id dimension does not match the number of grid cells.")
	ErrXYDimSize       = errors.New("Data XY dimensions do not match square grid")
)

// CellIDCoord handles data with a cell_id dimension that carries cell id
// values. The values must match the grid cell ids one-to-one, in any order;
// the data is reordered to the grid's order.
type CellIDCoord struct{}

func (CellIDCoord) Name() string       { return "spatial_cell_id_coord" }
func (CellIDCoord) CoreAxis() string   { return Spatial }
func (CellIDCoord) DimNames() []string { return []string{CellIDDimName} }

func (CellIDCoord) CanValidate(value *darray.DataArray, _ *grid.Grid) bool {
	return value.HasDim(CellIDDimName) && value.HasCoord(CellIDDimName)
}

func (CellIDCoord) Validate(value *darray.DataArray, g *grid.Grid) (*darray.DataArray, error) {
	ids := value.Coord(CellIDDimName)
	pos := make(map[float64]int, len(ids))
	for i, id := range ids {
		if _, dup := pos[id]; dup {
			return nil, ErrCellIDNotUnique
		}
		pos[id] = i
	}

	gridIDs := g.CellIDs()
	if len(ids) != len(gridIDs) {
		return nil, ErrCellIDMismatch
	}
	order := make([]int, len(gridIDs))
	for i, id := range gridIDs {
		p, ok := pos[float64(id)]
		if !ok {
			return nil, ErrCellIDMismatch
		}
		order[i] = p
	}

	o, err := value.Isel(CellIDDimName, order)
	if err != nil {
		return nil, err
	}
	canonical := make([]float64, len(gridIDs))
	for i, id := range gridIDs {
		canonical[i] = float64(id)
	}
	if err := o.SetCoord(CellIDDimName, canonical); err != nil {
		return nil, err
	}
	return o, nil
}

// CellIDDim handles data with a bare cell_id dimension. Only the length is
// checked; the data is assumed to be in grid order already.
type CellIDDim struct{}

func (CellIDDim) Name() string       { return "spatial_cell_id_dim" }
func (CellIDDim) CoreAxis() string   { return Spatial }
func (CellIDDim) DimNames() []string { return []string{CellIDDimName} }

func (CellIDDim) CanValidate(value *darray.DataArray, _ *grid.Grid) bool {
	return value.HasDim(CellIDDimName) && !value.HasCoord(CellIDDimName)
}

func (CellIDDim) Validate(value *darray.DataArray, g *grid.Grid) (*darray.DataArray, error) {
	if value.Size(CellIDDimName) != g.NCells() {
		return nil, ErrCellIDDimSize
	}
	return value.Copy(), nil
}

// XYCoordsSquare handles data on a square grid with x and y dimensions that
// both carry coordinate values. Every (x, y) combination must fall inside
// exactly one cell, and each cell must receive exactly one point. The x and
// y dimensions are replaced by a cell_id dimension in grid order.
type XYCoordsSquare struct{}

func (XYCoordsSquare) Name() string       { return "spatial_xy_coords_square" }
func (XYCoordsSquare) CoreAxis() string   { return Spatial }
func (XYCoordsSquare) DimNames() []string { return []string{XDimName, YDimName} }

func (XYCoordsSquare) CanValidate(value *darray.DataArray, g *grid.Grid) bool {
	return g.GridType() == "square" &&
		value.HasDim(XDimName) && value.HasCoord(XDimName) &&
		value.HasDim(YDimName) && value.HasCoord(YDimName)
}

func (XYCoordsSquare) Validate(value *darray.DataArray, g *grid.Grid) (*darray.DataArray, error) {
	xVals, yVals := value.Coord(XDimName), value.Coord(YDimName)

	// Every combination of the x and y coordinates, y varying slowest.
	n := len(xVals) * len(yVals)
	x, y := make([]float64, 0, n), make([]float64, 0, n)
	xIdx, yIdx := make([]int, 0, n), make([]int, 0, n)
	for j, yv := range yVals {
		for i, xv := range xVals {
			x = append(x, xv)
			y = append(y, yv)
			xIdx = append(xIdx, i)
			yIdx = append(yIdx, j)
		}
	}

	xIdx, yIdx, err := g.MapXYToCellIndexing(x, y, xIdx, yIdx)
	if err != nil {
		return nil, err
	}
	return value.IselPoints([]string{XDimName, YDimName}, [][]int{xIdx, yIdx}, CellIDDimName)
}

// XYDimsSquare handles data on a square grid with bare x and y dimensions.
// The dimension sizes must match the grid, and the data is assumed to have
// rows running from the top of the grid and columns from the left.
type XYDimsSquare struct{}

func (XYDimsSquare) Name() string       { return "spatial_xy_dims_square" }
func (XYDimsSquare) CoreAxis() string   { return Spatial }
func (XYDimsSquare) DimNames() []string { return []string{XDimName, YDimName} }

func (XYDimsSquare) CanValidate(value *darray.DataArray, g *grid.Grid) bool {
	return g.GridType() == "square" &&
		value.HasDim(XDimName) && !value.HasCoord(XDimName) &&
		value.HasDim(YDimName) && !value.HasCoord(YDimName)
}

func (XYDimsSquare) Validate(value *darray.DataArray, g *grid.Grid) (*darray.DataArray, error) {
	nx, ny := g.CellNX(), g.CellNY()
	if value.Size(XDimName) != nx || value.Size(YDimName) != ny {
		return nil, ErrXYDimSize
	}
	xIdx := make([]int, nx*ny)
	yIdx := make([]int, nx*ny)
	for k := range xIdx {
		xIdx[k] = k % nx
		yIdx[k] = k / nx
	}
	return value.IselPoints([]string{XDimName, YDimName}, [][]int{xIdx, yIdx}, CellIDDimName)
}
