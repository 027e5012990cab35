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

// Package darray provides labelled N-dimensional arrays: dense float64
// data with named dimensions and optional coordinate values along each
// dimension.
package darray

import (
	"fmt"
	"strings"

	"github.com/ctessum/sparse"
)

// DataArray is a dense array whose dimensions are identified by name.
// A dimension may carry coordinate values (one per position) or be a bare
// dimension with positions only.
type DataArray struct {
	// Name is the variable name of the array, if any.
	Name string

	// Attrs holds descriptive metadata such as "units" and "description".
	Attrs map[string]string

	dims   []string
	coords map[string][]float64
	data   *sparse.DenseArray
}

// New creates a DataArray holding data, with one name per dimension of data.
func New(data *sparse.DenseArray, dims ...string) (*DataArray, error) {
	if len(dims) != len(data.Shape) {
		return nil, fmt.Errorf("darray: %d dimension names for %d-dimensional data", len(dims), len(data.Shape))
	}
	seen := make(map[string]bool, len(dims))
	for _, d := range dims {
		if seen[d] {
			return nil, fmt.Errorf("darray: duplicate dimension name %s", d)
		}
		seen[d] = true
	}
	return &DataArray{
		Attrs:  make(map[string]string),
		dims:   append([]string{}, dims...),
		coords: make(map[string][]float64),
		data:   data,
	}, nil
}

// FromValues creates a DataArray of the given shape from row-major values.
func FromValues(values []float64, dims []string, shape []int) (*DataArray, error) {
	a := sparse.ZerosDense(append([]int{}, shape...)...)
	if len(a.Elements) != len(values) {
		return nil, fmt.Errorf("darray: %d values do not fill shape %v", len(values), shape)
	}
	copy(a.Elements, values)
	return New(a, dims...)
}

// Dims returns the dimension names of d in order.
func (d *DataArray) Dims() []string { return append([]string{}, d.dims...) }

// Shape returns the length of each dimension of d.
func (d *DataArray) Shape() []int { return append([]int{}, d.data.Shape...) }

// Data returns the underlying array.
func (d *DataArray) Data() *sparse.DenseArray { return d.data }

// Values returns the elements of d in row-major order.
func (d *DataArray) Values() []float64 { return d.data.Elements }

// Get returns the value at the given position.
func (d *DataArray) Get(index ...int) float64 { return d.data.Get(index...) }

// Axis returns the position of dim among the dimensions of d, or -1.
func (d *DataArray) Axis(dim string) int {
	for i, n := range d.dims {
		if n == dim {
			return i
		}
	}
	return -1
}

// HasDim reports whether d has a dimension called dim.
func (d *DataArray) HasDim(dim string) bool { return d.Axis(dim) >= 0 }

// Size returns the length of dimension dim, or 0 if d does not have it.
func (d *DataArray) Size(dim string) int {
	if i := d.Axis(dim); i >= 0 {
		return d.data.Shape[i]
	}
	return 0
}

// SetCoord attaches coordinate values to dimension dim.
func (d *DataArray) SetCoord(dim string, values []float64) error {
	i := d.Axis(dim)
	if i < 0 {
		return fmt.Errorf("darray: no dimension %s", dim)
	}
	if len(values) != d.data.Shape[i] {
		return fmt.Errorf("darray: %d coordinate values for dimension %s of length %d", len(values), dim, d.data.Shape[i])
	}
	d.coords[dim] = append([]float64{}, values...)
	return nil
}

// HasCoord reports whether dimension dim carries coordinate values.
func (d *DataArray) HasCoord(dim string) bool {
	_, ok := d.coords[dim]
	return ok
}

// Coord returns a copy of the coordinate values of dim, or nil.
func (d *DataArray) Coord(dim string) []float64 {
	c, ok := d.coords[dim]
	if !ok {
		return nil
	}
	return append([]float64{}, c...)
}

// Copy returns a deep copy of d.
func (d *DataArray) Copy() *DataArray {
	o := &DataArray{
		Name:   d.Name,
		Attrs:  make(map[string]string, len(d.Attrs)),
		dims:   append([]string{}, d.dims...),
		coords: make(map[string][]float64, len(d.coords)),
		data:   d.data.Copy(),
	}
	for k, v := range d.Attrs {
		o.Attrs[k] = v
	}
	for k, v := range d.coords {
		o.coords[k] = append([]float64{}, v...)
	}
	return o
}

func (d *DataArray) String() string {
	dims := make([]string, len(d.dims))
	for i, n := range d.dims {
		dims[i] = fmt.Sprintf("%s: %d", n, d.data.Shape[i])
	}
	return fmt.Sprintf("DataArray %s (%s)", d.Name, strings.Join(dims, ", "))
}

// each calls f with every index of an array of the given shape, in
// row-major order. The index slice is reused between calls.
func each(shape []int, f func(index []int)) {
	n := 1
	for _, s := range shape {
		n *= s
	}
	if n == 0 {
		return
	}
	index := make([]int, len(shape))
	for k := 0; k < n; k++ {
		f(index)
		for i := len(shape) - 1; i >= 0; i-- {
			index[i]++
			if index[i] < shape[i] {
				break
			}
			index[i] = 0
		}
	}
}
