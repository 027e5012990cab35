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

package darray

import "fmt"

// Isel returns a new array holding the positions idx of dimension dim, in
// the order given. Coordinates along dim are reordered to match.
func (d *DataArray) Isel(dim string, idx []int) (*DataArray, error) {
	axis := d.Axis(dim)
	if axis < 0 {
		return nil, fmt.Errorf("darray: no dimension %s", dim)
	}
	n := d.data.Shape[axis]
	for _, i := range idx {
		if i < 0 || i >= n {
			return nil, fmt.Errorf("darray: index %d out of range for dimension %s of length %d", i, dim, n)
		}
	}

	shape := d.Shape()
	shape[axis] = len(idx)
	vals := make([]float64, 0, product(shape))
	src := make([]int, len(shape))
	each(shape, func(index []int) {
		copy(src, index)
		src[axis] = idx[index[axis]]
		vals = append(vals, d.data.Get(src...))
	})

	o, err := FromValues(vals, d.dims, shape)
	if err != nil {
		return nil, err
	}
	d.copyMeta(o, nil)
	if c, ok := d.coords[dim]; ok {
		nc := make([]float64, len(idx))
		for i, j := range idx {
			nc[i] = c[j]
		}
		o.coords[dim] = nc
	}
	return o, nil
}

// IselPoints selects individual points across several dimensions at once.
// idx holds one index slice per entry of dims, all of the same length; the
// k-th point is taken from position idx[i][k] of dims[i]. The indexed
// dimensions are replaced by a single bare dimension newDim, placed where
// the first of them was. Coordinates of the indexed dimensions are dropped.
func (d *DataArray) IselPoints(dims []string, idx [][]int, newDim string) (*DataArray, error) {
	if len(dims) == 0 || len(dims) != len(idx) {
		return nil, fmt.Errorf("darray: %d index slices for %d dimensions", len(idx), len(dims))
	}
	npts := len(idx[0])
	axes := make(map[int][]int, len(dims))
	first := len(d.dims)
	for i, dim := range dims {
		axis := d.Axis(dim)
		if axis < 0 {
			return nil, fmt.Errorf("darray: no dimension %s", dim)
		}
		if _, dup := axes[axis]; dup {
			return nil, fmt.Errorf("darray: dimension %s indexed twice", dim)
		}
		if len(idx[i]) != npts {
			return nil, fmt.Errorf("darray: index slices of unequal length")
		}
		for _, j := range idx[i] {
			if j < 0 || j >= d.data.Shape[axis] {
				return nil, fmt.Errorf("darray: index %d out of range for dimension %s of length %d", j, dim, d.data.Shape[axis])
			}
		}
		axes[axis] = idx[i]
		if axis < first {
			first = axis
		}
	}

	// srcAxis[k] is the input axis of output axis k, or -1 for newDim.
	var outDims []string
	var outShape, srcAxis []int
	for axis, dim := range d.dims {
		if axis == first {
			outDims = append(outDims, newDim)
			outShape = append(outShape, npts)
			srcAxis = append(srcAxis, -1)
		}
		if _, ok := axes[axis]; ok {
			continue
		}
		if dim == newDim {
			return nil, fmt.Errorf("darray: dimension %s already exists", newDim)
		}
		outDims = append(outDims, dim)
		outShape = append(outShape, d.data.Shape[axis])
		srcAxis = append(srcAxis, axis)
	}

	vals := make([]float64, 0, product(outShape))
	src := make([]int, len(d.dims))
	each(outShape, func(index []int) {
		for k, axis := range srcAxis {
			if axis < 0 {
				for a, pts := range axes {
					src[a] = pts[index[k]]
				}
				continue
			}
			src[axis] = index[k]
		}
		vals = append(vals, d.data.Get(src...))
	})

	o, err := FromValues(vals, outDims, outShape)
	if err != nil {
		return nil, err
	}
	d.copyMeta(o, dims)
	return o, nil
}

// copyMeta copies the name, attributes and coordinates of d to o, skipping
// coordinates of the dimensions in skip.
func (d *DataArray) copyMeta(o *DataArray, skip []string) {
	o.Name = d.Name
	for k, v := range d.Attrs {
		o.Attrs[k] = v
	}
coords:
	for k, v := range d.coords {
		for _, s := range skip {
			if s == k {
				continue coords
			}
		}
		o.coords[k] = append([]float64{}, v...)
	}
}

func product(shape []int) int {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return n
}
