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

package data

import (
	"fmt"
	"os"
	"sort"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
	"github.com/spatialmodel/ecosim/darray"
)

// ReadNetCDF reads the variable varName from a NetCDF file. One-dimensional
// variables named after a dimension of varName are attached as coordinates
// of that dimension, and string attributes are copied.
func ReadNetCDF(file, varName string) (*darray.DataArray, error) {
	ff, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("data: %v", err)
	}
	defer ff.Close()
	f, err := cdf.Open(ff)
	if err != nil {
		return nil, fmt.Errorf("data: opening %s: %v", file, err)
	}

	vals, err := readVar(f, varName)
	if err != nil {
		return nil, fmt.Errorf("data: %s: %v", file, err)
	}
	dims := f.Header.Dimensions(varName)
	a := sparse.ZerosDense(append([]int{}, f.Header.Lengths(varName)...)...)
	if len(a.Elements) != len(vals) {
		return nil, fmt.Errorf("data: %s: variable %s has %d values for shape %v", file, varName, len(vals), a.Shape)
	}
	copy(a.Elements, vals)
	o, err := darray.New(a, dims...)
	if err != nil {
		return nil, err
	}
	o.Name = varName

	for _, dim := range dims {
		if dim == varName {
			continue
		}
		if d := f.Header.Dimensions(dim); len(d) != 1 || d[0] != dim {
			continue
		}
		c, err := readVar(f, dim)
		if err != nil {
			return nil, fmt.Errorf("data: %s: %v", file, err)
		}
		if err := o.SetCoord(dim, c); err != nil {
			return nil, err
		}
	}
	for _, name := range f.Header.Attributes(varName) {
		if s, ok := f.Header.GetAttribute(varName, name).(string); ok {
			o.Attrs[name] = s
		}
	}
	return o, nil
}

// readVar reads all values of the numeric variable v as float64.
func readVar(f *cdf.File, v string) ([]float64, error) {
	lengths := f.Header.Lengths(v)
	if lengths == nil {
		return nil, fmt.Errorf("no variable %s", v)
	}
	n := 1
	for _, l := range lengths {
		n *= l
	}
	if n == 0 {
		return nil, fmt.Errorf("variable %s is empty or uses the record dimension", v)
	}
	buf := f.Header.ZeroValue(v, n)
	if _, ok := buf.(string); ok {
		return nil, fmt.Errorf("variable %s is not numeric", v)
	}
	if _, err := f.Reader(v, nil, nil).Read(buf); err != nil {
		return nil, fmt.Errorf("reading variable %s: %v", v, err)
	}
	o := make([]float64, n)
	switch t := buf.(type) {
	case []float64:
		copy(o, t)
	case []float32:
		for i, x := range t {
			o[i] = float64(x)
		}
	case []int32:
		for i, x := range t {
			o[i] = float64(x)
		}
	case []int16:
		for i, x := range t {
			o[i] = float64(x)
		}
	case []uint8:
		for i, x := range t {
			o[i] = float64(x)
		}
	default:
		return nil, fmt.Errorf("variable %s is not numeric", v)
	}
	return o, nil
}

// WriteNetCDF writes the named variables, or all variables if no names are
// given, to w. Dimensions with coordinates are written as coordinate
// variables.
func (d *Data) WriteNetCDF(w *os.File, names ...string) error {
	if len(names) == 0 {
		names = d.Names()
	}
	vars := make([]*darray.DataArray, len(names))
	for i, n := range names {
		v, err := d.Get(n)
		if err != nil {
			d.Log.Error(err)
			return err
		}
		vars[i] = v
	}
	if err := writeNetCDF(w, names, vars); err != nil {
		d.Log.Error(err)
		return err
	}
	return nil
}

func writeNetCDF(w *os.File, names []string, vars []*darray.DataArray) error {
	var dims []string
	lengths := make(map[string]int)
	coords := make(map[string][]float64)
	for i, v := range vars {
		shape := v.Shape()
		for j, dim := range v.Dims() {
			l, ok := lengths[dim]
			if !ok {
				dims = append(dims, dim)
				lengths[dim] = shape[j]
			} else if l != shape[j] {
				return fmt.Errorf("data: dimension %s of %s has length %d, expected %d", dim, names[i], shape[j], l)
			}
			if c := v.Coord(dim); c != nil {
				if prev, ok := coords[dim]; ok && !equal(prev, c) {
					return fmt.Errorf("data: variables disagree on coordinates of dimension %s", dim)
				}
				coords[dim] = c
			}
		}
	}

	dimLengths := make([]int, len(dims))
	for i, dim := range dims {
		dimLengths[i] = lengths[dim]
	}
	h := cdf.NewHeader(dims, dimLengths)
	h.AddAttribute("", "comment", "ecosim data file")
	for _, dim := range dims {
		if _, ok := coords[dim]; ok {
			h.AddVariable(dim, []string{dim}, []float64{0})
		}
	}
	for i, v := range vars {
		if _, ok := coords[names[i]]; ok {
			return fmt.Errorf("data: variable %s has the name of a coordinate", names[i])
		}
		h.AddVariable(names[i], v.Dims(), []float64{0})
		for _, k := range sortedKeys(v.Attrs) {
			h.AddAttribute(names[i], k, v.Attrs[k])
		}
	}
	h.Define()

	f, err := cdf.Create(w, h)
	if err != nil {
		return fmt.Errorf("data: creating netcdf file: %v", err)
	}
	for _, dim := range dims {
		if c, ok := coords[dim]; ok {
			if err := writeVar(f, dim, c); err != nil {
				return err
			}
		}
	}
	for i, v := range vars {
		if err := writeVar(f, names[i], v.Values()); err != nil {
			return err
		}
	}
	return cdf.UpdateNumRecs(w)
}

func writeVar(f *cdf.File, v string, vals []float64) error {
	end := f.Header.Lengths(v)
	start := make([]int, len(end))
	if _, err := f.Writer(v, start, end).Write(vals); err != nil {
		return fmt.Errorf("data: writing variable %s to netcdf file: %v", v, err)
	}
	return nil
}

func equal(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sortedKeys(m map[string]string) []string {
	o := make([]string, 0, len(m))
	for k := range m {
		o = append(o, k)
	}
	sort.Strings(o)
	return o
}
