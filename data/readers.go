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
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/spatialmodel/ecosim/darray"
	"github.com/tealeg/xlsx"
)

// A Reader reads the variable varName from file.
type Reader func(file, varName string) (*darray.DataArray, error)

var (
	readersMu sync.RWMutex
	readers   = map[string]Reader{
		".nc":   ReadNetCDF,
		".csv":  ReadCSV,
		".xlsx": ReadExcel,
	}
)

// RegisterReader sets the reader used for files with extension ext,
// for example ".nc".
func RegisterReader(ext string, r Reader) {
	readersMu.Lock()
	readers[strings.ToLower(ext)] = r
	readersMu.Unlock()
}

func readerFor(file string) (Reader, error) {
	ext := strings.ToLower(filepath.Ext(file))
	readersMu.RLock()
	defer readersMu.RUnlock()
	r, ok := readers[ext]
	if !ok {
		return nil, fmt.Errorf("data: no file format reader for extension '%s'", ext)
	}
	return r, nil
}

// ReadCSV reads a variable from a comma-separated file with a header row.
// See ReadExcel for the table layout.
func ReadCSV(file, varName string) (*darray.DataArray, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("data: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("data: reading %s: %v", file, err)
	}
	return fromTable(file, records, varName)
}

// ReadExcel reads a variable from the first sheet of a Microsoft Excel file.
// The first row holds column names. One column must be named varName, and
// the cells are located by either a cell_id column or a pair of x and y
// columns. Tables with x and y columns must hold every combination of the
// x and y values once, and are returned as (y, x) arrays.
func ReadExcel(file, varName string) (*darray.DataArray, error) {
	f, err := xlsx.OpenFile(file)
	if err != nil {
		return nil, fmt.Errorf("data: opening xlsx file: %v", err)
	}
	if len(f.Sheets) == 0 {
		return nil, fmt.Errorf("data: %s has no sheets", file)
	}
	var records [][]string
	for _, row := range f.Sheets[0].Rows {
		if row == nil {
			continue
		}
		r := make([]string, len(row.Cells))
		for i, c := range row.Cells {
			if c != nil {
				r[i] = strings.TrimSpace(c.Value)
			}
		}
		records = append(records, r)
	}
	return fromTable(file, records, varName)
}

// fromTable builds a data array from a table of records, the first of which
// holds the column names.
func fromTable(file string, records [][]string, varName string) (*darray.DataArray, error) {
	if len(records) < 2 {
		return nil, fmt.Errorf("data: %s has no data rows", file)
	}
	cols := make(map[string]int)
	for i, name := range records[0] {
		cols[strings.TrimSpace(name)] = i
	}
	column := func(name string) ([]float64, error) {
		i, ok := cols[name]
		if !ok {
			return nil, fmt.Errorf("data: %s has no column %s", file, name)
		}
		o := make([]float64, len(records)-1)
		for j, r := range records[1:] {
			if i >= len(r) {
				return nil, fmt.Errorf("data: %s row %d is missing column %s", file, j+2, name)
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(r[i]), 64)
			if err != nil {
				return nil, fmt.Errorf("data: %s row %d column %s: %v", file, j+2, name, err)
			}
			o[j] = v
		}
		return o, nil
	}

	vals, err := column(varName)
	if err != nil {
		return nil, err
	}

	var o *darray.DataArray
	if _, ok := cols["cell_id"]; ok {
		ids, err := column("cell_id")
		if err != nil {
			return nil, err
		}
		if o, err = darray.FromValues(vals, []string{"cell_id"}, []int{len(vals)}); err != nil {
			return nil, err
		}
		if err = o.SetCoord("cell_id", ids); err != nil {
			return nil, err
		}
	} else {
		x, err := column("x")
		if err != nil {
			return nil, err
		}
		y, err := column("y")
		if err != nil {
			return nil, err
		}
		if o, err = unstack(file, x, y, vals); err != nil {
			return nil, err
		}
	}
	o.Name = varName
	return o, nil
}

// unstack arranges point values into a (y, x) array with ascending x and y
// coordinates.
func unstack(file string, x, y, vals []float64) (*darray.DataArray, error) {
	xs, ys := uniqueSorted(x), uniqueSorted(y)
	if len(xs)*len(ys) != len(vals) {
		return nil, fmt.Errorf("data: %s: x and y columns do not form a complete grid", file)
	}
	xPos, yPos := positions(xs), positions(ys)
	out := make([]float64, len(vals))
	filled := make([]bool, len(vals))
	for i, v := range vals {
		k := yPos[y[i]]*len(xs) + xPos[x[i]]
		if filled[k] {
			return nil, fmt.Errorf("data: %s: duplicate x and y values (%g, %g)", file, x[i], y[i])
		}
		filled[k] = true
		out[k] = v
	}
	o, err := darray.FromValues(out, []string{"y", "x"}, []int{len(ys), len(xs)})
	if err != nil {
		return nil, err
	}
	if err := o.SetCoord("x", xs); err != nil {
		return nil, err
	}
	if err := o.SetCoord("y", ys); err != nil {
		return nil, err
	}
	return o, nil
}

func uniqueSorted(v []float64) []float64 {
	set := make(map[float64]bool, len(v))
	var o []float64
	for _, f := range v {
		if !set[f] {
			set[f] = true
			o = append(o, f)
		}
	}
	sort.Float64s(o)
	return o
}

func positions(v []float64) map[float64]int {
	o := make(map[float64]int, len(v))
	for i, f := range v {
		o[f] = i
	}
	return o
}
