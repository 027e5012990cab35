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
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/kr/pretty"
	"github.com/spatialmodel/ecosim/axes"
	"github.com/spatialmodel/ecosim/darray"
	"github.com/spatialmodel/ecosim/grid"
	"github.com/tealeg/xlsx"
)

func testData(t *testing.T) *Data {
	g, err := grid.New(grid.Config{GridType: "square", CellArea: 1, CellNX: 2, CellNY: 2, XOff: 0.5, YOff: 0.5}, nil)
	if err != nil {
		t.Fatal(err)
	}
	return New(g, nil, nil)
}

func tempDir(t *testing.T) string {
	dir, err := ioutil.TempDir("", "ecosim_data")
	if err != nil {
		t.Fatal(err)
	}
	return dir
}

// xyTable holds the cell centres of the 2×2 test grid with the value of
// each cell equal to its cell id.
var xyTable = [][]string{
	{"x", "y", "temp"},
	{"1", "1", "2"},
	{"2", "1", "3"},
	{"1", "2", "0"},
	{"2", "2", "1"},
}

func writeCSV(t *testing.T, path string, records [][]string) {
	lines := make([]string, len(records))
	for i, r := range records {
		lines[i] = strings.Join(r, ",")
	}
	if err := ioutil.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestSetGet(t *testing.T) {
	d := testData(t)
	v, err := darray.FromValues([]float64{1, 2, 3, 4}, []string{"cell_id"}, []int{4})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Set("a", v); err != nil {
		t.Fatal(err)
	}
	if !d.Contains("a") || d.Contains("b") {
		t.Error("Contains")
	}
	a, err := d.Get("a")
	if err != nil {
		t.Fatal(err)
	}
	if a.Name != "a" || !reflect.DeepEqual(a.Values(), v.Values()) {
		t.Errorf("stored %v", a)
	}
	if _, err := d.Get("b"); err == nil {
		t.Error("expected an error for a missing variable")
	}
	p, ok := d.Provenance("a")
	if want := (axes.Provenance{axes.Spatial: "spatial_cell_id_dim", axes.TimeAxis: ""}); !ok || !reflect.DeepEqual(p, want) {
		t.Errorf("provenance: %v", pretty.Diff(p, want))
	}
	if !d.OnCoreAxis("a", axes.Spatial) || d.OnCoreAxis("a", axes.TimeAxis) {
		t.Error("OnCoreAxis")
	}

	bad, err := darray.FromValues([]float64{1, 2, 3}, []string{"cell_id"}, []int{3})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Set("bad", bad); err != axes.ErrCellIDDimSize {
		t.Errorf("have %v", err)
	}
	if d.Contains("bad") {
		t.Error("invalid data was stored")
	}
	if err := d.Set("nil", nil); err == nil {
		t.Error("expected an error for nil data")
	}
	if !reflect.DeepEqual(d.Names(), []string{"a"}) {
		t.Errorf("names: %v", d.Names())
	}
}

func TestLoadCSV(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)

	xyFile := filepath.Join(dir, "xy.csv")
	writeCSV(t, xyFile, xyTable)
	idFile := filepath.Join(dir, "ids.csv")
	writeCSV(t, idFile, [][]string{
		{"cell_id", "precip"},
		{"3", "30"},
		{"0", "0"},
		{"2", "20"},
		{"1", "10"},
	})

	d := testData(t)
	err := d.LoadVariables([]VariableConfig{
		{File: xyFile, VarName: "temp"},
		{File: idFile, VarName: "precip"},
	})
	if err != nil {
		t.Fatal(err)
	}

	temp, err := d.Get("temp")
	if err != nil {
		t.Fatal(err)
	}
	if want := []float64{0, 1, 2, 3}; !reflect.DeepEqual(temp.Values(), want) {
		t.Errorf("temp: %v", pretty.Diff(temp.Values(), want))
	}
	if p, _ := d.Provenance("temp"); p[axes.Spatial] != "spatial_xy_coords_square" {
		t.Errorf("temp provenance: %v", p)
	}

	precip, err := d.Get("precip")
	if err != nil {
		t.Fatal(err)
	}
	if want := []float64{0, 10, 20, 30}; !reflect.DeepEqual(precip.Values(), want) {
		t.Errorf("precip: %v", pretty.Diff(precip.Values(), want))
	}
	if p, _ := d.Provenance("precip"); p[axes.Spatial] != "spatial_cell_id_coord" {
		t.Errorf("precip provenance: %v", p)
	}
}

func TestLoadExcel(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)

	f := xlsx.NewFile()
	sheet, err := f.AddSheet("data")
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range xyTable {
		row := sheet.AddRow()
		for _, v := range r {
			row.AddCell().SetString(v)
		}
	}
	file := filepath.Join(dir, "xy.xlsx")
	if err := f.Save(file); err != nil {
		t.Fatal(err)
	}

	d := testData(t)
	if err := d.LoadFile(file, "temp"); err != nil {
		t.Fatal(err)
	}
	temp, err := d.Get("temp")
	if err != nil {
		t.Fatal(err)
	}
	if want := []float64{0, 1, 2, 3}; !reflect.DeepEqual(temp.Values(), want) {
		t.Errorf("temp: %v", pretty.Diff(temp.Values(), want))
	}
}

func TestNetCDFRoundTrip(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)

	d := testData(t)
	v, err := darray.FromValues([]float64{1, 2, 3, 4, 5, 6, 7, 8}, []string{"time", "cell_id"}, []int{2, 4})
	if err != nil {
		t.Fatal(err)
	}
	if err := v.SetCoord("time", []float64{0, 86400}); err != nil {
		t.Fatal(err)
	}
	v.Attrs["units"] = "kg"
	if err := d.Set("biomass", v); err != nil {
		t.Fatal(err)
	}

	file := filepath.Join(dir, "out.nc")
	w, err := os.Create(file)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.WriteNetCDF(w); err != nil {
		t.Fatal(err)
	}
	w.Close()

	r, err := ReadNetCDF(file, "biomass")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(r.Dims(), []string{"time", "cell_id"}) {
		t.Errorf("dims: %v", r.Dims())
	}
	if !reflect.DeepEqual(r.Values(), v.Values()) {
		t.Errorf("values: %v", pretty.Diff(r.Values(), v.Values()))
	}
	if !reflect.DeepEqual(r.Coord("time"), []float64{0, 86400}) || r.HasCoord("cell_id") {
		t.Errorf("coordinates: %v", r.Coord("time"))
	}
	if r.Attrs["units"] != "kg" {
		t.Errorf("attributes: %v", r.Attrs)
	}

	d2 := testData(t)
	if err := d2.LoadFile(file, "biomass"); err != nil {
		t.Fatal(err)
	}
	if p, _ := d2.Provenance("biomass"); p[axes.TimeAxis] != "time" {
		t.Errorf("provenance: %v", p)
	}
	if _, err := ReadNetCDF(file, "missing"); err == nil {
		t.Error("expected an error for a missing variable")
	}
}

func TestLoadErrors(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	d := testData(t)

	if err := d.LoadFile(filepath.Join(dir, "x.parquet"), "v"); err == nil || !strings.Contains(err.Error(), "no file format reader") {
		t.Errorf("unknown extension: %v", err)
	}

	err := d.LoadVariables([]VariableConfig{
		{File: "a.csv", VarName: "v"},
		{File: "b.csv", VarName: "v"},
	})
	if err == nil || !strings.Contains(err.Error(), "duplicate variable names") {
		t.Errorf("duplicates: %v", err)
	}

	incomplete := filepath.Join(dir, "incomplete.csv")
	writeCSV(t, incomplete, xyTable[:4])
	outside := filepath.Join(dir, "outside.csv")
	writeCSV(t, outside, [][]string{
		{"x", "y", "v"},
		{"1", "1", "0"},
		{"9", "1", "0"},
		{"1", "2", "0"},
		{"9", "2", "0"},
	})
	err = d.LoadVariables([]VariableConfig{
		{File: incomplete, VarName: "temp"},
		{File: outside, VarName: "v"},
		{File: filepath.Join(dir, "missing.csv"), VarName: "w"},
	})
	if err == nil || err.Error() != "data: 3 of 3 variables failed to load" {
		t.Errorf("have %v", err)
	}
	if len(d.Names()) != 0 {
		t.Errorf("stored %v", d.Names())
	}
}
