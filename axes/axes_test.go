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
	"reflect"
	"testing"

	"github.com/kr/pretty"
	"github.com/spatialmodel/ecosim/darray"
	"github.com/spatialmodel/ecosim/grid"
)

func square2x2(t *testing.T) *grid.Grid {
	g, err := grid.New(grid.Config{GridType: "square", CellArea: 1, CellNX: 2, CellNY: 2, XOff: 0.5, YOff: 0.5}, nil)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func array(t *testing.T, vals []float64, dims []string, shape []int) *darray.DataArray {
	d, err := darray.FromValues(vals, dims, shape)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func setCoord(t *testing.T, d *darray.DataArray, dim string, vals []float64) {
	if err := d.SetCoord(dim, vals); err != nil {
		t.Fatal(err)
	}
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	if want := []string{Spatial, TimeAxis}; !reflect.DeepEqual(r.Axes(), want) {
		t.Errorf("axes: have %v, want %v", r.Axes(), want)
	}
	if want := []string{"cell_id", "x", "y"}; !reflect.DeepEqual(r.DimNames(Spatial), want) {
		t.Errorf("dim names: have %v, want %v", r.DimNames(Spatial), want)
	}
	if len(r.Validators(Spatial)) != 4 {
		t.Errorf("spatial validators: %d", len(r.Validators(Spatial)))
	}
	if err := r.Register(CellIDDim{}); err == nil {
		t.Error("expected an error for a duplicate registration")
	}
}

func TestCellIDMutuallyExclusive(t *testing.T) {
	g := square2x2(t)
	bare := array(t, []float64{1, 2, 3, 4}, []string{"cell_id"}, []int{4})
	labelled := bare.Copy()
	setCoord(t, labelled, "cell_id", []float64{0, 1, 2, 3})

	for _, d := range []*darray.DataArray{bare, labelled} {
		n := 0
		for _, v := range DefaultRegistry().Validators(Spatial) {
			if v.CanValidate(d, g) {
				n++
			}
		}
		if n != 1 {
			t.Errorf("%d validators apply to %v", n, d)
		}
	}
}

func TestCellIDCoord(t *testing.T) {
	g := square2x2(t)

	d := array(t, []float64{30, 10, 0, 20}, []string{"cell_id"}, []int{4})
	setCoord(t, d, "cell_id", []float64{3, 1, 0, 2})
	o, prov, err := ValidateDataArray(d, g, nil)
	if err != nil {
		t.Fatal(err)
	}
	if want := []float64{0, 10, 20, 30}; !reflect.DeepEqual(o.Values(), want) {
		t.Errorf("values: %v", pretty.Diff(o.Values(), want))
	}
	if want := []float64{0, 1, 2, 3}; !reflect.DeepEqual(o.Coord("cell_id"), want) {
		t.Errorf("coords: %v", o.Coord("cell_id"))
	}
	if want := (Provenance{Spatial: "spatial_cell_id_coord", TimeAxis: ""}); !reflect.DeepEqual(prov, want) {
		t.Errorf("provenance: %v", pretty.Diff(prov, want))
	}
	if want := []float64{30, 10, 0, 20}; !reflect.DeepEqual(d.Values(), want) {
		t.Error("input was modified")
	}

	tests := []struct {
		name string
		ids  []float64
		err  error
	}{
		{name: "duplicate", ids: []float64{0, 1, 1, 2}, err: ErrCellIDNotUnique},
		{name: "mismatch", ids: []float64{1, 2, 3, 4}, err: ErrCellIDMismatch},
		{name: "fractional", ids: []float64{0, 1, 2, 2.5}, err: ErrCellIDMismatch},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			d := array(t, make([]float64, len(test.ids)), []string{"cell_id"}, []int{len(test.ids)})
			setCoord(t, d, "cell_id", test.ids)
			if _, _, err := ValidateDataArray(d, g, nil); err != test.err {
				t.Errorf("have %v, want %v", err, test.err)
			}
		})
	}

	t.Run("subset", func(t *testing.T) {
		d := array(t, make([]float64, 3), []string{"cell_id"}, []int{3})
		setCoord(t, d, "cell_id", []float64{0, 1, 2})
		if _, _, err := ValidateDataArray(d, g, nil); err != ErrCellIDMismatch {
			t.Errorf("have %v", err)
		}
	})
}

func TestCellIDDim(t *testing.T) {
	g := square2x2(t)
	d := array(t, []float64{1, 2, 3, 4, 5, 6, 7, 8}, []string{"layers", "cell_id"}, []int{2, 4})
	o, prov, err := ValidateDataArray(d, g, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(o.Values(), d.Values()) || !reflect.DeepEqual(o.Dims(), d.Dims()) {
		t.Errorf("data changed: %v", o)
	}
	if prov[Spatial] != "spatial_cell_id_dim" {
		t.Errorf("provenance: %v", prov)
	}

	short := array(t, []float64{1, 2, 3}, []string{"cell_id"}, []int{3})
	if _, _, err := ValidateDataArray(short, g, nil); err != ErrCellIDDimSize {
		t.Errorf("have %v", err)
	}
}

func TestXYDimsSquare(t *testing.T) {
	g := square2x2(t)

	yx := array(t, []float64{0, 1, 2, 3}, []string{"y", "x"}, []int{2, 2})
	o, prov, err := ValidateDataArray(yx, g, nil)
	if err != nil {
		t.Fatal(err)
	}
	if want := []float64{0, 1, 2, 3}; !reflect.DeepEqual(o.Values(), want) {
		t.Errorf("(y, x) values: %v", pretty.Diff(o.Values(), want))
	}
	if !reflect.DeepEqual(o.Dims(), []string{"cell_id"}) {
		t.Errorf("dims: %v", o.Dims())
	}
	if prov[Spatial] != "spatial_xy_dims_square" {
		t.Errorf("provenance: %v", prov)
	}

	// The same data stored with x as the first dimension.
	xy := array(t, []float64{0, 2, 1, 3}, []string{"x", "y"}, []int{2, 2})
	o, _, err = ValidateDataArray(xy, g, nil)
	if err != nil {
		t.Fatal(err)
	}
	if want := []float64{0, 1, 2, 3}; !reflect.DeepEqual(o.Values(), want) {
		t.Errorf("(x, y) values: %v", pretty.Diff(o.Values(), want))
	}

	wrong := array(t, make([]float64, 6), []string{"y", "x"}, []int{2, 3})
	if _, _, err := ValidateDataArray(wrong, g, nil); err != ErrXYDimSize {
		t.Errorf("have %v", err)
	}
}

func TestXYCoordsSquare(t *testing.T) {
	g := square2x2(t)

	t.Run("centres", func(t *testing.T) {
		d := array(t, []float64{0, 1, 2, 3}, []string{"y", "x"}, []int{2, 2})
		setCoord(t, d, "x", []float64{1, 2})
		setCoord(t, d, "y", []float64{2, 1})
		o, prov, err := ValidateDataArray(d, g, nil)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(o.Dims(), []string{"cell_id"}) || o.Size("cell_id") != 4 {
			t.Errorf("result: %v", o)
		}
		if want := []float64{0, 1, 2, 3}; !reflect.DeepEqual(o.Values(), want) {
			t.Errorf("values: %v", pretty.Diff(o.Values(), want))
		}
		if prov[Spatial] != "spatial_xy_coords_square" {
			t.Errorf("provenance: %v", prov)
		}
	})

	t.Run("ascending y", func(t *testing.T) {
		d := array(t, []float64{2, 3, 0, 1}, []string{"y", "x"}, []int{2, 2})
		setCoord(t, d, "x", []float64{1, 2})
		setCoord(t, d, "y", []float64{1, 2})
		o, _, err := ValidateDataArray(d, g, nil)
		if err != nil {
			t.Fatal(err)
		}
		if want := []float64{0, 1, 2, 3}; !reflect.DeepEqual(o.Values(), want) {
			t.Errorf("values: %v", pretty.Diff(o.Values(), want))
		}
	})

	t.Run("extra dimension", func(t *testing.T) {
		d := array(t, []float64{0, 1, 2, 3, 10, 11, 12, 13}, []string{"time", "y", "x"}, []int{2, 2, 2})
		setCoord(t, d, "x", []float64{1, 2})
		setCoord(t, d, "y", []float64{2, 1})
		o, prov, err := ValidateDataArray(d, g, nil)
		if err != nil {
			t.Fatal(err)
		}
		if want := []string{"time", "cell_id"}; !reflect.DeepEqual(o.Dims(), want) {
			t.Errorf("dims: %v", o.Dims())
		}
		if want := []float64{0, 1, 2, 3, 10, 11, 12, 13}; !reflect.DeepEqual(o.Values(), want) {
			t.Errorf("values: %v", pretty.Diff(o.Values(), want))
		}
		if want := (Provenance{Spatial: "spatial_xy_coords_square", TimeAxis: "time"}); !reflect.DeepEqual(prov, want) {
			t.Errorf("provenance: %v", pretty.Diff(prov, want))
		}
	})

	t.Run("outside", func(t *testing.T) {
		d := array(t, make([]float64, 4), []string{"y", "x"}, []int{2, 2})
		setCoord(t, d, "x", []float64{1, 5})
		setCoord(t, d, "y", []float64{2, 1})
		if _, _, err := ValidateDataArray(d, g, nil); err != grid.ErrOutsideGrid {
			t.Errorf("have %v", err)
		}
	})
}

func TestExplicitIndexing(t *testing.T) {
	g := square2x2(t)
	x := []float64{1, 2, 1, 2}
	y := []float64{2, 2, 1, 1}
	xIdx, yIdx, err := g.MapXYToCellIndexing(x, y, []int{0, 1, 0, 1}, []int{0, 0, 1, 1})
	if err != nil {
		t.Fatal(err)
	}
	d := array(t, []float64{0, 1, 2, 3}, []string{"y", "x"}, []int{2, 2})
	o, err := d.IselPoints([]string{"x", "y"}, [][]int{xIdx, yIdx}, "cell_id")
	if err != nil {
		t.Fatal(err)
	}
	if want := []float64{0, 1, 2, 3}; !reflect.DeepEqual(o.Values(), want) {
		t.Errorf("values: %v", pretty.Diff(o.Values(), want))
	}
}

func TestNoValidator(t *testing.T) {
	hex, err := grid.New(grid.Config{GridType: "hexagon", CellArea: 1, CellNX: 2, CellNY: 2}, nil)
	if err != nil {
		t.Fatal(err)
	}
	d := array(t, make([]float64, 4), []string{"y", "x"}, []int{2, 2})
	setCoord(t, d, "x", []float64{1, 2})
	setCoord(t, d, "y", []float64{2, 1})
	_, _, err = ValidateDataArray(d, hex, nil)
	var nv *NoValidatorError
	if !errors.As(err, &nv) || nv.Axis != Spatial {
		t.Errorf("have %v", err)
	}

	// Only one of the x/y pair.
	xOnly := array(t, make([]float64, 2), []string{"x"}, []int{2})
	if _, _, err := ValidateDataArray(xOnly, square2x2(t), nil); !errors.As(err, &nv) {
		t.Errorf("have %v", err)
	}
}

type always struct{ name string }

func (a always) Name() string                                 { return a.name }
func (always) CoreAxis() string                               { return Spatial }
func (always) DimNames() []string                             { return []string{"cell_id"} }
func (always) CanValidate(*darray.DataArray, *grid.Grid) bool { return true }
func (always) Validate(v *darray.DataArray, _ *grid.Grid) (*darray.DataArray, error) {
	return v, nil
}

func TestAmbiguousValidator(t *testing.T) {
	r := NewRegistry()
	for _, v := range []Validator{always{"a"}, always{"b"}} {
		if err := r.Register(v); err != nil {
			t.Fatal(err)
		}
	}
	d := array(t, make([]float64, 4), []string{"cell_id"}, []int{4})
	_, _, err := r.Validate(d, square2x2(t), nil)
	var av *AmbiguousValidatorError
	if !errors.As(err, &av) {
		t.Fatalf("have %v", err)
	}
	if want := []string{"a", "b"}; !reflect.DeepEqual(av.Validators, want) {
		t.Errorf("validators: %v", av.Validators)
	}
}

func TestNoCoreAxes(t *testing.T) {
	d := array(t, []float64{1, 2}, []string{"layers"}, []int{2})
	o, prov, err := ValidateDataArray(d, square2x2(t), nil)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(o.Values(), d.Values()) {
		t.Errorf("values changed: %v", o.Values())
	}
	if want := (Provenance{Spatial: "", TimeAxis: ""}); !reflect.DeepEqual(prov, want) {
		t.Errorf("provenance: %v", prov)
	}
}
