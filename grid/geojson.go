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
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/geojson"
)

// DefaultPrecision is the number of decimal places used for GeoJSON
// coordinates when none is given.
const DefaultPrecision = 2

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Type       string            `json:"type"`
	Geometry   *geojson.Geometry `json:"geometry"`
	Properties cellProperties    `json:"properties"`
}

type cellProperties struct {
	CellID int     `json:"cell_id"`
	CellCX float64 `json:"cell_cx"`
	CellCY float64 `json:"cell_cy"`
}

func round(v float64, dp int) float64 {
	s := math.Pow(10, float64(dp))
	return math.Round(v*s) / s
}

func roundPolygon(p geom.Polygon, dp int) geom.Polygon {
	o := make(geom.Polygon, len(p))
	for i, ring := range p {
		r := make(geom.Path, len(ring))
		for j, pt := range ring {
			r[j] = geom.Point{X: round(pt.X, dp), Y: round(pt.Y, dp)}
		}
		o[i] = r
	}
	return o
}

func (g *Grid) featureCollection(dp int) (*featureCollection, error) {
	fc := &featureCollection{
		Type:     "FeatureCollection",
		Features: make([]feature, len(g.cellID)),
	}
	for i, id := range g.cellID {
		geometry, err := geojson.ToGeoJSON(roundPolygon(g.polygons[i], dp))
		if err != nil {
			return nil, fmt.Errorf("grid: encoding cell %d: %v", id, err)
		}
		fc.Features[i] = feature{
			Type:     "Feature",
			Geometry: geometry,
			Properties: cellProperties{
				CellID: id,
				CellCX: round(g.centroids[i].X, dp),
				CellCY: round(g.centroids[i].Y, dp),
			},
		}
	}
	return fc, nil
}

// Dumps returns g as a GeoJSON FeatureCollection with one Polygon feature per
// cell, rounding coordinates to dp decimal places. The cell_id and the cell
// centroid (cell_cx, cell_cy) are stored as feature properties. No
// coordinate reference system is attached, so the output is not strictly
// conformant GeoJSON.
func (g *Grid) Dumps(dp int) (string, error) {
	fc, err := g.featureCollection(dp)
	if err != nil {
		g.Log.Error(err)
		return "", err
	}
	b, err := json.Marshal(fc)
	if err != nil {
		return "", fmt.Errorf("grid: %v", err)
	}
	return string(b), nil
}

// Dump writes g to w in the format described for Dumps.
func (g *Grid) Dump(w io.Writer, dp int) error {
	fc, err := g.featureCollection(dp)
	if err != nil {
		g.Log.Error(err)
		return err
	}
	if err := json.NewEncoder(w).Encode(fc); err != nil {
		return fmt.Errorf("grid: writing GeoJSON: %v", err)
	}
	return nil
}
