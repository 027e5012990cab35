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

package ecoutil

import (
	"fmt"
	"io"

	"github.com/spatialmodel/ecosim/grid"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// PlotGrid draws the cells of g to w as a PNG image. If values is not nil
// it must hold one value per cell, and cells are coloured by value.
func PlotGrid(w io.Writer, g *grid.Grid, values []float64) error {
	var cm palette.ColorMap
	if values != nil {
		if len(values) != g.NCells() {
			return fmt.Errorf("ecoutil: %d values for %d grid cells", len(values), g.NCells())
		}
		cm = moreland.ExtendedBlackBody()
		min, max := floats.Min(values), floats.Max(values)
		if max == min {
			max = min + 1
		}
		cm.SetMin(min)
		cm.SetMax(max)
	}

	p, err := plot.New()
	if err != nil {
		return fmt.Errorf("ecoutil: %v", err)
	}
	p.Title.Text = fmt.Sprintf("%s grid, %d cells", g.GridType(), g.NCells())
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "y (m)"

	for i := 0; i < g.NCells(); i++ {
		ring := g.Polygon(i)[0]
		xys := make(plotter.XYs, len(ring))
		for j, pt := range ring {
			xys[j].X, xys[j].Y = pt.X, pt.Y
		}
		poly, err := plotter.NewPolygon(xys)
		if err != nil {
			return fmt.Errorf("ecoutil: plotting cell %d: %v", i, err)
		}
		if cm != nil {
			c, err := cm.At(values[i])
			if err != nil {
				return fmt.Errorf("ecoutil: colouring cell %d: %v", i, err)
			}
			poly.Color = c
		}
		p.Add(poly)
	}

	img := vgimg.New(6*vg.Inch, 6*vg.Inch)
	p.Draw(draw.New(img))
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("ecoutil: writing plot: %v", err)
	}
	return nil
}
