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
	"github.com/spatialmodel/ecosim/darray"
	"github.com/spatialmodel/ecosim/grid"
)

// TimeAxis is the name of the time axis.
const TimeAxis = "time"

// Time accepts any data with a time dimension and returns it unchanged.
// No time indexing is imposed yet.
type Time struct{}

func (Time) Name() string       { return "time" }
func (Time) CoreAxis() string   { return TimeAxis }
func (Time) DimNames() []string { return []string{"time"} }

func (Time) CanValidate(value *darray.DataArray, _ *grid.Grid) bool {
	return value.HasDim("time")
}

func (Time) Validate(value *darray.DataArray, _ *grid.Grid) (*darray.DataArray, error) {
	return value, nil
}
