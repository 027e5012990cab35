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

// Package ecosim sets up the shared context of an ecosystem simulation:
// the spatial grid, the validators for incoming data, and the store of
// validated variables.
package ecosim

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/ecosim/axes"
	"github.com/spatialmodel/ecosim/data"
	"github.com/spatialmodel/ecosim/grid"
)

// Simulation holds the objects shared by the components of a simulation.
type Simulation struct {
	// Grid is the spatial domain of the simulation.
	Grid *grid.Grid

	// Validators reconcile incoming data with the core axes.
	Validators *axes.Registry

	// Data holds the validated simulation variables. It is created by
	// GridFromConfig or UseGrid.
	Data *data.Data

	// Log receives messages from every setup step. If nil, the standard
	// logrus logger is used.
	Log logrus.FieldLogger

	// InitFuncs are run in order by Init.
	InitFuncs []SetupFunc
}

// SetupFunc is a step in setting up a simulation.
type SetupFunc func(s *Simulation) error

// Init runs the InitFuncs of s in order, stopping at the first error.
func (s *Simulation) Init() error {
	if s.Log == nil {
		s.Log = logrus.StandardLogger()
	}
	if s.Validators == nil {
		s.Validators = axes.DefaultRegistry()
	}
	for i, f := range s.InitFuncs {
		if err := f(s); err != nil {
			return fmt.Errorf("ecosim: setup step %d: %w", i, err)
		}
	}
	return nil
}

// UseGrid sets the simulation grid to g and creates an empty data store
// on it.
func UseGrid(g *grid.Grid) SetupFunc {
	return func(s *Simulation) error {
		s.Grid = g
		s.Data = data.New(g, s.Validators, s.Log)
		return nil
	}
}

// GridFromConfig creates the simulation grid from the core.grid section of
// a configuration mapping and creates an empty data store on it.
func GridFromConfig(config map[string]interface{}) SetupFunc {
	return func(s *Simulation) error {
		g, err := grid.FromConfig(config, s.Log)
		if err != nil {
			return err
		}
		return UseGrid(g)(s)
	}
}

func (s *Simulation) needGrid() error {
	if s.Grid == nil {
		err := fmt.Errorf("ecosim: the grid has not been set up")
		s.Log.Error(err)
		return err
	}
	return nil
}

// PopulateDistances computes and caches the distances between all pairs of
// grid cells.
func PopulateDistances() SetupFunc {
	return func(s *Simulation) error {
		if err := s.needGrid(); err != nil {
			return err
		}
		s.Grid.PopulateDistances()
		return nil
	}
}

// SetNeighbours finds the neighbours of each grid cell within distance.
func SetNeighbours(distance float64) SetupFunc {
	return func(s *Simulation) error {
		if err := s.needGrid(); err != nil {
			return err
		}
		return s.Grid.SetNeighbours(distance)
	}
}

// LoadVariables loads the given variables into the data store.
func LoadVariables(vars []data.VariableConfig) SetupFunc {
	return func(s *Simulation) error {
		if err := s.needGrid(); err != nil {
			return err
		}
		return s.Data.LoadVariables(vars)
	}
}

// SaveGrid writes the grid to w as GeoJSON, with coordinates rounded to dp
// decimal places.
func SaveGrid(w io.Writer, dp int) SetupFunc {
	return func(s *Simulation) error {
		if err := s.needGrid(); err != nil {
			return err
		}
		return s.Grid.Dump(w, dp)
	}
}
