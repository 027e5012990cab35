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

// Package data holds the shared store of simulation variables. Every array
// entering the store is validated against the simulation grid, so that
// consumers only see data indexed along the canonical core axes.
package data

import (
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/ecosim/axes"
	"github.com/spatialmodel/ecosim/darray"
	"github.com/spatialmodel/ecosim/grid"
)

// VariableConfig names a variable to load and the file holding it.
type VariableConfig struct {
	File    string `toml:"file"`
	VarName string `toml:"var_name"`
}

// Data is a store of named, validated data arrays.
type Data struct {
	// Grid is the grid that all stored data is validated against.
	Grid *grid.Grid

	// Log receives messages about loading and validation.
	Log logrus.FieldLogger

	validators *axes.Registry

	mu   sync.RWMutex
	vars map[string]*darray.DataArray
	prov map[string]axes.Provenance
}

// New creates an empty store for data on g. If validators is nil, the
// built-in validators are used; if log is nil, the standard logrus logger
// is used.
func New(g *grid.Grid, validators *axes.Registry, log logrus.FieldLogger) *Data {
	if validators == nil {
		validators = axes.DefaultRegistry()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Data{
		Grid:       g,
		Log:        log,
		validators: validators,
		vars:       make(map[string]*darray.DataArray),
		prov:       make(map[string]axes.Provenance),
	}
}

// Set validates value and stores the result under name, replacing any
// existing variable of that name.
func (d *Data) Set(name string, value *darray.DataArray) error {
	if value == nil {
		err := fmt.Errorf("data: cannot store nil data array as %s", name)
		d.Log.Error(err)
		return err
	}
	v, prov, err := d.validators.Validate(value, d.Grid, d.Log)
	if err != nil {
		return err
	}
	v = v.Copy()
	v.Name = name

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.vars[name]; ok {
		d.Log.WithField("variable", name).Info("replacing data array")
	} else {
		d.Log.WithField("variable", name).Info("adding data array")
	}
	d.vars[name] = v
	d.prov[name] = prov
	return nil
}

// Get returns the variable called name.
func (d *Data) Get(name string) (*darray.DataArray, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	v, ok := d.vars[name]
	if !ok {
		return nil, fmt.Errorf("data: no variable %s", name)
	}
	return v, nil
}

// Contains reports whether a variable called name is stored.
func (d *Data) Contains(name string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.vars[name]
	return ok
}

// Names returns the names of the stored variables in sorted order.
func (d *Data) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.vars))
	for n := range d.vars {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Provenance returns the validators applied to the variable called name.
func (d *Data) Provenance(name string) (axes.Provenance, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.prov[name]
	if !ok {
		return nil, false
	}
	o := make(axes.Provenance, len(p))
	for k, v := range p {
		o[k] = v
	}
	return o, true
}

// OnCoreAxis reports whether the variable called name was validated on the
// given core axis.
func (d *Data) OnCoreAxis(name, axis string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.prov[name][axis] != ""
}

// LoadFile reads varName from file using the reader registered for the
// file's extension and stores it.
func (d *Data) LoadFile(file, varName string) error {
	log := d.Log.WithFields(logrus.Fields{"file": file, "variable": varName})
	read, err := readerFor(file)
	if err != nil {
		log.Error(err)
		return err
	}
	v, err := read(file, varName)
	if err != nil {
		log.Error(err)
		return err
	}
	if err := d.Set(varName, v); err != nil {
		return err
	}
	log.Info("loaded data")
	return nil
}

// LoadVariables loads every variable in vars. Variable names must be
// unique. All variables are attempted; an error is returned if any fail.
func (d *Data) LoadVariables(vars []VariableConfig) error {
	seen := make(map[string]bool, len(vars))
	var dups []string
	for _, v := range vars {
		if seen[v.VarName] {
			dups = append(dups, v.VarName)
		}
		seen[v.VarName] = true
	}
	if len(dups) > 0 {
		err := fmt.Errorf("data: duplicate variable names in data configuration: %v", dups)
		d.Log.Error(err)
		return err
	}

	var failed int
	for _, v := range vars {
		if err := d.LoadFile(v.File, v.VarName); err != nil {
			failed++
		}
	}
	if failed > 0 {
		err := fmt.Errorf("data: %d of %d variables failed to load", failed, len(vars))
		d.Log.Error(err)
		return err
	}
	return nil
}
