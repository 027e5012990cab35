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

// Package axes reconciles labelled input arrays with the core axes of a
// simulation. Each core axis ("spatial", "time") has a set of validators,
// each recognising one layout of input data. A validator checks that the
// data is consistent with the grid and returns it re-indexed onto the
// canonical axis, for example the grid's cell_id ordering.
package axes

import (
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/ecosim/darray"
	"github.com/spatialmodel/ecosim/grid"
)

// A Validator recognises and canonicalises one layout of data along a core
// axis. Validators hold no state between calls.
type Validator interface {
	// Name identifies the validator in provenance records.
	Name() string

	// CoreAxis is the name of the axis the validator serves.
	CoreAxis() string

	// DimNames are the dimension names the validator recognises.
	DimNames() []string

	// CanValidate reports whether the validator applies to value on g.
	CanValidate(value *darray.DataArray, g *grid.Grid) bool

	// Validate checks value against g and returns it re-indexed onto the
	// canonical axis. value is not modified.
	Validate(value *darray.DataArray, g *grid.Grid) (*darray.DataArray, error)
}

// Provenance records, for each core axis, the name of the validator that
// was applied, or "" if the data did not use the axis.
type Provenance map[string]string

// NoValidatorError is returned when data uses the dimension names of a core
// axis but no validator for that axis can handle it.
type NoValidatorError struct {
	Axis string
	Dims []string
}

func (e *NoValidatorError) Error() string {
	return fmt.Sprintf("DataArray uses '%s' axis dimension names but does not match a validator: %v", e.Axis, e.Dims)
}

// AmbiguousValidatorError is returned when more than one validator for a
// core axis claims the same data. It indicates a defect in the registered
// validator set rather than in the data.
type AmbiguousValidatorError struct {
	Axis       string
	Validators []string
}

func (e *AmbiguousValidatorError) Error() string {
	return fmt.Sprintf("Validators on '%s' axis not mutually exclusive: %v", e.Axis, e.Validators)
}

// Registry holds the validators for each core axis. Axes are kept in the
// order they were first registered.
type Registry struct {
	mu         sync.RWMutex
	axes       []string
	validators map[string][]Validator
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{validators: make(map[string][]Validator)}
}

// Register adds v to the validators for its core axis.
func (r *Registry) Register(v Validator) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	axis := v.CoreAxis()
	for _, existing := range r.validators[axis] {
		if existing.Name() == v.Name() {
			return fmt.Errorf("axes: validator %s is already registered on the '%s' axis", v.Name(), axis)
		}
	}
	if _, ok := r.validators[axis]; !ok {
		r.axes = append(r.axes, axis)
	}
	r.validators[axis] = append(r.validators[axis], v)
	return nil
}

// Axes returns the registered core axis names in registration order.
func (r *Registry) Axes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string{}, r.axes...)
}

// Validators returns the validators registered for axis.
func (r *Registry) Validators(axis string) []Validator {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Validator{}, r.validators[axis]...)
}

// DimNames returns the sorted union of the dimension names recognised by
// the validators for axis.
func (r *Registry) DimNames(axis string) []string {
	set := make(map[string]bool)
	for _, v := range r.Validators(axis) {
		for _, d := range v.DimNames() {
			set[d] = true
		}
	}
	o := make([]string, 0, len(set))
	for d := range set {
		o = append(o, d)
	}
	sort.Strings(o)
	return o
}

// DefaultRegistry returns a registry holding the built-in validators: the
// four spatial layouts followed by the time axis.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, v := range []Validator{
		CellIDCoord{},
		CellIDDim{},
		XYCoordsSquare{},
		XYDimsSquare{},
		Time{},
	} {
		if err := r.Register(v); err != nil {
			panic(err)
		}
	}
	return r
}

// Validate runs value through the validators of every core axis in turn.
// Axes whose dimension names do not appear in value are skipped. For the
// others exactly one validator must apply; its output is the input to the
// next axis. The final array is returned with a record of the validator
// used on each axis.
func (r *Registry) Validate(value *darray.DataArray, g *grid.Grid, log logrus.FieldLogger) (*darray.DataArray, Provenance, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	prov := make(Provenance)
	for _, axis := range r.Axes() {
		if !usesAny(value, r.DimNames(axis)) {
			prov[axis] = ""
			continue
		}

		var found []Validator
		for _, v := range r.Validators(axis) {
			if v.CanValidate(value, g) {
				found = append(found, v)
			}
		}
		switch len(found) {
		case 0:
			err := &NoValidatorError{Axis: axis, Dims: value.Dims()}
			log.WithField("variable", value.Name).Error(err)
			return nil, nil, err
		case 1:
		default:
			names := make([]string, len(found))
			for i, v := range found {
				names[i] = v.Name()
			}
			err := &AmbiguousValidatorError{Axis: axis, Validators: names}
			log.WithField("variable", value.Name).Error(err)
			return nil, nil, err
		}

		v := found[0]
		out, err := v.Validate(value, g)
		if err != nil {
			log.WithFields(logrus.Fields{
				"variable":  value.Name,
				"axis":      axis,
				"validator": v.Name(),
			}).Error(err)
			return nil, nil, err
		}
		log.WithFields(logrus.Fields{
			"variable":  value.Name,
			"axis":      axis,
			"validator": v.Name(),
		}).Debug("validated data array")
		value = out
		prov[axis] = v.Name()
	}
	return value, prov, nil
}

// ValidateDataArray validates value against g using the built-in
// validators.
func ValidateDataArray(value *darray.DataArray, g *grid.Grid, log logrus.FieldLogger) (*darray.DataArray, Provenance, error) {
	return DefaultRegistry().Validate(value, g, log)
}

func usesAny(value *darray.DataArray, dims []string) bool {
	for _, d := range dims {
		if value.HasDim(d) {
			return true
		}
	}
	return false
}
