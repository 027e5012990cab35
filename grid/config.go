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
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
)

// ConfigurationError reports a grid that could not be created from a
// configuration, whatever the underlying cause.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("grid: configuration error: %v", e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// FromConfig creates a grid from the "core" → "grid" section of a nested
// configuration mapping. Missing values take their defaults from
// DefaultConfig. Any failure is logged and returned as a
// *ConfigurationError.
func FromConfig(config map[string]interface{}, log logrus.FieldLogger) (*Grid, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	c, err := configFromMap(config)
	if err == nil {
		var g *Grid
		if g, err = New(c, log); err == nil {
			return g, nil
		}
	}
	log.WithError(err).Error("grid could not be configured")
	return nil, &ConfigurationError{Err: err}
}

func configFromMap(config map[string]interface{}) (Config, error) {
	c := DefaultConfig()
	core, err := subMap(config, "core")
	if err != nil {
		return c, err
	}
	section, err := subMap(core, "grid")
	if err != nil {
		return c, err
	}
	for k, v := range section {
		switch k {
		case "grid_type":
			c.GridType, err = cast.ToStringE(v)
		case "cell_area":
			c.CellArea, err = cast.ToFloat64E(v)
		case "cell_nx":
			c.CellNX, err = cast.ToIntE(v)
		case "cell_ny":
			c.CellNY, err = cast.ToIntE(v)
		case "xoff":
			c.XOff, err = cast.ToFloat64E(v)
		case "yoff":
			c.YOff, err = cast.ToFloat64E(v)
		}
		if err != nil {
			return c, fmt.Errorf("core.grid.%s: %v", k, err)
		}
	}
	return c, nil
}

// subMap returns the mapping stored under key, or an empty mapping
// if key is absent.
func subMap(m map[string]interface{}, key string) (map[string]interface{}, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return map[string]interface{}{}, nil
	}
	o, err := cast.ToStringMapE(v)
	if err != nil {
		return nil, fmt.Errorf("configuration section %s: %v", key, err)
	}
	return o, nil
}
