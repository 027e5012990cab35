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
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/lnashier/viper"
	"github.com/spatialmodel/ecosim/data"
	"github.com/spatialmodel/ecosim/grid"
	"github.com/spf13/cast"
)

// gridKeys are the configuration keys of the core.grid section that are
// passed to grid.FromConfig.
var gridKeys = []string{"grid_type", "cell_area", "cell_nx", "cell_ny", "xoff", "yoff"}

// GridConfig returns the grid settings in cfg as the nested mapping
// expected by grid.FromConfig.
func GridConfig(cfg *viper.Viper) map[string]interface{} {
	section := make(map[string]interface{})
	for _, k := range gridKeys {
		if v := cfg.Get("core.grid." + k); v != nil {
			section[k] = v
		}
	}
	return map[string]interface{}{
		"core": map[string]interface{}{"grid": section},
	}
}

// DataVariables returns the variables listed in the core.data.variable
// configuration setting. The setting is an array of tables with file and
// var_name keys, or the same as a JSON string if it was set from the
// command line. Environment variables in file paths are expanded.
func DataVariables(cfg *viper.Viper) ([]data.VariableConfig, error) {
	const key = "core.data.variable"
	var raw []interface{}
	switch v := cfg.Get(key).(type) {
	case nil:
		return nil, nil
	case string:
		if v == "" {
			return nil, nil
		}
		d := json.NewDecoder(bytes.NewBufferString(v))
		if err := d.Decode(&raw); err != nil {
			return nil, fmt.Errorf("ecoutil: parsing %s: %w", key, err)
		}
	case []map[string]interface{}:
		for _, m := range v {
			raw = append(raw, m)
		}
	default:
		var err error
		if raw, err = cast.ToSliceE(v); err != nil {
			return nil, fmt.Errorf("ecoutil: parsing %s: %w", key, err)
		}
	}

	o := make([]data.VariableConfig, len(raw))
	for i, r := range raw {
		m, err := cast.ToStringMapE(r)
		if err != nil {
			return nil, fmt.Errorf("ecoutil: parsing %s entry %d: %w", key, i, err)
		}
		file, err := cast.ToStringE(m["file"])
		if err != nil {
			return nil, fmt.Errorf("ecoutil: parsing %s entry %d file: %w", key, i, err)
		}
		name, err := cast.ToStringE(m["var_name"])
		if err != nil {
			return nil, fmt.Errorf("ecoutil: parsing %s entry %d var_name: %w", key, i, err)
		}
		if file == "" || name == "" {
			return nil, fmt.Errorf("ecoutil: %s entry %d needs both file and var_name", key, i)
		}
		o[i] = data.VariableConfig{File: os.ExpandEnv(file), VarName: name}
	}
	return o, nil
}

// checkOutputFile makes sure that an output file is specified and that its
// directory exists, and expands any environment variables.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`ecoutil: you need to specify an output file (for example: OutputFile="grid.geojson")`)
	}
	f = os.ExpandEnv(f)
	if _, err := os.Stat(filepath.Dir(f)); err != nil {
		return f, fmt.Errorf("ecoutil: the output file directory doesn't exist: %v", err)
	}
	return f, nil
}

type gridSection struct {
	GridType          string  `toml:"grid_type"`
	CellArea          float64 `toml:"cell_area"`
	CellNX            int     `toml:"cell_nx"`
	CellNY            int     `toml:"cell_ny"`
	XOff              float64 `toml:"xoff"`
	YOff              float64 `toml:"yoff"`
	NeighbourDistance float64 `toml:"neighbour_distance"`
	PopulateDistances bool    `toml:"populate_distances"`
}

type dataSection struct {
	Variable []data.VariableConfig `toml:"variable"`
}

type coreSection struct {
	Grid gridSection `toml:"grid"`
	Data dataSection `toml:"data"`
}

// templateConfig is the layout of an ecosim configuration file.
type templateConfig struct {
	OutputFile       string
	GeoJSONPrecision int
	Core             coreSection `toml:"core"`
}

// WriteTemplate writes a configuration file holding the default settings
// to w.
func WriteTemplate(w io.Writer) error {
	g := grid.DefaultConfig()
	c := templateConfig{
		OutputFile:       "grid.geojson",
		GeoJSONPrecision: grid.DefaultPrecision,
		Core: coreSection{
			Grid: gridSection{
				GridType: g.GridType,
				CellArea: g.CellArea,
				CellNX:   g.CellNX,
				CellNY:   g.CellNY,
				XOff:     g.XOff,
				YOff:     g.YOff,
			},
			Data: dataSection{
				Variable: []data.VariableConfig{
					{File: "${ECOSIM_DATA}/temperature.nc", VarName: "temperature"},
				},
			},
		},
	}
	if err := toml.NewEncoder(w).Encode(c); err != nil {
		return fmt.Errorf("ecoutil: writing configuration template: %w", err)
	}
	return nil
}
