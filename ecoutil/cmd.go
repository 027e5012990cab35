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

// Package ecoutil holds the command-line interface to ecosim.
package ecoutil

import (
	"fmt"
	"io"
	"os"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/ecosim"
	"github.com/spatialmodel/ecosim/axes"
	"github.com/spatialmodel/ecosim/data"
	"github.com/spatialmodel/ecosim/grid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	def := grid.DefaultConfig()

	// Options are the configuration options available to ecosim.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel is the minimum severity of log messages to print.
              One of debug, info, warning, error, fatal, or panic.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "core.grid.grid_type",
			usage: `
              core.grid.grid_type is the cell lattice. Either "square"
              or "hexagon".`,
			defaultVal: def.GridType,
			flagsets:   []*pflag.FlagSet{gridCmd.Flags(), validateCmd.Flags()},
		},
		{
			name: "core.grid.cell_area",
			usage: `
              core.grid.cell_area is the area of each grid cell in m².`,
			defaultVal: def.CellArea,
			flagsets:   []*pflag.FlagSet{gridCmd.Flags(), validateCmd.Flags()},
		},
		{
			name: "core.grid.cell_nx",
			usage: `
              core.grid.cell_nx is the number of grid cells in the x direction.`,
			defaultVal: def.CellNX,
			flagsets:   []*pflag.FlagSet{gridCmd.Flags(), validateCmd.Flags()},
		},
		{
			name: "core.grid.cell_ny",
			usage: `
              core.grid.cell_ny is the number of grid cells in the y direction.`,
			defaultVal: def.CellNY,
			flagsets:   []*pflag.FlagSet{gridCmd.Flags(), validateCmd.Flags()},
		},
		{
			name: "core.grid.xoff",
			usage: `
              core.grid.xoff is the x coordinate of the lower left corner
              of the grid, in m.`,
			defaultVal: def.XOff,
			flagsets:   []*pflag.FlagSet{gridCmd.Flags(), validateCmd.Flags()},
		},
		{
			name: "core.grid.yoff",
			usage: `
              core.grid.yoff is the y coordinate of the lower left corner
              of the grid, in m.`,
			defaultVal: def.YOff,
			flagsets:   []*pflag.FlagSet{gridCmd.Flags(), validateCmd.Flags()},
		},
		{
			name: "core.grid.neighbour_distance",
			usage: `
              core.grid.neighbour_distance is the distance in m within which
              grid cells are neighbours. Neighbours are not computed if it
              is zero.`,
			defaultVal: 0.,
			flagsets:   []*pflag.FlagSet{gridCmd.Flags()},
		},
		{
			name: "core.grid.populate_distances",
			usage: `
              core.grid.populate_distances specifies whether to compute the
              distances between all pairs of grid cells up front.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{gridCmd.Flags()},
		},
		{
			name: "core.data.variable",
			usage: `
              core.data.variable lists the data variables to load, as
              tables with "file" and "var_name" keys. When set from the
              command line it should be in JSON format, e.g.
              [{"file":"temp.nc","var_name":"temperature"}].
              File paths can contain environment variables.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{validateCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path where the grid GeoJSON should be written.
              It can contain environment variables.`,
			shorthand:  "o",
			defaultVal: "grid.geojson",
			flagsets:   []*pflag.FlagSet{gridCmd.Flags()},
		},
		{
			name: "GeoJSONPrecision",
			usage: `
              GeoJSONPrecision is the number of decimal places of the grid
              GeoJSON coordinates.`,
			defaultVal: grid.DefaultPrecision,
			flagsets:   []*pflag.FlagSet{gridCmd.Flags()},
		},
		{
			name: "PlotFile",
			usage: `
              PlotFile is the path where a PNG image of the grid should be
              written. No image is drawn if it is empty.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{gridCmd.Flags(), validateCmd.Flags()},
		},
		{
			name: "PlotVariable",
			usage: `
              PlotVariable is the name of a loaded variable with only a
              spatial dimension to colour the grid cells of PlotFile by.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{validateCmd.Flags()},
		},
		{
			name: "DataOutputFile",
			usage: `
              DataOutputFile is the path where the validated variables should
              be written in NetCDF format. Nothing is written if it is empty.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{validateCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("ECOSIM")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case bool:
				set.Bool(option.name, option.defaultVal.(bool), option.usage)
			case int:
				set.Int(option.name, option.defaultVal.(int), option.usage)
			case float64:
				set.Float64(option.name, option.defaultVal.(float64), option.usage)
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(gridCmd)
	Root.AddCommand(validateCmd)
	Root.AddCommand(configCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(os.ExpandEnv(cfgpath))
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("ecosim: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// newLogger returns a logger that writes to the error stream of cmd at the
// configured level.
func newLogger(cmd *cobra.Command) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(Cfg.GetString("LogLevel"))
	if err != nil {
		return nil, fmt.Errorf("ecosim: %v", err)
	}
	log := logrus.New()
	log.Out = cmd.OutOrStderr()
	log.Level = level
	return log, nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "ecosim",
	Short: "Set up the spatial domain and input data of an ecosystem simulation.",
	Long: `ecosim creates the spatial grid of an ecosystem simulation and checks that
input data can be mapped onto it.

Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'ECOSIM_var' where 'var' is the
name of the variable to be set. Use the 'config' subcommand to print a
configuration file template.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of ecosim.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("ecosim v%s\n", ecosim.Version)
	},
	DisableAutoGenTag: true,
}

// gridCmd creates a grid and saves it as GeoJSON.
var gridCmd = &cobra.Command{
	Use:   "grid",
	Short: "Create a grid and save it as GeoJSON",
	Long: `grid creates the grid described by the core.grid configuration section
and writes it to OutputFile as a GeoJSON feature collection with one
feature per cell.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger(cmd)
		if err != nil {
			return err
		}
		outputFile, err := checkOutputFile(Cfg.GetString("OutputFile"))
		if err != nil {
			return err
		}
		plotFile, err := maybeOutputFile(Cfg.GetString("PlotFile"))
		if err != nil {
			return err
		}
		return Grid(log, GridConfig(Cfg), outputFile, Cfg.GetInt("GeoJSONPrecision"),
			Cfg.GetBool("core.grid.populate_distances"),
			Cfg.GetFloat64("core.grid.neighbour_distance"), plotFile)
	},
	DisableAutoGenTag: true,
}

// validateCmd loads data variables onto a grid.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that data variables map onto the grid",
	Long: `validate creates the grid described by the core.grid configuration section,
loads every variable listed in core.data.variable, and reports which
validator mapped each variable onto each core axis. Supported file formats
are NetCDF (.nc), CSV (.csv) and Excel (.xlsx).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger(cmd)
		if err != nil {
			return err
		}
		vars, err := DataVariables(Cfg)
		if err != nil {
			return err
		}
		dataFile, err := maybeOutputFile(Cfg.GetString("DataOutputFile"))
		if err != nil {
			return err
		}
		plotFile, err := maybeOutputFile(Cfg.GetString("PlotFile"))
		if err != nil {
			return err
		}
		return Validate(cmd.OutOrStdout(), log, GridConfig(Cfg), vars, dataFile,
			plotFile, Cfg.GetString("PlotVariable"))
	},
	DisableAutoGenTag: true,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print a configuration file template",
	Long: `config prints a configuration file in TOML format holding the default
settings, which can be edited and passed back with the --config flag.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return WriteTemplate(cmd.OutOrStdout())
	},
	DisableAutoGenTag: true,
}

// maybeOutputFile is like checkOutputFile but allows the file to be
// left unset.
func maybeOutputFile(f string) (string, error) {
	if f == "" {
		return "", nil
	}
	return checkOutputFile(f)
}

// Grid creates a grid from the core.grid section of config and writes it
// to outputFile as GeoJSON with coordinates rounded to dp decimal places.
// If populateDistances is true the pairwise cell distances are computed,
// and if neighbourDistance is positive the cell neighbours are found.
// If plotFile is not empty a PNG image of the grid is written there.
func Grid(log logrus.FieldLogger, config map[string]interface{}, outputFile string, dp int, populateDistances bool, neighbourDistance float64, plotFile string) error {
	w, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("ecosim: problem creating grid output file: %v", err)
	}
	defer w.Close()

	steps := []ecosim.SetupFunc{ecosim.GridFromConfig(config)}
	if populateDistances {
		steps = append(steps, ecosim.PopulateDistances())
	}
	if neighbourDistance > 0 {
		steps = append(steps, ecosim.SetNeighbours(neighbourDistance))
	}
	steps = append(steps, ecosim.SaveGrid(w, dp))
	s := &ecosim.Simulation{Log: log, InitFuncs: steps}
	if err := s.Init(); err != nil {
		return err
	}
	if neighbourDistance > 0 {
		n, _ := s.Grid.Neighbours()
		var total int
		for _, c := range n {
			total += len(c)
		}
		log.WithField("mean_neighbours", float64(total)/float64(len(n))).Info("neighbours set")
	}
	if plotFile != "" {
		if err := writePlot(plotFile, s.Grid, nil); err != nil {
			return err
		}
	}
	log.WithFields(logrus.Fields{
		"grid": s.Grid.String(),
		"file": outputFile,
	}).Info("grid successfully created")
	return nil
}

// Validate creates a grid from config and loads vars onto it, then writes
// the axis provenance of each variable to w. If dataFile is not empty the
// validated variables are written there in NetCDF format. If plotFile is
// not empty an image of the grid is written there, coloured by
// plotVariable if it is set.
func Validate(w io.Writer, log logrus.FieldLogger, config map[string]interface{}, vars []data.VariableConfig, dataFile, plotFile, plotVariable string) error {
	s := &ecosim.Simulation{
		Log: log,
		InitFuncs: []ecosim.SetupFunc{
			ecosim.GridFromConfig(config),
			ecosim.LoadVariables(vars),
		},
	}
	if err := s.Init(); err != nil {
		return err
	}
	for _, name := range s.Data.Names() {
		p, _ := s.Data.Provenance(name)
		fmt.Fprintf(w, "%s:", name)
		for _, axis := range s.Validators.Axes() {
			v := p[axis]
			if v == "" {
				v = "-"
			}
			fmt.Fprintf(w, " %s=%s", axis, v)
		}
		fmt.Fprintln(w)
	}

	if dataFile != "" {
		f, err := os.Create(dataFile)
		if err != nil {
			return fmt.Errorf("ecosim: problem creating data output file: %v", err)
		}
		if err := s.Data.WriteNetCDF(f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		log.WithField("file", dataFile).Info("data written")
	}

	if plotFile != "" {
		var values []float64
		if plotVariable != "" {
			v, err := s.Data.Get(plotVariable)
			if err != nil {
				return err
			}
			if dims := v.Dims(); len(dims) != 1 || dims[0] != axes.CellIDDimName {
				return fmt.Errorf("ecosim: PlotVariable %s has dimensions %v; it can only have %s", plotVariable, dims, axes.CellIDDimName)
			}
			values = v.Values()
		}
		if err := writePlot(plotFile, s.Grid, values); err != nil {
			return err
		}
	}
	return nil
}

func writePlot(file string, g *grid.Grid, values []float64) error {
	f, err := os.Create(file)
	if err != nil {
		return fmt.Errorf("ecosim: problem creating plot file: %v", err)
	}
	if err := PlotGrid(f, g, values); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
