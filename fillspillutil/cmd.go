/*
Copyright © 2018 the FillSpill authors.
This file is part of FillSpill.

FillSpill is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

FillSpill is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with FillSpill.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package fillspillutil contains the command-line interface for the
// FillSpill surface water model, along with functions for reading
// and writing model inputs and outputs.
package fillspillutil

import (
	"fmt"
	"os"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/fillspill"
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
	// Options are the configuration options available to FillSpill.
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
			name: "Topography",
			usage: `
              Topography is the path to a NetCDF file with the land surface
              elevation of each grid cell [m].`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "WaterTable",
			usage: `
              WaterTable is the path to a NetCDF file with the initial water
              table depth of each grid cell [m]. Negative values are below the
              surface and positive values are standing water. If empty, the
              water table is at the surface everywhere.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "SurfaceWater",
			usage: `
              SurfaceWater is the path to a NetCDF file with the depth of
              surface water to be distributed [m]. It is optional.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Ksat",
			usage: `
              Ksat is the path to a NetCDF file with the hydraulic conductivity
              used for infiltration of water in transit [m/s]. It is optional.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "SurfaceEvap",
			usage: `
              SurfaceEvap is the path to a NetCDF file with the surface
              evaporation rate [m/s]. It is optional.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Slope",
			usage: `
              Slope is the path to a NetCDF file with the local slope of each
              grid cell [m/m]. It is optional.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Labels",
			usage: `
              Labels is the path to a NetCDF file with the leaf depression
              that each grid cell belongs to. Ocean cells have label 0.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "FinalLabels",
			usage: `
              FinalLabels is the path to a NetCDF file with the top-level
              depression that each grid cell belongs to.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "FlowDirs",
			usage: `
              FlowDirs is the path to a NetCDF file with the D8 flow direction
              of each grid cell: 0 for none, then 1 through 8 starting to the
              west and turning clockwise.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "VarName",
			usage: `
              VarName is the name of the variable to read from each of the
              gridded input files.`,
			defaultVal: "value",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Hierarchy",
			usage: `
              Hierarchy is the path to a TOML file describing the depression
              hierarchy, with one [[Depression]] table per depression.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), dotCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path to the NetCDF file where the final water
              table depth should be saved.`,
			shorthand:  "o",
			defaultVal: "fillspill_output.nc",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), plotCmd.Flags()},
		},
		{
			name: "PlotFile",
			usage: `
              PlotFile is the path to an image file where a map of standing water
              should be saved. The format is chosen by the file extension.
              If empty, no map is made by the run command.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), plotCmd.Flags()},
		},
		{
			name: "DotFile",
			usage: `
              DotFile is the path to the file where the GraphViz representation
              of the hierarchy should be saved. If empty, it is written to
              standard output.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{dotCmd.Flags()},
		},
		{
			name: "LogFile",
			usage: `
              LogFile is the path to the desired logfile location. It can include
              environment variables. If LogFile is left blank, the logfile will be saved in
              the same location as the OutputFile.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel is the minimum severity of log messages: one of
              debug, info, warning, or error.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Cycles",
			usage: `
              Cycles is the number of fill-spill-merge cycles to run.`,
			shorthand:  "n",
			defaultVal: 1,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Workers",
			usage: `
              Workers is the number of goroutines used for calculations on
              individual grid cells. If < 1, the number of processors is used.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Rain",
			usage: `
              Rain is a depth of water [m] added to every grid cell before the
              first cycle.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Geometry.CellsPerDegree",
			usage: `
              Geometry.CellsPerDegree is the number of grid cells per degree
              of latitude and longitude. If > 0, the grid is assumed to be in
              geographic coordinates and cell sizes vary with latitude.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Geometry.SouthernEdge",
			usage: `
              Geometry.SouthernEdge is the latitude of the center of the first
              (southernmost) row of a geographic grid [degrees].`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Geometry.Dx",
			usage: `
              Geometry.Dx is the east-west cell size of a projected grid [m].`,
			defaultVal: 30.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Geometry.Dy",
			usage: `
              Geometry.Dy is the north-south cell size of a projected grid [m].`,
			defaultVal: 30.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Transit.Model",
			usage: `
              Transit.Model is the model of water losses while water flows
              across the landscape: 'manning' for infiltration and evaporation
              of sheet flow, or 'none'.`,
			defaultVal: "manning",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Transit.ManningsN",
			usage: `
              Transit.ManningsN is Manning's roughness coefficient [s/m^(1/3)].`,
			defaultVal: 0.05,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Transit.MinSlope",
			usage: `
              Transit.MinSlope is the smallest slope used in transit calculations,
              which keeps water on flat cells moving.`,
			defaultVal: 1e-6,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("FILLSPILL")

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
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
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
	Root.AddCommand(runCmd)
	Root.AddCommand(plotCmd)
	Root.AddCommand(dotCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(os.ExpandEnv(cfgpath))
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("fillspill: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "fillspill",
	Short: "A surface water fill-spill-merge model.",
	Long: `FillSpill moves surface water over a landscape until it comes to rest:
water runs downslope into depressions, fills them, spills into neighboring
depressions or the ocean, and forms lakes where depressions merge.
Use the subcommands specified below to access the model functionality.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'FILLSPILL_var' where 'var' is the
name of the variable to be set. Many configuration variables are additionally
allowed to contain environment variables within them.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of FillSpill.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("FillSpill v%s\n", fillspill.Version)
	},
	DisableAutoGenTag: true,
}

// runCmd is a command that runs the model.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the model.",
	Long: `run distributes surface water over the landscape described by the
gridded input files and the depression hierarchy, and saves the final water
table depth to OutputFile.

	Output variables:
	wtd: Water table depth [m]; positive values are standing water
	flooded: Elevation of the land or water surface [m]`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outputFile, err := checkOutputFile(Cfg.GetString("OutputFile"))
		if err != nil {
			return err
		}
		geometry, err := GeometryConfig(Cfg)
		if err != nil {
			return err
		}
		transit, err := TransitConfig(Cfg)
		if err != nil {
			return err
		}
		rain, err := getFloat64(Cfg, "Rain")
		if err != nil {
			return err
		}
		var plotFile string
		if p := Cfg.GetString("PlotFile"); p != "" {
			plotFile = os.ExpandEnv(p)
		}
		return Run(
			cmd,
			checkLogFile(Cfg.GetString("LogFile"), outputFile),
			Cfg.GetString("LogLevel"),
			gridFilesConfig(Cfg),
			os.ExpandEnv(Cfg.GetString("Hierarchy")),
			outputFile,
			plotFile,
			geometry,
			transit,
			rain,
			Cfg.GetInt("Cycles"),
			Cfg.GetInt("Workers"),
		)
	},
	DisableAutoGenTag: true,
}

// plotCmd is a command that maps the model output.
var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Map standing water.",
	Long: `plot reads the water table depth from OutputFile and saves a map of
standing water to PlotFile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		plotFile := os.ExpandEnv(Cfg.GetString("PlotFile"))
		if plotFile == "" {
			return fmt.Errorf("fillspill: PlotFile must be specified")
		}
		return Plot(os.ExpandEnv(Cfg.GetString("OutputFile")), plotFile)
	},
	DisableAutoGenTag: true,
}

// dotCmd is a command that writes the depression hierarchy in GraphViz format.
var dotCmd = &cobra.Command{
	Use:   "dot",
	Short: "Draw the depression hierarchy.",
	Long: `dot writes the depression hierarchy in GraphViz format. Merge links are
drawn in black and ocean links in blue.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		hierarchy := os.ExpandEnv(Cfg.GetString("Hierarchy"))
		dotFile := os.ExpandEnv(Cfg.GetString("DotFile"))
		if dotFile == "" {
			return Dot(cmd.OutOrStdout(), hierarchy)
		}
		f, err := os.Create(dotFile)
		if err != nil {
			return fmt.Errorf("fillspill: creating dot file: %v", err)
		}
		if err := Dot(f, hierarchy); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	},
	DisableAutoGenTag: true,
}
