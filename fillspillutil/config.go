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

package fillspillutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/fillspill"
	"github.com/spatialmodel/fillspill/science/transit/manning"
	"github.com/spf13/cast"
)

// checkOutputFile makes sure that the output file is specified and its
// directory exists, and expand any environment variables.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf("you need to specify an output file configuration variable (for example: OutputFile=\"output.nc\")")
	}
	f = os.ExpandEnv(f)
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("fillspill: the OutputFile directory doesn't exist: %v", err)
	}
	return f, nil
}

// checkLogFile fills in a default value for the log file path if one isn't
// specified.
func checkLogFile(logFile, outputFile string) string {
	if logFile == "" {
		logFile = strings.TrimSuffix(outputFile, filepath.Ext(outputFile)) + ".log"
	}
	return os.ExpandEnv(logFile)
}

// getFloat64 returns configuration variable name as a float64,
// accepting strings set from the command line or the environment.
func getFloat64(cfg *viper.Viper, name string) (float64, error) {
	v, err := cast.ToFloat64E(cfg.Get(name))
	if err != nil {
		return 0, fmt.Errorf("fillspill: parsing configuration variable %s: %v", name, err)
	}
	return v, nil
}

// GeometryConfig returns a function that creates the cell geometry
// described by the Geometry configuration variables. If
// Geometry.CellsPerDegree is > 0 the grid is in geographic coordinates;
// otherwise cells are Geometry.Dx by Geometry.Dy meters.
func GeometryConfig(cfg *viper.Viper) (func(height int) *fillspill.Geometry, error) {
	cpd, err := getFloat64(cfg, "Geometry.CellsPerDegree")
	if err != nil {
		return nil, err
	}
	if cpd > 0 {
		south, err := getFloat64(cfg, "Geometry.SouthernEdge")
		if err != nil {
			return nil, err
		}
		if south < -90 || south > 90 {
			return nil, fmt.Errorf("fillspill: Geometry.SouthernEdge=%g is not a latitude", south)
		}
		return func(height int) *fillspill.Geometry {
			return fillspill.NewLatLonGeometry(height, cpd, south)
		}, nil
	}
	dx, err := getFloat64(cfg, "Geometry.Dx")
	if err != nil {
		return nil, err
	}
	dy, err := getFloat64(cfg, "Geometry.Dy")
	if err != nil {
		return nil, err
	}
	vars := []float64{dx, dy}
	varNames := []string{"Geometry.Dx", "Geometry.Dy"}
	for i, v := range vars {
		if !(v > 0) {
			return nil, fmt.Errorf("fillspill: parsing geometry configuration: %s=%g but should be >0", varNames[i], v)
		}
	}
	return func(height int) *fillspill.Geometry {
		return fillspill.NewUniformGeometry(height, dx, dy)
	}, nil
}

// TransitConfig returns the transit loss model described by the
// Transit configuration variables. Transit.Model can be "manning" or
// "none".
func TransitConfig(cfg *viper.Viper) (fillspill.TransitLoss, error) {
	switch model := strings.ToLower(os.ExpandEnv(cfg.GetString("Transit.Model"))); model {
	case "none", "":
		return fillspill.NoLoss{}, nil
	case "manning":
		m := manning.Default()
		n, err := getFloat64(cfg, "Transit.ManningsN")
		if err != nil {
			return nil, err
		}
		minSlope, err := getFloat64(cfg, "Transit.MinSlope")
		if err != nil {
			return nil, err
		}
		if n > 0 {
			m.N = n
		}
		if minSlope > 0 {
			m.MinSlope = minSlope
		}
		return m, nil
	default:
		return nil, fmt.Errorf("fillspill: Transit.Model must be 'manning' or 'none', but is '%s'", model)
	}
}

// gridFilesConfig returns the grid input locations from cfg.
func gridFilesConfig(cfg *viper.Viper) GridFiles {
	get := func(name string) string { return os.ExpandEnv(cfg.GetString(name)) }
	return GridFiles{
		Topography:   get("Topography"),
		WaterTable:   get("WaterTable"),
		SurfaceWater: get("SurfaceWater"),
		Ksat:         get("Ksat"),
		SurfaceEvap:  get("SurfaceEvap"),
		Slope:        get("Slope"),
		Labels:       get("Labels"),
		FinalLabels:  get("FinalLabels"),
		FlowDirs:     get("FlowDirs"),
		VarName:      get("VarName"),
	}
}
