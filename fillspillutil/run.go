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
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/fillspill"
	"github.com/spf13/cobra"
)

// newLogger returns a logger that writes to both w and the file at
// logFile, and the log file so that it can be closed.
func newLogger(w io.Writer, logFile, level string) (*logrus.Logger, io.Closer, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, nil, fmt.Errorf("fillspill: invalid LogLevel: %v", err)
	}
	f, err := os.Create(logFile)
	if err != nil {
		return nil, nil, fmt.Errorf("fillspill: problem creating log file: %v", err)
	}
	logger := logrus.New()
	logger.Out = io.MultiWriter(w, f)
	logger.Level = lvl
	logger.Formatter = &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339Nano,
		DisableSorting:  true,
	}
	return logger, f, nil
}

// Run runs the model.
//
// CobraCommand is the cobra.Command instance where Run is called from;
// log messages are written to its output as well as to LogFile.
//
// LogLevel is one of the logrus levels, e.g. "info" or "debug".
//
// Files gives the locations of the gridded inputs, and HierarchyFile
// the location of the depression hierarchy in TOML format.
//
// OutputFile is the path to the NetCDF output file. If PlotFile is not
// empty, a map of standing water is also saved there.
//
// Rain [m] is added to the surface water of every cell before the
// first cycle. NumCycles is the number of fill-spill-merge cycles to
// run, and Workers the number of goroutines for per-cell work.
func Run(CobraCommand *cobra.Command, LogFile, LogLevel string, Files GridFiles, HierarchyFile,
	OutputFile, PlotFile string, Geometry func(height int) *fillspill.Geometry,
	Transit fillspill.TransitLoss, Rain float64, NumCycles, Workers int) error {

	startTime := time.Now()

	logger, logfile, err := newLogger(CobraCommand.OutOrStdout(), LogFile, LogLevel)
	if err != nil {
		return err
	}
	defer logfile.Close()

	logger.Info("fillspill: reading inputs")
	g, err := LoadGrid(Files, Geometry)
	if err != nil {
		return err
	}
	h, err := LoadHierarchyFile(HierarchyFile)
	if err != nil {
		return err
	}
	if Rain != 0 {
		for i := range g.SurfaceWater {
			g.SurfaceWater[i] += Rain
		}
	}

	d := fillspill.NewDomain(g, h, fillspill.Params{
		Transit: Transit,
		Log:     logger,
		Workers: Workers,
	})
	d.InitFuncs = []fillspill.DomainManipulator{fillspill.ValidateInputs()}
	d.RunFuncs = append(fillspill.DefaultRunFuncs(), fillspill.CycleLimit(NumCycles))
	d.CleanupFuncs = []fillspill.DomainManipulator{saveOutput(OutputFile)}
	if PlotFile != "" {
		d.CleanupFuncs = append(d.CleanupFuncs, func(d *fillspill.Domain) error {
			return PlotWaterDepth(d.Grid, PlotFile)
		})
	}

	if err = d.Init(); err != nil {
		return err
	}
	if err = d.Run(); err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"cycles":   d.Cycles(),
		"duration": time.Since(startTime),
	}).Info("fillspill: simulation complete")
	return nil
}

// saveOutput returns a function that writes the water table of the
// domain to the NetCDF file at path.
func saveOutput(path string) fillspill.DomainManipulator {
	return func(d *fillspill.Domain) error {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("fillspill: creating output file: %v", err)
		}
		if err := WriteNetCDF(f, d.Grid); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
}

// Plot creates a map of the standing water in the NetCDF output file
// at OutputFile and saves it to PlotFile.
func Plot(OutputFile, PlotFile string) error {
	f, err := os.Open(OutputFile)
	if err != nil {
		return fmt.Errorf("fillspill: opening output file: %v", err)
	}
	defer f.Close()
	wtd, err := ReadGridVar(f, "wtd")
	if err != nil {
		return err
	}
	g := fillspill.NewGrid(wtd.Shape[1], wtd.Shape[0])
	copy(g.WTD, wtd.Elements)
	return PlotWaterDepth(g, PlotFile)
}

// Dot writes the depression hierarchy in HierarchyFile to w in
// GraphViz format.
func Dot(w io.Writer, HierarchyFile string) error {
	h, err := LoadHierarchyFile(HierarchyFile)
	if err != nil {
		return err
	}
	return h.WriteDot(w)
}
