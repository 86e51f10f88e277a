/*
Copyright © 2026 the LeafGas authors.
This file is part of LeafGas.

LeafGas is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

LeafGas is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with LeafGas.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package leafgasutil wires the LeafGas model to its configuration,
// dataset, and reporting surfaces.
package leafgasutil

import (
	"fmt"

	"github.com/lnashier/viper"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/leafmodel/leafgas"
	"github.com/leafmodel/leafgas/fit"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to LeafGas.
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
			name: "InputFile",
			usage: `
              InputFile is the CSV or Excel file holding A-Ci curves
              (fit) or environmental drivers (run, optimal).`,
			shorthand:  "i",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{fitCmd.Flags(), runCmd.Flags(), optimalCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the CSV file results are written to.`,
			shorthand:  "o",
			defaultVal: "leafgas_output.csv",
			flagsets:   []*pflag.FlagSet{fitCmd.Flags(), runCmd.Flags(), optimalCmd.Flags()},
		},
		{
			name: "Sheet",
			usage: `
              Sheet is the sheet name to read when InputFile is an
              Excel workbook.`,
			defaultVal: "Sheet1",
			flagsets:   []*pflag.FlagSet{fitCmd.Flags(), runCmd.Flags(), optimalCmd.Flags()},
		},
		{
			name: "PlotFile",
			usage: `
              PlotFile, if set, is a PNG file the fit diagnostic plot
              of the first curve is written to.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{fitCmd.Flags()},
		},
		{
			name: "ConductanceModel",
			usage: `
              ConductanceModel selects the stomatal model variant:
              BallBerry, Leuning, or Medlyn.`,
			defaultVal: "Medlyn",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "G0",
			usage: `
              G0 is the residual stomatal conductance [mol m⁻² s⁻¹].`,
			defaultVal: 0.01,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "G1",
			usage: `
              G1 is the stomatal slope coefficient.`,
			defaultVal: 4.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "D0",
			usage: `
              D0 is the Leuning humidity-deficit offset [kPa].`,
			defaultVal: 1.5,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Vcmax",
			usage: `
              Vcmax is the maximum carboxylation rate at 25 °C
              [μmol m⁻² s⁻¹].`,
			defaultVal: 100.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), optimalCmd.Flags()},
		},
		{
			name: "Jmax",
			usage: `
              Jmax is the maximum electron-transport rate at 25 °C
              [μmol m⁻² s⁻¹].`,
			defaultVal: 180.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), optimalCmd.Flags()},
		},
		{
			name: "Rd",
			usage: `
              Rd is dark respiration at 25 °C [μmol m⁻² s⁻¹]. During
              fitting it is the fixed value used when FitRd is false.`,
			defaultVal: 1.0,
			flagsets:   []*pflag.FlagSet{fitCmd.Flags(), runCmd.Flags(), optimalCmd.Flags()},
		},
		{
			name: "FitRd",
			usage: `
              FitRd estimates dark respiration from the curve instead
              of holding it at Rd.`,
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{fitCmd.Flags()},
		},
		{
			name: "FixedTransitionCi",
			usage: `
              FixedTransitionCi pins the Ac/Aj transition at the given
              Ci [μmol mol⁻¹] instead of estimating it implicitly.
              Zero means estimate.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{fitCmd.Flags()},
		},
		{
			name: "MesophyllCond",
			usage: `
              MesophyllCond is mesophyll conductance [mol m⁻² s⁻¹].
              Zero means infinite (Ci = Cc).`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{fitCmd.Flags(), runCmd.Flags(), optimalCmd.Flags()},
		},
		{
			name: "Curvature",
			usage: `
              Curvature is the θ of the smoothed minimum combining the
              two limiting rates.`,
			defaultVal: 0.9999,
			flagsets:   []*pflag.FlagSet{fitCmd.Flags(), runCmd.Flags(), optimalCmd.Flags()},
		},
		{
			name: "EnergyBalance",
			usage: `
              EnergyBalance turns on the leaf energy-balance outer
              loop, refining leaf temperature from transpiration.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), optimalCmd.Flags()},
		},
		{
			name: "LambdaCost",
			usage: `
              LambdaCost is the marginal cost of water λ
              [μmol CO2 per mol H2O] for the optimality solver.`,
			defaultVal: 1000.0,
			flagsets:   []*pflag.FlagSet{optimalCmd.Flags()},
		},
		{
			name: "MaxIter",
			usage: `
              MaxIter caps the iterations of every numerical solver.`,
			defaultVal: 100,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), optimalCmd.Flags()},
		},
		{
			name: "AbsTol",
			usage: `
              AbsTol is the absolute convergence tolerance on the
              assimilation residual [μmol m⁻² s⁻¹].`,
			defaultVal: 1e-6,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), optimalCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("LEAFGAS")

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
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
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
	Root.AddCommand(fitCmd)
	Root.AddCommand(runCmd)
	Root.AddCommand(optimalCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("leafgas: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "leafgas",
	Short: "A leaf gas-exchange model and curve fitter.",
	Long: `LeafGas couples Farquhar photosynthesis with stomatal-conductance models
and fits both from gas-exchange measurements.

Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'LEAFGAS_var' where 'var'
is the name of the variable to be set.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of LeafGas.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("LeafGas v%s\n", leafgas.Version)
	},
	DisableAutoGenTag: true,
}

// fitCmd fits A-Ci curves read from the input file.
var fitCmd = &cobra.Command{
	Use:   "fit",
	Short: "Fit Farquhar parameters to A-Ci curves.",
	Long: `fit estimates Vcmax, Jmax, and optionally Rd for every curve in the
input file by nonlinear least squares, and writes one row of estimates and
standard errors per curve. Failed curves are reported and do not stop the
rest of the batch.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		curves, err := ReadCurves(Cfg.GetString("InputFile"), Cfg.GetString("Sheet"))
		if err != nil {
			return err
		}
		opts, err := FitOptions(Cfg)
		if err != nil {
			return err
		}
		batch := fit.FitBatch(curves, opts)
		cmd.Print(batch.Summary())
		if err := WriteFitResults(Cfg.GetString("OutputFile"), batch); err != nil {
			return err
		}
		if pf := Cfg.GetString("PlotFile"); pf != "" {
			if err := PlotFirstFit(pf, curves, batch); err != nil {
				return err
			}
		}
		return nil
	},
	DisableAutoGenTag: true,
}

// runCmd runs the coupled solver over environmental drivers.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the coupled gas-exchange solver.",
	Long: `run solves the fully coupled leaf gas-exchange system for every row of
environmental drivers in the input file and writes the predicted
assimilation, conductance, Ci, and transpiration.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		states, err := ReadDrivers(Cfg.GetString("InputFile"), Cfg.GetString("Sheet"))
		if err != nil {
			return err
		}
		solver, err := SolverFromConfig(Cfg)
		if err != nil {
			return err
		}
		results := solver.SolveBatch(states)
		return WriteSimResults(Cfg.GetString("OutputFile"), results)
	},
	DisableAutoGenTag: true,
}

// optimalCmd runs the optimality-based stomatal solver.
var optimalCmd = &cobra.Command{
	Use:   "optimal",
	Short: "Derive optimal stomatal behavior.",
	Long: `optimal finds, for every row of environmental drivers in the input
file, the Ci maximizing net carbon gain An − λE, and writes the optimum and
the conductance and transpiration it implies.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		states, err := ReadDrivers(Cfg.GetString("InputFile"), Cfg.GetString("Sheet"))
		if err != nil {
			return err
		}
		solver, err := OptimalSolverFromConfig(Cfg)
		if err != nil {
			return err
		}
		return WriteOptimalResults(Cfg.GetString("OutputFile"), solver, states)
	},
	DisableAutoGenTag: true,
}
