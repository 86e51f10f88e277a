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

package leafgasutil

import (
	"fmt"

	"github.com/lnashier/viper"
	"github.com/spf13/cast"

	"github.com/leafmodel/leafgas"
	"github.com/leafmodel/leafgas/fit"
)

// BiochemFromConfig builds a biochemical parameter set from the
// configuration, starting from the default kinetic constants.
func BiochemFromConfig(cfg *viper.Viper) (leafgas.BiochemicalParameters, error) {
	p := leafgas.DefaultBiochemicalParameters()
	var err error
	if p.Vcmax, err = cast.ToFloat64E(cfg.Get("Vcmax")); err != nil {
		return p, fmt.Errorf("leafgas: configuration Vcmax: %v", err)
	}
	if p.Jmax, err = cast.ToFloat64E(cfg.Get("Jmax")); err != nil {
		return p, fmt.Errorf("leafgas: configuration Jmax: %v", err)
	}
	if p.Rd, err = cast.ToFloat64E(cfg.Get("Rd")); err != nil {
		return p, fmt.Errorf("leafgas: configuration Rd: %v", err)
	}
	if p.Gm, err = cast.ToFloat64E(cfg.Get("MesophyllCond")); err != nil {
		return p, fmt.Errorf("leafgas: configuration MesophyllCond: %v", err)
	}
	if p.Curvature, err = cast.ToFloat64E(cfg.Get("Curvature")); err != nil {
		return p, fmt.Errorf("leafgas: configuration Curvature: %v", err)
	}
	return p, p.Validate()
}

// ConductanceFromConfig builds the stomatal-model coefficients from
// the configuration.
func ConductanceFromConfig(cfg *viper.Viper) (leafgas.ConductanceParameters, error) {
	variant, err := leafgas.ParseConductanceVariant(cfg.GetString("ConductanceModel"))
	if err != nil {
		return leafgas.ConductanceParameters{}, err
	}
	p := leafgas.ConductanceParameters{Variant: variant}
	if p.G0, err = cast.ToFloat64E(cfg.Get("G0")); err != nil {
		return p, fmt.Errorf("leafgas: configuration G0: %v", err)
	}
	if p.G1, err = cast.ToFloat64E(cfg.Get("G1")); err != nil {
		return p, fmt.Errorf("leafgas: configuration G1: %v", err)
	}
	if p.D0, err = cast.ToFloat64E(cfg.Get("D0")); err != nil {
		return p, fmt.Errorf("leafgas: configuration D0: %v", err)
	}
	return p, nil
}

// solverOptionsFromConfig applies the iteration and tolerance
// overrides to the default solver options.
func solverOptionsFromConfig(cfg *viper.Viper) (leafgas.SolverOptions, error) {
	o := leafgas.DefaultSolverOptions()
	var err error
	if o.MaxIter, err = cast.ToIntE(cfg.Get("MaxIter")); err != nil {
		return o, fmt.Errorf("leafgas: configuration MaxIter: %v", err)
	}
	if o.AbsTol, err = cast.ToFloat64E(cfg.Get("AbsTol")); err != nil {
		return o, fmt.Errorf("leafgas: configuration AbsTol: %v", err)
	}
	return o, nil
}

// SolverFromConfig assembles the fully configured coupled solver.
func SolverFromConfig(cfg *viper.Viper) (*leafgas.CoupledSolver, error) {
	biochem, err := BiochemFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	stomata, err := ConductanceFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	opts, err := solverOptionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	s := leafgas.NewCoupledSolver(biochem, stomata)
	s.Options = opts
	if cfg.GetBool("EnergyBalance") {
		s.EnergyBalance = leafgas.DefaultEnergyBalance()
	}
	return s, nil
}

// OptimalSolverFromConfig assembles the optimality-based solver.
func OptimalSolverFromConfig(cfg *viper.Viper) (*leafgas.OptimalConductanceSolver, error) {
	biochem, err := BiochemFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	lambda, err := cast.ToFloat64E(cfg.Get("LambdaCost"))
	if err != nil {
		return nil, fmt.Errorf("leafgas: configuration LambdaCost: %v", err)
	}
	opts, err := solverOptionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	s := leafgas.NewOptimalConductanceSolver(biochem, lambda)
	s.Options = opts
	if cfg.GetBool("EnergyBalance") {
		s.EnergyBalance = leafgas.DefaultEnergyBalance()
	}
	return s, nil
}

// FitOptions builds the curve-fit configuration.
func FitOptions(cfg *viper.Viper) (fit.Options, error) {
	o := fit.DefaultOptions()
	o.FitRd = cfg.GetBool("FitRd")
	var err error
	if o.Rd, err = cast.ToFloat64E(cfg.Get("Rd")); err != nil {
		return o, fmt.Errorf("leafgas: configuration Rd: %v", err)
	}
	if o.FixedTransitionCi, err = cast.ToFloat64E(cfg.Get("FixedTransitionCi")); err != nil {
		return o, fmt.Errorf("leafgas: configuration FixedTransitionCi: %v", err)
	}
	if o.Template.Gm, err = cast.ToFloat64E(cfg.Get("MesophyllCond")); err != nil {
		return o, fmt.Errorf("leafgas: configuration MesophyllCond: %v", err)
	}
	if o.Template.Curvature, err = cast.ToFloat64E(cfg.Get("Curvature")); err != nil {
		return o, fmt.Errorf("leafgas: configuration Curvature: %v", err)
	}
	return o, nil
}
