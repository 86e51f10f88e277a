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
	"testing"

	"github.com/leafmodel/leafgas"
)

func TestBiochemFromConfigDefaults(t *testing.T) {
	p, err := BiochemFromConfig(Cfg)
	if err != nil {
		t.Fatal(err)
	}
	if p.Vcmax != 100 || p.Jmax != 180 || p.Rd != 1 {
		t.Errorf("default capacities = %g/%g/%g, want 100/180/1", p.Vcmax, p.Jmax, p.Rd)
	}
	if p.Gm != 0 {
		t.Errorf("Gm = %g, want 0 (infinite) by default", p.Gm)
	}
}

func TestBiochemFromConfigOverride(t *testing.T) {
	Cfg.Set("Vcmax", 72.5)
	defer Cfg.Set("Vcmax", 100.0)

	p, err := BiochemFromConfig(Cfg)
	if err != nil {
		t.Fatal(err)
	}
	if p.Vcmax != 72.5 {
		t.Errorf("Vcmax = %g, want override 72.5", p.Vcmax)
	}
}

func TestBiochemFromConfigBadValue(t *testing.T) {
	Cfg.Set("Jmax", "not-a-number")
	defer Cfg.Set("Jmax", 180.0)

	if _, err := BiochemFromConfig(Cfg); err == nil {
		t.Error("expected an error for a non-numeric Jmax")
	}
}

func TestConductanceFromConfig(t *testing.T) {
	p, err := ConductanceFromConfig(Cfg)
	if err != nil {
		t.Fatal(err)
	}
	if p.Variant != leafgas.MedlynOptimality {
		t.Errorf("variant = %s, want Medlyn by default", p.Variant)
	}
	if p.G0 != 0.01 || p.G1 != 4 {
		t.Errorf("g0/g1 = %g/%g, want 0.01/4", p.G0, p.G1)
	}

	Cfg.Set("ConductanceModel", "jarvis")
	defer Cfg.Set("ConductanceModel", "Medlyn")
	if _, err := ConductanceFromConfig(Cfg); err == nil {
		t.Error("expected an error for an unknown conductance model")
	}
}

func TestSolverFromConfigEnergyBalance(t *testing.T) {
	s, err := SolverFromConfig(Cfg)
	if err != nil {
		t.Fatal(err)
	}
	if s.EnergyBalance != nil {
		t.Error("energy balance should be off by default")
	}
	if s.Options.MaxIter != 100 {
		t.Errorf("MaxIter = %d, want 100", s.Options.MaxIter)
	}

	Cfg.Set("EnergyBalance", true)
	defer Cfg.Set("EnergyBalance", false)
	s, err = SolverFromConfig(Cfg)
	if err != nil {
		t.Fatal(err)
	}
	if s.EnergyBalance == nil {
		t.Error("energy balance should be wired when enabled")
	}
}

func TestFitOptionsFromConfig(t *testing.T) {
	o, err := FitOptions(Cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !o.FitRd {
		t.Error("FitRd should default to true")
	}
	if o.FixedTransitionCi != 0 {
		t.Errorf("FixedTransitionCi = %g, want 0 (estimate)", o.FixedTransitionCi)
	}

	Cfg.Set("FixedTransitionCi", 400.0)
	defer Cfg.Set("FixedTransitionCi", 0.0)
	o, err = FitOptions(Cfg)
	if err != nil {
		t.Fatal(err)
	}
	if o.FixedTransitionCi != 400 {
		t.Errorf("FixedTransitionCi = %g, want override 400", o.FixedTransitionCi)
	}
}
