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

package leafgas

import (
	"testing"
)

func TestOptimalSolveIsLocalMaximum(t *testing.T) {
	s := NewOptimalConductanceSolver(DefaultBiochemicalParameters(), 1500)
	st := DefaultLeafState()

	res, err := s.Solve(st)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Converged {
		t.Fatal("optimal solve did not converge")
	}
	gammaStar := s.Biochem.At(st.Tleaf).GammaStar
	if res.Ci <= gammaStar || res.Ci >= st.Ca {
		t.Fatalf("Ci* = %g outside (Γ*, Ca)", res.Ci)
	}
	if res.An <= 0 || res.Gs <= 0 || res.E <= 0 {
		t.Errorf("optimum should be physiologically active: An=%g gs=%g E=%g", res.An, res.Gs, res.E)
	}

	// The reported optimum must dominate a sweep of the bracket.
	lo, hi := gammaStar+1, st.Ca-1
	for i := 0; i <= 100; i++ {
		ci := lo + float64(i)*(hi-lo)/100
		probe, err := s.evaluate(ci, st)
		if err != nil {
			t.Fatal(err)
		}
		if probe.Objective > res.Objective+1e-6 {
			t.Errorf("objective at Ci=%g (%g) exceeds reported optimum at Ci*=%g (%g)",
				ci, probe.Objective, res.Ci, res.Objective)
		}
	}
}

func TestOptimalLambdaTradeoff(t *testing.T) {
	// A higher cost of water closes stomata: lower Ci*, lower E.
	st := DefaultLeafState()
	cheap, err := NewOptimalConductanceSolver(DefaultBiochemicalParameters(), 500).Solve(st)
	if err != nil {
		t.Fatal(err)
	}
	dear, err := NewOptimalConductanceSolver(DefaultBiochemicalParameters(), 5000).Solve(st)
	if err != nil {
		t.Fatal(err)
	}
	if dear.Ci >= cheap.Ci {
		t.Errorf("Ci* should fall as λ rises: λ=500 gives %g, λ=5000 gives %g", cheap.Ci, dear.Ci)
	}
	if dear.E >= cheap.E {
		t.Errorf("E should fall as λ rises: λ=500 gives %g, λ=5000 gives %g", cheap.E, dear.E)
	}
}

func TestOptimalNoInteriorMaximum(t *testing.T) {
	// With a negligible water cost the objective rises monotonically
	// toward Ca; the solver must report the missing optimum instead
	// of returning a boundary value.
	s := NewOptimalConductanceSolver(DefaultBiochemicalParameters(), 1e-9)
	_, err := s.Solve(DefaultLeafState())
	if err != ErrNoOptimum {
		t.Errorf("error = %v, want ErrNoOptimum", err)
	}
}

func TestOptimalRejectsNonPositiveLambda(t *testing.T) {
	s := NewOptimalConductanceSolver(DefaultBiochemicalParameters(), 0)
	_, err := s.Solve(DefaultLeafState())
	if _, ok := err.(*InvalidParameterError); !ok {
		t.Errorf("error type %T, want *InvalidParameterError", err)
	}
}

func TestOptimalWithEnergyBalance(t *testing.T) {
	s := NewOptimalConductanceSolver(DefaultBiochemicalParameters(), 1500)
	s.EnergyBalance = DefaultEnergyBalance()
	st := DefaultLeafState()

	res, err := s.Solve(st)
	if err != nil {
		if err == ErrNoOptimum {
			// Acceptable: boundary-layer feedback can remove the
			// interior maximum.
			return
		}
		t.Fatal(err)
	}
	if res.Tleaf == st.Tair {
		t.Error("energy balance should adjust leaf temperature")
	}
}
