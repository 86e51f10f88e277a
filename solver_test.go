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
	"math"
	"testing"
)

func testState() LeafState {
	st := DefaultLeafState()
	st.Ci = 300
	return st
}

func TestSolveCiMatchesDemandFunction(t *testing.T) {
	s := NewCoupledSolver(DefaultBiochemicalParameters(), DefaultConductanceParameters())
	st := testState()

	res, err := s.SolveCi(st)
	if err != nil {
		t.Fatal(err)
	}
	direct, err := s.Biochem.Assimilate(st.Ci, st.Tleaf, st.PAR)
	if err != nil {
		t.Fatal(err)
	}
	// Mode (a) is a direct evaluation: bit-for-bit equality.
	if res.An != direct.An {
		t.Errorf("An = %v, want exactly %v", res.An, direct.An)
	}
	if !res.Converged {
		t.Error("mode (a) must always report convergence")
	}
	if res.Cc != res.Ci {
		t.Errorf("with infinite gm, Cc = %g should equal Ci = %g", res.Cc, res.Ci)
	}
}

func TestSolveGsRoundTrip(t *testing.T) {
	s := NewCoupledSolver(DefaultBiochemicalParameters(), DefaultConductanceParameters())
	st := testState()

	fwd, err := s.SolveCi(st)
	if err != nil {
		t.Fatal(err)
	}
	// The conductance that satisfies Fick's law at Ci=300 exactly.
	gs := GSVGSC * fwd.An / (st.Ca - st.Ci)

	inv, err := s.SolveGs(st, gs)
	if err != nil {
		t.Fatal(err)
	}
	if !inv.Converged {
		t.Fatalf("inverse solve did not converge: %s", inv.Message)
	}
	if different(inv.Ci, st.Ci, 1e-3) {
		t.Errorf("inverse solve returned Ci = %g, want %g", inv.Ci, st.Ci)
	}
	if different(inv.An, fwd.An, 1e-4) {
		t.Errorf("inverse solve returned An = %g, want %g", inv.An, fwd.An)
	}
}

func TestFullyCoupledRoundTrip(t *testing.T) {
	biochem := DefaultBiochemicalParameters()
	st := testState()

	s := NewCoupledSolver(biochem, DefaultConductanceParameters())
	fwd, err := s.SolveCi(st)
	if err != nil {
		t.Fatal(err)
	}
	// Construct a Ball-Berry model that exactly reproduces the
	// transport-consistent conductance at Ci=300, then check the
	// coupled solve lands back on the same Ci.
	gs := GSVGSC * fwd.An / (st.Ca - st.Ci)
	s.Stomata = ConductanceParameters{
		G0:      0,
		G1:      gs * st.Ca / fwd.An,
		Variant: BallBerry,
	}
	res, err := s.Solve(st)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Converged {
		t.Fatalf("coupled solve did not converge: %s", res.Message)
	}
	if different(res.Ci, st.Ci, 0.01) {
		t.Errorf("coupled solve returned Ci = %g, want %g", res.Ci, st.Ci)
	}
}

func TestFullyCoupledEndToEnd(t *testing.T) {
	biochem := DefaultBiochemicalParameters()
	stomata := ConductanceParameters{G0: 0, G1: 4, Variant: MedlynOptimality}
	s := NewCoupledSolver(biochem, stomata)
	st := DefaultLeafState() // Ca=400, D=1.5

	res, err := s.Solve(st)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Converged {
		t.Fatalf("did not converge: %s", res.Message)
	}
	gammaStar := biochem.At(st.Tleaf).GammaStar
	if res.Ci <= gammaStar || res.Ci >= st.Ca {
		t.Errorf("Ci = %g, want strictly between Γ* = %g and Ca = %g", res.Ci, gammaStar, st.Ca)
	}
	if res.Gs <= 0 {
		t.Errorf("gs = %g, want positive", res.Gs)
	}
	if res.E <= 0 {
		t.Errorf("E = %g, want positive", res.E)
	}
	// The converged state satisfies the transport equation.
	transport := res.Gs / GSVGSC * (st.Ca - res.Ci)
	if different(res.An, transport, 1e-3) {
		t.Errorf("An = %g but transport implies %g", res.An, transport)
	}
}

func TestSolveGsRejectsNonPositiveConductance(t *testing.T) {
	s := NewCoupledSolver(DefaultBiochemicalParameters(), DefaultConductanceParameters())
	_, err := s.SolveGs(DefaultLeafState(), 0)
	if err == nil {
		t.Fatal("expected an error for gs = 0")
	}
	if _, ok := err.(*InvalidParameterError); !ok {
		t.Errorf("error type %T, want *InvalidParameterError", err)
	}
}

func TestMesophyllConductance(t *testing.T) {
	biochem := DefaultBiochemicalParameters()
	biochem.Gm = 0.3
	s := NewCoupledSolver(biochem, DefaultConductanceParameters())
	st := testState()

	res, err := s.SolveCi(st)
	if err != nil {
		t.Fatal(err)
	}
	if res.Cc >= res.Ci {
		t.Errorf("with finite gm and positive An, Cc = %g should be below Ci = %g", res.Cc, res.Ci)
	}
	if different(res.Cc, st.Ci-res.An/biochem.Gm, 0.01) {
		t.Errorf("Cc = %g inconsistent with Ci − An/gm = %g", res.Cc, st.Ci-res.An/biochem.Gm)
	}
}

func TestEnergyBalanceRefinement(t *testing.T) {
	s := NewCoupledSolver(DefaultBiochemicalParameters(), DefaultConductanceParameters())
	s.EnergyBalance = DefaultEnergyBalance()
	st := DefaultLeafState()

	res, err := s.Solve(st)
	if err != nil {
		t.Fatal(err)
	}
	if !res.EnergyBalanceConverged {
		t.Fatalf("energy balance did not converge: %s", res.Message)
	}
	if res.Tleaf == st.Tair {
		t.Error("leaf temperature should depart from air temperature in full sun")
	}
	if res.Tleaf < st.Tair-10 || res.Tleaf > st.Tair+15 {
		t.Errorf("Tleaf = %g °C implausible for Tair = %g °C", res.Tleaf, st.Tair)
	}
}

func TestSolveBatch(t *testing.T) {
	s := NewCoupledSolver(DefaultBiochemicalParameters(), DefaultConductanceParameters())
	states := make([]LeafState, 20)
	for i := range states {
		st := DefaultLeafState()
		st.PAR = 200 + 100*float64(i)
		st.D = 0.5 + 0.1*float64(i)
		states[i] = st
	}
	results := s.SolveBatch(states)
	if len(results) != len(states) {
		t.Fatalf("got %d results for %d states", len(results), len(states))
	}
	for i, r := range results {
		if r.Index != i {
			t.Errorf("result %d carries index %d", i, r.Index)
		}
		if r.Err != nil {
			t.Errorf("record %d failed: %v", i, r.Err)
			continue
		}
		if !r.Result.Converged {
			t.Errorf("record %d did not converge: %s", i, r.Result.Message)
		}
	}

	// A single invalid record must not poison its siblings.
	bad := DefaultLeafState()
	badBiochem := DefaultBiochemicalParameters()
	badBiochem.Vcmax = -1
	sBad := NewCoupledSolver(badBiochem, DefaultConductanceParameters())
	resBad := sBad.SolveBatch([]LeafState{bad})
	if resBad[0].Err == nil {
		t.Error("expected a per-record error for invalid parameters")
	}
}

func TestTranspirationSign(t *testing.T) {
	if e := transpiration(0.2, 1.5, 101); e <= 0 || math.IsNaN(e) {
		t.Errorf("E = %g, want positive", e)
	}
}
