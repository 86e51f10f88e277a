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
	"fmt"
	"math"
)

// SolverOptions bounds the iterative parts of the coupled solver. The
// zero value is not useful; start from DefaultSolverOptions.
type SolverOptions struct {
	AbsTol     float64 // absolute tolerance on the An residual [μmol m⁻² s⁻¹]
	CiTol      float64 // relative tolerance on Ci
	MaxIter    int     // iteration cap for the root finder
	ScanPoints int     // bracket-scan resolution for the coupled mode

	MaxOuterIter int     // iteration cap for the energy-balance loop
	TleafTol     float64 // leaf-temperature tolerance [°C]
}

// DefaultSolverOptions returns the recommended tolerances and
// iteration caps.
func DefaultSolverOptions() SolverOptions {
	return SolverOptions{
		AbsTol:       1e-6,
		CiTol:        1e-9,
		MaxIter:      100,
		ScanPoints:   50,
		MaxOuterIter: 20,
		TleafTol:     0.01,
	}
}

// CoupledSolver finds the intercellular CO2 concentration at which
// the biochemical demand function and the stomatal supply relation
// An = (gs/1.6)(Ca−Ci) are mutually consistent. It is a pure
// computation: every call returns a full result record and never
// mutates the solver.
type CoupledSolver struct {
	Biochem BiochemicalParameters
	Stomata ConductanceParameters
	Options SolverOptions

	// EnergyBalance, when non-nil, wraps each solve in an outer loop
	// that refines the leaf temperature from the transpiration rate.
	EnergyBalance EnergyBalanceAdapter
}

// NewCoupledSolver returns a solver with default options.
func NewCoupledSolver(b BiochemicalParameters, c ConductanceParameters) *CoupledSolver {
	return &CoupledSolver{Biochem: b, Stomata: c, Options: DefaultSolverOptions()}
}

// demand evaluates the biochemical demand function at intercellular
// CO2 ci, resolving the Cc = Ci − An/gm substitution by fixed-point
// iteration when mesophyll conductance is finite. Returns the
// assimilation result and the Cc it was evaluated at.
func (s *CoupledSolver) demand(ci float64, st LeafState) (AssimilationResult, float64, error) {
	cc := ci
	res, err := s.Biochem.Assimilate(cc, st.Tleaf, st.PAR)
	if err != nil || s.Biochem.Gm <= 0 {
		return res, cc, err
	}
	for i := 0; i < 30; i++ {
		next := ci - res.An/s.Biochem.Gm
		if next < 0 {
			next = 0
		}
		// Damp the update to guard against oscillation.
		next = cc + 0.5*(next-cc)
		res, err = s.Biochem.Assimilate(next, st.Tleaf, st.PAR)
		if err != nil {
			return res, next, err
		}
		if math.Abs(next-cc) < 1e-8*math.Max(1, cc) {
			cc = next
			break
		}
		cc = next
	}
	return res, cc, nil
}

// SolveCi computes the gas-exchange state for a known intercellular
// CO2 concentration st.Ci (mode a). No root-finding is involved; the
// demand function is evaluated directly and the conductance model
// supplies gs.
func (s *CoupledSolver) SolveCi(st LeafState) (SimResult, error) {
	return s.withEnergyBalance(st, func(st LeafState) (SimResult, error) {
		res, cc, err := s.demand(st.Ci, st)
		if err != nil {
			return SimResult{}, err
		}
		gs := s.Stomata.Conductance(res.An, st.Ca, st.D)
		return SimResult{
			An: res.An, Ac: res.Ac, Aj: res.Aj,
			Gs: gs, Ci: st.Ci, Cc: cc,
			E:     transpiration(gs, st.D, st.Pa),
			Tleaf: st.Tleaf, Regime: res.Regime,
			Converged: true, EnergyBalanceConverged: true,
		}, nil
	})
}

// SolveGs computes the gas-exchange state for a known stomatal
// conductance gs [mol m⁻² s⁻¹] (mode b), solving the transport
// equation jointly with the demand function for Ci.
func (s *CoupledSolver) SolveGs(st LeafState, gs float64) (SimResult, error) {
	if gs <= 0 {
		return SimResult{}, &InvalidParameterError{Name: "gs", Value: gs}
	}
	return s.withEnergyBalance(st, func(st LeafState) (SimResult, error) {
		residual := func(ci float64) (float64, error) {
			res, _, err := s.demand(ci, st)
			if err != nil {
				return 0, err
			}
			return res.An - gs/GSVGSC*(st.Ca-ci), nil
		}
		ci, converged, msg, err := s.solveResidual(residual, st.Ca)
		if err != nil {
			return SimResult{}, err
		}
		res, cc, err := s.demand(ci, st)
		if err != nil {
			return SimResult{}, err
		}
		return SimResult{
			An: res.An, Ac: res.Ac, Aj: res.Aj,
			Gs: gs, Ci: ci, Cc: cc,
			E:     transpiration(gs, st.D, st.Pa),
			Tleaf: st.Tleaf, Regime: res.Regime,
			Converged: converged, EnergyBalanceConverged: true,
			Message: msg,
		}, nil
	})
}

// Solve computes the fully coupled gas-exchange state (mode c):
// neither Ci nor gs is known, and the demand function, the
// conductance model, and the transport equation must agree
// simultaneously. The coupling is implicit because gs depends on An
// which depends on Ci; it is resolved by a bracketed root-find on the
// demand−supply residual as a pure function of Ci.
func (s *CoupledSolver) Solve(st LeafState) (SimResult, error) {
	return s.withEnergyBalance(st, func(st LeafState) (SimResult, error) {
		residual := func(ci float64) (float64, error) {
			res, _, err := s.demand(ci, st)
			if err != nil {
				return 0, err
			}
			gs := s.Stomata.Conductance(res.An, st.Ca, st.D)
			return res.An - gs/GSVGSC*(st.Ca-ci), nil
		}
		ci, converged, msg, err := s.solveResidual(residual, st.Ca)
		if err != nil {
			return SimResult{}, err
		}
		res, cc, err := s.demand(ci, st)
		if err != nil {
			return SimResult{}, err
		}
		gs := s.Stomata.Conductance(res.An, st.Ca, st.D)
		return SimResult{
			An: res.An, Ac: res.Ac, Aj: res.Aj,
			Gs: gs, Ci: ci, Cc: cc,
			E:     transpiration(gs, st.D, st.Pa),
			Tleaf: st.Tleaf, Regime: res.Regime,
			Converged: converged, EnergyBalanceConverged: true,
			Message: msg,
		}, nil
	})
}

// solveResidual locates a zero of the residual over the physically
// valid bracket [ciMin, Ca]. The bracket is scanned for a sign change
// and the segment nearest Ca, which corresponds to the physical
// solution, is refined with Brent's method. When no sign change
// exists, the scan point with the smallest |residual| is returned
// with converged=false so batch callers can continue.
func (s *CoupledSolver) solveResidual(residual func(float64) (float64, error), ca float64) (ci float64, converged bool, msg string, err error) {
	const ciMin = 1e-2
	n := s.Options.ScanPoints
	if n < 2 {
		n = 50
	}

	var (
		bestCi  = math.NaN()
		bestAbs = math.Inf(1)
		lo, hi  float64
		found   bool
	)
	// Scan downward from Ca so the first sign change found is the one
	// nearest the ambient concentration.
	prevX := ca
	prevF, err := residual(prevX)
	if err != nil {
		return 0, false, "", err
	}
	for i := 1; i <= n; i++ {
		x := ca - float64(i)*(ca-ciMin)/float64(n)
		f, err := residual(x)
		if err != nil {
			return 0, false, "", err
		}
		if a := math.Abs(f); a < bestAbs {
			bestAbs, bestCi = a, x
		}
		if !found && !math.IsNaN(f) && !math.IsNaN(prevF) && f*prevF <= 0 {
			lo, hi = x, prevX
			found = true
		}
		prevX, prevF = x, f
	}
	if !found {
		return bestCi, false, fmt.Sprintf("no sign change in [%g, %g]; best |residual| = %g", ciMin, ca, bestAbs), nil
	}

	ci, converged, err = s.refineRoot(residual, lo, hi)
	if err != nil {
		return 0, false, "", err
	}
	if !converged {
		msg = fmt.Sprintf("root refinement did not converge within %d iterations", s.Options.MaxIter)
	}
	return ci, converged, msg, nil
}

// refineRoot finds a zero of f in [a, b], where f(a)·f(b) ≤ 0, by
// bisection with secant acceleration. The bracket is guaranteed to
// shrink every iteration, so termination is bounded by MaxIter.
func (s *CoupledSolver) refineRoot(f func(float64) (float64, error), a, b float64) (float64, bool, error) {
	fa, err := f(a)
	if err != nil {
		return 0, false, err
	}
	fb, err := f(b)
	if err != nil {
		return 0, false, err
	}
	if fa == 0 {
		return a, true, nil
	}
	if fb == 0 {
		return b, true, nil
	}
	if fa*fb > 0 {
		return 0, false, fmt.Errorf("leafgas: root not bracketed in [%g, %g]", a, b)
	}

	for i := 0; i < s.Options.MaxIter; i++ {
		// Secant candidate, replaced by the midpoint whenever it
		// falls outside the bracket or too close to an endpoint to
		// make progress.
		mid := 0.5 * (a + b)
		x := mid
		if fb != fa {
			sec := b - fb*(b-a)/(fb-fa)
			margin := 0.01 * math.Abs(b-a)
			if sec > math.Min(a, b)+margin && sec < math.Max(a, b)-margin {
				x = sec
			}
		}
		fx, err := f(x)
		if err != nil {
			return 0, false, err
		}
		if math.Abs(fx) < s.Options.AbsTol ||
			math.Abs(b-a) < s.Options.CiTol*math.Max(1, math.Abs(x)) {
			return x, true, nil
		}
		if fa*fx <= 0 {
			b, fb = x, fx
		} else {
			a, fa = x, fx
		}
	}
	return 0.5 * (a + b), false, nil
}

// leafVPD returns the leaf-to-air vapour pressure deficit [kPa] at
// leaf temperature tleaf, holding the air-side vapour pressure implied
// by the input state fixed.
func leafVPD(st LeafState, tleaf float64) float64 {
	eair := esat(st.Tair) - st.D
	d := esat(tleaf) - eair
	if d < 0.01 {
		d = 0.01
	}
	return d
}

// withEnergyBalance runs solve directly when no energy balance is
// configured; otherwise it iterates solve and the leaf-temperature
// correction until Tleaf converges or the outer iteration cap is
// reached, in which case the result is downgraded to non-convergent
// rather than failing.
func (s *CoupledSolver) withEnergyBalance(st LeafState, solve func(LeafState) (SimResult, error)) (SimResult, error) {
	if s.EnergyBalance == nil {
		return solve(st)
	}
	cur := st
	var res SimResult
	var err error
	for i := 0; i < s.Options.MaxOuterIter; i++ {
		res, err = solve(cur)
		if err != nil {
			return res, err
		}
		tNew, err := s.EnergyBalance.LeafTemperature(cur, res.E)
		if err != nil {
			return res, err
		}
		// Damped update to avoid oscillation between the leaf
		// temperature and the transpiration it drives.
		tNext := cur.Tleaf + 0.5*(tNew-cur.Tleaf)
		if math.Abs(tNext-cur.Tleaf) < s.Options.TleafTol {
			cur.Tleaf = tNext
			res.Tleaf = cur.Tleaf
			res.EnergyBalanceConverged = true
			return res, nil
		}
		cur.Tleaf = tNext
		cur.D = leafVPD(st, cur.Tleaf)
	}
	res.Tleaf = cur.Tleaf
	res.EnergyBalanceConverged = false
	if res.Message == "" {
		res.Message = fmt.Sprintf("leaf temperature did not converge within %d outer iterations", s.Options.MaxOuterIter)
	}
	return res, err
}
