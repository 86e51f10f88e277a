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
)

// OptimalResult is the output of the optimality-based stomatal
// solver: the Ci maximizing net carbon gain, and the assimilation,
// conductance, and transpiration it implies.
type OptimalResult struct {
	Ci        float64 // optimal intercellular CO2 [μmol mol⁻¹]
	An        float64 // net assimilation at the optimum [μmol m⁻² s⁻¹]
	Gs        float64 // implied stomatal conductance [mol m⁻² s⁻¹]
	E         float64 // implied transpiration [mol m⁻² s⁻¹]
	Tleaf     float64 // leaf temperature, refined when energy balance is on [°C]
	Objective float64 // An − λ·E at the optimum
	Converged bool
}

// OptimalConductanceSolver derives stomatal behavior by maximizing
// the net gain An(Ci) − λ·E(Ci) over Ci, an alternative to the
// empirical conductance models. Lambda is the marginal cost of water
// [μmol CO2 per mol H2O].
type OptimalConductanceSolver struct {
	Biochem BiochemicalParameters
	Lambda  float64
	Options SolverOptions

	// EnergyBalance, when non-nil, refines the leaf temperature at
	// each objective evaluation's optimum.
	EnergyBalance EnergyBalanceAdapter
}

// NewOptimalConductanceSolver returns a solver with default options.
func NewOptimalConductanceSolver(b BiochemicalParameters, lambda float64) *OptimalConductanceSolver {
	return &OptimalConductanceSolver{Biochem: b, Lambda: lambda, Options: DefaultSolverOptions()}
}

// evaluate computes the objective and its component quantities at one
// trial Ci: An from the demand function, gs from rearranging the
// transport equation at that Ci, and E from perfect coupling.
func (s *OptimalConductanceSolver) evaluate(ci float64, st LeafState) (OptimalResult, error) {
	res, err := s.Biochem.Assimilate(ci, st.Tleaf, st.PAR)
	if err != nil {
		return OptimalResult{}, err
	}
	gs := GSVGSC * res.An / (st.Ca - ci)
	e := transpiration(gs, st.D, st.Pa)
	return OptimalResult{
		Ci: ci, An: res.An, Gs: gs, E: e, Tleaf: st.Tleaf,
		Objective: res.An - s.Lambda*e,
	}, nil
}

// Solve finds the Ci maximizing An − λ·E within the physically valid
// range (Γ*, Ca). A coarse scan locates an interior bracket that is
// then refined by golden-section search. When the scan finds no
// interior maximum, for example when energy-balance feedback makes
// the objective monotonic, ErrNoOptimum is returned instead of a
// spurious boundary value.
func (s *OptimalConductanceSolver) Solve(st LeafState) (OptimalResult, error) {
	if s.Lambda <= 0 {
		return OptimalResult{}, &InvalidParameterError{Name: "Lambda", Value: s.Lambda}
	}
	if err := s.Biochem.Validate(); err != nil {
		return OptimalResult{}, err
	}

	cur := st
	var out OptimalResult
	outer := 1
	if s.EnergyBalance != nil {
		outer = s.Options.MaxOuterIter
	}
	for i := 0; i < outer; i++ {
		ci, err := s.maximize(cur)
		if err != nil {
			return OptimalResult{}, err
		}
		out, err = s.evaluate(ci, cur)
		if err != nil {
			return OptimalResult{}, err
		}
		out.Converged = true
		if s.EnergyBalance == nil {
			return out, nil
		}
		tNew, err := s.EnergyBalance.LeafTemperature(cur, out.E)
		if err != nil {
			return out, err
		}
		tNext := cur.Tleaf + 0.5*(tNew-cur.Tleaf)
		if math.Abs(tNext-cur.Tleaf) < s.Options.TleafTol {
			cur.Tleaf = tNext
			out.Tleaf = tNext
			return out, nil
		}
		cur.Tleaf = tNext
		cur.D = leafVPD(st, cur.Tleaf)
	}
	out.Tleaf = cur.Tleaf
	out.Converged = false
	return out, nil
}

// maximize returns the Ci of the interior maximum of the objective.
func (s *OptimalConductanceSolver) maximize(st LeafState) (float64, error) {
	k := s.Biochem.At(st.Tleaf)
	lo := k.GammaStar + 0.5
	hi := st.Ca - 0.5
	if lo >= hi {
		return 0, ErrNoOptimum
	}

	// Coarse scan to locate an interior bracket around the maximum.
	const nScan = 64
	best, bestF := -1, math.Inf(-1)
	xs := make([]float64, nScan+1)
	fs := make([]float64, nScan+1)
	for i := 0; i <= nScan; i++ {
		x := lo + float64(i)*(hi-lo)/nScan
		r, err := s.evaluate(x, st)
		if err != nil {
			return 0, err
		}
		xs[i], fs[i] = x, r.Objective
		if r.Objective > bestF {
			best, bestF = i, r.Objective
		}
	}
	if best <= 0 || best >= nScan {
		// The maximum sits on the boundary: no interior optimum.
		return 0, ErrNoOptimum
	}

	// Golden-section refinement inside the bracketing scan points.
	a, b := xs[best-1], xs[best+1]
	const invPhi = 0.6180339887498949
	x1 := b - invPhi*(b-a)
	x2 := a + invPhi*(b-a)
	r1, err := s.evaluate(x1, st)
	if err != nil {
		return 0, err
	}
	r2, err := s.evaluate(x2, st)
	if err != nil {
		return 0, err
	}
	for i := 0; i < s.Options.MaxIter && b-a > s.Options.CiTol*math.Max(1, math.Abs(b)); i++ {
		if r1.Objective > r2.Objective {
			b, x2, r2 = x2, x1, r1
			x1 = b - invPhi*(b-a)
			if r1, err = s.evaluate(x1, st); err != nil {
				return 0, err
			}
		} else {
			a, x1, r1 = x1, x2, r2
			x2 = a + invPhi*(b-a)
			if r2, err = s.evaluate(x2, st); err != nil {
				return 0, err
			}
		}
	}
	return 0.5 * (a + b), nil
}
