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

package fit

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/leafmodel/leafgas"
)

// Options configures an A-Ci curve fit. The zero value is not useful;
// start from DefaultOptions.
type Options struct {
	// Template supplies the kinetic constants, temperature
	// sensitivities, curvature, and mesophyll conductance held fixed
	// during the fit. When Template.Gm > 0, the fitted Vcmax and Jmax
	// are chloroplastic rates.
	Template leafgas.BiochemicalParameters

	// FitRd estimates dark respiration alongside Vcmax and Jmax.
	// When false, Rd is held at the supplied value.
	FitRd bool
	Rd    float64

	// FixedTransitionCi, when positive, pins the Ac/Aj transition:
	// points below it constrain Vcmax (and Rd), points above it
	// constrain Jmax. When zero the transition is implicit in the
	// smoothed-minimum model and reported post-fit as a diagnostic.
	FixedTransitionCi float64

	MaxIter int // iteration cap per minimization attempt
}

// DefaultOptions returns the recommended fit configuration.
func DefaultOptions() Options {
	return Options{
		Template: leafgas.DefaultBiochemicalParameters(),
		FitRd:    true,
		Rd:       1.5,
		MaxIter:  2000,
	}
}

// FitCurve estimates Vcmax, Jmax, and optionally Rd from one A-Ci
// curve by nonlinear least squares. Starting values are derived from
// the data and the fit is retried over a grid of perturbed starts;
// the first converged, physically valid result is kept. A
// FitFailureError is returned only when every attempt fails.
func FitCurve(ds CurveDataset, opts Options) (*FitResult, error) {
	npar := 2
	if opts.FitRd {
		npar = 3
	}
	if len(ds.Points) < npar+1 {
		return nil, fmt.Errorf("fit: curve %q has %d points; at least %d are needed",
			ds.ID, len(ds.Points), npar+1)
	}
	if opts.FixedTransitionCi > 0 {
		return fitBilinear(ds, opts)
	}

	pred := func(x []float64) []float64 { return predict(ds, opts, x) }
	ssr := func(x []float64) float64 {
		if !physical(x, opts) {
			return math.Inf(1)
		}
		s := 0.
		for i, p := range pred(x) {
			r := ds.Points[i].A - p
			s += r * r
		}
		if math.IsNaN(s) {
			return math.Inf(1)
		}
		return s
	}

	problem := optimize.Problem{Func: ssr}
	settings := &optimize.Settings{MajorIterations: opts.MaxIter}

	var best *FitResult
	attempts := 0
	for _, x0 := range startingValues(ds, opts) {
		attempts++
		res, err := optimize.Minimize(problem, x0, settings, &optimize.NelderMead{})
		if err != nil {
			continue
		}
		if !physical(res.X, opts) || math.IsInf(res.F, 0) || math.IsNaN(res.F) {
			if best == nil || res.F < best.RSS {
				best = &FitResult{
					Vcmax: res.X[0], Jmax: res.X[1],
					RdFit: opts.FitRd, RSS: res.F, N: len(ds.Points),
					TransitionCi: math.NaN(),
					Messages: []string{fmt.Sprintf(
						"non-physical estimates (Vcmax=%.3g, Jmax=%.3g) at RSS %.4g",
						res.X[0], res.X[1], res.F)},
				}
				if opts.FitRd {
					best.Rd = res.X[2]
				}
			}
			continue
		}
		fr := buildResult(ds, opts, res.X, res.F)
		fr.Converged = true
		return fr, nil
	}

	return nil, &FitFailureError{Attempts: attempts, Best: best}
}

// physical reports whether a parameter vector is physically valid.
func physical(x []float64, opts Options) bool {
	if x[0] <= 0 || x[1] <= 0 {
		return false
	}
	if opts.FitRd && x[2] < 0 {
		return false
	}
	return true
}

// withParams copies the template with the trial capacities installed.
func withParams(opts Options, x []float64) leafgas.BiochemicalParameters {
	p := opts.Template
	p.Vcmax, p.Jmax = x[0], x[1]
	if opts.FitRd {
		p.Rd = x[2]
	} else {
		p.Rd = opts.Rd
	}
	return p
}

// predict returns the modeled net assimilation at each data point for
// the trial parameter vector x. When mesophyll conductance is finite
// the Cc = Ci − An/gm substitution is resolved by fixed-point
// iteration, so the capacities being fitted are chloroplastic rates.
func predict(ds CurveDataset, opts Options, x []float64) []float64 {
	p := withParams(opts, x)
	out := make([]float64, len(ds.Points))
	for i, pt := range ds.Points {
		tl := pt.Tleaf
		if math.IsNaN(tl) {
			tl = 25
		}
		cc := pt.Ci
		res, err := p.Assimilate(cc, tl, pt.PAR)
		if err != nil {
			out[i] = math.NaN()
			continue
		}
		if p.Gm > 0 {
			for it := 0; it < 30; it++ {
				next := pt.Ci - res.An/p.Gm
				if next < 0 {
					next = 0
				}
				next = cc + 0.5*(next-cc)
				if res, err = p.Assimilate(next, tl, pt.PAR); err != nil {
					break
				}
				if math.Abs(next-cc) < 1e-8*math.Max(1, cc) {
					cc = next
					break
				}
				cc = next
			}
		}
		out[i] = res.An
	}
	return out
}

// startingValues derives a data-driven primary start and a grid of
// perturbed retries. Vcmax is seeded from the low-Ci region by
// inverting the Rubisco-limited rate, Jmax from the high-Ci plateau
// by inverting the electron-transport-limited rate.
func startingValues(ds CurveDataset, opts Options) [][]float64 {
	k := opts.Template.At(25)
	gammaStar, km := k.GammaStar, k.Km

	pts := append([]Point(nil), ds.Points...)
	sort.Slice(pts, func(i, j int) bool { return pts[i].Ci < pts[j].Ci })

	rd0 := opts.Rd
	if rd0 <= 0 {
		rd0 = 1.5
	}

	// Median Vcmax implied by points in the Rubisco-limited region.
	var vs []float64
	for _, p := range pts {
		if p.Ci > gammaStar+10 && p.Ci < 300 {
			vs = append(vs, (p.A+rd0)*(p.Ci+km)/(p.Ci-gammaStar))
		}
	}
	vcmax0 := 100.
	if len(vs) > 0 {
		sort.Float64s(vs)
		vcmax0 = vs[len(vs)/2]
	}

	// Jmax implied by the highest-Ci point.
	jmax0 := 1.8 * vcmax0
	if top := pts[len(pts)-1]; top.Ci > 400 {
		j := 4 * (top.A + rd0) * (top.Ci + 2*gammaStar) / (top.Ci - gammaStar)
		if j > 0 {
			jmax0 = j
		}
	}

	var starts [][]float64
	for _, fv := range []float64{1, 0.5, 2} {
		for _, fj := range []float64{1, 0.5, 2} {
			x := []float64{vcmax0 * fv, jmax0 * fj}
			if opts.FitRd {
				x = append(x, rd0)
			}
			starts = append(starts, x)
		}
	}
	return starts
}

// buildResult assembles the FitResult at the optimum, including the
// asymptotic standard errors from the local curvature of the
// least-squares objective.
func buildResult(ds CurveDataset, opts Options, x []float64, rss float64) *FitResult {
	npar := len(x)
	n := len(ds.Points)

	fr := &FitResult{
		Vcmax: x[0], Jmax: x[1],
		Rd: opts.Rd, RdFit: opts.FitRd,
		RdSE: math.NaN(),
		RSS:  rss, N: n,
	}
	if opts.FitRd {
		fr.Rd = x[2]
	}

	fitted := predict(ds, opts, x)
	fr.fitted = fitted
	fr.residuals = make([]float64, n)
	for i, p := range ds.Points {
		fr.residuals[i] = p.A - fitted[i]
	}

	// Covariance = σ²(JᵀJ)⁻¹ with a numerical Jacobian of the model
	// predictions with respect to the parameters.
	jac := mat.NewDense(n, npar, nil)
	fd.Jacobian(jac, func(y, xx []float64) {
		copy(y, predict(ds, opts, xx))
	}, x, &fd.JacobianSettings{Formula: fd.Central})

	var jtj mat.Dense
	jtj.Mul(jac.T(), jac)
	var cov mat.Dense
	if err := cov.Inverse(&jtj); err != nil || n <= npar {
		fr.VcmaxSE, fr.JmaxSE = math.NaN(), math.NaN()
		fr.Messages = append(fr.Messages,
			"covariance matrix is singular; standard errors unavailable")
	} else {
		sigma2 := rss / float64(n-npar)
		cov.Scale(sigma2, &cov)
		fr.Covariance = &cov
		fr.VcmaxSE = math.Sqrt(cov.At(0, 0))
		fr.JmaxSE = math.Sqrt(cov.At(1, 1))
		if opts.FitRd {
			fr.RdSE = math.Sqrt(cov.At(2, 2))
		}
	}

	fr.TransitionCi = transitionCi(ds, opts, x)
	return fr
}

// transitionCi locates the Ci where the fitted Rubisco- and
// electron-transport-limited rates cross, at the curve's typical leaf
// temperature and irradiance.
func transitionCi(ds CurveDataset, opts Options, x []float64) float64 {
	p := withParams(opts, x)
	tl, par, nt := 0., 0., 0
	parSeen := false
	for _, pt := range ds.Points {
		if !math.IsNaN(pt.Tleaf) {
			tl += pt.Tleaf
			nt++
		}
		if !math.IsNaN(pt.PAR) && pt.PAR > 0 {
			par += pt.PAR
			parSeen = true
		}
	}
	if nt > 0 {
		tl /= float64(nt)
	} else {
		tl = 25
	}
	if parSeen {
		par /= float64(len(ds.Points))
	} else {
		par = -1 // light-saturated
	}

	cc := p.TransitionCc(tl, par)
	if math.IsNaN(cc) || p.Gm <= 0 {
		return cc
	}
	// Translate the chloroplastic transition back to intercellular
	// CO2 through the mesophyll gradient.
	res, err := p.Assimilate(cc, tl, par)
	if err != nil {
		return cc
	}
	return cc + res.An/p.Gm
}

// fitBilinear handles the fixed-transition variant: Vcmax (and Rd)
// are fitted on the points below the supplied transition Ci with the
// Rubisco-limited sub-model only, then Jmax on the points above it
// with the electron-transport-limited sub-model.
func fitBilinear(ds CurveDataset, opts Options) (*FitResult, error) {
	ct := opts.FixedTransitionCi
	var low, high CurveDataset
	low.ID, high.ID = ds.ID, ds.ID
	for _, p := range ds.Points {
		if p.Ci <= ct {
			low.Points = append(low.Points, p)
		} else {
			high.Points = append(high.Points, p)
		}
	}
	if len(low.Points) < 2 || len(high.Points) < 1 {
		return nil, fmt.Errorf("fit: transition Ci %g leaves too few points on one side (%d below, %d above)",
			ct, len(low.Points), len(high.Points))
	}

	settings := &optimize.Settings{MajorIterations: opts.MaxIter}

	// Rubisco-limited stage over the low-Ci points.
	rd0 := opts.Rd
	if rd0 <= 0 {
		rd0 = 1.5
	}
	subAc := func(x []float64) float64 {
		vcmax, rd := x[0], rd0
		if opts.FitRd {
			rd = x[1]
		}
		if vcmax <= 0 || rd < 0 {
			return math.Inf(1)
		}
		s := 0.
		for _, p := range low.Points {
			kk := kineticsFor(opts, p)
			an := vcmax*(p.Ci-kk.GammaStar)/(p.Ci+kk.Km) - rd
			r := p.A - an
			s += r * r
		}
		return s
	}
	x0 := []float64{100}
	if opts.FitRd {
		x0 = append(x0, rd0)
	}
	resAc, err := optimize.Minimize(optimize.Problem{Func: subAc}, x0, settings, &optimize.NelderMead{})
	if err != nil {
		return nil, &FitFailureError{Attempts: 1}
	}
	vcmax := resAc.X[0]
	rd := rd0
	if opts.FitRd {
		rd = resAc.X[1]
	}

	// Electron-transport stage over the high-Ci points, Rd held at
	// the first-stage estimate.
	subAj := func(x []float64) float64 {
		jmax := x[0]
		if jmax <= 0 {
			return math.Inf(1)
		}
		p := opts.Template
		p.Jmax = jmax
		s := 0.
		for _, pt := range high.Points {
			kk := kineticsFor(opts, pt)
			tl := pt.Tleaf
			if math.IsNaN(tl) {
				tl = 25
			}
			j := jmaxAt(p, tl, pt.PAR)
			an := j/4*(pt.Ci-kk.GammaStar)/(pt.Ci+2*kk.GammaStar) - rd
			r := pt.A - an
			s += r * r
		}
		return s
	}
	resAj, err := optimize.Minimize(optimize.Problem{Func: subAj}, []float64{1.8 * vcmax}, settings, &optimize.NelderMead{})
	if err != nil {
		return nil, &FitFailureError{Attempts: 1}
	}
	jmax := resAj.X[0]

	x := []float64{vcmax, jmax}
	if opts.FitRd {
		x = append(x, rd)
	}
	if !physical(x, opts) {
		return nil, &FitFailureError{Attempts: 1}
	}
	ssr := 0.
	for i, p := range predict(ds, opts, x) {
		r := ds.Points[i].A - p
		ssr += r * r
	}
	fr := buildResult(ds, opts, x, ssr)
	fr.Converged = true
	fr.TransitionCi = ct
	fr.Messages = append(fr.Messages,
		fmt.Sprintf("transition Ci fixed at %g; Vcmax fitted on %d points, Jmax on %d",
			ct, len(low.Points), len(high.Points)))
	return fr, nil
}

// kineticsFor returns the temperature-adjusted kinetic constants for
// one data point.
func kineticsFor(opts Options, p Point) leafgas.Kinetics {
	tl := p.Tleaf
	if math.IsNaN(tl) {
		tl = 25
	}
	return opts.Template.At(tl)
}

// jmaxAt returns the electron-transport rate J at leaf temperature tl
// and irradiance PAR for the capacities in p.
func jmaxAt(p leafgas.BiochemicalParameters, tl, PAR float64) float64 {
	k := p.At(tl)
	if PAR <= 0 || math.IsNaN(PAR) {
		return k.Jmax
	}
	q := p.AlphaJ * PAR
	θ := p.ThetaJ
	if θ <= 0 {
		θ = 0.85
	}
	return (q + k.Jmax - math.Sqrt((q+k.Jmax)*(q+k.Jmax)-4*θ*q*k.Jmax)) / (2 * θ)
}
