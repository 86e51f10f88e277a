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

// Package fit estimates photosynthesis and stomatal-conductance model
// parameters from gas-exchange measurements: Farquhar biochemical
// capacities from A-Ci curves by nonlinear least squares, and
// Ball-Berry-family coefficients from spot measurements by
// regression.
package fit

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Point is one record of an A-Ci curve. Tleaf and PAR are optional;
// NaN means not measured (25 °C and light saturation are assumed).
type Point struct {
	Ci    float64 // intercellular CO2 [μmol mol⁻¹]
	A     float64 // measured net assimilation [μmol m⁻² s⁻¹]
	Tleaf float64 // leaf temperature [°C]; NaN if absent
	PAR   float64 // irradiance [μmol m⁻² s⁻¹]; NaN if absent
}

// CurveDataset is one ordered A-Ci curve.
type CurveDataset struct {
	ID     string
	Points []Point
}

// FitResult holds the estimates and diagnostics of one curve fit.
// Created once per fit call and immutable afterwards.
type FitResult struct {
	Vcmax float64 // maximum carboxylation rate at 25 °C [μmol m⁻² s⁻¹]
	Jmax  float64 // maximum electron-transport rate at 25 °C [μmol m⁻² s⁻¹]
	Rd    float64 // dark respiration at 25 °C [μmol m⁻² s⁻¹]
	RdFit bool    // whether Rd was estimated rather than supplied

	VcmaxSE float64
	JmaxSE  float64
	RdSE    float64 // NaN when Rd was supplied

	// Covariance is the asymptotic parameter covariance matrix in the
	// order (Vcmax, Jmax[, Rd]). Nil when it could not be computed.
	Covariance *mat.Dense

	RSS          float64 // residual sum of squares
	N            int     // number of points
	TransitionCi float64 // Ci where Ac = Aj, a post-fit diagnostic
	Converged    bool
	Messages     []string

	fitted    []float64
	residuals []float64
}

// Fitted returns the modeled assimilation at each data point, in data
// order.
func (r *FitResult) Fitted() []float64 { return r.fitted }

// Residuals returns measured minus fitted assimilation at each data
// point, a plot-ready diagnostic series.
func (r *FitResult) Residuals() []float64 { return r.residuals }

// Summary returns a human-readable report of the fit.
func (r *FitResult) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "A-Ci fit over %d points (RSS = %.4g)\n", r.N, r.RSS)
	fmt.Fprintf(&b, "  Vcmax = %8.2f ± %.2f\n", r.Vcmax, r.VcmaxSE)
	fmt.Fprintf(&b, "  Jmax  = %8.2f ± %.2f\n", r.Jmax, r.JmaxSE)
	if r.RdFit {
		fmt.Fprintf(&b, "  Rd    = %8.2f ± %.2f\n", r.Rd, r.RdSE)
	} else {
		fmt.Fprintf(&b, "  Rd    = %8.2f (fixed)\n", r.Rd)
	}
	if !math.IsNaN(r.TransitionCi) {
		fmt.Fprintf(&b, "  transition Ci = %.1f\n", r.TransitionCi)
	}
	if !r.Converged {
		b.WriteString("  WARNING: fit did not converge\n")
	}
	for _, m := range r.Messages {
		fmt.Fprintf(&b, "  note: %s\n", m)
	}
	return b.String()
}

// FitFailureError is returned only after every starting point in the
// retry set has failed. It carries the diagnostics of the best
// attempt.
type FitFailureError struct {
	Attempts int
	Best     *FitResult // may be nil when no attempt produced a result
}

func (e *FitFailureError) Error() string {
	if e.Best != nil && len(e.Best.Messages) > 0 {
		return fmt.Sprintf("fit: all %d starting points failed; best attempt: %s",
			e.Attempts, e.Best.Messages[len(e.Best.Messages)-1])
	}
	return fmt.Sprintf("fit: all %d starting points failed", e.Attempts)
}
