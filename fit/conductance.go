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
	"strings"

	"github.com/GaryBoone/GoStats/stats"

	"github.com/leafmodel/leafgas"
)

// SpotMeasurement is one steady-state gas-exchange observation used
// for conductance-model fitting.
type SpotMeasurement struct {
	An float64 // net assimilation [μmol m⁻² s⁻¹]
	Gs float64 // stomatal conductance to water [mol m⁻² s⁻¹]
	Ca float64 // ambient CO2 [μmol mol⁻¹]
	D  float64 // vapour pressure deficit [kPa]
}

// ConductanceFitResult holds the estimated Ball-Berry-family
// coefficients with standard errors and 95% confidence intervals.
type ConductanceFitResult struct {
	Variant leafgas.ConductanceVariant

	G0   float64
	G1   float64
	G0SE float64 // NaN when g0 was fixed
	G1SE float64

	G0CI [2]float64 // 95% confidence interval; undefined when g0 fixed
	G1CI [2]float64

	G0Fixed  bool
	RSquared float64
	N        int
}

// Summary returns a human-readable report of the regression.
func (r *ConductanceFitResult) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s conductance fit over %d points (R² = %.3f)\n",
		r.Variant, r.N, r.RSquared)
	if r.G0Fixed {
		fmt.Fprintf(&b, "  g0 = %7.4f (fixed)\n", r.G0)
	} else {
		fmt.Fprintf(&b, "  g0 = %7.4f ± %.4f  [%.4f, %.4f]\n", r.G0, r.G0SE, r.G0CI[0], r.G0CI[1])
	}
	fmt.Fprintf(&b, "  g1 = %7.4f ± %.4f  [%.4f, %.4f]\n", r.G1, r.G1SE, r.G1CI[0], r.G1CI[1])
	return b.String()
}

// FitConductance estimates g0 and g1 by regressing measured gs
// against the chosen variant's predictor (An/Ca)·f(D). With g0 free
// this is an ordinary linear regression; with g0 fixed it reduces to
// a through-origin regression of gs − g0 on the predictor. params
// supplies the variant, the Leuning D0, and the fixed g0 value when
// fixG0 is set.
func FitConductance(ms []SpotMeasurement, params leafgas.ConductanceParameters, fixG0 bool) (*ConductanceFitResult, error) {
	if len(ms) < 3 {
		return nil, fmt.Errorf("fit: conductance fit needs at least 3 measurements, got %d", len(ms))
	}
	x := make([]float64, len(ms))
	y := make([]float64, len(ms))
	for i, m := range ms {
		if m.Ca <= 0 || m.D <= 0 {
			return nil, &leafgas.InvalidParameterError{Name: "Ca or D", Value: math.Min(m.Ca, m.D)}
		}
		x[i] = params.Predictor(m.An, m.Ca, m.D)
		y[i] = m.Gs
	}

	out := &ConductanceFitResult{Variant: params.Variant, N: len(ms)}

	if fixG0 {
		// Through-origin least squares on gs − g0.
		var sxy, sxx float64
		for i := range x {
			sxy += x[i] * (y[i] - params.G0)
			sxx += x[i] * x[i]
		}
		if sxx == 0 {
			return nil, fmt.Errorf("fit: conductance predictor has no variation")
		}
		g1 := sxy / sxx
		var rss, tss, ybar float64
		for i := range y {
			ybar += y[i]
		}
		ybar /= float64(len(y))
		for i := range x {
			r := y[i] - params.G0 - g1*x[i]
			rss += r * r
			d := y[i] - ybar
			tss += d * d
		}
		se := math.Sqrt(rss / float64(len(x)-1) / sxx)
		out.G0 = params.G0
		out.G0Fixed = true
		out.G0SE = math.NaN()
		out.G1 = g1
		out.G1SE = se
		out.G1CI = [2]float64{g1 - 1.96*se, g1 + 1.96*se}
		if tss > 0 {
			out.RSquared = 1 - rss/tss
		}
		return out, nil
	}

	slope, intercept, rsq, _, slopeSE, interceptSE := stats.LinearRegression(x, y)
	out.G0 = intercept
	out.G1 = slope
	out.G0SE = interceptSE
	out.G1SE = slopeSE
	out.RSquared = rsq
	out.G0CI = [2]float64{intercept - 1.96*interceptSE, intercept + 1.96*interceptSE}
	out.G1CI = [2]float64{slope - 1.96*slopeSE, slope + 1.96*slopeSE}
	return out, nil
}
