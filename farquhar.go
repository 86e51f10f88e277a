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

import "math"

// BiochemicalParameters holds the Farquhar-model capacities and
// kinetic constants of one leaf. All rate capacities are values at
// 25 °C [μmol m⁻² s⁻¹]; concentrations are mixing ratios. Instances
// are immutable once constructed: temperature-adjusted values are
// recomputed per call, never stored back.
type BiochemicalParameters struct {
	Vcmax float64 // maximum carboxylation rate
	Jmax  float64 // maximum electron-transport rate
	Rd    float64 // dark respiration

	GammaStar25 float64 // CO2 compensation point Γ* [μmol mol⁻¹]
	Kc25        float64 // Michaelis constant for CO2 [μmol mol⁻¹]
	Ko25        float64 // Michaelis constant for O2 [mmol mol⁻¹]
	Oi          float64 // intercellular O2 [mmol mol⁻¹]

	// Curvature is the θ of the smoothed minimum combining Ac and Aj.
	// The default 0.9999 is numerically indistinguishable from the
	// true minimum while keeping the model smooth for fitting.
	Curvature float64

	AlphaJ float64 // quantum yield of electron transport [mol mol⁻¹]
	ThetaJ float64 // curvature of the light response of J

	// Gm is mesophyll conductance [mol m⁻² s⁻¹]. Zero or negative
	// means infinite, i.e. Cc = Ci.
	Gm float64

	VcmaxT     TemperatureResponse
	JmaxT      TemperatureResponse
	RdT        TemperatureResponse
	GammaStarT TemperatureResponse
	KcT        TemperatureResponse
	KoT        TemperatureResponse
}

// DefaultBiochemicalParameters returns a parameter set with the
// Bernacchi et al. (2001) kinetic constants and typical C3 capacities.
func DefaultBiochemicalParameters() BiochemicalParameters {
	return BiochemicalParameters{
		Vcmax:       100,
		Jmax:        180,
		Rd:          1,
		GammaStar25: 42.75,
		Kc25:        404.9,
		Ko25:        278.4,
		Oi:          210,
		Curvature:   0.9999,
		AlphaJ:      0.24,
		ThetaJ:      0.85,
		VcmaxT:      defaultVcmaxT,
		JmaxT:       defaultJmaxT,
		RdT:         defaultRdT,
		GammaStarT:  defaultGammaStarT,
		KcT:         defaultKcT,
		KoT:         defaultKoT,
	}
}

// Validate checks the parameter set for non-physical values.
func (p *BiochemicalParameters) Validate() error {
	switch {
	case p.Vcmax <= 0:
		return &InvalidParameterError{Name: "Vcmax", Value: p.Vcmax}
	case p.Jmax <= 0:
		return &InvalidParameterError{Name: "Jmax", Value: p.Jmax}
	case p.Kc25 <= 0:
		return &InvalidParameterError{Name: "Kc", Value: p.Kc25}
	case p.Ko25 <= 0:
		return &InvalidParameterError{Name: "Ko", Value: p.Ko25}
	case p.Rd < 0:
		return &InvalidParameterError{Name: "Rd", Value: p.Rd}
	}
	return nil
}

// Kinetics holds the temperature-adjusted parameter values at one
// leaf temperature.
type Kinetics struct {
	Vcmax, Jmax, Rd float64
	GammaStar       float64
	Km              float64 // effective Michaelis constant Kc(1+Oi/Ko)
}

// At returns the kinetic parameters adjusted to Tleaf [°C].
func (p *BiochemicalParameters) At(Tleaf float64) Kinetics {
	kc := p.Kc25 * p.KcT.Scale(Tleaf)
	ko := p.Ko25 * p.KoT.Scale(Tleaf)
	return Kinetics{
		Vcmax:     p.Vcmax * p.VcmaxT.Scale(Tleaf),
		Jmax:      p.Jmax * p.JmaxT.Scale(Tleaf),
		Rd:        p.Rd * p.RdT.Scale(Tleaf),
		GammaStar: p.GammaStar25 * p.GammaStarT.Scale(Tleaf),
		Km:        kc * (1 + p.Oi/ko),
	}
}

// electronTransport returns the electron transport rate J
// [μmol m⁻² s⁻¹] at irradiance PAR and capacity jmax, from the
// non-rectangular hyperbolic light response. PAR ≤ 0 means
// light-saturated, J = Jmax.
func (p *BiochemicalParameters) electronTransport(PAR, jmax float64) float64 {
	if PAR <= 0 || math.IsNaN(PAR) {
		return jmax
	}
	q := p.AlphaJ * PAR
	θ := p.ThetaJ
	if θ <= 0 {
		θ = 0.85
	}
	return (q + jmax - math.Sqrt((q+jmax)*(q+jmax)-4*θ*q*jmax)) / (2 * θ)
}

// AssimilationResult is the output of one demand-function evaluation.
type AssimilationResult struct {
	An     float64 // net assimilation [μmol m⁻² s⁻¹]
	Ac     float64 // Rubisco-limited gross rate
	Aj     float64 // electron-transport-limited gross rate
	Regime Regime
}

// Assimilate evaluates the Farquhar demand function at chloroplastic
// CO2 concentration Cc [μmol mol⁻¹], leaf temperature Tleaf [°C] and
// irradiance PAR [μmol m⁻² s⁻¹]. The two limiting rates are combined
// with a smoothed minimum so the result is continuous in Cc.
//
// Cc at or below Γ* yields a non-positive An and the
// RegimeBelowCompensation flag; a negative Cc makes the rate
// undefined and yields NaN with the same flag, never a panic.
func (p *BiochemicalParameters) Assimilate(Cc, Tleaf, PAR float64) (AssimilationResult, error) {
	if err := p.Validate(); err != nil {
		return AssimilationResult{}, err
	}
	k := p.At(Tleaf)
	if Cc < 0 {
		return AssimilationResult{
			An: math.NaN(), Ac: math.NaN(), Aj: math.NaN(),
			Regime: RegimeBelowCompensation,
		}, nil
	}

	ac := k.Vcmax * (Cc - k.GammaStar) / (Cc + k.Km)
	j := p.electronTransport(PAR, k.Jmax)
	aj := j / 4 * (Cc - k.GammaStar) / (Cc + 2*k.GammaStar)

	θ := p.Curvature
	if θ <= 0 || θ > 1 {
		θ = 0.9999
	}
	// Smoothed minimum of Ac and Aj. The radicand can dip slightly
	// negative from floating-point error; clamp it at zero.
	rad := (ac+aj)*(ac+aj) - 4*θ*ac*aj
	if rad < 0 {
		rad = 0
	}
	am := (ac + aj - math.Sqrt(rad)) / (2 * θ)
	an := am - k.Rd

	res := AssimilationResult{An: an, Ac: ac, Aj: aj}
	switch {
	case Cc <= k.GammaStar:
		res.Regime = RegimeBelowCompensation
	case ac < aj:
		res.Regime = RegimeRubisco
	default:
		res.Regime = RegimeRuBP
	}
	return res, nil
}

// TransitionCc returns the Cc at which the Rubisco-limited and
// electron-transport-limited rates are equal, for leaf temperature
// Tleaf and irradiance PAR. It is a diagnostic, not a fitting input:
// the smoothed minimum removes any need to assign points to regimes.
// Returns NaN when the two rates never cross (J/4 ≥ Vcmax).
func (p *BiochemicalParameters) TransitionCc(Tleaf, PAR float64) float64 {
	k := p.At(Tleaf)
	vj := p.electronTransport(PAR, k.Jmax) / 4
	if k.Vcmax-vj <= 0 {
		return math.NaN()
	}
	return (k.Km*vj - 2*k.GammaStar*k.Vcmax) / (k.Vcmax - vj)
}
