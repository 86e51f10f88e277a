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

// Package leafgas models leaf-level photosynthesis and stomatal
// conductance. It couples a Farquhar-type biochemical demand function
// with empirical or optimality-based stomatal supply models and solves
// for the intercellular CO2 concentration at which the two agree.
package leafgas

import "math"

// Version gives the version number.
const Version = "0.1.0"

// Physical constants.
const (
	Rgas    = 8.314   // universal gas constant [J mol⁻¹ K⁻¹]
	Tref    = 25.     // reference temperature for kinetic parameters [°C]
	TrefK   = 298.15  // reference temperature [K]
	sigma   = 5.67e-8 // Stefan-Boltzmann constant [W m⁻² K⁻⁴]
	cpAir   = 29.3    // molar heat capacity of air [J mol⁻¹ K⁻¹]
	lambdaV = 44100.  // molar latent heat of vaporization at 25 °C [J mol⁻¹]
)

// GSVGSC is the ratio of the diffusivities of water vapor and CO2 in
// air: stomatal conductance to water is 1.6 times that to CO2.
const GSVGSC = 1.6

// LeafState describes the environment of a leaf at one instant. All
// CO2 concentrations are mixing ratios [μmol mol⁻¹], temperatures are
// [°C], D is the leaf-to-air vapour pressure deficit [kPa], Pa is
// atmospheric pressure [kPa], and PAR is [μmol m⁻² s⁻¹].
type LeafState struct {
	Ci    float64 // intercellular CO2 (only meaningful in Ci-given mode)
	Ca    float64 // ambient CO2
	Tleaf float64 // leaf temperature
	Tair  float64 // air temperature; used by the energy balance
	PAR   float64 // photosynthetically active radiation; ≤0 means light-saturated
	D     float64 // vapour pressure deficit
	Pa    float64 // atmospheric pressure
	Wind  float64 // wind speed [m s⁻¹]; used by the energy balance
}

// DefaultLeafState returns a LeafState with typical mid-day values.
func DefaultLeafState() LeafState {
	return LeafState{
		Ca:    400,
		Tleaf: 25,
		Tair:  25,
		PAR:   1500,
		D:     1.5,
		Pa:    101,
		Wind:  2,
	}
}

// Regime identifies which process limits assimilation at a given Cc.
type Regime int

const (
	// RegimeRubisco indicates carboxylation-limited assimilation.
	RegimeRubisco Regime = iota
	// RegimeRuBP indicates electron-transport-limited assimilation.
	RegimeRuBP
	// RegimeBelowCompensation indicates Cc at or below the compensation
	// point Γ*, where net assimilation is non-positive.
	RegimeBelowCompensation
)

func (r Regime) String() string {
	switch r {
	case RegimeRubisco:
		return "Rubisco"
	case RegimeRuBP:
		return "RuBP"
	case RegimeBelowCompensation:
		return "BelowCompensation"
	}
	return "unknown"
}

// SimResult holds the output of one coupled gas-exchange solution.
// Field names are stable across solving modes so results from
// different modes serialize to the same table.
type SimResult struct {
	An    float64 // net assimilation [μmol m⁻² s⁻¹]
	Ac    float64 // Rubisco-limited gross rate [μmol m⁻² s⁻¹]
	Aj    float64 // electron-transport-limited gross rate [μmol m⁻² s⁻¹]
	Gs    float64 // stomatal conductance to water [mol m⁻² s⁻¹]
	Ci    float64 // intercellular CO2 [μmol mol⁻¹]
	Cc    float64 // chloroplastic CO2 [μmol mol⁻¹]
	E     float64 // transpiration [mol m⁻² s⁻¹]
	Tleaf float64 // leaf temperature after any energy-balance refinement [°C]

	Regime Regime

	// Converged reports whether the inner Ci solution met tolerance.
	Converged bool
	// EnergyBalanceConverged reports whether the outer leaf-temperature
	// loop met tolerance. True when the energy balance is off.
	EnergyBalanceConverged bool

	// Message holds a diagnostic for non-converged solutions.
	Message string
}

// transpiration returns the perfect-coupling transpiration rate
// [mol m⁻² s⁻¹] for stomatal conductance gs [mol m⁻² s⁻¹] and vapour
// pressure deficit D [kPa] at pressure Pa [kPa].
func transpiration(gs, D, Pa float64) float64 {
	return gs * D / Pa
}

// esat returns saturation vapour pressure [kPa] at temperature T [°C]
// (Tetens formula).
func esat(T float64) float64 {
	return 0.61078 * math.Exp(17.269*T/(T+237.3))
}
