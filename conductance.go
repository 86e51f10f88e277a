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
	"strings"
)

// ConductanceVariant selects the humidity-deficit response of the
// Ball-Berry conductance family. Each variant supplies only its D
// response; the rest of the formula is shared.
type ConductanceVariant int

const (
	// BallBerry is the original form with no deficit response.
	BallBerry ConductanceVariant = iota
	// Leuning responds as 1/(D+D0).
	Leuning
	// MedlynOptimality responds as 1/√D.
	MedlynOptimality
)

func (v ConductanceVariant) String() string {
	switch v {
	case BallBerry:
		return "BallBerry"
	case Leuning:
		return "Leuning"
	case MedlynOptimality:
		return "MedlynOptimality"
	}
	return "unknown"
}

// ParseConductanceVariant converts a configuration string to a
// ConductanceVariant.
func ParseConductanceVariant(s string) (ConductanceVariant, error) {
	switch strings.ToLower(s) {
	case "ballberry":
		return BallBerry, nil
	case "leuning":
		return Leuning, nil
	case "medlyn", "medlynoptimality":
		return MedlynOptimality, nil
	}
	return 0, fmt.Errorf("leafgas: unknown conductance model variant %q", s)
}

// ConductanceParameters holds the empirical coefficients of a
// stomatal conductance model: gs = g0 + g1·(An/Ca)·f(D).
type ConductanceParameters struct {
	G0      float64 // residual conductance [mol m⁻² s⁻¹]
	G1      float64 // slope [dimensionless, or kPa^½ for Medlyn]
	D0      float64 // deficit offset for the Leuning variant [kPa]
	Variant ConductanceVariant
}

// DefaultConductanceParameters returns a Medlyn-form parameter set
// with typical C3 coefficients.
func DefaultConductanceParameters() ConductanceParameters {
	return ConductanceParameters{G0: 0.01, G1: 4, Variant: MedlynOptimality}
}

// DResponse returns the variant's humidity-deficit multiplier f(D)
// for vapour pressure deficit D [kPa].
func (p ConductanceParameters) DResponse(D float64) float64 {
	switch p.Variant {
	case Leuning:
		return 1 / (D + p.D0)
	case MedlynOptimality:
		return 1 / math.Sqrt(D)
	}
	return 1
}

// Conductance returns the stomatal conductance to water
// [mol m⁻² s⁻¹] implied by net assimilation An [μmol m⁻² s⁻¹],
// ambient CO2 Ca [μmol mol⁻¹], and vapour pressure deficit D [kPa].
// Negative An is evaluated with the same formula; below the light
// compensation point the physical validity of the result is
// questionable but it is the caller's concern.
func (p ConductanceParameters) Conductance(An, Ca, D float64) float64 {
	return p.G0 + p.G1*(An/Ca)*p.DResponse(D)
}

// Predictor returns the regressor x in gs = g0 + g1·x used when
// fitting the model coefficients: x = (An/Ca)·f(D).
func (p ConductanceParameters) Predictor(An, Ca, D float64) float64 {
	return (An / Ca) * p.DResponse(D)
}
