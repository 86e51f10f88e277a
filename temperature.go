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

// TemperatureResponse holds the coefficients of an Arrhenius or
// peaked-Arrhenius temperature response for one kinetic parameter.
// When Ed is zero the response is plain Arrhenius; otherwise the
// modified form with high-temperature inhibition is used. Coefficient
// sets are plain data so alternative calibrations can be substituted
// without touching solver code.
type TemperatureResponse struct {
	Ea     float64 // activation energy [J mol⁻¹]
	Ed     float64 // deactivation energy [J mol⁻¹]; 0 disables the peak
	DeltaS float64 // entropy term [J mol⁻¹ K⁻¹]; used only when Ed > 0
}

// Scale returns the multiplier converting the 25 °C value of a
// parameter to its value at leaf temperature Tleaf [°C].
func (r TemperatureResponse) Scale(Tleaf float64) float64 {
	Tk := Tleaf + 273.15
	f := math.Exp(r.Ea * (Tk - TrefK) / (TrefK * Rgas * Tk))
	if r.Ed <= 0 {
		return f
	}
	num := 1 + math.Exp((TrefK*r.DeltaS-r.Ed)/(TrefK*Rgas))
	den := 1 + math.Exp((Tk*r.DeltaS-r.Ed)/(Tk*Rgas))
	return f * num / den
}

// Bernacchi et al. (2001) in vivo temperature sensitivities, the
// default calibration.
var (
	defaultVcmaxT     = TemperatureResponse{Ea: 82620.87, Ed: 0, DeltaS: 645.1013}
	defaultJmaxT      = TemperatureResponse{Ea: 39676.89, Ed: 200000, DeltaS: 641.3615}
	defaultRdT        = TemperatureResponse{Ea: 46390}
	defaultGammaStarT = TemperatureResponse{Ea: 37830}
	defaultKcT        = TemperatureResponse{Ea: 79430}
	defaultKoT        = TemperatureResponse{Ea: 36380}
)
