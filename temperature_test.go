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

import "testing"

func TestTemperatureResponseReference(t *testing.T) {
	for _, r := range []TemperatureResponse{defaultVcmaxT, defaultJmaxT, defaultKcT} {
		if different(r.Scale(25), 1, 1e-12) {
			t.Errorf("Scale(25) = %g, want 1", r.Scale(25))
		}
	}
}

func TestArrheniusMonotonic(t *testing.T) {
	r := defaultVcmaxT // plain Arrhenius, no deactivation
	prev := 0.
	for tl := 5.; tl <= 45; tl += 5 {
		v := r.Scale(tl)
		if v <= prev {
			t.Errorf("Scale(%g) = %g, not increasing", tl, v)
		}
		prev = v
	}
}

func TestPeakedResponseDeclinesAtHighTemperature(t *testing.T) {
	r := defaultJmaxT // peaked: Ed > 0
	if r.Scale(36) <= r.Scale(25) {
		t.Errorf("peaked response should still rise at 36 °C: Scale(36)=%g Scale(25)=%g",
			r.Scale(36), r.Scale(25))
	}
	if r.Scale(45) >= r.Scale(36) {
		t.Errorf("peaked response should decline by 45 °C: Scale(45)=%g Scale(36)=%g",
			r.Scale(45), r.Scale(36))
	}
}

func TestAlternativeCalibration(t *testing.T) {
	// Coefficient tables are data: swapping one in changes the
	// temperature response without any solver change.
	p := DefaultBiochemicalParameters()
	p.VcmaxT = TemperatureResponse{Ea: 60000}
	k1 := p.At(30).Vcmax
	p.VcmaxT = TemperatureResponse{Ea: 90000}
	k2 := p.At(30).Vcmax
	if k2 <= k1 {
		t.Errorf("higher activation energy should scale Vcmax harder at 30 °C: %g vs %g", k2, k1)
	}
}
