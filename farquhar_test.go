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
	"testing"
)

// different reports whether a and b differ by more than tolerance.
func different(a, b, tolerance float64) bool {
	return math.Abs(a-b) > tolerance
}

func TestAssimilateContinuousAndMonotonic(t *testing.T) {
	p := DefaultBiochemicalParameters()
	prev := math.Inf(-1)
	var prevCc float64
	for cc := 5.; cc <= 1500; cc += 5 {
		res, err := p.Assimilate(cc, 25, -1)
		if err != nil {
			t.Fatalf("Cc=%g: %v", cc, err)
		}
		if math.IsNaN(res.An) {
			t.Fatalf("Cc=%g: An is NaN", cc)
		}
		if res.An < prev {
			t.Errorf("An decreased from %g (Cc=%g) to %g (Cc=%g)", prev, prevCc, res.An, cc)
		}
		prev, prevCc = res.An, cc
	}
}

func TestSmoothedMinimum(t *testing.T) {
	p := DefaultBiochemicalParameters()
	for cc := 50.; cc <= 2000; cc += 25 {
		res, err := p.Assimilate(cc, 25, -1)
		if err != nil {
			t.Fatal(err)
		}
		exact := math.Min(res.Ac, res.Aj) - p.Rd*p.RdT.Scale(25)
		diff := math.Abs(res.An - exact)
		// The smoothing deviation peaks at the Ac = Aj crossover and
		// decays quadratically away from it.
		if diff > 0.5 {
			t.Errorf("Cc=%g: smoothed An=%g vs exact min %g", cc, res.An, exact)
		}
		if math.Abs(res.Ac-res.Aj) > 15 && diff > 1e-3 {
			t.Errorf("Cc=%g: far from transition, smoothed An=%g differs from exact %g by %g",
				cc, res.An, exact, diff)
		}
	}
}

func TestBelowCompensationPoint(t *testing.T) {
	p := DefaultBiochemicalParameters()
	gammaStar := p.At(25).GammaStar

	for _, cc := range []float64{0, gammaStar / 2, gammaStar} {
		res, err := p.Assimilate(cc, 25, -1)
		if err != nil {
			t.Fatalf("Cc=%g: %v", cc, err)
		}
		if res.Regime != RegimeBelowCompensation {
			t.Errorf("Cc=%g: regime = %s, want BelowCompensation", cc, res.Regime)
		}
		if res.An > 0 {
			t.Errorf("Cc=%g: An = %g, want non-positive", cc, res.An)
		}
		if math.IsNaN(res.An) {
			t.Errorf("Cc=%g: An is NaN, want a finite non-positive rate", cc)
		}
	}

	// A negative Cc makes the rate undefined: NaN with the flag, no
	// panic and no error.
	res, err := p.Assimilate(-10, 25, -1)
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsNaN(res.An) {
		t.Errorf("Cc=-10: An = %g, want NaN", res.An)
	}
	if res.Regime != RegimeBelowCompensation {
		t.Errorf("Cc=-10: regime = %s, want BelowCompensation", res.Regime)
	}
}

func TestInvalidParameters(t *testing.T) {
	for _, c := range []struct {
		name   string
		mutate func(*BiochemicalParameters)
	}{
		{"Vcmax", func(p *BiochemicalParameters) { p.Vcmax = -1 }},
		{"Jmax", func(p *BiochemicalParameters) { p.Jmax = 0 }},
		{"Kc", func(p *BiochemicalParameters) { p.Kc25 = -5 }},
	} {
		p := DefaultBiochemicalParameters()
		c.mutate(&p)
		_, err := p.Assimilate(300, 25, -1)
		if err == nil {
			t.Errorf("%s: expected InvalidParameterError, got nil", c.name)
			continue
		}
		if _, ok := err.(*InvalidParameterError); !ok {
			t.Errorf("%s: error type %T, want *InvalidParameterError", c.name, err)
		}
	}
}

func TestLimitingRegimes(t *testing.T) {
	p := DefaultBiochemicalParameters()

	low, err := p.Assimilate(300, 25, -1)
	if err != nil {
		t.Fatal(err)
	}
	if low.Regime != RegimeRubisco {
		t.Errorf("Ci=300: regime = %s, want Rubisco", low.Regime)
	}
	if low.An <= 0 {
		t.Errorf("Ci=300: An = %g, want positive", low.An)
	}

	high, err := p.Assimilate(900, 25, -1)
	if err != nil {
		t.Fatal(err)
	}
	if high.Regime != RegimeRuBP {
		t.Errorf("Ci=900: regime = %s, want RuBP", high.Regime)
	}

	// At high Ci the electron-transport limit holds An below the
	// linear extrapolation of the Rubisco-limited region.
	mid, err := p.Assimilate(200, 25, -1)
	if err != nil {
		t.Fatal(err)
	}
	slope := (low.An - mid.An) / 100
	extrapolated := low.An + slope*600
	if high.An >= extrapolated {
		t.Errorf("Ci=900: An = %g not below the Rubisco extrapolation %g", high.An, extrapolated)
	}

	// The regimes flip somewhere between the two probe points.
	ct := p.TransitionCc(25, -1)
	if math.IsNaN(ct) || ct < 300 || ct > 900 {
		t.Errorf("transition Cc = %g, want between 300 and 900", ct)
	}
}

func TestTransitionCc(t *testing.T) {
	p := DefaultBiochemicalParameters()
	ct := p.TransitionCc(25, -1)
	if math.IsNaN(ct) {
		t.Fatal("transition Cc is NaN")
	}
	res, err := p.Assimilate(ct, 25, -1)
	if err != nil {
		t.Fatal(err)
	}
	if different(res.Ac, res.Aj, 1e-6) {
		t.Errorf("at transition Cc=%g, Ac=%g != Aj=%g", ct, res.Ac, res.Aj)
	}
}
