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
	"strings"
	"testing"

	"github.com/leafmodel/leafgas"
)

func TestFitBatchPartialFailure(t *testing.T) {
	truth := leafgas.DefaultBiochemicalParameters()
	curves := map[string]CurveDataset{
		"leaf1": syntheticCurve(t, truth, ciGrid(12), 0.3, 10),
		"leaf2": syntheticCurve(t, truth, ciGrid(12), 0.3, 11),
		// Too few points: this group must fail without taking the
		// others down.
		"leaf3": {ID: "leaf3", Points: []Point{{Ci: 100, A: 5}, {Ci: 500, A: 18}}},
	}

	out := FitBatch(curves, DefaultOptions())
	if len(out) != len(curves) {
		t.Fatalf("got %d groups, want %d", len(out), len(curves))
	}
	for _, id := range []string{"leaf1", "leaf2"} {
		g := out[id]
		if g.Err != nil {
			t.Errorf("%s failed: %v", id, g.Err)
			continue
		}
		if !g.Fit.Converged {
			t.Errorf("%s did not converge", id)
		}
		if different(g.Fit.Vcmax, truth.Vcmax, 6) {
			t.Errorf("%s: Vcmax = %g, want ≈ %g", id, g.Fit.Vcmax, truth.Vcmax)
		}
	}
	if out["leaf3"].Err == nil {
		t.Error("leaf3 should carry a per-group error")
	}

	s := out.Summary()
	if !strings.Contains(s, "leaf3: FAILED") {
		t.Errorf("summary should flag the failed group:\n%s", s)
	}
	if !strings.Contains(s, "leaf1: Vcmax=") {
		t.Errorf("summary should report the successful groups:\n%s", s)
	}
	// Deterministic ordering regardless of map iteration.
	if strings.Index(s, "leaf1") > strings.Index(s, "leaf2") {
		t.Errorf("summary groups out of order:\n%s", s)
	}
}

func TestFitBatchEmpty(t *testing.T) {
	out := FitBatch(nil, DefaultOptions())
	if len(out) != 0 {
		t.Errorf("got %d groups for an empty batch", len(out))
	}
}
