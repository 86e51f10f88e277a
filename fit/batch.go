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
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// GroupResult is the outcome of one curve in a batch fit: either a
// FitResult or the error that stopped it. A failed group never aborts
// its siblings.
type GroupResult struct {
	Fit *FitResult
	Err error
}

// BatchResult maps curve identifiers to their per-group outcomes.
type BatchResult map[string]GroupResult

// Summary lists every group's outcome, flagging failed and
// non-converged fits rather than omitting them.
func (b BatchResult) Summary() string {
	ids := make([]string, 0, len(b))
	for id := range b {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var sb strings.Builder
	for _, id := range ids {
		g := b[id]
		switch {
		case g.Err != nil:
			fmt.Fprintf(&sb, "%s: FAILED: %v\n", id, g.Err)
		case !g.Fit.Converged:
			fmt.Fprintf(&sb, "%s: NOT CONVERGED (Vcmax=%.1f, Jmax=%.1f)\n", id, g.Fit.Vcmax, g.Fit.Jmax)
		default:
			fmt.Fprintf(&sb, "%s: Vcmax=%.1f±%.1f Jmax=%.1f±%.1f Rd=%.2f RSS=%.3g\n",
				id, g.Fit.Vcmax, g.Fit.VcmaxSE, g.Fit.Jmax, g.Fit.JmaxSE, g.Fit.Rd, g.Fit.RSS)
		}
	}
	return sb.String()
}

// FitBatch fits every curve in the batch independently, distributing
// groups across GOMAXPROCS workers. Each fit call is self-contained
// and deterministic given its inputs, so no ordering or shared state
// crosses groups; failures are recorded per group and the rest of the
// batch continues.
func FitBatch(curves map[string]CurveDataset, opts Options) BatchResult {
	ids := make([]string, 0, len(curves))
	for id := range curves {
		ids = append(ids, id)
	}

	results := make([]GroupResult, len(ids))
	nprocs := runtime.GOMAXPROCS(0)
	var wg sync.WaitGroup
	wg.Add(nprocs)
	for pp := 0; pp < nprocs; pp++ {
		go func(pp int) {
			defer wg.Done()
			for i := pp; i < len(ids); i += nprocs {
				fr, err := FitCurve(curves[ids[i]], opts)
				results[i] = GroupResult{Fit: fr, Err: err}
			}
		}(pp)
	}
	wg.Wait()

	out := make(BatchResult, len(ids))
	var failed int
	for i, id := range ids {
		out[id] = results[i]
		if results[i].Err != nil {
			failed++
		}
	}
	if failed > 0 {
		logrus.WithFields(logrus.Fields{
			"groups": len(ids),
			"failed": failed,
		}).Warn("fit: batch finished with failed groups")
	}
	return out
}
