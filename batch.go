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
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"
)

// BatchResult pairs one input record with its solution or its
// failure. A failed record never aborts its batch siblings.
type BatchResult struct {
	Index  int
	Result SimResult
	Err    error
}

// SolveBatch runs the fully coupled solver over many independent
// environmental-driver records, fanning the work out across
// GOMAXPROCS workers. Records are independent and share only the
// read-only solver configuration, so no ordering is imposed beyond
// the index carried in each result.
func (s *CoupledSolver) SolveBatch(states []LeafState) []BatchResult {
	out := make([]BatchResult, len(states))
	nprocs := runtime.GOMAXPROCS(0)
	var wg sync.WaitGroup
	wg.Add(nprocs)
	for pp := 0; pp < nprocs; pp++ {
		go func(pp int) {
			defer wg.Done()
			for i := pp; i < len(states); i += nprocs {
				res, err := s.Solve(states[i])
				out[i] = BatchResult{Index: i, Result: res, Err: err}
			}
		}(pp)
	}
	wg.Wait()

	var failed, nonConverged int
	for _, r := range out {
		switch {
		case r.Err != nil:
			failed++
		case !r.Result.Converged || !r.Result.EnergyBalanceConverged:
			nonConverged++
		}
	}
	if failed > 0 || nonConverged > 0 {
		logrus.WithFields(logrus.Fields{
			"records":      len(states),
			"failed":       failed,
			"nonconverged": nonConverged,
		}).Warn("leafgas: batch solve finished with flagged records")
	}
	return out
}
