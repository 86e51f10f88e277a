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

package leafgasutil

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/leafmodel/leafgas"
	"github.com/leafmodel/leafgas/fit"
)

func writeCSV(fileName string, header []string, rows [][]string) error {
	f, err := os.Create(fileName)
	if err != nil {
		return fmt.Errorf("leafgas: creating output file: %v", err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func ftoa(v float64) string { return strconv.FormatFloat(v, 'g', 8, 64) }

// WriteSimResults writes one CSV row per batch record. Failed and
// non-converged records are written with their status so they are
// flagged rather than silently omitted.
func WriteSimResults(fileName string, results []leafgas.BatchResult) error {
	header := []string{"row", "An", "Ac", "Aj", "Gs", "Ci", "Cc", "E", "Tleaf", "regime", "converged", "error"}
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			rows = append(rows, []string{
				strconv.Itoa(r.Index), "", "", "", "", "", "", "", "", "",
				"false", r.Err.Error(),
			})
			continue
		}
		res := r.Result
		rows = append(rows, []string{
			strconv.Itoa(r.Index),
			ftoa(res.An), ftoa(res.Ac), ftoa(res.Aj),
			ftoa(res.Gs), ftoa(res.Ci), ftoa(res.Cc), ftoa(res.E), ftoa(res.Tleaf),
			res.Regime.String(),
			strconv.FormatBool(res.Converged && res.EnergyBalanceConverged),
			res.Message,
		})
	}
	return writeCSV(fileName, header, rows)
}

// WriteFitResults writes one CSV row per fitted curve, including
// failed groups.
func WriteFitResults(fileName string, batch fit.BatchResult) error {
	ids := make([]string, 0, len(batch))
	for id := range batch {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	header := []string{"curve", "Vcmax", "VcmaxSE", "Jmax", "JmaxSE", "Rd", "RdSE", "RSS", "n", "transitionCi", "converged", "error"}
	rows := make([][]string, 0, len(ids))
	for _, id := range ids {
		g := batch[id]
		if g.Err != nil {
			rows = append(rows, []string{id, "", "", "", "", "", "", "", "", "", "false", g.Err.Error()})
			continue
		}
		fr := g.Fit
		rows = append(rows, []string{
			id,
			ftoa(fr.Vcmax), ftoa(fr.VcmaxSE),
			ftoa(fr.Jmax), ftoa(fr.JmaxSE),
			ftoa(fr.Rd), ftoa(fr.RdSE),
			ftoa(fr.RSS), strconv.Itoa(fr.N),
			ftoa(fr.TransitionCi),
			strconv.FormatBool(fr.Converged),
			"",
		})
	}
	return writeCSV(fileName, header, rows)
}

// WriteOptimalResults solves every driver record with the optimality
// solver and writes the results, recording ErrNoOptimum per row
// rather than aborting the batch.
func WriteOptimalResults(fileName string, solver *leafgas.OptimalConductanceSolver, states []leafgas.LeafState) error {
	header := []string{"row", "Ci", "An", "Gs", "E", "Tleaf", "objective", "converged", "error"}
	rows := make([][]string, 0, len(states))
	for i, st := range states {
		res, err := solver.Solve(st)
		if err != nil {
			rows = append(rows, []string{strconv.Itoa(i), "", "", "", "", "", "", "false", err.Error()})
			continue
		}
		rows = append(rows, []string{
			strconv.Itoa(i),
			ftoa(res.Ci), ftoa(res.An), ftoa(res.Gs), ftoa(res.E), ftoa(res.Tleaf),
			ftoa(res.Objective),
			strconv.FormatBool(res.Converged),
			"",
		})
	}
	return writeCSV(fileName, header, rows)
}
