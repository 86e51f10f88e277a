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
	"fmt"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/leafmodel/leafgas/fit"
)

// PlotFit writes a diagnostic plot of one fitted A-Ci curve: the
// measured points and the fitted model evaluated at each point.
func PlotFit(fileName string, ds fit.CurveDataset, fr *fit.FitResult) error {
	p, err := plot.New()
	if err != nil {
		return err
	}
	p.Title.Text = fmt.Sprintf("A-Ci fit: %s", ds.ID)
	p.X.Label.Text = "Ci (μmol/mol)"
	p.Y.Label.Text = "An (μmol/m²/s)"

	measured := make(plotter.XYs, len(ds.Points))
	for i, pt := range ds.Points {
		measured[i].X = pt.Ci
		measured[i].Y = pt.A
	}
	scatter, err := plotter.NewScatter(measured)
	if err != nil {
		return err
	}

	fitted := make(plotter.XYs, len(ds.Points))
	for i, v := range fr.Fitted() {
		fitted[i].X = ds.Points[i].Ci
		fitted[i].Y = v
	}
	sort.Slice(fitted, func(i, j int) bool { return fitted[i].X < fitted[j].X })
	line, err := plotter.NewLine(fitted)
	if err != nil {
		return err
	}

	p.Add(scatter, line)
	p.Legend.Add("measured", scatter)
	p.Legend.Add("fitted", line)
	return p.Save(6*vg.Inch, 4*vg.Inch, fileName)
}

// PlotFirstFit plots the first (alphabetically) successfully fitted
// curve of a batch.
func PlotFirstFit(fileName string, curves map[string]fit.CurveDataset, batch fit.BatchResult) error {
	ids := make([]string, 0, len(batch))
	for id := range batch {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if g := batch[id]; g.Err == nil && g.Fit.Converged {
			return PlotFit(fileName, curves[id], g.Fit)
		}
	}
	return fmt.Errorf("leafgas: no successfully fitted curve to plot")
}
