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
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tealeg/xlsx"

	"github.com/leafmodel/leafgas"
	"github.com/leafmodel/leafgas/fit"
)

// readTable reads a CSV file or an Excel sheet into a header row and
// data rows of strings. The format is chosen by file extension.
func readTable(fileName, sheet string) ([]string, [][]string, error) {
	if fileName == "" {
		return nil, nil, fmt.Errorf("leafgas: no input file specified; set InputFile and try again")
	}
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx":
		return readExcel(fileName, sheet)
	default:
		return readCSV(fileName)
	}
}

func readCSV(fileName string) ([]string, [][]string, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, nil, fmt.Errorf("leafgas: opening input file: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("leafgas: reading %s: %v", fileName, err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("leafgas: %s holds no data rows", fileName)
	}
	return rows[0], rows[1:], nil
}

func readExcel(fileName, sheet string) ([]string, [][]string, error) {
	f, err := xlsx.OpenFile(fileName)
	if err != nil {
		return nil, nil, fmt.Errorf("leafgas: opening xlsx file: %v", err)
	}
	s, ok := f.Sheet[sheet]
	if !ok {
		return nil, nil, fmt.Errorf("leafgas: reading %s; no sheet %s", fileName, sheet)
	}
	if s.MaxRow < 2 {
		return nil, nil, fmt.Errorf("leafgas: sheet %s holds no data rows", sheet)
	}
	header := make([]string, s.MaxCol)
	for c := 0; c < s.MaxCol; c++ {
		header[c] = s.Cell(0, c).Value
	}
	rows := make([][]string, 0, s.MaxRow-1)
	for r := 1; r < s.MaxRow; r++ {
		row := make([]string, s.MaxCol)
		empty := true
		for c := 0; c < s.MaxCol; c++ {
			row[c] = strings.TrimSpace(s.Cell(r, c).Value)
			if row[c] != "" {
				empty = false
			}
		}
		if !empty {
			rows = append(rows, row)
		}
	}
	return header, rows, nil
}

// columns maps lower-cased header names to their indices.
func columns(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, h := range header {
		m[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return m
}

// field returns the named column of a row as a float, or NaN when the
// column is absent or empty.
func field(row []string, cols map[string]int, names ...string) float64 {
	for _, n := range names {
		i, ok := cols[n]
		if !ok || i >= len(row) {
			continue
		}
		s := strings.TrimSpace(row[i])
		if s == "" {
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			continue
		}
		return v
	}
	return math.NaN()
}

// ReadCurves reads A-Ci curves from a CSV or Excel file. Recognized
// columns (case-insensitive): Curve (group identifier; optional), Ci,
// A or Photo, Tleaf, PAR. Rows missing Ci or A are rejected.
func ReadCurves(fileName, sheet string) (map[string]fit.CurveDataset, error) {
	header, rows, err := readTable(fileName, sheet)
	if err != nil {
		return nil, err
	}
	cols := columns(header)
	if _, ok := cols["ci"]; !ok {
		return nil, fmt.Errorf("leafgas: %s has no Ci column", fileName)
	}

	out := make(map[string]fit.CurveDataset)
	for i, row := range rows {
		ci := field(row, cols, "ci")
		a := field(row, cols, "a", "photo")
		if math.IsNaN(ci) || math.IsNaN(a) {
			return nil, fmt.Errorf("leafgas: %s row %d: missing Ci or A", fileName, i+2)
		}
		id := "curve1"
		if j, ok := cols["curve"]; ok && j < len(row) && strings.TrimSpace(row[j]) != "" {
			id = strings.TrimSpace(row[j])
		}
		ds := out[id]
		ds.ID = id
		ds.Points = append(ds.Points, fit.Point{
			Ci:    ci,
			A:     a,
			Tleaf: field(row, cols, "tleaf"),
			PAR:   field(row, cols, "par", "pari", "parin"),
		})
		out[id] = ds
	}
	return out, nil
}

// ReadDrivers reads environmental-driver rows for simulation from a
// CSV or Excel file. Recognized columns (case-insensitive): Ca,
// Tleaf, Tair, PAR, D or VPD, Pa, Wind, Ci. Missing optional values
// fall back to the defaults in leafgas.DefaultLeafState.
func ReadDrivers(fileName, sheet string) ([]leafgas.LeafState, error) {
	header, rows, err := readTable(fileName, sheet)
	if err != nil {
		return nil, err
	}
	cols := columns(header)

	out := make([]leafgas.LeafState, 0, len(rows))
	for _, row := range rows {
		st := leafgas.DefaultLeafState()
		if v := field(row, cols, "ca"); !math.IsNaN(v) {
			st.Ca = v
		}
		if v := field(row, cols, "tleaf"); !math.IsNaN(v) {
			st.Tleaf = v
		}
		if v := field(row, cols, "tair"); !math.IsNaN(v) {
			st.Tair = v
		} else {
			st.Tair = st.Tleaf
		}
		if v := field(row, cols, "par", "pari", "parin"); !math.IsNaN(v) {
			st.PAR = v
		}
		if v := field(row, cols, "d", "vpd"); !math.IsNaN(v) {
			st.D = v
		}
		if v := field(row, cols, "pa", "press"); !math.IsNaN(v) {
			st.Pa = v
		}
		if v := field(row, cols, "wind"); !math.IsNaN(v) {
			st.Wind = v
		}
		if v := field(row, cols, "ci"); !math.IsNaN(v) {
			st.Ci = v
		}
		out = append(out, st)
	}
	return out, nil
}
