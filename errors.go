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

import "fmt"

// InvalidParameterError indicates a non-physical model parameter, for
// example a negative Vcmax. It is fatal to the single call that
// received it; batch drivers record it per item and continue.
type InvalidParameterError struct {
	Name  string
	Value float64
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("leafgas: invalid parameter %s = %g", e.Name, e.Value)
}

// ErrNoOptimum is returned by the optimality solver when the net-gain
// objective has no interior maximum within the search bounds, which
// can happen when energy-balance feedback makes the objective
// monotonic.
var ErrNoOptimum = fmt.Errorf("leafgas: no interior optimum found within Ci bounds")
