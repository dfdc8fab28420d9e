/*
Copyright © 2018 the FillSpill authors.
This file is part of FillSpill.

FillSpill is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

FillSpill is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with FillSpill.  If not, see <http://www.gnu.org/licenses/>.
*/

package fillspill

import "fmt"

// InvariantError is returned when the water state violates a physical
// or bookkeeping invariant by more than FPError. It indicates corrupted
// inputs or a defect, and the cycle should be abandoned.
type InvariantError struct {
	Op         string // the operation that detected the problem
	Depression int    // the depression involved, or NoValue
	Cell       int    // the grid cell involved, or NoValue
	Msg        string
}

func (e *InvariantError) Error() string {
	s := fmt.Sprintf("fillspill: %s: %s", e.Op, e.Msg)
	if e.Depression != NoValue {
		s += fmt.Sprintf(" (depression %d)", e.Depression)
	}
	if e.Cell != NoValue {
		s += fmt.Sprintf(" (cell %d)", e.Cell)
	}
	return s
}

// IsInvariantError returns whether err is an *InvariantError.
func IsInvariantError(err error) bool {
	_, ok := err.(*InvariantError)
	return ok
}

func invariantErr(op string, dep, cell int, format string, a ...interface{}) error {
	return &InvariantError{Op: op, Depression: dep, Cell: cell, Msg: fmt.Sprintf(format, a...)}
}
