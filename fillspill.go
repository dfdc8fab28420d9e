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

// Package fillspill moves surface water over a gridded landscape until
// it comes to rest. Water runs downslope into pits, fills depressions,
// spills from full depressions into their neighbors or into the ocean,
// and forms flat lakes when neighboring depressions fill to their
// common outlet and merge.
//
// Depressions are organized in a hierarchy, where each pair of
// depressions that merge when full becomes the two children of a
// meta-depression. The hierarchy, the depression labels of the grid
// cells and the flow directions are inputs; see the fillspillutil
// package for reading them from files.
//
// A cycle is run as a sequence of DomainManipulators on a Domain; see
// DefaultRunFuncs and FillSpillMerge.
package fillspill

// Version gives the version number.
const Version = "0.1.0"
