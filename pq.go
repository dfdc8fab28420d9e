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

import "container/heap"

type floodCell struct {
	cell int
	elev float64
	seq  int
}

// floodQueue is a min-heap of cells by elevation. Among cells of equal
// elevation, the most recently added comes first.
type floodQueue []floodCell

func (q floodQueue) Len() int { return len(q) }
func (q floodQueue) Less(i, j int) bool {
	if q[i].elev == q[j].elev {
		return q[i].seq > q[j].seq
	}
	return q[i].elev < q[j].elev
}
func (q floodQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *floodQueue) Push(x interface{}) { *q = append(*q, x.(floodCell)) }
func (q *floodQueue) Pop() interface{} {
	old := *q
	n := len(old)
	x := old[n-1]
	*q = old[:n-1]
	return x
}

func (q *floodQueue) push(c floodCell) { heap.Push(q, c) }
func (q *floodQueue) pop() floodCell  { return heap.Pop(q).(floodCell) }
