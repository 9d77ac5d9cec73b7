// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lru

import "fmt"

// Delayed is the recent offsets queue of the LZMS format. The value
// used by an item enters the queue only after the following item has
// been coded. The values are 64-bit so that a delta match can store its
// power and its offset in a single entry.
//
// Only the first Len entries can be referenced; the additional entry
// refills the queue if a referenced entry is removed.
type Delayed struct {
	r        [Len + 1]uint64
	prev     uint64
	upcoming uint64
}

// Reset sets the entries to 1, 2, 3 and 4 and clears the pending values.
func (q *Delayed) Reset() {
	for i := range q.r {
		q.r[i] = uint64(i + 1)
	}
	q.prev, q.upcoming = 0, 0
}

// Peek returns entry i.
func (q *Delayed) Peek(i int) uint64 {
	return q.r[i]
}

// Index returns the first referenceable position of v in the queue or -1
// if v cannot be referenced.
func (q *Delayed) Index(v uint64) int {
	for i := 0; i < Len; i++ {
		if q.r[i] == v {
			return i
		}
	}
	return -1
}

// Take returns entry i, which must be less than Len, and removes it. The
// entries behind it move forward.
func (q *Delayed) Take(i int) uint64 {
	if !(0 <= i && i < Len) {
		panic(fmt.Errorf("lru: index %d out of range", i))
	}
	v := q.r[i]
	copy(q.r[i:], q.r[i+1:])
	return v
}

// Stage records the value used by the current item.
func (q *Delayed) Stage(v uint64) {
	q.upcoming = v
}

// Advance must be called after every item. The value staged by the
// previous item is inserted at the front of the queue.
func (q *Delayed) Advance() {
	if q.prev != 0 {
		copy(q.r[1:], q.r[:Len])
		q.r[0] = q.prev
	}
	q.prev = q.upcoming
	q.upcoming = 0
}

func (q Delayed) String() string {
	return fmt.Sprintf("%v prev=%d", q.r, q.prev)
}
