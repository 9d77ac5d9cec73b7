// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

// Package lru provides the queue of the three most recently used match
// offsets. Matches can refer to an entry of the queue instead of
// transmitting the offset.
//
// The queue supports two sets of operations. Use and Insert keep all
// entries distinct; a hit moves the entry to the front. Swap and Push
// implement the update rules of the LZX format, which exchanges entries on
// a repeat match and pushes explicit offsets without removing duplicates.
// Encoder and decoder must apply the same operations in the same order.
//
// Delayed is the queue variant of the LZMS format, in which a value
// becomes available only one item after it has been used.
package lru

import "fmt"

// Len is the number of entries in the queue.
const Len = 3

// Queue stores the recent offsets. Entry 0 is the most recent one. The
// zero value contains only zero offsets; use New or Reset to initialize
// it.
type Queue struct {
	r [Len]uint32
}

// New returns a queue containing the distinct offsets 1, 2 and 3.
func New() Queue {
	return Queue{r: [Len]uint32{1, 2, 3}}
}

// Reset sets all entries to 1. This is the initial state of an LZX chunk.
func (q *Queue) Reset() {
	q.r = [Len]uint32{1, 1, 1}
}

// Peek returns the i-th most recent offset without modifying the queue.
func (q *Queue) Peek(i int) uint32 {
	return q.r[i]
}

// Offsets returns the entries of the queue, most recent first.
func (q *Queue) Offsets() [Len]uint32 {
	return q.r
}

// Index returns the position of off in the queue or -1 if the queue
// doesn't contain it.
func (q *Queue) Index(off uint32) int {
	for i, r := range q.r {
		if r == off {
			return i
		}
	}
	return -1
}

// Use moves entry i to the front. The entries before it shift back by one
// position. It returns the offset.
func (q *Queue) Use(i int) uint32 {
	off := q.r[i]
	copy(q.r[1:i+1], q.r[:i])
	q.r[0] = off
	return off
}

// Insert puts a new offset at the front of the queue. An existing
// occurrence of the offset is removed first, otherwise the least recent
// entry is evicted.
func (q *Queue) Insert(off uint32) {
	i := q.Index(off)
	if i < 0 {
		i = Len - 1
	}
	copy(q.r[1:i+1], q.r[:i])
	q.r[0] = off
}

// Swap exchanges entry i and entry 0 and returns the new front entry.
func (q *Queue) Swap(i int) uint32 {
	q.r[0], q.r[i] = q.r[i], q.r[0]
	return q.r[0]
}

// Push puts the offset at the front of the queue and evicts the least
// recent entry. Duplicates are not removed.
func (q *Queue) Push(off uint32) {
	q.r[2] = q.r[1]
	q.r[1] = q.r[0]
	q.r[0] = off
}

// String returns a readable representation of the queue.
func (q Queue) String() string {
	return fmt.Sprintf("[%d %d %d]", q.r[0], q.r[1], q.r[2])
}
