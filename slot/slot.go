// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

// Package slot maps integer values like match offsets and lengths to slots
// and extra bits. A slot covers the half-open range [base[i], base[i+1]) of
// values; the position inside the range is transmitted as extra bits.
//
// The tables used by the LZX and LZMS formats are computed on first use and
// are read-only afterwards, so they can be shared between goroutines.
package slot

import (
	"fmt"
	"math/bits"
	"sort"

	"github.com/ulikunitz/wimlz/internal/errs"
)

// Table describes a slot table. The zero value is an empty table.
type Table struct {
	// base has one entry more than there are slots.
	base []uint32
	// nbits gives the number of extra bits per slot.
	nbits []uint8
}

// newTable creates a table from the bases. The extra bits are computed from
// the difference of adjacent bases rounded down to a power of two.
func newTable(base []uint32) *Table {
	if len(base) < 2 {
		panic("slot: table requires at least two bases")
	}
	t := &Table{
		base:  base,
		nbits: make([]uint8, len(base)-1),
	}
	for i := range t.nbits {
		if base[i+1] <= base[i] {
			panic(fmt.Errorf("slot: bases not increasing at slot %d", i))
		}
		t.nbits[i] = uint8(bits.Len32(base[i+1]-base[i]) - 1)
	}
	return t
}

// Len returns the number of slots.
func (t *Table) Len() int { return len(t.nbits) }

// Base returns the smallest value of slot i.
func (t *Table) Base(i int) uint32 { return t.base[i] }

// ExtraBits returns the number of extra bits for slot i.
func (t *Table) ExtraBits(i int) uint { return uint(t.nbits[i]) }

// Min returns the smallest value supported by the table.
func (t *Table) Min() uint32 { return t.base[0] }

// Max returns the largest value supported by the table.
func (t *Table) Max() uint32 { return t.base[len(t.base)-1] - 1 }

// Bases returns a copy of the bases including the sentinel.
func (t *Table) Bases() []uint32 {
	b := make([]uint32, len(t.base))
	copy(b, t.base)
	return b
}

// Slot returns the largest slot i with Base(i) <= v. The function returns
// -1 if v is outside of the supported range.
func (t *Table) Slot(v uint32) int {
	n := t.Len()
	if n == 0 || v < t.base[0] || v >= t.base[n] {
		return -1
	}
	return sort.Search(n, func(i int) bool { return t.base[i+1] > v })
}

// Encode splits v into slot and extra bits. The value ok is false if v
// cannot be represented by the table.
func (t *Table) Encode(v uint32) (slot int, extra uint32, ok bool) {
	slot = t.Slot(v)
	if slot < 0 {
		return -1, 0, false
	}
	return slot, v - t.base[slot], true
}

// Decode returns the value for the slot and the extra bits. It returns an
// error if the slot doesn't exist or the extra bits don't fit into the
// slot.
func (t *Table) Decode(slot int, extra uint32) (uint32, error) {
	if !(0 <= slot && slot < t.Len()) {
		return 0, fmt.Errorf("slot: slot %d out of range: %w",
			slot, errs.ErrMalformed)
	}
	if extra>>t.nbits[slot] != 0 {
		return 0, fmt.Errorf("slot: extra bits %#x too large for slot %d: %w",
			extra, slot, errs.ErrMalformed)
	}
	return t.base[slot] + extra, nil
}
