// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package slot

import "sync"

// LZXPositionSlots is the number of position slots for the 32 KiB window
// used by LZX in WIM files.
const LZXPositionSlots = 30

// Number of slots of the LZMS offset and length tables.
const (
	LZMSOffsetSlots = 799
	LZMSLengthSlots = 54
)

// lzxExtraBits computes the number of extra bits for an LZX position slot.
// The width of the slots doubles every two slots.
func lzxExtraBits(slot int) uint {
	if slot < 4 {
		return 0
	}
	return uint(slot>>1) - 1
}

// newLZX builds the LZX position slot table by adding the width of each
// slot to the base of the slot.
func newLZX(n int) *Table {
	base := make([]uint32, n+1)
	for i := 0; i < n; i++ {
		base[i+1] = base[i] + 1<<lzxExtraBits(i)
	}
	return newTable(base)
}

// The LZMS slot bases grow by powers of two. The run-length tables give the
// number of slots for each increasing power of two.
var (
	lzmsOffsetDeltaRuns = []uint8{
		9, 0, 9, 7, 10, 15, 15, 20,
		20, 30, 33, 40, 42, 45, 60, 73,
		80, 85, 95, 105, 6,
	}
	lzmsLengthDeltaRuns = []uint8{
		27, 4, 6, 4, 5, 2, 1, 1,
		1, 1, 1, 0, 0, 0, 0, 0,
		1,
	}
)

// Sentinel bases closing the last LZMS slots.
const (
	lzmsOffsetFinal = 0x7fffffff
	lzmsLengthFinal = 0x400108ab
)

// newDeltaRuns builds a table from run lengths of power-of-two deltas. The
// first base is 1.
func newDeltaRuns(runs []uint8, n int, final uint32) *Table {
	base := make([]uint32, 0, n+1)
	b, delta := uint32(0), uint32(1)
	for _, r := range runs {
		for ; r > 0; r-- {
			b += delta
			base = append(base, b)
		}
		delta <<= 1
	}
	if len(base) != n {
		panic("slot: run lengths don't match slot count")
	}
	base = append(base, final)
	return newTable(base)
}

var (
	lzxOnce  sync.Once
	lzxTable *Table

	lzmsOnce        sync.Once
	lzmsOffsetTable *Table
	lzmsLengthTable *Table
)

// LZX returns the table of the LZX position slots. Note that the LZX codec
// adds 2 to the offset before searching the slot; the slots 0, 1 and 2
// select the recent offsets.
func LZX() *Table {
	lzxOnce.Do(func() { lzxTable = newLZX(LZXPositionSlots) })
	return lzxTable
}

func initLZMS() {
	lzmsOffsetTable = newDeltaRuns(lzmsOffsetDeltaRuns,
		LZMSOffsetSlots, lzmsOffsetFinal)
	lzmsLengthTable = newDeltaRuns(lzmsLengthDeltaRuns,
		LZMSLengthSlots, lzmsLengthFinal)
}

// LZMSOffsets returns the slot table for LZMS match offsets.
func LZMSOffsets() *Table {
	lzmsOnce.Do(initLZMS)
	return lzmsOffsetTable
}

// LZMSLengths returns the slot table for LZMS match lengths.
func LZMSLengths() *Table {
	lzmsOnce.Do(initLZMS)
	return lzmsLengthTable
}

// LZMSNumOffsetSlots returns the number of offset slots used for a chunk
// with the given uncompressed size. At least one slot is always used.
func LZMSNumOffsetSlots(size int) int {
	if size < 2 {
		return 1
	}
	t := LZMSOffsets()
	v := uint32(size - 1)
	if v > t.Max() {
		return t.Len()
	}
	return t.Slot(v) + 1
}
