// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

// Package huffman builds canonical Huffman codes and decodes them using
// lookup tables.
//
// A decode table consists of a primary table indexed by the first
// tableBits bits of the input. Codewords longer than tableBits are
// resolved by a second lookup in a secondary table stored in the same
// slice after the primary table. Decoding requires at most two lookups.
package huffman

import (
	"fmt"

	"github.com/ulikunitz/wimlz/internal/errs"
)

// BitReader provides the bits of a stream most-significant bit first.
type BitReader interface {
	// PeekBits returns the next n bits without consuming them. Bits
	// beyond the end of the stream are zero.
	PeekBits(n uint) uint32
	// SkipBits consumes n bits. An error is returned if the stream
	// doesn't contain n more bits.
	SkipBits(n uint) error
}

// Entries of the table. A leaf entry stores the symbol in the high 16 bits
// and the codeword length in the low bits. A link entry has the link flag
// set and stores the start of the secondary table in the high bits and its
// number of index bits in the low bits. A zero entry marks a bit pattern
// that is not assigned to any codeword.
const (
	linkFlag = 1 << 8
	lenMask  = 0xff
)

// Table is a decode table for a canonical Huffman code.
type Table struct {
	entries   []uint32
	tableBits uint
	maxLen    uint
	numSyms   int
	// empty is set for codes without any codeword.
	empty bool
}

// Build creates the decode table for the given code lengths. The
// primary table will be indexed by tableBits bits; it is reduced to
// maxLen if required. The lengths must describe a complete prefix code;
// as exceptions a code without any codeword and a code with a single
// codeword of length 1 are accepted. Decoding the unassigned patterns of
// such codes returns an error.
func (t *Table) Build(lens []uint8, tableBits, maxLen int) error {
	if !(1 <= maxLen && maxLen <= MaxCodeLen) {
		return fmt.Errorf("huffman: invalid maximum length %d", maxLen)
	}
	if tableBits < 1 {
		return fmt.Errorf("huffman: invalid table bits %d", tableBits)
	}
	if tableBits > maxLen {
		tableBits = maxLen
	}
	var count [MaxCodeLen + 1]int
	for sym, l := range lens {
		if int(l) > maxLen {
			return fmt.Errorf(
				"huffman: symbol %d has length %d exceeding %d: %w",
				sym, l, maxLen, errs.ErrMalformed)
		}
		count[l]++
	}
	used := len(lens) - count[0]
	left := 1
	for l := 1; l <= maxLen; l++ {
		left = left<<1 - count[l]
		if left < 0 {
			return fmt.Errorf("huffman: code over-subscribed: %w",
				errs.ErrMalformed)
		}
	}

	t.tableBits = uint(tableBits)
	t.maxLen = uint(maxLen)
	t.numSyms = len(lens)
	t.empty = used == 0
	n := 1 << uint(tableBits)
	if cap(t.entries) >= n {
		t.entries = t.entries[:n]
	} else {
		t.entries = make([]uint32, n)
	}
	for i := range t.entries {
		t.entries[i] = 0
	}

	if left != 0 {
		switch {
		case used == 0:
			return nil
		case used == 1 && count[1] == 1:
		default:
			return fmt.Errorf("huffman: code incomplete: %w",
				errs.ErrMalformed)
		}
	}

	codes := make([]uint32, len(lens))
	if err := Codewords(codes, lens); err != nil {
		return err
	}

	// Compute the size of the secondary tables from the longest
	// codeword sharing the primary index.
	var subBits []uint8
	if maxLen > tableBits {
		subBits = make([]uint8, n)
		for sym, l := range lens {
			if int(l) <= tableBits {
				continue
			}
			p := codes[sym] >> (uint(l) - t.tableBits)
			if b := l - uint8(tableBits); b > subBits[p] {
				subBits[p] = b
			}
		}
		for p, b := range subBits {
			if b == 0 {
				continue
			}
			start := len(t.entries)
			if start >= 1<<16 {
				panic("huffman: table too large")
			}
			t.entries = append(t.entries, make([]uint32, 1<<b)...)
			t.entries[p] = uint32(start)<<16 | linkFlag | uint32(b)
		}
	}

	for sym, l := range lens {
		if l == 0 {
			continue
		}
		leaf := uint32(sym)<<16 | uint32(l)
		code := codes[sym]
		if int(l) <= tableBits {
			k := t.tableBits - uint(l)
			start := code << k
			for i := uint32(0); i < 1<<k; i++ {
				t.entries[start+i] = leaf
			}
			continue
		}
		rest := uint(l) - t.tableBits
		link := t.entries[code>>rest]
		b := uint(link & lenMask)
		base := link >> 16
		k := b - rest
		start := base + (code&(1<<rest-1))<<k
		for i := uint32(0); i < 1<<k; i++ {
			t.entries[start+i] = leaf
		}
	}
	return nil
}

// Lookup resolves the bit pattern, which must contain MaxLen bits, to the
// symbol and the length of its codeword. The value ok is false if the
// pattern is not assigned.
func (t *Table) Lookup(bits uint32) (sym int, n uint, ok bool) {
	e := t.entries[bits>>(t.maxLen-t.tableBits)]
	if e&linkFlag != 0 {
		b := uint(e & lenMask)
		idx := bits >> (t.maxLen - t.tableBits - b) & (1<<b - 1)
		e = t.entries[e>>16+idx]
	}
	n = uint(e & lenMask)
	if n == 0 {
		return 0, 0, false
	}
	return int(e >> 16), n, true
}

// Decode reads a single symbol from the bit reader.
func (t *Table) Decode(r BitReader) (sym int, err error) {
	bits := r.PeekBits(t.maxLen)
	sym, n, ok := t.Lookup(bits)
	if !ok {
		if t.empty {
			return 0, fmt.Errorf("huffman: decoding from empty code: %w",
				errs.ErrMalformed)
		}
		return 0, fmt.Errorf("huffman: unassigned bit pattern %#x: %w",
			bits, errs.ErrMalformed)
	}
	if err = r.SkipBits(n); err != nil {
		return 0, err
	}
	return sym, nil
}

// MaxLen returns the number of bits required by Lookup.
func (t *Table) MaxLen() uint { return t.maxLen }

// NumSyms returns the number of symbols of the code.
func (t *Table) NumSyms() int { return t.numSyms }
