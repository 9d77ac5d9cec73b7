// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

// Package lzparse converts a buffer into a sequence of literals and
// matches using an external match finder. The encoders of the LZX and
// LZMS formats serialize the resulting blocks.
//
// Two finders are provided. LZ uses the sequencers of
// github.com/ulikunitz/lz, M4 uses the match finder of
// github.com/andybalholm/brotli/matchfinder.
package lzparse

import (
	"errors"
	"fmt"
)

// Seq describes a number of literals followed by a match. The offset is
// the distance of the match source from the current position; it is
// always at least 1. A sequence with MatchLen zero contains only
// literals.
type Seq struct {
	LitLen   uint32
	MatchLen uint32
	Offset   uint32
}

// Block holds the sequences for a buffer. Literals contains the literals
// of all sequences followed by trailing literals not covered by any
// sequence.
type Block struct {
	Seqs     []Seq
	Literals []byte
}

// Reset empties the block while keeping the allocated slices.
func (b *Block) Reset() {
	b.Seqs = b.Seqs[:0]
	b.Literals = b.Literals[:0]
}

// Len returns the number of bytes described by the block.
func (b *Block) Len() int {
	n := len(b.Literals)
	for _, s := range b.Seqs {
		n += int(s.MatchLen)
	}
	return n
}

// Finder parses data into a block. Matches never refer to data before the
// start of data and their offsets never exceed the maximum offset the
// finder has been configured for.
type Finder interface {
	Parse(blk *Block, data []byte) error
}

// Verify checks that the block describes data exactly.
func Verify(blk *Block, data []byte) error {
	pos, lit := 0, 0
	for i, s := range blk.Seqs {
		if lit+int(s.LitLen) > len(blk.Literals) {
			return fmt.Errorf("lzparse: seq %d: literals exhausted", i)
		}
		for k := 0; k < int(s.LitLen); k++ {
			if pos >= len(data) || blk.Literals[lit] != data[pos] {
				return fmt.Errorf(
					"lzparse: seq %d: literal mismatch at %d",
					i, pos)
			}
			lit++
			pos++
		}
		if s.MatchLen == 0 {
			continue
		}
		if s.Offset == 0 || int(s.Offset) > pos {
			return fmt.Errorf("lzparse: seq %d: invalid offset %d at %d",
				i, s.Offset, pos)
		}
		for k := 0; k < int(s.MatchLen); k++ {
			if pos >= len(data) ||
				data[pos] != data[pos-int(s.Offset)] {
				return fmt.Errorf(
					"lzparse: seq %d: match mismatch at %d",
					i, pos)
			}
			pos++
		}
	}
	for ; lit < len(blk.Literals); lit++ {
		if pos >= len(data) || blk.Literals[lit] != data[pos] {
			return fmt.Errorf("lzparse: trailing literal mismatch at %d",
				pos)
		}
		pos++
	}
	if pos != len(data) {
		return errors.New("lzparse: block shorter than data")
	}
	return nil
}

// Split returns the length of the first piece of a match of length m that
// must be split into matches with lengths between min and max. The rest
// of the match is never shorter than min, provided m >= min.
func Split(m, min, max uint32) uint32 {
	switch {
	case m <= max:
		return m
	case m >= max+min:
		return max
	default:
		return m - min
	}
}
