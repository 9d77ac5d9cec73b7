// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzms

import (
	"encoding/binary"
	"fmt"

	"github.com/ulikunitz/wimlz/internal/errs"
)

// bitReader reads the bit stream of a chunk. The units are read from the
// end of the chunk towards its start, the bits of a unit from the
// most-significant bit.
type bitReader struct {
	src []byte
	// n is the number of units in src
	n uint
	// pos is the number of bits consumed
	pos uint
}

func (r *bitReader) init(src []byte) {
	*r = bitReader{src: src, n: uint(len(src)) / 2}
}

// unit returns the i-th unit counted from the end of the chunk or zero if
// it is outside of the input.
func (r *bitReader) unit(i uint) uint64 {
	if i >= r.n {
		return 0
	}
	k := 2 * (r.n - 1 - i)
	return uint64(binary.LittleEndian.Uint16(r.src[k:]))
}

// PeekBits returns the next n bits, n <= 32, without consuming them.
func (r *bitReader) PeekBits(n uint) uint32 {
	if n == 0 {
		return 0
	}
	i := r.pos >> 4
	w := r.unit(i)<<32 | r.unit(i+1)<<16 | r.unit(i+2)
	return uint32((w << (16 + r.pos&15)) >> (64 - n))
}

// SkipBits consumes n bits.
func (r *bitReader) SkipBits(n uint) error {
	if r.pos+n > 16*r.n {
		return fmt.Errorf("lzms: bit stream exhausted: %w",
			errs.ErrTruncated)
	}
	r.pos += n
	return nil
}

// ReadBits reads n bits, n <= 32.
func (r *bitReader) ReadBits(n uint) (uint32, error) {
	v := r.PeekBits(n)
	if err := r.SkipBits(n); err != nil {
		return 0, err
	}
	return v, nil
}

// bitWriter collects the units of the bit stream in the order they are
// produced. The chunk stores them in reverse order behind the units of
// the range coder.
type bitWriter struct {
	units    []uint16
	bitbuf   uint64
	bitcount uint
}

func (w *bitWriter) reset() {
	*w = bitWriter{units: w.units[:0]}
}

// WriteBits writes the n low bits of v, n <= 32.
func (w *bitWriter) WriteBits(v uint32, n uint) {
	w.bitbuf = w.bitbuf<<n | uint64(v)&(1<<n-1)
	w.bitcount += n
	for w.bitcount >= 16 {
		w.bitcount -= 16
		w.units = append(w.units, uint16(w.bitbuf>>w.bitcount))
	}
}

// flush writes the remaining bits padded with zeros.
func (w *bitWriter) flush() {
	if w.bitcount > 0 {
		w.WriteBits(0, 16-w.bitcount)
	}
}

// Len returns the number of bytes required by the units including a
// partially filled unit.
func (w *bitWriter) Len() int {
	n := 2 * len(w.units)
	if w.bitcount > 0 {
		n += 2
	}
	return n
}

// appendTo appends the units in reverse order to p.
func (w *bitWriter) appendTo(p []byte) []byte {
	for i := len(w.units) - 1; i >= 0; i-- {
		u := w.units[i]
		p = append(p, byte(u), byte(u>>8))
	}
	return p
}
