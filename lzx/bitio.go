// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzx

import (
	"encoding/binary"
	"fmt"

	"github.com/ulikunitz/wimlz/internal/errs"
)

// bitReader reads bits from a sequence of 16-bit little-endian units.
// The bits of a unit are read from the most-significant bit.
type bitReader struct {
	src []byte
	// pos is the position of the next bit
	pos uint
	// end is the number of bits in src
	end uint
}

func (r *bitReader) init(src []byte) {
	*r = bitReader{src: src, end: 8 * uint(len(src)&^1)}
}

// unit returns the unit at index i or zero if it is outside of the input.
func (r *bitReader) unit(i uint) uint64 {
	k := 2 * i
	if k+2 > uint(len(r.src)) {
		return 0
	}
	return uint64(binary.LittleEndian.Uint16(r.src[k:]))
}

// PeekBits returns the next n bits, n <= 32, without consuming them. Bits
// after the end of the input are zero.
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
	if r.pos+n > r.end {
		return fmt.Errorf("lzx: bit stream exhausted: %w",
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

// align moves the position to the next unit. If the position is already
// at the start of a unit, a complete unit is skipped.
func (r *bitReader) align() error {
	return r.SkipBits(16 - r.pos&15)
}

// readBytes reads n bytes directly from the input. The position must be
// aligned to a unit.
func (r *bitReader) readBytes(n int) ([]byte, error) {
	if r.pos&15 != 0 {
		panic("lzx: readBytes called on unaligned position")
	}
	k := r.pos >> 3
	if k+uint(n) > uint(len(r.src)) {
		return nil, fmt.Errorf("lzx: uncompressed block truncated: %w",
			errs.ErrTruncated)
	}
	r.pos += 8 * uint(n)
	return r.src[k : k+uint(n)], nil
}

// bitWriter writes bits into 16-bit little-endian units. The first bit
// becomes the most-significant bit of a unit.
type bitWriter struct {
	buf      []byte
	bitbuf   uint64
	bitcount uint
}

func (w *bitWriter) reset() {
	*w = bitWriter{buf: w.buf[:0]}
}

// WriteBits writes the n low bits of v, n <= 32.
func (w *bitWriter) WriteBits(v uint32, n uint) {
	w.bitbuf = w.bitbuf<<n | uint64(v)&(1<<n-1)
	w.bitcount += n
	for w.bitcount >= 16 {
		w.bitcount -= 16
		u := uint16(w.bitbuf >> w.bitcount)
		w.buf = append(w.buf, byte(u), byte(u>>8))
	}
}

// align pads the stream with zero bits to the next unit. If the stream is
// already aligned a complete zero unit is written.
func (w *bitWriter) align() {
	w.WriteBits(0, 16-w.bitcount)
}

// flush writes the remaining bits padded with zeros.
func (w *bitWriter) flush() {
	if w.bitcount > 0 {
		w.WriteBits(0, 16-w.bitcount)
	}
}

// writeBytes appends bytes directly. The stream must be aligned.
func (w *bitWriter) writeBytes(p []byte) {
	if w.bitcount != 0 {
		panic("lzx: writeBytes called on unaligned stream")
	}
	w.buf = append(w.buf, p...)
}

// Len returns the number of bits written.
func (w *bitWriter) Len() int {
	return 8*len(w.buf) + int(w.bitcount)
}
