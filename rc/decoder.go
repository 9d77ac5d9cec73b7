// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package rc

import (
	"encoding/binary"
	"fmt"

	"github.com/ulikunitz/wimlz/internal/errs"
)

// Decoder decodes the bits of a range coded stream of 16-bit
// little-endian units.
type Decoder struct {
	src    []byte
	pos    int
	nrange uint32
	code   uint32
}

// Init initializes the decoder by reading the first two units of src. The
// length of src must be even.
func (d *Decoder) Init(src []byte) error {
	if len(src) < 4 {
		return fmt.Errorf("rc: input has only %d bytes: %w",
			len(src), errs.ErrTruncated)
	}
	if len(src)%2 != 0 {
		return fmt.Errorf("rc: odd input length %d: %w",
			len(src), errs.ErrMalformed)
	}
	*d = Decoder{
		src:    src,
		pos:    4,
		nrange: 0xffffffff,
		code: uint32(binary.LittleEndian.Uint16(src))<<16 |
			uint32(binary.LittleEndian.Uint16(src[2:])),
	}
	return nil
}

// Pos returns the number of bytes consumed.
func (d *Decoder) Pos() int { return d.pos }

// normalize reads the next unit if the range has become too small.
func (d *Decoder) normalize() error {
	if d.nrange > 0xffff {
		return nil
	}
	if d.pos+2 > len(d.src) {
		return fmt.Errorf("rc: range decoder reads past end of input: %w",
			errs.ErrTruncated)
	}
	d.nrange <<= 16
	d.code = d.code<<16 | uint32(binary.LittleEndian.Uint16(d.src[d.pos:]))
	d.pos += 2
	return nil
}

// Decode decodes a single bit using the probability entry and updates the
// entry. The bit is returned at the least-significant position.
func (d *Decoder) Decode(p *Prob) (bit uint32, err error) {
	if err = d.normalize(); err != nil {
		return 0, err
	}
	bound := p.bound(d.nrange)
	if d.code < bound {
		d.nrange = bound
		bit = 0
	} else {
		d.nrange -= bound
		d.code -= bound
		bit = 1
	}
	p.Update(bit)
	return bit, nil
}

// DecodeBit decodes a bit with the entry selected by the model state and
// advances the model.
func (d *Decoder) DecodeBit(m *Model) (bit uint32, err error) {
	if bit, err = d.Decode(m.prob()); err != nil {
		return 0, err
	}
	m.state = (m.state<<1 | bit) & uint32(len(m.probs)-1)
	return bit, nil
}
