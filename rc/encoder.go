// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package rc

import (
	"errors"
	"fmt"

	"github.com/ulikunitz/wimlz/internal/errs"
)

// Encoder is the range encoder for 16-bit little-endian units. The low
// value can overflow, therefore we need uint64. The cache value and the
// cache size handle the carry into units already produced.
type Encoder struct {
	buf       []byte
	limit     int
	low       uint64
	nrange    uint32
	cache     uint16
	cacheSize int
	// dummy is set until the first unit has been shifted out. The
	// first unit is always zero and is not written.
	dummy bool
}

// Init prepares the encoder for a new stream. A positive limit restricts
// the number of bytes the encoder may produce.
func (e *Encoder) Init(limit int) error {
	if limit < 0 {
		return errors.New("rc: limit must not be negative")
	}
	*e = Encoder{
		buf:       e.buf[:0],
		limit:     limit,
		nrange:    0xffffffff,
		cacheSize: 1,
		dummy:     true,
	}
	return nil
}

// Len returns the number of bytes written so far.
func (e *Encoder) Len() int { return len(e.buf) }

// Bytes returns the units produced. The slice is valid until the next
// call to Init.
func (e *Encoder) Bytes() []byte { return e.buf }

// writeUnit appends a 16-bit unit to the output.
func (e *Encoder) writeUnit(u uint16) error {
	if e.dummy {
		e.dummy = false
		return nil
	}
	if e.limit > 0 && len(e.buf)+2 > e.limit {
		return fmt.Errorf("rc: output limit %d reached: %w",
			e.limit, errs.ErrBufferTooSmall)
	}
	e.buf = append(e.buf, byte(u), byte(u>>8))
	return nil
}

// shiftLow shifts 16 bits out of the low value. The top unit is kept in
// the cache until it is known whether a carry will modify it.
func (e *Encoder) shiftLow() error {
	if uint32(e.low) < 0xffff0000 || e.low>>32 != 0 {
		tmp := e.cache
		for {
			if err := e.writeUnit(tmp + uint16(e.low>>32)); err != nil {
				return err
			}
			tmp = 0xffff
			e.cacheSize--
			if e.cacheSize <= 0 {
				if e.cacheSize < 0 {
					panic("rc: negative cache size")
				}
				break
			}
		}
		e.cache = uint16(e.low >> 16)
	}
	e.cacheSize++
	e.low = (e.low & 0xffff) << 16
	return nil
}

// Encode encodes the least-significant bit of bit using the probability
// entry and updates the entry. The range is normalized before the bit is
// encoded.
func (e *Encoder) Encode(bit uint32, p *Prob) error {
	if e.nrange <= 0xffff {
		e.nrange <<= 16
		if err := e.shiftLow(); err != nil {
			return err
		}
	}
	bit &= 1
	bound := p.bound(e.nrange)
	if bit == 0 {
		e.nrange = bound
	} else {
		e.low += uint64(bound)
		e.nrange -= bound
	}
	p.Update(bit)
	return nil
}

// EncodeBit encodes the bit with the entry selected by the model state
// and advances the model.
func (e *Encoder) EncodeBit(m *Model, bit uint32) error {
	bit &= 1
	if err := e.Encode(bit, m.prob()); err != nil {
		return err
	}
	m.state = (m.state<<1 | bit) & uint32(len(m.probs)-1)
	return nil
}

// Flush writes the complete low value to the output.
func (e *Encoder) Flush() error {
	for i := 0; i < 4; i++ {
		if err := e.shiftLow(); err != nil {
			return err
		}
	}
	return nil
}
