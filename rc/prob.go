// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package rc

import "math/bits"

// ProbBits is the number of bits of a probability value used by the range
// coder.
const ProbBits = 6

// ProbMax is the length of the bit history of a probability entry. The
// probability of a zero bit is the number of zeros in the history divided
// by ProbMax.
const ProbMax = 1 << ProbBits

// Initial state of a probability entry. The history contains 48 zeros.
const (
	InitialRecentBits = 0x0000000055555555
	InitialProb       = 48
)

// Prob is an adaptive bit predictor. It stores the last ProbMax bits coded
// with it and the number of zero bits among them.
type Prob struct {
	recent uint64
	zeros  uint32
}

// NewProb returns a probability entry in its initial state.
func NewProb() Prob {
	return Prob{recent: InitialRecentBits, zeros: InitialProb}
}

// ZeroCount returns the number of zero bits in the history. The value is in
// the range [0, ProbMax].
func (p *Prob) ZeroCount() uint32 { return p.zeros }

// Recent returns the bit history. The most recent bit is stored at the
// least-significant position.
func (p *Prob) Recent() uint64 { return p.recent }

// bound computes the split point of the range. Probabilities 0 and ProbMax
// are replaced by 1 and ProbMax-1.
func (p *Prob) bound(r uint32) uint32 {
	q := p.zeros
	if q == 0 {
		q = 1
	} else if q >= ProbMax {
		q = ProbMax - 1
	}
	return (r >> ProbBits) * q
}

// Update adds the bit to the history. The bit falling out of the history
// window adjusts the zero count.
func (p *Prob) Update(bit uint32) {
	p.zeros += uint32(p.recent>>(ProbMax-1)) - bit
	p.recent = p.recent<<1 | uint64(bit)
}

// valid checks that the zero count matches the history.
func (p *Prob) valid() bool {
	return uint32(ProbMax-bits.OnesCount64(p.recent)) == p.zeros
}
