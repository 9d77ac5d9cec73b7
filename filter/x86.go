// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package filter

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ulikunitz/wimlz/internal/errs"
	"github.com/ulikunitz/wimlz/internal/xlog"
)

// Default thresholds of the LZMS x86 filter.
const (
	DefaultMaxTranslationOffset = 1023
	DefaultMaxGoodTargetOffset  = 65535
)

// x86Tail is the number of bytes at the end of the buffer that are never
// inspected.
const x86Tail = 16

// X86Params define the heuristic of the x86 filter. A target is
// translated only if a target with the same low 16 bits has been seen at
// most MaxTranslationOffset bytes before. The offset is halved for call
// instructions. Targets seen again within MaxGoodTargetOffset bytes mark
// the region as x86 code.
type X86Params struct {
	MaxTranslationOffset int
	MaxGoodTargetOffset  int
}

// SetDefaults sets the zero values to the defaults of the LZMS format.
func (p *X86Params) SetDefaults() {
	if p.MaxTranslationOffset == 0 {
		p.MaxTranslationOffset = DefaultMaxTranslationOffset
	}
	if p.MaxGoodTargetOffset == 0 {
		p.MaxGoodTargetOffset = DefaultMaxGoodTargetOffset
	}
}

// Verify checks the parameters for validity.
func (p *X86Params) Verify() error {
	if p == nil {
		return errors.New("filter: X86Params is nil")
	}
	if !(0 < p.MaxTranslationOffset && p.MaxTranslationOffset < 1<<30) {
		return fmt.Errorf("filter: MaxTranslationOffset %d out of range: %w",
			p.MaxTranslationOffset, errs.ErrFilterState)
	}
	if !(0 < p.MaxGoodTargetOffset && p.MaxGoodTargetOffset < 1<<30) {
		return fmt.Errorf("filter: MaxGoodTargetOffset %d out of range: %w",
			p.MaxGoodTargetOffset, errs.ErrFilterState)
	}
	return nil
}

// X86 is the heuristic x86 filter of the LZMS format. It translates the
// targets of rip-relative loads, lock add, indirect calls and calls. The
// history of target usages is reset on every call of Apply.
type X86 struct {
	params X86Params
	// lastUsage records the position at which a target with the given
	// low 16 bits was seen last.
	lastUsage []int32
}

// NewX86 creates a new filter. Zero values in the parameters are replaced
// by the defaults.
func NewX86(p X86Params) (*X86, error) {
	p.SetDefaults()
	if err := p.Verify(); err != nil {
		return nil, err
	}
	return &X86{params: p, lastUsage: make([]int32, 1<<16)}, nil
}

// opcodeLen checks whether data[i:] starts with an instruction that has
// a 32-bit relative operand and returns the length of its opcode. A
// positive skip value tells the caller to ignore that many bytes.
func opcodeLen(data []byte, i int) (n int, skip int) {
	switch data[i] {
	case 0x48:
		switch data[i+1] {
		case 0x8b:
			// load relative
			if b := data[i+2]; b == 0x05 || b == 0x0d {
				return 3, 0
			}
		case 0x8d:
			// load effective address
			if data[i+2]&7 == 5 {
				return 3, 0
			}
		}
	case 0x4c:
		if data[i+1] == 0x8d && data[i+2]&7 == 5 {
			return 3, 0
		}
	case 0xe8:
		// call
		return 1, 0
	case 0xe9:
		// jumps aren't translated
		return 0, 5
	case 0xf0:
		// lock add
		if data[i+1] == 0x83 && data[i+2] == 0x05 {
			return 3, 0
		}
	case 0xff:
		// call indirect
		if data[i+1] == 0x15 {
			return 2, 0
		}
	}
	return 0, 1
}

// Apply translates the instruction targets in data. If undo is set, the
// translation is reversed.
func (f *X86) Apply(data []byte, undo bool) error {
	if err := verifySize(data); err != nil {
		return err
	}
	maxGood := int32(f.params.MaxGoodTargetOffset)
	for k := range f.lastUsage {
		f.lastUsage[k] = -maxGood - 1
	}
	closest := -int32(f.params.MaxTranslationOffset) - 1
	n := 0
	for i := 0; i < len(data)-x86Tail; {
		k, skip := opcodeLen(data, i)
		if k == 0 {
			i += skip
			continue
		}
		maxTrans := int32(f.params.MaxTranslationOffset)
		if k == 1 {
			maxTrans /= 2
		}
		pos := int32(i)
		p := data[i+k : i+k+4]
		translate := pos-closest <= maxTrans
		var target uint16
		if undo {
			if translate {
				binary.LittleEndian.PutUint32(p,
					binary.LittleEndian.Uint32(p)-uint32(pos))
			}
			target = uint16(pos) + binary.LittleEndian.Uint16(p)
		} else {
			target = uint16(pos) + binary.LittleEndian.Uint16(p)
			if translate {
				binary.LittleEndian.PutUint32(p,
					binary.LittleEndian.Uint32(p)+uint32(pos))
			}
		}
		if translate {
			n++
		}
		pos += int32(k) + 3
		if pos-f.lastUsage[target] <= maxGood {
			closest = pos
		}
		f.lastUsage[target] = pos
		i = int(pos) + 1
	}
	xlog.Printf(debug, "x86 filter undo=%t: %d bytes, %d targets translated",
		undo, len(data), n)
	return nil
}
