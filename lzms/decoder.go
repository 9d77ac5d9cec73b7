// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzms

import (
	"fmt"
	"math"

	"github.com/ulikunitz/wimlz/filter"
	"github.com/ulikunitz/wimlz/internal/errs"
	"github.com/ulikunitz/wimlz/internal/xlog"
	"github.com/ulikunitz/wimlz/rc"
	"github.com/ulikunitz/wimlz/slot"
)

// Decoder decompresses LZMS chunks. A decoder can be reused for multiple
// chunks but must not be used concurrently.
type Decoder struct {
	cfg Config
	s   state
	rd  rc.Decoder
	br  bitReader
	x86 *filter.X86
}

// NewDecoder creates a new decoder. Only the fields DisableX86 and
// MaxOutput of the configuration are used.
func NewDecoder(cfg Config) (*Decoder, error) {
	if err := cfg.Verify(); err != nil {
		return nil, err
	}
	if cfg.MaxOutput == 0 || cfg.MaxOutput > MaxChunkSize {
		cfg.MaxOutput = MaxChunkSize
	}
	d := &Decoder{cfg: cfg}
	if !cfg.DisableX86 {
		var err error
		if d.x86, err = filter.NewX86(filter.X86Params{}); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Decompress decodes the compressed chunk src into dst. The length of dst
// must be the uncompressed size of the chunk. The compressed chunk must
// have an even length of at least 4 bytes.
func (d *Decoder) Decompress(dst, src []byte) error {
	if len(src) < minChunkInputBytes || len(src)%2 != 0 {
		return fmt.Errorf("lzms: invalid compressed size %d: %w",
			len(src), errs.ErrMalformed)
	}
	if len(dst) > d.cfg.MaxOutput {
		return fmt.Errorf("lzms: chunk size %d exceeds limit %d: %w",
			len(dst), d.cfg.MaxOutput, errs.ErrOutputOverflow)
	}
	if len(dst) == 0 {
		return nil
	}
	if err := d.rd.Init(src); err != nil {
		return err
	}
	d.br.init(src)
	if err := d.s.init(len(dst), true); err != nil {
		return err
	}

	pos := 0
	for pos < len(dst) {
		n, err := d.decodeItem(dst, pos)
		if err != nil {
			return err
		}
		pos += n
		d.s.advance()
	}
	xlog.Printf(debug, "decoded %d bytes from %d; repeats lz %v delta %v",
		len(dst), len(src), d.s.lzRepeats, d.s.deltaRepeats)

	if d.x86 != nil {
		if err := d.x86.Apply(dst, true); err != nil {
			return err
		}
	}
	return nil
}

// decodeItem decodes a single item at position pos and returns the
// number of bytes written.
func (d *Decoder) decodeItem(dst []byte, pos int) (n int, err error) {
	s := &d.s
	bit, err := d.rd.DecodeBit(&s.main)
	if err != nil {
		return 0, err
	}
	if bit == 0 {
		sym, err := s.literal.readSym(&d.br)
		if err != nil {
			return 0, err
		}
		dst[pos] = byte(sym)
		return 1, nil
	}
	if bit, err = d.rd.DecodeBit(&s.match); err != nil {
		return 0, err
	}
	if bit == 0 {
		return d.decodeLZMatch(dst, pos)
	}
	return d.decodeDeltaMatch(dst, pos)
}

// repIndex reads the index of a repeat match from the repeat models. At
// most numRepModels bits are read; the first zero bit terminates the
// index.
func (d *Decoder) repIndex(models *[numRepModels]rc.Model) (int, error) {
	i := 0
	for ; i < numRepModels; i++ {
		bit, err := d.rd.DecodeBit(&models[i])
		if err != nil {
			return 0, err
		}
		if bit == 0 {
			break
		}
	}
	return i, nil
}

func (d *Decoder) readLength() (int, error) {
	v, err := d.s.length.readValue(&d.br, slot.LZMSLengths())
	return int(v), err
}

// checkLength verifies that a match of length n fits into dst.
func checkLength(dst []byte, pos, n int) error {
	if n > len(dst)-pos {
		return fmt.Errorf(
			"lzms: match length %d exceeds remaining output %d: %w",
			n, len(dst)-pos, errs.ErrMalformed)
	}
	return nil
}

func (d *Decoder) decodeLZMatch(dst []byte, pos int) (n int, err error) {
	s := &d.s
	bit, err := d.rd.DecodeBit(&s.lz)
	if err != nil {
		return 0, err
	}
	var off uint32
	if bit == 0 {
		off, err = s.lzOffset.readValue(&d.br, slot.LZMSOffsets())
		if err != nil {
			return 0, err
		}
	} else {
		i, err := d.repIndex(&s.lzRep)
		if err != nil {
			return 0, err
		}
		off = uint32(s.lzRecent.Take(i))
		s.lzRepeats[i]++
	}
	if n, err = d.readLength(); err != nil {
		return 0, err
	}
	s.lzRecent.Stage(uint64(off))

	if err = checkLength(dst, pos, n); err != nil {
		return 0, err
	}
	if off == 0 || int64(off) > int64(pos) {
		return 0, fmt.Errorf(
			"lzms: match offset %d invalid at position %d: %w",
			off, pos, errs.ErrMalformed)
	}
	o := int(off)
	for i := pos; i < pos+n; i++ {
		dst[i] = dst[i-o]
	}
	return n, nil
}

func (d *Decoder) decodeDeltaMatch(dst []byte, pos int) (n int, err error) {
	s := &d.s
	bit, err := d.rd.DecodeBit(&s.delta)
	if err != nil {
		return 0, err
	}
	var power, raw uint32
	if bit == 0 {
		p, err := s.deltaPower.readSym(&d.br)
		if err != nil {
			return 0, err
		}
		power = uint32(p)
		raw, err = s.deltaOffset.readValue(&d.br, slot.LZMSOffsets())
		if err != nil {
			return 0, err
		}
	} else {
		i, err := d.repIndex(&s.deltaRep)
		if err != nil {
			return 0, err
		}
		power, raw = splitDeltaPair(s.deltaRecent.Take(i))
		s.deltaRepeats[i]++
	}
	if n, err = d.readLength(); err != nil {
		return 0, err
	}
	s.deltaRecent.Stage(deltaPair(power, raw))

	if err = checkLength(dst, pos, n); err != nil {
		return 0, err
	}
	if power >= numDeltaPowerSyms || raw == 0 ||
		raw > math.MaxUint32>>power {
		return 0, fmt.Errorf(
			"lzms: delta match power %d offset %d invalid: %w",
			power, raw, errs.ErrMalformed)
	}
	span := int64(1) << power
	off := int64(raw) << power
	if off+span > int64(pos) {
		return 0, fmt.Errorf(
			"lzms: delta match offset %d span %d invalid at position %d: %w",
			off, span, pos, errs.ErrMalformed)
	}
	deltaCopy(dst[:pos+n], pos, int(off), int(span))
	return n, nil
}

// deltaCopy computes the bytes starting at pos up to the end of p from
// the bytes before them.
func deltaCopy(p []byte, pos, off, span int) {
	for i := pos; i < len(p); i++ {
		p[i] = p[i-span] + p[i-off] - p[i-off-span]
	}
}
