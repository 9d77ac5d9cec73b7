// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzms

import (
	"errors"
	"fmt"

	"github.com/ulikunitz/wimlz/filter"
	"github.com/ulikunitz/wimlz/internal/errs"
	"github.com/ulikunitz/wimlz/internal/xlog"
	"github.com/ulikunitz/wimlz/lzparse"
	"github.com/ulikunitz/wimlz/rc"
	"github.com/ulikunitz/wimlz/slot"
)

// Encoder compresses chunks into the LZMS format. It must not be used
// concurrently.
type Encoder struct {
	cfg   Config
	blk   lzparse.Block
	items []Item
	buf   []byte
	out   []byte
	s     state
	re    rc.Encoder
	bw    bitWriter
	x86   *filter.X86
}

// NewEncoder creates a new encoder.
func NewEncoder(cfg Config) (*Encoder, error) {
	cfg.SetDefaults()
	if err := cfg.Verify(); err != nil {
		return nil, err
	}
	e := &Encoder{cfg: cfg}
	if !cfg.DisableX86 {
		var err error
		if e.x86, err = filter.NewX86(filter.X86Params{}); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Compress compresses src and returns the compressed chunk. The encoder
// parses the data greedily with the finder of the configuration and
// produces literals and LZ matches. The returned slice is owned by the
// encoder and valid until the next call.
func (e *Encoder) Compress(src []byte) ([]byte, error) {
	if len(src) > MaxChunkSize {
		return nil, fmt.Errorf("lzms: chunk size %d exceeds maximum %d",
			len(src), MaxChunkSize)
	}
	e.buf = append(e.buf[:0], src...)
	if e.x86 != nil {
		if err := e.x86.Apply(e.buf, false); err != nil {
			return nil, err
		}
	}
	if err := e.cfg.Finder.Parse(&e.blk, e.buf); err != nil {
		return nil, err
	}
	e.items = appendItems(e.items[:0], &e.blk)
	return e.encode(e.buf, e.items)
}

// CompressItems compresses src using the items given by the caller. The
// items must describe src exactly; they may contain delta matches. The
// function requires an encoder with disabled x86 filter, because the
// filter would modify the data the items refer to.
func (e *Encoder) CompressItems(src []byte, items []Item) ([]byte, error) {
	if e.x86 != nil {
		return nil, errors.New(
			"lzms: CompressItems requires DisableX86")
	}
	if len(src) > MaxChunkSize {
		return nil, fmt.Errorf("lzms: chunk size %d exceeds maximum %d",
			len(src), MaxChunkSize)
	}
	if err := VerifyItems(items, src); err != nil {
		return nil, err
	}
	return e.encode(src, items)
}

// appendItems converts the block into items.
func appendItems(items []Item, blk *lzparse.Block) []Item {
	n := uint32(len(blk.Literals))
	for _, s := range blk.Seqs {
		if s.LitLen > 0 {
			items = append(items, Item{Kind: Literals, Len: s.LitLen})
		}
		if s.MatchLen > 0 {
			items = append(items, Item{
				Kind:   LZMatch,
				Len:    s.MatchLen,
				Offset: s.Offset,
			})
		}
		n -= s.LitLen
	}
	if n > 0 {
		items = append(items, Item{Kind: Literals, Len: n})
	}
	return items
}

// encode writes the items for data. The items must have been verified.
func (e *Encoder) encode(data []byte, items []Item) ([]byte, error) {
	if err := e.re.Init(e.cfg.MaxOutput); err != nil {
		return nil, err
	}
	e.bw.reset()
	if err := e.s.init(len(data), false); err != nil {
		return nil, err
	}

	pos := 0
	var err error
	for _, it := range items {
		switch it.Kind {
		case Literals:
			for _, c := range data[pos : pos+int(it.Len)] {
				if err = e.writeLiteral(c); err != nil {
					return nil, err
				}
			}
		case LZMatch:
			err = e.writeLZMatch(it)
		case DeltaMatch:
			err = e.writeDeltaMatch(it)
		}
		if err != nil {
			return nil, err
		}
		pos += int(it.Len)
		if err = e.checkLimit(); err != nil {
			return nil, err
		}
	}

	if err = e.re.Flush(); err != nil {
		return nil, err
	}
	e.bw.flush()
	if err = e.checkLimit(); err != nil {
		return nil, err
	}
	e.out = append(e.out[:0], e.re.Bytes()...)
	e.out = e.bw.appendTo(e.out)
	xlog.Printf(debug, "compressed %d bytes into %d (rc %d, bits %d)",
		len(data), len(e.out), e.re.Len(), e.bw.Len())
	return e.out, nil
}

// checkLimit reports ErrBufferTooSmall if the output exceeds MaxOutput.
func (e *Encoder) checkLimit() error {
	if e.cfg.MaxOutput == 0 {
		return nil
	}
	if n := e.re.Len() + e.bw.Len(); n > e.cfg.MaxOutput {
		return fmt.Errorf("lzms: compressed size %d exceeds %d: %w",
			n, e.cfg.MaxOutput, errs.ErrBufferTooSmall)
	}
	return nil
}

func (e *Encoder) writeLiteral(c byte) error {
	if err := e.re.EncodeBit(&e.s.main, 0); err != nil {
		return err
	}
	if err := e.s.literal.writeSym(&e.bw, int(c)); err != nil {
		return err
	}
	e.s.advance()
	return nil
}

// writeRepIndex writes the index of a repeat match with the repeat
// models.
func (e *Encoder) writeRepIndex(models *[numRepModels]rc.Model,
	i int) error {

	for k := 0; k < numRepModels; k++ {
		var bit uint32
		if k < i {
			bit = 1
		}
		if err := e.re.EncodeBit(&models[k], bit); err != nil {
			return err
		}
		if bit == 0 {
			break
		}
	}
	return nil
}

func (e *Encoder) writeLZMatch(it Item) error {
	s := &e.s
	if err := e.re.EncodeBit(&s.main, 1); err != nil {
		return err
	}
	if err := e.re.EncodeBit(&s.match, 0); err != nil {
		return err
	}
	if i := s.lzRecent.Index(uint64(it.Offset)); i >= 0 {
		if err := e.re.EncodeBit(&s.lz, 1); err != nil {
			return err
		}
		if err := e.writeRepIndex(&s.lzRep, i); err != nil {
			return err
		}
		s.lzRecent.Take(i)
		s.lzRepeats[i]++
	} else {
		if err := e.re.EncodeBit(&s.lz, 0); err != nil {
			return err
		}
		err := s.lzOffset.writeValue(&e.bw, slot.LZMSOffsets(), it.Offset)
		if err != nil {
			return err
		}
	}
	err := s.length.writeValue(&e.bw, slot.LZMSLengths(), it.Len)
	if err != nil {
		return err
	}
	s.lzRecent.Stage(uint64(it.Offset))
	s.advance()
	return nil
}

func (e *Encoder) writeDeltaMatch(it Item) error {
	s := &e.s
	if err := e.re.EncodeBit(&s.main, 1); err != nil {
		return err
	}
	if err := e.re.EncodeBit(&s.match, 1); err != nil {
		return err
	}
	pair := deltaPair(it.Power, it.Offset)
	if i := s.deltaRecent.Index(pair); i >= 0 {
		if err := e.re.EncodeBit(&s.delta, 1); err != nil {
			return err
		}
		if err := e.writeRepIndex(&s.deltaRep, i); err != nil {
			return err
		}
		s.deltaRecent.Take(i)
		s.deltaRepeats[i]++
	} else {
		if err := e.re.EncodeBit(&s.delta, 0); err != nil {
			return err
		}
		if err := s.deltaPower.writeSym(&e.bw, int(it.Power)); err != nil {
			return err
		}
		err := s.deltaOffset.writeValue(&e.bw, slot.LZMSOffsets(),
			it.Offset)
		if err != nil {
			return err
		}
	}
	err := s.length.writeValue(&e.bw, slot.LZMSLengths(), it.Len)
	if err != nil {
		return err
	}
	s.deltaRecent.Stage(pair)
	s.advance()
	return nil
}
