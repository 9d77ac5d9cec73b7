// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzx

import (
	"encoding/binary"
	"fmt"

	"github.com/ulikunitz/wimlz/filter"
	"github.com/ulikunitz/wimlz/huffman"
	"github.com/ulikunitz/wimlz/internal/errs"
	"github.com/ulikunitz/wimlz/internal/xlog"
	"github.com/ulikunitz/wimlz/lru"
	"github.com/ulikunitz/wimlz/slot"
)

// Decoder decompresses LZX chunks. A decoder can be reused for multiple
// chunks but must not be used concurrently.
type Decoder struct {
	cfg Config

	mainLens    [mainNumSyms]uint8
	lenLens     [lenNumSyms]uint8
	alignedLens [alignedNumSyms]uint8

	mainTable    huffman.Table
	lenTable     huffman.Table
	preTable     huffman.Table
	alignedTable huffman.Table

	r      bitReader
	recent lru.Queue
}

// NewDecoder creates a new decoder. Only the fields DisableE8 and
// MaxOutput of the configuration are used.
func NewDecoder(cfg Config) (*Decoder, error) {
	if err := cfg.Verify(); err != nil {
		return nil, err
	}
	if cfg.MaxOutput == 0 || cfg.MaxOutput > WindowSize {
		cfg.MaxOutput = WindowSize
	}
	return &Decoder{cfg: cfg}, nil
}

// Decompress decodes the compressed chunk src into dst. The length of dst
// must be the uncompressed size of the chunk.
func (d *Decoder) Decompress(dst, src []byte) error {
	if len(dst) > d.cfg.MaxOutput {
		return fmt.Errorf("lzx: chunk size %d exceeds limit %d: %w",
			len(dst), d.cfg.MaxOutput, errs.ErrOutputOverflow)
	}
	d.mainLens = [mainNumSyms]uint8{}
	d.lenLens = [lenNumSyms]uint8{}
	d.recent.Reset()
	d.r.init(src)

	pos := 0
	for pos < len(dst) {
		typ, size, err := d.readBlockHeader()
		if err != nil {
			return err
		}
		if size < 1 || size > len(dst)-pos {
			return fmt.Errorf(
				"lzx: block size %d exceeds remaining output %d: %w",
				size, len(dst)-pos, errs.ErrMalformed)
		}
		xlog.Printf(debug, "block type %d size %d at %d", typ, size, pos)
		if err = d.readCodes(typ); err != nil {
			return err
		}
		switch typ {
		case blockUncompressed:
			pos, err = d.readUncompressed(dst, pos, size)
		default:
			pos, err = d.decodeBlock(dst, pos, size, typ)
		}
		if err != nil {
			return err
		}
	}
	if !d.cfg.DisableE8 {
		var f filter.E8
		if err := f.Apply(dst, true); err != nil {
			return err
		}
	}
	return nil
}

// readBlockHeader reads the type and the size of a block.
func (d *Decoder) readBlockHeader() (typ int, size int, err error) {
	v, err := d.r.ReadBits(3)
	if err != nil {
		return 0, 0, err
	}
	typ = int(v)
	switch typ {
	case blockVerbatim, blockAligned, blockUncompressed:
	default:
		return 0, 0, fmt.Errorf("lzx: invalid block type %d: %w",
			typ, errs.ErrMalformed)
	}
	if v, err = d.r.ReadBits(1); err != nil {
		return 0, 0, err
	}
	if v == 1 {
		return typ, defaultBlockSize, nil
	}
	if v, err = d.r.ReadBits(16); err != nil {
		return 0, 0, err
	}
	return typ, int(v), nil
}

// readCodes reads the code lengths of verbatim and aligned blocks and
// builds the decode tables. For uncompressed blocks the recent offsets
// are read.
func (d *Decoder) readCodes(typ int) error {
	var err error
	switch typ {
	case blockAligned:
		for i := range d.alignedLens {
			v, err := d.r.ReadBits(alignedElemBits)
			if err != nil {
				return err
			}
			d.alignedLens[i] = uint8(v)
		}
		err = d.alignedTable.Build(d.alignedLens[:], alignedTableBits,
			maxAlignedLen)
		if err != nil {
			return fmt.Errorf("lzx: aligned code: %w", err)
		}
		fallthrough
	case blockVerbatim:
		if err = readLens(&d.r, &d.preTable, d.mainLens[:numChars]); err != nil {
			return err
		}
		if err = readLens(&d.r, &d.preTable, d.mainLens[numChars:]); err != nil {
			return err
		}
		err = d.mainTable.Build(d.mainLens[:], mainTableBits, maxMainLen)
		if err != nil {
			return fmt.Errorf("lzx: main code: %w", err)
		}
		if err = readLens(&d.r, &d.preTable, d.lenLens[:]); err != nil {
			return err
		}
		err = d.lenTable.Build(d.lenLens[:], lenTableBits, maxLenLen)
		if err != nil {
			return fmt.Errorf("lzx: length code: %w", err)
		}
	case blockUncompressed:
		if err = d.r.align(); err != nil {
			return err
		}
		p, err := d.r.readBytes(4 * numRecentOffsets)
		if err != nil {
			return err
		}
		d.recent.Reset()
		for i := numRecentOffsets - 1; i >= 0; i-- {
			d.recent.Push(binary.LittleEndian.Uint32(p[4*i:]))
		}
	}
	return nil
}

// readUncompressed copies the data of an uncompressed block.
func (d *Decoder) readUncompressed(dst []byte, pos, size int) (int, error) {
	p, err := d.r.readBytes(size)
	if err != nil {
		return pos, err
	}
	pos += copy(dst[pos:], p)
	if size&1 != 0 {
		// The pad byte restores the unit alignment.
		if err = d.r.SkipBits(8); err != nil {
			return pos, err
		}
	}
	return pos, nil
}

// decodeBlock decodes the literals and matches of a verbatim or aligned
// block. A match may extend beyond the end of the block.
func (d *Decoder) decodeBlock(dst []byte, pos, size, typ int) (int, error) {
	slots := slot.LZX()
	end := pos + size
	for pos < end {
		sym, err := d.mainTable.Decode(&d.r)
		if err != nil {
			return pos, err
		}
		if sym < numChars {
			dst[pos] = byte(sym)
			pos++
			continue
		}
		sym -= numChars
		n := sym&(numLenHeaders-1) + minMatchLen
		if n-minMatchLen == numPrimaryLens {
			k, err := d.lenTable.Decode(&d.r)
			if err != nil {
				return pos, err
			}
			n += k
		}
		s := sym / numLenHeaders
		var off uint32
		if s < numRecentOffsets {
			off = d.recent.Swap(s)
		} else {
			nbits := slots.ExtraBits(s)
			var extra uint32
			if typ == blockAligned && nbits >= numAlignedBits {
				v, err := d.r.ReadBits(nbits - numAlignedBits)
				if err != nil {
					return pos, err
				}
				a, err := d.alignedTable.Decode(&d.r)
				if err != nil {
					return pos, err
				}
				extra = v<<numAlignedBits | uint32(a)
			} else {
				if extra, err = d.r.ReadBits(nbits); err != nil {
					return pos, err
				}
			}
			off = slots.Base(s) + extra - offsetAdjust
			d.recent.Push(off)
		}
		if n > len(dst)-pos {
			return pos, fmt.Errorf(
				"lzx: match length %d exceeds remaining output %d: %w",
				n, len(dst)-pos, errs.ErrMalformed)
		}
		if off == 0 || int64(off) > int64(pos) {
			return pos, fmt.Errorf(
				"lzx: match offset %d invalid at position %d: %w",
				off, pos, errs.ErrMalformed)
		}
		for i := pos; i < pos+n; i++ {
			dst[i] = dst[i-int(off)]
		}
		pos += n
	}
	return pos, nil
}
