// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzx

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ulikunitz/wimlz/filter"
	"github.com/ulikunitz/wimlz/huffman"
	"github.com/ulikunitz/wimlz/internal/errs"
	"github.com/ulikunitz/wimlz/internal/xlog"
	"github.com/ulikunitz/wimlz/lru"
	"github.com/ulikunitz/wimlz/lzparse"
	"github.com/ulikunitz/wimlz/slot"
)

// item is a literal or a match prepared for coding. Literals have a main
// symbol below numChars.
type item struct {
	mainSym uint16
	// lenSym is the length symbol or -1
	lenSym int16
	nbits  uint8
	extra  uint32
	// n is the number of bytes covered by the item
	n uint16
}

// codes holds the code lengths and codewords of a block.
type codes struct {
	mainLens    [mainNumSyms]uint8
	lenLens     [lenNumSyms]uint8
	alignedLens [alignedNumSyms]uint8

	mainCodes    [mainNumSyms]uint32
	lenCodes     [lenNumSyms]uint32
	alignedCodes [alignedNumSyms]uint32
}

// Encoder compresses chunks into the LZX format. It must not be used
// concurrently.
type Encoder struct {
	cfg   Config
	blk   lzparse.Block
	items []item
	buf   []byte
	w     bitWriter

	// previous code lengths for the delta coding
	prevMain [mainNumSyms]uint8
	prevLen  [lenNumSyms]uint8

	// blockSize and blockTypes allow tests to force other block
	// layouts. Block k uses blockTypes[k%len(blockTypes)].
	blockSize  int
	blockTypes []int
}

// NewEncoder creates a new encoder.
func NewEncoder(cfg Config) (*Encoder, error) {
	cfg.SetDefaults()
	if err := cfg.Verify(); err != nil {
		return nil, err
	}
	return &Encoder{cfg: cfg, blockSize: defaultBlockSize}, nil
}

// Compress compresses src, which must not be longer than WindowSize, and
// returns the compressed chunk. The returned slice is owned by the
// encoder and valid until the next call.
func (e *Encoder) Compress(src []byte) ([]byte, error) {
	if len(src) > WindowSize {
		return nil, fmt.Errorf("lzx: chunk size %d exceeds window size %d",
			len(src), WindowSize)
	}
	e.buf = append(e.buf[:0], src...)
	if !e.cfg.DisableE8 {
		var f filter.E8
		if err := f.Apply(e.buf, false); err != nil {
			return nil, err
		}
	}
	if err := e.cfg.Finder.Parse(&e.blk, e.buf); err != nil {
		return nil, err
	}
	if err := e.parse(); err != nil {
		return nil, err
	}

	e.w.reset()
	e.prevMain = [mainNumSyms]uint8{}
	e.prevLen = [lenNumSyms]uint8{}
	recent := lru.Queue{}
	recent.Reset()
	var c codes
	pos, start := 0, 0
	for k := 0; start < len(e.items); k++ {
		// collect the items of the next block
		end, n := start, 0
		for end < len(e.items) && n+int(e.items[end].n) <= e.blockSize {
			n += int(e.items[end].n)
			end++
		}
		if end == start {
			return nil, errors.New("lzx: block size too small")
		}
		typ := 0
		if len(e.blockTypes) > 0 {
			typ = e.blockTypes[k%len(e.blockTypes)]
		}
		e.writeBlock(&c, typ, e.items[start:end], e.buf[pos:pos+n],
			&recent)
		pos += n
		start = end
	}
	e.w.flush()
	if e.cfg.MaxOutput > 0 && len(e.w.buf) > e.cfg.MaxOutput {
		return nil, fmt.Errorf("lzx: compressed size %d exceeds %d: %w",
			len(e.w.buf), e.cfg.MaxOutput, errs.ErrBufferTooSmall)
	}
	xlog.Printf(debug, "compressed %d bytes into %d", len(src),
		len(e.w.buf))
	return e.w.buf, nil
}

// parse converts the block of the finder into items. The recent offsets
// queue is simulated to find repeat matches.
func (e *Encoder) parse() error {
	slots := slot.LZX()
	e.items = e.items[:0]
	var recent lru.Queue
	recent.Reset()
	lits := e.blk.Literals
	pos := 0
	addLits := func(p []byte) {
		for _, c := range p {
			e.items = append(e.items,
				item{mainSym: uint16(c), lenSym: -1, n: 1})
		}
		pos += len(p)
	}
	for _, s := range e.blk.Seqs {
		addLits(lits[:s.LitLen])
		lits = lits[s.LitLen:]
		if s.Offset > maxOffset {
			return fmt.Errorf("lzx: offset %d too large", s.Offset)
		}
		m := s.MatchLen
		if m < minMatchLen {
			addLits(e.buf[pos : pos+int(m)])
			continue
		}
		pos += int(m)
		for m > 0 {
			n := lzparse.Split(m, minMatchLen, maxMatchLen)
			m -= n
			it := item{lenSym: -1, n: uint16(n)}
			var sl int
			if i := recent.Index(s.Offset); i >= 0 {
				recent.Swap(i)
				sl = i
			} else {
				var extra uint32
				var ok bool
				sl, extra, ok = slots.Encode(s.Offset + offsetAdjust)
				if !ok {
					return fmt.Errorf("lzx: offset %d not encodable",
						s.Offset)
				}
				it.extra = extra
				it.nbits = uint8(slots.ExtraBits(sl))
				recent.Push(s.Offset)
			}
			h := n - minMatchLen
			if h >= numPrimaryLens {
				it.lenSym = int16(h - numPrimaryLens)
				h = numPrimaryLens
			}
			it.mainSym = uint16(numChars + sl*numLenHeaders + int(h))
			e.items = append(e.items, it)
		}
	}
	addLits(lits)
	return nil
}

// blockCosts computes the number of bits for the items in a verbatim and
// an aligned block, not counting the code lengths of the main and length
// trees.
func blockCosts(c *codes, items []item) (verbatim, aligned int) {
	for _, it := range items {
		n := int(c.mainLens[it.mainSym])
		if it.lenSym >= 0 {
			n += int(c.lenLens[it.lenSym])
		}
		verbatim += n + int(it.nbits)
		if it.nbits >= numAlignedBits {
			aligned += n + int(it.nbits) - numAlignedBits +
				int(c.alignedLens[it.extra&(alignedNumSyms-1)])
		} else {
			aligned += n + int(it.nbits)
		}
	}
	aligned += alignedNumSyms * alignedElemBits
	return verbatim, aligned
}

// writeBlock writes the items as a single block. The data is required for
// uncompressed blocks. If forceType is zero the block type is selected by
// cost.
func (e *Encoder) writeBlock(c *codes, forceType int, items []item,
	data []byte, recent *lru.Queue) {

	var mainFreqs [mainNumSyms]uint32
	var lenFreqs [lenNumSyms]uint32
	var alignedFreqs [alignedNumSyms]uint32
	for _, it := range items {
		mainFreqs[it.mainSym]++
		if it.lenSym >= 0 {
			lenFreqs[it.lenSym]++
		}
		if it.nbits >= numAlignedBits {
			alignedFreqs[it.extra&(alignedNumSyms-1)]++
		}
	}
	huffman.BuildLengths(c.mainLens[:], mainFreqs[:], maxMainLen)
	huffman.BuildLengths(c.lenLens[:], lenFreqs[:], maxLenLen)
	huffman.BuildLengths(c.alignedLens[:], alignedFreqs[:], maxAlignedLen)
	mustCodewords(c.mainCodes[:], c.mainLens[:])
	mustCodewords(c.lenCodes[:], c.lenLens[:])
	mustCodewords(c.alignedCodes[:], c.alignedLens[:])

	verbatim, aligned := blockCosts(c, items)
	typ := blockVerbatim
	cost := verbatim
	if aligned < verbatim {
		typ, cost = blockAligned, aligned
	}
	// The code lengths need roughly 4 bits per symbol; an
	// uncompressed block needs the header and padding.
	if 8*(len(data)+12+2) < cost+4*(mainNumSyms+lenNumSyms)/2 {
		typ = blockUncompressed
	}
	if forceType != 0 {
		typ = forceType
	}
	xlog.Printf(debug, "block type %d: %d items, %d bytes", typ,
		len(items), len(data))

	w := &e.w
	w.WriteBits(uint32(typ), 3)
	if len(data) == defaultBlockSize {
		w.WriteBits(1, 1)
	} else {
		w.WriteBits(0, 1)
		w.WriteBits(uint32(len(data)), 16)
	}

	if typ == blockUncompressed {
		w.align()
		// The decoder loads the recent offsets from the header and
		// continues with them after the block.
		for _, it := range items {
			updateRecent(recent, it)
		}
		var p [4 * numRecentOffsets]byte
		r := recent.Offsets()
		for i := range r {
			binary.LittleEndian.PutUint32(p[4*i:], r[i])
		}
		w.writeBytes(p[:])
		w.writeBytes(data)
		if len(data)&1 != 0 {
			w.writeBytes([]byte{0})
		}
		return
	}

	if typ == blockAligned {
		for _, l := range c.alignedLens {
			w.WriteBits(uint32(l), alignedElemBits)
		}
	}
	writeLens(w, c.mainLens[:numChars], e.prevMain[:numChars])
	writeLens(w, c.mainLens[numChars:], e.prevMain[numChars:])
	writeLens(w, c.lenLens[:], e.prevLen[:])
	e.prevMain = c.mainLens
	e.prevLen = c.lenLens

	for _, it := range items {
		w.WriteBits(c.mainCodes[it.mainSym], uint(c.mainLens[it.mainSym]))
		if it.lenSym >= 0 {
			w.WriteBits(c.lenCodes[it.lenSym], uint(c.lenLens[it.lenSym]))
		}
		if typ == blockAligned && it.nbits >= numAlignedBits {
			w.WriteBits(it.extra>>numAlignedBits,
				uint(it.nbits)-numAlignedBits)
			a := it.extra & (alignedNumSyms - 1)
			w.WriteBits(c.alignedCodes[a], uint(c.alignedLens[a]))
		} else if it.nbits > 0 {
			w.WriteBits(it.extra, uint(it.nbits))
		}
		updateRecent(recent, it)
	}
}

// updateRecent applies the queue update of a match item.
func updateRecent(recent *lru.Queue, it item) {
	if it.mainSym < numChars {
		return
	}
	s := int(it.mainSym-numChars) / numLenHeaders
	if s < numRecentOffsets {
		recent.Swap(s)
		return
	}
	recent.Push(slot.LZX().Base(s) + it.extra - offsetAdjust)
}

func mustCodewords(codes []uint32, lens []uint8) {
	if err := huffman.Codewords(codes, lens); err != nil {
		panic(err)
	}
}
