// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzms

import (
	"fmt"

	"github.com/ulikunitz/wimlz/huffman"
	"github.com/ulikunitz/wimlz/slot"
)

// adaptiveCode is a Huffman code that is rebuilt from the frequencies of
// the coded symbols after every rebuildFreq symbols. Encoder and decoder
// compute the same codes.
type adaptiveCode struct {
	numSyms     int
	rebuildFreq int
	tableBits   int
	count       int

	freqs []uint32
	// lens has at least two entries, so that BuildLengths can complete
	// a code with a single symbol.
	lens  []uint8
	codes []uint32
	// table is only built for decoding.
	table  huffman.Table
	decode bool
}

// init sets all frequencies to 1 and builds the initial code.
func (c *adaptiveCode) init(numSyms, rebuildFreq, tableBits int,
	decode bool) error {

	c.numSyms = numSyms
	c.rebuildFreq = rebuildFreq
	c.tableBits = tableBits
	c.decode = decode
	n := numSyms
	if n < 2 {
		n = 2
	}
	if cap(c.freqs) >= n {
		c.freqs = c.freqs[:numSyms]
		c.lens = c.lens[:n]
		c.codes = c.codes[:n]
	} else {
		c.freqs = make([]uint32, numSyms, n)
		c.lens = make([]uint8, n)
		c.codes = make([]uint32, n)
	}
	for i := range c.freqs {
		c.freqs[i] = 1
	}
	return c.rebuild()
}

// rebuild computes a new code and halves the frequencies.
func (c *adaptiveCode) rebuild() error {
	huffman.BuildLengths(c.lens, c.freqs, maxCodeLen)
	lens := c.lens[:c.numSyms]
	if c.decode {
		if err := c.table.Build(lens, c.tableBits, maxCodeLen); err != nil {
			return fmt.Errorf("lzms: rebuild of code with %d symbols: %w",
				c.numSyms, err)
		}
	} else {
		if err := huffman.Codewords(c.codes[:c.numSyms], lens); err != nil {
			return fmt.Errorf("lzms: rebuild of code with %d symbols: %w",
				c.numSyms, err)
		}
	}
	for i, f := range c.freqs {
		c.freqs[i] = f>>1 + 1
	}
	c.count = 0
	return nil
}

// update counts the symbol and rebuilds the code if required.
func (c *adaptiveCode) update(sym int) error {
	c.freqs[sym]++
	c.count++
	if c.count < c.rebuildFreq {
		return nil
	}
	return c.rebuild()
}

// readSym decodes a symbol from the bit stream.
func (c *adaptiveCode) readSym(r *bitReader) (int, error) {
	sym, err := c.table.Decode(r)
	if err != nil {
		return 0, err
	}
	if err = c.update(sym); err != nil {
		return 0, err
	}
	return sym, nil
}

// writeSym encodes the symbol, which must be less than numSyms.
func (c *adaptiveCode) writeSym(w *bitWriter, sym int) error {
	w.WriteBits(c.codes[sym], uint(c.lens[sym]))
	return c.update(sym)
}

// readValue reads a slot with the code and the extra bits of the slot.
func (c *adaptiveCode) readValue(r *bitReader, t *slot.Table) (uint32,
	error) {

	s, err := c.readSym(r)
	if err != nil {
		return 0, err
	}
	extra, err := r.ReadBits(t.ExtraBits(s))
	if err != nil {
		return 0, err
	}
	return t.Base(s) + extra, nil
}

// writeValue writes the slot and the extra bits for v. The slot must be
// covered by the code.
func (c *adaptiveCode) writeValue(w *bitWriter, t *slot.Table,
	v uint32) error {

	s, extra, ok := t.Encode(v)
	if !ok || s >= c.numSyms {
		return fmt.Errorf("lzms: value %d not encodable with %d slots",
			v, c.numSyms)
	}
	if err := c.writeSym(w, s); err != nil {
		return err
	}
	w.WriteBits(extra, t.ExtraBits(s))
	return nil
}
