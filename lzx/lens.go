// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzx

import (
	"fmt"

	"github.com/ulikunitz/wimlz/huffman"
	"github.com/ulikunitz/wimlz/internal/errs"
)

// readLens reads code lengths coded with a pretree. The new lengths are
// coded as differences to the old values in lens. A run may extend beyond
// len(lens) into the capacity of the slice; it is cut at the capacity.
func readLens(r *bitReader, pre *huffman.Table, lens []uint8) error {
	var preLens [preNumSyms]uint8
	for i := range preLens {
		v, err := r.ReadBits(preElemBits)
		if err != nil {
			return err
		}
		preLens[i] = uint8(v)
	}
	if err := pre.Build(preLens[:], preTableBits, maxPreLen); err != nil {
		return fmt.Errorf("lzx: pretree: %w", err)
	}

	full := lens[:cap(lens)]
	for i := 0; i < len(lens); {
		sym, err := pre.Decode(r)
		if err != nil {
			return err
		}
		if sym < 17 {
			full[i] = uint8((int(full[i]) - sym + 17) % 17)
			i++
			continue
		}
		var run uint32
		var l uint8
		switch sym {
		case 17:
			if run, err = r.ReadBits(4); err != nil {
				return err
			}
			run += 4
		case 18:
			if run, err = r.ReadBits(5); err != nil {
				return err
			}
			run += 20
		default:
			if run, err = r.ReadBits(1); err != nil {
				return err
			}
			run += 4
			d, err := pre.Decode(r)
			if err != nil {
				return err
			}
			if d > 17 {
				return fmt.Errorf("lzx: invalid pretree delta %d: %w",
					d, errs.ErrMalformed)
			}
			l = uint8((int(full[i]) - d + 17) % 17)
		}
		for ; run > 0 && i < len(full); run-- {
			full[i] = l
			i++
		}
	}
	return nil
}

// preItem is a pretree symbol with its extra bits. For symbol 19 the delta
// symbol is stored in delta.
type preItem struct {
	sym   uint8
	extra uint8
	delta uint8
}

// lenDelta computes the pretree symbol converting prev into l.
func lenDelta(prev, l uint8) uint8 {
	d := int(prev) - int(l)
	if d < 0 {
		d += 17
	}
	return uint8(d)
}

// preItems computes the pretree items for coding lens relative to prev.
// The frequencies of the pretree symbols are added to freqs.
func preItems(items []preItem, lens, prev []uint8, freqs []uint32) []preItem {
	n := len(lens)
	for start := 0; start < n; {
		l := lens[start]
		end := start + 1
		for end < n && lens[end] == l {
			end++
		}
		if end-start >= 4 {
			if l == 0 {
				for end-start >= 20 {
					x := end - start - 20
					if x > 31 {
						x = 31
					}
					freqs[18]++
					items = append(items,
						preItem{sym: 18, extra: uint8(x)})
					start += 20 + x
				}
				if end-start >= 4 {
					x := end - start - 4
					if x > 15 {
						x = 15
					}
					freqs[17]++
					items = append(items,
						preItem{sym: 17, extra: uint8(x)})
					start += 4 + x
				}
			} else {
				for end-start >= 4 {
					x := 0
					if end-start > 4 {
						x = 1
					}
					d := lenDelta(prev[start], l)
					freqs[19]++
					freqs[d]++
					items = append(items, preItem{
						sym: 19, extra: uint8(x), delta: d})
					start += 4 + x
				}
			}
		}
		for ; start < end; start++ {
			d := lenDelta(prev[start], l)
			freqs[d]++
			items = append(items, preItem{sym: d})
		}
	}
	return items
}

// writeLens writes the code lengths lens relative to prev using a pretree.
func writeLens(w *bitWriter, lens, prev []uint8) {
	var freqs [preNumSyms]uint32
	items := preItems(make([]preItem, 0, len(lens)), lens, prev, freqs[:])
	var preLens [preNumSyms]uint8
	huffman.BuildLengths(preLens[:], freqs[:], maxPreLen)
	var codes [preNumSyms]uint32
	if err := huffman.Codewords(codes[:], preLens[:]); err != nil {
		panic(err)
	}
	for _, l := range preLens {
		w.WriteBits(uint32(l), preElemBits)
	}
	for _, it := range items {
		w.WriteBits(codes[it.sym], uint(preLens[it.sym]))
		switch it.sym {
		case 17:
			w.WriteBits(uint32(it.extra), 4)
		case 18:
			w.WriteBits(uint32(it.extra), 5)
		case 19:
			w.WriteBits(uint32(it.extra), 1)
			w.WriteBits(codes[it.delta], uint(preLens[it.delta]))
		}
	}
}
