// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzms

import (
	"fmt"

	"github.com/ulikunitz/wimlz/internal/errs"
	"github.com/ulikunitz/wimlz/slot"
)

// ItemKind identifies the type of an item.
type ItemKind uint8

// Item kinds
const (
	Literals ItemKind = iota
	LZMatch
	DeltaMatch
)

func (k ItemKind) String() string {
	switch k {
	case Literals:
		return "Literals"
	case LZMatch:
		return "LZMatch"
	case DeltaMatch:
		return "DeltaMatch"
	}
	return fmt.Sprintf("ItemKind(%d)", uint8(k))
}

// Item describes a run of literals, an LZ match or a delta match. The
// encoder uses repeat matches automatically if the offset of a match, or
// the power and offset of a delta match, is available in the respective
// recent offsets queue.
type Item struct {
	Kind ItemKind
	// Len is the number of literals or the length of the match.
	Len uint32
	// Offset is the distance of an LZ match or the raw offset of a
	// delta match. The actual distance of a delta match is
	// Offset<<Power.
	Offset uint32
	// Power selects the span 1<<Power of a delta match.
	Power uint32
}

// VerifyItems checks that the items reproduce data exactly and can be
// encoded.
func VerifyItems(items []Item, data []byte) error {
	lengths := slot.LZMSLengths()
	maxOffset := uint64(slot.LZMSOffsets().Max())
	pos := 0
	for i, it := range items {
		if it.Len == 0 {
			return fmt.Errorf("lzms: item %d has length zero: %w",
				i, errs.ErrMalformed)
		}
		if int64(it.Len) > int64(len(data)-pos) {
			return fmt.Errorf("lzms: item %d exceeds data: %w",
				i, errs.ErrMalformed)
		}
		n := int(it.Len)
		switch it.Kind {
		case Literals:
		case LZMatch:
			if it.Len > lengths.Max() {
				return fmt.Errorf("lzms: item %d: length %d too large: %w",
					i, it.Len, errs.ErrMalformed)
			}
			if it.Offset == 0 || int64(it.Offset) > int64(pos) {
				return fmt.Errorf(
					"lzms: item %d: offset %d invalid at %d: %w",
					i, it.Offset, pos, errs.ErrMalformed)
			}
			o := int(it.Offset)
			for k := pos; k < pos+n; k++ {
				if data[k] != data[k-o] {
					return fmt.Errorf(
						"lzms: item %d: match mismatch at %d: %w",
						i, k, errs.ErrMalformed)
				}
			}
		case DeltaMatch:
			if it.Len > lengths.Max() {
				return fmt.Errorf("lzms: item %d: length %d too large: %w",
					i, it.Len, errs.ErrMalformed)
			}
			if it.Power >= numDeltaPowerSyms || it.Offset == 0 ||
				uint64(it.Offset) > maxOffset {
				return fmt.Errorf(
					"lzms: item %d: delta power %d offset %d invalid: %w",
					i, it.Power, it.Offset, errs.ErrMalformed)
			}
			span := int64(1) << it.Power
			off := int64(it.Offset) << it.Power
			if off+span > int64(pos) {
				return fmt.Errorf(
					"lzms: item %d: delta distance %d invalid at %d: %w",
					i, off, pos, errs.ErrMalformed)
			}
			o, s := int(off), int(span)
			for k := pos; k < pos+n; k++ {
				if data[k] != data[k-s]+data[k-o]-data[k-o-s] {
					return fmt.Errorf(
						"lzms: item %d: delta mismatch at %d: %w",
						i, k, errs.ErrMalformed)
				}
			}
		default:
			return fmt.Errorf("lzms: item %d: invalid kind %v: %w",
				i, it.Kind, errs.ErrMalformed)
		}
		pos += n
	}
	if pos != len(data) {
		return fmt.Errorf("lzms: items cover %d of %d bytes: %w",
			pos, len(data), errs.ErrMalformed)
	}
	return nil
}

// Items returns the items of the last compression with Compress. The
// slice is owned by the encoder.
func (e *Encoder) Items() []Item {
	return e.items
}
