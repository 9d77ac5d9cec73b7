// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package filter

import (
	"encoding/binary"
	"fmt"

	"github.com/ulikunitz/wimlz/internal/errs"
	"github.com/ulikunitz/wimlz/internal/xlog"
)

// WIMFileSize is the translation size used by LZX in WIM archives.
const WIMFileSize = 12000000

// e8Tail is the number of bytes at the end of the buffer that are never
// inspected.
const e8Tail = 10

// E8 is the call translation of the LZX format. Each 0xe8 byte is treated
// as call instruction; its 32-bit operand is converted between a relative
// and an absolute target if it lies inside the file of the configured
// size.
type E8 struct {
	// FileSize is the translation size. The zero value selects
	// WIMFileSize.
	FileSize int32
}

// Apply translates the call targets in data. The undo flag reverses the
// translation.
func (f E8) Apply(data []byte, undo bool) error {
	if err := verifySize(data); err != nil {
		return err
	}
	size := f.FileSize
	if size == 0 {
		size = WIMFileSize
	}
	if size < 0 {
		return fmt.Errorf("filter: negative E8 file size %d: %w",
			size, errs.ErrFilterState)
	}
	n := 0
	for i := 0; i < len(data)-e8Tail; i++ {
		if data[i] != 0xe8 {
			continue
		}
		p := data[i+1 : i+5]
		pos := int32(i)
		v := int32(binary.LittleEndian.Uint32(p))
		var w int32
		if undo {
			w = undoE8(v, pos, size)
		} else {
			w = translateE8(v, pos, size)
		}
		if w != v {
			binary.LittleEndian.PutUint32(p, uint32(w))
			n++
		}
		i += 4
	}
	xlog.Printf(debug, "e8 filter undo=%t: %d bytes, %d targets translated",
		undo, len(data), n)
	return nil
}

// translateE8 converts the relative target rel of the call at position
// pos into an absolute target.
func translateE8(rel, pos, size int32) int32 {
	if rel < -pos || rel >= size {
		return rel
	}
	if rel < size-pos {
		return rel + pos
	}
	return rel - size
}

// undoE8 converts the absolute target abs of the call at pos back into a
// relative target.
func undoE8(abs, pos, size int32) int32 {
	if abs >= 0 {
		if abs < size {
			return abs - pos
		}
		return abs
	}
	if abs >= -pos {
		return abs + size
	}
	return abs
}
