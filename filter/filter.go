// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

// Package filter provides the reversible x86 preprocessing filters of the
// LZX and LZMS formats. The filters convert the relative target addresses
// of call and similar instructions into absolute addresses before
// compression, so that repeated calls of the same function produce the
// same bytes. The decompressor restores the original bytes by undoing the
// translation.
//
// Filters work in place and keep no state between calls to Apply.
// Applying a filter forward twice without undoing it in between doesn't
// restore the original data.
package filter

import (
	"fmt"
	"math"

	"github.com/ulikunitz/wimlz/internal/errs"
)

// Filter is the interface of the x86 filters. Apply translates the data in
// place. The undo flag selects the direction; a forward application
// followed by an undo application reproduces the original data.
type Filter interface {
	Apply(data []byte, undo bool) error
}

// verifySize checks that the positions in data can be represented by
// int32 values.
func verifySize(data []byte) error {
	if int64(len(data)) >= math.MaxInt32 {
		return fmt.Errorf("filter: buffer size %d too large: %w",
			len(data), errs.ErrFilterState)
	}
	return nil
}
