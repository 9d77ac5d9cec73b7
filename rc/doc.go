// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

// Package rc implements the binary range coder of the LZMS format together
// with its adaptive bit predictors.
//
// The coder works on 16-bit little-endian units. A probability entry
// predicts the next bit from the share of zero bits among the last 64
// bits coded with it. A Model chooses the entry from the bits recently
// coded with the model.
package rc
