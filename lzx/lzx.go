// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

// Package lzx implements the LZX compression format as used for chunks of
// WIM archives. The window size is fixed to 32768 bytes, which is also
// the maximum size of a chunk.
//
// A compressed chunk consists of blocks. Verbatim and aligned blocks code
// literals and matches with canonical Huffman codes whose code lengths
// are transmitted at the start of the block; uncompressed blocks store the
// data directly. Before compression the call targets of 0xe8 bytes are
// translated as described in package filter.
package lzx

import "github.com/ulikunitz/wimlz/slot"

// WindowSize is the size of the LZX window and the maximum chunk size.
const WindowSize = 32768

// Block types
const (
	blockVerbatim     = 1
	blockAligned      = 2
	blockUncompressed = 3
)

const (
	defaultBlockSize = 32768

	numChars       = 256
	numLenHeaders  = 8
	numPrimaryLens = numLenHeaders - 1
	minMatchLen    = 2
	maxMatchLen    = 257

	numRecentOffsets = 3
	offsetAdjust     = numRecentOffsets - 1
	maxOffset        = WindowSize - 3

	numPositionSlots = slot.LZXPositionSlots
	mainNumSyms      = numChars + numPositionSlots*numLenHeaders
	lenNumSyms       = maxMatchLen - minMatchLen - numPrimaryLens + 1
	preNumSyms       = 20
	alignedNumSyms   = 8

	preElemBits     = 4
	alignedElemBits = 3
	numAlignedBits  = 3

	mainTableBits    = 11
	lenTableBits     = 10
	preTableBits     = 6
	alignedTableBits = 7

	maxMainLen    = 16
	maxLenLen     = 16
	maxPreLen     = 15
	maxAlignedLen = 7
)
