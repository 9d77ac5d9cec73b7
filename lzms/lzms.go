// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

// Package lzms implements the LZMS compression format used for solid
// resources of WIM archives.
//
// A compressed chunk consists of 16-bit little-endian units. A range
// coder reads the units from the start of the chunk and provides the
// bits that select the item type. The literals, the offset and length
// slots and the extra bits are stored in a bit stream that is read
// backwards from the end of the chunk. The Huffman codes of the bit
// stream are adaptive; they are rebuilt from symbol frequencies after a
// fixed number of symbols.
//
// The items are literals, LZ matches and delta matches. A delta match of
// length n with power p and offset o computes
//
//	out[i] = out[i-s] + out[i-o] - out[i-o-s]
//
// for every position, where s = 1<<p and o is the raw offset shifted by
// p.
package lzms

import (
	"math"

	"github.com/ulikunitz/wimlz/lru"
)

// MaxChunkSize is the largest chunk supported by encoder and decoder.
const MaxChunkSize = math.MaxInt32 - 1

// Number of states of the range coder models.
const (
	numMainStates      = 16
	numMatchStates     = 32
	numLZStates        = 64
	numLZRepStates     = 64
	numDeltaStates     = 64
	numDeltaRepStates  = 64
	numRecentOffsets   = lru.Len
	numRepModels       = numRecentOffsets - 1
	numLiteralSyms     = 256
	numLengthSyms      = 54
	numDeltaPowerSyms  = 8
	maxCodeLen         = 15
	minChunkInputBytes = 4
)

// Rebuild frequencies of the adaptive Huffman codes.
const (
	literalRebuild     = 1024
	lzOffsetRebuild    = 1024
	lengthRebuild      = 512
	deltaOffsetRebuild = 1024
	deltaPowerRebuild  = 512
)

// Index bits of the primary decode tables.
const (
	literalTableBits     = 10
	lzOffsetTableBits    = 10
	lengthTableBits      = 9
	deltaOffsetTableBits = 10
	deltaPowerTableBits  = 6
)
