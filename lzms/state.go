// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzms

import (
	"github.com/ulikunitz/wimlz/lru"
	"github.com/ulikunitz/wimlz/rc"
	"github.com/ulikunitz/wimlz/slot"
)

// state holds the adaptive state shared by encoder and decoder.
type state struct {
	main     rc.Model
	match    rc.Model
	lz       rc.Model
	lzRep    [numRepModels]rc.Model
	delta    rc.Model
	deltaRep [numRepModels]rc.Model

	literal     adaptiveCode
	lzOffset    adaptiveCode
	length      adaptiveCode
	deltaOffset adaptiveCode
	deltaPower  adaptiveCode

	lzRecent    lru.Delayed
	deltaRecent lru.Delayed

	// repeat matches per queue index
	lzRepeats    [numRecentOffsets]int
	deltaRepeats [numRecentOffsets]int
}

// init prepares the state for a chunk of the given uncompressed size.
// The decode tables are only built if decode is set.
func (s *state) init(size int, decode bool) error {
	s.main.Init(numMainStates)
	s.match.Init(numMatchStates)
	s.lz.Init(numLZStates)
	for i := range s.lzRep {
		s.lzRep[i].Init(numLZRepStates)
	}
	s.delta.Init(numDeltaStates)
	for i := range s.deltaRep {
		s.deltaRep[i].Init(numDeltaRepStates)
	}

	numOffsetSlots := slot.LZMSNumOffsetSlots(size)
	codes := []struct {
		c           *adaptiveCode
		numSyms     int
		rebuildFreq int
		tableBits   int
	}{
		{&s.literal, numLiteralSyms, literalRebuild, literalTableBits},
		{&s.lzOffset, numOffsetSlots, lzOffsetRebuild, lzOffsetTableBits},
		{&s.length, numLengthSyms, lengthRebuild, lengthTableBits},
		{&s.deltaOffset, numOffsetSlots, deltaOffsetRebuild,
			deltaOffsetTableBits},
		{&s.deltaPower, numDeltaPowerSyms, deltaPowerRebuild,
			deltaPowerTableBits},
	}
	for _, x := range codes {
		err := x.c.init(x.numSyms, x.rebuildFreq, x.tableBits, decode)
		if err != nil {
			return err
		}
	}

	s.lzRecent.Reset()
	s.deltaRecent.Reset()
	s.lzRepeats = [numRecentOffsets]int{}
	s.deltaRepeats = [numRecentOffsets]int{}
	return nil
}

// advance updates the recent offset queues after an item.
func (s *state) advance() {
	s.lzRecent.Advance()
	s.deltaRecent.Advance()
}

// deltaPair packs power and raw offset of a delta match into a queue
// entry.
func deltaPair(power, rawOffset uint32) uint64 {
	return uint64(power)<<32 | uint64(rawOffset)
}

// splitDeltaPair returns power and raw offset of a queue entry.
func splitDeltaPair(v uint64) (power, rawOffset uint32) {
	return uint32(v >> 32), uint32(v)
}
