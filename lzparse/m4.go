// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzparse

import (
	"errors"

	"github.com/andybalholm/brotli/matchfinder"
)

// M4Config configures the M4 finder. Zero values select the defaults of
// the matchfinder package.
type M4Config struct {
	// MaxOffset is the largest offset of a match. The M4 match finder
	// doesn't support offsets above 65535.
	MaxOffset   int
	MinLength   int
	HashLen     int
	TableBits   int
	ChainLength int
}

// Verify checks the configuration.
func (cfg *M4Config) Verify() error {
	if cfg == nil {
		return errors.New("lzparse: M4Config pointer must not be nil")
	}
	if !(1 <= cfg.MaxOffset && cfg.MaxOffset <= 65535) {
		return errors.New("lzparse: M4 MaxOffset must be in [1,65535]")
	}
	if cfg.MinLength < 0 || cfg.HashLen < 0 || cfg.TableBits < 0 ||
		cfg.ChainLength < 0 {
		return errors.New("lzparse: M4Config has negative values")
	}
	return nil
}

// M4 is a finder using the hash chain match finder M4 of the brotli
// package.
type M4 struct {
	mf      matchfinder.M4
	matches []matchfinder.Match
}

// NewM4 creates a new finder.
func NewM4(cfg M4Config) (*M4, error) {
	if err := cfg.Verify(); err != nil {
		return nil, err
	}
	f := &M4{mf: matchfinder.M4{
		MaxDistance: cfg.MaxOffset,
		MinLength:   cfg.MinLength,
		HashLen:     cfg.HashLen,
		TableBits:   cfg.TableBits,
		ChainLength: cfg.ChainLength,
	}}
	return f, nil
}

// Parse computes the sequences for data. The match finder is reset before
// each call, so matches never refer to earlier buffers.
func (f *M4) Parse(blk *Block, data []byte) error {
	blk.Reset()
	if len(data) == 0 {
		return nil
	}
	f.mf.Reset()
	f.matches = f.mf.FindMatches(f.matches[:0], data)
	pos, litRun := 0, 0
	for _, m := range f.matches {
		blk.Literals = append(blk.Literals, data[pos:pos+m.Unmatched]...)
		pos += m.Unmatched
		litRun += m.Unmatched
		if m.Length == 0 {
			continue
		}
		blk.Seqs = append(blk.Seqs, Seq{
			LitLen:   uint32(litRun),
			MatchLen: uint32(m.Length),
			Offset:   uint32(m.Distance),
		})
		litRun = 0
		pos += m.Length
	}
	if pos != len(data) {
		return errors.New("lzparse: M4 matches don't cover the data")
	}
	return nil
}
