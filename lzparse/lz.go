// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzparse

import (
	"errors"
	"fmt"

	"github.com/ulikunitz/lz"
)

// LZConfig configures the LZ finder.
type LZConfig struct {
	// MaxOffset is the largest offset of a match.
	MaxOffset int
	// Seq provides the sequencer. If it is nil a double hash
	// sequencer will be used.
	Seq lz.SeqConfig
}

// SetDefaults sets a default sequencer configuration.
func (cfg *LZConfig) SetDefaults() {
	if cfg.Seq == nil {
		cfg.Seq = &lz.DHSConfig{WindowSize: cfg.MaxOffset}
	}
	cfg.Seq.SetDefaults()
}

// Verify checks the configuration.
func (cfg *LZConfig) Verify() error {
	if cfg == nil {
		return errors.New("lzparse: LZConfig pointer must not be nil")
	}
	if cfg.MaxOffset < 1 {
		return errors.New("lzparse: MaxOffset must be positive")
	}
	if cfg.Seq == nil {
		return errors.New("lzparse: LZConfig field Seq is nil")
	}
	return cfg.Seq.Verify()
}

// LZ is a finder using the sequencers of the github.com/ulikunitz/lz
// module.
type LZ struct {
	cfg     LZConfig
	seq     lz.Sequencer
	bufSize int
	blk     lz.Block
}

// NewLZ creates a new finder.
func NewLZ(cfg LZConfig) (*LZ, error) {
	cfg.SetDefaults()
	if err := cfg.Verify(); err != nil {
		return nil, err
	}
	return &LZ{cfg: cfg}, nil
}

// fixBufConfig computes the buffer configuration for a buffer of size n.
// The window covers the maximum offset and the buffer must hold the
// complete data.
func fixBufConfig(cfg lz.SeqConfig, windowSize, n int) {
	bc := cfg.BufConfig()
	bc.WindowSize = windowSize
	bc.ShrinkSize = bc.WindowSize
	bc.BufferSize = 2 * bc.WindowSize

	const minBufferSize = 256 << 10
	if bc.BufferSize < minBufferSize {
		bc.BufferSize = minBufferSize
	}
	if bc.BufferSize < n {
		bc.BufferSize = n
	}
	if bc.ShrinkSize > bc.BufferSize {
		bc.ShrinkSize = bc.BufferSize
	}
	cfg.SetBufConfig(bc)
}

// sequencer returns a sequencer whose buffer can hold n bytes.
func (f *LZ) sequencer(n int) (lz.Sequencer, error) {
	if f.seq != nil && n <= f.bufSize {
		return f.seq, nil
	}
	fixBufConfig(f.cfg.Seq, f.cfg.MaxOffset, n)
	seq, err := f.cfg.Seq.NewSequencer()
	if err != nil {
		return nil, fmt.Errorf("lzparse: NewSequencer error %w", err)
	}
	f.seq = seq
	f.bufSize = f.cfg.Seq.BufConfig().BufferSize
	return seq, nil
}

// Parse computes the sequences for data.
func (f *LZ) Parse(blk *Block, data []byte) error {
	blk.Reset()
	if len(data) == 0 {
		return nil
	}
	seq, err := f.sequencer(len(data))
	if err != nil {
		return err
	}
	if err = seq.WindowPtr().Reset(data); err != nil {
		return fmt.Errorf("lzparse: window reset error %w", err)
	}
	maxOffset := uint32(f.cfg.MaxOffset)
	// pos is the position in data, litRun counts the literals not yet
	// assigned to a sequence.
	pos, litRun := 0, uint32(0)
	for {
		f.blk.Sequences = f.blk.Sequences[:0]
		f.blk.Literals = f.blk.Literals[:0]
		_, err = seq.Sequence(&f.blk, 0)
		if err != nil {
			if err == lz.ErrEmptyBuffer {
				break
			}
			return fmt.Errorf("lzparse: Sequence error %w", err)
		}
		lits := f.blk.Literals
		for _, s := range f.blk.Sequences {
			blk.Literals = append(blk.Literals, lits[:s.LitLen]...)
			lits = lits[s.LitLen:]
			pos += int(s.LitLen)
			litRun += s.LitLen
			m := int(s.MatchLen)
			if s.Offset > maxOffset || int(s.Offset) > pos {
				// not representable; keep the bytes as literals
				blk.Literals = append(blk.Literals,
					data[pos:pos+m]...)
				pos += m
				litRun += s.MatchLen
				continue
			}
			blk.Seqs = append(blk.Seqs, Seq{
				LitLen:   litRun,
				MatchLen: s.MatchLen,
				Offset:   s.Offset,
			})
			litRun = 0
			pos += m
		}
		blk.Literals = append(blk.Literals, lits...)
		pos += len(lits)
		litRun += uint32(len(lits))
	}
	if pos != len(data) {
		return fmt.Errorf("lzparse: sequencer covered %d of %d bytes",
			pos, len(data))
	}
	return nil
}
