// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzx

import (
	"errors"

	"github.com/ulikunitz/wimlz/lzparse"
)

// Config defines the parameters for the LZX encoder and decoder.
type Config struct {
	// Finder provides the matches for the encoder. The offsets of the
	// matches must not exceed MaxOffset. If nil an LZ finder will be
	// used.
	Finder lzparse.Finder

	// DisableE8 switches the 0xe8 call translation off. The WIM format
	// always uses the translation; encoder and decoder must use the
	// same setting.
	DisableE8 bool

	// MaxOutput limits the size of the output. For the decoder it is
	// the maximum size of the decompressed chunk, for the encoder the
	// maximum size of the compressed chunk. Zero selects WindowSize for
	// the decoder and no limit for the encoder.
	MaxOutput int
}

// MaxOffset is the largest match offset supported by the format.
const MaxOffset = maxOffset

// SetDefaults sets a default finder.
func (cfg *Config) SetDefaults() {
	if cfg.Finder == nil {
		f, err := lzparse.NewLZ(lzparse.LZConfig{MaxOffset: maxOffset})
		if err != nil {
			panic(err)
		}
		cfg.Finder = f
	}
}

// Verify checks the configuration.
func (cfg *Config) Verify() error {
	if cfg == nil {
		return errors.New("lzx: Config pointer must not be nil")
	}
	if cfg.MaxOutput < 0 {
		return errors.New("lzx: MaxOutput must not be negative")
	}
	return nil
}
