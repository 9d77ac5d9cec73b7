// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzms

import (
	"errors"

	"github.com/ulikunitz/wimlz/lzparse"
)

// defaultMaxOffset is the window of the default finder.
const defaultMaxOffset = 1 << 20

// Config defines the parameters for the LZMS encoder and decoder.
type Config struct {
	// Finder provides the matches for the encoder. If nil an LZ finder
	// with a window of 1 MiB is used.
	Finder lzparse.Finder

	// DisableX86 switches the x86 filter off. Encoder and decoder must
	// use the same setting.
	DisableX86 bool

	// MaxOutput limits the size of the output. For the decoder it is
	// the maximum size of the decompressed chunk, for the encoder the
	// maximum size of the compressed chunk. Zero selects MaxChunkSize
	// for the decoder and no limit for the encoder.
	MaxOutput int
}

// SetDefaults sets a default finder.
func (cfg *Config) SetDefaults() {
	if cfg.Finder == nil {
		f, err := lzparse.NewLZ(lzparse.LZConfig{
			MaxOffset: defaultMaxOffset})
		if err != nil {
			panic(err)
		}
		cfg.Finder = f
	}
}

// Verify checks the configuration.
func (cfg *Config) Verify() error {
	if cfg == nil {
		return errors.New("lzms: Config pointer must not be nil")
	}
	if cfg.MaxOutput < 0 {
		return errors.New("lzms: MaxOutput must not be negative")
	}
	return nil
}
