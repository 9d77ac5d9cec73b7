// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package wimlz

import (
	"errors"
	"fmt"

	"github.com/ulikunitz/wimlz/internal/errs"
	"github.com/ulikunitz/wimlz/lzms"
	"github.com/ulikunitz/wimlz/lzparse"
	"github.com/ulikunitz/wimlz/lzx"
)

// Errors returned by the codecs. They are wrapped and must be checked
// with errors.Is.
var (
	// ErrMalformed indicates invalid compressed data.
	ErrMalformed = errs.ErrMalformed
	// ErrTruncated indicates that the compressed data ended early.
	ErrTruncated = errs.ErrTruncated
	// ErrOutputOverflow indicates a chunk exceeding the output limit.
	ErrOutputOverflow = errs.ErrOutputOverflow
	// ErrFilterState indicates invalid parameters or buffers for the
	// x86 filters.
	ErrFilterState = errs.ErrFilterState
	// ErrBufferTooSmall is returned by the encoders if the compressed
	// chunk would exceed the output limit.
	ErrBufferTooSmall = errs.ErrBufferTooSmall
)

// Config provides the parameters for compression and decompression.
type Config struct {
	// MatchFinder parses the data for the encoders. The offsets must be
	// supported by the format; the LZX format is limited to
	// lzx.MaxOffset. If nil a default finder is used.
	MatchFinder lzparse.Finder

	// DisableX86 switches the translation of x86 call instructions
	// off. It must have the same value for compression and
	// decompression.
	DisableX86 bool

	// MaxOutput limits the size of the output. Zero selects the
	// maximum chunk size of the format for decompression and no limit
	// for compression.
	MaxOutput int
}

// Verify checks the configuration.
func (cfg *Config) Verify() error {
	if cfg == nil {
		return errors.New("wimlz: Config pointer must not be nil")
	}
	if cfg.MaxOutput < 0 {
		return errors.New("wimlz: MaxOutput must not be negative")
	}
	return nil
}

// Compressor compresses chunks. The returned slice is owned by the
// compressor and valid until the next call.
type Compressor interface {
	Compress(src []byte) ([]byte, error)
}

// Decompressor decompresses a chunk into dst, whose length must be the
// uncompressed size.
type Decompressor interface {
	Decompress(dst, src []byte) error
}

// NewCompressor creates a compressor for the format.
func NewCompressor(f Format, cfg Config) (Compressor, error) {
	if err := f.verify(); err != nil {
		return nil, err
	}
	if err := cfg.Verify(); err != nil {
		return nil, err
	}
	var (
		c   Compressor
		err error
	)
	switch f {
	case LZX:
		c, err = lzx.NewEncoder(lzx.Config{
			Finder:    cfg.MatchFinder,
			DisableE8: cfg.DisableX86,
			MaxOutput: cfg.MaxOutput,
		})
	default:
		c, err = lzms.NewEncoder(lzms.Config{
			Finder:     cfg.MatchFinder,
			DisableX86: cfg.DisableX86,
			MaxOutput:  cfg.MaxOutput,
		})
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// NewDecompressor creates a decompressor for the format.
func NewDecompressor(f Format, cfg Config) (Decompressor, error) {
	if err := f.verify(); err != nil {
		return nil, err
	}
	if err := cfg.Verify(); err != nil {
		return nil, err
	}
	var (
		d   Decompressor
		err error
	)
	switch f {
	case LZX:
		d, err = lzx.NewDecoder(lzx.Config{
			DisableE8: cfg.DisableX86,
			MaxOutput: cfg.MaxOutput,
		})
	default:
		d, err = lzms.NewDecoder(lzms.Config{
			DisableX86: cfg.DisableX86,
			MaxOutput:  cfg.MaxOutput,
		})
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Compress compresses a single chunk in the given format. The returned
// slice is owned by the caller.
func Compress(f Format, src []byte, cfg Config) ([]byte, error) {
	c, err := NewCompressor(f, cfg)
	if err != nil {
		return nil, err
	}
	z, err := c.Compress(src)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), z...), nil
}

// Decompress decompresses a single chunk with the uncompressed size
// given by size.
func Decompress(f Format, src []byte, size int, cfg Config) ([]byte,
	error) {

	if size < 0 {
		return nil, fmt.Errorf("wimlz: negative chunk size %d", size)
	}
	d, err := NewDecompressor(f, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.MaxOutput > 0 && size > cfg.MaxOutput {
		return nil, fmt.Errorf("wimlz: chunk size %d exceeds limit %d: %w",
			size, cfg.MaxOutput, ErrOutputOverflow)
	}
	if m := f.MaxChunkSize(); size > m {
		return nil, fmt.Errorf(
			"wimlz: chunk size %d exceeds maximum %d of %v: %w",
			size, m, f, ErrOutputOverflow)
	}
	dst := make([]byte, size)
	if err = d.Decompress(dst, src); err != nil {
		return nil, err
	}
	return dst, nil
}
