// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

// Package errs defines the error values shared by the codec packages.
// Codec packages wrap them with a prefix naming the package, so callers
// should compare using errors.Is.
package errs

import "errors"

var (
	// ErrMalformed indicates an invalid block type, an inconsistent
	// prefix code, an over-long codeword or a decoded offset or length
	// outside of the permitted range.
	ErrMalformed = errors.New("malformed bitstream")

	// ErrTruncated indicates that the decoder requires more input than
	// is available.
	ErrTruncated = errors.New("truncated input")

	// ErrOutputOverflow indicates that the decoded data would exceed the
	// size declared by the caller.
	ErrOutputOverflow = errors.New("output overflow")

	// ErrFilterState reports the violation of an internal invariant of
	// the x86 filters.
	ErrFilterState = errors.New("invalid filter state")

	// ErrBufferTooSmall is returned by encoders if the compressed data
	// doesn't fit into the limit given by the caller.
	ErrBufferTooSmall = errors.New("buffer too small")
)
