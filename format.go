// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package wimlz

import (
	"fmt"
	"strings"

	"github.com/ulikunitz/wimlz/lzms"
	"github.com/ulikunitz/wimlz/lzx"
)

// Format identifies a compression format. The values are the
// compression type numbers used in WIM headers.
type Format int

// Supported formats
const (
	LZX  Format = 2
	LZMS Format = 3
)

// String returns the name of the format.
func (f Format) String() string {
	switch f {
	case LZX:
		return "LZX"
	case LZMS:
		return "LZMS"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat converts a format name into a format. The case of the name
// is ignored.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "lzx":
		return LZX, nil
	case "lzms":
		return LZMS, nil
	}
	return 0, fmt.Errorf("wimlz: unknown format %q", s)
}

// MaxChunkSize returns the largest chunk the format supports. It returns
// zero for unknown formats.
func (f Format) MaxChunkSize() int {
	switch f {
	case LZX:
		return lzx.WindowSize
	case LZMS:
		return lzms.MaxChunkSize
	}
	return 0
}

// verify checks whether the format is supported.
func (f Format) verify() error {
	if f != LZX && f != LZMS {
		return fmt.Errorf("wimlz: unsupported format %v", f)
	}
	return nil
}
