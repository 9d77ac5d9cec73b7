// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzx

import (
	"io"

	"github.com/ulikunitz/wimlz/internal/xlog"
)

// debug stores a reference to a logger. It may contain nil for no output.
var debug xlog.Logger

// debugOn uses the log.Logger type to write information on the given
// writer. If w is nil no output will be written.
func debugOn(w io.Writer) { debug = xlog.New(w, "lzx: ") }

// debugOff switches the debugging output off.
func debugOff() { debug = nil }
