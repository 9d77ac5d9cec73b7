// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

/*
Package xlog provides a Logger interface and helpers that make debug output
optional.

The codec packages keep a package-level Logger variable that is nil by
default. The helpers of this package don't do anything for a nil Logger, so
the debug statements can stay in the hot paths without formatting their
arguments. Tests switch the output on by assigning a *log.Logger.
*/
package xlog

import (
	"fmt"
	"io"
	"log"
)

// Logger is the interface required for debug output. The *log.Logger type
// supports it.
type Logger interface {
	Output(calldepth int, s string) error
}

// New returns a logger writing to w using the given prefix. If w is nil the
// function returns nil and all output will be suppressed.
func New(w io.Writer, prefix string) Logger {
	if w == nil {
		return nil
	}
	return log.New(w, prefix, 0)
}

// Printf prints the arguments using the format string. If the logger
// argument is nil nothing will be printed.
func Printf(l Logger, format string, v ...interface{}) {
	if l != nil {
		l.Output(2, fmt.Sprintf(format, v...))
	}
}
