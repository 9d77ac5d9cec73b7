// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package wimlz

import (
	"testing"

	"github.com/ulikunitz/wimlz/lzms"
	"github.com/ulikunitz/wimlz/lzx"
)

func TestFormatString(t *testing.T) {
	tests := []struct {
		f    Format
		want string
	}{
		{LZX, "LZX"},
		{LZMS, "LZMS"},
		{Format(1), "Format(1)"},
	}
	for _, tc := range tests {
		if s := tc.f.String(); s != tc.want {
			t.Errorf("Format(%d).String() = %q; want %q",
				int(tc.f), s, tc.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"lzx", "LZX", "Lzx"} {
		f, err := ParseFormat(s)
		if err != nil {
			t.Fatalf("ParseFormat(%q) error %s", s, err)
		}
		if f != LZX {
			t.Fatalf("ParseFormat(%q) returned %v; want %v", s, f, LZX)
		}
	}
	f, err := ParseFormat("lzms")
	if err != nil {
		t.Fatalf("ParseFormat(%q) error %s", "lzms", err)
	}
	if f != LZMS {
		t.Fatalf("ParseFormat(%q) returned %v; want %v", "lzms", f, LZMS)
	}
	for _, s := range []string{"", "xpress", "lzx "} {
		if _, err = ParseFormat(s); err == nil {
			t.Errorf("ParseFormat(%q) returned no error", s)
		}
	}
}

func TestMaxChunkSize(t *testing.T) {
	if n := LZX.MaxChunkSize(); n != lzx.WindowSize {
		t.Errorf("LZX.MaxChunkSize() = %d; want %d", n, lzx.WindowSize)
	}
	if n := LZMS.MaxChunkSize(); n != lzms.MaxChunkSize {
		t.Errorf("LZMS.MaxChunkSize() = %d; want %d", n,
			lzms.MaxChunkSize)
	}
	if n := Format(7).MaxChunkSize(); n != 0 {
		t.Errorf("Format(7).MaxChunkSize() = %d; want 0", n)
	}
}
