// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package slot

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/kr/pretty"
	"github.com/ulikunitz/wimlz/internal/errs"
)

func TestLZXBases(t *testing.T) {
	want := []uint32{
		0, 1, 2, 3, 4, 6, 8, 12, 16, 24, 32, 48, 64, 96, 128, 192,
		256, 384, 512, 768, 1024, 1536, 2048, 3072, 4096, 6144,
		8192, 12288, 16384, 24576, 32768,
	}
	got := LZX().Bases()
	if diff := pretty.Diff(got, want); len(diff) > 0 {
		t.Fatalf("LZX bases differ: %v", diff)
	}
	for i := 0; i < LZX().Len(); i++ {
		n := LZX().ExtraBits(i)
		w := uint(0)
		if i >= 2 {
			w = uint(i/2) - 1
		}
		if n != w {
			t.Errorf("ExtraBits(%d) = %d; want %d", i, n, w)
		}
	}
}

func TestLZMSBases(t *testing.T) {
	off := LZMSOffsets()
	if off.Len() != LZMSOffsetSlots {
		t.Fatalf("offset slots %d; want %d", off.Len(), LZMSOffsetSlots)
	}
	wantOff := []uint32{1, 2, 3, 4, 5, 6, 7, 8, 9, 13, 17, 21, 25, 29,
		33, 37, 41, 45, 53, 61}
	if diff := pretty.Diff(off.Bases()[:20], wantOff); len(diff) > 0 {
		t.Fatalf("offset bases differ: %v", diff)
	}
	if b := off.Base(798); b != 106685605 {
		t.Errorf("offset base 798 is %d; want %d", b, 106685605)
	}
	if n := off.ExtraBits(798); n != 30 {
		t.Errorf("extra bits of last offset slot %d; want 30", n)
	}

	ln := LZMSLengths()
	if ln.Len() != LZMSLengthSlots {
		t.Fatalf("length slots %d; want %d", ln.Len(), LZMSLengthSlots)
	}
	wantLen := []uint32{27, 29, 31, 33, 35, 39, 43, 47, 51, 55, 59, 67,
		75, 83, 91, 107, 123, 139, 155, 171, 203, 235, 299, 427, 683,
		1195, 2219, 67755, 1073809579}
	if diff := pretty.Diff(ln.Bases()[26:], wantLen); len(diff) > 0 {
		t.Fatalf("length bases differ: %v", diff)
	}
	if n := ln.ExtraBits(53); n != 30 {
		t.Errorf("extra bits of last length slot %d; want 30", n)
	}
}

func testRoundTrip(t *testing.T, name string, tab *Table, v uint32) {
	s, extra, ok := tab.Encode(v)
	if !ok {
		t.Fatalf("%s: Encode(%d) failed", name, v)
	}
	if extra>>tab.ExtraBits(s) != 0 {
		t.Fatalf("%s: Encode(%d) extra %d doesn't fit %d bits",
			name, v, extra, tab.ExtraBits(s))
	}
	w, err := tab.Decode(s, extra)
	if err != nil {
		t.Fatalf("%s: Decode(%d, %d) error %s", name, s, extra, err)
	}
	if w != v {
		t.Fatalf("%s: Decode(Encode(%d)) = %d", name, v, w)
	}
}

func TestRoundTrip(t *testing.T) {
	tables := []struct {
		name string
		tab  *Table
	}{
		{"lzx", LZX()},
		{"lzmsOffsets", LZMSOffsets()},
		{"lzmsLengths", LZMSLengths()},
	}
	r := rand.New(rand.NewSource(1))
	for _, c := range tables {
		tab := c.tab
		for i := 0; i <= tab.Len(); i++ {
			b := tab.Base(i)
			if i < tab.Len() {
				testRoundTrip(t, c.name, tab, b)
			}
			if i > 0 {
				testRoundTrip(t, c.name, tab, b-1)
			}
		}
		for i := 0; i < 10000; i++ {
			v := tab.Min() + r.Uint32()%(tab.Max()-tab.Min()+1)
			testRoundTrip(t, c.name, tab, v)
		}
		for v := tab.Min(); v < tab.Min()+4096 && v <= tab.Max(); v++ {
			testRoundTrip(t, c.name, tab, v)
		}
	}
}

func TestBoundary(t *testing.T) {
	tab := LZX()
	for i := 1; i < tab.Len(); i++ {
		b := tab.Base(i)
		if s := tab.Slot(b); s != i {
			t.Errorf("Slot(%d) = %d; want %d", b, s, i)
		}
		if s := tab.Slot(b - 1); s != i-1 {
			t.Errorf("Slot(%d) = %d; want %d", b-1, s, i-1)
		}
	}
	if s := tab.Slot(tab.Max() + 1); s != -1 {
		t.Errorf("Slot(%d) = %d; want -1", tab.Max()+1, s)
	}
	if s := LZMSOffsets().Slot(0); s != -1 {
		t.Errorf("LZMS Slot(0) = %d; want -1", s)
	}
}

func TestDecodeErrors(t *testing.T) {
	tab := LZX()
	if _, err := tab.Decode(tab.Len(), 0); !errors.Is(err, errs.ErrMalformed) {
		t.Errorf("Decode with slot %d: error %v; want ErrMalformed",
			tab.Len(), err)
	}
	if _, err := tab.Decode(4, 2); !errors.Is(err, errs.ErrMalformed) {
		t.Errorf("Decode(4, 2): error %v; want ErrMalformed", err)
	}
}

func TestLZMSNumOffsetSlots(t *testing.T) {
	tests := []struct {
		size int
		n    int
	}{
		{0, 1},
		{1, 1},
		{2, 1},
		{10, 9},
		{11, 9},
		{14, 10},
		{32768, 142},
		{1 << 31 / 2, 0},
	}
	for _, tc := range tests {
		n := LZMSNumOffsetSlots(tc.size)
		if tc.n == 0 {
			if n < 1 || n > LZMSOffsetSlots {
				t.Errorf("LZMSNumOffsetSlots(%d) = %d out of range",
					tc.size, n)
			}
			continue
		}
		if n != tc.n {
			t.Errorf("LZMSNumOffsetSlots(%d) = %d; want %d",
				tc.size, n, tc.n)
		}
	}
}
