// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzparse

import (
	"bytes"
	"math/rand"
	"testing"
)

// repetitive returns data with many repeats at varying distances.
func repetitive(r *rand.Rand, n int) []byte {
	words := [][]byte{
		[]byte("alpha "), []byte("beta "), []byte("gamma "),
		[]byte("delta "), []byte("epsilon\n"), []byte("lorem ipsum "),
	}
	var buf bytes.Buffer
	for buf.Len() < n {
		if r.Intn(10) == 0 {
			buf.WriteByte(byte(r.Intn(256)))
			continue
		}
		buf.Write(words[r.Intn(len(words))])
	}
	return buf.Bytes()[:n]
}

func finders(t *testing.T, maxOffset int) map[string]Finder {
	lzf, err := NewLZ(LZConfig{MaxOffset: maxOffset})
	if err != nil {
		t.Fatalf("NewLZ error %s", err)
	}
	m4, err := NewM4(M4Config{MaxOffset: maxOffset})
	if err != nil {
		t.Fatalf("NewM4 error %s", err)
	}
	return map[string]Finder{"lz": lzf, "m4": m4}
}

func TestFinders(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	const maxOffset = 32765
	for name, f := range finders(t, maxOffset) {
		t.Run(name, func(t *testing.T) {
			var blk Block
			for _, n := range []int{0, 1, 5, 100, 32768, 100000} {
				data := repetitive(r, n)
				if err := f.Parse(&blk, data); err != nil {
					t.Fatalf("Parse error %s", err)
				}
				if err := Verify(&blk, data); err != nil {
					t.Fatalf("Verify error %s", err)
				}
				for _, s := range blk.Seqs {
					if s.Offset > maxOffset {
						t.Fatalf("offset %d exceeds %d",
							s.Offset, maxOffset)
					}
				}
				if n >= 32768 && len(blk.Seqs) == 0 {
					t.Fatalf("no matches found in %d bytes", n)
				}
				if blk.Len() != n {
					t.Fatalf("blk.Len() = %d; want %d",
						blk.Len(), n)
				}
			}
		})
	}
}

func TestVerify(t *testing.T) {
	data := []byte("abcabcabc")
	blk := Block{
		Seqs:     []Seq{{LitLen: 3, MatchLen: 6, Offset: 3}},
		Literals: []byte("abc"),
	}
	if err := Verify(&blk, data); err != nil {
		t.Fatalf("Verify error %s", err)
	}
	blk.Seqs[0].Offset = 4
	if err := Verify(&blk, data); err == nil {
		t.Fatalf("Verify accepted offset beyond start of data")
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		m, min, max uint32
		want        uint32
	}{
		{10, 2, 257, 10},
		{257, 2, 257, 257},
		{258, 2, 257, 256},
		{259, 2, 257, 257},
		{1000, 2, 257, 257},
	}
	for _, tc := range tests {
		got := Split(tc.m, tc.min, tc.max)
		if got != tc.want {
			t.Errorf("Split(%d, %d, %d) = %d; want %d",
				tc.m, tc.min, tc.max, got, tc.want)
		}
		if rest := tc.m - got; rest != 0 && rest < tc.min {
			t.Errorf("Split(%d, %d, %d) leaves %d", tc.m, tc.min,
				tc.max, rest)
		}
	}
}
