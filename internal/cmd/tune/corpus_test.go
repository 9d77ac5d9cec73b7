// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"testing"

	"github.com/ulikunitz/lz"
	"github.com/ulikunitz/wimlz"
	"github.com/ulikunitz/wimlz/internal/tuning"
	"github.com/ulikunitz/wimlz/lzparse"
)

func TestSlot(t *testing.T) {
	slots := []float64{0.40, 0.30, 0.20}
	tests := []struct {
		ratio float64
		i     int
		ok    bool
	}{
		{0.45, -1, false},
		{0.35, 0, true},
		{0.25, 1, true},
		{0.10, 2, true},
	}
	for _, tc := range tests {
		i, ok := slot(slots, tc.ratio)
		if i != tc.i || ok != tc.ok {
			t.Errorf("slot(%.2f) = %d, %t; want %d, %t",
				tc.ratio, i, ok, tc.i, tc.ok)
		}
	}
}

func TestWorse(t *testing.T) {
	a := candidate{seq: &lz.HSConfig{InputLen: 3, HashBits: 10}}
	b := candidate{seq: &lz.HSConfig{InputLen: 3, HashBits: 12}}
	c := candidate{seq: &lz.HSConfig{InputLen: 4, HashBits: 12}}
	m := candidate{m4: lzparse.M4Config{TableBits: 12}}
	if !worse(&a, &b) {
		t.Errorf("HS-3-10 not worse than HS-3-12")
	}
	if worse(&b, &a) {
		t.Errorf("HS-3-12 worse than HS-3-10")
	}
	if worse(&a, &c) {
		t.Errorf("HS-3-10 compared with HS-4-12")
	}
	if worse(&a, &m) || worse(&m, &a) {
		t.Errorf("HS compared with M4")
	}
}

func TestSilesia(t *testing.T) {
	if testing.Short() {
		t.Skip("slow test")
	}
	candidates := []candidate{
		{name: "HS-3-4", format: wimlz.LZX, chunkSize: 32768,
			seq: &lz.HSConfig{InputLen: 3, HashBits: 4}},
		{name: "BUHS-3-12-8", format: wimlz.LZMS, chunkSize: 1 << 18,
			seq: &lz.BUHSConfig{InputLen: 3, HashBits: 12,
				BucketSize: 8}},
		{name: "M4-14-16", format: wimlz.LZMS, chunkSize: 1 << 18,
			m4: lzparse.M4Config{MaxOffset: 65535, TableBits: 14,
				ChainLength: 16}},
	}
	files := silesiaFiles()
	for _, c := range candidates {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			cfg, err := c.config()
			if err != nil {
				t.Fatalf("config error %s", err)
			}
			_, err = tuning.Compress(files, c.format, cfg, c.chunkSize,
				true)
			if err != nil {
				t.Fatalf("Compress error %s", err)
			}
		})
	}
}

func BenchmarkRatio(b *testing.B) {
	candidates := []candidate{
		{name: "lzx-default", format: wimlz.LZX, chunkSize: 32768,
			seq: &lz.DHSConfig{InputLen1: 3, HashBits1: 15,
				InputLen2: 6, HashBits2: 16}},
		{name: "lzms-default", format: wimlz.LZMS, chunkSize: 1 << 20,
			seq: &lz.DHSConfig{InputLen1: 3, HashBits1: 15,
				InputLen2: 6, HashBits2: 16}},
		{name: "lzms-m4", format: wimlz.LZMS, chunkSize: 1 << 20,
			m4: lzparse.M4Config{MaxOffset: 65535}},
	}
	for _, c := range candidates {
		b.Run(c.name, compressBenchmark(c))
	}
}
