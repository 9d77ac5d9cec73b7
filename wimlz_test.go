// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package wimlz

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"

	"github.com/ulikunitz/wimlz/lzparse"
)

func testChunk(n int) []byte {
	r := rand.New(rand.NewSource(7))
	words := []string{"wim", "image", "chunk", "resource", "header",
		"\n", " ", "lookup", "table"}
	var buf bytes.Buffer
	for buf.Len() < n {
		buf.WriteString(words[r.Intn(len(words))])
		if r.Intn(20) == 0 {
			buf.WriteByte(0xe8)
			buf.WriteByte(byte(r.Intn(256)))
		}
	}
	return buf.Bytes()[:n]
}

func TestRoundTrip(t *testing.T) {
	m4, err := lzparse.NewM4(lzparse.M4Config{MaxOffset: 30000})
	if err != nil {
		t.Fatalf("NewM4 error %s", err)
	}
	tests := []struct {
		name string
		f    Format
		cfg  Config
		size int
	}{
		{"lzx", LZX, Config{}, 32768},
		{"lzx-short", LZX, Config{}, 100},
		{"lzx-m4", LZX, Config{MatchFinder: m4}, 32768},
		{"lzx-nox86", LZX, Config{DisableX86: true}, 20000},
		{"lzms", LZMS, Config{}, 200000},
		{"lzms-m4", LZMS, Config{MatchFinder: m4}, 50000},
		{"lzms-nox86", LZMS, Config{DisableX86: true}, 50000},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			data := testChunk(tc.size)
			z, err := Compress(tc.f, data, tc.cfg)
			if err != nil {
				t.Fatalf("Compress error %s", err)
			}
			if tc.size >= 10000 && len(z) >= len(data) {
				t.Errorf("compressed %d bytes to %d bytes",
					len(data), len(z))
			}
			got, err := Decompress(tc.f, z, len(data), tc.cfg)
			if err != nil {
				t.Fatalf("Decompress error %s", err)
			}
			if !bytes.Equal(got, data) {
				t.Fatalf("decompressed data differs")
			}
		})
	}
}

func TestOddRandomChunks(t *testing.T) {
	// Random data is stored; odd sizes require a pad byte.
	r := rand.New(rand.NewSource(11))
	for _, f := range []Format{LZX, LZMS} {
		for _, n := range []int{1, 3, 1001, 32767} {
			data := make([]byte, n)
			r.Read(data)
			z, err := Compress(f, data, Config{})
			if err != nil {
				t.Fatalf("%v: Compress(%d bytes) error %s", f, n, err)
			}
			got, err := Decompress(f, z, n, Config{})
			if err != nil {
				t.Fatalf("%v: Decompress(%d bytes) error %s", f, n,
					err)
			}
			if !bytes.Equal(got, data) {
				t.Fatalf("%v: %d bytes: decompressed data differs",
					f, n)
			}
		}
	}
}

func TestCompressorReuse(t *testing.T) {
	for _, f := range []Format{LZX, LZMS} {
		c, err := NewCompressor(f, Config{})
		if err != nil {
			t.Fatalf("NewCompressor(%v) error %s", f, err)
		}
		d, err := NewDecompressor(f, Config{})
		if err != nil {
			t.Fatalf("NewDecompressor(%v) error %s", f, err)
		}
		data := testChunk(3 * 32768)
		for i := 0; i < 3; i++ {
			chunk := data[i*32768 : (i+1)*32768]
			z, err := c.Compress(chunk)
			if err != nil {
				t.Fatalf("%v: Compress error %s", f, err)
			}
			out := make([]byte, len(chunk))
			if err = d.Decompress(out, z); err != nil {
				t.Fatalf("%v: Decompress error %s", f, err)
			}
			if !bytes.Equal(out, chunk) {
				t.Fatalf("%v: chunk %d differs", f, i)
			}
		}
	}
}

func TestUnsupportedFormat(t *testing.T) {
	if _, err := NewCompressor(Format(1), Config{}); err == nil {
		t.Errorf("NewCompressor accepted Format(1)")
	}
	if _, err := NewDecompressor(Format(0), Config{}); err == nil {
		t.Errorf("NewDecompressor accepted Format(0)")
	}
	if _, err := Compress(Format(4), []byte("a"), Config{}); err == nil {
		t.Errorf("Compress accepted Format(4)")
	}
}

func TestConfigVerify(t *testing.T) {
	cfg := Config{MaxOutput: -1}
	if err := cfg.Verify(); err == nil {
		t.Errorf("Verify accepted negative MaxOutput")
	}
	var p *Config
	if err := p.Verify(); err == nil {
		t.Errorf("Verify accepted nil pointer")
	}
}

func TestDecompressLimits(t *testing.T) {
	if _, err := Decompress(LZX, nil, -1, Config{}); err == nil {
		t.Errorf("Decompress accepted negative size")
	}
	_, err := Decompress(LZX, nil, 32769, Config{})
	if !errors.Is(err, ErrOutputOverflow) {
		t.Errorf("Decompress(LZX, size 32769) error %v; want %v",
			err, ErrOutputOverflow)
	}
	_, err = Decompress(LZMS, nil, 1000, Config{MaxOutput: 100})
	if !errors.Is(err, ErrOutputOverflow) {
		t.Errorf("Decompress with MaxOutput error %v; want %v",
			err, ErrOutputOverflow)
	}
}

func TestDecompressErrors(t *testing.T) {
	data := testChunk(1000)
	for _, f := range []Format{LZX, LZMS} {
		z, err := Compress(f, data, Config{})
		if err != nil {
			t.Fatalf("%v: Compress error %s", f, err)
		}
		if f == LZMS {
			_, err = Decompress(f, z[:3], len(data), Config{})
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("%v: short input error %v; want %v",
					f, err, ErrMalformed)
			}
			continue
		}
		_, err = Decompress(f, z[:2], len(data), Config{})
		if !errors.Is(err, ErrTruncated) {
			t.Errorf("%v: truncated input error %v; want %v",
				f, err, ErrTruncated)
		}
	}
}

func TestCompressLimit(t *testing.T) {
	data := make([]byte, 10000)
	rand.New(rand.NewSource(3)).Read(data)
	for _, f := range []Format{LZX, LZMS} {
		_, err := Compress(f, data, Config{MaxOutput: 1000})
		if !errors.Is(err, ErrBufferTooSmall) {
			t.Errorf("%v: Compress error %v; want %v",
				f, err, ErrBufferTooSmall)
		}
	}
}
