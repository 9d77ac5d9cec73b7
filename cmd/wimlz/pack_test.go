// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"bytes"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/ulikunitz/wimlz"
)

func TestOutputPaths(t *testing.T) {
	out, tmp, err := chunkPacker{}.outputPaths("a/b.txt")
	if err != nil {
		t.Fatalf("outputPaths error %s", err)
	}
	if out != "a/b.txt.wlz" || tmp != "a/b.txt.wlz.pack" {
		t.Fatalf("outputPaths returned %q, %q", out, tmp)
	}
	if _, _, err = (chunkPacker{}).outputPaths("b.wlz"); err == nil {
		t.Fatalf("packer accepted path with suffix")
	}
	out, tmp, err = chunkUnpacker{}.outputPaths("a/b.txt.wlz")
	if err != nil {
		t.Fatalf("outputPaths error %s", err)
	}
	if out != "a/b.txt" || tmp != "a/b.txt.unpack" {
		t.Fatalf("outputPaths returned %q, %q", out, tmp)
	}
	for _, path := range []string{"b.txt", "dir/.wlz"} {
		if _, _, err = (chunkUnpacker{}).outputPaths(path); err == nil {
			t.Errorf("unpacker accepted path %q", path)
		}
	}
}

func TestPackUnpack(t *testing.T) {
	text := strings.Repeat("the chunks of a windows image file\n", 3000)
	random := make([]byte, 50000)
	rand.New(rand.NewSource(1)).Read(random)
	tests := []struct {
		name string
		f    wimlz.Format
		size int
		data []byte
	}{
		{"lzx-text", wimlz.LZX, 32768, []byte(text)},
		{"lzx-small", wimlz.LZX, 1000, []byte(text)},
		{"lzx-random", wimlz.LZX, 32768, random},
		{"lzms-text", wimlz.LZMS, 1 << 16, []byte(text)},
		{"lzms-random", wimlz.LZMS, 1 << 16, random},
		{"lzms-empty", wimlz.LZMS, 1 << 16, nil},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			opts := &options{format: tc.f, chunkSize: tc.size}
			var packed bytes.Buffer
			n, err := chunkPacker{}.pack(&packed,
				bytes.NewReader(tc.data), opts)
			if err != nil {
				t.Fatalf("pack error %s", err)
			}
			if n != int64(len(tc.data)) {
				t.Fatalf("pack returned %d; want %d", n,
					len(tc.data))
			}
			var out bytes.Buffer
			n, err = chunkUnpacker{}.pack(&out, &packed,
				&options{})
			if err != nil {
				t.Fatalf("unpack error %s", err)
			}
			if n != int64(len(tc.data)) {
				t.Fatalf("unpack returned %d; want %d", n,
					len(tc.data))
			}
			if !bytes.Equal(out.Bytes(), tc.data) {
				t.Fatalf("unpacked data differs")
			}
		})
	}
}

func TestUnpackErrors(t *testing.T) {
	var out bytes.Buffer
	_, err := chunkUnpacker{}.pack(&out,
		strings.NewReader("XYZ\x01\x02"), &options{})
	if err != errFraming {
		t.Errorf("bad magic: error %v; want %v", err, errFraming)
	}

	var packed bytes.Buffer
	opts := &options{format: wimlz.LZX, chunkSize: 32768}
	data := []byte(strings.Repeat("abcabd", 1000))
	if _, err = (chunkPacker{}).pack(&packed, bytes.NewReader(data),
		opts); err != nil {
		t.Fatalf("pack error %s", err)
	}
	p := packed.Bytes()
	_, err = chunkUnpacker{}.pack(&out, bytes.NewReader(p[:len(p)-5]),
		&options{})
	if err == nil {
		t.Errorf("unpack of truncated file succeeded")
	}

	q := append([]byte(nil), p...)
	q[len(magic)] = 9
	_, err = chunkUnpacker{}.pack(&out, bytes.NewReader(q), &options{})
	if err == nil {
		t.Errorf("unpack accepted format 9")
	}
	if errors.Is(err, errFraming) {
		t.Errorf("format error reported as framing error")
	}
}

func TestDump(t *testing.T) {
	var buf bytes.Buffer
	dump(&buf, wimlz.LZMS)
	s := buf.String()
	if !strings.Contains(s, "LZMS offset slots: 799") {
		t.Errorf("dump output %q misses offset slots", s)
	}
	buf.Reset()
	dump(&buf, wimlz.LZX)
	if !strings.Contains(buf.String(), "LZX position slots: 30") {
		t.Errorf("dump output %q misses position slots", buf.String())
	}
}
