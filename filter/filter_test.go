// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package filter

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math/rand"
	"testing"

	"github.com/ulikunitz/wimlz/internal/errs"
)

// codeLike generates data with many opcode bytes, so that the filters find
// a lot of candidates.
func codeLike(r *rand.Rand, n int) []byte {
	ops := []byte{0x48, 0x4c, 0x8b, 0x8d, 0x05, 0x0d, 0xe8, 0xe9,
		0xf0, 0x83, 0xff, 0x15, 0x00, 0x90}
	p := make([]byte, n)
	for i := range p {
		if r.Intn(3) == 0 {
			p[i] = byte(r.Intn(256))
		} else {
			p[i] = ops[r.Intn(len(ops))]
		}
	}
	return p
}

func testInvolution(t *testing.T, f Filter, data []byte) {
	orig := make([]byte, len(data))
	copy(orig, data)
	if err := f.Apply(data, false); err != nil {
		t.Fatalf("Apply forward error %s", err)
	}
	if err := f.Apply(data, true); err != nil {
		t.Fatalf("Apply undo error %s", err)
	}
	if !bytes.Equal(data, orig) {
		t.Fatalf("undo doesn't restore data of length %d", len(data))
	}
}

func TestX86Involution(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	params := []X86Params{
		{},
		{MaxTranslationOffset: 1, MaxGoodTargetOffset: 1},
		{MaxTranslationOffset: 100000, MaxGoodTargetOffset: 1 << 20},
		{MaxTranslationOffset: 64, MaxGoodTargetOffset: 300},
	}
	sizes := []int{0, 1, 16, 17, 18, 100, 4096, 100000}
	for _, p := range params {
		f, err := NewX86(p)
		if err != nil {
			t.Fatalf("NewX86(%+v) error %s", p, err)
		}
		for _, n := range sizes {
			testInvolution(t, f, codeLike(r, n))
			data := make([]byte, n)
			r.Read(data)
			testInvolution(t, f, data)
		}
	}
}

func TestE8Involution(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	for _, size := range []int32{0, 1, 1000, WIMFileSize} {
		f := E8{FileSize: size}
		for _, n := range []int{0, 10, 11, 15, 1000, 32768} {
			testInvolution(t, f, codeLike(r, n))
		}
	}
}

func TestE8Translation(t *testing.T) {
	tests := []struct {
		pos int32
		rel int32
		abs int32
	}{
		{100, 50, 150},
		{100, -100, 0},
		{100, -101, -101},
		{100, WIMFileSize - 101, WIMFileSize - 1},
		{100, WIMFileSize - 100, -100},
		{100, WIMFileSize, WIMFileSize},
	}
	for _, tc := range tests {
		abs := translateE8(tc.rel, tc.pos, WIMFileSize)
		if abs != tc.abs {
			t.Errorf("translateE8(%d, %d) = %d; want %d",
				tc.rel, tc.pos, abs, tc.abs)
		}
		if rel := undoE8(abs, tc.pos, WIMFileSize); rel != tc.rel {
			t.Errorf("undoE8(%d, %d) = %d; want %d",
				abs, tc.pos, rel, tc.rel)
		}
	}
}

// callScenario creates a buffer of nop instructions with calls to the same
// absolute target at varying positions. The first two calls prime the
// filter heuristic. It returns the positions of the last n calls.
func callScenario(r *rand.Rand, size, n int, target int32) (data []byte, pos []int) {
	data = bytes.Repeat([]byte{0x90}, size)
	i := 64
	for k := 0; k < n+2; k++ {
		data[i] = 0xe8
		rel := target - int32(i+5)
		binary.LittleEndian.PutUint32(data[i+1:], uint32(rel))
		if k >= 2 {
			pos = append(pos, i)
		}
		i += 40 + r.Intn(150)
	}
	return data, pos
}

func TestX86Calls(t *testing.T) {
	var buf bytes.Buffer
	debugOn(&buf)
	defer debugOff()

	r := rand.New(rand.NewSource(3))
	data, pos := callScenario(r, 10000, 50, 0x4000)
	orig := make([]byte, len(data))
	copy(orig, data)

	f, err := NewX86(X86Params{})
	if err != nil {
		t.Fatalf("NewX86 error %s", err)
	}
	if err = f.Apply(data, false); err != nil {
		t.Fatalf("Apply error %s", err)
	}
	want := data[pos[0]+1 : pos[0]+5]
	for _, i := range pos {
		if got := data[i+1 : i+5]; !bytes.Equal(got, want) {
			t.Fatalf("call at %d: target % x; want % x", i, got, want)
		}
	}
	if err = f.Apply(data, true); err != nil {
		t.Fatalf("Apply undo error %s", err)
	}
	if !bytes.Equal(data, orig) {
		t.Fatalf("undo doesn't restore the data")
	}
	t.Logf("%s", buf.String())
}

func TestX86NotIdempotent(t *testing.T) {
	r := rand.New(rand.NewSource(4))
	data, _ := callScenario(r, 4096, 20, 0x1000)
	f, err := NewX86(X86Params{})
	if err != nil {
		t.Fatalf("NewX86 error %s", err)
	}
	if err = f.Apply(data, false); err != nil {
		t.Fatalf("Apply error %s", err)
	}
	once := make([]byte, len(data))
	copy(once, data)
	if err = f.Apply(data, false); err != nil {
		t.Fatalf("Apply error %s", err)
	}
	if bytes.Equal(data, once) {
		t.Fatalf("second forward application didn't change the data")
	}
}

func TestX86Params(t *testing.T) {
	tests := []X86Params{
		{MaxTranslationOffset: -1},
		{MaxGoodTargetOffset: -5},
		{MaxTranslationOffset: 1 << 30},
	}
	for _, p := range tests {
		if _, err := NewX86(p); !errors.Is(err, errs.ErrFilterState) {
			t.Errorf("NewX86(%+v) returned %v; want ErrFilterState",
				p, err)
		}
	}
}
