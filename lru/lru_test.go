// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lru

import (
	"math/rand"
	"testing"
)

func TestUse(t *testing.T) {
	tests := []struct {
		i    int
		want [Len]uint32
	}{
		{0, [Len]uint32{1, 2, 3}},
		{1, [Len]uint32{2, 1, 3}},
		{2, [Len]uint32{3, 1, 2}},
	}
	for _, tc := range tests {
		q := New()
		off := q.Use(tc.i)
		if off != tc.want[0] {
			t.Errorf("Use(%d) returned %d; want %d",
				tc.i, off, tc.want[0])
		}
		if got := q.Offsets(); got != tc.want {
			t.Errorf("Use(%d): queue %v; want %v", tc.i, got, tc.want)
		}
	}
}

func TestInsert(t *testing.T) {
	tests := []struct {
		off  uint32
		want [Len]uint32
	}{
		{7, [Len]uint32{7, 1, 2}},
		{1, [Len]uint32{1, 2, 3}},
		{2, [Len]uint32{2, 1, 3}},
		{3, [Len]uint32{3, 1, 2}},
	}
	for _, tc := range tests {
		q := New()
		q.Insert(tc.off)
		if got := q.Offsets(); got != tc.want {
			t.Errorf("Insert(%d): queue %v; want %v",
				tc.off, got, tc.want)
		}
	}
}

func distinct(r [Len]uint32) bool {
	return r[0] != r[1] && r[0] != r[2] && r[1] != r[2]
}

// TestReplay applies random operation sequences to two queues and checks
// that they stay identical and distinct.
func TestReplay(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	for n := 0; n < 100; n++ {
		enc, dec := New(), New()
		for k := 0; k < 1000; k++ {
			if r.Intn(2) == 0 {
				i := r.Intn(Len)
				if a, b := enc.Use(i), dec.Use(i); a != b {
					t.Fatalf("Use(%d) returned %d and %d",
						i, a, b)
				}
			} else {
				off := uint32(r.Intn(8)) + 1
				enc.Insert(off)
				dec.Insert(off)
			}
			if !distinct(enc.Offsets()) {
				t.Fatalf("queue %v has duplicates", enc)
			}
		}
		if enc != dec {
			t.Fatalf("queues differ: %v and %v", enc, dec)
		}
	}
}

func TestLZXRules(t *testing.T) {
	var q Queue
	q.Reset()
	if got := q.Offsets(); got != [Len]uint32{1, 1, 1} {
		t.Fatalf("Reset: queue %v", got)
	}
	q.Push(10)
	q.Push(20)
	q.Push(30)
	if got := q.Offsets(); got != [Len]uint32{30, 20, 10} {
		t.Fatalf("Push: queue %v", got)
	}
	if off := q.Swap(2); off != 10 {
		t.Fatalf("Swap(2) returned %d; want 10", off)
	}
	if got := q.Offsets(); got != [Len]uint32{10, 20, 30} {
		t.Fatalf("Swap(2): queue %v", got)
	}
	if off := q.Swap(1); off != 20 {
		t.Fatalf("Swap(1) returned %d; want 20", off)
	}
	if got := q.Offsets(); got != [Len]uint32{20, 10, 30} {
		t.Fatalf("Swap(1): queue %v", got)
	}
	q.Push(20)
	if got := q.Offsets(); got != [Len]uint32{20, 20, 10} {
		t.Fatalf("Push duplicate: queue %v", got)
	}
	if i := q.Index(10); i != 2 {
		t.Fatalf("Index(10) = %d; want 2", i)
	}
	if i := q.Index(99); i != -1 {
		t.Fatalf("Index(99) = %d; want -1", i)
	}
}
