// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lru

import "testing"

func TestDelayed(t *testing.T) {
	var q Delayed
	q.Reset()
	if got, want := q.r, [Len + 1]uint64{1, 2, 3, 4}; got != want {
		t.Fatalf("Reset: queue %v; want %v", got, want)
	}

	q.Stage(10)
	q.Advance()
	if got, want := q.r, [Len + 1]uint64{1, 2, 3, 4}; got != want {
		t.Fatalf("after first item: queue %v; want %v", got, want)
	}
	if i := q.Index(10); i != -1 {
		t.Fatalf("Index(10) = %d before insertion; want -1", i)
	}

	// literal
	q.Advance()
	if got, want := q.r, [Len + 1]uint64{10, 1, 2, 3}; got != want {
		t.Fatalf("after literal: queue %v; want %v", got, want)
	}

	v := q.Take(1)
	if v != 1 {
		t.Fatalf("Take(1) = %d; want 1", v)
	}
	if got, want := q.r, [Len + 1]uint64{10, 2, 3, 3}; got != want {
		t.Fatalf("after Take: queue %v; want %v", got, want)
	}
	q.Stage(v)
	q.Advance()
	q.Advance()
	if got, want := q.r, [Len + 1]uint64{1, 10, 2, 3}; got != want {
		t.Fatalf("after repeat item: queue %v; want %v", got, want)
	}
	if i := q.Index(2); i != 2 {
		t.Fatalf("Index(2) = %d; want 2", i)
	}
	if i := q.Index(3); i != -1 {
		t.Fatalf("Index(3) = %d; want -1", i)
	}
}

func TestDelayedTakePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("Take(%d) didn't panic", Len)
		}
	}()
	var q Delayed
	q.Reset()
	q.Take(Len)
}
