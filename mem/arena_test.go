// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package mem

import (
	"testing"
)

func TestMake(t *testing.T) {
	a := NewArena()
	x := Make(a, 3)
	y := Make(a, 5)
	if x == y {
		t.Fatal("distinct allocations share an address")
	}
	if *x != 3 || *y != 5 {
		t.Fatalf("got %d, %d, want 3, 5", *x, *y)
	}
	*x = 7
	if *y != 5 {
		t.Fatalf("writing through one pointer changed another: got %d", *y)
	}
}

func TestNewSlice(t *testing.T) {
	a := NewArena()
	s := NewSlice[[]int](a, 2, 4)
	if len(s) != 2 || cap(s) != 4 {
		t.Fatalf("got len %d cap %d, want 2, 4", len(s), cap(s))
	}
	for _, v := range s {
		if v != 0 {
			t.Fatalf("slice not zeroed: %v", s)
		}
	}

	// Appending within capacity must not touch a later allocation.
	next := NewSlice[[]int](a, 4, 4)
	s = append(s, 1, 2)
	if next[0] != 0 || next[1] != 0 {
		t.Fatalf("append overwrote the following allocation: %v", next)
	}
}

func TestNewSliceInvalid(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for len > cap")
		}
	}()
	NewSlice[[]int](NewArena(), 3, 2)
}

func TestAppend(t *testing.T) {
	a := NewArena()
	var s []int
	for i := 0; i < 1000; i++ {
		s = Append(a, s, i)
	}
	if len(s) != 1000 {
		t.Fatalf("got len %d, want 1000", len(s))
	}
	for i, v := range s {
		if v != i {
			t.Fatalf("s[%d] = %d after growth", i, v)
		}
	}
}

func TestReset(t *testing.T) {
	a := NewArena()
	p := Make(a, &struct{ v int }{v: 42})
	s := NewSlice[[]*int](a, 8, 8)
	for i := range s {
		s[i] = Make(a, i)
	}
	a.Reset()

	// Reset zeroes retained chunks so that dead allocations don't keep
	// their referents alive.
	if *p != nil {
		t.Fatal("pointer slot not zeroed by Reset")
	}

	// The retained chunk is reused, starting from the beginning.
	q := Make(a, &struct{ v int }{v: 7})
	if q != p {
		t.Error("allocation after Reset did not reuse the chunk")
	}

	for i := 0; i < 100; i++ {
		if got := *Make(a, i); got != i {
			t.Fatalf("got %d, want %d", got, i)
		}
	}
}

func TestResetKeepsLargestChunk(t *testing.T) {
	a := NewArena()
	// Force several chunks of increasing size.
	for i := 0; i < 1000; i++ {
		Make(a, i)
	}
	a.Reset()
	// After Reset a same-sized frame must fit into the retained chunk.
	c := typed[int](a)
	if len(c.all) != 1 {
		t.Fatalf("got %d chunks after Reset, want 1", len(c.all))
	}
	room := cap(c.all[0])
	for i := 0; i < room; i++ {
		Make(a, i)
	}
	if len(c.all) != 1 {
		t.Fatalf("steady-state frame allocated %d extra chunks", len(c.all)-1)
	}
}
