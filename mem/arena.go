// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Package mem implements a bump arena for allocations with a shared
// lifetime.
//
// Recording a frame produces many small values that all die together when
// the frame has been submitted: GPU descriptors, binding entry slices,
// staging buffers. An Arena hands out pointers into larger per-type chunks
// and reclaims all of them at once in Reset, so the garbage collector never
// traces the individual values.
package mem

import (
	"fmt"
	"reflect"
)

// Arena allocates values in per-type chunks. Allocations stay valid until
// Reset; individual allocations cannot be freed. The zero value is not
// usable, use NewArena.
type Arena struct {
	pools map[reflect.Type]pool
}

func NewArena() *Arena {
	return &Arena{pools: make(map[reflect.Type]pool)}
}

// Reset frees all allocations at once. The largest chunk of every type is
// kept and zeroed, so a steady-state frame allocates no new memory.
func (a *Arena) Reset() {
	for _, p := range a.pools {
		p.reset()
	}
}

type pool interface {
	reset()
}

const minChunkLen = 64

// chunks is a growing list of []E blocks for one element type. New
// allocations bump into the last block; when it is full, the next block
// doubles in size.
type chunks[E any] struct {
	all [][]E
}

func typed[E any](a *Arena) *chunks[E] {
	key := reflect.TypeFor[E]()
	if p, ok := a.pools[key]; ok {
		return p.(*chunks[E])
	}
	c := &chunks[E]{}
	a.pools[key] = c
	return c
}

// alloc returns n zeroed contiguous elements. The returned slice has
// exactly length and capacity n.
func (c *chunks[E]) alloc(n int) []E {
	if k := len(c.all); k > 0 {
		tip := c.all[k-1]
		if len(tip)+n <= cap(tip) {
			c.all[k-1] = tip[:len(tip)+n]
			return c.all[k-1][len(tip) : len(tip)+n : len(tip)+n]
		}
	}
	size := minChunkLen
	if k := len(c.all); k > 0 {
		size = 2 * cap(c.all[k-1])
	}
	tip := make([]E, n, max(size, n))
	c.all = append(c.all, tip)
	return tip[:n:n]
}

func (c *chunks[E]) reset() {
	if len(c.all) == 0 {
		return
	}
	biggest := c.all[0]
	for _, ch := range c.all[1:] {
		if cap(ch) > cap(biggest) {
			biggest = ch
		}
	}
	// Zero the kept chunk so that it doesn't pin whatever the dead
	// allocations were pointing at.
	clear(biggest[:cap(biggest)])
	c.all = append(c.all[:0], biggest[:0])
}

// Make allocates a copy of v.
func Make[T any](a *Arena, v T) *T {
	p := &typed[T](a).alloc(1)[0]
	*p = v
	return p
}

// NewSlice allocates a zeroed slice with the given length and capacity.
// Appending beyond the capacity escapes the arena; use Append to grow
// within it.
func NewSlice[S ~[]E, E any](a *Arena, length, capacity int) S {
	if length < 0 || length > capacity {
		panic(fmt.Sprintf("mem: invalid slice bounds [%d:%d]", length, capacity))
	}
	return S(typed[E](a).alloc(capacity)[:length])
}

// Append appends vs to s, allocating a larger backing array from the arena
// when s runs out of capacity.
func Append[S ~[]E, E any](a *Arena, s S, vs ...E) S {
	if len(s)+len(vs) <= cap(s) {
		return append(s, vs...)
	}
	grown := NewSlice[S, E](a, len(s), max(2*cap(s), len(s)+len(vs), minChunkLen))
	copy(grown, s)
	return append(grown, vs...)
}
