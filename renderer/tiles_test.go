// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package renderer

import (
	"math"
	"testing"

	"honnef.co/go/keith/encoding"
	"honnef.co/go/keith/kmath"
)

func TestTileGridResize(t *testing.T) {
	tests := []struct {
		name     string
		viewport kmath.Vec2
		width    uint32
		height   uint32
	}{
		{"exact multiple", kmath.Vec2{X: 32, Y: 64}, 4, 8},
		{"rounds up", kmath.Vec2{X: 33, Y: 65}, 5, 9},
		{"single pixel", kmath.Vec2{X: 1, Y: 1}, 1, 1},
		{"1080p", kmath.Vec2{X: 1920, Y: 1080}, 240, 135},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var g TileGrid
			g.Resize(tt.viewport)
			if g.Width != tt.width || g.Height != tt.height {
				t.Errorf("Resize(%v) = %dx%d tiles, want %dx%d",
					tt.viewport, g.Width, g.Height, tt.width, tt.height)
			}
			if len(g.Primitives) != 0 || len(g.OffsetAndCount) != 0 {
				t.Errorf("Resize did not clear buffers")
			}
		})
	}
}

func TestTileGridBin(t *testing.T) {
	var g TileGrid
	g.Resize(kmath.Vec2{X: 32, Y: 64})
	if g.Width != 4 || g.Height != 8 {
		t.Fatalf("grid = %dx%d, want 4x8", g.Width, g.Height)
	}
	if cap(g.OffsetAndCount) < 32 {
		t.Fatalf("offset/count capacity = %d, want >= 32", cap(g.OffsetAndCount))
	}

	index := encoding.NewPackedPrimitiveIndex(42, encoding.KindLine, true, false)
	prims := []PreparedPrimitive{
		{
			Aabb: kmath.Box{
				Min: kmath.Vec2{X: 8, Y: 16},
				Max: kmath.Vec2{X: 16, Y: 32},
			},
			Index: index,
		},
	}
	g.Bin(prims, kmath.Vec2{X: 256, Y: 128})

	// The bounds span tiles (1,2) and (1,3); the right and bottom tile rows
	// only share an edge and are excluded.
	if len(g.Primitives) != 2 {
		t.Fatalf("len(Primitives) = %d, want 2", len(g.Primitives))
	}
	if g.Primitives[0] != index || g.Primitives[1] != index {
		t.Errorf("Primitives = %v, want both %#08x", g.Primitives, uint32(index))
	}
	if len(g.OffsetAndCount) != 32 {
		t.Fatalf("len(OffsetAndCount) = %d, want 32", len(g.OffsetAndCount))
	}
	for i, oc := range g.OffsetAndCount {
		switch i {
		case 9:
			if oc.Offset != 0 || oc.Count != 1 {
				t.Errorf("entry %d = %+v, want {0 1}", i, oc)
			}
		case 13:
			if oc.Offset != 1 || oc.Count != 1 {
				t.Errorf("entry %d = %+v, want {1 1}", i, oc)
			}
		default:
			if oc.Count != 0 {
				t.Errorf("entry %d = %+v, want count 0", i, oc)
			}
		}
	}
}

func TestTileGridBinNaNBounds(t *testing.T) {
	var g TileGrid
	g.Resize(kmath.Vec2{X: 16, Y: 16})

	// Degenerate geometry can produce NaN bounds, which convert to tile
	// indices far outside the grid. Such primitives must stay out of the
	// run-length table instead of blowing it up with gap fill.
	nan := float32(math.NaN())
	nanIndex := encoding.NewPackedPrimitiveIndex(0, encoding.KindLine, false, false)
	rectIndex := encoding.NewPackedPrimitiveIndex(6, encoding.KindRect, false, false)
	prims := []PreparedPrimitive{
		{
			Aabb: kmath.Box{
				Min: kmath.Vec2{X: nan, Y: nan},
				Max: kmath.Vec2{X: nan, Y: nan},
			},
			Index: nanIndex,
		},
		{
			Aabb: kmath.Box{
				Min: kmath.Vec2{X: 9, Y: 9},
				Max: kmath.Vec2{X: 15, Y: 15},
			},
			Index: rectIndex,
		},
	}
	g.Bin(prims, kmath.Vec2{X: 16, Y: 16})

	if len(g.OffsetAndCount) != 4 {
		t.Fatalf("len(OffsetAndCount) = %d, want 4", len(g.OffsetAndCount))
	}
	if len(g.Primitives) != 1 || g.Primitives[0] != rectIndex {
		t.Fatalf("Primitives = %v, want only %#08x", g.Primitives, uint32(rectIndex))
	}
	for i, oc := range g.OffsetAndCount {
		if i == 3 {
			if oc.Offset != 0 || oc.Count != 1 {
				t.Errorf("entry %d = %+v, want {0 1}", i, oc)
			}
		} else if oc.Count != 0 {
			t.Errorf("entry %d = %+v, want count 0", i, oc)
		}
	}
}

func TestTileGridBinEmpty(t *testing.T) {
	var g TileGrid
	g.Resize(kmath.Vec2{X: 16, Y: 16})
	g.Bin(nil, kmath.Vec2{X: 16, Y: 16})
	if len(g.OffsetAndCount) != 4 {
		t.Fatalf("len(OffsetAndCount) = %d, want 4", len(g.OffsetAndCount))
	}
	for i, oc := range g.OffsetAndCount {
		if oc != (OffsetAndCount{}) {
			t.Errorf("entry %d = %+v, want zero", i, oc)
		}
	}
}

func TestTileGridBinStableOrder(t *testing.T) {
	var g TileGrid
	g.Resize(kmath.Vec2{X: 16, Y: 16})

	// Three primitives overlapping the same tile; their order in the tile's
	// run must match draw order.
	box := kmath.Box{Min: kmath.Vec2{X: 1, Y: 1}, Max: kmath.Vec2{X: 7, Y: 7}}
	var prims []PreparedPrimitive
	for i := range 3 {
		prims = append(prims, PreparedPrimitive{
			Aabb:  box,
			Index: encoding.NewPackedPrimitiveIndex(uint32(i*6), encoding.KindRect, false, false),
		})
	}
	g.Bin(prims, kmath.Vec2{X: 16, Y: 16})

	if len(g.Primitives) != 3 {
		t.Fatalf("len(Primitives) = %d, want 3", len(g.Primitives))
	}
	for i, idx := range g.Primitives {
		if got := idx.Offset(); got != uint32(i*6) {
			t.Errorf("Primitives[%d].Offset() = %d, want %d", i, got, i*6)
		}
	}
	if oc := g.OffsetAndCount[0]; oc.Offset != 0 || oc.Count != 3 {
		t.Errorf("entry 0 = %+v, want {0 3}", oc)
	}
}

func TestTileGridBinAccumulates(t *testing.T) {
	var g TileGrid
	g.Resize(kmath.Vec2{X: 16, Y: 8})

	box := kmath.Box{Min: kmath.Vec2{X: 0, Y: 0}, Max: kmath.Vec2{X: 4, Y: 4}}
	first := []PreparedPrimitive{
		{Aabb: box, Index: encoding.NewPackedPrimitiveIndex(0, encoding.KindRect, false, false)},
	}
	second := []PreparedPrimitive{
		{Aabb: box, Index: encoding.NewPackedPrimitiveIndex(6, encoding.KindRect, false, false)},
	}
	g.Bin(first, kmath.Vec2{X: 16, Y: 8})
	g.Bin(second, kmath.Vec2{X: 16, Y: 8})

	// Each call appends a full 2-entry table; the second call's offsets
	// continue into the shared primitive list.
	if len(g.OffsetAndCount) != 4 {
		t.Fatalf("len(OffsetAndCount) = %d, want 4", len(g.OffsetAndCount))
	}
	if oc := g.OffsetAndCount[0]; oc.Offset != 0 || oc.Count != 1 {
		t.Errorf("first table entry 0 = %+v, want {0 1}", oc)
	}
	if oc := g.OffsetAndCount[2]; oc.Offset != 1 || oc.Count != 1 {
		t.Errorf("second table entry 0 = %+v, want {1 1}", oc)
	}
	if len(g.Primitives) != 2 {
		t.Errorf("len(Primitives) = %d, want 2", len(g.Primitives))
	}
}

func TestTileGridBinClampsToGrid(t *testing.T) {
	// A 30x30 viewport needs a 4x4 grid whose last row and column are only
	// partially covered. Bounds extending past the viewport must still bin
	// into that last row and column, not past them.
	var g TileGrid
	g.Resize(kmath.Vec2{X: 30, Y: 30})
	if g.Width != 4 || g.Height != 4 {
		t.Fatalf("grid = %dx%d, want 4x4", g.Width, g.Height)
	}

	index := encoding.NewPackedPrimitiveIndex(0, encoding.KindRect, false, false)
	aabb := kmath.Box{Min: kmath.Vec2{X: 0, Y: 0}, Max: kmath.Vec2{X: 40, Y: 40}}
	g.Bin([]PreparedPrimitive{{Aabb: aabb, Index: index}}, kmath.Vec2{X: 30, Y: 30})

	if len(g.OffsetAndCount) != 16 {
		t.Fatalf("len(OffsetAndCount) = %d, want 16", len(g.OffsetAndCount))
	}
	for i, oc := range g.OffsetAndCount {
		if oc.Count != 1 {
			t.Errorf("entry %d = %+v, want count 1", i, oc)
		}
	}
	if len(g.Primitives) != 16 {
		t.Errorf("len(Primitives) = %d, want 16", len(g.Primitives))
	}
}

func TestTileGridBinEdgeExclusion(t *testing.T) {
	tests := []struct {
		name  string
		aabb  kmath.Box
		tiles []int32
	}{
		{
			// Bounds ending exactly on a tile edge don't spill into the
			// next tile.
			"on edge",
			kmath.Box{Min: kmath.Vec2{X: 0, Y: 0}, Max: kmath.Vec2{X: 8, Y: 8}},
			[]int32{0},
		},
		{
			// Bounds past the edge are binned conservatively, one tile
			// beyond the last overlapped one.
			"past edge",
			kmath.Box{Min: kmath.Vec2{X: 0, Y: 0}, Max: kmath.Vec2{X: 8.5, Y: 8}},
			[]int32{0, 1, 2},
		},
		{
			"interior",
			kmath.Box{Min: kmath.Vec2{X: 9, Y: 1}, Max: kmath.Vec2{X: 15, Y: 7}},
			[]int32{1, 2, 5, 6},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var g TileGrid
			g.Resize(kmath.Vec2{X: 32, Y: 16})
			index := encoding.NewPackedPrimitiveIndex(0, encoding.KindRect, false, false)
			g.Bin([]PreparedPrimitive{{Aabb: tt.aabb, Index: index}}, kmath.Vec2{X: 32, Y: 16})

			var got []int32
			for i, oc := range g.OffsetAndCount {
				if oc.Count > 0 {
					got = append(got, int32(i))
					if oc.Count != 1 {
						t.Errorf("entry %d count = %d, want 1", i, oc.Count)
					}
				}
			}
			if len(got) != len(tt.tiles) {
				t.Fatalf("occupied tiles = %v, want %v", got, tt.tiles)
			}
			for i := range got {
				if got[i] != tt.tiles[i] {
					t.Errorf("occupied tiles = %v, want %v", got, tt.tiles)
				}
			}
		})
	}
}
