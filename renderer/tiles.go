// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package renderer

import (
	"cmp"
	"fmt"
	"slices"
	"structs"

	"honnef.co/go/keith/encoding"
	"honnef.co/go/keith/kmath"
	"honnef.co/go/safeish"
)

// TileSize is the side length of a screen tile in pixels. 8x8 tiles work
// well with both 32- and 64-wide GPU waves.
const TileSize = 8

// OffsetAndCount addresses one tile's run in TileGrid.Primitives: Count
// packed indices starting at Offset. Entries with a zero Count carry an
// arbitrary offset.
type OffsetAndCount struct {
	_ structs.HostLayout

	Offset uint32
	Count  uint32
}

// PreparedPrimitive is a sub-primitive ready for binning: its bounds in
// physical pixels, and the packed index of its rows in the primitive buffer.
type PreparedPrimitive struct {
	Aabb  kmath.Box
	Index encoding.PackedPrimitiveIndex
}

type assignedTile struct {
	tile  int32
	index encoding.PackedPrimitiveIndex
}

// TileGrid bins sub-primitives into fixed-size screen tiles. The primitive
// list and the offset/count table are shared by all batches of a frame; each
// Bin call appends one full table of Width*Height entries addressing the
// shared list.
type TileGrid struct {
	// Grid dimensions in tiles.
	//
	// 4K at 8x8 is 129'600 tiles, 1080p is 32'400 tiles.
	Width, Height uint32

	// Flattened per-tile runs of packed primitive indices.
	Primitives []encoding.PackedPrimitiveIndex
	// One run per tile, row-major, one full grid per batch.
	OffsetAndCount []OffsetAndCount

	// Scratch, kept frame-to-frame to avoid allocations.
	assigned []assignedTile
}

// Resize recomputes the grid dimensions for a viewport in physical pixels
// and clears the per-frame buffers, keeping their capacity.
func (g *TileGrid) Resize(viewport kmath.Vec2) {
	g.Width = uint32(kmath.Ceil32(viewport.X / TileSize))
	g.Height = uint32(kmath.Ceil32(viewport.Y / TileSize))

	if float32(g.Width*TileSize) < viewport.X || float32(g.Height*TileSize) < viewport.Y {
		panic(fmt.Sprintf("keith: tile grid %dx%d does not cover viewport %vx%v",
			g.Width, g.Height, viewport.X, viewport.Y))
	}

	g.Primitives = g.Primitives[:0]
	g.OffsetAndCount = slices.Grow(g.OffsetAndCount[:0], int(g.Width)*int(g.Height))
}

// Bin assigns each primitive to the tiles its bounds overlap and appends one
// offset/count table covering the whole grid. Primitives are recorded in
// their incoming order within each tile, which is the paint order.
func (g *TileGrid) Bin(prims []PreparedPrimitive, viewport kmath.Vec2) {
	tile := kmath.Vec2{X: TileSize, Y: TileSize}

	ocExtra := int32(g.Width) * int32(g.Height)

	// Guess of the average number of tiles a primitive overlaps, so we don't
	// start from a tiny allocation.
	g.assigned = slices.Grow(g.assigned, len(prims)*4)

	for i := range prims {
		prim := &prims[i]

		// Bounds in tile indices, clamped to the viewport.
		uvMin := prim.Aabb.Min.Max(kmath.Vec2{}).Min(viewport).Div(tile).Floor()
		uvMax := prim.Aabb.Max.Max(kmath.Vec2{}).Min(viewport).Div(tile).Ceil()
		minX, minY := int32(uvMin.X), int32(uvMin.Y)
		maxX, maxY := int32(uvMax.X), int32(uvMax.Y)
		// Tiles that only share an edge with the bounds have no actual
		// surface overlap.
		if prim.Aabb.Max.X == TileSize*float32(maxX) {
			maxX--
		}
		if prim.Aabb.Max.Y == TileSize*float32(maxY) {
			maxY--
		}
		// When the viewport isn't a multiple of the tile size, the ceil
		// overshoots the grid by one tile for bounds clamped to the far
		// edge. NaN bounds convert to math.MinInt32; forcing the range
		// into the grid keeps such primitives out of the run-length table
		// rather than appending tiles with negative indices.
		minX = kmath.Clamp(minX, 0, int32(g.Width))
		minY = kmath.Clamp(minY, 0, int32(g.Height))
		maxX = kmath.Clamp(maxX, minX-1, int32(g.Width)-1)
		maxY = kmath.Clamp(maxY, minY-1, int32(g.Height)-1)

		g.assigned = slices.Grow(g.assigned, int(maxY-minY+1)*int(maxX-minX+1))

		// Usually only a handful of tiles, unless the primitive covers a
		// large part of the viewport.
		for ty := minY; ty <= maxY; ty++ {
			base := ty * int32(g.Width)
			for tx := minX; tx <= maxX; tx++ {
				g.assigned = append(g.assigned, assignedTile{
					tile:  base + tx,
					index: prim.Index,
				})
			}
		}
	}

	// The sort must be stable: within a tile, primitives keep the order they
	// were drawn in, which decides what paints over what.
	slices.SortStableFunc(g.assigned, func(a, b assignedTile) int {
		return cmp.Compare(a.tile, b.tile)
	})

	g.Primitives = slices.Grow(g.Primitives, len(g.assigned))
	ti := int32(-1)
	offset := uint32(0)
	count := uint32(0)
	for _, at := range g.assigned {
		if at.tile != ti {
			if count > 0 {
				g.OffsetAndCount = append(g.OffsetAndCount, OffsetAndCount{Offset: offset, Count: count})
			}
			// Skipped tiles are empty.
			for i := ti + 1; i < at.tile; i++ {
				g.OffsetAndCount = append(g.OffsetAndCount, OffsetAndCount{Offset: offset, Count: 0})
			}
			offset = uint32(len(g.Primitives))
			count = 0
			ti = at.tile
		}

		g.Primitives = append(g.Primitives, at.index)
		count++
	}
	if count > 0 {
		g.OffsetAndCount = append(g.OffsetAndCount, OffsetAndCount{Offset: offset, Count: count})
	}
	for i := ti + 1; i < ocExtra; i++ {
		g.OffsetAndCount = append(g.OffsetAndCount, OffsetAndCount{Offset: offset, Count: 0})
	}

	g.assigned = g.assigned[:0]
}

// PrimitiveBytes returns the packed index list as raw bytes for upload.
func (g *TileGrid) PrimitiveBytes() []byte {
	return safeish.SliceCast[[]byte](g.Primitives)
}

// OffsetCountBytes returns the offset/count table as raw bytes for upload.
func (g *TileGrid) OffsetCountBytes() []byte {
	return safeish.SliceCast[[]byte](g.OffsetAndCount)
}
