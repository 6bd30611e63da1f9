// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Package renderer prepares a frame's primitives for the tile shader: it
// encodes them into the shared float buffer, groups them into
// texture-compatible batches, and bins each batch into screen tiles.
package renderer

import (
	"fmt"
	"iter"

	"honnef.co/go/curve"
	"honnef.co/go/keith/encoding"
	"honnef.co/go/keith/gfx"
	"honnef.co/go/keith/kmath"
)

// Params configures the preparation of one frame.
type Params struct {
	// Viewport is the render target size in physical pixels.
	Viewport kmath.Vec2
	// Scale converts logical coordinates to physical pixels.
	Scale float32
	// CanvasRect is the drawable area in logical coordinates. Its minimum
	// corner maps to the viewport's origin.
	CanvasRect curve.Rect
	// OffsetAlignment aligns each batch's window into the offset/count
	// table, in table entries. Pass the device's storage buffer offset
	// alignment limit.
	OffsetAlignment uint32
}

// Stats summarizes the outcome of Prepare.
type Stats struct {
	// Primitives drawn on the canvas.
	Primitives int
	// Sub-primitives after expanding text to glyphs.
	SubPrimitives int
	Batches       int
	// Entries appended to the offset/count table, including alignment
	// padding.
	TileEntries int
}

// PreparedCanvas holds a frame's worth of GPU-ready draw data. The zero
// value is ready for use; keep the value across frames to reuse its buffers.
type PreparedCanvas struct {
	Encoding encoding.Encoding
	Tiles    TileGrid
	Batches  []Batch
	Stats    Stats

	prepared []PreparedPrimitive
}

func (pc *PreparedCanvas) Reset() {
	pc.Encoding.Reset()
	pc.Batches = pc.Batches[:0]
	pc.prepared = pc.prepared[:0]
	pc.Stats = Stats{}
}

// IsEmpty reports whether the frame has nothing to draw. Primitives may have
// been prepared and still produce an empty frame if none overlaps a tile.
func (pc *PreparedCanvas) IsEmpty() bool {
	return len(pc.Tiles.Primitives) == 0
}

// Prepare encodes prims in draw order, expands text primitives into glyph
// sub-primitives resolved against texts, batches consecutive
// texture-compatible sub-primitives, and bins each batch. Earlier state is
// discarded.
func (pc *PreparedCanvas) Prepare(prims []encoding.Primitive, texts []encoding.ResolvedText, params Params) {
	if params.Viewport.X <= 0 || params.Viewport.Y <= 0 {
		panic(fmt.Sprintf("keith: viewport %vx%v is empty", params.Viewport.X, params.Viewport.Y))
	}
	if params.OffsetAlignment == 0 {
		panic("keith: Params.OffsetAlignment must be at least 1")
	}

	pc.Reset()
	pc.Tiles.Resize(params.Viewport)

	translation := curve.Vec(-params.CanvasRect.X0, -params.CanvasRect.Y0)
	// The canvas origin in physical pixels.
	origin := kmath.FromVec(translation).Mul(params.Scale)
	invScale := 1 / params.Scale

	var current Batch
	currentValid := false
	ppOffset := 0
	ocOffset := uint32(0)

	// Emits the current batch: bins its sub-primitives and records its
	// window into the offset/count table.
	flush := func() {
		pc.Tiles.Bin(pc.prepared[ppOffset:], params.Viewport)
		ocCount := uint32(len(pc.Tiles.OffsetAndCount)) - ocOffset
		current.Window = OffsetCountWindow{Offset: ocOffset, Count: ocCount}
		pc.Batches = append(pc.Batches, current)
		ocOffset += ocCount
		ppOffset = len(pc.prepared)
	}

	for _, prim := range prims {
		base := uint32(len(pc.Encoding.Floats))
		index := encoding.NewPackedPrimitiveIndex(base, prim.Kind(), prim.Textured(), prim.Bordered())

		info := encoding.Info(prim, texts)
		if info.RowCount > 0 && info.SubPrimCount > 0 {
			dst := pc.Encoding.Reserve(int(info.RowCount) * int(info.SubPrimCount))
			encoding.EncodePrimitive(prim, texts, translation, params.Scale, dst)
		}
		pc.Stats.Primitives++

		// Text expands to one sub-primitive per glyph, each of which can
		// have a separate atlas texture and thus split the batch.
		for img, aabb := range subPrimitives(prim, texts, invScale) {
			aabb = aabb.Scale(params.Scale).Offset(origin)

			if currentValid && !current.tryMerge(img) {
				// Incompatible texture; emit the batch under construction
				// and pad the table so the next window starts aligned.
				flush()
				ocOffset = kmath.AlignUp32(ocOffset, params.OffsetAlignment)
				for uint32(len(pc.Tiles.OffsetAndCount)) < ocOffset {
					pc.Tiles.OffsetAndCount = append(pc.Tiles.OffsetAndCount, OffsetAndCount{})
				}
				currentValid = false
			}
			if !currentValid {
				current = Batch{Image: img}
				currentValid = true
			}

			pc.prepared = append(pc.prepared, PreparedPrimitive{Aabb: aabb, Index: index})
			// Consecutive sub-primitives advance through the rows glyph by
			// glyph; the packed flag bits are unaffected.
			index += encoding.PackedPrimitiveIndex(info.RowCount)
			pc.Stats.SubPrimitives++
		}
	}

	if currentValid {
		flush()
	}

	pc.Stats.Batches = len(pc.Batches)
	pc.Stats.TileEntries = len(pc.Tiles.OffsetAndCount)
}

// subPrimitives yields each sub-primitive's texture and bounds in logical
// coordinates. Non-text primitives yield themselves once. Text yields one
// entry per resolved glyph, converting the glyph's physical-pixel geometry
// back to logical coordinates; unresolved text yields nothing.
func subPrimitives(p encoding.Primitive, texts []encoding.ResolvedText, invScale float32) iter.Seq2[*gfx.Image, kmath.Box] {
	return func(yield func(*gfx.Image, kmath.Box) bool) {
		switch p := p.(type) {
		case encoding.Text:
			if int64(p.ID) >= int64(len(texts)) {
				// Not resolved yet.
				return
			}
			rectMin := kmath.Vec2{X: float32(p.Rect.X0), Y: float32(p.Rect.Y0)}
			glyphs := texts[p.ID].Glyphs
			for i := range glyphs {
				g := &glyphs[i]
				aabb := kmath.Box{
					Min: rectMin.Add(g.Offset.Mul(invScale)),
					Max: rectMin.Add(g.Offset.Add(g.Size).Mul(invScale)),
				}
				if !yield(g.Image, aabb) {
					return
				}
			}
		case encoding.Rect:
			yield(p.Image, encoding.Aabb(p))
		default:
			yield(nil, encoding.Aabb(p))
		}
	}
}
