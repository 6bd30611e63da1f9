// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package text

import (
	"image"
	"image/draw"

	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"honnef.co/go/keith/encoding"
	"honnef.co/go/keith/gfx"
	"honnef.co/go/keith/kmath"
)

// glyphKey identifies one rasterized glyph sprite. Font sizes are whole
// physical pixels so that layouts at nearly identical sizes share sprites.
type glyphKey struct {
	font *Font
	gid  sfnt.GlyphIndex
	size int32
}

// atlasGlyph locates one glyph sprite in the atlas.
type atlasGlyph struct {
	// uv is the sprite's region in atlas pixels, including the one pixel
	// transparent border around the outline.
	uv kmath.Box
	// min is the outline bounding box minimum relative to the pen position,
	// excluding the border.
	min kmath.Vec2
}

// Atlas caches rasterized glyph sprites in a single texture shared by all
// fonts and sizes. Sprites are placed by a shelf packer and never evicted;
// once the atlas is full, further new glyphs are dropped with a warning.
type Atlas struct {
	image  *gfx.Image
	pixels *image.RGBA
	glyphs map[glyphKey]*atlasGlyph

	// Shelf packer state. packX, packY is the free position in the current
	// shelf, shelf the height of its tallest sprite.
	packX, packY, shelf int

	dirty image.Rectangle

	buf sfnt.Buffer
	ras vector.Rasterizer // reuse
}

func NewAtlas() *Atlas {
	pixels := image.NewRGBA(image.Rect(0, 0, encoding.AtlasSize, encoding.AtlasSize))
	return &Atlas{
		image:  gfx.NewImage(pixels),
		pixels: pixels,
		glyphs: map[glyphKey]*atlasGlyph{},
	}
}

// Image returns the atlas texture. Its identity never changes for the
// lifetime of the atlas, only the pixel contents do.
func (a *Atlas) Image() *gfx.Image {
	return a.image
}

// TakeDirty returns the region modified since the last call and resets it.
// The engine uploads this region to the GPU each frame.
func (a *Atlas) TakeDirty() image.Rectangle {
	d := a.dirty
	a.dirty = image.Rectangle{}
	return d
}

// glyph returns the sprite for the given glyph, rasterizing and packing it
// on first use. It returns nil both for glyphs without a visible outline,
// such as spaces, and for glyphs that no longer fit into the atlas.
func (a *Atlas) glyph(f *Font, gid sfnt.GlyphIndex, size int32) *atlasGlyph {
	key := glyphKey{font: f, gid: gid, size: size}
	if g, ok := a.glyphs[key]; ok {
		return g
	}
	g, full := a.insert(f, gid, size)
	if full {
		if l := logger.Load(); l != nil {
			l.Warn("glyph atlas is full, skipping glyph", "glyph", int(gid), "size", int(size))
		}
		// Not cached, so the glyph gets another chance should it come back
		// at a size that still fits.
		return nil
	}
	a.glyphs[key] = g
	return g
}

func (a *Atlas) insert(f *Font, gid sfnt.GlyphIndex, size int32) (g *atlasGlyph, full bool) {
	segs, err := f.outline.LoadGlyph(&a.buf, gid, fixed.Int26_6(size*64), nil)
	if err != nil || len(segs) == 0 {
		// Spaces and other blank glyphs have no outline. They still advance
		// the pen, they just don't produce a sprite.
		return nil, false
	}

	minX, minY, maxX, maxY := segmentBounds(segs)
	w := maxX - minX
	h := maxY - minY
	if w <= 0 || h <= 0 {
		return nil, false
	}

	// The sprite carries a one pixel transparent border around the outline.
	x, y, ok := a.pack(w+2, h+2)
	if !ok {
		return nil, true
	}

	a.ras.Reset(w+2, h+2)
	a.ras.DrawOp = draw.Src
	dx := float32(1 - minX)
	dy := float32(1 - minY)
	for _, seg := range segs {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			a.ras.MoveTo(
				fixedToFloat(seg.Args[0].X)+dx, fixedToFloat(seg.Args[0].Y)+dy)
		case sfnt.SegmentOpLineTo:
			a.ras.LineTo(
				fixedToFloat(seg.Args[0].X)+dx, fixedToFloat(seg.Args[0].Y)+dy)
		case sfnt.SegmentOpQuadTo:
			a.ras.QuadTo(
				fixedToFloat(seg.Args[0].X)+dx, fixedToFloat(seg.Args[0].Y)+dy,
				fixedToFloat(seg.Args[1].X)+dx, fixedToFloat(seg.Args[1].Y)+dy)
		case sfnt.SegmentOpCubeTo:
			a.ras.CubeTo(
				fixedToFloat(seg.Args[0].X)+dx, fixedToFloat(seg.Args[0].Y)+dy,
				fixedToFloat(seg.Args[1].X)+dx, fixedToFloat(seg.Args[1].Y)+dy,
				fixedToFloat(seg.Args[2].X)+dx, fixedToFloat(seg.Args[2].Y)+dy)
		}
	}
	mask := image.NewAlpha(image.Rect(0, 0, w+2, h+2))
	a.ras.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	// Blit the coverage into the atlas as premultiplied white.
	for yy := 0; yy < h+2; yy++ {
		mrow := mask.Pix[yy*mask.Stride : yy*mask.Stride+w+2]
		arow := a.pixels.Pix[(y+yy)*a.pixels.Stride+x*4:]
		for xx, c := range mrow {
			arow[xx*4+0] = c
			arow[xx*4+1] = c
			arow[xx*4+2] = c
			arow[xx*4+3] = c
		}
	}
	a.dirty = a.dirty.Union(image.Rect(x, y, x+w+2, y+h+2))

	return &atlasGlyph{
		uv: kmath.Box{
			Min: kmath.Vec2{X: float32(x), Y: float32(y)},
			Max: kmath.Vec2{X: float32(x + w + 2), Y: float32(y + h + 2)},
		},
		min: kmath.Vec2{X: float32(minX), Y: float32(minY)},
	}, false
}

// pack finds room for a w×h sprite, opening a new shelf when the current one
// is exhausted.
func (a *Atlas) pack(w, h int) (x, y int, ok bool) {
	if a.packX+w > encoding.AtlasSize {
		a.packX = 0
		a.packY += a.shelf + 1
		a.shelf = 0
	}
	if a.packX+w > encoding.AtlasSize || a.packY+h > encoding.AtlasSize {
		return 0, 0, false
	}
	x, y = a.packX, a.packY
	a.packX += w + 1
	a.shelf = max(a.shelf, h)
	return x, y, true
}

// segmentBounds returns the outline's pixel bounding box. Control points of
// curve segments are included, making the box conservative.
func segmentBounds(segs sfnt.Segments) (minX, minY, maxX, maxY int) {
	bmin := fixed.Point26_6{X: 1<<31 - 1, Y: 1<<31 - 1}
	bmax := fixed.Point26_6{X: -(1<<31 - 1), Y: -(1<<31 - 1)}
	grow := func(p fixed.Point26_6) {
		bmin.X = min(bmin.X, p.X)
		bmin.Y = min(bmin.Y, p.Y)
		bmax.X = max(bmax.X, p.X)
		bmax.Y = max(bmax.Y, p.Y)
	}
	for _, seg := range segs {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo, sfnt.SegmentOpLineTo:
			grow(seg.Args[0])
		case sfnt.SegmentOpQuadTo:
			grow(seg.Args[0])
			grow(seg.Args[1])
		case sfnt.SegmentOpCubeTo:
			grow(seg.Args[0])
			grow(seg.Args[1])
			grow(seg.Args[2])
		}
	}
	return floorFixed(bmin.X), floorFixed(bmin.Y), ceilFixed(bmax.X), ceilFixed(bmax.Y)
}

func floorFixed(v fixed.Int26_6) int {
	return int(v >> 6)
}

func ceilFixed(v fixed.Int26_6) int {
	return int((v + 63) >> 6)
}

func fixedToFloat(v fixed.Int26_6) float32 {
	return float32(v) / 64
}
