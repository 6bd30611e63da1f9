// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Package encoding turns primitives into the flat float32 buffer and packed
// index format consumed by the tile shader.
package encoding

import (
	"fmt"
	"math"
	"slices"

	"honnef.co/go/curve"
	"honnef.co/go/keith/gfx"
	"honnef.co/go/keith/kmath"
	"honnef.co/go/safeish"
)

// Encoding accumulates the encoded rows of all primitives drawn in a frame.
// Rows are float32 values; colors are packed 32-bit linear RGBA reinterpreted
// as floats, so a single storage buffer serves the whole frame.
type Encoding struct {
	Floats []float32
}

func (enc *Encoding) IsEmpty() bool {
	return len(enc.Floats) == 0
}

// Reset truncates the buffer, keeping its capacity for the next frame.
func (enc *Encoding) Reset() {
	enc.Floats = enc.Floats[:0]
}

// Reserve appends n zeroed rows and returns them for the caller to fill.
// The returned slice is only valid until the next call that appends to the
// encoding.
func (enc *Encoding) Reserve(n int) []float32 {
	old := len(enc.Floats)
	enc.Floats = slices.Grow(enc.Floats, n)[:old+n]
	window := enc.Floats[old:]
	clear(window)
	return window
}

// Bytes returns the buffer's contents as raw bytes for upload.
func (enc *Encoding) Bytes() []byte {
	return safeish.SliceCast[[]byte](enc.Floats)
}

// EncodePrimitive writes p's rows into dst, which must have been sized
// according to Info. Logical coordinates are translated by translation and
// scaled by scale into physical pixels.
func EncodePrimitive(p Primitive, texts []ResolvedText, translation curve.Vec2, scale float32, dst []float32) {
	switch p := p.(type) {
	case Line:
		encodeLine(p, translation, scale, dst)
	case Rect:
		encodeRect(p, translation, scale, dst)
	case Text:
		encodeText(p, texts, translation, scale, dst)
	case QuarterPie:
		encodeQuarterPie(p, translation, scale, dst)
	default:
		panic(fmt.Sprintf("unhandled primitive %T", p))
	}
}

func colorBits(c gfx.Color) float32 {
	return math.Float32frombits(c.PackedLinear())
}

func assertRows(what string, got, want int) {
	if got != want {
		panic(fmt.Sprintf("keith: invalid buffer size %d to encode %s (needs %d)", got, what, want))
	}
}

func encodeLine(p Line, translation curve.Vec2, scale float32, dst []float32) {
	assertRows("line", len(dst), int(Info(p, nil).RowCount))
	s := float64(scale)
	dst[0] = float32((p.Start.X + translation.X) * s)
	dst[1] = float32((p.Start.Y + translation.Y) * s)
	dst[2] = float32((p.End.X + translation.X) * s)
	dst[3] = float32((p.End.Y + translation.Y) * s)
	dst[4] = colorBits(p.Color)
	dst[5] = float32(p.Thickness * s)
	if p.Bordered() {
		dst[6] = float32(p.BorderWidth * s)
		dst[7] = colorBits(p.BorderColor)
	}
}

func encodeRect(p Rect, translation curve.Vec2, scale float32, dst []float32) {
	assertRows("rect", len(dst), int(Info(p, nil).RowCount))
	s := float64(scale)
	halfMinX := p.Rect.X0 * 0.5 * s
	halfMinY := p.Rect.Y0 * 0.5 * s
	halfMaxX := p.Rect.X1 * 0.5 * s
	halfMaxY := p.Rect.Y1 * 0.5 * s
	dst[0] = float32(halfMinX + halfMaxX + translation.X*s)
	dst[1] = float32(halfMinY + halfMaxY + translation.Y*s)
	dst[2] = float32(halfMaxX - halfMinX)
	dst[3] = float32(halfMaxY - halfMinY)
	dst[4] = float32(p.Radius * s)
	dst[5] = colorBits(p.Color)
	idx := rectRowsBase
	if p.Textured() {
		// UV offset at the rect center, then the scale from physical pixels
		// to the image's normalized UV space.
		dst[idx+0] = 0.5
		dst[idx+1] = 0.5
		dst[idx+2] = float32(1 / p.ImageSize.X)
		dst[idx+3] = float32(1 / p.ImageSize.Y)
		idx += rectRowsTexture
	}
	if p.Bordered() {
		dst[idx+0] = float32(p.BorderWidth * s)
		dst[idx+1] = colorBits(p.BorderColor)
	}
}

func encodeText(p Text, texts []ResolvedText, translation curve.Vec2, scale float32, dst []float32) {
	glyphs := texts[p.ID].Glyphs
	assertRows("text", len(dst), len(glyphs)*glyphRows)
	s := float64(scale)
	ip := 0
	for i := range glyphs {
		g := &glyphs[i]
		x := g.Offset.X + float32((p.Rect.X0+translation.X)*s)
		y := g.Offset.Y + float32((p.Rect.Y0+translation.Y)*s)
		hw := g.Size.X / 2
		hh := g.Size.Y / 2

		uvX := g.UVRect.Min.X / AtlasSize
		uvY := g.UVRect.Min.Y / AtlasSize
		uvW := g.UVRect.Max.X/AtlasSize - uvX
		uvH := g.UVRect.Max.Y/AtlasSize - uvY

		// The glyph quad is rounded to the pixel grid. Off-grid quads would
		// sample UVs outside the glyph's 1px rasterization border, bleeding
		// into neighboring atlas entries.
		dst[ip+0] = kmath.Round32(x) + hw
		dst[ip+1] = kmath.Round32(y) + hh
		dst[ip+2] = hw
		dst[ip+3] = hh
		dst[ip+4] = 0
		dst[ip+5] = math.Float32frombits(g.Color)
		dst[ip+6] = uvX + uvW/2
		dst[ip+7] = uvY + uvH/2
		dst[ip+8] = 1.0 / AtlasSize
		dst[ip+9] = 1.0 / AtlasSize

		ip += glyphRows
	}
}

func encodeQuarterPie(p QuarterPie, translation curve.Vec2, scale float32, dst []float32) {
	assertRows("quarter pie", len(dst), quarterPieRows)
	s := float64(scale)
	rx, ry := p.Radii.X, p.Radii.Y
	if p.FlipX {
		rx = -rx
	}
	if p.FlipY {
		ry = -ry
	}
	dst[0] = float32((p.Origin.X + translation.X) * s)
	dst[1] = float32((p.Origin.Y + translation.Y) * s)
	dst[2] = float32(rx * s)
	dst[3] = float32(ry * s)
	dst[4] = colorBits(p.Color)
}
