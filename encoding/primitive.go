// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package encoding

import (
	"fmt"
	"math"

	"honnef.co/go/curve"
	"honnef.co/go/keith/gfx"
	"honnef.co/go/keith/kmath"
)

// Kind selects the distance-field routine the shader evaluates a
// sub-primitive with.
type Kind uint32

const (
	KindRect       Kind = 0
	KindGlyph      Kind = 1
	KindLine       Kind = 2
	KindQuarterPie Kind = 3
)

// Rows per encoded primitive, in floats.
const (
	lineRowsBase    = 6
	lineRowsBorder  = 2
	rectRowsBase    = 6
	rectRowsTexture = 4
	rectRowsBorder  = 2
	// Glyphs are textured rects with a fixed layout.
	glyphRows      = rectRowsBase + rectRowsTexture
	quarterPieRows = 5
)

// Primitive is the closed union of shapes the renderer understands. Higher
// level geometry (rounded rect strokes, circles, whole text blocks) is
// decomposed into these before encoding.
type Primitive interface {
	isPrimitive()
	Kind() Kind
	// Textured reports whether the encoded form carries texture rows and the
	// shader should sample a texture.
	Textured() bool
	Bordered() bool
}

// Line is a straight line segment with a thickness, centered on the segment.
type Line struct {
	Start       curve.Point
	End         curve.Point
	Color       gfx.Color
	Thickness   float64
	BorderWidth float64
	BorderColor gfx.Color
}

func (Line) isPrimitive() {}

func (Line) Kind() Kind { return KindLine }

func (Line) Textured() bool { return false }

func (l Line) Bordered() bool { return l.BorderWidth > 0 }

// Rect is an axis-aligned rectangle, optionally with rounded corners, a
// texture, and a border.
type Rect struct {
	Rect   curve.Rect
	Radius float64
	Color  gfx.Color
	// Image textures the rectangle. nil means a solid fill.
	Image *gfx.Image
	// ImageSize is the rendered size of the texture in physical pixels,
	// resolved from Scaling before encoding.
	ImageSize curve.Vec2
	Scaling   ImageScaling
	FlipX     bool
	FlipY     bool

	BorderWidth float64
	BorderColor gfx.Color
}

func (Rect) isPrimitive() {}

func (Rect) Kind() Kind { return KindRect }

func (r Rect) Textured() bool { return r.Image != nil }

func (r Rect) Bordered() bool { return r.BorderWidth > 0 }

// Text references a block of shaped glyphs by index into the frame's
// resolved text slice. A Text whose ID is not (yet) resolved encodes to
// nothing.
type Text struct {
	ID uint32
	// Rect is the block's placement in logical coordinates. Glyph offsets
	// are relative to its minimum corner.
	Rect curve.Rect
}

func (Text) isPrimitive() {}

func (Text) Kind() Kind { return KindGlyph }

func (Text) Textured() bool { return true }

func (Text) Bordered() bool { return false }

// QuarterPie is one quarter of a filled ellipse. The flat edges start at
// Origin and extend by Radii; the flip flags select the quadrant.
type QuarterPie struct {
	Origin curve.Point
	Radii  curve.Vec2
	Color  gfx.Color
	FlipX  bool
	FlipY  bool
}

func (QuarterPie) isPrimitive() {}

func (QuarterPie) Kind() Kind { return KindQuarterPie }

func (QuarterPie) Textured() bool { return false }

func (QuarterPie) Bordered() bool { return false }

// Aabb returns the primitive's bounds in logical coordinates. It panics for
// Text, whose bounds exist only per glyph after resolving; callers expand
// text into glyph sub-primitives instead.
func Aabb(p Primitive) kmath.Box {
	switch p := p.(type) {
	case Line:
		dx := p.End.X - p.Start.X
		dy := p.End.Y - p.Start.Y
		length := math.Hypot(dx, dy)
		if length == 0 {
			// A zero-length line has no direction to expand the thickness
			// along. Treat it as a point so the bounds stay finite.
			pt := kmath.Vec2{X: float32(p.Start.X), Y: float32(p.Start.Y)}
			return kmath.Box{Min: pt, Max: pt}
		}
		inv := 1 / length
		// Tangent to the line, scaled by the half thickness.
		ex := -dy * inv * p.Thickness / 2
		ey := dx * inv * p.Thickness / 2
		p0 := kmath.Vec2{X: float32(p.Start.X + ex), Y: float32(p.Start.Y + ey)}
		p1 := kmath.Vec2{X: float32(p.Start.X - ex), Y: float32(p.Start.Y - ey)}
		p2 := kmath.Vec2{X: float32(p.End.X + ex), Y: float32(p.End.Y + ey)}
		p3 := kmath.Vec2{X: float32(p.End.X - ex), Y: float32(p.End.Y - ey)}
		return kmath.Box{
			Min: p0.Min(p1).Min(p2).Min(p3),
			Max: p0.Max(p1).Max(p2).Max(p3),
		}
	case Rect:
		return kmath.FromRect(p.Rect)
	case Text:
		panic("keith: text bounds require resolved glyph data")
	case QuarterPie:
		return kmath.Box{
			Min: kmath.Vec2{
				X: float32(p.Origin.X - p.Radii.X),
				Y: float32(p.Origin.Y - p.Radii.Y),
			},
			Max: kmath.Vec2{
				X: float32(p.Origin.X + p.Radii.X),
				Y: float32(p.Origin.Y + p.Radii.Y),
			},
		}
	default:
		panic(fmt.Sprintf("unhandled primitive %T", p))
	}
}

// PrimitiveInfo describes a primitive's encoded shape: SubPrimCount
// sub-primitives of RowCount floats each.
type PrimitiveInfo struct {
	RowCount     uint32
	SubPrimCount uint32
}

// Info returns the encoded shape of p. Text primitives resolve against
// texts; an unresolved ID yields the zero info and the primitive is skipped.
func Info(p Primitive, texts []ResolvedText) PrimitiveInfo {
	switch p := p.(type) {
	case Line:
		rows := uint32(lineRowsBase)
		if p.Bordered() {
			rows += lineRowsBorder
		}
		return PrimitiveInfo{RowCount: rows, SubPrimCount: 1}
	case Rect:
		rows := uint32(rectRowsBase)
		if p.Textured() {
			rows += rectRowsTexture
		}
		if p.Bordered() {
			rows += rectRowsBorder
		}
		return PrimitiveInfo{RowCount: rows, SubPrimCount: 1}
	case Text:
		if int64(p.ID) >= int64(len(texts)) {
			return PrimitiveInfo{}
		}
		return PrimitiveInfo{
			RowCount:     glyphRows,
			SubPrimCount: uint32(len(texts[p.ID].Glyphs)),
		}
	case QuarterPie:
		return PrimitiveInfo{RowCount: quarterPieRows, SubPrimCount: 1}
	default:
		panic(fmt.Sprintf("unhandled primitive %T", p))
	}
}

// ImageScaling determines how a textured rectangle's image is sized relative
// to the rectangle. The zero value (a nil interface) behaves like
// Uniform{Ratio: 1}.
type ImageScaling interface {
	isImageScaling()
}

// Uniform scales the image by a fixed factor, independent of the rectangle.
type Uniform struct {
	Ratio float64
}

func (Uniform) isImageScaling() {}

// FitWidth scales the image to the rectangle's width. The height keeps the
// image's aspect ratio unless StretchHeight is set.
type FitWidth struct {
	StretchHeight bool
}

func (FitWidth) isImageScaling() {}

// FitHeight scales the image to the rectangle's height. The width keeps the
// image's aspect ratio unless StretchWidth is set.
type FitHeight struct {
	StretchWidth bool
}

func (FitHeight) isImageScaling() {}

// Fit scales the image to the rectangle's width or height, whichever keeps
// the whole image visible. The other axis keeps the image's aspect ratio
// unless Stretch is set.
type Fit struct {
	Stretch bool
}

func (Fit) isImageScaling() {}

// Stretch scales both axes to the rectangle, ignoring the image's aspect
// ratio.
type Stretch struct{}

func (Stretch) isImageScaling() {}
