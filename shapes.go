// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package keith

import (
	"honnef.co/go/curve"
	"honnef.co/go/keith/encoding"
	"honnef.co/go/keith/gfx"
)

// ShapeRef refers to a just-drawn primitive, so that a draw call can be
// extended builder style:
//
//	ctx.Fill(rect, brush).Border(2, gfx.Black)
//
// A ShapeRef is valid until the next Draw or Clear on its canvas.
type ShapeRef struct {
	prim *encoding.Primitive
}

// Border adds a border of the given width to the referenced primitive.
// Negative widths are clamped to zero. Only lines and rectangles support
// borders; for other primitives Border does nothing.
func (ref ShapeRef) Border(width float64, col gfx.Color) ShapeRef {
	switch p := (*ref.prim).(type) {
	case encoding.Line:
		p.BorderWidth = max(width, 0)
		p.BorderColor = col
		*ref.prim = p
	case encoding.Rect:
		p.BorderWidth = max(width, 0)
		p.BorderColor = col
		*ref.prim = p
	}
	return ref
}

// Shape is a shape that [RenderContext.Fill] and [RenderContext.Stroke]
// can draw.
type Shape interface {
	fill(c *Canvas, b *Brush) ShapeRef
	stroke(c *Canvas, b *Brush, thickness float64) ShapeRef
}

// Rect is an axis-aligned rectangle shape.
type Rect curve.Rect

func (r Rect) fill(c *Canvas, b *Brush) ShapeRef {
	return c.Draw(encoding.Rect{
		Rect:  curve.Rect(r),
		Color: b.Color(),
	})
}

// stroke draws the rectangle's outline as four thin rectangles. The
// horizontal edges include the corners, the vertical ones sit between
// them.
func (r Rect) stroke(c *Canvas, b *Brush, thickness float64) ShapeRef {
	eps := thickness / 2
	prim := encoding.Rect{Color: b.Color()}

	// Top, including corners
	prim.Rect = curve.Rect{X0: r.X0 - eps, Y0: r.Y0 - eps, X1: r.X1 + eps, Y1: r.Y0 + eps}
	c.Draw(prim)

	// Bottom, including corners
	prim.Rect = curve.Rect{X0: r.X0 - eps, Y0: r.Y1 - eps, X1: r.X1 + eps, Y1: r.Y1 + eps}
	c.Draw(prim)

	// Left
	prim.Rect = curve.Rect{X0: r.X0 - eps, Y0: r.Y0 + eps, X1: r.X0 + eps, Y1: r.Y1 - eps}
	c.Draw(prim)

	// Right
	prim.Rect = curve.Rect{X0: r.X1 - eps, Y0: r.Y0 + eps, X1: r.X1 + eps, Y1: r.Y1 - eps}
	return c.Draw(prim)
}

// RoundedRect is an axis-aligned rectangle with rounded corners.
type RoundedRect struct {
	// Rect is the rectangle, inclusive of the rounded corners.
	Rect curve.Rect
	// Radius is the corner radius. It is capped at the rectangle's half
	// size.
	Radius float64
}

// Circle returns a circular shape: a square of half-size radius around
// center, with fully rounded corners.
func Circle(center curve.Point, radius float64) RoundedRect {
	return RoundedRect{
		Rect: curve.Rect{
			X0: center.X - radius,
			Y0: center.Y - radius,
			X1: center.X + radius,
			Y1: center.Y + radius,
		},
		Radius: radius,
	}
}

func (r RoundedRect) fill(c *Canvas, b *Brush) ShapeRef {
	return c.Draw(encoding.Rect{
		Rect:   r.Rect,
		Radius: r.Radius,
		Color:  b.Color(),
	})
}

// stroke draws four edge rectangles between the corners and one quarter
// pie per corner.
func (r RoundedRect) stroke(c *Canvas, b *Brush, thickness float64) ShapeRef {
	eps := thickness / 2
	col := b.Color()
	rx := min(r.Radius, (r.Rect.X1-r.Rect.X0)/2)
	ry := min(r.Radius, (r.Rect.Y1-r.Rect.Y0)/2)

	prim := encoding.Rect{Color: col}

	// Top
	prim.Rect = curve.Rect{X0: r.Rect.X0 + rx, Y0: r.Rect.Y0 - eps, X1: r.Rect.X1 - rx, Y1: r.Rect.Y0 + eps}
	c.Draw(prim)

	// Bottom
	prim.Rect = curve.Rect{X0: r.Rect.X0 + rx, Y0: r.Rect.Y1 - eps, X1: r.Rect.X1 - rx, Y1: r.Rect.Y1 + eps}
	c.Draw(prim)

	// Left
	prim.Rect = curve.Rect{X0: r.Rect.X0 - eps, Y0: r.Rect.Y0 + ry, X1: r.Rect.X0 + eps, Y1: r.Rect.Y1 - ry}
	c.Draw(prim)

	// Right
	prim.Rect = curve.Rect{X0: r.Rect.X1 - eps, Y0: r.Rect.Y0 + ry, X1: r.Rect.X1 + eps, Y1: r.Rect.Y1 - ry}
	c.Draw(prim)

	// The flip flags point each pie into its corner.
	pie := encoding.QuarterPie{
		Radii: curve.Vec(rx, ry),
		Color: col,
	}

	// Top left
	pie.Origin = curve.Point{X: r.Rect.X0 + rx, Y: r.Rect.Y0 + ry}
	pie.FlipX = true
	pie.FlipY = true
	c.Draw(pie)

	// Top right
	pie.Origin = curve.Point{X: r.Rect.X1 - rx, Y: r.Rect.Y0 + ry}
	pie.FlipX = false
	pie.FlipY = true
	c.Draw(pie)

	// Bottom left
	pie.Origin = curve.Point{X: r.Rect.X0 + rx, Y: r.Rect.Y1 - ry}
	pie.FlipX = true
	pie.FlipY = false
	c.Draw(pie)

	// Bottom right
	pie.Origin = curve.Point{X: r.Rect.X1 - rx, Y: r.Rect.Y1 - ry}
	pie.FlipX = false
	pie.FlipY = false
	return c.Draw(pie)
}
