package keith

import (
	"honnef.co/go/curve"
	"honnef.co/go/keith/encoding"
	"honnef.co/go/keith/gfx"
	"honnef.co/go/keith/text"
)

// Brush describes how shapes are painted. Only solid colors for now.
type Brush struct {
	color gfx.Color
}

func (b *Brush) Color() gfx.Color {
	return b.color
}

// RenderContext provides the high level drawing API on top of a [Canvas].
type RenderContext struct {
	canvas *Canvas
}

// SolidBrush creates a brush painting a single color.
func (rc *RenderContext) SolidBrush(col gfx.Color) *Brush {
	return &Brush{color: col}
}

// Clear fills region with a color. A nil region clears the whole canvas,
// discarding all primitives like [Canvas.Clear] does, before filling it.
func (rc *RenderContext) Clear(region *curve.Rect, col gfx.Color) {
	if region != nil {
		// TODO(dh): drop primitives fully covered by the region
		rc.Fill(Rect(*region), rc.SolidBrush(col))
		return
	}
	rc.canvas.Clear()
	rc.Fill(Rect(rc.canvas.Rect()), rc.SolidBrush(col))
}

// Fill fills a shape with a brush.
func (rc *RenderContext) Fill(shape Shape, brush *Brush) ShapeRef {
	return shape.fill(rc.canvas, brush)
}

// Stroke draws a shape's outline with a brush. The stroke is centered on
// the outline, extending by half the thickness on each side. For a large
// shape this touches far fewer tiles than a fill with a border, because
// the inside of the shape stays empty.
func (rc *RenderContext) Stroke(shape Shape, brush *Brush, thickness float64) ShapeRef {
	return shape.stroke(rc.canvas, brush, thickness)
}

// Line draws a line between two points. The thickness is centered on the
// segment, extending by half on each side.
func (rc *RenderContext) Line(p0, p1 curve.Point, brush *Brush, thickness float64) ShapeRef {
	return rc.canvas.Draw(encoding.Line{
		Start:     p0,
		End:       p1,
		Color:     brush.Color(),
		Thickness: thickness,
	})
}

// DrawImage draws an image inside rect, centered on it and sized according
// to scaling.
func (rc *RenderContext) DrawImage(rect curve.Rect, img *gfx.Image, scaling encoding.ImageScaling) ShapeRef {
	return rc.canvas.Draw(encoding.Rect{
		Rect:    rect,
		Color:   gfx.White,
		Image:   img,
		Scaling: scaling,
	})
}

// NewLayout starts building a text layout for the context's canvas.
func (rc *RenderContext) NewLayout(s string) *LayoutBuilder {
	return &LayoutBuilder{
		canvas: rc.canvas,
		layout: text.Layout{
			Text:  s,
			Size:  16,
			Color: gfx.White,
		},
	}
}

// DrawText draws a text layout built on this canvas at the given position.
// The layout's anchor selects the point of the text block that ends up at
// pos.
func (rc *RenderContext) DrawText(id uint32, pos curve.Point) {
	rc.canvas.Draw(encoding.Text{
		ID:   id,
		Rect: curve.Rect{X0: pos.X, Y0: pos.Y, X1: pos.X, Y1: pos.Y},
	})
}

// LayoutBuilder configures a text layout. The defaults are white text at
// size 16, anchored at its center, left aligned and unbounded.
type LayoutBuilder struct {
	canvas *Canvas
	layout text.Layout
}

func (b *LayoutBuilder) Font(f *text.Font) *LayoutBuilder {
	b.layout.Font = f
	return b
}

// FontSize sets the font size in logical pixels.
func (b *LayoutBuilder) FontSize(size float64) *LayoutBuilder {
	b.layout.Size = size
	return b
}

func (b *LayoutBuilder) Color(col gfx.Color) *LayoutBuilder {
	b.layout.Color = col
	return b
}

// Bounds limits the block size. Text wraps at word boundaries to fit the
// width, and lines past the height are dropped. Axes that are zero or
// negative leave the block unbounded.
func (b *LayoutBuilder) Bounds(bounds curve.Vec2) *LayoutBuilder {
	b.layout.Bounds = bounds
	return b
}

func (b *LayoutBuilder) Anchor(a text.Anchor) *LayoutBuilder {
	b.layout.Anchor = a
	return b
}

func (b *LayoutBuilder) Alignment(a text.Alignment) *LayoutBuilder {
	b.layout.Alignment = a
	return b
}

// Build finalizes the layout and returns its ID for [RenderContext.DrawText].
func (b *LayoutBuilder) Build() uint32 {
	return b.canvas.finishLayout(b.layout)
}
