// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package keith

import (
	"honnef.co/go/curve"
	"honnef.co/go/keith/encoding"
	"honnef.co/go/keith/gfx"
	"honnef.co/go/keith/text"
)

// Canvas is a drawing surface. Primitives accumulate on it in draw order
// until Clear is called, typically once at the start of a frame. Each
// canvas owns its primitives and text layouts; nothing is shared between
// canvases.
type Canvas struct {
	rect       curve.Rect
	background option[gfx.Color]
	prims      []encoding.Primitive
	layouts    []text.Layout
}

// NewCanvas creates a canvas covering rect, in logical coordinates.
func NewCanvas(rect curve.Rect) *Canvas {
	return &Canvas{rect: rect}
}

// SetRect changes the area covered by the canvas. Primitives already drawn
// keep their coordinates.
func (c *Canvas) SetRect(rect curve.Rect) {
	c.rect = rect
}

func (c *Canvas) Rect() curve.Rect {
	return c.rect
}

// SetBackground makes Clear paint the whole canvas in the given color
// instead of leaving it transparent.
func (c *Canvas) SetBackground(col gfx.Color) {
	c.background.set(col)
}

// ClearBackground undoes SetBackground.
func (c *Canvas) ClearBackground() {
	c.background.clear()
}

// Clear discards all primitives and text layouts drawn on the canvas. If a
// background color is set, the background becomes the first primitive of
// the next frame.
func (c *Canvas) Clear() {
	c.prims = c.prims[:0]
	c.layouts = c.layouts[:0]
	if c.background.isSet {
		c.Draw(encoding.Rect{Rect: c.rect, Color: c.background.value})
	}
}

// Draw appends a primitive to the canvas. This is the low level entry
// point for drawing; in general, prefer acquiring a [RenderContext] and
// drawing through it.
func (c *Canvas) Draw(p encoding.Primitive) ShapeRef {
	c.prims = append(c.prims, p)
	return ShapeRef{prim: &c.prims[len(c.prims)-1]}
}

// RenderContext returns a new render context to draw on the canvas.
func (c *Canvas) RenderContext() *RenderContext {
	return &RenderContext{canvas: c}
}

// Primitives returns the primitives drawn since the last Clear, in draw
// order. The slice is valid until the next Draw or Clear.
func (c *Canvas) Primitives() []encoding.Primitive {
	return c.prims
}

// Layouts returns the text layouts built since the last Clear, indexed by
// their ID.
func (c *Canvas) Layouts() []text.Layout {
	return c.layouts
}

func (c *Canvas) finishLayout(l text.Layout) uint32 {
	id := uint32(len(c.layouts))
	c.layouts = append(c.layouts, l)
	return id
}
