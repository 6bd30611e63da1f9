// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package renderer

import (
	"honnef.co/go/keith/gfx"
)

// OffsetCountWindow is a batch's view of the shared offset/count table: the
// Count entries starting at entry Offset belong to the batch and cover the
// whole tile grid.
type OffsetCountWindow struct {
	Offset uint32
	Count  uint32
}

// Batch groups consecutive sub-primitives that can be drawn with a single
// draw call. Sub-primitives are compatible when they use the same texture or
// no texture at all; a batch's Image is nil if every sub-primitive in it is
// untextured.
type Batch struct {
	Image  *gfx.Image
	Window OffsetCountWindow
}

// tryMerge reports whether a sub-primitive using img can join the batch, and
// adopts img as the batch texture if the batch doesn't have one yet.
func (b *Batch) tryMerge(img *gfx.Image) bool {
	if img == nil || b.Image == nil || gfx.SameImage(b.Image, img) {
		if b.Image == nil {
			b.Image = img
		}
		return true
	}
	return false
}
