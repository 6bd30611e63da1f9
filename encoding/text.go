// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package encoding

import (
	"honnef.co/go/keith/gfx"
	"honnef.co/go/keith/kmath"
)

// AtlasSize is the width and height of the glyph atlas texture in pixels.
// Glyph UV rectangles are stored in atlas pixels and normalized by this
// value when encoded.
const AtlasSize = 1024

// ResolvedText is the shaped, rasterized form of one text block for the
// current frame. Text primitives reference it by slice index.
type ResolvedText struct {
	Glyphs []ResolvedGlyph
}

// ResolvedGlyph is one positioned glyph.
type ResolvedGlyph struct {
	// Offset is the glyph quad's position in physical pixels, relative to
	// the text block's minimum corner.
	Offset kmath.Vec2
	// Size is the glyph quad's size in physical pixels.
	Size kmath.Vec2
	// Color is the packed linear RGBA fill color.
	Color uint32
	// UVRect is the glyph's region in the atlas, in atlas pixels.
	UVRect kmath.Box
	// Image is the atlas texture holding the glyph.
	Image *gfx.Image
}
