// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package text

import (
	"testing"

	"honnef.co/go/curve"
	"honnef.co/go/keith/gfx"
	"honnef.co/go/keith/kmath"
)

func TestProcessOnePerLayout(t *testing.T) {
	f := testFont(t)
	p := NewPipeline()
	layouts := []Layout{
		{Text: "hi", Size: 16},
		{Text: "hi", Font: f, Size: 16, Color: gfx.White},
		{Text: "", Font: f, Size: 16},
		{Text: "hi", Font: f, Size: 0},
	}
	out := p.Process(layouts, 1)
	if len(out) != len(layouts) {
		t.Fatalf("len(out) = %d, want %d", len(out), len(layouts))
	}
	for _, i := range []int{0, 2, 3} {
		if n := len(out[i].Glyphs); n != 0 {
			t.Errorf("layout %d resolved to %d glyphs, want none", i, n)
		}
	}
	if n := len(out[1].Glyphs); n != 2 {
		t.Fatalf("layout 1 resolved to %d glyphs, want 2", n)
	}
	for i, g := range out[1].Glyphs {
		if g.Image != p.Atlas().Image() {
			t.Errorf("glyph %d references image %v, want the atlas", i, g.Image)
		}
		if g.Size.X <= 0 || g.Size.Y <= 0 {
			t.Errorf("glyph %d has size %v", i, g.Size)
		}
		if g.Color != gfx.White.PackedLinear() {
			t.Errorf("glyph %d color = %#08x, want %#08x", i, g.Color, gfx.White.PackedLinear())
		}
	}
}

func TestProcessSkipsWhitespace(t *testing.T) {
	f := testFont(t)
	p := NewPipeline()
	out := p.Process([]Layout{{Text: "a b", Font: f, Size: 16, Color: gfx.White}}, 1)
	if n := len(out[0].Glyphs); n != 2 {
		t.Fatalf("%q resolved to %d glyphs, want 2", "a b", n)
	}
	// The space still advances the pen.
	if g := out[0].Glyphs; g[1].Offset.X <= g[0].Offset.X+g[0].Size.X-2 {
		t.Errorf("second glyph at %v does not clear the first at %v+%v",
			g[1].Offset, g[0].Offset, g[0].Size)
	}
}

func TestProcessAnchor(t *testing.T) {
	f := testFont(t)
	p := NewPipeline()
	layout := func(a Anchor) Layout {
		return Layout{Text: "keith", Font: f, Size: 24, Color: gfx.White, Anchor: a}
	}
	tl := p.Process([]Layout{layout(AnchorTopLeft)}, 1)[0].Glyphs
	br := p.Process([]Layout{layout(AnchorBottomRight)}, 1)[0].Glyphs
	ct := p.Process([]Layout{layout(AnchorCenter)}, 1)[0].Glyphs
	if len(tl) == 0 || len(tl) != len(br) || len(tl) != len(ct) {
		t.Fatalf("glyph counts differ: %d, %d, %d", len(tl), len(br), len(ct))
	}

	// Anchoring translates the block as a whole; opposite corners differ by
	// exactly the typographic size, and the center sits halfway.
	delta := tl[0].Offset.Sub(br[0].Offset)
	if delta.X <= 0 || delta.Y <= 0 {
		t.Errorf("bottom right anchored text is not above and left of top left anchored text: %v", delta)
	}
	for i := range tl {
		d := tl[i].Offset.Sub(br[i].Offset)
		if kmath.Abs32(d.X-delta.X) > 1e-3 || kmath.Abs32(d.Y-delta.Y) > 1e-3 {
			t.Errorf("glyph %d translated by %v, glyph 0 by %v", i, d, delta)
		}
		mid := tl[i].Offset.Add(br[i].Offset).Mul(0.5)
		if kmath.Abs32(mid.X-ct[i].Offset.X) > 1e-3 || kmath.Abs32(mid.Y-ct[i].Offset.Y) > 1e-3 {
			t.Errorf("glyph %d center anchor at %v, want %v", i, ct[i].Offset, mid)
		}
	}
}

func TestProcessMultiline(t *testing.T) {
	f := testFont(t)
	p := NewPipeline()
	out := p.Process([]Layout{{
		Text: "a\na", Font: f, Size: 16, Color: gfx.White, Anchor: AnchorTopLeft,
	}}, 1)
	g := out[0].Glyphs
	if len(g) != 2 {
		t.Fatalf("resolved to %d glyphs, want 2", len(g))
	}
	if g[0].Offset.X != g[1].Offset.X {
		t.Errorf("glyph x offsets differ across lines: %v vs %v", g[0].Offset, g[1].Offset)
	}
	if g[1].Offset.Y <= g[0].Offset.Y {
		t.Errorf("second line not below the first: %v vs %v", g[1].Offset, g[0].Offset)
	}
	if g[0].UVRect != g[1].UVRect {
		t.Errorf("same glyph resolved to different sprites: %v vs %v", g[0].UVRect, g[1].UVRect)
	}
}

func TestProcessWrap(t *testing.T) {
	f := testFont(t)
	p := NewPipeline()
	layout := Layout{Text: "aa aa", Font: f, Size: 64, Color: gfx.White, Anchor: AnchorTopLeft}

	single := p.Process([]Layout{layout}, 1)[0].Glyphs
	if len(single) != 4 {
		t.Fatalf("resolved to %d glyphs, want 4", len(single))
	}
	var ext float32
	for _, g := range single {
		ext = max(ext, g.Offset.X+g.Size.X)
	}

	layout.Bounds = curve.Vec2{X: float64(ext) / 2}
	wrapped := p.Process([]Layout{layout}, 1)[0].Glyphs
	if len(wrapped) != 4 {
		t.Fatalf("wrapped layout resolved to %d glyphs, want 4", len(wrapped))
	}
	if wrapped[0].Offset.Y != wrapped[1].Offset.Y || wrapped[2].Offset.Y != wrapped[3].Offset.Y {
		t.Errorf("wrap split a word: %v", wrapped)
	}
	if wrapped[2].Offset.Y <= wrapped[0].Offset.Y {
		t.Errorf("second word did not wrap onto a new line: %v", wrapped)
	}
	if wrapped[2].Offset.X != wrapped[0].Offset.X {
		t.Errorf("wrapped line does not start at the block edge: %v vs %v",
			wrapped[2].Offset, wrapped[0].Offset)
	}
}

func TestProcessJustify(t *testing.T) {
	f := testFont(t)
	p := NewPipeline()
	out := p.Process([]Layout{{
		Text: "a\naa", Font: f, Size: 32, Color: gfx.White,
		Anchor: AnchorTopLeft, Alignment: AlignRight,
	}}, 1)
	g := out[0].Glyphs
	if len(g) != 3 {
		t.Fatalf("resolved to %d glyphs, want 3", len(g))
	}
	// Right justified lines end flush: the single a of the first line and
	// the last a of the second line start at the same pen position.
	if g[0].Offset.X != g[2].Offset.X {
		t.Errorf("lines not flush right: %v vs %v", g[0].Offset, g[2].Offset)
	}
	if g[1].Offset.X >= g[0].Offset.X {
		t.Errorf("short line does not start further right: %v vs %v", g[0].Offset, g[1].Offset)
	}
}

func TestProcessScaleEquivalence(t *testing.T) {
	// Logical size 16 at scale 2 and logical size 32 at scale 1 are the
	// same physical size and must share sprites and positions.
	f := testFont(t)
	p := NewPipeline()
	a := p.Process([]Layout{{Text: "keith", Font: f, Size: 16, Color: gfx.White}}, 2)[0].Glyphs
	b := p.Process([]Layout{{Text: "keith", Font: f, Size: 32, Color: gfx.White}}, 1)[0].Glyphs
	if len(a) == 0 || len(a) != len(b) {
		t.Fatalf("glyph counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("glyph %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}
