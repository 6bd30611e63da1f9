package text

import (
	"honnef.co/go/curve"
	"honnef.co/go/keith/gfx"
	"honnef.co/go/keith/kmath"
)

// Anchor selects the point of a text block that is placed at the draw
// position. The zero value anchors the block at its center.
type Anchor uint8

const (
	AnchorCenter Anchor = iota
	AnchorTopLeft
	AnchorTopCenter
	AnchorTopRight
	AnchorCenterLeft
	AnchorCenterRight
	AnchorBottomLeft
	AnchorBottomCenter
	AnchorBottomRight
)

// factor returns the anchor as fractions of the block size, (0, 0) being the
// top left corner and (1, 1) the bottom right one.
func (a Anchor) factor() kmath.Vec2 {
	switch a {
	case AnchorCenter:
		return kmath.Vec2{X: 0.5, Y: 0.5}
	case AnchorTopLeft:
		return kmath.Vec2{X: 0, Y: 0}
	case AnchorTopCenter:
		return kmath.Vec2{X: 0.5, Y: 0}
	case AnchorTopRight:
		return kmath.Vec2{X: 1, Y: 0}
	case AnchorCenterLeft:
		return kmath.Vec2{X: 0, Y: 0.5}
	case AnchorCenterRight:
		return kmath.Vec2{X: 1, Y: 0.5}
	case AnchorBottomLeft:
		return kmath.Vec2{X: 0, Y: 1}
	case AnchorBottomCenter:
		return kmath.Vec2{X: 0.5, Y: 1}
	case AnchorBottomRight:
		return kmath.Vec2{X: 1, Y: 1}
	default:
		panic("unreachable")
	}
}

// Alignment justifies lines horizontally within their block. It has no
// visible effect on single-line text.
type Alignment uint8

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

func (a Alignment) factor() float32 {
	switch a {
	case AlignLeft:
		return 0
	case AlignCenter:
		return 0.5
	case AlignRight:
		return 1
	default:
		panic("unreachable")
	}
}

// Layout describes one block of text to draw on a canvas.
type Layout struct {
	Text string
	Font *Font
	// Size is the font size in logical pixels.
	Size  float64
	Color gfx.Color
	// Bounds limits the block size in logical pixels. Lines wrap at word
	// boundaries to fit Bounds.X, and lines starting below Bounds.Y are
	// dropped. Axes that are zero or negative don't limit the block.
	Bounds    curve.Vec2
	Anchor    Anchor
	Alignment Alignment
}
