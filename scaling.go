package keith

import (
	"fmt"

	"honnef.co/go/curve"
	"honnef.co/go/keith/encoding"
)

// SizeImages resolves the rendered size of every textured rectangle in
// prims, per its image scaling mode, where content is the rectangle's size
// in physical pixels. Rectangles whose image carries no pixel data lose
// their texture and log a warning. Call this after drawing and before
// preparing the frame.
func SizeImages(prims []encoding.Primitive, scale float32) {
	s := float64(scale)
	for i, prim := range prims {
		p, ok := prim.(encoding.Rect)
		if !ok || p.Image == nil {
			continue
		}
		if p.Image.Image == nil {
			Logger().Warn("unknown image, skipping", "image", p.Image.ID())
			p.Image = nil
			prims[i] = p
			continue
		}
		size := p.Image.Size()
		content := curve.Vec((p.Rect.X1-p.Rect.X0)*s, (p.Rect.Y1-p.Rect.Y0)*s)
		switch sc := p.Scaling.(type) {
		case nil:
			p.ImageSize = size
		case encoding.Uniform:
			p.ImageSize = size.Mul(sc.Ratio)
		case encoding.FitWidth:
			p.ImageSize = fitWidth(size, content, sc.StretchHeight)
		case encoding.FitHeight:
			p.ImageSize = fitHeight(size, content, sc.StretchWidth)
		case encoding.Fit:
			p.ImageSize = fitAny(size, content, sc.Stretch)
		case encoding.Stretch:
			p.ImageSize = content
		default:
			panic(fmt.Sprintf("unhandled image scaling %T", sc))
		}
		prims[i] = p
	}
}

// aspectWidth returns the width of a fixed-aspect rectangle of the given
// size, scaled so its height matches contentHeight. Degenerate sizes act
// like a thin horizontal strip.
func aspectWidth(size curve.Vec2, contentHeight float64) float64 {
	return max(size.X, 0) / max(size.Y, 1) * max(contentHeight, 0)
}

// aspectHeight returns the height of a fixed-aspect rectangle of the given
// size, scaled so its width matches contentWidth.
func aspectHeight(size curve.Vec2, contentWidth float64) float64 {
	return max(size.Y, 0) / max(size.X, 1) * max(contentWidth, 0)
}

// fitWidth sizes a rectangle so its width fills the content. The height
// either stretches to the content or keeps the rectangle's aspect ratio,
// getting cropped or leaving a gap.
func fitWidth(size, content curve.Vec2, stretchHeight bool) curve.Vec2 {
	h := aspectHeight(size, content.X)
	if stretchHeight {
		h = content.Y
	}
	return curve.Vec(content.X, h)
}

// fitHeight sizes a rectangle so its height fills the content.
func fitHeight(size, content curve.Vec2, stretchWidth bool) curve.Vec2 {
	w := aspectWidth(size, content.Y)
	if stretchWidth {
		w = content.X
	}
	return curve.Vec(w, content.Y)
}

// fitAny sizes a rectangle so it covers the content: the axis that fits
// tighter fills the content exactly, the other one overshoots and gets
// cropped, or stretches.
func fitAny(size, content curve.Vec2, stretchOther bool) curve.Vec2 {
	aspect := max(size.X, 0) / max(size.Y, 1)
	contentAspect := max(content.X, 0) / max(content.Y, 1)
	if aspect >= contentAspect {
		return fitHeight(size, content, stretchOther)
	}
	return fitWidth(size, content, stretchOther)
}
