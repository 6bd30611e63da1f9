// Package keith renders 2D vector graphics on the GPU. Shapes, images and
// text are drawn onto a [Canvas] through a [RenderContext], collected once
// per frame into flat buffers, and rasterized by a single tile-based shader
// that evaluates signed distance fields instead of tessellating geometry.
package keith

type option[T any] struct {
	isSet bool
	value T
}

func (opt *option[T]) set(v T) {
	opt.isSet = true
	opt.value = v
}

func (opt *option[T]) clear() {
	opt.isSet = false
	opt.value = *new(T)
}
