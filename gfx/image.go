// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package gfx

import (
	"image"
	"sync/atomic"

	"honnef.co/go/curve"
)

var imageID atomic.Uint32

// Image wraps pixel data with a process-unique identity. Batching compares
// images by identity, not by pixel content, and a nil *Image stands for "no
// texture" throughout the renderer.
type Image struct {
	Image image.Image

	id uint32
}

func NewImage(img image.Image) *Image {
	return &Image{
		Image: img,
		id:    imageID.Add(1),
	}
}

func (img *Image) ID() uint32 {
	return img.id
}

// Size returns the pixel dimensions as a vector.
func (img *Image) Size() curve.Vec2 {
	b := img.Image.Bounds()
	return curve.Vec(float64(b.Dx()), float64(b.Dy()))
}

// SameImage reports whether two possibly-nil images share an identity.
func SameImage(a, b *Image) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.id == b.id
}
