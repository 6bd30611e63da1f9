// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package gfx

import (
	"math"

	"honnef.co/go/color"
)

// Color is an unpremultiplied sRGB color with float64 components in [0, 1].
type Color struct {
	R, G, B, A float64
}

var (
	Transparent = Color{}
	Black       = Color{0, 0, 0, 1}
	White       = Color{1, 1, 1, 1}
)

func RGB(r, g, b float64) Color {
	return Color{r, g, b, 1}
}

func RGBA(r, g, b, a float64) Color {
	return Color{r, g, b, a}
}

func RGBA8(r, g, b, a uint8) Color {
	return Color{
		float64(r) / 255,
		float64(g) / 255,
		float64(b) / 255,
		float64(a) / 255,
	}
}

// FromColor converts a color managed by honnef.co/go/color. The value is
// brought into linear sRGB first, so colors specified in other spaces keep
// their appearance.
func FromColor(c *color.Color) Color {
	cc := c.Convert(color.LinearSRGB)
	return Color{
		R: srgbFromLinear(cc.Values[0]),
		G: srgbFromLinear(cc.Values[1]),
		B: srgbFromLinear(cc.Values[2]),
		A: cc.Values[3],
	}
}

// Linear returns the color's components converted to linear sRGB. Alpha is
// passed through unchanged.
func (c Color) Linear() [4]float64 {
	return [4]float64{
		linearFromSRGB(c.R),
		linearFromSRGB(c.G),
		linearFromSRGB(c.B),
		c.A,
	}
}

// PackedLinear quantizes the linear components to 8 bits each and packs them
// as r | g<<8 | b<<16 | a<<24. This is the color format consumed by the
// shader, which unpacks it with unpack4x8unorm.
func (c Color) PackedLinear() uint32 {
	l := c.Linear()
	return quantize(l[0]) |
		quantize(l[1])<<8 |
		quantize(l[2])<<16 |
		quantize(l[3])<<24
}

func quantize(v float64) uint32 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint32(math.Round(v * 255))
}

func linearFromSRGB(s float64) float64 {
	if s <= 0.04045 {
		return s / 12.92
	}
	return math.Pow((s+0.055)/1.055, 2.4)
}

func srgbFromLinear(l float64) float64 {
	if l <= 0.0031308 {
		return l * 12.92
	}
	return 1.055*math.Pow(l, 1/2.4) - 0.055
}
