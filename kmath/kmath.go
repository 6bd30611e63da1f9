// Package kmath provides the float32 scalar and vector helpers used by the
// CPU-side stages of the renderer. Public API geometry is float64
// (honnef.co/go/curve); everything destined for the GPU is float32, and the
// conversion happens through the types in this package.
package kmath

import (
	"math"

	"golang.org/x/exp/constraints"
	"honnef.co/go/curve"
)

func Abs32(f float32) float32 {
	return float32(math.Abs(float64(f)))
}

func Round32(f float32) float32 {
	return float32(math.Round(float64(f)))
}

func Floor32(f float32) float32 {
	return float32(math.Floor(float64(f)))
}

func Ceil32(f float32) float32 {
	return float32(math.Ceil(float64(f)))
}

func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// TODO(dh): make AlignUp32 generic over the integer type
func AlignUp32(len uint32, alignment uint32) uint32 {
	return (len + alignment - 1) & -alignment
}

// Vec2 is a two-dimensional float32 vector in physical (device pixel) space.
type Vec2 struct {
	X, Y float32
}

func FromVec(v curve.Vec2) Vec2 {
	return Vec2{float32(v.X), float32(v.Y)}
}

func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{v.X + o.X, v.Y + o.Y}
}

func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{v.X - o.X, v.Y - o.Y}
}

func (v Vec2) Mul(f float32) Vec2 {
	return Vec2{v.X * f, v.Y * f}
}

func (v Vec2) Div(o Vec2) Vec2 {
	return Vec2{v.X / o.X, v.Y / o.Y}
}

func (v Vec2) Min(o Vec2) Vec2 {
	return Vec2{min(v.X, o.X), min(v.Y, o.Y)}
}

func (v Vec2) Max(o Vec2) Vec2 {
	return Vec2{max(v.X, o.X), max(v.Y, o.Y)}
}

func (v Vec2) Floor() Vec2 {
	return Vec2{Floor32(v.X), Floor32(v.Y)}
}

func (v Vec2) Ceil() Vec2 {
	return Vec2{Ceil32(v.X), Ceil32(v.Y)}
}

// Box is an axis-aligned bounding box with float32 coordinates. Unlike
// curve.Rect it lives in whatever space the caller is working in, most often
// physical pixels.
type Box struct {
	Min, Max Vec2
}

func FromRect(r curve.Rect) Box {
	return Box{
		Min: Vec2{float32(r.X0), float32(r.Y0)},
		Max: Vec2{float32(r.X1), float32(r.Y1)},
	}
}

func (b Box) Size() Vec2 {
	return b.Max.Sub(b.Min)
}

func (b Box) Scale(f float32) Box {
	return Box{Min: b.Min.Mul(f), Max: b.Max.Mul(f)}
}

func (b Box) Offset(v Vec2) Box {
	return Box{Min: b.Min.Add(v), Max: b.Max.Add(v)}
}

func (b Box) Union(o Box) Box {
	return Box{Min: b.Min.Min(o.Min), Max: b.Max.Max(o.Max)}
}
