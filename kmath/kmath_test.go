package kmath

import (
	"testing"

	"honnef.co/go/curve"
)

func TestAlignUp32(t *testing.T) {
	tests := []struct {
		len, align, want uint32
	}{
		{0, 8, 0},
		{1, 8, 8},
		{8, 8, 8},
		{9, 8, 16},
		{13, 1, 13},
		{255, 256, 256},
	}
	for _, tt := range tests {
		if got := AlignUp32(tt.len, tt.align); got != tt.want {
			t.Errorf("AlignUp32(%d, %d) = %d, want %d", tt.len, tt.align, got, tt.want)
		}
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(5, 0, 3); got != 3 {
		t.Errorf("Clamp(5, 0, 3) = %d", got)
	}
	if got := Clamp(-1.5, 0.0, 3.0); got != 0 {
		t.Errorf("Clamp(-1.5, 0, 3) = %v", got)
	}
	if got := Clamp(2, 0, 3); got != 2 {
		t.Errorf("Clamp(2, 0, 3) = %d", got)
	}
}

func TestBox(t *testing.T) {
	b := FromRect(curve.Rect{X0: 1, Y0: 2, X1: 5, Y1: 8})
	if b.Size() != (Vec2{X: 4, Y: 6}) {
		t.Errorf("Size() = %+v", b.Size())
	}
	scaled := b.Scale(2)
	if scaled.Min != (Vec2{X: 2, Y: 4}) || scaled.Max != (Vec2{X: 10, Y: 16}) {
		t.Errorf("Scale(2) = %+v", scaled)
	}
	moved := b.Offset(Vec2{X: 1, Y: 1})
	if moved.Min != (Vec2{X: 2, Y: 3}) || moved.Max != (Vec2{X: 6, Y: 9}) {
		t.Errorf("Offset = %+v", moved)
	}
	union := b.Union(Box{Min: Vec2{X: 0, Y: 3}, Max: Vec2{X: 9, Y: 4}})
	if union.Min != (Vec2{X: 0, Y: 2}) || union.Max != (Vec2{X: 9, Y: 8}) {
		t.Errorf("Union = %+v", union)
	}
}
