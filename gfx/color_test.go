// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package gfx

import (
	"math"
	"testing"
)

func TestPackedLinear(t *testing.T) {
	tests := []struct {
		name string
		c    Color
		want uint32
	}{
		{"red", RGB(1, 0, 0), 0xFF0000FF},
		{"white", White, 0xFFFFFFFF},
		{"transparent", Transparent, 0x00000000},
		{"black", Black, 0xFF000000},
		// sRGB 0.5 is linear 0.2140, which quantizes to 55.
		{"mid gray", RGB(0.5, 0.5, 0.5), 0xFF373737},
		{"half alpha", RGBA(0, 0, 1, 0.5), 0x80FF0000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.PackedLinear(); got != tt.want {
				t.Errorf("PackedLinear() = %#08x, want %#08x", got, tt.want)
			}
		})
	}
}

func TestLinearRoundTrip(t *testing.T) {
	for _, s := range []float64{0, 0.003, 0.04045, 0.2, 0.5, 0.7351, 1} {
		got := srgbFromLinear(linearFromSRGB(s))
		if math.Abs(got-s) > 1e-9 {
			t.Errorf("srgbFromLinear(linearFromSRGB(%v)) = %v", s, got)
		}
	}
}
