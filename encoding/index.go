// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package encoding

// PackedPrimitiveIndex packs a sub-primitive's float row offset together
// with the flags the shader needs to decode it:
//
//	bits  0-26  row offset into the primitive buffer
//	bit     27  bordered
//	bits 28-29  kind
//	bit     30  reserved
//	bit     31  textured
//
// The offset of a glyph run advances by adding the per-glyph row count
// directly to the packed value; the flag bits are unaffected as long as the
// offset stays below 1<<27.
type PackedPrimitiveIndex uint32

const (
	offsetMask   = 0x07FF_FFFF
	borderedMask = 1 << 27
	kindShift    = 28
	texturedMask = 1 << 31
)

func NewPackedPrimitiveIndex(offset uint32, kind Kind, textured, bordered bool) PackedPrimitiveIndex {
	v := offset & offsetMask
	v |= uint32(kind) << kindShift
	if textured {
		v |= texturedMask
	}
	if bordered {
		v |= borderedMask
	}
	return PackedPrimitiveIndex(v)
}

func (idx PackedPrimitiveIndex) Offset() uint32 {
	return uint32(idx) & offsetMask
}

func (idx PackedPrimitiveIndex) Kind() Kind {
	return Kind(uint32(idx) >> kindShift & 0x3)
}

func (idx PackedPrimitiveIndex) Textured() bool {
	return uint32(idx)&texturedMask != 0
}

func (idx PackedPrimitiveIndex) Bordered() bool {
	return uint32(idx)&borderedMask != 0
}
