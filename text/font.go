// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package text

import (
	"bytes"
	"fmt"

	gotext "github.com/go-text/typesetting/font"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// Font is a font parsed for both shaping and rasterization. The shaping side
// uses go-text's representation, the rasterization side x/image's. Both are
// read-only; a Font may be shared between any number of layouts and
// pipelines.
type Font struct {
	shape   *gotext.Font
	outline *opentype.Font
}

// ParseFont parses a TrueType or OpenType font. It retains data, which must
// not be modified afterwards.
func ParseFont(data []byte) (*Font, error) {
	face, err := gotext.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing font for shaping: %w", err)
	}
	outline, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing font for rasterization: %w", err)
	}
	return &Font{
		shape:   face.Font,
		outline: outline,
	}, nil
}

func (f *Font) metrics(buf *sfnt.Buffer, ppem fixed.Int26_6) (xfont.Metrics, error) {
	return f.outline.Metrics(buf, ppem, xfont.HintingFull)
}
