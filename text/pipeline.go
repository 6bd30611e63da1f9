package text

import (
	"math"
	"strings"
	"unicode"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"honnef.co/go/keith/encoding"
	"honnef.co/go/keith/kmath"
)

// Pipeline turns text layouts into positioned glyph quads backed by sprites
// in a shared atlas. It reuses shaping state across frames. A Pipeline is
// not safe for concurrent use.
type Pipeline struct {
	atlas  *Atlas
	shaper shaping.HarfbuzzShaper
	// faces caches per-font shaping state. A face's internal caches make
	// repeated shaping with the same font faster.
	faces map[*Font]*font.Face
	buf   sfnt.Buffer
}

func NewPipeline() *Pipeline {
	return &Pipeline{
		atlas: NewAtlas(),
		faces: map[*Font]*font.Face{},
	}
}

// Atlas returns the glyph atlas shared by all texts this pipeline processes.
func (p *Pipeline) Atlas() *Atlas {
	return p.atlas
}

// Process shapes, wraps, and rasterizes all layouts at the given scale
// factor. The result has one entry per layout, index-aligned with the
// input; text primitives reference entries by that index. Glyph offsets are
// in physical pixels, relative to the layout's draw position.
func (p *Pipeline) Process(layouts []Layout, scale float32) []encoding.ResolvedText {
	out := make([]encoding.ResolvedText, len(layouts))
	for i := range layouts {
		out[i] = p.process(&layouts[i], scale)
	}
	return out
}

func (p *Pipeline) process(l *Layout, scale float32) encoding.ResolvedText {
	if l.Font == nil || l.Text == "" || l.Size <= 0 || scale <= 0 {
		return encoding.ResolvedText{}
	}
	// Shape and rasterize at the physical pixel size, rounded to whole
	// pixels so that nearly identical sizes share glyphs.
	size := math.Round(l.Size * float64(scale))
	if size < 1 {
		return encoding.ResolvedText{}
	}

	m, err := l.Font.metrics(&p.buf, fixed.Int26_6(size*64))
	if err != nil {
		return encoding.ResolvedText{}
	}
	ascent := fixedToFloat(m.Ascent)
	descent := fixedToFloat(m.Descent)
	lineHeight := fixedToFloat(m.Height)

	maxWidth := float32(math.Inf(1))
	if l.Bounds.X > 0 {
		maxWidth = float32(l.Bounds.X) * scale
	}
	maxHeight := float32(math.Inf(1))
	if l.Bounds.Y > 0 {
		maxHeight = float32(l.Bounds.Y) * scale
	}

	var lines []shapedLine
	for _, para := range strings.Split(l.Text, "\n") {
		lines = p.appendWrapped(lines, l.Font, para, size, maxWidth)
	}
	// Drop lines that start below the block's height limit.
	for len(lines) > 0 && float32(len(lines)-1)*lineHeight >= maxHeight {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return encoding.ResolvedText{}
	}

	// The typographic block size anchors the text. It bounds the pen travel
	// of every line rather than the rasterized sprites, which reads better
	// visually than tight pixel bounds.
	var blockW float32
	for _, ln := range lines {
		blockW = max(blockW, ln.width)
	}
	blockH := ascent + float32(len(lines)-1)*lineHeight + descent

	anchor := l.Anchor.factor()
	justify := l.Alignment.factor()
	transX := -anchor.X * blockW
	transY := -anchor.Y * blockH

	color := l.Color.PackedLinear()
	var glyphs []encoding.ResolvedGlyph
	for li, ln := range lines {
		baseline := ascent + float32(li)*lineHeight
		shift := justify * (blockW - ln.width)
		for _, g := range ln.glyphs {
			ag := p.atlas.glyph(l.Font, g.gid, int32(size))
			if ag == nil {
				continue
			}
			glyphs = append(glyphs, encoding.ResolvedGlyph{
				// The sprite's transparent border sits one pixel above and
				// left of the outline box.
				Offset: kmath.Vec2{
					X: g.x + ag.min.X + shift + transX - 1,
					Y: baseline + g.y + ag.min.Y + transY - 1,
				},
				Size:   ag.uv.Size(),
				Color:  color,
				UVRect: ag.uv,
				Image:  p.atlas.image,
			})
		}
	}
	return encoding.ResolvedText{Glyphs: glyphs}
}

type shapedGlyph struct {
	gid sfnt.GlyphIndex
	// x, y is the glyph position in physical pixels, x relative to the
	// line start and y to the baseline.
	x, y float32
}

type shapedLine struct {
	glyphs []shapedGlyph
	width  float32
}

// appendWrapped shapes one paragraph and appends it to lines, broken at
// space boundaries into lines no wider than maxWidth. A word wider than
// maxWidth on its own overflows rather than break mid-word.
func (p *Pipeline) appendWrapped(lines []shapedLine, f *Font, para string, size float64, maxWidth float32) []shapedLine {
	if para == "" {
		return append(lines, shapedLine{})
	}

	runes := []rune(para)
	glyphs := p.shaper.Shape(shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      p.face(f),
		Size:      fixed.Int26_6(size * 64),
		Script:    script(runes),
		Language:  language.NewLanguage("en"),
	}).Glyphs

	// pen[i] is the pen position before glyph i, ignoring line breaks.
	pen := make([]float32, len(glyphs)+1)
	for i, g := range glyphs {
		pen[i+1] = pen[i] + fixedToFloat(g.Advance)
	}

	first := 0 // first glyph of the current line
	brk := -1  // most recent space glyph of the current line
	for i, g := range glyphs {
		if spaceGlyph(runes, g) {
			brk = i
			continue
		}
		if pen[i+1]-pen[first] > maxWidth && brk >= first {
			// Break at the space; it reappears on neither line.
			lines = append(lines, line(glyphs, pen, first, brk))
			first = brk + 1
		}
	}
	return append(lines, line(glyphs, pen, first, len(glyphs)))
}

// line assembles glyphs[first:last], rebasing pen positions to the line
// start.
func line(glyphs []shaping.Glyph, pen []float32, first, last int) shapedLine {
	ln := shapedLine{
		glyphs: make([]shapedGlyph, 0, last-first),
		width:  pen[last] - pen[first],
	}
	for i := first; i < last; i++ {
		g := glyphs[i]
		ln.glyphs = append(ln.glyphs, shapedGlyph{
			gid: sfnt.GlyphIndex(uint16(g.GlyphID)),
			x:   pen[i] - pen[first] + fixedToFloat(g.XOffset),
			// Shaping offsets point up, the canvas y axis down.
			y: -fixedToFloat(g.YOffset),
		})
	}
	return ln
}

func (p *Pipeline) face(f *Font) *font.Face {
	fc, ok := p.faces[f]
	if !ok {
		fc = font.NewFace(f.shape)
		p.faces[f] = fc
	}
	return fc
}

// spaceGlyph reports whether g was produced by a whitespace rune.
func spaceGlyph(runes []rune, g shaping.Glyph) bool {
	i := g.TextIndex()
	return i >= 0 && i < len(runes) && unicode.IsSpace(runes[i])
}

// script returns the script of the first non-space rune, which selects the
// shaping rules for the run.
func script(runes []rune) language.Script {
	for _, r := range runes {
		if unicode.IsSpace(r) {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}
