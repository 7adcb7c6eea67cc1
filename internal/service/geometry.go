package service

import (
	"math"
	"os"
	"sort"
	"strings"
	"unicode"

	"resume-redactor/internal/domain"
	apperrors "resume-redactor/pkg/errors"

	"github.com/ledongthuc/pdf"
)

// Glyph box proportions relative to the font size, measured from the baseline.
const (
	descentRatio  = 0.25
	ascentRatio   = 0.9
	wordGapRatio  = 0.2
	lineTolerance = 0.5
	markPadding   = 0.5
	fallbackSize  = 10.0
)

// GlyphGeometry opens PDFs for text-to-geometry lookups using the per-glyph
// positions reported by ledongthuc/pdf.
type GlyphGeometry struct {
	logger domain.Logger
}

// NewGlyphGeometry creates a geometry source
func NewGlyphGeometry(logger domain.Logger) *GlyphGeometry {
	return &GlyphGeometry{logger: logger}
}

// Open implements domain.GeometrySource.
func (g *GlyphGeometry) Open(path string) (domain.PageLocator, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, apperrors.NewIOError("failed to open PDF for text positions", err)
	}
	return &pageGeometry{
		file:   f,
		reader: reader,
		logger: g.logger,
		lines:  make(map[int][]textLine),
	}, nil
}

type pageGeometry struct {
	file   *os.File
	reader *pdf.Reader
	logger domain.Logger
	lines  map[int][]textLine
}

func (p *pageGeometry) NumPage() int {
	return p.reader.NumPage()
}

func (p *pageGeometry) Close() error {
	return p.file.Close()
}

// Locate returns one rectangle per occurrence of literal on the page. The
// search is ASCII case-insensitive, whitespace-normalized and confined to a
// single visual line; a literal that never shows up yields nothing.
func (p *pageGeometry) Locate(pageNr int, literal string) []domain.Rect {
	needle := normalizeNeedle(literal)
	if needle == "" {
		return nil
	}

	var rects []domain.Rect
	for _, line := range p.pageLines(pageNr) {
		rects = append(rects, line.find(needle)...)
	}
	return rects
}

func (p *pageGeometry) pageLines(pageNr int) []textLine {
	if lines, ok := p.lines[pageNr]; ok {
		return lines
	}
	lines := buildLines(p.pageGlyphs(pageNr))
	p.lines[pageNr] = lines
	return lines
}

// pageGlyphs interprets the page content stream. The interpreter panics on
// malformed streams; such a page simply has no locatable text.
func (p *pageGeometry) pageGlyphs(pageNr int) (glyphs []glyph) {
	if pageNr < 1 || pageNr > p.reader.NumPage() {
		return nil
	}
	page := p.reader.Page(pageNr)
	if page.V.IsNull() {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			p.logger.Warn("Could not interpret page content; page text not locatable", "page", pageNr, "panic", r)
			glyphs = nil
		}
	}()

	texts := page.Content().Text
	glyphs = make([]glyph, 0, len(texts))
	for _, t := range texts {
		glyphs = append(glyphs, glyph{X: t.X, Y: t.Y, W: t.W, Size: t.FontSize, S: t.S})
	}
	return glyphs
}

// glyph is one positioned run of text; usually a single character.
type glyph struct {
	X, Y, W, Size float64
	S             string
}

func (g glyph) size() float64 {
	if g.Size <= 0 {
		return fallbackSize
	}
	return g.Size
}

// textLine is the searchable text of one visual line. owners maps every
// byte of text to the glyph it came from, or -1 for an inferred word gap.
type textLine struct {
	text   string
	owners []int
	glyphs []glyph
}

// buildLines clusters glyphs sharing a baseline, orders each cluster left to
// right, and inserts a space wherever the horizontal gap looks like a word
// break that the PDF did not encode as a glyph.
func buildLines(glyphs []glyph) []textLine {
	gs := make([]glyph, 0, len(glyphs))
	for _, g := range glyphs {
		if g.S != "" {
			gs = append(gs, g)
		}
	}
	if len(gs) == 0 {
		return nil
	}

	sort.SliceStable(gs, func(i, j int) bool { return gs[i].Y > gs[j].Y })

	var clusters [][]glyph
	current := []glyph{gs[0]}
	baseline := gs[0].Y
	for _, g := range gs[1:] {
		if math.Abs(baseline-g.Y) > lineTolerance*g.size() {
			clusters = append(clusters, current)
			current = nil
			baseline = g.Y
		}
		current = append(current, g)
	}
	clusters = append(clusters, current)

	lines := make([]textLine, 0, len(clusters))
	for _, cluster := range clusters {
		sort.SliceStable(cluster, func(i, j int) bool { return cluster[i].X < cluster[j].X })
		lines = append(lines, composeLine(cluster))
	}
	return lines
}

func composeLine(glyphs []glyph) textLine {
	var sb strings.Builder
	var owners []int

	endsWithSpace := func() bool {
		s := sb.String()
		return s == "" || s[len(s)-1] == ' '
	}

	for i, g := range glyphs {
		s := strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return ' '
			}
			return r
		}, g.S)

		if i > 0 && !endsWithSpace() && !strings.HasPrefix(s, " ") {
			prev := glyphs[i-1]
			if g.X-(prev.X+prev.W) > wordGapRatio*g.size() {
				sb.WriteByte(' ')
				owners = append(owners, -1)
			}
		}

		for j := 0; j < len(s); j++ {
			if s[j] == ' ' && endsWithSpace() {
				continue
			}
			sb.WriteByte(s[j])
			owners = append(owners, i)
		}
	}

	return textLine{
		text:   asciiLower(sb.String()),
		owners: owners,
		glyphs: glyphs,
	}
}

// find returns the rectangles of every non-overlapping occurrence of needle.
func (l textLine) find(needle string) []domain.Rect {
	var rects []domain.Rect
	offset := 0
	for offset <= len(l.text)-len(needle) {
		idx := strings.Index(l.text[offset:], needle)
		if idx < 0 {
			break
		}
		start := offset + idx
		end := start + len(needle)
		if rect, ok := l.bounds(start, end); ok {
			rects = append(rects, rect)
		}
		offset = end
	}
	return rects
}

// bounds covers the glyphs owning bytes [start, end), from descender to
// ascender, with a little padding so anti-aliased edges stay hidden.
func (l textLine) bounds(start, end int) (domain.Rect, bool) {
	seen := false
	var x0, x1, y0, y1 float64
	for i := start; i < end; i++ {
		owner := l.owners[i]
		if owner < 0 {
			continue
		}
		g := l.glyphs[owner]
		gx0, gx1 := g.X, g.X+g.W
		gy0, gy1 := g.Y-descentRatio*g.size(), g.Y+ascentRatio*g.size()
		if !seen {
			x0, x1, y0, y1 = gx0, gx1, gy0, gy1
			seen = true
			continue
		}
		x0, x1 = math.Min(x0, gx0), math.Max(x1, gx1)
		y0, y1 = math.Min(y0, gy0), math.Max(y1, gy1)
	}
	if !seen {
		return domain.Rect{}, false
	}
	rect := domain.Rect{
		X0: x0 - markPadding,
		Y0: y0 - markPadding,
		X1: x1 + markPadding,
		Y1: y1 + markPadding,
	}
	return rect, !rect.Empty()
}

func normalizeNeedle(literal string) string {
	return asciiLower(strings.Join(strings.Fields(literal), " "))
}

// asciiLower lowercases ASCII letters only, so byte offsets stay aligned
// with the owners table.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
