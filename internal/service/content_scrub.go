package service

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"resume-redactor/internal/domain"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// glyphCenterRatio places a glyph's hit point midway between the descent
// and ascent used for mark rectangles.
const glyphCenterRatio = (ascentRatio - descentRatio) / 2

var (
	errUnterminatedString = errors.New("unterminated string in content stream")
	errUnterminatedImage  = errors.New("unterminated inline image in content stream")
)

// textScrubber removes shown glyphs whose position falls inside any of rects.
// Removed glyphs are replaced with TJ displacements of the same advance, so
// the remaining text keeps its layout. Glyph positions follow the same text
// model as GlyphGeometry, which is where the rectangles come from.
type textScrubber struct {
	xref      *model.XRefTable
	resources types.Dict
	rects     []domain.Rect
	fonts     map[string]*fontMetrics
	removed   int
}

func newTextScrubber(xref *model.XRefTable, resources types.Dict, rects []domain.Rect) *textScrubber {
	return &textScrubber{
		xref:      xref,
		resources: resources,
		rects:     rects,
		fonts:     make(map[string]*fontMetrics),
	}
}

// scrub returns content with every covered glyph taken out of its show-text
// operator. Operators without covered glyphs are copied byte for byte.
func (s *textScrubber) scrub(content []byte) ([]byte, error) {
	lx := &contentLexer{data: content}
	st := newTextState()
	var (
		stack    []textState
		operands []token
		out      bytes.Buffer
		copied   int
	)

	for {
		tok, ok, err := lx.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if tok.kind != tokOperator {
			operands = append(operands, tok)
			continue
		}

		from, replacement := -1, ""
		n := len(operands)
		switch tok.text {
		case "ID":
			if err := lx.skipInlineImage(); err != nil {
				return nil, err
			}
		case "q":
			stack = append(stack, st)
		case "Q":
			if k := len(stack); k > 0 {
				st, stack = stack[k-1], stack[:k-1]
			}
		case "cm":
			if v, ok := lastNumbers(operands, 6); ok {
				st.ctm = matrixOf(v).mul(st.ctm)
			}
		case "BT":
			st.tm, st.tlm = identity, identity
		case "T*":
			st.nextLine()
		case "Tc":
			if v, ok := lastNumbers(operands, 1); ok {
				st.tc = v[0]
			}
		case "Tw":
			if v, ok := lastNumbers(operands, 1); ok {
				st.tw = v[0]
			}
		case "Tz":
			if v, ok := lastNumbers(operands, 1); ok {
				st.th = v[0] / 100
			}
		case "TL":
			if v, ok := lastNumbers(operands, 1); ok {
				st.tl = v[0]
			}
		case "Ts":
			if v, ok := lastNumbers(operands, 1); ok {
				st.rise = v[0]
			}
		case "TD":
			if v, ok := lastNumbers(operands, 2); ok {
				st.tl = -v[1]
				st.moveText(v[0], v[1])
			}
		case "Td":
			if v, ok := lastNumbers(operands, 2); ok {
				st.moveText(v[0], v[1])
			}
		case "Tm":
			if v, ok := lastNumbers(operands, 6); ok {
				st.tm = matrixOf(v)
				st.tlm = st.tm
			}
		case "Tf":
			if n >= 2 && operands[n-2].kind == tokName {
				st.font = s.font(decodeName(operands[n-2].text))
			}
			if v, ok := lastNumbers(operands, 1); ok {
				st.tfs = v[0]
			}
		case "Tj", "'":
			if n < 1 || !operands[n-1].isString() {
				break
			}
			if tok.text == "'" {
				st.nextLine()
			}
			var b tjBuilder
			if s.show(&st, operands[n-1], &b) {
				from = operands[n-1].start
				if tok.text == "'" {
					replacement = "T* "
				}
				replacement += b.String()
			}
		case "\"":
			if n < 3 || !operands[n-1].isString() {
				break
			}
			aw, ac := operands[n-3], operands[n-2]
			st.tw, st.tc = parseNumber(aw.text), parseNumber(ac.text)
			st.nextLine()
			var b tjBuilder
			if s.show(&st, operands[n-1], &b) {
				from = aw.start
				replacement = fmt.Sprintf("%s Tw %s Tc T* %s", aw.text, ac.text, b.String())
			}
		case "TJ":
			open := arrayStart(operands)
			if open < 0 {
				break
			}
			var b tjBuilder
			hit := false
			for _, el := range operands[open+1 : n-1] {
				switch {
				case el.isString():
					if s.show(&st, el, &b) {
						hit = true
					}
				case el.kind == tokNumber:
					v := parseNumber(el.text)
					b.adjust(v)
					st.translate(-v / 1000 * st.tfs * st.th)
				}
			}
			// the positioning model advances past an implicit line break after TJ
			st.advance(st.font.width('\n'))
			if hit {
				from = operands[open].start
				replacement = b.String()
			}
		}

		if from >= 0 {
			out.Write(content[copied:from])
			out.WriteString(replacement)
			copied = tok.end
		}
		operands = operands[:0]
	}

	out.Write(content[copied:])
	return out.Bytes(), nil
}

// show walks the glyphs of one string operand, appending kept codes and
// displacements for removed ones to b. It reports whether any glyph was removed.
func (s *textScrubber) show(st *textState, tok token, b *tjBuilder) bool {
	raw, err := tok.stringBytes()
	if err != nil {
		b.keepRaw(tok.text)
		return false
	}

	step := 1
	if st.font != nil && st.font.twoByte {
		step = 2
	}

	hit := false
	for i := 0; i < len(raw); i += step {
		code := raw[i:min(i+step, len(raw))]
		c := int(code[0])
		if len(code) == 2 {
			c = c<<8 | int(code[1])
		}
		w0 := st.font.width(c)

		trm := matrix{{st.tfs * st.th, 0, 0}, {0, st.tfs, 0}, {0, st.rise, 1}}.mul(st.tm).mul(st.ctm)
		x, y, size := trm[2][0], trm[2][1], trm[0][0]
		w := w0 / 1000 * size
		if size <= 0 {
			size = fallbackSize
		}

		if s.covered(x+w/2, y+size*glyphCenterRatio) {
			b.adjust(-st.displacement(w0, len(code) == 1 && c == ' '))
			s.removed++
			hit = true
		} else {
			b.keep(code)
		}
		st.advance(w0)
	}
	return hit
}

func (s *textScrubber) covered(x, y float64) bool {
	for _, r := range s.rects {
		if x >= r.X0 && x <= r.X1 && y >= r.Y0 && y <= r.Y1 {
			return true
		}
	}
	return false
}

func (s *textScrubber) font(name string) *fontMetrics {
	if f, ok := s.fonts[name]; ok {
		return f
	}
	f := s.loadFont(name)
	s.fonts[name] = f
	return f
}

// loadFont reads the metrics of a font resource. Missing or unreadable
// entries leave zero widths, as the positioning model does.
func (s *textScrubber) loadFont(name string) *fontMetrics {
	m := &fontMetrics{}
	if s.resources == nil {
		return m
	}
	obj, found := s.resources.Find("Font")
	if !found {
		return m
	}
	fonts, err := s.xref.DereferenceDict(obj)
	if err != nil || fonts == nil {
		return m
	}
	if obj, found = fonts.Find(name); !found {
		return m
	}
	fd, err := s.xref.DereferenceDict(obj)
	if err != nil || fd == nil {
		return m
	}

	if st := fd.NameEntry("Subtype"); st != nil && *st == "Type0" {
		m.twoByte = true
	}
	if o, ok := fd.Find("FirstChar"); ok {
		if v, err := s.xref.DereferenceNumber(o); err == nil {
			m.first = int(v)
		}
	}
	if o, ok := fd.Find("LastChar"); ok {
		if v, err := s.xref.DereferenceNumber(o); err == nil {
			m.last = int(v)
		}
	}
	if o, ok := fd.Find("Widths"); ok {
		if arr, err := s.xref.DereferenceArray(o); err == nil {
			m.widths = make([]float64, len(arr))
			for i, el := range arr {
				if v, err := s.xref.DereferenceNumber(el); err == nil {
					m.widths[i] = v
				}
			}
		}
	}
	return m
}

// fontMetrics holds glyph advances in thousandths of text space units.
type fontMetrics struct {
	first, last int
	widths      []float64
	twoByte     bool
}

func (f *fontMetrics) width(code int) float64 {
	if f == nil || code < f.first || code > f.last || code-f.first >= len(f.widths) {
		return 0
	}
	return f.widths[code-f.first]
}

type matrix [3][3]float64

var identity = matrix{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

func (m matrix) mul(n matrix) matrix {
	var out matrix
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				out[i][j] += m[i][k] * n[k][j]
			}
		}
	}
	return out
}

func matrixOf(v []float64) matrix {
	return matrix{{v[0], v[1], 0}, {v[2], v[3], 0}, {v[4], v[5], 1}}
}

type textState struct {
	ctm, tm, tlm matrix
	tc, tw, th   float64
	tl, tfs      float64
	rise         float64
	font         *fontMetrics
}

func newTextState() textState {
	return textState{ctm: identity, tm: identity, tlm: identity, th: 1}
}

func (st *textState) translate(tx float64) {
	st.tm = matrix{{1, 0, 0}, {0, 1, 0}, {tx, 0, 1}}.mul(st.tm)
}

func (st *textState) advance(w0 float64) {
	st.translate((w0/1000*st.tfs + st.tc) * st.th)
}

func (st *textState) moveText(tx, ty float64) {
	st.tlm = matrix{{1, 0, 0}, {0, 1, 0}, {tx, ty, 1}}.mul(st.tlm)
	st.tm = st.tlm
}

func (st *textState) nextLine() {
	st.moveText(0, -st.tl)
}

// displacement is the TJ amount that moves the pen as far as showing a glyph
// of width w0 would, character and word spacing included.
func (st *textState) displacement(w0 float64, space bool) float64 {
	if st.tfs == 0 {
		return w0
	}
	extra := st.tc
	if space {
		extra += st.tw
	}
	return w0 + extra*1000/st.tfs
}

// tjBuilder assembles the operand of a TJ operator.
type tjBuilder struct {
	parts []tjPart
}

type tjPart struct {
	code   []byte
	raw    string
	adjust float64
	isNum  bool
}

func (b *tjBuilder) keep(code []byte) {
	if n := len(b.parts); n > 0 && !b.parts[n-1].isNum && b.parts[n-1].raw == "" {
		b.parts[n-1].code = append(b.parts[n-1].code, code...)
		return
	}
	b.parts = append(b.parts, tjPart{code: append([]byte(nil), code...)})
}

func (b *tjBuilder) keepRaw(raw string) {
	b.parts = append(b.parts, tjPart{raw: raw})
}

func (b *tjBuilder) adjust(v float64) {
	if v == 0 {
		return
	}
	if n := len(b.parts); n > 0 && b.parts[n-1].isNum {
		b.parts[n-1].adjust += v
		return
	}
	b.parts = append(b.parts, tjPart{adjust: v, isNum: true})
}

func (b *tjBuilder) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, p := range b.parts {
		if i > 0 {
			sb.WriteByte(' ')
		}
		switch {
		case p.isNum:
			sb.WriteString(strconv.FormatFloat(math.Round(p.adjust*1000)/1000, 'f', -1, 64))
		case p.raw != "":
			sb.WriteString(p.raw)
		default:
			fmt.Fprintf(&sb, "<%X>", p.code)
		}
	}
	sb.WriteString("] TJ")
	return sb.String()
}

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokName
	tokString
	tokHexString
	tokArrayOpen
	tokArrayClose
	tokDictOpen
	tokDictClose
	tokOperator
	tokOther
)

type token struct {
	kind       tokenKind
	start, end int
	text       string
}

func (t token) isString() bool {
	return t.kind == tokString || t.kind == tokHexString
}

func (t token) stringBytes() ([]byte, error) {
	body := t.text[1 : len(t.text)-1]
	if t.kind == tokString {
		return types.Unescape(body)
	}
	hex := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, body)
	if len(hex)%2 == 1 {
		hex += "0"
	}
	return types.HexLiteral(hex).Bytes()
}

// contentLexer splits a decoded content stream into tokens with their byte
// offsets.
type contentLexer struct {
	data []byte
	pos  int
}

func isSpaceByte(c byte) bool {
	switch c {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

func isDelimiter(c byte) bool {
	return strings.IndexByte("()<>[]{}/%", c) >= 0
}

func (l *contentLexer) next() (token, bool, error) {
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		if isSpaceByte(c) {
			l.pos++
			continue
		}
		if c == '%' {
			for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
				l.pos++
			}
			continue
		}
		break
	}
	if l.pos >= len(l.data) {
		return token{}, false, nil
	}

	start := l.pos
	c := l.data[l.pos]
	var kind tokenKind
	switch {
	case c == '(':
		if err := l.skipLiteral(); err != nil {
			return token{}, false, err
		}
		kind = tokString
	case c == '<' && l.peek(1) == '<':
		l.pos += 2
		kind = tokDictOpen
	case c == '<':
		end := bytes.IndexByte(l.data[l.pos:], '>')
		if end < 0 {
			return token{}, false, errUnterminatedString
		}
		l.pos += end + 1
		kind = tokHexString
	case c == '>' && l.peek(1) == '>':
		l.pos += 2
		kind = tokDictClose
	case c == '[':
		l.pos++
		kind = tokArrayOpen
	case c == ']':
		l.pos++
		kind = tokArrayClose
	case c == '{' || c == '}':
		l.pos++
		kind = tokOther
	case c == '/':
		l.pos++
		l.skipRegular()
		kind = tokName
	case c == ')' || c == '>':
		return token{}, false, fmt.Errorf("unexpected %q at offset %d", c, l.pos)
	default:
		l.skipRegular()
		kind = tokOperator
		if strings.IndexByte("+-.0123456789", c) >= 0 {
			kind = tokNumber
		}
	}

	t := token{kind: kind, start: start, end: l.pos, text: string(l.data[start:l.pos])}
	if kind == tokOperator && (t.text == "true" || t.text == "false" || t.text == "null") {
		t.kind = tokOther
	}
	return t, true, nil
}

func (l *contentLexer) peek(off int) byte {
	if l.pos+off < len(l.data) {
		return l.data[l.pos+off]
	}
	return 0
}

func (l *contentLexer) skipRegular() {
	for l.pos < len(l.data) && !isSpaceByte(l.data[l.pos]) && !isDelimiter(l.data[l.pos]) {
		l.pos++
	}
}

func (l *contentLexer) skipLiteral() error {
	depth := 0
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++
		switch c {
		case '\\':
			l.pos++
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return nil
			}
		}
	}
	return errUnterminatedString
}

// skipInlineImage moves past the binary data that follows ID, stopping at
// the EI operator.
func (l *contentLexer) skipInlineImage() error {
	if l.pos < len(l.data) && isSpaceByte(l.data[l.pos]) {
		l.pos++
	}
	for i := l.pos; i+1 < len(l.data); i++ {
		if l.data[i] != 'E' || l.data[i+1] != 'I' {
			continue
		}
		before := i == 0 || isSpaceByte(l.data[i-1])
		after := i+2 == len(l.data) || isSpaceByte(l.data[i+2]) || isDelimiter(l.data[i+2])
		if before && after {
			l.pos = i
			return nil
		}
	}
	return errUnterminatedImage
}

func lastNumbers(operands []token, n int) ([]float64, bool) {
	if len(operands) < n {
		return nil, false
	}
	out := make([]float64, n)
	for i, t := range operands[len(operands)-n:] {
		if t.kind != tokNumber {
			return nil, false
		}
		out[i] = parseNumber(t.text)
	}
	return out, true
}

func parseNumber(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// arrayStart returns the index of the '[' opening a trailing array operand.
func arrayStart(operands []token) int {
	n := len(operands)
	if n < 2 || operands[n-1].kind != tokArrayClose {
		return -1
	}
	for i := n - 2; i >= 0; i-- {
		if operands[i].kind == tokArrayOpen {
			return i
		}
	}
	return -1
}

// decodeName strips the leading slash and resolves #xx escapes.
func decodeName(raw string) string {
	name := strings.TrimPrefix(raw, "/")
	if !strings.Contains(name, "#") {
		return name
	}
	var sb strings.Builder
	for i := 0; i < len(name); i++ {
		if name[i] == '#' && i+2 < len(name) {
			if v, err := strconv.ParseUint(name[i+1:i+3], 16, 8); err == nil {
				sb.WriteByte(byte(v))
				i += 2
				continue
			}
		}
		sb.WriteByte(name[i])
	}
	return sb.String()
}
