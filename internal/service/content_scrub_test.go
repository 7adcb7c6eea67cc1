package service

import (
	"testing"

	"resume-redactor/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newCourierScrubber scrubs with a fixed-pitch /F1 font: 600 units per glyph,
// 7.2pt at 12pt size.
func newCourierScrubber(rects ...domain.Rect) *textScrubber {
	widths := make([]float64, 126-32+1)
	for i := range widths {
		widths[i] = 600
	}
	s := newTextScrubber(nil, nil, rects)
	s.fonts["F1"] = &fontMetrics{first: 32, last: 126, widths: widths}
	return s
}

// lineRect covers glyphs on the 720 baseline from x0 to x1.
func lineRect(x0, x1 float64) domain.Rect {
	return domain.Rect{X0: x0, Y0: 716, X1: x1, Y1: 732}
}

func TestTextScrubber_Scrub(t *testing.T) {
	tests := []struct {
		name    string
		rect    domain.Rect
		content string
		want    string
		removed int
	}{
		{
			name:    "tail of Tj",
			rect:    lineRect(93, 109),
			content: "BT /F1 12 Tf 72 720 Td (ab cd) Tj ET",
			want:    "BT /F1 12 Tf 72 720 Td [<616220> -1200] TJ ET",
			removed: 2,
		},
		{
			name:    "head of TJ with adjustment",
			rect:    lineRect(71, 87),
			content: "BT /F1 12 Tf 72 720 Td [(ab) -500 (cd)] TJ ET",
			want:    "BT /F1 12 Tf 72 720 Td [-1700 <6364>] TJ ET",
			removed: 2,
		},
		{
			name:    "hex string",
			rect:    lineRect(71, 80),
			content: "BT /F1 12 Tf 72 720 Td <6162> Tj ET",
			want:    "BT /F1 12 Tf 72 720 Td [-600 <62>] TJ ET",
			removed: 1,
		},
		{
			name:    "quote moves to next line",
			rect:    domain.Rect{X0: 71, Y0: 702, X1: 80, Y1: 718},
			content: "BT /F1 12 Tf 14 TL 72 720 Td (x) ' ET",
			want:    "BT /F1 12 Tf 14 TL 72 720 Td T* [-600] TJ ET",
			removed: 1,
		},
		{
			name:    "double quote keeps spacing",
			rect:    domain.Rect{X0: 71, Y0: 702, X1: 80, Y1: 718},
			content: "BT /F1 12 Tf 14 TL 72 720 Td 0 1.5 (x) \" ET",
			want:    "BT /F1 12 Tf 14 TL 72 720 Td 0 Tw 1.5 Tc T* [-725] TJ ET",
			removed: 1,
		},
		{
			name:    "graphics state restored",
			rect:    lineRect(71, 87),
			content: "q 1 0 0 1 100 0 cm Q BT /F1 12 Tf 72 720 Td (ab) Tj ET",
			want:    "q 1 0 0 1 100 0 cm Q BT /F1 12 Tf 72 720 Td [-1200] TJ ET",
			removed: 2,
		},
		{
			name:    "inline image data skipped",
			rect:    lineRect(71, 87),
			content: "q BI /W 1 /H 1 ID \x00(\xff EI Q BT /F1 12 Tf 72 720 Td (ab) Tj ET",
			want:    "q BI /W 1 /H 1 ID \x00(\xff EI Q BT /F1 12 Tf 72 720 Td [-1200] TJ ET",
			removed: 2,
		},
		{
			name:    "nothing covered",
			rect:    lineRect(300, 400),
			content: "BT /F1 12 Tf 72 720 Td (ab) Tj % note\nET",
			want:    "BT /F1 12 Tf 72 720 Td (ab) Tj % note\nET",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newCourierScrubber(tt.rect)
			got, err := s.scrub([]byte(tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
			assert.Equal(t, tt.removed, s.removed)
		})
	}
}

func TestTextScrubber_Malformed(t *testing.T) {
	for _, content := range []string{
		"BT /F1 12 Tf (open Tj ET",
		"BT <6162 Tj ET",
		"BI /W 1 ID \x00\x01",
	} {
		_, err := newCourierScrubber(lineRect(0, 600)).scrub([]byte(content))
		assert.Error(t, err, content)
	}
}

func TestTextScrubber_UnknownFontKeepsText(t *testing.T) {
	s := newCourierScrubber(lineRect(71, 87))
	got, err := s.scrub([]byte("BT /F2 12 Tf 72 720 Td (ab) Tj ET"))
	require.NoError(t, err)
	// zero-width glyphs all sit at the pen position, so both are covered
	assert.Equal(t, "BT /F2 12 Tf 72 720 Td [] TJ ET", string(got))
	assert.Equal(t, 2, s.removed)
}

func TestDecodeName(t *testing.T) {
	assert.Equal(t, "F1", decodeName("/F1"))
	assert.Equal(t, "F1", decodeName("/F#31"))
	assert.Equal(t, "A B", decodeName("/A#20B"))
	assert.Equal(t, "bad#zz", decodeName("/bad#zz"))
}
