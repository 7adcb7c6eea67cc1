package service

import (
	"strings"
	"testing"

	"resume-redactor/internal/domain"
	"resume-redactor/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const contactLine = "Contact: john@example.com, 9876543210, exp since 03/2021"

func openFixture(t *testing.T, pages [][]string) domain.PageLocator {
	t.Helper()
	path := testutil.WritePDF(t, t.TempDir(), "resume.pdf", pages)
	locator, err := NewGlyphGeometry(NewMockLogger()).Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = locator.Close() })
	return locator
}

func TestGlyphGeometry_Locate(t *testing.T) {
	locator := openFixture(t, [][]string{{"Jane Doe", contactLine}})
	require.Equal(t, 1, locator.NumPage())

	rects := locator.Locate(1, "john@example.com")
	require.Len(t, rects, 1)

	col := strings.Index(contactLine, "john@example.com")
	r := rects[0]
	assert.InDelta(t, testutil.ColumnX(col), r.X0, 1.0)
	assert.InDelta(t, testutil.ColumnX(col+len("john@example.com")), r.X1, 1.0)
	assert.Less(t, r.Y0, testutil.Baseline(1))
	assert.Greater(t, r.Y1, testutil.Baseline(1)+testutil.FontSize/2)
	assert.Less(t, r.Y1, testutil.Baseline(0))
}

func TestGlyphGeometry_LocateCaseAndWhitespace(t *testing.T) {
	locator := openFixture(t, [][]string{{contactLine}})

	assert.Len(t, locator.Locate(1, "JOHN@Example.COM"), 1)
	assert.Len(t, locator.Locate(1, "  since   03/2021 "), 1)
}

func TestGlyphGeometry_LocateEveryOccurrence(t *testing.T) {
	locator := openFixture(t, [][]string{
		{"a@b.io", "footer a@b.io"},
		{"a@b.io"},
	})

	assert.Len(t, locator.Locate(1, "a@b.io"), 2)
	assert.Len(t, locator.Locate(2, "a@b.io"), 1)
}

func TestGlyphGeometry_LocateMisses(t *testing.T) {
	locator := openFixture(t, [][]string{{contactLine}})

	assert.Empty(t, locator.Locate(1, "nobody@example.com"))
	assert.Empty(t, locator.Locate(1, "   "))
	assert.Empty(t, locator.Locate(0, "john@example.com"))
	assert.Empty(t, locator.Locate(2, "john@example.com"))
}

func TestGlyphGeometry_OpenInvalid(t *testing.T) {
	_, err := NewGlyphGeometry(NewMockLogger()).Open("/does/not/exist.pdf")
	assert.Error(t, err)
}

func TestBuildLines(t *testing.T) {
	glyphs := []glyph{
		{X: 30, Y: 100, W: 5, Size: 10, S: "c"},
		{X: 0, Y: 100.5, W: 5, Size: 10, S: "A"},
		{X: 5, Y: 100, W: 5, Size: 10, S: "b"},
		{X: 0, Y: 80, W: 5, Size: 10, S: "x"},
		{X: 5, Y: 80, W: 5, Size: 10, S: ""},
	}

	lines := buildLines(glyphs)
	require.Len(t, lines, 2)
	assert.Equal(t, "ab c", lines[0].text)
	assert.Equal(t, "x", lines[1].text)
	assert.Equal(t, []int{0, 1, -1, 2}, lines[0].owners)

	rects := lines[0].find("b c")
	require.Len(t, rects, 1)
	assert.InDelta(t, 5-markPadding, rects[0].X0, 0.001)
	assert.InDelta(t, 35+markPadding, rects[0].X1, 0.001)
}

func TestTextLine_FindNonOverlapping(t *testing.T) {
	var glyphs []glyph
	for i, c := range "aaaa" {
		glyphs = append(glyphs, glyph{X: float64(i) * 5, Y: 10, W: 5, Size: 10, S: string(c)})
	}
	line := composeLine(glyphs)
	assert.Len(t, line.find("aa"), 2)
}

func TestComposeLine_CollapsesSpaces(t *testing.T) {
	line := composeLine([]glyph{
		{X: 0, Y: 0, W: 5, Size: 10, S: "a"},
		{X: 5, Y: 0, W: 5, Size: 10, S: " "},
		{X: 10, Y: 0, W: 5, Size: 10, S: "\t"},
		{X: 15, Y: 0, W: 5, Size: 10, S: "b"},
	})
	assert.Equal(t, "a b", line.text)
}
