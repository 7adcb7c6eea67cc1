// Package testutil builds small, fully valid PDF documents for tests.
package testutil

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Fixture layout: Courier 12pt (600/1000 em advance), first baseline at
// (LeftMargin, TopBaseline), one line every Leading points.
const (
	FontSize    = 12.0
	GlyphWidth  = 7.2
	LeftMargin  = 72.0
	TopBaseline = 720.0
	Leading     = 18.0
	PageWidth   = 612.0
	PageHeight  = 792.0
)

// BuildPDF returns a PDF with one page per entry of pages, each page drawing
// its lines top-down in Courier.
func BuildPDF(pages [][]string) []byte {
	var buf bytes.Buffer
	offsets := []int{0}

	buf.WriteString("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")

	writeObj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets)-1, body)
	}

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}

	writeObj("<< /Type /Catalog /Pages 2 0 R >>")
	writeObj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	writeObj("<< /Type /Font /Subtype /Type1 /BaseFont /Courier /Encoding /WinAnsiEncoding " +
		"/FirstChar 32 /LastChar 126 /Widths [" + strings.TrimSpace(strings.Repeat("600 ", 95)) + "] >>")

	for i, lines := range pages {
		writeObj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %g %g] "+
			"/Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", PageWidth, PageHeight, 5+2*i))

		var content strings.Builder
		for j, line := range lines {
			fmt.Fprintf(&content, "BT /F1 %g Tf %g %g Td (%s) Tj ET\n", FontSize, LeftMargin, Baseline(j), escape(line))
		}
		writeObj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", content.Len(), content.String()))
	}

	xrefAt := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets))
	for _, off := range offsets[1:] {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets), xrefAt)

	return buf.Bytes()
}

// WritePDF builds a fixture and writes it into dir, returning its path.
func WritePDF(t testing.TB, dir, name string, pages [][]string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, BuildPDF(pages), 0o600); err != nil {
		t.Fatalf("failed to write fixture %s: %v", name, err)
	}
	return path
}

// Baseline returns the y coordinate of the line at index i.
func Baseline(i int) float64 {
	return TopBaseline - Leading*float64(i)
}

// ColumnX returns the x coordinate of the character at byte index col.
func ColumnX(col int) float64 {
	return LeftMargin + GlyphWidth*float64(col)
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}
