// Package pdf renders generated contract text into a downloadable PDF.
package pdf

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"codeberg.org/go-pdf/fpdf"
)

var sectionHeading = regexp.MustCompile(`^\d+\.\s+[A-Z][A-Z .,&-]*$`)

// Render lays out the contract as an A4 document: a centered title, bold
// section headings for numbered uppercase lines, wrapped body text for
// everything else. The input is the plain text produced by the generation
// step.
func Render(title, contractText string) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(20, 20, 20)
	doc.SetAutoPageBreak(true, 25)
	doc.AddPage()

	writeTitle(doc, title)

	for _, line := range strings.Split(contractText, "\n") {
		line = strings.TrimRight(line, " \t")

		switch {
		case line == "":
			doc.Ln(3)
		case sectionHeading.MatchString(line):
			doc.Ln(2)
			doc.SetFont("Helvetica", "B", 12)
			doc.MultiCell(0, 6, line, "", "L", false)
			doc.Ln(1)
		default:
			doc.SetFont("Helvetica", "", 10)
			doc.MultiCell(0, 5, line, "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering pdf: %w", err)
	}

	return buf.Bytes(), nil
}

func writeTitle(doc *fpdf.Fpdf, title string) {
	if title == "" {
		title = "Freelance Service Agreement"
	}

	doc.SetFont("Helvetica", "B", 16)
	doc.MultiCell(0, 8, title, "", "C", false)
	doc.Ln(6)
}
