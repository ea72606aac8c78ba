package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"
	"github.com/spigell/interview-prep/internal/session"
)

const fontFamily = "Helvetica"

// RenderPDF draws a laid out document. Pagination is taken from the layout,
// so automatic page breaks are disabled.
func RenderPDF(doc *Document, w io.Writer) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(Title, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, page := range doc.Pages {
		pdf.AddPage()
		for _, e := range page.Elements {
			style := ""
			if e.Bold {
				style = "B"
			}
			pdf.SetFont(fontFamily, style, e.Size)

			text := tr(e.Text)
			x := e.X
			if e.Align == AlignCenter {
				x -= pdf.GetStringWidth(text) / 2
			}
			pdf.Text(x, e.Y, text)
		}
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}

	return pdf.Output(w)
}

// WriteSessionPDF lays out the snapshot and writes it to dir. It returns the
// path of the written file.
func WriteSessionPDF(dir string, snap session.Snapshot) (string, error) {
	doc, err := Layout(snap.Set, snap.Answers)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, SessionFilename(snap.Set.ID))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}

	if err := RenderPDF(doc, f); err != nil {
		f.Close()
		return "", err
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}

	return path, nil
}
