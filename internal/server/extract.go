package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/fumiama/go-docx"
	"github.com/ledongthuc/pdf"
)

var errUnsupportedDocument = errors.New("unsupported document type")

// extractText returns the plain text of an uploaded resume. PDF and DOCX are
// parsed, anything else must already be UTF-8 text.
func extractText(filename string, data []byte) (text string, err error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return pdfText(data)
	case ".docx":
		return docxText(data)
	case ".doc", ".odt", ".rtf":
		return "", errUnsupportedDocument
	}

	if !utf8.Valid(data) {
		return "", errUnsupportedDocument
	}
	if len(data) > 0 && !strings.HasPrefix(http.DetectContentType(data), "text/") {
		return "", errUnsupportedDocument
	}
	return string(data), nil
}

func pdfText(data []byte) (text string, err error) {
	// The parser panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("read pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}

	raw, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	return string(raw), nil
}

func docxText(data []byte) (string, error) {
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read docx: %w", err)
	}

	var paragraphs []string
	for _, item := range doc.Document.Body.Items {
		paragraphs = appendItemText(paragraphs, item)
	}
	return strings.Join(paragraphs, "\n"), nil
}

func appendItemText(out []string, item any) []string {
	switch it := item.(type) {
	case *docx.Paragraph:
		if text := strings.TrimSpace(it.String()); text != "" {
			out = append(out, text)
		}
	case *docx.Table:
		for _, row := range it.TableRows {
			for _, cell := range row.TableCells {
				for _, p := range cell.Paragraphs {
					out = appendItemText(out, p)
				}
				for _, t := range cell.Tables {
					out = appendItemText(out, t)
				}
			}
		}
	}
	return out
}
