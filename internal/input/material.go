// Package input turns the two raw input modes, an uploaded document and a
// spoken self-introduction, into a single Material value ready for question
// generation.
package input

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// Kind tells which backend endpoint a Material is meant for.
type Kind string

const (
	KindDocument Kind = "document"
	KindSpeech   Kind = "speech"
)

const defaultContentType = "application/octet-stream"

// ErrNoSpeech is returned when a transcript is blank after trimming.
var ErrNoSpeech = errors.New("no speech detected")

// Document is an uploaded file. It is sent as-is; type and size are checked
// by the backend only.
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Material is the normalized request body handed to question generation.
// Exactly one of Document and Transcript is meaningful, selected by Kind.
type Material struct {
	Kind       Kind
	Document   *Document
	Transcript string
}

// FromDocument wraps document bytes. The content type is derived from the
// filename extension.
func FromDocument(filename string, data []byte) Material {
	name := filepath.Base(strings.TrimSpace(filename))

	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	if contentType == "" {
		contentType = defaultContentType
	}

	return Material{
		Kind: KindDocument,
		Document: &Document{
			Filename:    name,
			ContentType: contentType,
			Data:        data,
		},
	}
}

// ReadDocument loads the file at path and wraps it with FromDocument.
func ReadDocument(path string) (Material, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Material{}, fmt.Errorf("reading document %q: %w", path, err)
	}

	return FromDocument(path, data), nil
}

// FromTranscript validates a completed transcript. A blank transcript never
// reaches the backend.
func FromTranscript(text string) (Material, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Material{}, ErrNoSpeech
	}

	return Material{Kind: KindSpeech, Transcript: text}, nil
}

// Describe returns a short human readable label used in logs.
func (m Material) Describe() string {
	switch m.Kind {
	case KindDocument:
		if m.Document == nil {
			return "document"
		}
		return fmt.Sprintf("document %s (%s, %d bytes)", m.Document.Filename, m.Document.ContentType, len(m.Document.Data))
	case KindSpeech:
		return fmt.Sprintf("speech transcript (%d chars)", len(m.Transcript))
	default:
		return "unknown input"
	}
}
