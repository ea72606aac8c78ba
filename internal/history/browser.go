// Package history browses previously generated question sets. It is read-only
// and never touches the live session.
package history

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/spigell/interview-prep/internal/backend"
	"github.com/spigell/interview-prep/internal/export"
	"github.com/spigell/interview-prep/internal/logger"
	"go.uber.org/zap"
)

type SourceKind string

const (
	SourceDocument SourceKind = "document"
	SourceSpeech   SourceKind = "speech"
	SourceUnknown  SourceKind = "unknown"
)

// Entry is one past question set.
type Entry struct {
	ID            string
	Timestamp     string
	Source        SourceKind
	Questions     []string
	Skills        []string
	ResumeDetails string
}

// Date formats the entry timestamp for display. Unparseable timestamps are
// shown as they came; a missing one yields "".
func (e Entry) Date() string {
	ts := strings.TrimSpace(e.Timestamp)
	if ts == "" {
		return ""
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, ts); err == nil {
			return t.Format(time.DateTime)
		}
	}
	return ts
}

// SourceDetails describes where a document entry came from. Speech entries
// have none.
func (e Entry) SourceDetails() (string, bool) {
	if e.Source != SourceDocument {
		return "", false
	}
	if e.ResumeDetails == "" {
		return "No resume details available", true
	}
	return e.ResumeDetails, true
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	time.DateTime,
}

// Backend is the part of the backend client the browser needs.
type Backend interface {
	Probe(ctx context.Context) (*backend.Health, error)
	History(ctx context.Context) ([]backend.HistoryItem, error)
}

type Browser struct {
	backend Backend
	logger  *zap.Logger

	mu       sync.Mutex
	entries  []Entry
	expanded map[int]bool
}

func NewBrowser(b Backend, log *zap.Logger) *Browser {
	return &Browser{
		backend:  b,
		logger:   logger.WithFields(log, zap.String("component", "history")),
		expanded: map[int]bool{},
	}
}

// Fetch probes the backend and then loads the history, replacing the list.
// When the probe fails no history call is made. Any failure leaves the list
// empty.
func (b *Browser) Fetch(ctx context.Context) ([]Entry, error) {
	if _, err := b.backend.Probe(ctx); err != nil {
		b.logger.Warn("backend probe failed", zap.Error(err))
		b.clear()
		return nil, describe(err)
	}

	items, err := b.backend.History(ctx)
	if err != nil {
		b.logger.Warn("history fetch failed", zap.Error(err))
		b.clear()
		return nil, describe(err)
	}

	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		entries = append(entries, Entry{
			ID:            item.ID,
			Timestamp:     item.Timestamp,
			Source:        sourceKind(item.SourceType),
			Questions:     item.Questions,
			Skills:        item.Skills,
			ResumeDetails: firstNonEmpty(item.ResumeDetails, item.ResumeName),
		})
	}

	b.mu.Lock()
	b.entries = entries
	b.expanded = map[int]bool{}
	b.mu.Unlock()

	b.logger.Debug("history loaded", zap.Int("entries", len(entries)))

	return b.Entries(), nil
}

func (b *Browser) clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries = nil
	b.expanded = map[int]bool{}
}

// Refresh re-runs Fetch and replaces the list.
func (b *Browser) Refresh(ctx context.Context) ([]Entry, error) {
	return b.Fetch(ctx)
}

// Entries returns the loaded entries in backend order.
func (b *Browser) Entries() []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Toggle flips the expansion of entry index and returns the new state.
func (b *Browser) Toggle(index int) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if index < 0 || index >= len(b.entries) {
		return false, fmt.Errorf("history entry %d does not exist", index)
	}

	b.expanded[index] = !b.expanded[index]
	return b.expanded[index], nil
}

func (b *Browser) Expanded(index int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.expanded[index]
}

// Export writes the flat text of entry index to dir.
func (b *Browser) Export(dir string, index int) (string, error) {
	b.mu.Lock()
	if index < 0 || index >= len(b.entries) {
		b.mu.Unlock()
		return "", fmt.Errorf("history entry %d does not exist", index)
	}
	entry := b.entries[index]
	b.mu.Unlock()

	return export.WriteFlatText(dir, index, export.FlatEntry{
		Date:      entry.Date(),
		Questions: entry.Questions,
		Skills:    entry.Skills,
	})
}

func sourceKind(raw string) SourceKind {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "resume", "document":
		return SourceDocument
	case "voice", "speech":
		return SourceSpeech
	default:
		return SourceUnknown
	}
}

// FetchError carries a user facing message for a failed fetch.
type FetchError struct {
	Message string
	Err     error
}

func (e *FetchError) Error() string { return e.Message }

func (e *FetchError) Unwrap() error { return e.Err }

func describe(err error) error {
	msg := err.Error()

	var statusErr *backend.StatusError
	switch {
	case errors.Is(err, backend.ErrUnreachable):
		msg = "Unable to connect to the server. Please make sure the backend is running."
	case errors.As(err, &statusErr):
		switch statusErr.StatusCode {
		case http.StatusNotFound:
			msg = "The question history endpoint was not found. Please check if the backend server is properly configured."
		case http.StatusServiceUnavailable:
			msg = "Question history is not available in local development mode."
		case http.StatusInternalServerError:
			msg = "Server error occurred while fetching history. Please try again later."
		default:
			msg = statusErr.Message
		}
	case errors.Is(err, backend.ErrMalformedResponse):
		msg = "Failed to load your question history."
	}

	return &FetchError{Message: msg, Err: err}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
