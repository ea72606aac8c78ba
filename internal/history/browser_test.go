package history

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spigell/interview-prep/internal/backend"
	"go.uber.org/zap"
)

type fakeBackend struct {
	probeErr     error
	historyErr   error
	items        [][]backend.HistoryItem
	probeCalls   int
	historyCalls int
}

func (f *fakeBackend) Probe(context.Context) (*backend.Health, error) {
	f.probeCalls++
	if f.probeErr != nil {
		return nil, f.probeErr
	}
	return &backend.Health{Status: "ok", Mode: "production"}, nil
}

func (f *fakeBackend) History(context.Context) ([]backend.HistoryItem, error) {
	f.historyCalls++
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	items := f.items[0]
	if len(f.items) > 1 {
		f.items = f.items[1:]
	}
	return items, nil
}

func TestFetchKeepsBackendOrder(t *testing.T) {
	t.Parallel()

	fb := &fakeBackend{items: [][]backend.HistoryItem{{
		{ID: "2", Timestamp: "2024-05-02T09:30:00", SourceType: "voice", Questions: []string{"Q2"}},
		{ID: "1", Timestamp: "2024-05-01T10:00:00.123456", SourceType: "resume", ResumeDetails: "cv.txt"},
	}}}
	b := NewBrowser(fb, zap.NewNop())

	entries, err := b.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 || entries[0].ID != "2" || entries[1].ID != "1" {
		t.Fatalf("unexpected order %+v", entries)
	}
	if entries[0].Source != SourceSpeech || entries[1].Source != SourceDocument {
		t.Fatalf("unexpected sources %s %s", entries[0].Source, entries[1].Source)
	}
	if entries[1].Date() != "2024-05-01 10:00:00" {
		t.Fatalf("unexpected date %q", entries[1].Date())
	}
	if details, ok := entries[1].SourceDetails(); !ok || details != "cv.txt" {
		t.Fatalf("unexpected details %q %v", details, ok)
	}
	if _, ok := entries[0].SourceDetails(); ok {
		t.Fatalf("speech entries have no source details")
	}
}

func TestFetchProbeFailureSkipsHistory(t *testing.T) {
	t.Parallel()

	fb := &fakeBackend{probeErr: backend.ErrUnreachable}
	b := NewBrowser(fb, nil)

	entries, err := b.Fetch(context.Background())
	if !errors.Is(err, backend.ErrUnreachable) {
		t.Fatalf("expected ErrUnreachable, got %v", err)
	}

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) || fetchErr.Message != "Unable to connect to the server. Please make sure the backend is running." {
		t.Fatalf("unexpected message %v", err)
	}
	if len(entries) != 0 || len(b.Entries()) != 0 {
		t.Fatalf("history must stay empty")
	}
	if fb.historyCalls != 0 {
		t.Fatalf("history call attempted after failed probe")
	}
}

func TestFetchStatusMessages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status int
		expect string
	}{
		{404, "The question history endpoint was not found. Please check if the backend server is properly configured."},
		{503, "Question history is not available in local development mode."},
		{500, "Server error occurred while fetching history. Please try again later."},
		{418, "teapot"},
	}

	for _, tt := range tests {
		fb := &fakeBackend{historyErr: &backend.StatusError{StatusCode: tt.status, Message: "teapot"}}
		_, err := NewBrowser(fb, nil).Fetch(context.Background())
		if err == nil || err.Error() != tt.expect {
			t.Fatalf("status %d: expected %q, got %v", tt.status, tt.expect, err)
		}
		if !backend.IsStatus(err, tt.status) {
			t.Fatalf("status %d: cause lost", tt.status)
		}
	}
}

func TestRefreshReplacesList(t *testing.T) {
	t.Parallel()

	fb := &fakeBackend{items: [][]backend.HistoryItem{
		{{ID: "a"}, {ID: "b"}},
		{{ID: "c"}},
	}}
	b := NewBrowser(fb, nil)

	if _, err := b.Fetch(context.Background()); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if _, err := b.Toggle(1); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	entries, err := b.Refresh(context.Background())
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "c" {
		t.Fatalf("refresh merged instead of replacing: %+v", entries)
	}
	if b.Expanded(1) {
		t.Fatalf("expansion state survived refresh")
	}
}

func TestFetchFailureClearsList(t *testing.T) {
	t.Parallel()

	fb := &fakeBackend{items: [][]backend.HistoryItem{{{ID: "a"}}}}
	b := NewBrowser(fb, nil)
	if _, err := b.Fetch(context.Background()); err != nil {
		t.Fatalf("fetch: %v", err)
	}

	fb.historyErr = &backend.StatusError{StatusCode: 500}
	if _, err := b.Refresh(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if len(b.Entries()) != 0 {
		t.Fatalf("failed refresh must leave the list empty")
	}
}

func TestToggle(t *testing.T) {
	t.Parallel()

	fb := &fakeBackend{items: [][]backend.HistoryItem{{{ID: "a"}, {ID: "b"}}}}
	b := NewBrowser(fb, nil)
	if _, err := b.Fetch(context.Background()); err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if b.Expanded(0) || b.Expanded(1) {
		t.Fatalf("entries must start collapsed")
	}
	if open, _ := b.Toggle(0); !open {
		t.Fatalf("expected expanded")
	}
	if b.Expanded(1) {
		t.Fatalf("toggle must be per entry")
	}
	if open, _ := b.Toggle(0); open {
		t.Fatalf("expected collapsed")
	}
	if _, err := b.Toggle(5); err == nil {
		t.Fatalf("expected error for unknown entry")
	}
}

func TestExport(t *testing.T) {
	t.Parallel()

	fb := &fakeBackend{items: [][]backend.HistoryItem{{
		{ID: "a", Timestamp: "2024-05-01T10:00:00Z", Questions: []string{"Q1", "Q2"}, Skills: []string{"Go"}},
		{ID: "b"},
	}}}
	b := NewBrowser(fb, nil)
	if _, err := b.Fetch(context.Background()); err != nil {
		t.Fatalf("fetch: %v", err)
	}

	dir := t.TempDir()
	path, err := b.Export(dir, 1)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if filepath.Base(path) != "interview-questions-1.txt" {
		t.Fatalf("unexpected filename %s", path)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "Interview Questions Export\n\nDate: No timestamp\n\nQuestions:\nNo questions available\n\nSkills: No skills identified" {
		t.Fatalf("unexpected content %q", data)
	}

	path, err = b.Export(dir, 0)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != "Interview Questions Export\n\nDate: 2024-05-01 10:00:00\n\nQuestions:\nQ1\n\nQ2\n\nSkills: Go" {
		t.Fatalf("unexpected content %q", data)
	}
}
