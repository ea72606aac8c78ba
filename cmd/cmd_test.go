package cmd

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/viper"
	"github.com/spigell/interview-prep/internal/backend"
	"github.com/spigell/interview-prep/internal/history"
	"go.uber.org/zap"
)

func TestConfigDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}

	if config.Backend.URL != backend.DefaultURL || config.Backend.Timeout != backend.DefaultTimeout {
		t.Fatalf("unexpected backend config: %+v", config.Backend)
	}
	if config.Export.Dir != "." {
		t.Fatalf("unexpected export dir %q", config.Export.Dir)
	}
	if config.Serve.Addr != ":5000" || config.Serve.DB != "interview-prep.db" || config.Serve.Questions != 10 {
		t.Fatalf("unexpected serve config: %+v", config.Serve)
	}
	if config.AI.Provider != providerGemini || config.AI.Gemini.MaxRetries != 3 {
		t.Fatalf("unexpected ai config: %+v", config.AI)
	}
}

func TestConfigFromEnvironment(t *testing.T) {
	t.Setenv("INTERVIEW_PREP_BACKEND_URL", "http://backend:8080")
	t.Setenv("INTERVIEW_PREP_BACKEND_TIMEOUT", "5s")
	t.Setenv("INTERVIEW_PREP_SERVE_MAX_UPLOAD_BYTES", "1024")

	v := viper.New()
	setDefaults(v)
	bindEnv(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}

	if config.Backend.URL != "http://backend:8080" {
		t.Fatalf("unexpected url %q", config.Backend.URL)
	}
	if config.Backend.Timeout != 5*time.Second {
		t.Fatalf("unexpected timeout %s", config.Backend.Timeout)
	}
	if config.Serve.MaxUploadBytes != 1024 {
		t.Fatalf("unexpected max upload bytes %d", config.Serve.MaxUploadBytes)
	}
}

func TestNewInterviewer(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	tests := []struct {
		name    string
		cfg     *AIConfig
		env     string
		wantErr bool
	}{
		{name: "missing config", cfg: nil, wantErr: true},
		{name: "unsupported provider", cfg: &AIConfig{Provider: "llama"}, wantErr: true},
		{name: "gemini without key", cfg: &AIConfig{Provider: "gemini"}, wantErr: true},
		{name: "openai without key", cfg: &AIConfig{Provider: "openai"}, wantErr: true},
		{name: "openai from env", cfg: &AIConfig{Provider: "OpenAI"}, env: "sk-test"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.env != "" {
				t.Setenv("OPENAI_API_KEY", tt.env)
			}

			interviewer, err := newInterviewer(context.Background(), tt.cfg, zap.NewNop())
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("newInterviewer returned error: %v", err)
			}
			if interviewer == nil {
				t.Fatal("expected interviewer")
			}
		})
	}
}

func TestQuestionLabel(t *testing.T) {
	if got := questionLabel(0, "What is Go?", false); got != "[ ] 1. What is Go?" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := questionLabel(2, "Why?", true); got != "[✓] 3. Why?" {
		t.Fatalf("unexpected label %q", got)
	}
}

func TestPracticeActions(t *testing.T) {
	tests := []struct {
		name     string
		answered bool
		cursor   int
		total    int
		want     []string
	}{
		{"first unanswered", false, 0, 3, []string{PromptAnswer, PromptNext, PromptBackToList}},
		{"middle answered", true, 1, 3, []string{PromptTryAgain, PromptNext, PromptPrevious, PromptBackToList}},
		{"last", false, 2, 3, []string{PromptAnswer, PromptPrevious, PromptBackToList}},
		{"single", false, 0, 1, []string{PromptAnswer, PromptBackToList}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := practiceActions(tt.answered, tt.cursor, tt.total)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "status",
			err:  fmt.Errorf("submit: %w", &backend.StatusError{StatusCode: 404, Message: "Question set not found"}),
			want: "Question set not found",
		},
		{
			name: "unreachable",
			err:  fmt.Errorf("%w: dial tcp", backend.ErrUnreachable),
			want: "Unable to connect to the server. Please make sure the backend is running.",
		},
		{
			name: "history fetch",
			err:  &history.FetchError{Message: "Failed to load your question history.", Err: &backend.StatusError{Message: "boom"}},
			want: "Failed to load your question history.",
		},
		{
			name: "plain",
			err:  errors.New("answer is required"),
			want: "answer is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := userMessage(tt.err); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestIsExit(t *testing.T) {
	for _, err := range []error{errExit, promptui.ErrInterrupt, promptui.ErrEOF} {
		if !isExit(err) {
			t.Fatalf("expected %v to be an exit", err)
		}
	}
	if isExit(errStartOver) {
		t.Fatal("start over is not an exit")
	}
}

func TestHistoryEntryDetailsOnlyWhenExpanded(t *testing.T) {
	doc := history.Entry{
		Timestamp:     "2025-03-01T10:00:00",
		Source:        history.SourceDocument,
		Questions:     []string{"Q1", "Q2"},
		Skills:        []string{"Go"},
		ResumeDetails: "cv.pdf",
	}

	label := entryLabel(doc)
	if label != "2025-03-01 10:00:00  document  2 questions" {
		t.Fatalf("unexpected label %q", label)
	}
	if strings.Contains(label, "cv.pdf") {
		t.Fatalf("collapsed label must not show source details: %q", label)
	}

	details := entryDetails(doc)
	for _, want := range []string{"Source: cv.pdf", "Skills: Go", "  1. Q1", "  2. Q2"} {
		if !strings.Contains(details, want) {
			t.Fatalf("expected %q in expanded entry:\n%s", want, details)
		}
	}

	speech := history.Entry{Source: history.SourceSpeech, Questions: []string{"Q1"}}
	if strings.Contains(entryDetails(speech), "Source:") {
		t.Fatalf("speech entries have no source details")
	}
}
