package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubGenerator struct {
	response   string
	err        error
	lastSystem string
	lastPrompt string
}

func (s *stubGenerator) GenerateJSON(_ context.Context, system, prompt string) (string, error) {
	s.lastSystem = system
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func TestInterviewerGenerateQuestions(t *testing.T) {
	stub := &stubGenerator{response: "```json\n" + `{"skills":["Go"],"questions":[{"question":"How do channels work?","expected_answer":"They pass values between goroutines."}]}` + "\n```"}
	interviewer := NewInterviewer(stub, zap.NewNop(), 0)

	set, err := interviewer.GenerateQuestions(context.Background(), "Go developer, 5 years", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(set.Questions) != 1 || set.Questions[0] != "How do channels work?" {
		t.Fatalf("unexpected questions: %q", set.Questions)
	}
	if set.ExpectedAnswers[0] != "They pass values between goroutines." {
		t.Fatalf("unexpected expected answer: %q", set.ExpectedAnswers[0])
	}
	if !strings.Contains(stub.lastPrompt, "Go developer, 5 years") {
		t.Fatalf("material missing from prompt")
	}
	if stub.lastSystem == "" {
		t.Fatalf("expected system instruction")
	}
}

func TestInterviewerRejectsEmptyMaterial(t *testing.T) {
	stub := &stubGenerator{}
	interviewer := NewInterviewer(stub, nil, 0)

	if _, err := interviewer.GenerateQuestions(context.Background(), "  ", 5); err == nil {
		t.Fatal("expected error")
	}
	if stub.lastPrompt != "" {
		t.Fatalf("generator must not be called")
	}
}

func TestInterviewerEvaluateAnswer(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	stub := &stubGenerator{response: `{"feedback":"Good explanation of buffering."}`}
	interviewer := NewInterviewer(stub, zap.New(core), 20)

	feedback, err := interviewer.EvaluateAnswer(context.Background(), "Q", "Expected", "Mine")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if feedback != "Good explanation of buffering." {
		t.Fatalf("unexpected feedback %q", feedback)
	}

	entries := logs.FilterMessage("gemini generate content request").All()
	if len(entries) != 1 {
		t.Fatalf("expected request log, got %d", len(entries))
	}
	preview, _ := entries[0].ContextMap()["prompt_preview"].(string)
	if len([]rune(preview)) > 23 {
		t.Fatalf("prompt preview not truncated: %q", preview)
	}
}

func TestInterviewerPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	interviewer := NewInterviewer(&stubGenerator{err: boom}, nil, 0)

	if _, err := interviewer.EvaluateAnswer(context.Background(), "Q", "E", "A"); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}
