package session

import (
	"context"
	"errors"
	"testing"

	"github.com/spigell/interview-prep/internal/input"
	"go.uber.org/zap"
)

type stubGenerator struct {
	set   *QuestionSet
	err   error
	calls int
	block chan struct{}
}

func (g *stubGenerator) Generate(_ context.Context, _ input.Material) (*QuestionSet, error) {
	g.calls++
	if g.block != nil {
		<-g.block
	}
	return g.set, g.err
}

type stubEvaluator struct {
	feedback Feedback
	err      error
	calls    int
	started  chan struct{}
	block    chan struct{}
}

func (e *stubEvaluator) Evaluate(_ context.Context, _ string, _ int, _ string) (Feedback, error) {
	e.calls++
	if e.started != nil {
		close(e.started)
	}
	if e.block != nil {
		<-e.block
	}
	return e.feedback, e.err
}

func documentMaterial() input.Material {
	return input.FromDocument("cv.txt", []byte("Go developer"))
}

func newStartedSession(t *testing.T, eval *stubEvaluator) *Session {
	t.Helper()

	gen := &stubGenerator{set: &QuestionSet{ID: "abc", Questions: []string{"Q1", "Q2", "Q3"}, Skills: []string{"Go"}}}
	s := New(gen, eval, zap.NewNop())
	if err := s.Generate(context.Background(), documentMaterial()); err != nil {
		t.Fatalf("generate: %v", err)
	}
	return s
}

func TestGenerateEstablishesSession(t *testing.T) {
	t.Parallel()

	gen := &stubGenerator{set: &QuestionSet{ID: "abc", Questions: []string{"Q1", "Q2"}, Skills: []string{"Go"}}}
	s := New(gen, &stubEvaluator{}, nil)

	if err := s.Generate(context.Background(), documentMaterial()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap := s.Snapshot()
	if snap.Set == nil || snap.Set.ID != "abc" || len(snap.Set.Questions) != 2 {
		t.Fatalf("unexpected set %+v", snap.Set)
	}
	if snap.Cursor != 0 || snap.Mode != Browsing || len(snap.Answers) != 0 {
		t.Fatalf("unexpected cursor %d mode %s answers %d", snap.Cursor, snap.Mode, len(snap.Answers))
	}
}

func TestGenerateFailureLeavesSessionEmpty(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	s := New(&stubGenerator{err: boom}, &stubEvaluator{}, nil)

	if err := s.Generate(context.Background(), documentMaterial()); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if s.HasSet() || s.Generating() {
		t.Fatalf("session must stay empty and idle after failure")
	}
}

func TestGenerateRejectedWhenSetExists(t *testing.T) {
	t.Parallel()

	s := newStartedSession(t, &stubEvaluator{})
	if err := s.Generate(context.Background(), documentMaterial()); !errors.Is(err, ErrSessionActive) {
		t.Fatalf("expected ErrSessionActive, got %v", err)
	}
}

func TestGenerateBusyFlag(t *testing.T) {
	t.Parallel()

	gen := &stubGenerator{set: &QuestionSet{ID: "abc", Questions: []string{"Q1"}}, block: make(chan struct{})}
	s := New(gen, &stubEvaluator{}, nil)

	done := make(chan error, 1)
	go func() { done <- s.Generate(context.Background(), documentMaterial()) }()

	for !s.Generating() {
	}

	if err := s.Generate(context.Background(), documentMaterial()); !errors.Is(err, ErrGenerationInProgress) {
		t.Fatalf("expected ErrGenerationInProgress, got %v", err)
	}

	close(gen.block)
	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gen.calls != 1 {
		t.Fatalf("expected one generation call, got %d", gen.calls)
	}
}

func TestNextPreviousClamp(t *testing.T) {
	t.Parallel()

	s := newStartedSession(t, &stubEvaluator{})

	if got := s.Previous(); got != 0 {
		t.Fatalf("previous at start moved cursor to %d", got)
	}

	moves := []struct {
		next   bool
		expect int
	}{
		{true, 1}, {true, 2}, {true, 2}, {true, 2}, {false, 1}, {false, 0}, {false, 0},
	}
	for i, m := range moves {
		var got int
		if m.next {
			got = s.Next()
		} else {
			got = s.Previous()
		}
		if got != m.expect {
			t.Fatalf("move %d: expected cursor %d, got %d", i, m.expect, got)
		}
	}
}

func TestNextPreviousWithoutSetAreNoops(t *testing.T) {
	t.Parallel()

	s := New(&stubGenerator{}, &stubEvaluator{}, nil)
	if s.Next() != 0 || s.Previous() != 0 {
		t.Fatalf("cursor moved without a set")
	}
}

func TestSelectQuestionAndBrowse(t *testing.T) {
	t.Parallel()

	s := newStartedSession(t, &stubEvaluator{})

	if err := s.SelectQuestion(2); err != nil {
		t.Fatalf("select: %v", err)
	}
	if cursor, mode := s.Cursor(); cursor != 2 || mode != Practicing {
		t.Fatalf("unexpected cursor %d mode %s", cursor, mode)
	}

	s.Browse()
	if cursor, mode := s.Cursor(); cursor != 2 || mode != Browsing {
		t.Fatalf("browse must keep the cursor, got %d %s", cursor, mode)
	}

	for _, i := range []int{-1, 3} {
		if err := s.SelectQuestion(i); !errors.Is(err, ErrIndexOutOfRange) {
			t.Fatalf("index %d: expected ErrIndexOutOfRange, got %v", i, err)
		}
	}
}

func TestSubmitEmptyAnswerIsLocal(t *testing.T) {
	t.Parallel()

	eval := &stubEvaluator{feedback: Feedback{Text: "Good"}}
	s := newStartedSession(t, eval)

	for _, i := range []int{0, 1, 2} {
		for _, text := range []string{"", "   ", "\n\t"} {
			if _, err := s.SubmitAnswer(context.Background(), i, text); !errors.Is(err, ErrAnswerRequired) {
				t.Fatalf("index %d: expected ErrAnswerRequired, got %v", i, err)
			}
			if _, ok := s.Record(i); ok {
				t.Fatalf("index %d: record created for empty answer", i)
			}
		}
	}
	if eval.calls != 0 {
		t.Fatalf("expected no evaluation calls, got %d", eval.calls)
	}
}

func TestSubmitAnswerStoresRecord(t *testing.T) {
	t.Parallel()

	eval := &stubEvaluator{feedback: Feedback{Text: "Good", ExpectedAnswer: "Ref"}}
	s := newStartedSession(t, eval)

	record, err := s.SubmitAnswer(context.Background(), 0, "My answer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := AnswerRecord{Answer: "My answer", Feedback: Feedback{Text: "Good", ExpectedAnswer: "Ref"}}
	if record != want {
		t.Fatalf("unexpected record %+v", record)
	}
	if stored, ok := s.Record(0); !ok || stored != want {
		t.Fatalf("unexpected stored record %+v", stored)
	}
	if s.State(0) != Answered || s.State(1) != Unanswered {
		t.Fatalf("unexpected states %s %s", s.State(0), s.State(1))
	}
}

func TestSubmitAnswerFailureLeavesUnanswered(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	s := newStartedSession(t, &stubEvaluator{err: boom})

	if _, err := s.SubmitAnswer(context.Background(), 1, "answer"); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if s.State(1) != Unanswered {
		t.Fatalf("expected unanswered, got %s", s.State(1))
	}
	if _, busy := s.Submitting(); busy {
		t.Fatalf("submission lock not released")
	}
}

func TestResubmitRequiresReset(t *testing.T) {
	t.Parallel()

	eval := &stubEvaluator{feedback: Feedback{Text: "Good", ExpectedAnswer: "Ref"}}
	s := newStartedSession(t, eval)

	if _, err := s.SubmitAnswer(context.Background(), 0, "first"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := s.SubmitAnswer(context.Background(), 0, "second"); !errors.Is(err, ErrAlreadyAnswered) {
		t.Fatalf("expected ErrAlreadyAnswered, got %v", err)
	}

	if err := s.ResetAnswer(0); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if err := s.ResetAnswer(0); !errors.Is(err, ErrNotAnswered) {
		t.Fatalf("expected ErrNotAnswered, got %v", err)
	}

	eval.feedback = Feedback{Text: "Excellent", ExpectedAnswer: "Ref2"}
	record, err := s.SubmitAnswer(context.Background(), 0, "second")
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if record.Answer != "second" || record.Feedback.Text != "Excellent" || record.Feedback.ExpectedAnswer != "Ref2" {
		t.Fatalf("old record still observable: %+v", record)
	}
	if eval.calls != 2 {
		t.Fatalf("expected two evaluation calls, got %d", eval.calls)
	}
}

func TestGlobalSubmissionLock(t *testing.T) {
	t.Parallel()

	eval := &stubEvaluator{feedback: Feedback{Text: "Good"}, started: make(chan struct{}), block: make(chan struct{})}
	s := newStartedSession(t, eval)

	done := make(chan error, 1)
	go func() {
		_, err := s.SubmitAnswer(context.Background(), 0, "answer")
		done <- err
	}()
	<-eval.started

	if s.State(0) != Submitting {
		t.Fatalf("expected submitting, got %s", s.State(0))
	}
	if _, err := s.SubmitAnswer(context.Background(), 1, "other"); !errors.Is(err, ErrSubmissionInProgress) {
		t.Fatalf("expected ErrSubmissionInProgress, got %v", err)
	}
	if err := s.SelectQuestion(2); err != nil {
		t.Fatalf("navigation must stay free while submitting: %v", err)
	}

	close(eval.block)
	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.State(0) != Answered {
		t.Fatalf("expected answered, got %s", s.State(0))
	}
}

func TestStartOverDropsInFlightEvaluation(t *testing.T) {
	t.Parallel()

	eval := &stubEvaluator{feedback: Feedback{Text: "Good"}, started: make(chan struct{}), block: make(chan struct{})}
	s := newStartedSession(t, eval)

	done := make(chan error, 1)
	go func() {
		_, err := s.SubmitAnswer(context.Background(), 0, "answer")
		done <- err
	}()
	<-eval.started

	s.StartOver()
	close(eval.block)

	if err := <-done; !errors.Is(err, ErrSessionReplaced) {
		t.Fatalf("expected ErrSessionReplaced, got %v", err)
	}
	if s.HasSet() || len(s.Snapshot().Answers) != 0 {
		t.Fatalf("late result landed in the new session")
	}
}

func TestStartOverIdempotent(t *testing.T) {
	t.Parallel()

	s := newStartedSession(t, &stubEvaluator{feedback: Feedback{Text: "Good"}})
	if _, err := s.SubmitAnswer(context.Background(), 0, "answer"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	_ = s.SelectQuestion(2)

	s.StartOver()
	once := s.Snapshot()
	s.StartOver()
	twice := s.Snapshot()

	if once.Set != nil || twice.Set != nil {
		t.Fatalf("set not discarded")
	}
	if once.Cursor != twice.Cursor || once.Mode != twice.Mode || len(once.Answers) != len(twice.Answers) {
		t.Fatalf("start over is not idempotent: %+v vs %+v", once, twice)
	}
	if _, err := s.SubmitAnswer(context.Background(), 0, "x"); !errors.Is(err, ErrNoQuestionSet) {
		t.Fatalf("expected ErrNoQuestionSet, got %v", err)
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	t.Parallel()

	s := newStartedSession(t, &stubEvaluator{feedback: Feedback{Text: "Good"}})
	if _, err := s.SubmitAnswer(context.Background(), 0, "answer"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	snap := s.Snapshot()
	snap.Set.Questions[0] = "changed"
	delete(snap.Answers, 0)

	again := s.Snapshot()
	if again.Set.Questions[0] != "Q1" {
		t.Fatalf("snapshot aliases questions")
	}
	if _, ok := again.Answers[0]; !ok {
		t.Fatalf("snapshot aliases answers")
	}
}

func TestSnapshotAnsweredIndicesAscending(t *testing.T) {
	t.Parallel()

	snap := Snapshot{Answers: map[int]AnswerRecord{7: {}, 2: {}, 4: {}, 0: {}}}
	got := snap.AnsweredIndices()
	want := []int{0, 2, 4, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}
