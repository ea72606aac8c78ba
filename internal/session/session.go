// Package session owns the live interview session: the question set, the
// per-question answer records and the cursor. All mutation goes through
// Session methods; readers get detached snapshots.
package session

import (
	"context"
	"strings"
	"sync"

	"github.com/spigell/interview-prep/internal/input"
	"github.com/spigell/interview-prep/internal/logger"
	"go.uber.org/zap"
)

const noSubmission = -1

// QuestionGenerator produces a question set from raw material.
type QuestionGenerator interface {
	Generate(ctx context.Context, material input.Material) (*QuestionSet, error)
}

// AnswerEvaluator evaluates one answer.
type AnswerEvaluator interface {
	Evaluate(ctx context.Context, setID string, index int, answer string) (Feedback, error)
}

type Session struct {
	generator QuestionGenerator
	evaluator AnswerEvaluator
	logger    *zap.Logger

	mu         sync.Mutex
	set        *QuestionSet
	answers    map[int]AnswerRecord
	cursor     int
	mode       Mode
	generating bool
	submitting int
	// epoch changes whenever the session is replaced; in-flight calls compare
	// it before writing their result.
	epoch uint64
}

func New(generator QuestionGenerator, evaluator AnswerEvaluator, log *zap.Logger) *Session {
	return &Session{
		generator:  generator,
		evaluator:  evaluator,
		logger:     logger.WithFields(log, zap.String("component", "session")),
		answers:    map[int]AnswerRecord{},
		submitting: noSubmission,
	}
}

// Generate creates the session's question set. It is only allowed while no
// set exists and no other generation is running. On failure the session is
// left untouched.
func (s *Session) Generate(ctx context.Context, material input.Material) error {
	s.mu.Lock()
	if s.set != nil {
		s.mu.Unlock()
		return ErrSessionActive
	}
	if s.generating {
		s.mu.Unlock()
		return ErrGenerationInProgress
	}
	s.generating = true
	epoch := s.epoch
	s.mu.Unlock()

	set, err := s.generator.Generate(ctx, material)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.generating = false
	if err != nil {
		return err
	}
	if s.epoch != epoch {
		return ErrSessionReplaced
	}

	s.set = set.clone()
	s.answers = map[int]AnswerRecord{}
	s.cursor = 0
	s.mode = Browsing
	s.submitting = noSubmission
	s.epoch++

	s.logger.Info("session started",
		zap.String(logger.FieldSetID, set.ID),
		zap.Int("questions", len(set.Questions)),
	)

	return nil
}

// SelectQuestion moves the cursor to index and enters Practicing mode.
func (s *Session) SelectQuestion(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkIndex(index); err != nil {
		return err
	}

	s.cursor = index
	s.mode = Practicing
	return nil
}

// Browse returns to the question list without moving the cursor.
func (s *Session) Browse() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mode = Browsing
}

// Next advances the cursor, staying put on the last question.
func (s *Session) Next() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.set != nil && s.cursor < len(s.set.Questions)-1 {
		s.cursor++
	}
	return s.cursor
}

// Previous moves the cursor back, staying put on the first question.
func (s *Session) Previous() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.set != nil && s.cursor > 0 {
		s.cursor--
	}
	return s.cursor
}

// SubmitAnswer evaluates text as the answer for index and stores the record
// on success. Only one submission may be outstanding for the whole session.
func (s *Session) SubmitAnswer(ctx context.Context, index int, text string) (AnswerRecord, error) {
	if strings.TrimSpace(text) == "" {
		return AnswerRecord{}, ErrAnswerRequired
	}

	s.mu.Lock()
	if err := s.checkIndex(index); err != nil {
		s.mu.Unlock()
		return AnswerRecord{}, err
	}
	if s.submitting != noSubmission {
		s.mu.Unlock()
		return AnswerRecord{}, ErrSubmissionInProgress
	}
	if _, ok := s.answers[index]; ok {
		s.mu.Unlock()
		return AnswerRecord{}, ErrAlreadyAnswered
	}
	s.submitting = index
	epoch := s.epoch
	setID := s.set.ID
	s.mu.Unlock()

	feedback, err := s.evaluator.Evaluate(ctx, setID, index, text)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epoch != epoch {
		s.logger.Debug("dropping evaluation for a replaced session", logger.QuestionFields(setID, index)...)
		return AnswerRecord{}, ErrSessionReplaced
	}

	s.submitting = noSubmission
	if err != nil {
		return AnswerRecord{}, err
	}

	record := AnswerRecord{Answer: text, Feedback: feedback}
	s.answers[index] = record
	return record, nil
}

// ResetAnswer discards the record for index so it can be answered again.
func (s *Session) ResetAnswer(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkIndex(index); err != nil {
		return err
	}
	if _, ok := s.answers[index]; !ok {
		return ErrNotAnswered
	}

	delete(s.answers, index)
	return nil
}

// StartOver discards the question set, every record and the cursor. Calls in
// flight at that moment have their results dropped.
func (s *Session) StartOver() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.set != nil {
		s.logger.Info("session discarded", zap.String(logger.FieldSetID, s.set.ID))
	}

	s.set = nil
	s.answers = map[int]AnswerRecord{}
	s.cursor = 0
	s.mode = Browsing
	s.submitting = noSubmission
	s.epoch++
}

func (s *Session) State(index int) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.submitting == index && s.set != nil:
		return Submitting
	case s.hasRecord(index):
		return Answered
	default:
		return Unanswered
	}
}

func (s *Session) Record(index int) (AnswerRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.answers[index]
	return record, ok
}

func (s *Session) HasSet() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.set != nil
}

func (s *Session) Cursor() (int, Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cursor, s.mode
}

// Generating reports whether a generation call is in flight.
func (s *Session) Generating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.generating
}

// Submitting reports the index whose answer is being evaluated, if any.
func (s *Session) Submitting() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.submitting, s.submitting != noSubmission
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	answers := make(map[int]AnswerRecord, len(s.answers))
	for i, record := range s.answers {
		answers[i] = record
	}

	return Snapshot{
		Set:     s.set.clone(),
		Answers: answers,
		Cursor:  s.cursor,
		Mode:    s.mode,
	}
}

func (s *Session) hasRecord(index int) bool {
	_, ok := s.answers[index]
	return ok
}

func (s *Session) checkIndex(index int) error {
	if s.set == nil {
		return ErrNoQuestionSet
	}
	if index < 0 || index >= len(s.set.Questions) {
		return ErrIndexOutOfRange
	}
	return nil
}
