package session

import "errors"

var (
	ErrAnswerRequired       = errors.New("answer required")
	ErrNoQuestionSet        = errors.New("no question set")
	ErrSessionActive        = errors.New("a question set already exists, start over first")
	ErrGenerationInProgress = errors.New("question generation already in progress")
	ErrSubmissionInProgress = errors.New("another answer is being evaluated")
	ErrIndexOutOfRange      = errors.New("question index out of range")
	ErrAlreadyAnswered      = errors.New("question already answered, try again to reset it")
	ErrNotAnswered          = errors.New("question has no answer")
	// ErrSessionReplaced is returned for a call that completed after the
	// session it belonged to was discarded. Its result is dropped.
	ErrSessionReplaced = errors.New("session was replaced while the request was in flight")
)
