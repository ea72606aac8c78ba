// Package ai holds the contract the reference backend uses to generate
// interview questions and judge answers, plus the prompt and parsing helpers
// shared by the providers.
package ai

import "context"

// FallbackFeedback is returned to the candidate when the provider fails to
// evaluate an answer.
const FallbackFeedback = "Your answer has been recorded. Consider reviewing the expected answer to identify areas for improvement."

// QuestionSet is what a provider extracts from candidate material.
// ExpectedAnswers is aligned with Questions.
type QuestionSet struct {
	Skills          []string
	Questions       []string
	ExpectedAnswers []string
}

type Interviewer interface {
	GenerateQuestions(ctx context.Context, material string, count int) (*QuestionSet, error)
	EvaluateAnswer(ctx context.Context, question, expected, answer string) (string, error)
}
