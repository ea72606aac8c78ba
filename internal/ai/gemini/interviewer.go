package gemini

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/spigell/interview-prep/internal/ai"
	"github.com/spigell/interview-prep/internal/logger"
	"go.uber.org/zap"
)

type contentGenerator interface {
	GenerateJSON(ctx context.Context, system, message string) (string, error)
}

// Interviewer implements ai.Interviewer on top of Gemini.
type Interviewer struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

const defaultMaxLogLength = 200

func NewInterviewer(generator contentGenerator, log *zap.Logger, maxLogLength int) *Interviewer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Interviewer{
		generator: generator,
		logger:    logger.WithFields(log),
		maxLogLen: maxLogLength,
	}
}

func (i *Interviewer) GenerateQuestions(ctx context.Context, material string, count int) (*ai.QuestionSet, error) {
	if strings.TrimSpace(material) == "" {
		return nil, errors.New("candidate material is required")
	}

	raw, err := i.call(ctx, "questions", ai.QuestionsSystem, ai.QuestionsPrompt(material, count))
	if err != nil {
		return nil, err
	}

	return ai.ParseQuestionSet(raw, count)
}

func (i *Interviewer) EvaluateAnswer(ctx context.Context, question, expected, answer string) (string, error) {
	raw, err := i.call(ctx, "feedback", ai.FeedbackSystem, ai.FeedbackPrompt(question, expected, answer))
	if err != nil {
		return "", err
	}

	return ai.ParseFeedback(raw)
}

func (i *Interviewer) call(ctx context.Context, purpose, system, prompt string) (string, error) {
	i.logger.Debug("gemini generate content request",
		zap.String("purpose", purpose),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, i.maxLogLen)),
	)

	raw, err := i.generator.GenerateJSON(ctx, system, prompt)
	if err != nil {
		return "", err
	}

	i.logger.Debug("gemini generate content response",
		zap.String("purpose", purpose),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, i.maxLogLen)),
	)

	return raw, nil
}
