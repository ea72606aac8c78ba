package session

import (
	"context"

	"github.com/spigell/interview-prep/internal/backend"
	"github.com/spigell/interview-prep/internal/logger"
	"go.uber.org/zap"
)

// EvaluationBackend is the part of the backend client the coordinator needs.
type EvaluationBackend interface {
	SubmitAnswer(ctx context.Context, setID string, index int, answer string) (*backend.Evaluation, error)
}

// Coordinator submits one answer per call to the evaluation backend. Results
// are not cached.
type Coordinator struct {
	backend EvaluationBackend
	logger  *zap.Logger
}

func NewCoordinator(b EvaluationBackend, log *zap.Logger) *Coordinator {
	return &Coordinator{
		backend: b,
		logger:  logger.WithFields(log, zap.String("component", "feedback")),
	}
}

func (c *Coordinator) Evaluate(ctx context.Context, setID string, index int, answer string) (Feedback, error) {
	log := logger.WithFields(c.logger, logger.QuestionFields(setID, index)...)
	log.Debug("submitting answer", zap.String("answer", logger.TruncateForLog(answer, 120)))

	eval, err := c.backend.SubmitAnswer(ctx, setID, index, answer)
	if err != nil {
		log.Warn("answer evaluation failed", zap.Error(err))
		return Feedback{}, err
	}

	log.Debug("answer evaluated", zap.String("tone", ToneOf(eval.Feedback).String()))

	return Feedback{
		Text:           eval.Feedback,
		ExpectedAnswer: eval.ExpectedAnswer,
	}, nil
}
