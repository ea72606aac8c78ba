package backend

import (
	"context"
	"fmt"

	"github.com/spigell/interview-prep/internal/logger"
)

// Evaluation is the backend judgement of one answer.
type Evaluation struct {
	Feedback       string
	ExpectedAnswer string
}

type submitAnswerRequest struct {
	QuestionSetID string `json:"question_set_id"`
	QuestionIndex int    `json:"question_index"`
	Answer        string `json:"answer"`
}

type submitAnswerResponse struct {
	Feedback       *string `json:"feedback"`
	ExpectedAnswer *string `json:"expected_answer"`
	Message        string  `json:"message"`
}

// SubmitAnswer sends one answer for evaluation.
func (c *Client) SubmitAnswer(ctx context.Context, setID string, index int, answer string) (*Evaluation, error) {
	payload := submitAnswerRequest{
		QuestionSetID: setID,
		QuestionIndex: index,
		Answer:        answer,
	}

	var resp submitAnswerResponse
	if err := c.postJSON(ctx, submitAnswerPath, payload, &resp); err != nil {
		return nil, fmt.Errorf("submit answer: %w", err)
	}

	if resp.Feedback == nil || resp.ExpectedAnswer == nil {
		return nil, fmt.Errorf("%w: evaluation lacks feedback or expected answer", ErrMalformedResponse)
	}

	c.logger.Debug("answer evaluated", logger.QuestionFields(setID, index)...)

	return &Evaluation{
		Feedback:       *resp.Feedback,
		ExpectedAnswer: *resp.ExpectedAnswer,
	}, nil
}
