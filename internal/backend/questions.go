package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/spigell/interview-prep/internal/input"
	"go.uber.org/zap"
)

// GeneratedSet is the backend answer to a generation request.
type GeneratedSet struct {
	ID        string   `json:"question_set_id"`
	Questions []string `json:"questions"`
	Skills    []string `json:"skills"`
	Message   string   `json:"message,omitempty"`
}

type transcriptRequest struct {
	Transcription string `json:"transcription"`
}

// GenerateFromDocument uploads a document and returns the generated set.
// The document is sent as-is: the backend decides what it accepts.
func (c *Client) GenerateFromDocument(ctx context.Context, doc *input.Document) (*GeneratedSet, error) {
	if doc == nil {
		return nil, errors.New("document is required")
	}

	var set GeneratedSet
	if err := c.postDocument(ctx, uploadDocumentPath, doc, &set); err != nil {
		return nil, fmt.Errorf("upload document %q: %w", doc.Filename, err)
	}

	return c.checkSet(&set)
}

// GenerateFromTranscript submits a speech transcript and returns the generated set.
func (c *Client) GenerateFromTranscript(ctx context.Context, transcript string) (*GeneratedSet, error) {
	var set GeneratedSet
	if err := c.postJSON(ctx, processVoicePath, transcriptRequest{Transcription: transcript}, &set); err != nil {
		return nil, fmt.Errorf("process transcript: %w", err)
	}

	return c.checkSet(&set)
}

func (c *Client) checkSet(set *GeneratedSet) (*GeneratedSet, error) {
	if set.ID == "" {
		return nil, fmt.Errorf("%w: missing question_set_id", ErrMalformedResponse)
	}
	if set.Questions == nil {
		set.Questions = []string{}
	}
	if set.Skills == nil {
		set.Skills = []string{}
	}

	c.logger.Debug("question set generated",
		zap.String("question_set_id", set.ID),
		zap.Int("questions", len(set.Questions)),
		zap.Int("skills", len(set.Skills)),
	)

	return set, nil
}
