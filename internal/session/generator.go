package session

import (
	"context"
	"fmt"
	"slices"

	"github.com/spigell/interview-prep/internal/backend"
	"github.com/spigell/interview-prep/internal/input"
	"github.com/spigell/interview-prep/internal/logger"
	"go.uber.org/zap"
)

// GenerationBackend is the part of the backend client the generator needs.
type GenerationBackend interface {
	GenerateFromDocument(ctx context.Context, doc *input.Document) (*backend.GeneratedSet, error)
	GenerateFromTranscript(ctx context.Context, transcript string) (*backend.GeneratedSet, error)
}

// Generator turns raw material into a question set with exactly one backend
// call. It never retries.
type Generator struct {
	backend GenerationBackend
	logger  *zap.Logger
}

func NewGenerator(b GenerationBackend, log *zap.Logger) *Generator {
	return &Generator{
		backend: b,
		logger:  logger.WithFields(log, zap.String("component", "generator")),
	}
}

func (g *Generator) Generate(ctx context.Context, material input.Material) (*QuestionSet, error) {
	var (
		set *backend.GeneratedSet
		err error
	)

	switch material.Kind {
	case input.KindDocument:
		if material.Document == nil {
			return nil, fmt.Errorf("document material without a document")
		}
		set, err = g.backend.GenerateFromDocument(ctx, material.Document)
	case input.KindSpeech:
		transcript, terr := input.FromTranscript(material.Transcript)
		if terr != nil {
			return nil, terr
		}
		set, err = g.backend.GenerateFromTranscript(ctx, transcript.Transcript)
	default:
		return nil, fmt.Errorf("unknown material kind %q", material.Kind)
	}

	if err != nil {
		g.logger.Warn("question generation failed", zap.String("source", material.Describe()), zap.Error(err))
		return nil, err
	}

	g.logger.Info("question set generated",
		zap.String(logger.FieldSetID, set.ID),
		zap.Int("questions", len(set.Questions)),
		zap.Strings("skills", set.Skills),
	)

	return &QuestionSet{
		ID:        set.ID,
		Questions: slices.Clone(set.Questions),
		Skills:    slices.Clone(set.Skills),
	}, nil
}
