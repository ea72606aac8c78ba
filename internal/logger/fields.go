package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldSetID is the structured log field key for a question set identifier.
	FieldSetID = "question_set_id"
	// FieldQuestionIndex is the structured log field key for a question position.
	FieldQuestionIndex = "question_index"
	// FieldProvider is the structured log field key for the AI provider name.
	FieldProvider = "ai_provider"
	// FieldModel is the structured log field key for the AI model identifier.
	FieldModel = "ai_model"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches fields to logger, falling back to a no-op logger when
// logger is nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// QuestionFields describes a single question of a set.
func QuestionFields(setID string, index int) []zap.Field {
	fields := StringFields(StringField{Key: FieldSetID, Value: setID})
	return append(fields, zap.Int(FieldQuestionIndex, index))
}

// WithAIFields attaches the AI provider and model to logger. Empty values are
// skipped.
func WithAIFields(logger *zap.Logger, provider, model string) *zap.Logger {
	return WithFields(logger, StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)...)
}
