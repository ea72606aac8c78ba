// Package openai implements the interviewer on any OpenAI-compatible chat
// completion API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spigell/interview-prep/internal/ai"
	"github.com/spigell/interview-prep/internal/logger"
	"go.uber.org/zap"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultModel = "gpt-4o-mini"
	maxLogLength = 200

	questionsTemperature = 0.7
	feedbackTemperature  = 0.3
)

// Client wraps an OpenAI-compatible API client.
type Client struct {
	api    *openai.Client
	model  string
	logger *zap.Logger
}

// New creates a new client. An empty baseURL talks to api.openai.com.
func New(baseURL, apiKey, model string, log *zap.Logger) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
		config.BaseURL = baseURL
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	return &Client{
		api:    openai.NewClientWithConfig(config),
		model:  model,
		logger: logger.WithAIFields(log, "openai", model),
	}
}

func (c *Client) GenerateQuestions(ctx context.Context, material string, count int) (*ai.QuestionSet, error) {
	if strings.TrimSpace(material) == "" {
		return nil, errors.New("candidate material is required")
	}

	raw, err := c.complete(ctx, ai.QuestionsSystem, ai.QuestionsPrompt(material, count), questionsTemperature)
	if err != nil {
		return nil, err
	}

	return ai.ParseQuestionSet(raw, count)
}

func (c *Client) EvaluateAnswer(ctx context.Context, question, expected, answer string) (string, error) {
	raw, err := c.complete(ctx, ai.FeedbackSystem, ai.FeedbackPrompt(question, expected, answer), feedbackTemperature)
	if err != nil {
		return "", err
	}

	return ai.ParseFeedback(raw)
}

func (c *Client) complete(ctx context.Context, system, prompt string, temperature float32) (string, error) {
	c.logger.Debug("chat completion request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, maxLogLength)),
	)

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("LLM API call: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("LLM returned no choices")
	}

	raw := resp.Choices[0].Message.Content
	c.logger.Debug("chat completion response", zap.String("response_preview", logger.TruncateForLog(raw, maxLogLength)))

	return raw, nil
}

func (c *Client) Model() string {
	return c.model
}
