package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrNoQuestions = errors.New("model returned no questions")

// ParseQuestionSet reads a model response into a question set of at most
// count questions. Questions may come as objects with an expected answer or
// as plain strings with a parallel "expected_answers" list.
func ParseQuestionSet(raw string, count int) (*QuestionSet, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(ExtractJSON(raw)), &data); err != nil {
		return nil, fmt.Errorf("parse model response: %w", err)
	}

	set := &QuestionSet{Skills: coerceStrings(data["skills"])}
	expected := coerceStrings(data["expected_answers"])

	items, _ := data["questions"].([]any)
	for i, item := range items {
		var question, answer string
		switch val := item.(type) {
		case map[string]any:
			question = coerceString(val["question"])
			answer = coerceString(val["expected_answer"])
		default:
			question = coerceString(val)
			if i < len(expected) {
				answer = expected[i]
			}
		}

		if question == "" {
			continue
		}
		set.Questions = append(set.Questions, question)
		set.ExpectedAnswers = append(set.ExpectedAnswers, answer)

		if count > 0 && len(set.Questions) == count {
			break
		}
	}

	if len(set.Questions) == 0 {
		return nil, ErrNoQuestions
	}
	if set.Skills == nil {
		set.Skills = []string{}
	}

	return set, nil
}

// ParseFeedback reads a model response into feedback text. A response that
// is not JSON is taken as the feedback itself.
func ParseFeedback(raw string) (string, error) {
	cleaned := ExtractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		if text := strings.Join(strings.Fields(cleaned), " "); text != "" && !strings.HasPrefix(text, "{") {
			return text, nil
		}
		return "", fmt.Errorf("parse model response: %w", err)
	}

	feedback := strings.Join(strings.Fields(coerceString(data["feedback"])), " ")
	if feedback == "" {
		return "", errors.New("model returned empty feedback")
	}
	return feedback, nil
}

// ExtractJSON strips markdown code fences around a model response.
func ExtractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceStrings(v any) []string {
	switch val := v.(type) {
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s := coerceString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		var out []string
		for _, part := range strings.Split(val, ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}
