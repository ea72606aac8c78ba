package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func newTestClient(t *testing.T, content string, status int, captured *map[string]any) *Client {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			_ = json.NewDecoder(r.Body).Decode(captured)
		}
		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"message": "overloaded", "type": "server_error"},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1234567890,
			"model":   "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
		})
	}))
	t.Cleanup(server.Close)

	return New(server.URL+"/v1", "test-key", "", zap.NewNop())
}

func TestGenerateQuestions(t *testing.T) {
	t.Parallel()

	var req map[string]any
	c := newTestClient(t, `{"skills":["Go"],"questions":[{"question":"Q1","expected_answer":"A1"}]}`, http.StatusOK, &req)

	set, err := c.GenerateQuestions(context.Background(), "Go developer", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if set.Questions[0] != "Q1" || set.ExpectedAnswers[0] != "A1" || set.Skills[0] != "Go" {
		t.Fatalf("unexpected set %+v", set)
	}

	if req["model"] != defaultModel {
		t.Fatalf("unexpected model %v", req["model"])
	}
	format, _ := req["response_format"].(map[string]any)
	if format["type"] != "json_object" {
		t.Fatalf("expected json response format, got %v", req["response_format"])
	}
	messages, _ := req["messages"].([]any)
	if len(messages) != 2 {
		t.Fatalf("expected system and user messages, got %d", len(messages))
	}
	user, _ := messages[1].(map[string]any)
	if content, _ := user["content"].(string); !strings.Contains(content, "Go developer") {
		t.Fatalf("material missing from prompt")
	}
}

func TestEvaluateAnswer(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, `{"feedback":"Excellent depth."}`, http.StatusOK, nil)

	feedback, err := c.EvaluateAnswer(context.Background(), "Q", "E", "A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if feedback != "Excellent depth." {
		t.Fatalf("unexpected feedback %q", feedback)
	}
}

func TestAPIError(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, "", http.StatusServiceUnavailable, nil)

	if _, err := c.EvaluateAnswer(context.Background(), "Q", "E", "A"); err == nil {
		t.Fatal("expected error")
	}
}
