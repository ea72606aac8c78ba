// Package backend is the HTTP client for the interview question service:
// liveness probe, question generation, answer evaluation and history.
package backend

import (
	"net/http"
	"strings"
	"time"

	"github.com/spigell/interview-prep/internal/logger"
	"go.uber.org/zap"
)

const (
	DefaultURL     = "http://localhost:5000"
	DefaultTimeout = 60 * time.Second

	userAgent = "spigell/interview-prep"

	healthPath           = "/api/health"
	uploadDocumentPath   = "/api/upload-resume-public"
	processVoicePath     = "/api/process-voice-public"
	submitAnswerPath     = "/api/submit-answer"
	questionHistoryPath  = "/api/question-history-public"
	documentFormField    = "file"
	maxErrorBodyLogChars = 200
)

type Client struct {
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

// New creates a client for the backend at baseURL. The base URL is the only
// place the backend location is configured.
func New(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultURL
	}

	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		APIURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		logger:    logger.WithFields(log, zap.String("backend", baseURL)),
		UserAgent: userAgent,
	}
}
