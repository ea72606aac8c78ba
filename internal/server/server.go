// Package server is the reference interview backend: question generation from
// uploaded documents or transcripts, answer evaluation and history.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spigell/interview-prep/internal/ai"
	"github.com/spigell/interview-prep/internal/logger"
	"github.com/spigell/interview-prep/internal/store"
	"go.uber.org/zap"
)

const (
	DefaultMaxUploadBytes = 5 << 20
	DefaultQuestions      = 10

	historyLimit       = 100
	answerHistoryLimit = 10
	shutdownTimeout    = 10 * time.Second
)

type Config struct {
	MaxUploadBytes int64
	Questions      int
}

type Server struct {
	store       *store.Store
	interviewer ai.Interviewer
	cfg         Config
	logger      *zap.Logger

	newID func() string
	now   func() time.Time
}

func New(st *store.Store, interviewer ai.Interviewer, cfg Config, log *zap.Logger) *Server {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if cfg.Questions <= 0 {
		cfg.Questions = DefaultQuestions
	}

	return &Server{
		store:       st,
		interviewer: interviewer,
		cfg:         cfg,
		logger:      logger.WithFields(log, zap.String("component", "server")),
		newID:       uuid.NewString,
		now:         time.Now,
	}
}

// Routes registers the API routes.
func (s *Server) Routes(r chi.Router) {
	r.Get("/api/health", s.handleHealth)
	r.With(s.requireDatabase("Feature not available in local mode")).
		Post("/api/upload-resume-public", s.handleUploadDocument)
	r.With(s.requireDatabase("Voice processing not available in local mode")).
		Post("/api/process-voice-public", s.handleProcessVoice)
	r.With(s.requireDatabase("Database unavailable for answer submission")).
		Post("/api/submit-answer", s.handleSubmitAnswer)
	r.With(s.requireDatabase("Question history not available in local mode")).
		Get("/api/question-history-public", s.handleHistory)
	r.With(s.requireDatabase("Answer history not available in local mode")).
		Get("/api/answer-history-public", s.handleAnswerHistory)
}

// Handler returns the full router with middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	s.Routes(r)
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requireDatabase(message string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if s.store == nil || s.store.Ping(r.Context()) != nil {
				writeError(w, http.StatusServiceUnavailable, message)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.logger.Debug("request served",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
