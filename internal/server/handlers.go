package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/spigell/interview-prep/internal/ai"
	"github.com/spigell/interview-prep/internal/logger"
	"github.com/spigell/interview-prep/internal/store"
	"go.uber.org/zap"
)

const isoLayout = "2006-01-02T15:04:05.000000"

type healthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Timestamp string `json:"timestamp"`
	Mode      string `json:"mode"`
}

type generatedResponse struct {
	QuestionSetID string   `json:"question_set_id"`
	Questions     []string `json:"questions"`
	Skills        []string `json:"skills"`
}

type transcriptRequest struct {
	Transcription *string `json:"transcription"`
}

type submitAnswerRequest struct {
	QuestionSetID string `json:"question_set_id"`
	QuestionIndex *int   `json:"question_index"`
	Answer        string `json:"answer"`
}

type submitAnswerResponse struct {
	Feedback       string `json:"feedback"`
	ExpectedAnswer string `json:"expected_answer"`
	Message        string `json:"message"`
}

type answerHistoryItem struct {
	ID             int64  `json:"_id"`
	QuestionSetID  string `json:"question_set_id"`
	QuestionIndex  int    `json:"question_index"`
	UserAnswer     string `json:"user_answer"`
	AIFeedback     string `json:"ai_feedback"`
	ExpectedAnswer string `json:"expected_answer"`
	Timestamp      string `json:"timestamp"`
}

type historyItem struct {
	ID            string   `json:"_id"`
	Timestamp     string   `json:"timestamp"`
	SourceType    string   `json:"sourceType"`
	Questions     []string `json:"questions"`
	Skills        []string `json:"skills"`
	ResumeDetails string   `json:"resumeDetails,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:    "ok",
		Database:  "connected",
		Timestamp: s.now().UTC().Format(isoLayout),
		Mode:      "production",
	}
	if s.store == nil || s.store.Ping(r.Context()) != nil {
		resp.Database = "disconnected"
		resp.Mode = "local_development"
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "File is too large")
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			writeError(w, http.StatusBadRequest, "No file part")
		default:
			writeError(w, http.StatusBadRequest, "Invalid upload")
		}
		return
	}
	defer file.Close()

	filename := filepath.Base(strings.TrimSpace(header.Filename))
	if filename == "" || filename == "." {
		writeError(w, http.StatusBadRequest, "No selected file")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid upload")
		return
	}

	text, err := extractText(filename, data)
	if errors.Is(err, errUnsupportedDocument) {
		writeError(w, http.StatusUnsupportedMediaType, "Unsupported file type, upload a PDF, DOCX, plain text or markdown document")
		return
	}
	if err != nil {
		s.logger.Warn("extracting document text failed", zap.String("filename", filename), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to process resume")
		return
	}
	if strings.TrimSpace(text) == "" {
		writeError(w, http.StatusBadRequest, "Uploaded file is empty")
		return
	}

	s.generate(w, r, store.SourceResume, filename, text, "Failed to process resume")
}

func (s *Server) handleProcessVoice(w http.ResponseWriter, r *http.Request) {
	var req transcriptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Transcription == nil || strings.TrimSpace(*req.Transcription) == "" {
		writeError(w, http.StatusBadRequest, "No transcription data provided")
		return
	}

	s.generate(w, r, store.SourceVoice, "", *req.Transcription, "Failed to process voice input")
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request, source, details, material, failure string) {
	log := s.logger.With(zap.String("source", source))

	set, err := s.interviewer.GenerateQuestions(r.Context(), material, s.cfg.Questions)
	if err != nil {
		log.Error("question generation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, failure)
		return
	}

	qs := store.QuestionSet{
		ID:              s.newID(),
		SourceType:      source,
		ResumeDetails:   details,
		Questions:       set.Questions,
		ExpectedAnswers: set.ExpectedAnswers,
		Skills:          set.Skills,
		CreatedAt:       s.now(),
	}
	if err := s.store.InsertQuestionSet(r.Context(), qs); err != nil {
		log.Error("storing question set failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, failure)
		return
	}

	log.Info("question set generated",
		zap.String(logger.FieldSetID, qs.ID),
		zap.Int("questions", len(qs.Questions)),
	)

	writeJSON(w, http.StatusOK, generatedResponse{
		QuestionSetID: qs.ID,
		Questions:     nonNil(qs.Questions),
		Skills:        nonNil(qs.Skills),
	})
}

func (s *Server) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req submitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
		strings.TrimSpace(req.QuestionSetID) == "" || req.QuestionIndex == nil || strings.TrimSpace(req.Answer) == "" {
		writeError(w, http.StatusBadRequest, "Missing data for answer submission")
		return
	}

	index := *req.QuestionIndex
	log := logger.WithFields(s.logger, logger.QuestionFields(req.QuestionSetID, index)...)

	qs, err := s.store.GetQuestionSet(r.Context(), req.QuestionSetID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Question set not found")
		return
	}
	if err != nil {
		log.Error("loading question set failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to submit answer")
		return
	}

	if index < 0 || index >= len(qs.Questions) {
		writeError(w, http.StatusBadRequest, "Question index out of bounds")
		return
	}

	question := qs.Questions[index]
	var expected string
	if index < len(qs.ExpectedAnswers) {
		expected = qs.ExpectedAnswers[index]
	}

	feedback, err := s.interviewer.EvaluateAnswer(r.Context(), question, expected, req.Answer)
	if err != nil {
		log.Warn("answer evaluation failed, using fallback feedback", zap.Error(err))
		feedback = ai.FallbackFeedback
	}

	if _, err := s.store.InsertAnswer(r.Context(), store.Answer{
		QuestionSetID:  qs.ID,
		QuestionIndex:  index,
		Answer:         req.Answer,
		Feedback:       feedback,
		ExpectedAnswer: expected,
		CreatedAt:      s.now(),
	}); err != nil {
		log.Error("storing answer failed", zap.Error(err))
	}

	writeJSON(w, http.StatusOK, submitAnswerResponse{
		Feedback:       feedback,
		ExpectedAnswer: expected,
		Message:        "Answer submitted successfully",
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sets, err := s.store.ListQuestionSets(r.Context(), historyLimit)
	if err != nil {
		s.logger.Error("listing question sets failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to retrieve public question history")
		return
	}

	items := make([]historyItem, 0, len(sets))
	for _, qs := range sets {
		items = append(items, historyItem{
			ID:            qs.ID,
			Timestamp:     qs.CreatedAt.UTC().Format(isoLayout),
			SourceType:    qs.SourceType,
			Questions:     nonNil(qs.Questions),
			Skills:        nonNil(qs.Skills),
			ResumeDetails: qs.ResumeDetails,
		})
	}

	writeJSON(w, http.StatusOK, items)
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// handleAnswerHistory lists the newest answers, or every answer of one set in
// submission order when question_set_id is given.
func (s *Server) handleAnswerHistory(w http.ResponseWriter, r *http.Request) {
	var (
		answers []store.Answer
		err     error
	)
	if setID := strings.TrimSpace(r.URL.Query().Get("question_set_id")); setID != "" {
		answers, err = s.store.ListAnswers(r.Context(), setID)
	} else {
		answers, err = s.store.ListRecentAnswers(r.Context(), answerHistoryLimit)
	}
	if err != nil {
		s.logger.Error("listing answers failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to retrieve answer history")
		return
	}

	items := make([]answerHistoryItem, 0, len(answers))
	for _, a := range answers {
		items = append(items, answerHistoryItem{
			ID:             a.ID,
			QuestionSetID:  a.QuestionSetID,
			QuestionIndex:  a.QuestionIndex,
			UserAnswer:     a.Answer,
			AIFeedback:     a.Feedback,
			ExpectedAnswer: a.ExpectedAnswer,
			Timestamp:      a.CreatedAt.UTC().Format(isoLayout),
		})
	}

	writeJSON(w, http.StatusOK, items)
}
