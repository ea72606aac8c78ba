// Package store persists question sets and submitted answers for the
// reference backend.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const (
	SourceResume = "resume"
	SourceVoice  = "voice"

	// Fixed width so text order is time order.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

var ErrNotFound = errors.New("not found")

type QuestionSet struct {
	ID              string
	SourceType      string
	ResumeDetails   string
	Questions       []string
	ExpectedAnswers []string
	Skills          []string
	CreatedAt       time.Time
}

type Answer struct {
	ID             int64
	QuestionSetID  string
	QuestionIndex  int
	Answer         string
	Feedback       string
	ExpectedAnswer string
	CreatedAt      time.Time
}

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if strings.HasPrefix(dbPath, ":memory:") {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS question_sets (
		id TEXT PRIMARY KEY,
		source_type TEXT NOT NULL,
		resume_details TEXT NOT NULL DEFAULT '',
		questions TEXT NOT NULL,
		expected_answers TEXT NOT NULL,
		skills TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS question_sets_created_at ON question_sets(created_at);

	CREATE TABLE IF NOT EXISTS answers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		question_set_id TEXT NOT NULL,
		question_index INTEGER NOT NULL,
		answer TEXT NOT NULL,
		feedback TEXT NOT NULL,
		expected_answer TEXT NOT NULL,
		created_at TEXT NOT NULL,
		FOREIGN KEY (question_set_id) REFERENCES question_sets(id)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// InsertQuestionSet stores a generated set. CreatedAt defaults to now.
func (s *Store) InsertQuestionSet(ctx context.Context, qs QuestionSet) error {
	if qs.CreatedAt.IsZero() {
		qs.CreatedAt = time.Now()
	}

	questions, err := encodeList(qs.Questions)
	if err != nil {
		return err
	}
	expected, err := encodeList(qs.ExpectedAnswers)
	if err != nil {
		return err
	}
	skills, err := encodeList(qs.Skills)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO question_sets (id, source_type, resume_details, questions, expected_answers, skills, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		qs.ID, qs.SourceType, qs.ResumeDetails, questions, expected, skills, qs.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert question set %s: %w", qs.ID, err)
	}
	return nil
}

// GetQuestionSet returns a set by id or ErrNotFound.
func (s *Store) GetQuestionSet(ctx context.Context, id string) (*QuestionSet, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source_type, resume_details, questions, expected_answers, skills, created_at
		 FROM question_sets WHERE id = ?`, id,
	)

	qs, err := scanQuestionSet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get question set %s: %w", id, err)
	}
	return qs, nil
}

// ListQuestionSets returns the newest sets first. A non-positive limit
// returns all of them.
func (s *Store) ListQuestionSets(ctx context.Context, limit int) ([]QuestionSet, error) {
	query := `SELECT id, source_type, resume_details, questions, expected_answers, skills, created_at
		FROM question_sets ORDER BY created_at DESC, rowid DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sets []QuestionSet
	for rows.Next() {
		qs, err := scanQuestionSet(rows)
		if err != nil {
			return nil, err
		}
		sets = append(sets, *qs)
	}
	return sets, rows.Err()
}

// InsertAnswer stores an evaluated answer.
func (s *Store) InsertAnswer(ctx context.Context, a Answer) (int64, error) {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO answers (question_set_id, question_index, answer, feedback, expected_answer, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.QuestionSetID, a.QuestionIndex, a.Answer, a.Feedback, a.ExpectedAnswer, a.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("insert answer: %w", err)
	}
	return res.LastInsertId()
}

// ListAnswers returns the answers of a set in submission order.
func (s *Store) ListAnswers(ctx context.Context, setID string) ([]Answer, error) {
	return s.queryAnswers(ctx,
		`SELECT id, question_set_id, question_index, answer, feedback, expected_answer, created_at
		 FROM answers WHERE question_set_id = ? ORDER BY id`, setID,
	)
}

// ListRecentAnswers returns up to limit answers across all sets, newest first.
func (s *Store) ListRecentAnswers(ctx context.Context, limit int) ([]Answer, error) {
	if limit <= 0 {
		limit = -1
	}
	return s.queryAnswers(ctx,
		`SELECT id, question_set_id, question_index, answer, feedback, expected_answer, created_at
		 FROM answers ORDER BY created_at DESC, id DESC LIMIT ?`, limit,
	)
}

func (s *Store) queryAnswers(ctx context.Context, query string, args ...any) ([]Answer, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query answers: %w", err)
	}
	defer rows.Close()

	var answers []Answer
	for rows.Next() {
		var (
			a       Answer
			created string
		)
		if err := rows.Scan(&a.ID, &a.QuestionSetID, &a.QuestionIndex, &a.Answer, &a.Feedback, &a.ExpectedAnswer, &created); err != nil {
			return nil, err
		}
		if a.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
			return nil, fmt.Errorf("parse answer time: %w", err)
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanQuestionSet(row scanner) (*QuestionSet, error) {
	var (
		qs                          QuestionSet
		questions, expected, skills string
		created                     string
	)
	if err := row.Scan(&qs.ID, &qs.SourceType, &qs.ResumeDetails, &questions, &expected, &skills, &created); err != nil {
		return nil, err
	}

	var err error
	if qs.Questions, err = decodeList(questions); err != nil {
		return nil, err
	}
	if qs.ExpectedAnswers, err = decodeList(expected); err != nil {
		return nil, err
	}
	if qs.Skills, err = decodeList(skills); err != nil {
		return nil, err
	}
	if qs.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
		return nil, fmt.Errorf("parse question set time: %w", err)
	}
	return &qs, nil
}

func encodeList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encode list: %w", err)
	}
	return string(data), nil
}

func decodeList(raw string) ([]string, error) {
	items := []string{}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	return items, nil
}
