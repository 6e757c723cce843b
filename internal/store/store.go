// Package store persists quiz sessions, answered questions and per-topic
// aggregates in a relational database.
package store

import (
	"context"
	"errors"
)

var ErrSessionNotFound = errors.New("session not found")

// AnswerInput is one graded answer to persist.
type AnswerInput struct {
	Topic         string
	Question      string
	UserAnswer    string
	CorrectAnswer string
	IsCorrect     bool
	Score         int // 0-10
	Feedback      string
	QuestionType  string
}

// SessionSummary is one row of the history list. CorrectCount is computed
// against the session's persisted question records, so an early-finished quiz
// reports only what was actually answered.
type SessionSummary struct {
	ID             int64  `json:"session_id"`
	StartedAt      string `json:"timestamp"`
	TotalQuestions int    `json:"total_questions"`
	TotalScore     int    `json:"total_score"`
	Topic          string `json:"topic"`
	CorrectCount   int    `json:"correct_count"`
}

// QuestionRecord is one persisted answered question. Immutable once written.
type QuestionRecord struct {
	ID            int64  `json:"id"`
	SessionID     int64  `json:"session_id,omitempty"`
	Timestamp     string `json:"timestamp"`
	Topic         string `json:"topic"`
	Question      string `json:"question"`
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
	IsCorrect     bool   `json:"is_correct"`
	Score         int    `json:"score"`
	Feedback      string `json:"feedback"`
	QuestionType  string `json:"question_type"`
}

// TopicStat is the running per-topic aggregate. Accuracy and AvgScore are
// derived on read, never stored.
type TopicStat struct {
	Topic           string  `json:"topic"`
	TotalAttempts   int     `json:"total_attempts"`
	CorrectAttempts int     `json:"correct_attempts"`
	TotalScore      int     `json:"total_score"`
	Accuracy        float64 `json:"accuracy"`
	AvgScore        float64 `json:"avg_score"`
	LastPracticed   string  `json:"last_practiced"`
}

type OverallStats struct {
	TotalQuestions int     `json:"total_questions"`
	CorrectAnswers int     `json:"correct_answers"`
	TotalScore     int     `json:"total_score"`
	AvgScore       float64 `json:"avg_score"`
	Accuracy       float64 `json:"accuracy"`
}

type Store interface {
	CreateSession(ctx context.Context, topic string, totalQuestions int) (int64, error)
	// RecordAnswer inserts one question record and applies the additive
	// user_stats upsert in the same transaction. Recording the same logical
	// answer twice double-counts; callers must call it exactly once per answer.
	RecordAnswer(ctx context.Context, sessionID int64, in AnswerInput) error
	UpdateSessionScore(ctx context.Context, sessionID int64, totalScore int) error
	// SaveAttempt wraps create-session, record-all-answers and the final score
	// update in one transaction so a crash cannot leave a session whose stored
	// score disagrees with its records.
	SaveAttempt(ctx context.Context, topic string, totalQuestions int, answers []AnswerInput) (int64, error)

	ListSessions(ctx context.Context, limit int) ([]SessionSummary, error)
	SessionQuestions(ctx context.Context, sessionID int64) ([]QuestionRecord, error)
	TopicStats(ctx context.Context) ([]TopicStat, error)
	TopicHistory(ctx context.Context, topic string, limit int) ([]QuestionRecord, error)
	OverallStats(ctx context.Context) (OverallStats, error)

	// DeleteSession removes the session's question records and the session row.
	// user_stats rows are intentionally not decremented.
	DeleteSession(ctx context.Context, sessionID int64) error
	DeleteAllHistory(ctx context.Context) error
}
