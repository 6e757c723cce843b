package store

import (
	"context"
	"database/sql"
	"time"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
	now    func() time.Time
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver, now: time.Now}
}

func (s *SQLStore) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

type execQueryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLStore) CreateSession(ctx context.Context, topic string, totalQuestions int) (int64, error) {
	return s.insertSession(ctx, s.db, topic, totalQuestions)
}

func (s *SQLStore) insertSession(ctx context.Context, q execQueryer, topic string, totalQuestions int) (int64, error) {
	const stmt = `INSERT INTO sessions (session_start, total_questions, total_score, topic)
		VALUES ($1, $2, 0, $3)`
	if s.driver == "postgres" {
		var id int64
		err := q.QueryRowContext(ctx, stmt+` RETURNING id`, s.timestamp(), totalQuestions, topic).Scan(&id)
		return id, wrapDBErr(err)
	}
	res, err := q.ExecContext(ctx, stmt, s.timestamp(), totalQuestions, topic)
	if err != nil {
		return 0, wrapDBErr(err)
	}
	id, err := res.LastInsertId()
	return id, wrapDBErr(err)
}

func (s *SQLStore) RecordAnswer(ctx context.Context, sessionID int64, in AnswerInput) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := s.recordAnswerTx(ctx, tx, sessionID, in); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLStore) recordAnswerTx(ctx context.Context, tx *sql.Tx, sessionID int64, in AnswerInput) error {
	ts := s.timestamp()
	var sid any
	if sessionID > 0 {
		sid = sessionID
	}
	_, err := tx.ExecContext(ctx, `INSERT INTO quiz_history
		(session_id, ts, topic, question, user_answer, correct_answer, is_correct, score, feedback, question_type)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		sid, ts, in.Topic, in.Question, in.UserAnswer, in.CorrectAnswer,
		boolToInt(in.IsCorrect), in.Score, in.Feedback, in.QuestionType)
	if err != nil {
		return wrapDBErr(err)
	}
	// Additive upsert: a second record for the same answer double-counts.
	_, err = tx.ExecContext(ctx, `INSERT INTO user_stats (topic, total_attempts, correct_attempts, total_score, last_practiced)
		VALUES ($1, 1, $2, $3, $4)
		ON CONFLICT (topic) DO UPDATE SET
			total_attempts = user_stats.total_attempts + 1,
			correct_attempts = user_stats.correct_attempts + $2,
			total_score = user_stats.total_score + $3,
			last_practiced = $4`,
		in.Topic, boolToInt(in.IsCorrect), in.Score, ts)
	return wrapDBErr(err)
}

func (s *SQLStore) UpdateSessionScore(ctx context.Context, sessionID int64, totalScore int) error {
	res, err := s.db.ExecContext(ctx, `UPDATE sessions SET total_score=$1 WHERE id=$2`, totalScore, sessionID)
	if err != nil {
		return wrapDBErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (s *SQLStore) SaveAttempt(ctx context.Context, topic string, totalQuestions int, answers []AnswerInput) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	sessionID, err := s.insertSession(ctx, tx, topic, totalQuestions)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, in := range answers {
		if err := s.recordAnswerTx(ctx, tx, sessionID, in); err != nil {
			return 0, err
		}
		total += in.Score
	}
	if _, err := tx.ExecContext(ctx, `UPDATE sessions SET total_score=$1 WHERE id=$2`, total, sessionID); err != nil {
		return 0, wrapDBErr(err)
	}
	if err := tx.Commit(); err != nil {
		return 0, wrapDBErr(err)
	}
	return sessionID, nil
}

func (s *SQLStore) ListSessions(ctx context.Context, limit int) ([]SessionSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.session_start, s.total_questions, s.total_score, s.topic,
		       COUNT(CASE WHEN h.is_correct = 1 THEN 1 END) AS correct_count
		FROM sessions s
		LEFT JOIN quiz_history h ON h.session_id = s.id
		GROUP BY s.id, s.session_start, s.total_questions, s.total_score, s.topic
		ORDER BY s.session_start DESC, s.id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, wrapDBErr(err)
	}
	defer rows.Close()

	out := []SessionSummary{}
	for rows.Next() {
		var sess SessionSummary
		if err := rows.Scan(&sess.ID, &sess.StartedAt, &sess.TotalQuestions, &sess.TotalScore, &sess.Topic, &sess.CorrectCount); err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

func (s *SQLStore) SessionQuestions(ctx context.Context, sessionID int64) ([]QuestionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, COALESCE(session_id, 0), ts, topic, question,
		       COALESCE(user_answer,''), COALESCE(correct_answer,''),
		       is_correct, score, COALESCE(feedback,''), COALESCE(question_type,'')
		FROM quiz_history
		WHERE session_id = $1
		ORDER BY ts ASC, id ASC`, sessionID)
	if err != nil {
		return nil, wrapDBErr(err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (s *SQLStore) TopicHistory(ctx context.Context, topic string, limit int) ([]QuestionRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, COALESCE(session_id, 0), ts, topic, question,
		       COALESCE(user_answer,''), COALESCE(correct_answer,''),
		       is_correct, score, COALESCE(feedback,''), COALESCE(question_type,'')
		FROM quiz_history
		WHERE topic = $1
		ORDER BY ts DESC, id DESC
		LIMIT $2`, topic, limit)
	if err != nil {
		return nil, wrapDBErr(err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]QuestionRecord, error) {
	out := []QuestionRecord{}
	for rows.Next() {
		var r QuestionRecord
		var correct int
		if err := rows.Scan(&r.ID, &r.SessionID, &r.Timestamp, &r.Topic, &r.Question,
			&r.UserAnswer, &r.CorrectAnswer, &correct, &r.Score, &r.Feedback, &r.QuestionType); err != nil {
			return nil, err
		}
		r.IsCorrect = correct != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLStore) TopicStats(ctx context.Context) ([]TopicStat, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT topic, total_attempts, correct_attempts, total_score, COALESCE(last_practiced,'')
		FROM user_stats
		ORDER BY total_attempts DESC, topic ASC`)
	if err != nil {
		return nil, wrapDBErr(err)
	}
	defer rows.Close()

	out := []TopicStat{}
	for rows.Next() {
		var t TopicStat
		if err := rows.Scan(&t.Topic, &t.TotalAttempts, &t.CorrectAttempts, &t.TotalScore, &t.LastPracticed); err != nil {
			return nil, err
		}
		if t.TotalAttempts > 0 {
			t.Accuracy = float64(t.CorrectAttempts) / float64(t.TotalAttempts) * 100
			t.AvgScore = float64(t.TotalScore) / float64(t.TotalAttempts)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLStore) OverallStats(ctx context.Context) (OverallStats, error) {
	var st OverallStats
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN is_correct = 1 THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(score), 0)
		FROM quiz_history`).Scan(&st.TotalQuestions, &st.CorrectAnswers, &st.TotalScore)
	if err != nil {
		return OverallStats{}, wrapDBErr(err)
	}
	if st.TotalQuestions > 0 {
		st.AvgScore = float64(st.TotalScore) / float64(st.TotalQuestions)
		st.Accuracy = float64(st.CorrectAnswers) / float64(st.TotalQuestions) * 100
	}
	return st, nil
}

func (s *SQLStore) DeleteSession(ctx context.Context, sessionID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM quiz_history WHERE session_id = $1`, sessionID); err != nil {
		return wrapDBErr(err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, sessionID)
	if err != nil {
		return wrapDBErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSessionNotFound
	}
	return tx.Commit()
}

func (s *SQLStore) DeleteAllHistory(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, stmt := range []string{
		`DELETE FROM quiz_history`,
		`DELETE FROM sessions`,
		`DELETE FROM user_stats`,
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return wrapDBErr(err)
		}
	}
	return tx.Commit()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ Store = (*SQLStore)(nil)
