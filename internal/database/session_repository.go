package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/leitner/pkg/models"
)

// SessionRepository archives every completed study session. Unlike the
// store's short history it is never truncated.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new repository instance
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a session and sets its ID
func (r *SessionRepository) Create(ctx context.Context, s *models.Session) error {
	query := r.db.Rebind(`
		INSERT INTO study_sessions (
			session_date, category, level, correct, incorrect, total, success_rate
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`)
	if s.Date.IsZero() {
		s.Date = time.Now()
	}

	err := r.db.QueryRowxContext(ctx, query,
		s.Date.UTC(),
		s.Category,
		s.Level,
		s.Correct,
		s.Incorrect,
		s.Total,
		s.SuccessRate,
	).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// Recent returns up to limit sessions, newest first
func (r *SessionRepository) Recent(ctx context.Context, limit int) ([]models.Session, error) {
	query := r.db.Rebind(`
		SELECT id, session_date, category, level, correct, incorrect, total, success_rate
		FROM study_sessions
		ORDER BY session_date DESC, id DESC
		LIMIT ?
	`)
	var sessions []models.Session
	if err := r.db.SelectContext(ctx, &sessions, query, limit); err != nil {
		return nil, fmt.Errorf("failed to get sessions: %w", err)
	}
	return sessions, nil
}

// StatsByPeriod aggregates the sessions recorded between from and to, inclusive
func (r *SessionRepository) StatsByPeriod(ctx context.Context, from, to time.Time) (*models.PeriodStats, error) {
	query := r.db.Rebind(`
		SELECT
			COUNT(*) AS sessions,
			COALESCE(SUM(total), 0) AS answers,
			COALESCE(SUM(correct), 0) AS correct,
			COALESCE(AVG(success_rate), 0) AS avg_success_rate
		FROM study_sessions
		WHERE session_date BETWEEN ? AND ?
	`)
	stats := models.PeriodStats{From: from, To: to}
	if err := r.db.GetContext(ctx, &stats, query, from.UTC(), to.UTC()); err != nil {
		return nil, fmt.Errorf("failed to get session statistics: %w", err)
	}
	return &stats, nil
}
