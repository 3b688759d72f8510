package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"sales_system/internal/domain/model"
)

type LoginAttemptRepository interface {
	// CountRecentFailures returns the number of failed attempts for the
	// username with an attempt time inside the trailing window.
	CountRecentFailures(ctx context.Context, username string, window time.Duration) (int, error)
	Record(ctx context.Context, attempt *model.LoginAttempt) error
	// Clear removes every attempt row for the username, resetting lockout state.
	Clear(ctx context.Context, username string) error
	// DeleteOlderThan prunes rows with an attempt time before the cutoff and
	// returns how many were removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type pgLoginAttemptRepository struct {
	db *sql.DB
}

func NewPgLoginAttemptRepository(db *sql.DB) LoginAttemptRepository {
	return &pgLoginAttemptRepository{db: db}
}

func (r *pgLoginAttemptRepository) CountRecentFailures(ctx context.Context, username string, window time.Duration) (int, error) {
	query := `SELECT COUNT(*) FROM login_attempts
	          WHERE username = $1 AND success = FALSE AND attempt_time > $2`
	var count int
	err := r.db.QueryRowContext(ctx, query, username, time.Now().Add(-window)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("pgLoginAttemptRepository.CountRecentFailures: %w", err)
	}
	return count, nil
}

func (r *pgLoginAttemptRepository) Record(ctx context.Context, attempt *model.LoginAttempt) error {
	query := `INSERT INTO login_attempts (username, ip_address, success, attempt_time)
	          VALUES ($1, $2, $3, NOW())`
	_, err := r.db.ExecContext(ctx, query, attempt.Username, attempt.IPAddress, attempt.Success)
	if err != nil {
		return fmt.Errorf("pgLoginAttemptRepository.Record: %w", err)
	}
	return nil
}

func (r *pgLoginAttemptRepository) Clear(ctx context.Context, username string) error {
	query := `DELETE FROM login_attempts WHERE username = $1`
	_, err := r.db.ExecContext(ctx, query, username)
	if err != nil {
		return fmt.Errorf("pgLoginAttemptRepository.Clear: %w", err)
	}
	return nil
}

func (r *pgLoginAttemptRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM login_attempts WHERE attempt_time < $1`
	res, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pgLoginAttemptRepository.DeleteOlderThan: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("pgLoginAttemptRepository.DeleteOlderThan: %w", err)
	}
	return deleted, nil
}
