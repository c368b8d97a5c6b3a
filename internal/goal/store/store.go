package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pennywise/internal/goal"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const selectGoalColumns = `id, user_id, title, target_amount, saved_amount, deadline, priority, status, created_at, updated_at`

func (s *Store) CreateGoal(ctx context.Context, g *goal.Goal) error {
	query := `
		INSERT INTO goals (user_id, title, target_amount, saved_amount, deadline, priority, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		g.UserID, g.Title, g.TargetAmount, g.SavedAmount, g.Deadline, g.Priority, g.Status,
	).Scan(&g.ID, &g.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating goal: %w", err)
	}

	return nil
}

func (s *Store) GetGoal(ctx context.Context, userID, id uuid.UUID) (*goal.Goal, error) {
	query := `SELECT ` + selectGoalColumns + ` FROM goals WHERE id = $1 AND user_id = $2`

	g, err := scanGoal(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goal.ErrNotFound
		}

		return nil, fmt.Errorf("getting goal: %w", err)
	}

	return g, nil
}

func (s *Store) ListGoals(ctx context.Context, userID uuid.UUID) ([]*goal.Goal, error) {
	query := `SELECT ` + selectGoalColumns + `
		FROM goals
		WHERE user_id = $1
		ORDER BY priority DESC, created_at ASC`

	return s.queryGoals(ctx, query, userID)
}

func (s *Store) ListInProgress(ctx context.Context, userID uuid.UUID) ([]*goal.Goal, error) {
	query := `SELECT ` + selectGoalColumns + `
		FROM goals
		WHERE user_id = $1 AND status = 'in-progress'
		ORDER BY priority DESC, created_at ASC`

	return s.queryGoals(ctx, query, userID)
}

func (s *Store) queryGoals(ctx context.Context, query string, args ...any) ([]*goal.Goal, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing goals: %w", err)
	}
	defer rows.Close()

	var gs []*goal.Goal

	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning goal: %w", err)
		}

		gs = append(gs, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating goals: %w", err)
	}

	return gs, nil
}

func (s *Store) UpdateGoal(ctx context.Context, g *goal.Goal) error {
	query := `
		UPDATE goals
		SET title = $3, target_amount = $4, saved_amount = $5, deadline = $6,
		    priority = $7, status = $8, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		g.ID, g.UserID, g.Title, g.TargetAmount, g.SavedAmount, g.Deadline, g.Priority, g.Status,
	).Scan(&g.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return goal.ErrNotFound
		}

		return fmt.Errorf("updating goal: %w", err)
	}

	return nil
}

func (s *Store) DeleteGoal(ctx context.Context, userID, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM goals WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting goal: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if n == 0 {
		return goal.ErrNotFound
	}

	return nil
}

// AddSaved increments saved_amount and flips the status in one statement so
// concurrent allocations against the same goal commute.
func (s *Store) AddSaved(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (*goal.Goal, error) {
	query := `
		UPDATE goals
		SET saved_amount = saved_amount + $2,
		    status = CASE
		        WHEN saved_amount + $2 >= target_amount THEN 'achieved'
		        ELSE status
		    END,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + selectGoalColumns

	g, err := scanGoal(s.db.QueryRowContext(ctx, query, id, delta))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goal.ErrNotFound
		}

		return nil, fmt.Errorf("adding to goal saved amount: %w", err)
	}

	return g, nil
}

func (s *Store) ExpireOverdue(ctx context.Context, now time.Time) ([]*goal.Goal, error) {
	query := `
		UPDATE goals
		SET status = 'expired', updated_at = NOW()
		WHERE status = 'in-progress' AND deadline < $1
		RETURNING ` + selectGoalColumns

	rows, err := s.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("expiring goals: %w", err)
	}
	defer rows.Close()

	var gs []*goal.Goal

	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning expired goal: %w", err)
		}

		gs = append(gs, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating expired goals: %w", err)
	}

	return gs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGoal(s scanner) (*goal.Goal, error) {
	var g goal.Goal

	var statusStr string

	if err := s.Scan(
		&g.ID, &g.UserID, &g.Title, &g.TargetAmount, &g.SavedAmount,
		&g.Deadline, &g.Priority, &statusStr, &g.CreatedAt, &g.UpdatedAt,
	); err != nil {
		return nil, err
	}

	g.Status = goal.Status(statusStr)

	return &g, nil
}
