package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/Veraticus/decision-queue/internal/common"
	"github.com/Veraticus/decision-queue/internal/model"
	"github.com/Veraticus/decision-queue/internal/service"
)

// RecordRun stores a dashboard run and returns it with its assigned id.
func (s *SQLiteStorage) RecordRun(ctx context.Context, run service.Run) (service.Run, error) {
	if err := validateContext(ctx); err != nil {
		return service.Run{}, err
	}
	if run.EvaluatedAt.IsZero() {
		return service.Run{}, fmt.Errorf("%w: evaluatedAt", ErrEmptyString)
	}

	if run.ID == "" {
		run.ID = s.newID()
	}
	run.EvaluatedAt = run.EvaluatedAt.UTC()

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		query, args, err := sq.Insert("runs").
			Columns("id", "evaluated_at", "action_count").
			Values(run.ID, run.EvaluatedAt, run.ActionCount).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build run insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to save run: %w", classify(err))
		}

		if len(run.Items) == 0 {
			return nil
		}

		insert := sq.Insert("run_items").Columns(
			"run_id", "position", "item_id", "title", "tier", "severity",
			"category", "sort_score", "pass", "child_count",
		)
		for i, item := range run.Items {
			run.Items[i].Position = i
			insert = insert.Values(
				run.ID, i, item.ItemID, item.Title, string(item.Tier), string(item.Severity),
				string(item.Category), item.SortScore, item.Pass, item.ChildCount,
			)
		}
		query, args, err = insert.ToSql()
		if err != nil {
			return fmt.Errorf("failed to build run item insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to save run items: %w", classify(err))
		}
		return nil
	})
	if err != nil {
		return service.Run{}, err
	}

	return run, nil
}

// ListRuns returns the most recent runs without their items, newest first.
// A limit of zero returns every run.
func (s *SQLiteStorage) ListRuns(ctx context.Context, limit int) ([]service.Run, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}

	builder := sq.Select("id", "evaluated_at", "action_count", "created_at").
		From("runs").
		OrderBy("evaluated_at DESC", "created_at DESC", "id ASC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build run query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", classify(err))
	}
	defer func() { _ = rows.Close() }()

	var runs []service.Run
	for rows.Next() {
		var run service.Run
		if err := rows.Scan(&run.ID, &run.EvaluatedAt, &run.ActionCount, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.EvaluatedAt = run.EvaluatedAt.UTC()
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

// GetRun returns a run and its items in display order.
func (s *SQLiteStorage) GetRun(ctx context.Context, id string) (service.Run, error) {
	if err := validateContext(ctx); err != nil {
		return service.Run{}, err
	}
	if err := validateString(id, "id"); err != nil {
		return service.Run{}, err
	}

	query, args, err := sq.Select("id", "evaluated_at", "action_count", "created_at").
		From("runs").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return service.Run{}, fmt.Errorf("failed to build run query: %w", err)
	}

	var run service.Run
	err = s.db.QueryRowContext(ctx, query, args...).
		Scan(&run.ID, &run.EvaluatedAt, &run.ActionCount, &run.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return service.Run{}, fmt.Errorf("run %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return service.Run{}, fmt.Errorf("failed to get run: %w", classify(err))
	}
	run.EvaluatedAt = run.EvaluatedAt.UTC()

	query, args, err = sq.Select(
		"position", "item_id", "title", "tier", "severity", "category",
		"sort_score", "pass", "child_count",
	).
		From("run_items").
		Where(sq.Eq{"run_id": id}).
		OrderBy("position ASC").
		ToSql()
	if err != nil {
		return service.Run{}, fmt.Errorf("failed to build run item query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return service.Run{}, fmt.Errorf("failed to query run items: %w", classify(err))
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			item                     service.RunItem
			tier, severity, category string
		)
		if err := rows.Scan(
			&item.Position, &item.ItemID, &item.Title, &tier, &severity, &category,
			&item.SortScore, &item.Pass, &item.ChildCount,
		); err != nil {
			return service.Run{}, fmt.Errorf("failed to scan run item: %w", err)
		}
		item.Tier = model.Tier(tier)
		item.Severity = model.Severity(severity)
		item.Category = model.Category(category)
		run.Items = append(run.Items, item)
	}
	if err := rows.Err(); err != nil {
		return service.Run{}, fmt.Errorf("error iterating run items: %w", err)
	}

	return run, nil
}

// DeleteRun removes a run and its items.
func (s *SQLiteStorage) DeleteRun(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", classify(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("run %s: %w", id, common.ErrNotFound)
	}
	return nil
}
