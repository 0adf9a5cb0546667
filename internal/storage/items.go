package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/Veraticus/decision-queue/internal/model"
	"github.com/Veraticus/decision-queue/internal/service"
)

var itemColumns = []string{
	"id", "surface", "severity", "category", "tier", "title", "description",
	"title_key", "chips", "context", "ctas", "children", "dismissible", "created_at",
}

// SaveItems stores items from the named source, replacing items with the same id.
func (s *SQLiteStorage) SaveItems(ctx context.Context, sourceName string, items []model.DecisionItem) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateItems(items); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, item := range items {
			if err := saveItemTx(ctx, tx, sourceName, item); err != nil {
				return err
			}
		}
		return nil
	})
}

func saveItemTx(ctx context.Context, q queryable, sourceName string, item model.DecisionItem) error {
	chips, err := marshalJSON(item.Chips, "[]")
	if err != nil {
		return fmt.Errorf("failed to encode chips for %s: %w", item.ID, err)
	}
	itemContext, err := json.Marshal(item.Context)
	if err != nil {
		return fmt.Errorf("failed to encode context for %s: %w", item.ID, err)
	}
	ctas, err := marshalJSON(item.CTAs, "[]")
	if err != nil {
		return fmt.Errorf("failed to encode ctas for %s: %w", item.ID, err)
	}
	children, err := marshalJSON(item.Children, "[]")
	if err != nil {
		return fmt.Errorf("failed to encode children for %s: %w", item.ID, err)
	}

	query, args, err := sq.Insert("items").
		Columns(append([]string{"source"}, itemColumns...)...).
		Values(
			sourceName, item.ID, string(item.Surface), string(item.Severity), string(item.Category),
			string(item.Tier), item.Title, item.Description, string(item.TitleKey),
			chips, string(itemContext), ctas, children, item.Dismissible, item.CreatedAt.UTC(),
		).
		Suffix(`ON CONFLICT(id) DO UPDATE SET
			source = excluded.source,
			surface = excluded.surface,
			severity = excluded.severity,
			category = excluded.category,
			tier = excluded.tier,
			title = excluded.title,
			description = excluded.description,
			title_key = excluded.title_key,
			chips = excluded.chips,
			context = excluded.context,
			ctas = excluded.ctas,
			children = excluded.children,
			dismissible = excluded.dismissible,
			created_at = excluded.created_at,
			imported_at = CURRENT_TIMESTAMP`).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build item insert: %w", err)
	}

	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to save item %s: %w", item.ID, classify(err))
	}
	return nil
}

// ListItems implements service.Storage. It returns stored items matching the filter, oldest first, ties by id.
func (s *SQLiteStorage) ListItems(ctx context.Context, filter service.ItemFilter) ([]model.DecisionItem, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateFilter(filter); err != nil {
		return nil, err
	}

	builder := sq.Select(itemColumns...).From("items").OrderBy("created_at ASC", "id ASC")
	if len(filter.Tiers) > 0 {
		builder = builder.Where(sq.Eq{"tier": stringsOf(filter.Tiers)})
	}
	if len(filter.TitleKeys) > 0 {
		builder = builder.Where(sq.Eq{"title_key": stringsOf(filter.TitleKeys)})
	}
	if filter.Surface != "" {
		builder = builder.Where(sq.Eq{"surface": string(filter.Surface)})
	}
	if filter.Source != "" {
		builder = builder.Where(sq.Eq{"source": filter.Source})
	}
	if filter.Since != nil {
		builder = builder.Where(sq.GtOrEq{"created_at": filter.Since.UTC()})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build item query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", classify(err))
	}
	defer func() { _ = rows.Close() }()

	var items []model.DecisionItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}

	return items, nil
}

// CountItems returns the number of stored items.
func (s *SQLiteStorage) CountItems(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count items: %w", classify(err))
	}
	return count, nil
}

// DeleteItems removes items by id and returns how many were deleted.
// With no ids it deletes nothing.
func (s *SQLiteStorage) DeleteItems(ctx context.Context, ids ...string) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	query, args, err := sq.Delete("items").Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build item delete: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete items: %w", classify(err))
	}
	return res.RowsAffected()
}

func scanItem(rows *sql.Rows) (model.DecisionItem, error) {
	var (
		item                                        model.DecisionItem
		surface, severity, category, tier, titleKey string
		chips, itemContext, ctas, children          string
	)

	if err := rows.Scan(
		&item.ID, &surface, &severity, &category, &tier, &item.Title, &item.Description,
		&titleKey, &chips, &itemContext, &ctas, &children, &item.Dismissible, &item.CreatedAt,
	); err != nil {
		return model.DecisionItem{}, fmt.Errorf("failed to scan item: %w", err)
	}

	item.Surface = model.Surface(surface)
	item.Severity = model.Severity(severity)
	item.Category = model.Category(category)
	item.Tier = model.Tier(tier)
	item.TitleKey = model.TitleKey(titleKey)
	item.CreatedAt = item.CreatedAt.UTC()

	if err := unmarshalJSON(chips, &item.Chips); err != nil {
		return model.DecisionItem{}, fmt.Errorf("failed to decode chips for %s: %w", item.ID, err)
	}
	if err := unmarshalJSON(itemContext, &item.Context); err != nil {
		return model.DecisionItem{}, fmt.Errorf("failed to decode context for %s: %w", item.ID, err)
	}
	if err := unmarshalJSON(ctas, &item.CTAs); err != nil {
		return model.DecisionItem{}, fmt.Errorf("failed to decode ctas for %s: %w", item.ID, err)
	}
	if err := unmarshalJSON(children, &item.Children); err != nil {
		return model.DecisionItem{}, fmt.Errorf("failed to decode children for %s: %w", item.ID, err)
	}

	return item, nil
}

// marshalJSON encodes v, using empty for nil or empty slices.
func marshalJSON[T any](v []T, empty string) (string, error) {
	if len(v) == 0 {
		return empty, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// unmarshalJSON decodes data into v, leaving empty arrays as nil slices.
func unmarshalJSON(data string, v any) error {
	if data == "" || data == "[]" || data == "null" {
		return nil
	}
	return json.Unmarshal([]byte(data), v)
}

func stringsOf[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
