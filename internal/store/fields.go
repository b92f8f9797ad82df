package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// UpdateField stores value under key for itemID, replacing any previous value.
func (s *Store) UpdateField(ctx context.Context, itemID int64, key string, value any) error {
	key = strings.TrimSpace(key)
	if itemID <= 0 {
		return fmt.Errorf("store: update field %q: invalid item id %d", key, itemID)
	}
	if key == "" {
		return errors.New("store: update field: empty key")
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("store: encode field %q: %w", key, err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO fields(post_id, field_key, value_json) VALUES(?, ?, ?)
		 ON CONFLICT(post_id, field_key) DO UPDATE SET value_json = excluded.value_json`,
		itemID, key, string(raw)); err != nil {
		return fmt.Errorf("store: update field %q of %d: %w", key, itemID, err)
	}
	return nil
}

// FieldValues returns every stored field of itemID.
func (s *Store) FieldValues(ctx context.Context, itemID int64) (map[string]any, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT field_key, value_json FROM fields WHERE post_id = ? ORDER BY field_key`, itemID)
	if err != nil {
		return nil, fmt.Errorf("store: list fields of %d: %w", itemID, err)
	}
	defer rows.Close()

	out := make(map[string]any)
	for rows.Next() {
		var (
			key string
			raw string
		)
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, fmt.Errorf("store: scan field: %w", err)
		}
		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			return nil, fmt.Errorf("store: decode field %q: %w", key, err)
		}
		out[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: scan fields: %w", err)
	}
	return out, nil
}
