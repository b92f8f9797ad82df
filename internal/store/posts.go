package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-quickpost/pkg/savehook"
	"github.com/goliatone/go-quickpost/pkg/taxonomy"
)

// CreateDraft inserts an empty item of contentType and returns its ID. The
// editor creates one per page load so the save pipeline always has an ID.
func (s *Store) CreateDraft(ctx context.Context, contentType string) (int64, error) {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		contentType = savehook.DefaultContentType
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO posts(type, updated_at_unixms) VALUES(?, ?)`,
		contentType, s.now().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("store: create draft: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: create draft: %w", err)
	}
	return id, nil
}

// Post loads the item with id.
func (s *Store) Post(ctx context.Context, id int64) (Post, error) {
	var (
		post    Post
		updated int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, type, title, content, updated_at_unixms FROM posts WHERE id = ?`, id,
	).Scan(&post.ID, &post.Type, &post.Title, &post.Content, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Post{}, ErrNotFound
	}
	if err != nil {
		return Post{}, fmt.Errorf("store: load post %d: %w", id, err)
	}
	post.UpdatedAt = time.UnixMilli(updated)
	return post, nil
}

// ContentType resolves the type of the item with itemID.
func (s *Store) ContentType(ctx context.Context, itemID int64) (string, bool) {
	post, err := s.Post(ctx, itemID)
	if err != nil {
		return "", false
	}
	return post.Type, true
}

// SavePost persists payload and returns the item ID. A payload without an ID
// creates a new item. Each taxonomy present in TaxInput has its assignments
// replaced: hierarchical values are term IDs, flat values are term names and
// missing names are created. Unknown taxonomies are skipped.
func (s *Store) SavePost(ctx context.Context, payload savehook.Payload) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("store: begin: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	id, err := s.upsertPost(ctx, tx, payload)
	if err != nil {
		return 0, err
	}

	for _, name := range sortedKeys(payload.TaxInput) {
		tax, ok := s.lookupTaxonomy(name)
		if !ok {
			s.logger.Debug("skipping unknown taxonomy", zap.String("taxonomy", name))
			continue
		}
		termIDs, err := resolveTerms(ctx, tx, tax, payload.TaxInput[name])
		if err != nil {
			return 0, err
		}
		if err := replaceAssignments(ctx, tx, id, tax.Name, termIDs); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("store: commit: %w", err)
	}
	committed = true
	return id, nil
}

func (s *Store) lookupTaxonomy(name string) (taxonomy.Taxonomy, bool) {
	if s.registry == nil {
		return taxonomy.Taxonomy{}, false
	}
	return s.registry.Taxonomy(name)
}

func (s *Store) upsertPost(ctx context.Context, tx *sql.Tx, payload savehook.Payload) (int64, error) {
	title := dataString(payload.Data, KeyTitle)
	content := dataString(payload.Data, KeyContent)
	contentType := dataString(payload.Data, KeyType)
	now := s.now().UnixMilli()

	if payload.ID <= 0 {
		if contentType == "" {
			contentType = savehook.DefaultContentType
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO posts(type, title, content, updated_at_unixms) VALUES(?, ?, ?, ?)`,
			contentType, title, content, now)
		if err != nil {
			return 0, fmt.Errorf("store: insert post: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("store: insert post: %w", err)
		}
		return id, nil
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE posts SET title = ?, content = ?, type = COALESCE(NULLIF(?, ''), type), updated_at_unixms = ? WHERE id = ?`,
		title, content, contentType, now, payload.ID)
	if err != nil {
		return 0, fmt.Errorf("store: update post %d: %w", payload.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, fmt.Errorf("store: update post %d: %w", payload.ID, ErrNotFound)
	}
	return payload.ID, nil
}

func resolveTerms(ctx context.Context, tx *sql.Tx, tax taxonomy.Taxonomy, values []string) ([]int64, error) {
	ids := make([]int64, 0, len(values))
	seen := make(map[int64]struct{}, len(values))
	add := func(id int64) {
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	for _, raw := range values {
		value := strings.TrimSpace(raw)
		if value == "" {
			continue
		}
		if tax.Hierarchical {
			id, err := strconv.ParseInt(value, 10, 64)
			if err != nil || id <= 0 {
				continue
			}
			var found int64
			err = tx.QueryRowContext(ctx,
				`SELECT id FROM terms WHERE id = ? AND taxonomy = ?`, id, tax.Name).Scan(&found)
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("store: resolve term %d: %w", id, err)
			}
			add(found)
			continue
		}
		id, err := ensureTerm(ctx, tx, tax.Name, value, 0)
		if err != nil {
			return nil, err
		}
		add(id)
	}
	return ids, nil
}

func replaceAssignments(ctx context.Context, tx *sql.Tx, postID int64, tax string, termIDs []int64) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM term_relationships WHERE post_id = ? AND term_id IN (SELECT id FROM terms WHERE taxonomy = ?)`,
		postID, tax); err != nil {
		return fmt.Errorf("store: clear %s terms of %d: %w", tax, postID, err)
	}
	for order, termID := range termIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO term_relationships(post_id, term_id, term_order) VALUES(?, ?, ?)`,
			postID, termID, order); err != nil {
			return fmt.Errorf("store: assign term %d to %d: %w", termID, postID, err)
		}
	}
	return nil
}

func dataString(data map[string]any, key string) string {
	value, ok := data[key]
	if !ok || value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case []string:
		if len(v) > 0 {
			return v[0]
		}
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
