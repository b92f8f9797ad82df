package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-quickpost/pkg/taxonomy"
)

// SeedTerms creates the declared terms of every taxonomy that are missing.
// Seeds may reference a parent declared later in the same list.
func (s *Store) SeedTerms(ctx context.Context, taxonomies []taxonomy.Taxonomy) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	for _, tax := range taxonomies {
		pending := append([]taxonomy.TermSeed(nil), tax.Terms...)
		ids := make(map[string]int64, len(pending))
		for len(pending) > 0 {
			var next []taxonomy.TermSeed
			for _, seed := range pending {
				name := strings.TrimSpace(seed.Name)
				parentName := strings.TrimSpace(seed.Parent)
				if name == "" {
					continue
				}
				var parent int64
				if parentName != "" {
					id, ok := ids[parentName]
					if !ok {
						next = append(next, seed)
						continue
					}
					parent = id
				}
				id, err := ensureTerm(ctx, tx, tax.Name, name, parent)
				if err != nil {
					return err
				}
				ids[name] = id
			}
			if len(next) == len(pending) {
				s.logger.Warn("term seeds with unresolved parents",
					zap.String("taxonomy", tax.Name),
					zap.Int("count", len(next)))
				break
			}
			pending = next
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	committed = true
	return nil
}

// Terms returns every term of tax ordered by name.
func (s *Store) Terms(ctx context.Context, tax string) ([]taxonomy.Term, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, taxonomy, name, parent FROM terms WHERE taxonomy = ? ORDER BY name, id`, tax)
	if err != nil {
		return nil, fmt.Errorf("store: list %s terms: %w", tax, err)
	}
	return scanTerms(rows)
}

// Assigned returns the terms of tax assigned to itemID in assignment order.
func (s *Store) Assigned(ctx context.Context, itemID int64, tax string) ([]taxonomy.Term, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT t.id, t.taxonomy, t.name, t.parent
		   FROM term_relationships r
		   JOIN terms t ON t.id = r.term_id
		  WHERE r.post_id = ? AND t.taxonomy = ?
		  ORDER BY r.term_order, t.id`, itemID, tax)
	if err != nil {
		return nil, fmt.Errorf("store: list %s terms of %d: %w", tax, itemID, err)
	}
	return scanTerms(rows)
}

// CreateTerm adds a term and returns its ID, reusing an existing term with
// the same name and parent.
func (s *Store) CreateTerm(ctx context.Context, tax, name string, parent int64) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("store: begin: %w", err)
	}
	id, err := ensureTerm(ctx, tx, tax, name, parent)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("store: commit: %w", err)
	}
	return id, nil
}

func ensureTerm(ctx context.Context, tx *sql.Tx, tax, name string, parent int64) (int64, error) {
	tax = strings.TrimSpace(tax)
	name = strings.TrimSpace(name)
	if tax == "" || name == "" {
		return 0, errors.New("store: term needs a taxonomy and a name")
	}

	var id int64
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM terms WHERE taxonomy = ? AND name = ? AND parent = ?`,
		tax, name, parent).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("store: find term %q: %w", name, err)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO terms(taxonomy, name, parent) VALUES(?, ?, ?)`, tax, name, parent)
	if err != nil {
		return 0, fmt.Errorf("store: insert term %q: %w", name, err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: insert term %q: %w", name, err)
	}
	return id, nil
}

func scanTerms(rows *sql.Rows) ([]taxonomy.Term, error) {
	defer rows.Close()
	var out []taxonomy.Term
	for rows.Next() {
		var term taxonomy.Term
		if err := rows.Scan(&term.ID, &term.Taxonomy, &term.Name, &term.Parent); err != nil {
			return nil, fmt.Errorf("store: scan term: %w", err)
		}
		out = append(out, term)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: scan terms: %w", err)
	}
	return out, nil
}
