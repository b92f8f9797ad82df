package main

import (
	"context"
	"fmt"
	"os"

	"github.com/goliatone/go-quickpost/internal/reload"
	"github.com/goliatone/go-quickpost/internal/store"
	"github.com/goliatone/go-quickpost/pkg/fields"
	"github.com/goliatone/go-quickpost/pkg/taxonomy"
)

// app holds the resources shared by the subcommands.
type app struct {
	registry *reload.Registry
	store    *store.Store
	fields   *fields.FormRenderer
}

func loadTaxonomies() (*taxonomy.Store, error) {
	if cfg.Taxonomies.Dir == "" {
		return taxonomy.LoadFS(taxonomy.DefaultsFS())
	}
	return taxonomy.LoadFS(os.DirFS(cfg.Taxonomies.Dir))
}

func openApp(ctx context.Context) (*app, error) {
	taxonomies, err := loadTaxonomies()
	if err != nil {
		return nil, err
	}
	registry := reload.NewRegistry(taxonomies)

	st, err := store.Open(ctx, cfg.Database.Path, registry, store.WithLogger(logger.Named("store")))
	if err != nil {
		return nil, err
	}
	if err := st.SeedTerms(ctx, taxonomies.All()); err != nil {
		_ = st.Close()
		return nil, err
	}

	renderer, err := fields.NewFormRenderer(cfg.Fields, fields.WithReader(st))
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("configure fields: %w", err)
	}
	return &app{registry: registry, store: st, fields: renderer}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}
