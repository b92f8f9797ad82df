package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	quickpost "github.com/goliatone/go-quickpost"
	"github.com/goliatone/go-quickpost/internal/editor"
	"github.com/goliatone/go-quickpost/internal/reload"
	"github.com/goliatone/go-quickpost/pkg/inject"
	"github.com/goliatone/go-quickpost/pkg/taxonomy"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the demo quick-post editor",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		addr := cfg.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}

		server, err := newEditor(a)
		if err != nil {
			return err
		}

		group, ctx := errgroup.WithContext(ctx)
		if cfg.Taxonomies.Watch {
			watcher, err := reload.NewWatcher(cfg.Taxonomies.Dir, a.registry,
				reload.WithLogger(logger.Named("reload")),
				reload.OnReload(func(ctx context.Context, store *taxonomy.Store) {
					if err := a.store.SeedTerms(ctx, store.All()); err != nil {
						logger.Warn("seeding reloaded terms failed", zap.Error(err))
					}
				}),
			)
			if err != nil {
				return err
			}
			group.Go(func() error { return watcher.Run(ctx) })
		}
		group.Go(func() error { return server.ListenAndServe(ctx, addr) })
		return group.Wait()
	},
}

func newEditor(a *app) (*editor.Server, error) {
	return editor.New(a.store, a.registry,
		editor.WithActor(cfg.Actor),
		editor.WithContentType(cfg.Editor.ContentType),
		editor.WithFieldRenderer(a.fields),
		editor.WithFieldStore(a.store),
		editor.WithAssets(quickpost.RuntimeAssetsFS(), cfg.Editor.AssetBase),
		editor.WithInjectorOptions(inject.WithDenylist(cfg.Editor.Denylist...)),
		editor.WithLogger(logger.Named("editor")),
	)
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}
