package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-quickpost/internal/compose"
	"github.com/goliatone/go-quickpost/pkg/inject"
)

var composeCmd = &cobra.Command{
	Use:   "compose",
	Short: "Write a quick post interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		server, err := newEditor(a)
		if err != nil {
			return err
		}
		injector, err := inject.New(a.registry,
			inject.WithTermSource(a.store),
			inject.WithDenylist(cfg.Editor.Denylist...),
		)
		if err != nil {
			return err
		}

		id, err := a.store.CreateDraft(ctx, cfg.Editor.ContentType)
		if err != nil {
			return err
		}
		composer := compose.New(a.registry, a.store, injector, compose.WithFields(cfg.Fields))
		form, err := composer.Compose(ctx, inject.Request{
			ItemID:      id,
			ContentType: cfg.Editor.ContentType,
			Actor:       cfg.Actor,
		})
		if errors.Is(err, compose.ErrAborted) {
			fmt.Fprintln(cmd.ErrOrStderr(), "Aborted; draft", id, "left empty.")
			return nil
		}
		if err != nil {
			return err
		}

		saved, err := server.Submit(ctx, form)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved post %d.\n", saved)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(composeCmd)
}
