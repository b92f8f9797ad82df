package main

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-quickpost/pkg/access"
	"github.com/goliatone/go-quickpost/pkg/inject"
)

var (
	renderID           int64
	renderContentType  string
	renderCapabilities []string
	renderAssetsOnly   bool
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Print the injected markup for an item",
	Long: `Render prints what the editor page receives from quickpost: the stylesheet
link, the field block and the taxonomy controls with their bootstrap document.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		injector, err := inject.New(a.registry,
			inject.WithTermSource(a.store),
			inject.WithFieldRenderer(a.fields),
			inject.WithDenylist(cfg.Editor.Denylist...),
			inject.WithAssetBase(cfg.Editor.AssetBase),
			inject.WithLogger(logger.Named("inject")),
		)
		if err != nil {
			return err
		}

		actor := cfg.Actor
		if cmd.Flags().Changed("capabilities") {
			actor = access.Actor{Name: "cli", Capabilities: renderCapabilities}
		}
		contentType := cfg.Editor.ContentType
		if renderContentType != "" {
			contentType = renderContentType
		}
		req := inject.Request{ItemID: renderID, ContentType: contentType, Actor: actor}

		out := cmd.OutOrStdout()
		injector.Assets(ctx, out)
		if renderAssetsOnly {
			return nil
		}
		injector.Fields(ctx, out, req)
		injector.Footer(ctx, out, req)
		return nil
	},
}

func init() {
	renderCmd.Flags().Int64Var(&renderID, "id", 0, "item ID whose assignments are preselected")
	renderCmd.Flags().StringVar(&renderContentType, "content-type", "", "content type (defaults to editor.contentType)")
	renderCmd.Flags().StringSliceVar(&renderCapabilities, "capabilities", nil, "actor capabilities (defaults to the configured actor)")
	renderCmd.Flags().BoolVar(&renderAssetsOnly, "assets-only", false, "only print the stylesheet link")
	rootCmd.AddCommand(renderCmd)
}
