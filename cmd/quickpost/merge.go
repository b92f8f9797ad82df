package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-quickpost/pkg/fields"
	"github.com/goliatone/go-quickpost/pkg/hooks"
	"github.com/goliatone/go-quickpost/pkg/savehook"
	"github.com/goliatone/go-quickpost/pkg/submission"
)

var (
	mergeID          int64
	mergeContentType string
	mergeExisting    []string
)

type mergeResult struct {
	Payload savehook.Payload `json:"payload"`
	Fields  map[string]any   `json:"fields,omitempty"`
}

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge an urlencoded submission from stdin into a payload",
	Long: `Merge reads form data such as "tax_input[topic][]=12&acf[subtitle]=x" from
stdin, applies the save merger to a payload for --id and prints the result as
JSON. Existing assignments can be given with --tax name=a,b.`,
	Example: `  echo 'tax_input[topic][]=12&tax_input[topic][]=47' | quickpost merge --id 42 --tax topic=3`,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		form, err := url.ParseQuery(strings.TrimSpace(string(raw)))
		if err != nil {
			return fmt.Errorf("parse submission: %w", err)
		}

		payload := savehook.Payload{ID: mergeID}
		for _, entry := range mergeExisting {
			name, values, ok := strings.Cut(entry, "=")
			name = strings.TrimSpace(name)
			if !ok || name == "" {
				return fmt.Errorf("invalid --tax %q, want name=a,b", entry)
			}
			if payload.TaxInput == nil {
				payload.TaxInput = make(map[string][]string)
			}
			payload.TaxInput[name] = submission.TermString(values).Normalize()
		}

		taxonomies, err := loadTaxonomies()
		if err != nil {
			return err
		}
		contentType := cfg.Editor.ContentType
		if mergeContentType != "" {
			contentType = mergeContentType
		}
		captured := fields.NewMemoryStore()
		merger := savehook.New(taxonomies,
			savehook.WithFieldStore(captured),
			savehook.WithContentTypes(savehook.ContentTypeFunc(func(_ context.Context, _ int64) (string, bool) {
				return contentType, true
			})),
			savehook.WithLogger(logger.Named("savehook")),
		)

		chain := &hooks.Chain[savehook.SaveRequest]{}
		merger.Register(chain, hooks.DefaultPriority)
		req := chain.Apply(cmd.Context(), savehook.SaveRequest{
			Payload:    payload,
			Submission: submission.Parse(form),
		})

		values, err := captured.FieldValues(cmd.Context(), mergeID)
		if err != nil {
			return err
		}
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(mergeResult{Payload: req.Payload, Fields: values})
	},
}

func init() {
	mergeCmd.Flags().Int64Var(&mergeID, "id", 0, "item ID; without one the payload is left unchanged")
	mergeCmd.Flags().StringVar(&mergeContentType, "content-type", "", "content type (defaults to editor.contentType)")
	mergeCmd.Flags().StringArrayVar(&mergeExisting, "tax", nil, "existing assignment as name=a,b (repeatable)")
	rootCmd.AddCommand(mergeCmd)
}
