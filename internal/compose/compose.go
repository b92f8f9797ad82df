// Package compose collects a quick post interactively on the terminal and
// turns the answers into the form values the editor page would submit.
package compose

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/goliatone/go-quickpost/pkg/checklist"
	"github.com/goliatone/go-quickpost/pkg/fields"
	"github.com/goliatone/go-quickpost/pkg/inject"
	"github.com/goliatone/go-quickpost/pkg/submission"
	"github.com/goliatone/go-quickpost/pkg/taxonomy"
)

// ErrAborted signals the user aborted input or declined to save.
var ErrAborted = errors.New("compose: aborted")

// Form keys shared with the editor page.
const (
	keyPostID   = "post_ID"
	keyTitle    = "post_title"
	keyContent  = "post_content"
	keyCategory = "post_category[]"
)

// Option customises a Composer.
type Option func(*Composer)

// WithDriver overrides the prompt driver.
func WithDriver(driver PromptDriver) Option {
	return func(c *Composer) {
		if driver != nil {
			c.driver = driver
		}
	}
}

// WithFields asks for the given field definitions.
func WithFields(defs []fields.Definition) Option {
	return func(c *Composer) {
		c.fields = append([]fields.Definition(nil), defs...)
	}
}

// Composer walks the user through the same controls the editor page shows:
// title, content, the native categories and tags, every injected taxonomy
// group and the configured fields.
type Composer struct {
	registry taxonomy.Registry
	terms    taxonomy.TermSource
	injector *inject.Injector
	driver   PromptDriver
	fields   []fields.Definition
}

// New constructs a Composer. injector decides which taxonomy groups the
// actor gets, matching the editor page.
func New(registry taxonomy.Registry, terms taxonomy.TermSource, injector *inject.Injector, options ...Option) *Composer {
	c := &Composer{
		registry: registry,
		terms:    terms,
		injector: injector,
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	if c.driver == nil {
		c.driver = NewSurveyDriver()
	}
	return c
}

// Compose prompts for a post and returns the form values to submit for
// req.ItemID.
func (c *Composer) Compose(ctx context.Context, req inject.Request) (url.Values, error) {
	form := url.Values{}
	if req.ItemID > 0 {
		form.Set(keyPostID, strconv.FormatInt(req.ItemID, 10))
		if err := c.driver.Info(ctx, fmt.Sprintf("Draft #%d", req.ItemID)); err != nil {
			return nil, abort(err)
		}
	}

	title, err := c.driver.Input(ctx, InputConfig{
		Message:   "Title",
		Validator: required("title"),
	})
	if err != nil {
		return nil, abort(err)
	}
	form.Set(keyTitle, title)

	content, err := c.driver.TextArea(ctx, TextAreaConfig{Message: "Content"})
	if err != nil {
		return nil, abort(err)
	}
	form.Set(keyContent, content)

	if c.registry != nil {
		if tax, ok := c.registry.Taxonomy(taxonomy.Category); ok && tax.AppliesTo(req.ContentType) {
			ids, err := c.pickTerms(ctx, tax)
			if err != nil {
				return nil, abort(err)
			}
			for _, id := range ids {
				form.Add(keyCategory, id)
			}
		}
		if tax, ok := c.registry.Taxonomy(taxonomy.PostTag); ok && tax.AppliesTo(req.ContentType) {
			if err := c.askFlat(ctx, tax, form); err != nil {
				return nil, abort(err)
			}
		}
	}

	for _, tax := range c.injector.Eligible(req) {
		if tax.Hierarchical {
			ids, err := c.pickTerms(ctx, tax)
			if err != nil {
				return nil, abort(err)
			}
			name := submission.TaxonomyInputName(tax.Name, true)
			for _, id := range ids {
				form.Add(name, id)
			}
			continue
		}
		if err := c.askFlat(ctx, tax, form); err != nil {
			return nil, abort(err)
		}
	}

	defs, err := fields.NormalizeDefinitions(c.fields)
	if err != nil {
		return nil, err
	}
	for _, def := range defs {
		var value string
		if def.Type == fields.TypeTextarea {
			value, err = c.driver.TextArea(ctx, TextAreaConfig{Message: def.Label, Help: def.Instructions})
		} else {
			value, err = c.driver.Input(ctx, InputConfig{Message: def.Label, Help: def.Instructions})
		}
		if err != nil {
			return nil, abort(err)
		}
		if strings.TrimSpace(value) != "" {
			form.Set(submission.FieldInputName(def.Key), value)
		}
	}

	ok, err := c.driver.Confirm(ctx, ConfirmConfig{Message: "Save post?", Default: true})
	if err != nil {
		return nil, abort(err)
	}
	if !ok {
		return nil, ErrAborted
	}
	return form, nil
}

func (c *Composer) pickTerms(ctx context.Context, tax taxonomy.Taxonomy) ([]string, error) {
	if c.terms == nil {
		return nil, nil
	}
	terms, err := c.terms.Terms(ctx, tax.Name)
	if err != nil {
		return nil, fmt.Errorf("compose: load %s terms: %w", tax.Name, err)
	}
	if len(terms) == 0 {
		return nil, nil
	}

	var (
		options []string
		ids     []string
		seen    = make(map[string]int)
	)
	for _, tok := range checklist.Build(tax.Name, terms, nil).Flatten() {
		if tok.Kind != checklist.TokenItem {
			continue
		}
		label := strings.Repeat("  ", tok.Depth) + tok.Name
		seen[label]++
		if seen[label] > 1 {
			label = fmt.Sprintf("%s (#%s)", label, tok.ID)
		}
		options = append(options, label)
		ids = append(ids, tok.ID)
	}

	picked, err := c.driver.MultiSelect(ctx, SelectConfig{Message: labelOf(tax), Options: options})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(picked))
	for _, idx := range picked {
		if idx >= 0 && idx < len(ids) {
			out = append(out, ids[idx])
		}
	}
	return out, nil
}

func (c *Composer) askFlat(ctx context.Context, tax taxonomy.Taxonomy, form url.Values) error {
	value, err := c.driver.Input(ctx, InputConfig{
		Message: labelOf(tax),
		Help:    tax.Labels.SeparateItemsWithCommas,
	})
	if err != nil {
		return err
	}
	if strings.TrimSpace(value) != "" {
		form.Set(submission.TaxonomyInputName(tax.Name, false), value)
	}
	return nil
}

func labelOf(tax taxonomy.Taxonomy) string {
	if tax.Label != "" {
		return tax.Label
	}
	return tax.Name
}

func required(name string) func(string) error {
	return func(value string) error {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

func abort(err error) error {
	if errors.Is(err, context.Canceled) {
		return ErrAborted
	}
	return err
}
