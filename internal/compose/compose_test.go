package compose

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-quickpost/pkg/access"
	"github.com/goliatone/go-quickpost/pkg/fields"
	"github.com/goliatone/go-quickpost/pkg/inject"
	"github.com/goliatone/go-quickpost/pkg/taxonomy"
)

type scriptedDriver struct {
	inputs   map[string]string
	areas    map[string]string
	selects  map[string][]string
	confirm  bool
	asked    []string
	inputErr error
}

func (d *scriptedDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	d.asked = append(d.asked, "input:"+cfg.Message)
	if d.inputErr != nil {
		return "", d.inputErr
	}
	value := d.inputs[cfg.Message]
	if cfg.Validator != nil {
		if err := cfg.Validator(value); err != nil {
			return "", err
		}
	}
	return value, nil
}

func (d *scriptedDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	d.asked = append(d.asked, "confirm:"+cfg.Message)
	return d.confirm, nil
}

func (d *scriptedDriver) MultiSelect(_ context.Context, cfg SelectConfig) ([]int, error) {
	d.asked = append(d.asked, "select:"+cfg.Message)
	return pickLabels(cfg.Options, d.selects[cfg.Message]), nil
}

// pickLabels returns the positions of labels in options, consuming each
// matching position once.
func pickLabels(options, labels []string) []int {
	remaining := make(map[string]int, len(labels))
	for _, l := range labels {
		remaining[l]++
	}
	var out []int
	for i, option := range options {
		if remaining[option] > 0 {
			remaining[option]--
			out = append(out, i)
		}
	}
	return out
}

func (d *scriptedDriver) TextArea(_ context.Context, cfg TextAreaConfig) (string, error) {
	d.asked = append(d.asked, "textarea:"+cfg.Message)
	return d.areas[cfg.Message], nil
}

func (d *scriptedDriver) Info(context.Context, string) error { return nil }

type staticTerms map[string][]taxonomy.Term

func (s staticTerms) Terms(_ context.Context, tax string) ([]taxonomy.Term, error) {
	return s[tax], nil
}

func (s staticTerms) Assigned(context.Context, int64, string) ([]taxonomy.Term, error) {
	return nil, nil
}

func setup(t *testing.T, driver PromptDriver) *Composer {
	t.Helper()
	registry, err := taxonomy.LoadFS(taxonomy.DefaultsFS())
	if err != nil {
		t.Fatalf("load taxonomies: %v", err)
	}
	terms := staticTerms{
		"category": {{ID: 1, Name: "Uncategorized"}},
		"topic": {
			{ID: 10, Name: "Brewing"},
			{ID: 11, Name: "Hops", Parent: 10},
			{ID: 12, Name: "Travel"},
		},
	}
	injector, err := inject.New(registry, inject.WithTermSource(terms))
	if err != nil {
		t.Fatalf("new injector: %v", err)
	}
	return New(registry, terms, injector,
		WithDriver(driver),
		WithFields([]fields.Definition{
			{Key: "subtitle", Label: "Subtitle"},
			{Key: "notes", Label: "Notes", Type: fields.TypeTextarea},
		}),
	)
}

var admin = inject.Request{ItemID: 5, ContentType: "post", Actor: access.Actor{Name: "admin", Capabilities: []string{"*"}}}

func TestComposeBuildsEditorForm(t *testing.T) {
	driver := &scriptedDriver{
		inputs: map[string]string{
			"Title":    "Weekend brew",
			"Tags":     "beer, hops",
			"Series":   "Cellar",
			"Subtitle": "short",
		},
		areas: map[string]string{"Content": "Body", "Notes": ""},
		selects: map[string][]string{
			"Categories": {"Uncategorized"},
			"Topics":     {"  Hops", "Travel"},
		},
		confirm: true,
	}
	form, err := setup(t, driver).Compose(context.Background(), admin)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}

	want := url.Values{
		"post_ID":             {"5"},
		"post_title":          {"Weekend brew"},
		"post_content":        {"Body"},
		"post_category[]":     {"1"},
		"tax_input[post_tag]": {"beer, hops"},
		"tax_input[topic][]":  {"11", "12"},
		"tax_input[series]":   {"Cellar"},
		"acf[subtitle]":       {"short"},
	}
	if diff := cmp.Diff(want, form); diff != "" {
		t.Fatalf("form mismatch (-want +got):\n%s", diff)
	}

	wantAsked := []string{
		"input:Title", "textarea:Content", "select:Categories", "input:Tags",
		"select:Topics", "input:Series", "input:Subtitle", "textarea:Notes", "confirm:Save post?",
	}
	if diff := cmp.Diff(wantAsked, driver.asked); diff != "" {
		t.Fatalf("prompt order mismatch (-want +got):\n%s", diff)
	}
}

func TestComposeRespectsPermissions(t *testing.T) {
	driver := &scriptedDriver{inputs: map[string]string{"Title": "x"}, confirm: true}
	writer := admin
	writer.Actor = access.Actor{Name: "writer", Capabilities: []string{"edit_posts"}}

	if _, err := setup(t, driver).Compose(context.Background(), writer); err != nil {
		t.Fatalf("compose: %v", err)
	}
	for _, prompt := range driver.asked {
		if prompt == "select:Topics" {
			t.Fatalf("topics require assign_topics")
		}
	}
}

func TestComposeDeclined(t *testing.T) {
	driver := &scriptedDriver{inputs: map[string]string{"Title": "x"}, confirm: false}
	if _, err := setup(t, driver).Compose(context.Background(), admin); !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}

func TestComposeRequiresTitle(t *testing.T) {
	driver := &scriptedDriver{confirm: true}
	if _, err := setup(t, driver).Compose(context.Background(), admin); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestComposeInterrupted(t *testing.T) {
	driver := &scriptedDriver{inputErr: context.Canceled}
	if _, err := setup(t, driver).Compose(context.Background(), admin); !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}

func TestComposePicksDuplicateNamesByPosition(t *testing.T) {
	registry, err := taxonomy.LoadFS(taxonomy.DefaultsFS())
	if err != nil {
		t.Fatalf("load taxonomies: %v", err)
	}
	terms := staticTerms{
		"topic": {
			{ID: 10, Name: "Brewing"},
			{ID: 11, Name: "Notes", Parent: 10},
			{ID: 12, Name: "Travel"},
			{ID: 13, Name: "Notes", Parent: 12},
		},
	}
	injector, err := inject.New(registry, inject.WithTermSource(terms))
	if err != nil {
		t.Fatalf("new injector: %v", err)
	}

	var options []string
	driver := &indexDriver{
		scriptedDriver: scriptedDriver{inputs: map[string]string{"Title": "x"}, confirm: true},
		picks:          map[string][]int{"Topics": {3}},
		options:        &options,
	}
	form, err := New(registry, terms, injector, WithDriver(driver)).Compose(context.Background(), admin)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}

	wantOptions := []string{"Brewing", "  Notes", "Travel", "  Notes (#13)"}
	if diff := cmp.Diff(wantOptions, options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"13"}, form["tax_input[topic][]"]); diff != "" {
		t.Fatalf("picked ids mismatch (-want +got):\n%s", diff)
	}
}

// indexDriver answers multi selects with raw positions, the way the
// terminal driver does.
type indexDriver struct {
	scriptedDriver
	picks   map[string][]int
	options *[]string
}

func (d *indexDriver) MultiSelect(_ context.Context, cfg SelectConfig) ([]int, error) {
	if cfg.Message == "Topics" {
		*d.options = append([]string(nil), cfg.Options...)
	}
	return d.picks[cfg.Message], nil
}

func TestValidIndicesDropsOutOfRange(t *testing.T) {
	got := validIndices(3, []int{-1, 0, 2, 3, 7})
	if diff := cmp.Diff([]int{0, 2}, got); diff != "" {
		t.Fatalf("indices mismatch (-want +got):\n%s", diff)
	}
}
