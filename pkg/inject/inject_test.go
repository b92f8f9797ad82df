package inject_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-quickpost/pkg/access"
	"github.com/goliatone/go-quickpost/pkg/inject"
	"github.com/goliatone/go-quickpost/pkg/submission"
	"github.com/goliatone/go-quickpost/pkg/taxonomy"
)

type fakeTerms struct {
	terms    map[string][]taxonomy.Term
	assigned map[string][]taxonomy.Term
	fail     map[string]bool
}

func (f fakeTerms) Terms(_ context.Context, tax string) ([]taxonomy.Term, error) {
	if f.fail[tax] {
		return nil, errors.New("terms unavailable")
	}
	return f.terms[tax], nil
}

func (f fakeTerms) Assigned(_ context.Context, _ int64, tax string) ([]taxonomy.Term, error) {
	if f.fail[tax] {
		return nil, errors.New("terms unavailable")
	}
	return f.assigned[tax], nil
}

type fieldsStub string

func (s fieldsStub) RenderFields(_ context.Context, w io.Writer, itemID int64) error {
	if s == "fail" {
		return errors.New("no field groups")
	}
	_, err := fmt.Fprintf(w, "%s:%d", string(s), itemID)
	return err
}

var editor = access.Actor{Name: "editor", Capabilities: []string{"edit_posts", "assign_topics"}}

func newRegistry() *taxonomy.Store {
	return taxonomy.NewStore(
		taxonomy.Taxonomy{Name: "category", Hierarchical: true, ObjectTypes: []string{"post"}},
		taxonomy.Taxonomy{Name: "post_tag", ObjectTypes: []string{"post"}},
		taxonomy.Taxonomy{Name: "topic", Label: "Topics", Hierarchical: true, ObjectTypes: []string{"post"},
			Capabilities: taxonomy.Capabilities{AssignTerms: "assign_topics"}},
		taxonomy.Taxonomy{Name: "cttm-markers-tax", ObjectTypes: []string{"post"}},
	)
}

func TestEligibleExcludesReservedAndBuiltins(t *testing.T) {
	inj, err := inject.New(newRegistry())
	if err != nil {
		t.Fatalf("new injector: %v", err)
	}

	var names []string
	for _, tax := range inj.Eligible(inject.Request{ContentType: "post", Actor: editor}) {
		names = append(names, tax.Name)
	}
	if diff := cmp.Diff([]string{"topic"}, names); diff != "" {
		t.Fatalf("eligible mismatch (-want +got):\n%s", diff)
	}
}

func TestEligibleRespectsPermissions(t *testing.T) {
	registry := taxonomy.NewStore(
		taxonomy.Taxonomy{Name: "topic", Hierarchical: true, ObjectTypes: []string{"post"},
			Capabilities: taxonomy.Capabilities{AssignTerms: "assign_topics"}},
		taxonomy.Taxonomy{Name: "series", ObjectTypes: []string{"post"}},
		taxonomy.Taxonomy{Name: "post_format", ObjectTypes: []string{"post"}},
	)
	inj, err := inject.New(registry)
	if err != nil {
		t.Fatalf("new injector: %v", err)
	}

	writer := access.Actor{Name: "writer", Capabilities: []string{"edit_posts"}}
	var names []string
	for _, tax := range inj.Eligible(inject.Request{ContentType: "post", Actor: writer}) {
		names = append(names, tax.Name)
	}
	if diff := cmp.Diff([]string{"series"}, names); diff != "" {
		t.Fatalf("eligible mismatch (-want +got):\n%s", diff)
	}

	if got := inj.Eligible(inject.Request{ContentType: "page", Actor: writer}); len(got) != 0 {
		t.Fatalf("expected nothing for page, got %#v", got)
	}

	denyAll, err := inject.New(registry, inject.WithChecker(nil))
	if err != nil {
		t.Fatalf("new injector: %v", err)
	}
	if got := denyAll.Eligible(inject.Request{ContentType: "post", Actor: editor}); len(got) != 0 {
		t.Fatalf("missing checker should disable groups, got %#v", got)
	}
}

func TestCustomDenylistAndBuiltins(t *testing.T) {
	inj, err := inject.New(newRegistry(), inject.WithBuiltins(), inject.WithDenylist("topic"))
	if err != nil {
		t.Fatalf("new injector: %v", err)
	}
	var names []string
	for _, tax := range inj.Eligible(inject.Request{ContentType: "post", Actor: editor}) {
		names = append(names, tax.Name)
	}
	want := []string{"category", "post_tag", "cttm-markers-tax"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("eligible mismatch (-want +got):\n%s", diff)
	}
}

func TestDeriveIDs(t *testing.T) {
	want := inject.IDs{
		Trigger:    "press-this-btn-topic",
		Modal:      "modal-topic",
		Block:      "tax-block-topic",
		Panel:      "panel-topic",
		List:       "custom-taxonomy-select-topic",
		NewTag:     "new-tag-topic",
		ModalClass: "taxonomy-topic",
	}
	if diff := cmp.Diff(want, inject.DeriveIDs(" topic ")); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(inject.IDs{}, inject.DeriveIDs("")); diff != "" {
		t.Fatalf("empty name should derive nothing (-want +got):\n%s", diff)
	}
}

func TestPlanBuildsGroupsAndInitialHiddenFields(t *testing.T) {
	registry := taxonomy.NewStore(
		taxonomy.Taxonomy{Name: "topic", Label: "Topics", Hierarchical: true, ObjectTypes: []string{"post"}},
		taxonomy.Taxonomy{Name: "series", Label: "Series", ObjectTypes: []string{"post"},
			Labels: taxonomy.Labels{SeparateItemsWithCommas: "Separate series with commas"}},
	)
	source := fakeTerms{
		terms: map[string][]taxonomy.Term{
			"topic": {
				{ID: 12, Name: "Brewing"},
				{ID: 47, Name: "Hops", Parent: 12},
			},
		},
		assigned: map[string][]taxonomy.Term{
			"topic":  {{ID: 12, Name: "Brewing"}, {ID: 47, Name: "Hops"}},
			"series": {{ID: 5, Name: "Road trips"}, {ID: 6, Name: "Cellar"}},
		},
	}
	inj, err := inject.New(registry, inject.WithTermSource(source))
	if err != nil {
		t.Fatalf("new injector: %v", err)
	}

	plan := inj.Plan(context.Background(), inject.Request{ItemID: 42, ContentType: "post", Actor: editor})
	if len(plan.Groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(plan.Groups))
	}

	topic := plan.Groups[0]
	if topic.InputName != "tax_input[topic][]" {
		t.Fatalf("topic input name: %q", topic.InputName)
	}
	if got := topic.Checklist.Selected(); !cmp.Equal(got, []string{"12", "47"}) {
		t.Fatalf("topic selection: %v", got)
	}

	series := plan.Groups[1]
	if series.AssignedCSV != "Road trips,Cellar" {
		t.Fatalf("series csv: %q", series.AssignedCSV)
	}
	if series.NewTagName != "newtag[series]" || series.InputName != "tax_input[series]" {
		t.Fatalf("series names: %q %q", series.NewTagName, series.InputName)
	}

	wantHidden := []submission.HiddenField{
		{Name: "tax_input[topic][]", Value: "12", Marker: "topic"},
		{Name: "tax_input[topic][]", Value: "47", Marker: "topic"},
	}
	if diff := cmp.Diff(wantHidden, plan.Hidden); diff != "" {
		t.Fatalf("hidden fields mismatch (-want +got):\n%s", diff)
	}

	var stepNames []string
	for _, step := range plan.Steps {
		stepNames = append(stepNames, step.Name)
	}
	wantSteps := []string{
		inject.StepInsertTriggers, inject.StepPlaceModals, inject.StepFillModals,
		inject.StepPlaceFields, inject.StepPlacePanels, inject.StepTrackSelection,
		inject.StepBindModals, inject.StepBindTags,
	}
	if diff := cmp.Diff(wantSteps, stepNames); diff != "" {
		t.Fatalf("steps mismatch (-want +got):\n%s", diff)
	}
}

func TestPlanOmitsGroupsWhoseTermsFail(t *testing.T) {
	registry := taxonomy.NewStore(
		taxonomy.Taxonomy{Name: "topic", Hierarchical: true, ObjectTypes: []string{"post"}},
		taxonomy.Taxonomy{Name: "series", ObjectTypes: []string{"post"}},
	)
	inj, err := inject.New(registry, inject.WithTermSource(fakeTerms{fail: map[string]bool{"topic": true}}))
	if err != nil {
		t.Fatalf("new injector: %v", err)
	}
	plan := inj.Plan(context.Background(), inject.Request{ItemID: 1, ContentType: "post", Actor: editor})
	if len(plan.Groups) != 1 || plan.Groups[0].Name != "series" {
		t.Fatalf("expected only series, got %#v", plan.Groups)
	}
}

func TestFooterRendersMarkup(t *testing.T) {
	source := fakeTerms{
		terms: map[string][]taxonomy.Term{
			"topic": {{ID: 12, Name: "Brewing"}, {ID: 47, Name: "Hops & <Malt>", Parent: 12}},
		},
		assigned: map[string][]taxonomy.Term{"topic": {{ID: 47}}},
	}
	inj, err := inject.New(newRegistry(), inject.WithTermSource(source), inject.WithAssetBase("/static/qp/"))
	if err != nil {
		t.Fatalf("new injector: %v", err)
	}

	var out strings.Builder
	inj.Footer(context.Background(), &out, inject.Request{ItemID: 42, ContentType: "post", Actor: editor})
	html := out.String()

	for _, want := range []string{
		`<button type="button" class="post-option topic" id="press-this-btn-topic" data-quickpost-modal="modal-topic">`,
		`<span class="post-option-title">Topics</span>`,
		`<div class="setting-modal is-off-screen is-hidden taxonomy-topic" id="modal-topic"`,
		`<div id="tax-block-topic"></div>`,
		`<div style="display:none" id="panel-topic">`,
		`<ul class="custom-taxonomy-select-topic">`,
		`<div class="category" data-term-id="12" tabindex="0" role="checkbox" aria-checked="false">Brewing</div><ul class="children">`,
		`<div class="category selected" data-term-id="47" tabindex="0" role="checkbox" aria-checked="true" checked="checked">Hops &amp; &lt;Malt&gt;</div></li></ul></li></ul>`,
		`<input type="hidden" name="tax_input[topic][]" value="47" data-quickpost-taxonomy="topic" form="pressthis-form">`,
		`<script type="application/json" id="quickpost-bootstrap">`,
		`<script src="/static/qp/quickpost.js"></script>`,
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("footer missing %q:\n%s", want, html)
		}
	}
	for _, unwanted := range []string{"modal-category", "modal-post_tag", "cttm-markers-tax"} {
		if strings.Contains(html, unwanted) {
			t.Fatalf("footer should not mention %q", unwanted)
		}
	}
}

func TestFooterRendersFlatControl(t *testing.T) {
	registry := taxonomy.NewStore(taxonomy.Taxonomy{
		Name: "series", Label: "Series", ObjectTypes: []string{"post"},
		Labels: taxonomy.Labels{SeparateItemsWithCommas: "Separate series with commas"},
	})
	source := fakeTerms{assigned: map[string][]taxonomy.Term{"series": {{ID: 5, Name: `Road "trips"`}}}}
	inj, err := inject.New(registry, inject.WithTermSource(source))
	if err != nil {
		t.Fatalf("new injector: %v", err)
	}

	var out strings.Builder
	inj.Footer(context.Background(), &out, inject.Request{ItemID: 3, ContentType: "post", Actor: editor})
	html := out.String()

	for _, want := range []string{
		`<div class="tagsdiv" id="series">`,
		`<input type="hidden" name="tax_input[series]" class="the-tags" value="Road &quot;trips&quot;">`,
		`<input type="text" id="new-tag-series" name="newtag[series]" class="newtag form-input-tip"`,
		`<p class="howto" id="new-tag-series-desc">Separate series with commas</p>`,
		`<div class="tagchecklist"></div>`,
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("footer missing %q:\n%s", want, html)
		}
	}
}

func TestFooterWithoutGroupsStillBootstraps(t *testing.T) {
	inj, err := inject.New(taxonomy.NewStore())
	if err != nil {
		t.Fatalf("new injector: %v", err)
	}
	var out strings.Builder
	inj.Footer(context.Background(), &out, inject.Request{ContentType: "post", Actor: editor})
	if !strings.Contains(out.String(), `id="quickpost-bootstrap"`) {
		t.Fatalf("expected bootstrap document:\n%s", out.String())
	}
	for _, unwanted := range []string{`class="setting-modal`, `data-quickpost-group=`, `<template data-quickpost-trigger`} {
		if strings.Contains(out.String(), unwanted) {
			t.Fatalf("expected no group markup %q:\n%s", unwanted, out.String())
		}
	}
}

func TestBootstrapDocument(t *testing.T) {
	inj, err := inject.New(newRegistry())
	if err != nil {
		t.Fatalf("new injector: %v", err)
	}
	plan := inj.Plan(context.Background(), inject.Request{ItemID: 9, ContentType: "post", Actor: editor})
	plan.Groups[0].Label = "</script><script>alert(1)</script>"

	data, err := inject.Bootstrap(plan)
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if strings.Contains(string(data), "</script>") {
		t.Fatalf("bootstrap must not contain a closing script tag: %s", data)
	}

	var doc struct {
		ItemID int64  `json:"itemId"`
		Marker string `json:"marker"`
		Groups []struct {
			Name string     `json:"name"`
			IDs  inject.IDs `json:"ids"`
		} `json:"groups"`
		Anchors inject.Anchors `json:"anchors"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("decode bootstrap: %v", err)
	}
	if doc.ItemID != 9 || doc.Marker != submission.MarkerAttribute {
		t.Fatalf("unexpected bootstrap header: %#v", doc)
	}
	if len(doc.Groups) != 1 || doc.Groups[0].IDs.Modal != "modal-topic" {
		t.Fatalf("unexpected bootstrap groups: %#v", doc.Groups)
	}
	if doc.Anchors.Form != "#pressthis-form" || doc.Anchors.FieldsBlock != "#press-this-acf-fields" {
		t.Fatalf("unexpected anchors: %#v", doc.Anchors)
	}
}

func TestFieldsBlock(t *testing.T) {
	inj, err := inject.New(newRegistry(), inject.WithFieldRenderer(fieldsStub("<input name=\"acf[x]\">")))
	if err != nil {
		t.Fatalf("new injector: %v", err)
	}
	var out strings.Builder
	inj.Fields(context.Background(), &out, inject.Request{ItemID: 42})
	want := `<div id="press-this-acf-fields" class="quickpost-fields-block"><input name="acf[x]">:42</div>`
	if !strings.Contains(out.String(), want) {
		t.Fatalf("fields block mismatch:\nwant %s\ngot  %s", want, out.String())
	}

	failing, err := inject.New(newRegistry(), inject.WithFieldRenderer(fieldsStub("fail")))
	if err != nil {
		t.Fatalf("new injector: %v", err)
	}
	var none strings.Builder
	failing.Fields(context.Background(), &none, inject.Request{ItemID: 42})
	if none.Len() != 0 {
		t.Fatalf("failing field renderer should write nothing, got %q", none.String())
	}

	plain, err := inject.New(newRegistry())
	if err != nil {
		t.Fatalf("new injector: %v", err)
	}
	plain.Fields(context.Background(), &none, inject.Request{ItemID: 42})
	if none.Len() != 0 {
		t.Fatalf("missing field renderer should write nothing")
	}
}

func TestAssets(t *testing.T) {
	inj, err := inject.New(newRegistry())
	if err != nil {
		t.Fatalf("new injector: %v", err)
	}
	var out strings.Builder
	inj.Assets(context.Background(), &out)
	if !strings.Contains(out.String(), `href="/quickpost/assets/quickpost.css"`) {
		t.Fatalf("unexpected assets output: %s", out.String())
	}
}
