package savehook_test

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-quickpost/pkg/fields"
	"github.com/goliatone/go-quickpost/pkg/hooks"
	"github.com/goliatone/go-quickpost/pkg/savehook"
	"github.com/goliatone/go-quickpost/pkg/submission"
	"github.com/goliatone/go-quickpost/pkg/taxonomy"
)

func registry() *taxonomy.Store {
	return taxonomy.NewStore(
		taxonomy.Taxonomy{Name: "category", Hierarchical: true, ObjectTypes: []string{"post"}},
		taxonomy.Taxonomy{Name: "post_tag", ObjectTypes: []string{"post"}},
		taxonomy.Taxonomy{Name: "topic", Hierarchical: true, ObjectTypes: []string{"post"}},
		taxonomy.Taxonomy{Name: "series", ObjectTypes: []string{"post"}},
		taxonomy.Taxonomy{Name: "genre", ObjectTypes: []string{"book"}},
	)
}

func sortedTerms(values []string) []string {
	out := append([]string(nil), values...)
	sort.Strings(out)
	return out
}

func TestMergeUnionsWithExistingTerms(t *testing.T) {
	merger := savehook.New(registry())
	payload := savehook.Payload{
		ID:       42,
		TaxInput: map[string][]string{"topic": {"Gamma"}},
	}
	sub := submission.Submission{Taxonomies: map[string]submission.TermInput{
		"topic": submission.TermString("Alpha, Beta ,Alpha"),
	}}

	got := merger.Merge(context.Background(), payload, sub)

	if diff := cmp.Diff([]string{"Alpha", "Beta", "Gamma"}, sortedTerms(got.TaxInput["topic"])); diff != "" {
		t.Fatalf("topic terms mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Gamma"}, payload.TaxInput["topic"]); diff != "" {
		t.Fatalf("input payload mutated (-want +got):\n%s", diff)
	}
}

func TestMergeUnionIgnoresInputOrder(t *testing.T) {
	merger := savehook.New(registry())
	ctx := context.Background()

	a := merger.Merge(ctx,
		savehook.Payload{ID: 1, TaxInput: map[string][]string{"series": {"Road", "Cellar"}}},
		submission.Submission{Taxonomies: map[string]submission.TermInput{"series": submission.TermList("Cellar", "Pub", "Road")}},
	)
	b := merger.Merge(ctx,
		savehook.Payload{ID: 1, TaxInput: map[string][]string{"series": {"Cellar", "Road"}}},
		submission.Submission{Taxonomies: map[string]submission.TermInput{"series": submission.TermList("Road", "Pub", "Pub")}},
	)

	if diff := cmp.Diff(sortedTerms(a.TaxInput["series"]), sortedTerms(b.TaxInput["series"])); diff != "" {
		t.Fatalf("union depends on order (-a +b):\n%s", diff)
	}
	if got := len(a.TaxInput["series"]); got != 3 {
		t.Fatalf("expected 3 distinct terms, got %v", a.TaxInput["series"])
	}
}

func TestMergeWithoutIDReturnsPayloadUnchanged(t *testing.T) {
	store := fields.NewMemoryStore()
	merger := savehook.New(registry(), savehook.WithFieldStore(store))
	payload := savehook.Payload{
		TaxInput: map[string][]string{"category": {"1"}},
		Data:     map[string]any{"post_title": "Draft"},
	}
	sub := submission.Submission{
		Taxonomies: map[string]submission.TermInput{"topic": submission.TermString("Alpha")},
		Fields:     map[string]any{"field_rating": "4"},
	}

	got := merger.Merge(context.Background(), payload, sub)
	if diff := cmp.Diff(payload, got); diff != "" {
		t.Fatalf("payload changed (-want +got):\n%s", diff)
	}
	if keys := store.Keys(0); len(keys) != 0 {
		t.Fatalf("fields stored without an item id: %v", keys)
	}
}

func TestMergeCreatesTaxInputAndSkipsForeignTaxonomies(t *testing.T) {
	merger := savehook.New(registry())
	got := merger.Merge(context.Background(), savehook.Payload{ID: 9}, submission.Submission{
		Taxonomies: map[string]submission.TermInput{
			"topic":    submission.TermList("12", "47"),
			"genre":    submission.TermString("Noir"),
			"unknown":  submission.TermString("x"),
			"series":   submission.TermString(" , "),
			"post_tag": submission.Terms(42),
		},
	})

	want := map[string][]string{
		"topic":    {"12", "47"},
		"series":   {},
		"post_tag": {},
	}
	if diff := cmp.Diff(want, got.TaxInput); diff != "" {
		t.Fatalf("tax input mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeResolvesContentType(t *testing.T) {
	merger := savehook.New(registry(), savehook.WithContentTypes(savehook.ContentTypeFunc(
		func(_ context.Context, id int64) (string, bool) { return "book", id == 5 },
	)))

	sub := submission.Submission{Taxonomies: map[string]submission.TermInput{
		"genre": submission.TermString("Noir"),
		"topic": submission.TermString("Alpha"),
	}}

	book := merger.Merge(context.Background(), savehook.Payload{ID: 5}, sub)
	if diff := cmp.Diff(map[string][]string{"genre": {"Noir"}}, book.TaxInput); diff != "" {
		t.Fatalf("book tax input mismatch (-want +got):\n%s", diff)
	}

	post := merger.Merge(context.Background(), savehook.Payload{ID: 6}, sub)
	if diff := cmp.Diff(map[string][]string{"topic": {"Alpha"}}, post.TaxInput); diff != "" {
		t.Fatalf("fallback tax input mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeForwardsFieldsAndIgnoresFailures(t *testing.T) {
	type call struct {
		ID    int64
		Key   string
		Value any
	}
	var calls []call
	updater := fields.UpdaterFunc(func(_ context.Context, id int64, key string, value any) error {
		calls = append(calls, call{id, key, value})
		if key == "field_broken" {
			return errors.New("storage offline")
		}
		return nil
	})

	merger := savehook.New(registry(), savehook.WithFieldStore(updater))
	payload := savehook.Payload{ID: 42, Data: map[string]any{"post_title": "Hello"}}
	got := merger.Merge(context.Background(), payload, submission.Submission{
		Fields: map[string]any{
			"field_rating": "4",
			"field_broken": "x",
			"field_notes":  []string{"malty", "dry"},
		},
	})

	want := []call{
		{42, "field_broken", "x"},
		{42, "field_notes", []string{"malty", "dry"}},
		{42, "field_rating", "4"},
	}
	if diff := cmp.Diff(want, calls); diff != "" {
		t.Fatalf("field calls mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(payload, got); diff != "" {
		t.Fatalf("payload changed by field forwarding (-want +got):\n%s", diff)
	}
}

func TestMergeWithoutFieldStoreSkipsFields(t *testing.T) {
	merger := savehook.New(registry())
	payload := savehook.Payload{ID: 3}
	got := merger.Merge(context.Background(), payload, submission.Submission{
		Fields: map[string]any{"field_rating": "4"},
	})
	if diff := cmp.Diff(payload, got); diff != "" {
		t.Fatalf("payload changed (-want +got):\n%s", diff)
	}
}

func TestMergerRegistersOnChain(t *testing.T) {
	var chain hooks.Chain[savehook.SaveRequest]
	chain.Add("native-categories", 5, func(_ context.Context, req savehook.SaveRequest) savehook.SaveRequest {
		if req.Payload.TaxInput == nil {
			req.Payload.TaxInput = map[string][]string{}
		}
		req.Payload.TaxInput["topic"] = []string{"Gamma"}
		return req
	})
	savehook.New(registry()).Register(&chain, 10)

	out := chain.Apply(context.Background(), savehook.SaveRequest{
		Payload:    savehook.Payload{ID: 1},
		Submission: submission.Submission{Taxonomies: map[string]submission.TermInput{"topic": submission.TermString("Alpha")}},
	})
	if diff := cmp.Diff([]string{"Gamma", "Alpha"}, out.Payload.TaxInput["topic"]); diff != "" {
		t.Fatalf("chain result mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"native-categories", savehook.HookName}, chain.Names()); diff != "" {
		t.Fatalf("chain names mismatch (-want +got):\n%s", diff)
	}
}

func TestUnion(t *testing.T) {
	got := savehook.Union([]string{"a", "b", "a"}, []string{"c", "b"})
	if diff := cmp.Diff([]string{"a", "b", "c"}, got); diff != "" {
		t.Fatalf("union mismatch (-want +got):\n%s", diff)
	}
}
