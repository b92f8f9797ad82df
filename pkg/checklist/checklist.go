// Package checklist holds the selection state of hierarchical taxonomy
// checklists and serializes it into hidden form fields. It mirrors the rules
// the browser runtime applies, so the server can emit the initial hidden
// fields for pre-assigned terms and the rules stay testable in Go.
package checklist

import (
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-quickpost/pkg/submission"
	"github.com/goliatone/go-quickpost/pkg/taxonomy"
)

// Item is one checklist entry. The entry's ID is the only identity a
// selection carries.
type Item struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Selected bool   `json:"selected"`
	Children []Item `json:"children,omitempty"`
}

// Group is the checklist of a single taxonomy.
type Group struct {
	Taxonomy string `json:"taxonomy"`
	Items    []Item `json:"items"`
}

// Build arranges terms into a parent/child tree, marking the assigned ones
// as selected. Terms whose parent is unknown are attached at the root.
// Siblings are ordered by name, then ID.
func Build(tax string, terms []taxonomy.Term, assigned []taxonomy.Term) Group {
	selected := make(map[int64]struct{}, len(assigned))
	for _, term := range assigned {
		selected[term.ID] = struct{}{}
	}

	known := make(map[int64]struct{}, len(terms))
	for _, term := range terms {
		known[term.ID] = struct{}{}
	}
	children := make(map[int64][]taxonomy.Term)
	for _, term := range terms {
		parent := term.Parent
		if _, ok := known[parent]; !ok || parent == term.ID {
			parent = 0
		}
		children[parent] = append(children[parent], term)
	}
	for _, list := range children {
		sort.SliceStable(list, func(i, j int) bool {
			if list[i].Name == list[j].Name {
				return list[i].ID < list[j].ID
			}
			return strings.ToLower(list[i].Name) < strings.ToLower(list[j].Name)
		})
	}

	visited := make(map[int64]struct{}, len(terms))
	var build func(parent int64) []Item
	build = func(parent int64) []Item {
		list := children[parent]
		if len(list) == 0 {
			return nil
		}
		items := make([]Item, 0, len(list))
		for _, term := range list {
			if _, seen := visited[term.ID]; seen {
				continue
			}
			visited[term.ID] = struct{}{}
			_, isSelected := selected[term.ID]
			items = append(items, Item{
				ID:       strconv.FormatInt(term.ID, 10),
				Name:     term.Name,
				Selected: isSelected,
				Children: build(term.ID),
			})
		}
		return items
	}

	items := build(0)
	// Terms caught in a parent cycle are never reached from the root.
	for _, term := range terms {
		if _, seen := visited[term.ID]; seen {
			continue
		}
		visited[term.ID] = struct{}{}
		_, isSelected := selected[term.ID]
		items = append(items, Item{
			ID:       strconv.FormatInt(term.ID, 10),
			Name:     term.Name,
			Selected: isSelected,
			Children: build(term.ID),
		})
	}

	return Group{Taxonomy: strings.TrimSpace(tax), Items: items}
}

// Toggle flips the selection of the item with the given ID and reports
// whether it was found.
func (g *Group) Toggle(id string) bool {
	if g == nil {
		return false
	}
	return toggle(g.Items, id)
}

func toggle(items []Item, id string) bool {
	for i := range items {
		if items[i].ID == id {
			items[i].Selected = !items[i].Selected
			return true
		}
		if toggle(items[i].Children, id) {
			return true
		}
	}
	return false
}

// Selected returns the selected item IDs in document order.
func (g Group) Selected() []string {
	var ids []string
	walk(g.Items, func(item Item) {
		if item.Selected {
			ids = append(ids, item.ID)
		}
	})
	return ids
}

// Serialize rebuilds the hidden fields for every group from scratch: one
// marker-tagged field per selected item, groups in the given order and items
// in document order.
func Serialize(groups ...Group) []submission.HiddenField {
	var out []submission.HiddenField
	for _, group := range groups {
		if group.Taxonomy == "" {
			continue
		}
		for _, id := range group.Selected() {
			out = append(out, submission.TaxonomyField(group.Taxonomy, id))
		}
	}
	return out
}

// Flatten walks the tree depth first and emits rendering tokens: an "item"
// token per entry, "push"/"pop" around each child list and an "end" token
// closing each entry. Templates use it to draw nested lists without
// recursion.
func (g Group) Flatten() []Token {
	var tokens []Token
	var visit func(items []Item, depth int)
	visit = func(items []Item, depth int) {
		for _, item := range items {
			tokens = append(tokens, Token{Kind: TokenItem, ID: item.ID, Name: item.Name, Selected: item.Selected, Depth: depth})
			if len(item.Children) > 0 {
				tokens = append(tokens, Token{Kind: TokenPush, Depth: depth + 1})
				visit(item.Children, depth+1)
				tokens = append(tokens, Token{Kind: TokenPop, Depth: depth + 1})
			}
			tokens = append(tokens, Token{Kind: TokenEnd, Depth: depth})
		}
	}
	visit(g.Items, 0)
	return tokens
}

// Token kinds produced by Flatten.
const (
	TokenItem = "item"
	TokenPush = "push"
	TokenPop  = "pop"
	TokenEnd  = "end"
)

// Token is a single step of a flattened checklist.
type Token struct {
	Kind     string `json:"kind"`
	ID       string `json:"id,omitempty"`
	Name     string `json:"name,omitempty"`
	Selected bool   `json:"selected,omitempty"`
	Depth    int    `json:"depth"`
}

func walk(items []Item, fn func(Item)) {
	for _, item := range items {
		fn(item)
		walk(item.Children, fn)
	}
}
