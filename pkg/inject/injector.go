package inject

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-quickpost/pkg/access"
	"github.com/goliatone/go-quickpost/pkg/checklist"
	rendertemplate "github.com/goliatone/go-quickpost/pkg/render/template"
	"github.com/goliatone/go-quickpost/pkg/render/template/pongo"
	"github.com/goliatone/go-quickpost/pkg/submission"
	"github.com/goliatone/go-quickpost/pkg/taxonomy"
)

// Default asset location and the runtime file names served from it.
const (
	DefaultAssetBase = "/quickpost/assets"
	RuntimeScript    = "quickpost.js"
	Stylesheet       = "quickpost.css"
	BootstrapID      = "quickpost-bootstrap"
)

// Reserved taxonomies that never get injected controls.
var (
	DefaultDenylist = []string{"cttm-markers-tax", taxonomy.PostFormat}
	DefaultBuiltins = []string{taxonomy.Category, taxonomy.PostTag}
)

// FieldRenderer renders the field capability's inputs for an item.
type FieldRenderer interface {
	RenderFields(ctx context.Context, w io.Writer, itemID int64) error
}

// Request is the render context of one editor page.
type Request struct {
	ItemID      int64
	ContentType string
	Actor       access.Actor
}

// Group is one injected taxonomy.
type Group struct {
	Name         string            `json:"name"`
	Label        string            `json:"label"`
	Hierarchical bool              `json:"hierarchical"`
	IDs          IDs               `json:"ids"`
	Checklist    checklist.Group   `json:"-"`
	Tokens       []checklist.Token `json:"tokens,omitempty"`
	InputName    string            `json:"inputName"`
	NewTagName   string            `json:"newTagName,omitempty"`
	Assigned     []string          `json:"assigned,omitempty"`
	AssignedCSV  string            `json:"assignedCsv,omitempty"`
	Separator    string            `json:"separator,omitempty"`
}

// Plan is the structured result of the injector for one page.
type Plan struct {
	ItemID  int64                    `json:"itemId"`
	Groups  []Group                  `json:"groups"`
	Steps   []Step                   `json:"steps"`
	Anchors Anchors                  `json:"anchors"`
	Marker  string                   `json:"marker"`
	Hidden  []submission.HiddenField `json:"hidden,omitempty"`
}

// Injector renders extra taxonomy controls into the quick-post editor.
type Injector struct {
	registry   taxonomy.Registry
	checker    access.Checker
	checkerSet bool
	terms      taxonomy.TermSource
	fields     FieldRenderer
	denylist   map[string]struct{}
	builtins   map[string]struct{}
	anchors    Anchors
	assetBase  string
	templates  rendertemplate.TemplateRenderer
	logger     *zap.Logger
}

// New constructs an Injector over registry.
func New(registry taxonomy.Registry, options ...Option) (*Injector, error) {
	inj := &Injector{
		registry:  registry,
		denylist:  toSet(DefaultDenylist),
		builtins:  toSet(DefaultBuiltins),
		anchors:   DefaultAnchors(),
		assetBase: DefaultAssetBase,
		logger:    zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(inj)
		}
	}
	if !inj.checkerSet {
		inj.checker = access.Capabilities{}
	}
	if inj.templates == nil {
		engine, err := pongo.New(pongo.WithName("inject"), pongo.WithFS(TemplatesFS()))
		if err != nil {
			return nil, fmt.Errorf("inject: configure template renderer: %w", err)
		}
		inj.templates = engine
	}
	return inj, nil
}

// Eligible returns the taxonomies that get injected controls for req:
// registered for the content type, neither reserved nor built in, and
// assignable by the actor.
func (i *Injector) Eligible(req Request) []taxonomy.Taxonomy {
	if i == nil || i.registry == nil || i.checker == nil {
		return nil
	}
	var out []taxonomy.Taxonomy
	for _, tax := range i.registry.ObjectTaxonomies(req.ContentType) {
		if _, reserved := i.denylist[tax.Name]; reserved {
			continue
		}
		if _, builtin := i.builtins[tax.Name]; builtin {
			continue
		}
		if !i.checker.Can(req.Actor, tax.Capabilities.AssignTerms) {
			i.logger.Debug("omitting taxonomy without permission",
				zap.String("taxonomy", tax.Name),
				zap.String("actor", req.Actor.Name))
			continue
		}
		out = append(out, tax)
	}
	return out
}

// Plan builds the structured page data for req. Groups whose terms cannot be
// loaded are left out.
func (i *Injector) Plan(ctx context.Context, req Request) Plan {
	if i == nil {
		return Plan{ItemID: req.ItemID, Groups: []Group{}}
	}
	plan := Plan{
		ItemID:  req.ItemID,
		Anchors: i.anchors,
		Steps:   Steps(i.anchors),
		Marker:  submission.MarkerAttribute,
		Groups:  []Group{},
	}

	var checklists []checklist.Group
	for _, tax := range i.Eligible(req) {
		group, err := i.group(ctx, req, tax)
		if err != nil {
			i.logger.Debug("omitting taxonomy group",
				zap.String("taxonomy", tax.Name),
				zap.Error(err))
			continue
		}
		plan.Groups = append(plan.Groups, group)
		if group.Hierarchical {
			checklists = append(checklists, group.Checklist)
		}
	}
	plan.Hidden = checklist.Serialize(checklists...)
	return plan
}

func (i *Injector) group(ctx context.Context, req Request, tax taxonomy.Taxonomy) (Group, error) {
	group := Group{
		Name:         tax.Name,
		Label:        tax.Label,
		Hierarchical: tax.Hierarchical,
		IDs:          DeriveIDs(tax.Name),
		InputName:    submission.TaxonomyInputName(tax.Name, tax.Hierarchical),
	}

	var terms, assigned []taxonomy.Term
	if i.terms != nil {
		var err error
		if tax.Hierarchical {
			if terms, err = i.terms.Terms(ctx, tax.Name); err != nil {
				return Group{}, fmt.Errorf("load terms: %w", err)
			}
		}
		if req.ItemID > 0 {
			if assigned, err = i.terms.Assigned(ctx, req.ItemID, tax.Name); err != nil {
				return Group{}, fmt.Errorf("load assigned terms: %w", err)
			}
		}
	}

	if tax.Hierarchical {
		group.Checklist = checklist.Build(tax.Name, terms, assigned)
		group.Tokens = group.Checklist.Flatten()
		return group, nil
	}

	names := make([]string, 0, len(assigned))
	for _, term := range assigned {
		names = append(names, term.Name)
	}
	group.Assigned = names
	group.AssignedCSV = strings.Join(names, ",")
	group.NewTagName = submission.NewTagInputName(tax.Name)
	group.Separator = tax.Labels.SeparateItemsWithCommas
	return group, nil
}
