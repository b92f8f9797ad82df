package inject

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

type bootstrapGroup struct {
	Name         string `json:"name"`
	Label        string `json:"label"`
	Hierarchical bool   `json:"hierarchical"`
	IDs          IDs    `json:"ids"`
	InputName    string `json:"inputName"`
}

type bootstrapDoc struct {
	ItemID  int64            `json:"itemId"`
	Marker  string           `json:"marker"`
	Anchors Anchors          `json:"anchors"`
	Steps   []Step           `json:"steps"`
	Groups  []bootstrapGroup `json:"groups"`
}

// Bootstrap encodes the part of plan the browser runtime consumes. The
// output is safe to embed in a script element.
func Bootstrap(plan Plan) ([]byte, error) {
	doc := bootstrapDoc{
		ItemID:  plan.ItemID,
		Marker:  plan.Marker,
		Anchors: plan.Anchors,
		Steps:   plan.Steps,
		Groups:  make([]bootstrapGroup, 0, len(plan.Groups)),
	}
	for _, group := range plan.Groups {
		doc.Groups = append(doc.Groups, bootstrapGroup{
			Name:         group.Name,
			Label:        group.Label,
			Hierarchical: group.Hierarchical,
			IDs:          group.IDs,
			InputName:    group.InputName,
		})
	}
	// json.Marshal escapes <, > and &, so "</script>" cannot appear.
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("inject: encode bootstrap: %w", err)
	}
	return data, nil
}

// Render writes the markup for plan: the staged triggers, the modals with
// their control blocks, the initial hidden fields, the bootstrap document
// and the runtime script tag.
func (i *Injector) Render(_ context.Context, w io.Writer, plan Plan) error {
	bootstrap, err := Bootstrap(plan)
	if err != nil {
		return err
	}
	data := map[string]any{
		"groups":      plan.Groups,
		"hidden":      plan.Hidden,
		"marker":      plan.Marker,
		"formId":      strings.TrimPrefix(plan.Anchors.Form, "#"),
		"bootstrapId": BootstrapID,
		"bootstrap":   string(bootstrap),
		"script":      i.assetURL(RuntimeScript),
	}
	if _, err := i.templates.RenderTemplate("templates/footer", data, w); err != nil {
		return fmt.Errorf("inject: render footer: %w", err)
	}
	return nil
}

// Footer renders the taxonomy controls for req. Failures are logged and
// leave the page without the extra controls.
func (i *Injector) Footer(ctx context.Context, w io.Writer, req Request) {
	if i == nil {
		return
	}
	plan := i.Plan(ctx, req)
	var buf bytes.Buffer
	if err := i.Render(ctx, &buf, plan); err != nil {
		i.logger.Warn("taxonomy controls not rendered", zap.Error(err))
		return
	}
	if _, err := buf.WriteTo(w); err != nil {
		i.logger.Warn("taxonomy controls not written", zap.Error(err))
	}
}

// Fields renders the field capability's inputs wrapped in the block the
// runtime moves below the content input. Nothing is written when no field
// renderer is configured or it fails.
func (i *Injector) Fields(ctx context.Context, w io.Writer, req Request) {
	if i == nil || i.fields == nil {
		return
	}
	var inner bytes.Buffer
	if err := i.fields.RenderFields(ctx, &inner, req.ItemID); err != nil {
		i.logger.Warn("field block not rendered", zap.Int64("item", req.ItemID), zap.Error(err))
		return
	}
	if inner.Len() == 0 {
		return
	}
	data := map[string]any{
		"blockId": FieldsBlockID,
		"html":    inner.String(),
	}
	var buf bytes.Buffer
	if _, err := i.templates.RenderTemplate("templates/fields", data, &buf); err != nil {
		i.logger.Warn("field block not rendered", zap.Error(err))
		return
	}
	if _, err := buf.WriteTo(w); err != nil {
		i.logger.Warn("field block not written", zap.Error(err))
	}
}

// Assets writes the stylesheet link for the runtime.
func (i *Injector) Assets(_ context.Context, w io.Writer) {
	if i == nil {
		return
	}
	data := map[string]any{"stylesheet": i.assetURL(Stylesheet)}
	if _, err := i.templates.RenderTemplate("templates/assets", data, w); err != nil {
		i.logger.Warn("runtime stylesheet not linked", zap.Error(err))
	}
}

func (i *Injector) assetURL(name string) string {
	return i.assetBase + "/" + name
}
