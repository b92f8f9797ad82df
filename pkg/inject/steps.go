package inject

// Client initialization step names, in execution order.
const (
	StepInsertTriggers = "insert-triggers"
	StepPlaceModals    = "place-modals"
	StepFillModals     = "fill-modals"
	StepPlaceFields    = "place-fields"
	StepPlacePanels    = "place-panels"
	StepTrackSelection = "track-selection"
	StepBindModals     = "bind-modals"
	StepBindTags       = "bind-tags"
)

// Step is one client initialization step. Requires lists the selectors that
// must resolve for the step to act; the runtime skips the step otherwise.
type Step struct {
	Name     string   `json:"name"`
	Requires []string `json:"requires"`
	Summary  string   `json:"summary"`
}

// Anchors are the host page selectors the steps rely on.
type Anchors struct {
	Form         string `json:"form"`
	PostOptions  string `json:"postOptions"`
	TagsTrigger  string `json:"tagsTrigger"`
	OptionsPanel string `json:"optionsPanel"`
	SettingModal string `json:"settingModal"`
	Content      string `json:"content"`
	FieldsBlock  string `json:"fieldsBlock"`
	LegacyPanel  string `json:"legacyPanel"`
	NativeTags   string `json:"nativeTags"`
}

// DefaultAnchors matches the quick-post editor markup.
func DefaultAnchors() Anchors {
	return Anchors{
		Form:         "#pressthis-form",
		PostOptions:  ".post-options",
		TagsTrigger:  ".post-option.tags",
		OptionsPanel: ".options-panel",
		SettingModal: ".setting-modal",
		Content:      "#pressthis",
		FieldsBlock:  "#" + FieldsBlockID,
		LegacyPanel:  ".press-this-taxonomy-panel",
		NativeTags:   "#post_tag",
	}
}

// FieldsBlockID wraps the field-capability output.
const FieldsBlockID = "press-this-acf-fields"

// Steps returns the ordered initialization steps for anchors.
//
// Triggers and modals must be in place before the modal bodies are filled.
// The runtime starts after DOMContentLoaded, so the field block may be
// emitted anywhere in the document. The panel step is a fallback for panels
// rendered by other integrations: it matches a modal by id, then class, then
// by its normalized title text. Event binding runs last so it sees the final
// DOM.
func Steps(a Anchors) []Step {
	return []Step{
		{
			Name:     StepInsertTriggers,
			Requires: []string{a.PostOptions},
			Summary:  "insert each trigger after the native tags trigger, or append it to the options list",
		},
		{
			Name:     StepPlaceModals,
			Requires: []string{a.OptionsPanel, a.SettingModal},
			Summary:  "move each group modal after the last native modal in the options panel",
		},
		{
			Name:     StepFillModals,
			Requires: []string{},
			Summary:  "move each group's control block into its modal placeholder",
		},
		{
			Name:     StepPlaceFields,
			Requires: []string{a.FieldsBlock, a.Content},
			Summary:  "move the field block right after the main content input",
		},
		{
			Name:     StepPlacePanels,
			Requires: []string{a.LegacyPanel},
			Summary:  "attach stray taxonomy panels to their modal by id, class or title text",
		},
		{
			Name:     StepTrackSelection,
			Requires: []string{a.Form},
			Summary:  "toggle checklist items on click or space and rebuild hidden fields",
		},
		{
			Name:     StepBindModals,
			Requires: []string{},
			Summary:  "open modals from their triggers and close them from the back button",
		},
		{
			Name:     StepBindTags,
			Requires: []string{},
			Summary:  "add and remove flat terms in the comma-separated hidden input",
		},
	}
}
