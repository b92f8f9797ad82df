package inject

import "strings"

// Element identifier prefixes. Every identifier is the prefix followed by the
// taxonomy name, so unique names give unique identifiers.
const (
	TriggerPrefix = "press-this-btn-"
	ModalPrefix   = "modal-"
	BlockPrefix   = "tax-block-"
	PanelPrefix   = "panel-"
	ListPrefix    = "custom-taxonomy-select-"
	NewTagPrefix  = "new-tag-"
	ModalClass    = "taxonomy-"
)

// IDs groups the identifiers derived for one taxonomy.
type IDs struct {
	Trigger    string `json:"trigger"`
	Modal      string `json:"modal"`
	Block      string `json:"block"`
	Panel      string `json:"panel"`
	List       string `json:"list"`
	NewTag     string `json:"newTag"`
	ModalClass string `json:"modalClass"`
}

// DeriveIDs returns the identifiers for taxonomy name.
func DeriveIDs(name string) IDs {
	name = strings.TrimSpace(name)
	if name == "" {
		return IDs{}
	}
	return IDs{
		Trigger:    TriggerPrefix + name,
		Modal:      ModalPrefix + name,
		Block:      BlockPrefix + name,
		Panel:      PanelPrefix + name,
		List:       ListPrefix + name,
		NewTag:     NewTagPrefix + name,
		ModalClass: ModalClass + name,
	}
}
