package savehook

// Payload is the host's in-flight representation of the item being saved.
// The merger reads ID and merges into TaxInput; Data carries the host's other
// values through untouched.
type Payload struct {
	ID       int64               `json:"ID,omitempty"`
	TaxInput map[string][]string `json:"tax_input,omitempty"`
	Data     map[string]any      `json:"data,omitempty"`
}

// Clone returns a deep copy of the taxonomy assignments; Data is copied one
// level deep since the merger never writes to it.
func (p Payload) Clone() Payload {
	out := Payload{ID: p.ID}
	if p.TaxInput != nil {
		out.TaxInput = make(map[string][]string, len(p.TaxInput))
		for name, values := range p.TaxInput {
			if values == nil {
				out.TaxInput[name] = nil
				continue
			}
			out.TaxInput[name] = append([]string{}, values...)
		}
	}
	if p.Data != nil {
		out.Data = make(map[string]any, len(p.Data))
		for key, value := range p.Data {
			out.Data[key] = value
		}
	}
	return out
}
