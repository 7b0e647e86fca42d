package transcript

import "encoding/json"

type jsonItem struct {
	Type      string    `json:"type"`
	ID        string    `json:"id"`
	Level     int       `json:"level,omitempty"`
	Text      string    `json:"text,omitempty"`
	SectionID string    `json:"section_id,omitempty"`
	Messages  []Message `json:"messages,omitempty"`
}

type jsonTranscript struct {
	Items       []jsonItem   `json:"items"`
	Diagnostics []Diagnostic `json:"diagnostics"`
	Stats       Stats        `json:"stats"`
}

// MarshalJSON encodes the item list as objects tagged with "type"
// ("header" or "section").
func (t *Transcript) MarshalJSON() ([]byte, error) {
	out := jsonTranscript{
		Items:       make([]jsonItem, 0, len(t.Items)),
		Diagnostics: t.Diagnostics,
		Stats:       t.Stats(),
	}
	if out.Diagnostics == nil {
		out.Diagnostics = []Diagnostic{}
	}
	for _, it := range t.Items {
		switch v := it.(type) {
		case *Header:
			out.Items = append(out.Items, jsonItem{Type: "header", ID: v.ID, Level: v.Level, Text: v.Text, SectionID: v.SectionID})
		case *Section:
			out.Items = append(out.Items, jsonItem{Type: "section", ID: v.ID, Messages: v.Messages})
		}
	}
	return json.Marshal(out)
}
