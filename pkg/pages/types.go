package pages

import (
	"encoding/json"
	"fmt"
	"time"
)

// PropertyValue is a typed page property that marshals itself into the wire
// property format.
type PropertyValue interface {
	json.Marshaler
}

// Properties maps fixed property names to typed values. A Properties map is
// built fresh per call and never mutated after being attached to a payload.
type Properties map[string]PropertyValue

type textBody struct {
	Content string `json:"content"`
}

type richText struct {
	Type string   `json:"type"`
	Text textBody `json:"text"`
}

func newTextSpan(content string) richText {
	return richText{Type: "text", Text: textBody{Content: content}}
}

// Title is the page title property.
type Title string

func (v Title) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string][]richText{"title": {newTextSpan(string(v))}})
}

// Select is a single-choice property.
type Select string

func (v Select) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]map[string]string{"select": {"name": string(v)}})
}

// MultiSelect is a multi-choice property.
type MultiSelect []string

func (v MultiSelect) MarshalJSON() ([]byte, error) {
	options := make([]map[string]string, 0, len(v))
	for _, name := range v {
		options = append(options, map[string]string{"name": name})
	}
	return json.Marshal(map[string]any{"multi_select": options})
}

// Checkbox is a boolean property.
type Checkbox bool

func (v Checkbox) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]bool{"checkbox": bool(v)})
}

// URL is a link property.
type URL string

func (v URL) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"url": string(v)})
}

// Date is a point-in-time property.
type Date time.Time

func (v Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]map[string]string{
		"date": {"start": time.Time(v).Format(time.RFC3339)},
	})
}

// Number is a numeric property.
type Number float64

func (v Number) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]float64{"number": float64(v)})
}

// RichText is a free-form text property.
type RichText string

func (v RichText) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string][]richText{"rich_text": {newTextSpan(string(v))}})
}

// ParseProperties is the inverse of the property marshalling for the fixed
// schema: it recovers typed values from wire-format property objects.
func ParseProperties(raw []byte) (Properties, error) {
	var wire map[string]map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("failed to parse properties: %w", err)
	}

	props := Properties{}
	for name, fields := range wire {
		value, err := parsePropertyValue(fields)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", name, err)
		}
		if value != nil {
			props[name] = value
		}
	}
	return props, nil
}

func parsePropertyValue(fields map[string]json.RawMessage) (PropertyValue, error) {
	switch {
	case fields["title"] != nil:
		content, err := joinSpans(fields["title"])
		return Title(content), err
	case fields["select"] != nil:
		var sel struct {
			Name string `json:"name"`
		}
		err := json.Unmarshal(fields["select"], &sel)
		return Select(sel.Name), err
	case fields["multi_select"] != nil:
		var options []struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(fields["multi_select"], &options); err != nil {
			return nil, err
		}
		names := make(MultiSelect, 0, len(options))
		for _, o := range options {
			names = append(names, o.Name)
		}
		return names, nil
	case fields["checkbox"] != nil:
		var b bool
		err := json.Unmarshal(fields["checkbox"], &b)
		return Checkbox(b), err
	case fields["url"] != nil:
		var u string
		err := json.Unmarshal(fields["url"], &u)
		return URL(u), err
	case fields["date"] != nil:
		var d struct {
			Start string `json:"start"`
		}
		if err := json.Unmarshal(fields["date"], &d); err != nil {
			return nil, err
		}
		start, err := time.Parse(time.RFC3339, d.Start)
		if err != nil {
			return nil, err
		}
		return Date(start), nil
	case fields["number"] != nil:
		var n float64
		err := json.Unmarshal(fields["number"], &n)
		return Number(n), err
	case fields["rich_text"] != nil:
		content, err := joinSpans(fields["rich_text"])
		return RichText(content), err
	default:
		// unsupported property types are skipped, not an error
		return nil, nil
	}
}

func joinSpans(raw json.RawMessage) (string, error) {
	var spans []richText
	if err := json.Unmarshal(raw, &spans); err != nil {
		return "", err
	}
	content := ""
	for _, s := range spans {
		content += s.Text.Content
	}
	return content, nil
}
