package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Wire shapes. The value of a condition or active filter is decoded according to
// its sibling operator, so these never hold a FilterValue directly.

type conditionWire struct {
	Field    string     `json:"field" yaml:"field"`
	Type     ColumnType `json:"type" yaml:"type"`
	Operator Operator   `json:"operator" yaml:"operator"`
	Value    any        `json:"value" yaml:"value"`
}

type activeFilterWire struct {
	Type     ColumnType `json:"type" yaml:"type"`
	Value    any        `json:"value" yaml:"value"`
	Operator Operator   `json:"operator" yaml:"operator"`
}

type groupWire struct {
	Operator   Logic        `json:"operator" yaml:"operator"`
	Conditions []FilterNode `json:"conditions" yaml:"conditions"`
}

// MarshalJSON implements json.Marshaler
func (c FilterCondition) MarshalJSON() ([]byte, error) {
	return json.Marshal(conditionWire{
		Field:    c.Field,
		Type:     c.Type,
		Operator: c.Operator,
		Value:    c.Value.Raw(),
	})
}

// UnmarshalJSON implements json.Unmarshaler
func (c *FilterCondition) UnmarshalJSON(data []byte) error {
	var w conditionWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*c = FilterCondition{
		Field:    w.Field,
		Type:     w.Type,
		Operator: w.Operator,
		Value:    ValueFor(w.Operator, w.Value),
	}
	return nil
}

// MarshalJSON implements json.Marshaler
func (g FilterGroup) MarshalJSON() ([]byte, error) {
	w := groupWire{Operator: g.Operator, Conditions: g.Conditions}
	if w.Conditions == nil {
		w.Conditions = []FilterNode{}
	}
	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler
func (g *FilterGroup) UnmarshalJSON(data []byte) error {
	var w struct {
		Operator   Logic             `json:"operator"`
		Conditions []json.RawMessage `json:"conditions"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	g.Operator = w.Operator
	g.Conditions = make([]FilterNode, 0, len(w.Conditions))
	for i, raw := range w.Conditions {
		var probe struct {
			Conditions json.RawMessage `json:"conditions"`
		}
		if err := json.Unmarshal(raw, &probe); err != nil {
			return fmt.Errorf("failed to decode condition %d: %w", i, err)
		}

		if probe.Conditions != nil {
			child := &FilterGroup{}
			if err := json.Unmarshal(raw, child); err != nil {
				return fmt.Errorf("failed to decode group %d: %w", i, err)
			}
			g.Conditions = append(g.Conditions, child)
			continue
		}

		cond := &FilterCondition{}
		if err := json.Unmarshal(raw, cond); err != nil {
			return fmt.Errorf("failed to decode condition %d: %w", i, err)
		}
		g.Conditions = append(g.Conditions, cond)
	}
	return nil
}

// MarshalJSON encodes active filters as an object whose keys keep field order
func (a ActiveFilters) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range a {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Field)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(activeFilterWire{
			Type:     f.Type,
			Value:    f.Value.Raw(),
			Operator: f.Operator,
		})
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object of active filters, preserving key order
func (a *ActiveFilters) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*a = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("activeFilters must be an object")
	}

	out := ActiveFilters{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		field, ok := tok.(string)
		if !ok {
			return fmt.Errorf("activeFilters key must be a string")
		}
		var w activeFilterWire
		if err := dec.Decode(&w); err != nil {
			return fmt.Errorf("failed to decode active filter %q: %w", field, err)
		}
		out = append(out, ActiveFilter{
			Field:    field,
			Type:     w.Type,
			Operator: w.Operator,
			Value:    ValueFor(w.Operator, w.Value),
		})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*a = out
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (c FilterCondition) MarshalYAML() (interface{}, error) {
	return conditionWire{
		Field:    c.Field,
		Type:     c.Type,
		Operator: c.Operator,
		Value:    c.Value.Raw(),
	}, nil
}

// UnmarshalYAML implements yaml.Unmarshaler
func (c *FilterCondition) UnmarshalYAML(node *yaml.Node) error {
	var w conditionWire
	if err := node.Decode(&w); err != nil {
		return err
	}
	*c = FilterCondition{
		Field:    w.Field,
		Type:     w.Type,
		Operator: w.Operator,
		Value:    ValueFor(w.Operator, w.Value),
	}
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (g FilterGroup) MarshalYAML() (interface{}, error) {
	w := groupWire{Operator: g.Operator, Conditions: g.Conditions}
	if w.Conditions == nil {
		w.Conditions = []FilterNode{}
	}
	return w, nil
}

// UnmarshalYAML implements yaml.Unmarshaler
func (g *FilterGroup) UnmarshalYAML(node *yaml.Node) error {
	var w struct {
		Operator   Logic       `yaml:"operator"`
		Conditions []yaml.Node `yaml:"conditions"`
	}
	if err := node.Decode(&w); err != nil {
		return err
	}

	g.Operator = w.Operator
	g.Conditions = make([]FilterNode, 0, len(w.Conditions))
	for i := range w.Conditions {
		child := &w.Conditions[i]
		if hasKey(child, "conditions") {
			group := &FilterGroup{}
			if err := child.Decode(group); err != nil {
				return fmt.Errorf("failed to decode group %d: %w", i, err)
			}
			g.Conditions = append(g.Conditions, group)
			continue
		}
		cond := &FilterCondition{}
		if err := child.Decode(cond); err != nil {
			return fmt.Errorf("failed to decode condition %d: %w", i, err)
		}
		g.Conditions = append(g.Conditions, cond)
	}
	return nil
}

// MarshalYAML encodes active filters as an ordered mapping
func (a ActiveFilters) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, f := range a {
		var val yaml.Node
		if err := val.Encode(activeFilterWire{
			Type:     f.Type,
			Value:    f.Value.Raw(),
			Operator: f.Operator,
		}); err != nil {
			return nil, err
		}
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Field}
		node.Content = append(node.Content, key, &val)
	}
	return node, nil
}

// UnmarshalYAML decodes an ordered mapping of active filters
func (a *ActiveFilters) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		*a = nil
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("activeFilters must be a mapping")
	}

	out := make(ActiveFilters, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		field := node.Content[i].Value
		var w activeFilterWire
		if err := node.Content[i+1].Decode(&w); err != nil {
			return fmt.Errorf("failed to decode active filter %q: %w", field, err)
		}
		out = append(out, ActiveFilter{
			Field:    field,
			Type:     w.Type,
			Operator: w.Operator,
			Value:    ValueFor(w.Operator, w.Value),
		})
	}

	*a = out
	return nil
}

func hasKey(node *yaml.Node, key string) bool {
	if node.Kind != yaml.MappingNode {
		return false
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return true
		}
	}
	return false
}
