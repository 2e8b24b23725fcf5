// Package model defines the core domain models used throughout the application.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Veraticus/taxon/internal/common"
)

// JSON keys of the record fields the classifier reads or writes.
const (
	fieldID            = "id"
	fieldName          = "name"
	fieldCategory      = "category"
	fieldCategories    = "categories"
	fieldSubcategories = "subcategories"
	fieldTags          = "tags"
	fieldDescription   = "description"
	fieldGroup         = "mega_category"
)

// Record is one directory entry to be reclassified.
//
// Only Category and Group are written back by the classifier. Every other
// field, including ones this package does not know about, round-trips
// exactly as it was read.
type Record struct {
	raw           map[string]json.RawMessage
	ID            string
	Name          string
	Category      string
	Group         string
	Description   string
	Categories    []string
	Subcategories []string
	Tags          []string
}

// UnmarshalJSON decodes a record object, keeping every field for later re-encoding.
// Known fields of an unexpected type are treated as absent.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("record must be a JSON object: %w", err)
	}

	*r = Record{raw: raw}
	for key, value := range raw {
		switch key {
		case fieldID:
			r.ID = decodeID(value)
		case fieldName:
			_ = json.Unmarshal(value, &r.Name)
		case fieldCategory:
			_ = json.Unmarshal(value, &r.Category)
		case fieldGroup:
			_ = json.Unmarshal(value, &r.Group)
		case fieldDescription:
			_ = json.Unmarshal(value, &r.Description)
		case fieldCategories:
			r.Categories = decodeStrings(value)
		case fieldSubcategories:
			r.Subcategories = decodeStrings(value)
		case fieldTags:
			r.Tags = decodeStrings(value)
		}
	}
	return nil
}

// MarshalJSON encodes the record with sorted keys.
func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.raw)+8)
	for key, value := range r.raw {
		out[key] = value
	}

	setIfAbsent := func(key string, value any, present bool) {
		if _, ok := out[key]; !ok && present {
			out[key] = value
		}
	}
	setIfAbsent(fieldID, r.ID, r.ID != "")
	setIfAbsent(fieldName, r.Name, r.Name != "")
	setIfAbsent(fieldDescription, r.Description, r.Description != "")
	setIfAbsent(fieldCategories, r.Categories, r.Categories != nil)
	setIfAbsent(fieldSubcategories, r.Subcategories, r.Subcategories != nil)
	setIfAbsent(fieldTags, r.Tags, r.Tags != nil)

	if r.Category != "" {
		out[fieldCategory] = r.Category
	}
	if r.Group != "" {
		out[fieldGroup] = r.Group
	}

	return encodeJSON(out)
}

// Validate reports whether the record carries the fields every run needs.
func (r Record) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("%w: missing id", common.ErrInvalidRecord)
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: missing name", common.ErrInvalidRecord)
	}
	return nil
}

func decodeID(value json.RawMessage) string {
	var s string
	if err := json.Unmarshal(value, &s); err == nil {
		return s
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(value))
	dec.UseNumber()
	if err := dec.Decode(&n); err == nil {
		return n.String()
	}
	return ""
}

func decodeStrings(value json.RawMessage) []string {
	var items []any
	if err := json.Unmarshal(value, &items); err != nil {
		return nil
	}
	var out []string
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// encodeJSON marshals without HTML escaping so free text survives unchanged.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
