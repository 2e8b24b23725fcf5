// Package taxonomy holds the static mapping from legacy labels onto the
// canonical, grouped category taxonomy.
package taxonomy

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Veraticus/taxon/internal/common"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a mapping file.
type Format string

// Supported mapping file formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// document is the on-disk shape of a mapping file.
type document struct {
	Mapping        map[string]string `json:"mapping" yaml:"mapping"`
	MegaCategories map[string]string `json:"megaCategories" yaml:"megaCategories"`
}

// Table is the read-only lookup pair used for a whole run.
type Table struct {
	legacy map[string]string
	groups map[string]string
}

// New builds a table from legacy-label and category-group maps. Both maps are copied.
func New(legacy, groups map[string]string) (*Table, error) {
	if len(groups) == 0 {
		return nil, fmt.Errorf("%w: no canonical categories defined", common.ErrInvalidMapping)
	}

	t := &Table{
		legacy: make(map[string]string, len(legacy)),
		groups: make(map[string]string, len(groups)),
	}
	for label, category := range legacy {
		if strings.TrimSpace(category) == "" {
			return nil, fmt.Errorf("%w: legacy label %q maps to an empty category", common.ErrInvalidMapping, label)
		}
		t.legacy[label] = category
	}
	for category, group := range groups {
		if strings.TrimSpace(group) == "" {
			return nil, fmt.Errorf("%w: category %q", common.ErrMissingGroup, category)
		}
		t.groups[category] = group
	}
	return t, nil
}

// Load reads a mapping file. The format follows the file extension.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from trusted config
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file: %w", err)
	}

	table, err := Parse(data, FormatForPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

// FormatForPath picks the mapping format from a file name.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Parse decodes mapping data in the given format.
func Parse(data []byte, format Format) (*Table, error) {
	var doc document

	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrInvalidMapping, err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrInvalidMapping, err)
		}
	default:
		return nil, fmt.Errorf("%w: unknown format %q", common.ErrInvalidMapping, format)
	}

	if doc.Mapping == nil {
		return nil, fmt.Errorf("%w: missing \"mapping\" object", common.ErrInvalidMapping)
	}
	if doc.MegaCategories == nil {
		return nil, fmt.Errorf("%w: missing \"megaCategories\" object", common.ErrInvalidMapping)
	}

	return New(doc.Mapping, doc.MegaCategories)
}

// Lookup maps a label to its canonical category. An explicit mapping entry
// wins; otherwise a label that already names a canonical category maps to
// itself, so migrated records keep their category.
func (t *Table) Lookup(label string) (string, bool) {
	if category, ok := t.legacy[label]; ok {
		return category, true
	}
	if t.IsCanonical(label) {
		return label, true
	}
	return "", false
}

// Group returns the top-level group of a canonical category.
func (t *Table) Group(category string) (string, bool) {
	group, ok := t.groups[category]
	return group, ok
}

// IsCanonical reports whether category is part of the curated taxonomy.
func (t *Table) IsCanonical(category string) bool {
	_, ok := t.groups[category]
	return ok
}

// Categories returns every canonical category, sorted.
func (t *Table) Categories() []string {
	out := make([]string, 0, len(t.groups))
	for category := range t.groups {
		out = append(out, category)
	}
	sort.Strings(out)
	return out
}

// Groups returns every distinct group, sorted.
func (t *Table) Groups() []string {
	seen := make(map[string]struct{}, len(t.groups))
	out := make([]string, 0)
	for _, group := range t.groups {
		if _, ok := seen[group]; ok {
			continue
		}
		seen[group] = struct{}{}
		out = append(out, group)
	}
	sort.Strings(out)
	return out
}

// CategoriesByGroup returns the sorted canonical categories of each group.
func (t *Table) CategoriesByGroup() map[string][]string {
	out := make(map[string][]string)
	for _, category := range t.Categories() {
		group := t.groups[category]
		out[group] = append(out[group], category)
	}
	return out
}

// LegacyLabelCount is the number of distinct legacy labels the table knows.
// Mapping keys that are themselves canonical categories are not counted.
func (t *Table) LegacyLabelCount() int {
	n := 0
	for label := range t.legacy {
		if !t.IsCanonical(label) {
			n++
		}
	}
	return n
}

// Targets returns the distinct canonical categories legacy labels map to, sorted.
func (t *Table) Targets() []string {
	seen := make(map[string]struct{}, len(t.legacy))
	out := make([]string, 0)
	for _, category := range t.legacy {
		if _, ok := seen[category]; ok {
			continue
		}
		seen[category] = struct{}{}
		out = append(out, category)
	}
	sort.Strings(out)
	return out
}

// Validate checks that every legacy target and every extra category has a group.
// A failure here is a configuration error and must stop the run.
func (t *Table) Validate(extra ...string) error {
	var missing []string
	seen := make(map[string]struct{})

	check := func(category string) {
		if _, ok := seen[category]; ok {
			return
		}
		seen[category] = struct{}{}
		if !t.IsCanonical(category) {
			missing = append(missing, category)
		}
	}

	for _, category := range t.Targets() {
		check(category)
	}
	for _, category := range extra {
		check(category)
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("%w: %s", common.ErrMissingGroup, strings.Join(missing, ", "))
	}
	return nil
}
