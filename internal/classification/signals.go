// Package classification maps a record onto a canonical category by weighing
// evidence from several independent channels.
package classification

import (
	"regexp"
	"strings"

	"github.com/Veraticus/taxon/internal/model"
	"github.com/Veraticus/taxon/internal/taxonomy"
)

// Channel weights. The primary label is strongest because a human chose it.
const (
	WeightPrimaryCategory   = 10
	WeightSecondaryCategory = 5
	WeightSubcategory       = 3
	WeightTag               = 2
	WeightDescription       = 4
)

// whitespaceRun also covers Unicode spaces such as NBSP, which \s alone misses.
var whitespaceRun = regexp.MustCompile(`[\s\v\p{Z}\x{FEFF}]+`)

// Extractor turns a record into an ordered list of category signals.
// It holds no per-record state and is safe for concurrent use.
type Extractor struct {
	table *taxonomy.Table
	rules []compiledRule
}

// NewExtractor compiles the description rules against a mapping table.
func NewExtractor(table *taxonomy.Table, rules []DescriptionRule) (*Extractor, error) {
	compiled, err := compileRules(rules)
	if err != nil {
		return nil, err
	}
	return &Extractor{table: table, rules: compiled}, nil
}

// Extract returns the signals for rec in channel order: primary label,
// secondary labels, subcategories, tags, then description rules.
func (e *Extractor) Extract(rec model.Record) []model.Signal {
	var signals []model.Signal

	add := func(label string, weight int, source model.SourceTag) {
		if category, ok := e.table.Lookup(label); ok {
			signals = append(signals, model.Signal{Category: category, Weight: weight, Source: source})
		}
	}

	if rec.Category != "" {
		add(rec.Category, WeightPrimaryCategory, model.SourcePrimaryCategory)
	}
	for _, label := range rec.Categories {
		add(label, WeightSecondaryCategory, model.SourceCategoriesArray)
	}
	for _, sub := range rec.Subcategories {
		add(NormalizeSubcategory(sub), WeightSubcategory, model.SourceSubcategories)
	}
	for _, tag := range rec.Tags {
		add(tag, WeightTag, model.SourceTags)
	}

	if rec.Description != "" {
		signals = append(signals, e.describe(rec.Description)...)
	}

	return signals
}

// describe runs every description rule once; a rule counts at most once per text.
func (e *Extractor) describe(description string) []model.Signal {
	text := strings.ToLower(description)

	var signals []model.Signal
	for _, rule := range e.rules {
		if rule.Matches(text) {
			signals = append(signals, model.Signal{
				Category: rule.Category,
				Weight:   rule.Weight,
				Source:   model.DescriptionSource(rule.Name),
			})
		}
	}
	return signals
}

// RuleTargets returns the categories the description rules can produce.
func (e *Extractor) RuleTargets() []string {
	out := make([]string, 0, len(e.rules))
	for _, rule := range e.rules {
		out = append(out, rule.Category)
	}
	return out
}

// NormalizeSubcategory lower-cases a subcategory and hyphenates whitespace runs.
func NormalizeSubcategory(sub string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(sub), "-")
}
