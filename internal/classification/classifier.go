package classification

import (
	"fmt"

	"github.com/Veraticus/taxon/internal/common"
	"github.com/Veraticus/taxon/internal/model"
	"github.com/Veraticus/taxon/internal/taxonomy"
)

// DefaultCategory receives records no signal could place.
const DefaultCategory = "ai-assistants-copilots"

// Config controls how records are classified.
type Config struct {
	DefaultCategory string
	Rules           []DescriptionRule
}

// DefaultConfig returns the built-in fallback category and description rules.
func DefaultConfig() Config {
	return Config{
		DefaultCategory: DefaultCategory,
		Rules:           DefaultDescriptionRules(),
	}
}

// Classifier runs extraction, aggregation and tiering for one record at a time.
// It is read-only after construction and safe for concurrent use.
type Classifier struct {
	table           *taxonomy.Table
	extractor       *Extractor
	defaultCategory string
}

// New builds a classifier. Every category it could ever produce must have a
// group in table, otherwise New fails with common.ErrMissingGroup.
func New(table *taxonomy.Table, cfg Config) (*Classifier, error) {
	if cfg.DefaultCategory == "" {
		cfg.DefaultCategory = DefaultCategory
	}

	extractor, err := NewExtractor(table, cfg.Rules)
	if err != nil {
		return nil, err
	}

	targets := append(extractor.RuleTargets(), cfg.DefaultCategory)
	if err := table.Validate(targets...); err != nil {
		return nil, err
	}

	return &Classifier{
		table:           table,
		extractor:       extractor,
		defaultCategory: cfg.DefaultCategory,
	}, nil
}

// Classify returns the classification result for rec. The only error is a
// category without a group, which is a configuration error.
func (c *Classifier) Classify(rec model.Record) (model.Result, error) {
	scores := Aggregate(c.extractor.Extract(rec))

	best, ok := Winner(scores)
	if !ok {
		return c.fallback()
	}

	tier := Tier(best.Score)
	result := model.Result{
		Category:    best.Category,
		Confidence:  tier,
		NeedsReview: NeedsReview(tier),
		Score:       best.Score,
		Sources:     best.Sources,
	}
	if result.NeedsReview {
		result.Reason = ReasonLowScore
	}

	return c.withGroup(result)
}

func (c *Classifier) fallback() (model.Result, error) {
	return c.withGroup(model.Result{
		Category:    c.defaultCategory,
		Confidence:  model.ConfidenceLow,
		NeedsReview: true,
		Reason:      ReasonNoSignal,
		Sources:     []model.SourceTag{},
	})
}

func (c *Classifier) withGroup(result model.Result) (model.Result, error) {
	group, ok := c.table.Group(result.Category)
	if !ok {
		return model.Result{}, fmt.Errorf("%w: %s", common.ErrMissingGroup, result.Category)
	}
	result.Group = group
	return result, nil
}
