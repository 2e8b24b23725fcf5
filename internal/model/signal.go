package model

// SourceTag identifies the evidence channel that produced a signal.
type SourceTag string

// Evidence channels in evaluation order.
const (
	SourcePrimaryCategory SourceTag = "primary_category"
	SourceCategoriesArray SourceTag = "categories_array"
	SourceSubcategories   SourceTag = "subcategories"
	SourceTags            SourceTag = "tags"

	descriptionSourcePrefix = "description_"
)

// DescriptionSource returns the source tag for a description rule.
func DescriptionSource(rule string) SourceTag {
	return SourceTag(descriptionSourcePrefix + rule)
}

// Signal is one weighted piece of evidence for a candidate category.
type Signal struct {
	Category string
	Source   SourceTag
	Weight   int
}

// CategoryScore is the accumulated evidence for one candidate category.
type CategoryScore struct {
	Category string
	Sources  []SourceTag
	Score    int
}
