package testutil

import "github.com/Veraticus/taxon/internal/model"

// RecordBuilder builds test records with a fluent API.
//
// Example:
//
//	rec := testutil.NewRecord("p1", "Acme Bot").
//		WithCategory("chatbots").
//		WithTags("chatbot").
//		Build()
type RecordBuilder struct {
	rec model.Record
}

// NewRecord starts a record with an ID and name.
func NewRecord(id, name string) *RecordBuilder {
	return &RecordBuilder{rec: model.Record{ID: id, Name: name}}
}

// WithCategory sets the primary label.
func (b *RecordBuilder) WithCategory(category string) *RecordBuilder {
	b.rec.Category = category
	return b
}

// WithCategories sets the secondary labels.
func (b *RecordBuilder) WithCategories(categories ...string) *RecordBuilder {
	b.rec.Categories = categories
	return b
}

// WithSubcategories sets the subcategories.
func (b *RecordBuilder) WithSubcategories(subcategories ...string) *RecordBuilder {
	b.rec.Subcategories = subcategories
	return b
}

// WithTags sets the tags.
func (b *RecordBuilder) WithTags(tags ...string) *RecordBuilder {
	b.rec.Tags = tags
	return b
}

// WithDescription sets the description.
func (b *RecordBuilder) WithDescription(description string) *RecordBuilder {
	b.rec.Description = description
	return b
}

// Build returns the record.
func (b *RecordBuilder) Build() model.Record {
	return b.rec
}

// SampleRecords returns a small mixed snapshot: mapped, conflicting,
// description-only, unmapped and already-canonical records.
func SampleRecords() []model.Record {
	return []model.Record{
		NewRecord("p1", "Chatty").WithCategory("chatbots").Build(),
		NewRecord("p2", "MedScan").WithDescription("Our platform offers medical diagnostic imaging for radiologists").Build(),
		NewRecord("p3", "Mystery").WithCategory("quantum-widgets").Build(),
		NewRecord("p4", "Coder").WithCategory("chatbots").WithCategories("coding", "developer-tools", "code-generation").Build(),
		NewRecord("p5", "Helper").WithCategory("ai-assistants-copilots").Build(),
		NewRecord("p6", "Painter").WithCategory("ai-art").WithTags("writing", "unknown-tag").Build(),
		NewRecord("p7", "Vectors").WithSubcategories("Vector DB").WithDescription("Managed vector database with embeddings").Build(),
		NewRecord("p8", "Scribe").WithCategories("copywriting").Build(),
	}
}
