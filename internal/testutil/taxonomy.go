package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/Veraticus/taxon/internal/model"
	"github.com/Veraticus/taxon/internal/taxonomy"
)

// Groups of the reference taxonomy.
const (
	GroupInfrastructure = "AI Infrastructure"
	GroupDeveloper      = "Developer Tools"
	GroupCreative       = "Creative & Media"
	GroupData           = "Data & Analytics"
	GroupCustomer       = "Customer & Communication"
	GroupBusiness       = "Business & Productivity"
	GroupIndustry       = "Industry Solutions"
)

// Groups maps every canonical category of the reference taxonomy to its group.
// It covers every category the built-in description rules can produce.
func Groups() map[string]string {
	members := map[string][]string{
		GroupInfrastructure: {
			"machine-learning-platforms", "llm-apis", "devops-mlops",
			"ai-agents-multi-agent", "vector-databases-search", "cloud-infrastructure",
		},
		GroupDeveloper: {
			"code-assistants-pair-programming", "code-generation", "testing-qa",
			"low-code-no-code-ai", "data-labeling-annotation", "document-processing",
		},
		GroupCreative: {
			"image-generation-design", "video-creation-editing", "audio-music",
			"voice-ai-speech", "3d-ar-vr", "ai-writing-text",
		},
		GroupData: {
			"business-intelligence-visualization", "big-data-engineering",
			"text-analytics-nlp", "computer-vision",
		},
		GroupCustomer: {
			"chatbots-conversational-ai", "customer-service-ai", "sales-tools-intelligence",
			"marketing-ai-automation", "social-media-management",
		},
		GroupBusiness: {
			"workflow-automation", "ai-assistants-copilots", "hr-talent-management",
			"meeting-collaboration-tools", "research-knowledge-tools",
		},
		GroupIndustry: {
			"healthcare-medical-ai", "legal-ai-compliance", "finance-trading-ai",
			"education-learning-ai", "cybersecurity-ai", "ecommerce-ai",
		},
	}

	out := make(map[string]string)
	for group, categories := range members {
		for _, c := range categories {
			out[c] = group
		}
	}
	return out
}

// Legacy returns a sample of ad hoc legacy labels and their canonical targets.
// It has one identity entry ("code-generation") like real mapping files do.
func Legacy() map[string]string {
	return map[string]string{
		"chatbots":          "chatbots-conversational-ai",
		"chatbot":           "chatbots-conversational-ai",
		"conversational-ai": "chatbots-conversational-ai",
		"healthcare":        "healthcare-medical-ai",
		"medical-ai":        "healthcare-medical-ai",
		"coding":            "code-generation",
		"code-generation":   "code-generation",
		"developer-tools":   "code-generation",
		"copilots":          "code-assistants-pair-programming",
		"ml-platforms":      "machine-learning-platforms",
		"machine-learning":  "machine-learning-platforms",
		"image-generation":  "image-generation-design",
		"ai-art":            "image-generation-design",
		"writing":           "ai-writing-text",
		"copywriting":       "ai-writing-text",
		"vector-db":         "vector-databases-search",
		"analytics":         "business-intelligence-visualization",
		"natural-language":  "text-analytics-nlp",
		"productivity":      "ai-assistants-copilots",
	}
}

// Table returns the reference taxonomy.
func Table(t *testing.T) *taxonomy.Table {
	t.Helper()

	table, err := taxonomy.New(Legacy(), Groups())
	if err != nil {
		t.Fatalf("failed to build reference taxonomy: %v", err)
	}
	return table
}

// WriteMappingFile writes the reference taxonomy as a JSON mapping file and returns its path.
func WriteMappingFile(t *testing.T, dir string) string {
	t.Helper()

	data, err := json.MarshalIndent(map[string]map[string]string{
		"mapping":        Legacy(),
		"megaCategories": Groups(),
	}, "", "  ")
	if err != nil {
		t.Fatalf("failed to encode mapping: %v", err)
	}

	path := filepath.Join(dir, "category-mapping.json")
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("failed to write mapping: %v", err)
	}
	return path
}

// WriteRecordsFile writes records as a JSON array and returns its path.
func WriteRecordsFile(t *testing.T, dir string, records []model.Record) string {
	t.Helper()

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		t.Fatalf("failed to encode records: %v", err)
	}

	path := filepath.Join(dir, "platforms.json")
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("failed to write records: %v", err)
	}
	return path
}
