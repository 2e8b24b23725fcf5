package classification

import (
	"fmt"
	"regexp"
	"strings"
)

// DescriptionRule maps a keyword cluster in a description onto a canonical category.
type DescriptionRule struct {
	Name     string
	Pattern  string
	Require  string // optional; must also match for the rule to fire
	Exclude  string // optional; must not match for the rule to fire
	Category string
	Weight   int
}

// compiledRule holds a description rule with its regexes compiled.
type compiledRule struct {
	pattern *regexp.Regexp
	require *regexp.Regexp
	exclude *regexp.Regexp
	DescriptionRule
}

// Matches reports whether the rule fires for text.
func (r compiledRule) Matches(text string) bool {
	if !r.pattern.MatchString(text) {
		return false
	}
	if r.require != nil && !r.require.MatchString(text) {
		return false
	}
	if r.exclude != nil && r.exclude.MatchString(text) {
		return false
	}
	return true
}

func compileRules(rules []DescriptionRule) ([]compiledRule, error) {
	compiled := make([]compiledRule, 0, len(rules))
	seen := make(map[string]struct{}, len(rules))

	for _, rule := range rules {
		if rule.Name == "" || rule.Category == "" {
			return nil, fmt.Errorf("description rule %q: name and category are required", rule.Name)
		}
		if _, dup := seen[rule.Name]; dup {
			return nil, fmt.Errorf("description rule %q defined twice", rule.Name)
		}
		seen[rule.Name] = struct{}{}
		if rule.Weight <= 0 {
			return nil, fmt.Errorf("description rule %q: weight must be positive", rule.Name)
		}

		c := compiledRule{DescriptionRule: rule}
		var err error
		if c.pattern, err = compilePattern(rule.Pattern); err != nil {
			return nil, fmt.Errorf("failed to compile pattern %s: %w", rule.Name, err)
		}
		if rule.Require != "" {
			if c.require, err = compilePattern(rule.Require); err != nil {
				return nil, fmt.Errorf("failed to compile require pattern %s: %w", rule.Name, err)
			}
		}
		if rule.Exclude != "" {
			if c.exclude, err = compilePattern(rule.Exclude); err != nil {
				return nil, fmt.Errorf("failed to compile exclude pattern %s: %w", rule.Name, err)
			}
		}
		compiled = append(compiled, c)
	}

	return compiled, nil
}

func compilePattern(expr string) (*regexp.Regexp, error) {
	if expr == "" {
		return nil, fmt.Errorf("empty pattern")
	}
	if !strings.HasPrefix(expr, "(?i)") {
		expr = "(?i)" + expr
	}
	return regexp.Compile(expr)
}

const audioCluster = `\b(audio generation|music|voice cloning|text-to-speech|speech recognition)\b`

const speechCluster = `\b(speech recognition|speech-to-text|text-to-speech|voice assistant)\b`

// DefaultDescriptionRules returns the keyword clusters scanned in record descriptions,
// in evaluation order.
func DefaultDescriptionRules() []DescriptionRule {
	rule := func(name, pattern, category string) DescriptionRule {
		return DescriptionRule{Name: name, Pattern: pattern, Category: category, Weight: WeightDescription}
	}

	speech := rule("speech", audioCluster, "voice-ai-speech")
	speech.Require = speechCluster
	audio := rule("audio", audioCluster, "audio-music")
	audio.Exclude = speechCluster

	return []DescriptionRule{
		rule("medical", `\b(medical|healthcare|clinical|diagnostic|drug discovery|radiology|pathology|patient)\b`, "healthcare-medical-ai"),
		rule("code", `\b(code generation|programming|developer|ide|coding|software development)\b`, "code-generation"),
		rule("code_assistant", `\b(pair programming|code assistant|autocomplete|copilot)\b`, "code-assistants-pair-programming"),
		rule("writing", `\b(writing|copywriting|content creation|blog|article|text generation)\b`, "ai-writing-text"),
		rule("image", `\b(image generation|text-to-image|ai art|visual design|graphic design)\b`, "image-generation-design"),
		rule("video", `\b(video generation|video editing|video creation|video production)\b`, "video-creation-editing"),
		speech,
		audio,
		rule("3d", `\b(3d|photogrammetry|ar|vr|augmented reality|virtual reality|3d reconstruction)\b`, "3d-ar-vr"),
		rule("chatbot", `\b(chatbot|conversational ai|chat interface|dialogue)\b`, "chatbots-conversational-ai"),
		rule("customer_service", `\b(customer service|customer support|support automation|help desk)\b`, "customer-service-ai"),
		rule("sales", `\b(sales|revenue intelligence|lead generation|sales enablement)\b`, "sales-tools-intelligence"),
		rule("marketing", `\b(marketing automation|email marketing|ad optimization|campaign)\b`, "marketing-ai-automation"),
		rule("llm", `\b(large language model|llm|language model|gpt|foundation model)\b`, "llm-apis"),
		rule("ml", `\b(machine learning|automl|ml platform|model training|deep learning)\b`, "machine-learning-platforms"),
		rule("mlops", `\b(mlops|model deployment|ml monitoring|ci/cd|devops)\b`, "devops-mlops"),
		rule("bi", `\b(business intelligence|dashboard|data visualization|analytics|reporting)\b`, "business-intelligence-visualization"),
		rule("cv", `\b(computer vision|object detection|image recognition|image segmentation|facial recognition)\b`, "computer-vision"),
		rule("nlp", `\b(nlp|natural language processing|text analytics|sentiment analysis|entity extraction)\b`, "text-analytics-nlp"),
		rule("document", `\b(ocr|document processing|document analysis|pdf|document ai)\b`, "document-processing"),
		rule("legal", `\b(legal|contract analysis|compliance|e-discovery|legal research)\b`, "legal-ai-compliance"),
		rule("finance", `\b(finance|trading|fraud detection|risk management|financial)\b`, "finance-trading-ai"),
		rule("education", `\b(education|learning|tutoring|educational|training|test prep)\b`, "education-learning-ai"),
		rule("security", `\b(cybersecurity|security|threat detection|vulnerability|network security)\b`, "cybersecurity-ai"),
		rule("ecommerce", `\b(ecommerce|e-commerce|product recommendation|inventory|pricing)\b`, "ecommerce-ai"),
		rule("nocode", `\b(no-code|low-code|visual builder|app builder|drag-and-drop)\b`, "low-code-no-code-ai"),
		rule("workflow", `\b(workflow automation|process automation|rpa|task automation)\b`, "workflow-automation"),
		rule("agent", `\b(ai agent|autonomous agent|multi-agent|agent platform)\b`, "ai-agents-multi-agent"),
		rule("vector", `\b(vector database|semantic search|similarity search|embeddings)\b`, "vector-databases-search"),
		rule("labeling", `\b(data labeling|annotation|labeling tool|data annotation)\b`, "data-labeling-annotation"),
	}
}
