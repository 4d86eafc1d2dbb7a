package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ppiankov/brandlens/internal/model"
)

// EvaluationInput carries everything the reasoning model needs to score one question
type EvaluationInput struct {
	BrandName   string
	KeyMessages []string
	Competitors []string
	Question    string
	Answers     map[model.ProviderID]string
}

// BuildEvaluationPrompt renders the scoring prompt for one question's four answers
func BuildEvaluationPrompt(in EvaluationInput) string {
	var sb strings.Builder

	sb.WriteString("You are analyzing AI responses for brand visibility.\n")
	fmt.Fprintf(&sb, "BRAND: %s\n", in.BrandName)
	fmt.Fprintf(&sb, "KEY MESSAGES: %s\n", formatList(in.KeyMessages))
	fmt.Fprintf(&sb, "COMPETITORS: %s\n", formatList(in.Competitors))
	fmt.Fprintf(&sb, "QUESTION: %s\n", in.Question)
	sb.WriteString("RESPONSES:\n")
	for _, p := range model.Providers {
		fmt.Fprintf(&sb, "%s: %s\n", p.DisplayName(), in.Answers[p])
	}

	sb.WriteString(`
Score each response (0-100) on:
- mention: Was the brand mentioned? (0=no, 100=yes prominently)
- position: Where was brand positioned? (100=first, 75=second, 50=mentioned, 0=absent)
- sentiment: How positive? (0=negative, 50=neutral, 100=positive)
- recommendation: Was it recommended? (0=no, 100=explicitly recommended)
- message_alignment: Did it reflect key messages? (0-100)
- overall: Weighted average

Return ONLY valid JSON:
{
`)
	for i, p := range model.Providers {
		fmt.Fprintf(&sb, `  "%s": {"mention":0,"position":0,"sentiment":0,"recommendation":0,"message_alignment":0,"overall":0,"competitors_mentioned":"","notes":""}`, p)
		if i < len(model.Providers)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}")

	return sb.String()
}

// BuildIndustryPrompt renders the industry-definition prompt
func BuildIndustryPrompt(brandName string, competitors, keyMessages []string) string {
	var sb strings.Builder

	sb.WriteString("Analyze the brand and competitors listed below. Determine the specific industry and output JSON only.\n")
	fmt.Fprintf(&sb, "Brand: %s\n", brandName)
	fmt.Fprintf(&sb, "User-Listed Competitors: %s\n", formatList(competitors))
	fmt.Fprintf(&sb, "Key messages: %s\n", formatList(keyMessages))
	sb.WriteString(`Return this exact JSON structure:
{
  "industry": "specific industry name",
  "industry_keywords": ["keyword1", "keyword2", "keyword3"],
  "valid_competitors": ["Company1", "Company2", "Company3"],
  "brand_variations": ["variation1", "variation2"],
  "invalid_inputs": ["any user-listed items that are not actual competitors"],
  "disambiguation_term": "phrase to add to queries to avoid confusion"
}
Rules:
- industry: Be specific (e.g. "consumer insights software" not "technology")
- industry_keywords: 3-5 terms that define this industry
- valid_competitors: Include user-listed competitors that ARE real competitors + add 10-15 more legitimate competitors in this exact industry. Use proper capitalization (e.g. "SurveyMonkey" not "surveymonkey").
- brand_variations: All common spellings/abbreviations of the brand name
- invalid_inputs: Flag any user-listed items that are not actual competing companies
- disambiguation_term: A clarifying phrase to prevent AI misinterpretation (e.g. "market research platform" vs "AI development platform")
JSON only. No explanation.`)

	return sb.String()
}

func formatList(items []string) string {
	if items == nil {
		items = []string{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return strings.Join(items, ", ")
	}
	return string(data)
}
