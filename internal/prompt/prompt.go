// Package prompt builds the deterministic model instructions for the audit
// and day-detail pipelines. Builders are pure: same request and metrics in,
// same string out, with missing fields rendered as an explicit placeholder
// so the model never sees an ambiguous blank.
package prompt

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/seomentor/seomentor-api/internal/model"
)

// placeholder is rendered for every absent optional field.
const placeholder = "Not provided"

// AuditSystem is the system message for the main audit call.
const AuditSystem = `You are a senior international SEO strategist.
Return ONLY valid raw JSON that matches the schema exactly.
Recommendations must be specific to the provided URL, country, language, and scraped metrics.
Avoid generic advice and repeated actions.
Do not include markdown, code fences, or text outside JSON.`

// DetailSystem is the system message for day-detail generation.
const DetailSystem = `You are an expert SEO execution coach.
Return only valid raw JSON.
Do not include markdown fences or any text outside JSON.`

const auditTemplate = `Website URL: %s
Country: %s
Language: %s

Onboarding Context:
Primary Goal: %s
Business / Offer: %s
Target Audience: %s
Priority Pages: %s
Seed Keywords: %s
Known Competitors: %s
Execution Capacity: %s

Extracted SEO Data:
Title: %s
Meta Description: %s
H1 Count: %d
H2 Count: %d
Word Count: %d
Internal Links: %d
Images Missing Alt: %d

Tasks:
0. Tailor every recommendation to the onboarding context above when available.
1. Generate an SEO score between 0 and 100.
2. List key SEO issues using this string format:
   "<Issue> | Evidence: <metric/page signal> | Impact: <why rankings suffer> | Fix: <exact action>".
3. Identify exactly 5 realistic competitors operating in this country/language.
   Include a clickable "url" and in "reason" explain why they directly compete.
   If the business is food/delivery/restaurant, prefer Wolt listing URLs when possible.
4. Identify 10-15 keyword/content gaps with strong search intent in this country/language.
5. Generate exactly %d unique roadmap tasks (day 1..%d).
   Every task must include a concrete page/asset target and a KPI.
6. Avoid filler tasks like "develop strategy" without specifics.
7. Do not use unescaped double quotes inside any JSON string value.
8. Do not wrap keywords in double quotes; use plain words or single quotes.

Return ONLY this JSON structure:

{
  "seo_score": number,
  "issues": ["string"],
  "competitors": [
    { "name": "string", "reason": "string", "url": "string" }
  ],
  "keyword_gaps": ["string"],
  "roadmap": [
    { "day": 1, "task": "string" }
  ]
}

No additional text.`

// Audit builds the user message for the main audit call. Pure and
// deterministic for equal inputs.
func Audit(req model.AnalysisRequest, metrics *model.ScrapedMetrics) string {
	var m model.ScrapedMetrics
	if metrics != nil {
		m = *metrics
	}

	return fmt.Sprintf(auditTemplate,
		req.URL,
		req.Country,
		LanguageName(req.Language),
		textValue(req.PrimaryGoal),
		textValue(req.BusinessOffer),
		textValue(req.TargetAudience),
		listValue(req.PriorityPages),
		listValue(req.SeedKeywords),
		listValue(req.KnownCompetitors),
		textValue(req.ExecutionCapacity),
		m.Title,
		m.MetaDescription,
		m.H1Count,
		m.H2Count,
		m.WordCount,
		m.InternalLinks,
		m.MissingAltImages,
		req.PlanDays,
		req.PlanDays,
	)
}

// CompactRetrySuffix is appended to the audit prompt when the first response
// failed to parse. truncated adds a note when the raw output looked cut off.
func CompactRetrySuffix(planDays int, truncated bool) string {
	s := fmt.Sprintf(`
Previous output was invalid or incomplete.
Regenerate complete strict JSON only and keep it compact:
- issues: 4-5 items, each concise.
- competitors: exactly 5.
- keyword_gaps: exactly 10 short phrases.
- roadmap: exactly %d tasks, each <= 14 words.
- ensure all JSON brackets and braces are closed.
- never use double quotes inside string values; use plain words or single quotes.
No text outside JSON.
`, planDays)
	if truncated {
		s += "Keep every value short to avoid truncation.\n"
	}
	return s
}

// QualityRetrySuffix is appended when the first normalized result failed the
// quality gate.
func QualityRetrySuffix(planDays int) string {
	return fmt.Sprintf(`

Regenerate now with stricter specificity.
Rules: do not repeat tasks, include concrete page/asset targets, include KPI in every roadmap task, ensure competitors are realistic for the country/language, and output exactly %d roadmap days.`, planDays)
}

const detailTemplate = `Return ONLY valid JSON with this exact shape:
{
  "description": "string",
  "checklist": ["string"],
  "kpi": "string"
}

Context:
- Website: %s
- Country: %s
- Language: %s
- Day: %d
- Task: %s
- Primary Goal: %s
- Business / Offer: %s
- Target Audience: %s
- Execution Capacity: %s
- Top Issues: %s
- Keyword Gaps: %s
- Competitors: %s

Rules:
1) Make the description concrete and actionable for this exact task.
2) Keep description between 2 and 3 short sentences.
3) checklist must have exactly 4 concrete items.
4) kpi must be one measurable metric with target.
5) No markdown. No extra keys. No text outside JSON.`

// DayDetail builds the user message for expanding one roadmap task. Result
// context is trimmed to the few most useful entries to keep the prompt small.
func DayDetail(req model.AnalysisRequest, result *model.AnalysisResult, task model.RoadmapTask) string {
	var issues, gaps, competitors []string
	if result != nil {
		issues = capList(result.Issues, 4)
		gaps = capList(result.KeywordGaps, 6)
		for _, c := range result.Competitors {
			name := strings.TrimSpace(c.Name)
			if name == "" {
				continue
			}
			competitors = append(competitors, name)
			if len(competitors) >= 4 {
				break
			}
		}
	}

	return fmt.Sprintf(detailTemplate,
		req.URL,
		textValue(req.Country),
		textValue(LanguageName(req.Language)),
		task.Day,
		task.Task,
		textValue(req.PrimaryGoal),
		textValue(req.BusinessOffer),
		textValue(req.TargetAudience),
		textValue(req.ExecutionCapacity),
		listValue(issues),
		listValue(gaps),
		listValue(competitors),
	)
}

// DetailRetrySuffix is appended when the first day-detail response failed to
// parse.
const DetailRetrySuffix = `

Previous output was invalid JSON.
Regenerate strict compact JSON only.
Keep every string short and ensure all braces are closed.`

// LanguageName maps a BCP-47 code to its English display name ("az" →
// "Azerbaijani") so short codes read naturally in the prompt. Values that
// are not plain language codes pass through unchanged.
func LanguageName(lang string) string {
	s := strings.TrimSpace(lang)
	if s == "" || len(s) > 5 || strings.ContainsAny(s, " _") {
		return s
	}

	tag, err := language.Parse(s)
	if err != nil {
		return s
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return s
}

func textValue(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return placeholder
	}
	return s
}

func listValue(values []string) string {
	var cleaned []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			cleaned = append(cleaned, v)
		}
	}
	if len(cleaned) == 0 {
		return placeholder
	}
	return strings.Join(cleaned, ", ")
}

func capList(values []string, max int) []string {
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, v)
		if len(out) >= max {
			break
		}
	}
	return out
}
