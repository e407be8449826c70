package narrative

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	fenceRe = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*(.*?)```")

	analysisKeys       = []string{"analysis", "summary", "analysis_text"}
	recommendationKeys = []string{"recommendation_summary", "recommendation", "recommendationSummary", "strategy"}

	analysisFieldRe       = fieldPattern(analysisKeys)
	recommendationFieldRe = fieldPattern(recommendationKeys)

	sentenceRe = regexp.MustCompile(`[^.!?。\n]+[.!?。]`)
)

func fieldPattern(keys []string) *regexp.Regexp {
	quoted := make([]string, len(keys))
	for i, k := range keys {
		quoted[i] = regexp.QuoteMeta(k)
	}
	return regexp.MustCompile(`(?s)"(?:` + strings.Join(quoted, "|") + `)"\s*:\s*"((?:[^"\\]|\\.)*)"`)
}

// Parse extracts analysis and recommendation from model output, trying in
// order: fence stripping, full JSON decode, per-field regex, and sentence
// scraping. It never panics.
func Parse(text string) Outcome {
	raw := strings.TrimSpace(text)
	if raw == "" {
		return Degraded{Reason: ReasonEmptyReply}
	}
	if m := fenceRe.FindStringSubmatch(raw); m != nil {
		raw = strings.TrimSpace(m[1])
	}

	if out, ok := parseJSON(raw); ok {
		return out
	}
	if out, ok := parseFields(raw); ok {
		return out
	}
	if out, ok := scrapeSentences(raw); ok {
		return out
	}
	return Degraded{Reason: ReasonUnparseable}
}

func parseJSON(raw string) (Success, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return Success{}, false
	}
	var fields map[string]any
	if err := json.Unmarshal([]byte(raw[start:end+1]), &fields); err != nil {
		return Success{}, false
	}
	analysis := firstString(fields, analysisKeys)
	rec := firstString(fields, recommendationKeys)
	if analysis == "" || rec == "" {
		return Success{}, false
	}
	return Success{Analysis: analysis, Recommendation: rec}, true
}

func firstString(fields map[string]any, keys []string) string {
	for _, k := range keys {
		if s, ok := fields[k].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func parseFields(raw string) (Success, bool) {
	a := analysisFieldRe.FindStringSubmatch(raw)
	r := recommendationFieldRe.FindStringSubmatch(raw)
	if a == nil || r == nil {
		return Success{}, false
	}
	analysis := unescape(a[1])
	rec := unescape(r[1])
	if analysis == "" || rec == "" {
		return Success{}, false
	}
	return Success{Analysis: analysis, Recommendation: rec}, true
}

func unescape(s string) string {
	var out string
	if err := json.Unmarshal([]byte(`"`+s+`"`), &out); err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(out)
}

// scrapeSentences treats the last sentence as the recommendation and the
// rest as analysis. It needs at least two sentences.
func scrapeSentences(raw string) (Success, bool) {
	if strings.HasPrefix(raw, "{") {
		return Success{}, false
	}
	found := sentenceRe.FindAllString(raw, -1)
	sentences := make([]string, 0, len(found))
	for _, s := range found {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}
	if len(sentences) < 2 {
		return Success{}, false
	}
	last := len(sentences) - 1
	return Success{
		Analysis:       strings.Join(sentences[:last], " "),
		Recommendation: sentences[last],
	}, true
}
