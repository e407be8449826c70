package narrative

import (
	"fmt"
	"strings"

	"macro-signal/internal/series"
)

// Family selects the persona and wording of the prompt.
type Family string

const (
	FamilyEconomic   Family = "economic"
	FamilyRealEstate Family = "real_estate"
)

// Figure is one representative scalar shown to the model.
type Figure struct {
	Label string
	Value float64
}

// Facts is everything the prompt embeds. The same Facts always produce
// the same prompt text.
type Facts struct {
	Family      Family
	Years       int
	Regime      string
	Description string
	Figures     []Figure
}

// BuildPrompt renders the request text sent to the narrative service.
func BuildPrompt(f Facts) string {
	var b strings.Builder

	switch f.Family {
	case FamilyRealEstate:
		b.WriteString("너는 한국 부동산 시장을 분석하는 거시경제 전문가다.\n")
		b.WriteString("아래 데이터를 기반으로, 한국 부동산의 현재 상태를 8~12문장으로 자세히 설명하고\n")
	default:
		b.WriteString("너는 한국 거시경제와 자산배분을 분석하는 전문가다.\n")
		b.WriteString("아래 데이터를 기반으로, 한국 경기 국면을 8~12문장으로 자세히 설명하고\n")
	}
	b.WriteString("개인 투자자가 참고할 전략을 2~3문장으로 요약하라.\n")
	b.WriteString("출력은 반드시 JSON 형식으로 하고, 코드블록을 사용하지 마라.\n\n")

	b.WriteString("형식:\n{\n")
	fmt.Fprintf(&b, "  \"analysis\": \"현재 등급: %s이며, ... (8~12문장)\",\n", f.Regime)
	b.WriteString("  \"recommendation_summary\": \"2~3문장, '매수', '관망', '매도' 중 하나 포함\"\n}\n\n")

	fmt.Fprintf(&b, "데이터 요약 (%d년):\n", f.Years)
	fmt.Fprintf(&b, "- 등급: %s (%s)\n", f.Regime, f.Description)
	for _, fig := range f.Figures {
		fmt.Fprintf(&b, "- %s: %s%%\n", fig.Label, series.Format2(fig.Value))
	}

	b.WriteString("\n작성 규칙:\n")
	fmt.Fprintf(&b, "- 'analysis'는 반드시 \"현재 등급: %s이며, ...\"로 시작.\n", f.Regime)
	b.WriteString("- 지표 간 상호작용을 구체적으로 서술.\n")
	b.WriteString("- 전략에는 '매수', '관망', 또는 '매도' 중 하나를 포함.\n")
	b.WriteString("- 전체 문장은 반드시 존댓말(합니다체)로 작성.")
	return b.String()
}
