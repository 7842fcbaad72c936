package advisor

import (
	"strings"
	"testing"
	"time"

	"investor-livedata/internal/domain"
)

func TestBuildSystemPromptIncludesTime(t *testing.T) {
	asOf := time.Date(2025, 3, 3, 15, 0, 0, 0, time.UTC)
	prompt := BuildSystemPrompt(asOf)
	if !strings.Contains(prompt, "Risk Framework") {
		t.Fatal("expected risk framework in prompt")
	}
	if !strings.Contains(prompt, asOf.Format(time.RFC822)) {
		t.Fatalf("expected analysis time in prompt: %s", prompt)
	}
}

func TestFormatRecommendationContext(t *testing.T) {
	rec := domain.Recommendation{
		Symbol:        "XYZ",
		Verdict:       domain.VerdictBuy,
		Score:         3,
		Risk:          domain.RiskLevel3,
		Price:         103,
		ChangePercent: 3,
		Signals:       []string{"Strong positive momentum", "Above 20-day SMA"},
		Provenance:    domain.ProvenancePrimary,
	}
	snap := &domain.TechnicalSnapshot{Period: "3mo", SMA20: domain.Float(100)}

	out := FormatRecommendationContext(rec, snap)
	for _, want := range []string{"XYZ: BUY (score 3, risk 3)", "+3.00%", "Above 20-day SMA", "SMA20: 100.00", "RSI14: unavailable"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in context:\n%s", want, out)
		}
	}
}

func TestFormatRecommendationContextWithoutSnapshot(t *testing.T) {
	out := FormatRecommendationContext(domain.Recommendation{Symbol: "XYZ", Verdict: domain.VerdictHold}, nil)
	if strings.Contains(out, "Technicals") {
		t.Fatalf("unexpected technicals section: %s", out)
	}
}
