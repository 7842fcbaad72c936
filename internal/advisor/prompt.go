package advisor

import (
	"fmt"
	"strings"
	"time"

	"investor-livedata/internal/domain"
)

const analystBrief = `You explain stock recommendations that were already computed by a rules engine. Do NOT change the verdict or invent a new one.

Risk Framework:
- Risk 1-2: Conservative. A BUY needs strong momentum and price above the 20-day average; weak setups are AVOID.
- Risk 3: Moderate. Momentum or trend alignment is enough for a BUY.
- Risk 4-5: Aggressive. Any positive evidence can be a BUY; only clear weakness is a SELL.

Rules:
- Reference the specific signals and figures you are given.
- Never fabricate data. If a figure is missing, say it is unavailable.
- Mention when the quote came from the fallback source and lacks volume or day range.
- Keep it to three or four sentences.`

func BuildSystemPrompt(asOf time.Time) string {
	var sb strings.Builder
	sb.WriteString(analystBrief)
	sb.WriteString("\n\n--- ANALYSIS TIME ")
	sb.WriteString(asOf.UTC().Format(time.RFC822))
	sb.WriteString(" ---\n")
	return sb.String()
}

// FormatRecommendationContext renders the verdict and its inputs as the user
// message for the model.
func FormatRecommendationContext(rec domain.Recommendation, snap *domain.TechnicalSnapshot) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s: %s (score %d, risk %d)\n", rec.Symbol, rec.Verdict, rec.Score, rec.Risk))
	sb.WriteString(fmt.Sprintf("  price $%.2f, change %+.2f%%, source %s\n", rec.Price, rec.ChangePercent, rec.Provenance))
	if len(rec.Signals) > 0 {
		sb.WriteString("  signals: " + strings.Join(rec.Signals, "; ") + "\n")
	}

	if snap != nil {
		sb.WriteString("\nTechnicals (" + snap.Period + "):\n")
		writeIndicator(&sb, "SMA20", snap.SMA20)
		writeIndicator(&sb, "SMA50", snap.SMA50)
		writeIndicator(&sb, "RSI14", snap.RSI14)
		writeIndicator(&sb, "MACD", snap.MACD)
		writeIndicator(&sb, "MACD signal", snap.MACDSignal)
		writeIndicator(&sb, "20d volatility", snap.Volatility20)
		writeIndicator(&sb, "5d change %", snap.Change5D)
		writeIndicator(&sb, "20d change %", snap.Change20D)
	}
	return sb.String()
}

func writeIndicator(sb *strings.Builder, name string, v *float64) {
	if v == nil {
		sb.WriteString(fmt.Sprintf("  %s: unavailable\n", name))
		return
	}
	sb.WriteString(fmt.Sprintf("  %s: %.2f\n", name, *v))
}
