package recommend

import (
	"investor-livedata/internal/domain"

	"github.com/jonboulle/clockwork"
)

const (
	SignalStrongPositive = "Strong positive momentum"
	SignalPositive       = "Positive momentum"
	SignalNegative       = "Negative momentum"
	SignalNeutral        = "Neutral momentum"
	SignalAboveSMA20     = "Above 20-day SMA"
	SignalBelowSMA20     = "Below 20-day SMA"
)

// Engine turns a quote and its technical snapshot into a verdict.
type Engine struct {
	clock clockwork.Clock
}

func NewEngine(clock clockwork.Clock) *Engine {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Engine{clock: clock}
}

// Evaluate scores momentum and trend and maps the score to a verdict for the
// given risk tier.
func (e *Engine) Evaluate(q *domain.Quote, snap *domain.TechnicalSnapshot, risk domain.RiskLevel) (domain.Recommendation, error) {
	if !risk.IsValid() {
		return domain.Recommendation{}, domain.ErrInvalidRiskLevel
	}
	if q == nil || snap == nil {
		return domain.Recommendation{}, domain.NewFetchError("recommendation", symbolOf(q, snap), domain.ErrInsufficientData, nil)
	}
	if q.ChangePercent == nil {
		return domain.Recommendation{}, domain.NewFetchError("recommendation", q.Symbol, domain.ErrInsufficientData, nil)
	}

	score, signals := Score(q.Price, *q.ChangePercent, snap.SMA20)
	return domain.Recommendation{
		Symbol:        q.Symbol,
		Verdict:       Verdict(score, risk),
		Score:         score,
		Signals:       signals,
		Risk:          risk,
		Price:         q.Price,
		ChangePercent: *q.ChangePercent,
		Provenance:    q.Provenance,
		GeneratedAt:   e.clock.Now().UTC(),
	}, nil
}

// Score adds the momentum and 20-day trend contributions.
func Score(price, changePct float64, sma20 *float64) (int, []string) {
	score := 0
	signals := make([]string, 0, 2)

	switch {
	case changePct > 2:
		score += 2
		signals = append(signals, SignalStrongPositive)
	case changePct > 0:
		score++
		signals = append(signals, SignalPositive)
	case changePct < -2:
		score -= 2
		signals = append(signals, SignalNegative)
	default:
		signals = append(signals, SignalNeutral)
	}

	if sma20 != nil {
		switch {
		case price > *sma20:
			score++
			signals = append(signals, SignalAboveSMA20)
		case price < *sma20:
			score--
			signals = append(signals, SignalBelowSMA20)
		}
	}
	return score, signals
}

// Verdict maps a score to a recommendation. Conservative tiers need more
// evidence to buy and avoid rather than sell.
func Verdict(score int, risk domain.RiskLevel) domain.Verdict {
	switch {
	case risk <= domain.RiskLevel2:
		switch {
		case score >= 3:
			return domain.VerdictBuy
		case score >= 1:
			return domain.VerdictHold
		default:
			return domain.VerdictAvoid
		}
	case risk == domain.RiskLevel3:
		switch {
		case score >= 2:
			return domain.VerdictBuy
		case score >= 0:
			return domain.VerdictHold
		default:
			return domain.VerdictSell
		}
	default:
		switch {
		case score >= 1:
			return domain.VerdictBuy
		case score >= -1:
			return domain.VerdictHold
		default:
			return domain.VerdictSell
		}
	}
}

func symbolOf(q *domain.Quote, snap *domain.TechnicalSnapshot) string {
	if q != nil {
		return q.Symbol
	}
	if snap != nil {
		return snap.Symbol
	}
	return ""
}
