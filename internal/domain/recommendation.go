package domain

import "time"

type Verdict string

const (
	VerdictBuy   Verdict = "BUY"
	VerdictHold  Verdict = "HOLD"
	VerdictSell  Verdict = "SELL"
	VerdictAvoid Verdict = "AVOID"
)

// RiskLevel is the caller's risk appetite, 1 (conservative) to 5 (aggressive).
type RiskLevel int

const (
	RiskLevel1 RiskLevel = 1
	RiskLevel2 RiskLevel = 2
	RiskLevel3 RiskLevel = 3
	RiskLevel4 RiskLevel = 4
	RiskLevel5 RiskLevel = 5
)

func (r RiskLevel) IsValid() bool {
	return r >= RiskLevel1 && r <= RiskLevel5
}

type Recommendation struct {
	Symbol        string     `json:"symbol"`
	Verdict       Verdict    `json:"recommendation"`
	Score         int        `json:"score"`
	Signals       []string   `json:"signals"`
	Risk          RiskLevel  `json:"risk_level"`
	Price         float64    `json:"current_price"`
	ChangePercent float64    `json:"change_percent"`
	Provenance    Provenance `json:"provenance"`
	GeneratedAt   time.Time  `json:"analysis_date"`
	Explanation   string     `json:"explanation,omitempty"`
}
