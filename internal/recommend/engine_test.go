package recommend

import (
	"errors"
	"testing"
	"time"

	"investor-livedata/internal/domain"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateStrongMomentumAboveSMA(t *testing.T) {
	now := time.Date(2025, 3, 3, 15, 0, 0, 0, time.UTC)
	engine := NewEngine(clockwork.NewFakeClockAt(now))

	q := &domain.Quote{Symbol: "XYZ", Price: 103, ChangePercent: domain.Float(3), Provenance: domain.ProvenancePrimary}
	snap := &domain.TechnicalSnapshot{Symbol: "XYZ", SMA20: domain.Float(100)}

	rec, err := engine.Evaluate(q, snap, domain.RiskLevel3)
	require.NoError(t, err)
	assert.Equal(t, 3, rec.Score)
	assert.Equal(t, domain.VerdictBuy, rec.Verdict)
	assert.Equal(t, []string{SignalStrongPositive, SignalAboveSMA20}, rec.Signals)
	assert.Equal(t, now, rec.GeneratedAt)
	assert.Equal(t, 3.0, rec.ChangePercent)
	assert.Equal(t, domain.ProvenancePrimary, rec.Provenance)
}

func TestScore(t *testing.T) {
	tests := []struct {
		name    string
		change  float64
		price   float64
		sma     *float64
		score   int
		signals []string
	}{
		{"positive below sma", 1.5, 95, domain.Float(100), 0, []string{SignalPositive, SignalBelowSMA20}},
		{"exactly two is positive", 2, 100, nil, 1, []string{SignalPositive}},
		{"zero is neutral", 0, 100, nil, 0, []string{SignalNeutral}},
		{"minus two is neutral", -2, 100, domain.Float(100), 0, []string{SignalNeutral}},
		{"strong negative below sma", -2.5, 90, domain.Float(100), -3, []string{SignalNegative, SignalBelowSMA20}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			score, signals := Score(tc.price, tc.change, tc.sma)
			assert.Equal(t, tc.score, score)
			assert.Equal(t, tc.signals, signals)
		})
	}
}

func TestVerdictTiers(t *testing.T) {
	tests := []struct {
		risk  domain.RiskLevel
		score int
		want  domain.Verdict
	}{
		{domain.RiskLevel1, 3, domain.VerdictBuy},
		{domain.RiskLevel1, 2, domain.VerdictHold},
		{domain.RiskLevel2, 1, domain.VerdictHold},
		{domain.RiskLevel2, 0, domain.VerdictAvoid},
		{domain.RiskLevel3, 2, domain.VerdictBuy},
		{domain.RiskLevel3, 0, domain.VerdictHold},
		{domain.RiskLevel3, -1, domain.VerdictSell},
		{domain.RiskLevel4, 1, domain.VerdictBuy},
		{domain.RiskLevel4, -1, domain.VerdictHold},
		{domain.RiskLevel5, -2, domain.VerdictSell},
	}
	for _, tc := range tests {
		if got := Verdict(tc.score, tc.risk); got != tc.want {
			t.Fatalf("risk %d score %d: expected %s, got %s", tc.risk, tc.score, tc.want, got)
		}
	}
}

func TestEvaluateRejectsInvalidRisk(t *testing.T) {
	engine := NewEngine(clockwork.NewFakeClock())
	q := &domain.Quote{Symbol: "XYZ", Price: 1, ChangePercent: domain.Float(1)}

	for _, risk := range []domain.RiskLevel{0, 6} {
		_, err := engine.Evaluate(q, &domain.TechnicalSnapshot{}, risk)
		require.ErrorIs(t, err, domain.ErrInvalidRiskLevel)
	}
}

func TestEvaluateInsufficientData(t *testing.T) {
	engine := NewEngine(clockwork.NewFakeClock())

	_, err := engine.Evaluate(nil, &domain.TechnicalSnapshot{Symbol: "XYZ"}, domain.RiskLevel3)
	require.ErrorIs(t, err, domain.ErrInsufficientData)

	_, err = engine.Evaluate(&domain.Quote{Symbol: "XYZ"}, nil, domain.RiskLevel3)
	require.ErrorIs(t, err, domain.ErrInsufficientData)

	_, err = engine.Evaluate(&domain.Quote{Symbol: "XYZ", Price: 5}, &domain.TechnicalSnapshot{}, domain.RiskLevel3)
	var fe *domain.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "XYZ", fe.Symbol)
	assert.ErrorIs(t, err, domain.ErrInsufficientData)
}
