package bot

import (
	"context"
	"errors"
	"strings"
	"testing"

	"investor-livedata/internal/domain"

	tele "gopkg.in/telebot.v3"
)

type fakeContext struct {
	tele.Context
	args []string
	text string
	sent []string
}

func (c *fakeContext) Args() []string { return c.args }
func (c *fakeContext) Text() string   { return c.text }
func (c *fakeContext) Send(what interface{}, _ ...interface{}) error {
	c.sent = append(c.sent, what.(string))
	return nil
}

func (c *fakeContext) reply(t *testing.T) string {
	t.Helper()
	if len(c.sent) != 1 {
		t.Fatalf("expected one reply, got %d: %v", len(c.sent), c.sent)
	}
	return c.sent[0]
}

type stubMarket struct {
	quotes    map[string]*domain.Quote
	trending  []domain.Quote
	rec       *domain.Recommendation
	lastRisk  domain.RiskLevel
	lastLimit int
}

func (s *stubMarket) GetQuote(_ context.Context, symbol, _ string) (*domain.Quote, error) {
	if q, ok := s.quotes[domain.NormalizeSymbol(symbol)]; ok {
		return q, nil
	}
	return nil, domain.NewFetchError("quote", symbol, domain.ErrSymbolNotFound, nil)
}

func (s *stubMarket) GetTrending(_ context.Context, limit int) ([]domain.Quote, error) {
	s.lastLimit = limit
	return s.trending, nil
}

func (s *stubMarket) GetTechnical(_ context.Context, symbol, period string) (*domain.TechnicalSnapshot, error) {
	return &domain.TechnicalSnapshot{Symbol: symbol, Period: period}, nil
}

func (s *stubMarket) GetRecommendation(_ context.Context, symbol string, risk domain.RiskLevel) (*domain.Recommendation, error) {
	s.lastRisk = risk
	if s.rec == nil {
		return nil, domain.NewFetchError("recommendation", symbol, domain.ErrInsufficientData, nil)
	}
	return s.rec, nil
}

func (s *stubMarket) PopularSymbols() []string { return []string{"AAPL", "MSFT"} }

type stubExplainer struct {
	text string
	err  error
}

func (e stubExplainer) Explain(context.Context, domain.Recommendation, *domain.TechnicalSnapshot) (string, error) {
	return e.text, e.err
}

func TestStartTelegramBotSkipsWithoutToken(t *testing.T) {
	b, err := StartTelegramBot("", nil, nil)
	if err != nil || b != nil {
		t.Fatalf("expected disabled bot, got %v, %v", b, err)
	}
}

func TestStartTelegramBotReportsCreateError(t *testing.T) {
	orig := newBot
	t.Cleanup(func() { newBot = orig })
	newBot = func(tele.Settings) (*tele.Bot, error) { return nil, errors.New("unauthorized") }

	if _, err := StartTelegramBot("token", &stubMarket{}, nil); err == nil {
		t.Fatal("expected error")
	}
}

func fptr(v float64) *float64 { return &v }

func TestQuoteCommand(t *testing.T) {
	vol := int64(1200)
	svc := &stubMarket{quotes: map[string]*domain.Quote{
		"AAPL": {Symbol: "AAPL", Price: 101.5, ChangePercent: fptr(1.5), Volume: &vol, MarketState: domain.MarketRegular},
	}}
	h := &handlers{svc: svc}

	c := &fakeContext{args: []string{"aapl"}}
	if err := h.quote(c); err != nil {
		t.Fatalf("quote: %v", err)
	}
	got := c.reply(t)
	for _, want := range []string{"AAPL", "$101.50", "+1.50%", "Volume: 1200", "REGULAR"} {
		if !strings.Contains(got, want) {
			t.Fatalf("reply %q missing %q", got, want)
		}
	}

	c = &fakeContext{args: []string{"zzzz"}}
	_ = h.quote(c)
	if got := c.reply(t); got != "Unknown symbol: ZZZZ" {
		t.Fatalf("unexpected reply %q", got)
	}

	c = &fakeContext{}
	_ = h.quote(c)
	if !strings.HasPrefix(c.reply(t), "Usage") {
		t.Fatalf("expected usage, got %q", c.sent)
	}
}

func TestQuoteFallbackMarked(t *testing.T) {
	q := &domain.Quote{Symbol: "AAPL", Price: 100, MarketState: domain.MarketUnknown, Provenance: domain.ProvenanceFallback}
	got := FormatQuote(q)
	if !strings.Contains(got, "Change: n/a") || !strings.Contains(got, "fallback") {
		t.Fatalf("unexpected format %q", got)
	}
}

func TestTrendingCommand(t *testing.T) {
	vol := int64(5_000_000)
	svc := &stubMarket{trending: []domain.Quote{
		{Symbol: "NVDA", Price: 900, ChangePercent: fptr(-4), Volume: &vol},
	}}
	h := &handlers{svc: svc}

	c := &fakeContext{args: []string{"50"}}
	if err := h.trending(c); err != nil {
		t.Fatalf("trending: %v", err)
	}
	if svc.lastLimit != maxTrendingLimit {
		t.Fatalf("expected limit capped at %d, got %d", maxTrendingLimit, svc.lastLimit)
	}
	if got := c.reply(t); !strings.Contains(got, "1. NVDA $900.00 -4.00%") {
		t.Fatalf("unexpected reply %q", got)
	}

	c = &fakeContext{args: []string{"-1"}}
	_ = h.trending(c)
	if !strings.HasPrefix(c.reply(t), "Usage") {
		t.Fatalf("expected usage, got %q", c.sent)
	}
}

func TestRecCommand(t *testing.T) {
	svc := &stubMarket{rec: &domain.Recommendation{
		Symbol: "AAPL", Verdict: domain.VerdictBuy, Score: 3, Risk: domain.RiskLevel4,
		Price: 105, ChangePercent: 2.5, Signals: []string{"Strong positive momentum"},
	}}
	h := &handlers{svc: svc, narrator: stubExplainer{text: "Momentum is strong."}}

	c := &fakeContext{args: []string{"aapl", "4"}}
	if err := h.recommend(c); err != nil {
		t.Fatalf("rec: %v", err)
	}
	if svc.lastRisk != domain.RiskLevel4 {
		t.Fatalf("expected risk 4, got %d", svc.lastRisk)
	}
	got := c.reply(t)
	for _, want := range []string{"AAPL: BUY (score 3, risk 4)", "- Strong positive momentum", "Momentum is strong."} {
		if !strings.Contains(got, want) {
			t.Fatalf("reply %q missing %q", got, want)
		}
	}
}

func TestRecCommandDefaultsAndErrors(t *testing.T) {
	svc := &stubMarket{}
	h := &handlers{svc: svc}

	c := &fakeContext{args: []string{"AAPL"}}
	_ = h.recommend(c)
	if svc.lastRisk != domain.RiskLevel3 {
		t.Fatalf("expected default risk 3, got %d", svc.lastRisk)
	}
	if got := c.reply(t); got != "Not enough data for AAPL yet" {
		t.Fatalf("unexpected reply %q", got)
	}

	c = &fakeContext{args: []string{"AAPL", "9"}}
	_ = h.recommend(c)
	if got := c.reply(t); got != domain.ErrInvalidRiskLevel.Error() {
		t.Fatalf("unexpected reply %q", got)
	}
}

func TestRecCommandNarrationFailureKeepsVerdict(t *testing.T) {
	svc := &stubMarket{rec: &domain.Recommendation{Symbol: "AAPL", Verdict: domain.VerdictHold, Risk: 3}}
	h := &handlers{svc: svc, narrator: stubExplainer{err: errors.New("llm down")}}

	c := &fakeContext{args: []string{"AAPL"}}
	_ = h.recommend(c)
	if got := c.reply(t); !strings.HasPrefix(got, "AAPL: HOLD") || strings.Contains(got, "llm") {
		t.Fatalf("unexpected reply %q", got)
	}
}

func TestFreeTextMentions(t *testing.T) {
	svc := &stubMarket{quotes: map[string]*domain.Quote{
		"AAPL": {Symbol: "AAPL", Price: 100},
	}}
	h := &handlers{svc: svc}

	c := &fakeContext{text: "how are aapl and $QQQX doing?"}
	if err := h.text(c); err != nil {
		t.Fatalf("text: %v", err)
	}
	got := c.reply(t)
	if !strings.Contains(got, "AAPL\nPrice: $100.00") || !strings.Contains(got, "Unknown symbol: QQQX") {
		t.Fatalf("unexpected reply %q", got)
	}

	c = &fakeContext{text: "hello there"}
	_ = h.text(c)
	if !strings.HasPrefix(c.reply(t), "Mention a ticker") {
		t.Fatalf("unexpected reply %q", c.sent)
	}
}
