package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"investor-livedata/internal/advisor"
	"investor-livedata/internal/domain"

	"github.com/charmbracelet/log"
	tele "gopkg.in/telebot.v3"
)

// MarketData is the slice of the market service the bot talks to.
type MarketData interface {
	GetQuote(ctx context.Context, symbol, period string) (*domain.Quote, error)
	GetTrending(ctx context.Context, limit int) ([]domain.Quote, error)
	GetTechnical(ctx context.Context, symbol, period string) (*domain.TechnicalSnapshot, error)
	GetRecommendation(ctx context.Context, symbol string, risk domain.RiskLevel) (*domain.Recommendation, error)
	PopularSymbols() []string
}

// Explainer narrates a recommendation. Optional.
type Explainer interface {
	Explain(ctx context.Context, rec domain.Recommendation, snap *domain.TechnicalSnapshot) (string, error)
}

const (
	defaultTrendingLimit = 5
	maxTrendingLimit     = 20
	maxTextSymbols       = 3
	replyTimeout         = 30 * time.Second
)

var newBot = tele.NewBot

// StartTelegramBot registers the command handlers and starts long polling in
// the background. An empty token disables the bot.
func StartTelegramBot(token string, svc MarketData, narrator Explainer) (*tele.Bot, error) {
	if token == "" {
		log.Info("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return nil, nil
	}
	b, err := newBot(tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	h := &handlers{svc: svc, narrator: narrator}
	b.Handle("/ping", func(c tele.Context) error { return c.Send("pong") })
	b.Handle("/quote", h.quote)
	b.Handle("/trending", h.trending)
	b.Handle("/rec", h.recommend)
	b.Handle(tele.OnText, h.text)

	log.Info("Telegram bot started")
	go b.Start()
	return b, nil
}

type handlers struct {
	svc      MarketData
	narrator Explainer
}

func (h *handlers) quote(c tele.Context) error {
	args := c.Args()
	if len(args) == 0 {
		return c.Send("Usage: /quote AAPL")
	}
	ctx, cancel := context.WithTimeout(context.Background(), replyTimeout)
	defer cancel()

	q, err := h.svc.GetQuote(ctx, args[0], domain.DefaultQuotePeriod)
	if err != nil {
		return c.Send(describeError(domain.NormalizeSymbol(args[0]), err))
	}
	return c.Send(FormatQuote(q))
}

func (h *handlers) trending(c tele.Context) error {
	limit := defaultTrendingLimit
	if args := c.Args(); len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return c.Send("Usage: /trending [count]")
		}
		limit = min(n, maxTrendingLimit)
	}
	ctx, cancel := context.WithTimeout(context.Background(), replyTimeout)
	defer cancel()

	movers, err := h.svc.GetTrending(ctx, limit)
	if err != nil {
		return c.Send(fmt.Sprintf("Trending unavailable: %v", err))
	}
	if len(movers) == 0 {
		return c.Send("No high-volume movers right now.")
	}
	var sb strings.Builder
	sb.WriteString("Trending\n")
	for i, q := range movers {
		fmt.Fprintf(&sb, "%d. %s $%.2f %s\n", i+1, q.Symbol, q.Price, formatPct(q.ChangePercent))
	}
	return c.Send(strings.TrimRight(sb.String(), "\n"))
}

func (h *handlers) recommend(c tele.Context) error {
	args := c.Args()
	if len(args) == 0 {
		return c.Send("Usage: /rec AAPL [risk 1-5]")
	}
	risk := domain.RiskLevel3
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil || !domain.RiskLevel(n).IsValid() {
			return c.Send(domain.ErrInvalidRiskLevel.Error())
		}
		risk = domain.RiskLevel(n)
	}
	ctx, cancel := context.WithTimeout(context.Background(), replyTimeout)
	defer cancel()

	symbol := domain.NormalizeSymbol(args[0])
	rec, err := h.svc.GetRecommendation(ctx, symbol, risk)
	if err != nil {
		return c.Send(describeError(symbol, err))
	}
	msg := FormatRecommendation(rec)
	if h.narrator != nil {
		snap, _ := h.svc.GetTechnical(ctx, symbol, domain.DefaultTechnicalPeriod)
		if text, err := h.narrator.Explain(ctx, *rec, snap); err != nil {
			log.Warn("recommendation narration failed", "symbol", symbol, "err", err)
		} else if text != "" {
			msg += "\n\n" + text
		}
	}
	return c.Send(msg)
}

// text answers free-form messages that mention known tickers or $cashtags.
func (h *handlers) text(c tele.Context) error {
	symbols := advisor.ExtractSymbols(c.Text(), h.svc.PopularSymbols())
	if len(symbols) == 0 {
		return c.Send("Mention a ticker like $AAPL, or try /quote, /trending, /rec.")
	}
	if len(symbols) > maxTextSymbols {
		symbols = symbols[:maxTextSymbols]
	}
	ctx, cancel := context.WithTimeout(context.Background(), replyTimeout)
	defer cancel()

	parts := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		q, err := h.svc.GetQuote(ctx, sym, domain.DefaultQuotePeriod)
		if err != nil {
			parts = append(parts, describeError(sym, err))
			continue
		}
		parts = append(parts, FormatQuote(q))
	}
	return c.Send(strings.Join(parts, "\n\n"))
}

func FormatQuote(q *domain.Quote) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\nPrice: $%.2f\nChange: %s", q.Symbol, q.Price, formatPct(q.ChangePercent))
	if q.Volume != nil {
		fmt.Fprintf(&sb, "\nVolume: %d", *q.Volume)
	}
	fmt.Fprintf(&sb, "\nMarket: %s", q.MarketState)
	if q.IsFallback() {
		sb.WriteString("\n(price-only fallback)")
	}
	return sb.String()
}

func FormatRecommendation(rec *domain.Recommendation) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s (score %d, risk %d)\nPrice: $%.2f (%+.2f%%)",
		rec.Symbol, rec.Verdict, rec.Score, rec.Risk, rec.Price, rec.ChangePercent)
	for _, s := range rec.Signals {
		sb.WriteString("\n- ")
		sb.WriteString(s)
	}
	return sb.String()
}

func formatPct(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%+.2f%%", *v)
}

func describeError(symbol string, err error) string {
	switch {
	case errors.Is(err, domain.ErrSymbolNotFound):
		return fmt.Sprintf("Unknown symbol: %s", symbol)
	case errors.Is(err, domain.ErrInsufficientData):
		return fmt.Sprintf("Not enough data for %s yet", symbol)
	case errors.Is(err, domain.ErrInvalidInput):
		return fmt.Sprintf("Invalid symbol: %q", symbol)
	default:
		return fmt.Sprintf("Error fetching %s: %v", symbol, err)
	}
}
