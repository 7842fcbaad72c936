package domain

// PopularStocks is the default universe scanned for trending movers.
var PopularStocks = []string{
	"AAPL", "GOOGL", "MSFT", "AMZN", "TSLA",
	"META", "NVDA", "NFLX", "AMD", "INTC",
	"CRM", "ADBE", "PYPL", "UBER", "SPOT",
}

// MajorIndices is the default market overview set.
var MajorIndices = []string{"^GSPC", "^DJI", "^IXIC", "^VIX"}

const (
	DefaultQuotePeriod     = "1d"
	DefaultTechnicalPeriod = "3mo"
)

// SupportedPeriods lists the history ranges the providers accept.
var SupportedPeriods = []string{"1d", "5d", "1mo", "3mo", "6mo", "1y", "2y", "5y", "ytd", "max"}

func IsSupportedPeriod(period string) bool {
	for _, p := range SupportedPeriods {
		if p == period {
			return true
		}
	}
	return false
}
