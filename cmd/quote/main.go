// Command quote prints live quotes as a terminal table.
//
//	quote -symbols AAPL,MSFT
//	quote -trending 5
//	quote -overview
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"investor-livedata/internal/app"
	"investor-livedata/internal/config"
	"investor-livedata/internal/domain"
	"investor-livedata/internal/service"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel/trace"
)

var (
	loadEnvFunc    = godotenv.Load
	loadConfigFunc = config.Load
	buildAppFunc   = app.Build
)

type quoteService interface {
	GetMany(ctx context.Context, symbols []string) map[string]service.QuoteResult
	GetMarketOverview(ctx context.Context) map[string]service.QuoteResult
	GetTrending(ctx context.Context, limit int) ([]domain.Quote, error)
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("quote", flag.ContinueOnError)
	fs.SetOutput(out)
	symbols := fs.String("symbols", "", "comma-separated tickers")
	trending := fs.Int("trending", 0, "show the top N high-volume movers")
	overview := fs.Bool("overview", false, "show the major indices")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *symbols == "" && *trending <= 0 && !*overview {
		fs.Usage()
		return 2
	}

	_ = loadEnvFunc()
	cfg := loadConfigFunc()
	cfg.ApplyLogLevel()
	// One-shot runs don't export spans.
	tracer := trace.NewNoopTracerProvider().Tracer("quote")

	ctx := context.Background()
	a, err := buildAppFunc(ctx, cfg, tracer)
	if err != nil {
		log.Error("failed to build market data stack", "err", err)
		return 1
	}
	defer a.Close()

	return render(ctx, a.Service, out, strings.Split(*symbols, ","), *trending, *overview)
}

func render(ctx context.Context, svc quoteService, out io.Writer, symbols []string, trending int, overview bool) int {
	code := 0
	if overview {
		fmt.Fprintln(out, titleStyle.Render("Market overview"))
		fmt.Fprintln(out, resultsTable(svc.GetMarketOverview(ctx)))
	}
	var wanted []string
	for _, s := range symbols {
		if s = domain.NormalizeSymbol(s); s != "" {
			wanted = append(wanted, s)
		}
	}
	if len(wanted) > 0 {
		results := svc.GetMany(ctx, wanted)
		fmt.Fprintln(out, titleStyle.Render("Quotes"))
		fmt.Fprintln(out, resultsTable(results))
		for _, r := range results {
			if r.Err != nil {
				code = 1
			}
		}
	}
	if trending > 0 {
		movers, err := svc.GetTrending(ctx, trending)
		if err != nil {
			fmt.Fprintln(out, errStyle.Render("trending: "+err.Error()))
			return 1
		}
		fmt.Fprintln(out, titleStyle.Render("Trending"))
		fmt.Fprintln(out, quotesTable(movers))
	}
	return code
}
