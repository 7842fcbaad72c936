// Command mcp serves the market data consumer interface as MCP tools over
// stdio. Logs go to stderr so they never interleave with protocol frames.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"investor-livedata/internal/app"
	"investor-livedata/internal/config"
	"investor-livedata/pkg/tracing"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const version = "1.0.0"

var (
	loadEnvFunc    = godotenv.Load
	loadConfigFunc = config.Load
	initTracerFunc = tracing.InitTracer
	buildAppFunc   = app.Build
	runServerFunc  = func(ctx context.Context, s *mcp.Server) error { return s.Run(ctx, &mcp.StdioTransport{}) }
)

func main() {
	log.SetOutput(os.Stderr)
	_ = loadEnvFunc()

	cfg := loadConfigFunc()
	cfg.ApplyLogLevel()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, tracer, err := initTracerFunc(ctx, "livedata-mcp")
	if err != nil {
		log.Fatal("failed to initialize tracer", "err", err)
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	a, err := buildAppFunc(ctx, cfg, tracer)
	if err != nil {
		log.Fatal("failed to build market data stack", "err", err)
	}
	defer a.Close()

	if err := runServerFunc(ctx, newServer(a.Service, version)); err != nil && ctx.Err() == nil {
		log.Error("mcp server stopped", "err", err)
	}
}
