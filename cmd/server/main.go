package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"investor-livedata/internal/app"
	"investor-livedata/internal/bot"
	"investor-livedata/internal/config"
	"investor-livedata/internal/handler"
	"investor-livedata/internal/job"
	"investor-livedata/pkg/tracing"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	tele "gopkg.in/telebot.v3"

	_ "investor-livedata/docs"
)

var (
	loadEnvFunc            = godotenv.Load
	loadConfigFunc         = config.Load
	initTracerFunc         = tracing.InitTracer
	buildAppFunc           = app.Build
	startWarmerFunc        = func(w *job.Warmer, ctx context.Context) { go w.Start(ctx) }
	startTelegramBotFunc   = bot.StartTelegramBot
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           Investor Live Data API
// @version         1.0
// @description     Cached, throttled live quotes, technical indicators and recommendations.

// @host      localhost:8080
// @BasePath  /
func main() {
	if err := loadEnvFunc(); err != nil {
		log.Debug("no .env file loaded", "err", err)
	}

	cfg := loadConfigFunc()
	cfg.ApplyLogLevel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, tracer, err := initTracerFunc(ctx, tracing.ServiceName)
	if err != nil {
		log.Fatal("failed to initialize tracer", "err", err)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Error("error shutting down tracer provider", "err", err)
		}
	}()

	a, err := buildAppFunc(ctx, cfg, tracer)
	if err != nil {
		log.Fatal("failed to build market data stack", "err", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Error("error releasing resources", "err", err)
		}
	}()

	if cfg.WarmerEnabled {
		startWarmerFunc(job.NewWarmer(tracer, a.Service, cfg.WarmerInterval, a.WarmSymbols()), ctx)
	}

	b, err := startTelegramBotFunc(cfg.TelegramBotToken, a.Service, a.Narrator)
	if err != nil {
		log.Error("telegram bot disabled", "err", err)
	}

	r := newRouterFunc()
	r.Use(otelgin.Middleware(tracing.ServiceName))

	handler.New(tracer, a.Service, a.Narrator).RegisterRoutes(r, cfg.APIKey)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{})))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    ":" + strconv.Itoa(cfg.HTTPPort),
		Handler: r,
	}

	go func() {
		log.Info("HTTP server listening", "addr", srv.Addr)
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatal("listen", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Info("Shutting down server...")

	cancel()
	stopBot(b)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), app.ShutdownTimeout)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "err", err)
	}

	log.Info("Server exiting")
}

func stopBot(b *tele.Bot) {
	if b != nil {
		b.Stop()
	}
}
