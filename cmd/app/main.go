// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"gifts-buyer/internal/application"
	"gifts-buyer/internal/config"
	"gifts-buyer/internal/domain/ports/adapter"
	"gifts-buyer/internal/domain/ports/repository"
	tele "gifts-buyer/internal/infra/adapters/telegram"
	"gifts-buyer/internal/infra/configfile"
	httpapi "gifts-buyer/internal/infra/http"
	"gifts-buyer/internal/infra/i18n"
	"gifts-buyer/internal/infra/logging"
	"gifts-buyer/internal/infra/memory"
	"gifts-buyer/internal/infra/metrics"
	red "gifts-buyer/internal/infra/redis"
	"gifts-buyer/internal/infra/sched"
	"gifts-buyer/internal/infra/worker"
	"gifts-buyer/internal/usecase"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, unredacted values)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		bootLog := zerolog.New(os.Stderr).With().Timestamp().Logger()
		bootLog.Fatal().Err(err).Str("path", *cfgPath).Msg("config")
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	logger.Info().
		Str("version", version).
		Str("config", cfg.Runtime.Path).
		Str("token", logging.Redact(cfg.Bot.Token, cfg.Runtime.Dev)).
		Msg("starting gifts buyer")

	// ---- Metrics ----
	metrics.MustRegister()
	metrics.SetBuildInfo(version, cfg.Bot.Language)

	tr, err := i18n.NewTranslator(i18n.LocalesFS, cfg.Bot.Language)
	if err != nil {
		logger.Fatal().Err(err).Msg("translations")
	}

	// ---- Ranges ----
	initialRanges, err := usecase.ParseRanges(cfg.Gifts.Ranges)
	if err != nil {
		logger.Fatal().Err(err).Msg("gifts.ranges")
	}
	rangesWriter := configfile.NewRangesWriter(cfg.Runtime.Path, logger)
	rangeStore := usecase.NewRangeStore(initialRanges, rangesWriter, logger)
	metrics.SetRangesConfigured(len(initialRanges))

	// ---- Sessions ----
	var (
		sessions    repository.SessionRepository
		sweeper     sched.Sweeper
		limiter     application.CommandLimiter
		redisClient red.RedisClient
	)
	switch cfg.Session.Backend {
	case "redis":
		client, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer client.Close()
		redisClient = client
		sessions = red.NewSessionRepo(client, cfg.Session.TTL)
		limiter = red.NewRateLimiter(client)
	default:
		mem := memory.NewSessionRepo(cfg.Session.TTL)
		sessions = mem
		sweeper = mem
	}
	if limiter == nil && cfg.Bot.CommandRateLimit > 0 {
		logger.Warn().Msg("bot.command_rate_limit needs the redis session backend; limiter disabled")
	}

	// ---- Telegram ----
	bot, err := tele.NewRealBotAdapter(&cfg.Bot, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("telegram")
	}
	logger.Info().Str("bot", bot.Username()).Msg("authorized on telegram")

	var purchaser adapter.Purchaser = bot
	if cfg.Gifts.DryRun {
		logger.Warn().Msg("dry run: purchases are logged, not sent")
		purchaser = tele.NewNoopBotAdapter(logger)
	}

	// ---- Notifications ----
	pool := worker.NewPool(2, logger)
	pool.Start(ctx)
	defer pool.Stop()

	dispatcher := usecase.NewDispatcher(bot, tr, cfg.Channel.Destination, usecase.DispatcherOptions{
		SendTimeout:   cfg.Channel.SendTimeout,
		RatePerSecond: cfg.Channel.RatePerSecond,
		Pool:          pool,
	}, logger)
	if cfg.Channel.Destination.IsZero() {
		logger.Warn().Msg("channel.id not set: notifications disabled, every direct message is accepted")
	}

	// ---- Use cases ----
	gate := usecase.NewAuthorizationGate(cfg.Channel.Destination, cfg.Bot.Operators, rangeStore.List, logger)
	catalog := usecase.NewCatalogCache(bot, cfg.Gifts.Interval, logger)
	buyer := usecase.NewBuyer(rangeStore, purchaser, bot, dispatcher, usecase.BuyerOptions{
		OnlyUpgradable:      cfg.Gifts.PurchaseOnlyUpgradable,
		PrioritizeLowSupply: cfg.Gifts.PrioritizeLowSupply,
	}, logger)

	interpreter := application.NewInterpreter(gate, sessions, rangeStore, catalog, purchaser, bot, tr, limiter,
		application.InterpreterOptions{
			SendTimeout: cfg.Channel.SendTimeout,
			RateLimit:   cfg.Bot.CommandRateLimit,
			RateWindow:  time.Minute,
		}, logger)

	// ---- Start message ----
	balance, err := bot.StarBalance(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("reading star balance for start message")
	}
	dispatcher.Enqueue(usecase.StartMessage{Balance: balance, Ranges: rangeStore.List()})

	// ---- Background jobs ----
	catalogWorker := sched.NewCatalogWorker(cfg.Gifts.Interval, catalog, buyer, logger)
	go func() { _ = catalogWorker.Run(ctx) }()

	if sweeper != nil {
		sessionSweeper := sched.NewSessionSweeper(time.Minute, sweeper, logger)
		go func() { _ = sessionSweeper.Run(ctx) }()
	}

	// ---- Admin HTTP ----
	var server *httpapi.Server
	if cfg.Admin.Port > 0 {
		server = httpapi.NewServer(cfg.Admin.Port, func(ctx context.Context) error {
			if redisClient == nil {
				return nil
			}
			return redisClient.Ping(ctx)
		}, logger)
		go func() {
			if err := server.Start(); err != nil {
				logger.Error().Err(err).Msg("admin HTTP server stopped")
			}
		}()
	}

	// ---- Polling ----
	go func() {
		if err := bot.StartPolling(ctx, interpreter); err != nil && ctx.Err() == nil {
			logger.Error().Err(err).Msg("telegram polling stopped")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	bot.StopPolling()
	cancel()

	if server != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("admin HTTP shutdown")
		}
	}
}
