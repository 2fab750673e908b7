package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/omriShneor/alfred_line/internal/auth"
	"github.com/omriShneor/alfred_line/internal/calstore"
	"github.com/omriShneor/alfred_line/internal/config"
	"github.com/omriShneor/alfred_line/internal/database"
	"github.com/omriShneor/alfred_line/internal/dispatch"
	"github.com/omriShneor/alfred_line/internal/history"
	"github.com/omriShneor/alfred_line/internal/line"
	"github.com/omriShneor/alfred_line/internal/llm"
	"github.com/omriShneor/alfred_line/internal/logger"
	"github.com/omriShneor/alfred_line/internal/metrics"
	"github.com/omriShneor/alfred_line/internal/processor"
	"github.com/omriShneor/alfred_line/internal/retention"
	"github.com/omriShneor/alfred_line/internal/server"
	"github.com/omriShneor/alfred_line/internal/source"
)

const messageQueueSize = 100

func main() {
	cfg := config.LoadFromEnv()

	log, err := logger.New(cfg.LogLevel, cfg.DevMode)
	if err != nil {
		fatal("creating logger", err)
	}
	defer log.Sync()
	zap.ReplaceGlobals(log)

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	// Phase 1: Core infrastructure
	db, err := database.New(cfg.DBPath, log)
	if err != nil {
		log.Fatal("failed to open database", zap.String("path", cfg.DBPath), zap.Error(err))
	}
	defer db.Close()

	m := metrics.New()
	calendars, purger := initCalendarStore(cfg, db, log)

	// Phase 2: External clients
	completer, err := llm.New(llm.Config{
		Provider:    cfg.LLMProvider,
		APIKey:      cfg.LLMAPIKey,
		Model:       cfg.LLMModel,
		BaseURL:     cfg.LLMBaseURL,
		Temperature: cfg.LLMTemperature,
		MaxTokens:   cfg.LLMMaxTokens,
	})
	if err != nil {
		log.Fatal("failed to create LLM client", zap.Error(err))
	}
	log.Info("LLM client configured", zap.String("provider", cfg.LLMProvider), zap.String("model", cfg.LLMModel))

	lineClient, err := line.NewClient(cfg.LineChannelToken, cfg.LineAPIEndpoint)
	if err != nil {
		log.Fatal("failed to create LINE client", zap.Error(err))
	}

	allowList := auth.NewAllowList(cfg.AllowedIDs)
	if allowList.Open() {
		log.Warn("ALFRED_ALLOWED_IDS is empty, the bot will answer everyone")
	} else {
		log.Info("allow-list configured", zap.Int("ids", allowList.Size()))
	}

	// Phase 3: Message pipeline
	msgChan := make(chan source.Message, messageQueueSize)

	proc := processor.New(processor.Deps{
		Completer:  completer,
		History:    history.NewStore(db, log),
		Calendars:  calendars,
		Dispatcher: dispatch.NewDispatcher(lineClient, cfg.MaxMessageChars, log),
		AllowList:  allowList,
		Metrics:    m,
		Logger:     log,
	}, msgChan, processor.Config{
		HistorySize:   cfg.HistorySize,
		WorkerCount:   cfg.WorkerCount,
		PublicBaseURL: cfg.PublicBaseURL,
	})
	if err := proc.Start(); err != nil {
		log.Fatal("failed to start message processor", zap.Error(err))
	}

	sweeper := retention.New(purger, db, retention.Config{
		Schedule:         cfg.SweepSchedule,
		HistoryRetention: cfg.HistoryRetention,
	}, log, m)
	if err := sweeper.Start(); err != nil {
		log.Fatal("failed to start retention sweeper", zap.Error(err))
	}

	srv := server.New(server.ServerConfig{
		DB:            db,
		Calendars:     calendars,
		Metrics:       m,
		Logger:        log,
		MessageChan:   msgChan,
		ChannelSecret: cfg.LineChannelSecret,
		PublicBaseURL: cfg.PublicBaseURL,
		Port:          cfg.HTTPPort,
	})
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", zap.Error(err))
		}
	}()

	waitForShutdown(log, proc, sweeper, srv)
}

// initCalendarStore picks Redis when configured, SQLite otherwise. Only the
// SQLite store needs the sweeper to purge expired files; Redis expires keys
// on its own.
func initCalendarStore(cfg *config.Config, db *database.DB, log *zap.Logger) (calstore.Store, retention.FilePurger) {
	if cfg.RedisAddr == "" {
		log.Info("calendar files stored in SQLite", zap.Duration("ttl", cfg.CalendarFileTTL))
		store := calstore.NewSQLStore(db, cfg.CalendarFileTTL)
		return store, store
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("redis not reachable at startup, calendar links will fail until it is", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}

	log.Info("calendar files stored in Redis", zap.String("addr", cfg.RedisAddr), zap.Duration("ttl", cfg.CalendarFileTTL))
	return calstore.NewRedisStore(client, cfg.CalendarFileTTL), nil
}

func fatal(context string, err error) {
	fmt.Fprintf(os.Stderr, "Error %s: %v\n", context, err)
	os.Exit(1)
}

func waitForShutdown(log *zap.Logger, proc *processor.Processor, sweeper *retention.Sweeper, srv *server.Server) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("HTTP server shutdown", zap.Error(err))
	}
	sweeper.Stop()
	proc.Stop()
}
