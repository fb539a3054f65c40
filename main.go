package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"lemon16/bot"
	"lemon16/config"
	"lemon16/database"
	"lemon16/handlers"
	"lemon16/logger"
	"lemon16/matchmaking"
	"lemon16/middleware"
	"lemon16/routes"
	"lemon16/stats"
	"lemon16/store"
	"lemon16/sweeper"
	"lemon16/websocket"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	logger.Init(cfg.Debug)

	// Mongo can be slow to come up when both start under the same compose
	// file, so retry a few times before giving up.
	for attempt := 1; ; attempt++ {
		err = database.Connect(cfg.MongoURI, cfg.MongoDB)
		if err == nil {
			break
		}
		if attempt == 3 {
			log.Fatal().Err(err).Msg("could not connect to MongoDB")
		}
		log.Warn().Err(err).Int("attempt", attempt).Msg("MongoDB connection failed, retrying")
		time.Sleep(5 * time.Second)
	}
	defer database.Disconnect()

	idxCtx, cancelIdx := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureIndexes(idxCtx, cfg.LogRetention, cfg.SessionTTL); err != nil {
		cancelIdx()
		log.Fatal().Err(err).Msg("could not create indexes")
	}
	cancelIdx()

	users := store.NewMongoUsers(database.Users)
	logs := store.NewMongoLogs(database.Logs)
	sessions := store.NewMongoSessions(database.Sessions)

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Fatal().Err(err).Msg("could not create Telegram bot")
	}
	api.Debug = cfg.Debug

	notifier := bot.NewNotifier(api)
	matcher := matchmaking.New(users, notifier, cfg.PremiumURL)
	tgBot := bot.New(api, users, sessions, matcher, cfg.PremiumURL)

	aggregator := stats.New(users)
	manager := websocket.NewManager()
	manager.OnRequestUpdate(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		snap, err := aggregator.ComputeSnapshot(ctx)
		if err != nil {
			log.Error().Err(err).Msg("snapshot refresh failed")
			return
		}
		manager.BroadcastUpdate(snap)
	})
	go manager.Start()

	handlers.Init(handlers.Deps{
		Users:             users,
		Logs:              logs,
		Notifier:          notifier,
		Aggregator:        aggregator,
		WSManager:         manager,
		JWTSecret:         cfg.JWTSecret,
		AdminPasswordHash: cfg.AdminPasswordHash,
	})

	authEnabled := cfg.AdminPasswordHash != ""
	router := routes.Setup(cfg.JWTSecret, authEnabled)

	var authorize func(token string) error
	if authEnabled {
		authorize = func(token string) error {
			return middleware.ParseAdminToken(token, cfg.JWTSecret)
		}
	}
	router.GET("/ws", gin.WrapH(websocket.Handler(manager, authorize)))

	runner := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
	)
	sw := sweeper.New(users, notifier, cfg.PremiumURL)
	if err := sw.Schedule(runner); err != nil {
		log.Fatal().Err(err).Msg("could not schedule sweeps")
	}
	runner.Start()
	defer runner.Stop()

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("dashboard server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	botCtx, cancelBot := context.WithCancel(context.Background())
	go tgBot.Run(botCtx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	cancelBot()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
}
