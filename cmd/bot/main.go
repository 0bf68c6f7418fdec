package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	swaggerdocs "github.com/open-builders/giveaway-bot/docs/swagger"
	"github.com/open-builders/giveaway-bot/internal/common/config"
	"github.com/open-builders/giveaway-bot/internal/common/logger"
	"github.com/open-builders/giveaway-bot/internal/common/middleware"
	"github.com/open-builders/giveaway-bot/internal/features/giveaway/delivery/bot"
	giveawayhttp "github.com/open-builders/giveaway-bot/internal/features/giveaway/delivery/http"
	giveawayPostgres "github.com/open-builders/giveaway-bot/internal/features/giveaway/repository/postgres"
	giveawayRedis "github.com/open-builders/giveaway-bot/internal/features/giveaway/repository/redis"
	giveawayService "github.com/open-builders/giveaway-bot/internal/features/giveaway/service"
	"github.com/open-builders/giveaway-bot/internal/platform/postgres"
	"github.com/open-builders/giveaway-bot/internal/platform/redis"
	"github.com/open-builders/giveaway-bot/internal/platform/telegram"
	"github.com/open-builders/giveaway-bot/internal/workers"
)

// @title           Giveaway Bot API
// @version         1.0
// @description     Giveaway lifecycle API for community chats. All endpoints require init_data authentication.

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey TelegramInitData
// @in header
// @name init_data
// @description Telegram Mini App init_data string for authentication

// @tag.name giveaways
// @tag.description Giveaway lifecycle - start, participation, completion and reroll

const serviceName = "giveaway-bot"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(serviceName, cfg.Debug)
	log := logger.Component("main")
	log.Info().Bool("debug", cfg.Debug).Msg("Starting giveaway bot")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient, err := redis.Open(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	postgresClient, err := postgres.NewClient(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer postgresClient.Close()

	if cfg.Database.AutoMigrate {
		if err := postgresClient.Migrate(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to migrate archive schema")
		}
	}

	tg := telegram.NewClient(cfg.Telegram.APIURL, cfg.Telegram.BotToken, cfg.Giveaway.GatewayTimeout)
	messenger := telegram.NewMessenger(tg)

	svc := giveawayService.NewGiveawayService(
		giveawayRedis.NewRedisGiveawayRepository(redisClient.Client),
		giveawayPostgres.NewArchiveRepository(postgresClient.GetDB()),
		messenger,
		giveawayService.Options{
			GatewayTimeout: cfg.Giveaway.GatewayTimeout,
			EntryEmoji:     cfg.Giveaway.EntryEmoji,
		},
	)

	if _, err := svc.Load(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to restore active giveaways")
	}

	var expiration giveawayService.ExpirationServiceInterface = giveawayService.NewExpirationService(
		svc, cfg.Giveaway.SweepInterval, cfg.Giveaway.MaxConcurrent,
	)
	if err := expiration.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start expiration service")
	}

	dispatcher := bot.NewDispatcher(svc, messenger, cfg.Events.CommandPrefix)
	worker := workers.NewRedisStreamWorker(redisClient, workers.StreamConfig{
		Stream:        cfg.Events.Stream,
		Group:         cfg.Events.Group,
		Consumer:      cfg.Events.Consumer,
		CommandPrefix: dispatcher.Prefix(),
		EntryEmoji:    svc.EntryEmoji(),
	}, svc, dispatcher)

	workerCtx, cancelWorker := context.WithCancel(context.Background())
	var workerWG sync.WaitGroup
	workerWG.Add(1)
	go func() {
		defer workerWG.Done()
		worker.Start(workerCtx)
	}()

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics())
	router.Use(middleware.HandleErrors())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.Origin}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization", "Accept", "init_data"}
	router.Use(cors.New(corsConfig))

	setupRoutes(router, cfg, svc, postgresClient, redisClient)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	cancelWorker()
	workerWG.Wait()

	expiration.Stop()

	log.Info().Msg("Giveaway bot stopped")
}

func setupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	svc giveawayService.GiveawayService,
	postgresClient *postgres.Client,
	redisClient *redis.Client,
) {
	v1 := router.Group("/api/v1")
	v1.Use(
		middleware.TelegramInitDataMiddleware(cfg.Telegram.BotToken, cfg.Telegram.InitDataTTL),
		middleware.RequireAuth(),
	)
	giveawayhttp.NewGiveawayHandler(svc, cfg.Telegram.AdminIDs).RegisterRoutes(v1)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   serviceName,
		})
	})

	router.GET("/live", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := postgresClient.HealthCheck(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unready",
				"error":   "postgres unavailable",
				"details": err.Error(),
			})
			return
		}
		if err := redisClient.HealthCheck(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unready",
				"error":   "redis unavailable",
				"details": err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "ready",
			"timestamp": time.Now().UTC(),
			"service":   serviceName,
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	swaggerdocs.SwaggerInfo.BasePath = "/api/v1"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
