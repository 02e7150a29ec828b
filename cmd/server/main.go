package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yourorg/tag-service/internal/client"
	"github.com/yourorg/tag-service/internal/config"
	"github.com/yourorg/tag-service/internal/cooldown"
	"github.com/yourorg/tag-service/internal/events"
	"github.com/yourorg/tag-service/internal/handler"
	"github.com/yourorg/tag-service/internal/middleware"
	"github.com/yourorg/tag-service/internal/repository"
	"github.com/yourorg/tag-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Set up logger
	logger, err := createLogger(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Connect to database
	db, err := connectToDB(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize redis client (if enabled)
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.URL,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
			logger.Warn("Failed to connect to redis, running without it", zap.Error(err))
			redisClient = nil
		} else {
			logger.Info("Connected to redis", zap.String("address", cfg.Redis.URL))
		}
	}

	// Initialize kafka writer (if enabled)
	var kafkaWriter *kafka.Writer
	if cfg.Kafka.Enabled && len(cfg.Kafka.Brokers) > 0 {
		kafkaWriter = &kafka.Writer{
			Addr:     kafka.TCP(cfg.Kafka.Brokers...),
			Topic:    cfg.Kafka.Topic,
			Balancer: &kafka.LeastBytes{},
		}
		logger.Info("Initialized kafka writer", zap.Strings("brokers", cfg.Kafka.Brokers))
	}

	// Create repositories
	tagRepo := repository.NewTagRepository(db, cfg.Database.OpTimeout, logger)
	spaceRepo := repository.NewSpaceRepository(db, cfg.Database.OpTimeout, logger)
	afkRepo := repository.NewAFKRepository(db, cfg.Database.OpTimeout, logger)

	// Create clients
	rosterClient := client.NewRosterClient(cfg.Roster.URL, cfg.Roster.ServiceKey, logger)

	// Cooldown gate: redis-backed when available, in-process otherwise
	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	gate := buildGate(janitorCtx, cfg.Cooldown, redisClient, spaceRepo, logger)

	// Create services
	publisher := events.NewPublisher(kafkaWriter, logger)
	tagService := service.NewTagService(tagRepo, rosterClient, publisher, logger)
	spaceService := service.NewSpaceService(spaceRepo, afkRepo, logger)

	// Binding rules for name/alias constraints
	if err := handler.RegisterValidations(); err != nil {
		logger.Fatal("Failed to register validations", zap.Error(err))
	}

	router := setupRouter(cfg, tagService, spaceService, gate, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if kafkaWriter != nil {
		kafkaWriter.Close()
	}

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited properly")
}

func createLogger(level string) (*zap.Logger, error) {
	var zapLevel zap.AtomicLevel
	switch level {
	case "debug":
		zapLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapLevel = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapLevel = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	config := zap.Config{
		Level:            zapLevel,
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}

func connectToDB(dbConfig config.DatabaseConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		dbConfig.Host,
		dbConfig.Port,
		dbConfig.User,
		dbConfig.Password,
		dbConfig.DBName,
		dbConfig.SSLMode,
	)

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(dbConfig.MaxOpenConns)
	db.SetMaxIdleConns(dbConfig.MaxIdleConns)
	db.SetConnMaxLifetime(dbConfig.ConnMaxLifetime)

	return db, nil
}

func buildGate(
	ctx context.Context,
	cfg config.CooldownConfig,
	redisClient *redis.Client,
	subs cooldown.PremiumChecker,
	logger *zap.Logger,
) *cooldown.Gate {
	var store cooldown.Store
	if cfg.Store == "redis" && redisClient != nil {
		store = cooldown.NewRedisStore(redisClient)
		logger.Info("Cooldown gate using redis store")
	} else {
		memStore := cooldown.NewMemoryStore()
		memStore.StartJanitor(ctx)
		store = memStore
		logger.Info("Cooldown gate using in-process store")
	}

	cache := cooldown.NewPremiumCache(redisClient, cfg.PremiumCacheTTL)
	return cooldown.NewGate(subs, store, cache, cfg.OwnerIDs, logger)
}

func setupRouter(
	cfg *config.Config,
	tagService *service.TagService,
	spaceService *service.SpaceService,
	gate *cooldown.Gate,
	logger *zap.Logger,
) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	v1 := router.Group("/api/v1")
	v1.Use(middleware.ServiceAuth(cfg.ServiceKey, logger))

	// Cooldown surface for operations served elsewhere
	cooldownHandler := handler.NewCooldownHandler(gate, logger)
	v1.GET("/cooldown/check", cooldownHandler.Check)

	spaces := v1.Group("/spaces/:space_id")
	{
		spaceHandler := handler.NewSpaceHandler(spaceService, logger)
		spaces.PUT("", spaceHandler.Register)
		spaces.GET("", spaceHandler.Settings)
		spaces.GET("/standing", spaceHandler.Standing)
		spaces.PUT("/afk/:user_id", spaceHandler.SetAFK)
		spaces.GET("/afk/:user_id", spaceHandler.GetAFK)
		spaces.DELETE("/afk/:user_id", spaceHandler.ClearAFK)

		// Every tag operation sits behind the tier-0 gate
		tags := spaces.Group("")
		tags.Use(middleware.Cooldown(gate, cooldown.Tier0, logger))

		tagHandler := handler.NewTagHandler(tagService, logger)
		tags.POST("/tags", tagHandler.Create)
		tags.GET("/tags", tagHandler.List)
		tags.GET("/tags/:name", tagHandler.Get)
		tags.PUT("/tags/:name", tagHandler.Edit)
		tags.DELETE("/tags/:name", tagHandler.Delete)
		tags.POST("/tags/:name/aliases", tagHandler.AddAlias)
		tags.POST("/tags/:name/claim", tagHandler.Claim)
		tags.GET("/tag-count", tagHandler.Count)
		tags.GET("/tag-search", tagHandler.Search)
		tags.DELETE("/owners/:owner_id/tags", tagHandler.Purge)
	}

	return router
}
