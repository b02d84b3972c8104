package main

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/bancore/transaction-service/internal/command"
	"github.com/bancore/transaction-service/internal/config"
	"github.com/bancore/transaction-service/internal/events"
	"github.com/bancore/transaction-service/internal/gateway"
	"github.com/bancore/transaction-service/internal/handler"
	"github.com/bancore/transaction-service/internal/logger"
	"github.com/bancore/transaction-service/internal/model"
	"github.com/bancore/transaction-service/internal/query"
	"github.com/bancore/transaction-service/internal/repository"
	"github.com/bancore/transaction-service/internal/resilience"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}

	redisClient := goredis.NewClient(&goredis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	defer redisClient.Close()

	registry := resilience.NewRegistry()
	httpClient := &http.Client{Timeout: 10 * time.Second}

	accounts := gateway.NewAccountGateway(cfg.AccountServiceURL, httpClient, registry, log)
	credits := gateway.NewCreditGateway(cfg.CreditServiceURL, httpClient, registry, log)
	commission := gateway.NewCommissionGateway(cfg.AccountServiceURL, httpClient, registry, log)

	ledger := repository.NewTransactionRepository(db)
	viewCache := repository.NewViewCache[model.Transaction](redisClient, 0, log)
	publisher := events.NewPublisher(redisClient, cfg.TransactionEvents, log)

	commandSvc := command.NewTransactionCommandService(accounts, credits, commission, ledger, publisher, log)
	querySvc := query.NewTransactionQueryService(ledger, viewCache, log)

	transactionHandler := handler.NewTransactionHandler(commandSvc, querySvc, commission)
	breakerHandler := handler.NewBreakerHandler(registry)

	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log), handler.MetricsMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	transactionHandler.RegisterRoutes(router)
	breakerHandler.RegisterRoutes(router)

	log.Info().Str("port", cfg.Port).Msg("transaction service starting")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}

func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	}
}
