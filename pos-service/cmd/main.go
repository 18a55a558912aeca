package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Kaosethi/MerchantApp-sub000/pos-service/internal/authorization"
	poscmd "github.com/Kaosethi/MerchantApp-sub000/pos-service/internal/command"
	"github.com/Kaosethi/MerchantApp-sub000/pos-service/internal/gateway"
	"github.com/Kaosethi/MerchantApp-sub000/pos-service/internal/handler"
	"github.com/Kaosethi/MerchantApp-sub000/pos-service/internal/history"
	"github.com/Kaosethi/MerchantApp-sub000/pos-service/internal/observable"
	posqry "github.com/Kaosethi/MerchantApp-sub000/pos-service/internal/query"
	"github.com/Kaosethi/MerchantApp-sub000/pos-service/internal/repository"
	"github.com/Kaosethi/MerchantApp-sub000/shared/config"
	"github.com/Kaosethi/MerchantApp-sub000/shared/events"
	"github.com/Kaosethi/MerchantApp-sub000/shared/logging"
	"github.com/Kaosethi/MerchantApp-sub000/shared/middleware"
	redisClient "github.com/Kaosethi/MerchantApp-sub000/shared/redis"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// The logger is not configured yet.
		zap.NewExample().Fatal("invalid configuration", zap.Error(err))
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		zap.NewExample().Fatal("failed to build logger", zap.Error(err))
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Attempt journal
	journal, err := openJournal(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to open attempt journal", zap.String("driver", cfg.JournalDriver), zap.Error(err))
	}
	defer journal.Close()

	credentials := observable.NewCredentialSignal()

	// Redis is optional: without it receipts stay in memory and events are dropped.
	var publisher poscmd.EventPublisher = events.NopPublisher{}
	receipts := repository.NewMemoryReceiptRepository(cfg.ReceiptTTL)
	if cfg.RedisAddr != "" {
		redis, err := redisClient.NewClient(cfg.RedisAddr, cfg.RedisPassword, 0, logger)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer redis.Close()

		publisher = events.NewPublisher(redis.Client)
		receipts = repository.NewRedisReceiptRepository(redis.Client, cfg.ReceiptTTL, logger)

		hostname, _ := os.Hostname()
		subscriber := events.NewSubscriber(redis.Client, events.SubscriberConfig{
			Group:    "pos-service",
			Consumer: hostname,
			Stream:   events.MerchantEventsStream,
			Handler:  poscmd.CredentialRevocationHandler(credentials),
			Logger:   logger,
		})
		go func() {
			if err := subscriber.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("merchant event subscriber stopped", zap.Error(err))
			}
		}()
	} else {
		logger.Warn("REDIS_ADDR not set; receipts are kept in memory and outcome events are not published")
	}

	// Backend gateway
	client := gateway.NewClient(cfg.BackendURL, cfg.BackendTimeout, gateway.StaticToken{Value: cfg.MerchantToken}, logger)

	// Session registries
	authSessions := repository.NewSessionStore[*authorization.Flow]()
	historySessions := repository.NewSessionStore[*history.Reconciler]()

	unsubscribe := credentials.Subscribe(func(inv observable.Invalidation) {
		var closed int
		if inv.MerchantID == "" {
			closed = authSessions.CloseAll() + historySessions.CloseAll()
		} else {
			closed = authSessions.CloseOwnedBy(inv.MerchantID) + historySessions.CloseOwnedBy(inv.MerchantID)
		}
		logger.Warn("merchant credentials invalidated",
			zap.String("merchantId", inv.MerchantID),
			zap.String("reason", inv.Reason),
			zap.Int("sessionsClosed", closed),
		)
	})
	defer unsubscribe()

	go sweepIdleSessions(ctx, cfg.SessionIdleTTL, logger, authSessions, historySessions)

	// Command + Query services
	authCommands := poscmd.NewAuthorizationCommandService(authSessions, client, journal, receipts, publisher, poscmd.AuthorizationSettings{
		MaxAttempts: cfg.MaxPinAttempts,
		Credentials: credentials,
		Logger:      logger,
	})
	authQueries := posqry.NewAuthorizationQueryService(authSessions, receipts)
	historyCommands := poscmd.NewHistoryCommandService(historySessions, client, poscmd.HistorySettings{
		PageSize:    cfg.PageSize,
		Credentials: credentials,
		Logger:      logger,
	})
	historyQueries := posqry.NewHistoryQueryService(historySessions)

	authHandler := handler.NewAuthorizationHandler(authCommands, authQueries)
	historyHandler := handler.NewHistoryHandler(historyCommands, historyQueries)

	// Setup router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.LoggingMiddleware(logger))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/v1", middleware.AuthMiddleware([]byte(cfg.JWTSecret)))
	{
		v1.POST("/authorizations", authHandler.StartAuthorization)
		v1.GET("/authorizations/:sessionId", authHandler.GetAuthorization)
		v1.POST("/authorizations/:sessionId/pin", authHandler.SubmitPin)
		v1.POST("/authorizations/:sessionId/digits", authHandler.EnterDigit)
		v1.DELETE("/authorizations/:sessionId/digits", authHandler.DeleteDigit)
		v1.POST("/authorizations/:sessionId/outcome", authHandler.TakeOutcome)
		v1.DELETE("/authorizations/:sessionId", authHandler.EndAuthorization)
		v1.GET("/receipts/:transactionId", authHandler.GetReceipt)

		v1.POST("/history", historyHandler.OpenHistory)
		v1.GET("/history/:sessionId", historyHandler.GetHistory)
		v1.POST("/history/:sessionId/filters", historyHandler.ApplyFilters)
		v1.POST("/history/:sessionId/more", historyHandler.LoadMore)
		v1.POST("/history/:sessionId/refresh", historyHandler.Refresh)
		v1.PUT("/history/:sessionId/date-range", historyHandler.SetDateRange)
		v1.DELETE("/history/:sessionId", historyHandler.CloseHistory)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("pos service starting", zap.String("port", cfg.Port), zap.String("backend", cfg.BackendURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	authSessions.CloseAll()
	historySessions.CloseAll()
}

func openJournal(ctx context.Context, cfg *config.Config) (repository.AttemptJournal, error) {
	if cfg.JournalDriver == "postgres" {
		return repository.OpenPostgresAttemptJournal(ctx, cfg.DatabaseURL)
	}
	return repository.OpenSQLiteAttemptJournal(cfg.JournalPath)
}

func sweepIdleSessions(
	ctx context.Context,
	idle time.Duration,
	logger *zap.Logger,
	authSessions *repository.SessionStore[*authorization.Flow],
	historySessions *repository.SessionStore[*history.Reconciler],
) {
	ticker := time.NewTicker(max(idle/2, time.Second))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := authSessions.Sweep(idle) + historySessions.Sweep(idle); n > 0 {
				logger.Info("closed idle sessions", zap.Int("count", n))
			}
		}
	}
}
