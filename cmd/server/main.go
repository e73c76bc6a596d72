package main

import (
	"context"
	"log"

	"wallet_service/internal/api"
	"wallet_service/internal/config"
	"wallet_service/internal/fraud"
	"wallet_service/internal/middleware"
	"wallet_service/internal/otp"
	"wallet_service/internal/repository"
	"wallet_service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Setup Data Source Name (DSN) and connect to the database
	dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
	gormDB, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})

	// Test Redis connection
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Root store; the services open their own units of work on it
	store := repository.NewGormStore(gormDB)

	// Wire the services
	ledger := service.NewStatusLedger(store)
	engine := fraud.NewEngine(fraud.DefaultRules(store.Transactions())...)
	otpService := otp.NewService(store)
	audit := service.NewAuditService(store)
	notifier := service.NewRedisBalanceNotifier(redisClient)

	accounts := service.NewAccountService(store)
	transfers := service.NewTransferService(store, ledger, engine, otpService, audit, notifier)
	addresses := service.NewAddressService(store)
	contacts := service.NewContactService(store)
	payments := service.NewScheduledPaymentService(store)
	admin := service.NewAdminService(store)

	// Start the scheduled payment executor in the background
	executorCtx, stopExecutor := context.WithCancel(context.Background())
	defer stopExecutor()
	executor := service.NewScheduledPaymentExecutor(store, ledger, audit, notifier, cfg.SchedulerInterval)
	go executor.Run(executorCtx)

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default()

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Auth routes
	r.POST("/user", api.RegisterHandler(accounts))
	r.GET("/user", api.LoginHandler(store, cfg.JWTSecret))

	// Wallet routes (protected by JWT)
	walletGroup := r.Group("/wallet")
	walletGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	walletGroup.GET("", api.GetWalletHandler(store, redisClient))
	walletGroup.POST("/transfer", api.TransferHandler(transfers, redisClient))
	walletGroup.POST("/transfer/handle", api.TransferByHandleHandler(transfers, addresses, redisClient))
	walletGroup.PUT("/pin", api.UpdatePinHandler(transfers))
	walletGroup.GET("/transactions", api.GetTransactionHistoryHandler(store, redisClient))
	walletGroup.GET("/qr", api.QRHandler(addresses))

	// Scheduled payment routes (protected by JWT)
	scheduledGroup := r.Group("/scheduled-payments")
	scheduledGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	scheduledGroup.POST("", api.CreateScheduledPaymentHandler(payments))
	scheduledGroup.GET("", api.ListScheduledPaymentsHandler(payments))
	scheduledGroup.PUT("/:id", api.UpdateScheduledPaymentHandler(payments))
	scheduledGroup.DELETE("/:id", api.CancelScheduledPaymentHandler(payments))

	// Contact routes (protected by JWT)
	contactGroup := r.Group("/contacts")
	contactGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	contactGroup.POST("", api.CreateContactHandler(contacts))
	contactGroup.GET("", api.ListContactsHandler(contacts))
	contactGroup.DELETE("/:id", api.DeleteContactHandler(contacts))

	// Admin routes (protected, admin only)
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), middleware.AdminOnlyMiddleware(store))
	adminGroup.GET("/users", api.ListUsersHandler(store, redisClient))
	adminGroup.GET("/transactions", api.ListTransactionsHandler(store, redisClient))
	adminGroup.GET("/summary", api.AdminSummaryHandler(admin))
	adminGroup.GET("/status-distribution", api.StatusDistributionHandler(admin))
	adminGroup.GET("/audit-logs", api.ListAuditLogsHandler(store))

	log.Println("Server running on " + cfg.AppPort)
	r.Run(":" + cfg.AppPort)
}
