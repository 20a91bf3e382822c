package main

import (
	"context" // context package is needed for Redis operations
	"log"     // log package is needed for logging

	"invest_platform/internal/api"        // Custom package for API handlers
	"invest_platform/internal/config"     // Custom package for configuration
	"invest_platform/internal/ledger"     // Wallet ledger service
	"invest_platform/internal/middleware" // Custom package for middleware

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/postgres"      // Postgres driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Connect to the database
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	_, err = redisClient.Ping(context.Background()).Result()
	if err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Wallet ledger: every balance mutation flows through this service
	ledgerSvc := ledger.New(db, cfg.ReferralRate)

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Auth routes
	r.POST("/auth/register", api.RegisterHandler(db, ledgerSvc, cfg.JWTSecret)) // Registration endpoint
	r.POST("/auth/login", api.LoginHandler(db, cfg.JWTSecret))                  // Login endpoint

	// Package catalog is globally readable
	r.GET("/packages", api.ListPackagesHandler(db, redisClient)) // Package catalog endpoint

	// User routes (protected by JWT)
	userGroup := r.Group("/")
	// Protect user routes with JWT middleware and inject Redis client into context
	userGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), func(c *gin.Context) {
		c.Set("redisClient", redisClient)
		c.Next()
	})
	userGroup.GET("/wallet", api.GetWalletHandler(ledgerSvc, redisClient))                      // Wallet snapshot endpoint
	userGroup.GET("/wallet/transactions", api.GetTransactionHistoryHandler(db, redisClient))    // Transaction history endpoint
	userGroup.POST("/wallet/referral-transfer", api.ReferralTransferHandler(ledgerSvc))         // Bonus transfer endpoint
	userGroup.POST("/deposits", api.CreateDepositHandler(db))                                   // Submit deposit claim endpoint
	userGroup.GET("/deposits", api.ListDepositsHandler(db))                                     // Own deposits endpoint
	userGroup.POST("/withdrawals", api.CreateWithdrawalHandler(db, ledgerSvc))                  // Submit withdrawal endpoint
	userGroup.GET("/withdrawals", api.ListWithdrawalsHandler(db))                               // Own withdrawals endpoint
	userGroup.POST("/investments", api.CreateInvestmentHandler(db, ledgerSvc))                  // Purchase package endpoint
	userGroup.GET("/investments", api.ListInvestmentsHandler(db))                               // Own investments endpoint
	userGroup.GET("/referrals", api.GetReferralsHandler(db))                                    // Own referrals endpoint

	// Admin routes (protected, admin only)
	adminGroup := r.Group("/admin")
	// Protect admin routes with JWT and AdminOnly middleware
	adminGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), middleware.AdminOnlyMiddleware())
	adminGroup.GET("/users", api.ListUsersHandler(db, redisClient))                             // List users endpoint
	adminGroup.GET("/transactions", api.ListTransactionsHandler(db, redisClient))               // List transactions endpoint
	adminGroup.GET("/deposits", api.ListPendingDepositsHandler(db))                             // Deposit review queue endpoint
	adminGroup.POST("/deposits/:id/confirm", api.ConfirmDepositHandler(db, ledgerSvc, redisClient)) // Confirm deposit endpoint
	adminGroup.POST("/deposits/:id/reject", api.RejectDepositHandler(ledgerSvc))                // Reject deposit endpoint
	adminGroup.GET("/withdrawals", api.ListPendingWithdrawalsHandler(db))                       // Withdrawal review queue endpoint
	adminGroup.POST("/withdrawals/:id/approve", api.ApproveWithdrawalHandler(db, ledgerSvc, redisClient)) // Approve withdrawal endpoint
	adminGroup.POST("/withdrawals/:id/reject", api.RejectWithdrawalHandler(ledgerSvc))          // Reject withdrawal endpoint
	adminGroup.POST("/investments/:id/profit", api.DistributeProfitHandler(db, ledgerSvc, redisClient)) // Distribute profit endpoint

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
