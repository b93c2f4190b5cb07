package main

import (
	"context" // context package is needed for Redis operations
	"log"     // log package is needed for logging

	"finance_tracker/internal/api"    // Custom package for API handlers
	"finance_tracker/internal/config" // Custom package for configuration

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Connect to the database. Startup is gated on store connectivity so the
	// API never serves traffic it cannot persist.
	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{})
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

	// Mount the user and expense resource groups
	api.RegisterRoutes(r, db, redisClient, cfg.JWTSecret)

	log.Println("Server running on " + cfg.AppPort) // Log server start
	if err := r.Run(":" + cfg.AppPort); err != nil {
		logrus.Fatalf("server stopped: %v", err) // Fatal error if the listener fails
	}
}
