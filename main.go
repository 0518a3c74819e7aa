package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"cardshop/internal/api"
	"cardshop/internal/config"
	"cardshop/internal/database"
	"cardshop/internal/ratelimit"
	"cardshop/internal/services/cardtrader"
	customerService "cardshop/internal/services/customers"
	inventoryService "cardshop/internal/services/inventory"
	"cardshop/internal/services/justtcg"
	"cardshop/internal/services/lookup"
	squareService "cardshop/internal/services/square"
	"cardshop/internal/services/tcgcodex"
	"cardshop/internal/settings"
	"cardshop/internal/websocket"
)

func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found")
	}

	// Initialize configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		logrus.Fatal("Failed to connect to database: ", err)
	}

	// Initialize services
	settingsStore := settings.NewStore(db)

	limiter := ratelimit.New(cfg.LookupInterval)
	adapter := lookup.NewAdapter(limiter,
		justtcg.NewService(cfg.JustTCGAPIKey),
		tcgcodex.NewService(cfg.TCGCodexAPIKey),
		cardtrader.NewService(cfg.CardTraderAPIKey),
	)

	// Initialize WebSocket hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	inv := inventoryService.NewService(db, settingsStore, wsHub)
	cust := customerService.NewService(db)
	sq := squareService.NewService(cfg.SquareAccessToken, cfg.SquareLocationID, wsHub)

	// Nightly reprice against the primary provider
	scheduler := cron.New()
	scheduler.AddFunc("0 3 * * *", func() {
		logrus.Info("Starting nightly reprice")
		report := inv.BulkReprice(context.Background(), adapter, "justtcg")
		logrus.WithFields(logrus.Fields{
			"succeeded": report.Succeeded,
			"failed":    report.Failed,
		}).Info("Nightly reprice finished")
	})
	scheduler.Start()
	defer scheduler.Stop()

	// Initialize Gin router
	r := gin.Default()

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// API routes
	apiGroup := r.Group("/api/v1")
	api.SetupRoutes(apiGroup, db, inv, cust, sq, adapter, settingsStore)

	// WebSocket endpoint
	r.GET("/ws", func(c *gin.Context) {
		websocket.HandleWebSocket(wsHub, c.Writer, c.Request)
	})

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatal("Server failed to start: ", err)
		}
	}()

	logrus.Infof("Server started on port %s", cfg.Port)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Fatal("Server forced to shutdown: ", err)
	}

	logrus.Info("Server exited")
}
