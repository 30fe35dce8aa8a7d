package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dealflow/auth"
	"dealflow/internal/config"
	"dealflow/internal/db"
	"dealflow/internal/deal"
	"dealflow/internal/deliverable"
	"dealflow/internal/middleware"
	"dealflow/internal/public"
	"dealflow/internal/user"
	"dealflow/internal/worker"
	"dealflow/redis"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	// Load configuration
	config.LoadConfig()
	auth.Setup(config.AppConfig.JWTSecret)

	if config.AppConfig.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Connect to database
	db.ConnectDb()
	defer db.CloseDb()

	// Migrate database schema
	db.Migrate()

	// Seed database with initial data (for development)
	db.SeedData()

	// Cache and background workers
	cache := redis.NewCache(config.AppConfig.RedisAddress)
	defer cache.Close()

	workers := worker.NewWorkerPool(4)
	defer workers.Shutdown()

	// Initialize repositories
	userRepo := user.NewRepository(db.AppDb)
	dealRepo := deal.NewRepository(db.AppDb)
	deliverableRepo := deliverable.NewRepository(db.AppDb)

	// Initialize services
	userService := user.NewService(userRepo)
	dealService := deal.NewService(dealRepo, deliverableRepo, cache, workers)
	deliverableService := deliverable.NewService(deliverableRepo, dealRepo, cache)
	publicService := public.NewService(dealRepo, deliverableRepo, cache)

	// Initialize handlers
	userHandler := user.NewHandler(userService)
	dealHandler := deal.NewHandler(dealService)
	deliverableHandler := deliverable.NewHandler(deliverableService)
	publicHandler := public.NewHandler(publicService)

	authMiddleware := middleware.Auth{Users: userService}
	requireAuth := authMiddleware.RequireAuth()

	// Initialize Gin router
	if config.AppConfig.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.ErrorHandler())

	// cors setting
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}
	if config.AppConfig.Environment == "development" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = []string{config.AppConfig.FrontendAddress}
	}
	router.Use(cors.New(corsConfig))

	// User routes
	router.POST("/register", userHandler.Register)
	router.POST("/login", userHandler.Login)
	router.GET("/profile", requireAuth, userHandler.GetProfile)

	// Deal routes (creator)
	router.POST("/deals", requireAuth, dealHandler.Create)
	router.GET("/deals", requireAuth, dealHandler.List)
	router.GET("/deals/:id", requireAuth, dealHandler.Show)
	router.PATCH("/deals/:id", requireAuth, dealHandler.Update)
	router.PATCH("/deals/:id/status", requireAuth, dealHandler.UpdateStatus)
	router.DELETE("/deals/:id", requireAuth, dealHandler.Delete)
	router.POST("/deals/:id/deliverables", requireAuth, dealHandler.CreateDeliverable)
	router.GET("/deals/:id/deliverables", requireAuth, dealHandler.ListDeliverables)

	// Deliverable routes (creator)
	router.PATCH("/deliverables/:id", requireAuth, deliverableHandler.Update)
	router.DELETE("/deliverables/:id", requireAuth, deliverableHandler.Delete)
	router.POST("/deliverables/:id/comments", requireAuth, deliverableHandler.AddComment)

	// Public routes (brand, via share token)
	router.GET("/public/deals/:token", publicHandler.ShowDeal)
	router.PATCH("/public/deliverables/:id/status", publicHandler.UpdateDeliverableStatus)

	// Server configuration
	serverPort := config.AppConfig.ServerPort
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", serverPort),
		Handler: router.Handler(),
	}

	// Start server
	go func() {
		log.Info().Str("port", serverPort).Msg("Server listening")
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}

	log.Info().Msg("Server shutdown complete")
}
