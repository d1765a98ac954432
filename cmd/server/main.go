package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"natours/internal/config"
	"natours/internal/event"
	"natours/internal/handler"
	"natours/internal/mail"
	"natours/internal/middleware"
	"natours/internal/model"
	"natours/internal/repository"
	"natours/internal/service"
	"natours/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading, relying on environment variables")
	}

	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Ensure uploads directory exists
	if err := os.MkdirAll(cfg.UploadsDir, os.ModePerm); err != nil {
		log.Fatalf("Failed to create uploads directory %s: %v", cfg.UploadsDir, err)
	}
	log.Printf("Uploads will be stored in: %s", cfg.UploadsDir)

	// --- Database Connection ---
	dbPool, err := config.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer dbPool.Close()

	// --- Auto Migration ---
	if err := config.AutoMigrate(dbPool); err != nil {
		log.Fatalf("Failed to auto-migrate database: %v", err)
	}

	// --- Initialize Utilities ---
	jwtUtil := utils.NewJWTUtil(cfg.JWTSecret, cfg.JWTExpiresDays)
	mailer := mail.NewClient(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.EmailFrom)
	bus := event.NewBus()

	// --- Initialize Repositories ---
	userRepo := repository.NewUserRepository(dbPool)
	tourRepo := repository.NewTourRepository(dbPool)
	reviewRepo := repository.NewReviewRepository(dbPool)

	// --- Initialize Services ---
	authService := service.NewAuthService(userRepo, jwtUtil, mailer, cfg.PublicURL)
	userService := service.NewUserService(userRepo, cfg.UploadsDir)
	tourService := service.NewTourService(tourRepo, userRepo)
	reviewService := service.NewReviewService(reviewRepo, tourRepo, bus)
	service.NewRatingsService(reviewRepo, tourRepo, bus) // subscribes itself to the bus

	// --- Initialize Handlers ---
	authHandler := handler.NewAuthHandler(authService, cfg.CookieExpiresDays, cfg.IsProduction())
	userHandler := handler.NewUserHandler(userService, cfg.IsProduction())
	tourHandler := handler.NewTourHandler(tourService, cfg.IsProduction())
	reviewHandler := handler.NewReviewHandler(reviewService, cfg.IsProduction())
	viewHandler := handler.NewViewHandler(tourService, reviewService)

	// --- Setup Gin Router ---
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.LoadHTMLGlob("web/templates/*.html")
	router.Static("/img", cfg.UploadsDir)

	// Simple CORS middleware (allow all for development)
	// For production, configure specific origins, methods, headers
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PATCH, DELETE")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	// --- Initialize Middlewares ---
	protectMW := middleware.Protect(jwtUtil, userRepo)
	isLoggedInMW := middleware.IsLoggedIn(jwtUtil, userRepo)
	adminMW := middleware.RestrictTo(model.RoleAdmin)
	adminOrLeadMW := middleware.RestrictTo(model.RoleAdmin, model.RoleLeadGuide)
	userOnlyMW := middleware.RestrictTo(model.RoleUser)
	userOrAdminMW := middleware.RestrictTo(model.RoleUser, model.RoleAdmin)

	// --- Register Routes ---
	apiGroup := router.Group("/api/v1") // Base path for API
	apiGroup.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	authHandler.RegisterAuthRoutes(apiGroup, protectMW)
	userHandler.RegisterUserRoutes(apiGroup, protectMW, adminMW)
	tourHandler.RegisterTourRoutes(apiGroup, isLoggedInMW, protectMW, adminOrLeadMW)
	reviewHandler.RegisterReviewRoutes(apiGroup, protectMW, userOnlyMW, userOrAdminMW)
	viewHandler.RegisterViewRoutes(router, isLoggedInMW, protectMW)

	// Health check endpoint (not part of the public API, but good practice)
	router.GET("/health", func(c *gin.Context) {
		// Check DB connection
		if err := dbPool.Ping(context.Background()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "db": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "healthy"})
	})

	// --- Start Server ---
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
