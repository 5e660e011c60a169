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

	"github.com/zxiaoiegw/pill-reminder/internal/assistant"
	"github.com/zxiaoiegw/pill-reminder/internal/config"
	"github.com/zxiaoiegw/pill-reminder/internal/database"
	"github.com/zxiaoiegw/pill-reminder/internal/handlers"
	"github.com/zxiaoiegw/pill-reminder/internal/middleware"
	"github.com/zxiaoiegw/pill-reminder/internal/repository"
	"github.com/zxiaoiegw/pill-reminder/internal/router"
	"github.com/zxiaoiegw/pill-reminder/internal/services"
	"github.com/zxiaoiegw/pill-reminder/internal/websocket"
	"github.com/zxiaoiegw/pill-reminder/internal/worker"
)

func main() {
	log.Println("🚀 Starting Pill Reminder Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClients.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(pool, "migrations"); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Initialize Repositories ────
	userRepo := repository.NewUserRepo(pool)
	medicationRepo := repository.NewMedicationRepo(pool)
	intakeLogRepo := repository.NewIntakeLogRepo(pool)
	jobRepo := repository.NewJobRepo(pool)

	// ──── Step 5: Initialize Gemini Client ────
	geminiService, err := services.NewGeminiService(cfg.GeminiAPIKey, cfg.GeminiConcurrentReqs)
	if err != nil {
		log.Fatalf("✗ Gemini client initialization failed: %v", err)
	}
	defer geminiService.Close()
	log.Println("✓ Gemini Flash client initialized")

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	authService := services.NewAuthService(userRepo, redisClients.Queue, jwtAuth)
	conversations := assistant.NewManager(geminiService, medicationRepo, intakeLogRepo)

	// ──── Initialize Handlers ────
	authHandler := handlers.NewAuthHandler(authService)
	medicationHandler := handlers.NewMedicationHandler(medicationRepo)
	intakeLogHandler := handlers.NewIntakeLogHandler(intakeLogRepo, medicationRepo)
	dashboardHandler := handlers.NewDashboardHandler(medicationRepo, intakeLogRepo)
	assistantHandler := handlers.NewAssistantHandler(conversations)
	suggestionHandler := handlers.NewSuggestionHandler(medicationRepo, jobRepo, redisClients.Queue)

	// ──── Step 6: Start Job Worker Pool ────
	workerPool := worker.NewPool(
		redisClients.Queue,
		geminiService,
		jobRepo,
		medicationRepo,
		intakeLogRepo,
		5,
	)
	workerPool.Start()
	log.Println("✓ Worker pool started (5 goroutines)")

	reminderScheduler := services.NewReminderScheduler(medicationRepo, redisClients.Queue)
	reminderScheduler.Start()
	log.Println("✓ Dose reminder scheduler started")

	// ──── Step 7: Start WebSocket Hub ────
	wsHub := websocket.NewHub(redisClients.PubSub, cfg.JWTSecret)
	log.Println("✓ WebSocket hub started")

	// ──── Step 8: Start HTTP Server ────
	r := router.New(
		jwtAuth,
		authHandler,
		medicationHandler,
		intakeLogHandler,
		dashboardHandler,
		assistantHandler,
		suggestionHandler,
		wsHub,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		workerPool.Stop()
		reminderScheduler.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ Pill Reminder Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
