package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	_ "github.com/joho/godotenv/autoload"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/danqs/tax-engine/internal/config"
	"github.com/danqs/tax-engine/internal/handler"
	"github.com/danqs/tax-engine/internal/repository"
	"github.com/danqs/tax-engine/internal/service"
	"github.com/danqs/tax-engine/pkg/response"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database
	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize Redis
	redisClient := initRedis(cfg)
	defer redisClient.Close()

	// Initialize repositories
	ruleRepo := repository.NewRuleRepository(db)
	filingRepo := repository.NewFilingRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	userRepo := repository.NewUserRepository(db)
	notifRepo := repository.NewNotificationRepository(db)

	// Initialize services
	ruleService := service.NewRuleService(ruleRepo, redisClient, cfg)
	scheduleService := service.NewScheduleService(scheduleRepo, userRepo, notifRepo, cfg)
	filingService := service.NewFilingService(filingRepo, scheduleRepo, paymentRepo, userRepo, notifRepo, ruleService)
	paymentService := service.NewPaymentService(paymentRepo, filingRepo, scheduleRepo, notifRepo, cfg)
	userService := service.NewUserService(userRepo, notifRepo, scheduleService)

	taxHandler := handler.NewTaxHandler(ruleService, filingService, paymentService, scheduleService, userService)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	// Setup routes
	router := setupRoutes(taxHandler, healthHandler)

	// Start server
	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(taxHandler *handler.TaxHandler, healthHandler *handler.HealthHandler) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware, response.CORSMiddleware)

	// Health check
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/rules", taxHandler.CreateRule).Methods("POST")
	api.HandleFunc("/rules", taxHandler.ListRules).Methods("GET")
	api.HandleFunc("/rules/{id}", taxHandler.UpdateRule).Methods("PUT")
	api.HandleFunc("/rules/{id}", taxHandler.DeleteRule).Methods("DELETE")

	api.HandleFunc("/filings", taxHandler.CreateFiling).Methods("POST")
	api.HandleFunc("/filings", taxHandler.ListFilings).Methods("GET")
	api.HandleFunc("/filings/{id}", taxHandler.GetFiling).Methods("GET")
	api.HandleFunc("/filings/{id}/review", taxHandler.ReviewFiling).Methods("POST")

	api.HandleFunc("/payments", taxHandler.CreatePayment).Methods("POST")
	api.HandleFunc("/payments/{id}/approve", taxHandler.ApprovePayment).Methods("PUT")

	api.HandleFunc("/schedules/pending", taxHandler.PendingSchedules).Methods("GET")

	api.HandleFunc("/users", taxHandler.RegisterUser).Methods("POST")
	api.HandleFunc("/users/{id}", taxHandler.GetUser).Methods("GET")
	api.HandleFunc("/users/{id}/schedules", taxHandler.GenerateSchedules).Methods("POST")

	api.HandleFunc("/notifications", taxHandler.ListNotifications).Methods("GET")

	return router
}
