package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/joho/godotenv/autoload"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"

	"github.com/danqs/tax-engine/internal/config"
	"github.com/danqs/tax-engine/internal/repository"
	"github.com/danqs/tax-engine/internal/service"
)

func main() {
	log.Println("Starting tax scheduler...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	scheduleRepo := repository.NewScheduleRepository(db)
	userRepo := repository.NewUserRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	scheduleService := service.NewScheduleService(scheduleRepo, userRepo, notifRepo, cfg)

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		log.Fatalf("Invalid scheduler timezone %q: %v", cfg.Scheduler.Timezone, err)
	}

	// Initialize cron scheduler
	c := cron.New(cron.WithSeconds(), cron.WithLocation(location))

	// Schedule tasks
	setupCronJobs(c, cfg, scheduleService)

	// Start the scheduler
	c.Start()
	log.Println("Scheduler started successfully")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down scheduler...")
	c.Stop()
	log.Println("Scheduler stopped")
}

func setupCronJobs(c *cron.Cron, cfg *config.Config, schedules *service.ScheduleService) {
	// Daily job to flip pending schedules past their due date to overdue
	_, err := c.AddFunc(cfg.Scheduler.OverdueSpec, func() {
		log.Println("Running overdue schedule update job...")
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		if _, err := schedules.MarkOverdue(ctx); err != nil {
			log.Printf("Overdue update job failed: %v", err)
		}
	})
	if err != nil {
		log.Printf("Error scheduling overdue update job: %v", err)
	}

	// Daily job to remind taxpayers of schedules due inside the window
	_, err = c.AddFunc(cfg.Scheduler.ReminderSpec, func() {
		log.Println("Running due reminder job...")
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		sent, err := schedules.SendDueReminders(ctx)
		if err != nil {
			log.Printf("Reminder job failed: %v", err)
			return
		}
		if sent > 0 {
			log.Printf("Sent %d due reminder(s)", sent)
		}
	})
	if err != nil {
		log.Printf("Error scheduling reminder job: %v", err)
	}

	log.Println("Cron jobs scheduled successfully")
}
