package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmhodges/clock"

	"github.com/arimitra/healthmate/internal/chat"
	"github.com/arimitra/healthmate/internal/config"
	"github.com/arimitra/healthmate/internal/database"
	"github.com/arimitra/healthmate/internal/hub"
	"github.com/arimitra/healthmate/internal/notify"
	"github.com/arimitra/healthmate/internal/places"
	"github.com/arimitra/healthmate/internal/reminder"
	"github.com/arimitra/healthmate/internal/schedule"
	"github.com/arimitra/healthmate/internal/server"
	"github.com/arimitra/healthmate/internal/speech"
	"github.com/arimitra/healthmate/internal/store"
	"github.com/arimitra/healthmate/internal/timeparse"
	"github.com/arimitra/healthmate/internal/twilio"
)

func main() {
	logger := log.New(os.Stdout, "[healthmate] ", log.LstdFlags|log.Lshortfile)
	cfg := config.Load()
	clk := clock.New()

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logger.Printf("database init failed, reminders run in memory: %v", err)
	}

	var reminderStore store.ReminderStore
	if db != nil {
		reminderStore = store.NewGormStore(db)
	} else {
		reminderStore = store.NewMemoryStore()
	}

	pushHub := hub.New(logger)

	var smsSender notify.SMSSender
	if cfg.SMSConfigured() {
		smsSender = twilio.New(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)
	}
	var mailSender notify.MailSender
	if cfg.EmailConfigured() {
		mailSender = notify.NewEmailSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFromEmail)
	}
	dispatcher := notify.NewDispatcher(smsSender, mailSender, pushHub, logger)

	scheduler := schedule.New(cfg.LocalTimezone, clk, logger)
	scheduler.Start()

	parser := timeparse.New(clk, cfg.LocalTimezone)
	reminderService := reminder.NewService(reminderStore, parser, scheduler, dispatcher, logger)

	chatClient := chat.New(cfg.OpenAIAPIKey)

	placesClient, err := places.New(cfg.PlacesAPIKey)
	if err != nil {
		logger.Fatalf("places client init: %v", err)
	}

	speechClient, err := speech.New(context.Background(), cfg.GoogleCredsFile)
	if err != nil {
		logger.Fatalf("speech client init: %v", err)
	}
	defer speechClient.Close()

	logStartup(logger, cfg, db != nil, chatClient.Configured(), placesClient.Configured(), speechClient.Configured())

	srv := server.New(reminderService, chatClient, placesClient, speechClient, pushHub, logger)
	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: srv.Routes(),
	}

	go func() {
		logger.Printf("server starting on :%s", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("server error: %v", err)
		}
	}()

	waitForShutdown(httpServer, scheduler, logger)
}

func logStartup(logger *log.Logger, cfg *config.Config, dbUp, chatUp, placesUp, speechUp bool) {
	logger.Printf("database connected: %v", dbUp)
	logger.Printf("chat model configured: %v", chatUp)
	logger.Printf("places lookup configured: %v", placesUp)
	logger.Printf("voice assistant configured: %v", speechUp)
	logger.Printf("sms channel configured: %v", cfg.SMSConfigured())
	logger.Printf("email channel configured: %v", cfg.EmailConfigured())
}

func waitForShutdown(server *http.Server, scheduler *schedule.Scheduler, logger *log.Logger) {
	stopCtx := make(chan os.Signal, 1)
	signal.Notify(stopCtx, syscall.SIGINT, syscall.SIGTERM)
	<-stopCtx
	logger.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Printf("server shutdown error: %v", err)
	}
	scheduler.Stop()
}
