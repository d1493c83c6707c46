package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/kivanctezoren/sanalkiwobot/internal/config"
	"github.com/kivanctezoren/sanalkiwobot/internal/covid"
	"github.com/kivanctezoren/sanalkiwobot/internal/handlers"
	"github.com/kivanctezoren/sanalkiwobot/internal/i18n"
	"github.com/kivanctezoren/sanalkiwobot/internal/intent"
	"github.com/kivanctezoren/sanalkiwobot/internal/location"
	"github.com/kivanctezoren/sanalkiwobot/internal/middleware"
	"github.com/kivanctezoren/sanalkiwobot/internal/registry"
	"github.com/kivanctezoren/sanalkiwobot/internal/sender"
	"github.com/kivanctezoren/sanalkiwobot/internal/state"
	"github.com/kivanctezoren/sanalkiwobot/internal/wordset"
	"github.com/kivanctezoren/sanalkiwobot/pkg/logger"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "configs/config.yaml", "Path to configuration file")
	envFile := flag.String("env", ".env", "Path to .env file")
	flag.Parse()

	// Load .env file if exists
	if err := godotenv.Load(*envFile); err != nil {
		// It's okay if .env doesn't exist
		fmt.Printf("Warning: .env file not found: %v\n", err)
	}

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewLogger(&cfg.Logging)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log.Info("Starting sanalkiwobot...")

	// Initialize bot
	bot, err := tgbotapi.NewBotAPI(cfg.Bot.Token)
	if err != nil {
		log.WithError(err).Fatal("Failed to create bot")
	}

	bot.Debug = cfg.Logging.Level == "debug"
	log.WithField("username", bot.Self.UserName).Info("Bot authorized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize chat registries
	reg, err := registry.NewManager(&cfg.Registry, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize chat registries")
	}

	// Initialize trigger word sets and the location table
	categories, err := wordset.LoadCategories(cfg.Resources.TextListDir)
	if err != nil {
		log.WithError(err).Fatal("Failed to load trigger word sets")
	}

	table, err := location.LoadTable(filepath.Join(cfg.Resources.TextListDir, "dict_locations.txt"))
	if err != nil {
		log.WithError(err).Fatal("Failed to load location table")
	}

	// Initialize the dataset engine
	engine, err := covid.NewEngine(cfg.Covid, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize dataset engine")
	}

	// Initialize i18n
	localizer, err := i18n.NewLocalizer(&cfg.I18n)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize i18n")
	}

	// Initialize metrics
	metrics := middleware.NewMetrics()

	// Start metrics server if enabled
	if cfg.Monitoring.Metrics.Enabled {
		go func() {
			log.WithFields(logrus.Fields{
				"port": cfg.Monitoring.Metrics.Port,
				"path": cfg.Monitoring.Metrics.Path,
			}).Info("Starting metrics server")

			if err := middleware.StartMetricsServer(cfg.Monitoring.Metrics.Port, cfg.Monitoring.Metrics.Path); err != nil {
				log.WithError(err).Error("Metrics server failed")
			}
		}()
	}

	// Initialize the rate-limited outbound queue
	queue := sender.NewQueue(bot, &cfg.RateLimit, log)

	// Initialize the update handler
	handler, err := handlers.NewHandler(
		cfg,
		queue,
		intent.NewClassifier(categories),
		location.NewResolver(table, nil, cfg.Covid.FallbackLocation),
		table,
		engine,
		state.NewStore(),
		reg,
		localizer,
		metrics,
		log,
		bot.Self.ID,
	)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize update handler")
	}

	// Setup update channel
	var updates tgbotapi.UpdatesChannel

	if cfg.Bot.Webhook.Enabled {
		// Setup webhook
		webhookURL := fmt.Sprintf("%s/%s", cfg.Bot.Webhook.URL, bot.Token)
		webhook, err := tgbotapi.NewWebhook(webhookURL)
		if err != nil {
			log.WithError(err).Fatal("Failed to create webhook")
		}

		if _, err := bot.Request(webhook); err != nil {
			log.WithError(err).Fatal("Failed to set webhook")
		}

		updates = bot.ListenForWebhook("/" + bot.Token)
		log.WithField("url", webhookURL).Info("Webhook set")
	} else {
		// Use long polling
		u := tgbotapi.NewUpdate(0)
		u.Timeout = cfg.Bot.UpdateTimeout

		updates = bot.GetUpdatesChan(u)
		log.Info("Using long polling")
	}

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Main bot loop
	go func() {
		for update := range updates {
			// Edited messages are ignored on purpose.
			if update.EditedMessage != nil {
				continue
			}

			if err := handler.HandleUpdate(ctx, update); err != nil {
				log.WithError(err).Error("Failed to handle update")
			}
		}
	}()

	// Start periodic tasks
	go startPeriodicTasks(ctx, reg, metrics, log)

	// Wait for shutdown signal
	<-sigChan
	log.Info("Shutdown signal received")

	// Cleanup
	if cfg.Bot.Webhook.Enabled {
		if _, err := bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
			log.WithError(err).Error("Failed to delete webhook")
		}
	}

	// Cancel context to stop all goroutines
	cancel()

	// Give goroutines time to finish
	time.Sleep(2 * time.Second)

	log.Info("Bot stopped")
}

// startPeriodicTasks refreshes the registry gauges.
func startPeriodicTasks(ctx context.Context, reg *registry.Manager, metrics *middleware.Metrics, log *logrus.Logger) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			chats, err := reg.Chats().All(ctx)
			if err != nil {
				log.WithError(err).Warn("Failed to count registered chats")
				continue
			}
			metrics.SetSubscribedChats(float64(len(chats)))
		}
	}
}
