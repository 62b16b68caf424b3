package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"payment_reminder_bot/internal/app"
	"payment_reminder_bot/internal/infra/config"
	idb "payment_reminder_bot/internal/infra/database"
	"payment_reminder_bot/internal/infra/gateway"
	"payment_reminder_bot/internal/infra/logger"
	"payment_reminder_bot/internal/infra/scheduler"
	"payment_reminder_bot/internal/infra/telegram"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// scheduledRunTimeout bounds one scheduled bulk run.
const scheduledRunTimeout = 12 * time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Could not load application configuration: %v", err)
	}
	logger.Init(cfg)
	mainLogger := logger.Component("main")
	mainLogger.WithFields(logrus.Fields{
		"environment": cfg.Environment,
		"operators":   len(cfg.OperatorTelegramIDs),
		"timezone":    cfg.Timezone,
	}).Info("Payment reminder bot starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := idb.NewPostgresConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not connect to database")
	}
	defer db.Close()
	mainLogger.Info("Database connection established")

	obligationRepo := idb.NewPostgresObligationRepository(db)
	customerRepo := idb.NewPostgresCustomerRepository(db)
	settingsRepo := idb.NewPostgresSettingsRepository(db)

	bot, err := telebot.NewBot(telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) {
			entry := logger.Component("telebot").WithError(err)
			if c != nil && c.Sender() != nil {
				entry = entry.WithField("sender_id", c.Sender().ID)
			}
			entry.Error("Telegram handler error")
		},
	})
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not create Telegram bot")
	}

	gatewayClient := gateway.NewClient(gateway.Config{
		CountryCode:   cfg.DefaultCountryCode,
		QueryKeyHosts: cfg.GatewayQueryKeyHosts,
		RetryCooldown: cfg.GatewayRetryCooldown,
		RetryAttempts: cfg.GatewayRetryAttempts,
		Timeout:       cfg.GatewayTimeout,
		MaxPerSecond:  cfg.GatewayMaxRPS,
	}, logger.Component("gateway"))

	dispatcher := app.NewDispatcher(gatewayClient, app.DispatcherConfig{
		InterMessageDelay: cfg.InterMessageDelay,
		RateLimitCooldown: cfg.RateLimitCooldown,
		RateLimitRetries:  cfg.RateLimitRetries,
		TransientCooldown: cfg.TransientCooldown,
	}, logger.Component("dispatcher"))

	reminderService := app.NewReminderService(
		app.NewObligationResolver(obligationRepo, cfg.Location(), logger.Component("resolver")),
		dispatcher,
		customerRepo,
		settingsRepo,
		telegram.NewTelebotAdapter(bot),
		cfg.OperatorTelegramIDs,
		logger.Component("reminder_service"),
	)

	telegram.RegisterBotCommands(bot, cfg.IsOperator, logger.Component("telegram"))
	telegram.RegisterOperatorHandlers(ctx, bot, reminderService, cfg.IsOperator, logger.Component("telegram"))
	mainLogger.Info("Telegram handlers registered")

	var reminderScheduler *scheduler.ReminderScheduler
	if cfg.ScheduledRemindersEnabled {
		reminderScheduler = scheduler.NewReminderScheduler(ctx, reminderService, logger.Component("scheduler"),
			cfg.Location(), cfg.CronSpecDailyReminders, scheduledRunTimeout)
		if err := reminderScheduler.Start(); err != nil {
			mainLogger.WithError(err).Fatal("Could not start reminder scheduler")
		}
	}

	go bot.Start()
	mainLogger.Info("Bot started, waiting for commands")

	<-ctx.Done()
	mainLogger.Info("Shutting down application...")

	if _, err := reminderService.CancelBulk(); err == nil {
		mainLogger.Info("Cancelled running reminder batch")
	}
	bot.Stop()
	if reminderScheduler != nil {
		reminderScheduler.Stop()
	}

	waitCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := reminderService.Wait(waitCtx); err != nil {
		mainLogger.WithError(err).Warn("Reminder batch did not finish before shutdown")
	}
	mainLogger.Info("Application shut down gracefully")
}
