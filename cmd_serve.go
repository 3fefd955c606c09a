package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pathakanu/mindwell/internal/assessment"
	"github.com/pathakanu/mindwell/internal/auth"
	"github.com/pathakanu/mindwell/internal/chat"
	"github.com/pathakanu/mindwell/internal/config"
	"github.com/pathakanu/mindwell/internal/database"
	"github.com/pathakanu/mindwell/internal/email"
	"github.com/pathakanu/mindwell/internal/httpserver"
	"github.com/pathakanu/mindwell/internal/logging"
	"github.com/pathakanu/mindwell/internal/metrics"
	"github.com/pathakanu/mindwell/internal/model"
	myopenai "github.com/pathakanu/mindwell/internal/openai"
	"github.com/pathakanu/mindwell/internal/prediction"
	"github.com/pathakanu/mindwell/internal/reference"
	"github.com/pathakanu/mindwell/internal/reminder"
	"github.com/pathakanu/mindwell/internal/sentiment"
	"github.com/pathakanu/mindwell/internal/twilio"
	"github.com/pathakanu/mindwell/internal/version"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the reminder dispatcher",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func logger() *slog.Logger {
	return logging.Logger
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	info := version.Get()
	logger().Info("starting mindwell", "version", info.Version, "commit", info.Commit, "env", cfg.AppEnv)

	db, err := database.New(cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("database handle: %w", err)
	}

	registry := metrics.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)
	domainMetrics := metrics.NewDomainMetrics(registry)

	analyzer, err := buildAnalyzer(cfg)
	if err != nil {
		return err
	}
	responder, err := chat.LoadResponder(cfg.ChatResponsesFile)
	if err != nil {
		return err
	}

	healthChecks := []httpserver.HealthCheck{{Name: "database", Check: database.HealthCheck(db)}}
	closers := []func() error{sqlDB.Close}

	claimer := reminder.Claimer(reminder.NewMemoryClaimer())
	if cfg.RedisURL != "" {
		opts, err := goredis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to parse redis URL: %w", err)
		}
		rdb := goredis.NewClient(opts)
		if err := rdb.Ping(cmd.Context()).Err(); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
		claimer = reminder.NewRedisClaimer(rdb)
		healthChecks = append(healthChecks, httpserver.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
		closers = append([]func() error{rdb.Close}, closers...)
	}

	dispatcher := reminder.NewDispatcher(db, buildNotifiers(cfg), reminder.DispatcherOptions{
		Claimer:  claimer,
		Location: cfg.Location(),
		Observer: domainMetrics,
	})
	if err := dispatcher.Start(cfg.ReminderSchedule); err != nil {
		return fmt.Errorf("scheduler start: %w", err)
	}

	server := httpserver.NewServer(cfg, httpserver.Dependencies{
		Assessments:  assessment.NewService(db, analyzer, domainMetrics),
		References:   reference.NewStore(db),
		Reminders:    reminder.NewService(db),
		Predictor:    prediction.NewClient(cfg.PredictionURL, cfg.PredictionTimeout),
		Responder:    responder,
		Verifier:     auth.NewVerifier(cfg.JWTSecret),
		Registry:     registry,
		HTTPMetrics:  httpMetrics,
		ChatObserver: domainMetrics,
		HealthChecks: healthChecks,
	})

	serverErr := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			serverErr <- err
		}
	}()

	return waitForShutdown(server, serverErr, dispatcher.Stop, closers...)
}

func buildAnalyzer(cfg *config.Config) (sentiment.Analyzer, error) {
	if cfg.AnalyzerMode == config.AnalyzerRemote {
		logger().Info("analyzer: remote AI gateway", "url", cfg.AIGatewayURL, "model", cfg.AIModel)
		return myopenai.New(myopenai.Options{
			APIKey:  cfg.AIGatewayAPIKey,
			BaseURL: cfg.AIGatewayURL,
			Model:   cfg.AIModel,
			Timeout: cfg.AITimeout,
		}), nil
	}

	lexicon, err := sentiment.LoadLexicon(cfg.LexiconFile)
	if err != nil {
		return nil, err
	}
	logger().Info("analyzer: local keyword scorer", "positive_words", len(lexicon.Positive()), "negative_words", len(lexicon.Negative()))
	return sentiment.NewLocalAnalyzer(sentiment.NewScorer(lexicon)), nil
}

func buildNotifiers(cfg *config.Config) map[model.Platform]reminder.Notifier {
	notifiers := map[model.Platform]reminder.Notifier{
		model.PlatformApp: reminder.AppNotifier{},
	}
	if cfg.WhatsAppEnabled() {
		notifiers[model.PlatformWhatsApp] = reminder.WhatsAppNotifier{
			Sender: twilio.New(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioWhatsAppNumber),
		}
	} else {
		logger().Warn("reminders: whatsapp delivery disabled, twilio credentials missing")
	}
	if cfg.EmailEnabled() {
		notifiers[model.PlatformEmail] = reminder.EmailNotifier{Mailer: email.NewSender(email.Options{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			Timeout:  cfg.SMTPTimeout,
		})}
	} else {
		logger().Warn("reminders: email delivery disabled, smtp relay missing")
	}
	return notifiers
}
