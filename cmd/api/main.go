// Command api serves the engagement HTTP API and runs the reminder and feedback-request jobs
// under one supervisor tree.
//
// @title Campus Engagement API
// @version 1.0
// @description Recommendations, notifications, registrations and feedback for campus events.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campusengage/config"
	_ "campusengage/docs"
	"campusengage/internal/adapters/auth"
	"campusengage/internal/adapters/email"
	"campusengage/internal/adapters/lock"
	httpdelivery "campusengage/internal/delivery/http"
	"campusengage/internal/delivery/http/controllers"
	"campusengage/internal/domain"
	"campusengage/internal/repository/postgres"
	"campusengage/internal/scheduler"
	"campusengage/internal/services"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := config.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := config.NewPostgresDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}

	locker, closeLocker, err := newLocker(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeLocker()

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SendTimeout: cfg.Email.SendTimeout,
		SES: email.SESConfig{
			Region:             cfg.Email.AWSRegion,
			AccessKeyID:        cfg.Email.AWSAccessKeyID,
			SecretAccessKey:    cfg.Email.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.Email.AWSInsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		return err
	}
	renderer, err := email.NewTemplateRenderer()
	if err != nil {
		return err
	}
	emailService := services.NewEmailService(mailer, renderer, logger)

	// Repositories
	eventRepo := postgres.NewEventRepository(db)
	registrationRepo := postgres.NewRegistrationRepository(db)
	favoriteRepo := postgres.NewFavoriteRepository(db)
	feedbackRepo := postgres.NewFeedbackRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	historyRepo := postgres.NewRecommendationHistoryRepository(db)
	reminderLogRepo := postgres.NewReminderLogRepository(db)
	userRepo := postgres.NewUserRepository(db)

	// Services
	timeout := cfg.RequestTimeout
	eng := cfg.Engagement
	notifications := services.NewNotificationService(notificationRepo, logger, timeout)
	thresholds := services.NewThresholdNotifier(notifications, services.ThresholdRules{
		RegistrationMilestones: eng.RegistrationMilestones,
		FeedbackMilestones:     eng.FeedbackMilestones,
		LowRatingMinSample:     eng.LowRatingMinSample,
		LowRatingThreshold:     eng.LowRatingThreshold,
		LowRatingMode:          services.LowRatingMode(eng.LowRatingMode),
	}, logger)

	recCfg := services.DefaultRecommendationConfig()
	recCfg.Weights = services.ScoringWeights{Type: eng.WeightType, Unit: eng.WeightUnit}
	recCfg.TopN = eng.TopN
	recCfg.DropZero = eng.DropZero
	preferences := services.NewPreferenceService(favoriteRepo, registrationRepo, feedbackRepo, timeout)
	recommendations := services.NewRecommendationService(preferences, eventRepo, historyRepo, notifications, locker, recCfg, logger, timeout)

	attendees := services.NewAttendeeService(eventRepo, registrationRepo, favoriteRepo, auth.NewBcryptHasher(0), thresholds, timeout)
	feedback := services.NewFeedbackService(eventRepo, registrationRepo, feedbackRepo, thresholds, timeout)
	events := services.NewEventService(eventRepo, thresholds, timeout)

	reminders := services.NewReminderService(favoriteRepo, reminderLogRepo, notifications, userRepo, emailService, services.ReminderConfig{
		LeadTimes:    eng.ReminderLeadTimes,
		Period:       eng.ReminderTick,
		EmailEnabled: eng.ReminderEmailEnabled,
	}, logger)
	solicitor := services.NewFeedbackSolicitor(eventRepo, registrationRepo, feedbackRepo, notificationRepo,
		notifications, userRepo, emailService, eng.FeedbackEmailEnabled, logger)

	// HTTP
	router := httpdelivery.NewRouter(httpdelivery.Controllers{
		Recommendations: controllers.NewRecommendationController(logger, recommendations),
		Notifications:   controllers.NewNotificationController(logger, notifications),
		Attendees:       controllers.NewAttendeeController(logger, attendees),
		Feedback:        controllers.NewFeedbackController(logger, feedback),
		Events:          controllers.NewEventController(logger, events),
	}, httpdelivery.RouterConfig{
		Verifier:    auth.NewJWT(cfg.JWTSecret),
		Logger:      logger,
		CORSOrigins: cfg.CORSOrigins,
		Health:      db.PingContext,
	})
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Supervisor tree
	tree := scheduler.NewTree(logger, scheduler.DefaultTreeConfig())
	tree.AddAPIService(httpdelivery.NewServerService(server, 10*time.Second))
	for _, job := range []scheduler.Job{
		{Name: "favorite-reminders", Period: eng.ReminderTick, Timeout: eng.TickTimeout, Run: reminders.Tick},
		{Name: "feedback-requests", Period: eng.FeedbackTick, Timeout: eng.TickTimeout, RunOnStart: true, Run: solicitor.Tick},
	} {
		if err := job.Validate(); err != nil {
			return err
		}
		tree.AddJob(scheduler.NewRunner(job, locker, nil, logger))
	}

	logger.Info("starting", "addr", server.Addr, "env", cfg.Environment, "redis", cfg.RedisURL != "")
	err = tree.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("supervisor stopped", "error", err)
	}
	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logger.Warn("service failed to stop", "service", svc.Name)
		}
	}
	logger.Info("stopped")
	return nil
}

// newLocker returns the Redis lease when REDIS_URL is set, otherwise an in-process one.
func newLocker(ctx context.Context, cfg *config.Config, logger *slog.Logger) (domain.Locker, func(), error) {
	if cfg.RedisURL == "" {
		logger.Info("REDIS_URL not set, using in-process leases")
		return lock.NewLocalLocker(), func() {}, nil
	}
	client, err := config.NewRedisClient(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return lock.NewRedisLocker(client, "campusengage:"), func() { client.Close() }, nil
}
