package main

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/kennelworks/kennelworks/internal/api"
	"github.com/kennelworks/kennelworks/internal/api/cron"
	v1 "github.com/kennelworks/kennelworks/internal/api/v1"
	"github.com/kennelworks/kennelworks/internal/clock"
	"github.com/kennelworks/kennelworks/internal/config"
	"github.com/kennelworks/kennelworks/internal/export"
	"github.com/kennelworks/kennelworks/internal/httpclient"
	"github.com/kennelworks/kennelworks/internal/logger"
	"github.com/kennelworks/kennelworks/internal/notify"
	"github.com/kennelworks/kennelworks/internal/repository"
	"github.com/kennelworks/kennelworks/internal/scheduler"
	"github.com/kennelworks/kennelworks/internal/service"
	"github.com/kennelworks/kennelworks/internal/types"
	"github.com/kennelworks/kennelworks/internal/validator"
)

func main() {
	var opts []fx.Option

	// Core dependencies
	opts = append(opts,
		fx.Provide(
			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Clock; calendar anchors run in local time
			clock.New,

			// HTTP client
			httpclient.NewDefaultClient,

			// Record store and repositories
			repository.NewRecordStore,
			repository.NewAnimalRepository,

			// Sinks
			notify.NewNotifier,
			export.NewExporter,
		),
	)

	// Service layer
	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,
			service.NewAnimalService,
			service.NewTransitionService,
			service.NewReminderService,
			service.NewBackupService,
		),
	)

	// Scheduler, handlers, and router
	opts = append(opts,
		fx.Provide(
			scheduler.New,
			provideHandlers,
			provideRouter,
		),
	)

	opts = append(opts, fx.Invoke(
		func() { validator.NewValidator() },
		startApplication,
	))

	app := fx.New(opts...)
	app.Run()
}

func provideHandlers(
	animalService service.AnimalService,
	transitionService service.TransitionService,
	reminderService service.ReminderService,
	backupService service.BackupService,
	log *logger.Logger,
) api.Handlers {
	return api.Handlers{
		Health: v1.NewHealthHandler(),
		Animal: v1.NewAnimalHandler(animalService, log),
		Jobs:   cron.NewJobsHandler(transitionService, reminderService, backupService, log),
	}
}

func provideRouter(handlers api.Handlers, cfg *config.Configuration, log *logger.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	return api.NewRouter(handlers, cfg, log)
}

func startApplication(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	router *gin.Engine,
	sched *scheduler.Scheduler,
	transitionService service.TransitionService,
	reminderService service.ReminderService,
	backupService service.BackupService,
	log *logger.Logger,
) error {
	mode := cfg.Deployment.Mode

	if mode == types.ModeAPI || mode == types.ModeLocal {
		startAPIServer(lc, router, cfg, log)
	}
	if cfg.Scheduler.Enabled && (mode == types.ModeScheduler || mode == types.ModeLocal) {
		if err := startScheduler(lc, sched, cfg, transitionService, reminderService, backupService, log); err != nil {
			return err
		}
	}
	return nil
}

func startAPIServer(lc fx.Lifecycle, router *gin.Engine, cfg *config.Configuration, log *logger.Logger) {
	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting api server", "address", cfg.Server.Address)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatalf("failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping api server")
			return server.Shutdown(ctx)
		},
	})
}

// startScheduler registers the calendar-anchored jobs and runs the
// scheduler for the life of the process. Job bodies are idempotent, so
// re-running after a missed or delayed firing is safe.
func startScheduler(
	lc fx.Lifecycle,
	sched *scheduler.Scheduler,
	cfg *config.Configuration,
	transitionService service.TransitionService,
	reminderService service.ReminderService,
	backupService service.BackupService,
	log *logger.Logger,
) error {
	transitionAnchor, err := scheduler.ParseHourMinute(cfg.Scheduler.TransitionTime)
	if err != nil {
		return err
	}
	reminderAnchor, err := scheduler.ParseHourMinute(cfg.Scheduler.ReminderTime)
	if err != nil {
		return err
	}
	backupTriggers := make([]scheduler.HourMinute, 0, len(cfg.Scheduler.BackupTimes))
	for _, raw := range cfg.Scheduler.BackupTimes {
		trigger, err := scheduler.ParseHourMinute(raw)
		if err != nil {
			return err
		}
		backupTriggers = append(backupTriggers, trigger)
	}

	sched.RegisterDailyJob("daily_transitions", transitionAnchor, func(ctx context.Context) error {
		_, err := transitionService.RunDailyTransitions(ctx)
		return err
	})
	sched.RegisterDailyJob("departure_reminder", reminderAnchor, func(ctx context.Context) error {
		_, err := reminderService.RunDepartureReminder(ctx)
		return err
	})
	if len(backupTriggers) > 0 {
		sched.RegisterPollJob("backup", backupTriggers, func(ctx context.Context) error {
			_, err := backupService.RunBackup(ctx)
			return err
		})
	}

	schedCtx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			sched.Start(schedCtx)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping scheduler")
			cancel()
			return nil
		},
	})
	return nil
}
