package worker

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/makkenzo/gdb-api/internal/config"
	"github.com/makkenzo/gdb-api/internal/tasks"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Worker runs the asynq server that processes background tasks and the scheduler that
// enqueues the periodic ones.
type Worker struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	mux       *asynq.ServeMux
	logger    *zap.Logger
}

func RedisConnOpt(cfg *config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

func New(cfg *config.Config, purger tasks.ForecastPurger, logger *zap.Logger) (*Worker, error) {
	log := logger.Named("Worker")
	redisConnOpts := RedisConnOpt(&cfg.Redis)

	concurrency := cfg.Worker.Concurrency
	if concurrency <= 0 {
		concurrency = 10
	}

	srv := asynq.NewServer(
		redisConnOpts,
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Error("Asynq task processing failed",
					zap.String("task_type", task.Type()),
					zap.ByteString("payload", task.Payload()),
					zap.Error(err),
				)
			}),
			Logger: NewAsynqLoggerAdapter(logger.Named("AsynqServer")),
		},
	)

	mux := asynq.NewServeMux()
	purgeHandler := tasks.NewForecastPurgeHandler(purger, cfg.Worker.ForecastRetention, logger)
	mux.HandleFunc(tasks.TypeForecastPurge, purgeHandler.ProcessTask)

	scheduler := asynq.NewScheduler(
		redisConnOpts,
		&asynq.SchedulerOpts{
			Logger: NewAsynqLoggerAdapter(logger.Named("AsynqScheduler")),
		},
	)

	purgeTask, err := tasks.NewForecastPurgeTask(tasks.ForecastPurgePayload{}, asynq.Queue("low"))
	if err != nil {
		return nil, fmt.Errorf("scheduler task creation error: %w", err)
	}
	entryID, err := scheduler.Register(cfg.Worker.PurgeSchedule, purgeTask)
	if err != nil {
		return nil, fmt.Errorf("scheduler registration error: %w", err)
	}
	log.Info("Registered periodic forecast purge",
		zap.String("entry_id", entryID),
		zap.String("schedule", cfg.Worker.PurgeSchedule),
		zap.Duration("retention", cfg.Worker.ForecastRetention),
	)

	return &Worker{
		server:    srv,
		scheduler: scheduler,
		mux:       mux,
		logger:    log,
	}, nil
}

// Run starts the server and the scheduler and blocks until ctx is done or either of them
// fails to start. Both are shut down before Run returns.
func (w *Worker) Run(ctx context.Context) error {
	g, groupCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		w.logger.Info("Starting Asynq Server...")
		if err := w.server.Start(w.mux); err != nil {
			w.logger.Error("Asynq Server start failed", zap.Error(err))
			return fmt.Errorf("asynq server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		w.logger.Info("Starting Asynq Scheduler...")
		if err := w.scheduler.Start(); err != nil {
			w.logger.Error("Asynq Scheduler start failed", zap.Error(err))
			return fmt.Errorf("asynq scheduler error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-groupCtx.Done()

		w.logger.Info("Shutting down Asynq Scheduler...")
		w.scheduler.Shutdown()
		w.logger.Info("Asynq Scheduler stopped.")

		w.logger.Info("Shutting down Asynq Server...")
		w.server.Shutdown()
		w.logger.Info("Asynq Server stopped.")
		return nil
	})

	return g.Wait()
}

type asynqLoggerAdapter struct {
	logger *zap.Logger
}

func NewAsynqLoggerAdapter(logger *zap.Logger) *asynqLoggerAdapter {
	return &asynqLoggerAdapter{logger: logger.WithOptions(zap.AddCallerSkip(1))}
}

func (l *asynqLoggerAdapter) Debug(args ...interface{}) {
	l.logger.Debug(fmt.Sprint(args...))
}
func (l *asynqLoggerAdapter) Info(args ...interface{}) {
	l.logger.Info(fmt.Sprint(args...))
}
func (l *asynqLoggerAdapter) Warn(args ...interface{}) {
	l.logger.Warn(fmt.Sprint(args...))
}
func (l *asynqLoggerAdapter) Error(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
}
func (l *asynqLoggerAdapter) Fatal(args ...interface{}) {
	l.logger.Fatal(fmt.Sprint(args...))
}
