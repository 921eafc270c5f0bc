package bootstrap

import (
	"context"

	"github.com/makkenzo/gdb-api/internal/config"
	"github.com/makkenzo/gdb-api/internal/service"
	"github.com/makkenzo/gdb-api/internal/worker"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Workers runs the asynq server and scheduler for the lifetime of the application when
// worker.enabled is set.
func Workers() fx.Option {
	return fx.Module("workers",
		fx.Invoke(startWorkers),
	)
}

type workerParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Config     *config.Config
	Forecasts  *service.ForecastService
	Logger     *zap.Logger
}

func startWorkers(p workerParams) error {
	log := p.Logger.Named("Workers")
	if !p.Config.Worker.Enabled {
		log.Info("Background workers disabled")
		return nil
	}

	w, err := worker.New(p.Config, p.Forecasts, p.Logger)
	if err != nil {
		return err
	}

	var cancel context.CancelFunc
	done := make(chan struct{})

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			var runCtx context.Context
			runCtx, cancel = context.WithCancel(context.Background())
			go func() {
				defer close(done)
				if err := w.Run(runCtx); err != nil {
					log.Error("Asynq worker failed", zap.Error(err))
					_ = p.Shutdowner.Shutdown(fx.ExitCode(1))
					return
				}
				log.Info("Asynq workers finished gracefully.")
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
	return nil
}
