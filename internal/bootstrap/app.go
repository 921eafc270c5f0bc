package bootstrap

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"
)

const stopTimeout = 30 * time.Second

// Modules is the whole application graph.
func Modules(configPath string) fx.Option {
	return fx.Options(
		CustomOptions(configPath),
		CustomMVC(),
		CustomCORS(),
		CustomAPIVersioning(),
		CustomAuthentication(),
		CustomMapper(),
		CustomDatabase(),
		CustomSwagger(),
		Workers(),
		Server(),
	)
}

// Run starts the application and blocks until SIGINT, SIGTERM or a component requests
// shutdown.
func Run(configPath string) error {
	app := fx.New(Modules(configPath))
	if err := app.Err(); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(context.Background(), app.StartTimeout())
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}

	sig := <-app.Wait()

	stopCtx, cancelStop := context.WithTimeout(context.Background(), stopTimeout)
	defer cancelStop()
	if err := app.Stop(stopCtx); err != nil {
		return err
	}

	if sig.ExitCode != 0 {
		return fmt.Errorf("application stopped with exit code %d", sig.ExitCode)
	}
	return nil
}
