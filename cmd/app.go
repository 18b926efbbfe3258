package cmd

import (
	"context"
	"tasc/internal/app"
	"tasc/internal/config"
	"tasc/internal/logger"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// withApp resolves the configuration, sets up logging and hands a wired
// application to fn.
func withApp(cmd *cobra.Command, flags *globalFlags, fn func(ctx context.Context, a *app.App) error) error {
	path, required := flags.configPath, true
	if path == "" {
		path, required = config.DefaultPath, false
	}
	cfg, err := config.Load(path, required)
	if err != nil {
		return err
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	closer, err := logger.Setup(cfg.Log)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx := log.Logger.WithContext(cmd.Context())

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("closing task store")
		}
	}()

	return fn(ctx, a)
}
