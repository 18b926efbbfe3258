package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func Run() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		stop()
		log.Fatal().Msgf("failed to execute command, err: %v", err.Error())
	}
}

type globalFlags struct {
	configPath string
	logLevel   string
}

func rootCmd() *cobra.Command {
	var flags globalFlags

	var command = &cobra.Command{
		Use:           "tasc",
		Short:         "Run shell commands as tracked tasks",
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.HelpFunc()(cmd, args)
		},
	}

	command.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Settings file (default settings.yaml when present)")
	command.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level override (trace, debug, info, warn, error)")

	command.AddCommand(runCmd(&flags))
	command.AddCommand(statusCmd(&flags))

	return command
}
