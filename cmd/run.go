package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"tasc/internal/app"
	"tasc/internal/domain"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func runCmd(flags *globalFlags) *cobra.Command {
	var (
		name string
		envs []string
		wait bool
	)

	var command = &cobra.Command{
		Use:   "run [flags] -- command [args...]",
		Short: "Run a command as a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := parseEnv(envs)
			if err != nil {
				return err
			}
			sub := domain.Submission{
				Name:    name,
				Command: strings.Join(args, " "),
				Env:     env,
			}

			return withApp(cmd, flags, func(ctx context.Context, a *app.App) error {
				id, err := a.Scheduler.Schedule(ctx, sub)
				if err != nil {
					if wait {
						printFailedRun(ctx, cmd, a, err)
					}
					return err
				}
				if !wait {
					fmt.Fprintln(cmd.OutOrStdout(), id)
					return nil
				}
				status, err := a.Scheduler.Status(ctx, id)
				if err != nil {
					return err
				}
				printStatus(cmd.OutOrStdout(), status)
				return nil
			})
		},
	}

	command.Flags().StringVarP(&name, "name", "n", "", "Name of the task for later querying")
	command.Flags().StringArrayVarP(&envs, "env", "e", nil, "Environment variable for the command, as KEY=VALUE (repeatable)")
	command.Flags().BoolVarP(&wait, "wait", "w", false, "Print the status of the task once it finished")
	command.Flags().SetInterspersed(false)

	return command
}

// printFailedRun prints the recorded status of a task whose run failed after
// it was saved.
func printFailedRun(ctx context.Context, cmd *cobra.Command, a *app.App, err error) {
	var stageErr *domain.StageError
	if !errors.As(err, &stageErr) || stageErr.Stage == domain.StageSave {
		return
	}
	status, statusErr := a.Scheduler.Status(ctx, domain.ByID(stageErr.TaskID))
	if statusErr != nil {
		log.Ctx(ctx).Debug().Err(statusErr).Msg("status of failed task unavailable")
		return
	}
	printStatus(cmd.OutOrStdout(), status)
}

func parseEnv(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	env := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid environment variable %q, expected KEY=VALUE", p)
		}
		if _, dup := env[k]; dup {
			return nil, fmt.Errorf("environment variable %s given twice", k)
		}
		env[k] = v
	}
	return env, nil
}
