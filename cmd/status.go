package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"tasc/internal/app"
	"tasc/internal/domain"

	"github.com/spf13/cobra"
)

func statusCmd(flags *globalFlags) *cobra.Command {
	var command = &cobra.Command{
		Use:   "status",
		Short: "Show the status of a task",
	}

	lookup := func(use, short string, toID func(string) domain.TaskID) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd, flags, func(ctx context.Context, a *app.App) error {
					status, err := a.Scheduler.Status(ctx, toID(args[0]))
					if err != nil {
						return err
					}
					printStatus(cmd.OutOrStdout(), status)
					return nil
				})
			},
		}
	}

	command.AddCommand(lookup("id <id>", "Look a task up by its generated id", domain.ByID))
	command.AddCommand(lookup("name <name>", "Look a task up by its name", domain.ByName))

	return command
}

func printStatus(w io.Writer, s domain.TaskStatus) {
	switch s.State {
	case domain.StateSuccess:
		fmt.Fprintln(w, "Task succeeded:")
	case domain.StateError:
		fmt.Fprintln(w, "Task failed:")
	default:
		fmt.Fprintln(w, "Task is scheduled")
		return
	}
	fmt.Fprint(w, indent(s.Log))
}

func indent(text string) string {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return ""
	}
	var b strings.Builder
	for _, line := range strings.Split(text, "\n") {
		b.WriteString("    ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
