package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/gosuda/planner/internal/client"
	"github.com/gosuda/planner/internal/config"
	"github.com/gosuda/planner/internal/i18n"
	"github.com/gosuda/planner/internal/notify"
)

func taskCmd() *cobra.Command {
	var flags clientFlags

	cmd := &cobra.Command{
		Use:   "task",
		Short: "Create, update and delete tasks",
	}

	cmd.PersistentFlags().StringVarP(&flags.userID, "user", "u", "", "Acting user id (default $PLANNER_USER_ID)")
	cmd.PersistentFlags().StringVar(&flags.locale, "locale", "", "Locale for messages (default $PLANNER_LOCALE)")

	cmd.AddCommand(
		taskCreateCmd(&flags),
		taskStatusCmd(&flags),
		taskDeleteCmd(&flags),
	)

	return cmd
}

func taskCreateCmd(flags *clientFlags) *cobra.Command {
	var fields client.TaskFields

	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create a task",
		Long: `Create a task created by the acting user.

Examples:
  planner task create "Write report" --due 2024-05-01
  planner task create "Review PR" --assign 7b0e...`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOneShot(*flags, nil, cmd.OutOrStdout(), func(app *client.App, cfg *config.Config) error {
				fields.Title = args[0]
				if fields.CreatedBy == "" {
					fields.CreatedBy = cfg.Client.UserID
				}
				resp, err := app.Tasks.Create(cmd.Context(), fields)
				if err != nil {
					return reportFailure(app, err)
				}
				app.ShowNotification(app.Printer.Sprintf(i18n.TaskCreated, resp.TaskID), notify.SeveritySuccess)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&fields.Description, "description", "d", "", "Task description")
	cmd.Flags().StringVar(&fields.DueDate, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&fields.AssignedTo, "assign", "", "Assignee user id")
	cmd.Flags().StringVar(&fields.CreatedBy, "created-by", "", "Creator user id (default the acting user)")

	return cmd
}

func taskStatusCmd(flags *clientFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status <task-id> <status>",
		Short: "Change the status of a task",
		Long: `Change the status of a task.

Status is one of pending, in_progress, completed or cancelled.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOneShot(*flags, nil, cmd.OutOrStdout(), func(app *client.App, _ *config.Config) error {
				if _, err := app.Tasks.UpdateStatus(cmd.Context(), args[0], args[1]); err != nil {
					return reportFailure(app, err)
				}
				app.ShowNotification(app.Printer.Sprintf(i18n.TaskStatusUpdated, args[0], args[1]), notify.SeveritySuccess)
				return nil
			})
		},
	}
}

func taskDeleteCmd(flags *clientFlags) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader
			if !yes {
				in = cmd.InOrStdin()
			}
			return runOneShot(*flags, in, cmd.OutOrStdout(), func(app *client.App, _ *config.Config) error {
				_, confirmed, err := app.DeleteTask(cmd.Context(), args[0])
				if err != nil {
					return reportFailure(app, err)
				}
				if confirmed {
					app.ShowNotification(app.Printer.Sprintf(i18n.TaskDeleted, args[0]), notify.SeveritySuccess)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}

// reportFailure shows a failed command as a toast and returns err so the
// process exits non-zero.
func reportFailure(app *client.App, err error) error {
	var statusErr *client.StatusError
	if errors.As(err, &statusErr) {
		app.ShowNotification(fmt.Sprintf("%d: %s", statusErr.StatusCode, statusErr.Body), notify.SeverityError)
	} else {
		app.Errors.HandleRejection(err)
	}
	return err
}
