package cli

import (
	"github.com/spf13/cobra"

	"github.com/spec-kit/job-board/internal/domain"
	"github.com/spec-kit/job-board/internal/workflow"
)

// NewAcceptedCommand groups the accepted task commands.
func NewAcceptedCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accepted",
		Short: "Manage the jobs you accepted",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List your accepted tasks",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				env, err := opts.Env()
				if err != nil {
					return err
				}
				view := workflow.NewAcceptedTasks(env.Workflow)
				if err := view.Refresh(cmd.Context()); err != nil {
					return err
				}
				return opts.printer(cmd).Acceptances(view.Rows())
			},
		},
		newCloseCommand(opts, "done", "Mark a task as done", domain.CloseDone),
		newCloseCommand(opts, "cancel", "Give up a task", domain.CloseCancel),
	)
	return cmd
}

func newCloseCommand(opts *RootOptions, use, short string, reason domain.CloseReason) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <job-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.Env()
			if err != nil {
				return err
			}
			if reason == domain.CloseCancel {
				err = env.Workflow.Cancel(cmd.Context(), args[0])
			} else {
				err = env.Workflow.MarkDone(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}
			return opts.printer(cmd).Notice(workflow.ClosedNotice(reason))
		},
	}
}
