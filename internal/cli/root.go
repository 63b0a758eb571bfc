// Package cli is the jobboard command line. Commands only parse flags, dispatch to the
// workflow and print notices.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/job-board/internal/workflow"
	apperrors "github.com/spec-kit/job-board/pkg/util/errorutil"
)

const (
	formatText = "text"
	formatJSON = "json"
)

// ValidFormats lists the accepted --format values.
var ValidFormats = []string{formatText, formatJSON}

// EnvLoader builds the client core on first use.
type EnvLoader func() (*Env, error)

// RootOptions holds global flags and the lazily built Env.
type RootOptions struct {
	Format string

	load EnvLoader
	env  *Env
}

// Env returns the client core, building it on first call.
func (o *RootOptions) Env() (*Env, error) {
	if o.env != nil {
		return o.env, nil
	}
	env, err := o.load()
	if err != nil {
		return nil, err
	}
	o.env = env
	return env, nil
}

func (o *RootOptions) printer(cmd *cobra.Command) *Printer {
	return &Printer{Format: o.Format, Out: cmd.OutOrStdout()}
}

// NewRootCommand creates the jobboard command tree.
func NewRootCommand(load EnvLoader) *cobra.Command {
	opts := &RootOptions{load: load}

	cmd := &cobra.Command{
		Use:           "jobboard",
		Short:         "Browse, post and accept freelance jobs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if opts.env == nil {
				return nil
			}
			return opts.env.Close()
		},
	}
	cmd.PersistentFlags().StringVar(&opts.Format, "format", formatText, "output format (text|json)")

	cmd.AddCommand(NewJobsCommand(opts))
	cmd.AddCommand(NewAcceptedCommand(opts))
	cmd.AddCommand(NewAuthCommand(opts))
	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// Execute runs cmd and renders a failure as a notice on stderr. It returns the process
// exit code.
func Execute(ctx context.Context, cmd *cobra.Command) int {
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var derr *apperrors.DomainError
	if errors.As(err, &derr) {
		fmt.Fprintln(cmd.ErrOrStderr(), workflow.NoticeFor(err).String())
	} else {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
	}
	return 1
}
