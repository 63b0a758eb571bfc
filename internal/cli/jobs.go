package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spec-kit/job-board/internal/domain"
	"github.com/spec-kit/job-board/internal/workflow"
)

// NewJobsCommand groups the job posting commands.
func NewJobsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Browse and manage job postings",
	}
	cmd.AddCommand(
		newJobsListCommand(opts),
		newJobsLatestCommand(opts),
		newJobsMineCommand(opts),
		newJobsViewCommand(opts),
		newJobsPostCommand(opts),
		newJobsUpdateCommand(opts),
		newJobsDeleteCommand(opts),
		newJobsAcceptCommand(opts),
	)
	return cmd
}

func newJobsListCommand(opts *RootOptions) *cobra.Command {
	var sort string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if sort != string(domain.SortAsc) && sort != string(domain.SortDesc) {
				return fmt.Errorf("invalid sort %q: must be asc or desc", sort)
			}
			env, err := opts.Env()
			if err != nil {
				return err
			}
			jobs, err := env.Workflow.List(cmd.Context(), domain.SortOrder(sort))
			if err != nil {
				return err
			}
			return opts.printer(cmd).Jobs(jobs)
		},
	}
	cmd.Flags().StringVar(&sort, "sort", string(domain.SortDesc), "order by posting date (asc|desc)")
	return cmd
}

func newJobsLatestCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "latest",
		Short: "Show the newest jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.Env()
			if err != nil {
				return err
			}
			jobs, err := env.Workflow.LatestJobs(cmd.Context())
			if err != nil {
				return err
			}
			return opts.printer(cmd).Jobs(jobs)
		},
	}
}

func newJobsMineCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mine",
		Short: "List the jobs you posted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.Env()
			if err != nil {
				return err
			}
			jobs, err := env.Workflow.MyPostedJobs(cmd.Context())
			if err != nil {
				return err
			}
			return opts.printer(cmd).Jobs(jobs)
		},
	}
}

func newJobsViewCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "view <job-id>",
		Short: "Show one job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.Env()
			if err != nil {
				return err
			}
			detail, err := env.Workflow.View(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return opts.printer(cmd).Job(detail)
		},
	}
}

type jobFields struct {
	title    string
	category string
	summary  string
	cover    string
}

func (f *jobFields) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "job title")
	cmd.Flags().StringVar(&f.category, "category", "", "one of: "+categoryList())
	cmd.Flags().StringVar(&f.summary, "summary", "", "short description")
	cmd.Flags().StringVar(&f.cover, "cover", "", "cover image URL")
}

func categoryList() string {
	names := make([]string, 0, len(domain.Categories))
	for _, c := range domain.Categories {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}

func newJobsPostCommand(opts *RootOptions) *cobra.Command {
	fields := &jobFields{}
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Post a new job",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.Env()
			if err != nil {
				return err
			}
			job, err := env.Workflow.Create(cmd.Context(), domain.JobDraft{
				Title:         fields.title,
				Category:      domain.Category(fields.category),
				Summary:       fields.summary,
				CoverImageURL: fields.cover,
			})
			if err != nil {
				return err
			}
			return opts.printer(cmd).Notice(workflow.Success("Job posted (%s)", job.ID))
		},
	}
	fields.bind(cmd)
	return cmd
}

func newJobsUpdateCommand(opts *RootOptions) *cobra.Command {
	fields := &jobFields{}
	cmd := &cobra.Command{
		Use:   "update <job-id>",
		Short: "Edit a job you posted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := domain.JobPatch{}
			if cmd.Flags().Changed("title") {
				patch.Title = &fields.title
			}
			if cmd.Flags().Changed("category") {
				category := domain.Category(fields.category)
				patch.Category = &category
			}
			if cmd.Flags().Changed("summary") {
				patch.Summary = &fields.summary
			}
			if cmd.Flags().Changed("cover") {
				patch.CoverImageURL = &fields.cover
			}
			env, err := opts.Env()
			if err != nil {
				return err
			}
			if _, err := env.Workflow.Update(cmd.Context(), args[0], patch); err != nil {
				return err
			}
			return opts.printer(cmd).Notice(workflow.Success("Job updated"))
		},
	}
	fields.bind(cmd)
	return cmd
}

func newJobsDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <job-id>",
		Short: "Delete a job you posted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.Env()
			if err != nil {
				return err
			}
			if err := env.Workflow.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			return opts.printer(cmd).Notice(workflow.Success("Job deleted"))
		},
	}
}

func newJobsAcceptCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "accept <job-id>",
		Short: "Accept a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.Env()
			if err != nil {
				return err
			}
			record, err := env.Workflow.Accept(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return opts.printer(cmd).Notice(workflow.Success("Job accepted (task %s)", record.ID))
		},
	}
}
