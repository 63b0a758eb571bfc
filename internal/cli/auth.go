package cli

import (
	"github.com/spf13/cobra"

	"github.com/spec-kit/job-board/internal/domain"
	"github.com/spec-kit/job-board/internal/workflow"
	apperrors "github.com/spec-kit/job-board/pkg/util/errorutil"
)

// NewAuthCommand groups the sign-in commands.
func NewAuthCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Sign in, register and sign out",
	}
	cmd.AddCommand(
		newRegisterCommand(opts),
		newLoginCommand(opts),
		newGoogleCommand(opts),
		newLogoutCommand(opts),
		newWhoamiCommand(opts),
	)
	return cmd
}

func newRegisterCommand(opts *RootOptions) *cobra.Command {
	var email, password, name, photo string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account with email and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.Env()
			if err != nil {
				return err
			}
			principal, err := env.Identity.Register(cmd.Context(), email, password, domain.Profile{Name: name, PhotoURL: photo})
			if err != nil {
				return err
			}
			return opts.printer(cmd).Notice(workflow.Success("Welcome, %s", principal.Name()))
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "at least 6 characters with upper- and lower-case letters")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&photo, "photo", "", "photo URL")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLoginCommand(opts *RootOptions) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.Env()
			if err != nil {
				return err
			}
			principal, err := env.Identity.SignIn(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			return opts.printer(cmd).Notice(workflow.Success("Signed in as %s", principal.Email))
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newGoogleCommand(opts *RootOptions) *cobra.Command {
	var code string
	cmd := &cobra.Command{
		Use:   "google",
		Short: "Sign in with a Google authorization code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.Env()
			if err != nil {
				return err
			}
			principal, err := env.Identity.SignInWithFederatedProvider(cmd.Context(), code)
			if err != nil {
				return err
			}
			return opts.printer(cmd).Notice(workflow.Success("Signed in as %s", principal.Email))
		},
	}
	cmd.Flags().StringVar(&code, "code", "", "authorization code from the Google consent screen")
	_ = cmd.MarkFlagRequired("code")
	return cmd
}

func newLogoutCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.Env()
			if err != nil {
				return err
			}
			if env.Identity.Current() == nil {
				return apperrors.NewUnauthorized("not signed in")
			}
			if err := env.Identity.SignOut(cmd.Context()); err != nil {
				return err
			}
			return opts.printer(cmd).Notice(workflow.Success("Signed out"))
		},
	}
}

func newWhoamiCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.Env()
			if err != nil {
				return err
			}
			return opts.printer(cmd).Principal(env.Identity.Current())
		},
	}
}
