package command

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/malonaz/qachat/internal/api"
	"github.com/malonaz/qachat/internal/cli"
)

type credentialOpts struct {
	Username string
	Password string
}

func (o *credentialOpts) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.Username, "username", "u", "", "Username (prompted if empty)")
	cmd.Flags().StringVarP(&o.Password, "password", "p", "", "Password (prompted if empty)")
}

func (o *credentialOpts) complete() error {
	var err error
	if o.Username == "" {
		if o.Username, err = cli.AskInput("Username"); err != nil {
			return err
		}
	}
	if o.Password == "" {
		if o.Password, err = cli.AskPassword("Password"); err != nil {
			return err
		}
	}
	return nil
}

func newCredentialCmd(use, short string, authenticate func(ctx context.Context, username, password string) (*api.TokenResponse, error)) *cobra.Command {
	var opts credentialOpts
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.complete(); err != nil {
				return err
			}
			if _, err := authenticate(cmd.Context(), opts.Username, opts.Password); err != nil {
				return err
			}
			return nil
		},
	}
	opts.bind(cmd)
	return cmd
}

// NewRegisterCmd instantiates and returns the register command.
func NewRegisterCmd(app *App) *cobra.Command {
	cmd := newCredentialCmd("register", "Create an account and log in", func(ctx context.Context, username, password string) (*api.TokenResponse, error) {
		return app.Auth.Register(ctx, username, password)
	})
	cmd.PostRun = func(cmd *cobra.Command, args []string) { printSession(app.Auth.Session()) }
	return cmd
}

// NewLoginCmd instantiates and returns the login command.
func NewLoginCmd(app *App) *cobra.Command {
	cmd := newCredentialCmd("login", "Log in to an existing account", func(ctx context.Context, username, password string) (*api.TokenResponse, error) {
		return app.Auth.Login(ctx, username, password)
	})
	cmd.PostRun = func(cmd *cobra.Command, args []string) { printSession(app.Auth.Session()) }
	return cmd
}

// NewLogoutCmd instantiates and returns the logout command.
func NewLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			app.Auth.Logout()
			cli.Info("logged out\n")
		},
	}
}

// NewWhoamiCmd instantiates and returns the whoami command.
func NewWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireSession(); err != nil {
				return err
			}
			session := app.Auth.Session()
			printSession(session)
			cli.Muted("user id: %s\n", session.UserID)
			return nil
		},
	}
}
