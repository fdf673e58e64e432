package command

import (
	"github.com/spf13/cobra"
)

const defaultConfigFilepath = "~/.config/qachat/config.json"

// NewRootCmd returns the qachat command with every subcommand attached.
// Unless app is already wired, it is wired from the --config file before any subcommand runs.
func NewRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "qachat",
		Short:        "A terminal client for the QA chat service",
		Version:      "1.0",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.wire()
		},
	}
	cmd.PersistentFlags().StringVar(&app.configFilepath, "config", defaultConfigFilepath, "Path to the configuration file")

	cmd.AddCommand(
		NewRegisterCmd(app),
		NewLoginCmd(app),
		NewLogoutCmd(app),
		NewWhoamiCmd(app),
		NewConversationsCmd(app),
		NewMessagesCmd(app),
		NewAskCmd(app),
		NewMemoryCmd(app),
		NewTUICmd(app),
	)
	return cmd
}

// sessionPreRun wires the app like the root pre-run does, then requires a session.
func sessionPreRun(app *App) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := app.wire(); err != nil {
			return err
		}
		return app.requireSession()
	}
}
