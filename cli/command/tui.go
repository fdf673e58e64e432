package command

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.design/x/clipboard"

	"github.com/malonaz/qachat/cli/tui"
)

// NewTUICmd instantiates and returns the tui command.
func NewTUICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive chat",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := clipboard.Init(); err != nil {
				app.log.Warn("clipboard unavailable", "error", err)
			}

			m, err := tui.New(ctx, app.Config, app.Auth, app.Chat, app.Router)
			if err != nil {
				return err
			}
			defer m.Close()

			p := tea.NewProgram(
				m,
				tea.WithAltScreen(),
				tea.WithContext(ctx),
			)
			m.SetProgram(p)

			if _, err := p.Run(); err != nil {
				return errors.Wrap(err, "running tui")
			}
			return nil
		},
	}
}
