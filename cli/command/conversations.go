package command

import (
	"strings"

	"github.com/scylladb/go-set/strset"
	"github.com/spf13/cobra"

	"github.com/malonaz/qachat/internal/cli"
)

const conversationsTemplate = `{{- range . }}
{{ printf "%-24s" .ID }}  {{ .Title | default "(untitled)" | trunc 50 }}{{ if .UpdatedAt }}  {{ .UpdatedAt | trunc 19 | replace "T" " " }}{{ end }}
{{- else }}
no conversations
{{- end }}
`

// NewConversationsCmd instantiates and returns the conversations command and its subcommands.
func NewConversationsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "conversations",
		Aliases: []string{"conv"},
		Short:   "Manage conversations",
		PersistentPreRunE: sessionPreRun(app),
	}
	cmd.AddCommand(
		newListConversationsCmd(app),
		newCreateConversationCmd(app),
		newDeleteConversationsCmd(app),
		newRenameConversationCmd(app),
	)
	return cmd
}

func newListConversationsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List conversations, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Chat.FetchConversations(cmd.Context()); err != nil {
				return err
			}
			if err := cli.RenderTemplate(cmd.OutOrStdout(), "conversations", conversationsTemplate, app.Chat.Conversations()); err != nil {
				return err
			}
			return nil
		},
	}
}

func newCreateConversationCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create an empty conversation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := app.Chat.CreateConversation(cmd.Context())
			if err != nil {
				return err
			}
			cli.Info("created conversation %s\n", id)
			return nil
		},
	}
}

func newDeleteConversationsCmd(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete conversations",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seen := strset.New()
			ids := make([]string, 0, len(args))
			for _, id := range args {
				if seen.Has(id) {
					continue
				}
				seen.Add(id)
				ids = append(ids, id)
			}
			if !yes && !cli.QueryUser("Delete "+strings.Join(ids, ", ")+"?") {
				cli.Muted("aborted\n")
				return nil
			}
			for _, id := range ids {
				if err := app.Chat.DeleteConversation(cmd.Context(), id); err != nil {
					return err
				}
				cli.Info("deleted conversation %s\n", id)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func newRenameConversationCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <title>",
		Short: "Rename a conversation",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.Join(args[1:], " ")
			if err := app.Chat.RenameConversation(cmd.Context(), args[0], title); err != nil {
				return err
			}
			cli.Info("renamed conversation %s\n", args[0])
			return nil
		},
	}
}
