package command

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/malonaz/qachat/internal/api"
	"github.com/malonaz/qachat/internal/cli"
)

// NewMessagesCmd instantiates and returns the messages command.
func NewMessagesCmd(app *App) *cobra.Command {
	var showThinking bool
	cmd := &cobra.Command{
		Use:   "messages <id>",
		Short: "Print the messages of a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireSession(); err != nil {
				return err
			}
			if err := app.Chat.LoadMessages(cmd.Context(), args[0]); err != nil {
				return err
			}
			messages := app.Chat.Messages()
			if len(messages) == 0 {
				cli.Muted("no messages\n")
				return nil
			}
			for _, message := range messages {
				printMessage(message, showThinking)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&showThinking, "thinking", "t", false, "Print the assistant's reasoning")
	return cmd
}

func printMessage(message api.Message, showThinking bool) {
	switch message.Role {
	case api.RoleUser:
		cli.Title("you")
		cli.UserInput("%s\n", message.Content)
	default:
		cli.Title("assistant")
		if showThinking && message.Thinking != "" {
			cli.AIThought(message.Thinking + "\n")
			cli.Separator()
		}
		cli.AIOutput(message.Content + "\n")
		printSources(message.Sources)
	}
}

func printSources(sources []string) {
	if len(sources) == 0 {
		return
	}
	cli.Muted("sources: %s\n", strings.Join(sources, ", "))
}

func printMemoryUpdate(event *api.StreamEvent) {
	entities, relations, err := event.MemoryUpdate()
	if err != nil || entities+relations == 0 {
		return
	}
	cli.Muted("\nremembered %d entities and %d relations", entities, relations)
}
