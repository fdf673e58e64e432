package command

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/malonaz/qachat/chat"
	"github.com/malonaz/qachat/internal/api"
	"github.com/malonaz/qachat/internal/cli"
)

// NewAskCmd instantiates and returns the ask command.
func NewAskCmd(app *App) *cobra.Command {
	var opts struct {
		ConversationID  string
		DisableThinking bool
		TopK            int
	}
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a question, or start an interactive session without one",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := app.requireSession(); err != nil {
				return err
			}
			if opts.ConversationID != "" {
				if err := app.Chat.LoadMessages(ctx, opts.ConversationID); err != nil {
					return err
				}
			}

			askOpts := chat.AskOptions{
				DisableThinking: opts.DisableThinking || app.Config.Chat.DisableThinking,
				TopK:            opts.TopK,
			}
			if askOpts.TopK <= 0 {
				askOpts.TopK = app.Config.Chat.TopK
			}

			if len(args) > 0 {
				return ask(cmd, app, strings.Join(args, " "), askOpts)
			}

			cli.Muted("Ctrl+J to send, Ctrl+C to quit\n")
			for {
				question, err := cli.PromptUser(app.Config.HistoryFile)
				if errors.Is(err, cli.ErrInterrupted) {
					return nil
				}
				if err != nil {
					return err
				}
				if strings.TrimSpace(question) == "" {
					continue
				}
				if err := ask(cmd, app, question, askOpts); err != nil {
					// A failed answer does not end the session.
					cli.Error("%v\n", err)
				}
			}
		},
	}
	cmd.Flags().StringVarP(&opts.ConversationID, "conversation", "c", "", "Continue an existing conversation")
	cmd.Flags().BoolVar(&opts.DisableThinking, "no-think", false, "Disable the reasoning step")
	cmd.Flags().IntVarP(&opts.TopK, "top-k", "k", 0, "Number of knowledge base chunks to retrieve")
	return cmd
}

func ask(cmd *cobra.Command, app *App, question string, opts chat.AskOptions) error {
	thinking := false
	var sources []string
	err := app.Chat.Ask(cmd.Context(), question, opts, func(event *api.StreamEvent) {
		switch event.Type {
		case api.EventReasoning:
			text, _ := event.Text()
			if !thinking {
				cli.Title("thinking")
				thinking = true
			}
			cli.AIThought(text)
		case api.EventAnswer:
			text, _ := event.Text()
			if thinking {
				fmt.Println()
				cli.Separator()
				thinking = false
			}
			cli.AIOutput(text)
		case api.EventSources:
			sources, _ = event.Sources()
		case api.EventMemoryUpdate:
			printMemoryUpdate(event)
		}
	})
	fmt.Println()
	if err != nil {
		return err
	}
	printSources(sources)
	if id, ok := app.Chat.Active(); ok {
		cli.Muted("conversation: %s\n", id)
	}
	return nil
}
