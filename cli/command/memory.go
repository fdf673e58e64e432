package command

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/malonaz/qachat/internal/cli"
)

const memoryTemplate = `Entities:
{{- range .Entities }}
  {{ printf "%-24s" .ID }}  {{ .EntityName }} ({{ .EntityType | lower }}){{ with .Properties }}  {{ toJson . }}{{ end }}
{{- else }}
  none
{{- end }}
Relations:
{{- range .Relations }}
  {{ printf "%-24s" .ID }}  {{ .Source }} -[{{ .Relation | lower }}]-> {{ .Target }}
{{- else }}
  none
{{- end }}
`

const extractTemplate = `{{- range .Extracted.Entities }}
+ {{ .Name }} ({{ .Type | lower }})
{{- end }}
{{- range .Extracted.Relations }}
+ {{ .Source }} -[{{ .Relation | lower }}]-> {{ .Target }}
{{- end }}
saved {{ .Saved.NewEntities }} new {{ .Saved.NewEntities | plural "entity" "entities" }} and {{ .Saved.NewRelations }} new {{ .Saved.NewRelations | plural "relation" "relations" }}
`

// NewMemoryCmd instantiates and returns the memory command and its subcommands.
func NewMemoryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memory",
		Short: "Inspect and edit what the assistant remembers about you",
		PersistentPreRunE: sessionPreRun(app),
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print remembered entities and relations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			memory, err := app.Client.GetMemory(cmd.Context())
			if err != nil {
				return err
			}
			return cli.RenderTemplate(cmd.OutOrStdout(), "memory", memoryTemplate, memory)
		},
	}

	add := &cobra.Command{
		Use:   "add <text>",
		Short: "Tell the assistant something to remember",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := app.Client.ExtractMemory(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			return cli.RenderTemplate(cmd.OutOrStdout(), "extract", extractTemplate, result)
		},
	}

	forgetEntity := &cobra.Command{
		Use:   "forget-entity <id>",
		Short: "Forget an entity and its relations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Client.DeleteMemoryEntity(cmd.Context(), args[0]); err != nil {
				return err
			}
			cli.Info("forgot entity %s\n", args[0])
			return nil
		},
	}

	forgetRelation := &cobra.Command{
		Use:   "forget-relation <id>",
		Short: "Forget a relation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Client.DeleteMemoryRelation(cmd.Context(), args[0]); err != nil {
				return err
			}
			cli.Info("forgot relation %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(show, add, forgetEntity, forgetRelation)
	return cmd
}
