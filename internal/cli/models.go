package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"bedrock-converse/internal/llm"
)

type modelsOptions struct {
	Provider      string
	StreamingOnly bool
}

func newModelsCmd(state *app) *cobra.Command {
	opts := &modelsOptions{}
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List text foundation models available in the region",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runModels(cmd, state, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Provider, "provider", "", "only list models from this provider, e.g. anthropic")
	cmd.Flags().BoolVar(&opts.StreamingOnly, "streaming-only", false, "only list models that support --stream")
	return cmd
}

func runModels(cmd *cobra.Command, state *app, opts *modelsOptions) error {
	lister, err := state.services.Models(cmd.Context(), state.awsOptions())
	if err != nil {
		return llm.Classify(err, "")
	}
	models, err := llm.ListModels(cmd.Context(), lister, llm.ListModelsOptions{
		Provider:      opts.Provider,
		StreamingOnly: opts.StreamingOnly,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODEL ID\tPROVIDER\tNAME\tSTREAMING")
	for _, model := range models {
		streaming := "no"
		if model.Streaming {
			streaming = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", model.ID, model.Provider, model.Name, streaming)
	}
	return w.Flush()
}
