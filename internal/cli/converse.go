package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bedrock-converse/internal/llm"
	"bedrock-converse/internal/observability"
)

type converseOptions struct {
	ModelID    string
	Prompt     string
	PromptFile string
	System     string
	Stream     bool
	Doctor     bool
}

func runConverse(cmd *cobra.Command, state *app, opts *converseOptions) error {
	prompt, err := readPrompt(opts.Prompt, opts.PromptFile, cmd.InOrStdin())
	if err != nil {
		return err
	}
	modelID := strings.TrimSpace(state.cfg.ModelID)

	var missing []string
	if modelID == "" {
		missing = append(missing, "model-id")
	}
	if prompt == "" {
		missing = append(missing, "prompt")
	}
	if len(missing) > 0 {
		return usageErrorf("Missing required: %s (or use --doctor)", strings.Join(missing, ", "))
	}

	ctx := observability.WithInvocationID(cmd.Context(), observability.GenerateInvocationID())
	ctx = observability.WithModelID(ctx, modelID)
	logger := observability.FromContext(ctx)

	inference := state.cfg.Inference
	for _, warning := range inference.ConventionWarnings() {
		logger.Warn("unusual inference setting", zap.String("detail", warning))
	}

	client, err := state.services.Converser(ctx, state.awsOptions())
	if err != nil {
		return llm.Classify(err, modelID)
	}

	req := llm.ChatRequest{
		ModelID:  modelID,
		System:   opts.System,
		Messages: llm.BuildMessages(prompt),
		Inference: llm.InferenceConfig{
			MaxTokens:   inference.MaxTokens,
			Temperature: inference.Temperature,
			TopP:        inference.TopP,
		},
	}

	if opts.Stream {
		out := bufio.NewWriter(cmd.OutOrStdout())
		_, err = client.ConverseStream(ctx, req, func(delta string) error {
			if _, writeErr := out.WriteString(delta); writeErr != nil {
				return writeErr
			}
			return out.Flush()
		})
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(out); err != nil {
			return err
		}
		return out.Flush()
	}

	resp, err := client.Converse(ctx, req)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), resp.Content)
	return err
}
