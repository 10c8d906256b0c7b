package llm

import (
	"context"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrock"
	bedrocktypes "github.com/aws/aws-sdk-go-v2/service/bedrock/types"
)

type ModelSummary struct {
	ID        string
	Name      string
	Provider  string
	Streaming bool
}

// ModelLister is the part of the Bedrock control-plane API used to list
// foundation models.
type ModelLister interface {
	ListFoundationModels(ctx context.Context, params *bedrock.ListFoundationModelsInput, optFns ...func(*bedrock.Options)) (*bedrock.ListFoundationModelsOutput, error)
}

type ListModelsOptions struct {
	Provider      string
	StreamingOnly bool
}

// NewModelLister returns the SDK control-plane client for cfg.
func NewModelLister(cfg aws.Config) ModelLister {
	return bedrock.NewFromConfig(cfg)
}

// ListModels returns the text-output foundation models in the client's region,
// sorted by model ID.
func ListModels(ctx context.Context, lister ModelLister, opts ListModelsOptions) ([]ModelSummary, error) {
	input := &bedrock.ListFoundationModelsInput{
		ByOutputModality: bedrocktypes.ModelModalityText,
	}
	if provider := strings.TrimSpace(opts.Provider); provider != "" {
		input.ByProvider = aws.String(provider)
	}
	out, err := lister.ListFoundationModels(ctx, input)
	if err != nil {
		return nil, Classify(err, "")
	}

	models := make([]ModelSummary, 0, len(out.ModelSummaries))
	for _, summary := range out.ModelSummaries {
		streaming := aws.ToBool(summary.ResponseStreamingSupported)
		if opts.StreamingOnly && !streaming {
			continue
		}
		models = append(models, ModelSummary{
			ID:        aws.ToString(summary.ModelId),
			Name:      aws.ToString(summary.ModelName),
			Provider:  aws.ToString(summary.ProviderName),
			Streaming: streaming,
		})
	}
	slices.SortFunc(models, func(a, b ModelSummary) int {
		return strings.Compare(a.ID, b.ID)
	})
	return models, nil
}
