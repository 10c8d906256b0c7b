package llm

import (
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

// BuildMessages wraps prompt in a single user message. The prompt is passed
// through untouched; the service decides what it accepts.
func BuildMessages(prompt string) []types.Message {
	return []types.Message{
		{
			Role: types.ConversationRoleUser,
			Content: []types.ContentBlock{
				&types.ContentBlockMemberText{Value: prompt},
			},
		},
	}
}

func buildInferenceConfig(cfg InferenceConfig) *types.InferenceConfiguration {
	return &types.InferenceConfiguration{
		MaxTokens:   aws.Int32(int32(cfg.MaxTokens)),
		Temperature: aws.Float32(float32(cfg.Temperature)),
		TopP:        aws.Float32(float32(cfg.TopP)),
	}
}

func buildSystem(system string) []types.SystemContentBlock {
	if strings.TrimSpace(system) == "" {
		return nil
	}
	return []types.SystemContentBlock{
		&types.SystemContentBlockMemberText{Value: system},
	}
}

// flattenContent joins the text blocks of a Converse output message in order
// and trims the result. Non-text blocks are skipped.
func flattenContent(output types.ConverseOutput) string {
	message, ok := output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return ""
	}
	var builder strings.Builder
	for _, block := range message.Value.Content {
		text, ok := block.(*types.ContentBlockMemberText)
		if !ok {
			continue
		}
		builder.WriteString(text.Value)
	}
	return strings.TrimSpace(builder.String())
}

func convertUsage(usage *types.TokenUsage) Usage {
	if usage == nil {
		return Usage{}
	}
	return Usage{
		InputTokens:  int(aws.ToInt32(usage.InputTokens)),
		OutputTokens: int(aws.ToInt32(usage.OutputTokens)),
		TotalTokens:  int(aws.ToInt32(usage.TotalTokens)),
	}
}
