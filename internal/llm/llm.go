package llm

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

type InferenceConfig struct {
	MaxTokens   int
	Temperature float64
	TopP        float64
}

type ChatRequest struct {
	ModelID   string
	System    string
	Messages  []types.Message
	Inference InferenceConfig
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

type ChatResponse struct {
	Content    string
	StopReason string
	Usage      Usage
	Latency    time.Duration
}

type StreamHandler func(delta string) error

type Client interface {
	Converse(ctx context.Context, req ChatRequest) (ChatResponse, error)
	ConverseStream(ctx context.Context, req ChatRequest, handle StreamHandler) (ChatResponse, error)
}
