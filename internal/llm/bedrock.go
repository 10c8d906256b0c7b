package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"go.uber.org/zap"

	"bedrock-converse/internal/observability"
)

// Runtime is the part of the Bedrock runtime API the client drives.
type Runtime interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput) (*bedrockruntime.ConverseOutput, error)
	ConverseStream(ctx context.Context, params *bedrockruntime.ConverseStreamInput) (EventStream, error)
}

// EventStream is satisfied by *bedrockruntime.ConverseStreamEventStream.
type EventStream interface {
	Events() <-chan types.ConverseStreamOutput
	Close() error
	Err() error
}

type sdkRuntime struct {
	client *bedrockruntime.Client
}

func (r sdkRuntime) Converse(ctx context.Context, params *bedrockruntime.ConverseInput) (*bedrockruntime.ConverseOutput, error) {
	return r.client.Converse(ctx, params)
}

func (r sdkRuntime) ConverseStream(ctx context.Context, params *bedrockruntime.ConverseStreamInput) (EventStream, error) {
	out, err := r.client.ConverseStream(ctx, params)
	if err != nil {
		return nil, err
	}
	stream := out.GetStream()
	if stream == nil {
		return nil, errors.New("converse stream response carried no event stream")
	}
	return stream, nil
}

type BedrockClient struct {
	runtime Runtime
}

// NewBedrockClient builds a client on top of the SDK runtime client for cfg.
func NewBedrockClient(cfg aws.Config) *BedrockClient {
	return NewClient(sdkRuntime{client: bedrockruntime.NewFromConfig(cfg)})
}

func NewClient(runtime Runtime) *BedrockClient {
	return &BedrockClient{runtime: runtime}
}

func (c *BedrockClient) Converse(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	logger := observability.FromContext(ctx)
	logger.Debug("converse request",
		zap.Int("max_tokens", req.Inference.MaxTokens),
		zap.Float64("temperature", req.Inference.Temperature),
		zap.Float64("top_p", req.Inference.TopP),
	)

	out, err := c.runtime.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId:         aws.String(req.ModelID),
		Messages:        req.Messages,
		System:          buildSystem(req.System),
		InferenceConfig: buildInferenceConfig(req.Inference),
	})
	if err != nil {
		return ChatResponse{}, Classify(err, req.ModelID)
	}

	resp := ChatResponse{
		Content:    flattenContent(out.Output),
		StopReason: string(out.StopReason),
		Usage:      convertUsage(out.Usage),
	}
	if out.Metrics != nil {
		resp.Latency = time.Duration(aws.ToInt64(out.Metrics.LatencyMs)) * time.Millisecond
	}
	logger.Debug("converse response",
		zap.String("stop_reason", resp.StopReason),
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens),
		zap.Duration("latency", resp.Latency),
	)
	return resp, nil
}

func (c *BedrockClient) ConverseStream(ctx context.Context, req ChatRequest, handle StreamHandler) (ChatResponse, error) {
	logger := observability.FromContext(ctx)
	logger.Debug("converse stream request",
		zap.Int("max_tokens", req.Inference.MaxTokens),
		zap.Float64("temperature", req.Inference.Temperature),
		zap.Float64("top_p", req.Inference.TopP),
	)

	stream, err := c.runtime.ConverseStream(ctx, &bedrockruntime.ConverseStreamInput{
		ModelId:         aws.String(req.ModelID),
		Messages:        req.Messages,
		System:          buildSystem(req.System),
		InferenceConfig: buildInferenceConfig(req.Inference),
	})
	if err != nil {
		return ChatResponse{}, Classify(err, req.ModelID)
	}
	defer func() {
		if closeErr := stream.Close(); closeErr != nil {
			logger.Debug("close converse stream", zap.Error(closeErr))
		}
	}()

	resp, stopped, err := consumeStream(logger, stream.Events(), handle)
	if err != nil {
		return ChatResponse{}, err
	}
	if !stopped {
		if err := stream.Err(); err != nil {
			return ChatResponse{}, Classify(err, req.ModelID)
		}
	}
	logger.Debug("converse stream finished",
		zap.String("stop_reason", resp.StopReason),
		zap.Bool("message_stop", stopped),
	)
	return resp, nil
}

// consumeStream reads events in arrival order until MessageStop or until the
// channel closes. It reports whether MessageStop ended the read; events after
// it are left unread.
func consumeStream(logger *zap.Logger, events <-chan types.ConverseStreamOutput, handle StreamHandler) (ChatResponse, bool, error) {
	var content strings.Builder
	var resp ChatResponse

	for event := range events {
		switch e := event.(type) {
		case *types.ConverseStreamOutputMemberMessageStart:
			logger.Debug("message start", zap.String("role", string(e.Value.Role)))
		case *types.ConverseStreamOutputMemberContentBlockStart:
			continue
		case *types.ConverseStreamOutputMemberContentBlockDelta:
			text, ok := e.Value.Delta.(*types.ContentBlockDeltaMemberText)
			if !ok || text.Value == "" {
				continue
			}
			content.WriteString(text.Value)
			if handle != nil {
				if err := handle(text.Value); err != nil {
					return ChatResponse{}, false, err
				}
			}
		case *types.ConverseStreamOutputMemberContentBlockStop:
			continue
		case *types.ConverseStreamOutputMemberMessageStop:
			resp.Content = content.String()
			resp.StopReason = string(e.Value.StopReason)
			return resp, true, nil
		case *types.ConverseStreamOutputMemberMetadata:
			resp.Usage = convertUsage(e.Value.Usage)
		default:
			logger.Debug("ignored stream event", zap.String("type", eventTypeName(event)))
		}
	}
	resp.Content = content.String()
	return resp, false, nil
}

func eventTypeName(event types.ConverseStreamOutput) string {
	if unknown, ok := event.(*types.UnknownUnionMember); ok {
		return unknown.Tag
	}
	return "unknown"
}
