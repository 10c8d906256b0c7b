package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/require"
)

func chatRequest(prompt string) ChatRequest {
	return ChatRequest{
		ModelID:   "anthropic.claude-test",
		Messages:  BuildMessages(prompt),
		Inference: InferenceConfig{MaxTokens: 512, Temperature: 0.2, TopP: 0.9},
	}
}

func TestBedrockConverse(t *testing.T) {
	t.Run("aggregates text and sends the request", func(t *testing.T) {
		out := outputMessage(
			&types.ContentBlockMemberText{Value: " A"},
			&types.ContentBlockMemberText{Value: "B "},
		)
		out.Usage = &types.TokenUsage{InputTokens: aws.Int32(3), OutputTokens: aws.Int32(2), TotalTokens: aws.Int32(5)}
		out.Metrics = &types.ConverseMetrics{LatencyMs: aws.Int64(42)}
		runtime := &fakeRuntime{converseOut: out}

		req := chatRequest("hi")
		req.System = "Be terse."
		resp, err := NewClient(runtime).Converse(context.Background(), req)

		require.NoError(t, err)
		require.Equal(t, "AB", resp.Content)
		require.Equal(t, "end_turn", resp.StopReason)
		require.Equal(t, Usage{InputTokens: 3, OutputTokens: 2, TotalTokens: 5}, resp.Usage)
		require.Equal(t, int64(42), resp.Latency.Milliseconds())

		in := runtime.converseIn
		require.Equal(t, "anthropic.claude-test", aws.ToString(in.ModelId))
		require.Equal(t, BuildMessages("hi"), in.Messages)
		require.Equal(t, int32(512), aws.ToInt32(in.InferenceConfig.MaxTokens))
		require.InDelta(t, 0.2, aws.ToFloat32(in.InferenceConfig.Temperature), 1e-6)
		require.InDelta(t, 0.9, aws.ToFloat32(in.InferenceConfig.TopP), 1e-6)
		require.Len(t, in.System, 1)
	})

	t.Run("classifies service errors", func(t *testing.T) {
		runtime := &fakeRuntime{converseErr: &smithy.GenericAPIError{
			Code:    "AccessDeniedException",
			Message: "not authorized",
		}}

		_, err := NewClient(runtime).Converse(context.Background(), chatRequest("hi"))

		var serviceErr *ServiceError
		require.ErrorAs(t, err, &serviceErr)
		require.Equal(t, "AccessDeniedException", serviceErr.Code)
		require.True(t, strings.HasPrefix(err.Error(), "[Bedrock] AccessDeniedException: not authorized\nHints:\n- Check IAM"))
	})

	t.Run("tags transport errors", func(t *testing.T) {
		runtime := &fakeRuntime{converseErr: errors.New("dial tcp: lookup bedrock-runtime: no such host")}

		_, err := NewClient(runtime).Converse(context.Background(), chatRequest("hi"))

		var transportErr *TransportError
		require.ErrorAs(t, err, &transportErr)
		require.Equal(t, "[Bedrock/SDK] dial tcp: lookup bedrock-runtime: no such host", err.Error())
	})
}

func TestBedrockConverseStream(t *testing.T) {
	t.Run("stops at message stop", func(t *testing.T) {
		stream := newFakeStream(nil,
			messageStart(),
			textDelta("Hel"),
			textDelta("lo"),
			messageStop(types.StopReasonEndTurn),
			textDelta("ignored"),
		)
		runtime := &fakeRuntime{stream: stream}

		var deltas []string
		resp, err := NewClient(runtime).ConverseStream(context.Background(), chatRequest("hi"), func(delta string) error {
			deltas = append(deltas, delta)
			return nil
		})

		require.NoError(t, err)
		require.Equal(t, []string{"Hel", "lo"}, deltas)
		require.Equal(t, "Hello", resp.Content)
		require.Equal(t, "end_turn", resp.StopReason)
		require.Equal(t, 1, stream.remaining(), "events after message stop must stay unread")
		require.Equal(t, 1, stream.closed)
		require.Equal(t, "anthropic.claude-test", aws.ToString(runtime.streamIn.ModelId))
	})

	t.Run("skips empty and non text deltas", func(t *testing.T) {
		stream := newFakeStream(nil,
			&types.ConverseStreamOutputMemberContentBlockStart{},
			textDelta(""),
			&types.ConverseStreamOutputMemberContentBlockDelta{Value: types.ContentBlockDeltaEvent{
				Delta: &types.ContentBlockDeltaMemberToolUse{},
			}},
			textDelta("ok"),
			&types.ConverseStreamOutputMemberContentBlockStop{},
			&types.ConverseStreamOutputMemberMetadata{Value: types.ConverseStreamMetadataEvent{
				Usage: &types.TokenUsage{OutputTokens: aws.Int32(1)},
			}},
		)

		var deltas []string
		resp, err := NewClient(&fakeRuntime{stream: stream}).ConverseStream(context.Background(), chatRequest("hi"), func(delta string) error {
			deltas = append(deltas, delta)
			return nil
		})

		require.NoError(t, err)
		require.Equal(t, []string{"ok"}, deltas)
		require.Equal(t, "ok", resp.Content)
		require.Equal(t, 1, resp.Usage.OutputTokens)
		require.Equal(t, 1, stream.closed)
	})

	t.Run("classifies the terminal stream error", func(t *testing.T) {
		stream := newFakeStream(
			&smithy.GenericAPIError{Code: "ThrottlingException", Message: "slow down"},
			textDelta("partial"),
		)

		_, err := NewClient(&fakeRuntime{stream: stream}).ConverseStream(context.Background(), chatRequest("hi"), nil)

		var serviceErr *ServiceError
		require.ErrorAs(t, err, &serviceErr)
		require.Equal(t, []string{"You're throttled. Add retries/backoff or lower token limits."}, serviceErr.Hints)
		require.Equal(t, 1, stream.closed)
	})

	t.Run("classifies open errors", func(t *testing.T) {
		runtime := &fakeRuntime{streamErr: errors.New("connection reset by peer")}

		_, err := NewClient(runtime).ConverseStream(context.Background(), chatRequest("hi"), nil)

		require.EqualError(t, err, "[Bedrock/SDK] connection reset by peer")
	})

	t.Run("handler errors abort and close", func(t *testing.T) {
		writeErr := errors.New("broken pipe")
		stream := newFakeStream(nil, textDelta("a"), textDelta("b"), messageStop(types.StopReasonEndTurn))

		calls := 0
		_, err := NewClient(&fakeRuntime{stream: stream}).ConverseStream(context.Background(), chatRequest("hi"), func(string) error {
			calls++
			return writeErr
		})

		require.ErrorIs(t, err, writeErr)
		require.Equal(t, 1, calls)
		require.Equal(t, 2, stream.remaining())
		require.Equal(t, 1, stream.closed)
	})
}
