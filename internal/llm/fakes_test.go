package llm

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

type fakeRuntime struct {
	converseOut *bedrockruntime.ConverseOutput
	converseErr error
	stream      *fakeStream
	streamErr   error

	converseIn *bedrockruntime.ConverseInput
	streamIn   *bedrockruntime.ConverseStreamInput
}

func (f *fakeRuntime) Converse(_ context.Context, params *bedrockruntime.ConverseInput) (*bedrockruntime.ConverseOutput, error) {
	f.converseIn = params
	return f.converseOut, f.converseErr
}

func (f *fakeRuntime) ConverseStream(_ context.Context, params *bedrockruntime.ConverseStreamInput) (EventStream, error) {
	f.streamIn = params
	if f.streamErr != nil {
		return nil, f.streamErr
	}
	return f.stream, nil
}

// fakeStream serves events from a buffered channel and records how it was
// consumed.
type fakeStream struct {
	events chan types.ConverseStreamOutput
	err    error
	closed int
}

func newFakeStream(err error, events ...types.ConverseStreamOutput) *fakeStream {
	ch := make(chan types.ConverseStreamOutput, len(events))
	for _, event := range events {
		ch <- event
	}
	close(ch)
	return &fakeStream{events: ch, err: err}
}

func (s *fakeStream) Events() <-chan types.ConverseStreamOutput { return s.events }

func (s *fakeStream) Close() error {
	s.closed++
	return nil
}

func (s *fakeStream) Err() error { return s.err }

func (s *fakeStream) remaining() int { return len(s.events) }

func textDelta(text string) types.ConverseStreamOutput {
	return &types.ConverseStreamOutputMemberContentBlockDelta{
		Value: types.ContentBlockDeltaEvent{
			Delta: &types.ContentBlockDeltaMemberText{Value: text},
		},
	}
}

func messageStart() types.ConverseStreamOutput {
	return &types.ConverseStreamOutputMemberMessageStart{
		Value: types.MessageStartEvent{Role: types.ConversationRoleAssistant},
	}
}

func messageStop(reason types.StopReason) types.ConverseStreamOutput {
	return &types.ConverseStreamOutputMemberMessageStop{
		Value: types.MessageStopEvent{StopReason: reason},
	}
}

func outputMessage(blocks ...types.ContentBlock) *bedrockruntime.ConverseOutput {
	return &bedrockruntime.ConverseOutput{
		Output: &types.ConverseOutputMemberMessage{
			Value: types.Message{Role: types.ConversationRoleAssistant, Content: blocks},
		},
		StopReason: types.StopReasonEndTurn,
	}
}
