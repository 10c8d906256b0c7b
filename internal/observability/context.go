package observability

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	// InvocationIDKey holds the identifier of one CLI run.
	InvocationIDKey contextKey = "invocation_id"

	// ModelIDKey holds the Bedrock model identifier the run targets.
	ModelIDKey contextKey = "model_id"
)

func WithInvocationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, InvocationIDKey, id)
}

func WithModelID(ctx context.Context, modelID string) context.Context {
	return context.WithValue(ctx, ModelIDKey, modelID)
}

func GetInvocationID(ctx context.Context) string {
	if id, ok := ctx.Value(InvocationIDKey).(string); ok {
		return id
	}
	return ""
}

func GetModelID(ctx context.Context) string {
	if model, ok := ctx.Value(ModelIDKey).(string); ok {
		return model
	}
	return ""
}

// GenerateInvocationID returns a fresh UUID for log correlation.
func GenerateInvocationID() string {
	return uuid.New().String()
}
