package observability

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	// RequestIDKey holds the unique request identifier.
	RequestIDKey contextKey = "request_id"

	// ModelKey holds the model name requested by the client.
	ModelKey contextKey = "model"

	// ModelFlagKey holds the resolved backend model flag.
	ModelFlagKey contextKey = "model_flag"
)

// WithRequestID injects request ID into context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// WithModel injects model name into context.
func WithModel(ctx context.Context, model string) context.Context {
	return context.WithValue(ctx, ModelKey, model)
}

// WithModelFlag injects the resolved backend model flag into context.
func WithModelFlag(ctx context.Context, flag string) context.Context {
	return context.WithValue(ctx, ModelFlagKey, flag)
}

// GetRequestID extracts request ID from context.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// GetModel extracts model name from context.
func GetModel(ctx context.Context) string {
	if model, ok := ctx.Value(ModelKey).(string); ok {
		return model
	}
	return ""
}

// GetModelFlag extracts the resolved backend model flag from context.
func GetModelFlag(ctx context.Context) string {
	if flag, ok := ctx.Value(ModelFlagKey).(string); ok {
		return flag
	}
	return ""
}

// GenerateRequestID generates a unique request identifier (UUID).
func GenerateRequestID() string {
	return uuid.New().String()
}
