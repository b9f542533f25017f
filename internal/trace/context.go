package trace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	opTagKey     contextKey = "op_tag"
)

// GenerateRequestID generates a unique request ID in format "req-XXXXXX"
func GenerateRequestID() string {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "req-000000"
	}
	return "req-" + hex.EncodeToString(b)
}

// ExtractOpTag derives an operation tag from a URL path
// /api/encrypt -> "encrypt"
// /api/history/ -> "history"
// /health -> "health"
func ExtractOpTag(urlPath string) string {
	path := strings.TrimPrefix(urlPath, "/api")
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		return "/"
	}
	return parts[0]
}

// WithRequestID adds request ID to context
func WithRequestID(ctx context.Context, reqID string) context.Context {
	return context.WithValue(ctx, requestIDKey, reqID)
}

// GetRequestID retrieves request ID from context
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// WithOpTag adds operation tag to context
func WithOpTag(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, opTagKey, op)
}

// GetOpTag retrieves operation tag from context
func GetOpTag(ctx context.Context) string {
	if v, ok := ctx.Value(opTagKey).(string); ok {
		return v
	}
	return ""
}

// LogPrefix returns a formatted log prefix: "[req-xxx] [op] [stage]"
func LogPrefix(ctx context.Context, stage string) string {
	reqID := GetRequestID(ctx)
	op := GetOpTag(ctx)
	if reqID == "" {
		reqID = "req-??????"
	}
	if op == "" {
		op = "/"
	}
	return "[" + reqID + "] [" + op + "] [" + stage + "]"
}
