// Package observability provides logging, metrics, and tracing.
package observability

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
)

// Logger is the application-wide structured logger. Configure replaces it.
var Logger *slog.Logger

// LogContextKey is a type for context keys used by the logging package.
type LogContextKey string

// Context keys for logging
const (
	RequestIDKey     LogContextKey = "request_id"
	CorrelationIDKey LogContextKey = "correlation_id"
)

// ctxHandler is a slog.Handler that adds context values to the log record.
type ctxHandler struct {
	slog.Handler
}

// Handle adds context values to the record before passing it to the underlying handler.
func (h *ctxHandler) Handle(ctx context.Context, r slog.Record) error {
	if rid, ok := ctx.Value(RequestIDKey).(string); ok && rid != "" {
		r.AddAttrs(slog.String("request_id", rid))
	}
	if cid, ok := ctx.Value(CorrelationIDKey).(string); ok && cid != "" {
		r.AddAttrs(slog.String("correlation_id", cid))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ctxHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ctxHandler{h.Handler.WithAttrs(attrs)}
}

func (h *ctxHandler) WithGroup(name string) slog.Handler {
	return &ctxHandler{h.Handler.WithGroup(name)}
}

func init() {
	Logger = NewLogger(os.Getenv("APP_ENV"), "info", os.Stdout)
}

// ParseLevel maps "debug", "info", "warn" or "error" to a slog level.
// Unknown values default to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds a context-aware logger: JSON in production, text otherwise.
func NewLogger(env, level string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if env == "production" || env == "prod" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(&ctxHandler{handler})
}

// Configure replaces the global logger and makes it the slog default.
func Configure(env, level string) {
	Logger = NewLogger(env, level, os.Stdout)
	slog.SetDefault(Logger)
}

// GenerateCorrelationID creates a new unique correlation ID.
func GenerateCorrelationID() string {
	return uuid.NewString()
}

// WithCorrelationID returns a new context with the given correlation ID.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelationIDKey, id)
}

// WithRequestID returns a new context carrying the HTTP request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// ExtractCorrelationID retrieves the correlation ID from the context.
func ExtractCorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(CorrelationIDKey).(string); ok {
		return id
	}
	return ""
}

// StoreLogger provides structured logging for store mutations.
type StoreLogger struct {
	storeName string
}

// NewStoreLogger creates a StoreLogger tagged with the store name.
func NewStoreLogger(storeName string) *StoreLogger {
	return &StoreLogger{storeName: storeName}
}

func (l *StoreLogger) log(ctx context.Context, level slog.Level, msg, entity, operation string, fields map[string]interface{}) {
	attrs := []any{
		slog.String("store", l.storeName),
		slog.String("entity", entity),
		slog.String("operation", operation),
	}
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	Logger.Log(ctx, level, msg, attrs...)
}

// LogCreate logs the creation of a user, post, comment or reaction.
func (l *StoreLogger) LogCreate(ctx context.Context, entity string, fields map[string]interface{}) {
	l.log(ctx, slog.LevelInfo, "store create", entity, "create", fields)
}

// LogDangling logs an event recorded against a target that does not resolve.
func (l *StoreLogger) LogDangling(ctx context.Context, entity string, fields map[string]interface{}) {
	l.log(ctx, slog.LevelWarn, "dangling reference", entity, "skip", fields)
}

// LogReplace logs a whole-state swap such as a demo generation.
func (l *StoreLogger) LogReplace(ctx context.Context, fields map[string]interface{}) {
	l.log(ctx, slog.LevelInfo, "store replaced", "state", "replace", fields)
}

// LogReset logs a full reset.
func (l *StoreLogger) LogReset(ctx context.Context) {
	l.log(ctx, slog.LevelInfo, "store reset", "state", "reset", nil)
}

// LogError logs a failed store operation.
func (l *StoreLogger) LogError(ctx context.Context, err error, entity, operation string) {
	l.log(ctx, slog.LevelError, "store error", entity, operation, map[string]interface{}{
		"error": err.Error(),
	})
}
