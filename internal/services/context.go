package services

import "context"

type contextKey string

const (
	scheduleIDKey contextKey = "schedule_id"
	componentKey  contextKey = "component"
	requestIDKey  contextKey = "request_id"
)

// WithScheduleID annotates context with the scheduled search identifier.
func WithScheduleID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, scheduleIDKey, id)
}

// ScheduleIDFromContext extracts the scheduled search identifier if present.
func ScheduleIDFromContext(ctx context.Context) (int64, bool) {
	v := ctx.Value(scheduleIDKey)
	if v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case int64:
		return val, true
	case int:
		return int64(val), true
	default:
		return 0, false
	}
}

// WithComponent annotates context with the active component name.
func WithComponent(ctx context.Context, component string) context.Context {
	if component == "" {
		return ctx
	}
	return context.WithValue(ctx, componentKey, component)
}

// ComponentFromContext returns the component name if present.
func ComponentFromContext(ctx context.Context) (string, bool) {
	if str, ok := ctx.Value(componentKey).(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
