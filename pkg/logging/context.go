package logging

import (
	"context"

	"go.uber.org/zap"
)

type contextKey int

const (
	fieldsKey contextKey = iota
)

// WithContextFields returns a copy of ctx carrying fields in addition to any fields
// already attached by outer callers. Every *Ctx log call made with the result emits them.
func WithContextFields(ctx context.Context, fields ...zap.Field) context.Context {
	if len(fields) == 0 {
		return ctx
	}
	existing := fieldsFromContext(ctx)
	merged := make([]zap.Field, 0, len(existing)+len(fields))
	merged = append(merged, existing...)
	merged = append(merged, fields...)
	return context.WithValue(ctx, fieldsKey, merged)
}

func fieldsFromContext(ctx context.Context) []zap.Field {
	if ctx == nil {
		return nil
	}
	fields, ok := ctx.Value(fieldsKey).([]zap.Field)
	if !ok {
		return nil
	}
	return fields
}
