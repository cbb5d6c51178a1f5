package enrichment

import (
	"context"
	"fmt"
	"log/slog"
)

// WithFallback runs attempt and returns its value, or fallback with degraded=true
// when it errors or panics. The failure is logged under op.
func WithFallback[T any](ctx context.Context, logger *slog.Logger, op string, attempt func(context.Context) (T, error), fallback T) (result T, degraded bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("enrichment step panicked, using fallback", "op", op, "panic", fmt.Sprint(r))
			result, degraded = fallback, true
		}
	}()

	value, err := attempt(ctx)
	if err != nil {
		logger.Warn("enrichment step failed, using fallback", "op", op, "error", err)
		return fallback, true
	}
	return value, false
}
