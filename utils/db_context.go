package utils

import (
	"context"
	"time"
)

// DefaultQueryTimeout bounds ordinary entry reads and writes.
const DefaultQueryTimeout = 30 * time.Second

// ReportQueryTimeout is for report exports that walk many entries.
const ReportQueryTimeout = 60 * time.Second

// GetQueryContext returns a context with the given timeout for database
// work. A nil parent falls back to context.Background().
func GetQueryContext(parentCtx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	return context.WithTimeout(parentCtx, timeout)
}

// GetDefaultQueryContext returns a context with the default timeout.
func GetDefaultQueryContext(parentCtx context.Context) (context.Context, context.CancelFunc) {
	return GetQueryContext(parentCtx, DefaultQueryTimeout)
}
