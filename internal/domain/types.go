package domain

import "context"

// ID is used across domain entities.
type ID int64

type ctxKey int

const requestIDCtxKey ctxKey = iota

// WithRequestID attaches a request id to ctx so downstream log lines can
// carry it across layer boundaries.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDCtxKey, requestID)
}

// RequestIDFrom returns the request id attached to ctx, empty when absent.
func RequestIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDCtxKey).(string); ok {
		return v
	}
	return ""
}

// Pagination carries paging params and totals.
type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
	Total    int `json:"total,omitempty"`
}

// RequestContext carries authenticated user info when available.
type RequestContext struct {
	UserID ID     `json:"userId"`
	Role   string `json:"role"`
}
