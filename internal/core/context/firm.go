package context

import (
	"context"

	"github.com/google/uuid"
)

type firmContextKey struct{}

// WithFirm adds the acting firm ID to context.
func WithFirm(ctx context.Context, firmID uuid.UUID) context.Context {
	return context.WithValue(ctx, firmContextKey{}, firmID)
}

// GetFirmID returns the firm ID from context.
// ok is false when no firm has been resolved for the request.
func GetFirmID(ctx context.Context) (uuid.UUID, bool) {
	if v, ok := ctx.Value(firmContextKey{}).(uuid.UUID); ok && v != uuid.Nil {
		return v, true
	}
	return uuid.Nil, false
}
