package auth

import "context"

// contextKey is a custom type to avoid context key collisions.
type contextKey string

const callerIDKey contextKey = "callerID"

// WithCaller returns a copy of ctx carrying the authenticated user ID.
func WithCaller(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, callerIDKey, userID)
}

// CallerID returns the user ID stored by Gate.Middleware.
func CallerID(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(callerIDKey).(int64)
	return userID, ok
}
