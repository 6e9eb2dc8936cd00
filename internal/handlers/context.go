package handlers

import (
	"context"

	"socialgraph/internal/models"
)

type contextKey string

const userContextKey contextKey = "user"

// SetUserInContext binds the authenticated user to the request context.
// The auth middleware is the only production caller.
func SetUserInContext(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// GetUserFromContext returns the authenticated user, or nil for an
// unauthenticated request.
func GetUserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userContextKey).(*models.User)
	return user
}
