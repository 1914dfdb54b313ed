package utils

import "context"

type contextKey string

const (
	RetailerIDKey    contextKey = "retailer_id"
	RetailerEmailKey contextKey = "email"
	UserRoleKey      contextKey = "role"
)

// SetRetailerContext sets the authenticated retailer identity into context
// (called by the auth middleware).
func SetRetailerContext(ctx context.Context, id uint, email string, role string) context.Context {
	ctx = context.WithValue(ctx, RetailerIDKey, id)
	ctx = context.WithValue(ctx, RetailerEmailKey, email)
	ctx = context.WithValue(ctx, UserRoleKey, role)
	return ctx
}

// GetRetailerIDFromContext retrieves the retailer id safely.
func GetRetailerIDFromContext(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(RetailerIDKey).(uint)
	return id, ok
}

func GetRetailerEmailFromContext(ctx context.Context) string {
	email, _ := ctx.Value(RetailerEmailKey).(string)
	return email
}

func GetUserRoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(UserRoleKey).(string)
	return role
}
