package common

import "context"

type ctxKey string

const (
	userIDKey ctxKey = "auth/user-id"
	roleKey   ctxKey = "auth/role"
	tokenKey  ctxKey = "auth/token-id"
)

// WithUserID stores the authenticated user identifier on the provided context.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// UserID extracts the authenticated user identifier from the context if present.
func UserID(ctx context.Context) (string, bool) {
	v := ctx.Value(userIDKey)
	if v == nil {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

// WithRole stores the authenticated user's role.
func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, roleKey, role)
}

// Role returns the authenticated user's role, or an empty string.
func Role(ctx context.Context) string {
	role, _ := ctx.Value(roleKey).(string)
	return role
}

// WithTokenID stores the jti of the access token that authenticated the request.
func WithTokenID(ctx context.Context, jti string) context.Context {
	return context.WithValue(ctx, tokenKey, jti)
}

// TokenID returns the access token jti stored by the auth middleware.
func TokenID(ctx context.Context) string {
	jti, _ := ctx.Value(tokenKey).(string)
	return jti
}
