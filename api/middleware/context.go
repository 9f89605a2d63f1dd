package middleware

import "context"

type contextKey string

const (
	ctxSubject contextKey = "subject"
	ctxRole    contextKey = "actor_role"
	ctxSession contextKey = "session_id"
)

func SubjectFromContext(ctx context.Context) string {
	return stringValue(ctx, ctxSubject)
}

func RoleFromContext(ctx context.Context) string {
	return stringValue(ctx, ctxRole)
}

// SessionIDFromContext returns the access token jti of the authenticated request.
func SessionIDFromContext(ctx context.Context) string {
	return stringValue(ctx, ctxSession)
}

func stringValue(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}
