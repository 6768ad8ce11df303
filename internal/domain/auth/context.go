package auth

import "context"

type sessionContextKey struct{}

// ContextWithSession attaches the session of the current request.
func ContextWithSession(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, session)
}

func SessionFromContext(ctx context.Context) (*Session, bool) {
	session, ok := ctx.Value(sessionContextKey{}).(*Session)
	return session, ok && session != nil
}

// UsernameFromContext returns the logged in user's name, or "".
func UsernameFromContext(ctx context.Context) string {
	if session, ok := SessionFromContext(ctx); ok {
		return session.Username
	}
	return ""
}
