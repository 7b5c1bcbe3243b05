package constants

// CtxKeyUser is the fixed gin context key under which the Bearer strategy
// stores the verified token payload for downstream handlers.
const CtxKeyUser = "user"

// ContextKey is a custom type for request-scoped context keys to avoid
// collisions with other packages.
type ContextKey string

const (
	CtxKeyRequestID ContextKey = "request_id"
	CtxKeyUserID    ContextKey = "user_id"
	CtxKeyClientIP  ContextKey = "client_ip"
	CtxKeyStartTime ContextKey = "start_time"
)
