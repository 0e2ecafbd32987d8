package types

import "context"

// ContextKey is a type for the keys of values stored in the context
type ContextKey string

const (
	CtxRequestID ContextKey = "ctx_request_id"
	CtxActorID   ContextKey = "ctx_actor_id"

	// SystemActorID is recorded as the acting user for writes issued by
	// scheduler-dispatched jobs rather than a staff member.
	SystemActorID = "system"
)

// GetActorID returns the acting user from the context, falling back to
// the system actor so background jobs always stamp a modifier.
func GetActorID(ctx context.Context) string {
	if actorID, ok := ctx.Value(CtxActorID).(string); ok && actorID != "" {
		return actorID
	}
	return SystemActorID
}

func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(CtxRequestID).(string); ok {
		return requestID
	}
	return ""
}

// SetActorID sets the acting user in the context
func SetActorID(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, CtxActorID, actorID)
}

func SetRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, CtxRequestID, requestID)
}
