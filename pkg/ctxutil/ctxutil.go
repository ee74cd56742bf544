package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey string

const (
	principalKey ctxKey = "principal"
	requestIDKey ctxKey = "request_id"
)

// Principal is the authenticated caller as resolved once per request.
// Capability flags are derived from the stored role so that downstream
// services never query group membership themselves.
type Principal struct {
	UserID  uuid.UUID
	Role    string
	IsStaff bool
}

// IsModerator reports whether the principal may review submissions:
// administrators, staff, and members of the manager or editor groups.
func (p Principal) IsModerator() bool {
	if p.IsStaff {
		return true
	}
	switch p.Role {
	case "admin", "manager", "editor":
		return true
	}
	return false
}

// IsManager reports whether the principal may read admin analytics:
// administrators, staff, and managers.
func (p Principal) IsManager() bool {
	if p.IsStaff {
		return true
	}
	switch p.Role {
	case "admin", "manager":
		return true
	}
	return false
}

// WithPrincipal stores the authenticated principal in the context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromCtx extracts the principal from the context.
// Returns false if the request is anonymous.
func PrincipalFromCtx(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	if !ok || p.UserID == uuid.Nil {
		return Principal{}, false
	}
	return p, true
}

// UserIDFromCtx extracts the user ID from the context.
// Returns uuid.Nil and false for anonymous requests.
func UserIDFromCtx(ctx context.Context) (uuid.UUID, bool) {
	p, ok := PrincipalFromCtx(ctx)
	if !ok {
		return uuid.Nil, false
	}
	return p.UserID, true
}

// WithRequestID stores the request ID in the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromCtx extracts the request ID from the context.
// Returns an empty string if absent.
func RequestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
