package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/hostelhub/hostelhub-backend/internal/leave"
	"github.com/hostelhub/hostelhub-backend/pkg/enums"
)

type contextKey string

const (
	ctxUserID      contextKey = "user_id"
	ctxRole        contextKey = "actor_role"
	ctxStudentID   contextKey = "student_id"
	ctxDisplayName contextKey = "display_name"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

func StudentIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxStudentID).(string); ok {
		return v
	}
	return ""
}

func DisplayNameFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxDisplayName).(string); ok {
		return v
	}
	return ""
}

// ActorFromContext rebuilds the authenticated caller seeded by Auth.
// ok is false when the context carries no valid identity.
func ActorFromContext(ctx context.Context) (leave.Actor, bool) {
	userID, err := uuid.Parse(UserIDFromContext(ctx))
	if err != nil {
		return leave.Actor{}, false
	}
	role, err := enums.ParseUserRole(RoleFromContext(ctx))
	if err != nil {
		return leave.Actor{}, false
	}
	actor := leave.Actor{
		UserID:      userID,
		DisplayName: DisplayNameFromContext(ctx),
		Role:        role,
	}
	if raw := StudentIDFromContext(ctx); raw != "" {
		if sid, err := uuid.Parse(raw); err == nil {
			actor.StudentID = &sid
		}
	}
	return actor, true
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

// WithActor seeds every identity key at once. Tests use it to skip token minting.
func WithActor(ctx context.Context, actor leave.Actor) context.Context {
	ctx = WithUserID(ctx, actor.UserID.String())
	ctx = context.WithValue(ctx, ctxRole, string(actor.Role))
	ctx = context.WithValue(ctx, ctxDisplayName, actor.DisplayName)
	if actor.StudentID != nil {
		ctx = context.WithValue(ctx, ctxStudentID, actor.StudentID.String())
	}
	return ctx
}
