// Package viewer carries the identity of the person a request is served for.
// Identity is established upstream; this service only propagates it.
package viewer

import (
	"context"

	"github.com/google/uuid"

	"github.com/alanyang/agent-market/internal/domain/profile"
)

type Viewer struct {
	ID   uuid.UUID
	Role profile.Role
}

// Anonymous is the zero viewer.
var Anonymous = Viewer{}

func (v Viewer) SignedIn() bool { return v.ID != uuid.Nil }

func (v Viewer) IsDeveloper() bool { return v.SignedIn() && v.Role == profile.RoleDeveloper }

type ctxKey struct{}

func WithViewer(ctx context.Context, v Viewer) context.Context {
	return context.WithValue(ctx, ctxKey{}, v)
}

// WithID is shorthand for a signed-in viewer whose role is not needed.
func WithID(ctx context.Context, id uuid.UUID) context.Context {
	return WithViewer(ctx, Viewer{ID: id, Role: profile.RoleUser})
}

// FromContext returns Anonymous when ctx carries no viewer.
func FromContext(ctx context.Context) Viewer {
	if v, ok := ctx.Value(ctxKey{}).(Viewer); ok {
		return v
	}
	return Anonymous
}
