package lockmgr

import (
	"context"

	"github.com/google/uuid"
)

// OwnerID identifies the holder of a key.
// It takes the role a thread identity plays for a reentrant mutex.
type OwnerID string

type ownerCtxKey struct{}

// NewOwnerID creates a new random owner ID
func NewOwnerID() OwnerID {
	return OwnerID(uuid.NewString())
}

// WithOwner returns a copy of ctx that carries owner.
// Acquisitions made with the returned context are reentrant for owner.
func WithOwner(ctx context.Context, owner OwnerID) context.Context {
	return context.WithValue(ctx, ownerCtxKey{}, owner)
}

// OwnerFromContext returns the owner attached to ctx by WithOwner.
func OwnerFromContext(ctx context.Context) (OwnerID, bool) {
	owner, ok := ctx.Value(ownerCtxKey{}).(OwnerID)
	return owner, ok && owner != ""
}

// ownerFor returns the owner of ctx or mints a new one
func ownerFor(ctx context.Context) OwnerID {
	if owner, ok := OwnerFromContext(ctx); ok {
		return owner
	}
	return NewOwnerID()
}
