package domain

import (
	"context"
	"slices"
)

// Identity is the authenticated caller of a single request, rebuilt from a
// verified token. It is never read back from the member store.
type Identity struct {
	ID          string
	Username    string
	Nickname    string
	Authorities []Authority
}

// HasAuthority reports whether the identity carries a.
func (i Identity) HasAuthority(a Authority) bool {
	return slices.Contains(i.Authorities, a)
}

type identityKey struct{}

// ContextWithIdentity returns a copy of ctx carrying id.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity stored by ContextWithIdentity.
// ok is false for anonymous requests.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
