package httpx

import "context"

type ctxKey struct{}

// Identity is the authenticated caller as seen by the transport layer.
// Domain packages provide the concrete type.
type Identity interface {
	SubjectID() string
	RoleName() string
}

// Authenticator resolves a raw bearer token into an Identity.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (Identity, error)
}

// WithIdentity stores the authenticated identity on the context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// IdentityFrom returns the identity stored by AuthnMiddleware, if any.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	v, ok := ctx.Value(ctxKey{}).(Identity)
	return v, ok && v != nil
}

// IdentityAs returns the stored identity asserted to its concrete type.
func IdentityAs[T Identity](ctx context.Context) (T, bool) {
	var zero T
	id, ok := IdentityFrom(ctx)
	if !ok {
		return zero, false
	}
	v, ok := id.(T)
	return v, ok
}
